package model

import "time"

// LobbyCode is a human-readable identifier for joining lobbies
type LobbyCode string

// LobbyMemberRole distinguishes players from spectators
type LobbyMemberRole string

const (
	RolePlayer    LobbyMemberRole = "player"
	RoleSpectator LobbyMemberRole = "spectator"
)

// LobbyMember represents a player's membership in a lobby
type LobbyMember struct {
	Player   Player
	Role     LobbyMemberRole
	IsHost   bool
	JoinedAt time.Time
}

// Lobby is a room in the game center. Every player member plays their own
// board; members share presence and chat.
type Lobby struct {
	Code      LobbyCode
	Members   []LobbyMember // All members (players + spectators)
	Settings  Settings      // Defaults for games started in this lobby
	Games     map[PlayerID]GameID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetHost returns the current host member, or nil if none
func (l *Lobby) GetHost() *LobbyMember {
	for i := range l.Members {
		if l.Members[i].IsHost {
			return &l.Members[i]
		}
	}
	return nil
}

// GetMember returns the member with the given player ID, or nil if not found
func (l *Lobby) GetMember(playerID PlayerID) *LobbyMember {
	for i := range l.Members {
		if l.Members[i].Player.ID == playerID {
			return &l.Members[i]
		}
	}
	return nil
}

// GetPlayers returns all members with the player role
func (l *Lobby) GetPlayers() []LobbyMember {
	var players []LobbyMember
	for _, m := range l.Members {
		if m.Role == RolePlayer {
			players = append(players, m)
		}
	}
	return players
}

// GetSpectators returns all members with the spectator role
func (l *Lobby) GetSpectators() []LobbyMember {
	var spectators []LobbyMember
	for _, m := range l.Members {
		if m.Role == RoleSpectator {
			spectators = append(spectators, m)
		}
	}
	return spectators
}

// GameFor returns the game ID of the given player's current game
func (l *Lobby) GameFor(playerID PlayerID) (GameID, bool) {
	id, ok := l.Games[playerID]
	return id, ok
}

// Clone returns a copy of the lobby that shares no slices or maps with it
func (l *Lobby) Clone() *Lobby {
	clone := *l
	clone.Members = make([]LobbyMember, len(l.Members))
	copy(clone.Members, l.Members)
	clone.Games = make(map[PlayerID]GameID, len(l.Games))
	for k, v := range l.Games {
		clone.Games[k] = v
	}
	return &clone
}
