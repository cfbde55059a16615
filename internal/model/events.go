package model

// Lobby event names as delivered to SSE and WebSocket subscribers
const (
	EventMemberUpdate = "member-update"
	EventGameStarted  = "game-started"
	EventCellOpened   = "cell-opened"
	EventFlagToggled  = "flag-toggled"
	EventGameResult   = "game-result"
	EventMessage      = "message"
	EventRefresh      = "refresh" // lobby settings or a game changed in a way that needs a reload
)

// MemberSummary is one entry of a member-update event
type MemberSummary struct {
	PlayerID    PlayerID        `json:"player_id"`
	DisplayName string          `json:"display_name"`
	Role        LobbyMemberRole `json:"role"`
	IsHost      bool            `json:"is_host"`
	IsBot       bool            `json:"is_bot,omitempty"`
	Playing     bool            `json:"playing"`
}

// MemberUpdatePayload carries the full member list of a lobby
type MemberUpdatePayload struct {
	Members []MemberSummary `json:"members"`
}

// NewMemberUpdatePayload summarises a lobby's members
func NewMemberUpdatePayload(l *Lobby) MemberUpdatePayload {
	members := make([]MemberSummary, len(l.Members))
	for i, m := range l.Members {
		_, playing := l.GameFor(m.Player.ID)
		members[i] = MemberSummary{
			PlayerID:    m.Player.ID,
			DisplayName: m.Player.DisplayName,
			Role:        m.Role,
			IsHost:      m.IsHost,
			IsBot:       m.Player.IsBot,
			Playing:     playing,
		}
	}
	return MemberUpdatePayload{Members: members}
}

// CellOpenedPayload is sent for each accepted reveal
type CellOpenedPayload struct {
	PlayerID PlayerID    `json:"player_id"`
	Row      int         `json:"row"`
	Col      int         `json:"col"`
	Opened   int         `json:"opened"` // cells opened by this reveal
	Outcome  MoveOutcome `json:"outcome"`
}

// FlagToggledPayload is sent for each accepted flag toggle
type FlagToggledPayload struct {
	PlayerID  PlayerID `json:"player_id"`
	Row       int      `json:"row"`
	Col       int      `json:"col"`
	IsFlagged bool     `json:"is_flagged"`
}

// GameResultPayload is sent once when a game is won or lost
type GameResultPayload struct {
	PlayerID       PlayerID   `json:"player_id"`
	Status         GameStatus `json:"status"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
}

// GameStartedPayload is sent when a player starts or resets their game
type GameStartedPayload struct {
	PlayerID PlayerID `json:"player_id"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Mines    int      `json:"mines"`
}
