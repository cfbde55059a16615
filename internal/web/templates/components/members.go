package components

import "github.com/gamecenter/minesweeper/internal/model"

// MembersData is the lobby roster as seen by one member
type MembersData struct {
	Lobby    *model.Lobby
	Viewer   model.PlayerID
	Statuses map[model.PlayerID]model.GameStatus
}

func (d MembersData) viewerIsHost() bool {
	host := d.Lobby.GetHost()
	return host != nil && host.Player.ID == d.Viewer
}

// canSwitchRole reports whether the viewer may toggle m's role. Everyone
// may switch their own; the host may switch anyone's.
func (d MembersData) canSwitchRole(m model.LobbyMember) bool {
	return m.Player.ID == d.Viewer || d.viewerIsHost()
}

func nextRole(current model.LobbyMemberRole) model.LobbyMemberRole {
	if current == model.RoleSpectator {
		return model.RolePlayer
	}
	return model.RoleSpectator
}

func roleLabel(current model.LobbyMemberRole) string {
	if current == model.RoleSpectator {
		return "Play"
	}
	return "Spectate"
}
