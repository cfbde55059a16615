package pages

import (
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/web/templates/components"
	"github.com/gamecenter/minesweeper/internal/web/templates/layout"
)

// LobbyData is a lobby as seen by one of its members
type LobbyData struct {
	layout.PageData
	Lobby  *model.Lobby
	Member *model.LobbyMember
	// MyGame is the viewer's own game, nil before their first start
	MyGame    *model.Game
	MyElapsed int
	// Others are the boards of every other member with a game
	Others   []components.BoardData
	Statuses map[model.PlayerID]model.GameStatus
	Messages []*model.ChatMessage
}

func (d LobbyData) isPlayer() bool {
	return d.Member != nil && d.Member.Role == model.RolePlayer
}

func (d LobbyData) settings() components.SettingsData {
	return components.SettingsData{
		LobbyCode: d.Lobby.Code,
		Settings:  d.Lobby.Settings,
		Editable:  d.Member != nil && d.Member.IsHost,
	}
}

func (d LobbyData) members() components.MembersData {
	viewer := model.PlayerID("")
	if d.Player != nil {
		viewer = d.Player.ID
	}
	return components.MembersData{
		Lobby:    d.Lobby,
		Viewer:   viewer,
		Statuses: d.Statuses,
	}
}

func (d LobbyData) chat() components.ChatData {
	return components.ChatData{LobbyCode: d.Lobby.Code, Messages: d.Messages}
}

func (d LobbyData) myBoard() components.BoardData {
	return components.BoardData{
		LobbyCode:   d.Lobby.Code,
		Game:        d.MyGame,
		Elapsed:     d.MyElapsed,
		Interactive: true,
	}
}
