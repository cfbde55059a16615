package components

import "github.com/gamecenter/minesweeper/internal/model"

// ChatData is the lobby chat panel
type ChatData struct {
	LobbyCode model.LobbyCode
	Messages  []*model.ChatMessage
	Error     string
}
