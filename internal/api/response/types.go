package response

import (
	"time"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/auth"
	"github.com/gamecenter/minesweeper/internal/services/bot"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
	ExternalID  string `json:"external_id,omitempty"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
		ExternalID:  p.ExternalID,
		IsBot:       p.IsBot,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// Settings represents board settings
type Settings struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Mines      int    `json:"mines"`
	Difficulty string `json:"difficulty,omitempty"`
}

// SettingsFromModel converts model.Settings
func SettingsFromModel(s model.Settings) Settings {
	d, _ := s.Difficulty()
	return Settings{
		Width:      s.Width,
		Height:     s.Height,
		Mines:      s.Mines,
		Difficulty: string(d),
	}
}

// LobbyMember represents a lobby member
type LobbyMember struct {
	PlayerID    string  `json:"player_id"`
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role"`
	IsHost      bool    `json:"is_host"`
	IsBot       bool    `json:"is_bot"`
	GameID      *string `json:"game_id"`
}

// LobbyMemberFromModel converts model.LobbyMember
func LobbyMemberFromModel(l *model.Lobby, m model.LobbyMember) LobbyMember {
	var gameID *string
	if id, ok := l.GameFor(m.Player.ID); ok {
		g := string(id)
		gameID = &g
	}
	return LobbyMember{
		PlayerID:    string(m.Player.ID),
		DisplayName: m.Player.DisplayName,
		Role:        string(m.Role),
		IsHost:      m.IsHost,
		IsBot:       m.Player.IsBot,
		GameID:      gameID,
	}
}

// Lobby represents a lobby in API responses
type Lobby struct {
	Code     string        `json:"code"`
	Settings Settings      `json:"settings"`
	Members  []LobbyMember `json:"members"`
}

// LobbyFromModel converts model.Lobby
func LobbyFromModel(l *model.Lobby) Lobby {
	members := make([]LobbyMember, len(l.Members))
	for i, m := range l.Members {
		members[i] = LobbyMemberFromModel(l, m)
	}
	return Lobby{
		Code:     string(l.Code),
		Settings: SettingsFromModel(l.Settings),
		Members:  members,
	}
}

// Board represents a minefield as rows of cell symbols. Unopened cells
// hide their content until the game is over.
type Board struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Cells  [][]string `json:"cells"`
}

// BoardFromGame renders the game's board
func BoardFromGame(g *model.Game) Board {
	return Board{
		Width:  g.Board.Width,
		Height: g.Board.Height,
		Cells:  g.View(),
	}
}

// Game represents a player's game
type Game struct {
	ID             string     `json:"id"`
	LobbyCode      string     `json:"lobby_code"`
	PlayerID       string     `json:"player_id"`
	Status         string     `json:"status"`
	Settings       Settings   `json:"settings"`
	Board          Board      `json:"board"`
	OpenCount      int        `json:"open_count"`
	FlagCount      int        `json:"flag_count"`
	RemainingMines int        `json:"remaining_mines"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	StartedAt      *time.Time `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`
}

// GameFromModel converts model.Game; elapsed is the timer value as of now
func GameFromModel(g *model.Game, elapsed int) Game {
	return Game{
		ID:             string(g.ID),
		LobbyCode:      string(g.LobbyCode),
		PlayerID:       string(g.PlayerID),
		Status:         string(g.Status),
		Settings:       SettingsFromModel(g.Settings),
		Board:          BoardFromGame(g),
		OpenCount:      g.OpenCount,
		FlagCount:      g.FlagCount,
		RemainingMines: g.RemainingMines(),
		ElapsedSeconds: elapsed,
		StartedAt:      timePtr(g.StartedAt),
		EndedAt:        timePtr(g.EndedAt),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Position is a board coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// MoveResponse is the response after a reveal or flag request
type MoveResponse struct {
	Accepted bool       `json:"accepted"`
	Outcome  string     `json:"outcome,omitempty"`
	Changed  []Position `json:"changed"`
	Game     Game       `json:"game"`
}

// MoveResponseFromModel converts a move result and the game it applied to
func MoveResponseFromModel(r model.MoveResult, g *model.Game, elapsed int) MoveResponse {
	changed := make([]Position, len(r.Changed))
	for i, p := range r.Changed {
		changed[i] = Position{Row: p.Row, Col: p.Col}
	}
	return MoveResponse{
		Accepted: r.Accepted,
		Outcome:  string(r.Outcome),
		Changed:  changed,
		Game:     GameFromModel(g, elapsed),
	}
}

// BotMove is one move a bot made
type BotMove struct {
	Kind    string `json:"kind"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Outcome string `json:"outcome,omitempty"`
}

// BotGameResponse is the response after a bot played its board
type BotGameResponse struct {
	Moves []BotMove `json:"moves"`
	Game  Game      `json:"game"`
}

// BotGameResponseFromModel converts a bot's finished run
func BotGameResponseFromModel(actions []bot.BotAction, g *model.Game, elapsed int) BotGameResponse {
	moves := make([]BotMove, len(actions))
	for i, a := range actions {
		moves[i] = BotMove{
			Kind:    string(a.Kind),
			Row:     a.Position.Row,
			Col:     a.Position.Col,
			Outcome: string(a.Outcome),
		}
	}
	return BotGameResponse{
		Moves: moves,
		Game:  GameFromModel(g, elapsed),
	}
}

// ChatMessage represents a chat message
type ChatMessage struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sent_at"`
}

// ChatMessageFromModel converts model.ChatMessage
func ChatMessageFromModel(m *model.ChatMessage) ChatMessage {
	return ChatMessage{
		ID:          m.ID,
		PlayerID:    string(m.PlayerID),
		DisplayName: m.DisplayName,
		Text:        m.Text,
		SentAt:      m.SentAt,
	}
}

// ChatHistory is the response listing recent chat messages
type ChatHistory struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatHistoryFromModel converts a list of messages
func ChatHistoryFromModel(msgs []*model.ChatMessage) ChatHistory {
	out := make([]ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = ChatMessageFromModel(m)
	}
	return ChatHistory{Messages: out}
}
