package sse

import (
	"context"
	"log/slog"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/chat"
	"github.com/gamecenter/minesweeper/internal/services/game"
)

// Broadcaster turns game, chat and lobby changes into hub events. Lobbies
// without a hub have no subscribers and their events are skipped.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "broadcaster")),
	}
}

// Attach subscribes the broadcaster to game and chat hooks
func (b *Broadcaster) Attach(games game.ControllerInterface, chats *chat.Service) {
	games.OnGameStart(b.onGameStart)
	games.OnMove(b.onMove)
	games.OnGameEnd(b.onGameEnd)
	if chats != nil {
		chats.OnPost(b.onChatMessage)
	}
}

func (b *Broadcaster) onGameStart(ctx context.Context, g *model.Game) {
	b.publish(g.LobbyCode, model.EventGameStarted, model.GameStartedPayload{
		PlayerID: g.PlayerID,
		Width:    g.Settings.Width,
		Height:   g.Settings.Height,
		Mines:    g.Settings.Mines,
	})
}

func (b *Broadcaster) onMove(ctx context.Context, g *model.Game, kind model.MoveKind, pos model.Position, result model.MoveResult) {
	switch kind {
	case model.MoveReveal:
		b.publish(g.LobbyCode, model.EventCellOpened, model.CellOpenedPayload{
			PlayerID: g.PlayerID,
			Row:      pos.Row,
			Col:      pos.Col,
			Opened:   len(result.Changed),
			Outcome:  result.Outcome,
		})
	case model.MoveFlag:
		flagged := false
		if cell := g.Board.Cell(pos); cell != nil {
			flagged = cell.IsFlagged
		}
		b.publish(g.LobbyCode, model.EventFlagToggled, model.FlagToggledPayload{
			PlayerID:  g.PlayerID,
			Row:       pos.Row,
			Col:       pos.Col,
			IsFlagged: flagged,
		})
	}
}

func (b *Broadcaster) onGameEnd(ctx context.Context, g *model.Game, result model.GameResult) {
	b.publish(g.LobbyCode, model.EventGameResult, model.GameResultPayload{
		PlayerID:       g.PlayerID,
		Status:         result.Status,
		ElapsedSeconds: result.ElapsedSeconds,
	})
}

func (b *Broadcaster) onChatMessage(ctx context.Context, msg *model.ChatMessage) {
	b.publish(msg.LobbyCode, model.EventMessage, msg)
}

// BroadcastMemberUpdate sends the lobby's member list to all clients
func (b *Broadcaster) BroadcastMemberUpdate(lobby *model.Lobby) {
	b.publish(lobby.Code, model.EventMemberUpdate, model.NewMemberUpdatePayload(lobby))
}

// BroadcastRefresh tells all clients to reload lobby state
func (b *Broadcaster) BroadcastRefresh(lobbyCode model.LobbyCode) {
	b.publish(lobbyCode, model.EventRefresh, map[string]string{"lobby_code": string(lobbyCode)})
}

// CloseLobby disconnects every client of a lobby that no longer exists
func (b *Broadcaster) CloseLobby(lobbyCode model.LobbyCode) {
	b.hubManager.RemoveHub(lobbyCode)
}

func (b *Broadcaster) publish(lobbyCode model.LobbyCode, event string, payload any) {
	hub := b.hubManager.GetHub(lobbyCode)
	if hub == nil {
		return
	}
	b.logger.Debug("publishing event",
		slog.String("lobby", string(lobbyCode)),
		slog.String("event", event))
	hub.Publish(event, payload)
}
