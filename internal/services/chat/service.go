package chat

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/gamecenter/minesweeper/internal/dependencies/clock"
	"github.com/gamecenter/minesweeper/internal/dependencies/random"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/storage"
)

const (
	messageIDLength   = 10
	messageIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// PostHook is called after a message is stored
type PostHook func(ctx context.Context, msg *model.ChatMessage)

// Service stores lobby chat messages
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	hooks []PostHook
}

// New creates a new chat Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// OnPost registers a hook for new messages. Not safe to call concurrently
// with Post; register hooks during wiring.
func (s *Service) OnPost(hook PostHook) {
	s.hooks = append(s.hooks, hook)
}

// Post adds a message from a lobby member to the lobby's chat
func (s *Service) Post(ctx context.Context, code model.LobbyCode, player model.Player, text string) (*model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > model.MaxChatMessageLength {
		return nil, model.ErrMessageTooLong
	}

	lobby, err := s.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}
	if lobby.GetMember(player.ID) == nil {
		return nil, model.ErrNotInLobby
	}

	msg := &model.ChatMessage{
		ID:          s.random.String(messageIDLength, messageIDAlphabet),
		LobbyCode:   code,
		PlayerID:    player.ID,
		DisplayName: player.DisplayName,
		Text:        text,
		SentAt:      s.clock.Now(),
	}

	if err := s.storage.AppendChatMessage(ctx, msg); err != nil {
		s.logger.Error("failed to store chat message",
			slog.String("lobby_code", string(code)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	for _, hook := range s.hooks {
		hook(ctx, msg)
	}
	return msg, nil
}

// History returns the recent messages of a lobby, oldest first
func (s *Service) History(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) ([]*model.ChatMessage, error) {
	lobby, err := s.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}
	if lobby.GetMember(requestingPlayer) == nil {
		return nil, model.ErrNotInLobby
	}
	return s.storage.GetChatMessages(ctx, code)
}
