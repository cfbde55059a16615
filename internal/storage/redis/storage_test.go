package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GuestPlayerTTL = time.Hour
	cfg.LobbyTTL = time.Hour
	cfg.GameTTL = time.Hour
	cfg.ChatTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "player-1",
		DisplayName: "Alice",
		ExternalID:  "host-42",
		CreatedAt:   time.Now(),
	}

	err := s.storage.SavePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.DisplayName, retrieved.DisplayName)
	s.Equal("host-42", retrieved.ExternalID)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGuestPlayerTTL() {
	guestPlayer := &model.Player{ID: "guest-1", IsGuest: true}
	registeredPlayer := &model.Player{ID: "registered-1", IsGuest: false}

	_ = s.storage.SavePlayer(s.ctx, guestPlayer)
	_ = s.storage.SavePlayer(s.ctx, registeredPlayer)

	guestTTL := s.mini.TTL(playerKey(guestPlayer.ID))
	registeredTTL := s.mini.TTL(playerKey(registeredPlayer.ID))

	s.True(guestTTL > 0, "Guest player should have TTL")
	s.Equal(time.Duration(0), registeredTTL, "Registered player should not have TTL")
}

// Registered player tests

func (s *StorageSuite) TestGetRegisteredPlayerByUsername() {
	rp := &model.RegisteredPlayer{PlayerID: "player-1", Username: "alice", PasswordHash: "hash"}
	s.Require().NoError(s.storage.SaveRegisteredPlayer(s.ctx, rp))

	retrieved, err := s.storage.GetRegisteredPlayerByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.PlayerID)

	_, err = s.storage.GetRegisteredPlayerByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Lobby tests

func (s *StorageSuite) TestSaveAndGetLobby() {
	lobby := &model.Lobby{
		Code:     "ABC123",
		Settings: model.Settings{Width: 16, Height: 16, Mines: 40},
		Members: []model.LobbyMember{
			{Player: model.Player{ID: "p1", DisplayName: "Alice"}, Role: model.RolePlayer, IsHost: true},
		},
		Games: map[model.PlayerID]model.GameID{"p1": "game-1"},
	}

	s.Require().NoError(s.storage.SaveLobby(s.ctx, lobby))

	retrieved, err := s.storage.GetLobby(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(lobby.Settings, retrieved.Settings)
	s.Require().Len(retrieved.Members, 1)
	s.True(retrieved.Members[0].IsHost)
	s.Equal(model.GameID("game-1"), retrieved.Games["p1"])
}

func (s *StorageSuite) TestGetLobbyNotFound() {
	_, err := s.storage.GetLobby(s.ctx, "NONEXISTENT")
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

func (s *StorageSuite) TestLobbyExistsAndTTL() {
	_ = s.storage.SaveLobby(s.ctx, &model.Lobby{Code: "ABC123"})

	exists, err := s.storage.LobbyExists(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.True(exists)
	s.True(s.mini.TTL(lobbyKey("ABC123")) > 0, "Lobby should have TTL")

	s.Require().NoError(s.storage.DeleteLobby(s.ctx, "ABC123"))
	exists, err = s.storage.LobbyExists(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.False(exists)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGameRoundTripsBoard() {
	board := model.NewBoard(4, 3)
	board.Cells[0][1].IsMine = true
	board.Cells[2][3].IsOpen = true
	board.Cells[1][1].IsFlagged = true
	board.Cells[1][0].AdjacentMines = 1
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	game := &model.Game{
		ID:            "game-1",
		LobbyCode:     "ABC123",
		PlayerID:      "p1",
		Settings:      model.Settings{Width: 4, Height: 3, Mines: 1},
		Board:         board,
		Status:        model.GameStatusInProgress,
		OpenCount:     1,
		FlagCount:     1,
		FirstMoveDone: true,
		StartedAt:     started,
	}

	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(board, retrieved.Board)
	s.True(retrieved.FirstMoveDone)
	s.True(started.Equal(retrieved.StartedAt))
	s.True(retrieved.EndedAt.IsZero())
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGameTTL() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-1", Status: model.GameStatusInProgress})

	s.True(s.mini.TTL(gameKey("game-1")) > 0, "Game should have TTL")
}

func (s *StorageSuite) TestDeleteGame() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-1"})

	s.Require().NoError(s.storage.DeleteGame(s.ctx, "game-1"))

	_, err := s.storage.GetGame(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Chat tests

func (s *StorageSuite) TestChatMessagesKeepOrder() {
	sent := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.storage.AppendChatMessage(s.ctx, &model.ChatMessage{
			ID:        fmt.Sprintf("m%d", i),
			LobbyCode: "ABC123",
			PlayerID:  "p1",
			Text:      fmt.Sprintf("hello %d", i),
			SentAt:    sent,
		}))
	}

	messages, err := s.storage.GetChatMessages(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Require().Len(messages, 3)
	s.Equal("hello 0", messages[0].Text)
	s.Equal("hello 2", messages[2].Text)
	s.True(s.mini.TTL(chatKey("ABC123")) > 0, "Chat should have TTL")
}

func (s *StorageSuite) TestChatHistoryIsCapped() {
	for i := 0; i < storage.ChatHistoryLimit+5; i++ {
		_ = s.storage.AppendChatMessage(s.ctx, &model.ChatMessage{ID: fmt.Sprintf("m%d", i), LobbyCode: "ABC123"})
	}

	messages, err := s.storage.GetChatMessages(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Len(messages, storage.ChatHistoryLimit)
	s.Equal("m5", messages[0].ID)
}

func (s *StorageSuite) TestGetChatMessagesEmpty() {
	messages, err := s.storage.GetChatMessages(s.ctx, "NOPE")
	s.Require().NoError(err)
	s.Empty(messages)
}

func (s *StorageSuite) TestDeleteChatMessages() {
	_ = s.storage.AppendChatMessage(s.ctx, &model.ChatMessage{ID: "m1", LobbyCode: "ABC123"})

	s.Require().NoError(s.storage.DeleteChatMessages(s.ctx, "ABC123"))

	s.False(s.mini.Exists(chatKey("ABC123")))
}
