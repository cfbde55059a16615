package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gamecenter/minesweeper/internal/dependencies/mocks"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/board"
	"github.com/gamecenter/minesweeper/internal/storage/memory"
	"github.com/gamecenter/minesweeper/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	logs       *testutil.LogBuffer
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	logger, logs := testutil.CaptureLogger()
	s.logs = logs
	s.controller = NewController(s.storage, board.New(s.random), s.clock, s.random, logger)
	s.ctx = context.Background()
}

// seed stores a started game whose mines are already laid out
func (s *ControllerSuite) seed(rows ...string) *model.Game {
	game := testutil.PlayingGame("GAME1", "player-1", rows...)
	game.LobbyCode = "LOBBY1"
	game.StartedAt = s.clock.Now()
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	return game
}

// CreateGame tests

func (s *ControllerSuite) TestCreateGameSucceeds() {
	s.random.QueueString("GAME12345678")

	game, err := s.controller.CreateGame(s.ctx, "LOBBY1", "player-1", model.DefaultSettings())
	s.Require().NoError(err)

	s.Equal(model.GameID("GAME12345678"), game.ID)
	s.Equal(model.LobbyCode("LOBBY1"), game.LobbyCode)
	s.Equal(model.PlayerID("player-1"), game.PlayerID)
	s.Equal(model.GameStatusInProgress, game.Status)
	s.Equal(model.DefaultSettings(), game.Settings)
	s.Equal(0, game.Board.MineCount())

	stored, err := s.controller.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(game.Settings, stored.Settings)
	s.Contains(s.logs.String(), "game created")
}

func (s *ControllerSuite) TestCreateGameRejectsSingleCellBoard() {
	_, err := s.controller.CreateGame(s.ctx, "LOBBY1", "player-1", model.Settings{Width: 1, Height: 1, Mines: 1})
	s.ErrorIs(err, model.ErrInvalidSettings)
}

// Reveal tests

func (s *ControllerSuite) TestRevealPersistsBoard() {
	s.random.QueueString("GAME1")
	game, err := s.controller.CreateGame(s.ctx, "LOBBY1", "player-1", model.Settings{Width: 6, Height: 1, Mines: 2})
	s.Require().NoError(err)

	_, result, err := s.controller.Reveal(s.ctx, game.ID, "player-1", model.Position{Row: 0, Col: 0})
	s.Require().NoError(err)
	s.True(result.Accepted)

	stored, err := s.controller.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.True(stored.FirstMoveDone)
	s.Equal(2, stored.Board.MineCount())
	s.True(stored.Board.Cells[0][0].IsOpen)
	s.Equal(result.OpenCount, stored.OpenCount)
}

func (s *ControllerSuite) TestRevealByOtherPlayerRejected() {
	game := s.seed("*..", "...")

	_, _, err := s.controller.Reveal(s.ctx, game.ID, "player-2", model.Position{Row: 1, Col: 2})
	s.ErrorIs(err, model.ErrNotGameOwner)
}

func (s *ControllerSuite) TestRevealUnknownGame() {
	_, _, err := s.controller.Reveal(s.ctx, "NOPE", "player-1", model.Position{})
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestRevealPlacementExhaustedReturnsError() {
	s.random.QueueString("GAME1")
	game, err := s.controller.CreateGame(s.ctx, "LOBBY1", "player-1", model.Settings{Width: 3, Height: 3, Mines: 1})
	s.Require().NoError(err)

	_, _, err = s.controller.Reveal(s.ctx, game.ID, "player-1", model.Position{Row: 1, Col: 1})
	s.ErrorIs(err, model.ErrPlacementExhausted)

	stored, _ := s.controller.GetGame(s.ctx, game.ID)
	s.False(stored.FirstMoveDone)
	s.Equal(model.GameStatusInProgress, stored.Status)
}

func (s *ControllerSuite) TestIgnoredRevealDoesNotFireHooks() {
	game := s.seed("*..", "...")
	game.Board.Cells[1][2].IsOpen = true
	_ = s.storage.SaveGame(s.ctx, game)

	var moves int
	s.controller.OnMove(func(ctx context.Context, g *model.Game, kind model.MoveKind, pos model.Position, r model.MoveResult) {
		moves++
	})

	_, result, err := s.controller.Reveal(s.ctx, game.ID, "player-1", model.Position{Row: 1, Col: 2})
	s.Require().NoError(err)
	s.False(result.Accepted)
	s.Zero(moves)
}

// Hook tests

func (s *ControllerSuite) TestGameEndHookFiresOnceOnLoss() {
	game := s.seed("*..", "...")
	var results []model.GameResult
	s.controller.OnGameEnd(func(ctx context.Context, g *model.Game, r model.GameResult) {
		s.Equal(game.ID, g.ID)
		results = append(results, r)
	})

	s.clock.Advance(7 * time.Second)
	_, _, err := s.controller.Reveal(s.ctx, game.ID, "player-1", model.Position{Row: 0, Col: 0})
	s.Require().NoError(err)
	_, _, err = s.controller.Reveal(s.ctx, game.ID, "player-1", model.Position{Row: 1, Col: 2})
	s.Require().NoError(err)

	s.Equal([]model.GameResult{{Status: model.GameStatusLost, ElapsedSeconds: 7}}, results)
	s.Contains(s.logs.String(), "game finished")
}

func (s *ControllerSuite) TestMoveHookReceivesCopy() {
	game := s.seed("*..", "...")
	s.controller.OnMove(func(ctx context.Context, g *model.Game, kind model.MoveKind, pos model.Position, r model.MoveResult) {
		s.Equal(model.MoveFlag, kind)
		s.Equal(model.Position{Row: 0, Col: 0}, pos)
		// mutating the copy must not leak into storage
		g.Board.Cells[0][0].IsFlagged = false
	})

	_, result, err := s.controller.ToggleFlag(s.ctx, game.ID, "player-1", model.Position{Row: 0, Col: 0})
	s.Require().NoError(err)
	s.True(result.Accepted)

	stored, _ := s.controller.GetGame(s.ctx, game.ID)
	s.True(stored.Board.Cells[0][0].IsFlagged)
	s.Equal(1, stored.FlagCount)
}

func (s *ControllerSuite) TestWinFiresGameEnd() {
	game := s.seed("*.", "..")
	var won bool
	s.controller.OnGameEnd(func(ctx context.Context, g *model.Game, r model.GameResult) {
		won = r.Status == model.GameStatusWon
	})

	for _, p := range []model.Position{{Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}} {
		_, _, err := s.controller.Reveal(s.ctx, game.ID, "player-1", p)
		s.Require().NoError(err)
	}

	s.True(won)
	stored, _ := s.controller.GetGame(s.ctx, game.ID)
	s.Equal(model.GameStatusWon, stored.Status)
	s.True(stored.Board.Cells[0][0].IsFlagged)
}

func (s *ControllerSuite) TestConcurrentRevealsAreSerialized() {
	game := s.seed(
		"......",
		"......",
		"......",
		".....*",
	)
	var ends int
	var mu sync.Mutex
	s.controller.OnGameEnd(func(ctx context.Context, g *model.Game, r model.GameResult) {
		mu.Lock()
		ends++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.controller.Reveal(s.ctx, game.ID, "player-1", model.Position{Row: 0, Col: 0})
		}()
	}
	wg.Wait()

	s.Equal(1, ends)
	stored, _ := s.controller.GetGame(s.ctx, game.ID)
	s.Equal(model.GameStatusWon, stored.Status)
}

// ResetGame tests

func (s *ControllerSuite) TestResetGameStartsOver() {
	game := s.seed("*..", "...")
	_, _, _ = s.controller.Reveal(s.ctx, game.ID, "player-1", model.Position{Row: 0, Col: 0})

	reset, err := s.controller.ResetGame(s.ctx, game.ID, "player-1", model.Settings{Width: 16, Height: 16, Mines: 40})
	s.Require().NoError(err)

	s.Equal(game.ID, reset.ID)
	s.Equal(model.GameStatusInProgress, reset.Status)
	s.Equal(16, reset.Board.Width)
	s.False(reset.FirstMoveDone)
	s.Equal(0, s.controller.ElapsedSeconds(reset))
}

func (s *ControllerSuite) TestResetGameOtherPlayerRejected() {
	game := s.seed("*..", "...")

	_, err := s.controller.ResetGame(s.ctx, game.ID, "player-2", model.DefaultSettings())
	s.ErrorIs(err, model.ErrNotGameOwner)
}

func (s *ControllerSuite) TestStartHookFiresOnCreateAndReset() {
	var started []model.GameID
	s.controller.OnGameStart(func(ctx context.Context, g *model.Game) {
		started = append(started, g.ID)
	})
	s.random.QueueString("GAME1")

	game, err := s.controller.CreateGame(s.ctx, "LOBBY1", "player-1", model.DefaultSettings())
	s.Require().NoError(err)
	_, err = s.controller.ResetGame(s.ctx, game.ID, "player-1", model.DefaultSettings())
	s.Require().NoError(err)

	s.Equal([]model.GameID{"GAME1", "GAME1"}, started)
}

// AbandonGame tests

func (s *ControllerSuite) TestAbandonGame() {
	game := s.seed("*..", "...")

	s.Require().NoError(s.controller.AbandonGame(s.ctx, game.ID))

	stored, _ := s.controller.GetGame(s.ctx, game.ID)
	s.Equal(model.GameStatusAbandoned, stored.Status)
	s.False(stored.EndedAt.IsZero())

	_, result, err := s.controller.Reveal(s.ctx, game.ID, "player-1", model.Position{Row: 1, Col: 2})
	s.Require().NoError(err)
	s.False(result.Accepted)
}

func (s *ControllerSuite) TestAbandonFinishedGameIsNoop() {
	game := s.seed("*..", "...")
	_, _, _ = s.controller.Reveal(s.ctx, game.ID, "player-1", model.Position{Row: 0, Col: 0})

	s.Require().NoError(s.controller.AbandonGame(s.ctx, game.ID))

	stored, _ := s.controller.GetGame(s.ctx, game.ID)
	s.Equal(model.GameStatusLost, stored.Status)
}

func (s *ControllerSuite) TestDeleteGame() {
	game := s.seed("*..", "...")

	s.Require().NoError(s.controller.DeleteGame(s.ctx, game.ID))

	_, err := s.controller.GetGame(s.ctx, game.ID)
	s.ErrorIs(err, model.ErrGameNotFound)
}
