package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gamecenter/minesweeper/internal/dependencies/mocks"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/board"
	"github.com/gamecenter/minesweeper/internal/testutil"
)

type SessionSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	boards  *board.Service
	results []model.GameResult
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.boards = board.New(s.random)
	s.results = nil
}

func (s *SessionSuite) newSession(game *model.Game) *Session {
	return NewSession(game, s.boards, s.clock, func(r model.GameResult) {
		s.results = append(s.results, r)
	})
}

func (s *SessionSuite) started(settings model.Settings) *Session {
	session := s.newSession(&model.Game{ID: "g1"})
	s.Require().NoError(session.StartOrReset(settings))
	return session
}

func at(row, col int) model.Position {
	return model.Position{Row: row, Col: col}
}

// StartOrReset tests

func (s *SessionSuite) TestStartOrResetBuildsEmptyBoard() {
	session := s.started(model.Settings{Width: 9, Height: 9, Mines: 10})
	g := session.Game()

	s.Equal(model.GameStatusInProgress, g.Status)
	s.Equal(9, g.Board.Width)
	s.Equal(9, g.Board.Height)
	s.Equal(0, g.Board.MineCount())
	s.False(g.FirstMoveDone)
	s.Equal(0, session.ElapsedSeconds())
}

func (s *SessionSuite) TestStartOrResetClampsSettings() {
	cases := []struct {
		in, out model.Settings
	}{
		{model.Settings{Width: 0, Height: -3, Mines: 0}, model.Settings{Width: 1, Height: 1, Mines: 1}},
		{model.Settings{Width: 3, Height: 3, Mines: 9}, model.Settings{Width: 3, Height: 3, Mines: 8}},
		{model.Settings{Width: 4, Height: 4, Mines: -1}, model.Settings{Width: 4, Height: 4, Mines: 1}},
	}
	for _, tc := range cases {
		session := s.newSession(&model.Game{})
		err := session.StartOrReset(tc.in)
		if tc.out.Cells() < 2 {
			s.ErrorIs(err, model.ErrInvalidSettings)
			continue
		}
		s.Require().NoError(err)
		s.Equal(tc.out, session.Game().Settings)
	}
}

func (s *SessionSuite) TestStartOrResetReplacesFinishedGame() {
	game := testutil.PlayingGame("g1", "p1",
		"*..",
		"...",
	)
	session := s.newSession(game)
	_, _ = session.RequestReveal(at(0, 0))
	s.Require().Equal(model.GameStatusLost, game.Status)
	oldBoard := game.Board

	s.Require().NoError(session.StartOrReset(model.Settings{Width: 5, Height: 5, Mines: 3}))

	s.Equal(model.GameStatusInProgress, game.Status)
	s.NotSame(oldBoard, game.Board)
	s.Equal(0, game.OpenCount)
	s.Equal(0, game.FlagCount)
	s.True(game.StartedAt.IsZero())
	s.True(game.EndedAt.IsZero())
}

// RequestReveal tests

func (s *SessionSuite) TestFirstRevealPlacesMinesOutsideSafeZone() {
	session := s.started(model.Settings{Width: 9, Height: 9, Mines: 10})

	result, err := session.RequestReveal(at(4, 4))
	s.Require().NoError(err)

	g := session.Game()
	s.True(result.Accepted)
	s.True(g.FirstMoveDone)
	s.Equal(10, g.Board.MineCount())
	s.False(g.Board.Cell(at(4, 4)).IsMine)
	for _, n := range g.Board.Neighbors(at(4, 4)) {
		s.False(g.Board.Cell(n).IsMine)
	}
	s.Equal(g.Board.OpenCount(), g.OpenCount)
}

func (s *SessionSuite) TestFirstRevealCascadeWins() {
	session := s.started(model.Settings{Width: 5, Height: 5, Mines: 1})
	s.random.QueueIntn(20) // last eligible cell, (4,4)

	result, err := session.RequestReveal(at(0, 0))
	s.Require().NoError(err)

	s.Equal(model.OutcomeCleared, result.Outcome)
	s.Equal(model.GameStatusWon, result.Status)
	s.Equal(24, result.OpenCount)
	s.True(session.Game().Board.Cell(at(4, 4)).IsFlagged)
	s.Equal([]model.GameResult{{Status: model.GameStatusWon, ElapsedSeconds: 0}}, s.results)
}

func (s *SessionSuite) TestRevealMineLoses() {
	game := testutil.PlayingGame("g1", "p1",
		"...",
		".*.",
		"...",
	)
	session := s.newSession(game)

	result, err := session.RequestReveal(at(1, 1))
	s.Require().NoError(err)

	s.Equal(model.OutcomeHitMine, result.Outcome)
	s.Equal(model.GameStatusLost, game.Status)
	s.True(game.Board.Cell(at(1, 1)).IsOpen)
	s.Len(s.results, 1)
	s.Equal(model.GameStatusLost, s.results[0].Status)
}

func (s *SessionSuite) TestPlacementExhaustionLeavesGameUntouched() {
	session := s.started(model.Settings{Width: 3, Height: 3, Mines: 1})

	result, err := session.RequestReveal(at(1, 1))

	s.ErrorIs(err, model.ErrPlacementExhausted)
	s.False(result.Accepted)
	g := session.Game()
	s.False(g.FirstMoveDone)
	s.Equal(0, g.Board.OpenCount())
	s.Equal(0, g.Board.MineCount())
	s.True(g.StartedAt.IsZero())
	s.Equal(model.GameStatusInProgress, g.Status)
}

func (s *SessionSuite) TestRevealIgnoredCases() {
	game := testutil.PlayingGame("g1", "p1",
		"*...",
		"....",
	)
	game.Board.Cell(at(1, 1)).IsOpen = true
	game.Board.Cell(at(0, 3)).IsFlagged = true
	game.FlagCount = 1
	session := s.newSession(game)
	before := game.Board.Clone()

	for _, p := range []model.Position{at(1, 1), at(0, 3), at(2, 0), at(0, -1)} {
		result, err := session.RequestReveal(p)
		s.Require().NoError(err)
		s.False(result.Accepted, "position %v", p)
		s.Empty(result.Changed)
	}
	s.Equal(before, game.Board)
	s.Empty(s.results)
}

func (s *SessionSuite) TestNoMutationAfterTerminalStatus() {
	game := testutil.PlayingGame("g1", "p1",
		"*..",
		"...",
	)
	session := s.newSession(game)
	_, _ = session.RequestReveal(at(0, 0))
	before := game.Board.Clone()

	result, err := session.RequestReveal(at(1, 2))
	s.Require().NoError(err)
	s.False(result.Accepted)

	flag := session.RequestToggleFlag(at(1, 2))
	s.False(flag.Accepted)

	s.Equal(before, game.Board)
	s.Len(s.results, 1, "game-end notification fires exactly once")
}

// RequestToggleFlag tests

func (s *SessionSuite) TestToggleFlagAdjustsCount() {
	session := s.started(model.Settings{Width: 5, Height: 5, Mines: 3})

	result := session.RequestToggleFlag(at(0, 0))
	s.True(result.Accepted)
	s.Equal(1, result.FlagCount)
	s.Equal([]model.Position{at(0, 0)}, result.Changed)

	result = session.RequestToggleFlag(at(0, 0))
	s.True(result.Accepted)
	s.Equal(0, result.FlagCount)
}

func (s *SessionSuite) TestToggleFlagOnOpenCellIgnored() {
	game := testutil.PlayingGame("g1", "p1",
		"*..",
		"...",
	)
	game.Board.Cell(at(1, 2)).IsOpen = true
	session := s.newSession(game)

	result := session.RequestToggleFlag(at(1, 2))

	s.False(result.Accepted)
	s.False(game.Board.Cell(at(1, 2)).IsFlagged)
	s.Equal(0, game.FlagCount)
}

func (s *SessionSuite) TestFlagBlocksRevealUntilRemoved() {
	game := testutil.PlayingGame("g1", "p1",
		"....",
		"....",
		"...*",
	)
	session := s.newSession(game)

	session.RequestToggleFlag(at(0, 0))
	result, err := session.RequestReveal(at(0, 0))
	s.Require().NoError(err)
	s.False(result.Accepted)
	s.False(game.Board.Cell(at(0, 0)).IsOpen)

	session.RequestToggleFlag(at(0, 0))
	result, err = session.RequestReveal(at(0, 0))
	s.Require().NoError(err)
	s.True(result.Accepted)
	s.True(game.Board.Cell(at(0, 0)).IsOpen)
}

func (s *SessionSuite) TestFlagsDoNotAffectWin() {
	game := testutil.PlayingGame("g1", "p1",
		"*.",
		"..",
	)
	session := s.newSession(game)
	// wrong flag on a safe cell, then clear the rest
	session.RequestToggleFlag(at(1, 1))
	session.RequestToggleFlag(at(1, 1))
	_, _ = session.RequestReveal(at(0, 1))
	_, _ = session.RequestReveal(at(1, 0))
	result, err := session.RequestReveal(at(1, 1))
	s.Require().NoError(err)

	s.Equal(model.GameStatusWon, result.Status)
	s.Equal(1, result.FlagCount, "mine auto-flagged on win")
}

// Timer tests

func (s *SessionSuite) TestTimerRunsFromFirstRevealAndFreezes() {
	// zero draws put the mines at (0,2) and (0,3)
	session := s.started(model.Settings{Width: 6, Height: 1, Mines: 2})
	s.clock.Advance(30 * time.Second)
	s.Equal(0, session.ElapsedSeconds(), "timer idle before first reveal")

	result, err := session.RequestReveal(at(0, 0))
	s.Require().NoError(err)
	s.Require().Equal(model.OutcomeContinue, result.Outcome)
	s.clock.Advance(2500 * time.Millisecond)
	s.Equal(2, session.ElapsedSeconds())

	s.clock.Advance(500 * time.Millisecond)
	_, err = session.RequestReveal(at(0, 2))
	s.Require().NoError(err)
	s.Equal(model.GameStatusLost, session.Game().Status)
	s.Equal(3, s.results[0].ElapsedSeconds)

	s.clock.Advance(time.Minute)
	s.Equal(3, session.ElapsedSeconds())
}
