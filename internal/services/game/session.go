package game

import (
	"fmt"
	"time"

	"github.com/gamecenter/minesweeper/internal/dependencies/clock"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/board"
)

// EndFunc receives the game-end notification
type EndFunc func(result model.GameResult)

// Session is the state machine for a single game. It owns the game's board
// and is not safe for concurrent use; callers serialize access.
//
// Requests that do not apply in the current state (revealing an open cell,
// flagging after the game ended) are ignored and reported as not accepted
// rather than returned as errors.
type Session struct {
	game   *model.Game
	boards board.ServiceInterface
	clock  clock.Clock
	onEnd  EndFunc
}

// NewSession wraps an existing game. onEnd may be nil.
func NewSession(game *model.Game, boards board.ServiceInterface, clock clock.Clock, onEnd EndFunc) *Session {
	return &Session{
		game:   game,
		boards: boards,
		clock:  clock,
		onEnd:  onEnd,
	}
}

// Game returns the game the session operates on
func (s *Session) Game() *model.Game {
	return s.game
}

// StartOrReset replaces the board with an empty one and resets the game to
// in progress. Out-of-range settings are clamped; a board too small to hold
// a mine and a safe cell is rejected.
func (s *Session) StartOrReset(settings model.Settings) error {
	clamped := settings.Clamp()
	if clamped.Cells() < 2 {
		return fmt.Errorf("%w: %dx%d board cannot hold a mine", model.ErrInvalidSettings, clamped.Width, clamped.Height)
	}

	g := s.game
	g.Settings = clamped
	g.Board = s.boards.NewEmptyBoard(clamped.Width, clamped.Height)
	g.Status = model.GameStatusInProgress
	g.OpenCount = 0
	g.FlagCount = 0
	g.FirstMoveDone = false
	g.StartedAt = time.Time{}
	g.EndedAt = time.Time{}
	g.UpdatedAt = s.clock.Now()
	return nil
}

// RequestReveal opens the cell at pos. The first accepted reveal places the
// mines around pos and starts the timer.
//
// The only error is ErrPlacementExhausted from the first reveal, in which
// case the game is left exactly as it was.
func (s *Session) RequestReveal(pos model.Position) (model.MoveResult, error) {
	g := s.game
	cell := g.Board.Cell(pos)
	if g.Status != model.GameStatusInProgress || cell == nil || cell.IsOpen || cell.IsFlagged {
		return s.ignored(), nil
	}

	now := s.clock.Now()
	if !g.FirstMoveDone {
		if err := s.boards.PlaceMines(g.Board, g.Settings.Mines, pos); err != nil {
			return s.ignored(), err
		}
		g.FirstMoveDone = true
		g.StartedAt = now
	}

	revealed := s.boards.Reveal(g.Board, pos)
	g.OpenCount = g.Board.OpenCount()
	g.FlagCount = g.Board.FlagCount()
	g.UpdatedAt = now

	switch revealed.Outcome {
	case model.OutcomeHitMine:
		s.finish(model.GameStatusLost, now)
	case model.OutcomeCleared:
		s.finish(model.GameStatusWon, now)
	}

	return model.MoveResult{
		Accepted:  true,
		Outcome:   revealed.Outcome,
		Changed:   revealed.Changed,
		Status:    g.Status,
		OpenCount: g.OpenCount,
		FlagCount: g.FlagCount,
	}, nil
}

// RequestToggleFlag flips the flag on a closed cell
func (s *Session) RequestToggleFlag(pos model.Position) model.MoveResult {
	g := s.game
	if g.Status != model.GameStatusInProgress {
		return s.ignored()
	}

	flagged, changed := s.boards.ToggleFlag(g.Board, pos)
	if !changed {
		return s.ignored()
	}
	if flagged {
		g.FlagCount++
	} else {
		g.FlagCount--
	}
	g.UpdatedAt = s.clock.Now()

	return model.MoveResult{
		Accepted:  true,
		Outcome:   model.OutcomeNone,
		Changed:   []model.Position{pos},
		Status:    g.Status,
		OpenCount: g.OpenCount,
		FlagCount: g.FlagCount,
	}
}

// ElapsedSeconds returns the timer value as of now
func (s *Session) ElapsedSeconds() int {
	return s.game.ElapsedSeconds(s.clock.Now())
}

// finish performs the terminal transition. The status check above every
// caller guarantees it runs at most once per game.
func (s *Session) finish(status model.GameStatus, now time.Time) {
	s.game.Status = status
	s.game.EndedAt = now
	if s.onEnd != nil {
		s.onEnd(model.GameResult{
			Status:         status,
			ElapsedSeconds: s.game.ElapsedSeconds(now),
		})
	}
}

func (s *Session) ignored() model.MoveResult {
	return model.MoveResult{
		Accepted:  false,
		Outcome:   model.OutcomeNone,
		Status:    s.game.Status,
		OpenCount: s.game.OpenCount,
		FlagCount: s.game.FlagCount,
	}
}
