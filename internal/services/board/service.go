package board

import (
	"github.com/gamecenter/minesweeper/internal/dependencies/random"
	"github.com/gamecenter/minesweeper/internal/model"
)

// Service provides the minefield engine: generation, reveal and flagging.
// It holds no board state of its own; every operation mutates the board it
// is given.
type Service struct {
	random random.Random
}

// New creates a new board Service
func New(random random.Random) *Service {
	return &Service{
		random: random,
	}
}

// NewEmptyBoard creates a closed, mine-free board
func (s *Service) NewEmptyBoard(width, height int) *model.Board {
	return model.NewBoard(width, height)
}

// Interface for dependency injection
type ServiceInterface interface {
	NewEmptyBoard(width, height int) *model.Board
	PlaceMines(board *model.Board, mines int, safe model.Position) error
	Reveal(board *model.Board, pos model.Position) RevealResult
	ToggleFlag(board *model.Board, pos model.Position) (flagged bool, changed bool)
}

var _ ServiceInterface = (*Service)(nil)
