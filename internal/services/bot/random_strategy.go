package bot

import (
	"github.com/gamecenter/minesweeper/internal/dependencies/random"
	"github.com/gamecenter/minesweeper/internal/model"
)

// RandomStrategy reveals a random closed cell every turn
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// NextMove picks a random closed, unflagged cell to reveal
func (s *RandomStrategy) NextMove(view [][]string) (Move, bool) {
	closed := closedCells(view)
	if len(closed) == 0 {
		return Move{}, false
	}
	return Move{Kind: model.MoveReveal, Position: closed[s.random.Intn(len(closed))]}, true
}
