package bot

import (
	"github.com/gamecenter/minesweeper/internal/dependencies/random"
	"github.com/gamecenter/minesweeper/internal/model"
)

// LogicStrategy plays the way a careful human does: it opens the centre
// first, then applies single-cell deductions around every number and only
// guesses when nothing can be deduced.
type LogicStrategy struct {
	fallback *RandomStrategy
}

// NewLogicStrategy creates a new LogicStrategy. rnd drives the guesses.
func NewLogicStrategy(rnd random.Random) *LogicStrategy {
	return &LogicStrategy{fallback: NewRandomStrategy(rnd)}
}

// NextMove returns a deduced move, or a random reveal when stuck
func (s *LogicStrategy) NextMove(view [][]string) (Move, bool) {
	if len(view) == 0 || len(view[0]) == 0 {
		return Move{}, false
	}

	if !anyOpen(view) {
		centre := model.Position{Row: len(view) / 2, Col: len(view[0]) / 2}
		if view[centre.Row][centre.Col] == model.SymbolClosed {
			return Move{Kind: model.MoveReveal, Position: centre}, true
		}
	}

	if move, ok := deduce(view); ok {
		return move, true
	}
	return s.fallback.NextMove(view)
}

// deduce looks for a number whose remaining mines are already all flagged
// (its other neighbours are safe) or whose closed neighbours must all be
// mines (they can be flagged).
func deduce(view [][]string) (Move, bool) {
	for row := range view {
		for col, symbol := range view[row] {
			n, ok := clue(symbol)
			if !ok || n == 0 {
				continue
			}

			pos := model.Position{Row: row, Col: col}
			var closed []model.Position
			flagged := 0
			for _, nb := range neighbors(view, pos) {
				switch view[nb.Row][nb.Col] {
				case model.SymbolClosed:
					closed = append(closed, nb)
				case model.SymbolFlag:
					flagged++
				}
			}
			if len(closed) == 0 {
				continue
			}

			if flagged == n {
				return Move{Kind: model.MoveReveal, Position: closed[0]}, true
			}
			if flagged+len(closed) == n {
				return Move{Kind: model.MoveFlag, Position: closed[0]}, true
			}
		}
	}
	return Move{}, false
}

func anyOpen(view [][]string) bool {
	for row := range view {
		for _, symbol := range view[row] {
			if _, ok := clue(symbol); ok {
				return true
			}
		}
	}
	return false
}
