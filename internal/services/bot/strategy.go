package bot

import (
	"strconv"

	"github.com/gamecenter/minesweeper/internal/model"
)

// Move is a single action chosen by a strategy
type Move struct {
	Kind     model.MoveKind
	Position model.Position
}

// Strategy chooses the next move for a bot. view is the board as the
// player sees it (model.Game.View of an in-progress game), so a strategy
// never learns where the mines are. ok is false when no move is left.
type Strategy interface {
	NextMove(view [][]string) (move Move, ok bool)
}

// Strategy names accepted when adding a bot
const (
	StrategyRandom = "random"
	StrategyLogic  = "logic"

	DefaultStrategy = StrategyLogic
)

// closedCells lists the closed, unflagged cells of a view in row-major order
func closedCells(view [][]string) []model.Position {
	var closed []model.Position
	for row := range view {
		for col, symbol := range view[row] {
			if symbol == model.SymbolClosed {
				closed = append(closed, model.Position{Row: row, Col: col})
			}
		}
	}
	return closed
}

// clue returns the adjacency count shown by an open cell
func clue(symbol string) (int, bool) {
	n, err := strconv.Atoi(symbol)
	if err != nil {
		return 0, false
	}
	return n, true
}

func neighbors(view [][]string, pos model.Position) []model.Position {
	b := model.Board{Height: len(view)}
	if b.Height > 0 {
		b.Width = len(view[0])
	}
	return b.Neighbors(pos)
}
