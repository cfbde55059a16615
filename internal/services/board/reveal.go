package board

import "github.com/gamecenter/minesweeper/internal/model"

// RevealResult reports the outcome of a reveal and every cell it changed
type RevealResult struct {
	Outcome model.MoveOutcome
	Changed []model.Position
}

// Reveal opens the cell at pos.
//
// Hitting a mine opens every mine on the board. Otherwise the cell is
// opened and, if it has no adjacent mines, the reveal spreads to its closed
// unflagged neighbours. When only mines remain closed the board is cleared
// and every mine is flagged.
//
// The caller is responsible for game-state preconditions. A target that is
// out of bounds, already open or flagged yields an empty result.
func (s *Service) Reveal(board *model.Board, pos model.Position) RevealResult {
	target := board.Cell(pos)
	if target == nil || target.IsOpen || target.IsFlagged {
		return RevealResult{Outcome: model.OutcomeNone}
	}

	if target.IsMine {
		return RevealResult{
			Outcome: model.OutcomeHitMine,
			Changed: openAllMines(board, pos),
		}
	}

	changed := floodFill(board, pos)

	if board.ClosedCount() == board.MineCount() {
		changed = append(changed, flagAllMines(board)...)
		return RevealResult{Outcome: model.OutcomeCleared, Changed: changed}
	}
	return RevealResult{Outcome: model.OutcomeContinue, Changed: changed}
}

// floodFill opens start and spreads through zero-adjacency cells using an
// explicit stack, so recursion depth never grows with board size.
func floodFill(board *model.Board, start model.Position) []model.Position {
	var changed []model.Position
	stack := []model.Position{start}

	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cell := board.Cell(pos)
		if cell.IsOpen || cell.IsFlagged {
			continue
		}
		cell.IsOpen = true
		changed = append(changed, pos)

		if cell.AdjacentMines != 0 {
			continue
		}
		for _, n := range board.Neighbors(pos) {
			neighbor := board.Cell(n)
			if !neighbor.IsOpen && !neighbor.IsFlagged {
				stack = append(stack, n)
			}
		}
	}
	return changed
}

// openAllMines opens the detonated cell and every other mine, flagged or not
func openAllMines(board *model.Board, hit model.Position) []model.Position {
	board.Cell(hit).IsOpen = true
	changed := []model.Position{hit}
	for row := 0; row < board.Height; row++ {
		for col := 0; col < board.Width; col++ {
			pos := model.Position{Row: row, Col: col}
			cell := board.Cell(pos)
			if cell.IsMine && !cell.IsOpen {
				cell.IsOpen = true
				changed = append(changed, pos)
			}
		}
	}
	return changed
}

func flagAllMines(board *model.Board) []model.Position {
	var changed []model.Position
	for row := 0; row < board.Height; row++ {
		for col := 0; col < board.Width; col++ {
			pos := model.Position{Row: row, Col: col}
			cell := board.Cell(pos)
			if cell.IsMine && !cell.IsFlagged {
				cell.IsFlagged = true
				changed = append(changed, pos)
			}
		}
	}
	return changed
}
