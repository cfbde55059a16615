package board

import (
	"fmt"

	"github.com/gamecenter/minesweeper/internal/model"
)

// PlaceMines places exactly mines mines on an unmined board, uniformly at
// random among the cells outside the 3x3 safe zone centred on safe. The
// safe zone is clipped at the board edges. Adjacency counts are recomputed
// afterwards.
//
// If there are fewer eligible cells than mines the board is left untouched
// and ErrPlacementExhausted is returned.
func (s *Service) PlaceMines(board *model.Board, mines int, safe model.Position) error {
	candidates := eligibleCells(board, safe)
	if mines > len(candidates) {
		return fmt.Errorf("%w: %d mines requested, %d cells available", model.ErrPlacementExhausted, mines, len(candidates))
	}

	// Partial Fisher-Yates: the first `mines` entries become a uniform sample.
	for i := 0; i < mines; i++ {
		j := i + s.random.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
		board.Cell(candidates[i]).IsMine = true
	}

	computeAdjacency(board)
	return nil
}

// eligibleCells returns every position outside the safe zone in row-major order
func eligibleCells(board *model.Board, safe model.Position) []model.Position {
	cells := make([]model.Position, 0, board.Size())
	for row := 0; row < board.Height; row++ {
		for col := 0; col < board.Width; col++ {
			if inSafeZone(safe, row, col) {
				continue
			}
			cells = append(cells, model.Position{Row: row, Col: col})
		}
	}
	return cells
}

func inSafeZone(safe model.Position, row, col int) bool {
	return abs(row-safe.Row) <= 1 && abs(col-safe.Col) <= 1
}

func computeAdjacency(board *model.Board) {
	for row := 0; row < board.Height; row++ {
		for col := 0; col < board.Width; col++ {
			pos := model.Position{Row: row, Col: col}
			cell := board.Cell(pos)
			if cell.IsMine {
				cell.AdjacentMines = 0
				continue
			}
			count := 0
			for _, n := range board.Neighbors(pos) {
				if board.Cell(n).IsMine {
					count++
				}
			}
			cell.AdjacentMines = count
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
