package board

import "github.com/gamecenter/minesweeper/internal/model"

// ToggleFlag flips the flag on a closed cell and reports the new flag
// state. Open or out-of-bounds cells are left alone and changed is false.
func (s *Service) ToggleFlag(board *model.Board, pos model.Position) (flagged bool, changed bool) {
	cell := board.Cell(pos)
	if cell == nil || cell.IsOpen {
		return false, false
	}
	cell.IsFlagged = !cell.IsFlagged
	return cell.IsFlagged, true
}
