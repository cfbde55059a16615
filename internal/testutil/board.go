package testutil

import "github.com/gamecenter/minesweeper/internal/model"

// BoardFromRows builds a board with mines placed where rows contain '*'.
// Adjacency counts are filled in so the board is ready to play.
func BoardFromRows(rows ...string) *model.Board {
	b := model.NewBoard(len(rows[0]), len(rows))
	for r, line := range rows {
		for c, ch := range line {
			b.Cells[r][c].IsMine = ch == '*'
		}
	}
	for r := range b.Cells {
		for c := range b.Cells[r] {
			pos := model.Position{Row: r, Col: c}
			for _, n := range b.Neighbors(pos) {
				if b.Cell(n).IsMine {
					b.Cells[r][c].AdjacentMines++
				}
			}
			if b.Cells[r][c].IsMine {
				b.Cells[r][c].AdjacentMines = 0
			}
		}
	}
	return b
}

// PlayingGame returns an in-progress game whose mines are already placed
func PlayingGame(id model.GameID, playerID model.PlayerID, rows ...string) *model.Game {
	b := BoardFromRows(rows...)
	return &model.Game{
		ID:            id,
		PlayerID:      playerID,
		Settings:      model.Settings{Width: b.Width, Height: b.Height, Mines: b.MineCount()},
		Board:         b,
		Status:        model.GameStatusInProgress,
		FirstMoveDone: true,
	}
}
