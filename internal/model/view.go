package model

import "strconv"

// Cell symbols used by board views
const (
	SymbolClosed    = "."
	SymbolFlag      = "F"
	SymbolMine      = "*"
	SymbolWrongFlag = "x" // flagged cell that holds no mine, shown after a loss
)

// Symbol renders a cell for display. While a game is in progress only
// open cells show their content; once it is over (revealAll) every cell
// does.
func (c Cell) Symbol(revealAll bool) string {
	switch {
	case c.IsFlagged && revealAll && !c.IsMine:
		return SymbolWrongFlag
	case c.IsFlagged:
		return SymbolFlag
	case c.IsOpen && c.IsMine:
		return SymbolMine
	case c.IsOpen:
		return strconv.Itoa(c.AdjacentMines)
	case revealAll && c.IsMine:
		return SymbolMine
	case revealAll:
		return strconv.Itoa(c.AdjacentMines)
	default:
		return SymbolClosed
	}
}

// View renders the board row by row. Terminal games reveal every cell.
func (g *Game) View() [][]string {
	revealAll := g.Status.IsTerminal()
	rows := make([][]string, g.Board.Height)
	for r := range rows {
		rows[r] = make([]string, g.Board.Width)
		for c := range rows[r] {
			rows[r][c] = g.Board.Cells[r][c].Symbol(revealAll)
		}
	}
	return rows
}
