package model

// Position identifies a cell on the board
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// Cell is a single square of the minefield
type Cell struct {
	IsMine        bool // fixed after mine placement
	IsOpen        bool // monotonic: never closes again
	IsFlagged     bool // only meaningful while closed
	AdjacentMines int  // 0..8, fixed after mine placement
}

// Board is the rectangular minefield for a single game
type Board struct {
	Width  int
	Height int
	Cells  [][]Cell // Row-major: Cells[row][col]
}

// NewBoard creates a board of the given dimensions with every cell closed
// and no mines placed.
func NewBoard(width, height int) *Board {
	cells := make([][]Cell, height)
	for i := range cells {
		cells[i] = make([]Cell, width)
	}
	return &Board{
		Width:  width,
		Height: height,
		Cells:  cells,
	}
}

// IsValidPosition returns true if the position is within bounds
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.Height && pos.Col >= 0 && pos.Col < b.Width
}

// Cell returns a pointer to the cell at pos, or nil when out of bounds
func (b *Board) Cell(pos Position) *Cell {
	if !b.IsValidPosition(pos) {
		return nil
	}
	return &b.Cells[pos.Row][pos.Col]
}

// Neighbors returns the in-bounds positions of the 8-neighborhood of pos,
// excluding pos itself.
func (b *Board) Neighbors(pos Position) []Position {
	neighbors := make([]Position, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Position{Row: pos.Row + dr, Col: pos.Col + dc}
			if b.IsValidPosition(n) {
				neighbors = append(neighbors, n)
			}
		}
	}
	return neighbors
}

// Size returns the total number of cells
func (b *Board) Size() int {
	return b.Width * b.Height
}

// MineCount returns the number of cells holding a mine
func (b *Board) MineCount() int {
	return b.count(func(c *Cell) bool { return c.IsMine })
}

// OpenCount returns the number of opened cells
func (b *Board) OpenCount() int {
	return b.count(func(c *Cell) bool { return c.IsOpen })
}

// ClosedCount returns the number of cells not yet opened
func (b *Board) ClosedCount() int {
	return b.Size() - b.OpenCount()
}

// FlagCount returns the number of flagged cells
func (b *Board) FlagCount() int {
	return b.count(func(c *Cell) bool { return c.IsFlagged })
}

func (b *Board) count(match func(c *Cell) bool) int {
	n := 0
	for row := range b.Cells {
		for col := range b.Cells[row] {
			if match(&b.Cells[row][col]) {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	clone := &Board{
		Width:  b.Width,
		Height: b.Height,
		Cells:  make([][]Cell, len(b.Cells)),
	}
	for i, row := range b.Cells {
		clone.Cells[i] = make([]Cell, len(row))
		copy(clone.Cells[i], row)
	}
	return clone
}
