package board

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/gamecenter/minesweeper/internal/dependencies/mocks"
	"github.com/gamecenter/minesweeper/internal/dependencies/random"
	"github.com/gamecenter/minesweeper/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.service = New(s.random)
}

// boardFromRows builds a board from rows where '*' is a mine and any other
// rune is an empty cell, then computes adjacency.
func boardFromRows(rows ...string) *model.Board {
	b := model.NewBoard(len(rows[0]), len(rows))
	for r, line := range rows {
		for c, ch := range line {
			if ch == '*' {
				b.Cells[r][c].IsMine = true
			}
		}
	}
	computeAdjacency(b)
	return b
}

func pos(row, col int) model.Position {
	return model.Position{Row: row, Col: col}
}

// NewEmptyBoard tests

func (s *ServiceSuite) TestNewEmptyBoardHasClosedCells() {
	b := s.service.NewEmptyBoard(4, 3)

	s.Equal(4, b.Width)
	s.Equal(3, b.Height)
	s.Len(b.Cells, 3)
	for _, row := range b.Cells {
		s.Len(row, 4)
		for _, cell := range row {
			s.Equal(model.Cell{}, cell)
		}
	}
}

// PlaceMines tests

func (s *ServiceSuite) TestPlaceMinesPlacesExactCount() {
	cases := []struct {
		width, height, mines int
		safe                 model.Position
	}{
		{9, 9, 10, pos(4, 4)},
		{16, 16, 40, pos(0, 0)},
		{30, 16, 99, pos(15, 29)},
		{5, 5, 16, pos(2, 2)},
		{4, 1, 2, pos(0, 0)},
	}
	svc := New(random.New())
	for _, tc := range cases {
		for i := 0; i < 20; i++ {
			b := svc.NewEmptyBoard(tc.width, tc.height)
			s.Require().NoError(svc.PlaceMines(b, tc.mines, tc.safe))
			s.Equal(tc.mines, b.MineCount(), "%dx%d/%d", tc.width, tc.height, tc.mines)
		}
	}
}

func (s *ServiceSuite) TestPlaceMinesKeepsSafeZoneClear() {
	svc := New(random.New())
	safes := []model.Position{pos(0, 0), pos(0, 8), pos(8, 0), pos(8, 8), pos(4, 4), pos(0, 4)}
	for _, safe := range safes {
		for i := 0; i < 20; i++ {
			b := svc.NewEmptyBoard(9, 9)
			s.Require().NoError(svc.PlaceMines(b, 30, safe))

			s.False(b.Cell(safe).IsMine)
			for _, n := range b.Neighbors(safe) {
				s.False(b.Cell(n).IsMine, "neighbor %v of safe cell %v is a mine", n, safe)
			}
		}
	}
}

func (s *ServiceSuite) TestPlaceMinesFillsEligibleCellsInOrderWithZeroDraws() {
	b := s.service.NewEmptyBoard(4, 4)

	s.Require().NoError(s.service.PlaceMines(b, 3, pos(0, 0)))

	// Row 0 minus the safe zone is (0,2), (0,3); then (1,2).
	s.True(b.Cell(pos(0, 2)).IsMine)
	s.True(b.Cell(pos(0, 3)).IsMine)
	s.True(b.Cell(pos(1, 2)).IsMine)
	s.Equal(3, b.MineCount())
}

func (s *ServiceSuite) TestPlaceMinesDrawsFromShrinkingRange() {
	b := s.service.NewEmptyBoard(5, 5)

	s.Require().NoError(s.service.PlaceMines(b, 3, pos(2, 2)))

	// 25 cells minus a full 3x3 safe zone leaves 16 candidates
	s.Equal([]int{16, 15, 14}, s.random.IntnCalls())
}

func (s *ServiceSuite) TestPlaceMinesComputesAdjacency() {
	b := s.service.NewEmptyBoard(5, 5)
	s.Require().NoError(s.service.PlaceMines(b, 4, pos(2, 2)))

	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			p := pos(row, col)
			if b.Cell(p).IsMine {
				continue
			}
			expected := 0
			for _, n := range b.Neighbors(p) {
				if b.Cell(n).IsMine {
					expected++
				}
			}
			s.Equal(expected, b.Cell(p).AdjacentMines, "cell %v", p)
		}
	}
}

func (s *ServiceSuite) TestPlaceMinesExhaustedLeavesBoardUntouched() {
	b := s.service.NewEmptyBoard(3, 3)

	err := s.service.PlaceMines(b, 1, pos(1, 1))

	s.ErrorIs(err, model.ErrPlacementExhausted)
	s.Equal(0, b.MineCount())
	s.Empty(s.random.IntnCalls())
}

func (s *ServiceSuite) TestPlaceMinesCornerSafeZoneIsClipped() {
	b := s.service.NewEmptyBoard(3, 3)

	// corner safe zone covers 4 cells, leaving 5
	s.Require().NoError(s.service.PlaceMines(b, 5, pos(0, 0)))
	s.Equal(5, b.MineCount())

	b = s.service.NewEmptyBoard(3, 3)
	s.ErrorIs(s.service.PlaceMines(b, 6, pos(0, 0)), model.ErrPlacementExhausted)
}

// Adjacency tests

func (s *ServiceSuite) TestAdjacencyCenterMine() {
	b := boardFromRows(
		"...",
		".*.",
		"...",
	)
	for _, n := range b.Neighbors(pos(1, 1)) {
		s.Equal(1, b.Cell(n).AdjacentMines, "cell %v", n)
	}
	s.Equal(0, b.Cell(pos(1, 1)).AdjacentMines)
}

func (s *ServiceSuite) TestAdjacencyClipsAtEdges() {
	b := boardFromRows(
		"*.*",
		"...",
		"*.*",
	)
	s.Equal(4, b.Cell(pos(1, 1)).AdjacentMines)
	s.Equal(2, b.Cell(pos(0, 1)).AdjacentMines)
	s.Equal(2, b.Cell(pos(1, 0)).AdjacentMines)
}

// Reveal tests

func (s *ServiceSuite) TestRevealScenarioCascadeWinsBoard() {
	b := s.service.NewEmptyBoard(5, 5)
	// 21 eligible cells around safe (0,0); index 20 is (4,4)
	s.random.QueueIntn(20)
	s.Require().NoError(s.service.PlaceMines(b, 1, pos(0, 0)))
	s.Require().True(b.Cell(pos(4, 4)).IsMine)

	result := s.service.Reveal(b, pos(0, 0))

	s.Equal(model.OutcomeCleared, result.Outcome)
	s.Equal(24, b.OpenCount())
	s.False(b.Cell(pos(4, 4)).IsOpen)
	s.True(b.Cell(pos(4, 4)).IsFlagged)
	s.Len(result.Changed, 25) // 24 opened plus the auto-flagged mine
}

func (s *ServiceSuite) TestRevealScenarioMineLoses() {
	b := boardFromRows(
		"...",
		".*.",
		"...",
	)

	result := s.service.Reveal(b, pos(1, 1))

	s.Equal(model.OutcomeHitMine, result.Outcome)
	s.True(b.Cell(pos(1, 1)).IsOpen)
	s.Equal([]model.Position{pos(1, 1)}, result.Changed)
	// Safe cells stay closed; only mines are opened on a loss
	s.Equal(1, b.OpenCount())
	s.False(b.Cell(pos(0, 0)).IsOpen)
}

func (s *ServiceSuite) TestRevealMineOpensAllMinesIgnoringFlags() {
	b := boardFromRows(
		"*...",
		"....",
		"...*",
	)
	b.Cell(pos(2, 3)).IsFlagged = true

	result := s.service.Reveal(b, pos(0, 0))

	s.Equal(model.OutcomeHitMine, result.Outcome)
	s.True(b.Cell(pos(0, 0)).IsOpen)
	s.True(b.Cell(pos(2, 3)).IsOpen)
	s.Equal(2, b.OpenCount())
	s.ElementsMatch([]model.Position{pos(0, 0), pos(2, 3)}, result.Changed)
}

func (s *ServiceSuite) TestRevealNumberedCellDoesNotCascade() {
	b := boardFromRows(
		"*...",
		"....",
		"....",
	)

	result := s.service.Reveal(b, pos(1, 1))

	s.Equal(model.OutcomeContinue, result.Outcome)
	s.Equal([]model.Position{pos(1, 1)}, result.Changed)
	s.Equal(1, b.OpenCount())
}

func (s *ServiceSuite) TestRevealOpensZeroRegionAndBorder() {
	b := boardFromRows(
		"..*..",
		"..*..",
		"..*..",
	)

	result := s.service.Reveal(b, pos(1, 0))

	s.Equal(model.OutcomeContinue, result.Outcome)
	// columns 0 and 1 open; column 1 is the numbered border
	for row := 0; row < 3; row++ {
		s.True(b.Cell(pos(row, 0)).IsOpen)
		s.True(b.Cell(pos(row, 1)).IsOpen)
		s.False(b.Cell(pos(row, 3)).IsOpen)
		s.False(b.Cell(pos(row, 4)).IsOpen)
	}
	s.Len(result.Changed, 6)
}

func (s *ServiceSuite) TestRevealDoesNotExpandThroughFlag() {
	b := boardFromRows(
		".....",
		".....",
		"....*",
	)
	b.Cell(pos(0, 2)).IsFlagged = true

	s.service.Reveal(b, pos(0, 0))

	s.False(b.Cell(pos(0, 2)).IsOpen)
	s.True(b.Cell(pos(0, 2)).IsFlagged)
	// the region is still reachable around the flag
	s.True(b.Cell(pos(0, 3)).IsOpen)
}

func (s *ServiceSuite) TestRevealIgnoresOpenFlaggedAndOutOfBounds() {
	b := boardFromRows(
		"*..",
		"...",
		"...",
	)
	b.Cell(pos(1, 1)).IsOpen = true
	b.Cell(pos(0, 1)).IsFlagged = true
	before := b.Clone()

	for _, p := range []model.Position{pos(1, 1), pos(0, 1), pos(-1, 0), pos(3, 3)} {
		result := s.service.Reveal(b, p)
		s.Equal(model.OutcomeNone, result.Outcome)
		s.Empty(result.Changed)
	}
	s.Equal(before, b)
}

func (s *ServiceSuite) TestRevealLastSafeCellWinsAndFlagsMines() {
	b := boardFromRows(
		"*.",
		"..",
	)
	b.Cell(pos(0, 1)).IsOpen = true
	b.Cell(pos(1, 0)).IsOpen = true

	result := s.service.Reveal(b, pos(1, 1))

	s.Equal(model.OutcomeCleared, result.Outcome)
	s.True(b.Cell(pos(0, 0)).IsFlagged)
	s.False(b.Cell(pos(0, 0)).IsOpen)
}

func (s *ServiceSuite) TestRevealLargeOpenBoardTerminates() {
	b := model.NewBoard(200, 200)
	b.Cells[199][199].IsMine = true
	computeAdjacency(b)

	result := s.service.Reveal(b, pos(0, 0))

	s.Equal(model.OutcomeCleared, result.Outcome)
	s.Equal(200*200-1, b.OpenCount())
}

func (s *ServiceSuite) TestRevealNeverOpensCellTwice() {
	b := boardFromRows(
		"......",
		"......",
		"......",
		".....*",
	)

	result := s.service.Reveal(b, pos(0, 0))

	seen := make(map[model.Position]bool)
	for _, p := range result.Changed {
		if b.Cell(p).IsMine {
			continue // auto-flag entry
		}
		s.False(seen[p], "cell %v reported twice", p)
		seen[p] = true
	}
	s.Len(seen, b.OpenCount())
}

// ToggleFlag tests

func (s *ServiceSuite) TestToggleFlagFlipsClosedCell() {
	b := s.service.NewEmptyBoard(3, 3)

	flagged, changed := s.service.ToggleFlag(b, pos(0, 0))
	s.True(flagged)
	s.True(changed)
	s.True(b.Cell(pos(0, 0)).IsFlagged)

	flagged, changed = s.service.ToggleFlag(b, pos(0, 0))
	s.False(flagged)
	s.True(changed)
	s.False(b.Cell(pos(0, 0)).IsFlagged)
}

func (s *ServiceSuite) TestToggleFlagIgnoresOpenCell() {
	b := s.service.NewEmptyBoard(3, 3)
	b.Cell(pos(1, 1)).IsOpen = true

	_, changed := s.service.ToggleFlag(b, pos(1, 1))

	s.False(changed)
	s.False(b.Cell(pos(1, 1)).IsFlagged)
}

func (s *ServiceSuite) TestToggleFlagIgnoresOutOfBounds() {
	b := s.service.NewEmptyBoard(3, 3)

	_, changed := s.service.ToggleFlag(b, pos(5, 5))

	s.False(changed)
}

func (s *ServiceSuite) TestFlagThenRevealScenario() {
	b := boardFromRows(
		"...",
		"...",
		"..*",
	)

	s.service.ToggleFlag(b, pos(0, 0))
	result := s.service.Reveal(b, pos(0, 0))
	s.Equal(model.OutcomeNone, result.Outcome)
	s.False(b.Cell(pos(0, 0)).IsOpen)

	s.service.ToggleFlag(b, pos(0, 0))
	result = s.service.Reveal(b, pos(0, 0))
	s.NotEqual(model.OutcomeNone, result.Outcome)
	s.True(b.Cell(pos(0, 0)).IsOpen)
}
