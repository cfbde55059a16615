package model

import "fmt"

// Settings describes the dimensions and mine count of a minefield
type Settings struct {
	Width  int
	Height int
	Mines  int
}

// Difficulty names a settings preset
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Bounds enforced by the lobby settings editor. The engine itself accepts
// any board of at least 1x2.
const (
	MinBoardDimension = 5
	MaxBoardDimension = 30
	MaxMineRatio      = 0.35
)

var presets = map[Difficulty]Settings{
	DifficultyEasy:   {Width: 9, Height: 9, Mines: 10},
	DifficultyMedium: {Width: 16, Height: 16, Mines: 40},
	DifficultyHard:   {Width: 30, Height: 16, Mines: 99},
}

// DefaultSettings returns the settings used for new lobbies
func DefaultSettings() Settings {
	return presets[DifficultyEasy]
}

// PresetSettings returns the settings for a named difficulty
func PresetSettings(d Difficulty) (Settings, bool) {
	s, ok := presets[d]
	return s, ok
}

// Difficulties returns the preset names ordered from easiest to hardest
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// Cells returns the total number of cells
func (s Settings) Cells() int {
	return s.Width * s.Height
}

// MaxMines returns the largest mine count the settings editor allows
func (s Settings) MaxMines() int {
	return int(float64(s.Cells()) * MaxMineRatio)
}

// Difficulty returns the preset these settings match, if any
func (s Settings) Difficulty() (Difficulty, bool) {
	for _, d := range Difficulties() {
		if presets[d] == s {
			return d, true
		}
	}
	return "", false
}

// Clamp coerces the settings into a shape the engine can play: dimensions
// of at least one cell and a mine count between 1 and cells-1.
func (s Settings) Clamp() Settings {
	if s.Width < 1 {
		s.Width = 1
	}
	if s.Height < 1 {
		s.Height = 1
	}
	if s.Mines < 1 {
		s.Mines = 1
	}
	if s.Mines >= s.Cells() {
		s.Mines = s.Cells() - 1
	}
	return s
}

// ValidateForEditor checks the settings against the editor bounds
func (s Settings) ValidateForEditor() error {
	if s.Width < MinBoardDimension || s.Width > MaxBoardDimension {
		return fmt.Errorf("%w: width must be between %d and %d", ErrInvalidSettings, MinBoardDimension, MaxBoardDimension)
	}
	if s.Height < MinBoardDimension || s.Height > MaxBoardDimension {
		return fmt.Errorf("%w: height must be between %d and %d", ErrInvalidSettings, MinBoardDimension, MaxBoardDimension)
	}
	if s.Mines < 1 || s.Mines > s.MaxMines() {
		return fmt.Errorf("%w: mines must be between 1 and %d", ErrInvalidSettings, s.MaxMines())
	}
	return nil
}

func (s Settings) String() string {
	return fmt.Sprintf("%dx%d/%d", s.Width, s.Height, s.Mines)
}
