package components

import (
	"fmt"

	"github.com/gamecenter/minesweeper/internal/model"
)

// DifficultyCustom selects the free-form width, height and mine fields
const DifficultyCustom = "custom"

// SettingsData is the lobby's board settings panel
type SettingsData struct {
	LobbyCode model.LobbyCode
	Settings  model.Settings
	Editable  bool
}

// SettingsSummary describes settings in one line, e.g. "9x9, 10 mines (easy)"
func SettingsSummary(s model.Settings) string {
	summary := fmt.Sprintf("%dx%d, %d mines", s.Width, s.Height, s.Mines)
	if d, ok := s.Difficulty(); ok {
		summary += " (" + string(d) + ")"
	}
	return summary
}

func selectedDifficulty(current model.Settings) string {
	if d, ok := current.Difficulty(); ok {
		return string(d)
	}
	return DifficultyCustom
}

func presetLabel(d model.Difficulty) string {
	preset, _ := model.PresetSettings(d)
	return string(d) + " (" + preset.String() + ")"
}

// maxEditorMines is the mine cap of the largest board the editor allows
func maxEditorMines() int {
	return model.Settings{Width: model.MaxBoardDimension, Height: model.MaxBoardDimension}.MaxMines()
}
