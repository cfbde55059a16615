package cli

import (
	"github.com/spf13/cobra"

	"github.com/gamecenter/minesweeper/internal/api/request"
)

// settingsFlags binds the board settings flags shared by lobby and game
// commands
type settingsFlags struct {
	difficulty string
	width      int
	height     int
	mines      int
}

func addSettingsFlags(cmd *cobra.Command, f *settingsFlags) {
	cmd.Flags().StringVar(&f.difficulty, "difficulty", "", "Preset: easy, medium or hard")
	cmd.Flags().IntVar(&f.width, "width", 0, "Custom board width")
	cmd.Flags().IntVar(&f.height, "height", 0, "Custom board height")
	cmd.Flags().IntVar(&f.mines, "mines", 0, "Custom mine count")
	cmd.MarkFlagsMutuallyExclusive("difficulty", "width")
	cmd.MarkFlagsMutuallyExclusive("difficulty", "height")
	cmd.MarkFlagsMutuallyExclusive("difficulty", "mines")
	cmd.MarkFlagsRequiredTogether("width", "height", "mines")
}

// request returns nil when no settings flag was given
func (f *settingsFlags) request() *request.Settings {
	s := &request.Settings{
		Difficulty: f.difficulty,
		Width:      f.width,
		Height:     f.height,
		Mines:      f.mines,
	}
	if s.IsZero() {
		return nil
	}
	return s
}
