package pages

import (
	"github.com/gamecenter/minesweeper/internal/web/templates/components"
	"github.com/gamecenter/minesweeper/internal/web/templates/layout"
)

// WatchData is a single member's board followed live
type WatchData struct {
	layout.PageData
	Board components.BoardData
}
