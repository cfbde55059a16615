package layout

import "github.com/gamecenter/minesweeper/internal/model"

// FlashMessage is a one-shot notice shown on the next page load
type FlashMessage struct {
	Type    string // success, error, info
	Message string
}

// PageData is shared by every full page
type PageData struct {
	Title  string
	Player *model.Player
	Flash  *FlashMessage
	// Embedded pages drop the navigation bar for display inside the host
	// game center's iframe
	Embedded bool
}
