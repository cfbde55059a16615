package pages

import (
	"net/url"

	"github.com/gamecenter/minesweeper/internal/web/templates/layout"
)

// HomeData is the landing page
type HomeData struct {
	layout.PageData
	Next string // where to go after joining as a guest
}

func loginHref(next string) string {
	if next == "" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}
