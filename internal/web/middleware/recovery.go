package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gamecenter/minesweeper/internal/middleware"
	"github.com/gamecenter/minesweeper/internal/web/templates/layout"
)

// Recovery creates panic recovery middleware for the web interface
// Returns an HTML error page on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	if IsHTMX(r) {
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	page := layout.ServerError(layout.PageData{Title: "Error", Embedded: IsEmbedded(r.Context())})
	_ = page.Render(r.Context(), w)
}
