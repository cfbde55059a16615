package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gamecenter/minesweeper/internal/middleware"
)

// Logging creates request logging middleware for the web interface. Event
// streams are logged once they close.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "web")))
}

// Metrics reports web requests to observer. A nil observer disables it.
func Metrics(observer middleware.RequestObserver) func(http.Handler) http.Handler {
	if observer == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.Metrics(observer)
}
