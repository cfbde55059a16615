package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/auth"
)

type contextKey string

const (
	playerContextKey   contextKey = "player"
	embeddedContextKey contextKey = "embedded"
)

// Cookie names shared with the auth handlers
const (
	SessionCookieName  = "session"
	EmbeddedCookieName = "embedded"
)

// GetPlayer retrieves the authenticated player from the request context
// Returns nil if no player is authenticated
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// IsEmbedded reports whether the request comes from a page shown inside the
// host game center
func IsEmbedded(ctx context.Context) bool {
	embedded, _ := ctx.Value(embeddedContextKey).(bool)
	return embedded
}

// Auth returns middleware that requires authentication
// Redirects to home page if not authenticated
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			player := getPlayerFromSession(r, authService)
			if player == nil {
				// Store original URL to redirect back after auth
				redirectURL := "/?next=" + url.QueryEscape(r.URL.Path)
				if IsHTMX(r) {
					w.Header().Set("HX-Redirect", redirectURL)
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, redirectURL, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(withPlayer(r, player)))
		})
	}
}

// OptionalAuth returns middleware that attempts authentication but doesn't require it
// Sets player in context if authenticated, nil otherwise
func OptionalAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			player := getPlayerFromSession(r, authService)
			next.ServeHTTP(w, r.WithContext(withPlayer(r, player)))
		})
	}
}

// IsHTMX reports whether the request was issued by htmx
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func withPlayer(r *http.Request, player *model.Player) context.Context {
	ctx := context.WithValue(r.Context(), playerContextKey, player)
	if c, err := r.Cookie(EmbeddedCookieName); err == nil && c.Value == "1" {
		ctx = context.WithValue(ctx, embeddedContextKey, true)
	}
	return ctx
}

func getPlayerFromSession(r *http.Request, authService *auth.Service) *model.Player {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	player, err := authService.GetPlayer(cookie.Value)
	if err != nil {
		return nil
	}

	return player
}
