package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
)

const (
	lobbyContextKey  contextKey = "lobby"
	memberContextKey contextKey = "member"
)

// GetLobby retrieves the lobby loaded by RequireMember
func GetLobby(ctx context.Context) *model.Lobby {
	l, _ := ctx.Value(lobbyContextKey).(*model.Lobby)
	return l
}

// GetMember retrieves the requesting player's membership loaded by
// RequireMember
func GetMember(ctx context.Context) *model.LobbyMember {
	m, _ := ctx.Value(memberContextKey).(*model.LobbyMember)
	return m
}

// RequireMember returns middleware that loads the lobby named by the {code}
// route variable and rejects players who are not members of it. Requires
// auth middleware to be applied first.
func RequireMember(lobbyController lobby.ControllerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			player := GetPlayer(r.Context())
			if player == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			code := model.LobbyCode(mux.Vars(r)["code"])
			l, err := lobbyController.GetLobby(r.Context(), code)
			if err != nil {
				if errors.Is(err, model.ErrLobbyNotFound) {
					rejectMember(w, r, "Lobby not found", http.StatusNotFound)
					return
				}
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			member := l.GetMember(player.ID)
			if member == nil {
				rejectMember(w, r, "You are not in this lobby", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), lobbyContextKey, l)
			ctx = context.WithValue(ctx, memberContextKey, member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectMember sends full page requests home with a flash; fragment and
// stream requests get a plain status
func rejectMember(w http.ResponseWriter, r *http.Request, message string, status int) {
	if r.Method == http.MethodPost && !IsHTMX(r) {
		SetFlash(w, "error", message)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if IsHTMX(r) {
		SetFlash(w, "error", message)
		w.Header().Set("HX-Redirect", "/")
	}
	http.Error(w, message, status)
}
