package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/auth"
	"github.com/gamecenter/minesweeper/internal/services/game"
	"github.com/gamecenter/minesweeper/internal/web/middleware"
	"github.com/gamecenter/minesweeper/internal/web/templates/components"
	"github.com/gamecenter/minesweeper/internal/web/templates/layout"
)

// pageData collects the per-request layout state
func pageData(r *http.Request, title string) layout.PageData {
	return layout.PageData{
		Title:    title,
		Player:   middleware.GetPlayer(r.Context()),
		Flash:    middleware.GetFlash(r.Context()),
		Embedded: middleware.IsEmbedded(r.Context()),
	}
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = c.Render(r.Context(), w)
}

// redirect navigates to target, via HX-Redirect for htmx requests
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if middleware.IsHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// fail flashes message and sends the browser to target
func fail(w http.ResponseWriter, r *http.Request, target, message string) {
	middleware.SetFlash(w, "error", message)
	redirect(w, r, target)
}

// safeNext accepts only same-site relative paths
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}

func lobbyPath(code model.LobbyCode) string {
	return "/lobby/" + string(code)
}

// describe turns a domain error into a message a player can act on
func describe(err error) string {
	switch {
	case errors.Is(err, model.ErrLobbyNotFound):
		return "Lobby not found"
	case errors.Is(err, model.ErrGameNotFound):
		return "No game to show"
	case errors.Is(err, model.ErrAlreadyInLobby):
		return "You are already in this lobby"
	case errors.Is(err, model.ErrNotInLobby):
		return "You are not in this lobby"
	case errors.Is(err, model.ErrNotHost):
		return "Only the host can do that"
	case errors.Is(err, model.ErrNotPlayerRole):
		return "Spectators cannot play; switch to player first"
	case errors.Is(err, model.ErrNotGameOwner):
		return "That is not your board"
	case errors.Is(err, model.ErrInvalidSettings):
		return "Invalid board settings: " + strings.TrimPrefix(err.Error(), model.ErrInvalidSettings.Error()+": ")
	case errors.Is(err, model.ErrPlacementExhausted):
		return "The board is too crowded to keep the first click safe; use fewer mines"
	case errors.Is(err, model.ErrNotBot):
		return "That player is not a bot"
	case errors.Is(err, model.ErrBotCannotHost):
		return "Bots cannot host a lobby"
	case errors.Is(err, model.ErrUnknownBotStrategy):
		return "Unknown bot strategy"
	case errors.Is(err, model.ErrEmptyMessage):
		return "Message is empty"
	case errors.Is(err, model.ErrMessageTooLong):
		return "Message is too long"
	case errors.Is(err, auth.ErrInvalidEmbedToken), errors.Is(err, auth.ErrEmbedDisabled):
		return "This game link is invalid or has expired"
	default:
		return "Something went wrong"
	}
}

// parseSettings reads a settings form: a preset difficulty, or
// difficulty=custom with explicit width, height and mines. Bounds are
// checked by the lobby controller.
func parseSettings(r *http.Request) (model.Settings, error) {
	difficulty := r.FormValue("difficulty")
	if difficulty != "" && difficulty != components.DifficultyCustom {
		preset, ok := model.PresetSettings(model.Difficulty(difficulty))
		if !ok {
			return model.Settings{}, fmt.Errorf("%w: unknown difficulty %q", model.ErrInvalidSettings, difficulty)
		}
		return preset, nil
	}

	var s model.Settings
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"width", &s.Width},
		{"height", &s.Height},
		{"mines", &s.Mines},
	} {
		n, err := strconv.Atoi(strings.TrimSpace(r.FormValue(f.name)))
		if err != nil {
			return model.Settings{}, fmt.Errorf("%w: %s must be a number", model.ErrInvalidSettings, f.name)
		}
		*f.dst = n
	}
	return s, nil
}

// lobbyGames loads every game in the lobby, skipping ones that expired
func lobbyGames(ctx context.Context, games game.ControllerInterface, l *model.Lobby) map[model.PlayerID]*model.Game {
	out := make(map[model.PlayerID]*model.Game, len(l.Games))
	for playerID, gameID := range l.Games {
		g, err := games.GetGame(ctx, gameID)
		if err != nil {
			continue
		}
		out[playerID] = g
	}
	return out
}

func statuses(games map[model.PlayerID]*model.Game) map[model.PlayerID]model.GameStatus {
	out := make(map[model.PlayerID]model.GameStatus, len(games))
	for playerID, g := range games {
		out[playerID] = g.Status
	}
	return out
}
