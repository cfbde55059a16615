package components

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/gamecenter/minesweeper/internal/model"
)

// BoardData is a rendered minefield plus its status bar
type BoardData struct {
	LobbyCode model.LobbyCode
	Game      *model.Game
	Elapsed   int
	OwnerName string
	// Interactive boards belong to the viewer and accept moves
	Interactive bool
}

// BoardID returns the DOM id of a board section
func BoardID(data BoardData) string {
	if data.Interactive {
		return "my-board"
	}
	return "board-" + string(data.Game.PlayerID)
}

// LobbyPath joins path segments under a lobby's page
func LobbyPath(code model.LobbyCode, parts ...string) string {
	path := "/lobby/" + string(code)
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

func playable(data BoardData) bool {
	return data.Interactive && !data.Game.Status.IsTerminal()
}

// watchAttributes makes a watched board reload on lobby move events
func watchAttributes(data BoardData) templ.Attributes {
	if data.Interactive {
		return templ.Attributes{}
	}
	return templ.Attributes{
		"hx-get":     LobbyPath(data.LobbyCode, "games", string(data.Game.PlayerID), "board"),
		"hx-trigger": "sse:cell-opened, sse:flag-toggled, sse:game-started, sse:game-result",
		"hx-swap":    "outerHTML",
	}
}

func timerRunning(g *model.Game) bool {
	return !g.StartedAt.IsZero() && !g.Status.IsTerminal()
}

func cellValue(r, c int) string {
	return strconv.Itoa(r) + ":" + strconv.Itoa(c)
}

func cellLabel(r, c int) string {
	return "row " + strconv.Itoa(r+1) + ", column " + strconv.Itoa(c+1)
}

// StatusText describes a game status to the viewer
func StatusText(status model.GameStatus, own bool) string {
	switch status {
	case model.GameStatusWon:
		if own {
			return "You cleared the field!"
		}
		return "Cleared"
	case model.GameStatusLost:
		if own {
			return "Boom! You hit a mine."
		}
		return "Hit a mine"
	case model.GameStatusAbandoned:
		return "Abandoned"
	default:
		return "Playing"
	}
}

func cellClass(cell model.Cell, symbol string) string {
	switch symbol {
	case model.SymbolClosed:
		return "cell closed"
	case model.SymbolFlag:
		return "cell flagged"
	case model.SymbolWrongFlag:
		return "cell wrong-flag"
	case model.SymbolMine:
		if cell.IsOpen {
			return "cell mine exploded"
		}
		return "cell mine"
	}
	if !cell.IsOpen {
		return "cell revealed n" + symbol
	}
	return "cell open n" + symbol
}

func glyph(symbol string) string {
	switch symbol {
	case model.SymbolClosed, "0":
		return ""
	case model.SymbolFlag:
		return "⚑"
	case model.SymbolMine:
		return "✹"
	case model.SymbolWrongFlag:
		return "✗"
	default:
		return symbol
	}
}
