package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gamecenter/minesweeper/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.AuthResponse:
		o.printAuth(v)
	case response.Lobby:
		o.printLobby(v)
	case response.Game:
		o.printGame(v)
	case response.MoveResponse:
		o.printMove(v)
	case response.BotGameResponse:
		o.printBotGame(v)
	case response.ChatMessage:
		o.printChatMessage(v)
	case response.ChatHistory:
		o.printChatHistory(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p response.Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
}

func (o *Output) printAuth(a response.AuthResponse) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func describeSettings(s response.Settings) string {
	text := fmt.Sprintf("%dx%d, %d mines", s.Width, s.Height, s.Mines)
	if s.Difficulty != "" {
		text += " (" + s.Difficulty + ")"
	}
	return text
}

func (o *Output) printLobby(l response.Lobby) {
	fmt.Fprintf(o.w, "Lobby: %s\n", l.Code)
	fmt.Fprintf(o.w, "Board: %s\n", describeSettings(l.Settings))
	fmt.Fprintf(o.w, "Members (%d):\n", len(l.Members))
	for _, m := range l.Members {
		extra := ""
		if m.IsHost {
			extra += " [host]"
		}
		if m.IsBot {
			extra += " [bot]"
		}
		if m.GameID != nil {
			extra += " [game " + *m.GameID + "]"
		}
		fmt.Fprintf(o.w, "  - %s (%s) - %s%s\n", m.DisplayName, m.PlayerID, m.Role, extra)
	}
}

func (o *Output) printGame(g response.Game) {
	fmt.Fprintf(o.w, "Game: %s (%s)\n", g.ID, g.Status)
	fmt.Fprintf(o.w, "Board: %s\n", describeSettings(g.Settings))
	fmt.Fprintf(o.w, "Mines left: %d  Time: %ds\n", g.RemainingMines, g.ElapsedSeconds)
	fmt.Fprintln(o.w)
	o.printBoard(g.Board)
}

func (o *Output) printMove(m response.MoveResponse) {
	switch {
	case !m.Accepted:
		fmt.Fprintln(o.w, "Move ignored")
	case m.Outcome == "hit_mine":
		fmt.Fprintln(o.w, "Boom! You hit a mine.")
	case m.Outcome == "cleared":
		fmt.Fprintln(o.w, "You cleared the field!")
	default:
		fmt.Fprintf(o.w, "%d cell(s) changed\n", len(m.Changed))
	}
	o.printGame(m.Game)
}

func (o *Output) printBotGame(b response.BotGameResponse) {
	fmt.Fprintf(o.w, "Bot made %d move(s):\n", len(b.Moves))
	for _, m := range b.Moves {
		fmt.Fprintf(o.w, "  %s %d,%d -> %s\n", m.Kind, m.Row, m.Col, m.Outcome)
	}
	o.printGame(b.Game)
}

// printBoard draws the minefield with row and column numbers. Open empty
// cells are blank and closed cells are dots.
func (o *Output) printBoard(b response.Board) {
	if len(b.Cells) == 0 {
		return
	}

	fmt.Fprint(o.w, "    ")
	for col := 0; col < b.Width; col++ {
		fmt.Fprintf(o.w, "%2d ", col)
	}
	fmt.Fprintln(o.w)

	border := "   +" + strings.Repeat("---", b.Width) + "+"
	fmt.Fprintln(o.w, border)

	for row, cells := range b.Cells {
		fmt.Fprintf(o.w, "%2d |", row)
		for _, cell := range cells {
			if cell == "0" {
				cell = " "
			}
			fmt.Fprintf(o.w, " %s ", cell)
		}
		fmt.Fprintln(o.w, "|")
	}

	fmt.Fprintln(o.w, border)
}

func (o *Output) printChatMessage(m response.ChatMessage) {
	fmt.Fprintf(o.w, "[%s] %s: %s\n", m.SentAt.Format("15:04:05"), m.DisplayName, m.Text)
}

func (o *Output) printChatHistory(h response.ChatHistory) {
	if len(h.Messages) == 0 {
		fmt.Fprintln(o.w, "No messages yet")
		return
	}
	for _, m := range h.Messages {
		o.printChatMessage(m)
	}
}
