package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// errEnough stops a stream once the requested number of events arrived
var errEnough = errors.New("event limit reached")

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		useWS      bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "events <code>",
		Short: "Stream live events from a lobby",
		Long: `Connect to the lobby's event stream and print events as they arrive.

Events include:
  - member-update: Lobby member list changed
  - game-started: A player started or restarted a game
  - cell-opened: A player revealed cells
  - flag-toggled: A player placed or removed a flag
  - game-result: A player won or lost
  - message: Chat message posted
  - refresh: Lobby settings or state changed

The stream uses server-sent events by default, or a WebSocket with --ws.
Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := &eventPrinter{w: cmd.OutOrStdout(), json: jsonOutput, limit: limit}
			code := strings.ToUpper(args[0])

			if !jsonOutput {
				fmt.Fprintf(p.w, "Connected to lobby %s\n", code)
			}

			var err error
			if useWS {
				err = streamWebSocket(ctx, code, p)
			} else {
				err = streamSSE(ctx, code, p)
			}

			switch {
			case errors.Is(err, errEnough):
			case err != nil && ctx.Err() == nil:
				return err
			}
			if !jsonOutput {
				fmt.Fprintln(p.w, "Disconnected")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVar(&useWS, "ws", false, "Use the WebSocket endpoint instead of server-sent events")
	cmd.Flags().IntVar(&limit, "limit", 0, "Exit after this many events (0 streams until interrupted)")

	return cmd
}

// StreamEvent is one printed event
type StreamEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

type eventPrinter struct {
	w     io.Writer
	json  bool
	limit int
	seen  int
}

// print writes an event and reports errEnough once the limit is reached.
// The connected handshake is not counted.
func (p *eventPrinter) print(event, data string) error {
	if event == "connected" {
		return nil
	}
	now := time.Now()

	if p.json {
		jsonData, _ := json.Marshal(StreamEvent{Time: now, Event: event, Data: data})
		fmt.Fprintln(p.w, string(jsonData))
	} else {
		displayData := strings.ReplaceAll(data, "\n", " ")
		if len(displayData) > 100 {
			displayData = displayData[:100] + "..."
		}
		fmt.Fprintf(p.w, "[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), event, displayData)
	}

	p.seen++
	if p.limit > 0 && p.seen >= p.limit {
		return errEnough
	}
	return nil
}

// streamSSE reads the web event stream, which authenticates by cookie
func streamSSE(ctx context.Context, code string, p *eventPrinter) error {
	url := strings.TrimSuffix(cfg.ServerURL, "/") + "/lobby/" + code + "/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if cfg.Token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: cfg.Token})
	}

	// No timeout for SSE; redirects mean the session was rejected
	httpClient := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				if err := p.print(currentEvent, strings.Join(dataLines, "\n")); err != nil {
					return err
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}

// streamWebSocket reads the API socket, which authenticates by bearer token
func streamWebSocket(ctx context.Context, code string, p *eventPrinter) error {
	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, client.WebSocketURL(lobbyPath(code, "ws")), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock the read loop on Ctrl+C
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		if err := p.print(frame.Event, string(frame.Data)); err != nil {
			return err
		}
	}
}
