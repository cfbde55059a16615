package sse

import (
	"testing"
	"time"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "cell-opened",
			data:      `{"row":1}`,
			expected:  "event: cell-opened\ndata: {\"row\":1}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "message",
			data:      "{\n  \"text\": \"hi\"\n}",
			expected:  "event: message\ndata: {\ndata:   \"text\": \"hi\"\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single line", "hello", []string{"hello"}},
		{"two lines", "line1\nline2", []string{"line1", "line2"}},
		{"trailing newline", "line1\n", []string{"line1"}},
		{"empty string", "", []string{""}},
		{"crlf line endings", "line1\r\nline2\r\n", []string{"line1", "line2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func TestMessageBytes(t *testing.T) {
	msg, err := NewMessage("flag-toggled", model.FlagToggledPayload{PlayerID: "p1", Row: 2, Col: 3, IsFlagged: true})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}

	expected := "event: flag-toggled\ndata: {\"player_id\":\"p1\",\"row\":2,\"col\":3,\"is_flagged\":true}\n\n"
	if string(msg.Bytes()) != expected {
		t.Errorf("Bytes() = %q, want %q", string(msg.Bytes()), expected)
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case msg := <-client.Messages():
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client did not receive message")
		return Message{}
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("TESTCODE", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player1", TransportSSE)
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Publish("refresh", map[string]string{"reason": "test"})

	msg := receive(t, client)
	if msg.Event != "refresh" || string(msg.Data) != `{"reason":"test"}` {
		t.Errorf("client received %s %s", msg.Event, msg.Data)
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("TESTCODE", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player1", TransportWebSocket)
	hub.Register(client)
	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
	if _, ok := <-client.Messages(); ok {
		t.Error("client channel still open after unregister")
	}
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := NewHub("TESTCODE", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	clients := []*Client{
		NewClient(hub, "player1", TransportSSE),
		NewClient(hub, "player2", TransportWebSocket),
		NewClient(hub, "player3", TransportSSE),
	}
	for _, c := range clients {
		hub.Register(c)
	}
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 3 {
		t.Errorf("ClientCount() = %d, want 3", hub.ClientCount())
	}

	hub.Publish("update", "data")

	for i, client := range clients {
		msg := receive(t, client)
		if msg.Event != "update" || string(msg.Data) != `"data"` {
			t.Errorf("client %d received %s %s", i+1, msg.Event, msg.Data)
		}
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub("TESTCODE", testutil.NopLogger())
	go hub.Run()

	client := NewClient(hub, "player1", TransportSSE)
	hub.Register(client)
	hub.Close()
	hub.Close()

	select {
	case _, ok := <-client.Messages():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client channel not closed after hub close")
	}

	// registering on a closed hub must not block
	late := NewClient(hub, "player2", TransportSSE)
	hub.Register(late)
	if _, ok := <-late.Messages(); ok {
		t.Error("late client channel should be closed")
	}
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	hub1 := manager.GetOrCreateHub("ABC123")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}

	hub2 := manager.GetOrCreateHub("ABC123")
	if hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same code")
	}

	hub3 := manager.GetOrCreateHub("XYZ789")
	if hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different code")
	}

	manager.RemoveHub("ABC123")
	manager.RemoveHub("XYZ789")
}

func TestHubManager_GetHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	if hub := manager.GetHub("NOTEXIST"); hub != nil {
		t.Error("GetHub returned non-nil for non-existent hub")
	}

	created := manager.GetOrCreateHub("ABC123")
	if got := manager.GetHub("ABC123"); got != created {
		t.Error("GetHub returned different hub than GetOrCreateHub")
	}

	manager.RemoveHub("ABC123")
}

func TestHubManager_RemoveHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	manager.GetOrCreateHub("ABC123")

	manager.RemoveHub("ABC123")

	if manager.GetHub("ABC123") != nil {
		t.Error("Hub still exists after RemoveHub")
	}

	// Removing non-existent hub should not panic
	manager.RemoveHub("NOTEXIST")
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	manager.GetOrCreateHub(model.LobbyCode("EMPTY"))

	hub2 := manager.GetOrCreateHub(model.LobbyCode("ACTIVE"))
	hub2.Register(NewClient(hub2, "player1", TransportSSE))
	time.Sleep(10 * time.Millisecond)

	manager.CleanupEmptyHubs()

	if manager.GetHub("EMPTY") != nil {
		t.Error("Empty hub still exists after cleanup")
	}
	if manager.GetHub("ACTIVE") == nil {
		t.Error("Active hub was removed during cleanup")
	}

	manager.RemoveHub("ACTIVE")
}
