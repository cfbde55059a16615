package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamecenter/minesweeper/internal/api"
	"github.com/gamecenter/minesweeper/internal/api/response"
	"github.com/gamecenter/minesweeper/internal/factory"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/testutil"
	"github.com/gamecenter/minesweeper/internal/web"
)

// cliFixture runs commands in-process against a deterministic server
type cliFixture struct {
	t      *testing.T
	app    *factory.TestApp
	server *httptest.Server
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	t.Setenv("MINES_TOKEN", "")

	app := factory.NewTestApp()
	logger := testutil.NopLogger()

	r := mux.NewRouter()
	api.Mount(r, api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		LobbyController: app.LobbyController,
		GameController:  app.GameController,
		ChatService:     app.ChatService,
		BotService:      app.BotService,
		Broadcaster:     app.Broadcaster,
		WSHandler:       app.WSHandler,
	})
	web.Mount(r, web.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		LobbyController: app.LobbyController,
		GameController:  app.GameController,
		ChatService:     app.ChatService,
		BotService:      app.BotService,
		HubManager:      app.HubManager,
		Broadcaster:     app.Broadcaster,
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &cliFixture{t: t, app: app, server: server}
}

// user is one CLI installation with its own token file
type user struct {
	f         *cliFixture
	tokenFile string
}

func (f *cliFixture) user() *user {
	return &user{f: f, tokenFile: filepath.Join(f.t.TempDir(), "token")}
}

func (u *user) run(args ...string) (string, error) {
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--server", u.f.server.URL, "--token-file", u.tokenFile}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func (u *user) mustRun(args ...string) string {
	u.f.t.Helper()
	out, err := u.run(args...)
	require.NoError(u.f.t, err, "output: %s", out)
	return out
}

func (u *user) runJSON(result any, args ...string) {
	u.f.t.Helper()
	out := u.mustRun(append([]string{"-o", "json"}, args...)...)
	require.NoError(u.f.t, json.Unmarshal([]byte(out), result), "output: %s", out)
}

// startSmallGame creates LOBBY1 with a 5x5 board holding 2 mines and
// starts GAME01. A first click at (0,0) puts the mines at (0,2) and (0,3).
func startSmallGame(t *testing.T) (*cliFixture, *user) {
	f := newCLIFixture(t)
	f.app.MockRandom.QueueString("LOBBY1", "GAME01")
	alice := f.user()
	alice.mustRun("player", "guest", "--name", "Alice")
	alice.mustRun("lobby", "create", "--width", "5", "--height", "5", "--mines", "2")
	alice.mustRun("game", "start", "LOBBY1")
	return f, alice
}

func (f *cliFixture) waitForClients(code string, n int) {
	f.t.Helper()
	require.Eventually(f.t, func() bool {
		hub := f.app.HubManager.GetHub(model.LobbyCode(code))
		return hub != nil && hub.ClientCount() == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	f := newCLIFixture(t)

	out := f.user().mustRun("health")

	assert.Equal(t, "Status: ok\n", out)
}

func TestGuestSavesToken(t *testing.T) {
	f := newCLIFixture(t)
	alice := f.user()

	out := alice.mustRun("player", "guest", "--name", "Alice")
	assert.Contains(t, out, "Player: Alice (")
	assert.Contains(t, out, "Guest: yes")

	token, err := os.ReadFile(alice.tokenFile)
	require.NoError(t, err)
	_, err = f.app.AuthService.ValidateSession(string(token))
	require.NoError(t, err)

	out = alice.mustRun("player", "me")
	assert.Contains(t, out, "Player: Alice (")
}

func TestLogoutRemovesToken(t *testing.T) {
	f := newCLIFixture(t)
	alice := f.user()
	alice.mustRun("player", "guest", "--name", "Alice")

	out := alice.mustRun("player", "logout")
	assert.Equal(t, "Logged out\n", out)

	_, err := os.Stat(alice.tokenFile)
	assert.True(t, os.IsNotExist(err))

	_, err = alice.run("player", "me")
	assert.ErrorContains(t, err, "UNAUTHORIZED")
}

func TestEmbedLogin(t *testing.T) {
	f := newCLIFixture(t)
	token, err := f.app.AuthService.IssueEmbedToken("user-7", "Host User", time.Hour)
	require.NoError(t, err)

	var result response.AuthResponse
	f.user().runJSON(&result, "player", "embed", "--embed-token", token)

	assert.Equal(t, "Host User", result.Player.DisplayName)
	assert.Equal(t, "user-7", result.Player.ExternalID)
}

func TestLobbyCreateShowsSettings(t *testing.T) {
	f := newCLIFixture(t)
	f.app.MockRandom.QueueString("LOBBY1")
	alice := f.user()
	alice.mustRun("player", "guest", "--name", "Alice")

	out := alice.mustRun("lobby", "create", "--difficulty", "medium")

	assert.Contains(t, out, "Lobby: LOBBY1\n")
	assert.Contains(t, out, "Board: 16x16, 40 mines (medium)\n")
	assert.Contains(t, out, "Members (1):\n")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "[host]")
}

func TestSettingsFlagsValidated(t *testing.T) {
	f := newCLIFixture(t)
	alice := f.user()
	alice.mustRun("player", "guest", "--name", "Alice")

	_, err := alice.run("lobby", "create", "--difficulty", "easy", "--width", "9")
	assert.Error(t, err)

	_, err = alice.run("lobby", "create", "--width", "9")
	assert.Error(t, err)

	_, err = alice.run("lobby", "create", "--width", "2", "--height", "2", "--mines", "1")
	assert.ErrorContains(t, err, "INVALID_SETTINGS")
}

func TestPlayToWin(t *testing.T) {
	f, alice := startSmallGame(t)

	out := alice.mustRun("game", "get", "lobby1")
	assert.Contains(t, out, "Game: GAME01 (in_progress)\n")
	assert.Contains(t, out, "Mines left: 2  Time: 0s\n")
	assert.Contains(t, out, " 0 | .  .  .  .  . |\n")

	out = alice.mustRun("game", "reveal", "LOBBY1", "0", "0")
	assert.Contains(t, out, "22 cell(s) changed\n")
	assert.Contains(t, out, " 0 |    1  .  .  . |\n")
	assert.Contains(t, out, " 4 |               |\n")

	out = alice.mustRun("game", "flag", "LOBBY1", "0", "2")
	assert.Contains(t, out, "Mines left: 1")
	assert.Contains(t, out, " 0 |    1  F  .  . |\n")

	f.app.MockClock.Advance(9 * time.Second)
	out = alice.mustRun("game", "reveal", "LOBBY1", "0", "4")
	assert.Contains(t, out, "You cleared the field!\n")
	assert.Contains(t, out, "Game: GAME01 (won)\n")
	assert.Contains(t, out, "Mines left: 0  Time: 9s\n")

	out = alice.mustRun("game", "reveal", "LOBBY1", "1", "1")
	assert.Contains(t, out, "Move ignored\n")
}

func TestPlayToLossJSON(t *testing.T) {
	_, alice := startSmallGame(t)
	alice.mustRun("game", "reveal", "LOBBY1", "0", "0")

	var result response.MoveResponse
	alice.runJSON(&result, "game", "reveal", "LOBBY1", "0", "2")

	assert.True(t, result.Accepted)
	assert.Equal(t, "hit_mine", result.Outcome)
	assert.Equal(t, "lost", result.Game.Status)
	assert.Equal(t, "*", result.Game.Board.Cells[0][2])
	assert.Equal(t, "*", result.Game.Board.Cells[0][3])
}

func TestInvalidCoordinates(t *testing.T) {
	_, alice := startSmallGame(t)

	_, err := alice.run("game", "reveal", "LOBBY1", "one", "0")
	assert.ErrorContains(t, err, `invalid row "one"`)

	_, err = alice.run("game", "flag", "LOBBY1", "0")
	assert.Error(t, err)
}

func TestAbandonAndRestart(t *testing.T) {
	_, alice := startSmallGame(t)
	alice.mustRun("game", "reveal", "LOBBY1", "0", "0")

	out := alice.mustRun("game", "abandon", "LOBBY1")
	assert.Equal(t, "Game abandoned\n", out)
	assert.Contains(t, alice.mustRun("game", "get", "LOBBY1"), "(abandoned)")

	var g response.Game
	alice.runJSON(&g, "game", "start", "LOBBY1", "--difficulty", "easy")
	assert.Equal(t, "GAME01", g.ID)
	assert.Equal(t, "in_progress", g.Status)
	assert.Equal(t, 9, g.Board.Width)
}

func TestWatchAnotherPlayer(t *testing.T) {
	f, alice := startSmallGame(t)
	alice.mustRun("game", "reveal", "LOBBY1", "0", "0")

	bob := f.user()
	bob.mustRun("player", "guest", "--name", "Bob")
	var lobby response.Lobby
	bob.runJSON(&lobby, "lobby", "join", "LOBBY1")
	require.Len(t, lobby.Members, 2)
	aliceID := lobby.Members[0].PlayerID
	require.NotNil(t, lobby.Members[0].GameID)

	out := bob.mustRun("game", "watch", "LOBBY1", aliceID)
	assert.Contains(t, out, "Game: GAME01 (in_progress)")
	assert.Contains(t, out, " 0 |    1  .  .  . |\n")

	_, err := bob.run("game", "get", "LOBBY1")
	assert.ErrorContains(t, err, "GAME_NOT_FOUND")
}

func TestRolesAndHost(t *testing.T) {
	f, alice := startSmallGame(t)
	bob := f.user()
	bob.mustRun("player", "guest", "--name", "Bob")
	var lobby response.Lobby
	bob.runJSON(&lobby, "lobby", "join", "LOBBY1")
	aliceID, bobID := lobby.Members[0].PlayerID, lobby.Members[1].PlayerID

	_, err := bob.run("lobby", "transfer-host", "LOBBY1", bobID)
	assert.ErrorContains(t, err, "NOT_HOST")

	out := alice.mustRun("lobby", "transfer-host", "LOBBY1", bobID)
	assert.Contains(t, out, "Bob ("+bobID+") - player [host]")

	bob.runJSON(&lobby, "lobby", "role", "LOBBY1", aliceID, "spectator")
	assert.Equal(t, "spectator", lobby.Members[0].Role)

	_, err = alice.run("game", "start", "LOBBY1")
	assert.ErrorContains(t, err, "NOT_PLAYER")

	out = bob.mustRun("lobby", "settings", "LOBBY1", "--difficulty", "hard")
	assert.Contains(t, out, "Board: 30x16, 99 mines (hard)")

	_, err = bob.run("lobby", "settings", "LOBBY1")
	assert.ErrorContains(t, err, "give --difficulty")
}

func TestBotPlays(t *testing.T) {
	f := newCLIFixture(t)
	f.app.MockRandom.QueueString("LOBBY1", "BOT1", "GAMEB1")
	alice := f.user()
	alice.mustRun("player", "guest", "--name", "Alice")
	alice.mustRun("lobby", "create", "--width", "5", "--height", "5", "--mines", "1")

	_, err := alice.run("bot", "add", "LOBBY1", "--strategy", "psychic")
	assert.ErrorContains(t, err, "UNKNOWN_BOT_STRATEGY")

	out := alice.mustRun("bot", "add", "lobby1")
	assert.Contains(t, out, "Bot 1 (bot-BOT1) - player [bot]")

	out = alice.mustRun("bot", "play", "LOBBY1", "bot-BOT1")
	assert.Contains(t, out, "Bot made 1 move(s):\n  reveal 2,2 -> cleared\n")
	assert.Contains(t, out, "Game: GAMEB1 (won)")

	var lobby response.Lobby
	alice.runJSON(&lobby, "bot", "remove", "LOBBY1", "bot-BOT1")
	assert.Len(t, lobby.Members, 1)
}

func TestLeaveLobby(t *testing.T) {
	_, alice := startSmallGame(t)

	out := alice.mustRun("lobby", "leave", "lobby1")
	assert.Equal(t, "Left lobby LOBBY1\n", out)

	_, err := alice.run("lobby", "get", "LOBBY1")
	assert.ErrorContains(t, err, "Lobby not found")
}

func TestChat(t *testing.T) {
	f, alice := startSmallGame(t)

	assert.Equal(t, "No messages yet\n", alice.mustRun("chat", "history", "LOBBY1"))

	f.app.MockRandom.QueueString("MSG1")
	out := alice.mustRun("chat", "send", "LOBBY1", "good", "luck")
	assert.Equal(t, "[12:00:00] Alice: good luck\n", out)

	var history response.ChatHistory
	alice.runJSON(&history, "chat", "history", "LOBBY1")
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "MSG1", history.Messages[0].ID)
}

func TestErrors(t *testing.T) {
	f := newCLIFixture(t)
	alice := f.user()

	_, err := alice.run("player", "me")
	assert.ErrorContains(t, err, "Authentication required (UNAUTHORIZED)")

	alice.mustRun("player", "guest", "--name", "Alice")
	_, err = alice.run("lobby", "get", "NOPE42")
	assert.ErrorContains(t, err, "Lobby not found (LOBBY_NOT_FOUND)")
}

// streamInBackground runs the events command until it reaches its limit
func streamInBackground(u *user, args ...string) (wait func() string) {
	var (
		wg  sync.WaitGroup
		out string
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		out, err = u.run(append([]string{"events"}, args...)...)
	}()
	return func() string {
		wg.Wait()
		require.NoError(u.f.t, err, "output: %s", out)
		return out
	}
}

func postChat(t *testing.T, f *cliFixture, code, text string) {
	t.Helper()
	lobby, err := f.app.LobbyController.GetLobby(context.Background(), model.LobbyCode(code))
	require.NoError(t, err)
	_, err = f.app.ChatService.Post(context.Background(), lobby.Code, lobby.Members[0].Player, text)
	require.NoError(t, err)
}

func TestEventsOverSSE(t *testing.T) {
	f, alice := startSmallGame(t)

	wait := streamInBackground(alice, "LOBBY1", "--limit", "1")
	f.waitForClients("LOBBY1", 1)
	f.app.MockRandom.QueueString("MSG1")
	postChat(t, f, "LOBBY1", "hi")

	out := wait()
	assert.True(t, strings.HasPrefix(out, "Connected to lobby LOBBY1\n"), out)
	assert.Contains(t, out, "] message: {")
	assert.Contains(t, out, `"text":"hi"`)
	assert.True(t, strings.HasSuffix(out, "Disconnected\n"), out)
}

func TestEventsOverWebSocketJSON(t *testing.T) {
	f, alice := startSmallGame(t)

	wait := streamInBackground(alice, "LOBBY1", "--ws", "--json", "--limit", "1")
	f.waitForClients("LOBBY1", 1)
	f.app.MockRandom.QueueString("MSG1")
	postChat(t, f, "LOBBY1", "hi")

	var ev StreamEvent
	require.NoError(t, json.Unmarshal([]byte(wait()), &ev))
	assert.Equal(t, model.EventMessage, ev.Event)
	assert.Contains(t, ev.Data, `"text":"hi"`)
}

func TestEventsRejectsOutsiders(t *testing.T) {
	f, _ := startSmallGame(t)
	bob := f.user()
	bob.mustRun("player", "guest", "--name", "Bob")

	_, err := bob.run("events", "LOBBY1")
	assert.ErrorContains(t, err, "unexpected status: 403")

	_, err = bob.run("events", "LOBBY1", "--ws")
	assert.ErrorContains(t, err, "connection failed")
}
