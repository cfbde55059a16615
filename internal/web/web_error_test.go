package web_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamecenter/minesweeper/internal/factory"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/testutil"
	"github.com/gamecenter/minesweeper/internal/web"
)

func TestFlashMessageDisplayedOnSuccess(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/auth/guest", url.Values{"display_name": {"Alice"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "Welcome, Alice!")

	// Flashes show once
	doc = parseHTML(ts.get("/").Body)
	assertNotContainsElement(t, doc, ".flash")
}

func TestFlashMessageDisplayedOnError(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	rr := ts.post("/lobby/join", url.Values{"code": {"INVALID"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	assert.Equal(t, http.StatusOK, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), ".flash-error", "Lobby not found")
}

func TestUnknownLobbyLink(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	rr := ts.get("/lobby/NOPE42")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assertContainsText(t, parseHTML(ts.followRedirect(rr).Body), ".flash-error", "Lobby not found")
}

func TestUnknownLobbyFragment(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	rr := ts.getHTMX("/lobby/NOPE42/members")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("HX-Redirect"))
}

func TestAccessDeniedForProtectedRoute(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/lobby/ABC123")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?next="+url.QueryEscape("/lobby/ABC123"), rr.Header().Get("Location"))
}

func TestInvalidSettingsFormShowsError(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	code := ts.createLobby(nil)

	rr := ts.post("/lobby/"+code+"/settings", url.Values{
		"difficulty": {"custom"},
		"width":      {"wide"},
		"height":     {"9"},
		"mines":      {"10"},
	})

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-error", "width must be a number")
	assertContainsText(t, doc, ".settings-summary", "9x9, 10 mines")
}

func TestUnknownDifficultyRejected(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	code := ts.createLobby(nil)

	rr := ts.postHTMX("/lobby/"+code+"/game/start", url.Values{"difficulty": {"nightmare"}})

	assert.Equal(t, "/lobby/"+code, rr.Header().Get("HX-Redirect"))
	assertContainsText(t, parseHTML(ts.followRedirect(rr).Body), ".flash-error", `unknown difficulty "nightmare"`)
}

func TestUnknownRoute(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/no/such/page")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// panickingLobbies fails every lobby lookup with a panic
type panickingLobbies struct {
	lobby.ControllerInterface
}

func (panickingLobbies) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	panic("storage exploded")
}

func TestPanicRendersErrorPage(t *testing.T) {
	app := factory.NewTestApp()
	logger, logs := testutil.CaptureLogger()

	r := mux.NewRouter()
	web.Mount(r, web.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		LobbyController: panickingLobbies{app.LobbyController},
		GameController:  app.GameController,
		ChatService:     app.ChatService,
		BotService:      app.BotService,
		HubManager:      app.HubManager,
		Broadcaster:     app.Broadcaster,
	})
	ts := &webTestServer{t: t, handler: r, app: app.App, cookies: newCookieJar()}
	ts.createGuestPlayer("Alice")

	rr := ts.get("/lobby/ABC123")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".error-page h1", "Internal Server Error")
	assertContainsElement(t, doc, "nav")
	assert.Contains(t, logs.String(), "panic recovered")

	rr = ts.getHTMX("/lobby/ABC123")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Something went wrong")
}
