package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/gamecenter/minesweeper/internal/factory"
	"github.com/gamecenter/minesweeper/internal/services/auth"
	"github.com/gamecenter/minesweeper/internal/testutil"
	"github.com/gamecenter/minesweeper/internal/web"
)

const embedSecret = "web-test-secret"

// webTestServer drives the web router like a browser with its own cookies.
// Clients made with client() share the app, like several browsers on one
// server.
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.App
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	app, err := factory.New(factory.Config{
		AuthConfig: auth.Config{EmbedSecret: embedSecret},
	})
	require.NoError(t, err)
	return serverFor(t, app)
}

// newDeterministicServer runs on mocked time and randomness. Unqueued mine
// draws take the first eligible cells in row-major order.
func newDeterministicServer(t *testing.T) (*webTestServer, *factory.TestApp) {
	t.Helper()
	app := factory.NewTestApp()
	return serverFor(t, app.App), app
}

func serverFor(t *testing.T, app *factory.App) *webTestServer {
	r := mux.NewRouter()
	web.Mount(r, web.RouterConfig{
		Logger:          testutil.NopLogger(),
		AuthService:     app.AuthService,
		LobbyController: app.LobbyController,
		GameController:  app.GameController,
		ChatService:     app.ChatService,
		BotService:      app.BotService,
		HubManager:      app.HubManager,
		Broadcaster:     app.Broadcaster,
		Metrics:         app.Metrics,
	})

	return &webTestServer{
		t:       t,
		handler: r,
		app:     app,
		cookies: newCookieJar(),
	}
}

// client returns a second browser on the same server
func (ts *webTestServer) client() *webTestServer {
	return &webTestServer{
		t:       ts.t,
		handler: ts.handler,
		app:     ts.app,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}

	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil, false)
}

// getHTMX fetches a fragment the way htmx does
func (ts *webTestServer) getHTMX(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil, true)
}

// post makes a POST request with form data (non-HTMX)
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, false)
}

// postHTMX makes a POST request with form data as an HTMX request
func (ts *webTestServer) postHTMX(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, true)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies["session"]
	return ok
}

// Helper functions for common test operations

// createGuestPlayer creates a guest player through the home page form
func (ts *webTestServer) createGuestPlayer(displayName string) {
	ts.t.Helper()
	rr := ts.post("/auth/guest", url.Values{"display_name": {displayName}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after guest creation")
	require.True(ts.t, ts.cookies.hasSession(), "Expected session cookie to be set")
}

// createLobby creates a lobby and returns the lobby code. Nil settings
// uses the defaults.
func (ts *webTestServer) createLobby(settings url.Values) string {
	ts.t.Helper()
	rr := ts.post("/lobby", settings)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after lobby creation")

	location := rr.Header().Get("Location")
	parts := strings.Split(location, "/lobby/")
	require.Len(ts.t, parts, 2, "Expected redirect to /lobby/{code}, got %q", location)
	return parts[1]
}

// customBoard is a settings form for a custom board
func customBoard(width, height, mines int) url.Values {
	return url.Values{
		"difficulty": {"custom"},
		"width":      {strconv.Itoa(width)},
		"height":     {strconv.Itoa(height)},
		"mines":      {strconv.Itoa(mines)},
	}
}

// joinLobby joins a lobby by code
func (ts *webTestServer) joinLobby(code string) {
	ts.t.Helper()
	rr := ts.post("/lobby/join", url.Values{"code": {code}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after joining lobby")
	require.Equal(ts.t, "/lobby/"+code, rr.Header().Get("Location"))
}

// startGame starts the player's game in the given lobby
func (ts *webTestServer) startGame(lobbyCode string) {
	ts.t.Helper()
	rr := ts.postHTMX("/lobby/"+lobbyCode+"/game/start", nil)
	require.Equal(ts.t, http.StatusNoContent, rr.Code, "Expected 204 No Content after starting game")
	require.Equal(ts.t, "/lobby/"+lobbyCode, rr.Header().Get("HX-Redirect"))
}

// move clicks a cell on the player's board and returns the board fragment
func (ts *webTestServer) move(lobbyCode, mode string, row, col int) *httptest.ResponseRecorder {
	ts.t.Helper()
	return ts.postHTMX("/lobby/"+lobbyCode+"/game/move", url.Values{
		"mode": {mode},
		"cell": {strconv.Itoa(row) + ":" + strconv.Itoa(col)},
	})
}

// followRedirect follows a redirect and returns the response
// Works with both traditional Location headers and HTMX HX-Redirect headers
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("HX-Redirect")
	if location == "" {
		location = rr.Header().Get("Location")
	}
	require.NotEmpty(ts.t, location, "Expected Location or HX-Redirect header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}
