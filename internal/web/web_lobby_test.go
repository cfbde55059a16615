package web_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamecenter/minesweeper/internal/model"
)

func TestCreateLobbyDefaults(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	code := ts.createLobby(nil)

	rr := ts.get("/lobby/" + code)
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".lobby-code", code)
	assertContainsText(t, doc, ".settings-summary", "9x9, 10 mines (easy)")
	assertContainsElement(t, doc, "#settings form")
	assertContainsElement(t, doc, "form[action='/lobby/"+code+"/game/start']")
	assertContainsText(t, doc, "#members .badge.host", "host")
	assert.Equal(t, "/lobby/"+code+"/events", doc.Find("[sse-connect]").AttrOr("sse-connect", ""))
}

func TestCreateLobbyWithSettings(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	code := ts.createLobby(url.Values{"difficulty": {"medium"}})
	doc := parseHTML(ts.get("/lobby/" + code).Body)
	assertContainsText(t, doc, ".settings-summary", "16x16, 40 mines (medium)")

	code = ts.createLobby(customBoard(12, 8, 20))
	doc = parseHTML(ts.get("/lobby/" + code).Body)
	assertContainsText(t, doc, ".settings-summary", "12x8, 20 mines")
}

func TestCreateLobbyRejectsOutOfBoundsSettings(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	rr := ts.post("/lobby", customBoard(40, 10, 10))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-error", "width must be between 5 and 30")
}

func TestJoinLobbyByForm(t *testing.T) {
	host := newWebTestServer(t)
	host.createGuestPlayer("Alice")
	code := host.createLobby(nil)

	bob := host.client()
	bob.createGuestPlayer("Bob")
	bob.joinLobby(code)

	doc := parseHTML(bob.get("/lobby/" + code).Body)
	assert.Equal(t, 2, doc.Find("#members li.member").Length())
	assertNotContainsElement(t, doc, "#settings form")

	// Codes are case-insensitive on the form
	carol := host.client()
	carol.createGuestPlayer("Carol")
	rr := carol.post("/lobby/join", url.Values{"code": {" " + strings.ToLower(code) + " "}})
	assert.Equal(t, "/lobby/"+code, rr.Header().Get("Location"))
}

func TestJoinUnknownLobby(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	rr := ts.post("/lobby/join", url.Values{"code": {"NOPE42"}})

	assert.Equal(t, "/", rr.Header().Get("Location"))
	assertContainsText(t, parseHTML(ts.followRedirect(rr).Body), ".flash-error", "Lobby not found")
}

func TestViewingLobbyLinkJoins(t *testing.T) {
	host := newWebTestServer(t)
	host.createGuestPlayer("Alice")
	code := host.createLobby(nil)

	bob := host.client()
	bob.createGuestPlayer("Bob")
	rr := bob.get("/lobby/" + code)
	require.Equal(t, http.StatusOK, rr.Code)

	lobby, err := host.app.LobbyController.GetLobby(t.Context(), model.LobbyCode(code))
	require.NoError(t, err)
	assert.Len(t, lobby.Members, 2)
}

func TestLobbyRequiresSignIn(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/lobby/ABC123")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?next=%2Flobby%2FABC123", rr.Header().Get("Location"))

	// The home page carries next into the guest form
	doc := parseHTML(ts.followRedirect(rr).Body)
	assert.Equal(t, "/lobby/ABC123", doc.Find("form[action='/auth/guest'] input[name='next']").AttrOr("value", ""))
}

func TestUpdateSettingsHostOnly(t *testing.T) {
	host := newWebTestServer(t)
	host.createGuestPlayer("Alice")
	code := host.createLobby(nil)

	bob := host.client()
	bob.createGuestPlayer("Bob")
	bob.joinLobby(code)

	rr := bob.postHTMX("/lobby/"+code+"/settings", url.Values{"difficulty": {"hard"}})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "/lobby/"+code, rr.Header().Get("HX-Redirect"))
	assertContainsText(t, parseHTML(bob.followRedirect(rr).Body), ".flash-error", "Only the host")

	rr = host.postHTMX("/lobby/"+code+"/settings", url.Values{"difficulty": {"hard"}})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Header().Get("HX-Redirect"))

	fragment := parseHTML(bob.getHTMX("/lobby/" + code + "/settings").Body)
	assertContainsText(t, fragment, ".settings-summary", "30x16, 99 mines (hard)")
	assertNotContainsElement(t, fragment, "form")
}

func TestSetRoleAndTransferHost(t *testing.T) {
	host := newWebTestServer(t)
	host.createGuestPlayer("Alice")
	code := host.createLobby(nil)

	bob := host.client()
	bob.createGuestPlayer("Bob")
	bob.joinLobby(code)

	lobby, err := host.app.LobbyController.GetLobby(t.Context(), model.LobbyCode(code))
	require.NoError(t, err)
	aliceID := string(lobby.Members[0].Player.ID)
	bobID := string(lobby.Members[1].Player.ID)

	// Bob cannot change Alice's role
	rr := bob.postHTMX("/lobby/"+code+"/role", url.Values{"player_id": {aliceID}, "role": {"spectator"}})
	assert.Equal(t, "/lobby/"+code, rr.Header().Get("HX-Redirect"))
	assertContainsText(t, parseHTML(bob.followRedirect(rr).Body), ".flash-error", "Only the host")

	// Bob may switch himself to spectating
	rr = bob.postHTMX("/lobby/"+code+"/role", url.Values{"role": {"spectator"}})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	doc := parseHTML(bob.followRedirect(rr).Body)
	assertContainsElement(t, doc, ".spectating-note")

	// Alice hands the lobby to Bob
	rr = host.postHTMX("/lobby/"+code+"/transfer-host", url.Values{"new_host_id": {bobID}})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	members := parseHTML(bob.getHTMX("/lobby/" + code + "/members").Body)
	assertContainsElement(t, members, "li.member[data-player-id='"+bobID+"'] .badge.host")
	assertContainsElement(t, members, "li.member[data-player-id='"+aliceID+"'] .host-form")
	assert.Equal(t, "spectator", members.Find("li.member[data-player-id='"+bobID+"']").AttrOr("data-role", ""))
}

func TestInvalidRole(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	code := ts.createLobby(nil)

	rr := ts.postHTMX("/lobby/"+code+"/role", url.Values{"role": {"referee"}})

	assertContainsText(t, parseHTML(ts.followRedirect(rr).Body), ".flash-error", "Invalid role")
}

func TestLeaveLobby(t *testing.T) {
	host := newWebTestServer(t)
	host.createGuestPlayer("Alice")
	code := host.createLobby(nil)

	bob := host.client()
	bob.createGuestPlayer("Bob")
	bob.joinLobby(code)

	rr := host.postHTMX("/lobby/"+code+"/leave", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("HX-Redirect"))

	// Bob inherits the host role
	lobby, err := host.app.LobbyController.GetLobby(t.Context(), model.LobbyCode(code))
	require.NoError(t, err)
	require.Len(t, lobby.Members, 1)
	assert.True(t, lobby.Members[0].IsHost)

	// The last member leaving closes the lobby
	bob.postHTMX("/lobby/"+code+"/leave", nil)
	_, err = host.app.LobbyController.GetLobby(t.Context(), model.LobbyCode(code))
	assert.ErrorIs(t, err, model.ErrLobbyNotFound)
}

func TestMemberRoutesRejectOutsiders(t *testing.T) {
	host := newWebTestServer(t)
	host.createGuestPlayer("Alice")
	code := host.createLobby(nil)

	outsider := host.client()
	outsider.createGuestPlayer("Mallory")

	rr := outsider.getHTMX("/lobby/" + code + "/members")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("HX-Redirect"))

	rr = outsider.post("/lobby/"+code+"/chat", url.Values{"text": {"hi"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = outsider.get("/lobby/NOPE42/members")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestChat(t *testing.T) {
	host := newWebTestServer(t)
	host.createGuestPlayer("Alice")
	code := host.createLobby(nil)

	bob := host.client()
	bob.createGuestPlayer("Bob")
	bob.joinLobby(code)

	rr := host.postHTMX("/lobby/"+code+"/chat", url.Values{"text": {"good luck <everyone>"}})
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "li.chat-message .text", "good luck <everyone>")
	assertContainsText(t, doc, "li.chat-message .author", "Alice")

	rr = bob.postHTMX("/lobby/"+code+"/chat", url.Values{"text": {"   "}})
	require.Equal(t, http.StatusOK, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), ".field-error", "Message is empty")

	// Everyone sees the history, on the page and in the fragment
	assert.Equal(t, 1, parseHTML(bob.getHTMX("/lobby/"+code+"/chat").Body).Find("li.chat-message").Length())
	assert.Equal(t, 1, parseHTML(bob.get("/lobby/"+code).Body).Find("#chat li.chat-message").Length())

	// Plain form posts redirect back to the lobby
	rr = bob.post("/lobby/"+code+"/chat", url.Values{"text": {"thanks"}})
	assert.Equal(t, "/lobby/"+code, rr.Header().Get("Location"))
}
