package web_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestCreation(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/auth/guest", url.Values{"display_name": {"Alice"}})

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.True(t, ts.cookies.hasSession())

	rr = ts.followRedirect(rr)
	assert.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "nav", "Alice")
	assertContainsText(t, doc, ".flash-success", "Welcome, Alice!")
	assertContainsElement(t, doc, "form[action='/lobby']")
	assertContainsElement(t, doc, "form[action='/lobby/join']")
}

func TestGuestCreationEmptyName(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/auth/guest", url.Values{"display_name": {"   "}})

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.False(t, ts.cookies.hasSession())

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-error", "Display name is required")
}

func TestGuestCreationFollowsNext(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/auth/guest", url.Values{"display_name": {"Alice"}, "next": {"/lobby/ABC123"}})
	assert.Equal(t, "/lobby/ABC123", rr.Header().Get("Location"))

	ts = ts.client()
	rr = ts.post("/auth/guest", url.Values{"display_name": {"Mallory"}, "next": {"//evil.example"}})
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/register", url.Values{
		"username":         {"alice"},
		"password":         {"secret123"},
		"password_confirm": {"secret123"},
		"display_name":     {"Alice"},
	})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.True(t, ts.cookies.hasSession())

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, "nav", "Alice")

	// A fresh browser logs in with the same credentials
	other := ts.client()
	rr = other.post("/login", url.Values{"username": {"alice"}, "password": {"secret123"}, "next": {"/lobby/XYZ"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/lobby/XYZ", rr.Header().Get("Location"))
	assert.True(t, other.cookies.hasSession())
}

func TestRegisterValidation(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/register", url.Values{
		"username":         {"al"},
		"password":         {"short"},
		"password_confirm": {"other"},
		"display_name":     {""},
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, ts.cookies.hasSession())

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".field-error[data-field='username']", "at least 3")
	assertContainsText(t, doc, ".field-error[data-field='display_name']", "required")
	assertContainsText(t, doc, ".field-error[data-field='password']", "at least 8")
	assertContainsText(t, doc, ".field-error[data-field='password_confirm']", "do not match")
	assert.Equal(t, "al", doc.Find("input[name='username']").AttrOr("value", ""))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newWebTestServer(t)
	form := url.Values{
		"username":         {"alice"},
		"password":         {"secret123"},
		"password_confirm": {"secret123"},
		"display_name":     {"Alice"},
	}
	require.Equal(t, http.StatusSeeOther, ts.post("/register", form).Code)

	other := ts.client()
	rr := other.post("/register", form)

	assert.Equal(t, http.StatusOK, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), "body", "already taken")
	assert.False(t, other.cookies.hasSession())
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/login", url.Values{"username": {"nobody"}, "password": {"wrongpass"}})

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".form-error", "Invalid username or password")
	assert.Equal(t, "nobody", doc.Find("input[name='username']").AttrOr("value", ""))
	assert.False(t, ts.cookies.hasSession())
}

func TestLoginPageRedirectsWhenSignedIn(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	rr := ts.get("/login")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLogoutEndsSession(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	token := ts.cookies.cookies["session"].Value

	rr := ts.post("/auth/logout", nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.False(t, ts.cookies.hasSession())

	// The old token no longer works even if replayed
	_, err := ts.app.AuthService.ValidateSession(token)
	assert.Error(t, err)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-info", "logged out")
	assertContainsElement(t, doc, "form[action='/auth/guest']")
}

func TestEmbedLogin(t *testing.T) {
	ts := newWebTestServer(t)
	token, err := ts.app.AuthService.IssueEmbedToken("user-42", "Host User", time.Hour)
	require.NoError(t, err)

	rr := ts.get("/embed?token=" + url.QueryEscape(token) + "&next=%2F")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	session := ts.cookies.cookies["session"]
	require.NotNil(t, session)
	assert.Equal(t, http.SameSiteNoneMode, session.SameSite)
	assert.True(t, session.Secure)

	// Embedded pages drop the navigation bar
	doc := parseHTML(ts.followRedirect(rr).Body)
	assertNotContainsElement(t, doc, "nav")
	assertContainsElement(t, doc, "body.embedded")
	assertContainsElement(t, doc, "form[action='/lobby']")
}

func TestEmbedLoginRejectsBadToken(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/embed?token=not-a-token")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, ts.cookies.hasSession())
	assertContainsText(t, parseHTML(rr.Body), ".form-error", "invalid or has expired")
}
