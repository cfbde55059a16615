package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gamecenter/minesweeper/internal/services/auth"
	"github.com/gamecenter/minesweeper/internal/web/middleware"
	"github.com/gamecenter/minesweeper/internal/web/templates/pages"
)

const (
	maxNameLength     = 20
	minUsernameLength = 3
	minPasswordLength = 8
)

// AuthHandler handles authentication pages and actions
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetPlayer(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	render(w, r, http.StatusOK, pages.Login(pages.LoginData{
		PageData: pageData(r, "Log in"),
		Next:     r.URL.Query().Get("next"),
	}))
}

// RegisterPage renders the registration page
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetPlayer(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	render(w, r, http.StatusOK, pages.Register(pages.RegisterData{
		PageData:    pageData(r, "Register"),
		FieldErrors: map[string]string{},
	}))
}

// CreateGuest handles guest player creation
func (h *AuthHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fail(w, r, "/", "Invalid form data")
		return
	}

	displayName := truncate(strings.TrimSpace(r.FormValue("display_name")), maxNameLength)
	next := safeNext(r.FormValue("next"))
	if displayName == "" {
		fail(w, r, "/", "Display name is required")
		return
	}

	session, err := h.authService.CreateGuestPlayer(r.Context(), displayName)
	if err != nil {
		h.logger.Error("failed to create guest", slog.String("error", err.Error()))
		fail(w, r, "/", "Failed to create guest player")
		return
	}

	setSessionCookie(w, session.Token, session.ExpiresAt, false)
	middleware.SetFlash(w, "success", "Welcome, "+session.Player.DisplayName+"!")
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.loginError(w, r, "Invalid form data", "", "")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	if username == "" || password == "" {
		h.loginError(w, r, "Username and password are required", username, next)
		return
	}

	session, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		h.loginError(w, r, "Invalid username or password", username, next)
		return
	}

	setSessionCookie(w, session.Token, session.ExpiresAt, false)
	middleware.SetFlash(w, "success", "Welcome back, "+session.Player.DisplayName+"!")
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.registerError(w, r, "Invalid form data", "", "", nil)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	displayName := strings.TrimSpace(r.FormValue("display_name"))
	password := r.FormValue("password")
	passwordConfirm := r.FormValue("password_confirm")

	fieldErrors := make(map[string]string)

	switch n := utf8.RuneCountInString(username); {
	case n == 0:
		fieldErrors["username"] = "Username is required"
	case n < minUsernameLength:
		fieldErrors["username"] = "Username must be at least 3 characters"
	case n > maxNameLength:
		fieldErrors["username"] = "Username must be at most 20 characters"
	}

	switch n := utf8.RuneCountInString(displayName); {
	case n == 0:
		fieldErrors["display_name"] = "Display name is required"
	case n > maxNameLength:
		fieldErrors["display_name"] = "Display name must be at most 20 characters"
	}

	if password == "" {
		fieldErrors["password"] = "Password is required"
	} else if len(password) < minPasswordLength {
		fieldErrors["password"] = "Password must be at least 8 characters"
	}

	if password != passwordConfirm {
		fieldErrors["password_confirm"] = "Passwords do not match"
	}

	if len(fieldErrors) > 0 {
		h.registerError(w, r, "", username, displayName, fieldErrors)
		return
	}

	session, err := h.authService.RegisterPlayer(r.Context(), username, password, displayName)
	if errors.Is(err, auth.ErrUsernameExists) {
		fieldErrors["username"] = "Username already taken"
		h.registerError(w, r, "", username, displayName, fieldErrors)
		return
	}
	if err != nil {
		h.logger.Error("registration failed", slog.String("error", err.Error()))
		h.registerError(w, r, "Registration failed, please try again", username, displayName, nil)
		return
	}

	setSessionCookie(w, session.Token, session.ExpiresAt, false)
	middleware.SetFlash(w, "success", "Account created! Welcome, "+session.Player.DisplayName+"!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Embed opens a session from an embed token issued by the host game
// center and continues to next, usually a lobby page inside its iframe
func (h *AuthHandler) Embed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	next := safeNext(r.URL.Query().Get("next"))

	session, err := h.authService.LoginWithEmbedToken(r.Context(), token)
	if err != nil {
		h.logger.Warn("embed login rejected", slog.String("error", err.Error()))
		data := pageData(r, "Log in")
		data.Embedded = true
		render(w, r, http.StatusUnauthorized, pages.Login(pages.LoginData{
			PageData: data,
			Error:    describe(err),
			Next:     next,
		}))
		return
	}

	setSessionCookie(w, session.Token, session.ExpiresAt, true)
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.EmbeddedCookieName,
		Value:    "1",
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout ends the session and clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.authService.InvalidateSession(cookie.Value)
	}

	for _, name := range []string{middleware.SessionCookieName, middleware.EmbeddedCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	middleware.SetFlash(w, "info", "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setSessionCookie stores the session token. Embedded sessions live in a
// third-party iframe and need SameSite=None.
func setSessionCookie(w http.ResponseWriter, token string, expires time.Time, embedded bool) {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if embedded {
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) loginError(w http.ResponseWriter, r *http.Request, msg, username, next string) {
	render(w, r, http.StatusOK, pages.Login(pages.LoginData{
		PageData: pageData(r, "Log in"),
		Username: username,
		Error:    msg,
		Next:     next,
	}))
}

func (h *AuthHandler) registerError(w http.ResponseWriter, r *http.Request, msg, username, displayName string, fieldErrors map[string]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	render(w, r, http.StatusOK, pages.Register(pages.RegisterData{
		PageData:    pageData(r, "Register"),
		Username:    username,
		DisplayName: displayName,
		Error:       msg,
		FieldErrors: fieldErrors,
	}))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
