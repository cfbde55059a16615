package pages

import "github.com/gamecenter/minesweeper/internal/web/templates/layout"

// LoginData is the login form state
type LoginData struct {
	layout.PageData
	Username string
	Error    string
	Next     string
}

// RegisterData is the registration form state
type RegisterData struct {
	layout.PageData
	Username    string
	DisplayName string
	Error       string
	FieldErrors map[string]string
}
