package request

import (
	"fmt"

	"github.com/gamecenter/minesweeper/internal/model"
)

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EmbedRequest is the request body for the iframe handshake
type EmbedRequest struct {
	Token string `json:"token"`
}

// Settings selects board settings either by difficulty preset or by
// explicit dimensions. A preset wins when both are given.
type Settings struct {
	Difficulty string `json:"difficulty,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Mines      int    `json:"mines,omitempty"`
}

// IsZero reports whether no settings were supplied
func (s *Settings) IsZero() bool {
	return s == nil || *s == Settings{}
}

// Resolve converts the request into model settings
func (s *Settings) Resolve() (model.Settings, error) {
	if s.Difficulty != "" {
		preset, ok := model.PresetSettings(model.Difficulty(s.Difficulty))
		if !ok {
			return model.Settings{}, fmt.Errorf("%w: unknown difficulty %q", model.ErrInvalidSettings, s.Difficulty)
		}
		return preset, nil
	}
	return model.Settings{Width: s.Width, Height: s.Height, Mines: s.Mines}, nil
}

// CreateLobbyRequest is the request body for creating a lobby
type CreateLobbyRequest struct {
	Settings *Settings `json:"settings,omitempty"`
}

// UpdateSettingsRequest is the request body for changing lobby settings
type UpdateSettingsRequest = Settings

// StartGameRequest is the request body for starting a game. Settings
// are optional and default to the lobby's.
type StartGameRequest struct {
	Settings *Settings `json:"settings,omitempty"`
}

// SetRoleRequest is the request body for setting a member's role
type SetRoleRequest struct {
	Role string `json:"role"`
}

// TransferHostRequest is the request body for transferring host
type TransferHostRequest struct {
	NewHostID string `json:"new_host_id"`
}

// CellRequest is the request body for reveal and flag moves
type CellRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ChatRequest is the request body for posting a chat message
type ChatRequest struct {
	Text string `json:"text"`
}

// AddBotRequest is the request body for adding a bot to a lobby. An empty
// strategy uses the default.
type AddBotRequest struct {
	Strategy string `json:"strategy,omitempty"`
}

// PlayBotRequest is the request body for letting a bot play. Settings are
// optional and default to the lobby's.
type PlayBotRequest = StartGameRequest
