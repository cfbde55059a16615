package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidSettings    = "INVALID_SETTINGS"
	CodePlacementExhausted = "PLACEMENT_EXHAUSTED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotHost            = "NOT_HOST"
	CodeNotPlayerRole      = "NOT_PLAYER_ROLE"
	CodeNotGameOwner       = "NOT_GAME_OWNER"
	CodeNotBot             = "NOT_BOT"
	CodeUnknownBotStrategy = "UNKNOWN_BOT_STRATEGY"
	CodeBotCannotHost      = "BOT_CANNOT_HOST"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeLobbyNotFound      = "LOBBY_NOT_FOUND"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeAlreadyInLobby     = "ALREADY_IN_LOBBY"
	CodeNotInLobby         = "NOT_IN_LOBBY"
	CodeEmptyMessage       = "EMPTY_MESSAGE"
	CodeMessageTooLong     = "MESSAGE_TOO_LONG"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidEmbedToken  = "INVALID_EMBED_TOKEN"
	CodeEmbedDisabled      = "EMBED_DISABLED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Map model errors
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrLobbyNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeLobbyNotFound, "Lobby not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrAlreadyInLobby):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInLobby, "Already in this lobby"}}
	case errors.Is(err, model.ErrNotInLobby):
		return &httpError{http.StatusNotFound, APIError{CodeNotInLobby, "Not in this lobby"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}
	case errors.Is(err, model.ErrNotPlayerRole):
		return &httpError{http.StatusForbidden, APIError{CodeNotPlayerRole, "Spectators cannot play"}}
	case errors.Is(err, model.ErrNotGameOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotGameOwner, "Only the owner can play this board"}}
	case errors.Is(err, model.ErrNotBot):
		return &httpError{http.StatusBadRequest, APIError{CodeNotBot, "Player is not a bot"}}
	case errors.Is(err, model.ErrUnknownBotStrategy):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownBotStrategy, err.Error()}}
	case errors.Is(err, model.ErrBotCannotHost):
		return &httpError{http.StatusBadRequest, APIError{CodeBotCannotHost, "Bots cannot host a lobby"}}
	case errors.Is(err, model.ErrInvalidSettings):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSettings, err.Error()}}
	case errors.Is(err, model.ErrPlacementExhausted):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodePlacementExhausted, "Too many mines for a safe first move on this board"}}
	case errors.Is(err, model.ErrEmptyMessage):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyMessage, "Message is empty"}}
	case errors.Is(err, model.ErrMessageTooLong):
		return &httpError{http.StatusBadRequest, APIError{CodeMessageTooLong, "Message is too long"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, auth.ErrInvalidEmbedToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidEmbedToken, "Invalid or expired embed token"}}
	case errors.Is(err, auth.ErrEmbedDisabled):
		return &httpError{http.StatusNotFound, APIError{CodeEmbedDisabled, "Embedding is not enabled on this server"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
