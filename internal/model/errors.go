package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Lobby errors
	ErrLobbyNotFound  = errors.New("lobby not found")
	ErrAlreadyInLobby = errors.New("player is already in lobby")
	ErrNotInLobby     = errors.New("player is not in lobby")
	ErrNotHost        = errors.New("player is not the host")
	ErrNotPlayerRole  = errors.New("spectators cannot play")

	// Bot errors
	ErrNotBot             = errors.New("player is not a bot")
	ErrUnknownBotStrategy = errors.New("unknown bot strategy")
	ErrBotCannotHost      = errors.New("bots cannot host a lobby")

	// Game errors
	ErrGameNotFound       = errors.New("game not found")
	ErrNotGameOwner       = errors.New("game belongs to another player")
	ErrInvalidSettings    = errors.New("invalid board settings")
	ErrPlacementExhausted = errors.New("not enough cells outside the safe zone for the requested mines")

	// Chat errors
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message is too long")
)
