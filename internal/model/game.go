package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameStatus represents the current phase of a game
type GameStatus string

const (
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusWon        GameStatus = "won"
	GameStatusLost       GameStatus = "lost"
	GameStatusAbandoned  GameStatus = "abandoned" // player left or host cancelled
)

// IsTerminal returns true once no further moves are accepted
func (s GameStatus) IsTerminal() bool {
	return s != GameStatusInProgress
}

// Game is one player's minesweeper session inside a lobby
type Game struct {
	ID        GameID
	LobbyCode LobbyCode
	PlayerID  PlayerID
	Settings  Settings
	Board     *Board
	Status    GameStatus

	OpenCount     int
	FlagCount     int
	FirstMoveDone bool // mines are placed on the first accepted reveal

	// Timing. StartedAt is zero until the first reveal, EndedAt until the
	// game reaches a terminal status.
	StartedAt time.Time
	EndedAt   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ElapsedSeconds returns the whole seconds played as of now. The value is
// zero before the first reveal and frozen once the game has ended.
func (g *Game) ElapsedSeconds(now time.Time) int {
	if g.StartedAt.IsZero() {
		return 0
	}
	end := now
	if !g.EndedAt.IsZero() {
		end = g.EndedAt
	}
	if end.Before(g.StartedAt) {
		return 0
	}
	return int(end.Sub(g.StartedAt) / time.Second)
}

// RemainingMines returns the mine count minus placed flags. It can go
// negative when the player over-flags.
func (g *Game) RemainingMines() int {
	return g.Settings.Mines - g.FlagCount
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	clone := *g
	if g.Board != nil {
		clone.Board = g.Board.Clone()
	}
	return &clone
}

// GameResult is the payload of the game-end notification
type GameResult struct {
	Status         GameStatus // won or lost
	ElapsedSeconds int
}

// MoveOutcome classifies the effect of a reveal
type MoveOutcome string

const (
	OutcomeNone     MoveOutcome = ""         // move was ignored or was a flag toggle
	OutcomeContinue MoveOutcome = "continue" // cells opened, game continues
	OutcomeHitMine  MoveOutcome = "hit_mine"
	OutcomeCleared  MoveOutcome = "cleared" // every non-mine cell is open
)

// MoveKind distinguishes reveal and flag requests
type MoveKind string

const (
	MoveReveal MoveKind = "reveal"
	MoveFlag   MoveKind = "flag"
)

// MoveResult describes what a single request changed. Ignored requests
// come back with Accepted false and no changed cells.
type MoveResult struct {
	Accepted  bool
	Outcome   MoveOutcome
	Changed   []Position
	Status    GameStatus
	OpenCount int
	FlagCount int
}
