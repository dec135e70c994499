package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrIllegalMove        = errors.New("illegal move")
	ErrTileOccupied       = errors.New("tile already occupied")
	ErrNoUnit             = errors.New("no unit on tile")
	ErrGameOver           = errors.New("game is over")
	ErrInvalidPlayer      = errors.New("invalid player ID")
	ErrUnknownGame        = errors.New("unknown game")
	ErrEmptyLevel         = errors.New("level has no rows")
	ErrUnknownCommand     = errors.New("unknown command")
)

// CommandError attaches the offending command to an underlying error
type CommandError struct {
	Command Command
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// WrapCommandError wraps err with the command that produced it. Nil stays nil.
func WrapCommandError(cmd Command, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Command: cmd, Err: err}
}

// WrapGameStateError adds turn and phase context to an error
func WrapGameStateError(turn int, phase string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("game turn %d [%s]: %w", turn, phase, err)
}

// WrapPlayerError adds player context to an error
func WrapPlayerError(playerID PlayerID, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("player %d %s: %w", playerID, operation, err)
}

// GameError is a structured error carrying the turn it happened on
type GameError struct {
	Turn      int
	PlayerID  PlayerID
	Operation string
	Err       error
}

// NewGameError creates a GameError. A negative player ID omits the player part.
func NewGameError(turn int, playerID PlayerID, operation string, err error) *GameError {
	return &GameError{Turn: turn, PlayerID: playerID, Operation: operation, Err: err}
}

func (e *GameError) Error() string {
	if e.PlayerID < 0 {
		return fmt.Sprintf("turn %d: %s: %v", e.Turn, e.Operation, e.Err)
	}
	return fmt.Sprintf("turn %d: player %d %s: %v", e.Turn, e.PlayerID, e.Operation, e.Err)
}

func (e *GameError) Unwrap() error { return e.Err }
