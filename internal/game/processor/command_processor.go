package processor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// Executor is the part of the engine a batch is run against.
// This avoids circular imports
type Executor interface {
	Execute(cmd core.Command) core.Outcome
	CurrentPlayer() core.PlayerID
	IsOver() bool
}

// Result pairs a command with what it did
type Result struct {
	Command core.Command `json:"command"`
	Outcome core.Outcome `json:"outcome"`
}

// CommandProcessor applies a batch of commands submitted by one player
type CommandProcessor struct {
	logger zerolog.Logger
}

// NewCommandProcessor creates a new command processor
func NewCommandProcessor(logger zerolog.Logger) *CommandProcessor {
	return &CommandProcessor{
		logger: logger.With().Str("component", "CommandProcessor").Logger(),
	}
}

// ProcessCommands runs cmds in order on behalf of player. Processing stops
// when the context is cancelled, the game ends, or the turn passes to the
// other player; commands after that point are not run. Unknown commands are
// skipped and the first of them is returned as an error once the batch is
// done.
func (cp *CommandProcessor) ProcessCommands(ctx context.Context, ex Executor, player core.PlayerID, cmds []core.Command) ([]Result, error) {
	results := make([]Result, 0, len(cmds))
	var encounteredError error

	for i, cmd := range cmds {
		// Check context before processing each command
		select {
		case <-ctx.Done():
			cp.logger.Warn().Err(ctx.Err()).Int("processed", i).Msg("Command processing interrupted by context cancellation")
			return results, ctx.Err()
		default:
		}

		if ex.IsOver() {
			cp.logger.Debug().Int("processed", i).Msg("Game over, dropping remaining commands")
			return results, core.WrapCommandError(cmd, core.ErrGameOver)
		}
		if current := ex.CurrentPlayer(); current != player {
			cp.logger.Debug().
				Int("player_id", int(player)).
				Int("current_player", int(current)).
				Int("dropped", len(cmds)-i).
				Msg("Turn passed, dropping remaining commands")
			return results, core.WrapPlayerError(player, "submit commands", core.ErrInvalidPlayer)
		}

		if !cmd.Kind.Valid() {
			wrapped := core.WrapCommandError(cmd, core.ErrUnknownCommand)
			cp.logger.Warn().Err(wrapped).Int("player_id", int(player)).Msg("Skipping unknown command")
			if encounteredError == nil {
				encounteredError = wrapped
			}
			results = append(results, Result{Command: cmd, Outcome: core.Rejected("unknown command")})
			continue
		}

		outcome := ex.Execute(cmd)
		cp.logger.Debug().
			Int("player_id", int(player)).
			Str("command", cmd.String()).
			Str("outcome", string(outcome.Kind)).
			Str("reason", outcome.Reason).
			Msg("Applied command")
		results = append(results, Result{Command: cmd, Outcome: outcome})
	}

	return results, encounteredError
}
