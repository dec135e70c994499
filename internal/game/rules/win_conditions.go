package rules

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckGameOver scans the board for a unit that does not belong to current.
// The game is over when there is none, and current is the winner.
// Returns (isGameOver, winnerID)
func (wc *WinConditionChecker) CheckGameOver(grid *core.Grid, current core.PlayerID) (bool, core.PlayerID) {
	counts := make(map[core.PlayerID]int)
	for _, pl := range grid.Units() {
		counts[pl.Unit.Owner]++
	}

	for owner := range counts {
		if owner != current {
			wc.logger.Debug().Bool("is_game_over", false).Interface("units_per_player", counts).Msg("Game over check complete")
			return false, core.NoPlayer
		}
	}

	wc.logger.Info().Int("winner_player_id", int(current)).Int("units_left", counts[current]).Msg("Winner determined")
	return true, current
}
