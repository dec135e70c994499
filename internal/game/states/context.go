package states

import (
	"time"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// GameContext is what the lifecycle knows about a game: whose turn it is,
// how many turns were played and how the game ended
type GameContext struct {
	GameID        string
	Turn          int
	CurrentPlayer core.PlayerID
	Winner        core.PlayerID
	Restarts      int
	StartTime     time.Time
	EndTime       time.Time
}

// Elapsed returns the time since the first turn, stopping at the end of the game
func (gc GameContext) Elapsed(now time.Time) time.Duration {
	switch {
	case gc.StartTime.IsZero():
		return 0
	case !gc.EndTime.IsZero():
		return gc.EndTime.Sub(gc.StartTime)
	}
	return now.Sub(gc.StartTime)
}
