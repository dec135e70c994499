package rules

import (
	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// ActionChecker decides whether units still have something legal to do
type ActionChecker struct {
	rules Rules
}

// NewActionChecker creates a new action checker
func NewActionChecker(r Rules) *ActionChecker {
	return &ActionChecker{rules: r}
}

// UnitHasActions reports whether u, standing on at, can still move or attack
// this turn. A unit that has not attacked always counts as having an action.
func (ac *ActionChecker) UnitHasActions(grid *core.Grid, at core.Coordinate, u *core.Unit) bool {
	if ac.rules.SingleMovePerTurn && !u.HasMoved {
		return true
	}
	if !u.HasAttacked {
		return true
	}
	if u.RemainingMove < core.OrthogonalCost {
		return false
	}
	return !IsSurrounded(grid, at, u.RemainingMove >= core.DiagonalCost)
}

// UnitsHaveActions reports whether any unit of player can still act
func (ac *ActionChecker) UnitsHaveActions(grid *core.Grid, player core.PlayerID) bool {
	for _, pl := range grid.UnitsOf(player) {
		if ac.UnitHasActions(grid, pl.At, pl.Unit) {
			return true
		}
	}
	return false
}

// IsSurrounded reports whether no orthogonal neighbour of at (and, with
// diagonals, no diagonal one) is walkable and free. The board edge counts as
// a wall.
func IsSurrounded(grid *core.Grid, at core.Coordinate, diagonals bool) bool {
	for _, o := range core.NeighborOffsets {
		if o.Cost == core.DiagonalCost && !diagonals {
			continue
		}
		n := core.Coordinate{X: at.X + o.DX, Y: at.Y + o.DY}
		if grid.IsWalkable(n) && grid.IsFree(n) {
			return false
		}
	}
	return true
}
