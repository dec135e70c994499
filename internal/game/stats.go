package game

import "github.com/mitchelldurbincs/GridTactics/internal/game/core"

// PlayerStats summarises one side of the board
type PlayerStats struct {
	Player      core.PlayerID `json:"player"`
	Units       int           `json:"units"`
	Health      int           `json:"health"`
	MaxHealth   int           `json:"max_health"`
	ActiveUnits int           `json:"active_units"` // units that can still move or attack
}

// Stats recalculates the per-player statistics with a full board scan
func (e *Engine) Stats() [2]PlayerStats {
	var out [2]PlayerStats
	for pid := range out {
		out[pid].Player = core.PlayerID(pid)
	}

	for _, pl := range e.grid.Units() {
		if !pl.Unit.Owner.Valid() {
			continue
		}
		s := &out[pl.Unit.Owner]
		s.Units++
		s.Health += pl.Unit.Health
		s.MaxHealth += pl.Unit.MaxHealth
		if e.actions.UnitHasActions(e.grid, pl.At, pl.Unit) {
			s.ActiveUnits++
		}
	}
	return out
}
