package game

import (
	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/pathfinding"
)

// AutoPlayer produces the commands of one computer-controlled turn. Every
// unit the player owned when the turn began is selected in turn and sent at
// the nearest enemy. Pacing is up to the caller: Next hands out one command
// at a time.
type AutoPlayer struct {
	engine *Engine
	player core.PlayerID
	turn   int
	queue  []core.UnitID

	// selecting is set once the head of the queue has been selected
	selecting bool
	finishing int
	done      bool
}

// NewAutoPlayer snapshots the current player's units in board order
func NewAutoPlayer(e *Engine) *AutoPlayer {
	ap := &AutoPlayer{
		engine: e,
		player: e.CurrentPlayer(),
		turn:   e.Turn(),
	}
	for _, pl := range e.Grid().UnitsOf(ap.player) {
		ap.queue = append(ap.queue, pl.Unit.ID)
	}
	return ap
}

// Next returns the next command to execute, or false once the turn is over
func (ap *AutoPlayer) Next() (core.Command, bool) {
	e := ap.engine
	if ap.done || e.IsOver() || e.CurrentPlayer() != ap.player || e.Turn() != ap.turn {
		ap.done = true
		return core.Command{}, false
	}

	for len(ap.queue) > 0 {
		id := ap.queue[0]
		u := e.Grid().Unit(id)
		if u == nil {
			ap.advance()
			continue
		}
		at, ok := e.Grid().Locate(id)
		if !ok {
			ap.advance()
			continue
		}
		if u.Busy {
			return core.Wait(), true
		}

		if !ap.selecting {
			ap.selecting = true
			return core.Select(at), true
		}

		selected, ok := e.Selected()
		ap.advance()
		if !ok || selected != at {
			continue
		}
		if target, found := ap.nearestEnemy(); found {
			return core.RightClick(target), true
		}
	}

	switch ap.finishing {
	case 0:
		ap.finishing++
		return core.Deselect(), true
	case 1:
		ap.finishing++
		return core.EndTurn(), true
	}
	ap.done = true
	return core.Command{}, false
}

func (ap *AutoPlayer) advance() {
	ap.queue = ap.queue[1:]
	ap.selecting = false
}

// nearestEnemy picks the enemy with the smallest path distance from the
// selected unit. Ties go to the first one in board order.
func (ap *AutoPlayer) nearestEnemy() (core.Coordinate, bool) {
	e := ap.engine
	best, bestDist := core.Coordinate{}, pathfinding.Unreachable
	for _, pl := range e.Grid().Units() {
		if !pl.Unit.IsEnemyOf(ap.player) {
			continue
		}
		if d := e.DistanceTo(pl.At); d < bestDist {
			best, bestDist = pl.At, d
		}
	}
	return best, bestDist != pathfinding.Unreachable
}

// Remaining is the number of units still waiting for orders
func (ap *AutoPlayer) Remaining() int { return len(ap.queue) }
