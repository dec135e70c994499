package ranges

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/pathfinding"
)

// Classifier turns a distance graph and a unit's budgets into display flags.
// It only ever writes to its own overlay.
type Classifier struct {
	overlay *Overlay
	logger  zerolog.Logger
}

func NewClassifier(w, h int, logger zerolog.Logger) *Classifier {
	return &Classifier{
		overlay: NewOverlay(w, h),
		logger:  logger.With().Str("component", "RangeClassifier").Logger(),
	}
}

func (c *Classifier) Overlay() *Overlay                   { return c.overlay }
func (c *Classifier) Has(at core.Coordinate, f Flag) bool { return c.overlay.Has(at, f) }
func (c *Classifier) Flags(at core.Coordinate) Flag       { return c.overlay.Flags(at) }

// InStrikeRange reports whether u, standing on the graph's source, can hit at
// without moving
func InStrikeRange(g *pathfinding.Graph, u *core.Unit, at core.Coordinate) bool {
	if at == g.Source || !g.Reachable(at) {
		return false
	}
	return u.CanStrike(g.Distance(at), g.Source.IsAdjacentTo(at))
}

// Classify marks the move range, attack preview and enemies in reach of u.
// Previous selection flags are dropped first; threat flags are kept.
func (c *Classifier) Classify(g *pathfinding.Graph, grid *core.Grid, u *core.Unit) {
	c.ClearSelection()
	reach := u.RemainingMove + u.AttackRange

	for i, n := range g.Nodes {
		at := grid.At(i)
		if n.Distance == pathfinding.Unreachable || at == g.Source {
			continue
		}
		if n.Distance <= u.RemainingMove && grid.IsFree(at) {
			c.overlay.Set(at, MoveRange)
		}
		strike := InStrikeRange(g, u, at)
		if strike {
			c.overlay.Set(at, AttackRange)
		}
		if occ := grid.OccupantAt(at); occ != nil && occ.IsEnemyOf(u.Owner) {
			if strike || n.Distance <= reach {
				c.overlay.Set(at, EnemyInRange)
			}
		}
	}

	c.logger.Debug().
		Str("source", g.Source.String()).
		Int("move_tiles", c.overlay.Count(MoveRange)).
		Int("attack_tiles", c.overlay.Count(AttackRange)).
		Int("enemies_in_range", c.overlay.Count(EnemyInRange)).
		Msg("Classified ranges")
}

// MarkThreat adds every tile enemy could reach and strike this turn to the
// threat zone. With useRemaining the enemy's remaining move is used instead of
// its full move.
func (c *Classifier) MarkThreat(g *pathfinding.Graph, enemy *core.Unit, useRemaining bool) {
	move := enemy.MaxMove
	if useRemaining {
		move = enemy.RemainingMove
	}
	reach := move + enemy.AttackRange

	for i, n := range g.Nodes {
		at := core.FromIndex(i, g.W)
		if n.Distance == pathfinding.Unreachable || at == g.Source {
			continue
		}
		if n.Distance <= reach || (enemy.AttackRange > 0 && g.Source.IsAdjacentTo(at)) {
			c.overlay.Set(at, Threat)
		}
	}
}

// MarkPath flags a preview trail, replacing the previous one
func (c *Classifier) MarkPath(trail []core.Coordinate) {
	c.overlay.Clear(OnPath)
	for _, at := range trail {
		c.overlay.Set(at, OnPath)
	}
}

func (c *Classifier) ClearSelection() { c.overlay.Clear(SelectionFlags) }
func (c *Classifier) ClearThreat()    { c.overlay.Clear(Threat) }
func (c *Classifier) ClearPath()      { c.overlay.Clear(OnPath) }
