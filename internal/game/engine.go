package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
	"github.com/mitchelldurbincs/GridTactics/internal/game/level"
	"github.com/mitchelldurbincs/GridTactics/internal/game/pathfinding"
	"github.com/mitchelldurbincs/GridTactics/internal/game/processor"
	"github.com/mitchelldurbincs/GridTactics/internal/game/ranges"
	"github.com/mitchelldurbincs/GridTactics/internal/game/rules"
	"github.com/mitchelldurbincs/GridTactics/internal/game/states"
)

// Player is one of the two sides of a game
type Player struct {
	ID   core.PlayerID `json:"id"`
	Name string        `json:"name"`
	IsAI bool          `json:"is_ai"`
}

// Engine is the turn controller. It owns the grid, the distance graph of the
// current selection and the range overlay, and applies commands for the
// player whose turn it is. It is not safe for concurrent use.
type Engine struct {
	gameID  string
	level   *level.Level
	grid    *core.Grid
	rules   rules.Rules
	players [2]Player
	first   core.PlayerID
	current core.PlayerID

	selected    core.Coordinate
	selectedID  core.UnitID
	hasSelected bool
	graph       *pathfinding.Graph
	threatGraph *pathfinding.Graph

	gameOver bool
	winner   core.PlayerID

	logger        zerolog.Logger
	pathfinder    *pathfinding.Pathfinder
	classifier    *ranges.Classifier
	actions       *rules.ActionChecker
	winCondition  *rules.WinConditionChecker
	cmdProcessor  *processor.CommandProcessor
	eventBus      *events.EventBus
	lifecycle     *states.Lifecycle
	auto          *AutoPlayer
	turnProcessor *TurnProcessor
}

// NewEngine creates an engine from cfg and starts the first turn
func NewEngine(ctx context.Context, cfg GameConfig) (*Engine, error) {
	return NewEngineInitializer(cfg).Initialize(ctx)
}

// Execute applies a single command for the current player
func (e *Engine) Execute(cmd core.Command) core.Outcome {
	switch cmd.Kind {
	case core.CommandSelect:
		return e.SelectTile(cmd.Target)
	case core.CommandDeselect:
		return e.DeselectTile()
	case core.CommandHover:
		return e.Hover(cmd.Target)
	case core.CommandRightClick:
		return e.RightClick(cmd.Target)
	case core.CommandEndTurn:
		return e.EndTurn()
	case core.CommandWait:
		return core.Outcome{Kind: core.OutcomeWaiting}
	default:
		return e.reject(cmd, core.ErrUnknownCommand.Error())
	}
}

// ProcessCommands runs a batch of commands on behalf of player
func (e *Engine) ProcessCommands(ctx context.Context, player core.PlayerID, cmds []core.Command) ([]processor.Result, error) {
	return e.cmdProcessor.ProcessCommands(ctx, e, player, cmds)
}

// SelectTile selects the friendly unit on c and computes its ranges. An empty
// tile clears the selection.
func (e *Engine) SelectTile(c core.Coordinate) core.Outcome {
	cmd := core.Select(c)
	if e.gameOver {
		return e.reject(cmd, "game is over")
	}

	u := e.grid.OccupantAt(c)
	if u == nil {
		return e.DeselectTile()
	}
	if u.IsEnemyOf(e.current) {
		return e.reject(cmd, "unit belongs to the other player")
	}
	if u.Busy {
		return e.reject(cmd, "unit is busy")
	}

	e.clearSelection()
	e.selected, e.selectedID, e.hasSelected = c, u.ID, true
	e.pathfinder.Compute(e.grid, c, e.graph)
	e.classifier.Classify(e.graph, e.grid, u)

	overlay := e.classifier.Overlay()
	e.eventBus.Publish(events.NewUnitSelectedEvent(
		e.gameID, e.current, e.Turn(), u.ID, c,
		overlay.Count(ranges.MoveRange),
		overlay.Count(ranges.AttackRange),
		overlay.Count(ranges.EnemyInRange),
	))
	return core.Outcome{Kind: core.OutcomeSelected}
}

// DeselectTile drops the selection. Calling it with nothing selected is a
// no-op that still reports deselected.
func (e *Engine) DeselectTile() core.Outcome {
	had, id := e.hasSelected, e.selectedID
	e.clearSelection()
	if had {
		e.eventBus.Publish(events.NewSelectionClearedEvent(e.gameID, e.current, e.Turn(), id))
	}
	return core.Outcome{Kind: core.OutcomeDeselected}
}

func (e *Engine) clearSelection() {
	e.hasSelected = false
	e.selected, e.selectedID = core.Coordinate{}, core.NoUnit
	e.graph.Reset()
	e.classifier.ClearSelection()
}

// Hover previews the path of the selected unit to c. Hovering an unreachable
// tile clears the preview.
func (e *Engine) Hover(c core.Coordinate) core.Outcome {
	if !e.hasSelected {
		return core.Rejected("no unit selected")
	}
	e.classifier.MarkPath(e.graph.PathTo(c))
	return core.Outcome{Kind: core.OutcomePreviewed}
}

// RightClick orders the selected unit to move to c or attack the enemy on it
func (e *Engine) RightClick(c core.Coordinate) core.Outcome {
	cmd := core.RightClick(c)
	if e.gameOver {
		return e.reject(cmd, "game is over")
	}
	if !e.hasSelected {
		return e.reject(cmd, "no unit selected")
	}
	from := e.selected
	u := e.grid.OccupantAt(from)
	if u == nil || u.IsEnemyOf(e.current) {
		return e.reject(cmd, "no friendly unit selected")
	}
	if u.Busy {
		return e.reject(cmd, "unit is busy")
	}
	if !e.grid.InBounds(c) {
		return e.reject(cmd, "target is off the board")
	}

	var out core.Outcome
	switch target := e.grid.OccupantAt(c); {
	case target == nil:
		out = e.move(cmd, from, u, c)
	case !target.IsEnemyOf(e.current):
		return e.reject(cmd, "target is a friendly unit")
	case target.Busy:
		return e.reject(cmd, "target is busy")
	default:
		out = e.attack(cmd, from, u, c, target)
	}

	if out.IsAction() {
		e.turnProcessor.AfterAction()
	}
	return out
}

// move walks u as far as its remaining move allows along the shortest path
// to target.
func (e *Engine) move(cmd core.Command, from core.Coordinate, u *core.Unit, target core.Coordinate) core.Outcome {
	if e.rules.SingleMovePerTurn && u.HasMoved {
		return e.reject(cmd, "unit has already moved")
	}
	reached, trail := e.graph.MaxReachable(target, u.RemainingMove)
	if reached == from {
		return e.reject(cmd, "target is out of reach")
	}
	if err := e.relocate(from, reached, u); err != nil {
		return e.reject(cmd, err.Error())
	}
	e.DeselectTile()
	// the stretch left for a later turn stays previewed until the next selection
	e.classifier.MarkPath(trail)
	return core.Outcome{Kind: core.OutcomeMoved}
}

// attack strikes target directly when it is in range, moves into range first
// when the remaining move allows it, and otherwise moves towards it.
func (e *Engine) attack(cmd core.Command, from core.Coordinate, u *core.Unit, target core.Coordinate, enemy *core.Unit) core.Outcome {
	if u.HasAttacked {
		return e.reject(cmd, "unit has already attacked")
	}

	d := e.graph.Distance(target)
	if u.CanStrike(d, from.IsAdjacentTo(target)) {
		e.strike(from, u, target, enemy)
		e.DeselectTile()
		return core.Outcome{Kind: core.OutcomeAttacked}
	}

	if u.AttackRange <= 0 || d == pathfinding.Unreachable || d > u.AttackRange+u.RemainingMove {
		return e.move(cmd, from, u, target)
	}

	if e.rules.SingleMovePerTurn && u.HasMoved {
		return e.reject(cmd, "unit has already moved")
	}
	approach, ok := e.graph.ApproachTile(target, u.AttackRange)
	if !ok {
		return e.reject(cmd, "no tile to attack from")
	}
	budget := min(e.graph.Distance(approach), u.RemainingMove)
	reached, _ := e.graph.MaxReachable(approach, budget)
	if reached == from || reached != approach {
		return e.reject(cmd, "cannot reach a tile to attack from")
	}

	if err := e.relocate(from, reached, u); err != nil {
		return e.reject(cmd, err.Error())
	}
	e.strike(reached, u, target, enemy)
	e.DeselectTile()
	return core.Outcome{Kind: core.OutcomeMovedAndAttacked}
}

// relocate moves u from from to to along the selection graph and charges the
// path cost
func (e *Engine) relocate(from, to core.Coordinate, u *core.Unit) error {
	cost := e.graph.Distance(to)
	path := e.graph.PathTo(to)
	if err := e.grid.MoveUnit(from, to); err != nil {
		return fmt.Errorf("move %s to %s: %w", from, to, err)
	}
	u.Spend(cost)
	u.HasMoved = true
	if e.rules.SingleMovePerTurn {
		u.RemainingMove = 0
	}

	e.logger.Debug().
		Int("unit", int(u.ID)).
		Str("from", from.String()).
		Str("to", to.String()).
		Int("cost", cost).
		Int("remaining", u.RemainingMove).
		Msg("Unit moved")
	e.eventBus.Publish(events.NewUnitMovedEvent(e.gameID, e.current, e.Turn(), u.ID, from, to, path, cost, u.RemainingMove))
	return nil
}

// strike resolves one attack. A defender left without health is taken off
// the board.
func (e *Engine) strike(from core.Coordinate, u *core.Unit, target core.Coordinate, enemy *core.Unit) {
	killed := enemy.TakeDamage(u.AttackDamage)
	u.HasAttacked = true

	e.logger.Debug().
		Int("attacker", int(u.ID)).
		Int("defender", int(enemy.ID)).
		Int("damage", u.AttackDamage).
		Int("health", enemy.Health).
		Msg("Unit attacked")
	e.eventBus.Publish(events.NewUnitAttackedEvent(e.gameID, e.current, e.Turn(), u.ID, enemy.ID, from, target, u.AttackDamage, enemy.Health))

	if killed {
		e.grid.RemoveUnit(target)
		e.eventBus.Publish(events.NewUnitDestroyedEvent(e.gameID, e.Turn(), enemy.ID, enemy.Owner, target, u.ID))
	}
}

// EndTurn passes the turn to the other player
func (e *Engine) EndTurn() core.Outcome {
	if e.gameOver {
		return e.reject(core.EndTurn(), "game is over")
	}
	if err := e.SwitchPlayer(); err != nil {
		return e.reject(core.EndTurn(), err.Error())
	}
	return core.Outcome{Kind: core.OutcomeTurnSwitched}
}

// SwitchPlayer clears the selection, hands the turn to the other player and
// rests that player's units
func (e *Engine) SwitchPlayer() error {
	return e.turnProcessor.SwitchPlayer()
}

// CheckGameOver ends the game when no unit of another player is left
func (e *Engine) CheckGameOver() (core.PlayerID, bool) {
	return e.turnProcessor.CheckGameOver()
}

// SetBusy marks the unit on c as busy or idle. The engine will not act on a
// busy unit.
func (e *Engine) SetBusy(c core.Coordinate, busy bool) error {
	u := e.grid.OccupantAt(c)
	if u == nil {
		return fmt.Errorf("set busy %s: %w", c, core.ErrNoUnit)
	}
	u.Busy = busy
	return nil
}

// Restart reloads the level the engine was created with
func (e *Engine) Restart() error {
	return e.turnProcessor.Restart()
}

// RunAITurn plays the current AI player's turn without pacing. It returns
// early when a busy unit makes the AI wait.
func (e *Engine) RunAITurn(ctx context.Context) ([]processor.Result, error) {
	if e.gameOver {
		return nil, core.WrapGameStateError(e.Turn(), "ai turn", core.ErrGameOver)
	}
	if !e.players[e.current].IsAI {
		return nil, core.WrapPlayerError(e.current, "ai turn", core.ErrInvalidPlayer)
	}
	if e.auto == nil {
		e.auto = NewAutoPlayer(e)
	}
	// The turn switch at the end of the AI turn replaces e.auto
	auto := e.auto

	var results []processor.Result
	for {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		cmd, ok := auto.Next()
		if !ok {
			return results, nil
		}
		out := e.Execute(cmd)
		results = append(results, processor.Result{Command: cmd, Outcome: out})
		if out.Kind == core.OutcomeWaiting {
			return results, nil
		}
	}
}

func (e *Engine) reject(cmd core.Command, reason string) core.Outcome {
	e.logger.Debug().
		Str("command", cmd.String()).
		Int("player", int(e.current)).
		Str("reason", reason).
		Msg("Command rejected")
	e.eventBus.Publish(events.NewActionRejectedEvent(e.gameID, e.current, e.Turn(), cmd, reason))
	return core.Rejected(reason)
}

// Queries

func (e *Engine) GameID() string                          { return e.gameID }
func (e *Engine) Grid() *core.Grid                        { return e.grid }
func (e *Engine) Graph() *pathfinding.Graph               { return e.graph }
func (e *Engine) Level() *level.Level                     { return e.level }
func (e *Engine) Rules() rules.Rules                      { return e.rules }
func (e *Engine) EventBus() *events.EventBus              { return e.eventBus }
func (e *Engine) CurrentPlayer() core.PlayerID            { return e.current }
func (e *Engine) Player(id core.PlayerID) Player          { return e.players[id] }
func (e *Engine) Phase() states.GamePhase                 { return e.lifecycle.Phase() }
func (e *Engine) IsOver() bool                            { return e.gameOver }
func (e *Engine) Winner() core.PlayerID                   { return e.winner }
func (e *Engine) Turn() int                               { return e.lifecycle.Turn() }
func (e *Engine) InBounds(c core.Coordinate) bool         { return e.grid.InBounds(c) }
func (e *Engine) IsWalkable(c core.Coordinate) bool       { return e.grid.IsWalkable(c) }
func (e *Engine) IsOccupied(c core.Coordinate) bool       { return e.grid.IsOccupied(c) }
func (e *Engine) IsFree(c core.Coordinate) bool           { return e.grid.IsFree(c) }
func (e *Engine) OccupantAt(c core.Coordinate) *core.Unit { return e.grid.OccupantAt(c) }

// Selected returns the coordinate of the selected unit
func (e *Engine) Selected() (core.Coordinate, bool) { return e.selected, e.hasSelected }

// SelectedUnit returns the selected unit, or nil
func (e *Engine) SelectedUnit() *core.Unit {
	if !e.hasSelected {
		return nil
	}
	return e.grid.OccupantAt(e.selected)
}

// DistanceTo is the path cost from the selected unit to c, or
// pathfinding.Unreachable with nothing selected
func (e *Engine) DistanceTo(c core.Coordinate) int { return e.graph.Distance(c) }

func (e *Engine) IsInMoveRange(c core.Coordinate) bool   { return e.has(c, ranges.MoveRange) }
func (e *Engine) IsInAttackRange(c core.Coordinate) bool { return e.has(c, ranges.AttackRange) }
func (e *Engine) IsOnPreviewPath(c core.Coordinate) bool { return e.has(c, ranges.OnPath) }
func (e *Engine) IsEnemyInRange(c core.Coordinate) bool  { return e.has(c, ranges.EnemyInRange) }

func (e *Engine) has(c core.Coordinate, f ranges.Flag) bool { return e.classifier.Has(c, f) }

// IsThreatenedByEnemy reports whether an enemy of the current player could
// reach and strike c on its next turn
func (e *Engine) IsThreatenedByEnemy(c core.Coordinate) bool {
	return e.has(c, ranges.Threat)
}

// UnitsHaveActions reports whether any unit of the current player can still act
func (e *Engine) UnitsHaveActions() bool {
	return e.actions.UnitsHaveActions(e.grid, e.current)
}
