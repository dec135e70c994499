package game

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
	"github.com/mitchelldurbincs/GridTactics/internal/game/ranges"
)

// TurnProcessor handles everything that happens between two players' turns:
// handing over the turn, resting units, threat zones and the end of the game
type TurnProcessor struct {
	engine *Engine
	logger zerolog.Logger
}

// NewTurnProcessor creates a new turn processor
func NewTurnProcessor(engine *Engine) *TurnProcessor {
	return &TurnProcessor{
		engine: engine,
		logger: engine.logger,
	}
}

// Start begins the first turn of a freshly loaded level
func (tp *TurnProcessor) Start(reason string) error {
	e := tp.engine
	for _, pl := range e.grid.Units() {
		pl.Unit.Rest()
	}
	threats := tp.refreshThreats()

	isAI := e.players[e.current].IsAI
	if err := e.lifecycle.BeginTurn(e.current, isAI, reason); err != nil {
		tp.logger.Error().Err(err).Msg("Failed to start first turn")
		return err
	}
	tp.resetAutoPlayer()

	e.eventBus.Publish(events.NewGameStartedEvent(e.gameID, e.grid.W, e.grid.H, e.grid.UnitCount(), e.current))
	tp.logger.Debug().
		Int("player", int(e.current)).
		Bool("is_ai", isAI).
		Int("threat_tiles", threats).
		Msg("First turn started")

	e.CheckGameOver()
	return nil
}

// SwitchPlayer ends the current player's turn
func (tp *TurnProcessor) SwitchPlayer() error {
	e := tp.engine
	if e.gameOver {
		return core.WrapGameStateError(e.Turn(), "switch player", core.ErrGameOver)
	}

	from := e.current
	e.DeselectTile()
	e.current = from.Opponent()
	for _, pl := range e.grid.UnitsOf(e.current) {
		pl.Unit.Rest()
	}
	threats := tp.refreshThreats()

	isAI := e.players[e.current].IsAI
	if err := e.lifecycle.BeginTurn(e.current, isAI, fmt.Sprintf("Player %d ended turn", from)); err != nil {
		tp.logger.Error().Err(err).Msg("Failed to switch turn")
		return err
	}
	tp.resetAutoPlayer()

	turnLogger := tp.logger.With().Int("turn", e.Turn()).Logger()
	turnLogger.Debug().
		Int("from", int(from)).
		Int("to", int(e.current)).
		Bool("is_ai", isAI).
		Int("threat_tiles", threats).
		Msg("Turn switched")
	e.eventBus.Publish(events.NewTurnSwitchedEvent(e.gameID, from, e.current, e.Turn(), isAI, threats))
	return nil
}

// AfterAction runs once a move or attack went through. It ends the game when
// one side is wiped out and ends the turn when the current player has
// nothing left to do.
func (tp *TurnProcessor) AfterAction() {
	e := tp.engine
	if _, over := e.CheckGameOver(); over {
		return
	}
	tp.refreshThreats()

	switch {
	case e.rules.OneActionPerTurn:
		tp.logger.Debug().Msg("One action per turn, ending turn")
	case !e.actions.UnitsHaveActions(e.grid, e.current):
		tp.logger.Debug().Int("player", int(e.current)).Msg("No unit has actions left, ending turn")
	default:
		return
	}
	if err := tp.SwitchPlayer(); err != nil {
		tp.logger.Error().Err(err).Msg("Automatic turn switch failed")
	}
}

// CheckGameOver ends the game when the current player is the only one left
// on the board
func (tp *TurnProcessor) CheckGameOver() (core.PlayerID, bool) {
	e := tp.engine
	if e.gameOver {
		return e.winner, true
	}

	over, winner := e.winCondition.CheckGameOver(e.grid, e.current)
	if !over {
		return core.NoPlayer, false
	}

	e.DeselectTile()
	e.gameOver = true
	e.winner = winner
	e.auto = nil

	if err := e.lifecycle.End(winner, fmt.Sprintf("Player %d wins", winner)); err != nil {
		tp.logger.Error().Err(err).Msg("Failed to transition to game over")
	}
	e.eventBus.Publish(events.NewGameEndedEvent(e.gameID, winner, e.lifecycle.Elapsed(), e.Turn()))
	return winner, true
}

// Restart rebuilds the grid from the level and starts over
func (tp *TurnProcessor) Restart() error {
	e := tp.engine
	grid, err := e.level.Build()
	if err != nil {
		return fmt.Errorf("rebuild level: %w", err)
	}
	if err := e.lifecycle.Reset("Restart requested"); err != nil {
		return err
	}

	e.grid = grid
	e.clearSelection()
	e.classifier.ClearThreat()
	e.gameOver = false
	e.winner = core.NoPlayer
	e.current = e.first
	e.auto = nil

	restarts := e.lifecycle.Context().Restarts
	tp.logger.Info().Int("restarts", restarts).Msg("Level reloaded")
	e.eventBus.Publish(events.NewGameRestartedEvent(e.gameID, restarts))

	return tp.Start("Level reloaded")
}

// refreshThreats recomputes the tiles enemies of the current player could
// strike on their next turn and returns how many there are
func (tp *TurnProcessor) refreshThreats() int {
	e := tp.engine
	e.classifier.ClearThreat()
	for _, pl := range e.grid.UnitsOf(e.current.Opponent()) {
		e.pathfinder.Compute(e.grid, pl.At, e.threatGraph)
		e.classifier.MarkThreat(e.threatGraph, pl.Unit, e.rules.ThreatUsesRemainingMove)
	}
	return e.classifier.Overlay().Count(ranges.Threat)
}

func (tp *TurnProcessor) resetAutoPlayer() {
	e := tp.engine
	e.auto = nil
	if e.players[e.current].IsAI {
		e.auto = NewAutoPlayer(e)
	}
}
