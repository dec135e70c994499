package events

import (
	"time"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted      = "game.started"
	TypeGameEnded        = "game.ended"
	TypeGameRestarted    = "game.restarted"
	TypeTurnSwitched     = "turn.switched"
	TypeUnitSelected     = "unit.selected"
	TypeSelectionCleared = "selection.cleared"
	TypeUnitMoved        = "unit.moved"
	TypeUnitAttacked     = "unit.attacked"
	TypeUnitDestroyed    = "unit.destroyed"
	TypeActionRejected   = "action.rejected"
	TypeStateTransition  = "state.transition"
)

// GameStartedEvent is published once a level is loaded and the first turn begins
type GameStartedEvent struct {
	BaseEvent
	MapWidth    int           `json:"map_width"`
	MapHeight   int           `json:"map_height"`
	UnitCount   int           `json:"unit_count"`
	FirstPlayer core.PlayerID `json:"first_player"`
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, width, height, units int, first core.PlayerID) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent:   newBase(TypeGameStarted, gameID, first, 1),
		MapWidth:    width,
		MapHeight:   height,
		UnitCount:   units,
		FirstPlayer: first,
	}
}

// GameEndedEvent is published when only one side has units left
type GameEndedEvent struct {
	BaseEvent
	Winner    core.PlayerID `json:"winner"`
	Duration  time.Duration `json:"duration"`
	FinalTurn int           `json:"final_turn"`
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, winner core.PlayerID, duration time.Duration, finalTurn int) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID, winner, finalTurn),
		Winner:    winner,
		Duration:  duration,
		FinalTurn: finalTurn,
	}
}

// GameRestartedEvent is published after the level was reloaded
type GameRestartedEvent struct {
	BaseEvent
	Restarts int `json:"restarts"`
}

func NewGameRestartedEvent(gameID string, restarts int) *GameRestartedEvent {
	return &GameRestartedEvent{BaseEvent: newBase(TypeGameRestarted, gameID, core.NoPlayer, 0), Restarts: restarts}
}

// TurnSwitchedEvent is published when control passes to the other player
type TurnSwitchedEvent struct {
	BaseEvent
	From        core.PlayerID `json:"from"`
	To          core.PlayerID `json:"to"`
	IsAI        bool          `json:"is_ai"`
	ThreatTiles int           `json:"threat_tiles"`
}

// NewTurnSwitchedEvent creates a new TurnSwitchedEvent
func NewTurnSwitchedEvent(gameID string, from, to core.PlayerID, turn int, isAI bool, threatTiles int) *TurnSwitchedEvent {
	return &TurnSwitchedEvent{
		BaseEvent:   newBase(TypeTurnSwitched, gameID, to, turn),
		From:        from,
		To:          to,
		IsAI:        isAI,
		ThreatTiles: threatTiles,
	}
}

// UnitSelectedEvent is published when a friendly unit becomes the selection
type UnitSelectedEvent struct {
	BaseEvent
	UnitID         core.UnitID     `json:"unit_id"`
	At             core.Coordinate `json:"at"`
	MoveTiles      int             `json:"move_tiles"`
	AttackTiles    int             `json:"attack_tiles"`
	EnemiesInRange int             `json:"enemies_in_range"`
}

// NewUnitSelectedEvent creates a new UnitSelectedEvent
func NewUnitSelectedEvent(gameID string, player core.PlayerID, turn int, unit core.UnitID, at core.Coordinate, moveTiles, attackTiles, enemies int) *UnitSelectedEvent {
	return &UnitSelectedEvent{
		BaseEvent:      newBase(TypeUnitSelected, gameID, player, turn),
		UnitID:         unit,
		At:             at,
		MoveTiles:      moveTiles,
		AttackTiles:    attackTiles,
		EnemiesInRange: enemies,
	}
}

// SelectionClearedEvent is published when a selection is dropped
type SelectionClearedEvent struct {
	BaseEvent
	UnitID core.UnitID `json:"unit_id"`
}

func NewSelectionClearedEvent(gameID string, player core.PlayerID, turn int, unit core.UnitID) *SelectionClearedEvent {
	return &SelectionClearedEvent{
		BaseEvent: newBase(TypeSelectionCleared, gameID, player, turn),
		UnitID:    unit,
	}
}

// UnitMovedEvent is published after a unit changed tiles. Path excludes From.
type UnitMovedEvent struct {
	BaseEvent
	UnitID        core.UnitID       `json:"unit_id"`
	From          core.Coordinate   `json:"from"`
	To            core.Coordinate   `json:"to"`
	Path          []core.Coordinate `json:"path"`
	Cost          int               `json:"cost"`
	RemainingMove int               `json:"remaining_move"`
}

// NewUnitMovedEvent creates a new UnitMovedEvent
func NewUnitMovedEvent(gameID string, player core.PlayerID, turn int, unit core.UnitID, from, to core.Coordinate, path []core.Coordinate, cost, remaining int) *UnitMovedEvent {
	return &UnitMovedEvent{
		BaseEvent:     newBase(TypeUnitMoved, gameID, player, turn),
		UnitID:        unit,
		From:          from,
		To:            to,
		Path:          path,
		Cost:          cost,
		RemainingMove: remaining,
	}
}

// UnitAttackedEvent is published after an attack was resolved
type UnitAttackedEvent struct {
	BaseEvent
	AttackerID     core.UnitID     `json:"attacker_id"`
	DefenderID     core.UnitID     `json:"defender_id"`
	From           core.Coordinate `json:"from"`
	Target         core.Coordinate `json:"target"`
	Damage         int             `json:"damage"`
	DefenderHealth int             `json:"defender_health"`
	Destroyed      bool            `json:"destroyed"`
}

// NewUnitAttackedEvent creates a new UnitAttackedEvent
func NewUnitAttackedEvent(gameID string, player core.PlayerID, turn int, attacker, defender core.UnitID, from, target core.Coordinate, damage, health int) *UnitAttackedEvent {
	return &UnitAttackedEvent{
		BaseEvent:      newBase(TypeUnitAttacked, gameID, player, turn),
		AttackerID:     attacker,
		DefenderID:     defender,
		From:           from,
		Target:         target,
		Damage:         damage,
		DefenderHealth: health,
		Destroyed:      health == 0,
	}
}

// UnitDestroyedEvent is published when a unit is removed from the board
type UnitDestroyedEvent struct {
	BaseEvent
	UnitID      core.UnitID     `json:"unit_id"`
	Owner       core.PlayerID   `json:"owner"`
	At          core.Coordinate `json:"at"`
	DestroyedBy core.UnitID     `json:"destroyed_by"`
}

// NewUnitDestroyedEvent creates a new UnitDestroyedEvent
func NewUnitDestroyedEvent(gameID string, turn int, unit core.UnitID, owner core.PlayerID, at core.Coordinate, by core.UnitID) *UnitDestroyedEvent {
	return &UnitDestroyedEvent{
		BaseEvent:   newBase(TypeUnitDestroyed, gameID, owner, turn),
		UnitID:      unit,
		Owner:       owner,
		At:          at,
		DestroyedBy: by,
	}
}

// ActionRejectedEvent is published when a command was declined
type ActionRejectedEvent struct {
	BaseEvent
	Command core.Command `json:"command"`
	Reason  string       `json:"reason"`
}

// NewActionRejectedEvent creates a new ActionRejectedEvent
func NewActionRejectedEvent(gameID string, player core.PlayerID, turn int, cmd core.Command, reason string) *ActionRejectedEvent {
	return &ActionRejectedEvent{
		BaseEvent: newBase(TypeActionRejected, gameID, player, turn),
		Command:   cmd,
		Reason:    reason,
	}
}

// StateTransitionEvent is published when the game moves between lifecycle
// phases. Player and turn are the ones current after the move.
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string `json:"from_phase"`
	ToPhase   string `json:"to_phase"`
	Reason    string `json:"reason"`
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID string, player core.PlayerID, turn int, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID, player, turn),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
