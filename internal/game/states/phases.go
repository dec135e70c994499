package states

import (
	"fmt"
	"slices"
)

// GamePhase is where a game stands in its lifecycle
type GamePhase int

const (
	// PhaseInitializing - Level loaded, no turn played yet
	PhaseInitializing GamePhase = iota

	// PhaseHumanTurn - A human controlled player is acting
	PhaseHumanTurn

	// PhaseAITurn - The autoplayer is acting
	PhaseAITurn

	// PhaseGameOver - Only one side has units left
	PhaseGameOver

	// PhaseReset - The level is being reloaded
	PhaseReset
)

var phaseNames = [...]string{"Initializing", "HumanTurn", "AITurn", "GameOver", "Reset"}

func (p GamePhase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Unknown(%d)", int(p))
}

// IsTurn reports whether a player is acting in this phase
func (p GamePhase) IsTurn() bool {
	return p == PhaseHumanTurn || p == PhaseAITurn
}

// TurnPhase returns the turn phase for a player controlled by AI or not
func TurnPhase(isAI bool) GamePhase {
	if isAI {
		return PhaseAITurn
	}
	return PhaseHumanTurn
}

// A turn phase may follow itself: two humans or two AIs alternate without
// changing phase.
var nextPhases = map[GamePhase][]GamePhase{
	PhaseInitializing: {PhaseHumanTurn, PhaseAITurn},
	PhaseHumanTurn:    {PhaseHumanTurn, PhaseAITurn, PhaseGameOver, PhaseReset},
	PhaseAITurn:       {PhaseHumanTurn, PhaseAITurn, PhaseGameOver, PhaseReset},
	PhaseGameOver:     {PhaseReset},
	PhaseReset:        {PhaseInitializing},
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	return slices.Contains(nextPhases[p], target)
}
