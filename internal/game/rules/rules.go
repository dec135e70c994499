package rules

// Rules are the optional turn rules a game is played with
type Rules struct {
	// SingleMovePerTurn lets a unit move once per turn; its remaining move is
	// dropped after the first move.
	SingleMovePerTurn bool `mapstructure:"single_move_per_turn" json:"single_move_per_turn"`
	// OneActionPerTurn ends the turn after the first move or attack
	OneActionPerTurn bool `mapstructure:"one_action_per_turn" json:"one_action_per_turn"`
	// ThreatUsesRemainingMove sizes enemy threat zones by remaining rather
	// than full move
	ThreatUsesRemainingMove bool `mapstructure:"threat_uses_remaining_move" json:"threat_uses_remaining_move"`
}
