package game

import (
	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/ranges"
)

// UnitState is a read-only copy of a unit and where it stands
type UnitState struct {
	ID            core.UnitID     `json:"id"`
	Archetype     string          `json:"archetype"`
	Symbol        string          `json:"symbol"`
	Owner         core.PlayerID   `json:"owner"`
	At            core.Coordinate `json:"at"`
	Health        int             `json:"health"`
	MaxHealth     int             `json:"max_health"`
	RemainingMove int             `json:"remaining_move"`
	MaxMove       int             `json:"max_move"`
	AttackRange   int             `json:"attack_range"`
	AttackDamage  int             `json:"attack_damage"`
	HasMoved      bool            `json:"has_moved"`
	HasAttacked   bool            `json:"has_attacked"`
	Busy          bool            `json:"busy"`
}

// GameState is a snapshot of an engine for transports and debugging. It
// shares nothing with the engine.
type GameState struct {
	GameID        string        `json:"game_id"`
	Turn          int           `json:"turn"`
	Phase         string        `json:"phase"`
	CurrentPlayer core.PlayerID `json:"current_player"`
	Players       []Player      `json:"players"`
	GameOver      bool          `json:"game_over"`
	Winner        core.PlayerID `json:"winner"`

	Width  int `json:"width"`
	Height int `json:"height"`
	// Rows is the board in level notation, top row first
	Rows  []string    `json:"rows"`
	Units []UnitState `json:"units"`

	Selected       *core.Coordinate  `json:"selected,omitempty"`
	MoveRange      []core.Coordinate `json:"move_range,omitempty"`
	AttackRange    []core.Coordinate `json:"attack_range,omitempty"`
	EnemiesInRange []core.Coordinate `json:"enemies_in_range,omitempty"`
	Path           []core.Coordinate `json:"path,omitempty"`
	Threat         []core.Coordinate `json:"threat,omitempty"`
}

// Snapshot copies the state of the game
func (e *Engine) Snapshot() GameState {
	overlay := e.classifier.Overlay()
	gs := GameState{
		GameID:         e.gameID,
		Turn:           e.Turn(),
		Phase:          e.Phase().String(),
		CurrentPlayer:  e.current,
		Players:        []Player{e.players[0], e.players[1]},
		GameOver:       e.gameOver,
		Winner:         e.winner,
		Width:          e.grid.W,
		Height:         e.grid.H,
		Rows:           e.rows(),
		MoveRange:      overlay.Tiles(ranges.MoveRange),
		AttackRange:    overlay.Tiles(ranges.AttackRange),
		EnemiesInRange: overlay.Tiles(ranges.EnemyInRange),
		Path:           overlay.Tiles(ranges.OnPath),
		Threat:         overlay.Tiles(ranges.Threat),
	}
	if e.hasSelected {
		sel := e.selected
		gs.Selected = &sel
	}
	for _, pl := range e.grid.Units() {
		u := pl.Unit
		gs.Units = append(gs.Units, UnitState{
			ID:            u.ID,
			Archetype:     u.Archetype,
			Symbol:        string(u.Symbol),
			Owner:         u.Owner,
			At:            pl.At,
			Health:        u.Health,
			MaxHealth:     u.MaxHealth,
			RemainingMove: u.RemainingMove,
			MaxMove:       u.MaxMove,
			AttackRange:   u.AttackRange,
			AttackDamage:  u.AttackDamage,
			HasMoved:      u.HasMoved,
			HasAttacked:   u.HasAttacked,
			Busy:          u.Busy,
		})
	}
	return gs
}

// UnitAt returns the unit state on c from the snapshot
func (gs GameState) UnitAt(c core.Coordinate) (UnitState, bool) {
	for _, u := range gs.Units {
		if u.At == c {
			return u, true
		}
	}
	return UnitState{}, false
}
