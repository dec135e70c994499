package core

// PlayerID identifies one of the two sides
type PlayerID int

const (
	PlayerOne PlayerID = 0
	PlayerTwo PlayerID = 1
	NoPlayer  PlayerID = -1
)

// Opponent returns the other side of a two-player game
func (p PlayerID) Opponent() PlayerID {
	if p == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

// Valid reports whether p names one of the two players
func (p PlayerID) Valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

// UnitID identifies a unit for the lifetime of a game
type UnitID int

// NoUnit marks an unoccupied tile
const NoUnit UnitID = -1

// Archetype is the static stat block a unit is spawned from
type Archetype struct {
	Name         string `mapstructure:"name" json:"name"`
	Symbol       string `mapstructure:"symbol" json:"symbol"`
	MaxMove      int    `mapstructure:"max_move" json:"max_move"`
	MaxHealth    int    `mapstructure:"max_health" json:"max_health"`
	AttackRange  int    `mapstructure:"attack_range" json:"attack_range"`
	AttackDamage int    `mapstructure:"attack_damage" json:"attack_damage"`
}

// Unit is a piece on the board. Move and range values are in path-cost units.
type Unit struct {
	ID            UnitID
	Archetype     string
	Symbol        rune
	Owner         PlayerID
	MaxMove       int
	RemainingMove int
	MaxHealth     int
	Health        int
	AttackRange   int
	AttackDamage  int
	HasMoved      bool
	HasAttacked   bool

	// Busy is owned by the presentation layer: set while a move or hit is
	// being animated. The engine refuses to act on a busy unit.
	Busy bool
}

// NewUnit spawns a fresh, fully rested unit from an archetype
func NewUnit(id UnitID, owner PlayerID, a Archetype) *Unit {
	var symbol rune
	for _, r := range a.Symbol {
		symbol = r
		break
	}
	return &Unit{
		ID:            id,
		Archetype:     a.Name,
		Symbol:        symbol,
		Owner:         owner,
		MaxMove:       a.MaxMove,
		RemainingMove: a.MaxMove,
		MaxHealth:     a.MaxHealth,
		Health:        a.MaxHealth,
		AttackRange:   a.AttackRange,
		AttackDamage:  a.AttackDamage,
	}
}

// IsAlive reports whether the unit still has health
func (u *Unit) IsAlive() bool { return u.Health > 0 }

// IsEnemyOf reports whether the unit belongs to a different side than p
func (u *Unit) IsEnemyOf(p PlayerID) bool { return u.Owner != p }

// TakeDamage lowers health by dmg, clamped at zero, and reports whether the
// unit died.
func (u *Unit) TakeDamage(dmg int) bool {
	if dmg < 0 {
		dmg = 0
	}
	u.Health -= dmg
	if u.Health < 0 {
		u.Health = 0
	}
	return u.Health == 0
}

// Spend consumes movement budget, never going below zero
func (u *Unit) Spend(cost int) {
	u.RemainingMove -= cost
	if u.RemainingMove < 0 {
		u.RemainingMove = 0
	}
}

// Rest restores the per-turn budgets
func (u *Unit) Rest() {
	u.RemainingMove = u.MaxMove
	u.HasMoved = false
	u.HasAttacked = false
}

// CanStrike reports whether a target at path distance d is within reach
// without moving. Adjacent targets are always reachable by a unit with any
// positive attack range.
func (u *Unit) CanStrike(d int, adjacent bool) bool {
	if u.AttackRange <= 0 {
		return false
	}
	return d <= u.AttackRange || adjacent
}
