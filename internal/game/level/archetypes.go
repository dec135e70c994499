package level

import (
	"fmt"
	"unicode/utf8"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// Reserved terrain symbols
const (
	WallSymbol  = '*'
	FloorSymbol = '.'
)

// DefaultArchetypes is the unit roster used when the configuration names none.
// Move and range are path-cost units: 5 per orthogonal step, 7 per diagonal.
func DefaultArchetypes() []core.Archetype {
	return []core.Archetype{
		{Name: "soldier", Symbol: "S", MaxMove: 20, MaxHealth: 10, AttackRange: 5, AttackDamage: 4},
		{Name: "archer", Symbol: "A", MaxMove: 15, MaxHealth: 6, AttackRange: 21, AttackDamage: 3},
		{Name: "knight", Symbol: "K", MaxMove: 30, MaxHealth: 14, AttackRange: 1, AttackDamage: 6},
	}
}

// Catalogue maps a level symbol to the archetype it spawns
type Catalogue map[rune]core.Archetype

// NewCatalogue indexes archetypes by symbol. Symbols must be a single
// character, unique, and not collide with terrain.
func NewCatalogue(archetypes []core.Archetype) (Catalogue, error) {
	cat := make(Catalogue, len(archetypes))
	for _, a := range archetypes {
		r, size := utf8.DecodeRuneInString(a.Symbol)
		if r == utf8.RuneError || size != len(a.Symbol) {
			return nil, fmt.Errorf("archetype %q: symbol %q must be a single character", a.Name, a.Symbol)
		}
		if r == WallSymbol || r == FloorSymbol || r == ' ' {
			return nil, fmt.Errorf("archetype %q: symbol %q is reserved for terrain", a.Name, a.Symbol)
		}
		if prev, ok := cat[r]; ok {
			return nil, fmt.Errorf("archetype %q: symbol %q already used by %q", a.Name, a.Symbol, prev.Name)
		}
		if a.MaxHealth <= 0 {
			return nil, fmt.Errorf("archetype %q: max_health must be positive", a.Name)
		}
		if a.MaxMove < 0 || a.AttackRange < 0 || a.AttackDamage < 0 {
			return nil, fmt.Errorf("archetype %q: move, range and damage cannot be negative", a.Name)
		}
		cat[r] = a
	}
	return cat, nil
}

// MustDefaultCatalogue returns the catalogue of DefaultArchetypes
func MustDefaultCatalogue() Catalogue {
	cat, err := NewCatalogue(DefaultArchetypes())
	if err != nil {
		panic(err)
	}
	return cat
}

// Symbols returns every unit symbol in the catalogue
func (c Catalogue) Symbols() []rune {
	out := make([]rune, 0, len(c))
	for r := range c {
		out = append(out, r)
	}
	return out
}
