package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/level"
)

// Archetypes used across tests. Move and range are path-cost units.
var (
	// Fencer hits adjacent tiles only and cannot move
	Fencer = core.Archetype{Name: "fencer", Symbol: "F", MaxMove: 0, MaxHealth: 10, AttackRange: 1, AttackDamage: 4}
	// Scout moves one orthogonal step and strikes adjacent tiles
	Scout = core.Archetype{Name: "scout", Symbol: "S", MaxMove: 5, MaxHealth: 10, AttackRange: 1, AttackDamage: 4}
	// Lancer moves one step and reaches one orthogonal step further
	Lancer = core.Archetype{Name: "lancer", Symbol: "L", MaxMove: 5, MaxHealth: 10, AttackRange: 5, AttackDamage: 4}
	// Dummy is a frail target
	Dummy = core.Archetype{Name: "dummy", Symbol: "D", MaxMove: 5, MaxHealth: 4, AttackRange: 1, AttackDamage: 1}
	// Tank soaks damage
	Tank = core.Archetype{Name: "tank", Symbol: "T", MaxMove: 5, MaxHealth: 40, AttackRange: 1, AttackDamage: 1}
	// Runner covers four orthogonal steps
	Runner = core.Archetype{Name: "runner", Symbol: "R", MaxMove: 20, MaxHealth: 6, AttackRange: 1, AttackDamage: 2}
	// Pikeman outranges a diagonal step but walks only one orthogonal one
	Pikeman = core.Archetype{Name: "pikeman", Symbol: "P", MaxMove: 5, MaxHealth: 10, AttackRange: 7, AttackDamage: 3}
)

// Catalogue returns a catalogue holding every test archetype
func Catalogue(t testing.TB) level.Catalogue {
	t.Helper()
	cat, err := level.NewCatalogue([]core.Archetype{Fencer, Scout, Lancer, Dummy, Tank, Runner, Pikeman})
	require.NoError(t, err)
	return cat
}

// ParseLevel parses text against the test catalogue. Lines are given top row
// first; the last line is y = 0.
func ParseLevel(t testing.TB, lines ...string) *level.Level {
	t.Helper()
	text := ""
	for _, l := range lines {
		text += l + "\n"
	}
	lvl, err := level.Parse(text, Catalogue(t))
	require.NoError(t, err)
	return lvl
}

// Duel is a small open board with a scout of each player three rows apart
//
//	y=3 ..T..
//	y=2 .....
//	y=1 ..S..
//	y=0 .....
func Duel(t testing.TB) *level.Level {
	return ParseLevel(t,
		"..T..",
		".....",
		"..S..",
		".....",
	)
}

// C is shorthand for core.NewCoordinate
func C(x, y int) core.Coordinate { return core.NewCoordinate(x, y) }
