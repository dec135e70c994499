package level

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

func TestParse(t *testing.T) {
	text := "" +
		"*****\n" +
		"*A.K*\n" +
		"*...*\n" +
		"*S.S*\n" +
		"*****\n"

	lvl, err := Parse(text, MustDefaultCatalogue())
	require.NoError(t, err)
	assert.Equal(t, 5, lvl.Width)
	assert.Equal(t, 5, lvl.Height)

	// the last line is y = 0
	assert.True(t, lvl.Walls[core.NewCoordinate(2, 0).ToIndex(5)])
	assert.False(t, lvl.Walls[core.NewCoordinate(2, 2).ToIndex(5)])

	require.Len(t, lvl.Spawns, 4)
	assert.Equal(t, core.NewCoordinate(1, 1), lvl.Spawns[0].At)
	assert.Equal(t, "soldier", lvl.Spawns[0].Archetype.Name)
	assert.Equal(t, core.PlayerOne, lvl.Spawns[0].Owner)
	assert.Equal(t, core.NewCoordinate(1, 3), lvl.Spawns[2].At)
	assert.Equal(t, "archer", lvl.Spawns[2].Archetype.Name)
	assert.Equal(t, core.PlayerTwo, lvl.Spawns[2].Owner)
	assert.Equal(t, "knight", lvl.Spawns[3].Archetype.Name)

	assert.Equal(t, map[core.PlayerID]int{core.PlayerOne: 2, core.PlayerTwo: 2}, lvl.UnitsPerPlayer())
}

func TestParse_Ownership(t *testing.T) {
	// three rows: only y = 0 is below height/2
	lvl, err := Parse("S\nS\nS", MustDefaultCatalogue())
	require.NoError(t, err)
	require.Len(t, lvl.Spawns, 3)
	assert.Equal(t, core.PlayerOne, lvl.Spawns[0].Owner)
	assert.Equal(t, core.PlayerTwo, lvl.Spawns[1].Owner)
	assert.Equal(t, core.PlayerTwo, lvl.Spawns[2].Owner)
}

func TestParse_RaggedAndBlankLines(t *testing.T) {
	lvl, err := Parse("...\r\n\r\n.\n\n", MustDefaultCatalogue())
	require.NoError(t, err)
	assert.Equal(t, 3, lvl.Width)
	assert.Equal(t, 2, lvl.Height)

	// bottom row is "." padded with walls
	assert.False(t, lvl.Walls[0])
	assert.True(t, lvl.Walls[1])
	assert.True(t, lvl.Walls[2])
	assert.False(t, lvl.Walls[5])
}

func TestParse_UnknownSymbolsAreFloor(t *testing.T) {
	lvl, err := Parse("?x#", MustDefaultCatalogue())
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false}, lvl.Walls)
	assert.Empty(t, lvl.Spawns)
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "\n\n", "\r\n"} {
		_, err := Parse(text, MustDefaultCatalogue())
		assert.ErrorIs(t, err, core.ErrEmptyLevel)
	}
}

func TestBuild(t *testing.T) {
	lvl, err := Parse("*K\nS.", MustDefaultCatalogue())
	require.NoError(t, err)

	grid, err := lvl.Build()
	require.NoError(t, err)
	assert.False(t, grid.IsWalkable(core.NewCoordinate(0, 1)))
	assert.Equal(t, 2, grid.UnitCount())

	s := grid.OccupantAt(core.NewCoordinate(0, 0))
	require.NotNil(t, s)
	assert.Equal(t, core.UnitID(0), s.ID)
	assert.Equal(t, core.PlayerOne, s.Owner)
	assert.Equal(t, 20, s.RemainingMove)

	k := grid.OccupantAt(core.NewCoordinate(1, 1))
	require.NotNil(t, k)
	assert.Equal(t, core.PlayerTwo, k.Owner)

	// each build yields independent units
	again, err := lvl.Build()
	require.NoError(t, err)
	again.Unit(0).Health = 1
	assert.Equal(t, 10, grid.Unit(0).Health)
}

func TestBuild_SpawnOnWall(t *testing.T) {
	lvl := Default(3, 3)
	lvl.Spawns = []Spawn{{At: core.NewCoordinate(0, 0), Archetype: DefaultArchetypes()[0]}}
	_, err := lvl.Build()
	assert.ErrorIs(t, err, core.ErrIllegalMove)
}

func TestDefault(t *testing.T) {
	lvl := Default(30, 30)
	grid, err := lvl.Build()
	require.NoError(t, err)

	assert.False(t, grid.IsWalkable(core.NewCoordinate(0, 15)))
	assert.False(t, grid.IsWalkable(core.NewCoordinate(29, 29)))
	assert.True(t, grid.IsWalkable(core.NewCoordinate(1, 1)))
	assert.True(t, grid.IsWalkable(core.NewCoordinate(28, 28)))
	assert.Equal(t, 0, grid.UnitCount())
}

func TestText_RoundTrip(t *testing.T) {
	text := "****\n*K.*\n*.S*\n****\n"
	lvl, err := Parse(text, MustDefaultCatalogue())
	require.NoError(t, err)
	assert.Equal(t, text, lvl.Text())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.txt")
	require.NoError(t, os.WriteFile(path, []byte("S.\n.K\n"), 0o644))

	lvl, err := Load(path, MustDefaultCatalogue())
	require.NoError(t, err)
	assert.Equal(t, path, lvl.Name)
	assert.Len(t, lvl.Spawns, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"), MustDefaultCatalogue())
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Load(empty, MustDefaultCatalogue())
	assert.ErrorIs(t, err, core.ErrEmptyLevel)
}

func TestNewCatalogue(t *testing.T) {
	tests := []struct {
		name    string
		input   []core.Archetype
		wantErr string
	}{
		{"Defaults", DefaultArchetypes(), ""},
		{"MultiCharSymbol", []core.Archetype{{Name: "x", Symbol: "AB", MaxHealth: 1}}, "single character"},
		{"EmptySymbol", []core.Archetype{{Name: "x", Symbol: "", MaxHealth: 1}}, "single character"},
		{"WallSymbol", []core.Archetype{{Name: "x", Symbol: "*", MaxHealth: 1}}, "reserved"},
		{"Duplicate", []core.Archetype{{Name: "a", Symbol: "Q", MaxHealth: 1}, {Name: "b", Symbol: "Q", MaxHealth: 1}}, "already used"},
		{"NoHealth", []core.Archetype{{Name: "x", Symbol: "Q"}}, "max_health"},
		{"NegativeMove", []core.Archetype{{Name: "x", Symbol: "Q", MaxHealth: 1, MaxMove: -1}}, "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := NewCatalogue(tt.input)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Len(t, cat.Symbols(), len(tt.input))
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
