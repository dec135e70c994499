package pathfinding

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

func corridor(t *testing.T, length int) (*core.Grid, *Graph) {
	t.Helper()
	grid := core.NewGrid(length, 1)
	place(t, grid, core.NewCoordinate(0, 0), 0, core.PlayerOne)
	return grid, newTestPathfinder().ComputeDistances(grid, core.NewCoordinate(0, 0))
}

func TestGraph_PathTo(t *testing.T) {
	_, g := corridor(t, 4)

	path := g.PathTo(core.NewCoordinate(3, 0))
	assert.Equal(t, []core.Coordinate{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}, path)
	assert.Empty(t, g.PathTo(g.Source))
	assert.Empty(t, g.PathTo(core.NewCoordinate(9, 0)))
}

func TestGraph_MaxReachable(t *testing.T) {
	_, g := corridor(t, 6)
	target := core.NewCoordinate(5, 0)

	tests := []struct {
		name     string
		budget   int
		expected core.Coordinate
		trail    int
	}{
		{"WithinBudget", 25, target, 0},
		{"ExactlyOneShort", 20, core.NewCoordinate(4, 0), 1},
		{"BetweenSteps", 12, core.NewCoordinate(2, 0), 3},
		{"NothingAffordable", 4, core.NewCoordinate(0, 0), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, trail := g.MaxReachable(target, tt.budget)
			assert.Equal(t, tt.expected, got)
			assert.Len(t, trail, tt.trail)
			if len(trail) > 0 {
				assert.Equal(t, target, trail[0])
			}
		})
	}
}

func TestGraph_MaxReachableUnreachableTarget(t *testing.T) {
	grid := core.NewGrid(3, 1)
	grid.SetWalkable(core.NewCoordinate(1, 0), false)
	g := newTestPathfinder().ComputeDistances(grid, core.NewCoordinate(0, 0))

	got, trail := g.MaxReachable(core.NewCoordinate(2, 0), 100)
	assert.Equal(t, g.Source, got)
	assert.Empty(t, trail)
}

func TestGraph_MaxReachableProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for round := 0; round < 20; round++ {
		grid := randomGrid(rng, 10, 10)
		source := firstFree(grid)
		g := newTestPathfinder().ComputeDistances(grid, source)

		for i := 0; i < grid.Size(); i++ {
			target := grid.At(i)
			if !g.Reachable(target) {
				continue
			}
			budget := rng.Intn(40)
			got, _ := g.MaxReachable(target, budget)

			assert.LessOrEqual(t, g.Distance(got), budget)
			if g.Distance(target) <= budget {
				assert.Equal(t, target, got)
				continue
			}
			onChain := got == source
			for _, c := range g.PathTo(target) {
				onChain = onChain || c == got
			}
			assert.True(t, onChain, "%s not on the path to %s", got, target)
		}
	}
}

func TestGraph_ApproachTile(t *testing.T) {
	grid, _ := corridor(t, 8)
	enemy := core.NewCoordinate(6, 0)
	place(t, grid, enemy, 1, core.PlayerTwo)
	g := newTestPathfinder().ComputeDistances(grid, core.NewCoordinate(0, 0))
	require.Equal(t, 30, g.Distance(enemy))

	tests := []struct {
		name     string
		rng      int
		expected core.Coordinate
	}{
		{"RangeTen", 10, core.NewCoordinate(4, 0)},
		{"RangeBetweenSteps", 12, core.NewCoordinate(4, 0)},
		{"RangeFifteen", 15, core.NewCoordinate(3, 0)},
		{"MeleeStopsNextToTarget", 1, core.NewCoordinate(5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.ApproachTile(enemy, tt.rng)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, ok := g.ApproachTile(g.Source, 5)
	assert.False(t, ok)
}

func TestGraph_Reset(t *testing.T) {
	_, g := corridor(t, 3)
	g.Reset()
	for _, n := range g.Nodes {
		assert.Equal(t, Node{Distance: Unreachable, Parent: NoParent}, n)
	}
}

func TestGraph_Equal(t *testing.T) {
	_, a := corridor(t, 3)
	_, b := corridor(t, 3)
	assert.True(t, a.Equal(b))

	b.Nodes[2].Distance++
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
	assert.False(t, a.Equal(NewGraph(2, 2)))
}
