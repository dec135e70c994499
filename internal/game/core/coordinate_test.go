package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate(t *testing.T) {
	c := NewCoordinate(3, 5)
	assert.Equal(t, 3, c.X)
	assert.Equal(t, 5, c.Y)
}

func TestCoordinate_FromIndex(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		width    int
		expected Coordinate
	}{
		{"Origin", 0, 10, Coordinate{0, 0}},
		{"EndOfFirstRow", 9, 10, Coordinate{9, 0}},
		{"SecondRow", 10, 10, Coordinate{0, 1}},
		{"Middle", 55, 10, Coordinate{5, 5}},
		{"SmallBoard", 7, 4, Coordinate{3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromIndex(tt.index, tt.width))
			assert.Equal(t, tt.index, tt.expected.ToIndex(tt.width))
		})
	}
}

func TestCoordinate_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		valid bool
	}{
		{"Origin", Coordinate{0, 0}, true},
		{"FarCorner", Coordinate{4, 2}, true},
		{"NegativeX", Coordinate{-1, 0}, false},
		{"NegativeY", Coordinate{0, -1}, false},
		{"XAtWidth", Coordinate{5, 0}, false},
		{"YAtHeight", Coordinate{0, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.coord.IsValid(5, 3))
		})
	}
}

func TestCoordinate_Neighbors(t *testing.T) {
	c := NewCoordinate(2, 2)
	n := c.Neighbors()
	require.Len(t, n, 8)

	seen := make(map[Coordinate]bool)
	for _, nb := range n {
		assert.True(t, c.IsAdjacentTo(nb), "%s should be adjacent to %s", nb, c)
		seen[nb] = true
	}
	assert.Len(t, seen, 8)
	assert.NotContains(t, seen, c)

	// scan order is x outer, y inner
	assert.Equal(t, Coordinate{1, 1}, n[0])
	assert.Equal(t, Coordinate{1, 2}, n[1])
	assert.Equal(t, Coordinate{3, 3}, n[7])
}

func TestCoordinate_ValidNeighbors(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		count int
	}{
		{"Corner", Coordinate{0, 0}, 3},
		{"Edge", Coordinate{2, 0}, 5},
		{"Interior", Coordinate{2, 2}, 8},
		{"OppositeCorner", Coordinate{4, 4}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nb := tt.coord.ValidNeighbors(5, 5)
			assert.Len(t, nb, tt.count)
			for _, c := range nb {
				assert.True(t, c.IsValid(5, 5))
			}
		})
	}
}

func TestCoordinate_StepCost(t *testing.T) {
	c := NewCoordinate(3, 3)
	assert.Equal(t, OrthogonalCost, c.StepCost(Coordinate{4, 3}))
	assert.Equal(t, OrthogonalCost, c.StepCost(Coordinate{3, 2}))
	assert.Equal(t, DiagonalCost, c.StepCost(Coordinate{2, 2}))
	assert.Equal(t, DiagonalCost, c.StepCost(Coordinate{4, 4}))
	assert.Equal(t, 0, c.StepCost(c))
	assert.Equal(t, 0, c.StepCost(Coordinate{5, 3}))

	for _, o := range NeighborOffsets {
		n := Coordinate{c.X + o.DX, c.Y + o.DY}
		assert.Equal(t, o.Cost, c.StepCost(n))
	}
}

func TestCoordinate_Distances(t *testing.T) {
	a := NewCoordinate(1, 1)
	assert.Equal(t, 0, a.ChebyshevDistance(a))
	assert.Equal(t, 3, a.ChebyshevDistance(Coordinate{4, 2}))
	assert.Equal(t, 2, a.ChebyshevDistance(Coordinate{-1, 0}))

	assert.True(t, a.IsDiagonalTo(Coordinate{0, 0}))
	assert.False(t, a.IsDiagonalTo(Coordinate{1, 0}))
	assert.False(t, a.IsAdjacentTo(a))
}

func TestCoordinate_Arithmetic(t *testing.T) {
	a := NewCoordinate(3, 4)
	b := NewCoordinate(1, 2)
	assert.Equal(t, Coordinate{4, 6}, a.Add(b))
	assert.Equal(t, Coordinate{2, 2}, a.Sub(b))
	assert.True(t, a.Equal(Coordinate{3, 4}))
	assert.False(t, a.Equal(b))
	assert.Equal(t, "(3,4)", a.String())
}
