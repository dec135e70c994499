package core

import "fmt"

// Step costs in path-cost units. A diagonal step costs 7 against an
// orthogonal 5, an integer stand-in for the sqrt(2) ratio.
const (
	OrthogonalCost = 5
	DiagonalCost   = 7
)

// Coordinate represents a position on the game board
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// FromIndex creates a coordinate from a board array index using row-major ordering
func FromIndex(idx, width int) Coordinate {
	return Coordinate{
		X: idx % width,
		Y: idx / width,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// ToIndex converts the coordinate to a board array index using row-major ordering
func (c Coordinate) ToIndex(width int) int {
	return c.Y*width + c.X
}

// ChebyshevDistance is the number of king moves between two coordinates
func (c Coordinate) ChebyshevDistance(other Coordinate) int {
	return max(abs(c.X-other.X), abs(c.Y-other.Y))
}

// IsAdjacentTo reports whether other is one of the eight surrounding tiles
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	return c.ChebyshevDistance(other) == 1
}

// IsDiagonalTo reports whether other is a diagonal neighbour
func (c Coordinate) IsDiagonalTo(other Coordinate) bool {
	return abs(c.X-other.X) == 1 && abs(c.Y-other.Y) == 1
}

// Offset is a single step in the 8-neighbourhood together with its cost
type Offset struct {
	DX, DY int
	Cost   int
}

// NeighborOffsets lists the 8-neighbourhood in a fixed scan order
// (x outer, y inner), the same order Grid.Units sweeps the board.
var NeighborOffsets = [8]Offset{
	{-1, -1, DiagonalCost},
	{-1, 0, OrthogonalCost},
	{-1, 1, DiagonalCost},
	{0, -1, OrthogonalCost},
	{0, 1, OrthogonalCost},
	{1, -1, DiagonalCost},
	{1, 0, OrthogonalCost},
	{1, 1, DiagonalCost},
}

// Neighbors returns all eight surrounding coordinates, unchecked against bounds
func (c Coordinate) Neighbors() []Coordinate {
	out := make([]Coordinate, 0, len(NeighborOffsets))
	for _, o := range NeighborOffsets {
		out = append(out, Coordinate{X: c.X + o.DX, Y: c.Y + o.DY})
	}
	return out
}

// ValidNeighbors returns only the neighbors that are within the given bounds
func (c Coordinate) ValidNeighbors(width, height int) []Coordinate {
	valid := make([]Coordinate, 0, len(NeighborOffsets))
	for _, n := range c.Neighbors() {
		if n.IsValid(width, height) {
			valid = append(valid, n)
		}
	}
	return valid
}

// StepCost returns the cost of a single step to an adjacent coordinate, or 0
// when other is not adjacent.
func (c Coordinate) StepCost(other Coordinate) int {
	switch {
	case c.IsDiagonalTo(other):
		return DiagonalCost
	case c.IsAdjacentTo(other):
		return OrthogonalCost
	default:
		return 0
	}
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X + other.X,
		Y: c.Y + other.Y,
	}
}

// Sub returns a new coordinate that is the difference between this coordinate and another
func (c Coordinate) Sub(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X - other.X,
		Y: c.Y - other.Y,
	}
}

// Equal checks if two coordinates are equal
func (c Coordinate) Equal(other Coordinate) bool {
	return c.X == other.X && c.Y == other.Y
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
