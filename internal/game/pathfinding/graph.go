package pathfinding

import (
	"math"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// Unreachable is the distance of a node no path reaches
const Unreachable = math.MaxInt

// NoParent marks the source and every unreached node
const NoParent = -1

// Node is the per-tile bookkeeping of one distance computation. Parent is an
// index into the graph's node slice.
type Node struct {
	Distance int
	Parent   int
	Visited  bool
	// Blocked nodes are occupied tiles: they carry a distance so ranges can be
	// measured against them, but no path continues through them.
	Blocked bool
}

// Graph holds the result of a single-source shortest path run over a grid,
// one node per tile in row-major order.
type Graph struct {
	W, H   int
	Source core.Coordinate
	Nodes  []Node

	// Truncated is set when the run stopped early on the expansion limit
	Truncated bool
}

// NewGraph returns a graph with every node unreachable
func NewGraph(w, h int) *Graph {
	g := &Graph{W: w, H: h, Nodes: make([]Node, w*h)}
	g.Reset()
	return g
}

// Reset drops every distance and parent
func (g *Graph) Reset() {
	for i := range g.Nodes {
		g.Nodes[i] = Node{Distance: Unreachable, Parent: NoParent}
	}
	g.Truncated = false
}

func (g *Graph) inBounds(c core.Coordinate) bool { return c.IsValid(g.W, g.H) }
func (g *Graph) at(idx int) core.Coordinate      { return core.FromIndex(idx, g.W) }

// Node returns the node for c, or nil outside the board
func (g *Graph) Node(c core.Coordinate) *Node {
	if !g.inBounds(c) {
		return nil
	}
	return &g.Nodes[c.ToIndex(g.W)]
}

// Distance is the weighted path cost from the source, Unreachable when no
// path exists or c lies outside the board.
func (g *Graph) Distance(c core.Coordinate) int {
	n := g.Node(c)
	if n == nil {
		return Unreachable
	}
	return n.Distance
}

func (g *Graph) Reachable(c core.Coordinate) bool { return g.Distance(c) != Unreachable }

// IsBlocked reports whether c was reached but is occupied
func (g *Graph) IsBlocked(c core.Coordinate) bool {
	n := g.Node(c)
	return n != nil && n.Blocked
}

// Parent returns the previous tile on the shortest path to c
func (g *Graph) Parent(c core.Coordinate) (core.Coordinate, bool) {
	n := g.Node(c)
	if n == nil || n.Parent == NoParent {
		return core.Coordinate{}, false
	}
	return g.at(n.Parent), true
}

// PathTo returns the shortest path from the source to c, source excluded and
// c included. It is empty when c is the source or unreachable.
func (g *Graph) PathTo(c core.Coordinate) []core.Coordinate {
	if !g.Reachable(c) {
		return nil
	}
	var path []core.Coordinate
	for idx := c.ToIndex(g.W); g.Nodes[idx].Parent != NoParent; idx = g.Nodes[idx].Parent {
		path = append(path, g.at(idx))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// MaxReachable returns the furthest tile on the shortest path to target that
// costs at most budget, together with the tiles walked past to find it
// (target first). A reachable target within budget is returned as is; an
// unreachable one yields the source.
func (g *Graph) MaxReachable(target core.Coordinate, budget int) (core.Coordinate, []core.Coordinate) {
	if !g.Reachable(target) {
		return g.Source, nil
	}
	var trail []core.Coordinate
	idx := target.ToIndex(g.W)
	for g.Nodes[idx].Distance > budget && g.Nodes[idx].Parent != NoParent {
		trail = append(trail, g.at(idx))
		idx = g.Nodes[idx].Parent
	}
	return g.at(idx), trail
}

// ApproachTile finds where a unit with the given attack range has to stand to
// strike target: the nearest tile to the source on the path to target whose
// distance is at least distance(target) - attackRange. The tile right before
// the target is the furthest it will go.
func (g *Graph) ApproachTile(target core.Coordinate, attackRange int) (core.Coordinate, bool) {
	parent, ok := g.Parent(target)
	if !ok {
		return core.Coordinate{}, false
	}
	need := g.Distance(target) - attackRange
	idx := parent.ToIndex(g.W)
	for {
		p := g.Nodes[idx].Parent
		if p == NoParent || g.Nodes[p].Distance < need {
			break
		}
		idx = p
	}
	return g.at(idx), true
}

// Equal reports whether two graphs hold the same distances and parents
func (g *Graph) Equal(other *Graph) bool {
	if other == nil || g.W != other.W || g.H != other.H || g.Source != other.Source {
		return false
	}
	for i := range g.Nodes {
		if g.Nodes[i] != other.Nodes[i] {
			return false
		}
	}
	return true
}
