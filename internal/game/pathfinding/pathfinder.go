package pathfinding

import (
	"container/heap"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// Pathfinder runs Dijkstra over the 8-neighbourhood of a grid
type Pathfinder struct {
	logger zerolog.Logger
	// maxExpansions caps how many tiles one run expands. Zero means the
	// board size, which a correct run never exceeds.
	maxExpansions int
}

func NewPathfinder(logger zerolog.Logger) *Pathfinder {
	return &Pathfinder{logger: logger.With().Str("component", "Pathfinder").Logger()}
}

// ComputeDistances builds a fresh graph of shortest distances from source
func (p *Pathfinder) ComputeDistances(grid *core.Grid, source core.Coordinate) *Graph {
	g := NewGraph(grid.W, grid.H)
	p.Compute(grid, source, g)
	return g
}

// Compute fills g with shortest distances from source. The grid must not
// change while this runs.
//
// Occupied tiles are finalised the moment they are first seen: they get a
// distance and a parent but are never expanded. A shorter offer from a later
// node still lowers their distance.
func (p *Pathfinder) Compute(grid *core.Grid, source core.Coordinate, g *Graph) {
	g.Reset()
	g.Source = source
	if !grid.InBounds(source) {
		return
	}

	limit := p.maxExpansions
	if limit <= 0 {
		limit = grid.W * grid.H
	}
	expanded := 0
	open := newOpenSet(len(g.Nodes))
	si := grid.Idx(source)
	g.Nodes[si].Distance = 0
	open.push(si, 0)

	for open.Len() > 0 {
		ui := open.pop()
		u := &g.Nodes[ui]
		u.Visited = true
		uc := grid.At(ui)

		for _, o := range core.NeighborOffsets {
			nc := core.Coordinate{X: uc.X + o.DX, Y: uc.Y + o.DY}
			if !grid.InBounds(nc) {
				continue
			}
			ni := grid.Idx(nc)
			n := &g.Nodes[ni]
			alt := u.Distance + o.Cost

			switch {
			case n.Blocked:
				if alt < n.Distance {
					n.Distance, n.Parent = alt, ui
				}
			case n.Visited:
			case open.contains(ni):
				if alt < n.Distance {
					n.Distance, n.Parent = alt, ui
					open.update(ni, alt)
				}
			case !grid.IsWalkable(nc):
			case grid.IsOccupied(nc):
				n.Distance, n.Parent = alt, ui
				n.Visited, n.Blocked = true, true
			default:
				n.Distance, n.Parent = alt, ui
				open.push(ni, alt)
			}
		}

		expanded++
		if expanded >= limit && open.Len() > 0 {
			p.logger.Warn().
				Str("source", source.String()).
				Int("expanded", expanded).
				Int("open", open.Len()).
				Msg("Expansion limit reached, stopping early")
			g.Truncated = true
			return
		}
	}
}

// openItem is an entry of the open set. seq breaks distance ties in push order.
type openItem struct {
	node     int
	distance int
	seq      int
	index    int
}

// openSet is an indexed min-heap keyed by (distance, seq)
type openSet struct {
	items []*openItem
	pos   map[int]*openItem
	seq   int
}

func newOpenSet(capacity int) *openSet {
	return &openSet{
		items: make([]*openItem, 0, min(capacity, 64)),
		pos:   make(map[int]*openItem),
	}
}

func (s *openSet) Len() int { return len(s.items) }

func (s *openSet) Less(i, j int) bool {
	if s.items[i].distance != s.items[j].distance {
		return s.items[i].distance < s.items[j].distance
	}
	return s.items[i].seq < s.items[j].seq
}

func (s *openSet) Swap(i, j int) {
	s.items[i], s.items[j] = s.items[j], s.items[i]
	s.items[i].index = i
	s.items[j].index = j
}

func (s *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(s.items)
	s.items = append(s.items, item)
}

func (s *openSet) Pop() any {
	old := s.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	s.items = old[:n-1]
	return item
}

func (s *openSet) push(node, distance int) {
	item := &openItem{node: node, distance: distance, seq: s.seq}
	s.seq++
	s.pos[node] = item
	heap.Push(s, item)
}

func (s *openSet) pop() int {
	item := heap.Pop(s).(*openItem)
	delete(s.pos, item.node)
	return item.node
}

func (s *openSet) contains(node int) bool {
	_, ok := s.pos[node]
	return ok
}

func (s *openSet) update(node, distance int) {
	item := s.pos[node]
	item.distance = distance
	heap.Fix(s, item.index)
}
