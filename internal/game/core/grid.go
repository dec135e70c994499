package core

// Tile represents a single cell on the map.
// Occupant: NoUnit (-1) when free, otherwise the ID of the unit standing on it.
type Tile struct {
	Walkable bool
	Occupant UnitID
}

func (t *Tile) IsFree() bool { return t.Occupant == NoUnit }

// Grid is the board: a fixed W x H array of tiles plus the roster of the
// units standing on them. It is the single source of truth for occupancy.
type Grid struct {
	W, H  int
	T     []Tile // length = W*H (row-major)
	units map[UnitID]*Unit
}

// NewGrid creates a board with every tile walkable and free
func NewGrid(w, h int) *Grid {
	g := &Grid{W: w, H: h, T: make([]Tile, w*h), units: make(map[UnitID]*Unit)}
	for i := range g.T {
		g.T[i] = Tile{Walkable: true, Occupant: NoUnit}
	}
	return g
}

func (g *Grid) Idx(c Coordinate) int       { return c.ToIndex(g.W) }
func (g *Grid) At(idx int) Coordinate      { return FromIndex(idx, g.W) }
func (g *Grid) Size() int                  { return g.W * g.H }
func (g *Grid) InBounds(c Coordinate) bool { return c.IsValid(g.W, g.H) }
func (g *Grid) Unit(id UnitID) *Unit       { return g.units[id] }
func (g *Grid) UnitCount() int             { return len(g.units) }
func (g *Grid) IsFree(c Coordinate) bool   { return !g.IsOccupied(c) }

// Tile safely returns a tile pointer if the coordinate is valid, nil otherwise
func (g *Grid) Tile(c Coordinate) *Tile {
	if !g.InBounds(c) {
		return nil
	}
	return &g.T[g.Idx(c)]
}

// IsWalkable is false outside the board
func (g *Grid) IsWalkable(c Coordinate) bool {
	t := g.Tile(c)
	return t != nil && t.Walkable
}

// IsOccupied is true outside the board: the edge is treated as a wall
func (g *Grid) IsOccupied(c Coordinate) bool {
	t := g.Tile(c)
	return t == nil || !t.IsFree()
}

// SetWalkable changes terrain at c. Out-of-bounds coordinates are ignored.
func (g *Grid) SetWalkable(c Coordinate, walkable bool) {
	if t := g.Tile(c); t != nil {
		t.Walkable = walkable
	}
}

// OccupantAt returns the unit standing on c, or nil
func (g *Grid) OccupantAt(c Coordinate) *Unit {
	t := g.Tile(c)
	if t == nil || t.IsFree() {
		return nil
	}
	return g.units[t.Occupant]
}

// PlaceUnit puts u on c and registers it in the roster
func (g *Grid) PlaceUnit(c Coordinate, u *Unit) error {
	t := g.Tile(c)
	if t == nil {
		return ErrInvalidCoordinates
	}
	if !t.IsFree() {
		return ErrTileOccupied
	}
	t.Occupant = u.ID
	g.units[u.ID] = u
	return nil
}

// RemoveUnit clears c and drops its unit from the roster. Returns the removed
// unit or nil if c was free.
func (g *Grid) RemoveUnit(c Coordinate) *Unit {
	t := g.Tile(c)
	if t == nil || t.IsFree() {
		return nil
	}
	u := g.units[t.Occupant]
	delete(g.units, t.Occupant)
	t.Occupant = NoUnit
	return u
}

// MoveUnit transfers the occupant of from to to in one step
func (g *Grid) MoveUnit(from, to Coordinate) error {
	src, dst := g.Tile(from), g.Tile(to)
	if src == nil || dst == nil {
		return ErrInvalidCoordinates
	}
	if src.IsFree() {
		return ErrNoUnit
	}
	if !dst.IsFree() {
		return ErrIllegalMove
	}
	dst.Occupant = src.Occupant
	src.Occupant = NoUnit
	return nil
}

// Locate finds the coordinate of a unit by scanning the board
func (g *Grid) Locate(id UnitID) (Coordinate, bool) {
	if _, ok := g.units[id]; !ok {
		return Coordinate{}, false
	}
	for i := range g.T {
		if g.T[i].Occupant == id {
			return g.At(i), true
		}
	}
	return Coordinate{}, false
}

// Placement pairs a unit with the tile it stands on
type Placement struct {
	At   Coordinate
	Unit *Unit
}

// Units returns every unit on the board in scan order: columns left to
// right, each column bottom to top
func (g *Grid) Units() []Placement {
	out := make([]Placement, 0, len(g.units))
	for x := 0; x < g.W; x++ {
		for y := 0; y < g.H; y++ {
			if id := g.T[y*g.W+x].Occupant; id != NoUnit {
				out = append(out, Placement{At: Coordinate{X: x, Y: y}, Unit: g.units[id]})
			}
		}
	}
	return out
}

// UnitsOf returns the units owned by p in scan order
func (g *Grid) UnitsOf(p PlayerID) []Placement {
	var out []Placement
	for _, pl := range g.Units() {
		if pl.Unit.Owner == p {
			out = append(out, pl)
		}
	}
	return out
}

// Clone returns a deep copy of the grid and its units
func (g *Grid) Clone() *Grid {
	c := &Grid{W: g.W, H: g.H, T: make([]Tile, len(g.T)), units: make(map[UnitID]*Unit, len(g.units))}
	copy(c.T, g.T)
	for id, u := range g.units {
		cp := *u
		c.units[id] = &cp
	}
	return c
}
