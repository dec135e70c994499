package mapgen

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/level"
	"github.com/mitchelldurbincs/GridTactics/internal/game/pathfinding"
)

// MapConfig holds configuration for map generation
type MapConfig struct {
	Width          int
	Height         int
	UnitsPerPlayer int
	NumWallVeins   int
	MinVeinLength  int
	MaxVeinLength  int
	Archetypes     []core.Archetype
}

// DefaultMapConfig returns a sensible default configuration
func DefaultMapConfig(w, h, unitsPerPlayer int) MapConfig {
	return MapConfig{
		Width:          w,
		Height:         h,
		UnitsPerPlayer: unitsPerPlayer,
		NumWallVeins:   (w * h) / 60,
		MinVeinLength:  3,
		MaxVeinLength:  max(3, w/4),
		Archetypes:     level.DefaultArchetypes(),
	}
}

// Generator handles map generation with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewGenerator creates a new map generator
func NewGenerator(config MapConfig, rng *rand.Rand, logger zerolog.Logger) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
		logger: logger.With().Str("component", "MapGenerator").Logger(),
	}
}

// GenerateLevel creates a walled arena with random wall veins, closes off any
// floor that cannot be walked to, and spawns each player's units in its half
// of the board.
func (g *Generator) GenerateLevel() (*level.Level, error) {
	if g.config.Width < 3 || g.config.Height < 4 {
		return nil, fmt.Errorf("map %dx%d is too small", g.config.Width, g.config.Height)
	}
	if len(g.config.Archetypes) == 0 && g.config.UnitsPerPlayer > 0 {
		return nil, fmt.Errorf("no archetypes to spawn units from")
	}

	lvl := level.Default(g.config.Width, g.config.Height)
	lvl.Name = "generated"

	g.placeWalls(lvl)
	g.sealUnreachable(lvl)

	for _, p := range []core.PlayerID{core.PlayerOne, core.PlayerTwo} {
		if err := g.placeUnits(lvl, p); err != nil {
			return nil, err
		}
	}
	sortSpawns(lvl)

	g.logger.Debug().
		Int("width", lvl.Width).
		Int("height", lvl.Height).
		Int("units", len(lvl.Spawns)).
		Msg("Level generated")
	return lvl, nil
}

// placeWalls draws random-walk wall veins inside the border
func (g *Generator) placeWalls(lvl *level.Level) {
	if g.config.NumWallVeins <= 0 {
		return
	}
	minLen := max(1, g.config.MinVeinLength)
	maxLen := max(minLen, g.config.MaxVeinLength)

	for i := 0; i < g.config.NumWallVeins; i++ {
		x := 1 + g.rng.Intn(lvl.Width-2)
		y := 1 + g.rng.Intn(lvl.Height-2)
		length := minLen + g.rng.Intn(maxLen-minLen+1)

		for step := 0; step < length; step++ {
			lvl.Walls[y*lvl.Width+x] = true
			o := core.NeighborOffsets[g.rng.Intn(len(core.NeighborOffsets))]
			nx, ny := x+o.DX, y+o.DY
			if nx < 1 || ny < 1 || nx >= lvl.Width-1 || ny >= lvl.Height-1 {
				break
			}
			x, y = nx, ny
		}
	}
}

// sealUnreachable keeps the largest connected floor region and turns every
// other floor tile into wall, so any two spawns can reach each other.
func (g *Generator) sealUnreachable(lvl *level.Level) {
	grid, err := lvl.Build()
	if err != nil {
		return
	}
	pf := pathfinding.NewPathfinder(g.logger)

	seen := make([]bool, len(lvl.Walls))
	var best *pathfinding.Graph
	bestSize := 0
	for i, wall := range lvl.Walls {
		if wall || seen[i] {
			continue
		}
		graph := pf.ComputeDistances(grid, grid.At(i))
		size := 0
		for j, n := range graph.Nodes {
			if n.Distance != pathfinding.Unreachable {
				seen[j] = true
				size++
			}
		}
		if size > bestSize {
			best, bestSize = graph, size
		}
	}
	if best == nil {
		return
	}

	sealed := 0
	for i, n := range best.Nodes {
		if !lvl.Walls[i] && n.Distance == pathfinding.Unreachable {
			lvl.Walls[i] = true
			sealed++
		}
	}
	if sealed > 0 {
		g.logger.Debug().Int("sealed", sealed).Msg("Closed off unreachable floor")
	}
}

// placeUnits spawns UnitsPerPlayer units on free floor of p's half
func (g *Generator) placeUnits(lvl *level.Level, p core.PlayerID) error {
	var free []core.Coordinate
	taken := make(map[core.Coordinate]bool, len(lvl.Spawns))
	for _, s := range lvl.Spawns {
		taken[s.At] = true
	}
	for y := 0; y < lvl.Height; y++ {
		if (y < lvl.Height/2) != (p == core.PlayerOne) {
			continue
		}
		for x := 0; x < lvl.Width; x++ {
			c := core.NewCoordinate(x, y)
			if !lvl.Walls[c.ToIndex(lvl.Width)] && !taken[c] {
				free = append(free, c)
			}
		}
	}
	if len(free) < g.config.UnitsPerPlayer {
		return fmt.Errorf("player %d: only %d free tiles for %d units", p, len(free), g.config.UnitsPerPlayer)
	}

	g.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	for i := 0; i < g.config.UnitsPerPlayer; i++ {
		a := g.config.Archetypes[g.rng.Intn(len(g.config.Archetypes))]
		lvl.Spawns = append(lvl.Spawns, level.Spawn{At: free[i], Owner: p, Archetype: a})
	}
	return nil
}

// sortSpawns puts spawns in row-major order, the order Parse produces
func sortSpawns(lvl *level.Level) {
	sort.Slice(lvl.Spawns, func(i, j int) bool {
		return lvl.Spawns[i].At.ToIndex(lvl.Width) < lvl.Spawns[j].At.ToIndex(lvl.Width)
	})
}
