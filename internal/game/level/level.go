package level

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// Spawn is a unit placement read from a level
type Spawn struct {
	At        core.Coordinate
	Owner     core.PlayerID
	Archetype core.Archetype
}

// Level is a parsed board description. Walls is row-major with y = 0 being
// the last line of the text.
type Level struct {
	Name   string
	Width  int
	Height int
	Walls  []bool
	Spawns []Spawn
}

// Parse reads a grid-of-characters level. The last line is y = 0, '*' is a
// wall and any catalogue symbol spawns a unit; everything else is floor. The
// lower half of the rows belongs to the first player. Blank lines are
// skipped and short rows are padded with walls.
func Parse(text string, cat Catalogue) (*Level, error) {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r", "\n"), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, core.ErrEmptyLevel
	}

	height := len(lines)
	width := 0
	rows := make([][]rune, height)
	for i, l := range lines {
		// reversed: the last line is the bottom row
		row := []rune(l)
		rows[height-1-i] = row
		width = max(width, len(row))
	}

	lvl := &Level{Width: width, Height: height, Walls: make([]bool, width*height)}
	for y, row := range rows {
		for x := 0; x < width; x++ {
			c := core.NewCoordinate(x, y)
			if x >= len(row) {
				lvl.Walls[c.ToIndex(width)] = true
				continue
			}
			ch := row[x]
			if ch == WallSymbol {
				lvl.Walls[c.ToIndex(width)] = true
				continue
			}
			if a, ok := cat[ch]; ok {
				lvl.Spawns = append(lvl.Spawns, Spawn{At: c, Owner: ownerOf(y, height), Archetype: a})
			}
		}
	}
	return lvl, nil
}

func ownerOf(y, height int) core.PlayerID {
	if y < height/2 {
		return core.PlayerOne
	}
	return core.PlayerTwo
}

// Load reads and parses a level file
func Load(path string, cat Catalogue) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level %s: %w", path, err)
	}
	lvl, err := Parse(string(data), cat)
	if err != nil {
		return nil, fmt.Errorf("parsing level %s: %w", path, err)
	}
	lvl.Name = path
	return lvl, nil
}

// Default is an empty walled arena
func Default(width, height int) *Level {
	lvl := &Level{Name: "default", Width: width, Height: height, Walls: make([]bool, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				lvl.Walls[y*width+x] = true
			}
		}
	}
	return lvl
}

// Build creates a fresh grid with every spawn placed. Unit IDs follow the
// spawn order, which is row-major.
func (l *Level) Build() (*core.Grid, error) {
	grid := core.NewGrid(l.Width, l.Height)
	for i, wall := range l.Walls {
		if wall {
			grid.SetWalkable(grid.At(i), false)
		}
	}
	for i, s := range l.Spawns {
		if !grid.IsWalkable(s.At) {
			return nil, fmt.Errorf("spawn %s: %w", s.At, core.ErrIllegalMove)
		}
		if err := grid.PlaceUnit(s.At, core.NewUnit(core.UnitID(i), s.Owner, s.Archetype)); err != nil {
			return nil, fmt.Errorf("spawn %s: %w", s.At, err)
		}
	}
	return grid, nil
}

// UnitsPerPlayer counts spawns by owner
func (l *Level) UnitsPerPlayer() map[core.PlayerID]int {
	out := make(map[core.PlayerID]int)
	for _, s := range l.Spawns {
		out[s.Owner]++
	}
	return out
}

// Text renders the level back to its character form
func (l *Level) Text() string {
	symbols := make(map[core.Coordinate]rune, len(l.Spawns))
	for _, s := range l.Spawns {
		r := []rune(s.Archetype.Symbol)
		if len(r) > 0 {
			symbols[s.At] = r[0]
		}
	}

	var b strings.Builder
	for y := l.Height - 1; y >= 0; y-- {
		for x := 0; x < l.Width; x++ {
			c := core.NewCoordinate(x, y)
			switch {
			case l.Walls[c.ToIndex(l.Width)]:
				b.WriteRune(WallSymbol)
			case symbols[c] != 0:
				b.WriteRune(symbols[c])
			default:
				b.WriteRune(FloorSymbol)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
