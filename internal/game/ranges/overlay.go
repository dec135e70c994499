package ranges

import (
	"strings"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// Flag is a per-tile display marker
type Flag uint8

const (
	MoveRange Flag = 1 << iota
	AttackRange
	EnemyInRange
	OnPath
	Threat
)

// SelectionFlags are the markers that belong to the current selection
const SelectionFlags = MoveRange | AttackRange | EnemyInRange | OnPath

var flagNames = []struct {
	flag Flag
	name string
}{
	{MoveRange, "move"},
	{AttackRange, "attack"},
	{EnemyInRange, "enemy"},
	{OnPath, "path"},
	{Threat, "threat"},
}

func (f Flag) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Overlay stores the flags of every tile in row-major order
type Overlay struct {
	W, H  int
	flags []Flag
}

func NewOverlay(w, h int) *Overlay {
	return &Overlay{W: w, H: h, flags: make([]Flag, w*h)}
}

// Flags returns the markers on c; none outside the board
func (o *Overlay) Flags(c core.Coordinate) Flag {
	if !c.IsValid(o.W, o.H) {
		return 0
	}
	return o.flags[c.ToIndex(o.W)]
}

func (o *Overlay) Has(c core.Coordinate, f Flag) bool { return o.Flags(c)&f != 0 }

func (o *Overlay) Set(c core.Coordinate, f Flag) {
	if c.IsValid(o.W, o.H) {
		o.flags[c.ToIndex(o.W)] |= f
	}
}

// Clear removes f from every tile
func (o *Overlay) Clear(f Flag) {
	for i := range o.flags {
		o.flags[i] &^= f
	}
}

// Tiles lists the coordinates carrying f in row-major order
func (o *Overlay) Tiles(f Flag) []core.Coordinate {
	var out []core.Coordinate
	for i, fl := range o.flags {
		if fl&f != 0 {
			out = append(out, core.FromIndex(i, o.W))
		}
	}
	return out
}

// Count returns how many tiles carry f
func (o *Overlay) Count(f Flag) int {
	n := 0
	for _, fl := range o.flags {
		if fl&f != 0 {
			n++
		}
	}
	return n
}
