package game

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/level"
	"github.com/mitchelldurbincs/GridTactics/internal/game/ranges"
)

// This file contains the debug board dump of the engine.

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorBlue   = "\033[34m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

var playerColors = []string{ColorRed, ColorBlue}

const (
	moveSymbol   = '+'
	threatSymbol = '!'
	pathSymbol   = 'o'
)

// Board renders the grid top row first, with the move range, preview path and
// threat zone drawn on empty tiles. Units of the second player are lower
// case. With color set, units and overlays are wrapped in ANSI codes.
func (e *Engine) Board(color bool) string {
	width, height := e.grid.W, e.grid.H
	overlay := e.classifier.Overlay()

	var sb strings.Builder
	sb.Grow((width*12 + 8) * (height + 4))

	// Header row
	sb.WriteString("   ")
	for x := 0; x < width; x++ {
		fmt.Fprintf(&sb, "%2d", x%100)
	}
	sb.WriteString("\n")

	for y := height - 1; y >= 0; y-- {
		fmt.Fprintf(&sb, "%2d ", y%100)
		for x := 0; x < width; x++ {
			c := core.NewCoordinate(x, y)
			symbol, code := e.tileDisplay(c, overlay.Flags(c))
			sb.WriteByte(' ')
			if color && code != "" {
				sb.WriteString(code)
				sb.WriteRune(symbol)
				sb.WriteString(ColorReset)
			} else {
				sb.WriteRune(symbol)
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nturn %d, player %d to act", e.Turn(), e.current)
	if e.gameOver {
		fmt.Fprintf(&sb, ", game over: player %d wins", e.winner)
	}
	sb.WriteString("\n")
	return sb.String()
}

func (e *Engine) tileDisplay(c core.Coordinate, flags ranges.Flag) (rune, string) {
	if u := e.grid.OccupantAt(c); u != nil {
		symbol := u.Symbol
		if u.Owner == core.PlayerTwo {
			symbol = unicode.ToLower(symbol)
		}
		return symbol, getPlayerColor(u.Owner)
	}
	if !e.grid.IsWalkable(c) {
		return level.WallSymbol, ColorGray
	}
	switch {
	case flags&ranges.OnPath != 0:
		return pathSymbol, ColorYellow
	case flags&ranges.MoveRange != 0:
		return moveSymbol, ColorCyan
	case flags&ranges.Threat != 0:
		return threatSymbol, ColorRed
	}
	return level.FloorSymbol, ""
}

// rows writes the grid in level notation, top row first
func (e *Engine) rows() []string {
	out := make([]string, 0, e.grid.H)
	for y := e.grid.H - 1; y >= 0; y-- {
		row := make([]rune, e.grid.W)
		for x := range row {
			c := core.NewCoordinate(x, y)
			switch u := e.grid.OccupantAt(c); {
			case u != nil:
				row[x] = u.Symbol
			case !e.grid.IsWalkable(c):
				row[x] = level.WallSymbol
			default:
				row[x] = level.FloorSymbol
			}
		}
		out = append(out, string(row))
	}
	return out
}

// getPlayerColor returns the color for the given player ID
func getPlayerColor(playerID core.PlayerID) string {
	if playerID < 0 || int(playerID) >= len(playerColors) {
		return ColorWhite
	}
	return playerColors[playerID]
}
