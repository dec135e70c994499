package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/testutil"
)

func TestAutoPlayer_NearestEnemyTieGoesToBoardOrder(t *testing.T) {
	// Both tanks are 12 away. Scanning by column reaches (0,3) first even
	// though (3,2) sits on a lower row.
	e := newTestEngine(t, testutil.ParseLevel(t,
		"T...",
		"...T",
		".S..",
		"....",
	), withAI(core.PlayerOne))

	ap := NewAutoPlayer(e)
	assert.Equal(t, 1, ap.Remaining())

	cmd, ok := ap.Next()
	require.True(t, ok)
	assert.Equal(t, core.Select(c(1, 1)), cmd)
	require.Equal(t, core.OutcomeSelected, e.Execute(cmd).Kind)
	require.Equal(t, 12, e.DistanceTo(c(0, 3)))
	require.Equal(t, 12, e.DistanceTo(c(3, 2)))

	cmd, ok = ap.Next()
	require.True(t, ok)
	assert.Equal(t, core.RightClick(c(0, 3)), cmd)
	assert.Equal(t, 0, ap.Remaining())
}

func TestAutoPlayer_UnitsActInColumnOrder(t *testing.T) {
	e := newTestEngine(t, testutil.ParseLevel(t,
		"..T.",
		"....",
		"S...",
		"..S.",
	), withAI(core.PlayerOne))

	ap := NewAutoPlayer(e)
	require.Equal(t, 2, ap.Remaining())

	cmd, ok := ap.Next()
	require.True(t, ok)
	assert.Equal(t, core.Select(c(0, 1)), cmd)
}

func TestAutoPlayer_SkipsDeadUnits(t *testing.T) {
	e := newTestEngine(t, testutil.ParseLevel(t,
		"..T..",
		".....",
		".S.S.",
	), withAI(core.PlayerOne))

	ap := NewAutoPlayer(e)
	require.Equal(t, 2, ap.Remaining())
	e.Grid().RemoveUnit(c(1, 0))

	cmd, ok := ap.Next()
	require.True(t, ok)
	assert.Equal(t, core.Select(c(3, 0)), cmd)
}

func TestAutoPlayer_StopsWhenTurnChanges(t *testing.T) {
	e := newTestEngine(t, testutil.Duel(t), withAI(core.PlayerOne))

	ap := NewAutoPlayer(e)
	require.Equal(t, core.OutcomeTurnSwitched, e.EndTurn().Kind)

	_, ok := ap.Next()
	assert.False(t, ok)
	_, ok = ap.Next()
	assert.False(t, ok)
}

func TestAutoPlayer_FinishesWithDeselectAndEndTurn(t *testing.T) {
	// Walled in: the scout has no path to the enemy
	e := newTestEngine(t, testutil.ParseLevel(t,
		"..T..",
		"*****",
		".....",
		"..S..",
	), withAI(core.PlayerOne))

	ap := NewAutoPlayer(e)
	var got []core.Command
	for {
		cmd, ok := ap.Next()
		if !ok {
			break
		}
		got = append(got, cmd)
		e.Execute(cmd)
	}

	assert.Equal(t, []core.Command{core.Select(c(2, 0)), core.Deselect(), core.EndTurn()}, got)
	assert.Equal(t, core.PlayerTwo, e.CurrentPlayer())
}
