package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

func TestWrap(t *testing.T) {
	ev := NewUnitMovedEvent("g1", core.PlayerOne, 2, 7,
		core.NewCoordinate(0, 0), core.NewCoordinate(1, 0),
		[]core.Coordinate{core.NewCoordinate(1, 0)}, 5, 15)

	env, err := Wrap(ev)
	require.NoError(t, err)
	assert.Equal(t, TypeUnitMoved, env.Type)
	assert.Equal(t, "g1", env.GameID)
	assert.Equal(t, ev.Timestamp(), env.Timestamp)
	assert.Equal(t, 2, env.Turn)

	var decoded UnitMovedEvent
	require.NoError(t, env.Decode(&decoded))
	assert.Equal(t, ev.To, decoded.To)
	assert.Equal(t, ev.Cost, decoded.Cost)
	assert.Equal(t, ev.RemainingMove, decoded.RemainingMove)
	assert.Equal(t, ev.Path, decoded.Path)
	assert.Equal(t, core.PlayerOne, decoded.Player())
	assert.Equal(t, 2, decoded.Turn())
}
