package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

// fakeExecutor records commands and ends the turn on EndTurn
type fakeExecutor struct {
	current  core.PlayerID
	over     bool
	executed []core.Command
}

func (f *fakeExecutor) Execute(cmd core.Command) core.Outcome {
	f.executed = append(f.executed, cmd)
	switch cmd.Kind {
	case core.CommandEndTurn:
		f.current = f.current.Opponent()
		return core.Outcome{Kind: core.OutcomeTurnSwitched}
	case core.CommandSelect:
		return core.Outcome{Kind: core.OutcomeSelected}
	default:
		return core.Rejected("nothing selected")
	}
}

func (f *fakeExecutor) CurrentPlayer() core.PlayerID { return f.current }
func (f *fakeExecutor) IsOver() bool                 { return f.over }

func TestProcessCommands(t *testing.T) {
	cp := NewCommandProcessor(zerolog.Nop())
	ex := &fakeExecutor{current: core.PlayerOne}

	cmds := []core.Command{
		core.Select(core.NewCoordinate(1, 1)),
		core.RightClick(core.NewCoordinate(2, 2)),
	}
	results, err := cp.ProcessCommands(context.Background(), ex, core.PlayerOne, cmds)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, core.OutcomeSelected, results[0].Outcome.Kind)
	assert.Equal(t, core.OutcomeRejected, results[1].Outcome.Kind)
	assert.Equal(t, cmds, ex.executed)
}

func TestProcessCommands_StopsWhenTurnPasses(t *testing.T) {
	cp := NewCommandProcessor(zerolog.Nop())
	ex := &fakeExecutor{current: core.PlayerOne}

	results, err := cp.ProcessCommands(context.Background(), ex, core.PlayerOne, []core.Command{
		core.EndTurn(),
		core.Select(core.NewCoordinate(0, 0)),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidPlayer))
	assert.Len(t, results, 1)
	assert.Len(t, ex.executed, 1)
}

func TestProcessCommands_WrongPlayer(t *testing.T) {
	cp := NewCommandProcessor(zerolog.Nop())
	ex := &fakeExecutor{current: core.PlayerTwo}

	results, err := cp.ProcessCommands(context.Background(), ex, core.PlayerOne, []core.Command{core.Deselect()})
	assert.ErrorIs(t, err, core.ErrInvalidPlayer)
	assert.Empty(t, results)
	assert.Empty(t, ex.executed)
}

func TestProcessCommands_GameOver(t *testing.T) {
	cp := NewCommandProcessor(zerolog.Nop())
	ex := &fakeExecutor{current: core.PlayerOne, over: true}

	_, err := cp.ProcessCommands(context.Background(), ex, core.PlayerOne, []core.Command{core.Deselect()})
	assert.ErrorIs(t, err, core.ErrGameOver)
	assert.Empty(t, ex.executed)
}

func TestProcessCommands_UnknownCommand(t *testing.T) {
	cp := NewCommandProcessor(zerolog.Nop())
	ex := &fakeExecutor{current: core.PlayerOne}

	bogus := core.Command{Kind: "teleport"}
	results, err := cp.ProcessCommands(context.Background(), ex, core.PlayerOne, []core.Command{
		bogus,
		core.Select(core.NewCoordinate(1, 1)),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownCommand)
	var ce *core.CommandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, bogus, ce.Command)

	require.Len(t, results, 2, "the batch keeps going after an unknown command")
	assert.Equal(t, core.OutcomeRejected, results[0].Outcome.Kind)
	assert.Equal(t, []core.Command{core.Select(core.NewCoordinate(1, 1))}, ex.executed)
}

func TestProcessCommands_ContextCancelled(t *testing.T) {
	cp := NewCommandProcessor(zerolog.Nop())
	ex := &fakeExecutor{current: core.PlayerOne}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := cp.ProcessCommands(ctx, ex, core.PlayerOne, []core.Command{core.Deselect()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
