package events

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	received := false
	var receivedEvent Event
	bus.SubscribeFunc(TypeGameStarted, func(e Event) {
		received = true
		receivedEvent = e
	})

	bus.Publish(NewGameStartedEvent("test-game", 20, 20, 4, core.PlayerOne))

	assert.True(t, received, "Event handler should have been called")
	require.NotNil(t, receivedEvent)
	assert.Equal(t, TypeGameStarted, receivedEvent.Type())
	assert.Equal(t, "test-game", receivedEvent.GameID())
}

func TestEventBusLogsThroughGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	bus := NewEventBus(zerolog.New(&buf).Level(zerolog.DebugLevel))

	bus.Publish(NewGameRestartedEvent("g", 1))
	assert.Contains(t, buf.String(), `"component":"event_bus"`)
	assert.Contains(t, buf.String(), "Publishing event")

	buf.Reset()
	quiet := NewEventBus(zerolog.New(&buf).Level(zerolog.InfoLevel))
	quiet.Publish(NewGameRestartedEvent("g", 2))
	assert.Empty(t, buf.String())
}

func TestEventBusHandlerIDs(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	calls := 0
	id1 := bus.SubscribeFunc(TypeUnitMoved, func(Event) { calls++ })
	id2 := bus.SubscribeFunc(TypeUnitMoved, func(Event) { calls += 10 })
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, "unit.moved_func_1", id1)
	assert.Equal(t, 2, bus.GetFuncHandlerCount(TypeUnitMoved))

	bus.UnsubscribeFunc(id1)
	assert.Equal(t, 1, bus.GetFuncHandlerCount(TypeUnitMoved))

	bus.Publish(NewUnitMovedEvent("g", core.PlayerOne, 1, 0, core.Coordinate{}, core.Coordinate{X: 1}, nil, 5, 0))
	assert.Equal(t, 10, calls)

	bus.UnsubscribeFunc("missing")
	assert.Equal(t, 1, bus.GetFuncHandlerCount(TypeUnitMoved))
}

func TestEventBusReentrantHandlers(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	var seen []string
	var selfID string
	selfID = bus.SubscribeFunc(TypeUnitSelected, func(e Event) {
		seen = append(seen, e.Type())
		bus.UnsubscribeFunc(selfID)
		bus.Publish(NewSelectionClearedEvent(e.GameID(), core.PlayerOne, 1, 0))
	})
	bus.SubscribeFunc(TypeSelectionCleared, func(e Event) {
		seen = append(seen, e.Type())
	})

	assert.NotPanics(t, func() {
		bus.Publish(NewUnitSelectedEvent("g", core.PlayerOne, 1, 0, core.Coordinate{}, 0, 0, 0))
		bus.Publish(NewUnitSelectedEvent("g", core.PlayerOne, 1, 0, core.Coordinate{}, 0, 0, 0))
	})
	assert.Equal(t, []string{TypeUnitSelected, TypeSelectionCleared}, seen)
}

// recordingSubscriber is a test implementation of Subscriber
type recordingSubscriber struct {
	id       string
	received []Event
}

func (r *recordingSubscriber) ID() string                 { return r.id }
func (r *recordingSubscriber) HandleEvent(e Event)        { r.received = append(r.received, e) }
func (r *recordingSubscriber) InterestedIn(t string) bool { return t == TypeStateTransition }

func TestEventBusSubscriber(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())
	sub := &recordingSubscriber{id: "recorder"}
	bus.Subscribe(sub)

	bus.Publish(NewStateTransitionEvent("g", core.PlayerOne, 1, "Initializing", "HumanTurn", "start"))
	bus.Publish(NewGameRestartedEvent("g", 1))

	require.Len(t, sub.received, 1)
	st := sub.received[0].(*StateTransitionEvent)
	assert.Equal(t, "HumanTurn", st.ToPhase)
}
