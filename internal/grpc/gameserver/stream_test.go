package gameserver

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
)

func waitForStreams(t *testing.T, srv *Server, gameID string, n int) *gameInstance {
	game, err := srv.GameManager().GetGame(gameID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return game.streams.GetClientCount() == n }, time.Second, 5*time.Millisecond)
	return game
}

func TestWatchGame(t *testing.T) {
	client, srv, _ := setupTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gameID := createDuel(t, client, nil)

	stream, err := client.WatchGame(ctx, &WatchGameRequest{GameID: gameID})
	require.NoError(t, err)
	waitForStreams(t, srv, gameID, 1)

	_, err = client.Execute(ctx, &ExecuteRequest{GameID: gameID, Command: core.Select(core.NewCoordinate(2, 1))})
	require.NoError(t, err)

	env, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, events.TypeUnitSelected, env.Type)
	assert.Equal(t, gameID, env.GameID)

	var selected events.UnitSelectedEvent
	require.NoError(t, env.Decode(&selected))
	assert.Equal(t, core.NewCoordinate(2, 1), selected.At)

	// Cancelling the client ends the server side too
	cancel()
	waitForStreams(t, srv, gameID, 0)
}

func TestWatchGame_FiltersTypes(t *testing.T) {
	client, srv, _ := setupTestServer(t)
	ctx := context.Background()
	gameID := createDuel(t, client, nil)

	stream, err := client.WatchGame(ctx, &WatchGameRequest{GameID: gameID, Types: []string{events.TypeUnitMoved}})
	require.NoError(t, err)
	waitForStreams(t, srv, gameID, 1)

	_, err = client.SubmitCommands(ctx, &SubmitCommandsRequest{
		GameID:   gameID,
		Commands: []core.Command{core.Select(core.NewCoordinate(2, 1)), core.RightClick(core.NewCoordinate(1, 1))},
	})
	require.NoError(t, err)

	env, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, events.TypeUnitMoved, env.Type)
}

func TestWatchGame_GameRemoved(t *testing.T) {
	client, srv, _ := setupTestServer(t)
	ctx := context.Background()
	gameID := createDuel(t, client, nil)

	stream, err := client.WatchGame(ctx, &WatchGameRequest{GameID: gameID})
	require.NoError(t, err)
	waitForStreams(t, srv, gameID, 1)

	require.True(t, srv.GameManager().RemoveGame(gameID))

	_, err = stream.Recv()
	requireCode(t, err, codes.Unavailable)
}

func TestWatchGame_UnknownGame(t *testing.T) {
	client, _, _ := setupTestServer(t)

	stream, err := client.WatchGame(context.Background(), &WatchGameRequest{GameID: "nope"})
	require.NoError(t, err)
	_, err = stream.Recv()
	requireCode(t, err, codes.NotFound)
}

func TestStreamClient_DropsWhenFull(t *testing.T) {
	bus := events.NewEventBus(zerolog.Nop())
	sm := NewStreamManager("g", bus)
	client := sm.RegisterClient(nil)

	for i := 0; i < streamBufferSize+10; i++ {
		bus.Publish(events.NewGameRestartedEvent("g", i))
	}
	assert.Len(t, client.updates, streamBufferSize)

	sm.UnregisterClient(client.id)
	assert.Equal(t, 0, sm.GetClientCount())
	assert.Equal(t, 0, bus.GetSubscriberCount())
	// publishing after unregistering is harmless
	bus.Publish(events.NewGameRestartedEvent("g", 99))
}
