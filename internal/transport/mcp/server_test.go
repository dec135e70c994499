package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gameengine "github.com/mitchelldurbincs/GridTactics/internal/game"
	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/grpc/gameserver"
)

// duelLevel puts a soldier of player 0 at (2,1) and a knight of player 1
// at (2,3)
const duelLevel = "..K..\n.....\n..S..\n.....\n"

func newTestServer(t *testing.T) *Server {
	gm := gameserver.NewGameManager(gameserver.ManagerOptions{
		MaxGames:        10,
		Defaults:        gameengine.GameConfig{Width: 8, Height: 6, UnitsPerPlayer: 2},
		CleanupInterval: -1,
	})
	t.Cleanup(gm.Close)
	return NewServer(gameserver.NewServer(gm), "test", zerolog.Nop())
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "Expected text content in result")
	return text.Text
}

// createDuel starts a game on the duel level and returns its ID
func createDuel(t *testing.T, s *Server, extra map[string]interface{}) string {
	args := map[string]interface{}{"level": duelLevel}
	for k, v := range extra {
		args[k] = v
	}
	result, err := s.handleCreateGame(context.Background(), call(args))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	text := resultText(t, result)
	require.True(t, strings.HasPrefix(text, "Created game: "), text)
	gameID, _, _ := strings.Cut(strings.TrimPrefix(text, "Created game: "), "\n")
	_, err = s.games.GameManager().GetGame(gameID)
	require.NoError(t, err)
	return gameID
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t)
	require.NotNil(t, s.MCPServer())
}

func TestHandleCreateGame(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	gameID := createDuel(t, s, nil)

	result, err := s.handleGameState(ctx, call(map[string]interface{}{"game_id": gameID}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "turn 1, player 0 to act")
	assert.Contains(t, text, "player 0: 1 units")
	assert.Contains(t, text, "player 1: 1 units")

	// Generated level
	result, err = s.handleCreateGame(ctx, call(map[string]interface{}{
		"width": float64(10), "height": float64(8), "units_per_player": float64(3), "seed": float64(7),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "player 0: 3 units")

	// A broken level is reported as a tool error
	result, err = s.handleCreateGame(ctx, call(map[string]interface{}{"level": "\n\n"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleListGames(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleListGames(ctx, call(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Active games (0)")

	gameID := createDuel(t, s, nil)
	result, err = s.handleListGames(ctx, call(nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Active games (1)")
	assert.Contains(t, text, gameID)
	assert.Contains(t, text, "turn 1, player 0 to act")
}

func TestHandleGameState_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleGameState(ctx, call(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "game_id")

	result, err = s.handleGameState(ctx, call(map[string]interface{}{"game_id": "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unknown game")
}

func TestCommandTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	gameID := createDuel(t, s, nil)

	tile := func(player, x, y int) mcp.CallToolRequest {
		return call(map[string]interface{}{
			"game_id": gameID, "player": float64(player), "x": float64(x), "y": float64(y),
		})
	}

	selectTile := s.tileCommand(core.Select)
	result, err := selectTile(ctx, tile(0, 2, 1))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), "select (2,1): selected")

	hover := s.tileCommand(core.Hover)
	result, err = hover(ctx, tile(0, 2, 0))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "previewed")

	rightClick := s.tileCommand(core.RightClick)
	result, err = rightClick(ctx, tile(0, 2, 0))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), "right_click (2,0): moved")

	// Declined commands surface as tool errors with the reason
	result, err = selectTile(ctx, tile(0, 2, 3))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "rejected")

	deselect := s.plainCommand(core.Deselect)
	result, err = deselect(ctx, call(map[string]interface{}{"game_id": gameID, "player": float64(0)}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "deselect: deselected")

	endTurn := s.plainCommand(core.EndTurn)
	result, err = endTurn(ctx, call(map[string]interface{}{"game_id": gameID, "player": float64(0)}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "end_turn: turn_switched")
	assert.Contains(t, text, "turn 2, player 1 to act")

	// Out of turn
	result, err = endTurn(ctx, call(map[string]interface{}{"game_id": gameID, "player": float64(0)}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestCommandTools_MissingArguments(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	gameID := createDuel(t, s, nil)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"no game", map[string]interface{}{"player": float64(0), "x": float64(1), "y": float64(1)}, "game_id"},
		{"no player", map[string]interface{}{"game_id": gameID, "x": float64(1), "y": float64(1)}, "player"},
		{"no x", map[string]interface{}{"game_id": gameID, "player": float64(0), "y": float64(1)}, `"x"`},
		{"no y", map[string]interface{}{"game_id": gameID, "player": float64(0), "x": float64(1)}, `"y"`},
	}

	selectTile := s.tileCommand(core.Select)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := selectTile(ctx, call(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestHandleRunAITurn(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	human := createDuel(t, s, nil)
	result, err := s.handleRunAITurn(ctx, call(map[string]interface{}{"game_id": human}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	bot := createDuel(t, s, map[string]interface{}{"ai_opponent": true})
	endTurn := s.plainCommand(core.EndTurn)
	result, err = endTurn(ctx, call(map[string]interface{}{"game_id": bot, "player": float64(0)}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	result, err = s.handleRunAITurn(ctx, call(map[string]interface{}{"game_id": bot}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	text := resultText(t, result)
	assert.Contains(t, text, "AI played")
	assert.Contains(t, text, "select (2,3): selected")
	assert.Contains(t, text, "end_turn: turn_switched")
	assert.Contains(t, text, "player 0 to act")
}

func TestHandleTileInfo(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	gameID := createDuel(t, s, nil)

	info := func(x, y int) *mcp.CallToolResult {
		result, err := s.handleTileInfo(ctx, call(map[string]interface{}{
			"game_id": gameID, "x": float64(x), "y": float64(y),
		}))
		require.NoError(t, err)
		return result
	}

	text := resultText(t, info(2, 1))
	assert.Contains(t, text, "Tile (2,1)")
	assert.Contains(t, text, "terrain: floor")
	assert.Contains(t, text, "unit: soldier of player 0, 10/10 health, 20 move left")
	assert.NotContains(t, text, "path cost")

	selectTile := s.tileCommand(core.Select)
	_, err := selectTile(ctx, call(map[string]interface{}{
		"game_id": gameID, "player": float64(0), "x": float64(2), "y": float64(1),
	}))
	require.NoError(t, err)

	text = resultText(t, info(2, 2))
	assert.Contains(t, text, "unit: none")
	assert.Contains(t, text, "selected unit at (2,1)")
	assert.Contains(t, text, "path cost: 5")
	assert.Contains(t, text, "in move range: true")

	result := info(9, 9)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid coordinates")

	result, err = s.handleTileInfo(ctx, call(map[string]interface{}{"game_id": "nope", "x": float64(0), "y": float64(0)}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
