package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/status"

	gameengine "github.com/mitchelldurbincs/GridTactics/internal/game"
	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/grpc/gameserver"
)

const instructions = `Grid Tactics - MCP Interface

Two players take turns moving and attacking with their units on a grid.
A player wins when the other has no units left.

BOARD:
- Row 0 is the bottom row, x grows to the right
- . floor, * wall, uppercase letters are player 0 units, lowercase player 1
- o planned path, + reachable tile, ! tile an enemy can strike next turn

TURN FLOW:
1. select_tile on one of your units to see its move and attack range
2. right_click a reachable tile to move, or an enemy in range to attack
3. end_turn when done; run_ai_turn plays a computer player's turn

Steps cost 5 orthogonally and 7 diagonally against the unit's move points.`

// Server exposes the game service as MCP tools
type Server struct {
	games     *gameserver.Server
	mcpServer *server.MCPServer
	logger    zerolog.Logger
}

// NewServer registers every tool against the given game service
func NewServer(games *gameserver.Server, version string, logger zerolog.Logger) *Server {
	s := &Server{
		games:  games,
		logger: logger.With().Str("component", "mcp").Logger(),
	}
	s.mcpServer = server.NewMCPServer(
		"Grid Tactics",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying server for serving
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Serve runs the tools over stdin and stdout until the input closes
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

func gameIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Game ID returned by create_game",
	}
}

func playerProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Acting player, 0 or 1",
	}
}

func tileProperties() map[string]interface{} {
	return map[string]interface{}{
		"game_id": gameIDProperty(),
		"player":  playerProperty(),
		"x":       map[string]interface{}{"type": "integer", "description": "Column, 0 is the left edge"},
		"y":       map[string]interface{}{"type": "integer", "description": "Row, 0 is the bottom edge"},
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Start a new game. Pass a level in text form or let the server generate one.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Level rows separated by newlines, top row first",
				},
				"width":            map[string]interface{}{"type": "integer", "description": "Generated board width"},
				"height":           map[string]interface{}{"type": "integer", "description": "Generated board height"},
				"units_per_player": map[string]interface{}{"type": "integer", "description": "Units generated per side"},
				"seed":             map[string]interface{}{"type": "integer", "description": "Seed for the level generator"},
				"ai_opponent": map[string]interface{}{
					"type":        "boolean",
					"description": "Let the computer play player 1",
				},
			},
		},
	}, s.handleCreateGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List the games held by the server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListGames)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show the board, whose turn it is and each side's strength",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameIDProperty()},
			Required:   []string{"game_id"},
		},
	}, s.handleGameState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "select_tile",
		Description: "Select the unit on a tile and show where it can move and attack",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: tileProperties(),
			Required:   []string{"game_id", "player", "x", "y"},
		},
	}, s.tileCommand(core.Select))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "hover",
		Description: "Preview the path the selected unit would take to a tile",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: tileProperties(),
			Required:   []string{"game_id", "player", "x", "y"},
		},
	}, s.tileCommand(core.Hover))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "right_click",
		Description: "Move the selected unit to a tile or attack the enemy standing on it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: tileProperties(),
			Required:   []string{"game_id", "player", "x", "y"},
		},
	}, s.tileCommand(core.RightClick))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "deselect",
		Description: "Clear the current selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"player":  playerProperty(),
			},
			Required: []string{"game_id", "player"},
		},
	}, s.plainCommand(core.Deselect))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "end_turn",
		Description: "End the turn and hand over to the other player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"player":  playerProperty(),
			},
			Required: []string{"game_id", "player"},
		},
	}, s.plainCommand(core.EndTurn))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "run_ai_turn",
		Description: "Play the current player's turn when that player is computer controlled",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameIDProperty()},
			Required:   []string{"game_id"},
		},
	}, s.handleRunAITurn)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "tile_info",
		Description: "Describe a single tile: terrain, occupant, path cost from the selected unit and threat",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"x":       map[string]interface{}{"type": "integer"},
				"y":       map[string]interface{}{"type": "integer"},
			},
			Required: []string{"game_id", "x", "y"},
		},
	}, s.handleTileInfo)
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing argument %q", key)
	}
	return v, nil
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func requiredInt(args map[string]interface{}, key string) (int, error) {
	v, ok := intArg(args, key)
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	return v, nil
}

func coordinateArg(args map[string]interface{}) (core.Coordinate, error) {
	x, err := requiredInt(args, "x")
	if err != nil {
		return core.Coordinate{}, err
	}
	y, err := requiredInt(args, "y")
	if err != nil {
		return core.Coordinate{}, err
	}
	return core.NewCoordinate(x, y), nil
}

// toolError turns a service error into a tool failure the model can read
func toolError(err error) *mcp.CallToolResult {
	if st, ok := status.FromError(err); ok {
		return mcp.NewToolResultError(st.Message())
	}
	return mcp.NewToolResultError(err.Error())
}

// Tool handlers

func (s *Server) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	req := &gameserver.CreateGameRequest{}
	req.Level, _ = args["level"].(string)
	req.Width, _ = intArg(args, "width")
	req.Height, _ = intArg(args, "height")
	req.UnitsPerPlayer, _ = intArg(args, "units_per_player")
	if seed, ok := intArg(args, "seed"); ok {
		req.Seed = int64(seed)
	}
	if ai, _ := args["ai_opponent"].(bool); ai {
		req.Players = []gameengine.Player{{}, {IsAI: true}}
	}

	resp, err := s.games.CreateGame(ctx, req)
	if err != nil {
		return toolError(err), nil
	}
	s.logger.Info().Str("game_id", resp.GameID).Msg("Game created over MCP")

	return s.boardResult(ctx, resp.GameID, fmt.Sprintf("Created game: %s\n\n", resp.GameID))
}

func (s *Server) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.games.ListGames(ctx, nil)
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active games (%d):\n\n", len(resp.Games))
	for _, g := range resp.Games {
		state := fmt.Sprintf("turn %d, player %d to act", g.Turn, g.CurrentPlayer)
		if g.GameOver {
			state = fmt.Sprintf("over, player %d won", g.Winner)
		}
		fmt.Fprintf(&b, "- %s (%s, created %s)\n", g.GameID, state, g.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := stringArg(arguments(request), "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.boardResult(ctx, gameID, "")
}

// boardResult renders the board below the given header
func (s *Server) boardResult(ctx context.Context, gameID, header string) (*mcp.CallToolResult, error) {
	state, err := s.games.GetState(ctx, &gameserver.GetStateRequest{GameID: gameID, Board: true})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(state.Board)
	b.WriteString("\n")
	for _, st := range state.Stats {
		fmt.Fprintf(&b, "player %d: %d units, %d/%d health, %d can act\n",
			st.Player, st.Units, st.Health, st.MaxHealth, st.ActiveUnits)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) tileCommand(build func(core.Coordinate) core.Command) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		at, err := coordinateArg(arguments(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.execute(ctx, request, build(at))
	}
}

func (s *Server) plainCommand(build func() core.Command) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.execute(ctx, request, build())
	}
}

func (s *Server) execute(ctx context.Context, request mcp.CallToolRequest, cmd core.Command) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, err := stringArg(args, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	player, err := requiredInt(args, "player")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.games.Execute(ctx, &gameserver.ExecuteRequest{
		GameID:   gameID,
		PlayerID: core.PlayerID(player),
		Command:  cmd,
	})
	if err != nil {
		return toolError(err), nil
	}

	header := fmt.Sprintf("%s: %s\n\n", cmd, describeOutcome(resp.Outcome))
	if resp.Outcome.Kind == core.OutcomeRejected {
		return mcp.NewToolResultError(strings.TrimSpace(header)), nil
	}
	return s.boardResult(ctx, gameID, header)
}

func describeOutcome(o core.Outcome) string {
	if o.Reason != "" {
		return fmt.Sprintf("%s (%s)", o.Kind, o.Reason)
	}
	return string(o.Kind)
}

func (s *Server) handleRunAITurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := stringArg(arguments(request), "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.games.RunAITurn(ctx, &gameserver.GameRequest{GameID: gameID})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "AI played %d commands:\n", len(resp.Results))
	for _, r := range resp.Results {
		fmt.Fprintf(&b, "- %s: %s\n", r.Command, describeOutcome(r.Outcome))
	}
	if resp.Error != "" {
		fmt.Fprintf(&b, "stopped: %s\n", resp.Error)
	}
	b.WriteString("\n")
	return s.boardResult(ctx, gameID, b.String())
}

func (s *Server) handleTileInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, err := stringArg(args, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	at, err := coordinateArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var text string
	err = s.games.GameManager().WithGame(gameID, func(e *gameengine.Engine) error {
		if !e.InBounds(at) {
			return fmt.Errorf("tile %s: %w", at, core.ErrInvalidCoordinates)
		}
		text = describeTile(e, at)
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func describeTile(e *gameengine.Engine, at core.Coordinate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tile %s\n", at)

	if e.IsWalkable(at) {
		b.WriteString("terrain: floor\n")
	} else {
		b.WriteString("terrain: wall\n")
	}

	if u := e.OccupantAt(at); u != nil {
		fmt.Fprintf(&b, "unit: %s of player %d, %d/%d health, %d move left",
			u.Archetype, u.Owner, u.Health, u.MaxHealth, u.RemainingMove)
		if u.Busy {
			b.WriteString(", busy")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("unit: none\n")
	}

	if from, ok := e.Selected(); ok {
		fmt.Fprintf(&b, "selected unit at %s\n", from)
		if e.Graph().Reachable(at) {
			fmt.Fprintf(&b, "path cost: %d\n", e.DistanceTo(at))
		} else {
			b.WriteString("path cost: unreachable\n")
		}
		fmt.Fprintf(&b, "in move range: %t\n", e.IsInMoveRange(at))
		fmt.Fprintf(&b, "in attack range: %t\n", e.IsInAttackRange(at))
		fmt.Fprintf(&b, "enemy in range: %t\n", e.IsEnemyInRange(at))
	}
	fmt.Fprintf(&b, "threatened by enemy: %t\n", e.IsThreatenedByEnemy(at))
	return b.String()
}
