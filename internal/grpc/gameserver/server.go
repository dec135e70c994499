package gameserver

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
	"github.com/mitchelldurbincs/GridTactics/internal/game/processor"
)

// Server implements the TacticsService gRPC server
type Server struct {
	// Game manager for handling all game instances
	gameManager *GameManager
}

// NewServer creates a new game server
func NewServer(gameManager *GameManager) *Server {
	return &Server{gameManager: gameManager}
}

// GameManager exposes the games served, for the other transports
func (s *Server) GameManager() *GameManager {
	return s.gameManager
}

// CreateGame creates a new game instance
func (s *Server) CreateGame(ctx context.Context, req *CreateGameRequest) (*CreateGameResponse, error) {
	game, err := s.gameManager.CreateGame(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}

	game.mu.Lock()
	defer game.mu.Unlock()
	return &CreateGameResponse{
		GameID: game.id,
		State:  game.engine.Snapshot(),
	}, nil
}

// ListGames lists every game held by the server
func (s *Server) ListGames(ctx context.Context, _ *emptypb.Empty) (*ListGamesResponse, error) {
	return &ListGamesResponse{Games: s.gameManager.ListGames()}, nil
}

// GetState retrieves the current game state
func (s *Server) GetState(ctx context.Context, req *GetStateRequest) (*GetStateResponse, error) {
	game, err := s.gameManager.GetGame(req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}

	game.mu.Lock()
	defer game.mu.Unlock()
	return stateResponse(game, req.Board), nil
}

func stateResponse(game *gameInstance, board bool) *GetStateResponse {
	resp := &GetStateResponse{
		State: game.engine.Snapshot(),
		Stats: game.engine.Stats(),
	}
	if board {
		resp.Board = game.engine.Board(false)
	}
	return resp
}

// Execute applies a single command. A repeated idempotency key returns the
// first response without touching the engine again.
func (s *Server) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	log.Debug().
		Str("game_id", req.GameID).
		Int("player_id", int(req.PlayerID)).
		Str("command", req.Command.String()).
		Str("idempotency_key", req.IdempotencyKey).
		Msg("Received command")

	if !req.PlayerID.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "invalid player %d", req.PlayerID)
	}
	if !req.Command.Kind.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown command kind %q", req.Command.Kind)
	}

	game, err := s.gameManager.GetGame(req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if cached := game.idempotency.Check(req.PlayerID, req.IdempotencyKey); cached != nil {
		return cached, nil
	}

	results, err := game.engine.ProcessCommands(ctx, req.PlayerID, []core.Command{req.Command})
	if err != nil {
		return nil, toStatus(err)
	}
	game.touch()

	resp := &ExecuteResponse{
		Outcome: results[0].Outcome,
		Status:  game.status(),
	}
	game.idempotency.Store(req.PlayerID, req.IdempotencyKey, resp)
	return resp, nil
}

// SubmitCommands applies a batch of commands for one player
func (s *Server) SubmitCommands(ctx context.Context, req *SubmitCommandsRequest) (*CommandsResponse, error) {
	if !req.PlayerID.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "invalid player %d", req.PlayerID)
	}

	game, err := s.gameManager.GetGame(req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	results, err := game.engine.ProcessCommands(ctx, req.PlayerID, req.Commands)
	return game.commandsResponse(results, err)
}

// RunAITurn plays the current player's turn when that player is an AI
func (s *Server) RunAITurn(ctx context.Context, req *GameRequest) (*CommandsResponse, error) {
	game, err := s.gameManager.GetGame(req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	results, err := game.engine.RunAITurn(ctx)
	return game.commandsResponse(results, err)
}

// commandsResponse reports partial batches in the response and fails the
// call only when nothing ran; mu must be held
func (g *gameInstance) commandsResponse(results []processor.Result, err error) (*CommandsResponse, error) {
	if err != nil && len(results) == 0 {
		return nil, toStatus(err)
	}
	if len(results) > 0 {
		g.touch()
	}

	resp := &CommandsResponse{
		Results: results,
		Status:  g.status(),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp, nil
}

// SetBusy marks a unit as animating. Busy units cannot be selected or act.
func (s *Server) SetBusy(ctx context.Context, req *SetBusyRequest) (*emptypb.Empty, error) {
	game, err := s.gameManager.GetGame(req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if err := game.engine.SetBusy(req.At, req.Busy); err != nil {
		return nil, toStatus(err)
	}
	game.touch()
	return &emptypb.Empty{}, nil
}

// Restart reloads the level of a game
func (s *Server) Restart(ctx context.Context, req *GameRequest) (*GetStateResponse, error) {
	game, err := s.gameManager.GetGame(req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if err := game.engine.Restart(); err != nil {
		return nil, toStatus(err)
	}
	game.idempotency.Clear()
	game.touch()

	log.Info().Str("game_id", req.GameID).Msg("Game restarted")
	return stateResponse(game, false), nil
}

// WatchGame streams the events of a game until the client goes away or the
// game is removed
func (s *Server) WatchGame(req *WatchGameRequest, stream grpc.ServerStreamingServer[events.Envelope]) error {
	log.Info().
		Str("game_id", req.GameID).
		Strs("types", req.Types).
		Msg("Client connecting to game stream")

	game, err := s.gameManager.GetGame(req.GameID)
	if err != nil {
		return toStatus(err)
	}

	client := game.streams.RegisterClient(req.Types)
	defer game.streams.UnregisterClient(client.id)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("game_id", req.GameID).Str("stream_id", client.id).Msg("Stream client disconnected")
			return nil
		case <-client.done:
			return status.Errorf(codes.Unavailable, "game %s closed", req.GameID)
		case env := <-client.updates:
			if err := stream.Send(env); err != nil {
				log.Debug().Err(err).Str("stream_id", client.id).Msg("Failed to send stream update")
				return err
			}
		}
	}
}

// toStatus maps engine and manager errors onto gRPC codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, core.ErrUnknownGame):
		code = codes.NotFound
	case errors.Is(err, ErrServerAtCapacity):
		code = codes.ResourceExhausted
	case errors.Is(err, errInvalidConfig),
		errors.Is(err, core.ErrInvalidCoordinates),
		errors.Is(err, core.ErrNoUnit),
		errors.Is(err, core.ErrUnknownCommand),
		errors.Is(err, core.ErrEmptyLevel):
		code = codes.InvalidArgument
	case errors.Is(err, core.ErrGameOver),
		errors.Is(err, core.ErrInvalidPlayer),
		errors.Is(err, core.ErrIllegalMove):
		code = codes.FailedPrecondition
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}
