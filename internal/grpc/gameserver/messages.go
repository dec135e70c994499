package gameserver

import (
	"time"

	gameengine "github.com/mitchelldurbincs/GridTactics/internal/game"
	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/processor"
	"github.com/mitchelldurbincs/GridTactics/internal/game/rules"
)

// CreateGameRequest describes a new game. Zero values fall back to the
// server defaults; Level, when set, is level text and wins over generation.
type CreateGameRequest struct {
	Level          string              `json:"level,omitempty"`
	Width          int                 `json:"width,omitempty"`
	Height         int                 `json:"height,omitempty"`
	UnitsPerPlayer int                 `json:"units_per_player,omitempty"`
	Seed           int64               `json:"seed,omitempty"`
	Rules          *rules.Rules        `json:"rules,omitempty"`
	Players        []gameengine.Player `json:"players,omitempty"`
	FirstPlayer    *core.PlayerID      `json:"first_player,omitempty"`
}

type CreateGameResponse struct {
	GameID string               `json:"game_id"`
	State  gameengine.GameState `json:"state"`
}

// GameSummary is one entry of ListGames
type GameSummary struct {
	GameID        string        `json:"game_id"`
	Phase         string        `json:"phase"`
	Turn          int           `json:"turn"`
	CurrentPlayer core.PlayerID `json:"current_player"`
	GameOver      bool          `json:"game_over"`
	Winner        core.PlayerID `json:"winner"`
	CreatedAt     time.Time     `json:"created_at"`
	LastActivity  time.Time     `json:"last_activity"`
}

type ListGamesResponse struct {
	Games []GameSummary `json:"games"`
}

type GetStateRequest struct {
	GameID string `json:"game_id"`
	// Board asks for the ASCII rendering as well
	Board bool `json:"board,omitempty"`
}

type GetStateResponse struct {
	State gameengine.GameState      `json:"state"`
	Stats [2]gameengine.PlayerStats `json:"stats"`
	Board string                    `json:"board,omitempty"`
}

type ExecuteRequest struct {
	GameID         string        `json:"game_id"`
	PlayerID       core.PlayerID `json:"player_id"`
	Command        core.Command  `json:"command"`
	IdempotencyKey string        `json:"idempotency_key,omitempty"`
}

// TurnStatus is the state every mutating call reports back
type TurnStatus struct {
	CurrentPlayer core.PlayerID `json:"current_player"`
	Turn          int           `json:"turn"`
	GameOver      bool          `json:"game_over"`
	Winner        core.PlayerID `json:"winner"`
}

type ExecuteResponse struct {
	Outcome core.Outcome `json:"outcome"`
	Status  TurnStatus   `json:"status"`
}

type SubmitCommandsRequest struct {
	GameID   string         `json:"game_id"`
	PlayerID core.PlayerID  `json:"player_id"`
	Commands []core.Command `json:"commands"`
}

// CommandsResponse reports a batch. Error is set when the batch stopped
// early or contained unknown commands; the applied results are still listed.
type CommandsResponse struct {
	Results []processor.Result `json:"results"`
	Error   string             `json:"error,omitempty"`
	Status  TurnStatus         `json:"status"`
}

type GameRequest struct {
	GameID string `json:"game_id"`
}

type SetBusyRequest struct {
	GameID string          `json:"game_id"`
	At     core.Coordinate `json:"at"`
	Busy   bool            `json:"busy"`
}

type WatchGameRequest struct {
	GameID string `json:"game_id"`
	// Types filters the stream; empty means every event
	Types []string `json:"types,omitempty"`
}
