package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
	"github.com/mitchelldurbincs/GridTactics/internal/game/level"
	"github.com/mitchelldurbincs/GridTactics/internal/game/mapgen"
	"github.com/mitchelldurbincs/GridTactics/internal/game/pathfinding"
	"github.com/mitchelldurbincs/GridTactics/internal/game/processor"
	"github.com/mitchelldurbincs/GridTactics/internal/game/ranges"
	"github.com/mitchelldurbincs/GridTactics/internal/game/rules"
	"github.com/mitchelldurbincs/GridTactics/internal/game/states"
)

// GameConfig holds everything needed to start a game
type GameConfig struct {
	GameID string

	// Level is played when set. Otherwise a level of Width x Height with
	// UnitsPerPlayer units per side is generated from Rng.
	Level          *level.Level
	Width          int
	Height         int
	UnitsPerPlayer int
	Archetypes     []core.Archetype
	Rng            *rand.Rand

	Rules       rules.Rules
	Players     [2]Player
	FirstPlayer core.PlayerID

	// EventBus is created when nil
	EventBus *events.EventBus
	Logger   zerolog.Logger
}

// EngineInitializer handles the initialization of a game engine
type EngineInitializer struct {
	config GameConfig
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg GameConfig) *EngineInitializer {
	logger := cfg.Logger.With().Str("component", "GameEngine").Logger()
	return &EngineInitializer{
		config: cfg,
		logger: logger,
	}
}

// Initialize creates the engine, loads the level and starts the first turn
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled or timed out during initial phase")
		return nil, ctx.Err()
	default:
	}

	if err := ei.setupDefaults(); err != nil {
		return nil, err
	}

	lvl, err := ei.loadLevel()
	if err != nil {
		return nil, fmt.Errorf("level setup failed: %w", err)
	}

	grid, err := lvl.Build()
	if err != nil {
		return nil, fmt.Errorf("level build failed: %w", err)
	}

	engine := ei.createEngine(lvl, grid)

	if err := engine.turnProcessor.Start("Level loaded"); err != nil {
		return nil, fmt.Errorf("state machine initialization failed: %w", err)
	}

	ei.logger.Info().
		Str("game_id", engine.gameID).
		Str("level", lvl.Name).
		Int("width", lvl.Width).
		Int("height", lvl.Height).
		Int("units", grid.UnitCount()).
		Msg("Engine created successfully")

	return engine, nil
}

// setupDefaults fills in missing configuration
func (ei *EngineInitializer) setupDefaults() error {
	cfg := &ei.config
	if cfg.GameID == "" {
		cfg.GameID = fmt.Sprintf("game_%d", time.Now().UnixNano())
	}
	if !cfg.FirstPlayer.Valid() {
		return core.WrapPlayerError(cfg.FirstPlayer, "first turn", core.ErrInvalidPlayer)
	}
	for i := range cfg.Players {
		cfg.Players[i].ID = core.PlayerID(i)
		if cfg.Players[i].Name == "" {
			cfg.Players[i].Name = fmt.Sprintf("Player %d", i+1)
		}
	}
	if cfg.Level == nil && cfg.Rng == nil {
		ei.logger.Debug().Msg("No RNG provided, creating new seeded RNG")
		cfg.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.EventBus == nil {
		cfg.EventBus = events.NewEventBus(cfg.Logger)
	}
	return nil
}

// loadLevel returns the configured level or generates one
func (ei *EngineInitializer) loadLevel() (*level.Level, error) {
	if ei.config.Level != nil {
		return ei.config.Level, nil
	}
	mapCfg := mapgen.DefaultMapConfig(ei.config.Width, ei.config.Height, ei.config.UnitsPerPlayer)
	if len(ei.config.Archetypes) > 0 {
		mapCfg.Archetypes = ei.config.Archetypes
	}
	return mapgen.NewGenerator(mapCfg, ei.config.Rng, ei.logger).GenerateLevel()
}

// createEngine wires the engine and its components
func (ei *EngineInitializer) createEngine(lvl *level.Level, grid *core.Grid) *Engine {
	engine := &Engine{
		gameID:       ei.config.GameID,
		level:        lvl,
		grid:         grid,
		rules:        ei.config.Rules,
		players:      ei.config.Players,
		first:        ei.config.FirstPlayer,
		current:      ei.config.FirstPlayer,
		winner:       core.NoPlayer,
		graph:        pathfinding.NewGraph(grid.W, grid.H),
		threatGraph:  pathfinding.NewGraph(grid.W, grid.H),
		logger:       ei.logger,
		pathfinder:   pathfinding.NewPathfinder(ei.logger),
		classifier:   ranges.NewClassifier(grid.W, grid.H, ei.logger),
		actions:      rules.NewActionChecker(ei.config.Rules),
		winCondition: rules.NewWinConditionChecker(ei.logger),
		cmdProcessor: processor.NewCommandProcessor(ei.logger),
		eventBus:     ei.config.EventBus,
		lifecycle:    states.NewLifecycle(ei.config.GameID, ei.config.EventBus, ei.logger),
	}
	engine.turnProcessor = NewTurnProcessor(engine)

	return engine
}
