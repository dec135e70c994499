package gameserver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	gameengine "github.com/mitchelldurbincs/GridTactics/internal/game"
	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
	"github.com/mitchelldurbincs/GridTactics/internal/game/level"
)

// Game manager defaults
const (
	defaultCleanupInterval      = 5 * time.Minute  // How often to run cleanup
	defaultFinishedGameTTL      = 10 * time.Minute // Keep finished games for 10 minutes
	defaultAbandonedGameTimeout = 30 * time.Minute // Consider game abandoned after 30 minutes of inactivity
)

var (
	ErrServerAtCapacity = errors.New("server at capacity")
	errInvalidConfig    = errors.New("invalid game configuration")
)

type gameInstance struct {
	id     string
	engine *gameengine.Engine
	// mu guards the engine, which is single-threaded
	mu sync.Mutex

	createdAt    time.Time
	lastActivity time.Time

	idempotency *IdempotencyManager
	streams     *StreamManager
}

// touch records activity; mu must be held
func (g *gameInstance) touch() {
	g.lastActivity = time.Now()
}

func (g *gameInstance) summary() GameSummary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GameSummary{
		GameID:        g.id,
		Phase:         g.engine.Phase().String(),
		Turn:          g.engine.Turn(),
		CurrentPlayer: g.engine.CurrentPlayer(),
		GameOver:      g.engine.IsOver(),
		Winner:        g.engine.Winner(),
		CreatedAt:     g.createdAt,
		LastActivity:  g.lastActivity,
	}
}

// status reports the turn state; mu must be held
func (g *gameInstance) status() TurnStatus {
	return TurnStatus{
		CurrentPlayer: g.engine.CurrentPlayer(),
		Turn:          g.engine.Turn(),
		GameOver:      g.engine.IsOver(),
		Winner:        g.engine.Winner(),
	}
}

// ManagerOptions configures a GameManager. Zero durations use the defaults;
// a negative CleanupInterval disables the background cleanup.
type ManagerOptions struct {
	MaxGames int
	// Defaults is the template every game starts from. Its Level, when set,
	// is shared read-only between games.
	Defaults             gameengine.GameConfig
	Catalogue            level.Catalogue
	CleanupInterval      time.Duration
	FinishedGameTTL      time.Duration
	AbandonedGameTimeout time.Duration
	// OnRemove runs after a game has been dropped, outside the manager lock
	OnRemove func(gameID string)
}

// GameManager manages all active game instances
type GameManager struct {
	mu       sync.RWMutex
	games    map[string]*gameInstance
	maxGames int

	defaults             gameengine.GameConfig
	catalogue            level.Catalogue
	finishedGameTTL      time.Duration
	abandonedGameTimeout time.Duration
	onRemove             func(gameID string)

	stop     chan struct{}
	stopOnce sync.Once
}

// NewGameManager creates a new game manager and starts its cleanup loop
func NewGameManager(opts ManagerOptions) *GameManager {
	gm := &GameManager{
		games:                make(map[string]*gameInstance),
		maxGames:             opts.MaxGames,
		defaults:             opts.Defaults,
		catalogue:            opts.Catalogue,
		finishedGameTTL:      opts.FinishedGameTTL,
		abandonedGameTimeout: opts.AbandonedGameTimeout,
		onRemove:             opts.OnRemove,
		stop:                 make(chan struct{}),
	}
	if gm.catalogue == nil {
		gm.catalogue = level.MustDefaultCatalogue()
	}
	if gm.finishedGameTTL == 0 {
		gm.finishedGameTTL = defaultFinishedGameTTL
	}
	if gm.abandonedGameTimeout == 0 {
		gm.abandonedGameTimeout = defaultAbandonedGameTimeout
	}

	interval := opts.CleanupInterval
	if interval == 0 {
		interval = defaultCleanupInterval
	}
	if interval > 0 {
		go gm.runCleanup(interval)
	}
	return gm
}

// CreateGame builds an engine from the defaults and the request overrides
func (gm *GameManager) CreateGame(ctx context.Context, req *CreateGameRequest) (*gameInstance, error) {
	gm.mu.RLock()
	currentGames := len(gm.games)
	gm.mu.RUnlock()
	if gm.maxGames > 0 && currentGames >= gm.maxGames {
		log.Warn().
			Int("current_games", currentGames).
			Int("max_games", gm.maxGames).
			Msg("Rejecting game creation - server at capacity")
		return nil, fmt.Errorf("%w: %d/%d games active", ErrServerAtCapacity, currentGames, gm.maxGames)
	}

	gameID := uuid.NewString()
	cfg, err := gm.engineConfig(gameID, req)
	if err != nil {
		return nil, err
	}

	engine, err := gameengine.NewEngine(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", errInvalidConfig, err)
	}

	now := time.Now()
	game := &gameInstance{
		id:           gameID,
		engine:       engine,
		createdAt:    now,
		lastActivity: now,
		idempotency:  NewIdempotencyManager(),
		streams:      NewStreamManager(gameID, engine.EventBus()),
	}

	gm.mu.Lock()
	if gm.maxGames > 0 && len(gm.games) >= gm.maxGames {
		gm.mu.Unlock()
		return nil, fmt.Errorf("%w: %d/%d games active", ErrServerAtCapacity, gm.maxGames, gm.maxGames)
	}
	gm.games[gameID] = game
	gm.mu.Unlock()

	log.Info().
		Str("game_id", gameID).
		Int("width", engine.Grid().W).
		Int("height", engine.Grid().H).
		Str("level", engine.Level().Name).
		Msg("Created game instance")
	return game, nil
}

func (gm *GameManager) engineConfig(gameID string, req *CreateGameRequest) (gameengine.GameConfig, error) {
	cfg := gm.defaults
	cfg.GameID = gameID
	cfg.EventBus = nil
	cfg.Rng = nil
	cfg.Logger = log.With().Str("game_id", gameID).Logger()

	if req.Width > 0 || req.Height > 0 || req.UnitsPerPlayer > 0 {
		// explicit dimensions ask for a generated level
		cfg.Level = nil
	}
	if req.Width > 0 {
		cfg.Width = req.Width
	}
	if req.Height > 0 {
		cfg.Height = req.Height
	}
	if req.UnitsPerPlayer > 0 {
		cfg.UnitsPerPlayer = req.UnitsPerPlayer
	}
	if req.Level != "" {
		lvl, err := level.Parse(req.Level, gm.catalogue)
		if err != nil {
			return cfg, fmt.Errorf("%w: %w", errInvalidConfig, err)
		}
		lvl.Name = "request"
		cfg.Level = lvl
	}
	if cfg.Level == nil {
		seed := req.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		cfg.Rng = rand.New(rand.NewSource(seed))
	}

	if req.Rules != nil {
		cfg.Rules = *req.Rules
	}
	if len(req.Players) > len(cfg.Players) {
		return cfg, fmt.Errorf("%w: at most %d players", errInvalidConfig, len(cfg.Players))
	}
	for i, p := range req.Players {
		p.ID = core.PlayerID(i)
		cfg.Players[i] = p
	}
	if req.FirstPlayer != nil {
		cfg.FirstPlayer = *req.FirstPlayer
	}
	return cfg, nil
}

// GetGame retrieves a game instance by ID
func (gm *GameManager) GetGame(gameID string) (*gameInstance, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	game, ok := gm.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, core.ErrUnknownGame)
	}
	return game, nil
}

// ListGames summarises every game, oldest first
func (gm *GameManager) ListGames() []GameSummary {
	gm.mu.RLock()
	games := make([]*gameInstance, 0, len(gm.games))
	for _, g := range gm.games {
		games = append(games, g)
	}
	gm.mu.RUnlock()

	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, g.summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].GameID < out[j].GameID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// RemoveGame drops a game and closes its streams
func (gm *GameManager) RemoveGame(gameID string) bool {
	gm.mu.Lock()
	game, ok := gm.games[gameID]
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if ok {
		game.streams.CloseAll()
		if gm.onRemove != nil {
			gm.onRemove(gameID)
		}
	}
	return ok
}

// WithGame runs fn against a game's engine while holding the game lock.
// An error from fn is returned as is.
func (gm *GameManager) WithGame(gameID string, fn func(*gameengine.Engine) error) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	game.touch()
	return fn(game.engine)
}

// EventBus returns the bus a game publishes on
func (gm *GameManager) EventBus(gameID string) (*events.EventBus, bool) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, false
	}
	return game.engine.EventBus(), true
}

// GetActiveGames returns the number of games held
func (gm *GameManager) GetActiveGames() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// Close stops the cleanup loop and ends every stream
func (gm *GameManager) Close() {
	gm.stopOnce.Do(func() { close(gm.stop) })

	gm.mu.RLock()
	games := make([]*gameInstance, 0, len(gm.games))
	for _, g := range gm.games {
		games = append(games, g)
	}
	gm.mu.RUnlock()
	for _, g := range games {
		g.streams.CloseAll()
	}
}

func (gm *GameManager) runCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case <-ticker.C:
			gm.cleanupGames(time.Now())
		}
	}
}

// cleanupGames removes finished games past their TTL and games nobody has
// touched for the abandoned timeout
func (gm *GameManager) cleanupGames(now time.Time) {
	gm.mu.RLock()
	candidates := make([]*gameInstance, 0, len(gm.games))
	for _, g := range gm.games {
		candidates = append(candidates, g)
	}
	gm.mu.RUnlock()

	removed := 0
	for _, game := range candidates {
		game.mu.Lock()
		idle := now.Sub(game.lastActivity)
		finished := game.engine.IsOver()
		game.mu.Unlock()

		var reason string
		switch {
		case finished && idle > gm.finishedGameTTL:
			reason = "finished"
		case idle > gm.abandonedGameTimeout:
			reason = "abandoned"
		default:
			continue
		}

		if gm.RemoveGame(game.id) {
			removed++
			log.Info().
				Str("game_id", game.id).
				Str("reason", reason).
				Dur("idle", idle).
				Msg("Cleaned up game")
		}
	}

	if removed > 0 {
		log.Info().
			Int("removed", removed).
			Int("remaining", gm.GetActiveGames()).
			Msg("Game cleanup completed")
	}
}
