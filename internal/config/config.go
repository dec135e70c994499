package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/GridTactics/internal/game"
	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/level"
	"github.com/mitchelldurbincs/GridTactics/internal/game/rules"
)

// Config holds all configuration for the application
type Config struct {
	Game    GameConfig    `mapstructure:"game"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GameConfig holds game mechanics configuration
type GameConfig struct {
	Rules   rules.Rules      `mapstructure:"rules"`
	Board   BoardConfig      `mapstructure:"board"`
	Players PlayersConfig    `mapstructure:"players"`
	Units   []core.Archetype `mapstructure:"units"`
	AI      AIConfig         `mapstructure:"ai"`
}

// BoardConfig selects the level. LevelFile wins over generation.
type BoardConfig struct {
	LevelFile      string `mapstructure:"level_file"`
	Width          int    `mapstructure:"width"`
	Height         int    `mapstructure:"height"`
	UnitsPerPlayer int    `mapstructure:"units_per_player"`
	// Seed of the level generator; 0 picks one from the clock
	Seed int64 `mapstructure:"seed"`
}

// PlayersConfig holds both sides of a game
type PlayersConfig struct {
	One   PlayerConfig `mapstructure:"one"`
	Two   PlayerConfig `mapstructure:"two"`
	First int          `mapstructure:"first"`
}

// PlayerConfig holds a single side
type PlayerConfig struct {
	Name string `mapstructure:"name"`
	AI   bool   `mapstructure:"ai"`
}

// AIConfig holds autoplay pacing. The engine never sleeps; callers that
// animate AI turns wait StepDelayMs between commands.
type AIConfig struct {
	StepDelayMs int `mapstructure:"step_delay_ms"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	GRPC      GRPCServerConfig `mapstructure:"grpc"`
	WebSocket WebSocketConfig  `mapstructure:"websocket"`
}

// GRPCServerConfig holds gRPC server configuration
type GRPCServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	MaxGames              int    `mapstructure:"max_games"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
	// IdleGameTimeout is how long, in seconds, a finished game is kept
	IdleGameTimeout int `mapstructure:"idle_game_timeout"`
}

// WebSocketConfig holds the event broadcast endpoint configuration
type WebSocketConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Addr         string `mapstructure:"addr"`
	Path         string `mapstructure:"path"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	SendBuffer   int    `mapstructure:"send_buffer"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Rule defaults
	v.SetDefault("game.rules.single_move_per_turn", false)
	v.SetDefault("game.rules.one_action_per_turn", false)
	v.SetDefault("game.rules.threat_uses_remaining_move", false)

	// Board defaults
	v.SetDefault("game.board.level_file", "")
	v.SetDefault("game.board.width", 16)
	v.SetDefault("game.board.height", 12)
	v.SetDefault("game.board.units_per_player", 4)
	v.SetDefault("game.board.seed", 0)

	// Player defaults
	v.SetDefault("game.players.one.name", "Player 1")
	v.SetDefault("game.players.one.ai", false)
	v.SetDefault("game.players.two.name", "Player 2")
	v.SetDefault("game.players.two.ai", true)
	v.SetDefault("game.players.first", 0)

	v.SetDefault("game.ai.step_delay_ms", 250)

	// gRPC server defaults
	v.SetDefault("server.grpc.host", "0.0.0.0")
	v.SetDefault("server.grpc.port", 50051)
	v.SetDefault("server.grpc.max_games", 100)
	v.SetDefault("server.grpc.enable_reflection", true)
	v.SetDefault("server.grpc.graceful_shutdown_delay", 5)
	v.SetDefault("server.grpc.idle_game_timeout", 600)

	// WebSocket defaults
	v.SetDefault("server.websocket.enabled", true)
	v.SetDefault("server.websocket.addr", ":8080")
	v.SetDefault("server.websocket.path", "/ws/")
	v.SetDefault("server.websocket.write_timeout", 10)
	v.SetDefault("server.websocket.send_buffer", 256)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/grid-tactics")
	}

	// Set environment variable prefix
	v.SetEnvPrefix("TACTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// A missing file falls back to defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into config struct
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Validate configuration
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig loads environment-specific config overlay
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	// Re-unmarshal with merged config
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}

	return Validate(cfg)
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	// Re-unmarshal to update struct
	_ = v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. A change that fails
// validation is reported through onError and the previous values stay.
func WatchConfig(onChange func(*Config), onError func(error)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		err := v.Unmarshal(next)
		if err == nil {
			err = Validate(next)
		}
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		*cfg = *next
		if onChange != nil {
			onChange(cfg)
		}
	})
}

// Validate validates the configuration values
func Validate(c *Config) error {
	// Validate board
	b := c.Game.Board
	if b.LevelFile == "" {
		if b.Width < 3 || b.Height < 2 {
			return fmt.Errorf("game.board dimensions must be at least 3x2")
		}
		if b.UnitsPerPlayer < 1 {
			return fmt.Errorf("game.board.units_per_player must be positive")
		}
	}
	if c.Game.Players.First != 0 && c.Game.Players.First != 1 {
		return fmt.Errorf("game.players.first must be 0 or 1")
	}
	if c.Game.AI.StepDelayMs < 0 {
		return fmt.Errorf("game.ai.step_delay_ms must be non-negative")
	}
	if len(c.Game.Units) > 0 {
		if _, err := level.NewCatalogue(c.Game.Units); err != nil {
			return fmt.Errorf("game.units: %w", err)
		}
	}

	// Validate server configuration
	if c.Server.GRPC.Port <= 0 || c.Server.GRPC.Port > 65535 {
		return fmt.Errorf("server.grpc.port must be between 1 and 65535")
	}
	if c.Server.GRPC.MaxGames <= 0 {
		return fmt.Errorf("server.grpc.max_games must be positive")
	}
	if c.Server.GRPC.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.grpc.graceful_shutdown_delay must be non-negative")
	}
	if c.Server.GRPC.IdleGameTimeout < 0 {
		return fmt.Errorf("server.grpc.idle_game_timeout must be non-negative")
	}
	if c.Server.WebSocket.Enabled {
		if c.Server.WebSocket.Addr == "" {
			return fmt.Errorf("server.websocket.addr is required when the websocket server is enabled")
		}
		if !strings.HasPrefix(c.Server.WebSocket.Path, "/") {
			return fmt.Errorf("server.websocket.path must start with /")
		}
	}
	if c.Server.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("server.websocket.send_buffer must be positive")
	}
	if c.Server.WebSocket.WriteTimeout <= 0 {
		return fmt.Errorf("server.websocket.write_timeout must be positive")
	}

	// Validate logging
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json")
	}

	return nil
}

// Catalogue returns the configured unit archetypes, or the built-in roster
// when none are configured
func (c *Config) Catalogue() (level.Catalogue, error) {
	if len(c.Game.Units) == 0 {
		return level.NewCatalogue(level.DefaultArchetypes())
	}
	return level.NewCatalogue(c.Game.Units)
}

// EngineConfig turns the game section into engine settings. The level file
// is loaded here; without one the engine generates a level.
func (c *Config) EngineConfig(logger zerolog.Logger) (game.GameConfig, error) {
	cat, err := c.Catalogue()
	if err != nil {
		return game.GameConfig{}, err
	}

	gc := game.GameConfig{
		Width:          c.Game.Board.Width,
		Height:         c.Game.Board.Height,
		UnitsPerPlayer: c.Game.Board.UnitsPerPlayer,
		Archetypes:     c.Game.Units,
		Rules:          c.Game.Rules,
		FirstPlayer:    core.PlayerID(c.Game.Players.First),
		Logger:         logger,
	}
	gc.Players[core.PlayerOne] = game.Player{Name: c.Game.Players.One.Name, IsAI: c.Game.Players.One.AI}
	gc.Players[core.PlayerTwo] = game.Player{Name: c.Game.Players.Two.Name, IsAI: c.Game.Players.Two.AI}

	if c.Game.Board.LevelFile != "" {
		lvl, err := level.Load(c.Game.Board.LevelFile, cat)
		if err != nil {
			return game.GameConfig{}, err
		}
		gc.Level = lvl
	} else {
		seed := c.Game.Board.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		gc.Rng = rand.New(rand.NewSource(seed))
	}
	return gc, nil
}

// StepDelay is the pause between two autoplay commands
func (c *Config) StepDelay() time.Duration {
	return time.Duration(c.Game.AI.StepDelayMs) * time.Millisecond
}
