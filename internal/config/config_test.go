package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

func reset() {
	cfg = nil
	v = nil
}

func TestInit(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
game:
  rules:
    single_move_per_turn: true
    threat_uses_remaining_move: true
  board:
    width: 20
    units_per_player: 2
  players:
    two:
      name: "Bot"
      ai: true
  units:
    - name: pikeman
      symbol: P
      max_move: 10
      max_health: 12
      attack_range: 7
      attack_damage: 5
server:
  grpc:
    port: 8080
logging:
  format: json
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	reset()

	err = Init(configFile)
	require.NoError(t, err)

	c := Get()
	assert.True(t, c.Game.Rules.SingleMovePerTurn)
	assert.False(t, c.Game.Rules.OneActionPerTurn)
	assert.True(t, c.Game.Rules.ThreatUsesRemainingMove)
	assert.Equal(t, 20, c.Game.Board.Width)
	assert.Equal(t, 12, c.Game.Board.Height) // default
	assert.Equal(t, 2, c.Game.Board.UnitsPerPlayer)
	assert.Equal(t, "Bot", c.Game.Players.Two.Name)
	require.Len(t, c.Game.Units, 1)
	assert.Equal(t, core.Archetype{Name: "pikeman", Symbol: "P", MaxMove: 10, MaxHealth: 12, AttackRange: 7, AttackDamage: 5}, c.Game.Units[0])
	assert.Equal(t, 8080, c.Server.GRPC.Port)
	assert.Equal(t, "json", c.Logging.Format)
	assert.Equal(t, configFile, ConfigFilePath())
}

func TestInitWithDefaults(t *testing.T) {
	reset()

	// Initialize with non-existent config (should use defaults)
	err := Init("/non/existent/path/config.yaml")
	require.NoError(t, err)

	c := Get()
	require.NotNil(t, c)
	assert.Equal(t, 16, c.Game.Board.Width)
	assert.Equal(t, 50051, c.Server.GRPC.Port)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, 250*time.Millisecond, c.StepDelay())
}

func TestInitRejectsInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("game: [unterminated"), 0644))

	reset()
	assert.Error(t, Init(configFile))
}

func TestEnvironmentVariables(t *testing.T) {
	reset()

	t.Setenv("TACTICS_GAME_BOARD_WIDTH", "30")
	t.Setenv("TACTICS_SERVER_GRPC_PORT", "9090")
	t.Setenv("TACTICS_GAME_RULES_ONE_ACTION_PER_TURN", "true")

	err := Init("")
	require.NoError(t, err)

	// Environment variables should override
	c := Get()
	assert.Equal(t, 30, c.Game.Board.Width)
	assert.Equal(t, 9090, c.Server.GRPC.Port)
	assert.True(t, c.Game.Rules.OneActionPerTurn)
}

func TestSet(t *testing.T) {
	reset()

	err := Init("")
	require.NoError(t, err)

	Set("game.board.height", 9)
	Set("server.grpc.max_games", 3)

	c := Get()
	assert.Equal(t, 9, c.Game.Board.Height)
	assert.Equal(t, 3, c.Server.GRPC.MaxGames)
}

func TestGetHelpers(t *testing.T) {
	reset()

	err := Init("")
	require.NoError(t, err)

	Set("test.string", "hello")
	Set("test.int", 42)
	Set("test.bool", true)

	assert.Equal(t, "hello", GetString("test.string"))
	assert.Equal(t, 42, GetInt("test.int"))
	assert.Equal(t, true, GetBool("test.bool"))
	assert.Same(t, v, GetViper())
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := filepath.Join(tmpDir, "config.yaml")
	baseContent := `
game:
  board:
    width: 10
server:
  grpc:
    port: 50051
`
	err := os.WriteFile(baseConfig, []byte(baseContent), 0644)
	require.NoError(t, err)

	envConfig := filepath.Join(tmpDir, "config.prod.yaml")
	envContent := `
game:
  board:
    width: 14
server:
  grpc:
    port: 8080
logging:
  level: "error"
`
	err = os.WriteFile(envConfig, []byte(envContent), 0644)
	require.NoError(t, err)

	// Change to temp directory
	oldWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	defer func() { _ = os.Chdir(oldWd) }()

	reset()

	err = Init(baseConfig)
	require.NoError(t, err)

	err = LoadEnvironmentConfig("prod")
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, 14, c.Game.Board.Width)   // Overridden
	assert.Equal(t, 8080, c.Server.GRPC.Port) // Overridden
	assert.Equal(t, "error", c.Logging.Level) // New value
	assert.Equal(t, 12, c.Game.Board.Height)  // Default kept

	// A missing overlay is not an error
	require.NoError(t, LoadEnvironmentConfig("staging"))
	assert.NoError(t, LoadEnvironmentConfig(""))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		reset()
		require.NoError(t, Init(""))
		c := *Get()
		return &c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"tiny board", func(c *Config) { c.Game.Board.Width = 2 }},
		{"no units", func(c *Config) { c.Game.Board.UnitsPerPlayer = 0 }},
		{"bad first player", func(c *Config) { c.Game.Players.First = 2 }},
		{"negative step delay", func(c *Config) { c.Game.AI.StepDelayMs = -1 }},
		{"duplicate symbols", func(c *Config) {
			c.Game.Units = []core.Archetype{
				{Name: "a", Symbol: "A", MaxHealth: 1},
				{Name: "b", Symbol: "A", MaxHealth: 1},
			}
		}},
		{"port out of range", func(c *Config) { c.Server.GRPC.Port = 70000 }},
		{"no games", func(c *Config) { c.Server.GRPC.MaxGames = 0 }},
		{"websocket without addr", func(c *Config) { c.Server.WebSocket.Addr = "" }},
		{"websocket relative path", func(c *Config) { c.Server.WebSocket.Path = "ws" }},
		{"zero send buffer", func(c *Config) { c.Server.WebSocket.SendBuffer = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	require.NoError(t, Validate(valid()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, Validate(c))
		})
	}

	t.Run("level file skips board checks", func(t *testing.T) {
		c := valid()
		c.Game.Board.Width = 0
		c.Game.Board.LevelFile = "arena.txt"
		assert.NoError(t, Validate(c))
	})
}

func TestCatalogue(t *testing.T) {
	reset()
	require.NoError(t, Init(""))

	cat, err := Get().Catalogue()
	require.NoError(t, err)
	assert.Contains(t, cat, 'S')
	assert.Contains(t, cat, 'K')

	Set("game.units", []map[string]interface{}{
		{"name": "pikeman", "symbol": "P", "max_move": 10, "max_health": 12, "attack_range": 7, "attack_damage": 5},
	})
	cat, err = Get().Catalogue()
	require.NoError(t, err)
	assert.Len(t, cat, 1)
	assert.Equal(t, "pikeman", cat['P'].Name)
}

func TestEngineConfig(t *testing.T) {
	t.Run("generated", func(t *testing.T) {
		reset()
		require.NoError(t, Init(""))
		Set("game.board.seed", 11)
		Set("game.players.first", 1)

		gc, err := Get().EngineConfig(zerolog.Nop())
		require.NoError(t, err)
		assert.Nil(t, gc.Level)
		require.NotNil(t, gc.Rng)
		assert.Equal(t, 16, gc.Width)
		assert.Equal(t, 12, gc.Height)
		assert.Equal(t, 4, gc.UnitsPerPlayer)
		assert.Equal(t, core.PlayerTwo, gc.FirstPlayer)
		assert.Equal(t, "Player 1", gc.Players[core.PlayerOne].Name)
		assert.False(t, gc.Players[core.PlayerOne].IsAI)
		assert.True(t, gc.Players[core.PlayerTwo].IsAI)
	})

	t.Run("level file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "arena.txt")
		require.NoError(t, os.WriteFile(path, []byte("..K..\n.*.*.\n..S..\n"), 0644))

		reset()
		require.NoError(t, Init(""))
		Set("game.board.level_file", path)

		gc, err := Get().EngineConfig(zerolog.Nop())
		require.NoError(t, err)
		require.NotNil(t, gc.Level)
		assert.Nil(t, gc.Rng)
		assert.Equal(t, 5, gc.Level.Width)
		assert.Equal(t, 3, gc.Level.Height)
		assert.Len(t, gc.Level.Spawns, 2)
	})

	t.Run("missing level file", func(t *testing.T) {
		reset()
		require.NoError(t, Init(""))
		Set("game.board.level_file", "/no/such/level.txt")

		_, err := Get().EngineConfig(zerolog.Nop())
		assert.Error(t, err)
	})
}
