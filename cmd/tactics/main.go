// Command tactics runs the grid tactics engine: a gRPC game server with a
// websocket event feed, an MCP stdio server, and a headless AI-versus-AI
// simulator for trying out levels and rules.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/GridTactics/internal/config"
	"github.com/mitchelldurbincs/GridTactics/internal/grpc/gameserver"
)

// Version information
const (
	Version = "0.3.0"
	AppName = "Grid Tactics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("tactics failed")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "tactics",
		Usage:   "turn-based grid tactics engine",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("TACTICS_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "environment overlay to merge, loads config.<env>.yaml",
				Sources: cli.EnvVars("APP_ENV"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error), overrides the config",
			},
		},
		Before: loadConfig,
		Commands: []*cli.Command{
			serveCommand(),
			simulateCommand(),
			mcpCommand(),
			checkLevelCommand(),
		},
	}
}

// loadConfig initialises the config shared by every subcommand
func loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := config.Init(cmd.String("config")); err != nil {
		return ctx, err
	}
	if err := config.LoadEnvironmentConfig(cmd.String("env")); err != nil {
		return ctx, err
	}
	if cmd.IsSet("log-level") {
		config.Set("logging.level", cmd.String("log-level"))
	}
	return ctx, config.Validate(config.Get())
}

// setupLogging points the global logger at out. Production and the json
// format log plain JSON lines; anything else gets the console writer.
func setupLogging(cfg config.LoggingConfig, out io.Writer) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" || os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// newGameManager builds the game manager every server mode shares
func newGameManager(cfg *config.Config, onRemove func(gameID string)) (*gameserver.GameManager, error) {
	defaults, err := cfg.EngineConfig(log.Logger)
	if err != nil {
		return nil, err
	}
	cat, err := cfg.Catalogue()
	if err != nil {
		return nil, err
	}

	return gameserver.NewGameManager(gameserver.ManagerOptions{
		MaxGames:        cfg.Server.GRPC.MaxGames,
		Defaults:        defaults,
		Catalogue:       cat,
		FinishedGameTTL: time.Duration(cfg.Server.GRPC.IdleGameTimeout) * time.Second,
		OnRemove:        onRemove,
	}), nil
}
