package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/GridTactics/internal/config"
	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
	"github.com/mitchelldurbincs/GridTactics/internal/grpc/gameserver"
	"github.com/mitchelldurbincs/GridTactics/internal/monitoring"
	"github.com/mitchelldurbincs/GridTactics/internal/transport/websocket"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the gRPC game server and the websocket event feed",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "gRPC listen host (empty to use config default)"},
			&cli.IntFlag{Name: "port", Usage: "gRPC listen port (0 to use config default)"},
			&cli.IntFlag{Name: "max-games", Usage: "maximum concurrent games (0 to use config default)"},
			&cli.BoolFlag{Name: "enable-reflection", Usage: "enable gRPC reflection for debugging"},
			&cli.StringFlag{Name: "ws-addr", Usage: "websocket listen address (empty to use config default)"},
			&cli.BoolFlag{Name: "watch", Usage: "reload the log level when the config file changes"},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("host") {
		config.Set("server.grpc.host", cmd.String("host"))
	}
	if cmd.IsSet("port") {
		config.Set("server.grpc.port", int(cmd.Int("port")))
	}
	if cmd.IsSet("max-games") {
		config.Set("server.grpc.max_games", int(cmd.Int("max-games")))
	}
	if cmd.Bool("enable-reflection") {
		config.Set("server.grpc.enable_reflection", true)
	}
	if cmd.IsSet("ws-addr") {
		config.Set("server.websocket.addr", cmd.String("ws-addr"))
	}

	cfg := config.Get()
	if err := config.Validate(cfg); err != nil {
		return err
	}
	setupLogging(cfg.Logging, os.Stdout)

	if cmd.Bool("watch") && config.ConfigFilePath() != "" {
		config.WatchConfig(func(c *config.Config) {
			if level, err := zerolog.ParseLevel(c.Logging.Level); err == nil {
				zerolog.SetGlobalLevel(level)
			}
			log.Info().Str("level", c.Logging.Level).Msg("Config reloaded")
		}, func(err error) {
			log.Warn().Err(err).Msg("Ignoring config change")
		})
	}

	grpcCfg := cfg.Server.GRPC
	wsCfg := cfg.Server.WebSocket
	log.Info().
		Str("host", grpcCfg.Host).
		Int("port", grpcCfg.Port).
		Int("max_games", grpcCfg.MaxGames).
		Bool("websocket", wsCfg.Enabled).
		Msg("Starting tactics game server")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The hub looks games up lazily, so it can exist before the manager
	var gm *gameserver.GameManager
	var hub *websocket.Hub
	if wsCfg.Enabled {
		hub = websocket.NewHub(func(gameID string) (*events.EventBus, bool) {
			return gm.EventBus(gameID)
		}, websocket.Options{
			SendBuffer:   wsCfg.SendBuffer,
			WriteTimeout: time.Duration(wsCfg.WriteTimeout) * time.Second,
			Logger:       log.Logger,
		})
	}

	var onRemove func(string)
	if hub != nil {
		onRemove = hub.CloseGame
	}
	gm, err := newGameManager(cfg, onRemove)
	if err != nil {
		return err
	}
	defer gm.Close()

	monitor := monitoring.NewMonitor(monitoring.Options{Logger: log.Logger})
	monitor.Register("games", gm.GetActiveGames)
	go monitor.Run(ctx)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", grpcCfg.Host, grpcCfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	grpcServer, healthServer := gameserver.NewGRPCServer(gameserver.NewServer(gm), grpcCfg.EnableReflection)
	if grpcCfg.EnableReflection {
		log.Info().Msg("gRPC reflection enabled")
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc serve: %w", err)
		}
	}()

	var httpServer *http.Server
	if hub != nil {
		go hub.Run(ctx)
		httpServer = &http.Server{
			Addr:              wsCfg.Addr,
			Handler:           hub.Handler(wsCfg.Path),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Str("address", wsCfg.Addr).Str("path", wsCfg.Path).Msg("Websocket feed listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("websocket serve: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case err = <-errCh:
		log.Error().Err(err).Msg("Server failed, shutting down")
	}

	gameserver.SetServing(healthServer, false)

	// Give ongoing requests time to complete
	delay := time.Duration(grpcCfg.GracefulShutdownDelay) * time.Second
	if delay > 0 {
		time.Sleep(delay)
	}

	if httpServer != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
			log.Warn().Err(serr).Msg("Websocket server shutdown")
		}
		done()
	}

	// Watch streams only end when their game does
	gm.Close()
	log.Info().Msg("Gracefully stopping gRPC server")
	grpcServer.GracefulStop()
	cancel()

	log.Info().Msg("Server shutdown complete")
	return err
}
