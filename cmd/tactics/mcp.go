package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/GridTactics/internal/config"
	"github.com/mitchelldurbincs/GridTactics/internal/grpc/gameserver"
	"github.com/mitchelldurbincs/GridTactics/internal/transport/mcp"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp"},
		Usage:   "serve the game as MCP tools over stdin and stdout",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Get()
			// stdout carries the protocol
			setupLogging(cfg.Logging, os.Stderr)

			gm, err := newGameManager(cfg, nil)
			if err != nil {
				return err
			}
			defer gm.Close()

			log.Info().Str("version", Version).Msg("Starting MCP stdio server")
			return mcp.NewServer(gameserver.NewServer(gm), Version, log.Logger).Serve()
		},
	}
}
