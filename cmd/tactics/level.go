package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/GridTactics/internal/config"
	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
	"github.com/mitchelldurbincs/GridTactics/internal/game/level"
)

func checkLevelCommand() *cli.Command {
	return &cli.Command{
		Name:      "check-level",
		Usage:     "parse level files and report their size and armies",
		ArgsUsage: "LEVEL...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return fmt.Errorf("check-level: no level files given")
			}
			cat, err := config.Get().Catalogue()
			if err != nil {
				return err
			}
			for _, path := range cmd.Args().Slice() {
				if err := checkLevel(os.Stdout, path, cat); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// checkLevel loads a level, builds its grid and prints a summary
func checkLevel(out io.Writer, path string, cat level.Catalogue) error {
	lvl, err := level.Load(path, cat)
	if err != nil {
		return err
	}
	if _, err := lvl.Build(); err != nil {
		return fmt.Errorf("level %s: %w", path, err)
	}

	counts := lvl.UnitsPerPlayer()
	fmt.Fprintf(out, "%s: %dx%d, player 0 has %d units, player 1 has %d units\n",
		path, lvl.Width, lvl.Height, counts[core.PlayerOne], counts[core.PlayerTwo])
	if counts[core.PlayerOne] == 0 || counts[core.PlayerTwo] == 0 {
		fmt.Fprintf(out, "%s: warning, one side has no units and loses immediately\n", path)
	}
	fmt.Fprint(out, lvl.Text())
	return nil
}
