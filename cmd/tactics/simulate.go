package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/GridTactics/internal/config"
	"github.com/mitchelldurbincs/GridTactics/internal/game"
	"github.com/mitchelldurbincs/GridTactics/internal/game/events"
	"github.com/mitchelldurbincs/GridTactics/internal/game/events/subscribers"
)

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "let two AI players fight it out and print the board after every turn",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "level", Usage: "level file (empty to use config or generate one)"},
			&cli.IntFlag{Name: "seed", Usage: "seed for the level generator"},
			&cli.IntFlag{Name: "max-turns", Value: 200, Usage: "stop after this many turns"},
			&cli.BoolFlag{Name: "color", Usage: "color the board with ANSI escapes"},
			&cli.BoolFlag{Name: "quiet", Usage: "only print the final board"},
			&cli.BoolFlag{Name: "log-events", Usage: "log every game event"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.IsSet("level") {
				config.Set("game.board.level_file", cmd.String("level"))
			}
			if cmd.IsSet("seed") {
				config.Set("game.board.seed", int64(cmd.Int("seed")))
			}
			config.Set("game.players.one.ai", true)
			config.Set("game.players.two.ai", true)

			cfg := config.Get()
			setupLogging(cfg.Logging, os.Stderr)

			return simulate(ctx, cfg, simulateOptions{
				maxTurns:  int(cmd.Int("max-turns")),
				color:     cmd.Bool("color"),
				quiet:     cmd.Bool("quiet"),
				logEvents: cmd.Bool("log-events"),
				out:       os.Stdout,
			})
		},
	}
}

type simulateOptions struct {
	maxTurns  int
	color     bool
	quiet     bool
	logEvents bool
	out       io.Writer
}

// simulate plays AI turns until someone wins or the turn limit is hit.
// Between turns it waits the configured step delay.
func simulate(ctx context.Context, cfg *config.Config, opts simulateOptions) error {
	gc, err := cfg.EngineConfig(log.Logger)
	if err != nil {
		return err
	}
	gc.EventBus = events.NewEventBus(log.Logger)
	if opts.logEvents {
		sub := subscribers.NewLoggerSubscriber("simulate", log.Logger, zerolog.InfoLevel)
		sub.SetEventFilter([]string{
			events.TypeGameStarted,
			events.TypeTurnSwitched,
			events.TypeUnitAttacked,
			events.TypeUnitDestroyed,
			events.TypeGameEnded,
		})
		gc.EventBus.Subscribe(sub)
	}

	engine, err := game.NewEngine(ctx, gc)
	if err != nil {
		return err
	}
	if !opts.quiet {
		fmt.Fprintln(opts.out, engine.Board(opts.color))
	}

	delay := cfg.StepDelay()
	for !engine.IsOver() && engine.Turn() <= opts.maxTurns {
		results, err := engine.RunAITurn(ctx)
		if err != nil {
			return err
		}
		log.Debug().
			Int("turn", engine.Turn()).
			Int("commands", len(results)).
			Msg("AI turn played")

		if !opts.quiet {
			fmt.Fprintln(opts.out, engine.Board(opts.color))
		}
		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	if opts.quiet {
		fmt.Fprintln(opts.out, engine.Board(opts.color))
	}
	stats := engine.Stats()
	for _, st := range stats {
		fmt.Fprintf(opts.out, "player %d: %d units, %d/%d health\n", st.Player, st.Units, st.Health, st.MaxHealth)
	}
	if !engine.IsOver() {
		fmt.Fprintf(opts.out, "no winner after %d turns\n", opts.maxTurns)
	}
	return nil
}
