// Command zambaractl holds operator tasks: hashing the admin password,
// seeding demo data and exporting event rankings.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/HarshMohan14/zambara/internal/config"
	"github.com/HarshMohan14/zambara/internal/database"
	"github.com/HarshMohan14/zambara/internal/docstore"
	"github.com/HarshMohan14/zambara/internal/export"
	"github.com/HarshMohan14/zambara/internal/games"
	"github.com/HarshMohan14/zambara/internal/ranking"
	"github.com/HarshMohan14/zambara/internal/scores"
	"github.com/HarshMohan14/zambara/internal/seed"
)

func main() {
	app := &cli.App{
		Name:  "zambaractl",
		Usage: "operator tasks for the zambara backend",
		Commands: []*cli.Command{
			hashPasswordCommand(),
			seedCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "print a bcrypt hash for ADMIN_PASSWORD_HASH",
		ArgsUsage: "<password>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "cost", Value: bcrypt.DefaultCost, Usage: "bcrypt cost"},
		},
		Action: func(c *cli.Context) error {
			pw := c.Args().First()
			if pw == "" {
				return errors.New("password argument is required")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(pw), c.Int("cost"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, string(hash))
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "create a demo event with completed games when the store has no events",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Value: 5, Usage: "number of demo games"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed, 0 for a time based seed"},
		},
		Action: func(c *cli.Context) error {
			return withStore(c.Context, func(logger *slog.Logger, store docstore.Store) error {
				mgr := games.NewManager(store, scores.NewRepository(store), logger, nil)
				res, err := seed.Demo(c.Context, logger, store, mgr, seed.Options{
					Games: c.Int("games"),
					Seed:  c.Int64("seed"),
				})
				if err != nil {
					return err
				}
				if res.Skipped {
					fmt.Fprintln(c.App.Writer, "store already has events, nothing seeded")
					return nil
				}
				fmt.Fprintf(c.App.Writer, "seeded event %s with %d games\n", res.EventID, len(res.GameIDs))
				return nil
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write an event's rankings to an XLSX file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "event", Required: true, Usage: "event id"},
			&cli.StringFlag{Name: "out", Usage: "output path, defaults to rankings-<event>.xlsx"},
		},
		Action: func(c *cli.Context) error {
			eventID := c.String("event")
			out := c.String("out")
			if out == "" {
				out = export.Filename(eventID)
			}

			return withStore(c.Context, func(logger *slog.Logger, store docstore.Store) error {
				repo := scores.NewRepository(store)
				mgr := games.NewManager(store, repo, logger, nil)
				agg := ranking.NewAggregator(repo, mgr, store, logger, nil)

				all, err := agg.AllByEvent(c.Context, eventID)
				if err != nil {
					return err
				}

				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := export.WriteRankings(f, all); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "wrote %d rankings to %s\n", len(all.Rankings), out)
				return nil
			})
		},
	}
}

// withStore opens the configured store with logs on stderr, so command
// output on stdout stays clean.
func withStore(ctx context.Context, fn func(*slog.Logger, docstore.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	store, err := database.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	return fn(logger, store)
}
