package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/application/favorites"
	"github.com/baechuer/esemenyrendezo/internal/application/saves"
	"github.com/baechuer/esemenyrendezo/internal/config"
	"github.com/baechuer/esemenyrendezo/internal/infrastructure/db/postgres"
	"github.com/baechuer/esemenyrendezo/internal/infrastructure/memory"
	"github.com/baechuer/esemenyrendezo/internal/jobs"
	"github.com/baechuer/esemenyrendezo/internal/logger"
	"github.com/baechuer/esemenyrendezo/internal/security"
)

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

func main() {
	logger.Init()

	app := &cli.App{
		Name:  "esemeny-tool",
		Usage: "Maintenance commands for the event organizer backend.",
		Commands: []*cli.Command{
			seedCommand(),
			savedCommand(),
			auditCommand(),
			tokenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		zlog.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*sql.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is required")
	}
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, cfg, nil
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert sample events.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner", Value: "seed", Usage: "Owner id for the created events."},
		},
		Action: func(c *cli.Context) error {
			db, _, err := openDB(c.Context)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := memory.SeedEvents(c.Context, postgres.NewEventRepo(db), c.String("owner"), sysClock{}.Now())
			if err != nil {
				return fmt.Errorf("seed events: %w", err)
			}
			fmt.Printf("created %d events\n", n)
			return nil
		},
	}
}

func savedCommand() *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "Print a user's saved events as the saved view renders them.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true, Usage: "User id."},
		},
		Action: func(c *cli.Context) error {
			db, cfg, err := openDB(c.Context)
			if err != nil {
				return err
			}
			defer db.Close()

			clock := sysClock{}
			catSvc := catalog.New(postgres.NewEventRepo(db), clock, nil, catalog.Options{})
			saveSvc := saves.New(postgres.NewRelationRepo(db), clock, nil)
			rec := favorites.NewReconciler(catSvc, saveSvc, cfg.ToggleTimeout)

			v, err := rec.LoadSaved(c.Context, c.String("user"))
			if err != nil {
				return err
			}
			defer v.Close()

			loc := cfg.Location()
			rows := v.Rows()
			for _, r := range rows {
				fmt.Printf("%s  %s  %-30s %s\n", r.Event.ID, r.Event.StartTime.In(loc).Format("2006-01-02 15:04"), r.Event.Title, r.Event.Location)
			}
			fmt.Printf("%d saved events\n", len(rows))
			return nil
		},
	}
}

func auditCommand() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Count saved relations whose event no longer exists.",
		Action: func(c *cli.Context) error {
			db, _, err := openDB(c.Context)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := jobs.NewAuditor(postgres.NewRelationRepo(db), zlog.Logger).RunOnce(c.Context)
			if err != nil {
				return err
			}
			fmt.Printf("%d dangling relations\n", n)
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint a bearer token for local testing.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true, Usage: "User id to embed."},
			&cli.StringFlag{Name: "role", Value: "user"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AppEnv == "prod" {
				return errors.New("refusing to mint tokens with APP_ENV=prod")
			}
			tok, err := security.NewHS256(cfg.JWTSecret, cfg.JWTIssuer).
				Sign(c.String("user"), c.String("role"), c.Duration("ttl"), sysClock{}.Now())
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
}
