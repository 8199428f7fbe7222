package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/application/chat"
	"github.com/baechuer/esemenyrendezo/internal/application/favorites"
	"github.com/baechuer/esemenyrendezo/internal/application/saves"
	"github.com/baechuer/esemenyrendezo/internal/config"
	"github.com/baechuer/esemenyrendezo/internal/infrastructure/caching/redis"
	"github.com/baechuer/esemenyrendezo/internal/infrastructure/db/postgres"
	"github.com/baechuer/esemenyrendezo/internal/infrastructure/memory"
	rabbitpub "github.com/baechuer/esemenyrendezo/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/esemenyrendezo/internal/infrastructure/storage"
	"github.com/baechuer/esemenyrendezo/internal/jobs"
	"github.com/baechuer/esemenyrendezo/internal/logger"
	"github.com/baechuer/esemenyrendezo/internal/security"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/handlers"
	appmw "github.com/baechuer/esemenyrendezo/internal/transport/http/middleware"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/router"
)

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// App holds all dependencies for the service
type App struct {
	Config   *config.Config
	Server   *http.Server
	Sessions *favorites.Sessions
	Audit    *jobs.Scheduler

	closers []func() error
}

// eventStore is what both the postgres and in-memory catalogs provide.
type eventStore interface {
	catalog.EventRepo
	memory.EventCreator
}

type relationStore interface {
	saves.RelationRepo
	jobs.DanglingSource
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("config load failed")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(rootCtx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("app init failed")
	}
	defer app.Close()

	if app.Audit != nil {
		go app.Audit.Run(rootCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		zlog.Info().Msg("shutdown signal received")
	case err := <-errCh:
		zlog.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = app.Server.Shutdown(shutdownCtx)
	// in-flight toggles still settle in the store; their views just stop listening
	app.Sessions.CloseAll()
	zlog.Info().Msg("shutdown complete")
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}
	clock := sysClock{}
	checks := map[string]handlers.Check{}

	// 1) Infrastructure
	var (
		events eventStore
		rels   relationStore
		msgs   chat.MessageRepo
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)
		if cfg.DBAutoMigrate {
			if err := postgres.EnsureSchema(ctx, db); err != nil {
				return nil, err
			}
		}
		events = postgres.NewEventRepo(db)
		rels = postgres.NewRelationRepo(db)
		msgs = postgres.NewChatRepo(db)
		checks["postgres"] = db.PingContext
	} else {
		zlog.Warn().Msg("DATABASE_URL empty: using in-memory stores")
		mem := memory.NewEventRepo()
		if n, err := memory.SeedEvents(ctx, mem, "seed", clock.Now()); err == nil {
			zlog.Info().Int("count", n).Msg("seeded sample events")
		}
		events = mem
		rels = memory.NewRelationRepo(mem)
		msgs = memory.NewChatRepo()
	}

	var pub catalog.EventPublisher = memory.NewLogPublisher()
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, p.Close)
		pub = p
		checks["rabbitmq"] = p.Ping
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: domain events will only be logged")
	}

	opts := catalog.Options{TTLDetails: cfg.CacheTTLDetails, TTLList: cfg.CacheTTLList}
	if cfg.RedisURL != "" {
		rc, err := redis.New(ctx, cfg.RedisURL)
		if err != nil {
			// cache is optional; serve uncached
			zlog.Warn().Err(err).Msg("redis unavailable, catalog cache disabled")
		} else {
			app.closers = append(app.closers, rc.Close)
			opts.Cache = rc
			checks["redis"] = rc.Ping
		}
	}

	if cfg.S3Enabled() {
		s3, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
			Bucket:          cfg.S3PublicBucket,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		}, zlog.Logger)
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			zlog.Warn().Err(err).Msg("image bucket check failed")
		}
		opts.Images = s3
	}

	// 2) Application
	catSvc := catalog.New(events, clock, pub, opts)
	saveSvc := saves.New(rels, clock, pub)
	chatSvc := chat.New(msgs, clock, pub)
	rec := favorites.NewReconciler(catSvc, saveSvc, cfg.ToggleTimeout)
	app.Sessions = favorites.NewSessions(rec, clock, cfg.SessionTTL)

	if cfg.AuditCron != "" {
		s, err := jobs.NewScheduler(cfg.AuditCron, jobs.NewAuditor(rels, zlog.Logger), zlog.Logger)
		if err != nil {
			return nil, err
		}
		app.Audit = s
	}

	// 3) Transport
	loc := cfg.Location()
	auth := appmw.NewAuth(security.NewHS256(cfg.JWTSecret, cfg.JWTIssuer))
	httpHandler := router.New(
		handlers.NewEventsHandler(catSvc, app.Sessions, loc, cfg.MaxImageBytes),
		handlers.NewSavedHandler(catSvc, app.Sessions, rec, clock, loc),
		handlers.NewChatHandler(chatSvc),
		handlers.NewHealthHandler(checks),
		auth,
		cfg,
	)

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
	return app, nil
}

// Close releases infrastructure in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			zlog.Warn().Err(err).Msg("close failed")
		}
	}
}
