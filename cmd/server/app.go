package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardboardgarden/garden-api/internal/config"
	"github.com/cardboardgarden/garden-api/internal/notify"
	"github.com/cardboardgarden/garden-api/internal/platform/postgres"
	"github.com/cardboardgarden/garden-api/internal/service/account"
	"github.com/cardboardgarden/garden-api/internal/service/auth"
	"github.com/cardboardgarden/garden-api/internal/store"
	"github.com/cardboardgarden/garden-api/internal/task"
)

const runnerStopTimeout = 10 * time.Second

// application holds the wired dependencies of the server.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	engine  *account.Engine
	cards   store.CardStore
	runner  *task.Runner
	cleaner *task.Ticker
}

// newApplication wires stores, auth primitives, the notifier and the
// background runner into an account engine. It starts the runner; the
// cleanup ticker is started by Run.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	runner := task.NewRunner(task.RunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)

	app, err := buildApplication(
		cfg,
		logger,
		postgres.NewPostgresAccountStore(db, logger),
		postgres.NewPostgresCardStore(db, logger),
		runner,
	)
	if err != nil {
		return nil, err
	}
	app.db = db
	return app, nil
}

// buildApplication is the store-agnostic part of newApplication.
func buildApplication(
	cfg *config.Config,
	logger *slog.Logger,
	accounts store.AccountStore,
	cards store.CardStore,
	runner *task.Runner,
) (*application, error) {
	signer, err := auth.NewTokenSigner(auth.SignerConfig{
		Secret:   cfg.Auth.JWTSecret,
		Lifetime: time.Duration(cfg.Auth.TokenLifetimeMinutes) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token signer: %w", err)
	}

	mailer, err := notify.New(cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	engine, err := account.NewEngine(
		account.Config{VerificationWindow: time.Duration(cfg.Auth.VerificationWindowHours) * time.Hour},
		accounts,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		signer,
		notify.NewAsyncNotifier(mailer, runner, logger),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account engine: %w", err)
	}

	cleaner := task.NewTicker(
		"token_cleanup",
		time.Duration(cfg.Task.CleanupIntervalMinutes)*time.Minute,
		func(ctx context.Context) error {
			_, err := engine.CleanupExpiredTokens(ctx)
			return err
		},
		logger,
	)

	runner.Start()

	return &application{
		config:  cfg,
		logger:  logger,
		engine:  engine,
		cards:   cards,
		runner:  runner,
		cleaner: cleaner,
	}, nil
}

// Run starts the token sweeper and serves HTTP until a shutdown signal.
func (app *application) Run(ctx context.Context) error {
	app.cleaner.Start(ctx)
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup stops background work and releases the database pool.
func (app *application) cleanup() {
	app.cleaner.Stop()
	app.runner.Stop(runnerStopTimeout)

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
	app.logger.Info("application cleanup completed")
}
