package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/sphere-accounts/internal/auth"
	"github.com/elskow/sphere-accounts/internal/database"
	"github.com/elskow/sphere-accounts/internal/httpapi"
	"github.com/elskow/sphere-accounts/internal/migration"
	"github.com/elskow/sphere-accounts/internal/observability"
	"github.com/elskow/sphere-accounts/internal/server"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),
		fx.Invoke(registerLoggerSync),

		// Configuration
		fx.Provide(server.LoadConfig),

		// Infrastructure
		database.Module(),
		migration.Module(),
		observability.Module(),

		// Auth Module
		auth.NewModule(),

		// Transports
		fx.Provide(server.NewServer),
		httpapi.Module(),

		// Start the gRPC server
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	srv *server.Server,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			srv.Stop()
			return nil
		},
	})
}

// registerLoggerSync flushes buffered log entries once every other hook has
// stopped.
func registerLoggerSync(lifecycle fx.Lifecycle, log *zap.Logger) {
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on a terminal returns EINVAL/ENOTTY; nothing to act on.
			_ = log.Sync()
			return nil
		},
	})
}
