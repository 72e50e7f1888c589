package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/sphere-accounts/internal/auth"
	"github.com/elskow/sphere-accounts/internal/config"
	"github.com/elskow/sphere-accounts/internal/database"
	"github.com/elskow/sphere-accounts/internal/observability"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewHandler,
			fx.Annotate(
				func(
					cfg *config.AppConfig,
					handler *Handler,
					guard *auth.Guard,
					metrics *observability.Metrics,
					db *database.Manager,
					log *zap.Logger,
				) *http.Server {
					return &http.Server{
						Addr: net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port),
						Handler: NewRouter(Dependencies{
							Handler: handler,
							Guard:   guard,
							Metrics: metrics,
							DB:      db,
							Logger:  log.Named("http"),
						}),
						ReadTimeout:  cfg.HTTP.ReadTimeout,
						WriteTimeout: cfg.HTTP.WriteTimeout,
					}
				},
			),
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(lifecycle fx.Lifecycle, srv *http.Server, cfg *config.AppConfig, log *zap.Logger) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen: %w", err)
			}
			log.Info("Starting HTTP server", zap.String("address", srv.Addr))
			go func() {
				if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
