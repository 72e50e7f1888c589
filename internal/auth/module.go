package auth

import (
	"github.com/elskow/sphere-accounts/internal/config"
	"github.com/elskow/sphere-accounts/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide repository
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			// Provide token service; fails application start on a bad auth config
			fx.Annotate(
				func(config *config.AppConfig) (*TokenService, error) {
					return NewTokenService(&config.Auth)
				},
			),
			// Provide service
			fx.Annotate(
				func(
					config *config.AppConfig,
					log *zap.Logger,
					repo Repository,
					tokens *TokenService,
					metrics *observability.Metrics,
				) (*Service, error) {
					return NewService(&config.Auth, log, repo, tokens, metrics)
				},
			),
			// Provide handler
			fx.Annotate(
				func(svc *Service, log *zap.Logger) *Handler {
					return NewHandler(svc, log)
				},
			),
			// Provide session guard
			fx.Annotate(
				func(tokens *TokenService, log *zap.Logger, metrics *observability.Metrics) *Guard {
					return NewGuard(tokens, log, metrics)
				},
			),
		),
	)
}
