package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/elskow/sphere-accounts/internal/config"
)

type Manager struct {
	db     *gorm.DB
	config *config.DatabaseConfig
	logger *zap.Logger
}

func NewManager(config *config.DatabaseConfig, log *zap.Logger) (*Manager, error) {
	return Open(postgres.Open(config.DSN()), config, log)
}

// Open builds a Manager on an arbitrary dialector. Tests use it with sqlite.
func Open(dialector gorm.Dialector, config *config.DatabaseConfig, log *zap.Logger) (*Manager, error) {
	db, err := gorm.Open(dialector, NewGormConfig(config.LogLevel, log))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Manager{
		db:     db,
		config: config,
		logger: log,
	}, nil
}

func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Ping checks that the database answers within ctx.
func (m *Manager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewGormConfig returns the gorm settings shared by the service and tests.
// Duplicate-key errors are translated to gorm.ErrDuplicatedKey. Statements
// are logged without bound values so hashes and tokens never reach the log.
func NewGormConfig(level string, log *zap.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(
			zapWriter{log: log.Named("gorm").Sugar()},
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  parseLogLevel(level),
				IgnoreRecordNotFoundError: true,
				ParameterizedQueries:      true,
				Colorful:                  false,
			},
		),
	}
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// zapWriter adapts zap to gorm's logger.Writer.
type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(format, args...)
}
