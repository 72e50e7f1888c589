package config

import (
	"errors"
	"fmt"
	"time"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type HTTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GRPCConfig struct {
	MaxReceiveMessageSize int `mapstructure:"max_receive_message_size"`
	MaxSendMessageSize    int `mapstructure:"max_send_message_size"`
}

type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"`
	TokenExpiration      time.Duration `mapstructure:"token_expiration"`
	VerificationTokenTTL time.Duration `mapstructure:"verification_token_ttl"`
	PasswordCost         int           `mapstructure:"password_cost"`
}

// Validate reports configuration that would make every token operation fail.
func (c *AuthConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.TokenExpiration <= 0 {
		return errors.New("auth.token_expiration must be positive")
	}
	if c.VerificationTokenTTL < 0 {
		return errors.New("auth.verification_token_ttl must not be negative")
	}
	return nil
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	LogLevel string `mapstructure:"log_level"`
}

// DSN returns the libpq key/value connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
	)
}

type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
}
