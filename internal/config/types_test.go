package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  AuthConfig
		wantErr bool
	}{
		{name: "valid", config: AuthConfig{JWTSecret: "s", TokenExpiration: time.Hour}},
		{name: "missing secret", config: AuthConfig{TokenExpiration: time.Hour}, wantErr: true},
		{name: "zero expiration", config: AuthConfig{JWTSecret: "s"}, wantErr: true},
		{name: "negative verification ttl", config: AuthConfig{JWTSecret: "s", TokenExpiration: time.Hour, VerificationTokenTTL: -time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Name:     "sphere",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=localhost user=postgres password=secret dbname=sphere port=5432 sslmode=disable", cfg.DSN())
}
