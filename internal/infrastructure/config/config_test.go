package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/account-service/internal/core/service"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.Auth.JWTExpiration)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Empty(t, cfg.Auth.PasswordRegex)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "secret",
		"JWT_EXPIRATION": "15m",
		"PASSWORD_REGEX": `(?=.*\d)[a-z\d]{6,}`,
		"STORE_DRIVER":   "postgres",
		"POSTGRES_DSN":   "postgres://u:p@db:5432/accounts",
		"REDIS_ENABLED":  "true",
		"REDIS_ADDR":     "cache:6379",
		"ENV":            "production",
	}))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Auth.JWTExpiration)
	assert.Equal(t, `(?=.*\d)[a-z\d]{6,}`, cfg.Auth.PasswordRegex)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/accounts", cfg.Postgres.DSN)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET must be set"},
		{"non-positive expiry", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRATION": "0s"}, "JWT_EXPIRATION must be positive"},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "sqlite"}, "STORE_DRIVER must be"},
		{"bad password regex", map[string]string{"JWT_SECRET": "s", "PASSWORD_REGEX": "(unclosed"}, "PASSWORD_REGEX does not compile"},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRATION": "soon"}, "load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_PasswordRegexAgreesWithPolicy(t *testing.T) {
	patterns := []string{
		service.DefaultPasswordPattern,
		`(?=.*\d)[a-z\d]{6,}`,
		`[a-z]{4}`,
		`(unclosed`,
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			_, loadErr := load(context.Background(), envconfig.MapLookuper(map[string]string{
				"JWT_SECRET":     "secret",
				"PASSWORD_REGEX": pattern,
			}))
			_, policyErr := service.NewPasswordPolicy(pattern)
			assert.Equal(t, policyErr == nil, loadErr == nil, "config err %v, policy err %v", loadErr, policyErr)
		})
	}
}
