package main

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/account-service/internal/infrastructure/config"
	"github.com/99minutos/account-service/pkg/logger"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["serve"], "serve subcommand missing")
	assert.True(t, names["migrate"], "migrate subcommand missing")
}

func TestNewMigrateCmd_Subcommands(t *testing.T) {
	cmd := NewMigrateCmd()

	down, _, err := cmd.Find([]string{"down"})
	require.NoError(t, err)
	assert.Equal(t, "down", down.Name())

	version, _, err := cmd.Find([]string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "version", version.Name())
}

func TestServe_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"serve"})
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be set")
}

func TestWire_UsesProcessLogger(t *testing.T) {
	logger.Reset()
	t.Cleanup(logger.Reset)

	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "secret", PasswordRegex: "(unclosed"}}
	assert.Panics(t, func() { _, _, _ = wire(context.Background(), cfg) }, "wire must require logger.Init")

	logger.Init(logger.Options{Output: io.Discard})
	_, cleanup, err := wire(context.Background(), cfg)
	cleanup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile password pattern")
}
