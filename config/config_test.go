package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"BOOKS_PORT", "BOOKS_DB", "BOOKS_SEED", "BOOKS_CURRENCY", "LOG_LEVEL", "BOOKS_SYNC_INTERVAL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "books.db", cfg.DBPath)
	assert.Equal(t, "", cfg.SeedFile)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to "".
	for _, k := range []string{"BOOKS_PORT", "BOOKS_DB", "BOOKS_CURRENCY"} {
		require.NoError(t, os.Unsetenv(k))
	}

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BOOKS_PORT=9090\nBOOKS_DB=:memory:\nBOOKS_CURRENCY=eur\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "EUR", cfg.Currency)
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOKS_PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "BOOKS_PORT")
}

func TestLoad_SyncInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOKS_SYNC_INTERVAL", "45s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.SyncInterval)

	t.Setenv("BOOKS_SYNC_INTERVAL", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "BOOKS_SYNC_INTERVAL")
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: 8080, DBPath: "x.db", Currency: "USD"}
	assert.NoError(t, cfg.Validate())

	cfg.Currency = "DOLLARS"
	assert.Error(t, cfg.Validate())

	cfg.Currency = "USD"
	cfg.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg.Port = 8080
	cfg.SyncInterval = -time.Second
	assert.Error(t, cfg.Validate())
}
