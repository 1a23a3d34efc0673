package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: memory\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "none", cfg.Notifier.Kind)
	assert.Equal(t, 3, cfg.ConflictRetries())
	assert.Equal(t, 30*time.Second, cfg.RedisCacheTTL())
	assert.Equal(t, 5*time.Minute, cfg.SheetsSyncInterval())
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("GH_TOKEN", "ghp_secret")
	path := writeConfig(t, `
store:
  backend: github
  github:
    owner: acme
    repo: schedules
    token: ${GH_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret", cfg.Store.GitHub.Token)
}

func TestLoad_SQLiteDirCreated(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "maidbook.db")
	path := writeConfig(t, "store:\n  backend: sqlite\n  sqlite:\n    path: "+dbPath+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dbPath, cfg.Store.SQLite.Path)
	assert.DirExists(t, filepath.Dir(dbPath))
}

func TestLoad_UnknownBackend(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: dynamo\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
booking:
  conflict_retries: 5
redis:
  enabled: true
  address: localhost:6379
  cache_ttl_seconds: 120
notifier:
  kind: smtp
  smtp:
    host: smtp.example.com
    username: mailer
  rate_per_second: 2
  rate_burst: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5, cfg.ConflictRetries())
	assert.Equal(t, 120*time.Second, cfg.RedisCacheTTL())
	assert.Equal(t, "smtp", cfg.Notifier.Kind)
	assert.Equal(t, "smtp.example.com", cfg.Notifier.SMTP.Host)
	assert.Equal(t, 2.0, cfg.Notifier.RatePerSecond)
}
