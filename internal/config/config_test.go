package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  name: photodisplay
  user: photo
  password: secret
nats:
  url: nats://localhost:4222
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 20, cfg.Database.MaxConns)
	assert.Equal(t, "https://nominatim.openstreetmap.org/reverse", cfg.Geocode.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Geocode.Timeout)
	assert.Equal(t, "en", cfg.Caption.Language)
	assert.Equal(t, 30*time.Second, cfg.Caption.Timeout)
	assert.Equal(t, []int{256, 1024, 2048}, cfg.Enrich.Sizes)
	assert.Equal(t, 85, cfg.Enrich.JPEGQuality)
	assert.Equal(t, 4, cfg.Enrich.WorkerCount)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  api_key: file-key
geocode:
  endpoint: http://geocode.internal/reverse
  timeout: 5s
enrich:
  sizes: [512]
  jpeg_quality: 70
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file-key", cfg.Server.APIKey)
	assert.Equal(t, "http://geocode.internal/reverse", cfg.Geocode.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Geocode.Timeout)
	assert.Equal(t, []int{512}, cfg.Enrich.Sizes)
	assert.Equal(t, 70, cfg.Enrich.JPEGQuality)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  api_key: file-key
database:
  host: db.internal
`)

	t.Setenv("PD_SERVER_PORT", "7070")
	t.Setenv("PD_API_KEY", "env-key")
	t.Setenv("PD_DB_HOST", "db.override")
	t.Setenv("PD_NATS_URL", "nats://override:4222")
	t.Setenv("PD_ENRICH_SIZES", "128, 640")
	t.Setenv("PD_ENRICH_WORKER_COUNT", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Server.APIKey)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, "nats://override:4222", cfg.NATS.URL)
	assert.Equal(t, []int{128, 640}, cfg.Enrich.Sizes)
	assert.Equal(t, 8, cfg.Enrich.WorkerCount)
}

func TestLoad_BadSizesIgnored(t *testing.T) {
	path := writeConfig(t, "{}\n")

	t.Setenv("PD_ENRICH_SIZES", "abc,-1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{256, 1024, 2048}, cfg.Enrich.Sizes)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, Name: "photos", User: "u", Password: "p"}
	assert.Equal(t, "postgres://u:p@db:5433/photos?sslmode=disable", d.DSN())
}
