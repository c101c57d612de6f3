package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: shareit
database:
  path: data/shareit.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shareit", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, models.DefaultPageSize, cfg.HTTP.Page.Size)
	assert.Equal(t, 10, cfg.HTTP.RateLimit.Burst)
	assert.Positive(t, cfg.HTTP.RateLimit.RPS)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("SHAREIT_DB_PATH", "/tmp/env.db")
	path := writeConfig(t, `
database:
  path: ${SHAREIT_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "database: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Database: DatabaseConfig{Path: "data/shareit.db"}}
	}

	t.Run("database path required", func(t *testing.T) {
		cfg := Config{}
		assert.ErrorContains(t, cfg.Validate(), "database path")
	})

	t.Run("redis address required when enabled", func(t *testing.T) {
		cfg := base()
		cfg.Redis.Enabled = true
		assert.ErrorContains(t, cfg.Validate(), "redis address")
	})

	t.Run("google needs credentials and spreadsheet", func(t *testing.T) {
		cfg := base()
		cfg.Google.Enabled = true
		assert.ErrorContains(t, cfg.Validate(), "credentials")

		cfg.Google.GoogleCredentialsFile = "sa.json"
		assert.ErrorContains(t, cfg.Validate(), "spreadsheet")

		cfg.Google.BookingSpreadSheetID = "sheet-id"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("telegram needs token when enabled", func(t *testing.T) {
		cfg := base()
		cfg.Telegram.Enabled = true
		assert.ErrorContains(t, cfg.Validate(), "bot token")
	})
}

func TestApplyDefaults_ExportPath(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Path: "x.db"},
		Exports:  ExportConfig{Enabled: true},
	}
	cfg.applyDefaults()
	assert.Equal(t, "exports", cfg.Exports.Path)
}
