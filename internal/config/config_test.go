package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "db:\n  path: /tmp/x.db\nlogic:\n  page_start: 3\n  page_end: 4\n  engine: colly\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/x.db", cfg.DB.Path)
		assert.Equal(t, 3, cfg.Logic.PageStart)
		assert.Equal(t, 4, cfg.Logic.PageEnd)
		assert.Equal(t, EngineColly, cfg.Logic.Engine)
		// untouched keys keep their defaults
		assert.Equal(t, 5000, cfg.Logic.DelayMS)
		assert.Equal(t, "page-%d.html", cfg.Source.PageTemplate)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("db: [unterminated"), 0o644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(DBPathEnv, "env.db")
	t.Setenv(DelayEnv, "250")
	t.Setenv(EngineEnv, EngineColly)
	t.Setenv(VerboseEnv, "false")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "env.db", cfg.DB.Path)
	assert.Equal(t, 250, cfg.Logic.DelayMS)
	assert.Equal(t, EngineColly, cfg.Logic.Engine)
	assert.False(t, cfg.Verbose)
}

func TestApplyEnv_BadDelay(t *testing.T) {
	t.Setenv(DelayEnv, "soon")

	err := Default().ApplyEnv()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApplyEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOOKSCRAPER_DB_PATH=dotenv.db\n"), 0o644))
	t.Setenv(DBPathEnv, "")
	os.Unsetenv(DBPathEnv)

	require.NoError(t, ApplyEnvFile(path))
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "dotenv.db", cfg.DB.Path)

	assert.Error(t, ApplyEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScraperConfig)
	}{
		{"empty db path", func(c *ScraperConfig) { c.DB.Path = "" }},
		{"empty base url", func(c *ScraperConfig) { c.Source.BaseURL = "" }},
		{"template without verb", func(c *ScraperConfig) { c.Source.PageTemplate = "page.html" }},
		{"zero start page", func(c *ScraperConfig) { c.Logic.PageStart = 0 }},
		{"end before start", func(c *ScraperConfig) { c.Logic.PageStart, c.Logic.PageEnd = 5, 4 }},
		{"negative delay", func(c *ScraperConfig) { c.Logic.DelayMS = -1 }},
		{"zero timeout", func(c *ScraperConfig) { c.Logic.TimeoutSec = 0 }},
		{"unknown engine", func(c *ScraperConfig) { c.Logic.Engine = "curl" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("empty range is allowed", func(t *testing.T) {
		cfg := Default()
		cfg.Logic.PageStart, cfg.Logic.PageEnd = 2, 2
		assert.NoError(t, cfg.Validate())
	})
}
