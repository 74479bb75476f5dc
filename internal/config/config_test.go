package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"observatory/core/filter"
	"observatory/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filter.Default(), cfg.Filter)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "cli", cfg.Output.DefaultFormat)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 2026, cfg.Filter.Year)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "observatory.yaml")
	yaml := `
data:
  dir: /srv/observatory
filter:
  layer: fdi
  year: 2022
  cumulative: false
server:
  addr: 127.0.0.1:9000
  read_timeout: 5s
  allowed_origins: [https://dashboard.example]
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/observatory", cfg.Data.Dir)
	assert.Equal(t, "/srv/observatory/mexico-states.geojson", cfg.GeoJSONPath())
	assert.Equal(t, filter.LayerFDI, cfg.Filter.Layer)
	assert.Equal(t, 2022, cfg.Filter.Year)
	assert.False(t, cfg.Filter.Cumulative)
	assert.True(t, cfg.Filter.IncludeUndated)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"https://dashboard.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OBSERVATORY_DATA_DIR", "/env/data")
	t.Setenv("OBSERVATORY_FILTER_YEAR", "2019")
	t.Setenv("OBSERVATORY_FILTER_SHOW_UNDATED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/data", cfg.Data.Dir)
	assert.Equal(t, 2019, cfg.Filter.Year)
	assert.False(t, cfg.Filter.IncludeUndated)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.Data.Dir = "" }},
		{"unknown layer", func(c *Config) { c.Filter.Layer = "roads" }},
		{"unknown format", func(c *Config) { c.Output.DefaultFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig))
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"filter": {"layer": "roads"}}`), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"filter": `), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "observatory.json")
	cfg := Default()
	cfg.Filter.Status = "Active"
	cfg.Data.AliasFile = "aliases.hcl"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
