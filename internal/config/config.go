// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"observatory/core/filter"
	"observatory/internal/errors"
	"observatory/internal/logging"
)

// envPrefix maps nested keys like "server.addr" to OBSERVATORY_SERVER_ADDR
const envPrefix = "OBSERVATORY"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" mapstructure:"version"`

	// Data locates the input datasets
	Data DataConfig `json:"data" mapstructure:"data"`

	// Filter is the filter state the engine starts with
	Filter filter.State `json:"filter" mapstructure:"filter"`

	// Server contains HTTP adapter settings
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Output contains output configuration
	Output OutputConfig `json:"output" mapstructure:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" mapstructure:"logging"`
}

// DataConfig locates the datasets
type DataConfig struct {
	// Dir holds policies.json, fdi.json and the other collections
	Dir string `json:"dir" mapstructure:"dir"`

	// GeoJSON is the region boundary file; relative paths resolve against Dir
	GeoJSON string `json:"geojson" mapstructure:"geojson"`

	// AliasFile is an optional HCL file of extra region aliases
	AliasFile string `json:"alias_file,omitempty" mapstructure:"alias_file"`
}

// ServerConfig contains HTTP settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" mapstructure:"addr"`

	// RuntimeMetrics adds Go and process collectors to /metrics
	RuntimeMetrics bool `json:"runtime_metrics" mapstructure:"runtime_metrics"`

	ReadTimeout  time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" mapstructure:"write_timeout"`

	// MaxBodySize caps request bodies in bytes
	MaxBodySize int64 `json:"max_body_size" mapstructure:"max_body_size"`

	// AllowedOrigins for CORS; empty disables CORS headers
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json)
	DefaultFormat string `json:"default_format" mapstructure:"default_format"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Data: DataConfig{
			Dir:     "data",
			GeoJSON: "mexico-states.geojson",
		},
		Filter: filter.Default(),
		Server: ServerConfig{
			Addr:           ":8080",
			RuntimeMetrics: true,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxBodySize:    1 << 20,
			AllowedOrigins: []string{"*"},
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Logging: logging.DefaultConfig(),
	}
}

// newViper registers every default so OBSERVATORY_* variables override keys
// that the file does not set.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("version", d.Version)
	v.SetDefault("data.dir", d.Data.Dir)
	v.SetDefault("data.geojson", d.Data.GeoJSON)
	v.SetDefault("data.alias_file", d.Data.AliasFile)
	v.SetDefault("filter.layer", string(d.Filter.Layer))
	v.SetDefault("filter.status", d.Filter.Status)
	v.SetDefault("filter.year", d.Filter.Year)
	v.SetDefault("filter.cumulative", d.Filter.Cumulative)
	v.SetDefault("filter.show_undated", d.Filter.IncludeUndated)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.runtime_metrics", d.Server.RuntimeMetrics)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_body_size", d.Server.MaxBodySize)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("output.default_format", d.Output.DefaultFormat)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.development", d.Logging.Development)
	return v
}

// Load reads configuration from path (JSON or YAML by extension) merged with
// environment overrides. An empty or missing path yields defaults plus
// environment.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrap(errors.TypeConfig, "failed to read config file", err).
					WithContext("path", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.TypeConfig, "failed to stat config file", err).
				WithContext("path", path)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to decode configuration", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the engine cannot start with
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return errors.Config("data.dir must be set")
	}
	if !c.Filter.Layer.Valid() {
		return errors.Config("filter.layer is not a known layer").WithContext("layer", c.Filter.Layer)
	}
	switch c.Output.DefaultFormat {
	case "cli", "json":
	default:
		return errors.Config("output.default_format must be cli or json").
			WithContext("format", c.Output.DefaultFormat)
	}
	return nil
}

// GeoJSONPath resolves the boundary file against the data directory
func (c *Config) GeoJSONPath() string {
	if c.Data.GeoJSON == "" || filepath.IsAbs(c.Data.GeoJSON) {
		return c.Data.GeoJSON
	}
	return filepath.Join(c.Data.Dir, c.Data.GeoJSON)
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
