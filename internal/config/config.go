package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all process configuration.
type Config struct {
	Server     ServerConfig
	Pool       PoolConfig
	Screencast ScreencastConfig
	Viewport   ViewportConfig
	RateLimit  RateLimitConfig
	Logging    LogConfig
}

// ServerConfig holds this process's own HTTP/WS bind address.
type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" yaml:"host"`
	Port string `envconfig:"SERVER_PORT" yaml:"port"`
}

// PoolConfig addresses the upstream browser pool collaborator (§6.1).
type PoolConfig struct {
	Host string `envconfig:"BROWSER_ENDPOINT_HOST" yaml:"host"`
	Port string `envconfig:"BROWSER_ENDPOINT_PORT" yaml:"port"`
}

// ScreencastConfig tunes the on-demand CDP screencast (§4.2).
type ScreencastConfig struct {
	Quality       int `envconfig:"SCREENCAST_QUALITY" yaml:"quality"`
	EveryNthFrame int `envconfig:"SCREENCAST_EVERY_NTH_FRAME" yaml:"every_nth_frame"`
}

// ViewportConfig is the default Emulation.setDeviceMetricsOverride applied
// on every page attach.
type ViewportConfig struct {
	Width  int  `envconfig:"VIEWPORT_WIDTH" yaml:"width"`
	Height int  `envconfig:"VIEWPORT_HEIGHT" yaml:"height"`
	Scale  int  `envconfig:"VIEWPORT_SCALE" yaml:"scale"`
	Mobile bool `envconfig:"VIEWPORT_MOBILE" yaml:"mobile"`
}

// RateLimitConfig guards the WebSocket attach/upgrade surface.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled"`
}

// LogConfig configures the shared zap logger.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development"`
}

// Load loads configuration starting from hardcoded defaults, overlaid by
// an optional CONFIG_FILE YAML file, overlaid in turn by environment
// variables, which always take precedence (matching the 12-factor
// convention the teacher's config package documents). None of the
// struct tags carry envconfig defaults: Default() is the single source
// of truth for baseline values, so it can't drift out of sync with a
// second copy of the same constants scattered across struct tags.
func Load() (*Config, error) {
	cfg := *Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAMLFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from file/environment or returns
// hardcoded defaults if that fails.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns hardcoded default configuration.
func Default() *Config {
	return &Config{
		Server:     ServerConfig{Host: "0.0.0.0", Port: "8000"},
		Pool:       PoolConfig{Host: "localhost", Port: "9222"},
		Screencast: ScreencastConfig{Quality: 60, EveryNthFrame: 3},
		Viewport:   ViewportConfig{Width: 1280, Height: 720, Scale: 1, Mobile: false},
		RateLimit:  RateLimitConfig{RequestsPerSecond: 100, Burst: 200, Enabled: true},
		Logging:    LogConfig{Level: "info", Development: false},
	}
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
