// Package config handles configuration loading for the mosaic tool.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the tool configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Cache  CacheConfig  `yaml:"cache"`
	Canvas CanvasConfig `yaml:"canvas"`
}

// ServerConfig contains preview HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// FetchConfig contains transport settings.
type FetchConfig struct {
	Concurrency    int `yaml:"concurrency"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	PayloadSizeMB     int `yaml:"payload_size_mb"`
	PayloadTTLMinutes int `yaml:"payload_ttl_minutes"`
	ChunkCacheSize    int `yaml:"chunk_cache_size"`
}

// CanvasConfig contains per-service endpoint settings for the services that
// are not addressed per-chunk URL.
type CanvasConfig struct {
	PixelzoneSocketURL string `yaml:"pixelzone_socket_url"`
	PxlsInfoURL        string `yaml:"pxls_info_url"`
	PxlsBoardURL       string `yaml:"pxls_board_url"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Fetch: FetchConfig{
			Concurrency:    8,
			TimeoutSeconds: 30,
		},
		Cache: CacheConfig{
			PayloadSizeMB:     256,
			PayloadTTLMinutes: 5,
			ChunkCacheSize:    256,
		},
		Canvas: CanvasConfig{
			PixelzoneSocketURL: "wss://pixelzone.io/socket.io/?EIO=3&transport=websocket",
			PxlsInfoURL:        "https://pxls.space/info",
			PxlsBoardURL:       "https://pxls.space/boarddata",
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Fetch.Concurrency == 0 {
		cfg.Fetch.Concurrency = defaults.Fetch.Concurrency
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = defaults.Fetch.TimeoutSeconds
	}
	if cfg.Cache.PayloadSizeMB == 0 {
		cfg.Cache.PayloadSizeMB = defaults.Cache.PayloadSizeMB
	}
	if cfg.Cache.PayloadTTLMinutes == 0 {
		cfg.Cache.PayloadTTLMinutes = defaults.Cache.PayloadTTLMinutes
	}
	if cfg.Cache.ChunkCacheSize == 0 {
		cfg.Cache.ChunkCacheSize = defaults.Cache.ChunkCacheSize
	}
	if cfg.Canvas.PixelzoneSocketURL == "" {
		cfg.Canvas.PixelzoneSocketURL = defaults.Canvas.PixelzoneSocketURL
	}
	if cfg.Canvas.PxlsInfoURL == "" {
		cfg.Canvas.PxlsInfoURL = defaults.Canvas.PxlsInfoURL
	}
	if cfg.Canvas.PxlsBoardURL == "" {
		cfg.Canvas.PxlsBoardURL = defaults.Canvas.PxlsBoardURL
	}
}
