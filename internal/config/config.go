// Package config reads the engine configuration from environment variables
// with sensible defaults.
package config

import (
	"os"
	"strconv"
	"time"

	"ares-ubo/internal/ares"
	"ares-ubo/internal/resolve"
	"ares-ubo/internal/ubo"
)

// Config holds everything the CLI needs to build the engine.
type Config struct {
	Client    ares.ClientConfig
	CachePath string
	MaxDepth  int
	Threshold float64
}

// FromEnv returns the configuration based on environment variables.
func FromEnv() Config {
	client := ares.DefaultClientConfig()

	if v := os.Getenv("ARES_BASE_URL"); v != "" {
		client.BaseURL = v
	}
	if v, ok := envInt("ARES_TIMEOUT_S"); ok {
		client.Timeout = time.Duration(v) * time.Second
	}
	if v, ok := envInt("ARES_MAX_RETRIES"); ok {
		client.MaxRetries = v
	}
	if v, ok := envInt("ARES_MIN_DELAY_MS"); ok {
		client.MinDelay = time.Duration(v) * time.Millisecond
	}

	cfg := Config{
		Client:    client,
		CachePath: getCachePath(),
		MaxDepth:  resolve.DefaultMaxDepth,
		Threshold: ubo.DefaultThreshold,
	}
	if v, ok := envInt("UBO_MAX_DEPTH"); ok {
		cfg.MaxDepth = v
	}
	if v := os.Getenv("UBO_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			cfg.Threshold = f
		}
	}
	return cfg
}

// getCachePath returns the sqlite cache location.
func getCachePath() string {
	if path := os.Getenv("ARES_CACHE_PATH"); path != "" {
		return path
	}
	return "data/ares_vr_cache.sqlite"
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
