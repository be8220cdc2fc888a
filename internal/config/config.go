package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const defaultCatalogTimeout = 10 * time.Second

type Config struct {
	// Catalog API settings
	Catalog CatalogConfig `koanf:"catalog"`

	// Logging settings
	Log LogConfig `koanf:"log"`
}

// CatalogConfig holds the remote catalog API configuration.
type CatalogConfig struct {
	BaseURL        string `koanf:"base_url"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `koanf:"level"`
	OutputPath string `koanf:"output_path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

func Load() (*Config, error) {
	// Pick up a local .env if present; STRUM_* variables override files.
	_ = godotenv.Load()

	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if v := os.Getenv("STRUM_CATALOG_URL"); v != "" {
		cfg.Catalog.BaseURL = v
	}
	if v := os.Getenv("STRUM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Normalize catalog URL (remove trailing slash)
	cfg.Catalog.BaseURL = strings.TrimSuffix(cfg.Catalog.BaseURL, "/")

	// Expand ~ in log output path
	if cfg.Log.OutputPath != "" {
		cfg.Log.OutputPath = expandPath(cfg.Log.OutputPath)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/strum/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "strum", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// CatalogTimeout returns the catalog request timeout with the default applied.
func (c *Config) CatalogTimeout() time.Duration {
	if c.Catalog.TimeoutSeconds <= 0 {
		return defaultCatalogTimeout
	}
	return time.Duration(c.Catalog.TimeoutSeconds) * time.Second
}

// HasCatalogConfig returns true if a catalog endpoint is configured.
func (c *Config) HasCatalogConfig() bool {
	return c.Catalog.BaseURL != ""
}
