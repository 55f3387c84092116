// Package config loads CLI and client configuration for openml.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Crozal/openml-go/internal/api"
	"github.com/Crozal/openml-go/internal/paths"
)

// DefaultServer is the base URL of the public OpenML REST API.
const DefaultServer = api.DefaultServer

// Config represents the configuration for the openml CLI and client.
type Config struct {
	Server   string `yaml:"server"`
	APIKey   string `yaml:"api_key"`
	CacheDir string `yaml:"cache_dir"`
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config populated with default values. The API key is
// taken from the OPENML_API_KEY environment variable when set.
func Default() Config {
	return Config{
		Server:   DefaultServer,
		APIKey:   strings.TrimSpace(os.Getenv("OPENML_API_KEY")),
		CacheDir: paths.CacheDir(),
		LogLevel: "warn",
	}
}

// Load reads configuration from the given path, falling back to defaults
// when the file is missing. Values set in the file override defaults; an
// OPENML_API_KEY environment variable overrides the file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if env := strings.TrimSpace(os.Getenv("OPENML_API_KEY")); env != "" {
		cfg.APIKey = env
	}
	if strings.TrimSpace(cfg.Server) == "" {
		cfg.Server = DefaultServer
	}
	if strings.TrimSpace(cfg.CacheDir) == "" {
		cfg.CacheDir = paths.CacheDir()
	}

	return cfg, nil
}
