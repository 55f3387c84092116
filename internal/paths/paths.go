// Package paths provides directory paths for the openml CLI.
//
// Layout (Unix):
//   - config:  ~/.config/openml/config.yaml (or $XDG_CONFIG_HOME/openml)
//   - cache:   ~/.cache/openml (or $XDG_CACHE_HOME/openml)
//   - index:   <cache>/index.db
//
// On Windows both collapse under %LOCALAPPDATA%\openml.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir returns the directory holding user configuration.
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(localAppData(), "openml")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "openml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "openml")
}

// ConfigFile returns the path to the main config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// CacheDir returns the root of the local object cache.
func CacheDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(localAppData(), "openml", "cache")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "openml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "openml")
}

// IndexFile returns the path to the cache index database, relative to the
// given cache root.
func IndexFile(cacheDir string) string {
	return filepath.Join(cacheDir, "index.db")
}

func localAppData() string {
	if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "AppData", "Local")
}
