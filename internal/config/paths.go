package config

import (
	"os"
	"path/filepath"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

const (
	// EnvConfigPath names a config file explicitly. It may also come from .env.
	EnvConfigPath = "OPENACCESS_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "openaccess.yaml"

	appDir     = "openaccess"
	dirConfig  = "config.yaml"
	systemRoot = "/etc"
)

// SearchPaths lists the implicit config locations, highest priority first.
// Locations whose base variable is unset are left out.
func SearchPaths() []string {
	paths := []string{ConfigFileName}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, appDir, dirConfig))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appDir, dirConfig))
	}
	return append(paths, filepath.Join(systemRoot, appDir, dirConfig))
}

// FindConfigPath returns the config file to load, or "" when there is none.
// A path named by $OPENACCESS_CONFIG must exist; the implicit locations are
// skipped when absent.
func FindConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if !isFile(path) {
			return "", errors.New("config file from environment not found", j.KV("path", path))
		}
		return path, nil
	}

	for _, path := range SearchPaths() {
		if !isFile(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs, nil
		}
		return path, nil
	}
	return "", nil
}

// isFile reports whether path is an existing regular file. Directories
// sharing a config name do not count.
func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
