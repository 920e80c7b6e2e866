package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GlobalConfigFile is the configuration file name inside the scout home.
const GlobalConfigFile = "config.yaml"

// GetScoutHome returns the scout home directory
// Priority order:
//  1. SCOUT_HOME environment variable (if set)
//  2. ~/.scout
//  3. .scout in the current working directory (no resolvable user home)
//
// The directory is not created; callers that write into it use EnsureDir.
func GetScoutHome() (string, error) {
	if home := os.Getenv("SCOUT_HOME"); home != "" {
		return home, nil
	}

	if userHome, err := os.UserHomeDir(); err == nil && userHome != "" {
		return filepath.Join(userHome, ".scout"), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return filepath.Join(cwd, ".scout"), nil
}

// GetHistoryDBPath returns the history database path for cfg.
// An empty db_path resolves to $SCOUT_HOME/history.db.
func GetHistoryDBPath(cfg *Config) (string, error) {
	if cfg.History.DBPath != "" {
		return cfg.History.DBPath, nil
	}
	home, err := GetScoutHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
