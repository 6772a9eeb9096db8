// Package config provides environment-driven configuration loading.
package config

import (
	"os"
	"path/filepath"
)

// defaultDataDir returns the fallback data directory used when DATA_DIR is
// not set: a subdirectory of the user's XDG data home (or ~/.local/share).
func defaultDataDir() string {
	if home := os.Getenv("XDG_DATA_HOME"); home != "" {
		return filepath.Join(home, "opencode")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "opencode")
}
