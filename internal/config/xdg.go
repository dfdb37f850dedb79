package config

import (
	"os"
	"path/filepath"
)

const appName = "flowkit"

// ConfigDir returns the flowkit config directory. XDG_CONFIG_HOME is
// respected; otherwise ~/.config/flowkit is used on every platform.
// The directory is not created.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName), nil
}

// ConfigPath returns the default config file location.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultPath returns ConfigPath when the file exists, or "" so that
// Load falls back to defaults.
func DefaultPath() string {
	p, err := ConfigPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
