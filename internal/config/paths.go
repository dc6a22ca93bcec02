package config

import (
	"os"
	"path/filepath"
)

// AppPath returns the root directory for todomind data.
// It uses $TODOMIND_PATH if set, otherwise defaults to ~/.todomind.
func AppPath() string {
	if v := os.Getenv("TODOMIND_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".todomind")
	}
	return filepath.Join(home, ".todomind")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(AppPath(), "config.jsonc")
}

// DotenvPath returns the path to the app-level .env file.
func DotenvPath() string {
	return filepath.Join(AppPath(), ".env")
}
