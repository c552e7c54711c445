package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath returns where `config init` writes the config file:
// $XDG_CONFIG_HOME/vidresume/config.yaml, else ~/.config/vidresume/config.yaml.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vidresume", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vidresume", "config.yaml"), nil
}

// EnsureConfigExists writes the commented template to configPath unless a
// file is already there. It reports whether a file was created.
func EnsureConfigExists(configPath string) (bool, error) {
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(configTemplate), 0644); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}
	return true, nil
}
