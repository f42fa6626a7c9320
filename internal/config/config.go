// Package config handles repository and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents repository configuration stored in .stacks/config.json.
type Config struct {
	ModelName     string  `json:"model_name,omitempty"`     // Blob key for the hybrid model
	ContentWeight float64 `json:"content_weight,omitempty"` // Default hybrid content weight
	CollabWeight  float64 `json:"collab_weight,omitempty"`  // Default hybrid collaborative weight
}

const (
	StacksDir  = ".stacks"
	ConfigFile = "config.json"
	DBFile     = "stacks.db"
)

// StacksPath returns the path to the .stacks directory from a root path.
func StacksPath(root string) string {
	return filepath.Join(root, StacksDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, StacksDir, ConfigFile)
}

// DBPath returns the path to stacks.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, StacksDir, DBFile)
}

// IsRepository checks if the given path contains a stacks repository.
func IsRepository(root string) bool {
	info, err := os.Stat(StacksPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a stacks repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a stacks repository (no .stacks directory found)")
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ValidateWeights checks that blend weights are non-negative and not both
// zero when either is set.
func (c *Config) ValidateWeights() error {
	if c.ContentWeight < 0 || c.CollabWeight < 0 {
		return fmt.Errorf("blend weights must be non-negative")
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
