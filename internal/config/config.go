// Package config loads the config.json settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the process-wide settings, loaded once at startup and
// immutable afterwards.
type Config struct {
	// APIKey authenticates every API call.
	APIKey string `json:"api_key"`
	// Server is the Ubicast server base URL, e.g. "https://media.example.edu".
	Server string `json:"ubicast_server"`
	// Verify enables TLS certificate verification. Off by default: Ubicast
	// instances commonly run with self-signed certificates.
	Verify bool `json:"verify"`
}

// Load reads the config file at path. An empty path searches ./config.json
// first, then $XDG_CONFIG_HOME/ubigrab/config.json (falling back to
// ~/.config).
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		var err error
		path, err = findConfig()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.Server = strings.TrimRight(cfg.Server, "/")
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the required fields.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("missing api_key")
	}
	if c.Server == "" {
		return fmt.Errorf("missing ubicast_server")
	}
	return nil
}

func findConfig() (string, error) {
	candidates := []string{"config.json"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "ubigrab", "config.json"))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no config.json found (searched %s)", strings.Join(candidates, ", "))
}
