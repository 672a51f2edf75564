package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	IdentityFile string
	Output       string
	Verbose      bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    getEnvOrDefault("CHINQUIZ_SERVER", "http://localhost:8080"),
		IdentityFile: getEnvOrDefault("CHINQUIZ_IDENTITY_FILE", defaultIdentityFile()),
		Output:       "text",
		Verbose:      false,
	}
}

// StoredIdentity is the player identity kept between CLI runs
type StoredIdentity struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// LoadIdentity reads the stored identity. A missing file yields nil.
func (c *Config) LoadIdentity() (*StoredIdentity, error) {
	data, err := os.ReadFile(c.IdentityFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // No identity yet is fine
		}
		return nil, err
	}

	var identity StoredIdentity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse identity file %s: %w", c.IdentityFile, err)
	}
	if strings.TrimSpace(identity.UserID) == "" {
		return nil, nil
	}
	return &identity, nil
}

// SaveIdentity writes the identity file
func (c *Config) SaveIdentity(identity StoredIdentity) error {
	dir := filepath.Dir(c.IdentityFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.IdentityFile, data, 0600)
}

func defaultIdentityFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chinquiz/identity.json"
	}
	return filepath.Join(home, ".chinquiz", "identity.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
