// Package config loads and watches the gitvis configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid config")
)

const (
	// DefaultListenAddr is where the dashboard server binds.
	DefaultListenAddr = "127.0.0.1:7680"

	// DefaultCompareDelayMS spaces out comparison calls against the
	// GitHub API.
	DefaultCompareDelayMS = 50

	// DefaultRelationshipTTLMinutes bounds reuse of cached branch
	// relationships.
	DefaultRelationshipTTLMinutes = 30
)

// EnvToken, when set, overrides the token from the config file.
const EnvToken = "GITVIS_TOKEN"

// Config represents the application configuration.
type Config struct {
	Token                  string `json:"token,omitempty"`
	APIBaseURL             string `json:"api_base_url,omitempty"`
	ListenAddr             string `json:"listen_addr,omitempty"`
	Repos                  []Repo `json:"repos"`
	CompareDelayMS         int    `json:"compare_delay_ms,omitempty"`
	RelationshipTTLMinutes int    `json:"relationship_ttl_minutes,omitempty"`
	PresetsPath            string `json:"presets_path,omitempty"`

	path string
	mu   sync.RWMutex
}

// Repo identifies one GitHub repository to visualize.
type Repo struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	// DefaultBranch overrides the branch reported by the API; normally
	// left empty.
	DefaultBranch string `json:"default_branch,omitempty"`
}

// Path returns the default config file location, ~/.gitvis/config.json.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gitvis", "config.json"), nil
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads and validates the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.path = path

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	for _, repo := range c.Repos {
		if repo.Owner == "" {
			return fmt.Errorf("%w: repo owner is required", ErrInvalidConfig)
		}
		if repo.Name == "" {
			return fmt.Errorf("%w: repo name is required for owner %s", ErrInvalidConfig, repo.Owner)
		}
	}
	if c.CompareDelayMS < 0 {
		return fmt.Errorf("%w: compare_delay_ms must not be negative", ErrInvalidConfig)
	}
	if c.RelationshipTTLMinutes < 0 {
		return fmt.Errorf("%w: relationship_ttl_minutes must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.CompareDelayMS == 0 {
		c.CompareDelayMS = DefaultCompareDelayMS
	}
	if c.RelationshipTTLMinutes == 0 {
		c.RelationshipTTLMinutes = DefaultRelationshipTTLMinutes
	}
}

// Save writes the configuration back to its file.
func (c *Config) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c, "", "  ")
	path := c.path
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Reload re-reads the config file and swaps the mutable settings in
// place, so long-lived holders observe the change. Used by the config
// watcher.
func (c *Config) Reload() error {
	c.mu.RLock()
	path := c.path
	c.mu.RUnlock()

	fresh, err := LoadFrom(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Token = fresh.Token
	c.APIBaseURL = fresh.APIBaseURL
	c.ListenAddr = fresh.ListenAddr
	c.Repos = fresh.Repos
	c.CompareDelayMS = fresh.CompareDelayMS
	c.RelationshipTTLMinutes = fresh.RelationshipTTLMinutes
	c.PresetsPath = fresh.PresetsPath
	return nil
}

// FilePath returns the path this config was loaded from.
func (c *Config) FilePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// GetToken returns the API token, preferring the environment override.
func (c *Config) GetToken() string {
	if tok := os.Getenv(EnvToken); tok != "" {
		return tok
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Token
}

// GetAPIBaseURL returns the API base URL override, if any.
func (c *Config) GetAPIBaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.APIBaseURL
}

// GetListenAddr returns the dashboard bind address.
func (c *Config) GetListenAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ListenAddr
}

// GetRepos returns a copy of the configured repositories.
func (c *Config) GetRepos() []Repo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	repos := make([]Repo, len(c.Repos))
	copy(repos, c.Repos)
	return repos
}

// FindRepo looks up a configured repository by owner and name.
func (c *Config) FindRepo(owner, name string) (Repo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, repo := range c.Repos {
		if repo.Owner == owner && repo.Name == name {
			return repo, true
		}
	}
	return Repo{}, false
}

// CompareDelay returns the spacing between comparison calls.
func (c *Config) CompareDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.CompareDelayMS) * time.Millisecond
}

// RelationshipTTL returns how long cached relationships stay valid.
func (c *Config) RelationshipTTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.RelationshipTTLMinutes) * time.Minute
}

// GetPresetsPath returns the view presets file location, defaulting to
// presets.yaml next to the config file.
func (c *Config) GetPresetsPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.PresetsPath != "" {
		return c.PresetsPath
	}
	return filepath.Join(filepath.Dir(c.path), "presets.yaml")
}

// CreateDefault returns a config with defaults bound to the given path.
func CreateDefault(path string) *Config {
	cfg := &Config{path: path}
	cfg.applyDefaults()
	return cfg
}
