// Package config reads and writes the project configuration under
// .boxforge/config.yaml. Secrets never live here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/provider"
)

// Directory and file names.
const (
	DirName    = ".boxforge"
	FileName   = "config.yaml"
	DBFileName = "project.db"
	KeyFile    = "secret.key"
)

// ErrNoProject is returned when no .boxforge directory is found.
var ErrNoProject = errors.New("not inside a boxforge project (run 'boxforge init')")

// Config is the on-disk project configuration.
type Config struct {
	Version   string                    `yaml:"version"`
	AI        AIConfig                  `yaml:"ai"`
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`
	Logging   LoggingConfig             `yaml:"logging"`
}

// AIConfig selects the default provider and sampling parameters.
type AIConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Stream      bool    `yaml:"stream"`
}

// ProviderConfig overrides transport settings for one provider.
type ProviderConfig struct {
	BaseURL           string        `yaml:"base_url,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	RequestsPerMinute int           `yaml:"requests_per_minute,omitempty"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration written by 'boxforge init'.
func Default() *Config {
	return &Config{
		Version: "1",
		AI: AIConfig{
			Provider:    provider.OpenAI,
			Model:       "gpt-4o",
			Temperature: 0.2,
			MaxTokens:   4096,
			Stream:      true,
		},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// LoadConfig reads .boxforge/config.yaml from dir. Missing fields keep
// their defaults.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, DirName, FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes config.yaml into dir/.boxforge.
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, DirName)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", DirName, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(cfgDir, FileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// FindProjectDir walks up from start to the first directory containing
// a .boxforge directory.
func FindProjectDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, DirName))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}

// DBPath returns the sqlite file of the project rooted at dir.
func DBPath(dir string) string {
	return filepath.Join(dir, DirName, DBFileName)
}

// UserKeyPath returns the per-user key file that encrypts stored secrets.
func UserKeyPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DirName, KeyFile), nil
}

// ProviderConfigs converts the provider overrides for the registry.
func (c *Config) ProviderConfigs() map[string]provider.Config {
	out := make(map[string]provider.Config, len(c.Providers))
	for id, p := range c.Providers {
		out[id] = provider.Config{
			BaseURL:           p.BaseURL,
			Timeout:           p.Timeout,
			RequestsPerMinute: p.RequestsPerMinute,
		}
	}
	return out
}

// ModelConfig returns the AI section as the shared model type.
func (a AIConfig) ModelConfig() models.AIConfig {
	return models.AIConfig{
		Provider:    a.Provider,
		Model:       a.Model,
		Temperature: a.Temperature,
		MaxTokens:   a.MaxTokens,
	}
}

// EnvKeyName is the environment variable consulted for a provider key
// when the secret store has none, e.g. BOXFORGE_OPENAI_API_KEY.
func EnvKeyName(providerID string) string {
	return "BOXFORGE_" + strings.ToUpper(strings.ReplaceAll(providerID, "-", "_")) + "_API_KEY"
}
