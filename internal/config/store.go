package config

import (
	"context"

	"github.com/example/boxforge/internal/ports/secondary"
)

// FileStore implements secondary.ConfigStore on config.yaml.
type FileStore struct {
	dir string
}

var _ secondary.ConfigStore = (*FileStore)(nil)

// NewFileStore creates a store for the project rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// LoadAI returns the AI section of config.yaml.
func (s *FileStore) LoadAI(ctx context.Context) (*secondary.AISettings, error) {
	cfg, err := LoadConfig(s.dir)
	if err != nil {
		return nil, err
	}
	return &secondary.AISettings{Config: cfg.AI.ModelConfig(), Stream: cfg.AI.Stream}, nil
}

// SaveAI rewrites the AI section, keeping every other setting.
func (s *FileStore) SaveAI(ctx context.Context, settings *secondary.AISettings) error {
	cfg, err := LoadConfig(s.dir)
	if err != nil {
		return err
	}
	cfg.AI = AIConfig{
		Provider:    settings.Config.Provider,
		Model:       settings.Config.Model,
		Temperature: settings.Config.Temperature,
		MaxTokens:   settings.Config.MaxTokens,
		Stream:      settings.Stream,
	}
	return SaveConfig(s.dir, cfg)
}
