package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
	"github.com/example/boxforge/internal/ports/secondary"
	"github.com/example/boxforge/internal/protocol"
)

// ConfigServiceImpl implements the ConfigService interface. Reading and
// replacing the AI config goes through the protocol, the same exchange a
// UI performs; key management talks to the secret store directly.
type ConfigServiceImpl struct {
	session   *Session
	secrets   secondary.SecretStore
	generator Generator
}

var _ primary.ConfigService = (*ConfigServiceImpl)(nil)

// NewConfigService creates a new ConfigService with injected dependencies.
func NewConfigService(session *Session, secrets secondary.SecretStore, generator Generator) *ConfigServiceImpl {
	return &ConfigServiceImpl{
		session:   session,
		secrets:   secrets,
		generator: generator,
	}
}

// GetAIConfig returns the redacted AI configuration.
func (s *ConfigServiceImpl) GetAIConfig(ctx context.Context) (*models.AIConfig, error) {
	return s.session.Exchange(ctx, protocol.GetAIConfig{})
}

// SetAIConfig replaces the AI configuration.
func (s *ConfigServiceImpl) SetAIConfig(ctx context.Context, cfg models.AIConfig) (*models.AIConfig, error) {
	return s.session.Exchange(ctx, protocol.SetAIConfig{Payload: cfg})
}

func (s *ConfigServiceImpl) knownProvider(providerID string) error {
	if _, ok := indexOf(s.generator.IDs(), providerID); !ok {
		return fmt.Errorf("unknown provider %q (known: %s)", providerID, strings.Join(s.generator.IDs(), ", "))
	}
	return nil
}

// SetAPIKey stores a provider key.
func (s *ConfigServiceImpl) SetAPIKey(ctx context.Context, providerID, key string) error {
	if err := s.knownProvider(providerID); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("empty key for provider %s", providerID)
	}
	return s.secrets.Put(ctx, providerID, key)
}

// DeleteAPIKey removes a stored provider key.
func (s *ConfigServiceImpl) DeleteAPIKey(ctx context.Context, providerID string) error {
	if err := s.knownProvider(providerID); err != nil {
		return err
	}
	return s.secrets.Delete(ctx, providerID)
}

// ListProviders reports every provider with its key status.
func (s *ConfigServiceImpl) ListProviders(ctx context.Context) ([]primary.ProviderStatus, error) {
	ids := s.generator.IDs()
	out := make([]primary.ProviderStatus, 0, len(ids))
	for _, id := range ids {
		has, err := s.secrets.Has(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, primary.ProviderStatus{
			ID:          id,
			RequiresKey: s.generator.RequiresKey(id),
			HasKey:      has,
		})
	}
	return out, nil
}
