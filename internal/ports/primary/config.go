package primary

import (
	"context"

	"github.com/example/boxforge/internal/models"
)

// ConfigService defines the primary port for AI configuration. Keys go
// in and never come back out: returned configs only say whether a key is
// stored.
type ConfigService interface {
	// GetAIConfig returns the AI configuration with HasAPIKey set.
	GetAIConfig(ctx context.Context) (*models.AIConfig, error)

	// SetAIConfig replaces the AI configuration. A non-nil APIKey is
	// stored for the config's provider.
	SetAIConfig(ctx context.Context, cfg models.AIConfig) (*models.AIConfig, error)

	// SetAPIKey stores the key of a provider.
	SetAPIKey(ctx context.Context, providerID, key string) error

	// DeleteAPIKey removes the stored key of a provider.
	DeleteAPIKey(ctx context.Context, providerID string) error

	// ListProviders reports every provider with its key status.
	ListProviders(ctx context.Context) ([]ProviderStatus, error)
}

// ProviderStatus describes one provider at the port boundary.
type ProviderStatus struct {
	ID          string
	RequiresKey bool
	HasKey      bool
}
