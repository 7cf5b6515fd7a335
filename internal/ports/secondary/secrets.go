package secondary

import (
	"context"
	"errors"

	"github.com/example/boxforge/internal/models"
)

// ErrSecretNotFound is returned when no key is stored for a provider.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore holds provider API keys apart from every other setting.
// Keys are addressed by provider id only.
type SecretStore interface {
	Put(ctx context.Context, providerID, secret string) error

	// Get returns ErrSecretNotFound when the provider has no key.
	Get(ctx context.Context, providerID string) (string, error)

	Has(ctx context.Context, providerID string) (bool, error)
	Delete(ctx context.Context, providerID string) error
}

// AISettings is the non-secret AI configuration as stored on disk.
// Config.APIKey is always nil here.
type AISettings struct {
	Config models.AIConfig
	Stream bool
}

// ConfigStore persists AI settings.
type ConfigStore interface {
	LoadAI(ctx context.Context) (*AISettings, error)
	SaveAI(ctx context.Context, settings *AISettings) error
}
