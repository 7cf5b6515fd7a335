package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/example/boxforge/internal/ports/secondary"
)

// EnvLookup resolves a provider key from the environment.
type EnvLookup func(providerID string) (string, bool)

// SecretStore implements secondary.SecretStore. Keys are sealed with
// AES-256-GCM before they reach the database.
type SecretStore struct {
	db     *sql.DB
	encKey []byte
	env    EnvLookup
}

var _ secondary.SecretStore = (*SecretStore)(nil)

// SecretStoreOption configures a SecretStore.
type SecretStoreOption func(*SecretStore)

// WithEnvFallback consults lookup when no key is stored for a provider.
func WithEnvFallback(lookup EnvLookup) SecretStoreOption {
	return func(s *SecretStore) { s.env = lookup }
}

// NewSecretStore creates a store sealing secrets with a 32-byte key.
func NewSecretStore(db *sql.DB, encryptionKey []byte, opts ...SecretStoreOption) (*SecretStore, error) {
	if len(encryptionKey) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(encryptionKey))
	}
	s := &SecretStore{db: db, encKey: append([]byte(nil), encryptionKey...)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SecretStore) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Put stores or replaces the key for providerID.
func (s *SecretStore) Put(ctx context.Context, providerID, secret string) error {
	if secret == "" {
		return fmt.Errorf("empty key for provider %s", providerID)
	}
	gcm, err := s.gcm()
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	// The provider id is bound as additional data so a row cannot be
	// replayed under another provider.
	sealed := gcm.Seal(nil, nonce, []byte(secret), []byte(providerID))

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO provider_secrets (provider_id, nonce, ciphertext, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(provider_id) DO UPDATE SET nonce = excluded.nonce, ciphertext = excluded.ciphertext, updated_at = CURRENT_TIMESTAMP`,
		providerID, nonce, sealed,
	)
	if err != nil {
		return fmt.Errorf("failed to store key for provider %s: %w", providerID, err)
	}
	return nil
}

// Get returns the key for providerID, falling back to the environment.
func (s *SecretStore) Get(ctx context.Context, providerID string) (string, error) {
	var nonce, sealed []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT nonce, ciphertext FROM provider_secrets WHERE provider_id = ?", providerID,
	).Scan(&nonce, &sealed)
	if errors.Is(err, sql.ErrNoRows) {
		if s.env != nil {
			if v, ok := s.env(providerID); ok && v != "" {
				return v, nil
			}
		}
		return "", secondary.ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key for provider %s: %w", providerID, err)
	}

	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}
	plain, err := gcm.Open(nil, nonce, sealed, []byte(providerID))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt key for provider %s: %w", providerID, err)
	}
	return string(plain), nil
}

// Has reports whether a key is available without decrypting it.
func (s *SecretStore) Has(ctx context.Context, providerID string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM provider_secrets WHERE provider_id = ?", providerID,
	).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check key for provider %s: %w", providerID, err)
	}
	if n > 0 {
		return true, nil
	}
	if s.env != nil {
		v, ok := s.env(providerID)
		return ok && v != "", nil
	}
	return false, nil
}

// Delete removes the stored key. Environment keys are untouched.
func (s *SecretStore) Delete(ctx context.Context, providerID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM provider_secrets WHERE provider_id = ?", providerID); err != nil {
		return fmt.Errorf("failed to delete key for provider %s: %w", providerID, err)
	}
	return nil
}
