package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
)

// ConfigAdapter is a thin adapter that translates CLI operations to
// ConfigService calls. It never prints key material.
type ConfigAdapter struct {
	service primary.ConfigService
	out     io.Writer
}

// NewConfigAdapter creates a new ConfigAdapter with the given service.
func NewConfigAdapter(service primary.ConfigService, out io.Writer) *ConfigAdapter {
	return &ConfigAdapter{
		service: service,
		out:     out,
	}
}

// Show prints the AI configuration.
func (a *ConfigAdapter) Show(ctx context.Context) error {
	cfg, err := a.service.GetAIConfig(ctx)
	if err != nil {
		return err
	}
	a.write(cfg)
	return nil
}

// Set replaces the AI configuration.
func (a *ConfigAdapter) Set(ctx context.Context, cfg models.AIConfig) error {
	saved, err := a.service.SetAIConfig(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "✓ AI configuration saved")
	a.write(saved)
	return nil
}

func (a *ConfigAdapter) write(cfg *models.AIConfig) {
	key := failColor.Sprint("missing")
	if cfg.HasAPIKey {
		key = okColor.Sprint("stored")
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Provider:\t%s\n", cfg.Provider)
	fmt.Fprintf(w, "Model:\t%s\n", cfg.Model)
	fmt.Fprintf(w, "Temperature:\t%g\n", cfg.Temperature)
	fmt.Fprintf(w, "Max tokens:\t%d\n", cfg.MaxTokens)
	fmt.Fprintf(w, "API key:\t%s\n", key)
	_ = w.Flush()
}

// SetKey stores a provider key.
func (a *ConfigAdapter) SetKey(ctx context.Context, providerID, key string) error {
	if err := a.service.SetAPIKey(ctx, providerID, key); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Key stored for %s\n", providerID)
	return nil
}

// DeleteKey removes a provider key.
func (a *ConfigAdapter) DeleteKey(ctx context.Context, providerID string) error {
	if err := a.service.DeleteAPIKey(ctx, providerID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Key removed for %s\n", providerID)
	return nil
}

// Providers lists providers and whether each has a key.
func (a *ConfigAdapter) Providers(ctx context.Context) error {
	statuses, err := a.service.ListProviders(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tKEY")
	for _, s := range statuses {
		state := "not needed"
		switch {
		case s.HasKey:
			state = okColor.Sprint("stored")
		case s.RequiresKey:
			state = failColor.Sprint("missing")
		}
		fmt.Fprintf(w, "%s\t%s\n", s.ID, state)
	}
	return w.Flush()
}
