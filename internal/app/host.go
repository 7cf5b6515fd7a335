package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/secondary"
	"github.com/example/boxforge/internal/protocol"
	"github.com/example/boxforge/internal/provider"
)

// DefaultMaxConcurrent bounds provider calls in flight per host.
const DefaultMaxConcurrent = 4

// Generator runs a generation against a registered provider.
type Generator interface {
	Generate(ctx context.Context, providerID string, req provider.Request, secretKey string, onChunk provider.ChunkFunc) (*provider.Result, error)
	RequiresKey(providerID string) bool
	IDs() []string
}

var _ Generator = (*provider.Registry)(nil)

// PassthroughFunc receives file and project messages the host does not
// interpret.
type PassthroughFunc func(protocol.Passthrough) error

// HostOptions configures a Host.
type HostOptions struct {
	Generator Generator
	Secrets   secondary.SecretStore
	Config    secondary.ConfigStore

	// Send delivers an encoded inbound message to the UI side. It is
	// called from provider goroutines, one goroutine per request.
	Send func([]byte)

	Passthrough   PassthroughFunc
	MaxConcurrent int
	Logger        *zap.Logger
}

// Host is the host side of the generation protocol. It owns the secret
// store, resolves keys by provider id and runs provider calls concurrently.
// Keys never leave the host: AI config replies carry HasAPIKey only.
type Host struct {
	gen         Generator
	secrets     secondary.SecretStore
	config      secondary.ConfigStore
	send        func([]byte)
	passthrough PassthroughFunc
	logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	// guards group.Go against Close
	mu     sync.Mutex
	closed bool
}

var _ protocol.OutboundHandler = (*Host)(nil)

// NewHost creates a host. Close must be called to release it.
func NewHost(opts HostOptions) *Host {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	group := &errgroup.Group{}
	group.SetLimit(opts.MaxConcurrent)
	return &Host{
		gen:         opts.Generator,
		secrets:     opts.Secrets,
		config:      opts.Config,
		send:        opts.Send,
		passthrough: opts.Passthrough,
		logger:      opts.Logger,
		ctx:         ctx,
		cancel:      cancel,
		group:       group,
	}
}

// Post decodes and handles one outbound message. Failures not tied to a
// request are reported to the UI as an error message as well as returned.
func (h *Host) Post(data []byte) error {
	m, err := protocol.DecodeOutbound(data)
	if err != nil {
		h.reply(protocol.Error{Message: "Malformed message: " + err.Error()})
		return err
	}
	if err := protocol.DispatchOutbound(h, m); err != nil {
		h.reply(protocol.Error{Message: err.Error()})
		return err
	}
	return nil
}

// Wait blocks until every running generation has replied.
func (h *Host) Wait() {
	_ = h.group.Wait()
}

// Close cancels running generations and waits for them. Cancelling comes
// first: a HandleGenerate waiting for a free slot holds mu until a running
// call returns.
func (h *Host) Close() {
	h.cancel()
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.Wait()
}

func (h *Host) reply(m protocol.Inbound) {
	data, err := protocol.EncodeInbound(m)
	if err != nil {
		h.logger.Error("failed to encode inbound message", zap.String("type", m.Type()), zap.Error(err))
		return
	}
	h.send(data)
}

// HandleReady answers with the current AI configuration.
func (h *Host) HandleReady(protocol.Ready) error {
	return h.HandleGetAIConfig(protocol.GetAIConfig{})
}

// HandleGetAIConfig replies with the redacted AI configuration.
func (h *Host) HandleGetAIConfig(protocol.GetAIConfig) error {
	cfg, err := h.currentConfig(h.ctx)
	if err != nil {
		return err
	}
	h.reply(protocol.AIConfigMessage{Config: *cfg})
	return nil
}

func (h *Host) currentConfig(ctx context.Context) (*models.AIConfig, error) {
	settings, err := h.config.LoadAI(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AI config: %w", err)
	}
	has, err := h.secrets.Has(ctx, settings.Config.Provider)
	if err != nil {
		return nil, err
	}
	cfg := settings.Config.Redacted(has)
	return &cfg, nil
}

// HandleSetAIConfig stores a supplied key in the secret store, persists
// the rest and replies with the redacted result.
func (h *Host) HandleSetAIConfig(m protocol.SetAIConfig) error {
	cfg := m.Payload
	if cfg.Provider == "" {
		return errors.New("AI config needs a provider")
	}
	if _, known := indexOf(h.gen.IDs(), cfg.Provider); !known {
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.APIKey != nil && *cfg.APIKey != "" {
		if err := h.secrets.Put(h.ctx, cfg.Provider, *cfg.APIKey); err != nil {
			return err
		}
		h.logger.Info("provider key stored", zap.String("provider", cfg.Provider))
	}

	settings, err := h.config.LoadAI(h.ctx)
	if err != nil {
		return fmt.Errorf("failed to load AI config: %w", err)
	}
	settings.Config = cfg.Redacted(false)
	settings.Config.HasAPIKey = false
	if err := h.config.SaveAI(h.ctx, settings); err != nil {
		return fmt.Errorf("failed to save AI config: %w", err)
	}
	return h.HandleGetAIConfig(protocol.GetAIConfig{})
}

// HandlePassthrough forwards messages owned by the file and project
// collaborator.
func (h *Host) HandlePassthrough(m protocol.Passthrough) error {
	if h.passthrough == nil {
		h.logger.Debug("ignoring passthrough message", zap.String("type", m.Kind))
		return nil
	}
	return h.passthrough(m)
}

// HandleGenerate resolves the provider, model and key, then runs the
// generation in the background. Every outcome, including a missing key,
// is replied as a generate message carrying the request id.
func (h *Host) HandleGenerate(m protocol.Generate) error {
	settings, err := h.config.LoadAI(h.ctx)
	if err != nil {
		h.reply(protocol.GenerateError{ID: m.ID, Message: "Could not load the AI configuration."})
		return fmt.Errorf("failed to load AI config: %w", err)
	}
	providerID := settings.Config.Provider
	req := provider.Request{
		Model:        settings.Config.Model,
		SystemPrompt: m.Payload.SystemPrompt,
		Prompt:       m.Payload.Prompt,
		Temperature:  settings.Config.Temperature,
		MaxTokens:    settings.Config.MaxTokens,
		Stream:       settings.Stream,
	}
	if m.Payload.Model != "" {
		req.Model = m.Payload.Model
	}
	if m.Payload.Temperature != nil {
		req.Temperature = *m.Payload.Temperature
	}
	if m.Payload.MaxTokens != nil {
		req.MaxTokens = *m.Payload.MaxTokens
	}
	if m.Payload.Stream != nil {
		req.Stream = *m.Payload.Stream
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		h.reply(protocol.GenerateError{ID: m.ID, Message: "The host is shutting down."})
		return nil
	}
	h.group.Go(func() error {
		h.run(m.ID, providerID, req)
		return nil
	})
	return nil
}

func (h *Host) run(requestID, providerID string, req provider.Request) {
	logger := h.logger.With(zap.String("request_id", requestID), zap.String("provider", providerID), zap.String("model", req.Model))

	key, err := h.key(providerID)
	if err != nil {
		logger.Error("failed to read provider key", zap.Error(err))
		h.reply(protocol.GenerateError{ID: requestID, Message: "Could not read the stored key for " + providerID + "."})
		return
	}

	var onChunk provider.ChunkFunc
	if req.Stream {
		onChunk = func(text string) {
			h.reply(protocol.GenerateChunk{ID: requestID, Text: text})
		}
	}

	res, err := h.gen.Generate(h.ctx, providerID, req, key, onChunk)
	if err != nil {
		logger.Warn("generation failed", zap.String("kind", string(provider.KindOf(err))), zap.Error(err))
		h.reply(protocol.GenerateError{ID: requestID, Message: provider.UserMessage(err)})
		return
	}
	h.reply(protocol.GenerateComplete{ID: requestID, Code: res.Code, Usage: res.Usage})
}

// key returns the stored key, or "" when the provider has none; the
// registry turns a missing required key into a credential error before
// any network call.
func (h *Host) key(providerID string) (string, error) {
	if !h.gen.RequiresKey(providerID) {
		return "", nil
	}
	key, err := h.secrets.Get(h.ctx, providerID)
	if errors.Is(err, secondary.ErrSecretNotFound) {
		return "", nil
	}
	return key, err
}

func indexOf(ids []string, id string) (int, bool) {
	for i, v := range ids {
		if v == id {
			return i, true
		}
	}
	return -1, false
}
