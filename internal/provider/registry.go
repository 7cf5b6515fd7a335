package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute applies when a provider config sets no limit.
const DefaultRequestsPerMinute = 30

// Registry resolves provider ids to adapters and paces calls per provider.
// Safe for concurrent use once built.
type Registry struct {
	adapters map[string]Adapter
	limiters map[string]*rate.Limiter
	logger   *zap.Logger
}

// NewRegistry builds the registry of every supported backend. cfgs holds
// optional per-provider overrides.
func NewRegistry(cfgs map[string]Config, logger *zap.Logger) *Registry {
	logger = orNop(logger)
	r := &Registry{
		adapters: make(map[string]Adapter),
		limiters: make(map[string]*rate.Limiter),
		logger:   logger,
	}
	openRouter := cfgs[OpenRouter]
	if openRouter.Headers == nil {
		openRouter.Headers = map[string]string{"X-Title": "boxforge"}
	}

	r.Register(NewOpenAICompatible(OpenAI, OpenAIBaseURL, true, cfgs[OpenAI], logger), cfgs[OpenAI].RequestsPerMinute)
	r.Register(NewOpenAICompatible(OpenRouter, OpenRouterBaseURL, true, openRouter, logger), openRouter.RequestsPerMinute)
	r.Register(NewOpenAICompatible(XAI, XAIBaseURL, true, cfgs[XAI], logger), cfgs[XAI].RequestsPerMinute)
	r.Register(NewOpenAICompatible(LMStudio, LMStudioBaseURL, false, cfgs[LMStudio], logger), cfgs[LMStudio].RequestsPerMinute)
	r.Register(NewAnthropic(cfgs[Anthropic], logger), cfgs[Anthropic].RequestsPerMinute)
	r.Register(NewGemini(cfgs[Gemini], logger), cfgs[Gemini].RequestsPerMinute)
	return r
}

// Register adds or replaces an adapter. rpm <= 0 uses the default limit.
func (r *Registry) Register(a Adapter, rpm int) {
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	r.adapters[a.ID()] = a
	r.limiters[a.ID()] = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
}

// Get returns the adapter for id.
func (r *Registry) Get(id string) (Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// IDs returns the registered provider ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RequiresKey reports whether provider id needs a secret key. Unknown ids
// report true.
func (r *Registry) RequiresKey(id string) bool {
	a, ok := r.adapters[id]
	return !ok || a.RequiresKey()
}

// Generate waits for the provider's rate limit and runs one generation.
// Unknown providers and missing keys fail before any wait or network call.
func (r *Registry) Generate(ctx context.Context, providerID string, req Request, secretKey string, onChunk ChunkFunc) (*Result, error) {
	a, ok := r.adapters[providerID]
	if !ok {
		return nil, &Error{Kind: KindModelUnavailable, Provider: providerID, Message: "unknown provider"}
	}
	if a.RequiresKey() && secretKey == "" {
		return nil, &Error{Kind: KindMissingCredential, Provider: providerID, Model: req.Model}
	}
	if err := r.limiters[providerID].Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for %s rate limit: %w", providerID, err)
	}
	return a.Generate(ctx, req, secretKey, onChunk)
}
