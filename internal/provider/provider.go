// Package provider normalizes vendor generation APIs into one contract.
//
// Every adapter streams when the caller passes a chunk callback and the
// request allows it, strips one enclosing code fence from the final code,
// reports usage only when the vendor does, and classifies failures into
// the closed Kind taxonomy. A stream that yields no text falls back once
// to a non-streaming call.
package provider

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/boxforge/internal/models"
)

// Provider identifiers.
const (
	OpenAI     = "openai"
	OpenRouter = "openrouter"
	XAI        = "xai"
	LMStudio   = "lmstudio"
	Anthropic  = "anthropic"
	Gemini     = "gemini"
)

// DefaultTimeout bounds a whole generation, stream included.
const DefaultTimeout = 5 * time.Minute

// Request is one provider-agnostic generation.
type Request struct {
	Model        string
	SystemPrompt string
	Prompt       string
	Temperature  float64
	MaxTokens    int
	Stream       bool
}

// Result is the outcome of a generation. Usage is nil when the vendor did
// not report token accounting.
type Result struct {
	Code  string
	Usage *models.Usage
}

// ChunkFunc receives streamed text deltas in order.
type ChunkFunc func(text string)

// Adapter is one vendor backend.
type Adapter interface {
	ID() string
	// RequiresKey reports whether the backend needs a secret key.
	RequiresKey() bool
	Generate(ctx context.Context, req Request, secretKey string, onChunk ChunkFunc) (*Result, error)
}

// Config is per-provider transport configuration.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Headers           map[string]string
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Config) baseURL(def string) string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return def
}

// streamFunc runs a streaming call, forwarding deltas to onChunk.
type streamFunc func(ctx context.Context, onChunk ChunkFunc) (*Result, error)

// onceFunc runs a non-streaming call.
type onceFunc func(ctx context.Context) (*Result, error)

// run applies the shared adapter contract around the vendor calls.
func run(ctx context.Context, logger *zap.Logger, id string, req Request, onChunk ChunkFunc, stream streamFunc, once onceFunc) (*Result, error) {
	start := time.Now()
	var (
		res    *Result
		err    error
		chunks int
	)

	if onChunk != nil && req.Stream {
		res, err = stream(ctx, func(text string) {
			if text == "" {
				return
			}
			chunks++
			onChunk(text)
		})
		if err == nil && chunks == 0 && strings.TrimSpace(res.Code) == "" {
			logger.Info("stream returned no text, retrying without streaming",
				zap.String("provider", id), zap.String("model", req.Model))
			res, err = once(ctx)
		}
	} else {
		res, err = once(ctx)
	}

	if err != nil {
		logger.Warn("generation failed",
			zap.String("provider", id),
			zap.String("model", req.Model),
			zap.Duration("duration", time.Since(start)),
			zap.String("kind", string(KindOf(err))),
		)
		return nil, err
	}
	res.Code = StripFence(res.Code)
	if res.Code == "" {
		return nil, &Error{Kind: KindEmptyResponse, Provider: id, Model: req.Model}
	}

	fields := []zap.Field{
		zap.String("provider", id),
		zap.String("model", req.Model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("chunks", chunks),
		zap.Int("bytes", len(res.Code)),
	}
	if res.Usage != nil {
		fields = append(fields, zap.Int("input_tokens", res.Usage.InputTokens), zap.Int("output_tokens", res.Usage.OutputTokens))
	}
	logger.Info("generation complete", fields...)
	return res, nil
}

// checkKey rejects a missing credential before any network call.
func checkKey(logger *zap.Logger, a Adapter, req Request, secretKey string) error {
	logger.Debug("generation requested",
		zap.String("provider", a.ID()),
		zap.String("model", req.Model),
		zap.Bool("stream", req.Stream),
		zap.Bool("key_present", secretKey != ""),
	)
	if a.RequiresKey() && secretKey == "" {
		return &Error{Kind: KindMissingCredential, Provider: a.ID(), Model: req.Model}
	}
	return nil
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
