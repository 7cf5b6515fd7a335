package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/example/boxforge/internal/models"
)

// GeminiAdapter calls the Gemini API through the genai SDK.
type GeminiAdapter struct {
	cfg    Config
	logger *zap.Logger
}

var _ Adapter = (*GeminiAdapter)(nil)

// NewGemini creates the Gemini adapter. The SDK client is built per call
// because the key is only known at generation time.
func NewGemini(cfg Config, logger *zap.Logger) *GeminiAdapter {
	return &GeminiAdapter{cfg: cfg, logger: orNop(logger).Named(Gemini)}
}

func (a *GeminiAdapter) ID() string        { return Gemini }
func (a *GeminiAdapter) RequiresKey() bool { return true }

// Generate implements Adapter.
func (a *GeminiAdapter) Generate(ctx context.Context, req Request, secretKey string, onChunk ChunkFunc) (*Result, error) {
	if err := checkKey(a.logger, a, req, secretKey); err != nil {
		return nil, err
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     secretKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: a.cfg.timeout()},
	}
	if a.cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: a.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, transportError(Gemini, req.Model, err)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	stream := func(ctx context.Context, onChunk ChunkFunc) (*Result, error) {
		var code strings.Builder
		var usage *models.Usage
		for resp, err := range client.Models.GenerateContentStream(ctx, req.Model, contents, genCfg) {
			if err != nil {
				return nil, classifyGeminiError(req.Model, err)
			}
			if err := blocked(resp, req.Model); err != nil {
				return nil, err
			}
			if text := resp.Text(); text != "" {
				code.WriteString(text)
				onChunk(text)
			}
			if u := geminiUsage(resp); u != nil {
				usage = u
			}
		}
		return &Result{Code: code.String(), Usage: usage}, nil
	}

	once := func(ctx context.Context) (*Result, error) {
		resp, err := client.Models.GenerateContent(ctx, req.Model, contents, genCfg)
		if err != nil {
			return nil, classifyGeminiError(req.Model, err)
		}
		if err := blocked(resp, req.Model); err != nil {
			return nil, err
		}
		return &Result{Code: resp.Text(), Usage: geminiUsage(resp)}, nil
	}

	return run(ctx, a.logger, Gemini, req, onChunk, stream, once)
}

// classifyGeminiError maps SDK errors onto the taxonomy. APIError carries
// the HTTP status; anything else is a transport failure.
func classifyGeminiError(model string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Kind:     classify(apiErr.Code, apiErr.Message, apiErr.Status),
			Provider: Gemini,
			Model:    model,
			Status:   apiErr.Code,
			Message:  apiErr.Message,
		}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classifyGeminiError(model, *apiErrPtr)
	}
	return transportError(Gemini, model, err)
}

// blocked reports a prompt or candidate stopped by a safety filter.
func blocked(resp *genai.GenerateContentResponse, model string) error {
	if resp == nil {
		return nil
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return &Error{Kind: KindContentPolicy, Provider: Gemini, Model: model,
			Message: string(resp.PromptFeedback.BlockReason)}
	}
	for _, c := range resp.Candidates {
		if c.FinishReason == genai.FinishReasonSafety || c.FinishReason == genai.FinishReasonProhibitedContent {
			return &Error{Kind: KindContentPolicy, Provider: Gemini, Model: model,
				Message: string(c.FinishReason)}
		}
	}
	return nil
}

func geminiUsage(resp *genai.GenerateContentResponse) *models.Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &models.Usage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
	}
}
