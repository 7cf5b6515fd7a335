package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/example/boxforge/internal/models"
)

// Default endpoints of the OpenAI-compatible backends.
const (
	OpenAIBaseURL     = "https://api.openai.com/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	XAIBaseURL        = "https://api.x.ai/v1"
	LMStudioBaseURL   = "http://localhost:1234/v1"
)

// OpenAICompatible speaks the chat completions wire format shared by
// OpenAI, OpenRouter, xAI and local servers such as LM Studio.
type OpenAICompatible struct {
	id         string
	baseURL    string
	needsKey   bool
	headers    map[string]string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Adapter = (*OpenAICompatible)(nil)

// NewOpenAICompatible creates an adapter named id posting to baseURL.
// Local servers pass needsKey=false.
func NewOpenAICompatible(id, defaultBaseURL string, needsKey bool, cfg Config, logger *zap.Logger) *OpenAICompatible {
	return &OpenAICompatible{
		id:         id,
		baseURL:    cfg.baseURL(defaultBaseURL),
		needsKey:   needsKey,
		headers:    cfg.Headers,
		httpClient: &http.Client{Timeout: cfg.timeout()},
		logger:     orNop(logger).Named(id),
	}
}

func (a *OpenAICompatible) ID() string        { return a.id }
func (a *OpenAICompatible) RequiresKey() bool { return a.needsKey }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatRequest struct {
	Model         string             `json:"model"`
	Messages      []chatMessage      `json:"messages"`
	Temperature   float64            `json:"temperature"`
	MaxTokens     int                `json:"max_tokens,omitempty"`
	Stream        bool               `json:"stream"`
	StreamOptions *chatStreamOptions `json:"stream_options,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message,omitempty"`
		Delta *struct {
			Content string `json:"content"`
		} `json:"delta,omitempty"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
	Error *struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
	} `json:"error,omitempty"`
}

func (u *chatUsage) toModel() *models.Usage {
	if u == nil {
		return nil
	}
	return &models.Usage{InputTokens: u.PromptTokens, OutputTokens: u.CompletionTokens}
}

// Generate implements Adapter.
func (a *OpenAICompatible) Generate(ctx context.Context, req Request, secretKey string, onChunk ChunkFunc) (*Result, error) {
	if err := checkKey(a.logger, a, req, secretKey); err != nil {
		return nil, err
	}
	headers := map[string]string{}
	for k, v := range a.headers {
		headers[k] = v
	}
	if secretKey != "" {
		headers["Authorization"] = "Bearer " + secretKey
	}

	build := func(stream bool) chatRequest {
		body := chatRequest{
			Model: req.Model,
			Messages: []chatMessage{
				{Role: "system", Content: req.SystemPrompt},
				{Role: "user", Content: req.Prompt},
			},
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
			Stream:      stream,
		}
		if stream {
			body.StreamOptions = &chatStreamOptions{IncludeUsage: true}
		}
		return body
	}
	url := a.baseURL + "/chat/completions"

	stream := func(ctx context.Context, onChunk ChunkFunc) (*Result, error) {
		streamHeaders := map[string]string{"Accept": "text/event-stream"}
		for k, v := range headers {
			streamHeaders[k] = v
		}
		resp, err := postJSON(ctx, a.httpClient, a.id, req.Model, url, streamHeaders, build(true))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var code strings.Builder
		var usage *models.Usage
		err = readEvents(ctx, resp.Body, func(data []byte) error {
			var chunk chatResponse
			if err := json.Unmarshal(data, &chunk); err != nil {
				a.logger.Debug("dropping malformed stream record", zap.Error(err))
				return nil
			}
			if chunk.Error != nil {
				return &Error{
					Kind:     classify(0, chunk.Error.Message, chunk.Error.Type),
					Provider: a.id,
					Model:    req.Model,
					Message:  chunk.Error.Message,
				}
			}
			if chunk.Usage != nil {
				usage = chunk.Usage.toModel()
			}
			for _, choice := range chunk.Choices {
				if choice.FinishReason == "content_filter" {
					return &Error{Kind: KindContentPolicy, Provider: a.id, Model: req.Model}
				}
				if choice.Delta != nil && choice.Delta.Content != "" {
					code.WriteString(choice.Delta.Content)
					onChunk(choice.Delta.Content)
				}
			}
			return nil
		})
		if err != nil {
			var pe *Error
			if errors.As(err, &pe) {
				return nil, err
			}
			return nil, transportError(a.id, req.Model, err)
		}
		return &Result{Code: code.String(), Usage: usage}, nil
	}

	once := func(ctx context.Context) (*Result, error) {
		resp, err := postJSON(ctx, a.httpClient, a.id, req.Model, url, headers, build(false))
		if err != nil {
			return nil, err
		}
		var out chatResponse
		if err := decodeBody(a.id, req.Model, resp, &out); err != nil {
			return nil, err
		}
		var code strings.Builder
		for _, choice := range out.Choices {
			if choice.FinishReason == "content_filter" {
				return nil, &Error{Kind: KindContentPolicy, Provider: a.id, Model: req.Model}
			}
			if choice.Message != nil {
				code.WriteString(choice.Message.Content)
			}
		}
		return &Result{Code: code.String(), Usage: out.Usage.toModel()}, nil
	}

	return run(ctx, a.logger, a.id, req, onChunk, stream, once)
}
