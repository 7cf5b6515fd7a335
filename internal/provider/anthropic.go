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

// AnthropicBaseURL is the default Messages API endpoint root.
const AnthropicBaseURL = "https://api.anthropic.com"

const anthropicVersion = "2023-06-01"

// AnthropicAdapter speaks the Anthropic Messages API.
type AnthropicAdapter struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Adapter = (*AnthropicAdapter)(nil)

// NewAnthropic creates the Anthropic adapter.
func NewAnthropic(cfg Config, logger *zap.Logger) *AnthropicAdapter {
	return &AnthropicAdapter{
		baseURL:    cfg.baseURL(AnthropicBaseURL),
		httpClient: &http.Client{Timeout: cfg.timeout()},
		logger:     orNop(logger).Named(Anthropic),
	}
}

func (a *AnthropicAdapter) ID() string        { return Anthropic }
func (a *AnthropicAdapter) RequiresKey() bool { return true }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Stream      bool               `json:"stream,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string          `json:"stop_reason"`
	Usage      *anthropicUsage `json:"usage"`
}

// anthropicEvent covers every streamed event type we read.
type anthropicEvent struct {
	Type    string `json:"type"`
	Message *struct {
		Usage *anthropicUsage `json:"usage"`
	} `json:"message,omitempty"`
	Delta *struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta,omitempty"`
	Usage *anthropicUsage `json:"usage,omitempty"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Anthropic requires max_tokens.
const anthropicDefaultMaxTokens = 4096

// Generate implements Adapter.
func (a *AnthropicAdapter) Generate(ctx context.Context, req Request, secretKey string, onChunk ChunkFunc) (*Result, error) {
	if err := checkKey(a.logger, a, req, secretKey); err != nil {
		return nil, err
	}
	headers := map[string]string{
		"x-api-key":         secretKey,
		"anthropic-version": anthropicVersion,
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	build := func(stream bool) anthropicRequest {
		return anthropicRequest{
			Model:       req.Model,
			System:      req.SystemPrompt,
			Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
			MaxTokens:   maxTokens,
			Temperature: req.Temperature,
			Stream:      stream,
		}
	}
	url := a.baseURL + "/v1/messages"

	stream := func(ctx context.Context, onChunk ChunkFunc) (*Result, error) {
		resp, err := postJSON(ctx, a.httpClient, Anthropic, req.Model, url, headers, build(true))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var code strings.Builder
		var usage *models.Usage
		err = readEvents(ctx, resp.Body, func(data []byte) error {
			var evt anthropicEvent
			if err := json.Unmarshal(data, &evt); err != nil {
				a.logger.Debug("dropping malformed stream record", zap.Error(err))
				return nil
			}
			switch evt.Type {
			case "message_start":
				if evt.Message != nil && evt.Message.Usage != nil {
					usage = &models.Usage{InputTokens: evt.Message.Usage.InputTokens, OutputTokens: evt.Message.Usage.OutputTokens}
				}
			case "content_block_delta":
				if evt.Delta != nil && evt.Delta.Text != "" {
					code.WriteString(evt.Delta.Text)
					onChunk(evt.Delta.Text)
				}
			case "message_delta":
				if evt.Delta != nil && evt.Delta.StopReason == "refusal" {
					return &Error{Kind: KindContentPolicy, Provider: Anthropic, Model: req.Model}
				}
				if evt.Usage != nil {
					if usage == nil {
						usage = &models.Usage{}
					}
					usage.OutputTokens = evt.Usage.OutputTokens
				}
			case "message_stop":
				return errStopStream
			case "error":
				if evt.Error != nil {
					return &Error{
						Kind:     classify(0, evt.Error.Message, evt.Error.Type),
						Provider: Anthropic,
						Model:    req.Model,
						Message:  evt.Error.Message,
					}
				}
			}
			return nil
		})
		if err != nil {
			var pe *Error
			if errors.As(err, &pe) {
				return nil, err
			}
			return nil, transportError(Anthropic, req.Model, err)
		}
		return &Result{Code: code.String(), Usage: usage}, nil
	}

	once := func(ctx context.Context) (*Result, error) {
		resp, err := postJSON(ctx, a.httpClient, Anthropic, req.Model, url, headers, build(false))
		if err != nil {
			return nil, err
		}
		var out anthropicResponse
		if err := decodeBody(Anthropic, req.Model, resp, &out); err != nil {
			return nil, err
		}
		if out.StopReason == "refusal" {
			return nil, &Error{Kind: KindContentPolicy, Provider: Anthropic, Model: req.Model}
		}
		var code strings.Builder
		for _, block := range out.Content {
			if block.Type == "text" {
				code.WriteString(block.Text)
			}
		}
		res := &Result{Code: code.String()}
		if out.Usage != nil {
			res.Usage = &models.Usage{InputTokens: out.Usage.InputTokens, OutputTokens: out.Usage.OutputTokens}
		}
		return res, nil
	}

	return run(ctx, a.logger, Anthropic, req, onChunk, stream, once)
}
