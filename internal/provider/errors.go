package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the closed taxonomy of generation failures.
type Kind string

const (
	KindTransport         Kind = "transport"
	KindAuth              Kind = "auth"
	KindQuota             Kind = "quota"
	KindContentPolicy     Kind = "content_policy"
	KindModelUnavailable  Kind = "model_unavailable"
	KindEmptyResponse     Kind = "empty_response"
	KindMissingCredential Kind = "missing_credential"
)

// Error is a classified provider failure. Message holds the vendor's own
// text when it could be parsed.
type Error struct {
	Kind     Kind
	Provider string
	Model    string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the taxonomy member of err, or KindTransport for
// unclassified errors. Returns "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindTransport
}

// UserMessage turns any generation error into the single string shown to
// the user. Raw vendor text only appears for transport failures.
func UserMessage(err error) string {
	var pe *Error
	if !errors.As(err, &pe) {
		return fmt.Sprintf("Generation failed: %v", err)
	}
	switch pe.Kind {
	case KindMissingCredential:
		return fmt.Sprintf("No API key is stored for %s. Set one with `boxforge config key %s`.", pe.Provider, pe.Provider)
	case KindAuth:
		return fmt.Sprintf("%s rejected the API key. Check the key configured for %s.", pe.Provider, pe.Provider)
	case KindQuota:
		return fmt.Sprintf("%s rate limit or quota reached. Try again later.", pe.Provider)
	case KindContentPolicy:
		return fmt.Sprintf("%s declined the request under its content policy. Try rephrasing the spec.", pe.Provider)
	case KindModelUnavailable:
		if pe.Model == "" {
			return fmt.Sprintf("Provider %s is not available. Pick a different provider.", pe.Provider)
		}
		return fmt.Sprintf("Model %s is not available on %s. Pick a different model.", pe.Model, pe.Provider)
	case KindEmptyResponse:
		return fmt.Sprintf("%s returned an empty response.", pe.Provider)
	default:
		if pe.Message != "" {
			return fmt.Sprintf("Request to %s failed: %s", pe.Provider, pe.Message)
		}
		if pe.Status != 0 {
			return fmt.Sprintf("Request to %s failed with status %d.", pe.Provider, pe.Status)
		}
		return fmt.Sprintf("Request to %s failed.", pe.Provider)
	}
}

// vendorError is the error envelope shared by the OpenAI-compatible and
// Anthropic APIs: {"error": {"type"|"code"|"status", "message"}}.
type vendorError struct {
	Error struct {
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
		Status  string          `json:"status"`
		Message string          `json:"message"`
	} `json:"error"`
}

// parseVendorError extracts the message and type tag of an error body.
func parseVendorError(body []byte) (message, tag string) {
	var ve vendorError
	if err := json.Unmarshal(body, &ve); err != nil || ve.Error.Message == "" {
		return "", ""
	}
	tag = ve.Error.Type
	if tag == "" {
		tag = ve.Error.Status
	}
	if tag == "" && len(ve.Error.Code) > 0 {
		var code string
		if json.Unmarshal(ve.Error.Code, &code) == nil {
			tag = code
		}
	}
	return ve.Error.Message, tag
}

// classify maps an HTTP status plus vendor message and tag onto a Kind.
func classify(status int, message, tag string) Kind {
	lowTag := strings.ToLower(tag)
	low := strings.ToLower(message)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden,
		strings.Contains(lowTag, "authentication"), strings.Contains(lowTag, "permission"),
		strings.Contains(lowTag, "invalid_api_key"), strings.Contains(lowTag, "unauthenticated"),
		strings.Contains(low, "api key not valid"), strings.Contains(low, "invalid api key"),
		strings.Contains(low, "incorrect api key"):
		return KindAuth
	case status == http.StatusTooManyRequests,
		strings.Contains(lowTag, "rate_limit"), strings.Contains(lowTag, "insufficient_quota"),
		strings.Contains(lowTag, "resource_exhausted"),
		strings.Contains(low, "rate limit"), strings.Contains(low, "quota"):
		return KindQuota
	case strings.Contains(lowTag, "content_policy"), strings.Contains(lowTag, "content_filter"),
		strings.Contains(low, "content policy"), strings.Contains(low, "safety"), strings.Contains(low, "flagged"):
		return KindContentPolicy
	case status == http.StatusNotFound, strings.Contains(lowTag, "not_found"), strings.Contains(lowTag, "model_not_found"),
		strings.Contains(low, "model") && (strings.Contains(low, "not found") || strings.Contains(low, "does not exist") ||
			strings.Contains(low, "not supported") || strings.Contains(low, "invalid model")):
		return KindModelUnavailable
	}
	return KindTransport
}

// statusError builds a classified error from a non-2xx response body.
func statusError(provider, model string, status int, body []byte) *Error {
	message, tag := parseVendorError(body)
	return &Error{
		Kind:     classify(status, message, tag),
		Provider: provider,
		Model:    model,
		Status:   status,
		Message:  message,
	}
}

// transportError wraps a network failure.
func transportError(provider, model string, err error) *Error {
	return &Error{Kind: KindTransport, Provider: provider, Model: model, Err: err}
}
