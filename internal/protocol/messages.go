// Package protocol defines the messages exchanged between the UI layer and
// the host that talks to AI providers.
//
// Outbound messages flow UI -> host, inbound messages host -> UI. Both
// directions are closed sums: the unexported marker methods keep other
// packages from adding variants, and Dispatch matches every variant.
package protocol

import (
	"encoding/json"

	"github.com/example/boxforge/internal/models"
)

// Message type discriminants.
const (
	TypeReady       = "ready"
	TypeGenerate    = "generate"
	TypeGetAIConfig = "getAIConfig"
	TypeSetAIConfig = "setAIConfig"

	TypeGenerateChunk    = "generateChunk"
	TypeGenerateComplete = "generateComplete"
	TypeGenerateError    = "generateError"
	TypeAIConfig         = "aiConfig"
	TypeError            = "error"
)

// Outbound is a message sent by the UI to the host.
type Outbound interface {
	Type() string
	isOutbound()
}

// Inbound is a message sent by the host to the UI.
type Inbound interface {
	Type() string
	isInbound()
}

// --- outbound ---

// Ready announces the UI can receive messages.
type Ready struct{}

// GeneratePayload is the provider-agnostic request. Optional fields are
// nil when the UI leaves them to the configured defaults.
type GeneratePayload struct {
	Prompt       string   `json:"prompt"`
	SystemPrompt string   `json:"systemPrompt"`
	Model        string   `json:"model"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"maxTokens,omitempty"`
	Stream       *bool    `json:"stream,omitempty"`
}

// Generate asks the host to run one generation tagged with ID.
type Generate struct {
	ID      string
	Payload GeneratePayload
}

// GetAIConfig asks the host for the current AI configuration.
type GetAIConfig struct{}

// SetAIConfig replaces the AI configuration. Payload.APIKey, when set, is
// handed to the secret store and never echoed back.
type SetAIConfig struct {
	Payload models.AIConfig
}

// Passthrough carries file and project persistence messages the host
// forwards untouched.
type Passthrough struct {
	Kind string
	Raw  json.RawMessage
}

func (Ready) Type() string         { return TypeReady }
func (Generate) Type() string      { return TypeGenerate }
func (GetAIConfig) Type() string   { return TypeGetAIConfig }
func (SetAIConfig) Type() string   { return TypeSetAIConfig }
func (p Passthrough) Type() string { return p.Kind }

func (Ready) isOutbound()       {}
func (Generate) isOutbound()    {}
func (GetAIConfig) isOutbound() {}
func (SetAIConfig) isOutbound() {}
func (Passthrough) isOutbound() {}

// --- inbound ---

// GenerateChunk is one streamed text delta.
type GenerateChunk struct {
	ID   string
	Text string
}

// GenerateComplete carries the final code. Usage is nil when the vendor
// did not report token accounting.
type GenerateComplete struct {
	ID    string
	Code  string
	Usage *models.Usage
}

// GenerateError reports a failed generation as a user-facing message.
type GenerateError struct {
	ID      string
	Message string
}

// AIConfigMessage reports the AI configuration. The key is never included;
// HasAPIKey says whether one is stored.
type AIConfigMessage struct {
	Config models.AIConfig
}

// Error reports a host failure not tied to a generation.
type Error struct {
	Message string
}

func (GenerateChunk) Type() string    { return TypeGenerateChunk }
func (GenerateComplete) Type() string { return TypeGenerateComplete }
func (GenerateError) Type() string    { return TypeGenerateError }
func (AIConfigMessage) Type() string  { return TypeAIConfig }
func (Error) Type() string            { return TypeError }

func (GenerateChunk) isInbound()    {}
func (GenerateComplete) isInbound() {}
func (GenerateError) isInbound()    {}
func (AIConfigMessage) isInbound()  {}
func (Error) isInbound()            {}

// RequestID returns the request id carried by a generation message.
func RequestID(m Inbound) (string, bool) {
	switch m := m.(type) {
	case GenerateChunk:
		return m.ID, true
	case GenerateComplete:
		return m.ID, true
	case GenerateError:
		return m.ID, true
	}
	return "", false
}
