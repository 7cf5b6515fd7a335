package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/example/boxforge/internal/models"
)

type envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type chunkPayload struct {
	Text string `json:"text"`
}

type completePayload struct {
	Code  string        `json:"code"`
	Usage *models.Usage `json:"usage,omitempty"`
}

type messagePayload struct {
	Message string `json:"message"`
}

// EncodeOutbound serializes a UI -> host message.
func EncodeOutbound(m Outbound) ([]byte, error) {
	switch m := m.(type) {
	case Ready:
		return encode(m.Type(), "", nil)
	case Generate:
		return encode(m.Type(), m.ID, m.Payload)
	case GetAIConfig:
		return encode(m.Type(), "", nil)
	case SetAIConfig:
		return encode(m.Type(), "", m.Payload)
	case Passthrough:
		return m.Raw, nil
	default:
		return nil, fmt.Errorf("unknown outbound message %T", m)
	}
}

// EncodeInbound serializes a host -> UI message. An AI config is always
// redacted before it is written.
func EncodeInbound(m Inbound) ([]byte, error) {
	switch m := m.(type) {
	case GenerateChunk:
		return encode(m.Type(), m.ID, chunkPayload{Text: m.Text})
	case GenerateComplete:
		return encode(m.Type(), m.ID, completePayload{Code: m.Code, Usage: m.Usage})
	case GenerateError:
		return encode(m.Type(), m.ID, messagePayload{Message: m.Message})
	case AIConfigMessage:
		return encode(m.Type(), "", m.Config.Redacted(m.Config.HasAPIKey || m.Config.APIKey != nil))
	case Error:
		return encode(m.Type(), "", messagePayload{Message: m.Message})
	default:
		return nil, fmt.Errorf("unknown inbound message %T", m)
	}
}

func encode(typ, id string, payload any) ([]byte, error) {
	env := envelope{Type: typ, ID: id}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", typ, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// DecodeOutbound parses a UI -> host message. Types the core does not know
// are returned as Passthrough.
func DecodeOutbound(data []byte) (Outbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	switch env.Type {
	case TypeReady:
		return Ready{}, nil
	case TypeGenerate:
		var p GeneratePayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		if env.ID == "" {
			return nil, fmt.Errorf("generate message has no id")
		}
		return Generate{ID: env.ID, Payload: p}, nil
	case TypeGetAIConfig:
		return GetAIConfig{}, nil
	case TypeSetAIConfig:
		var cfg models.AIConfig
		if err := decodePayload(env, &cfg); err != nil {
			return nil, err
		}
		return SetAIConfig{Payload: cfg}, nil
	case "":
		return nil, fmt.Errorf("message has no type")
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return Passthrough{Kind: env.Type, Raw: raw}, nil
	}
}

// DecodeInbound parses a host -> UI message.
func DecodeInbound(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	switch env.Type {
	case TypeGenerateChunk:
		var p chunkPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return GenerateChunk{ID: env.ID, Text: p.Text}, nil
	case TypeGenerateComplete:
		var p completePayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return GenerateComplete{ID: env.ID, Code: p.Code, Usage: p.Usage}, nil
	case TypeGenerateError:
		var p messagePayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return GenerateError{ID: env.ID, Message: p.Message}, nil
	case TypeAIConfig:
		var cfg models.AIConfig
		if err := decodePayload(env, &cfg); err != nil {
			return nil, err
		}
		return AIConfigMessage{Config: cfg.Redacted(cfg.HasAPIKey)}, nil
	case TypeError:
		var p messagePayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return Error{Message: p.Message}, nil
	default:
		return nil, fmt.Errorf("unknown inbound message type %q", env.Type)
	}
}

func decodePayload(env envelope, v any) error {
	if len(env.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	return nil
}
