package protocol

import "fmt"

// OutboundHandler handles every UI -> host variant.
type OutboundHandler interface {
	HandleReady(Ready) error
	HandleGenerate(Generate) error
	HandleGetAIConfig(GetAIConfig) error
	HandleSetAIConfig(SetAIConfig) error
	HandlePassthrough(Passthrough) error
}

// InboundHandler handles every host -> UI variant.
type InboundHandler interface {
	HandleGenerateChunk(GenerateChunk)
	HandleGenerateComplete(GenerateComplete)
	HandleGenerateError(GenerateError)
	HandleAIConfig(AIConfigMessage)
	HandleError(Error)
}

// DispatchOutbound routes m to the matching handler method.
func DispatchOutbound(h OutboundHandler, m Outbound) error {
	switch m := m.(type) {
	case Ready:
		return h.HandleReady(m)
	case Generate:
		return h.HandleGenerate(m)
	case GetAIConfig:
		return h.HandleGetAIConfig(m)
	case SetAIConfig:
		return h.HandleSetAIConfig(m)
	case Passthrough:
		return h.HandlePassthrough(m)
	default:
		return fmt.Errorf("unhandled outbound message %T", m)
	}
}

// DispatchInbound routes m to the matching handler method.
func DispatchInbound(h InboundHandler, m Inbound) error {
	switch m := m.(type) {
	case GenerateChunk:
		h.HandleGenerateChunk(m)
	case GenerateComplete:
		h.HandleGenerateComplete(m)
	case GenerateError:
		h.HandleGenerateError(m)
	case AIConfigMessage:
		h.HandleAIConfig(m)
	case Error:
		h.HandleError(m)
	default:
		return fmt.Errorf("unhandled inbound message %T", m)
	}
	return nil
}

// OutboundVariants lists one zero value per outbound variant.
func OutboundVariants() []Outbound {
	return []Outbound{Ready{}, Generate{}, GetAIConfig{}, SetAIConfig{}, Passthrough{Kind: "saveProject"}}
}

// InboundVariants lists one zero value per inbound variant.
func InboundVariants() []Inbound {
	return []Inbound{GenerateChunk{}, GenerateComplete{}, GenerateError{}, AIConfigMessage{}, Error{}}
}
