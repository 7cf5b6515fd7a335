package models

import "time"

// GenerationVersion is one immutable generated artifact for a target.
type GenerationVersion struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
}

// GenerationResult is the version history of one target. History holds
// superseded versions, most recent first.
type GenerationResult struct {
	TargetID string              `json:"targetId"`
	Current  *GenerationVersion  `json:"current,omitempty"`
	History  []GenerationVersion `json:"history"`
}

// Size returns the total number of versions held, current included.
func (r *GenerationResult) Size() int {
	if r == nil {
		return 0
	}
	n := len(r.History)
	if r.Current != nil {
		n++
	}
	return n
}

// Clone returns a deep copy of the result.
func (r *GenerationResult) Clone() *GenerationResult {
	if r == nil {
		return nil
	}
	out := &GenerationResult{TargetID: r.TargetID}
	if r.Current != nil {
		current := *r.Current
		out.Current = &current
	}
	out.History = append([]GenerationVersion(nil), r.History...)
	return out
}

// Usage is vendor token accounting, present only when the vendor reports it.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}
