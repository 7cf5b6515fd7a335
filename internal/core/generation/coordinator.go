// Package generation tracks per-target generation state and version history.
// This is part of the Functional Core - no I/O, only in-memory state.
//
// A target moves idle -> generating -> complete|failed. Starting a new
// generation for a target overwrites its buffer; there is no cancelling
// state. Messages from the transport carry only a request id, so the
// coordinator also keeps the request -> targets routing table.
package generation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/boxforge/internal/models"
)

// Status is the externally visible state of one target.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// Coordinator holds generation state for every target.
type Coordinator struct {
	generating map[string]bool
	buffers    map[string]*strings.Builder
	results    map[string]*models.GenerationResult
	status     map[string]Status
	failures   map[string]string
	routes     map[string]Route

	now   func() time.Time
	newID func() string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the version timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithIDFunc overrides version identifier generation.
func WithIDFunc(f func() string) Option {
	return func(c *Coordinator) { c.newID = f }
}

// New creates an empty coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		generating: make(map[string]bool),
		buffers:    make(map[string]*strings.Builder),
		results:    make(map[string]*models.GenerationResult),
		status:     make(map[string]Status),
		failures:   make(map[string]string),
		routes:     make(map[string]Route),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadResult installs persisted history for a target.
func (c *Coordinator) LoadResult(r *models.GenerationResult) {
	if r == nil || r.TargetID == "" {
		return
	}
	c.results[r.TargetID] = r.Clone()
	if r.Current != nil {
		c.status[r.TargetID] = StatusComplete
	}
}

// Start marks target as generating and clears its buffer.
func (c *Coordinator) Start(targetID string) {
	c.generating[targetID] = true
	c.buffers[targetID] = &strings.Builder{}
	c.status[targetID] = StatusGenerating
	delete(c.failures, targetID)
}

// AppendChunk appends text to the target's buffer. No-op unless the target
// is generating.
func (c *Coordinator) AppendChunk(targetID, text string) bool {
	if !c.generating[targetID] {
		return false
	}
	c.buffers[targetID].WriteString(text)
	return true
}

// Complete records a new current version for target, pushing the previous
// current version onto the history stack.
func (c *Coordinator) Complete(targetID, code, prompt, provider, model string) models.GenerationVersion {
	v := models.GenerationVersion{
		ID:        c.newID(),
		Code:      code,
		Prompt:    prompt,
		CreatedAt: c.now(),
		Provider:  provider,
		Model:     model,
	}
	r, ok := c.results[targetID]
	if !ok {
		r = &models.GenerationResult{TargetID: targetID}
		c.results[targetID] = r
	}
	if r.Current != nil {
		r.History = append([]models.GenerationVersion{*r.Current}, r.History...)
	}
	r.Current = &v

	c.finish(targetID)
	c.status[targetID] = StatusComplete
	return v
}

// Fail clears the in-flight state without creating a version.
func (c *Coordinator) Fail(targetID, message string) {
	c.finish(targetID)
	c.status[targetID] = StatusFailed
	c.failures[targetID] = message
}

func (c *Coordinator) finish(targetID string) {
	delete(c.generating, targetID)
	delete(c.buffers, targetID)
}

// Revert makes versionID current. The previous current version takes the
// history slot versionID vacated, so no version is created or destroyed.
func (c *Coordinator) Revert(targetID, versionID string) bool {
	r, ok := c.results[targetID]
	if !ok || r.Current == nil {
		return false
	}
	for i := range r.History {
		if r.History[i].ID == versionID {
			prev := *r.Current
			next := r.History[i]
			r.History[i] = prev
			r.Current = &next
			return true
		}
	}
	return false
}

// Forget drops all state for a target whose box no longer exists.
func (c *Coordinator) Forget(targetID string) {
	c.finish(targetID)
	delete(c.results, targetID)
	delete(c.status, targetID)
	delete(c.failures, targetID)
}

// IsGenerating reports whether target has an in-flight generation.
func (c *Coordinator) IsGenerating(targetID string) bool {
	return c.generating[targetID]
}

// Buffer returns the streamed text received so far for target.
func (c *Coordinator) Buffer(targetID string) (string, bool) {
	b, ok := c.buffers[targetID]
	if !ok {
		return "", false
	}
	return b.String(), true
}

// Result returns a copy of the target's version history.
func (c *Coordinator) Result(targetID string) (*models.GenerationResult, bool) {
	r, ok := c.results[targetID]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Status returns the target's state.
func (c *Coordinator) Status(targetID string) Status {
	if s, ok := c.status[targetID]; ok {
		return s
	}
	return StatusIdle
}

// Failure returns the last failure message for target.
func (c *Coordinator) Failure(targetID string) string {
	return c.failures[targetID]
}

// Generating returns the targets with an in-flight generation.
func (c *Coordinator) Generating() []string {
	out := make([]string, 0, len(c.generating))
	for id := range c.generating {
		out = append(out, id)
	}
	return out
}
