package primary

import (
	"context"

	"github.com/example/boxforge/internal/models"
)

// GenerationService defines the primary port for generating code.
type GenerationService interface {
	// GenerateBox generates code for one box.
	GenerateBox(ctx context.Context, boxID string, listener GenerationListener) (*GenerationOutcome, error)

	// GeneratePage generates code for a whole page. One request serves
	// every root box of the page and its result is recorded on each.
	GeneratePage(ctx context.Context, pageRef string, listener GenerationListener) (*GenerationOutcome, error)

	// ListVersions returns the version history of a target.
	ListVersions(ctx context.Context, targetID string) (*models.GenerationResult, error)

	// Revert makes a history version current again.
	Revert(ctx context.Context, targetID, versionID string) error
}

// GenerationEventType distinguishes generation events.
type GenerationEventType string

const (
	EventStarted  GenerationEventType = "started"
	EventChunk    GenerationEventType = "chunk"
	EventComplete GenerationEventType = "complete"
	EventFailed   GenerationEventType = "failed"
)

// GenerationEvent reports progress of one request to its targets.
type GenerationEvent struct {
	Type      GenerationEventType
	RequestID string
	Targets   []string
	Text      string                     // chunk delta
	Versions  []models.GenerationVersion // complete, one per target
	Usage     *models.Usage              // complete, when reported
	Message   string                     // failed, user-facing
}

// GenerationListener observes generation events. It is called from the
// generation event loop and must not block.
type GenerationListener func(GenerationEvent)

// GenerationOutcome is the final state of a request.
type GenerationOutcome struct {
	RequestID string
	Targets   []string
	Versions  []models.GenerationVersion
	Usage     *models.Usage
	Failed    bool
	Message   string
}
