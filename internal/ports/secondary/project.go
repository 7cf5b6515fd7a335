package secondary

import (
	"context"

	"github.com/example/boxforge/internal/models"
)

// ProjectRepository persists the whole editable project as one snapshot.
type ProjectRepository interface {
	// Load returns the stored snapshot, or an empty snapshot with the
	// default context when nothing has been saved yet.
	Load(ctx context.Context) (*ProjectSnapshot, error)

	// Save replaces the stored snapshot atomically.
	Save(ctx context.Context, snapshot *ProjectSnapshot) error
}

// ProjectSnapshot is the persisted form of a project. Boxes are in tree
// pre-order; pages and components keep their creation order.
type ProjectSnapshot struct {
	Pages      []*models.Page
	Boxes      []*models.Box
	Components []*models.SharedComponent
	Context    models.ProjectContext
}

// VersionRepository persists generation history per target.
type VersionRepository interface {
	// Get returns the history of one target, or nil when it has none.
	Get(ctx context.Context, targetID string) (*models.GenerationResult, error)

	// List returns every stored history.
	List(ctx context.Context) ([]*models.GenerationResult, error)

	// Save replaces the stored history of result.TargetID.
	Save(ctx context.Context, result *models.GenerationResult) error

	// Delete drops the history of each target.
	Delete(ctx context.Context, targetIDs ...string) error
}
