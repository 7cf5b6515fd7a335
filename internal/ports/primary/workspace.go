package primary

import (
	"context"

	"github.com/example/boxforge/internal/models"
)

// WorkspaceService defines the primary port for editing a project: pages,
// boxes, shared components and the project context. Every mutating call
// keeps pages, boxes and shared components consistent with each other and
// persists the result.
type WorkspaceService interface {
	// AddPage creates a page.
	AddPage(ctx context.Context, req AddPageRequest) (*models.Page, error)

	// ListPages lists pages in creation order.
	ListPages(ctx context.Context) ([]*models.Page, error)

	// RenamePage renames a page found by id or name.
	RenamePage(ctx context.Context, pageRef, name string) error

	// SetPageRoute changes a page's route.
	SetPageRoute(ctx context.Context, pageRef, route string) error

	// SetPageDirection sets the flow direction of a page's root boxes.
	SetPageDirection(ctx context.Context, pageRef string, direction models.Direction) error

	// DeletePage deletes a page and every box under it.
	DeletePage(ctx context.Context, pageRef string) error

	// AddBox adds a box to a page, either as a root or under a parent box
	// that belongs to the page.
	AddBox(ctx context.Context, req AddBoxRequest) (*models.Box, error)

	// DeleteBox deletes a box with its descendants and their versions.
	DeleteBox(ctx context.Context, boxID string) error

	// MoveBox re-parents or reorders a box.
	MoveBox(ctx context.Context, req MoveBoxRequest) error

	// DuplicateBox copies a box (without children) next to the original.
	DuplicateBox(ctx context.Context, boxID string) (*models.Box, error)

	// ResizeBox sets a box's size, clamped to the minimum.
	ResizeBox(ctx context.Context, boxID string, width, height float64) error

	// PlaceBox sets a root box's canvas position.
	PlaceBox(ctx context.Context, boxID string, x, y float64) error

	// RenameBox changes a box label.
	RenameBox(ctx context.Context, boxID, label string) error

	// UpdateBoxSpec edits a box's spec, mirrored to its shared component.
	UpdateBoxSpec(ctx context.Context, req UpdateSpecRequest) (*models.Spec, error)

	// UpdateBoxLayout edits direction, gap, padding and flex values.
	UpdateBoxLayout(ctx context.Context, req UpdateLayoutRequest) error

	// GetTree returns the boxes of one page, or of every page when
	// pageRef is empty.
	GetTree(ctx context.Context, pageRef string) (*TreeView, error)

	// CreateSharedComponent promotes a box's spec to a shared component.
	CreateSharedComponent(ctx context.Context, name, boxID string) (*models.SharedComponent, error)

	// AttachToComponent makes a box an instance of a shared component.
	AttachToComponent(ctx context.Context, componentRef, boxID string) error

	// DetachFromComponent turns an instance back into a plain box.
	DetachFromComponent(ctx context.Context, boxID string) error

	// RenameSharedComponent renames a component; names are unique.
	RenameSharedComponent(ctx context.Context, componentRef, name string) error

	// DeleteSharedComponent deletes a component and detaches its instances.
	DeleteSharedComponent(ctx context.Context, componentRef string) error

	// ListSharedComponents lists components in creation order.
	ListSharedComponents(ctx context.Context) ([]*models.SharedComponent, error)

	// GetContext returns the project context.
	GetContext(ctx context.Context) (*models.ProjectContext, error)

	// UpdateContext edits the project context.
	UpdateContext(ctx context.Context, req UpdateContextRequest) (*models.ProjectContext, error)

	// SystemPrompt renders the system prompt for the project context.
	SystemPrompt(ctx context.Context) (string, error)

	// PagePrompt renders the user prompt for a whole page.
	PagePrompt(ctx context.Context, pageRef string) (string, error)

	// BoxPrompt renders the user prompt for one box.
	BoxPrompt(ctx context.Context, boxID string) (string, error)
}

// AddPageRequest contains parameters for creating a page.
type AddPageRequest struct {
	Name  string
	Route string // Optional
}

// AddBoxRequest contains parameters for adding a box.
type AddBoxRequest struct {
	PageRef  string
	ParentID string // Optional - empty adds a root box
	Label    string // Optional - empty keeps the generated label
}

// MoveBoxRequest contains parameters for moving a box. An empty ParentID
// moves the box to its page's root group.
type MoveBoxRequest struct {
	BoxID    string
	ParentID string
	Index    int
}

// UpdateSpecRequest edits a spec. Nil fields are left unchanged; States
// entries replace the description of an existing state or append one.
type UpdateSpecRequest struct {
	BoxID       string
	Intent      *string
	States      []models.StateDescription
	DataShape   *string
	Behavior    *string
	Refinements []string // Appended
	Clear       bool     // Drop the whole spec before applying the rest
}

// UpdateLayoutRequest edits layout fields. Nil fields are left unchanged.
type UpdateLayoutRequest struct {
	BoxID      string
	Direction  *models.Direction
	Gap        *float64
	Padding    *float64
	FlexGrow   *float64
	FlexBasis  *float64
	ClearBasis bool
}

// UpdateContextRequest edits the project context. Nil fields are left
// unchanged; Constraints and Tokens are appended.
type UpdateContextRequest struct {
	Framework        *string
	Language         *string
	UILibrary        *string
	StyleTone        *string
	Notes            *string
	NamingConvention *string
	Constraints      []string
	Tokens           map[string][]models.Token // keyed by colors, spacing, typography, radii
}

// TreeView is a read-only view of pages and their boxes.
type TreeView struct {
	Pages      []*models.Page
	Boxes      map[string]*models.Box
	Components map[string]*models.SharedComponent
}
