package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
	"github.com/example/boxforge/internal/ports/secondary"
)

// WorkspaceServiceImpl implements the WorkspaceService interface. Each call
// loads the project, applies one Workspace operation and saves it back.
type WorkspaceServiceImpl struct {
	projects secondary.ProjectRepository
	versions secondary.VersionRepository
	newID    func() string
	logger   *zap.Logger
}

var _ primary.WorkspaceService = (*WorkspaceServiceImpl)(nil)

// NewWorkspaceService creates a new WorkspaceService with injected dependencies.
// newID may be nil to use random identifiers.
func NewWorkspaceService(
	projects secondary.ProjectRepository,
	versions secondary.VersionRepository,
	newID func() string,
	logger *zap.Logger,
) *WorkspaceServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceServiceImpl{
		projects: projects,
		versions: versions,
		newID:    newID,
		logger:   logger,
	}
}

func (s *WorkspaceServiceImpl) load(ctx context.Context) (*Workspace, error) {
	snap, err := s.projects.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return WorkspaceFromSnapshot(snap, s.newID), nil
}

// mutate runs fn on the loaded workspace and saves it when fn succeeds.
func (s *WorkspaceServiceImpl) mutate(ctx context.Context, op string, fn func(*Workspace) error) error {
	ws, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(ws); err != nil {
		return err
	}
	if err := ws.CheckConsistency(); err != nil {
		s.logger.Error("workspace inconsistent after operation", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s left the project inconsistent: %w", op, err)
	}
	if err := s.projects.Save(ctx, ws.Snapshot()); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	s.logger.Debug("workspace saved", zap.String("op", op))
	return nil
}

// AddPage creates a page.
func (s *WorkspaceServiceImpl) AddPage(ctx context.Context, req primary.AddPageRequest) (*models.Page, error) {
	var page *models.Page
	err := s.mutate(ctx, "add page", func(ws *Workspace) error {
		var err error
		page, err = ws.AddPage(req.Name, req.Route)
		return err
	})
	return page, err
}

// ListPages lists pages in creation order.
func (s *WorkspaceServiceImpl) ListPages(ctx context.Context) ([]*models.Page, error) {
	ws, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ws.Pages(), nil
}

// RenamePage renames a page.
func (s *WorkspaceServiceImpl) RenamePage(ctx context.Context, pageRef, name string) error {
	return s.mutate(ctx, "rename page", func(ws *Workspace) error {
		return ws.RenamePage(pageRef, name)
	})
}

// SetPageRoute changes a page's route.
func (s *WorkspaceServiceImpl) SetPageRoute(ctx context.Context, pageRef, route string) error {
	return s.mutate(ctx, "set page route", func(ws *Workspace) error {
		return ws.SetPageRoute(pageRef, route)
	})
}

// SetPageDirection changes the flow direction of a page's root boxes.
func (s *WorkspaceServiceImpl) SetPageDirection(ctx context.Context, pageRef string, direction models.Direction) error {
	return s.mutate(ctx, "set page direction", func(ws *Workspace) error {
		return ws.SetPageDirection(pageRef, direction)
	})
}

// DeletePage deletes a page, its boxes and their version history.
func (s *WorkspaceServiceImpl) DeletePage(ctx context.Context, pageRef string) error {
	var removed []string
	err := s.mutate(ctx, "delete page", func(ws *Workspace) error {
		var err error
		removed, err = ws.DeletePage(pageRef)
		return err
	})
	if err != nil {
		return err
	}
	return s.dropVersions(ctx, removed)
}

// AddBox adds a box to a page.
func (s *WorkspaceServiceImpl) AddBox(ctx context.Context, req primary.AddBoxRequest) (*models.Box, error) {
	var box *models.Box
	err := s.mutate(ctx, "add box", func(ws *Workspace) error {
		var err error
		box, err = ws.AddBox(req.PageRef, req.ParentID, req.Label)
		return err
	})
	return box, err
}

// DeleteBox deletes a box, its descendants and their version history.
func (s *WorkspaceServiceImpl) DeleteBox(ctx context.Context, boxID string) error {
	var removed []string
	err := s.mutate(ctx, "delete box", func(ws *Workspace) error {
		var err error
		removed, err = ws.DeleteBox(boxID)
		return err
	})
	if err != nil {
		return err
	}
	return s.dropVersions(ctx, removed)
}

func (s *WorkspaceServiceImpl) dropVersions(ctx context.Context, targets []string) error {
	if len(targets) == 0 {
		return nil
	}
	if err := s.versions.Delete(ctx, targets...); err != nil {
		return fmt.Errorf("failed to delete version history: %w", err)
	}
	return nil
}

// MoveBox re-parents or reorders a box.
func (s *WorkspaceServiceImpl) MoveBox(ctx context.Context, req primary.MoveBoxRequest) error {
	return s.mutate(ctx, "move box", func(ws *Workspace) error {
		return ws.MoveBox(req.BoxID, req.ParentID, req.Index)
	})
}

// DuplicateBox copies a box next to the original.
func (s *WorkspaceServiceImpl) DuplicateBox(ctx context.Context, boxID string) (*models.Box, error) {
	var box *models.Box
	err := s.mutate(ctx, "duplicate box", func(ws *Workspace) error {
		var err error
		box, err = ws.DuplicateBox(boxID)
		return err
	})
	return box, err
}

// ResizeBox sets a box's size.
func (s *WorkspaceServiceImpl) ResizeBox(ctx context.Context, boxID string, width, height float64) error {
	return s.mutate(ctx, "resize box", func(ws *Workspace) error {
		return ws.ResizeBox(boxID, width, height)
	})
}

// PlaceBox sets a root box's position.
func (s *WorkspaceServiceImpl) PlaceBox(ctx context.Context, boxID string, x, y float64) error {
	return s.mutate(ctx, "place box", func(ws *Workspace) error {
		return ws.PlaceBox(boxID, x, y)
	})
}

// RenameBox changes a box label.
func (s *WorkspaceServiceImpl) RenameBox(ctx context.Context, boxID, label string) error {
	return s.mutate(ctx, "rename box", func(ws *Workspace) error {
		return ws.RenameBox(boxID, label)
	})
}

// UpdateBoxSpec edits a box's spec.
func (s *WorkspaceServiceImpl) UpdateBoxSpec(ctx context.Context, req primary.UpdateSpecRequest) (*models.Spec, error) {
	var spec *models.Spec
	err := s.mutate(ctx, "update spec", func(ws *Workspace) error {
		var err error
		spec, err = ws.UpdateBoxSpec(req)
		return err
	})
	return spec, err
}

// UpdateBoxLayout edits layout and flex values.
func (s *WorkspaceServiceImpl) UpdateBoxLayout(ctx context.Context, req primary.UpdateLayoutRequest) error {
	return s.mutate(ctx, "update layout", func(ws *Workspace) error {
		return ws.UpdateBoxLayout(req)
	})
}

// GetTree returns a view of one or all pages.
func (s *WorkspaceServiceImpl) GetTree(ctx context.Context, pageRef string) (*primary.TreeView, error) {
	ws, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ws.Tree(pageRef)
}

// CreateSharedComponent promotes a box to a shared component.
func (s *WorkspaceServiceImpl) CreateSharedComponent(ctx context.Context, name, boxID string) (*models.SharedComponent, error) {
	var comp *models.SharedComponent
	err := s.mutate(ctx, "create shared component", func(ws *Workspace) error {
		var err error
		comp, err = ws.CreateSharedComponent(name, boxID)
		return err
	})
	return comp, err
}

// AttachToComponent makes a box an instance of a component.
func (s *WorkspaceServiceImpl) AttachToComponent(ctx context.Context, componentRef, boxID string) error {
	return s.mutate(ctx, "attach to shared component", func(ws *Workspace) error {
		return ws.AttachToComponent(componentRef, boxID)
	})
}

// DetachFromComponent turns an instance back into a plain box.
func (s *WorkspaceServiceImpl) DetachFromComponent(ctx context.Context, boxID string) error {
	return s.mutate(ctx, "detach from shared component", func(ws *Workspace) error {
		return ws.DetachFromComponent(boxID)
	})
}

// RenameSharedComponent renames a component.
func (s *WorkspaceServiceImpl) RenameSharedComponent(ctx context.Context, componentRef, name string) error {
	return s.mutate(ctx, "rename shared component", func(ws *Workspace) error {
		return ws.RenameSharedComponent(componentRef, name)
	})
}

// DeleteSharedComponent deletes a component.
func (s *WorkspaceServiceImpl) DeleteSharedComponent(ctx context.Context, componentRef string) error {
	return s.mutate(ctx, "delete shared component", func(ws *Workspace) error {
		return ws.DeleteSharedComponent(componentRef)
	})
}

// ListSharedComponents lists components.
func (s *WorkspaceServiceImpl) ListSharedComponents(ctx context.Context) ([]*models.SharedComponent, error) {
	ws, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ws.SharedComponents(), nil
}

// GetContext returns the project context.
func (s *WorkspaceServiceImpl) GetContext(ctx context.Context) (*models.ProjectContext, error) {
	ws, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	pc := ws.Context()
	return &pc, nil
}

// UpdateContext edits the project context.
func (s *WorkspaceServiceImpl) UpdateContext(ctx context.Context, req primary.UpdateContextRequest) (*models.ProjectContext, error) {
	var pc models.ProjectContext
	err := s.mutate(ctx, "update context", func(ws *Workspace) error {
		var err error
		pc, err = ws.UpdateContext(req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

// SystemPrompt renders the system prompt.
func (s *WorkspaceServiceImpl) SystemPrompt(ctx context.Context) (string, error) {
	ws, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return ws.SystemPrompt(), nil
}

// PagePrompt renders a page prompt.
func (s *WorkspaceServiceImpl) PagePrompt(ctx context.Context, pageRef string) (string, error) {
	ws, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return ws.PagePrompt(pageRef)
}

// BoxPrompt renders a box prompt.
func (s *WorkspaceServiceImpl) BoxPrompt(ctx context.Context, boxID string) (string, error) {
	ws, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return ws.BoxPrompt(boxID)
}
