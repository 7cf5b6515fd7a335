package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
	"github.com/example/boxforge/internal/ports/secondary"
)

// GenerationServiceImpl implements the GenerationService interface on top
// of a Session. Completed versions are persisted from the session loop.
type GenerationServiceImpl struct {
	projects secondary.ProjectRepository
	versions secondary.VersionRepository
	config   secondary.ConfigStore
	session  *Session
	newID    func() string
	logger   *zap.Logger
}

var _ primary.GenerationService = (*GenerationServiceImpl)(nil)

// GenerationServiceDeps are the collaborators of a GenerationService.
type GenerationServiceDeps struct {
	Projects secondary.ProjectRepository
	Versions secondary.VersionRepository
	Config   secondary.ConfigStore

	// Post sends outbound protocol messages to the host.
	Post func([]byte) error

	// Session overrides the session options built from the fields above;
	// Post and Completed are always set by the service.
	Session SessionOptions

	NewID  func() string
	Logger *zap.Logger
}

// NewGenerationService creates a GenerationService and starts its session.
// Close must be called to stop it.
func NewGenerationService(deps GenerationServiceDeps) *GenerationServiceImpl {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &GenerationServiceImpl{
		projects: deps.Projects,
		versions: deps.Versions,
		config:   deps.Config,
		newID:    deps.NewID,
		logger:   deps.Logger,
	}
	opts := deps.Session
	opts.Post = deps.Post
	opts.Completed = s.persist
	if opts.Logger == nil {
		opts.Logger = deps.Logger
	}
	s.session = NewSession(opts)
	return s
}

// Session returns the session the service drives.
func (s *GenerationServiceImpl) Session() *Session {
	return s.session
}

// Deliver hands an inbound protocol message to the session.
func (s *GenerationServiceImpl) Deliver(data []byte) {
	s.session.Deliver(data)
}

// Close stops the session.
func (s *GenerationServiceImpl) Close() {
	s.session.Close()
}

// GenerateBox generates code for one box.
func (s *GenerationServiceImpl) GenerateBox(ctx context.Context, boxID string, listener primary.GenerationListener) (*primary.GenerationOutcome, error) {
	ws, err := s.loadWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	userPrompt, err := ws.BoxPrompt(boxID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, ws, Submission{Targets: []string{boxID}, Prompt: userPrompt, Listener: listener})
}

// GeneratePage generates one page component. The single request is routed
// to every root box of the page.
func (s *GenerationServiceImpl) GeneratePage(ctx context.Context, pageRef string, listener primary.GenerationListener) (*primary.GenerationOutcome, error) {
	ws, err := s.loadWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	page, err := ws.Page(pageRef)
	if err != nil {
		return nil, err
	}
	if len(page.BoxIDs) == 0 {
		return nil, fmt.Errorf("page %s has no boxes to generate", page.Name)
	}
	userPrompt, err := ws.PagePrompt(page.ID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, ws, Submission{Targets: page.BoxIDs, Prompt: userPrompt, Page: true, Listener: listener})
}

func (s *GenerationServiceImpl) loadWorkspace(ctx context.Context) (*Workspace, error) {
	snap, err := s.projects.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return WorkspaceFromSnapshot(snap, s.newID), nil
}

func (s *GenerationServiceImpl) generate(ctx context.Context, ws *Workspace, sub Submission) (*primary.GenerationOutcome, error) {
	settings, err := s.config.LoadAI(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AI config: %w", err)
	}

	var history []*models.GenerationResult
	for _, t := range sub.Targets {
		r, err := s.versions.Get(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("failed to load version history: %w", err)
		}
		if r != nil {
			history = append(history, r)
		}
	}

	sub.System = ws.SystemPrompt()
	sub.Provider = settings.Config.Provider
	sub.Model = settings.Config.Model
	sub.History = history
	_, result, err := s.session.Submit(ctx, sub)
	if err != nil {
		return nil, err
	}

	select {
	case outcome := <-result:
		return &outcome, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// persist saves the histories of a completed request. Code generated for a
// box is also recorded on its shared component; page code implements the
// whole page and is never a component's implementation. It runs on the
// session loop.
func (s *GenerationServiceImpl) persist(c Completion) {
	ctx := context.Background()
	for _, r := range c.Results {
		if err := s.versions.Save(ctx, r); err != nil {
			s.logger.Error("failed to save version history", zap.String("target", r.TargetID), zap.Error(err))
		}
	}
	if c.Page {
		return
	}

	targets := make([]string, 0, len(c.Results))
	for _, r := range c.Results {
		targets = append(targets, r.TargetID)
	}
	if err := s.recordSharedCode(ctx, targets, c.Code); err != nil {
		s.logger.Error("failed to record shared component code", zap.Error(err))
	}
}

func (s *GenerationServiceImpl) recordSharedCode(ctx context.Context, targets []string, code string) error {
	ws, err := s.loadWorkspace(ctx)
	if err != nil {
		return err
	}
	changed := false
	for _, t := range targets {
		if ws.RecordGeneratedCode(t, code) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := s.projects.Save(ctx, ws.Snapshot()); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// ListVersions returns the version history of a target. A target never
// generated has an empty history.
func (s *GenerationServiceImpl) ListVersions(ctx context.Context, targetID string) (*models.GenerationResult, error) {
	r, err := s.versions.Get(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load version history: %w", err)
	}
	if r == nil {
		return &models.GenerationResult{TargetID: targetID, History: []models.GenerationVersion{}}, nil
	}
	return r, nil
}

// Revert makes a history version current again. Nothing is discarded.
func (s *GenerationServiceImpl) Revert(ctx context.Context, targetID, versionID string) error {
	history, err := s.versions.Get(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to load version history: %w", err)
	}
	if history == nil {
		return fmt.Errorf("%s has no generated versions", targetID)
	}

	reverted, err := s.session.Revert(ctx, history, versionID)
	if err != nil {
		return err
	}
	if err := s.versions.Save(ctx, reverted); err != nil {
		return fmt.Errorf("failed to save version history: %w", err)
	}
	return s.recordSharedCode(ctx, []string{targetID}, reverted.Current.Code)
}
