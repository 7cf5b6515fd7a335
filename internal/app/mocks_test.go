package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/secondary"
	"github.com/example/boxforge/internal/provider"
)

// seqIDs returns an id function producing prefix-1, prefix-2, ...
func seqIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// ============================================================================
// Mock Implementations
// ============================================================================

var _ secondary.ProjectRepository = (*mockProjectRepository)(nil)

// mockProjectRepository keeps a deep copy of the last saved snapshot.
type mockProjectRepository struct {
	mu      sync.Mutex
	snap    *secondary.ProjectSnapshot
	saves   int
	loadErr error
	saveErr error
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{}
}

func cloneSnapshot(s *secondary.ProjectSnapshot) *secondary.ProjectSnapshot {
	out := &secondary.ProjectSnapshot{Context: s.Context.Clone()}
	for _, p := range s.Pages {
		out.Pages = append(out.Pages, p.Clone())
	}
	for _, b := range s.Boxes {
		out.Boxes = append(out.Boxes, b.Clone())
	}
	for _, c := range s.Components {
		out.Components = append(out.Components, c.Clone())
	}
	return out
}

func (m *mockProjectRepository) Load(ctx context.Context) (*secondary.ProjectSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snap == nil {
		return &secondary.ProjectSnapshot{Context: models.DefaultProjectContext()}, nil
	}
	return cloneSnapshot(m.snap), nil
}

func (m *mockProjectRepository) Save(ctx context.Context, snapshot *secondary.ProjectSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = cloneSnapshot(snapshot)
	m.saves++
	return nil
}

var _ secondary.VersionRepository = (*mockVersionRepository)(nil)

type mockVersionRepository struct {
	mu      sync.Mutex
	results map[string]*models.GenerationResult
	deleted []string
}

func newMockVersionRepository() *mockVersionRepository {
	return &mockVersionRepository{results: make(map[string]*models.GenerationResult)}
}

func (m *mockVersionRepository) Get(ctx context.Context, targetID string) (*models.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results[targetID].Clone(), nil
}

func (m *mockVersionRepository) List(ctx context.Context) ([]*models.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.GenerationResult, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *mockVersionRepository) Save(ctx context.Context, result *models.GenerationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result.TargetID] = result.Clone()
	return nil
}

func (m *mockVersionRepository) Delete(ctx context.Context, targetIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range targetIDs {
		delete(m.results, id)
	}
	m.deleted = append(m.deleted, targetIDs...)
	return nil
}

var _ secondary.SecretStore = (*mockSecretStore)(nil)

type mockSecretStore struct {
	mu      sync.Mutex
	secrets map[string]string
	getErr  error
}

func newMockSecretStore() *mockSecretStore {
	return &mockSecretStore{secrets: make(map[string]string)}
}

func (m *mockSecretStore) Put(ctx context.Context, providerID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[providerID] = secret
	return nil
}

func (m *mockSecretStore) Get(ctx context.Context, providerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	s, ok := m.secrets[providerID]
	if !ok {
		return "", secondary.ErrSecretNotFound
	}
	return s, nil
}

func (m *mockSecretStore) Has(ctx context.Context, providerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.secrets[providerID]
	return ok, nil
}

func (m *mockSecretStore) Delete(ctx context.Context, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, providerID)
	return nil
}

var _ secondary.ConfigStore = (*mockConfigStore)(nil)

type mockConfigStore struct {
	mu       sync.Mutex
	settings secondary.AISettings
}

func newMockConfigStore(providerID, model string) *mockConfigStore {
	return &mockConfigStore{settings: secondary.AISettings{
		Config: models.AIConfig{Provider: providerID, Model: model, Temperature: 0.2, MaxTokens: 1024},
		Stream: true,
	}}
}

func (m *mockConfigStore) LoadAI(ctx context.Context) (*secondary.AISettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.settings
	return &s, nil
}

func (m *mockConfigStore) SaveAI(ctx context.Context, settings *secondary.AISettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = *settings
	return nil
}

var _ Generator = (*fakeGenerator)(nil)

// fakeGenerator answers every request with code derived from the prompt.
// A non-nil gate holds each call until a value is received from it.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []provider.Request
	keys     []string
	chunks   []string
	code     string
	err      error
	gate     chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, providerID string, req provider.Request, secretKey string, onChunk provider.ChunkFunc) (*provider.Result, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.keys = append(g.keys, secretKey)
	chunks, code, err, gate := g.chunks, g.code, g.err, g.gate
	g.mu.Unlock()

	if g.RequiresKey(providerID) && secretKey == "" {
		return nil, &provider.Error{Kind: provider.KindMissingCredential, Provider: providerID, Model: req.Model}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &provider.Error{Kind: provider.KindTransport, Provider: providerID, Err: ctx.Err()}
		}
	}
	if err != nil {
		return nil, err
	}
	if code == "" {
		code = strings.Join(chunks, "")
	}
	if req.Stream && onChunk != nil {
		for _, c := range chunks {
			onChunk(c)
		}
	}
	return &provider.Result{Code: code, Usage: &models.Usage{InputTokens: 10, OutputTokens: len(code)}}, nil
}

func (g *fakeGenerator) RequiresKey(providerID string) bool {
	return providerID != provider.LMStudio
}

func (g *fakeGenerator) IDs() []string {
	return []string{provider.Anthropic, provider.LMStudio, provider.OpenAI}
}

func (g *fakeGenerator) lastRequest() provider.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

// bridge connects a Session and a Host in memory the way the shell does.
type bridge struct {
	host    *Host
	session *Session
}

func (b *bridge) post(data []byte) error {
	return b.host.Post(data)
}

func (b *bridge) deliver(data []byte) {
	b.session.Deliver(data)
}
