// Package project contains the page and shared-component model of a project.
// This is part of the Functional Core - no I/O, only in-memory state.
//
// The model stores box identifiers but never box objects. Keeping a Box's
// SharedComponentID and page membership consistent with this model is the
// job of the composite operations in the app layer.
package project

import (
	"github.com/google/uuid"

	"github.com/example/boxforge/internal/models"
)

// IDFunc produces fresh page and component identifiers.
type IDFunc func() string

// Model owns pages, shared components and the project context.
type Model struct {
	pages      []*models.Page
	components map[string]*models.SharedComponent
	compOrder  []string
	context    models.ProjectContext
	newID      IDFunc
}

// Option configures a Model.
type Option func(*Model)

// WithIDFunc overrides identifier generation.
func WithIDFunc(f IDFunc) Option {
	return func(m *Model) { m.newID = f }
}

// New creates an empty model with the default project context.
func New(opts ...Option) *Model {
	m := &Model{
		components: make(map[string]*models.SharedComponent),
		context:    models.DefaultProjectContext(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore rebuilds a model from persisted state. Pages keep slice order;
// components keep slice order.
func Restore(pages []*models.Page, components []*models.SharedComponent, ctx models.ProjectContext, opts ...Option) *Model {
	m := New(opts...)
	for _, p := range pages {
		m.pages = append(m.pages, p.Clone())
	}
	for _, c := range components {
		m.components[c.ID] = c.Clone()
		m.compOrder = append(m.compOrder, c.ID)
	}
	m.context = ctx
	return m
}

// --- pages ---

// AddPage appends a new empty page and returns its id.
func (m *Model) AddPage(name, route string) string {
	p := &models.Page{
		ID:        m.newID(),
		Name:      name,
		Route:     route,
		Direction: models.DirectionColumn,
		BoxIDs:    []string{},
	}
	m.pages = append(m.pages, p)
	return p.ID
}

func (m *Model) page(id string) *models.Page {
	for _, p := range m.pages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Page returns a copy of the page with the given id.
func (m *Model) Page(id string) (*models.Page, bool) {
	p := m.page(id)
	if p == nil {
		return nil, false
	}
	return p.Clone(), true
}

// Pages returns copies of all pages in creation order.
func (m *Model) Pages() []*models.Page {
	out := make([]*models.Page, 0, len(m.pages))
	for _, p := range m.pages {
		out = append(out, p.Clone())
	}
	return out
}

// FindPage resolves a page by id or, failing that, by exact name.
func (m *Model) FindPage(ref string) (*models.Page, bool) {
	if p := m.page(ref); p != nil {
		return p.Clone(), true
	}
	for _, p := range m.pages {
		if p.Name == ref {
			return p.Clone(), true
		}
	}
	return nil, false
}

// RenamePage sets a page's display name.
func (m *Model) RenamePage(id, name string) bool {
	p := m.page(id)
	if p == nil {
		return false
	}
	p.Name = name
	return true
}

// SetPageRoute sets a page's route. An empty route clears it.
func (m *Model) SetPageRoute(id, route string) bool {
	p := m.page(id)
	if p == nil {
		return false
	}
	p.Route = route
	return true
}

// SetPageDirection sets the root layout direction of a page.
func (m *Model) SetPageDirection(id string, d models.Direction) bool {
	p := m.page(id)
	if p == nil || !d.Valid() {
		return false
	}
	p.Direction = d
	return true
}

// RemovePage deletes a page and returns it so the caller can cascade the
// removal of its root boxes.
func (m *Model) RemovePage(id string) (*models.Page, bool) {
	for i, p := range m.pages {
		if p.ID == id {
			m.pages = append(m.pages[:i], m.pages[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

// AddRootBox appends boxID to a page's root list. Adding a box the page
// already owns is a no-op.
func (m *Model) AddRootBox(pageID, boxID string) bool {
	return m.InsertRootBox(pageID, boxID, -1)
}

// InsertRootBox places boxID at index in a page's root list, appending
// when index is out of range. Adding a box the page already owns is a no-op.
func (m *Model) InsertRootBox(pageID, boxID string, index int) bool {
	p := m.page(pageID)
	if p == nil || p.HasBox(boxID) {
		return false
	}
	if index < 0 || index > len(p.BoxIDs) {
		index = len(p.BoxIDs)
	}
	p.BoxIDs = append(p.BoxIDs, "")
	copy(p.BoxIDs[index+1:], p.BoxIDs[index:])
	p.BoxIDs[index] = boxID
	return true
}

// RemoveRootBox detaches boxID from whichever page owns it and returns that
// page's id.
func (m *Model) RemoveRootBox(boxID string) (string, bool) {
	for _, p := range m.pages {
		if p.HasBox(boxID) {
			p.BoxIDs = remove(p.BoxIDs, boxID)
			return p.ID, true
		}
	}
	return "", false
}

// PageOf returns the id of the page listing boxID as a root.
func (m *Model) PageOf(boxID string) (string, bool) {
	for _, p := range m.pages {
		if p.HasBox(boxID) {
			return p.ID, true
		}
	}
	return "", false
}

// --- shared components ---

// CreateSharedComponentFromBox creates a component from spec whose instance
// set is seeded with boxID. The caller marks the box's back-reference.
func (m *Model) CreateSharedComponentFromBox(name string, spec *models.Spec, boxID string) string {
	c := &models.SharedComponent{
		ID:          m.newID(),
		Name:        name,
		InstanceIDs: []string{boxID},
	}
	if spec != nil {
		c.Spec = *spec.Clone()
	}
	m.components[c.ID] = c
	m.compOrder = append(m.compOrder, c.ID)
	return c.ID
}

// SharedComponent returns a copy of the component with the given id.
func (m *Model) SharedComponent(id string) (*models.SharedComponent, bool) {
	c, ok := m.components[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// SharedComponents returns copies of all components in creation order.
func (m *Model) SharedComponents() []*models.SharedComponent {
	out := make([]*models.SharedComponent, 0, len(m.compOrder))
	for _, id := range m.compOrder {
		out = append(out, m.components[id].Clone())
	}
	return out
}

// ComponentIndex returns copies of all components keyed by id.
func (m *Model) ComponentIndex() map[string]*models.SharedComponent {
	out := make(map[string]*models.SharedComponent, len(m.components))
	for id, c := range m.components {
		out[id] = c.Clone()
	}
	return out
}

// FindSharedComponent resolves a component by id or, failing that, by name.
func (m *Model) FindSharedComponent(ref string) (*models.SharedComponent, bool) {
	if c, ok := m.components[ref]; ok {
		return c.Clone(), true
	}
	for _, id := range m.compOrder {
		if m.components[id].Name == ref {
			return m.components[id].Clone(), true
		}
	}
	return nil, false
}

// AddInstance adds boxID to a component's instance set.
func (m *Model) AddInstance(componentID, boxID string) bool {
	c, ok := m.components[componentID]
	if !ok || c.HasInstance(boxID) {
		return false
	}
	c.InstanceIDs = append(c.InstanceIDs, boxID)
	return true
}

// RemoveInstance removes boxID from a component's instance set.
func (m *Model) RemoveInstance(componentID, boxID string) bool {
	c, ok := m.components[componentID]
	if !ok || !c.HasInstance(boxID) {
		return false
	}
	c.InstanceIDs = remove(c.InstanceIDs, boxID)
	return true
}

// UpdateComponentSpec replaces a component's canonical spec.
func (m *Model) UpdateComponentSpec(id string, spec *models.Spec) bool {
	c, ok := m.components[id]
	if !ok {
		return false
	}
	if spec == nil {
		c.Spec = models.Spec{}
	} else {
		c.Spec = *spec.Clone()
	}
	return true
}

// SetComponentCode records the component's last generated code.
func (m *Model) SetComponentCode(id, code string) bool {
	c, ok := m.components[id]
	if !ok {
		return false
	}
	c.Code = code
	return true
}

// RenameComponent sets a component's name.
func (m *Model) RenameComponent(id, name string) bool {
	c, ok := m.components[id]
	if !ok {
		return false
	}
	c.Name = name
	return true
}

// DeleteSharedComponent removes a component and returns its former
// instances so the caller can clear their back-references.
func (m *Model) DeleteSharedComponent(id string) ([]string, bool) {
	c, ok := m.components[id]
	if !ok {
		return nil, false
	}
	delete(m.components, id)
	m.compOrder = remove(m.compOrder, id)
	return c.InstanceIDs, true
}

// --- context ---

// Context returns the project context.
func (m *Model) Context() models.ProjectContext {
	return m.context.Clone()
}

// SetContext replaces the project context.
func (m *Model) SetContext(ctx models.ProjectContext) {
	m.context = ctx.Clone()
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
