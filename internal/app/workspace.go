package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/boxforge/internal/core/boxtree"
	"github.com/example/boxforge/internal/core/project"
	"github.com/example/boxforge/internal/core/prompt"
	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
	"github.com/example/boxforge/internal/ports/secondary"
)

// Workspace composes the box tree and the project model. Its methods are
// the only place that touches both, so pages, boxes and shared components
// stay consistent after every operation. It performs no I/O.
type Workspace struct {
	tree  *boxtree.Tree
	model *project.Model
}

// NewWorkspace creates an empty workspace. newID may be nil.
func NewWorkspace(newID func() string) *Workspace {
	return &Workspace{
		tree:  boxtree.New(treeOpts(newID)...),
		model: project.New(modelOpts(newID)...),
	}
}

// WorkspaceFromSnapshot rebuilds a workspace from persisted state.
func WorkspaceFromSnapshot(snap *secondary.ProjectSnapshot, newID func() string) *Workspace {
	return &Workspace{
		tree:  boxtree.FromBoxes(snap.Boxes, treeOpts(newID)...),
		model: project.Restore(snap.Pages, snap.Components, snap.Context, modelOpts(newID)...),
	}
}

func treeOpts(newID func() string) []boxtree.Option {
	if newID == nil {
		return nil
	}
	return []boxtree.Option{boxtree.WithIDFunc(newID)}
}

func modelOpts(newID func() string) []project.Option {
	if newID == nil {
		return nil
	}
	return []project.Option{project.WithIDFunc(newID)}
}

// Snapshot returns the persisted form of the workspace.
func (w *Workspace) Snapshot() *secondary.ProjectSnapshot {
	return &secondary.ProjectSnapshot{
		Pages:      w.model.Pages(),
		Boxes:      w.tree.All(),
		Components: w.model.SharedComponents(),
		Context:    w.model.Context(),
	}
}

// --- lookups ---

func (w *Workspace) page(ref string) (*models.Page, error) {
	p, ok := w.model.FindPage(ref)
	if !ok {
		return nil, fmt.Errorf("page %s not found", ref)
	}
	return p, nil
}

func (w *Workspace) box(id string) (*models.Box, error) {
	b, ok := w.tree.Get(id)
	if !ok {
		return nil, fmt.Errorf("box %s not found", id)
	}
	return b, nil
}

func (w *Workspace) component(ref string) (*models.SharedComponent, error) {
	c, ok := w.model.FindSharedComponent(ref)
	if !ok {
		return nil, fmt.Errorf("shared component %s not found", ref)
	}
	return c, nil
}

// PageOfBox returns the page that owns id through its root ancestor.
func (w *Workspace) PageOfBox(id string) (string, bool) {
	root, ok := w.tree.RootOf(id)
	if !ok {
		return "", false
	}
	return w.model.PageOf(root)
}

// Box returns a copy of a box.
func (w *Workspace) Box(id string) (*models.Box, error) {
	return w.box(id)
}

// Page returns a copy of a page found by id or name.
func (w *Workspace) Page(ref string) (*models.Page, error) {
	return w.page(ref)
}

// Pages returns copies of every page.
func (w *Workspace) Pages() []*models.Page {
	return w.model.Pages()
}

// SharedComponents returns copies of every shared component.
func (w *Workspace) SharedComponents() []*models.SharedComponent {
	return w.model.SharedComponents()
}

// Context returns the project context.
func (w *Workspace) Context() models.ProjectContext {
	return w.model.Context()
}

// syncRootOrder numbers each page's roots by their position on the page.
func (w *Workspace) syncRootOrder() {
	for _, p := range w.model.Pages() {
		for i, id := range p.BoxIDs {
			w.tree.SetOrder(id, i)
		}
	}
}

// --- pages ---

// AddPage creates a page. Names are unique so pages can be addressed by name.
func (w *Workspace) AddPage(name, route string) (*models.Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("page name is required")
	}
	if _, ok := w.model.FindPage(name); ok {
		return nil, fmt.Errorf("page %q already exists", name)
	}
	id := w.model.AddPage(name, route)
	p, _ := w.model.Page(id)
	return p, nil
}

// RenamePage renames a page.
func (w *Workspace) RenamePage(ref, name string) error {
	p, err := w.page(ref)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("page name is required")
	}
	if other, ok := w.model.FindPage(name); ok && other.ID != p.ID {
		return fmt.Errorf("page %q already exists", name)
	}
	w.model.RenamePage(p.ID, name)
	return nil
}

// SetPageRoute changes a page's route.
func (w *Workspace) SetPageRoute(ref, route string) error {
	p, err := w.page(ref)
	if err != nil {
		return err
	}
	w.model.SetPageRoute(p.ID, route)
	return nil
}

// SetPageDirection sets the flow direction of a page's root boxes.
func (w *Workspace) SetPageDirection(ref string, d models.Direction) error {
	p, err := w.page(ref)
	if err != nil {
		return err
	}
	if !d.Valid() {
		return fmt.Errorf("invalid direction %q (want row or column)", d)
	}
	w.model.SetPageDirection(p.ID, d)
	return nil
}

// DeletePage removes a page with every box under it and returns the ids
// of the removed boxes.
func (w *Workspace) DeletePage(ref string) ([]string, error) {
	p, err := w.page(ref)
	if err != nil {
		return nil, err
	}
	w.model.RemovePage(p.ID)
	var removed []string
	for _, root := range p.BoxIDs {
		removed = append(removed, w.removeSubtree(root)...)
	}
	w.syncRootOrder()
	return removed, nil
}

// --- boxes ---

// AddBox adds a box to a page. A parent, when given, must be on that page.
func (w *Workspace) AddBox(pageRef, parentID, label string) (*models.Box, error) {
	p, err := w.page(pageRef)
	if err != nil {
		return nil, err
	}
	if parentID != "" {
		if _, err := w.box(parentID); err != nil {
			return nil, err
		}
		if owner, _ := w.PageOfBox(parentID); owner != p.ID {
			return nil, fmt.Errorf("box %s is not on page %s", parentID, p.Name)
		}
	}

	id := w.tree.Add(parentID)
	if parentID == "" {
		// The tree staggers across every page; each page is its own group.
		x, y := boxtree.StaggeredOrigin(len(p.BoxIDs))
		w.tree.UpdatePosition(id, x, y)
		w.model.AddRootBox(p.ID, id)
	}
	if label = strings.TrimSpace(label); label != "" {
		w.tree.UpdateLabel(id, label)
	}
	w.syncRootOrder()
	return w.box(id)
}

// DeleteBox removes a box and its descendants and returns their ids.
func (w *Workspace) DeleteBox(id string) ([]string, error) {
	b, err := w.box(id)
	if err != nil {
		return nil, err
	}
	if b.IsRoot() {
		w.model.RemoveRootBox(id)
	}
	removed := w.removeSubtree(id)
	w.syncRootOrder()
	return removed, nil
}

// removeSubtree deletes id from the tree and drops every removed box from
// the instance set of its shared component.
func (w *Workspace) removeSubtree(id string) []string {
	for _, sid := range w.tree.Subtree(id) {
		if b, ok := w.tree.Get(sid); ok && b.SharedComponentID != "" {
			w.model.RemoveInstance(b.SharedComponentID, sid)
		}
	}
	return w.tree.Remove(id)
}

// MoveBox re-parents a box. With an empty parentID the box joins the root
// group of the page that owns it, at index within that page.
func (w *Workspace) MoveBox(id, parentID string, index int) error {
	b, err := w.box(id)
	if err != nil {
		return err
	}
	if err := w.tree.MoveCheck(id, parentID).Error(); err != nil {
		return err
	}

	pageID, _ := w.PageOfBox(id)
	if b.IsRoot() {
		w.model.RemoveRootBox(id)
	}

	if parentID == "" {
		w.tree.Move(id, "", -1)
		w.model.InsertRootBox(pageID, id, index)
	} else {
		w.tree.Move(id, parentID, index)
	}
	w.syncRootOrder()
	return nil
}

// DuplicateBox copies a box without its children. The copy keeps the
// source's shared component and is registered as one of its instances.
func (w *Workspace) DuplicateBox(id string) (*models.Box, error) {
	b, err := w.box(id)
	if err != nil {
		return nil, err
	}
	cp := w.tree.Duplicate(id)
	if b.IsRoot() {
		if pageID, ok := w.model.PageOf(id); ok {
			w.model.AddRootBox(pageID, cp)
		}
	}
	if b.SharedComponentID != "" {
		w.model.AddInstance(b.SharedComponentID, cp)
	}
	w.syncRootOrder()
	return w.box(cp)
}

// ResizeBox sets a box's size.
func (w *Workspace) ResizeBox(id string, width, height float64) error {
	if !w.tree.UpdateSize(id, width, height) {
		return fmt.Errorf("box %s not found", id)
	}
	return nil
}

// PlaceBox sets the canvas position of a root box.
func (w *Workspace) PlaceBox(id string, x, y float64) error {
	b, err := w.box(id)
	if err != nil {
		return err
	}
	if !b.IsRoot() {
		return fmt.Errorf("box %s is nested; only page roots have a canvas position", id)
	}
	w.tree.UpdatePosition(id, x, y)
	return nil
}

// RenameBox sets a box's label.
func (w *Workspace) RenameBox(id, label string) error {
	if !w.tree.UpdateLabel(id, label) {
		return fmt.Errorf("box %s not found", id)
	}
	return nil
}

// UpdateBoxSpec applies an edit to a box's spec. When the box is a shared
// component instance the result becomes the component's canonical spec
// and is mirrored onto every instance.
func (w *Workspace) UpdateBoxSpec(req primary.UpdateSpecRequest) (*models.Spec, error) {
	b, err := w.box(req.BoxID)
	if err != nil {
		return nil, err
	}

	spec := b.Spec.Clone()
	if spec == nil || req.Clear {
		spec = &models.Spec{}
	}
	if req.Intent != nil {
		spec.Intent = *req.Intent
	}
	for _, st := range req.States {
		spec.SetState(st.State, st.Description)
	}
	if req.DataShape != nil {
		spec.DataShape = *req.DataShape
	}
	if req.Behavior != nil {
		spec.Behavior = *req.Behavior
	}
	spec.Refinements = append(spec.Refinements, req.Refinements...)
	if spec.IsEmpty() {
		spec = nil
	}

	if b.SharedComponentID == "" {
		w.tree.UpdateSpec(b.ID, spec)
		return spec.Clone(), nil
	}

	w.model.UpdateComponentSpec(b.SharedComponentID, spec)
	c, _ := w.model.SharedComponent(b.SharedComponentID)
	for _, inst := range c.InstanceIDs {
		w.tree.UpdateSpec(inst, spec)
	}
	// A back-reference whose component lost track of the box still edits it.
	w.tree.UpdateSpec(b.ID, spec)
	return spec.Clone(), nil
}

// UpdateBoxLayout edits a box's own layout and its flex values.
func (w *Workspace) UpdateBoxLayout(req primary.UpdateLayoutRequest) error {
	b, err := w.box(req.BoxID)
	if err != nil {
		return err
	}

	direction, gap, padding := b.Direction, b.Gap, b.Padding
	if req.Direction != nil {
		if !req.Direction.Valid() {
			return fmt.Errorf("invalid direction %q (want row or column)", *req.Direction)
		}
		direction = *req.Direction
	}
	if req.Gap != nil {
		gap = *req.Gap
	}
	if req.Padding != nil {
		padding = *req.Padding
	}
	if gap < 0 || padding < 0 {
		return errors.New("gap and padding must not be negative")
	}
	w.tree.UpdateLayout(b.ID, direction, gap, padding)

	grow, basis := b.FlexGrow, b.FlexBasis
	if req.FlexGrow != nil {
		grow = *req.FlexGrow
	}
	if req.FlexBasis != nil {
		basis = req.FlexBasis
	}
	if req.ClearBasis {
		basis = nil
	}
	w.tree.UpdateFlex(b.ID, grow, basis)
	return nil
}

// --- shared components ---

func (w *Workspace) nameTaken(name string) bool {
	for _, c := range w.model.SharedComponents() {
		if c.Name == name {
			return true
		}
	}
	return false
}

// CreateSharedComponent promotes a box's spec to a new shared component
// with the box as its first instance.
func (w *Workspace) CreateSharedComponent(name, boxID string) (*models.SharedComponent, error) {
	name = strings.TrimSpace(name)
	b, _ := w.tree.Get(boxID)
	gctx := project.CreateComponentContext{
		Name:      name,
		BoxID:     boxID,
		BoxExists: b != nil,
		NameTaken: w.nameTaken(name),
	}
	if b != nil {
		gctx.BoxSharedComponent = b.SharedComponentID
	}
	if err := project.CanCreateSharedComponent(gctx).Error(); err != nil {
		return nil, err
	}

	id := w.model.CreateSharedComponentFromBox(name, b.Spec, boxID)
	w.tree.SetSharedComponent(boxID, id)
	c, _ := w.model.SharedComponent(id)
	return c, nil
}

// AttachToComponent makes a box an instance and copies the canonical spec
// onto it.
func (w *Workspace) AttachToComponent(componentRef, boxID string) error {
	c, _ := w.model.FindSharedComponent(componentRef)
	b, _ := w.tree.Get(boxID)
	gctx := project.AttachContext{
		ComponentID:     componentRef,
		ComponentExists: c != nil,
		BoxID:           boxID,
		BoxExists:       b != nil,
	}
	if c != nil {
		gctx.ComponentID = c.ID
	}
	if b != nil {
		gctx.BoxSharedComponent = b.SharedComponentID
	}
	if err := project.CanAttach(gctx).Error(); err != nil {
		return err
	}

	w.model.AddInstance(c.ID, boxID)
	w.tree.SetSharedComponent(boxID, c.ID)
	spec := c.Spec
	if spec.IsEmpty() {
		w.tree.UpdateSpec(boxID, nil)
	} else {
		w.tree.UpdateSpec(boxID, &spec)
	}
	return nil
}

// DetachFromComponent turns an instance back into a plain box that keeps
// its current spec.
func (w *Workspace) DetachFromComponent(boxID string) error {
	b, err := w.box(boxID)
	if err != nil {
		return err
	}
	if b.SharedComponentID == "" {
		return fmt.Errorf("box %s is not a shared component instance", boxID)
	}
	w.model.RemoveInstance(b.SharedComponentID, boxID)
	w.tree.SetSharedComponent(boxID, "")
	return nil
}

// RenameSharedComponent renames a component. Names stay unique.
func (w *Workspace) RenameSharedComponent(ref, name string) error {
	c, err := w.component(ref)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("shared component name is required")
	}
	if name != c.Name && w.nameTaken(name) {
		return fmt.Errorf("shared component %q already exists", name)
	}
	w.model.RenameComponent(c.ID, name)
	return nil
}

// DeleteSharedComponent deletes a component and clears the back-reference
// of each former instance.
func (w *Workspace) DeleteSharedComponent(ref string) error {
	c, err := w.component(ref)
	if err != nil {
		return err
	}
	instances, _ := w.model.DeleteSharedComponent(c.ID)
	for _, id := range instances {
		w.tree.SetSharedComponent(id, "")
	}
	return nil
}

// RecordGeneratedCode stores code as the last generated code of the
// shared component the target instantiates. Returns false when the target
// is not an instance.
func (w *Workspace) RecordGeneratedCode(targetID, code string) bool {
	b, ok := w.tree.Get(targetID)
	if !ok || b.SharedComponentID == "" {
		return false
	}
	return w.model.SetComponentCode(b.SharedComponentID, code)
}

// --- context ---

// UpdateContext applies an edit to the project context.
func (w *Workspace) UpdateContext(req primary.UpdateContextRequest) (models.ProjectContext, error) {
	pc := w.model.Context()
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&pc.Framework, req.Framework)
	set(&pc.Language, req.Language)
	set(&pc.UILibrary, req.UILibrary)
	set(&pc.StyleTone, req.StyleTone)
	set(&pc.Notes, req.Notes)
	set(&pc.NamingConvention, req.NamingConvention)
	pc.Constraints = append(pc.Constraints, req.Constraints...)

	for group, tokens := range req.Tokens {
		var dst *[]models.Token
		switch group {
		case "colors":
			dst = &pc.Tokens.Colors
		case "spacing":
			dst = &pc.Tokens.Spacing
		case "typography":
			dst = &pc.Tokens.Typography
		case "radii":
			dst = &pc.Tokens.Radii
		default:
			return models.ProjectContext{}, fmt.Errorf("unknown token group %q (want colors, spacing, typography or radii)", group)
		}
		for _, t := range tokens {
			*dst = upsertToken(*dst, t)
		}
	}

	w.model.SetContext(pc)
	return w.model.Context(), nil
}

func upsertToken(tokens []models.Token, t models.Token) []models.Token {
	for i := range tokens {
		if tokens[i].Name == t.Name {
			tokens[i].Value = t.Value
			return tokens
		}
	}
	return append(tokens, t)
}

// --- prompts ---

// SystemPrompt renders the system prompt.
func (w *Workspace) SystemPrompt() string {
	return prompt.BuildSystemPrompt(w.model.Context())
}

// PagePrompt renders the prompt for a page.
func (w *Workspace) PagePrompt(ref string) (string, error) {
	p, err := w.page(ref)
	if err != nil {
		return "", err
	}
	return prompt.BuildPagePrompt(p, w.tree.Snapshot(), w.model.ComponentIndex()), nil
}

// BoxPrompt renders the prompt for one box.
func (w *Workspace) BoxPrompt(id string) (string, error) {
	b, err := w.box(id)
	if err != nil {
		return "", err
	}
	return prompt.BuildBoxPrompt(b, w.tree.Snapshot(), w.model.ComponentIndex()), nil
}

// Tree returns a view of one page, or of every page when ref is empty.
func (w *Workspace) Tree(ref string) (*primary.TreeView, error) {
	view := &primary.TreeView{
		Boxes:      w.tree.Snapshot(),
		Components: w.model.ComponentIndex(),
	}
	if ref == "" {
		view.Pages = w.model.Pages()
		return view, nil
	}
	p, err := w.page(ref)
	if err != nil {
		return nil, err
	}
	view.Pages = []*models.Page{p}
	return view, nil
}

// --- consistency ---

// CheckConsistency verifies the cross-entity invariants: the tree is
// well formed, every root sits on exactly one page, every page lists only
// roots, and shared component instance sets match the boxes' back-references.
func (w *Workspace) CheckConsistency() error {
	if err := w.tree.CheckInvariants(); err != nil {
		return err
	}

	owner := make(map[string]string)
	for _, p := range w.model.Pages() {
		for _, id := range p.BoxIDs {
			b, ok := w.tree.Get(id)
			if !ok {
				return fmt.Errorf("page %s lists unknown box %s", p.Name, id)
			}
			if !b.IsRoot() {
				return fmt.Errorf("page %s lists nested box %s", p.Name, id)
			}
			if prev, dup := owner[id]; dup {
				return fmt.Errorf("box %s is on pages %s and %s", id, prev, p.Name)
			}
			owner[id] = p.Name
		}
	}
	for _, id := range w.tree.Roots() {
		if _, ok := owner[id]; !ok {
			return fmt.Errorf("root box %s is on no page", id)
		}
	}

	comps := w.model.ComponentIndex()
	for _, b := range w.tree.All() {
		if b.SharedComponentID == "" {
			continue
		}
		c, ok := comps[b.SharedComponentID]
		if !ok {
			return fmt.Errorf("box %s references unknown shared component %s", b.ID, b.SharedComponentID)
		}
		if !c.HasInstance(b.ID) {
			return fmt.Errorf("shared component %s does not list its instance %s", c.Name, b.ID)
		}
	}
	for _, c := range comps {
		for _, id := range c.InstanceIDs {
			b, ok := w.tree.Get(id)
			if !ok {
				return fmt.Errorf("shared component %s lists unknown box %s", c.Name, id)
			}
			if b.SharedComponentID != c.ID {
				return fmt.Errorf("box %s does not point back to shared component %s", id, c.Name)
			}
		}
	}
	return nil
}
