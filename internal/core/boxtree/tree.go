// Package boxtree contains the hierarchical layout model for one project.
// This is part of the Functional Core - no I/O, only in-memory state.
//
// Every mutator is a no-op that returns false (or an empty id) when it
// references an unknown box. Callers own cross-entity bookkeeping: the tree
// knows nothing about pages or shared components.
package boxtree

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/example/boxforge/internal/models"
)

// Layout defaults and limits.
const (
	MinWidth  = 40.0
	MinHeight = 24.0

	DefaultWidth  = 320.0
	DefaultHeight = 200.0

	// RootOrigin and StaggerStep place the n-th root box at
	// (RootOrigin + n*StaggerStep, RootOrigin + n*StaggerStep).
	RootOrigin  = 40.0
	StaggerStep = 24.0

	// DuplicateOffset shifts a duplicated root box away from its source.
	DuplicateOffset = 24.0

	CopySuffix = " (copy)"
)

// IDFunc produces fresh box identifiers.
type IDFunc func() string

// Tree is a forest of boxes. Root boxes (no parent) are kept in an explicit
// ordered list so the root group behaves like any other sibling group.
type Tree struct {
	boxes map[string]*models.Box
	roots []string
	newID IDFunc
}

// Option configures a Tree.
type Option func(*Tree)

// WithIDFunc overrides identifier generation.
func WithIDFunc(f IDFunc) Option {
	return func(t *Tree) { t.newID = f }
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		boxes: make(map[string]*models.Box),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FromBoxes rebuilds a tree from persisted boxes. Root order follows the
// order in which roots appear in boxes, as produced by All.
func FromBoxes(boxes []*models.Box, opts ...Option) *Tree {
	t := New(opts...)
	for _, b := range boxes {
		t.boxes[b.ID] = b.Clone()
		if b.IsRoot() {
			t.roots = append(t.roots, b.ID)
		}
	}
	return t
}

// Len returns the number of boxes in the tree.
func (t *Tree) Len() int { return len(t.boxes) }

// Has reports whether id exists.
func (t *Tree) Has(id string) bool {
	_, ok := t.boxes[id]
	return ok
}

// Get returns a copy of the box with the given id.
func (t *Tree) Get(id string) (*models.Box, bool) {
	b, ok := t.boxes[id]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// Roots returns the root group in sibling order.
func (t *Tree) Roots() []string {
	return append([]string(nil), t.roots...)
}

// Children returns the child ids of id in sibling order.
func (t *Tree) Children(id string) []string {
	b, ok := t.boxes[id]
	if !ok {
		return nil
	}
	return append([]string(nil), b.ChildIDs...)
}

// Snapshot returns copies of every box keyed by id.
func (t *Tree) Snapshot() map[string]*models.Box {
	out := make(map[string]*models.Box, len(t.boxes))
	for id, b := range t.boxes {
		out[id] = b.Clone()
	}
	return out
}

// All returns copies of every box in pre-order, roots first.
func (t *Tree) All() []*models.Box {
	out := make([]*models.Box, 0, len(t.boxes))
	var walk func(id string)
	walk = func(id string) {
		b := t.boxes[id]
		out = append(out, b.Clone())
		for _, c := range b.ChildIDs {
			walk(c)
		}
	}
	for _, id := range t.roots {
		walk(id)
	}
	return out
}

// Subtree returns id followed by all of its descendants in pre-order.
func (t *Tree) Subtree(id string) []string {
	if _, ok := t.boxes[id]; !ok {
		return nil
	}
	var out []string
	var walk func(id string)
	walk = func(id string) {
		out = append(out, id)
		for _, c := range t.boxes[id].ChildIDs {
			walk(c)
		}
	}
	walk(id)
	return out
}

// RootOf returns the root ancestor of id.
func (t *Tree) RootOf(id string) (string, bool) {
	b, ok := t.boxes[id]
	if !ok {
		return "", false
	}
	for !b.IsRoot() {
		b = t.boxes[b.ParentID]
	}
	return b.ID, true
}

// IsDescendant reports whether candidate lies strictly below ancestor.
func (t *Tree) IsDescendant(ancestor, candidate string) bool {
	b, ok := t.boxes[candidate]
	if !ok {
		return false
	}
	for !b.IsRoot() {
		if b.ParentID == ancestor {
			return true
		}
		b = t.boxes[b.ParentID]
	}
	return false
}

// StaggeredOrigin returns the canvas position of the n-th root box of a
// group.
func StaggeredOrigin(n int) (x, y float64) {
	offset := RootOrigin + float64(n)*StaggerStep
	return offset, offset
}

// siblings returns a pointer to the sibling list that holds children of parentID.
func (t *Tree) siblings(parentID string) *[]string {
	if parentID == "" {
		return &t.roots
	}
	return &t.boxes[parentID].ChildIDs
}

// Add creates a leaf under parentID, or in the root group when parentID is
// empty, and returns its id. Returns "" when parentID is unknown.
func (t *Tree) Add(parentID string) string {
	if parentID != "" && !t.Has(parentID) {
		return ""
	}
	sibs := t.siblings(parentID)
	b := &models.Box{
		ID:        t.newID(),
		Label:     fmt.Sprintf("Box %d", len(t.boxes)+1),
		Order:     len(*sibs),
		FlexGrow:  1,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Direction: models.DirectionColumn,
		ParentID:  parentID,
		ChildIDs:  []string{},
	}
	if parentID == "" {
		b.X, b.Y = StaggeredOrigin(len(t.roots))
	}
	t.boxes[b.ID] = b
	*sibs = append(*sibs, b.ID)
	return b.ID
}

// Remove deletes id and its whole subtree, unlinks it from its sibling group
// and renumbers the remaining siblings densely. Returns the removed ids in
// pre-order, or nil when id is unknown.
func (t *Tree) Remove(id string) []string {
	b, ok := t.boxes[id]
	if !ok {
		return nil
	}
	removed := t.Subtree(id)
	sibs := t.siblings(b.ParentID)
	*sibs = without(*sibs, id)
	for _, rid := range removed {
		delete(t.boxes, rid)
	}
	t.renumber(*sibs)
	return removed
}

// Move detaches id from its current sibling group and splices it into
// newParentID's group (the root group when empty) at index. Only the moved
// box's Order is rewritten. Refuses moves that would create a cycle.
func (t *Tree) Move(id, newParentID string, index int) bool {
	b, ok := t.boxes[id]
	if !ok {
		return false
	}
	if !CanMove(t.moveContext(id, newParentID)).Allowed {
		return false
	}
	old := t.siblings(b.ParentID)
	*old = without(*old, id)

	b.ParentID = newParentID
	dst := t.siblings(newParentID)
	if index < 0 || index > len(*dst) {
		index = len(*dst)
	}
	*dst = insertAt(*dst, index, id)
	b.Order = index
	return true
}

func (t *Tree) moveContext(id, newParentID string) MoveContext {
	return MoveContext{
		BoxID:              id,
		NewParentID:        newParentID,
		NewParentExists:    newParentID == "" || t.Has(newParentID),
		ParentIsDescendant: newParentID != "" && t.IsDescendant(id, newParentID),
	}
}

// MoveCheck evaluates the move guard against the current tree.
func (t *Tree) MoveCheck(id, newParentID string) GuardResult {
	if !t.Has(id) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("box %s not found", id)}
	}
	return CanMove(t.moveContext(id, newParentID))
}

// SetOrder overwrites the order index of a box. Callers that group roots
// into pages use it to keep each page's roots numbered in page order.
func (t *Tree) SetOrder(id string, order int) bool {
	b, ok := t.boxes[id]
	if !ok {
		return false
	}
	b.Order = order
	return true
}

// UpdatePosition writes x and y.
func (t *Tree) UpdatePosition(id string, x, y float64) bool {
	b, ok := t.boxes[id]
	if !ok {
		return false
	}
	b.X, b.Y = x, y
	return true
}

// UpdateSize writes width and height, clamped to MinWidth and MinHeight.
func (t *Tree) UpdateSize(id string, width, height float64) bool {
	b, ok := t.boxes[id]
	if !ok {
		return false
	}
	b.Width = max(width, MinWidth)
	b.Height = max(height, MinHeight)
	return true
}

// UpdateLabel renames a box.
func (t *Tree) UpdateLabel(id, label string) bool {
	b, ok := t.boxes[id]
	if !ok {
		return false
	}
	b.Label = label
	return true
}

// UpdateSpec replaces the spec of a box. A nil spec clears it.
func (t *Tree) UpdateSpec(id string, spec *models.Spec) bool {
	b, ok := t.boxes[id]
	if !ok {
		return false
	}
	b.Spec = spec.Clone()
	return true
}

// UpdateLayout sets how the box lays out its own children.
func (t *Tree) UpdateLayout(id string, direction models.Direction, gap, padding float64) bool {
	b, ok := t.boxes[id]
	if !ok || !direction.Valid() {
		return false
	}
	b.Direction = direction
	b.Gap = max(gap, 0)
	b.Padding = max(padding, 0)
	return true
}

// UpdateFlex sets the flex-grow factor and optional fixed basis used when
// the box is nested.
func (t *Tree) UpdateFlex(id string, grow float64, basis *float64) bool {
	b, ok := t.boxes[id]
	if !ok {
		return false
	}
	b.FlexGrow = max(grow, 0)
	if basis != nil {
		v := *basis
		b.FlexBasis = &v
	} else {
		b.FlexBasis = nil
	}
	return true
}

// SetSharedComponent sets or clears (componentID == "") the back-reference.
func (t *Tree) SetSharedComponent(id, componentID string) bool {
	b, ok := t.boxes[id]
	if !ok {
		return false
	}
	b.SharedComponentID = componentID
	return true
}

// Duplicate copies the box itself, not its children, and appends the copy
// to the same sibling group. Root copies are offset by DuplicateOffset.
// Returns "" when id is unknown.
func (t *Tree) Duplicate(id string) string {
	src, ok := t.boxes[id]
	if !ok {
		return ""
	}
	cp := src.Clone()
	cp.ID = t.newID()
	cp.Label = src.Label + CopySuffix
	cp.ChildIDs = []string{}
	if cp.IsRoot() {
		cp.X += DuplicateOffset
		cp.Y += DuplicateOffset
	}
	sibs := t.siblings(cp.ParentID)
	cp.Order = len(*sibs)
	t.boxes[cp.ID] = cp
	*sibs = append(*sibs, cp.ID)
	return cp.ID
}

// Normalize renumbers every sibling group densely in its current list order.
func (t *Tree) Normalize() {
	t.renumber(t.roots)
	for _, b := range t.boxes {
		t.renumber(b.ChildIDs)
	}
}

func (t *Tree) renumber(ids []string) {
	for i, id := range ids {
		t.boxes[id].Order = i
	}
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func insertAt(ids []string, index int, id string) []string {
	ids = append(ids, "")
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	return ids
}
