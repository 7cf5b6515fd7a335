package project

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boxforge/internal/models"
)

func newTestModel() *Model {
	n := 0
	return New(WithIDFunc(func() string {
		n++
		return fmt.Sprintf("ID-%03d", n)
	}))
}

func TestAddPage(t *testing.T) {
	m := newTestModel()
	id := m.AddPage("Home", "/")

	p, ok := m.Page(id)
	require.True(t, ok)
	assert.Equal(t, "Home", p.Name)
	assert.Equal(t, "/", p.Route)
	assert.Equal(t, models.DirectionColumn, p.Direction)
	assert.Empty(t, p.BoxIDs)
}

func TestFindPage_ByIDOrName(t *testing.T) {
	m := newTestModel()
	id := m.AddPage("Settings", "")

	byID, ok := m.FindPage(id)
	require.True(t, ok)
	byName, ok := m.FindPage("Settings")
	require.True(t, ok)
	assert.Equal(t, byID.ID, byName.ID)

	_, ok = m.FindPage("Missing")
	assert.False(t, ok)
}

func TestPageMutators(t *testing.T) {
	m := newTestModel()
	id := m.AddPage("Home", "")

	assert.True(t, m.RenamePage(id, "Landing"))
	assert.True(t, m.SetPageRoute(id, "/landing"))
	assert.True(t, m.SetPageDirection(id, models.DirectionRow))
	assert.False(t, m.SetPageDirection(id, models.Direction("zigzag")))

	p, _ := m.Page(id)
	assert.Equal(t, "Landing", p.Name)
	assert.Equal(t, "/landing", p.Route)
	assert.Equal(t, models.DirectionRow, p.Direction)

	assert.False(t, m.RenamePage("nope", "x"))
	assert.False(t, m.SetPageRoute("nope", "/x"))
}

func TestRootBoxMembership(t *testing.T) {
	m := newTestModel()
	home := m.AddPage("Home", "")
	about := m.AddPage("About", "")

	require.True(t, m.AddRootBox(home, "BOX-1"))
	require.True(t, m.AddRootBox(about, "BOX-2"))
	assert.False(t, m.AddRootBox(home, "BOX-1"), "duplicate add should be a no-op")
	assert.False(t, m.AddRootBox("nope", "BOX-3"))

	pageID, ok := m.PageOf("BOX-2")
	require.True(t, ok)
	assert.Equal(t, about, pageID)

	pageID, ok = m.RemoveRootBox("BOX-1")
	require.True(t, ok)
	assert.Equal(t, home, pageID)
	p, _ := m.Page(home)
	assert.Empty(t, p.BoxIDs)

	_, ok = m.RemoveRootBox("BOX-1")
	assert.False(t, ok)
}

func TestInsertRootBox(t *testing.T) {
	m := newTestModel()
	home := m.AddPage("Home", "")

	require.True(t, m.AddRootBox(home, "A"))
	require.True(t, m.AddRootBox(home, "B"))
	require.True(t, m.InsertRootBox(home, "C", 0))
	require.True(t, m.InsertRootBox(home, "D", 2))
	require.True(t, m.InsertRootBox(home, "E", 99))
	assert.False(t, m.InsertRootBox(home, "A", 0))

	p, _ := m.Page(home)
	assert.Equal(t, []string{"C", "A", "D", "B", "E"}, p.BoxIDs)
}

func TestRemovePage_ReturnsOwnedBoxes(t *testing.T) {
	m := newTestModel()
	home := m.AddPage("Home", "")
	m.AddRootBox(home, "BOX-1")
	m.AddRootBox(home, "BOX-2")

	removed, ok := m.RemovePage(home)
	require.True(t, ok)
	assert.Equal(t, []string{"BOX-1", "BOX-2"}, removed.BoxIDs)
	assert.Empty(t, m.Pages())

	_, ok = m.RemovePage(home)
	assert.False(t, ok)
}

func TestSharedComponentLifecycle(t *testing.T) {
	m := newTestModel()
	spec := &models.Spec{Intent: "primary button"}

	id := m.CreateSharedComponentFromBox("Button", spec, "BOX-1")
	spec.Intent = "mutated"

	c, ok := m.SharedComponent(id)
	require.True(t, ok)
	assert.Equal(t, "Button", c.Name)
	assert.Equal(t, "primary button", c.Spec.Intent)
	assert.Equal(t, []string{"BOX-1"}, c.InstanceIDs)

	assert.True(t, m.AddInstance(id, "BOX-2"))
	assert.False(t, m.AddInstance(id, "BOX-2"))
	assert.True(t, m.RemoveInstance(id, "BOX-1"))
	assert.False(t, m.RemoveInstance(id, "BOX-1"))

	assert.True(t, m.SetComponentCode(id, "export function Button() {}"))
	assert.True(t, m.UpdateComponentSpec(id, &models.Spec{Intent: "ghost button"}))
	assert.True(t, m.RenameComponent(id, "GhostButton"))

	byName, ok := m.FindSharedComponent("GhostButton")
	require.True(t, ok)
	assert.Equal(t, id, byName.ID)
	assert.Equal(t, "ghost button", byName.Spec.Intent)
	assert.Equal(t, "export function Button() {}", byName.Code)

	former, ok := m.DeleteSharedComponent(id)
	require.True(t, ok)
	assert.Equal(t, []string{"BOX-2"}, former)
	assert.Empty(t, m.SharedComponents())
	_, ok = m.DeleteSharedComponent(id)
	assert.False(t, ok)
}

func TestSharedComponents_CreationOrder(t *testing.T) {
	m := newTestModel()
	a := m.CreateSharedComponentFromBox("A", nil, "BOX-1")
	b := m.CreateSharedComponentFromBox("B", nil, "BOX-2")
	c := m.CreateSharedComponentFromBox("C", nil, "BOX-3")
	m.DeleteSharedComponent(b)

	var got []string
	for _, sc := range m.SharedComponents() {
		got = append(got, sc.ID)
	}
	assert.Equal(t, []string{a, c}, got)
	assert.Len(t, m.ComponentIndex(), 2)
}

func TestContext_DefaultsAndCopy(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, models.DefaultProjectContext(), m.Context())

	ctx := m.Context()
	ctx.Framework = models.FrameworkVue
	ctx.Constraints = []string{"no inline styles"}
	m.SetContext(ctx)
	ctx.Constraints[0] = "mutated"

	got := m.Context()
	assert.Equal(t, models.FrameworkVue, got.Framework)
	assert.Equal(t, []string{"no inline styles"}, got.Constraints)
}

func TestRestore(t *testing.T) {
	pages := []*models.Page{{ID: "P-1", Name: "Home", BoxIDs: []string{"BOX-1"}}}
	comps := []*models.SharedComponent{{ID: "SC-1", Name: "Nav", InstanceIDs: []string{"BOX-1"}}}
	ctx := models.DefaultProjectContext()
	ctx.Notes = "restored"

	m := Restore(pages, comps, ctx)
	pages[0].Name = "mutated"

	p, ok := m.Page("P-1")
	require.True(t, ok)
	assert.Equal(t, "Home", p.Name)
	c, ok := m.SharedComponent("SC-1")
	require.True(t, ok)
	assert.Equal(t, []string{"BOX-1"}, c.InstanceIDs)
	assert.Equal(t, "restored", m.Context().Notes)
}
