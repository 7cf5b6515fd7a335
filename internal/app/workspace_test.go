package app

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
)

func strPtr(s string) *string { return &s }

func newTestWorkspace(t *testing.T) (*Workspace, *models.Page) {
	t.Helper()
	ws := NewWorkspace(seqIDs("id"))
	page, err := ws.AddPage("Home", "/")
	require.NoError(t, err)
	return ws, page
}

func TestWorkspace_AddPage(t *testing.T) {
	ws, home := newTestWorkspace(t)

	_, err := ws.AddPage("Home", "/other")
	assert.ErrorContains(t, err, "already exists")

	_, err = ws.AddPage("   ", "")
	assert.ErrorContains(t, err, "page name is required")

	settings, err := ws.AddPage("Settings", "/settings")
	require.NoError(t, err)

	byName, err := ws.Page("Settings")
	require.NoError(t, err)
	assert.Equal(t, settings.ID, byName.ID)

	assert.ErrorContains(t, ws.RenamePage(home.ID, "Settings"), "already exists")
	require.NoError(t, ws.RenamePage(home.ID, "Landing"))
	_, err = ws.Page("Landing")
	assert.NoError(t, err)
}

func TestWorkspace_AddBox(t *testing.T) {
	ws, home := newTestWorkspace(t)
	other, err := ws.AddPage("Other", "/other")
	require.NoError(t, err)

	root, err := ws.AddBox(home.ID, "", "Header")
	require.NoError(t, err)
	assert.Equal(t, "Header", root.Label)
	assert.True(t, root.IsRoot())

	child, err := ws.AddBox("Home", root.ID, "")
	require.NoError(t, err)
	assert.Equal(t, root.ID, child.ParentID)

	_, err = ws.AddBox(other.ID, root.ID, "Stray")
	assert.ErrorContains(t, err, "is not on page")

	_, err = ws.AddBox("Missing", "", "")
	assert.ErrorContains(t, err, "page Missing not found")

	page, err := ws.Page(home.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{root.ID}, page.BoxIDs)
	require.NoError(t, ws.CheckConsistency())
}

func TestWorkspace_AddBoxStaggersPerPage(t *testing.T) {
	ws, home := newTestWorkspace(t)
	other, err := ws.AddPage("Other", "/other")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := ws.AddBox(home.ID, "", "")
		require.NoError(t, err)
	}

	first, err := ws.AddBox(other.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, 40.0, first.X)
	assert.Equal(t, 40.0, first.Y)
	assert.Equal(t, 0, first.Order)

	second, err := ws.AddBox(other.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, 64.0, second.X)
	assert.Equal(t, 64.0, second.Y)
	assert.Equal(t, 1, second.Order)
}

func TestWorkspace_SetPageDirection(t *testing.T) {
	ws, home := newTestWorkspace(t)
	assert.Equal(t, models.DirectionColumn, home.Direction)

	require.NoError(t, ws.SetPageDirection("Home", models.DirectionRow))
	page, err := ws.Page(home.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionRow, page.Direction)

	assert.ErrorContains(t, ws.SetPageDirection("Home", "diagonal"), "invalid direction")
	assert.ErrorContains(t, ws.SetPageDirection("Missing", models.DirectionRow), "not found")
}

func TestWorkspace_RenameSharedComponent(t *testing.T) {
	ws, home := newTestWorkspace(t)
	a, err := ws.AddBox(home.ID, "", "Nav")
	require.NoError(t, err)
	b, err := ws.AddBox(home.ID, "", "Footer")
	require.NoError(t, err)
	nav, err := ws.CreateSharedComponent("Nav", a.ID)
	require.NoError(t, err)
	_, err = ws.CreateSharedComponent("Footer", b.ID)
	require.NoError(t, err)

	assert.ErrorContains(t, ws.RenameSharedComponent("Nav", "Footer"), "already exists")
	assert.ErrorContains(t, ws.RenameSharedComponent("Nav", "  "), "name is required")
	require.NoError(t, ws.RenameSharedComponent("Nav", "Nav"))
	require.NoError(t, ws.RenameSharedComponent(nav.ID, "TopNav"))

	comps := ws.SharedComponents()
	require.Len(t, comps, 2)
	assert.Equal(t, "TopNav", comps[0].Name)
	assert.Equal(t, nav.ID, comps[0].ID)
}

func TestWorkspace_DeletePageRemovesSubtreeAndInstances(t *testing.T) {
	ws, home := newTestWorkspace(t)
	other, err := ws.AddPage("Other", "")
	require.NoError(t, err)

	root, _ := ws.AddBox(home.ID, "", "Card")
	child, _ := ws.AddBox(home.ID, root.ID, "Body")
	keep, _ := ws.AddBox(other.ID, "", "Card copy")

	comp, err := ws.CreateSharedComponent("Card", root.ID)
	require.NoError(t, err)
	require.NoError(t, ws.AttachToComponent("Card", keep.ID))

	removed, err := ws.DeletePage("Home")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root.ID, child.ID}, removed)

	c, err := ws.component(comp.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, c.InstanceIDs)
	require.NoError(t, ws.CheckConsistency())
}

func TestWorkspace_MoveBox(t *testing.T) {
	ws, home := newTestWorkspace(t)
	a, _ := ws.AddBox(home.ID, "", "A")
	b, _ := ws.AddBox(home.ID, "", "B")
	c, _ := ws.AddBox(home.ID, "", "C")

	t.Run("root into container", func(t *testing.T) {
		require.NoError(t, ws.MoveBox(c.ID, a.ID, 0))
		page, _ := ws.Page(home.ID)
		assert.Equal(t, []string{a.ID, b.ID}, page.BoxIDs)
		moved, _ := ws.Box(c.ID)
		assert.Equal(t, a.ID, moved.ParentID)
		require.NoError(t, ws.CheckConsistency())
	})

	t.Run("nested back to root at index", func(t *testing.T) {
		require.NoError(t, ws.MoveBox(c.ID, "", 0))
		page, _ := ws.Page(home.ID)
		assert.Equal(t, []string{c.ID, a.ID, b.ID}, page.BoxIDs)
		for i, id := range page.BoxIDs {
			box, _ := ws.Box(id)
			assert.Equal(t, i, box.Order, id)
		}
		require.NoError(t, ws.CheckConsistency())
	})

	t.Run("into own descendant", func(t *testing.T) {
		inner, _ := ws.AddBox(home.ID, a.ID, "Inner")
		assert.Error(t, ws.MoveBox(a.ID, inner.ID, 0))
		assert.Error(t, ws.MoveBox(a.ID, a.ID, 0))
	})
}

func TestWorkspace_DuplicateBox(t *testing.T) {
	ws, home := newTestWorkspace(t)
	root, _ := ws.AddBox(home.ID, "", "Card")
	_, _ = ws.AddBox(home.ID, root.ID, "Body")
	require.NoError(t, ws.PlaceBox(root.ID, 10, 20))
	comp, err := ws.CreateSharedComponent("Card", root.ID)
	require.NoError(t, err)

	cp, err := ws.DuplicateBox(root.ID)
	require.NoError(t, err)
	assert.Equal(t, "Card (copy)", cp.Label)
	assert.Empty(t, cp.ChildIDs)
	assert.Equal(t, 34.0, cp.X)
	assert.Equal(t, 44.0, cp.Y)
	assert.Equal(t, comp.ID, cp.SharedComponentID)

	c, _ := ws.component(comp.ID)
	assert.ElementsMatch(t, []string{root.ID, cp.ID}, c.InstanceIDs)

	page, _ := ws.Page(home.ID)
	assert.Equal(t, []string{root.ID, cp.ID}, page.BoxIDs)
	require.NoError(t, ws.CheckConsistency())
}

func TestWorkspace_PlaceBoxNestedRejected(t *testing.T) {
	ws, home := newTestWorkspace(t)
	root, _ := ws.AddBox(home.ID, "", "")
	child, _ := ws.AddBox(home.ID, root.ID, "")
	assert.ErrorContains(t, ws.PlaceBox(child.ID, 1, 1), "nested")
	assert.NoError(t, ws.PlaceBox(root.ID, 1, 1))
}

func TestWorkspace_UpdateBoxSpec(t *testing.T) {
	ws, home := newTestWorkspace(t)
	box, _ := ws.AddBox(home.ID, "", "Button")

	spec, err := ws.UpdateBoxSpec(primary.UpdateSpecRequest{
		BoxID:       box.ID,
		Intent:      strPtr("Primary call to action"),
		States:      []models.StateDescription{{State: "hover", Description: "darker"}},
		Refinements: []string{"rounded corners"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Primary call to action", spec.Intent)

	spec, err = ws.UpdateBoxSpec(primary.UpdateSpecRequest{
		BoxID:  box.ID,
		States: []models.StateDescription{{State: "hover", Description: "lighter"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []models.StateDescription{{State: "hover", Description: "lighter"}}, spec.States)
	assert.Equal(t, []string{"rounded corners"}, spec.Refinements)

	spec, err = ws.UpdateBoxSpec(primary.UpdateSpecRequest{BoxID: box.ID, Clear: true})
	require.NoError(t, err)
	assert.Nil(t, spec)
	got, _ := ws.Box(box.ID)
	assert.Nil(t, got.Spec)
}

func TestWorkspace_SharedSpecMirrorsToInstances(t *testing.T) {
	ws, home := newTestWorkspace(t)
	a, _ := ws.AddBox(home.ID, "", "Nav")
	b, _ := ws.AddBox(home.ID, "", "Nav again")
	_, err := ws.UpdateBoxSpec(primary.UpdateSpecRequest{BoxID: a.ID, Intent: strPtr("site navigation")})
	require.NoError(t, err)

	comp, err := ws.CreateSharedComponent("Nav", a.ID)
	require.NoError(t, err)
	require.NoError(t, ws.AttachToComponent(comp.ID, b.ID))

	attached, _ := ws.Box(b.ID)
	require.NotNil(t, attached.Spec)
	assert.Equal(t, "site navigation", attached.Spec.Intent)

	_, err = ws.UpdateBoxSpec(primary.UpdateSpecRequest{BoxID: b.ID, Behavior: strPtr("collapses on mobile")})
	require.NoError(t, err)

	for _, id := range []string{a.ID, b.ID} {
		box, _ := ws.Box(id)
		assert.Equal(t, "collapses on mobile", box.Spec.Behavior, id)
	}
	c, _ := ws.component(comp.ID)
	assert.Equal(t, "collapses on mobile", c.Spec.Behavior)

	assert.Error(t, ws.AttachToComponent(comp.ID, b.ID), "already an instance")
	_, err = ws.CreateSharedComponent("Nav", b.ID)
	assert.Error(t, err)

	require.NoError(t, ws.DetachFromComponent(b.ID))
	detached, _ := ws.Box(b.ID)
	assert.Empty(t, detached.SharedComponentID)
	assert.Equal(t, "collapses on mobile", detached.Spec.Behavior)
	assert.Error(t, ws.DetachFromComponent(b.ID))

	require.NoError(t, ws.DeleteSharedComponent("Nav"))
	plain, _ := ws.Box(a.ID)
	assert.Empty(t, plain.SharedComponentID)
	require.NoError(t, ws.CheckConsistency())
}

func TestWorkspace_RecordGeneratedCode(t *testing.T) {
	ws, home := newTestWorkspace(t)
	a, _ := ws.AddBox(home.ID, "", "Nav")
	plain, _ := ws.AddBox(home.ID, "", "Plain")
	comp, err := ws.CreateSharedComponent("Nav", a.ID)
	require.NoError(t, err)

	assert.True(t, ws.RecordGeneratedCode(a.ID, "<nav/>"))
	assert.False(t, ws.RecordGeneratedCode(plain.ID, "<div/>"))

	c, _ := ws.component(comp.ID)
	assert.Equal(t, "<nav/>", c.Code)
}

func TestWorkspace_UpdateBoxLayout(t *testing.T) {
	ws, home := newTestWorkspace(t)
	box, _ := ws.AddBox(home.ID, "", "")

	row := models.DirectionRow
	gap, padding, basis := 8.0, 16.0, 120.0
	require.NoError(t, ws.UpdateBoxLayout(primary.UpdateLayoutRequest{
		BoxID: box.ID, Direction: &row, Gap: &gap, Padding: &padding, FlexBasis: &basis,
	}))
	got, _ := ws.Box(box.ID)
	assert.Equal(t, models.DirectionRow, got.Direction)
	assert.Equal(t, 8.0, got.Gap)
	require.NotNil(t, got.FlexBasis)
	assert.Equal(t, 120.0, *got.FlexBasis)

	require.NoError(t, ws.UpdateBoxLayout(primary.UpdateLayoutRequest{BoxID: box.ID, ClearBasis: true}))
	got, _ = ws.Box(box.ID)
	assert.Nil(t, got.FlexBasis)
	assert.Equal(t, 16.0, got.Padding)

	diagonal := models.Direction("diagonal")
	assert.ErrorContains(t, ws.UpdateBoxLayout(primary.UpdateLayoutRequest{BoxID: box.ID, Direction: &diagonal}), "invalid direction")

	negative := -1.0
	assert.ErrorContains(t, ws.UpdateBoxLayout(primary.UpdateLayoutRequest{BoxID: box.ID, Gap: &negative}), "negative")
}

func TestWorkspace_UpdateContext(t *testing.T) {
	ws := NewWorkspace(nil)

	pc, err := ws.UpdateContext(primary.UpdateContextRequest{
		Framework:   strPtr(" vue "),
		Constraints: []string{"no inline styles"},
		Tokens: map[string][]models.Token{
			"colors": {{Name: "primary", Value: "#123456"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "vue", pc.Framework)
	assert.Equal(t, "typescript", pc.Language)
	assert.Equal(t, []models.Token{{Name: "primary", Value: "#123456"}}, pc.Tokens.Colors)

	pc, err = ws.UpdateContext(primary.UpdateContextRequest{
		Tokens: map[string][]models.Token{
			"colors": {{Name: "primary", Value: "#abcdef"}, {Name: "accent", Value: "red"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []models.Token{{Name: "primary", Value: "#abcdef"}, {Name: "accent", Value: "red"}}, pc.Tokens.Colors)

	_, err = ws.UpdateContext(primary.UpdateContextRequest{
		Tokens: map[string][]models.Token{"shadows": {{Name: "sm", Value: "1px"}}},
	})
	assert.ErrorContains(t, err, "unknown token group")
}

func TestWorkspace_Prompts(t *testing.T) {
	ws, home := newTestWorkspace(t)
	box, _ := ws.AddBox(home.ID, "", "Hero")
	_, err := ws.UpdateBoxSpec(primary.UpdateSpecRequest{BoxID: box.ID, Intent: strPtr("big welcome banner")})
	require.NoError(t, err)

	assert.NotEmpty(t, ws.SystemPrompt())

	pagePrompt, err := ws.PagePrompt("Home")
	require.NoError(t, err)
	assert.Contains(t, pagePrompt, "big welcome banner")

	boxPrompt, err := ws.BoxPrompt(box.ID)
	require.NoError(t, err)
	assert.Contains(t, boxPrompt, "big welcome banner")

	_, err = ws.BoxPrompt("missing")
	assert.Error(t, err)
}

func TestWorkspace_SnapshotRoundTrip(t *testing.T) {
	ws, home := newTestWorkspace(t)
	a, _ := ws.AddBox(home.ID, "", "A")
	b, _ := ws.AddBox(home.ID, "", "B")
	_, _ = ws.AddBox(home.ID, a.ID, "A1")
	require.NoError(t, ws.MoveBox(b.ID, "", 0))

	restored := WorkspaceFromSnapshot(cloneSnapshot(ws.Snapshot()), nil)
	require.NoError(t, restored.CheckConsistency())

	page, err := restored.Page(home.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, page.BoxIDs)

	view, err := restored.Tree("")
	require.NoError(t, err)
	assert.Len(t, view.Boxes, 3)
}

// TestWorkspace_RandomOperationsStayConsistent applies long random
// sequences of edits and checks the cross-entity invariants after each.
func TestWorkspace_RandomOperationsStayConsistent(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		ws := NewWorkspace(seqIDs("r"))
		_, err := ws.AddPage("P0", "")
		require.NoError(t, err)

		pick := func(ids []string) string {
			if len(ids) == 0 {
				return ""
			}
			return ids[rng.Intn(len(ids))]
		}
		boxIDs := func() []string {
			var ids []string
			for _, b := range ws.tree.All() {
				ids = append(ids, b.ID)
			}
			return ids
		}
		pageIDs := func() []string {
			var ids []string
			for _, p := range ws.Pages() {
				ids = append(ids, p.ID)
			}
			return ids
		}
		compIDs := func() []string {
			var ids []string
			for _, c := range ws.SharedComponents() {
				ids = append(ids, c.ID)
			}
			return ids
		}

		for step := 0; step < 200; step++ {
			switch rng.Intn(10) {
			case 0:
				_, _ = ws.AddPage(seqName(rng), "")
			case 1, 2:
				pageID := pick(pageIDs())
				parent := ""
				if rng.Intn(2) == 0 {
					if p, err := ws.Page(pageID); err == nil {
						for _, id := range boxIDs() {
							if owner, _ := ws.PageOfBox(id); owner == p.ID {
								parent = id
								break
							}
						}
					}
				}
				if pageID != "" {
					_, _ = ws.AddBox(pageID, parent, "")
				}
			case 3:
				_ = ws.MoveBox(pick(boxIDs()), pick(append(boxIDs(), "")), rng.Intn(4)-1)
			case 4:
				_, _ = ws.DuplicateBox(pick(boxIDs()))
			case 5:
				_, _ = ws.DeleteBox(pick(boxIDs()))
			case 6:
				_, _ = ws.CreateSharedComponent(seqName(rng), pick(boxIDs()))
			case 7:
				_ = ws.AttachToComponent(pick(compIDs()), pick(boxIDs()))
			case 8:
				if rng.Intn(2) == 0 {
					_ = ws.DetachFromComponent(pick(boxIDs()))
				} else {
					_ = ws.DeleteSharedComponent(pick(compIDs()))
				}
			case 9:
				if rng.Intn(4) == 0 {
					_, _ = ws.DeletePage(pick(pageIDs()))
				} else {
					_, _ = ws.UpdateBoxSpec(primary.UpdateSpecRequest{BoxID: pick(boxIDs()), Intent: strPtr("x")})
				}
			}
			require.NoError(t, ws.CheckConsistency(), "seed %d step %d", seed, step)
		}
	}
}

func seqName(rng *rand.Rand) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 6)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}
