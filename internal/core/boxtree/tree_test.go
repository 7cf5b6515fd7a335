package boxtree

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boxforge/internal/models"
)

// seqIDs returns an IDFunc yielding BOX-001, BOX-002, ...
func seqIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("BOX-%03d", n)
	}
}

func newTestTree() *Tree {
	return New(WithIDFunc(seqIDs()))
}

func TestAdd_RootStagger(t *testing.T) {
	tr := newTestTree()
	a := tr.Add("")
	b := tr.Add("")

	boxA, _ := tr.Get(a)
	boxB, _ := tr.Get(b)

	assert.Equal(t, RootOrigin, boxA.X)
	assert.Equal(t, RootOrigin, boxA.Y)
	assert.Equal(t, RootOrigin+StaggerStep, boxB.X)
	assert.Equal(t, RootOrigin+StaggerStep, boxB.Y)
	assert.Equal(t, 0, boxA.Order)
	assert.Equal(t, 1, boxB.Order)
	assert.Equal(t, []string{a, b}, tr.Roots())
	assert.Nil(t, boxA.Spec)
	assert.Equal(t, DefaultWidth, boxA.Width)
	assert.Equal(t, DefaultHeight, boxA.Height)
}

func TestAdd_Nested(t *testing.T) {
	tr := newTestTree()
	root := tr.Add("")
	c1 := tr.Add(root)
	c2 := tr.Add(root)

	assert.Equal(t, []string{c1, c2}, tr.Children(root))
	child, _ := tr.Get(c2)
	assert.Equal(t, root, child.ParentID)
	assert.Equal(t, 1, child.Order)
	assert.Equal(t, 0.0, child.X)
	assert.Equal(t, models.DirectionColumn, child.Direction)
	require.NoError(t, tr.CheckInvariants())
}

func TestAdd_UnknownParent(t *testing.T) {
	tr := newTestTree()
	if id := tr.Add("BOX-999"); id != "" {
		t.Errorf("Add() = %q, want empty id", id)
	}
	assert.Equal(t, 0, tr.Len())
}

func TestRemove_SubtreeAndRenumber(t *testing.T) {
	tr := newTestTree()
	root := tr.Add("")
	a := tr.Add(root)
	b := tr.Add(root)
	c := tr.Add(root)
	grand := tr.Add(b)

	removed := tr.Remove(b)

	assert.Equal(t, []string{b, grand}, removed)
	assert.False(t, tr.Has(b))
	assert.False(t, tr.Has(grand))
	assert.Equal(t, []string{a, c}, tr.Children(root))
	boxC, _ := tr.Get(c)
	assert.Equal(t, 1, boxC.Order)
	assert.True(t, tr.OrdersDense())
	require.NoError(t, tr.CheckInvariants())
}

func TestRemove_Unknown(t *testing.T) {
	tr := newTestTree()
	tr.Add("")
	assert.Nil(t, tr.Remove("BOX-999"))
	assert.Equal(t, 1, tr.Len())
}

func TestMove_RewritesOnlyMovedOrder(t *testing.T) {
	tr := newTestTree()
	p1 := tr.Add("")
	p2 := tr.Add("")
	a := tr.Add(p1)
	b := tr.Add(p1)
	c := tr.Add(p1)
	x := tr.Add(p2)

	ok := tr.Move(a, p2, 0)
	require.True(t, ok)

	assert.Equal(t, []string{b, c}, tr.Children(p1))
	assert.Equal(t, []string{a, x}, tr.Children(p2))

	boxA, _ := tr.Get(a)
	boxB, _ := tr.Get(b)
	boxX, _ := tr.Get(x)
	assert.Equal(t, p2, boxA.ParentID)
	assert.Equal(t, 0, boxA.Order)
	// Siblings left behind and displaced keep their old order values.
	assert.Equal(t, 1, boxB.Order)
	assert.Equal(t, 0, boxX.Order)
	require.NoError(t, tr.CheckInvariants())
}

func TestMove_ToRootAndBack(t *testing.T) {
	tr := newTestTree()
	p := tr.Add("")
	child := tr.Add(p)

	require.True(t, tr.Move(child, "", 5))
	assert.Equal(t, []string{p, child}, tr.Roots())
	boxChild, _ := tr.Get(child)
	assert.True(t, boxChild.IsRoot())
	assert.Equal(t, 1, boxChild.Order)

	require.True(t, tr.Move(child, p, 0))
	assert.Equal(t, []string{p}, tr.Roots())
	assert.Equal(t, []string{child}, tr.Children(p))
	require.NoError(t, tr.CheckInvariants())
}

func TestMove_RefusesCycles(t *testing.T) {
	tr := newTestTree()
	root := tr.Add("")
	mid := tr.Add(root)
	leaf := tr.Add(mid)

	tests := []struct {
		name      string
		id        string
		newParent string
	}{
		{"into own child", root, mid},
		{"into own grandchild", root, leaf},
		{"into itself", mid, mid},
		{"into unknown parent", leaf, "BOX-999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tr.Snapshot()
			if tr.Move(tt.id, tt.newParent, 0) {
				t.Errorf("Move(%s, %s) = true, want false", tt.id, tt.newParent)
			}
			if diff := cmp.Diff(before, tr.Snapshot()); diff != "" {
				t.Errorf("tree changed on refused move (-before +after):\n%s", diff)
			}
		})
	}
}

func TestUpdateSize_Clamps(t *testing.T) {
	tr := newTestTree()
	id := tr.Add("")

	require.True(t, tr.UpdateSize(id, 10, -5))
	b, _ := tr.Get(id)
	assert.Equal(t, MinWidth, b.Width)
	assert.Equal(t, MinHeight, b.Height)

	require.True(t, tr.UpdateSize(id, 500, 300))
	b, _ = tr.Get(id)
	assert.Equal(t, 500.0, b.Width)
	assert.Equal(t, 300.0, b.Height)
}

func TestMutators_UnknownIDAreNoOps(t *testing.T) {
	tr := newTestTree()
	tr.Add("")
	before := tr.Snapshot()

	assert.False(t, tr.UpdatePosition("nope", 1, 1))
	assert.False(t, tr.UpdateSize("nope", 100, 100))
	assert.False(t, tr.UpdateLabel("nope", "x"))
	assert.False(t, tr.UpdateSpec("nope", &models.Spec{Intent: "x"}))
	assert.False(t, tr.UpdateLayout("nope", models.DirectionRow, 0, 0))
	assert.False(t, tr.UpdateFlex("nope", 2, nil))
	assert.False(t, tr.SetSharedComponent("nope", "SC-1"))
	assert.False(t, tr.Move("nope", "", 0))
	assert.Equal(t, "", tr.Duplicate("nope"))

	assert.Empty(t, cmp.Diff(before, tr.Snapshot()))
}

func TestUpdateSpec_StoresCopy(t *testing.T) {
	tr := newTestTree()
	id := tr.Add("")
	spec := &models.Spec{Intent: "nav bar", Refinements: []string{"sticky"}}

	require.True(t, tr.UpdateSpec(id, spec))
	spec.Refinements[0] = "mutated"

	b, _ := tr.Get(id)
	assert.Equal(t, []string{"sticky"}, b.Spec.Refinements)

	require.True(t, tr.UpdateSpec(id, nil))
	b, _ = tr.Get(id)
	assert.Nil(t, b.Spec)
}

func TestUpdateLayout_RejectsUnknownDirection(t *testing.T) {
	tr := newTestTree()
	id := tr.Add("")
	assert.False(t, tr.UpdateLayout(id, models.Direction("diagonal"), 8, 8))
	assert.True(t, tr.UpdateLayout(id, models.DirectionRow, 8, -1))
	b, _ := tr.Get(id)
	assert.Equal(t, models.DirectionRow, b.Direction)
	assert.Equal(t, 8.0, b.Gap)
	assert.Equal(t, 0.0, b.Padding)
}

func TestDuplicate_RootIsShallowAndOffset(t *testing.T) {
	tr := newTestTree()
	src := tr.Add("")
	tr.Add(src)
	require.True(t, tr.UpdateLabel(src, "Card"))
	require.True(t, tr.UpdateSpec(src, &models.Spec{Intent: "product card"}))
	require.True(t, tr.SetSharedComponent(src, "SC-1"))

	cp := tr.Duplicate(src)
	require.NotEmpty(t, cp)

	orig, _ := tr.Get(src)
	dup, _ := tr.Get(cp)
	assert.Equal(t, "Card (copy)", dup.Label)
	assert.Empty(t, dup.ChildIDs)
	assert.Equal(t, orig.X+DuplicateOffset, dup.X)
	assert.Equal(t, orig.Y+DuplicateOffset, dup.Y)
	assert.Equal(t, "product card", dup.Spec.Intent)
	assert.Equal(t, "SC-1", dup.SharedComponentID)
	assert.Equal(t, 1, dup.Order)
	assert.Equal(t, []string{src, cp}, tr.Roots())
	require.NoError(t, tr.CheckInvariants())
}

func TestDuplicate_NestedAppendsWithoutOffset(t *testing.T) {
	tr := newTestTree()
	root := tr.Add("")
	a := tr.Add(root)
	tr.Add(root)

	cp := tr.Duplicate(a)
	dup, _ := tr.Get(cp)
	orig, _ := tr.Get(a)

	assert.Equal(t, root, dup.ParentID)
	assert.Equal(t, 2, dup.Order)
	assert.Equal(t, orig.X, dup.X)
	assert.Equal(t, cp, tr.Children(root)[2])
}

func TestAll_PreOrder(t *testing.T) {
	tr := newTestTree()
	r1 := tr.Add("")
	r2 := tr.Add("")
	a := tr.Add(r1)
	b := tr.Add(a)
	c := tr.Add(r2)

	var got []string
	for _, box := range tr.All() {
		got = append(got, box.ID)
	}
	assert.Equal(t, []string{r1, a, b, r2, c}, got)
	assert.Equal(t, []string{a, b}, tr.Subtree(a))

	root, ok := tr.RootOf(b)
	assert.True(t, ok)
	assert.Equal(t, r1, root)
}

func TestFromBoxes_RestoresRootOrder(t *testing.T) {
	src := newTestTree()
	r1 := src.Add("")
	r2 := src.Add("")
	src.Add(r2)
	require.True(t, src.Move(r2, "", 0))
	src.Normalize()

	restored := FromBoxes(src.All())
	assert.Equal(t, []string{r2, r1}, restored.Roots())
	assert.Empty(t, cmp.Diff(src.Snapshot(), restored.Snapshot()))
	require.NoError(t, restored.CheckInvariants())
}

func TestCheckInvariants_DetectsCorruption(t *testing.T) {
	tr := newTestTree()
	root := tr.Add("")
	child := tr.Add(root)
	tr.boxes[child].ParentID = "BOX-999"

	assert.Error(t, tr.CheckInvariants())
}

// TestRandomOperations_PreserveInvariants drives the tree through a seeded
// sequence of structural mutations and checks structure after each step.
func TestRandomOperations_PreserveInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tr := newTestTree()

	pick := func() string {
		all := tr.All()
		if len(all) == 0 {
			return ""
		}
		return all[rng.Intn(len(all))].ID
	}

	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(10); {
		case op < 4:
			parent := ""
			if rng.Intn(3) > 0 {
				parent = pick()
			}
			tr.Add(parent)
		case op < 6:
			if id := pick(); id != "" {
				parent := tr.boxes[id].ParentID
				tr.Remove(id)
				sibs := tr.roots
				if parent != "" {
					sibs = tr.boxes[parent].ChildIDs
				}
				for i, sid := range sibs {
					if tr.boxes[sid].Order != i {
						t.Fatalf("step %d: sibling order not dense after remove", step)
					}
				}
			}
		case op < 9:
			id, target := pick(), pick()
			if id == "" {
				continue
			}
			if rng.Intn(4) == 0 {
				target = ""
			}
			expectOK := tr.MoveCheck(id, target).Allowed
			if got := tr.Move(id, target, rng.Intn(5)); got != expectOK {
				t.Fatalf("step %d: Move() = %v, guard said %v", step, got, expectOK)
			}
		default:
			if id := pick(); id != "" {
				tr.Duplicate(id)
			}
		}
		if err := tr.CheckInvariants(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}
}
