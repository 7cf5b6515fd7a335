package sqlite_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boxforge/internal/adapters/sqlite"
	"github.com/example/boxforge/internal/core/boxtree"
	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/secondary"
)

func TestProjectRepository_LoadEmpty(t *testing.T) {
	repo := sqlite.NewProjectRepository(setupTestDB(t))

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Pages)
	assert.Empty(t, snap.Boxes)
	assert.Empty(t, snap.Components)
	assert.Equal(t, models.DefaultProjectContext(), snap.Context)
}

func TestProjectRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProjectRepository(setupTestDB(t))

	root := sampleBox("BOX-R", "", "BOX-B", "BOX-A")
	root.FlexBasis = nil
	root.X, root.Y = 40, 64
	root.Order = 0
	a := sampleBox("BOX-A", "BOX-R")
	a.Order = 1
	a.SharedComponentID = "COMP-1"
	b := sampleBox("BOX-B", "BOX-R")
	b.Spec = nil
	second := sampleBox("BOX-S", "")
	second.Order = 0

	pc := models.DefaultProjectContext()
	pc.Constraints = []string{"no inline styles"}
	pc.Tokens.Colors = []models.Token{{Name: "primary", Value: "#0af"}}

	snap := &secondary.ProjectSnapshot{
		Pages: []*models.Page{
			{ID: "PAGE-2", Name: "Settings", Direction: models.DirectionColumn, BoxIDs: []string{"BOX-S"}},
			{ID: "PAGE-1", Name: "Home", Route: "/", Direction: models.DirectionRow, BoxIDs: []string{"BOX-R"}},
		},
		// Roots in tree order: BOX-R before BOX-S although both have Order 0.
		Boxes: []*models.Box{root, b, a, second},
		Components: []*models.SharedComponent{{
			ID:          "COMP-1",
			Name:        "Card",
			Spec:        models.Spec{Intent: "a card"},
			Code:        "export function Card() {}",
			InstanceIDs: []string{"BOX-A"},
		}},
		Context: pc,
	}
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Load(ctx)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(snap.Pages, got.Pages))
	assert.Empty(t, cmp.Diff(snap.Components, got.Components))
	assert.Empty(t, cmp.Diff(snap.Context, got.Context))

	tree := boxtree.FromBoxes(got.Boxes)
	require.NoError(t, tree.CheckInvariants())
	assert.Equal(t, []string{"BOX-R", "BOX-S"}, tree.Roots())
	assert.Equal(t, []string{"BOX-B", "BOX-A"}, tree.Children("BOX-R"))

	want := map[string]*models.Box{"BOX-R": root, "BOX-A": a, "BOX-B": b, "BOX-S": second}
	assert.Empty(t, cmp.Diff(want, tree.Snapshot()))
}

func TestProjectRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProjectRepository(setupTestDB(t))

	first := &secondary.ProjectSnapshot{
		Pages:   []*models.Page{{ID: "PAGE-1", Name: "Home", Direction: models.DirectionColumn, BoxIDs: []string{"BOX-1"}}},
		Boxes:   []*models.Box{sampleBox("BOX-1", "")},
		Context: models.DefaultProjectContext(),
	}
	require.NoError(t, repo.Save(ctx, first))

	second := &secondary.ProjectSnapshot{
		Pages:   []*models.Page{{ID: "PAGE-9", Name: "About", Direction: models.DirectionColumn, BoxIDs: []string{}}},
		Context: models.DefaultProjectContext(),
	}
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Pages, 1)
	assert.Equal(t, "PAGE-9", got.Pages[0].ID)
	assert.Empty(t, got.Boxes)
}

func TestProjectRepository_DuplicateComponentNameFails(t *testing.T) {
	repo := sqlite.NewProjectRepository(setupTestDB(t))

	err := repo.Save(context.Background(), &secondary.ProjectSnapshot{
		Components: []*models.SharedComponent{
			{ID: "COMP-1", Name: "Card"},
			{ID: "COMP-2", Name: "Card"},
		},
		Context: models.DefaultProjectContext(),
	})
	assert.ErrorContains(t, err, "failed to save shared component COMP-2")
}
