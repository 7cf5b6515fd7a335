// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/secondary"
)

// ProjectRepository implements secondary.ProjectRepository with SQLite.
type ProjectRepository struct {
	db *sql.DB
}

var _ secondary.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new SQLite project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Load reads the whole project. A database that was never saved yields an
// empty project with the default context.
func (r *ProjectRepository) Load(ctx context.Context) (*secondary.ProjectSnapshot, error) {
	snap := &secondary.ProjectSnapshot{Context: models.DefaultProjectContext()}

	pages, err := r.loadPages(ctx)
	if err != nil {
		return nil, err
	}
	snap.Pages = pages

	boxes, err := r.loadBoxes(ctx)
	if err != nil {
		return nil, err
	}
	snap.Boxes = boxes

	components, err := r.loadComponents(ctx)
	if err != nil {
		return nil, err
	}
	snap.Components = components

	var data string
	err = r.db.QueryRowContext(ctx, "SELECT data FROM project_context WHERE id = 1").Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to load project context: %w", err)
	default:
		if err := json.Unmarshal([]byte(data), &snap.Context); err != nil {
			return nil, fmt.Errorf("failed to decode project context: %w", err)
		}
	}

	return snap, nil
}

func (r *ProjectRepository) loadPages(ctx context.Context) ([]*models.Page, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, route, direction FROM pages ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	defer rows.Close()

	var pages []*models.Page
	byID := make(map[string]*models.Page)
	for rows.Next() {
		var (
			page  models.Page
			route sql.NullString
		)
		if err := rows.Scan(&page.ID, &page.Name, &route, &page.Direction); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		page.Route = route.String
		page.BoxIDs = []string{}
		pages = append(pages, &page)
		byID[page.ID] = &page
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pages: %w", err)
	}
	rows.Close()

	members, err := r.db.QueryContext(ctx, "SELECT page_id, box_id FROM page_boxes ORDER BY page_id, position")
	if err != nil {
		return nil, fmt.Errorf("failed to load page boxes: %w", err)
	}
	defer members.Close()
	for members.Next() {
		var pageID, boxID string
		if err := members.Scan(&pageID, &boxID); err != nil {
			return nil, fmt.Errorf("failed to scan page box: %w", err)
		}
		if page, ok := byID[pageID]; ok {
			page.BoxIDs = append(page.BoxIDs, boxID)
		}
	}
	if err := members.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate page boxes: %w", err)
	}

	return pages, nil
}

func (r *ProjectRepository) loadBoxes(ctx context.Context) ([]*models.Box, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, label, sort_order, flex_grow, flex_basis, x, y, width, height,
		direction, gap, padding, parent_id, spec, shared_component_id
		FROM boxes ORDER BY parent_id, child_position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load boxes: %w", err)
	}
	defer rows.Close()

	var boxes []*models.Box
	byID := make(map[string]*models.Box)
	for rows.Next() {
		var (
			box      models.Box
			basis    sql.NullFloat64
			parentID sql.NullString
			spec     sql.NullString
			sharedID sql.NullString
		)
		if err := rows.Scan(&box.ID, &box.Label, &box.Order, &box.FlexGrow, &basis, &box.X, &box.Y,
			&box.Width, &box.Height, &box.Direction, &box.Gap, &box.Padding, &parentID, &spec, &sharedID); err != nil {
			return nil, fmt.Errorf("failed to scan box: %w", err)
		}
		if basis.Valid {
			v := basis.Float64
			box.FlexBasis = &v
		}
		box.ParentID = parentID.String
		box.SharedComponentID = sharedID.String
		box.ChildIDs = []string{}
		if spec.Valid {
			box.Spec = &models.Spec{}
			if err := json.Unmarshal([]byte(spec.String), box.Spec); err != nil {
				return nil, fmt.Errorf("failed to decode spec of box %s: %w", box.ID, err)
			}
		}
		boxes = append(boxes, &box)
		byID[box.ID] = &box
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate boxes: %w", err)
	}

	// Rows arrive grouped by parent in child order, so appending rebuilds
	// every ChildIDs list in its stored order.
	for _, box := range boxes {
		if parent, ok := byID[box.ParentID]; ok {
			parent.ChildIDs = append(parent.ChildIDs, box.ID)
		}
	}
	return boxes, nil
}

func (r *ProjectRepository) loadComponents(ctx context.Context) ([]*models.SharedComponent, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, spec, code FROM shared_components ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load shared components: %w", err)
	}
	defer rows.Close()

	var comps []*models.SharedComponent
	byID := make(map[string]*models.SharedComponent)
	for rows.Next() {
		var (
			comp models.SharedComponent
			spec string
			code sql.NullString
		)
		if err := rows.Scan(&comp.ID, &comp.Name, &spec, &code); err != nil {
			return nil, fmt.Errorf("failed to scan shared component: %w", err)
		}
		if err := json.Unmarshal([]byte(spec), &comp.Spec); err != nil {
			return nil, fmt.Errorf("failed to decode spec of shared component %s: %w", comp.ID, err)
		}
		comp.Code = code.String
		comp.InstanceIDs = []string{}
		comps = append(comps, &comp)
		byID[comp.ID] = &comp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shared components: %w", err)
	}
	rows.Close()

	inst, err := r.db.QueryContext(ctx, "SELECT component_id, box_id FROM shared_component_instances ORDER BY component_id, box_id")
	if err != nil {
		return nil, fmt.Errorf("failed to load shared component instances: %w", err)
	}
	defer inst.Close()
	for inst.Next() {
		var compID, boxID string
		if err := inst.Scan(&compID, &boxID); err != nil {
			return nil, fmt.Errorf("failed to scan shared component instance: %w", err)
		}
		if comp, ok := byID[compID]; ok {
			comp.InstanceIDs = append(comp.InstanceIDs, boxID)
		}
	}
	if err := inst.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shared component instances: %w", err)
	}

	return comps, nil
}

// Save replaces the stored project in one transaction.
func (r *ProjectRepository) Save(ctx context.Context, snap *secondary.ProjectSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"page_boxes", "pages", "boxes", "shared_component_instances", "shared_components"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, page := range snap.Pages {
		var route sql.NullString
		if page.Route != "" {
			route = sql.NullString{String: page.Route, Valid: true}
		}
		direction := page.Direction
		if direction == "" {
			direction = models.DirectionColumn
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO pages (id, name, route, direction, position) VALUES (?, ?, ?, ?, ?)",
			page.ID, page.Name, route, direction, i,
		); err != nil {
			return fmt.Errorf("failed to save page %s: %w", page.ID, err)
		}
		for j, boxID := range page.BoxIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO page_boxes (page_id, box_id, position) VALUES (?, ?, ?)",
				page.ID, boxID, j,
			); err != nil {
				return fmt.Errorf("failed to save root box %s of page %s: %w", boxID, page.ID, err)
			}
		}
	}

	if err := saveBoxes(ctx, tx, snap.Boxes); err != nil {
		return err
	}

	for i, comp := range snap.Components {
		spec, err := json.Marshal(comp.Spec)
		if err != nil {
			return fmt.Errorf("failed to encode spec of shared component %s: %w", comp.ID, err)
		}
		var code sql.NullString
		if comp.Code != "" {
			code = sql.NullString{String: comp.Code, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO shared_components (id, name, spec, code, position) VALUES (?, ?, ?, ?, ?)",
			comp.ID, comp.Name, string(spec), code, i,
		); err != nil {
			return fmt.Errorf("failed to save shared component %s: %w", comp.ID, err)
		}
		for _, boxID := range comp.InstanceIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO shared_component_instances (component_id, box_id) VALUES (?, ?)",
				comp.ID, boxID,
			); err != nil {
				return fmt.Errorf("failed to save instance %s of shared component %s: %w", boxID, comp.ID, err)
			}
		}
	}

	data, err := json.Marshal(snap.Context)
	if err != nil {
		return fmt.Errorf("failed to encode project context: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO project_context (id, data, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		string(data),
	); err != nil {
		return fmt.Errorf("failed to save project context: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project: %w", err)
	}
	return nil
}

func saveBoxes(ctx context.Context, tx *sql.Tx, boxes []*models.Box) error {
	// Roots are positioned by their order in boxes, children by ChildIDs.
	position := make(map[string]int, len(boxes))
	roots := 0
	for _, box := range boxes {
		if box.IsRoot() {
			position[box.ID] = roots
			roots++
		}
		for i, childID := range box.ChildIDs {
			position[childID] = i
		}
	}

	for _, box := range boxes {
		var basis sql.NullFloat64
		if box.FlexBasis != nil {
			basis = sql.NullFloat64{Float64: *box.FlexBasis, Valid: true}
		}
		var parentID, sharedID, spec sql.NullString
		if box.ParentID != "" {
			parentID = sql.NullString{String: box.ParentID, Valid: true}
		}
		if box.SharedComponentID != "" {
			sharedID = sql.NullString{String: box.SharedComponentID, Valid: true}
		}
		if box.Spec != nil {
			data, err := json.Marshal(box.Spec)
			if err != nil {
				return fmt.Errorf("failed to encode spec of box %s: %w", box.ID, err)
			}
			spec = sql.NullString{String: string(data), Valid: true}
		}
		direction := box.Direction
		if direction == "" {
			direction = models.DirectionColumn
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO boxes (id, label, sort_order, flex_grow, flex_basis, x, y, width, height,
			direction, gap, padding, parent_id, child_position, spec, shared_component_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			box.ID, box.Label, box.Order, box.FlexGrow, basis, box.X, box.Y, box.Width, box.Height,
			direction, box.Gap, box.Padding, parentID, position[box.ID], spec, sharedID,
		); err != nil {
			return fmt.Errorf("failed to save box %s: %w", box.ID, err)
		}
	}
	return nil
}
