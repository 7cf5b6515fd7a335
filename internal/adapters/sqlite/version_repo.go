package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/secondary"
)

// VersionRepository implements secondary.VersionRepository with SQLite.
// Rows of one target are kept in stack order: the current version first,
// then history most recent first.
type VersionRepository struct {
	db *sql.DB
}

var _ secondary.VersionRepository = (*VersionRepository)(nil)

// NewVersionRepository creates a new SQLite version repository.
func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

const versionColumns = "target_id, is_current, id, code, prompt, provider, model, created_at"

// Get retrieves the history of one target. Returns nil when it has none.
func (r *VersionRepository) Get(ctx context.Context, targetID string) (*models.GenerationResult, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+versionColumns+" FROM generation_versions WHERE target_id = ? ORDER BY position",
		targetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get versions: %w", err)
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// List retrieves every stored history ordered by target.
func (r *VersionRepository) List(ctx context.Context) ([]*models.GenerationResult, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+versionColumns+" FROM generation_versions ORDER BY target_id, position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]*models.GenerationResult, error) {
	var results []*models.GenerationResult
	var last *models.GenerationResult
	for rows.Next() {
		var (
			targetID  string
			isCurrent bool
			v         models.GenerationVersion
			createdAt time.Time
		)
		if err := rows.Scan(&targetID, &isCurrent, &v.ID, &v.Code, &v.Prompt, &v.Provider, &v.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		v.CreatedAt = createdAt

		if last == nil || last.TargetID != targetID {
			last = &models.GenerationResult{TargetID: targetID, History: []models.GenerationVersion{}}
			results = append(results, last)
		}
		if isCurrent {
			current := v
			last.Current = &current
		} else {
			last.History = append(last.History, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate versions: %w", err)
	}
	return results, nil
}

// Save replaces the stored history of result.TargetID.
func (r *VersionRepository) Save(ctx context.Context, result *models.GenerationResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM generation_versions WHERE target_id = ?", result.TargetID); err != nil {
		return fmt.Errorf("failed to clear versions: %w", err)
	}

	insert := func(position int, current bool, v models.GenerationVersion) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO generation_versions (id, target_id, position, is_current, code, prompt, provider, model, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, result.TargetID, position, current, v.Code, v.Prompt, v.Provider, v.Model, v.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to save version %s: %w", v.ID, err)
		}
		return nil
	}

	position := 0
	if result.Current != nil {
		if err := insert(position, true, *result.Current); err != nil {
			return err
		}
		position++
	}
	for _, v := range result.History {
		if err := insert(position, false, v); err != nil {
			return err
		}
		position++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit versions: %w", err)
	}
	return nil
}

// Delete drops the history of each target.
func (r *VersionRepository) Delete(ctx context.Context, targetIDs ...string) error {
	for _, id := range targetIDs {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM generation_versions WHERE target_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete versions of %s: %w", id, err)
		}
	}
	return nil
}
