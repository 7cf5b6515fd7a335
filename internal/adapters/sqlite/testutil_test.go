// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements in test files.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/boxforge/internal/db"
	"github.com/example/boxforge/internal/models"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

func ptr[T any](v T) *T { return &v }

// sampleBox returns a nested box with every optional field set.
func sampleBox(id, parentID string, children ...string) *models.Box {
	return &models.Box{
		ID:        id,
		Label:     "Box " + id,
		FlexGrow:  1,
		FlexBasis: ptr(120.0),
		Width:     320,
		Height:    200,
		Direction: models.DirectionRow,
		Gap:       8,
		Padding:   16,
		ParentID:  parentID,
		ChildIDs:  append([]string{}, children...),
		Spec: &models.Spec{
			Intent: "shows " + id,
			States: []models.StateDescription{{State: "hover", Description: "lifts"}},
		},
	}
}
