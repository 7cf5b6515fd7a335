package db

import "database/sql"

// SchemaSQL is the complete current schema. It is the single source of
// truth: repository tests load it through GetSchemaSQL instead of keeping
// their own CREATE TABLE statements, so a column referenced by a
// repository but missing here fails immediately with "no such column".
//
// When changing a table, add a migration in migrations.go and update
// SchemaSQL in the same change.
const SchemaSQL = `
-- Pages (routed screens, in creation order)
CREATE TABLE IF NOT EXISTS pages (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	route TEXT,
	direction TEXT NOT NULL CHECK(direction IN ('row', 'column')) DEFAULT 'column',
	position INTEGER NOT NULL
);

-- Boxes (every layout region; parent_id NULL means page root)
CREATE TABLE IF NOT EXISTS boxes (
	id TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0,
	flex_grow REAL NOT NULL DEFAULT 1,
	flex_basis REAL,
	x REAL NOT NULL DEFAULT 0,
	y REAL NOT NULL DEFAULT 0,
	width REAL NOT NULL,
	height REAL NOT NULL,
	direction TEXT NOT NULL CHECK(direction IN ('row', 'column')) DEFAULT 'column',
	gap REAL NOT NULL DEFAULT 0,
	padding REAL NOT NULL DEFAULT 0,
	parent_id TEXT,
	child_position INTEGER NOT NULL,
	spec TEXT,
	shared_component_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_boxes_parent ON boxes(parent_id);

-- Page root membership, in page order
CREATE TABLE IF NOT EXISTS page_boxes (
	page_id TEXT NOT NULL,
	box_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (page_id, box_id),
	FOREIGN KEY (page_id) REFERENCES pages(id) ON DELETE CASCADE
);

-- Shared components (canonical spec + last generated code)
CREATE TABLE IF NOT EXISTS shared_components (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	spec TEXT NOT NULL,
	code TEXT,
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS shared_component_instances (
	component_id TEXT NOT NULL,
	box_id TEXT NOT NULL,
	PRIMARY KEY (component_id, box_id),
	FOREIGN KEY (component_id) REFERENCES shared_components(id) ON DELETE CASCADE
);

-- Project context (single row)
CREATE TABLE IF NOT EXISTS project_context (
	id INTEGER PRIMARY KEY CHECK(id = 1),
	data TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Generation versions (position 0 is current, then history most recent first)
CREATE TABLE IF NOT EXISTS generation_versions (
	id TEXT PRIMARY KEY,
	target_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	is_current INTEGER NOT NULL DEFAULT 0,
	code TEXT NOT NULL,
	prompt TEXT NOT NULL,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE(target_id, position)
);

CREATE INDEX IF NOT EXISTS idx_generation_versions_target ON generation_versions(target_id);

-- Provider secrets (AES-256-GCM; never joined with any other table)
CREATE TABLE IF NOT EXISTS provider_secrets (
	provider_id TEXT PRIMARY KEY,
	nonce BLOB NOT NULL,
	ciphertext BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates the schema on a fresh database and runs any pending
// migrations on an existing one.
func InitSchema(database *sql.DB) error {
	return RunMigrations(database)
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
