// Package index keeps a SQLite mirror of the kitchen's recipes: their steps,
// ingredients and cross-references, plus a cache of computed nutrition.
// Full-text search uses FTS5 when built with the sqlite_fts5 tag.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS recipes (
	slug           TEXT PRIMARY KEY,
	path           TEXT NOT NULL UNIQUE,
	title          TEXT NOT NULL,
	category       TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	serves         INTEGER,
	makes_quantity REAL,
	makes_unit     TEXT NOT NULL DEFAULT '',
	footer         TEXT NOT NULL DEFAULT '',
	body           TEXT NOT NULL DEFAULT '',
	checksum       TEXT NOT NULL DEFAULT '',
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recipes_category ON recipes(category);

CREATE TABLE IF NOT EXISTS steps (
	recipe_slug  TEXT NOT NULL REFERENCES recipes(slug) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	title        TEXT NOT NULL,
	aside        TEXT NOT NULL DEFAULT '',
	instructions TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (recipe_slug, position)
);

CREATE TABLE IF NOT EXISTS ingredients (
	recipe_slug   TEXT NOT NULL REFERENCES recipes(slug) ON DELETE CASCADE,
	step_position INTEGER NOT NULL,
	position      INTEGER NOT NULL,
	name          TEXT NOT NULL,
	quantity      TEXT NOT NULL DEFAULT '',
	prep_note     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (recipe_slug, step_position, position)
);

CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients(name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS cross_references (
	recipe_slug   TEXT NOT NULL REFERENCES recipes(slug) ON DELETE CASCADE,
	step_position INTEGER NOT NULL,
	position      INTEGER NOT NULL,
	target_slug   TEXT NOT NULL,
	target_title  TEXT NOT NULL,
	multiplier    REAL NOT NULL DEFAULT 1,
	prep_note     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (recipe_slug, step_position, position)
);

CREATE INDEX IF NOT EXISTS idx_xref_target ON cross_references(target_slug);

CREATE TABLE IF NOT EXISTS nutrition_cache (
	recipe_slug      TEXT PRIMARY KEY REFERENCES recipes(slug) ON DELETE CASCADE,
	recipe_checksum  TEXT NOT NULL,
	catalog_checksum TEXT NOT NULL,
	result           TEXT NOT NULL,
	computed_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
