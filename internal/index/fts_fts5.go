//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS recipes_fts USING fts5(
			slug UNINDEXED,
			title,
			body,
			category,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, slug, title, body, category string) error {
	_, _ = tx.Exec(`DELETE FROM recipes_fts WHERE slug = ?`, slug)
	_, err := tx.Exec(`INSERT INTO recipes_fts (slug, title, body, category) VALUES (?, ?, ?, ?)`,
		slug, title, body, category)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, slug string) {
	_, _ = tx.Exec(`DELETE FROM recipes_fts WHERE slug = ?`, slug)
}

// Search performs an FTS5 full-text search and returns matching recipes with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT slug,
		       title,
		       snippet(recipes_fts, 2, '<b>', '</b>', '...', 64)
		FROM recipes_fts
		WHERE recipes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Slug, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
