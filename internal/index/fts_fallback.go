//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over recipes.body and the ingredient names.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string) error {
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT r.slug, r.title, substr(r.description, 1, 200)
		FROM recipes r
		WHERE r.title LIKE ? OR r.body LIKE ? OR r.category LIKE ?
		   OR EXISTS (SELECT 1 FROM ingredients i WHERE i.recipe_slug = r.slug AND i.name LIKE ?)
		ORDER BY r.title COLLATE NOCASE
		LIMIT ?
	`, like, like, like, like, limit)
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
