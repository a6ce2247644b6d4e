package index

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/starford/larder/internal/checksum"
	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/parser"
	"github.com/starford/larder/internal/storage"
)

// Sync walks the kitchen directory and brings the index up to date:
//   - new/changed recipe files are parsed and upserted
//   - files removed from disk are deleted from the index
//
// Paths listed in skip (e.g. the quick-bites file) are not recipes and are
// never indexed. Sync returns the slugs it touched so callers can refresh
// derived data.
func Sync(db *DB, store storage.Provider, logger *slog.Logger, skip ...string) ([]string, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return nil, err
	}

	var touched []string
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if skipped(m.Path, skip) {
			continue
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		slug, err := indexFile(db, m.Path, data)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path), slog.String("slug", slug))
		touched = append(touched, slug)
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		slug, err := db.DeleteByPath(p)
		if err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		if slug != "" {
			touched = append(touched, slug)
		}
	}

	return touched, nil
}

// Upserter is the part of RecipeIndex that IndexFile writes through.
type Upserter interface {
	UpsertRecipe(row RecipeRow, r *models.Recipe, body string) error
}

// IndexFile parses data and upserts it, returning the recipe slug.
func IndexFile(db Upserter, path string, data []byte) (string, error) {
	return indexFile(db, path, data)
}

func indexFile(db Upserter, path string, data []byte) (string, error) {
	r, err := parser.Parse(string(data))
	if err != nil {
		return "", fmt.Errorf("index: parse %s: %w", path, err)
	}
	row := RowFromRecipe(path, checksum.Sum(data), r)
	if err := db.UpsertRecipe(row, r, string(data)); err != nil {
		return "", err
	}
	return r.Slug, nil
}

func skipped(path string, skip []string) bool {
	path = filepath.ToSlash(filepath.Clean(path))
	for _, s := range skip {
		if path == filepath.ToSlash(filepath.Clean(s)) {
			return true
		}
	}
	return false
}
