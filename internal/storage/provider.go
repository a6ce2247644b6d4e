// Package storage defines the kitchen directory file-system abstraction.
package storage

import "github.com/starford/larder/internal/models"

// Provider is the interface for kitchen file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the kitchen root).
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the kitchen root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the kitchen root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the kitchen root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to the kitchen root).
	Move(oldPath, newPath string) error
	// Exists reports whether a file is present at path.
	Exists(path string) (bool, error)
}
