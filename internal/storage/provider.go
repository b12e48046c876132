// Package storage defines the site file-system abstraction used by the build steps.
package storage

import "github.com/starford/shiori/internal/models"

// Provider is the interface for file operations under a site directory.
type Provider interface {
	// Root returns the absolute directory the provider is rooted at.
	Root() string
	// List returns metadata for every file directly under dir whose name
	// ends with ext, sorted by name.
	List(dir, ext string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Create is Write for a file that must not exist yet; an existing file
	// yields an error matching fs.ErrExist.
	Create(path string, content []byte) error
}
