package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"blastkit/internal/blast"
)

// OSFilesystemManager is the real filesystem implementation of
// blast.FilesystemManager.
type OSFilesystemManager struct{}

// NewOSFilesystemManager creates a filesystem manager that operates on the real filesystem.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{}
}

// Resolve makes rawPath absolute and checks that it is a regular file.
func (m *OSFilesystemManager) Resolve(rawPath string) (*blast.Path, error) {
	if rawPath == "" {
		return nil, fmt.Errorf("empty path")
	}

	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode.IsDir() {
		return nil, fmt.Errorf("path is a directory: %s", absPath)
	}
	if !mode.IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}

	return blast.NewPath(absPath, info.Size()), nil
}

// MkdirAll creates dir and any missing parents.
func (m *OSFilesystemManager) MkdirAll(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// Compile-time check that OSFilesystemManager implements blast.FilesystemManager
var _ blast.FilesystemManager = (*OSFilesystemManager)(nil)
