package testutil

import (
	"fmt"
	"path/filepath"
	"sync"

	"blastkit/internal/blast"
)

// MockFilesystemManager is an in-memory filesystem for testing. Only files
// added with AddFile resolve; directories passed to MkdirAll are recorded.
type MockFilesystemManager struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  []string
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string][]byte),
	}
}

// AddFile adds a file to the mock filesystem and returns its absolute path.
func (m *MockFilesystemManager) AddFile(path string, content []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	absPath, err := filepath.Abs(path)
	if err != nil {
		panic(fmt.Sprintf("mock filesystem: %v", err))
	}
	m.files[absPath] = content
	return absPath
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*blast.Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rawPath == "" {
		return nil, fmt.Errorf("empty path")
	}
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	content, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", absPath)
	}
	return blast.NewPath(absPath, int64(len(content))), nil
}

func (m *MockFilesystemManager) MkdirAll(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, dir)
	return nil
}

// Dirs returns the directories passed to MkdirAll, in call order.
func (m *MockFilesystemManager) Dirs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.dirs...)
}

// Compile-time check
var _ blast.FilesystemManager = (*MockFilesystemManager)(nil)
