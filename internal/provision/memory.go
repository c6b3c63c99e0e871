package provision

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemorySource serves archives held in memory. Safe for concurrent use.
type MemorySource struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{objects: make(map[string][]byte)}
}

// Put stores data under key, replacing any previous object.
func (m *MemorySource) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
}

func (m *MemorySource) Name() string {
	return "memory"
}

func (m *MemorySource) Fetch(ctx context.Context, key string, w io.WriterAt) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	data, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	n, err := w.WriteAt(data, 0)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write archive: %w", err)
	}
	return int64(n), nil
}

var _ Source = (*MemorySource)(nil)
