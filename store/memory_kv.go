package store

import (
	"context"
	"sync"
)

// MemoryKV keeps values in memory only (no persistence).
type MemoryKV struct {
	values map[string][]byte
	mu     sync.Mutex
}

// NewMemoryKV creates an empty in-memory slot.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, v...), true, nil
}

// Put stores a copy of value.
func (s *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte{}, value...)
	return nil
}

// Close is a no-op.
func (s *MemoryKV) Close() error {
	return nil
}
