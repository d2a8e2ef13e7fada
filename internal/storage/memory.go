package storage

import (
	"context"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// MemoryStore keeps values in process memory. A positive MaxBytes caps the
// summed length of keys and values to simulate a full medium.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string]string
	maxBytes int
	used     int
}

// NewMemoryStore returns an empty store; maxBytes <= 0 disables the quota.
func NewMemoryStore(maxBytes int) *MemoryStore {
	return &MemoryStore{values: map[string]string{}, maxBytes: maxBytes}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.used + len(key) + len(value)
	if prev, ok := m.values[key]; ok {
		next -= len(key) + len(prev)
	}
	if m.maxBytes > 0 && next > m.maxBytes {
		return pkgerrors.New(pkgerrors.CodeStorageUnavailable, "quota exceeded")
	}
	m.values[key] = value
	m.used = next
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.values[key]; ok {
		m.used -= len(key) + len(prev)
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
