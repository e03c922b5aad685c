package kv

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yungbote/freshtrack-backend/internal/errs"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte

	// FailWrites makes every Put report storage failure; tests use it to
	// exercise the ErrStorageUnavailable path.
	FailWrites bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errs.ErrStorageUnavailable
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.entries[key] = cp
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.entries[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete exists for test cleanup only; the tracking core never deletes.
func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}
