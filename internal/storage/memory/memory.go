package memory

import (
	"context"
	"sync"

	"github.com/fdg312/carb-coach/internal/storage"
)

// MemoryStorage: in-memory реализация KeyValue (для тестов и STORE_MODE=memory)
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

func New() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", false, storage.ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return storage.ErrClosed
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(ctx context.Context, key string) error {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return storage.ErrClosed
	}
	delete(m.values, key)
	return nil
}

// Close для in-memory ничего не освобождает, но последующие вызовы вернут ErrClosed.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ storage.KeyValue = (*MemoryStorage)(nil)
