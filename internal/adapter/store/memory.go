package store

import (
	"context"
	"sync"

	"fx-widget/pkg/logger"
)

// MemoryStore keeps values in a process-local map.
type MemoryStore struct {
	data  map[string][]byte
	mutex sync.RWMutex
	log   *logger.Logger
}

func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
		log:  log,
	}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, found := m.data[key]
	if !found {
		m.log.Debug("Store miss", "key", key)
		return nil, false, nil
	}

	m.log.Debug("Store hit", "key", key)
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data[key] = append([]byte(nil), value...)
	m.log.Debug("Store set", "key", key, "bytes", len(value))

	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
