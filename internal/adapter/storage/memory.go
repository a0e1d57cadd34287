package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/niksmo/shopcore/internal/core/port"
)

var _ port.KeyValueStorage = (*MemoryStorage)(nil)

// A MemoryStorage keeps values in process memory, nothing survives a restart.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (string, error) {
	const op = "MemoryStorage.Get"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, port.ErrKeyNotFound)
	}
	return v, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key, value string) error {
	const op = "MemoryStorage.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStorage) Close() {}
