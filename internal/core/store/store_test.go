package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/niksmo/shopcore/internal/core/domain"
	"github.com/niksmo/shopcore/internal/core/port"
	"github.com/niksmo/shopcore/pkg/retry"
)

var errStorageDown = errors.New("storage is down")

// fakeStorage is a map backed port.KeyValueStorage with failure injection.
type fakeStorage struct {
	mu       sync.Mutex
	data     map[string]string
	getErr   error
	setErr   error
	setCalls int
	delay    time.Duration
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string]string)}
}

func (s *fakeStorage) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return "", port.ErrKeyNotFound
	}
	return v, nil
}

func (s *fakeStorage) Set(ctx context.Context, key, value string) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

func (s *fakeStorage) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *fakeStorage) put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *fakeStorage) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
}

func noRetryOpt() Option {
	return RetryOpt(retry.Config{MaxAttempts: 1})
}

func persistedCart(s *fakeStorage) []cartRecord {
	v, ok := s.value(CartKey)
	if !ok {
		return nil
	}
	var rs []cartRecord
	if err := json.Unmarshal([]byte(v), &rs); err != nil {
		panic(err)
	}
	return rs
}

func product(id string, price float64) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "name-" + id,
		Price:    price,
		Image:    "img-" + id,
		Category: "cat-" + id,
	}
}

func retryTwice() retry.Config {
	return retry.Config{
		MaxAttempts: 2,
		Backoff:     retry.LinearBackoff(time.Millisecond),
	}
}
