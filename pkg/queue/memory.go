package queue

import (
	"context"
	"sync"
)

// memoryStore is an in-process Store for tests, local development and routes
// that do not need durability. Semantics mirror the Redis list operations.
type memoryStore struct {
	mu    sync.Mutex
	lists map[string][]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{lists: make(map[string][]string)}
}

func (s *memoryStore) Push(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = append(s.lists[key], value)

	return nil
}

func (s *memoryStore) Pop(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	if len(list) == 0 {
		return "", false, nil
	}

	value := list[0]
	s.lists[key] = list[1:]

	return value, true, nil
}

func (s *memoryStore) Len(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.lists[key])), nil
}

func (s *memoryStore) Trim(_ context.Context, key string, max int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	if max < 0 {
		max = 0
	}

	if int64(len(list)) > max {
		s.lists[key] = list[int64(len(list))-max:]
	}

	return nil
}

func (s *memoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists = make(map[string][]string)

	return nil
}
