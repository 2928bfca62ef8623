package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps the trail in process memory, keyed by document.
// Suitable for the CLI and for tests; external persistence implements Store
// without touching engine code.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.DocumentID] = append(s.events[event.DocumentID], event)
	return nil
}

func (s *InMemoryStore) ListByDocument(_ context.Context, documentID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[documentID]...), nil
}
