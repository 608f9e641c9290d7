// Package nullifier tracks which nullifier values have already been bound to
// a subject, so reuse of the same identity proof across contexts can be
// flagged.
package nullifier

import (
	"context"
	"strconv"
	"sync"
)

// Store records nullifier-to-subject bindings. Record returns true when the
// nullifier was newly bound, false when it was already bound (the existing
// subject is returned alongside).
type Store interface {
	Record(ctx context.Context, nullifier int64, subject string) (fresh bool, boundTo string, err error)
}

// InMemoryStore is the default process-local store.
type InMemoryStore struct {
	mu   sync.Mutex
	seen map[int64]string
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{seen: make(map[int64]string)}
}

func (s *InMemoryStore) Record(_ context.Context, nullifier int64, subject string) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.seen[nullifier]; ok {
		return false, existing, nil
	}
	s.seen[nullifier] = subject
	return true, subject, nil
}

func key(nullifier int64) string {
	return "facegate:nullifier:" + strconv.FormatInt(nullifier, 10)
}
