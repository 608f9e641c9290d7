package risk

import (
	"context"
	"sort"
	"sync"

	dErrors "facegate/pkg/domain-errors"
)

// Store persists the assessment audit trail.
type Store interface {
	Save(ctx context.Context, record AssessmentRecord) error
	ListByUser(ctx context.Context, userID string) ([]AssessmentRecord, error)
}

// MemoryStore is the default process-local store.
type MemoryStore struct {
	mu      sync.RWMutex
	records []AssessmentRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, record AssessmentRecord) error {
	if record.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "record id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]AssessmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []AssessmentRecord
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
