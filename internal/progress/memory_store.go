package progress

import (
	"context"
	"sync"
)

// MemoryStore keeps completions in process memory only
type MemoryStore struct {
	mu      sync.Mutex
	records []CompletionRecord
	data    Completions
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(Completions)}
}

func (s *MemoryStore) RecordCompletion(_ context.Context, rec CompletionRecord) error {
	if err := rec.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	s.data.add(rec.ExerciseID, rec.CompletedAt)
	return nil
}

func (s *MemoryStore) Completions(context.Context) (Completions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone(), nil
}

// Records returns every record in insertion order
func (s *MemoryStore) Records() []CompletionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CompletionRecord(nil), s.records...)
}

func (s *MemoryStore) Close() error { return nil }
