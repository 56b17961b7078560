package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type jsonStoreData struct {
	CompletedExercises map[string][]time.Time `json:"completed_exercises"`
	LastCompletedDate  string                 `json:"last_completed_date,omitempty"` // YYYY-MM-DD
}

// JSONStore keeps completions in a single JSON document. Every append rewrites
// the file through a temp file and rename so a crash never leaves half a file.
type JSONStore struct {
	mu       sync.Mutex
	filePath string
	data     jsonStoreData
	logger   *log.Logger
}

// OpenJSONStore loads path if it exists. A missing file starts an empty store,
// an unreadable one is an error so existing progress is never overwritten.
func OpenJSONStore(path string, logger *log.Logger) (*JSONStore, error) {
	if logger == nil {
		panic("JSONStore: logger cannot be nil")
	}
	s := &JSONStore{
		filePath: path,
		data:     jsonStoreData{CompletedExercises: make(map[string][]time.Time)},
		logger:   logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) load() error {
	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Printf("JSONStore: load %s (no existing file)", s.filePath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading progress file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return fmt.Errorf("parsing progress file %s: %w", s.filePath, err)
	}
	if s.data.CompletedExercises == nil {
		s.data.CompletedExercises = make(map[string][]time.Time)
	}
	s.logger.Printf("JSONStore: load %s -> %d exercises", s.filePath, len(s.data.CompletedExercises))
	return nil
}

func (s *JSONStore) RecordCompletion(_ context.Context, rec CompletionRecord) error {
	if err := rec.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.data
	next := jsonStoreData{
		CompletedExercises: Completions(prev.CompletedExercises).clone(),
		LastCompletedDate:  rec.CompletedAt.Format(time.DateOnly),
	}
	Completions(next.CompletedExercises).add(rec.ExerciseID, rec.CompletedAt)
	if prev.LastCompletedDate > next.LastCompletedDate {
		next.LastCompletedDate = prev.LastCompletedDate
	}

	if err := s.save(next); err != nil {
		return err
	}
	s.data = next
	s.logger.Printf("JSONStore: recorded %s at %s", rec.ExerciseID, rec.CompletedAt.Format(time.RFC3339))
	return nil
}

func (s *JSONStore) Completions(context.Context) (Completions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Completions(s.data.CompletedExercises).clone(), nil
}

func (s *JSONStore) save(data jsonStoreData) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating progress dir: %w", err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp progress file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing progress: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing progress: %w", err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		return fmt.Errorf("replacing progress file: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }
