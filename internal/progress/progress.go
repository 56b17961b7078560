// Package progress persists completed exercises and summarizes them.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"time"
)

// CompletionRecord is one finished (or skipped-through) exercise
type CompletionRecord struct {
	ExerciseID  string
	CompletedAt time.Time
	PlanID      string // optional
	SessionID   string // optional, identifies the player run
}

func (r CompletionRecord) validate() error {
	if r.ExerciseID == "" {
		return errors.New("completion record: missing exercise id")
	}
	if r.CompletedAt.IsZero() {
		return errors.New("completion record: missing timestamp")
	}
	return nil
}

// Completions maps an exercise ID to its completion timestamps, oldest first
type Completions map[string][]time.Time

func (c Completions) add(id string, at time.Time) {
	ts := append(c[id], at)
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
	c[id] = ts
}

func (c Completions) clone() Completions {
	out := make(Completions, len(c))
	for id, ts := range c {
		out[id] = append([]time.Time(nil), ts...)
	}
	return out
}

// Store is an append-only record of completions that survives restarts
type Store interface {
	RecordCompletion(ctx context.Context, rec CompletionRecord) error
	Completions(ctx context.Context) (Completions, error)
	Close() error
}

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultPath returns the store file name for a backend inside dataDir
func DefaultPath(backend, dataDir string) string {
	if backend == BackendSQLite {
		return filepath.Join(dataDir, "progress.db")
	}
	return filepath.Join(dataDir, "progress.json")
}

// Open creates the store for the named backend
func Open(backend, path string, logger *log.Logger) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return OpenJSONStore(path, logger)
	case BackendSQLite:
		return OpenSQLiteStore(path, logger)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown progress store backend %q", backend)
	}
}
