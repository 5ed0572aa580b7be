// Package checkpoint provides the minimal resumability contract: a store of
// shared-state snapshots keyed by run ID. The engine saves a snapshot after
// every merge, so a caller can inspect the latest state of an in-flight or
// finished run without owning a persistence format.
package checkpoint

import (
	"fmt"
	"sync"

	"github.com/hupe1980/researchmesh/core"
)

// Store persists per-run state snapshots. Implementations must be safe for
// concurrent use by independent runs.
type Store interface {
	// Save records a snapshot as the latest state for the run.
	Save(runID string, st *core.State) error

	// Get returns the latest snapshot for the run.
	Get(runID string) (*core.State, error)
}

// InMemoryStore is a volatile Store implementation keeping the latest
// snapshot per run in a process local map. It is safe for concurrent access
// and best suited for tests or single-process callers. Each stored and
// returned state is cloned to prevent external mutation of internal state.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*core.State
}

// NewInMemoryStore constructs an empty in-memory checkpoint store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[string]*core.State)}
}

// Save implements Store.
func (s *InMemoryStore) Save(runID string, st *core.State) error {
	if runID == "" {
		return fmt.Errorf("run id must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = st.Clone()
	return nil
}

// Get implements Store.
func (s *InMemoryStore) Get(runID string) (*core.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("no checkpoint for run %s", runID)
	}
	return st.Clone(), nil
}

// Runs returns the IDs of all checkpointed runs.
func (s *InMemoryStore) Runs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	return ids
}
