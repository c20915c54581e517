// Package checkpoint accumulates per-sample overlap stats into corpus totals
// and persists them, together with the set of samples they cover, so an
// interrupted run can resume without double counting.
package checkpoint

import (
	"context"
	"sync"

	"github.com/grailbio/base/log"
	"github.com/grailbio/sigrepeat/overlap"
)

// Manager owns the running totals and processed set of one evaluation run.
// It is safe for concurrent use.  Every successful Commit is durable before
// it returns.
type Manager struct {
	store Store

	mu    sync.Mutex
	state State
}

// Open loads any previous state from store.  A missing checkpoint starts a
// fresh run; an unreadable one is an error.
func Open(ctx context.Context, store Store) (*Manager, error) {
	s, found, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if found {
		log.Printf("checkpoint: resuming with %d processed sample(s)", s.Processed.Len())
	}
	return &Manager{store: store, state: s}, nil
}

// Contains reports whether the sample has already been counted.
func (m *Manager) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Processed.Contains(id)
}

// Commit folds s into the totals, marks id processed and persists both.  It
// returns false without changing anything if id was already processed.  If
// persisting fails, the in-memory state is rolled back to match the stored
// one and the error is returned.
func (m *Manager) Commit(ctx context.Context, id string, s overlap.Stats) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Processed.Mark(id) {
		return false, nil
	}
	prev := m.state.Totals
	m.state.Totals = prev.Merge(s)
	if err := m.store.Save(ctx, m.state); err != nil {
		m.state.Totals = prev
		m.state.Processed.unmarkLast()
		return false, err
	}
	return true, nil
}

// Totals returns the current corpus totals and the number of samples they
// cover.
func (m *Manager) Totals() (overlap.Stats, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Totals, m.state.Processed.Len()
}

// Reset removes the persisted checkpoint.  The in-memory totals are kept so
// they can still be reported.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Remove(ctx)
}
