package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/aretw0/automata/pkg/domain"
)

// DefaultMaxRuns is the retention the servers use for their default store.
const DefaultMaxRuns = 1000

// Store implements ports.TraceStore in memory.
// Safe for concurrent use.
type Store struct {
	data    map[string]*domain.Run
	maxRuns int
	mu      sync.RWMutex
}

// Option configures the store.
type Option func(*Store)

// WithMaxRuns keeps at most n runs; saving one more evicts the oldest.
// Zero keeps every run.
func WithMaxRuns(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.maxRuns = n
		}
	}
}

// NewStore creates a new in-memory store. Without WithMaxRuns it grows with
// every saved run; long-running servers should cap it or use Redis.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]*domain.Run),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cloneRun(run *domain.Run) *domain.Run {
	c := *run
	c.Trace = run.Trace.Clone()
	return &c
}

// Save stores a copy of run.
func (s *Store) Save(ctx context.Context, run *domain.Run) error {
	copied := cloneRun(run)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[run.ID] = copied
	if s.maxRuns > 0 {
		for len(s.data) > s.maxRuns {
			delete(s.data, s.oldest())
		}
	}
	return nil
}

// oldest returns the ID List would return last.
func (s *Store) oldest() string {
	var victim *domain.Run
	for _, run := range s.data {
		if victim == nil || compareRuns(run, victim) > 0 {
			victim = run
		}
	}
	return victim.ID
}

// compareRuns orders runs newest first, ties by descending ID.
func compareRuns(a, b *domain.Run) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// Load retrieves a copy of the run so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.data[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return cloneRun(run), nil
}

// Delete removes the run.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored run IDs, newest first. Runs created at the same
// instant are ordered by descending ID.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	runs := make([]*domain.Run, 0, len(s.data))
	for _, run := range s.data {
		runs = append(runs, run)
	}
	s.mu.RUnlock()

	slices.SortFunc(runs, compareRuns)

	ids := make([]string, len(runs))
	for i, run := range runs {
		ids[i] = run.ID
	}
	return ids, nil
}
