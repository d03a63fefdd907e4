package mcpserver

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"latte/internal/report"
)

// DefaultStoreSize is how many run envelopes are kept for latte_results.
const DefaultStoreSize = 16

// resultStore keeps the most recent run envelopes by run ID.
type resultStore struct {
	mu   sync.RWMutex
	last *report.Envelope
	runs *lru.Cache[string, *report.Envelope]
}

func newResultStore(size int) *resultStore {
	runs, err := lru.New[string, *report.Envelope](size)
	if err != nil {
		// only fails for a non-positive size
		runs, _ = lru.New[string, *report.Envelope](DefaultStoreSize)
	}
	return &resultStore{runs: runs}
}

func (s *resultStore) add(env *report.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = env
	s.runs.Add(env.RunID, env)
}

func (s *resultStore) latest() (*report.Envelope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.last != nil
}

func (s *resultStore) get(runID string) (*report.Envelope, bool) {
	return s.runs.Get(runID)
}
