package backtest

import "sync"

// DefaultRunRetention is the number of runs RunStore keeps.
const DefaultRunRetention = 50

// RunStore keeps the most recent runs in memory.
type RunStore struct {
	mu    sync.RWMutex
	limit int
	order []string
	runs  map[string]*Run
}

func NewRunStore(limit int) *RunStore {
	if limit <= 0 {
		limit = DefaultRunRetention
	}
	return &RunStore{limit: limit, runs: make(map[string]*Run)}
}

func (s *RunStore) Put(r *Run) {
	if r == nil || r.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.runs[r.ID] = r
	for len(s.order) > s.limit {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *RunStore) Get(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok
}

// List returns runs newest first.
func (s *RunStore) List() []*Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Run, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out
}
