package holds

import (
	"context"
	"sync"
)

// MemoryStore is the in-process hold tracker. It backs single-terminal
// deployments and every test; the redis store covers multi-terminal setups.
type MemoryStore struct {
	mu sync.Mutex
	// totals[location][variantCode] = held qty across owners
	totals map[string]map[string]int
	// owners[owner][location][variantCode] = held qty
	owners map[string]map[string]map[string]int
}

// NewMemoryStore returns an empty in-process hold tracker.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		totals: make(map[string]map[string]int),
		owners: make(map[string]map[string]map[string]int),
	}
}

func (s *MemoryStore) Add(_ context.Context, location, variantCode, owner string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.totals[location] == nil {
		s.totals[location] = make(map[string]int)
	}
	s.totals[location][variantCode] += qty
	if s.totals[location][variantCode] <= 0 {
		delete(s.totals[location], variantCode)
	}

	if s.owners[owner] == nil {
		s.owners[owner] = make(map[string]map[string]int)
	}
	if s.owners[owner][location] == nil {
		s.owners[owner][location] = make(map[string]int)
	}
	s.owners[owner][location][variantCode] += qty
	if s.owners[owner][location][variantCode] <= 0 {
		delete(s.owners[owner][location], variantCode)
	}
	return nil
}

func (s *MemoryStore) Held(_ context.Context, location, variantCode string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.totals[location][variantCode], nil
}

func (s *MemoryStore) ReleaseOwner(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for location, byCode := range s.owners[owner] {
		for code, qty := range byCode {
			s.totals[location][code] -= qty
			if s.totals[location][code] <= 0 {
				delete(s.totals[location], code)
			}
		}
	}
	delete(s.owners, owner)
	return nil
}
