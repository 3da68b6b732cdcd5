package store

import (
	"context"
	"slices"
	"sync"

	"github.com/kmathys/orgcanvas/pkg/chart"
)

// MemoryStore is an in-memory store for development and testing.
type MemoryStore struct {
	mu     sync.RWMutex
	charts map[string]chart.Chart
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{charts: make(map[string]chart.Chart)}
}

func (s *MemoryStore) Save(ctx context.Context, name string, c chart.Chart) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts[name] = c
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, name string) (chart.Chart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.charts[name]
	if !ok {
		return chart.Chart{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.charts))
	for name := range s.charts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.charts, name)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
