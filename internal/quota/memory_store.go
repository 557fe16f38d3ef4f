package quota

import (
	"context"
	"sync"
)

// implements Store and Incrementer in process memory
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]UsageRecord
}

// creates a new in-memory usage store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]UsageRecord)}
}

func (s *MemoryStore) Get(_ context.Context, accountID string) (UsageRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[accountID]
	return rec, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, accountID string, rec UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[accountID] = rec
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, accountID string, period PeriodKey, delta int64) (UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[accountID]
	if !ok || rec.PeriodKey != period || rec.Count < 0 {
		rec = zeroRecord(period)
	}

	rec.Count = max(rec.Count+delta, 0)
	s.records[accountID] = rec

	return rec, nil
}
