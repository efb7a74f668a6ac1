package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/whhaicheng/DB-Showdown/internal/app/repository"
	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
)

var _ repository.HistoryStore = (*MemoryHistoryStore)(nil)

// MemoryHistoryStore is the process-lifetime in-memory history.
// Create one at startup and pass it to the runner and the presentation layer.
type MemoryHistoryStore struct {
	records map[benchmark.Scenario][]benchmark.RunRecord
	mu      sync.RWMutex
}

// NewMemoryHistoryStore creates an empty history.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		records: make(map[benchmark.Scenario][]benchmark.RunRecord),
	}
}

// Append assigns the next run index under the write lock, so concurrent
// appends never collide or leave gaps.
func (s *MemoryHistoryStore) Append(ctx context.Context, scenario benchmark.Scenario, record benchmark.RunRecord) (benchmark.RunRecord, error) {
	if err := scenario.Validate(); err != nil {
		return benchmark.RunRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record.RunIndex = len(s.records[scenario]) + 1
	s.records[scenario] = append(s.records[scenario], record)
	slog.Debug("MemoryHistoryStore: Appended run", "scenario", scenario, "run", record.RunIndex)
	return record, nil
}

// Get returns a copy of the scenario's records.
func (s *MemoryHistoryStore) Get(ctx context.Context, scenario benchmark.Scenario) ([]benchmark.RunRecord, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]benchmark.RunRecord, len(s.records[scenario]))
	copy(out, s.records[scenario])
	return out, nil
}
