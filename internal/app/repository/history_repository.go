// Package repository provides the run history store interface.
package repository

import (
	"context"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
)

// HistoryStore holds, per scenario, the ordered run records of the process.
// It is append-only: there is no removal and no size cap.
type HistoryStore interface {
	// Append assigns the next 1-based RunIndex of the scenario to record,
	// appends it and returns the stored record. Any RunIndex already set
	// on record is ignored.
	Append(ctx context.Context, scenario benchmark.Scenario, record benchmark.RunRecord) (benchmark.RunRecord, error)

	// Get returns a copy of the scenario's records in RunIndex order.
	// Returns an empty slice for a scenario with no runs.
	Get(ctx context.Context, scenario benchmark.Scenario) ([]benchmark.RunRecord, error)
}
