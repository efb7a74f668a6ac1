// Package usecase provides history read business logic.
package usecase

import (
	"context"
	"fmt"

	"github.com/whhaicheng/DB-Showdown/internal/app/repository"
	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/comparison"
)

// HistoryUseCase provides read-only views over the run history.
type HistoryUseCase struct {
	history repository.HistoryStore
}

// NewHistoryUseCase creates a new history use case.
func NewHistoryUseCase(history repository.HistoryStore) *HistoryUseCase {
	return &HistoryUseCase{
		history: history,
	}
}

// Records returns the scenario's records in run order.
func (uc *HistoryUseCase) Records(ctx context.Context, scenario benchmark.Scenario) ([]benchmark.RunRecord, error) {
	records, err := uc.history.Get(ctx, scenario)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return records, nil
}

// Summary computes the per-backend statistics of a scenario.
func (uc *HistoryUseCase) Summary(ctx context.Context, scenario benchmark.Scenario) (comparison.Summary, error) {
	records, err := uc.Records(ctx, scenario)
	if err != nil {
		return comparison.Summary{}, err
	}
	return comparison.Summarize(scenario, records), nil
}

// ScenarioHistory is the records and summary of one scenario.
type ScenarioHistory struct {
	Scenario benchmark.Scenario   `json:"scenario"`
	Records  []benchmark.RunRecord `json:"records"`
	Summary  comparison.Summary   `json:"summary"`
}

// Snapshot returns every scenario's history in scenario order.
func (uc *HistoryUseCase) Snapshot(ctx context.Context) ([]ScenarioHistory, error) {
	out := make([]ScenarioHistory, 0, len(benchmark.Scenarios))
	for _, s := range benchmark.Scenarios {
		records, err := uc.Records(ctx, s)
		if err != nil {
			return nil, err
		}
		out = append(out, ScenarioHistory{
			Scenario: s,
			Records:  records,
			Summary:  comparison.Summarize(s, records),
		})
	}
	return out, nil
}
