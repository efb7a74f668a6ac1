// Package usecase provides the benchmark business logic.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/whhaicheng/DB-Showdown/internal/app/repository"
	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/config"
	"github.com/whhaicheng/DB-Showdown/internal/infra/adapter"
)

// BenchmarkUseCase runs the paired scenarios and the cache-clear action.
// It never retries: every backend failure surfaces to the caller.
type BenchmarkUseCase struct {
	rowStore    adapter.EngineAdapter
	columnStore adapter.EngineAdapter
	history     repository.HistoryStore
	cfg         config.BenchmarkConfig
	metrics     MetricsRecorder
	now         func() time.Time

	rngMu sync.Mutex // Protects rng
	rng   *rand.Rand
}

// NewBenchmarkUseCase creates a new benchmark use case.
func NewBenchmarkUseCase(
	rowStore adapter.EngineAdapter,
	columnStore adapter.EngineAdapter,
	history repository.HistoryStore,
	cfg config.BenchmarkConfig,
) (*BenchmarkUseCase, error) {
	if rowStore == nil || columnStore == nil {
		return nil, errors.New("both engine adapters are required")
	}
	if history == nil {
		return nil, ErrNilHistory
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate benchmark config: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &BenchmarkUseCase{
		rowStore:    rowStore,
		columnStore: columnStore,
		history:     history,
		cfg:         cfg,
		metrics:     NoopMetrics{},
		now:         time.Now,
		rng:         rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
	}, nil
}

// NewBenchmarkUseCaseFromRegistry resolves both engines from an adapter registry.
func NewBenchmarkUseCaseFromRegistry(reg *adapter.Registry, history repository.HistoryStore, cfg config.BenchmarkConfig) (*BenchmarkUseCase, error) {
	rowStore, err := reg.Get(benchmark.BackendSQLServer)
	if err != nil {
		return nil, err
	}
	columnStore, err := reg.Get(benchmark.BackendClickHouse)
	if err != nil {
		return nil, err
	}
	return NewBenchmarkUseCase(rowStore, columnStore, history, cfg)
}

// WithMetrics sets the metrics recorder. A nil recorder disables metrics.
func (uc *BenchmarkUseCase) WithMetrics(m MetricsRecorder) *BenchmarkUseCase {
	if m == nil {
		m = NoopMetrics{}
	}
	uc.metrics = m
	return uc
}

// History returns the store the use case appends to.
func (uc *BenchmarkUseCase) History() repository.HistoryStore {
	return uc.history
}

// =============================================================================
// Scenario Runs
// =============================================================================

// RunScenario measures scenario on the row-store and then on the column-store,
// pairs the two timings and appends them to the history.
//
// Every backend gets its own fresh session and its own CallTimeout. If either
// backend fails, the returned error is a scenario error and nothing is appended.
func (uc *BenchmarkUseCase) RunScenario(ctx context.Context, scenario benchmark.Scenario) (benchmark.RunRecord, error) {
	if err := scenario.Validate(); err != nil {
		return benchmark.RunRecord{}, benchmark.NewScenarioError(scenario, "", err)
	}

	keys := uc.drawKeys(scenario)
	engines := [2]adapter.EngineAdapter{uc.rowStore, uc.columnStore}
	var timings [2]benchmark.TimingResult

	slog.Info("Benchmark: Running scenario", "scenario", scenario, "parallel", uc.cfg.Parallel)

	var err error
	if uc.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range engines {
			g.Go(func() error {
				result, err := uc.measure(gctx, scenario, engines[i], keys[i])
				timings[i] = result
				return err
			})
		}
		err = g.Wait()
	} else {
		for i := range engines {
			if timings[i], err = uc.measure(ctx, scenario, engines[i], keys[i]); err != nil {
				break
			}
		}
	}

	uc.metrics.ObserveRun(scenario, err)
	if err != nil {
		slog.Error("Benchmark: Scenario failed", "scenario", scenario, "error", err)
		return benchmark.RunRecord{}, err
	}

	record, err := uc.history.Append(ctx, scenario, benchmark.RunRecord{
		MSSQLMillis:      timings[0].ElapsedMillis,
		ClickHouseMillis: timings[1].ElapsedMillis,
		RecordedAt:       uc.now(),
	})
	if err != nil {
		return benchmark.RunRecord{}, fmt.Errorf("append run: %w", err)
	}

	slog.Info("Benchmark: Scenario completed",
		"scenario", scenario,
		"run", record.RunIndex,
		"mssql_ms", record.MSSQLMillis,
		"clickhouse_ms", record.ClickHouseMillis)
	return record, nil
}

// measure runs one backend's half of a scenario on its own session.
// The session is closed before measure returns.
func (uc *BenchmarkUseCase) measure(ctx context.Context, scenario benchmark.Scenario, engine adapter.EngineAdapter, key int64) (benchmark.TimingResult, error) {
	backend := engine.Backend()
	query, err := benchmark.Query(scenario, backend, key)
	if err != nil {
		return benchmark.TimingResult{}, benchmark.NewScenarioError(scenario, backend, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.CallTimeout)
	defer cancel()

	session, err := engine.Connect(callCtx)
	if err != nil {
		return benchmark.TimingResult{}, benchmark.NewScenarioError(scenario, backend, classify(callCtx, backend, "connect", err))
	}
	defer session.Close()

	result, err := session.ExecuteTimed(callCtx, query)
	if err != nil {
		return benchmark.TimingResult{}, benchmark.NewScenarioError(scenario, backend, classify(callCtx, backend, "execute", err))
	}

	slog.Debug("Benchmark: Measured", "scenario", scenario, "backend", backend,
		"elapsed_ms", result.ElapsedMillis, "rows", result.Rows)
	uc.metrics.ObserveTiming(scenario, result)
	return result, nil
}

// drawKeys returns the point-lookup key of each backend, uniform in [1, MaxOrderID].
// Scenarios without a key get zeros.
func (uc *BenchmarkUseCase) drawKeys(scenario benchmark.Scenario) [2]int64 {
	if !scenario.NeedsKey() {
		return [2]int64{}
	}

	uc.rngMu.Lock()
	defer uc.rngMu.Unlock()

	first := 1 + uc.rng.Int64N(uc.cfg.MaxOrderID)
	if uc.cfg.KeyMode == config.KeyModeShared {
		return [2]int64{first, first}
	}
	return [2]int64{first, 1 + uc.rng.Int64N(uc.cfg.MaxOrderID)}
}

// =============================================================================
// Cache Clear
// =============================================================================

// ClearCaches drops the engine-internal caches of the row-store and then the
// column-store, each on a fresh session. It stops at the first failure and
// never touches the history.
func (uc *BenchmarkUseCase) ClearCaches(ctx context.Context) error {
	slog.Info("Benchmark: Clearing caches")

	var err error
	for _, engine := range []adapter.EngineAdapter{uc.rowStore, uc.columnStore} {
		if err = uc.clearCache(ctx, engine); err != nil {
			break
		}
	}

	uc.metrics.ObserveCacheClear(err)
	if err != nil {
		slog.Error("Benchmark: Cache clear failed", "error", err)
		return err
	}
	slog.Info("Benchmark: Caches cleared")
	return nil
}

func (uc *BenchmarkUseCase) clearCache(ctx context.Context, engine adapter.EngineAdapter) error {
	backend := engine.Backend()

	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.CallTimeout)
	defer cancel()

	session, err := engine.Connect(callCtx)
	if err != nil {
		return classify(callCtx, backend, "connect", err)
	}
	defer session.Close()

	for _, cmd := range benchmark.CacheClearCommands(backend) {
		if err := session.RunAdmin(callCtx, cmd); err != nil {
			return classify(callCtx, backend, cmd, err)
		}
		slog.Debug("Benchmark: Admin command done", "backend", backend, "command", cmd)
	}
	return nil
}

// classify reports err as a timeout when the call's deadline expired.
func classify(callCtx context.Context, backend benchmark.BackendID, op string, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return benchmark.NewTimeoutError(backend, op, err)
	}
	return err
}
