// Package usecase defines the interfaces the use cases depend on.
// They are defined by the use case layer and implemented by the infrastructure layer.
package usecase

import (
	"context"
	"errors"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/dataset"
)

// ErrNilHistory is returned when a use case is built without a history store.
var ErrNilHistory = errors.New("history store is required")

// =============================================================================
// Metrics Recorder Interface
// =============================================================================

// MetricsRecorder observes benchmark activity.
type MetricsRecorder interface {
	// ObserveTiming records one backend measurement of a scenario.
	ObserveTiming(scenario benchmark.Scenario, result benchmark.TimingResult)

	// ObserveRun records the outcome of a paired scenario run.
	ObserveRun(scenario benchmark.Scenario, err error)

	// ObserveCacheClear records the outcome of a cache-clear action.
	ObserveCacheClear(err error)
}

// NoopMetrics discards every observation.
type NoopMetrics struct{}

// ObserveTiming implements MetricsRecorder.
func (NoopMetrics) ObserveTiming(benchmark.Scenario, benchmark.TimingResult) {}

// ObserveRun implements MetricsRecorder.
func (NoopMetrics) ObserveRun(benchmark.Scenario, error) {}

// ObserveCacheClear implements MetricsRecorder.
func (NoopMetrics) ObserveCacheClear(error) {}

// =============================================================================
// Loader Interface
// =============================================================================

// Loader provisions the Orders table of one backend.
// It is implemented by the infrastructure layer.
type Loader interface {
	// Backend returns the backend this loader writes to.
	Backend() benchmark.BackendID

	// Ping checks once whether the backend accepts connections.
	// The provisioning use case retries it with a fixed budget.
	Ping(ctx context.Context) error

	// Recreate creates the database if missing and drops and recreates the Orders table.
	Recreate(ctx context.Context) error

	// LoadChunk bulk-inserts one chunk of orders.
	LoadChunk(ctx context.Context, orders []dataset.Order) error

	// Close releases the loader's connections.
	Close() error
}
