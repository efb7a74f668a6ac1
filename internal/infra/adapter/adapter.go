// Package adapter provides the engine client adapters: a uniform
// connect / execute-timed / admin / close surface over each backend's native client.
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
)

// EngineAdapter opens sessions against one backend.
// No retry is attempted inside Connect.
type EngineAdapter interface {
	// Backend returns the backend this adapter talks to.
	Backend() benchmark.BackendID

	// Connect opens a new, unpooled session. Fails with benchmark.ErrConnection
	// when the backend is unreachable or rejects the credentials.
	Connect(ctx context.Context) (Session, error)
}

// Session is one open connection. It is owned by the caller that opened it
// and must be closed on every exit path.
type Session interface {
	// ExecuteTimed submits query, drains every row and returns the wall-clock
	// time from just before submission to just after the last row was consumed.
	// Fails with benchmark.ErrQuery.
	ExecuteTimed(ctx context.Context, query string) (benchmark.TimingResult, error)

	// RunAdmin executes a non-query administrative statement.
	// Fails with benchmark.ErrAdmin.
	RunAdmin(ctx context.Context, command string) error

	// Close releases the connection. Safe to call more than once and on a
	// session in a failed state.
	Close()
}

// Clock is the time source of a measurement.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Measure times drain, which must submit a query and consume every row,
// returning the number of rows consumed.
func Measure(clock Clock, backend benchmark.BackendID, drain func() (int64, error)) (benchmark.TimingResult, error) {
	start := clock.Now()
	rows, err := drain()
	elapsed := clock.Now().Sub(start)
	if err != nil {
		return benchmark.TimingResult{}, err
	}
	return benchmark.TimingResult{
		Backend:       backend,
		ElapsedMillis: benchmark.DurationToMillis(elapsed),
		Rows:          rows,
	}, nil
}

// Registry manages the engine adapters by backend.
type Registry struct {
	adapters map[benchmark.BackendID]EngineAdapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...EngineAdapter) *Registry {
	r := &Registry{
		adapters: make(map[benchmark.BackendID]EngineAdapter),
	}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register registers an adapter, replacing any previous one for the same backend.
func (r *Registry) Register(adapter EngineAdapter) {
	r.adapters[adapter.Backend()] = adapter
}

// Get returns the adapter of a backend.
func (r *Registry) Get(backend benchmark.BackendID) (EngineAdapter, error) {
	a, ok := r.adapters[backend]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for backend %s", backend)
	}
	return a, nil
}

// List returns the registered backends in measurement order.
func (r *Registry) List() []benchmark.BackendID {
	var out []benchmark.BackendID
	for _, b := range benchmark.Backends {
		if _, ok := r.adapters[b]; ok {
			out = append(out, b)
		}
	}
	return out
}
