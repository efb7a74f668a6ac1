// Package adaptertest provides a deterministic in-memory engine adapter for tests.
package adaptertest

import (
	"context"
	"sync"
	"time"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/infra/adapter"
)

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock frozen at an arbitrary fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Fake is an engine adapter whose query cost is Latency + rows*PerRow on its
// own fake clock, so measurements are exact and independent of the host.
type Fake struct {
	Latency time.Duration
	PerRow  time.Duration

	// RowsFor returns the size of a query's result set. Defaults to one row.
	RowsFor func(query string) int64

	ConnectErr error
	QueryErr   error
	AdminErr   error
	// AdminErrOn restricts AdminErr to one command. Empty fails every command.
	AdminErrOn string
	// Hang blocks queries until the context is done.
	Hang bool

	backend benchmark.BackendID
	clock   *FakeClock

	mu       sync.Mutex
	connects int
	closes   int
	queries  []string
	admin    []string
}

// New creates a fake adapter for backend with a fixed per-query latency.
func New(backend benchmark.BackendID, latency time.Duration) *Fake {
	return &Fake{
		Latency: latency,
		backend: backend,
		clock:   NewFakeClock(),
	}
}

// Backend returns the backend this fake stands in for.
func (f *Fake) Backend() benchmark.BackendID {
	return f.backend
}

// Connect opens a fake session.
func (f *Fake) Connect(ctx context.Context) (adapter.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, benchmark.NewConnectionError(f.backend, err)
	}
	if f.ConnectErr != nil {
		return nil, benchmark.NewConnectionError(f.backend, f.ConnectErr)
	}
	f.mu.Lock()
	f.connects++
	f.mu.Unlock()
	return &fakeSession{fake: f}, nil
}

// Connects returns the number of sessions opened.
func (f *Fake) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

// OpenSessions returns the number of sessions opened but not closed.
func (f *Fake) OpenSessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects - f.closes
}

// Queries returns every query submitted, in order.
func (f *Fake) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// AdminCommands returns every administrative command received, in order.
func (f *Fake) AdminCommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.admin...)
}

type fakeSession struct {
	fake   *Fake
	closed bool
}

func (s *fakeSession) ExecuteTimed(ctx context.Context, query string) (benchmark.TimingResult, error) {
	f := s.fake
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	result, err := adapter.Measure(f.clock, f.backend, func() (int64, error) {
		if f.Hang {
			<-ctx.Done()
			return 0, ctx.Err()
		}
		if f.QueryErr != nil {
			return 0, f.QueryErr
		}
		f.clock.Advance(f.Latency)
		rows := int64(1)
		if f.RowsFor != nil {
			rows = f.RowsFor(query)
		}
		for i := int64(0); i < rows; i++ {
			f.clock.Advance(f.PerRow)
		}
		return rows, nil
	})
	if err != nil {
		return benchmark.TimingResult{}, benchmark.NewQueryError(f.backend, query, err)
	}
	return result, nil
}

func (s *fakeSession) RunAdmin(ctx context.Context, command string) error {
	f := s.fake
	f.mu.Lock()
	f.admin = append(f.admin, command)
	f.mu.Unlock()

	if f.AdminErr != nil && (f.AdminErrOn == "" || f.AdminErrOn == command) {
		return benchmark.NewAdminError(f.backend, command, f.AdminErr)
	}
	return nil
}

func (s *fakeSession) Close() {
	f := s.fake
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	f.closes++
}
