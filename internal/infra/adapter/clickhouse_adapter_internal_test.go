package adapter

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/connection"
)

// stepClock is a manually advanced clock.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeColumn struct {
	driver.ColumnType
	scanType reflect.Type
}

func (c fakeColumn) ScanType() reflect.Type { return c.scanType }

// fakeRows yields (OrderID, Region) rows, advancing the clock on every row.
type fakeRows struct {
	driver.Rows
	clock   *stepClock
	perRow  time.Duration
	left    int
	scanErr error
	closed  bool
	scanned []any
}

func (r *fakeRows) ColumnTypes() []driver.ColumnType {
	return []driver.ColumnType{
		fakeColumn{scanType: reflect.TypeOf(uint32(0))},
		fakeColumn{scanType: reflect.TypeOf("")},
	}
}

func (r *fakeRows) Next() bool {
	if r.left == 0 {
		return false
	}
	r.left--
	r.clock.advance(r.perRow)
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	id, ok := dest[0].(*uint32)
	if !ok {
		return errors.New("unexpected scan target for OrderID")
	}
	region, ok := dest[1].(*string)
	if !ok {
		return errors.New("unexpected scan target for Region")
	}
	*id = uint32(r.left + 1)
	*region = "North"
	r.scanned = append(r.scanned, *id)
	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { r.closed = true; return nil }

// fakeConn stands in for a native ClickHouse connection.
type fakeConn struct {
	driver.Conn
	clock        *stepClock
	queryLatency time.Duration
	rows         *fakeRows

	pingErr  error
	queryErr error
	execErr  error

	execs  []string
	closes int
}

func (c *fakeConn) Ping(context.Context) error { return c.pingErr }

func (c *fakeConn) Query(_ context.Context, _ string, _ ...any) (driver.Rows, error) {
	c.clock.advance(c.queryLatency)
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return c.rows, nil
}

func (c *fakeConn) Exec(_ context.Context, query string, _ ...any) error {
	c.execs = append(c.execs, query)
	return c.execErr
}

func (c *fakeConn) Close() error {
	c.closes++
	return nil
}

func newFakeClickHouse(conn *fakeConn) (*ClickHouseAdapter, *[]*clickhouse.Options) {
	a := NewClickHouseAdapter(&connection.ClickHouseConnection{
		Host:     "ch.local",
		Port:     9000,
		Database: "DemoDB",
		Username: "default",
		Password: "secret",
	}).WithClock(conn.clock)

	var opened []*clickhouse.Options
	a.open = func(opt *clickhouse.Options) (driver.Conn, error) {
		opened = append(opened, opt)
		return conn, nil
	}
	return a, &opened
}

func TestClickHouseAdapter_ExecuteTimedDrainsEveryRow(t *testing.T) {
	ctx := context.Background()
	clock := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rows := &fakeRows{clock: clock, perRow: 5 * time.Millisecond, left: 4}
	conn := &fakeConn{clock: clock, queryLatency: 2 * time.Millisecond, rows: rows}
	a, opened := newFakeClickHouse(conn)

	session, err := a.Connect(ctx)
	require.NoError(t, err)
	defer session.Close()

	require.Len(t, *opened, 1)
	assert.Equal(t, []string{"ch.local:9000"}, (*opened)[0].Addr)
	assert.Equal(t, "DemoDB", (*opened)[0].Auth.Database)
	assert.Equal(t, 1, (*opened)[0].MaxOpenConns)

	result, err := session.ExecuteTimed(ctx, "SELECT OrderID, Region FROM Orders")
	require.NoError(t, err)
	assert.Equal(t, benchmark.BackendClickHouse, result.Backend)
	assert.Equal(t, int64(4), result.Rows)
	assert.Len(t, rows.scanned, 4)
	assert.InDelta(t, 22.0, result.ElapsedMillis, 1e-9)
	assert.True(t, rows.closed)
}

func TestClickHouseAdapter_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	tests := []struct {
		name    string
		setup   func(c *fakeConn)
		run     func(s Session) error
		wantErr error
	}{
		{
			name:    "query rejected",
			setup:   func(c *fakeConn) { c.queryErr = boom },
			run:     func(s Session) error { _, err := s.ExecuteTimed(ctx, "SELECT 1"); return err },
			wantErr: benchmark.ErrQuery,
		},
		{
			name:    "scan failure mid-stream",
			setup:   func(c *fakeConn) { c.rows.scanErr = boom },
			run:     func(s Session) error { _, err := s.ExecuteTimed(ctx, "SELECT 1"); return err },
			wantErr: benchmark.ErrQuery,
		},
		{
			name:    "admin command rejected",
			setup:   func(c *fakeConn) { c.execErr = boom },
			run:     func(s Session) error { return s.RunAdmin(ctx, "SYSTEM DROP MARK CACHE") },
			wantErr: benchmark.ErrAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &stepClock{}
			conn := &fakeConn{clock: clock, rows: &fakeRows{clock: clock, left: 2}}
			tt.setup(conn)
			a, _ := newFakeClickHouse(conn)

			session, err := a.Connect(ctx)
			require.NoError(t, err)
			defer session.Close()

			err = tt.run(session)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, boom)
			var berr *benchmark.Error
			require.True(t, errors.As(err, &berr))
			assert.Equal(t, benchmark.BackendClickHouse, berr.Backend)
		})
	}
}

func TestClickHouseAdapter_RunAdmin(t *testing.T) {
	clock := &stepClock{}
	conn := &fakeConn{clock: clock}
	a, _ := newFakeClickHouse(conn)

	session, err := a.Connect(context.Background())
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.RunAdmin(context.Background(), "SYSTEM DROP MARK CACHE"))
	assert.Equal(t, []string{"SYSTEM DROP MARK CACHE"}, conn.execs)
}

func TestClickHouseAdapter_ConnectFailures(t *testing.T) {
	t.Run("ping failure closes the connection", func(t *testing.T) {
		conn := &fakeConn{clock: &stepClock{}, pingErr: errors.New("connection refused")}
		a, _ := newFakeClickHouse(conn)

		session, err := a.Connect(context.Background())
		assert.Nil(t, session)
		assert.ErrorIs(t, err, benchmark.ErrConnection)
		assert.Equal(t, 1, conn.closes)
	})

	t.Run("open failure", func(t *testing.T) {
		a, _ := newFakeClickHouse(&fakeConn{clock: &stepClock{}})
		a.open = func(*clickhouse.Options) (driver.Conn, error) {
			return nil, errors.New("bad options")
		}

		session, err := a.Connect(context.Background())
		assert.Nil(t, session)
		assert.ErrorIs(t, err, benchmark.ErrConnection)
	})
}

func TestClickHouseSession_CloseIsIdempotent(t *testing.T) {
	conn := &fakeConn{clock: &stepClock{}}
	a, _ := newFakeClickHouse(conn)

	session, err := a.Connect(context.Background())
	require.NoError(t, err)

	session.Close()
	session.Close()
	assert.Equal(t, 1, conn.closes)
}
