package adapter

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/connection"
)

// ClickHouseAdapter reaches the column-store over the native protocol.
type ClickHouseAdapter struct {
	conn  *connection.ClickHouseConnection
	clock Clock
	open  func(opt *clickhouse.Options) (driver.Conn, error)
}

// NewClickHouseAdapter creates the column-store adapter.
func NewClickHouseAdapter(conn *connection.ClickHouseConnection) *ClickHouseAdapter {
	return &ClickHouseAdapter{
		conn:  conn,
		clock: SystemClock{},
		open:  clickhouse.Open,
	}
}

// WithClock replaces the measurement clock.
func (a *ClickHouseAdapter) WithClock(clock Clock) *ClickHouseAdapter {
	a.clock = clock
	return a
}

// Backend returns BackendClickHouse.
func (a *ClickHouseAdapter) Backend() benchmark.BackendID {
	return benchmark.BackendClickHouse
}

// Options returns the client options of one session: a single connection,
// no pooling beyond the session's lifetime.
func (a *ClickHouseAdapter) Options() *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{a.conn.Addr()},
		Auth: clickhouse.Auth{
			Database: a.conn.Database,
			Username: a.conn.Username,
			Password: a.conn.Password,
		},
		DialTimeout:  a.conn.DialTimeout,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		Compression:  &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
	}
}

// Connect opens a session and pings it, since the client dials lazily and the
// clock must start only after the connection is established.
func (a *ClickHouseAdapter) Connect(ctx context.Context) (Session, error) {
	conn, err := a.open(a.Options())
	if err != nil {
		return nil, benchmark.NewConnectionError(benchmark.BackendClickHouse, err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, benchmark.NewConnectionError(benchmark.BackendClickHouse, err)
	}

	slog.Debug("ClickHouseAdapter: connected", "dsn", a.conn.GetDSN())
	return &clickhouseSession{conn: conn, clock: a.clock}, nil
}

type clickhouseSession struct {
	conn  driver.Conn
	clock Clock

	closeOnce sync.Once
}

func (s *clickhouseSession) ExecuteTimed(ctx context.Context, query string) (benchmark.TimingResult, error) {
	result, err := Measure(s.clock, benchmark.BackendClickHouse, func() (int64, error) {
		rows, err := s.conn.Query(ctx, query)
		if err != nil {
			return 0, err
		}
		defer rows.Close()

		types := rows.ColumnTypes()
		dest := make([]any, len(types))
		for i, ct := range types {
			dest[i] = reflect.New(ct.ScanType()).Interface()
		}

		var n int64
		for rows.Next() {
			if err := rows.Scan(dest...); err != nil {
				return n, err
			}
			n++
		}
		return n, rows.Err()
	})
	if err != nil {
		return benchmark.TimingResult{}, benchmark.NewQueryError(benchmark.BackendClickHouse, query, err)
	}
	return result, nil
}

func (s *clickhouseSession) RunAdmin(ctx context.Context, command string) error {
	if err := s.conn.Exec(ctx, command); err != nil {
		return benchmark.NewAdminError(benchmark.BackendClickHouse, command, err)
	}
	return nil
}

func (s *clickhouseSession) Close() {
	s.closeOnce.Do(func() {
		if err := s.conn.Close(); err != nil {
			slog.Debug("ClickHouseAdapter: close", "error", err)
		}
	})
}
