package adapter

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/connection"
)

// SQLAdapter reaches a backend through database/sql. Each session opens its
// own single-connection pool and pins one physical connection, so every
// measurement pays its own connection setup and nothing is reused across calls.
type SQLAdapter struct {
	backend    benchmark.BackendID
	driverName string
	dsn        string
	redacted   string
	clock      Clock
}

// NewSQLServerAdapter creates the row-store adapter backed by go-mssqldb.
func NewSQLServerAdapter(conn *connection.SQLServerConnection) *SQLAdapter {
	return &SQLAdapter{
		backend:    benchmark.BackendSQLServer,
		driverName: "sqlserver",
		dsn:        conn.GetDSNWithPassword(),
		redacted:   conn.Redact(),
		clock:      SystemClock{},
	}
}

// NewSQLAdapter creates an adapter over any registered database/sql driver.
func NewSQLAdapter(backend benchmark.BackendID, driverName, dsn string) *SQLAdapter {
	return &SQLAdapter{
		backend:    backend,
		driverName: driverName,
		dsn:        dsn,
		redacted:   driverName,
		clock:      SystemClock{},
	}
}

// WithClock replaces the measurement clock.
func (a *SQLAdapter) WithClock(clock Clock) *SQLAdapter {
	a.clock = clock
	return a
}

// Backend returns the backend this adapter talks to.
func (a *SQLAdapter) Backend() benchmark.BackendID {
	return a.backend
}

// Connect opens a dedicated connection.
func (a *SQLAdapter) Connect(ctx context.Context) (Session, error) {
	db, err := sql.Open(a.driverName, a.dsn)
	if err != nil {
		return nil, benchmark.NewConnectionError(a.backend, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, benchmark.NewConnectionError(a.backend, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, benchmark.NewConnectionError(a.backend, err)
	}

	slog.Debug("SQLAdapter: connected", "backend", a.backend, "target", a.redacted)
	return &sqlSession{backend: a.backend, db: db, conn: conn, clock: a.clock}, nil
}

type sqlSession struct {
	backend benchmark.BackendID
	db      *sql.DB
	conn    *sql.Conn
	clock   Clock

	closeOnce sync.Once
}

func (s *sqlSession) ExecuteTimed(ctx context.Context, query string) (benchmark.TimingResult, error) {
	result, err := Measure(s.clock, s.backend, func() (int64, error) {
		rows, err := s.conn.QueryContext(ctx, query)
		if err != nil {
			return 0, err
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return 0, err
		}
		// RawBytes forces the driver to materialise every column of every row.
		values := make([]sql.RawBytes, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
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
		return benchmark.TimingResult{}, benchmark.NewQueryError(s.backend, query, err)
	}
	return result, nil
}

func (s *sqlSession) RunAdmin(ctx context.Context, command string) error {
	if _, err := s.conn.ExecContext(ctx, command); err != nil {
		return benchmark.NewAdminError(s.backend, command, err)
	}
	return nil
}

func (s *sqlSession) Close() {
	s.closeOnce.Do(func() {
		if err := s.conn.Close(); err != nil {
			slog.Debug("SQLAdapter: close connection", "backend", s.backend, "error", err)
		}
		if err := s.db.Close(); err != nil {
			slog.Debug("SQLAdapter: close pool", "backend", s.backend, "error", err)
		}
	})
}
