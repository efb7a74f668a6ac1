package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/connection"
	"github.com/whhaicheng/DB-Showdown/internal/domain/dataset"
)

// ClickHouseLoader loads orders into ClickHouse with native batches.
type ClickHouseLoader struct {
	conn   *connection.ClickHouseConnection
	client driver.Conn
}

// NewClickHouseLoader creates the column-store loader.
func NewClickHouseLoader(conn *connection.ClickHouseConnection) *ClickHouseLoader {
	return &ClickHouseLoader{conn: conn}
}

// Backend returns BackendClickHouse.
func (l *ClickHouseLoader) Backend() benchmark.BackendID {
	return benchmark.BackendClickHouse
}

// Options returns the client options. The session starts in the server's
// default database because the target may not exist yet; every statement
// qualifies the table with the target database.
func (l *ClickHouseLoader) Options() *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{l.conn.Addr()},
		Auth: clickhouse.Auth{
			Username: l.conn.Username,
			Password: l.conn.Password,
		},
		DialTimeout: l.conn.DialTimeout,
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
	}
}

func (l *ClickHouseLoader) connect() (driver.Conn, error) {
	if l.client != nil {
		return l.client, nil
	}
	client, err := clickhouse.Open(l.Options())
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	l.client = client
	return client, nil
}

// Ping checks once that the server answers.
func (l *ClickHouseLoader) Ping(ctx context.Context) error {
	client, err := l.connect()
	if err != nil {
		return err
	}
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("ping clickhouse: %w", err)
	}
	return nil
}

// Recreate creates the database if missing, then drops and recreates Orders.
func (l *ClickHouseLoader) Recreate(ctx context.Context) error {
	stmts, err := schemaStatements("clickhouse_orders.sql", l.conn.Database)
	if err != nil {
		return err
	}
	client, err := l.connect()
	if err != nil {
		return err
	}

	stmts = append([]string{"CREATE DATABASE IF NOT EXISTS " + l.conn.Database}, stmts...)
	for _, stmt := range stmts {
		if err := client.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema: %w", err)
		}
	}

	slog.Info("ClickHouseLoader: Orders table recreated", "target", l.conn.Redact())
	return nil
}

// LoadChunk sends one chunk as a single native batch.
func (l *ClickHouseLoader) LoadChunk(ctx context.Context, orders []dataset.Order) error {
	client, err := l.connect()
	if err != nil {
		return err
	}

	batch, err := client.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s.Orders", l.conn.Database))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, o := range orders {
		if err := batch.Append(o.Values()...); err != nil {
			batch.Abort()
			return fmt.Errorf("append row %d: %w", o.OrderID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Close releases the client.
func (l *ClickHouseLoader) Close() error {
	if l.client == nil {
		return nil
	}
	err := l.client.Close()
	l.client = nil
	return err
}
