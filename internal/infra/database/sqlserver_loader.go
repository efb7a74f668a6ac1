package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/connection"
	"github.com/whhaicheng/DB-Showdown/internal/domain/dataset"
)

// SQLServerLoader loads orders into SQL Server with bulk copy.
type SQLServerLoader struct {
	conn *connection.SQLServerConnection
	db   *sql.DB // Target database, opened by Recreate
}

// NewSQLServerLoader creates the row-store loader.
func NewSQLServerLoader(conn *connection.SQLServerConnection) *SQLServerLoader {
	return &SQLServerLoader{conn: conn}
}

// Backend returns BackendSQLServer.
func (l *SQLServerLoader) Backend() benchmark.BackendID {
	return benchmark.BackendSQLServer
}

// openMaster opens a single-connection pool on the master database,
// which exists before provisioning.
func (l *SQLServerLoader) openMaster(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", l.conn.MasterDSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlserver: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlserver: %w", err)
	}
	return db, nil
}

// Ping checks once that the server accepts logins.
func (l *SQLServerLoader) Ping(ctx context.Context) error {
	db, err := l.openMaster(ctx)
	if err != nil {
		return err
	}
	return db.Close()
}

// Recreate creates the database if missing, then drops and recreates Orders.
func (l *SQLServerLoader) Recreate(ctx context.Context) error {
	if err := ValidateIdentifier(l.conn.Database); err != nil {
		return err
	}

	master, err := l.openMaster(ctx)
	if err != nil {
		return err
	}
	create := fmt.Sprintf("IF DB_ID(N'%[1]s') IS NULL CREATE DATABASE [%[1]s]", l.conn.Database)
	_, err = master.ExecContext(ctx, create)
	master.Close()
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}

	if l.db == nil {
		db, err := sql.Open("sqlserver", l.conn.GetDSNWithPassword())
		if err != nil {
			return fmt.Errorf("open sqlserver: %w", err)
		}
		db.SetMaxOpenConns(1)
		l.db = db
	}

	stmts, err := schemaStatements("sqlserver_orders.sql", l.conn.Database)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema: %w", err)
		}
	}

	slog.Info("SQLServerLoader: Orders table recreated", "target", l.conn.Redact())
	return nil
}

// LoadChunk bulk-copies one chunk inside its own transaction.
func (l *SQLServerLoader) LoadChunk(ctx context.Context, orders []dataset.Order) error {
	if l.db == nil {
		return fmt.Errorf("load chunk: schema not created")
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn("dbo.Orders", mssql.BulkOptions{Tablock: true}, dataset.Columns...))
	if err != nil {
		return fmt.Errorf("prepare bulk copy: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		if _, err := stmt.ExecContext(ctx, bulkRow(o)...); err != nil {
			return fmt.Errorf("bulk copy row %d: %w", o.OrderID, err)
		}
	}
	// An Exec without arguments flushes the batch.
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush bulk copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// bulkRow converts an order to the value types the bulk copy encoder accepts.
func bulkRow(o dataset.Order) []any {
	return []any{
		int64(o.OrderID),
		int64(o.CustomerID),
		o.OrderDate,
		o.Amount.StringFixed(2),
		o.Region,
		o.Notes,
	}
}

// Close releases the target database pool.
func (l *SQLServerLoader) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
