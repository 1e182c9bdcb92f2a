// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pgexec executes batch payloads against PostgreSQL over a pgx
// connection pool. It builds recordset INSERT statements that carry a
// whole batch as one jsonb parameter, keeping every statement under the
// extended-protocol bind-parameter ceiling regardless of batch size.
package pgexec

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"bulkfast/cli/internal/batch"
)

// Executor runs batch inserts using a connection pool.
// It integrates schema inspection so insert statements carry the right
// column types in their recordset lists.
type Executor struct {
	// Pool is the PostgreSQL connection pool
	Pool *pgxpool.Pool
	// inspector provides cached table metadata
	inspector *SchemaInspector
}

// New creates an Executor from an existing pgx pool.
func New(pool *pgxpool.Pool) *Executor {
	return &Executor{
		Pool:      pool,
		inspector: NewSchemaInspector(pool),
	}
}

// Connect opens a pool for the DSN and verifies the connection with a ping.
func Connect(ctx context.Context, dsn string) (*Executor, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

// Close releases the underlying pool.
func (e *Executor) Close() {
	e.Pool.Close()
}

// TableSchema returns the cached column metadata for a table.
func (e *Executor) TableSchema(ctx context.Context, tableName string) (*TableSchema, error) {
	return e.inspector.TableSchema(ctx, tableName)
}

// InsertFunc builds the recordset INSERT for the table and columns once
// and returns an executor function for the batch dispatcher. Each call
// runs one payload inside its own transaction; a batch either commits
// whole or not at all.
func (e *Executor) InsertFunc(table *TableSchema, cols []string) (batch.ExecuteFunc, error) {
	stmt, err := InsertStatement(table, cols)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, payload []byte) (batch.Result, error) {
		conn, err := e.Pool.Acquire(ctx)
		if err != nil {
			return batch.Result{}, err
		}
		defer conn.Release()

		tx, err := conn.Begin(ctx)
		if err != nil {
			return batch.Result{}, err
		}
		defer tx.Rollback(ctx)

		// Bind as text; the statement casts to jsonb. A []byte argument
		// would go over the wire as bytea and fail the cast.
		ct, err := tx.Exec(ctx, stmt, string(payload))
		if err != nil {
			return batch.Result{}, err
		}
		if err := tx.Commit(ctx); err != nil {
			return batch.Result{}, fmt.Errorf("commit failed: %w", err)
		}
		return batch.Result{RowsAffected: ct.RowsAffected()}, nil
	}, nil
}

// ServerInfo holds connection details reported by the server.
type ServerInfo struct {
	Version  string
	Database string
	User     string
}

// ServerInfo queries the server for its version and the current
// database and user.
func (e *Executor) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	row := e.Pool.QueryRow(ctx, "SELECT version(), current_database(), current_user")
	if err := row.Scan(&info.Version, &info.Database, &info.User); err != nil {
		return nil, err
	}
	return &info, nil
}
