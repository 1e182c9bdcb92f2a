// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pgexec

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaInspector queries information_schema for table column metadata
// and caches results to minimize database roundtrips.
type SchemaInspector struct {
	pool  *pgxpool.Pool
	cache map[string]*TableSchema
	mu    sync.RWMutex
}

// NewSchemaInspector creates a SchemaInspector over the given pool.
func NewSchemaInspector(pool *pgxpool.Pool) *SchemaInspector {
	return &SchemaInspector{
		pool:  pool,
		cache: make(map[string]*TableSchema),
	}
}

// TableSchema retrieves or caches the column metadata for a table.
// The tableName can be either "table" or "schema.table"; an unqualified
// name defaults to the public schema.
func (si *SchemaInspector) TableSchema(ctx context.Context, tableName string) (*TableSchema, error) {
	si.mu.RLock()
	if ts, exists := si.cache[tableName]; exists {
		si.mu.RUnlock()
		return ts, nil
	}
	si.mu.RUnlock()

	schema, table := parseTableName(tableName)
	ts := &TableSchema{Schema: schema, Table: table}

	conn, err := si.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	colQuery := `
		SELECT c.column_name, c.data_type, c.udt_name
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`

	rows, err := conn.Query(ctx, colQuery, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, dataType, udtName string
		if err := rows.Scan(&name, &dataType, &udtName); err != nil {
			return nil, err
		}
		ts.Columns = append(ts.Columns, Column{
			Name:     name,
			DataType: resolveDataType(dataType, udtName),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ts.Columns) == 0 {
		return nil, fmt.Errorf("table %s.%s does not exist or has no columns", schema, table)
	}

	si.mu.Lock()
	si.cache[tableName] = ts
	si.mu.Unlock()

	return ts, nil
}

// ClearCache clears all cached schema information.
func (si *SchemaInspector) ClearCache() {
	si.mu.Lock()
	defer si.mu.Unlock()
	si.cache = make(map[string]*TableSchema)
}

// parseTableName splits a table name into schema and table components.
// If no schema is specified, it defaults to "public".
func parseTableName(tableName string) (schema string, table string) {
	parts := strings.Split(tableName, ".")
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "public", tableName
}

// resolveDataType maps information_schema type descriptions to types
// usable in a recordset column list. Arrays and user-defined types
// report generic markers and need the underlying udt name.
func resolveDataType(dataType, udtName string) string {
	switch dataType {
	case "ARRAY":
		return strings.TrimPrefix(udtName, "_") + "[]"
	case "USER-DEFINED":
		return udtName
	}
	return dataType
}
