// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pgexec

import (
	"fmt"
	"strings"
)

// MaxBindParameters is the ceiling on bind parameters in one PostgreSQL
// extended-protocol statement. A naive multi-row INSERT spends one
// parameter per field per row and hits this ceiling quickly; the
// recordset INSERT always spends exactly one.
const MaxBindParameters = 65535

// Column describes one table column with its SQL type.
type Column struct {
	Name     string
	DataType string
}

// TableSchema describes a table's columns in ordinal order.
type TableSchema struct {
	Schema  string
	Table   string
	Columns []Column
}

// QualifiedName returns the schema-qualified, quoted table name.
func (t *TableSchema) QualifiedName() string {
	return quoteIdent(t.Schema) + "." + quoteIdent(t.Table)
}

// Column looks up a column by name.
func (t *TableSchema) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns all column names in ordinal order.
func (t *TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// quoteIdent quotes a SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// InsertStatement builds an INSERT that unpacks a single jsonb array
// parameter into rows. Every column in cols must exist in the table
// schema; the recordset column list carries the SQL types so PostgreSQL
// casts the JSON values on the way in.
//
//	INSERT INTO "public"."users" ("id","name")
//	SELECT "id","name" FROM jsonb_to_recordset($1::jsonb)
//	AS r("id" bigint,"name" text)
func InsertStatement(table *TableSchema, cols []string) (string, error) {
	if len(cols) == 0 {
		return "", fmt.Errorf("no columns to insert into %s", table.QualifiedName())
	}

	quoted := make([]string, len(cols))
	typed := make([]string, len(cols))
	for i, name := range cols {
		col, ok := table.Column(name)
		if !ok {
			return "", fmt.Errorf("column %q does not exist in %s", name, table.QualifiedName())
		}
		quoted[i] = quoteIdent(col.Name)
		typed[i] = quoteIdent(col.Name) + " " + col.DataType
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table.QualifiedName())
	b.WriteString(" (")
	b.WriteString(strings.Join(quoted, ","))
	b.WriteString(") SELECT ")
	b.WriteString(strings.Join(quoted, ","))
	b.WriteString(" FROM jsonb_to_recordset($1::jsonb) AS r(")
	b.WriteString(strings.Join(typed, ","))
	b.WriteString(")")
	return b.String(), nil
}

// NaiveParameterCount is the bind-parameter cost of a multi-row VALUES
// insert for the given shape.
func NaiveParameterCount(rows, cols int) int {
	return rows * cols
}

// MaxNaiveRows is how many rows of the given width fit in one naive
// VALUES insert before hitting the parameter ceiling.
func MaxNaiveRows(cols int) int {
	if cols <= 0 {
		return 0
	}
	return MaxBindParameters / cols
}
