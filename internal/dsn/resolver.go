// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn parses, validates and normalizes PostgreSQL connection
// strings. Normalization URL-encodes credentials so DSNs typed with
// special characters in the password still reach pgx in a valid form.
package dsn

import "strings"

// IsPostgres reports whether the DSN carries a PostgreSQL scheme.
func IsPostgres(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// Parse parses a DSN string and returns a normalized connection string.
// This is the main entry point for DSN parsing.
func Parse(dsn string) (string, error) {
	if dsn == "" {
		return "", NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	if !IsPostgres(dsn) {
		return "", NewParseError(dsn, "unsupported database type", "use a postgres:// or postgresql:// connection string")
	}

	resolver := NewPostgreSQLResolver()
	info, err := resolver.Parse(dsn)
	if err != nil {
		return "", err
	}
	return resolver.Normalize(info)
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	if dsn == "" {
		return NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	if !IsPostgres(dsn) {
		return NewParseError(dsn, "unsupported database type", "use a postgres:// or postgresql:// connection string")
	}
	return NewPostgreSQLResolver().Validate(dsn)
}

// ParseInfo parses a DSN string and returns detailed DSN info.
// Useful for inspecting connection details.
func ParseInfo(dsn string) (*DSNInfo, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	if !IsPostgres(dsn) {
		return nil, NewParseError(dsn, "unsupported database type", "use a postgres:// or postgresql:// connection string")
	}
	return NewPostgreSQLResolver().Parse(dsn)
}
