// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"net/url"
	"os"
	"strings"

	"bulkfast/cli/internal/keychain"
)

// resolveDSN finds the configured DSN following the documented order:
// BULKFAST_DSN, then DATABASE_URL, then the OS keychain. The second
// return value names the source, for display. Empty DSN means nothing
// is configured.
func resolveDSN() (dsn, source string) {
	if env := os.Getenv("BULKFAST_DSN"); strings.TrimSpace(env) != "" {
		return strings.TrimSpace(env), "BULKFAST_DSN environment variable"
	}
	if env := os.Getenv("DATABASE_URL"); strings.TrimSpace(env) != "" {
		return strings.TrimSpace(env), "DATABASE_URL environment variable"
	}
	if km, err := keychain.GetManager(); err == nil {
		if v, err := km.LoadDBDSN(); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), "OS keychain"
		}
	}
	return "", ""
}

// deriveDBName extracts the database name from a DSN for display.
func deriveDBName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
