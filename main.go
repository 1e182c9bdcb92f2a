// Package main is the entry point for the Bulkfast CLI application.
// It provides bulk data loading for PostgreSQL through batched jsonb payloads.
package main

import (
	"bulkfast/cli/cmd"
)

// main is the entry point for the Bulkfast CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
