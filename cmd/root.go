// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Bulkfast CLI application.
// It implements subcommands for bulk loading, connection management, and configuration
// using the Cobra CLI framework. The package handles command parsing, execution, and
// provides a rich terminal UI with spinners and progress indicators.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point for the Bulkfast CLI application.
var rootCmd = &cobra.Command{
	Use:           "bulkfast",
	Short:         "Bulkfast CLI for bulk loading data into PostgreSQL",
	Long:          `Bulkfast is a command-line tool that loads NDJSON and CSV files into PostgreSQL in large batches, sending each batch as a single jsonb parameter to stay under the bind-parameter limit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("bulkfast %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
}
