// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"bulkfast/cli/internal/batch"
	"bulkfast/cli/internal/config"
	"bulkfast/cli/internal/dsn"
	"bulkfast/cli/internal/encode"
	bferrors "bulkfast/cli/internal/errors"
	"bulkfast/cli/internal/logging"
	"bulkfast/cli/internal/pgexec"
	"bulkfast/cli/internal/progress"
	"bulkfast/cli/internal/reader"
	"bulkfast/cli/internal/record"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	loadTable       string
	loadFormat      string
	loadColumns     []string
	loadBatchSize   int
	loadConcurrency int
	loadOnError     string
	verboseLoad     bool
)

// loadCmd represents the load command for bulk loading a file into a table.
// It reads NDJSON or CSV input, partitions the records into batches, and
// sends each batch to PostgreSQL as a single jsonb parameter.
var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Bulk load an NDJSON or CSV file into a PostgreSQL table",
	Long: `The load command reads records from an NDJSON or CSV file and inserts them
into the target table in batches. Each batch travels to the server as one
jsonb array parameter and is unpacked with jsonb_to_recordset, so a load
never hits the bind-parameter limit no matter how wide the rows are.

Each batch runs in its own transaction. With --on-error=fail_fast (the
default) the first failing batch stops the load; with --on-error=collect
every batch is attempted and failures are reported at the end.

The connection string is resolved from BULKFAST_DSN, then DATABASE_URL,
then the OS keychain (saved by 'bulkfast connect').`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if verboseLoad {
			os.Setenv("BULKFAST_VERBOSE", "1")
		}
		if loadTable == "" {
			return fmt.Errorf("--table is required")
		}

		cfg, err := config.Load()
		if err == nil {
			if loadBatchSize == 0 {
				loadBatchSize = cfg.BatchSize
			}
			if loadConcurrency == 0 {
				loadConcurrency = cfg.Concurrency
			}
			if loadOnError == "" {
				loadOnError = cfg.OnError
			}
		}

		startAt := time.Now()
		ctx := cmd.Context()

		// Resolve DSN from env or keychain (not from config)
		rawDSN, _ := resolveDSN()
		if strings.TrimSpace(rawDSN) == "" {
			fmt.Println("⚠️  No database connection configured.")
			fmt.Println("   Please run 'bulkfast connect' to configure your database.")
			return nil
		}

		// Parse and normalize the DSN to handle special characters
		normalizedDSN, err := dsn.Parse(rawDSN)
		if err != nil {
			fmt.Println("❌ Invalid database connection string.")
			if parseErr, ok := err.(*dsn.ParseError); ok {
				fmt.Println("   " + parseErr.Error())
			}
			fmt.Println("   Please run 'bulkfast connect' to reconfigure your database.")
			return err
		}

		// Display database connection info (masked)
		maskedDSN := logging.Mask(normalizedDSN)
		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Database:   ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(deriveDBName(normalizedDSN)))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Connection: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(maskedDSN))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Table:      ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(loadTable))
		pterm.Println()

		records, err := readInput(args[0])
		if err != nil {
			return bferrors.Wrap(bferrors.ReadFailed, "could not read "+args[0], err)
		}
		if len(records) == 0 {
			pterm.Println("Nothing to load: " + args[0] + " has no records")
			return nil
		}

		ctxConnect, cancel := context.WithTimeout(ctx, 10*time.Second)
		exec, err := pgexec.Connect(ctxConnect, normalizedDSN)
		cancel()
		if err != nil {
			logging.PresentConnectError(err.Error())
			return bferrors.Wrap(bferrors.ConnectFailed, "could not connect to the database", err)
		}
		defer exec.Close()

		table, err := exec.TableSchema(ctx, loadTable)
		if err != nil {
			fmt.Println("❌ " + logging.PresentError("could not inspect table "+loadTable, err))
			return bferrors.Wrap(bferrors.SchemaFailed, "could not inspect table "+loadTable, err)
		}

		cols := loadColumns
		if len(cols) == 0 {
			cols = records[0].Keys()
		}
		execFn, err := exec.InsertFunc(table, cols)
		if err != nil {
			return bferrors.Wrap(bferrors.SchemaFailed, "cannot build insert for "+loadTable, err)
		}

		opts := batch.NewOptions(encode.JSONArray, execFn)
		if loadBatchSize != 0 {
			opts.BatchSize = loadBatchSize
		}
		if loadConcurrency != 0 {
			opts.Concurrency = loadConcurrency
		}
		if loadOnError != "" {
			opts.OnError = batch.Policy(loadOnError)
		}

		numBatches := 0
		if opts.BatchSize > 0 {
			numBatches = (len(records) + opts.BatchSize - 1) / opts.BatchSize
		}
		state := progress.NewState(numBatches)
		rs := progress.NewRenderState()
		opts.OnDispatch = state.StartBatch
		opts.OnResult = func(b int, rows int64, err error) {
			if err != nil {
				state.FailBatch(b, logging.Mask(err.Error()))
				return
			}
			state.CompleteBatch(b, rows)
		}

		var (
			area    *pterm.AreaPrinter
			areaWG  sync.WaitGroup
			areaEnd = make(chan struct{})
		)
		startAreaSpinner(&area, &areaWG, areaEnd, func(a *pterm.AreaPrinter) {
			rs.IncrementFrame()
			a.Update(progress.Lines(state, rs))
		})

		rep, runErr := batch.Run(ctx, records, opts)
		stopAreaSpinner(&area, &areaWG, &areaEnd)

		elapsed := time.Since(startAt).Round(time.Millisecond)
		if rep == nil {
			// Options were rejected before anything was dispatched.
			fmt.Println("❌ " + runErr.Error())
			return runErr
		}

		if rep.OK() && runErr == nil {
			title := pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Load Completed")
			details := fmt.Sprintf("Duration: %s\nBatches: %d\nRows: %d", elapsed, rep.Succeeded, rep.Rows)
			pterm.Println(pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(details))
			return nil
		}

		title := pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Load Failed")
		details := fmt.Sprintf("Duration: %s\nSucceeded: %d batches (%d rows)\nFailed: %d batches\nNot attempted: %d batches",
			elapsed, rep.Succeeded, rep.Rows, rep.Failed, rep.NotAttempted)
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(details))
		for _, e := range rep.Errors {
			pterm.Println("  ✗ " + logging.Mask(e.Error()))
		}

		if runErr != nil {
			return bferrors.Wrap(bferrors.LoadFailed, "load did not complete", runErr)
		}
		return bferrors.New(bferrors.LoadFailed, fmt.Sprintf("%d of %d batches failed", rep.Failed, rep.Batches))
	},
}

// readInput reads all records from the file, showing an inline spinner
// while large files parse.
func readInput(path string) ([]*record.Record, error) {
	stop := startInlineSpinner(os.Stdout, "reading "+path, []string{"-", "\\", "|", "/"}, 100*time.Millisecond)
	defer stop()

	if loadFormat != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return reader.Read(f, reader.Format(loadFormat))
	}
	return reader.ReadFile(path)
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVarP(&loadTable, "table", "t", "", "Target table, optionally schema-qualified (required)")
	loadCmd.Flags().StringVar(&loadFormat, "format", "", "Input format: ndjson or csv (default: detect from extension)")
	loadCmd.Flags().StringSliceVar(&loadColumns, "columns", nil, "Columns to insert (default: fields of the first record)")
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 0, "Records per batch (default from config, 1000)")
	loadCmd.Flags().IntVar(&loadConcurrency, "concurrency", 0, "Batches in flight at once (default from config, 1)")
	loadCmd.Flags().StringVar(&loadOnError, "on-error", "", "Failure policy: fail_fast or collect (default from config, fail_fast)")
	loadCmd.Flags().BoolVarP(&verboseLoad, "verbose", "v", false, "Enable verbose debug output")
}
