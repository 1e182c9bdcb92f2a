// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"bulkfast/cli/internal/batch"
	bferrors "bulkfast/cli/internal/errors"
	"bulkfast/cli/internal/pgexec"
	"bulkfast/cli/internal/reader"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var planBatchSize int

// planCmd represents the plan command. It inspects an input file offline
// and shows how the load would be batched, contrasting the jsonb payload
// cost with a naive multi-row VALUES insert.
var planCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Show how a file would be batched, without connecting",
	Long: `The plan command reads an NDJSON or CSV file and reports how many batches
a load would dispatch and how many bind parameters a naive multi-row INSERT
would have needed for the same data. No database connection is made.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := reader.ReadFile(args[0])
		if err != nil {
			return bferrors.Wrap(bferrors.ReadFailed, "could not read "+args[0], err)
		}
		if len(records) == 0 {
			pterm.Println("Nothing to plan: " + args[0] + " has no records")
			return nil
		}

		batchSize := planBatchSize
		if batchSize <= 0 {
			batchSize = batch.DefaultBatchSize
		}

		rows := len(records)
		cols := records[0].Len()
		batches := (rows + batchSize - 1) / batchSize
		naiveParams := pgexec.NaiveParameterCount(rows, cols)
		naiveRowCap := pgexec.MaxNaiveRows(cols)

		title := pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Load Plan")
		summary := fmt.Sprintf("%d records × %d fields from %s", rows, cols, args[0])
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(summary))

		items := []pterm.BulletListItem{
			{Level: 0, Text: fmt.Sprintf("batch size: %d records", batchSize)},
			{Level: 0, Text: fmt.Sprintf("batches to dispatch: %d", batches)},
			{Level: 0, Text: "bind parameters per statement: 1 (jsonb payload)"},
			{Level: 0, Text: fmt.Sprintf("naive VALUES insert would need %d parameters total", naiveParams)},
		}
		if naiveRowCap > 0 {
			items = append(items, pterm.BulletListItem{
				Level: 0,
				Text:  fmt.Sprintf("naive insert caps at %d rows per statement (limit %d)", naiveRowCap, pgexec.MaxBindParameters),
			})
		}
		if naiveParams > pgexec.MaxBindParameters {
			items = append(items, pterm.BulletListItem{
				Level: 0,
				Text:  pterm.NewStyle(pterm.FgYellow).Sprintf("a single naive statement would exceed the %d parameter limit", pgexec.MaxBindParameters),
			})
		}
		_ = pterm.DefaultBulletList.WithItems(items).Render()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().IntVar(&planBatchSize, "batch-size", 0, "Records per batch (default 1000)")
}
