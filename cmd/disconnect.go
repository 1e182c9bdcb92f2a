// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"bulkfast/cli/internal/keychain"

	"github.com/spf13/cobra"
)

// disconnectCmd represents the disconnect command for clearing the stored
// database connection. It removes the saved DSN from the OS keychain.
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Remove the saved database connection",
	Long: `The disconnect command removes the stored database connection string from
the OS keychain. Connections provided via the BULKFAST_DSN or DATABASE_URL
environment variables are not affected.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if km, err := keychain.GetManager(); err == nil {
			_ = km.ClearDB()
		}

		fmt.Println("✅ Saved database connection has been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}
