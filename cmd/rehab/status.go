// ABOUTME: CLI command for checking encryption service availability.
// ABOUTME: Runs the capability probe against the configured backend.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the encryption service",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Backend: %s\n", cfg.GetBackend())
		printStatus(trk.CheckAvailability(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
