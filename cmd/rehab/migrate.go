// ABOUTME: CLI command for copying sessions between ledger backends.
// ABOUTME: Reads every indexed session from the current backend and imports it into another.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/rehab/internal/ledger"
	"github.com/harperreed/rehab/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	migrateTo      string
	migrateDataDir string
	migrateDryRun  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy sessions to another backend",
	Long: `Copy every readable session from the current backend to another one.

Session IDs are preserved and sessions already present in the destination
are skipped, so an interrupted migration can be re-run.

USAGE:

  rehab migrate --to sqlite --dry-run   # Preview what would be copied
  rehab migrate --to sqlite -y          # Copy from charm to local SQLite
  rehab --backend badger migrate --to charm -y

Unreadable sessions in the source are reported and left behind.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateTo == "" {
			return fmt.Errorf("--to is required")
		}

		dstCfg := *cfg
		dstCfg.Backend = migrateTo
		if migrateDataDir != "" {
			dstCfg.DataDir = migrateDataDir
		}
		if err := dstCfg.Validate(); err != nil {
			return err
		}
		if dstCfg.GetBackend() == cfg.GetBackend() && dstCfg.GetDataDir() == cfg.GetDataDir() {
			return fmt.Errorf("source and destination are the same backend")
		}

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
		}

		approver := promptApprover(cmd.InOrStdin(), cmd.ErrOrStderr())
		if flagYes {
			approver = ledger.AutoApprove
		}
		dstGW, dst, err := openTracker(&dstCfg, approver)
		if err != nil {
			return fmt.Errorf("failed to open %s backend: %w", migrateTo, err)
		}
		defer dstGW.Close()

		summary, err := tracker.Migrate(cmd.Context(), trk, dst, migrateDryRun)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		verb := "Migrated"
		if migrateDryRun {
			verb = "Would migrate"
		}
		color.Green("✓ %s %d sessions from %s to %s", verb, summary.Imported, cfg.GetBackend(), migrateTo)
		if summary.Existing > 0 {
			fmt.Printf("  Already present: %d\n", summary.Existing)
		}
		if summary.Unreadable > 0 {
			color.Yellow("  Unreadable in source: %d", summary.Unreadable)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: charm, badger, sqlite, memory")
	migrateCmd.Flags().StringVar(&migrateDataDir, "to-data-dir", "", "data directory for the destination backend")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
