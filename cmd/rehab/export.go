// ABOUTME: CLI commands for exporting and importing rehab sessions.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/rehab/internal/export"
	"github.com/harperreed/rehab/internal/models"
	"github.com/spf13/cobra"
)

var (
	exportOutput    string
	exportIntensity string
	exportSince     string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export rehab sessions",
	Long: `Export rehab sessions in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by intensity
  markdown   Markdown report with summary and session table

Metrics stay encrypted in every format.

OPTIONS:

  --output, -o      Write to file instead of stdout
  --intensity, -i   Only include sessions of this intensity
  --since           Only include sessions since this date (YYYY-MM-DD)

EXAMPLES:

  rehab export json -o backup.json
  rehab export yaml
  rehab export markdown --intensity high --since 2025-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter export.Filter
		if exportIntensity != "" {
			if !models.IsValidIntensity(exportIntensity) {
				return fmt.Errorf("invalid intensity: %s", exportIntensity)
			}
			level := models.Intensity(exportIntensity)
			filter.Intensity = &level
		}
		if exportSince != "" {
			t, err := time.ParseInLocation("2006-01-02", exportSince, time.Local)
			if err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
			}
			filter.Since = &t
		}

		snap, status := trk.Refresh(cmd.Context(), nil)
		if status.Failed() {
			printStatus(status)
			return fmt.Errorf("export failed: %s", status.Message)
		}

		data, err := export.Render(export.Format(args[0]), snap, filter, time.Now())
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported %d sessions to %s", snap.Count(), exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import rehab sessions from JSON",
	Long: `Import rehab sessions from a JSON export file.

Session IDs are preserved. Sessions already in the index are skipped,
so importing the same file twice is safe.

EXAMPLES:

  rehab import backup.json -y`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		raw, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		data, err := export.ParseJSON(raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		summary, err := trk.Import(cmd.Context(), data.Sessions)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %d sessions from %s", summary.Imported, filename)
		if summary.Existing > 0 {
			fmt.Printf("  Skipped %d already present\n", summary.Existing)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportIntensity, "intensity", "i", "", "filter by intensity")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include sessions since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
