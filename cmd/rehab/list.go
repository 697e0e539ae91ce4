// ABOUTME: CLI command for listing rehab sessions.
// ABOUTME: Supports search filtering and limiting results.
package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/harperreed/rehab/internal/models"
	"github.com/spf13/cobra"
)

var (
	listSearch string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List rehab sessions",
	Long: `List recent rehab sessions, newest first.

OUTPUT FORMAT:

  Each line shows: ID  DATE  EXERCISE  DURATION  INTENSITY  PROGRESS  (NOTES)

  The ID is the 7-character suffix of the session ID.

FILTERING:

  Use --search to match exercise type or intensity, ignoring case.

EXAMPLES:

  rehab list                   # Show last 20 sessions
  rehab list --search knee     # Sessions whose exercise mentions knee
  rehab list -s high -n 50     # Last 50 high-intensity sessions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, status := trk.Refresh(cmd.Context(), nil)
		if status.Failed() {
			printStatus(status)
			return nil
		}

		sessions := snap.Filter(listSearch)
		if listLimit > 0 && len(sessions) > listLimit {
			sessions = sessions[:listLimit]
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
		}

		faint := color.New(color.Faint)
		for _, s := range sessions {
			notes := ""
			if s.TherapistNotes != "" {
				notes = faint.Sprintf(" (%s)", truncate(s.TherapistNotes, 30))
			}
			fmt.Printf("%s %s %s %3d min %s %3d%%%s\n",
				faint.Sprint(models.ShortID(s.ID)),
				faint.Sprint(s.RecordedAt().Format("2006-01-02 15:04")),
				padRight(truncate(s.ExerciseType, 20), 20),
				s.Duration,
				intensityColor(s.Intensity).Sprint(padRight(string(s.Intensity), 6)),
				s.ProgressScore,
				notes)
		}

		if snap.Skipped() > 0 {
			color.Yellow("⚠ %d indexed session(s) could not be read", snap.Skipped())
		}
		return nil
	},
}

func intensityColor(level models.Intensity) *color.Color {
	switch level {
	case models.IntensityHigh:
		return color.New(color.FgRed)
	case models.IntensityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func padRight(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "filter by exercise type or intensity")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")
	rootCmd.AddCommand(listCmd)
}
