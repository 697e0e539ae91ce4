// ABOUTME: CLI command for session statistics.
// ABOUTME: Prints totals, average duration, and the progress score trend.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/rehab/internal/models"
	"github.com/spf13/cobra"
)

const barWidth = 20

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session statistics",
	Long: `Show totals across all sessions:

  Total sessions
  Average duration in minutes
  Number of high-intensity sessions
  Progress score trend, newest first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, status := trk.Refresh(cmd.Context(), nil)
		if status.Failed() {
			printStatus(status)
			return nil
		}

		sum := snap.Summarize()
		fmt.Printf("Total sessions:   %d\n", sum.TotalSessions)
		fmt.Printf("Average duration: %.1f min\n", sum.AvgDuration)
		fmt.Printf("High intensity:   %d\n", sum.HighIntensity)

		if len(sum.ProgressScores) == 0 {
			return nil
		}

		fmt.Println()
		fmt.Println("Progress:")
		faint := color.New(color.Faint)
		for i, s := range snap.Sessions() {
			fmt.Printf("  %s %s %3d%%\n",
				faint.Sprint(s.RecordedAt().Format("01-02")),
				progressBar(sum.ProgressScores[i]),
				sum.ProgressScores[i])
		}
		return nil
	},
}

func progressBar(score int) string {
	if score < 0 {
		score = 0
	}
	if score > models.MaxProgressScore {
		score = models.MaxProgressScore
	}
	filled := score * barWidth / models.MaxProgressScore
	return color.GreenString(strings.Repeat("█", filled)) + strings.Repeat("░", barWidth-filled)
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
