// ABOUTME: CLI command for recording a rehab session.
// ABOUTME: Encrypts the metrics, stores the session, and shows the resulting status.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/rehab/internal/models"
	"github.com/harperreed/rehab/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	addDuration  int
	addIntensity string
	addMetrics   string
	addNotes     string
)

var addCmd = &cobra.Command{
	Use:     "add <exercise>",
	Aliases: []string{"a"},
	Short:   "Record a rehab session",
	Long: `Record a rehabilitation session. The metrics text is encrypted before
it is stored and a progress score is computed from it.

Examples:
  rehab add "knee extension" -d 20 -i medium -m "rom 95deg"
  rehab add lunge -d 15 -i low -m "3x10, no pain" --notes "good balance"
  rehab add "wall sit" --duration 5 --intensity high --metrics "45s hold" -y`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.IsValidIntensity(addIntensity) {
			return fmt.Errorf("invalid intensity: %s (use low, medium, or high)", addIntensity)
		}

		sess, status := trk.Submit(cmd.Context(), tracker.Draft{
			ExerciseType:   strings.Join(args, " "),
			Duration:       addDuration,
			Intensity:      models.Intensity(addIntensity),
			Metrics:        addMetrics,
			TherapistNotes: addNotes,
		})
		printStatus(status)
		if sess == nil {
			return nil
		}

		fmt.Printf("  %s %s %d min %s, progress %d%%\n",
			color.New(color.Faint).Sprint(models.ShortID(sess.ID)),
			sess.ExerciseType, sess.Duration, sess.Intensity, sess.ProgressScore)
		return nil
	},
}

func init() {
	addCmd.Flags().IntVarP(&addDuration, "duration", "d", 0, "duration in minutes")
	addCmd.Flags().StringVarP(&addIntensity, "intensity", "i", string(models.IntensityMedium), "intensity: low, medium, high")
	addCmd.Flags().StringVarP(&addMetrics, "metrics", "m", "", "session measurements (encrypted)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "therapist notes")
	rootCmd.AddCommand(addCmd)
}
