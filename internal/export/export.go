// ABOUTME: Export and import of rehab sessions.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/rehab/internal/models"
	"github.com/harperreed/rehab/internal/view"
	"gopkg.in/yaml.v3"
)

const (
	// Version is the export file format version.
	Version = "1.0"
	// Tool names the program that wrote an export.
	Tool = "rehab"
)

// Format is an export output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned for a format other than json, yaml, or markdown.
var ErrUnknownFormat = errors.New("unknown export format")

// Data represents the full export format for rehab data.
type Data struct {
	Version    string           `json:"version" yaml:"version"`
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	Tool       string           `json:"tool" yaml:"tool"`
	Sessions   []models.Session `json:"sessions" yaml:"sessions"`
}

// NewData wraps a snapshot's sessions, newest first.
func NewData(snap *view.Snapshot, now time.Time) *Data {
	return &Data{
		Version:    Version,
		ExportedAt: now,
		Tool:       Tool,
		Sessions:   snap.Sessions(),
	}
}

// Filter limits exported sessions.
type Filter struct {
	Intensity *models.Intensity
	Since     *time.Time
}

func (f Filter) match(s models.Session) bool {
	if f.Intensity != nil && s.Intensity != *f.Intensity {
		return false
	}
	if f.Since != nil && s.RecordedAt().Before(*f.Since) {
		return false
	}
	return true
}

// Apply returns the sessions that pass the filter, preserving order.
func (f Filter) Apply(sessions []models.Session) []models.Session {
	out := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		if f.match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Render writes snap in the given format.
func Render(format Format, snap *view.Snapshot, f Filter, now time.Time) ([]byte, error) {
	data := NewData(snap, now)
	data.Sessions = f.Apply(data.Sessions)

	switch format {
	case FormatJSON:
		return JSON(data)
	case FormatYAML:
		return YAML(data)
	case FormatMarkdown:
		return []byte(Markdown(data)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// JSON exports data as indented JSON.
func JSON(data *Data) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// YAML exports data with sessions grouped by intensity.
func YAML(data *Data) ([]byte, error) {
	yamlData := struct {
		Version    string                   `yaml:"version"`
		ExportedAt string                   `yaml:"exported_at"`
		Tool       string                   `yaml:"tool"`
		Sessions   map[string][]yamlSession `yaml:"sessions"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Sessions:   make(map[string][]yamlSession),
	}

	for _, s := range data.Sessions {
		level := string(s.Intensity)
		yamlData.Sessions[level] = append(yamlData.Sessions[level], yamlSession{
			ID:            s.ID,
			Exercise:      s.ExerciseType,
			Duration:      s.Duration,
			RecordedAt:    s.RecordedAt().UTC().Format(time.RFC3339),
			ProgressScore: s.ProgressScore,
			Notes:         s.TherapistNotes,
		})
	}

	return yaml.Marshal(yamlData)
}

type yamlSession struct {
	ID            string `yaml:"id"`
	Exercise      string `yaml:"exercise"`
	Duration      int    `yaml:"duration_minutes"`
	RecordedAt    string `yaml:"recorded_at"`
	ProgressScore int    `yaml:"progress_score"`
	Notes         string `yaml:"notes,omitempty"`
}

// Markdown renders data as a report with one table row per session.
func Markdown(data *Data) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Rehab Export - %s\n\n", data.ExportedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339)))

	snap := view.NewSnapshot(data.Sessions, data.ExportedAt, 0)
	summary := snap.Summarize()
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Total sessions: %d\n", summary.TotalSessions))
	sb.WriteString(fmt.Sprintf("- Average duration: %.1f min\n", summary.AvgDuration))
	sb.WriteString(fmt.Sprintf("- High intensity: %d\n\n", summary.HighIntensity))

	if snap.Count() == 0 {
		sb.WriteString("No sessions recorded.\n")
		return sb.String()
	}

	sb.WriteString("## Sessions\n\n")
	sb.WriteString("| Date | Exercise | Duration | Intensity | Progress | Notes |\n")
	sb.WriteString("|------|----------|----------|-----------|----------|-------|\n")
	for _, s := range snap.Sessions() {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d min | %s | %d%% | %s |\n",
			s.RecordedAt().UTC().Format("2006-01-02 15:04"),
			escapeCell(s.ExerciseType), s.Duration, s.Intensity,
			s.ProgressScore, escapeCell(s.TherapistNotes)))
	}

	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// ParseJSON reads an export file written by JSON.
func ParseJSON(raw []byte) (*Data, error) {
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if data.Sessions == nil {
		data.Sessions = []models.Session{}
	}
	return &data, nil
}
