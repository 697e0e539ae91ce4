// ABOUTME: Tests for export and import functionality.
// ABOUTME: Verifies JSON, YAML, and Markdown export formats.
package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/rehab/internal/models"
	"github.com/harperreed/rehab/internal/view"
	"gopkg.in/yaml.v3"
)

var exportTime = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func testSnapshot() *view.Snapshot {
	return view.NewSnapshot([]models.Session{
		{ID: "1-aaaaaaa", ExerciseType: "Squat", Duration: 20, Intensity: models.IntensityLow,
			EncryptedMetrics: "FHE-a", Timestamp: 1741900000, ProgressScore: 10},
		{ID: "2-bbbbbbb", ExerciseType: "Lunge | split", Duration: 40, Intensity: models.IntensityHigh,
			EncryptedMetrics: "FHE-b", Timestamp: 1741950000, TherapistNotes: "good form", ProgressScore: 80},
	}, exportTime, 0)
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(FormatJSON, testSnapshot(), Filter{}, exportTime)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var data Data
	if err := json.Unmarshal(out, &data); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if data.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, data.Version)
	}
	if data.Tool != "rehab" {
		t.Errorf("Expected tool rehab, got %s", data.Tool)
	}
	if len(data.Sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(data.Sessions))
	}
	if data.Sessions[0].ID != "2-bbbbbbb" {
		t.Errorf("Expected newest session first, got %s", data.Sessions[0].ID)
	}
}

func TestRenderYAML(t *testing.T) {
	out, err := Render(FormatYAML, testSnapshot(), Filter{}, exportTime)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(out, &yamlData); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}
	if yamlData["version"] != Version {
		t.Errorf("Expected version %s, got %v", Version, yamlData["version"])
	}

	sessions, ok := yamlData["sessions"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected sessions grouped by intensity, got %T", yamlData["sessions"])
	}
	if _, ok := sessions["high"]; !ok {
		t.Error("Expected a high group")
	}
	if _, ok := sessions["medium"]; ok {
		t.Error("Did not expect a medium group")
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := Render(FormatMarkdown, testSnapshot(), Filter{}, exportTime)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	md := string(out)

	for _, want := range []string{
		"# Rehab Export - 2025-03-14",
		"- Total sessions: 2",
		"- Average duration: 30.0 min",
		"- High intensity: 1",
		`Lunge \| split`,
		"good form",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	out, err := Render(FormatMarkdown, view.Empty(), Filter{}, exportTime)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(string(out), "No sessions recorded.") {
		t.Errorf("Expected empty notice, got:\n%s", out)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render("csv", testSnapshot(), Filter{}, exportTime)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	high := models.IntensityHigh
	sessions := testSnapshot().Sessions()

	got := Filter{Intensity: &high}.Apply(sessions)
	if len(got) != 1 || got[0].Intensity != high {
		t.Errorf("Intensity filter returned %+v", got)
	}

	since := time.Unix(1741940000, 0)
	got = Filter{Since: &since}.Apply(sessions)
	if len(got) != 1 || got[0].ID != "2-bbbbbbb" {
		t.Errorf("Since filter returned %+v", got)
	}
}

func TestParseJSON(t *testing.T) {
	out, err := JSON(NewData(testSnapshot(), exportTime))
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	data, err := ParseJSON(out)
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if len(data.Sessions) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(data.Sessions))
	}
	if data.Sessions[0].TherapistNotes != "good form" {
		t.Errorf("Expected notes preserved, got %q", data.Sessions[0].TherapistNotes)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}

	data, err := ParseJSON([]byte(`{"version":"1.0"}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if data.Sessions == nil {
		t.Error("Expected non-nil sessions")
	}
}
