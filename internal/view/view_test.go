// ABOUTME: Tests for session projections.
// ABOUTME: Covers aggregates, search filtering, and stable newest-first sorting.
package view

import (
	"math"
	"testing"
	"time"

	"github.com/harperreed/rehab/internal/models"
)

func session(id, exercise string, duration int, intensity models.Intensity, ts int64) models.Session {
	return models.Session{
		ID:           id,
		ExerciseType: exercise,
		Duration:     duration,
		Intensity:    intensity,
		Timestamp:    ts,
	}
}

func fixture() []models.Session {
	return []models.Session{
		session("a", "Squat", 20, models.IntensityMedium, 1000),
		session("b", "Thigh Stretch", 10, models.IntensityLow, 3000),
		session("c", "Lunge", 30, models.IntensityHigh, 2000),
		session("d", "Knee Flexion", 40, models.IntensityHigh, 500),
	}
}

func TestEmptySnapshot(t *testing.T) {
	s := Empty()

	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
	avg := s.AverageDuration()
	if avg != 0 || math.IsNaN(avg) {
		t.Errorf("AverageDuration() = %v, want 0", avg)
	}
	if got := s.CountByIntensity(models.IntensityHigh); got != 0 {
		t.Errorf("CountByIntensity = %d, want 0", got)
	}
	if got := s.Filter("x"); len(got) != 0 {
		t.Errorf("Filter = %v, want empty", got)
	}
}

func TestAggregates(t *testing.T) {
	s := NewSnapshot(fixture(), time.Now(), 1)

	if s.Count() != 4 {
		t.Errorf("Count() = %d, want 4", s.Count())
	}
	if got := s.AverageDuration(); got != 25 {
		t.Errorf("AverageDuration() = %v, want 25", got)
	}
	if got := s.CountByIntensity(models.IntensityHigh); got != 2 {
		t.Errorf("CountByIntensity(high) = %d, want 2", got)
	}
	if got := s.CountByIntensity(models.IntensityLow); got != 1 {
		t.Errorf("CountByIntensity(low) = %d, want 1", got)
	}
	if s.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", s.Skipped())
	}
}

func TestSnapshotIsNewestFirst(t *testing.T) {
	s := NewSnapshot(fixture(), time.Now(), 0)

	want := []string{"b", "c", "a", "d"}
	got := s.Sessions()
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Sessions()[%d].ID = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	in := fixture()
	s := NewSnapshot(in, time.Now(), 0)

	in[0].ExerciseType = "mutated"
	out := s.Sessions()
	out[0].ExerciseType = "mutated too"

	for _, sess := range s.Sessions() {
		if sess.ExerciseType == "mutated" || sess.ExerciseType == "mutated too" {
			t.Fatalf("snapshot was modified through an alias: %+v", sess)
		}
	}
}

func TestFilterHigh(t *testing.T) {
	sessions := append(fixture(), session("e", "HIGH knees", 5, models.IntensityLow, 100))
	s := NewSnapshot(sessions, time.Now(), 0)

	got := s.Filter("high")

	ids := map[string]bool{}
	for _, sess := range got {
		ids[sess.ID] = true
	}
	// b matches via "tHIGH Stretch", c and d by intensity, e by exercise type
	for _, id := range []string{"b", "c", "d", "e"} {
		if !ids[id] {
			t.Errorf("Filter(high) missing %s", id)
		}
	}
	if ids["a"] {
		t.Error("Filter(high) must not include a")
	}
	if len(got) != 4 {
		t.Errorf("Filter(high) returned %d sessions, want 4", len(got))
	}
}

func TestFilter(t *testing.T) {
	s := NewSnapshot(fixture(), time.Now(), 0)

	tests := []struct {
		term string
		want int
	}{
		{"", 4},
		{"squat", 1},
		{"SQUAT", 1},
		{"med", 1},
		{"low", 1},
		{"e", 4},
		{"swim", 0},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := s.Filter(tt.term); len(got) != tt.want {
				t.Errorf("Filter(%q) returned %d, want %d", tt.term, len(got), tt.want)
			}
		})
	}
}

func TestSortedNewestFirstStable(t *testing.T) {
	in := []models.Session{
		session("old", "A", 1, models.IntensityLow, 100),
		session("first", "B", 1, models.IntensityLow, 500),
		session("second", "C", 1, models.IntensityLow, 500),
		session("new", "D", 1, models.IntensityLow, 900),
		session("third", "E", 1, models.IntensityLow, 500),
	}

	got := SortedNewestFirst(in)

	want := []string{"new", "first", "second", "third", "old"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("SortedNewestFirst[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
	if in[0].ID != "old" {
		t.Error("SortedNewestFirst must not reorder its input")
	}
}

func TestSortedNewestFirstNil(t *testing.T) {
	got := SortedNewestFirst(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("SortedNewestFirst(nil) = %#v, want empty slice", got)
	}
}

func TestSummarize(t *testing.T) {
	sessions := fixture()
	sessions[0].ProgressScore = 70
	s := NewSnapshot(sessions, time.Now(), 0)

	sum := s.Summarize()
	if sum.TotalSessions != 4 || sum.AvgDuration != 25 || sum.HighIntensity != 2 {
		t.Errorf("Summarize() = %+v", sum)
	}
	// snapshot order is b, c, a, d
	want := []int{0, 0, 70, 0}
	for i := range want {
		if sum.ProgressScores[i] != want[i] {
			t.Errorf("ProgressScores[%d] = %d, want %d", i, sum.ProgressScores[i], want[i])
		}
	}
}
