// ABOUTME: Read-only projections over a materialized set of sessions.
// ABOUTME: Counts, averages, search filtering, and newest-first ordering.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/harperreed/rehab/internal/models"
)

// Snapshot is one refresh's worth of sessions. It is never modified after
// construction; a newer refresh replaces it.
type Snapshot struct {
	sessions    []models.Session
	refreshedAt time.Time
	skipped     int
}

// NewSnapshot orders sessions newest first and freezes them.
// skipped counts index entries that could not be materialized.
func NewSnapshot(sessions []models.Session, refreshedAt time.Time, skipped int) *Snapshot {
	return &Snapshot{
		sessions:    SortedNewestFirst(sessions),
		refreshedAt: refreshedAt,
		skipped:     skipped,
	}
}

// Empty returns a snapshot with no sessions.
func Empty() *Snapshot {
	return &Snapshot{sessions: []models.Session{}}
}

// Sessions returns a copy of the sessions, newest first.
func (s *Snapshot) Sessions() []models.Session {
	out := make([]models.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// RefreshedAt is when the snapshot was materialized.
func (s *Snapshot) RefreshedAt() time.Time { return s.refreshedAt }

// Skipped is the number of index entries left out of the snapshot.
func (s *Snapshot) Skipped() int { return s.skipped }

// Count returns the number of sessions.
func (s *Snapshot) Count() int {
	return len(s.sessions)
}

// AverageDuration returns the mean duration in minutes, or 0 with no sessions.
func (s *Snapshot) AverageDuration() float64 {
	if len(s.sessions) == 0 {
		return 0
	}
	total := 0
	for _, sess := range s.sessions {
		total += sess.Duration
	}
	return float64(total) / float64(len(s.sessions))
}

// CountByIntensity returns how many sessions have the given intensity.
func (s *Snapshot) CountByIntensity(level models.Intensity) int {
	n := 0
	for _, sess := range s.sessions {
		if sess.Intensity == level {
			n++
		}
	}
	return n
}

// Filter returns sessions whose exercise type or intensity contains term,
// ignoring case. An empty term matches everything.
func (s *Snapshot) Filter(term string) []models.Session {
	term = strings.ToLower(term)
	out := make([]models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if strings.Contains(strings.ToLower(sess.ExerciseType), term) ||
			strings.Contains(strings.ToLower(string(sess.Intensity)), term) {
			out = append(out, sess)
		}
	}
	return out
}

// ProgressScores returns each session's progress score in snapshot order.
func (s *Snapshot) ProgressScores() []int {
	scores := make([]int, len(s.sessions))
	for i, sess := range s.sessions {
		scores[i] = sess.ProgressScore
	}
	return scores
}

// Summary is the stats panel.
type Summary struct {
	TotalSessions  int     `json:"total_sessions" yaml:"total_sessions"`
	AvgDuration    float64 `json:"avg_duration" yaml:"avg_duration"`
	HighIntensity  int     `json:"high_intensity" yaml:"high_intensity"`
	ProgressScores []int   `json:"progress_scores" yaml:"progress_scores"`
}

// Summarize computes the stats panel from the snapshot.
func (s *Snapshot) Summarize() Summary {
	return Summary{
		TotalSessions:  s.Count(),
		AvgDuration:    s.AverageDuration(),
		HighIntensity:  s.CountByIntensity(models.IntensityHigh),
		ProgressScores: s.ProgressScores(),
	}
}

// SortedNewestFirst returns a copy ordered by timestamp descending.
// Sessions with equal timestamps keep their relative order.
func SortedNewestFirst(sessions []models.Session) []models.Session {
	out := append([]models.Session(nil), sessions...)
	if out == nil {
		out = []models.Session{}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}
