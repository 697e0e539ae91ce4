// ABOUTME: Session model and Intensity enum for rehabilitation tracking.
// ABOUTME: Defines the record shape, validation, and session ID generation.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Intensity is the effort level of a rehabilitation session.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// AllIntensities returns all valid intensity levels.
var AllIntensities = []Intensity{IntensityLow, IntensityMedium, IntensityHigh}

// IsValidIntensity checks if a string is a valid intensity level.
func IsValidIntensity(s string) bool {
	for _, i := range AllIntensities {
		if string(i) == s {
			return true
		}
	}
	return false
}

// MaxProgressScore is the upper bound of Session.ProgressScore.
const MaxProgressScore = 100

const idSuffixLen = 7

var (
	ErrEmptyExerciseType = errors.New("exercise type is required")
	ErrNegativeDuration  = errors.New("duration must not be negative")
	ErrInvalidIntensity  = errors.New("intensity must be low, medium, or high")
	ErrScoreOutOfRange   = errors.New("progress score must be between 0 and 100")
)

// Session is one rehabilitation therapy session.
type Session struct {
	ID               string    `json:"id" yaml:"id"`
	ExerciseType     string    `json:"exercise_type" yaml:"exercise_type"`
	Duration         int       `json:"duration" yaml:"duration"`
	Intensity        Intensity `json:"intensity" yaml:"intensity"`
	EncryptedMetrics string    `json:"encrypted_metrics" yaml:"encrypted_metrics"`
	Timestamp        int64     `json:"timestamp" yaml:"timestamp"`
	TherapistNotes   string    `json:"therapist_notes,omitempty" yaml:"therapist_notes,omitempty"`
	ProgressScore    int       `json:"progress_score" yaml:"progress_score"`
}

// NewSession creates a Session with a fresh ID and the given creation time.
func NewSession(exerciseType string, duration int, intensity Intensity, now time.Time) *Session {
	return &Session{
		ID:           NewSessionID(now),
		ExerciseType: exerciseType,
		Duration:     duration,
		Intensity:    intensity,
		Timestamp:    now.Unix(),
	}
}

// WithNotes sets therapist notes on the session.
func (s *Session) WithNotes(notes string) *Session {
	s.TherapistNotes = notes
	return s
}

// WithProgressScore sets the progress score.
func (s *Session) WithProgressScore(score int) *Session {
	s.ProgressScore = score
	return s
}

// RecordedAt returns the session timestamp as a time.Time.
func (s *Session) RecordedAt() time.Time {
	return time.Unix(s.Timestamp, 0)
}

// Validate checks the field rules a stored session must satisfy.
func (s *Session) Validate() error {
	if strings.TrimSpace(s.ExerciseType) == "" {
		return ErrEmptyExerciseType
	}
	if s.Duration < 0 {
		return ErrNegativeDuration
	}
	if !IsValidIntensity(string(s.Intensity)) {
		return fmt.Errorf("%w: %q", ErrInvalidIntensity, s.Intensity)
	}
	if s.ProgressScore < 0 || s.ProgressScore > MaxProgressScore {
		return fmt.Errorf("%w: %d", ErrScoreOutOfRange, s.ProgressScore)
	}
	return nil
}

// NewSessionID returns "<unix millis>-<7 char suffix>".
// Collisions are unlikely within one client but not prevented across clients.
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:idSuffixLen]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// ShortID returns the random suffix of a session ID for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-idSuffixLen:]
}
