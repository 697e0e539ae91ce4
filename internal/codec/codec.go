// ABOUTME: Record envelope encoding and decoding for stored sessions.
// ABOUTME: Applies defaults for optional fields and rejects malformed payloads.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harperreed/rehab/internal/models"
)

// ErrAbsent is returned by Decode when the record key holds no bytes.
var ErrAbsent = errors.New("record absent")

// DecodeError reports a payload that could not be turned into a value.
type DecodeError struct {
	Subject string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Subject, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is or wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// envelope is the stored shape of a session. The ID lives in the key, not here.
// Pointers distinguish a missing field from a zero value.
type envelope struct {
	ExerciseType     *string `json:"exerciseType"`
	Duration         *int    `json:"duration"`
	Intensity        *string `json:"intensity"`
	EncryptedMetrics *string `json:"encryptedMetrics"`
	Timestamp        *int64  `json:"timestamp"`
	TherapistNotes   *string `json:"therapistNotes,omitempty"`
	ProgressScore    *int    `json:"progressScore,omitempty"`
}

// Encode serializes a session envelope. Optional fields at their zero value
// are omitted; the reader restores them.
func Encode(s models.Session) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}

	intensity := string(s.Intensity)
	env := envelope{
		ExerciseType:     &s.ExerciseType,
		Duration:         &s.Duration,
		Intensity:        &intensity,
		EncryptedMetrics: &s.EncryptedMetrics,
		Timestamp:        &s.Timestamp,
	}
	if s.TherapistNotes != "" {
		env.TherapistNotes = &s.TherapistNotes
	}
	if s.ProgressScore != 0 {
		env.ProgressScore = &s.ProgressScore
	}

	return json.Marshal(env)
}

// Decode parses a stored envelope into a session with the given ID.
func Decode(id string, data []byte) (models.Session, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Session{}, ErrAbsent
	}

	fail := func(err error) (models.Session, error) {
		return models.Session{}, &DecodeError{Subject: "session " + id, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fail(err)
	}

	switch {
	case env.ExerciseType == nil:
		return fail(errors.New("missing exerciseType"))
	case env.Duration == nil:
		return fail(errors.New("missing duration"))
	case env.Intensity == nil:
		return fail(errors.New("missing intensity"))
	case env.EncryptedMetrics == nil:
		return fail(errors.New("missing encryptedMetrics"))
	case env.Timestamp == nil:
		return fail(errors.New("missing timestamp"))
	}

	s := models.Session{
		ID:               id,
		ExerciseType:     *env.ExerciseType,
		Duration:         *env.Duration,
		Intensity:        models.Intensity(*env.Intensity),
		EncryptedMetrics: *env.EncryptedMetrics,
		Timestamp:        *env.Timestamp,
	}
	if env.TherapistNotes != nil {
		s.TherapistNotes = *env.TherapistNotes
	}
	if env.ProgressScore != nil {
		s.ProgressScore = *env.ProgressScore
	}

	if err := s.Validate(); err != nil {
		return fail(err)
	}
	return s, nil
}
