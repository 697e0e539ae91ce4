// ABOUTME: Status notifications produced at the refresh/submit boundary.
// ABOUTME: Maps backend, decode, and authorization failures to user messages.
package tracker

import (
	"errors"

	"github.com/harperreed/rehab/internal/ledger"
)

// Level is the kind of a status notification.
type Level string

const (
	LevelNone    Level = ""
	LevelPending Level = "pending"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

const (
	MsgAvailable      = "FHE service is available!"
	MsgUnavailable    = "FHE service unavailable"
	MsgCheckFailed    = "Error checking availability"
	MsgEncrypting     = "Encrypting rehab metrics with FHE..."
	MsgSubmitted      = "Encrypted rehab data submitted!"
	MsgDeclined       = "Transaction rejected by user"
	MsgSubmitFailed   = "Submission failed: "
	MsgRequiredFields = "Please fill required fields"
	MsgLoadFailed     = "Error loading rehab data: "
)

var (
	// ErrUnavailable means the capability probe failed or returned false.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrInvalidDraft means a required submission field is missing.
	ErrInvalidDraft = errors.New("required fields missing")
)

// Status is a transient, dismissible notification. The zero value means
// there is nothing to show.
type Status struct {
	Level   Level
	Message string
	Err     error
}

// Visible reports whether the status should be shown.
func (s Status) Visible() bool {
	return s.Level != LevelNone
}

// Failed reports whether the status is an error.
func (s Status) Failed() bool {
	return s.Level == LevelError
}

func success(msg string) Status {
	return Status{Level: LevelSuccess, Message: msg}
}

func failure(msg string, err error) Status {
	return Status{Level: LevelError, Message: msg, Err: err}
}

// submitFailure picks the message for a failed submission.
func submitFailure(err error) Status {
	switch {
	case errors.Is(err, ErrInvalidDraft):
		return failure(MsgRequiredFields, err)
	case ledger.IsDeclined(err):
		return failure(MsgDeclined, err)
	default:
		return failure(MsgSubmitFailed+err.Error(), err)
	}
}

// refreshFailure picks the message for a failed refresh.
func refreshFailure(err error) Status {
	if errors.Is(err, ErrUnavailable) {
		return failure(MsgUnavailable, err)
	}
	return failure(MsgLoadFailed+err.Error(), err)
}
