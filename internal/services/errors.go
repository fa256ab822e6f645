package services

import (
	"errors"
	"strings"

	"reelsmith/internal/runs"
)

// Markers classify stage failures. FailureStatus and Hint inspect them with
// errors.Is, so callers may wrap StageErrors further.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// StageError is a failure raised inside a pipeline stage.
type StageError struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Marker.Error())
	b.WriteString(": ")
	parts := 0
	for _, part := range []string{e.Stage, e.Operation, e.Message} {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		if parts > 0 {
			b.WriteString(": ")
		}
		b.WriteString(part)
		parts++
	}
	if parts == 0 {
		b.WriteString("service failure")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// Wrap builds a StageError. A nil marker is treated as ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &StageError{Marker: marker, Stage: stage, Operation: operation, Message: message, Err: err}
}

// FailureStatus maps a stage error to the run status the workflow runner
// persists. Problems the operator must fix go to review; the rest fail and
// can be retried as-is.
func FailureStatus(err error) runs.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return runs.StatusReview
	default:
		return runs.StatusFailed
	}
}

// Hint suggests a next step for a stage error.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "fix the configuration (reelsmith config validate) and retry the run"
	case errors.Is(err, ErrValidation):
		return "inspect the run artifacts, correct them, then retry the run"
	case errors.Is(err, ErrNotFound):
		return "check that the referenced files exist, then retry the run"
	case errors.Is(err, ErrExternalTool):
		return "run reelsmith preflight to check external tools"
	case errors.Is(err, ErrTimeout):
		return "raise the service timeout or retry later"
	default:
		return "retry the run; check the run log if it keeps failing"
	}
}
