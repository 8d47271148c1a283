package services

import (
	"context"
	"errors"
	"fmt"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

var (
	ErrSessionNotFound = repositories.ErrSessionNotFound
	ErrEmptyContext    = errors.New("context text is empty")

	errAssessmentParse = errors.New("assessment response could not be parsed")
)

// ValidationError reports a malformed request. Nothing was changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError reports an operation that is not legal for the session's
// current status or step. Nothing was changed.
type InvalidStateError struct {
	Op     string
	Status models.SessionStatus
	Step   models.SessionStep
	Reason string
}

func (e *InvalidStateError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("%s not allowed: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s not allowed in %s/%s: %s", e.Op, e.Status, e.Step, e.Reason)
}

func newInvalidState(op string, session *models.Session, reason string) *InvalidStateError {
	e := &InvalidStateError{Op: op, Reason: reason}
	if session != nil {
		e.Status = session.Status
		e.Step = session.CurrentStep
	}
	return e
}

// UpstreamError wraps a failed or timed-out call to the model, embedding or
// speech providers. The session is left as it was before the call, so the
// whole operation can be retried.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the upstream call hit its deadline.
func (e *UpstreamError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

func upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsInvalidState(err error) bool {
	var ie *InvalidStateError
	return errors.As(err, &ie)
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// ErrConcurrentUpdate is returned when another process committed the same
// session between our read and write. Retrying the operation is safe.
var ErrConcurrentUpdate = repositories.ErrVersionConflict
