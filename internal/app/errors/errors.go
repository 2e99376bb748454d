package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// Session errors
	ErrNoAudioDevice      = New("no audio capture device available")
	ErrCaptureCrashed     = New("capture process exited unexpectedly")
	ErrSuspendUnsupported = New("capture backend does not support suspend")
	ErrInvalidTransition  = New("operation not valid in current session state")

	// Merge errors
	ErrMergeFailed = New("segment merge failed")

	// Transcription errors
	ErrCancelled = New("transcription cancelled")

	// Store errors
	ErrNotFound         = New("meeting not found")
	ErrCorruptRecord    = New("meeting record corrupted")
	ErrStatusRegression = New("meeting status cannot move backwards")

	// Speaker errors
	ErrUnknownSpeakerLabel = New("unknown speaker label")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// ServiceError is returned by the speech-to-text client. Retryable marks
// transient network or server-side conditions; quota and invalid-input
// failures are terminal.
type ServiceError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("speech service error [%s]: %s", e.Code, e.Message)
}

// IsRetryable reports whether err (anywhere in its chain) is a transient
// service error worth another attempt.
func IsRetryable(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
