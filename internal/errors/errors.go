package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/fastwell/internal/logger"
)

// Issue reasons for per-item validation failures
const (
	ReasonInvalid   = "invalid"
	ReasonOutside   = "outside"
	ReasonDuplicate = "duplicate"
	ReasonRequired  = "required"
	ReasonRange     = "out_of_range"
)

// Sentinel errors shared by the local store, the server and the client
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

// NetworkMessage is shown for any transport failure
const NetworkMessage = "Unable to reach the fasting service. Please check your connection and try again."

// Issue describes one rejected input value
type Issue struct {
	Field  string `json:"field,omitempty"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

// ValidationError is a locally detected input problem. It is raised before any
// network call and blocks the submission.
type ValidationError struct {
	Message string
	Issues  []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Value != "" {
			parts = append(parts, fmt.Sprintf("%s %q: %s", is.Field, is.Value, is.Reason))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Reason))
		}
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// NewValidation builds a ValidationError with an optional list of issues
func NewValidation(message string, issues ...Issue) *ValidationError {
	return &ValidationError{Message: message, Issues: issues}
}

// RemoteError is any non-2xx response from the fast service. Message is the
// server-provided text, shown to the user verbatim.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("fast service returned status %d", e.StatusCode)
	}
	return e.Message
}

// Is maps well-known status codes onto the sentinel errors
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrForbidden:
		return e.StatusCode == 403
	case ErrConflict:
		return e.StatusCode == 409
	}
	return false
}

// NetworkError is a transport failure where no response was received
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserMessage renders an error the way it should be shown to a user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Error()
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return NetworkMessage
	}
	return err.Error()
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", UserMessage(err))
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
