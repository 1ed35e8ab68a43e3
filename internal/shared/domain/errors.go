package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Every typed error below matches exactly one of these with
// errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrTransport  = errors.New("transport failure")
	ErrPermission = errors.New("permission denied")
	ErrOperation  = errors.New("operation failed")
)

// ValidationError is client-detectable bad input, or input the server
// rejected as malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransportError is a network or connectivity failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// PermissionError is a server-enforced authorization failure.
type PermissionError struct {
	Op      string
	Message string
}

func (e *PermissionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: permission denied", e.Op)
	}
	return fmt.Sprintf("%s: permission denied: %s", e.Op, e.Message)
}

func (e *PermissionError) Is(target error) bool { return target == ErrPermission }

// OperationError is any other server-rejected or unfinished operation.
// Err, when set, names the specific cause.
type OperationError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *OperationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: operation failed: %s", e.Op, msg)
	}
	return fmt.Sprintf("%s: operation failed: status=%d %s", e.Op, e.StatusCode, msg)
}

func (e *OperationError) Unwrap() error { return e.Err }

func (e *OperationError) Is(target error) bool { return target == ErrOperation }

// IsUnauthenticated reports whether err is a server rejection because no
// session is active.
func IsUnauthenticated(err error) bool {
	var operation *OperationError
	return errors.As(err, &operation) && operation.StatusCode == http.StatusUnauthorized
}

// UserMessage returns an actionable message for err, suitable for showing
// to the person at the terminal.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validation *ValidationError
	var permission *PermissionError
	var operation *OperationError

	switch {
	case errors.As(err, &validation):
		if validation.Message != "" {
			return Sentence(validation.Message)
		}
		return "Some of the details are invalid."
	case errors.As(err, &permission):
		if permission.Message != "" {
			return Sentence(permission.Message)
		}
		return "You do not have permission to do that."
	case errors.Is(err, ErrTransport):
		return "Could not reach the scheduling server. Check your connection and try again."
	case errors.As(err, &operation):
		if operation.StatusCode == http.StatusUnauthorized {
			return "You are not logged in. Run 'huddle auth login' first."
		}
		if operation.Message != "" {
			return Sentence(operation.Message)
		}
		return "The server rejected the request."
	default:
		return err.Error()
	}
}

// Sentence capitalizes s and ends it with a single period.
func Sentence(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), ".!")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
