package domain

import (
	"errors"

	sharedDomain "github.com/felixgeelhaar/huddle/internal/shared/domain"
)

// Error kinds shared with the rest of the application.
var (
	ErrValidation = sharedDomain.ErrValidation
	ErrTransport  = sharedDomain.ErrTransport
	ErrPermission = sharedDomain.ErrPermission
	ErrOperation  = sharedDomain.ErrOperation
)

type (
	ValidationError = sharedDomain.ValidationError
	TransportError  = sharedDomain.TransportError
	PermissionError = sharedDomain.PermissionError
	OperationError  = sharedDomain.OperationError
)

var (
	// ErrSuperseded is returned to the issuer of a suggestion query whose
	// response arrived after a newer query was issued.
	ErrSuperseded = errors.New("suggestion query superseded by a newer query")
	// ErrSessionClosed is returned when a result arrives for a scheduling
	// session that has since been closed or reopened.
	ErrSessionClosed = errors.New("scheduling session closed")
	// ErrMeetingNotFound is returned when a meeting is not in the registry.
	ErrMeetingNotFound = errors.New("meeting not found")
	// ErrCreateUnconfirmed is wrapped in an OperationError when the server
	// accepted a meeting but the registry could not find it afterwards.
	ErrCreateUnconfirmed = errors.New("meeting accepted but not confirmed")
)

// UserMessage returns an actionable message for a meeting operation error.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrCreateUnconfirmed):
		return "The meeting was sent to the server but could not be confirmed. Run 'huddle meeting list' before scheduling it again."
	case errors.Is(err, ErrPermission):
		return "You can only delete meetings that you have created."
	case errors.Is(err, ErrMeetingNotFound):
		return "That meeting is not on your calendar."
	default:
		return sharedDomain.UserMessage(err)
	}
}
