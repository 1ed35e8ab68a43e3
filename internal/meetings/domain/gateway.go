package domain

import (
	"context"
	"time"
)

// MeetingGateway is the server side of the meeting registry.
type MeetingGateway interface {
	ListMeetings(ctx context.Context) ([]*Meeting, error)
	ListUpcoming(ctx context.Context) ([]*Meeting, error)
	CreateMeeting(ctx context.Context, draft Draft) (*Meeting, error)
	DeleteMeeting(ctx context.Context, id MeetingID) error
}

// SuggestionGateway is the opaque slot-computation endpoint.
type SuggestionGateway interface {
	SuggestTimes(ctx context.Context, query SuggestionQuery) ([]time.Time, error)
}

// UserDirectory lists the users that can be invited.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]UserRef, error)
}
