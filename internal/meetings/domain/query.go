package domain

import (
	"time"

	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
)

// SuggestionQuery asks the server for shared free slots. It is immutable
// once built; every submission builds a new one.
type SuggestionQuery struct {
	participantIDs  []UserID
	date            timefmt.Date
	durationMinutes int
}

// NewSuggestionQuery validates and builds a query.
func NewSuggestionQuery(participantIDs []UserID, date timefmt.Date, durationMinutes int) (SuggestionQuery, error) {
	ids := normalizeIDs(participantIDs)
	if len(ids) == 0 {
		return SuggestionQuery{}, &ValidationError{Field: "participants", Message: "select at least one participant to find shared times"}
	}
	if date.IsZero() {
		return SuggestionQuery{}, &ValidationError{Field: "date", Message: "a date is required"}
	}
	if durationMinutes <= 0 {
		return SuggestionQuery{}, &ValidationError{Field: "duration", Message: "duration must be a positive number of minutes"}
	}
	return SuggestionQuery{
		participantIDs:  ids,
		date:            date,
		durationMinutes: durationMinutes,
	}, nil
}

// ParticipantIDs returns a copy of the participant set.
func (q SuggestionQuery) ParticipantIDs() []UserID {
	return append([]UserID(nil), q.participantIDs...)
}

func (q SuggestionQuery) Date() timefmt.Date      { return q.date }
func (q SuggestionQuery) DurationMinutes() int    { return q.durationMinutes }
func (q SuggestionQuery) Duration() time.Duration { return time.Duration(q.durationMinutes) * time.Minute }
func (q SuggestionQuery) IsZero() bool            { return len(q.participantIDs) == 0 }
