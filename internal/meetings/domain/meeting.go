package domain

import (
	"sort"
	"strings"
	"time"
)

// UserID identifies a user on the scheduling server.
type UserID int64

// MeetingID identifies a server-confirmed meeting.
type MeetingID int64

// UserRef is the identity of a user, without display enrichment.
type UserRef struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// Meeting is a meeting the server has accepted and assigned an id to.
type Meeting struct {
	id             MeetingID
	title          string
	start          time.Time
	end            time.Time
	participantIDs []UserID
	creatorID      UserID
}

// NewMeeting builds a confirmed meeting. Instants are normalized to UTC.
func NewMeeting(id MeetingID, title string, start, end time.Time, participantIDs []UserID, creatorID UserID) (*Meeting, error) {
	if id <= 0 {
		return nil, &ValidationError{Field: "id", Message: "confirmed meetings need a server-assigned id"}
	}
	if !end.After(start) {
		return nil, &ValidationError{Field: "end", Message: "meeting must end after it starts"}
	}
	return &Meeting{
		id:             id,
		title:          title,
		start:          start.UTC(),
		end:            end.UTC(),
		participantIDs: normalizeIDs(participantIDs),
		creatorID:      creatorID,
	}, nil
}

// Getters
func (m *Meeting) ID() MeetingID           { return m.id }
func (m *Meeting) Title() string           { return m.title }
func (m *Meeting) Start() time.Time        { return m.start }
func (m *Meeting) End() time.Time          { return m.end }
func (m *Meeting) CreatorID() UserID       { return m.creatorID }
func (m *Meeting) Duration() time.Duration { return m.end.Sub(m.start) }

// ParticipantIDs returns a copy of the participant set in ascending order.
func (m *Meeting) ParticipantIDs() []UserID {
	return append([]UserID(nil), m.participantIDs...)
}

// HasParticipant reports whether id is among the participants.
func (m *Meeting) HasParticipant(id UserID) bool {
	for _, p := range m.participantIDs {
		if p == id {
			return true
		}
	}
	return false
}

// StartsAtOrAfter reports whether the meeting starts at or after t.
func (m *Meeting) StartsAtOrAfter(t time.Time) bool {
	return !m.start.Before(t)
}

// Draft is a meeting the user wants created. It never enters the registry.
type Draft struct {
	Title          string
	Start          time.Time
	End            time.Time
	ParticipantIDs []UserID
}

// NewDraft builds a draft from a start instant and a duration in minutes.
// The start is truncated to whole seconds, the precision the server keeps.
func NewDraft(title string, start time.Time, durationMinutes int, participantIDs []UserID) (Draft, error) {
	if durationMinutes <= 0 {
		return Draft{}, &ValidationError{Field: "duration", Message: "duration must be a positive number of minutes"}
	}
	start = start.UTC().Truncate(time.Second)
	d := Draft{
		Title:          strings.TrimSpace(title),
		Start:          start,
		End:            start.Add(time.Duration(durationMinutes) * time.Minute),
		ParticipantIDs: normalizeIDs(participantIDs),
	}
	if err := d.Validate(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Validate checks the draft before it is submitted.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "please enter a meeting title"}
	}
	if d.Start.IsZero() {
		return &ValidationError{Field: "start", Message: "meeting start is required"}
	}
	if !d.End.After(d.Start) {
		return &ValidationError{Field: "end", Message: "meeting must end after it starts"}
	}
	return nil
}

// SortByStart orders meetings by start ascending, breaking ties by id.
func SortByStart(meetings []*Meeting) {
	sort.SliceStable(meetings, func(i, j int) bool {
		if !meetings[i].start.Equal(meetings[j].start) {
			return meetings[i].start.Before(meetings[j].start)
		}
		return meetings[i].id < meetings[j].id
	})
}

// normalizeIDs deduplicates and sorts a set of user ids.
func normalizeIDs(ids []UserID) []UserID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[UserID]struct{}, len(ids))
	out := make([]UserID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
