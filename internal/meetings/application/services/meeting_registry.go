package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/clock"
)

// MeetingRegistry is the local view of the user's confirmed meetings. It only
// changes in response to a server acknowledgement.
type MeetingRegistry struct {
	gateway domain.MeetingGateway
	now     clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	meetings map[domain.MeetingID]*domain.Meeting
	// issued counts refreshes started and local mutations; applied is the
	// value of issued when state was last replaced or mutated.
	issued  uint64
	applied uint64
	loaded  bool
}

// NewMeetingRegistry creates an empty registry. A nil clock uses the wall
// clock.
func NewMeetingRegistry(gateway domain.MeetingGateway, now clock.Clock, logger *slog.Logger) *MeetingRegistry {
	if now == nil {
		now = clock.System
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MeetingRegistry{
		gateway:  gateway,
		now:      now,
		logger:   logger,
		meetings: make(map[domain.MeetingID]*domain.Meeting),
	}
}

// List returns all known meetings ordered by start.
func (r *MeetingRegistry) List() []*domain.Meeting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Meeting, 0, len(r.meetings))
	for _, m := range r.meetings {
		out = append(out, m)
	}
	domain.SortByStart(out)
	return out
}

// ListUpcoming returns meetings starting now or later, soonest first. A
// non-positive limit returns every upcoming meeting.
func (r *MeetingRegistry) ListUpcoming(limit int) []*domain.Meeting {
	now := r.now()

	upcoming := make([]*domain.Meeting, 0)
	for _, m := range r.List() {
		if m.StartsAtOrAfter(now) {
			upcoming = append(upcoming, m)
		}
	}
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

// Get returns a meeting by id.
func (r *MeetingRegistry) Get(id domain.MeetingID) (*domain.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meetings[id]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	return m, nil
}

// Len returns the number of known meetings.
func (r *MeetingRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meetings)
}

// Loaded reports whether a refresh has ever been applied.
func (r *MeetingRegistry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// FetchUpcoming asks the server for its upcoming list without touching local
// state.
func (r *MeetingRegistry) FetchUpcoming(ctx context.Context) ([]*domain.Meeting, error) {
	meetings, err := r.gateway.ListUpcoming(ctx)
	if err != nil {
		return nil, classifyRegistryError("list upcoming meetings", err)
	}
	domain.SortByStart(meetings)
	return meetings, nil
}

// Refresh replaces local state with the server's list. A response older than
// the last applied refresh or local mutation is dropped. On failure state is
// unchanged.
func (r *MeetingRegistry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.issued++
	seq := r.issued
	r.mu.Unlock()

	meetings, err := r.gateway.ListMeetings(ctx)
	if err != nil {
		err = classifyRegistryError("list meetings", err)
		r.logger.Warn("meeting refresh failed", "sequence", seq, "error", err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq <= r.applied {
		r.logger.Debug("dropping stale meeting refresh", "sequence", seq, "applied", r.applied)
		return nil
	}

	next := make(map[domain.MeetingID]*domain.Meeting, len(meetings))
	for _, m := range meetings {
		next[m.ID()] = m
	}
	r.meetings = next
	r.applied = seq
	r.loaded = true
	r.logger.Debug("meetings refreshed", "sequence", seq, "count", len(next))
	return nil
}

// Create submits a draft and records the server-confirmed meeting. On
// failure the registry is unchanged.
func (r *MeetingRegistry) Create(ctx context.Context, draft domain.Draft) (*domain.Meeting, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	meeting, err := r.gateway.CreateMeeting(ctx, draft)
	if err != nil {
		err = classifyRegistryError("create meeting", err)
		r.logger.Warn("meeting create failed", "title", draft.Title, "error", err)
		return nil, err
	}
	if meeting == nil {
		return r.reconcileCreated(ctx, draft)
	}

	r.mu.Lock()
	r.meetings[meeting.ID()] = meeting
	r.markMutated()
	r.mu.Unlock()

	r.logger.Info("meeting created", "meeting_id", meeting.ID(), "start", meeting.Start())
	return meeting, nil
}

// reconcileCreated handles a server that accepts a meeting without echoing
// it: the registry refreshes and looks the new meeting up by its draft. When
// the meeting cannot be found the error wraps domain.ErrCreateUnconfirmed.
// Submitting the draft again would create a duplicate.
func (r *MeetingRegistry) reconcileCreated(ctx context.Context, draft domain.Draft) (*domain.Meeting, error) {
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("meeting created but refresh failed", "title", draft.Title, "error", err)
		return nil, unconfirmed("the meeting list could not be reloaded")
	}

	var found *domain.Meeting
	for _, m := range r.List() {
		if m.Title() == draft.Title && sameSecond(m.Start(), draft.Start) && sameSecond(m.End(), draft.End) {
			if found == nil || m.ID() > found.ID() {
				found = m
			}
		}
	}
	if found == nil {
		r.logger.Warn("created meeting not found after refresh", "title", draft.Title, "start", draft.Start)
		return nil, unconfirmed("the new meeting is not in the meeting list yet")
	}
	r.logger.Info("meeting created", "meeting_id", found.ID(), "start", found.Start())
	return found, nil
}

func unconfirmed(reason string) error {
	return &domain.OperationError{Op: "create meeting", Message: reason, Err: domain.ErrCreateUnconfirmed}
}

// sameSecond compares instants at the precision the server stores.
func sameSecond(a, b time.Time) bool {
	return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
}

// Delete removes a meeting once the server confirms it. Only the creator may
// delete; the server enforces that and the refusal surfaces as a
// PermissionError.
func (r *MeetingRegistry) Delete(ctx context.Context, id domain.MeetingID, requestingUserID domain.UserID) error {
	if err := r.gateway.DeleteMeeting(ctx, id); err != nil {
		err = classifyRegistryError("delete meeting", err)
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			err = &domain.OperationError{Op: "delete meeting", StatusCode: http.StatusBadRequest, Message: validation.Message}
		}
		r.logger.Warn("meeting delete failed",
			"meeting_id", id,
			"requested_by", requestingUserID,
			"error", err,
		)
		return err
	}

	r.mu.Lock()
	delete(r.meetings, id)
	r.markMutated()
	r.mu.Unlock()

	r.logger.Info("meeting deleted", "meeting_id", id, "requested_by", requestingUserID)
	return nil
}

// markMutated makes refreshes issued before a local mutation stale.
// Callers hold r.mu.
func (r *MeetingRegistry) markMutated() {
	r.issued++
	r.applied = r.issued
}

func classifyRegistryError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrPermission),
		errors.Is(err, domain.ErrTransport),
		errors.Is(err, domain.ErrOperation),
		errors.Is(err, domain.ErrValidation):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &domain.TransportError{Op: op, Err: err}
	default:
		return &domain.OperationError{Op: op, Message: err.Error()}
	}
}
