// Package api implements the meeting gateways against the scheduling
// server's JSON API.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
)

// Requester sends JSON requests to the server.
type Requester interface {
	Get(ctx context.Context, op, path string, out any) error
	Post(ctx context.Context, op, path string, in, out any) error
	Delete(ctx context.Context, op, path string) error
}

// Gateway implements domain.MeetingGateway, domain.SuggestionGateway and
// domain.UserDirectory.
type Gateway struct {
	client Requester
	logger *slog.Logger
}

var (
	_ domain.MeetingGateway    = (*Gateway)(nil)
	_ domain.SuggestionGateway = (*Gateway)(nil)
	_ domain.UserDirectory     = (*Gateway)(nil)
)

// NewGateway creates a gateway.
func NewGateway(client Requester, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{client: client, logger: logger}
}

type meetingDTO struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	ParticipantIDs []int64 `json:"participant_ids,omitempty"`
	OwnerID        int64   `json:"owner_id,omitempty"`
}

type createMeetingRequest struct {
	Title          string  `json:"title"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

type createMeetingResponse struct {
	Message string      `json:"message"`
	ID      int64       `json:"id"`
	Meeting *meetingDTO `json:"meeting"`
}

type suggestTimesRequest struct {
	ParticipantIDs []int64 `json:"participant_ids"`
	Date           string  `json:"date"`
	Duration       int     `json:"duration"`
}

// ListMeetings returns every meeting the user participates in.
func (g *Gateway) ListMeetings(ctx context.Context) ([]*domain.Meeting, error) {
	return g.listMeetings(ctx, "list meetings", "/meetings")
}

// ListUpcoming returns the server's upcoming list.
func (g *Gateway) ListUpcoming(ctx context.Context) ([]*domain.Meeting, error) {
	return g.listMeetings(ctx, "list upcoming meetings", "/meetings/upcoming")
}

func (g *Gateway) listMeetings(ctx context.Context, op, path string) ([]*domain.Meeting, error) {
	var payload []meetingDTO
	if err := g.client.Get(ctx, op, path, &payload); err != nil {
		return nil, err
	}

	meetings := make([]*domain.Meeting, 0, len(payload))
	for _, dto := range payload {
		meeting, err := dto.toDomain()
		if err != nil {
			g.logger.Warn("skipping malformed meeting", "meeting_id", dto.ID, "error", err)
			continue
		}
		meetings = append(meetings, meeting)
	}
	return meetings, nil
}

// CreateMeeting submits a draft. It returns nil without error when the
// server accepts the meeting but does not say which id it assigned.
func (g *Gateway) CreateMeeting(ctx context.Context, draft domain.Draft) (*domain.Meeting, error) {
	req := createMeetingRequest{
		Title:          draft.Title,
		Start:          timefmt.FormatInstant(draft.Start),
		End:            timefmt.FormatInstant(draft.End),
		ParticipantIDs: userIDs(draft.ParticipantIDs),
	}

	var resp createMeetingResponse
	if err := g.client.Post(ctx, "create meeting", "/meetings", req, &resp); err != nil {
		return nil, err
	}

	switch {
	case resp.Meeting != nil:
		return resp.Meeting.toDomain()
	case resp.ID > 0:
		return domain.NewMeeting(domain.MeetingID(resp.ID), draft.Title, draft.Start, draft.End, draft.ParticipantIDs, 0)
	default:
		return nil, nil
	}
}

// DeleteMeeting deletes a meeting. The server refuses unless the caller
// created it.
func (g *Gateway) DeleteMeeting(ctx context.Context, id domain.MeetingID) error {
	return g.client.Delete(ctx, "delete meeting", fmt.Sprintf("/meetings/%d", id))
}

// SuggestTimes asks the server for shared free slots.
func (g *Gateway) SuggestTimes(ctx context.Context, query domain.SuggestionQuery) ([]time.Time, error) {
	req := suggestTimesRequest{
		ParticipantIDs: userIDs(query.ParticipantIDs()),
		Date:           query.Date().String(),
		Duration:       query.DurationMinutes(),
	}

	var payload []string
	if err := g.client.Post(ctx, "suggest times", "/suggest-times", req, &payload); err != nil {
		return nil, err
	}

	slots := make([]time.Time, 0, len(payload))
	for _, raw := range payload {
		slot, err := timefmt.ParseInstant(raw)
		if err != nil {
			return nil, &domain.OperationError{Op: "suggest times", Message: fmt.Sprintf("unreadable slot %q", raw)}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// ListUsers returns the users that can be invited.
func (g *Gateway) ListUsers(ctx context.Context) ([]domain.UserRef, error) {
	var users []domain.UserRef
	if err := g.client.Get(ctx, "list users", "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (dto meetingDTO) toDomain() (*domain.Meeting, error) {
	start, err := timefmt.ParseInstant(dto.Start)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	end, err := timefmt.ParseInstant(dto.End)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	ids := make([]domain.UserID, 0, len(dto.ParticipantIDs))
	for _, id := range dto.ParticipantIDs {
		ids = append(ids, domain.UserID(id))
	}
	return domain.NewMeeting(domain.MeetingID(dto.ID), dto.Title, start, end, ids, domain.UserID(dto.OwnerID))
}

func userIDs(ids []domain.UserID) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}
