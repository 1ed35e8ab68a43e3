package services

import (
	"context"
	"time"

	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/stretchr/testify/mock"
)

// mockMeetingGateway is a mock implementation of domain.MeetingGateway.
type mockMeetingGateway struct {
	mock.Mock
}

func (m *mockMeetingGateway) ListMeetings(ctx context.Context) ([]*domain.Meeting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Meeting), args.Error(1)
}

func (m *mockMeetingGateway) ListUpcoming(ctx context.Context) ([]*domain.Meeting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Meeting), args.Error(1)
}

func (m *mockMeetingGateway) CreateMeeting(ctx context.Context, draft domain.Draft) (*domain.Meeting, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Meeting), args.Error(1)
}

func (m *mockMeetingGateway) DeleteMeeting(ctx context.Context, id domain.MeetingID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockSuggestionGateway is a mock implementation of domain.SuggestionGateway.
type mockSuggestionGateway struct {
	mock.Mock
}

func (m *mockSuggestionGateway) SuggestTimes(ctx context.Context, query domain.SuggestionQuery) ([]time.Time, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

// gatedSuggestionGateway blocks each call until the test releases it, so
// responses can be delivered out of order.
type gatedSuggestionGateway struct {
	started chan domain.SuggestionQuery
	release map[int]chan []time.Time
}

func newGatedSuggestionGateway(durations ...int) *gatedSuggestionGateway {
	g := &gatedSuggestionGateway{
		started: make(chan domain.SuggestionQuery, len(durations)),
		release: make(map[int]chan []time.Time, len(durations)),
	}
	for _, d := range durations {
		g.release[d] = make(chan []time.Time, 1)
	}
	return g
}

func (g *gatedSuggestionGateway) SuggestTimes(ctx context.Context, query domain.SuggestionQuery) ([]time.Time, error) {
	g.started <- query
	select {
	case slots := <-g.release[query.DurationMinutes()]:
		return slots, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func mustMeeting(id domain.MeetingID, start time.Time, creator domain.UserID) *domain.Meeting {
	m, err := domain.NewMeeting(id, "Meeting", start, start.Add(time.Hour), []domain.UserID{creator}, creator)
	if err != nil {
		panic(err)
	}
	return m
}
