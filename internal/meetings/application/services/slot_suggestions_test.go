package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var june10 = timefmt.Date{Year: 2024, Month: time.June, Day: 10}

func mustQuery(t *testing.T, ids []domain.UserID, duration int) domain.SuggestionQuery {
	t.Helper()
	q, err := domain.NewSuggestionQuery(ids, june10, duration)
	require.NoError(t, err)
	return q
}

func TestRequestSuggestions_Fulfilled(t *testing.T) {
	gateway := new(mockSuggestionGateway)
	orchestrator := NewSlotSuggestionOrchestrator(gateway, nil)
	query := mustQuery(t, []domain.UserID{1, 2}, 30)

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	slots := []time.Time{
		time.Date(2024, 6, 10, 16, 0, 0, 0, berlin),
		time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
	}
	gateway.On("SuggestTimes", mock.Anything, query).Return(slots, nil)

	result, err := orchestrator.RequestSuggestions(context.Background(), query)
	require.NoError(t, err)

	require.Len(t, result.Slots, 2)
	assert.Equal(t, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), result.Slots[0])
	assert.Equal(t, time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC), result.Slots[1])
	assert.Equal(t, time.UTC, result.Slots[1].Location())

	snap := orchestrator.Snapshot()
	assert.Equal(t, SuggestionFulfilled, snap.Phase)
	assert.Equal(t, result.Slots, snap.Slots)
	assert.False(t, snap.NoSlots())
	gateway.AssertExpectations(t)
}

func TestRequestSuggestions_EmptyIsNotAnError(t *testing.T) {
	gateway := new(mockSuggestionGateway)
	orchestrator := NewSlotSuggestionOrchestrator(gateway, nil)
	query := mustQuery(t, []domain.UserID{1}, 60)
	gateway.On("SuggestTimes", mock.Anything, query).Return([]time.Time{}, nil)

	result, err := orchestrator.RequestSuggestions(context.Background(), query)
	require.NoError(t, err)
	assert.True(t, result.Empty())

	snap := orchestrator.Snapshot()
	assert.Equal(t, SuggestionFulfilled, snap.Phase)
	assert.True(t, snap.NoSlots())
	assert.NoError(t, snap.Err)
}

func TestRequestSuggestions_RejectsZeroQueryWithoutNetwork(t *testing.T) {
	gateway := new(mockSuggestionGateway)
	orchestrator := NewSlotSuggestionOrchestrator(gateway, nil)

	_, err := orchestrator.RequestSuggestions(context.Background(), domain.SuggestionQuery{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, SuggestionFailed, orchestrator.Snapshot().Phase)
	gateway.AssertNotCalled(t, "SuggestTimes", mock.Anything, mock.Anything)
}

func TestRequestSuggestions_FailureMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"transport", &domain.TransportError{Op: "suggest times", Err: errors.New("connection refused")}, domain.ErrTransport},
		{"server validation", &domain.ValidationError{Message: "Missing required fields"}, domain.ErrValidation},
		{"server rejection", &domain.OperationError{Op: "suggest times", StatusCode: 500}, domain.ErrOperation},
		{"forbidden", &domain.PermissionError{Op: "suggest times"}, domain.ErrOperation},
		{"unclassified", errors.New("boom"), domain.ErrOperation},
		{"deadline", context.DeadlineExceeded, domain.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := new(mockSuggestionGateway)
			orchestrator := NewSlotSuggestionOrchestrator(gateway, nil)
			query := mustQuery(t, []domain.UserID{1}, 30)
			gateway.On("SuggestTimes", mock.Anything, query).Return(nil, tt.err)

			_, err := orchestrator.RequestSuggestions(context.Background(), query)
			assert.ErrorIs(t, err, tt.kind)

			snap := orchestrator.Snapshot()
			assert.Equal(t, SuggestionFailed, snap.Phase)
			assert.ErrorIs(t, snap.Err, tt.kind)
		})
	}
}

func TestRequestSuggestions_RecoversAfterFailure(t *testing.T) {
	gateway := new(mockSuggestionGateway)
	orchestrator := NewSlotSuggestionOrchestrator(gateway, nil)
	query := mustQuery(t, []domain.UserID{1}, 30)
	slot := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	gateway.On("SuggestTimes", mock.Anything, query).Return(nil, &domain.TransportError{Op: "x", Err: errors.New("down")}).Once()
	gateway.On("SuggestTimes", mock.Anything, query).Return([]time.Time{slot}, nil).Once()

	_, err := orchestrator.RequestSuggestions(context.Background(), query)
	require.Error(t, err)

	result, err := orchestrator.RequestSuggestions(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{slot}, result.Slots)
}

func TestRequestSuggestions_LastQueryWins(t *testing.T) {
	gateway := newGatedSuggestionGateway(30, 45)
	orchestrator := NewSlotSuggestionOrchestrator(gateway, nil)
	first := mustQuery(t, []domain.UserID{1}, 30)
	second := mustQuery(t, []domain.UserID{1}, 45)

	type outcome struct {
		result SuggestionResult
		err    error
	}
	firstDone := make(chan outcome, 1)
	secondDone := make(chan outcome, 1)

	go func() {
		r, err := orchestrator.RequestSuggestions(context.Background(), first)
		firstDone <- outcome{r, err}
	}()
	<-gateway.started

	go func() {
		r, err := orchestrator.RequestSuggestions(context.Background(), second)
		secondDone <- outcome{r, err}
	}()
	<-gateway.started

	fast := time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC)
	slow := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	gateway.release[45] <- []time.Time{fast}
	got := <-secondDone
	require.NoError(t, got.err)
	assert.Equal(t, []time.Time{fast}, got.result.Slots)

	gateway.release[30] <- []time.Time{slow}
	stale := <-firstDone
	assert.ErrorIs(t, stale.err, domain.ErrSuperseded)

	snap := orchestrator.Snapshot()
	assert.Equal(t, SuggestionFulfilled, snap.Phase)
	assert.Equal(t, []time.Time{fast}, snap.Slots)
	assert.Equal(t, 45, snap.Query.DurationMinutes())
}

func TestReset_InvalidatesInFlight(t *testing.T) {
	gateway := newGatedSuggestionGateway(30)
	orchestrator := NewSlotSuggestionOrchestrator(gateway, nil)
	query := mustQuery(t, []domain.UserID{1}, 30)

	done := make(chan error, 1)
	go func() {
		_, err := orchestrator.RequestSuggestions(context.Background(), query)
		done <- err
	}()
	<-gateway.started
	assert.Equal(t, SuggestionPending, orchestrator.Snapshot().Phase)

	orchestrator.Reset()
	gateway.release[30] <- []time.Time{time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}

	assert.ErrorIs(t, <-done, domain.ErrSuperseded)
	snap := orchestrator.Snapshot()
	assert.Equal(t, SuggestionIdle, snap.Phase)
	assert.Empty(t, snap.Slots)
}

func TestSuggestionPhase_String(t *testing.T) {
	assert.Equal(t, "idle", SuggestionIdle.String())
	assert.Equal(t, "pending", SuggestionPending.String())
	assert.Equal(t, "fulfilled", SuggestionFulfilled.String())
	assert.Equal(t, "failed", SuggestionFailed.String())
	assert.Equal(t, "unknown", SuggestionPhase(99).String())
}
