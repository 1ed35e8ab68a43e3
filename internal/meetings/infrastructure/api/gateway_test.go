package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/httpapi"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := httpapi.DefaultConfig()
	cfg.BaseURL = server.URL + "/api"
	cfg.RateLimit = 0
	return NewGateway(httpapi.NewClient(cfg, nil, nil), nil)
}

func TestGateway_ListMeetings(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/meetings", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 2, "title": "Retro", "start": "2024-06-10T14:00:00", "end": "2024-06-10T15:00:00"},
			{"id": 3, "title": "Broken", "start": "soon", "end": "later"},
			{"id": 4, "title": "Offset", "start": "2024-06-10T16:00:00+02:00", "end": "2024-06-10T16:30:00+02:00", "participant_ids": [1, 2], "owner_id": 1}
		]`))
	})

	meetings, err := gateway.ListMeetings(context.Background())
	require.NoError(t, err)
	require.Len(t, meetings, 2)

	assert.Equal(t, domain.MeetingID(2), meetings[0].ID())
	assert.Equal(t, time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC), meetings[0].Start())

	assert.Equal(t, time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC), meetings[1].Start())
	assert.Equal(t, []domain.UserID{1, 2}, meetings[1].ParticipantIDs())
	assert.Equal(t, domain.UserID(1), meetings[1].CreatorID())
}

func TestGateway_ListUpcoming(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/meetings/upcoming", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	})

	meetings, err := gateway.ListUpcoming(context.Background())
	require.NoError(t, err)
	assert.Empty(t, meetings)
}

func TestGateway_CreateMeeting(t *testing.T) {
	start := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	draft, err := domain.NewDraft("Focus", start, 45, []domain.UserID{2})
	require.NoError(t, err)

	t.Run("sends UTC instants", func(t *testing.T) {
		gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Focus", body["title"])
			assert.Equal(t, "2024-06-10T08:00:00Z", body["start"])
			assert.Equal(t, "2024-06-10T08:45:00Z", body["end"])
			assert.Equal(t, []any{float64(2)}, body["participant_ids"])
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"message": "Meeting created successfully"}`))
		})

		meeting, err := gateway.CreateMeeting(context.Background(), draft)
		require.NoError(t, err)
		assert.Nil(t, meeting)
	})

	t.Run("uses echoed id", func(t *testing.T) {
		gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"message": "ok", "id": 17}`))
		})

		meeting, err := gateway.CreateMeeting(context.Background(), draft)
		require.NoError(t, err)
		require.NotNil(t, meeting)
		assert.Equal(t, domain.MeetingID(17), meeting.ID())
		assert.Equal(t, draft.End, meeting.End())
	})

	t.Run("uses echoed meeting", func(t *testing.T) {
		gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"meeting": {"id": 18, "title": "Focus", "start": "2024-06-10T08:00:00Z", "end": "2024-06-10T08:45:00Z", "owner_id": 1}}`))
		})

		meeting, err := gateway.CreateMeeting(context.Background(), draft)
		require.NoError(t, err)
		assert.Equal(t, domain.MeetingID(18), meeting.ID())
		assert.Equal(t, domain.UserID(1), meeting.CreatorID())
	})

	t.Run("missing fields", func(t *testing.T) {
		gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message": "Missing required fields"}`))
		})

		_, err := gateway.CreateMeeting(context.Background(), draft)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestGateway_DeleteMeeting(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/api/meetings/7" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message": "Unauthorized"}`))
			return
		}
		assert.Equal(t, "/api/meetings/8", r.URL.Path)
		_, _ = w.Write([]byte(`{"message": "Meeting deleted successfully"}`))
	})

	err := gateway.DeleteMeeting(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrPermission)

	assert.NoError(t, gateway.DeleteMeeting(context.Background(), 8))
}

func TestGateway_SuggestTimes(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/suggest-times", r.URL.Path)
		var body suggestTimesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []int64{1, 2}, body.ParticipantIDs)
		assert.Equal(t, "2024-06-10", body.Date)
		assert.Equal(t, 30, body.Duration)
		_, _ = w.Write([]byte(`["2024-06-10T09:00:00+00:00", "2024-06-10T09:30:00+00:00"]`))
	})

	query, err := domain.NewSuggestionQuery([]domain.UserID{2, 1}, timefmt.Date{Year: 2024, Month: time.June, Day: 10}, 30)
	require.NoError(t, err)

	slots, err := gateway.SuggestTimes(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC),
	}, slots)
}

func TestGateway_SuggestTimes_UnreadableSlot(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["tomorrow"]`))
	})

	query, err := domain.NewSuggestionQuery([]domain.UserID{1}, timefmt.Date{Year: 2024, Month: time.June, Day: 10}, 30)
	require.NoError(t, err)

	_, err = gateway.SuggestTimes(context.Background(), query)
	assert.ErrorIs(t, err, domain.ErrOperation)
}

func TestGateway_ListUsers(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id": 1, "username": "alice"}, {"id": 2, "username": "bob"}]`))
	})

	users, err := gateway.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.UserRef{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}, users)
}
