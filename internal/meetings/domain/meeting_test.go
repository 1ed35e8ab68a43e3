package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeeting_Success(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	start := time.Date(2024, 6, 10, 16, 0, 0, 0, berlin)

	meeting, err := NewMeeting(7, "Design review", start, start.Add(30*time.Minute), []UserID{3, 1, 3}, 1)
	require.NoError(t, err)

	assert.Equal(t, MeetingID(7), meeting.ID())
	assert.Equal(t, "Design review", meeting.Title())
	assert.Equal(t, time.UTC, meeting.Start().Location())
	assert.True(t, meeting.Start().Equal(start))
	assert.Equal(t, 30*time.Minute, meeting.Duration())
	assert.Equal(t, []UserID{1, 3}, meeting.ParticipantIDs())
	assert.Equal(t, UserID(1), meeting.CreatorID())
	assert.True(t, meeting.HasParticipant(3))
	assert.False(t, meeting.HasParticipant(2))
}

func TestNewMeeting_EndMustFollowStart(t *testing.T) {
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	_, err := NewMeeting(1, "Zero length", start, start, nil, 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewMeeting(1, "Backwards", start, start.Add(-time.Minute), nil, 1)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "end", validation.Field)
}

func TestNewMeeting_RequiresServerID(t *testing.T) {
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	_, err := NewMeeting(0, "Pending", start, start.Add(time.Hour), nil, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMeeting_ParticipantIDsIsACopy(t *testing.T) {
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	meeting, err := NewMeeting(1, "Sync", start, start.Add(time.Hour), []UserID{1, 2}, 1)
	require.NoError(t, err)

	ids := meeting.ParticipantIDs()
	ids[0] = 99
	assert.Equal(t, []UserID{1, 2}, meeting.ParticipantIDs())
}

func TestMeeting_StartsAtOrAfter(t *testing.T) {
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	meeting, err := NewMeeting(1, "Sync", start, start.Add(time.Hour), nil, 1)
	require.NoError(t, err)

	assert.True(t, meeting.StartsAtOrAfter(start))
	assert.True(t, meeting.StartsAtOrAfter(start.Add(-time.Second)))
	assert.False(t, meeting.StartsAtOrAfter(start.Add(time.Second)))
}

func TestNewDraft(t *testing.T) {
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	t.Run("computes end from duration", func(t *testing.T) {
		draft, err := NewDraft("  Planning  ", start, 45, []UserID{2, 2})
		require.NoError(t, err)
		assert.Equal(t, "Planning", draft.Title)
		assert.Equal(t, start.Add(45*time.Minute), draft.End)
		assert.Equal(t, []UserID{2}, draft.ParticipantIDs)
	})

	t.Run("empty title", func(t *testing.T) {
		_, err := NewDraft("   ", start, 30, nil)
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "title", validation.Field)
	})

	t.Run("non-positive duration", func(t *testing.T) {
		_, err := NewDraft("Planning", start, 0, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("participants optional", func(t *testing.T) {
		draft, err := NewDraft("Focus", start, 30, nil)
		require.NoError(t, err)
		assert.Empty(t, draft.ParticipantIDs)
	})
}

func TestSortByStart(t *testing.T) {
	base := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	mk := func(id MeetingID, offset time.Duration) *Meeting {
		m, err := NewMeeting(id, "m", base.Add(offset), base.Add(offset+time.Hour), nil, 1)
		require.NoError(t, err)
		return m
	}

	meetings := []*Meeting{mk(3, 2*time.Hour), mk(2, 0), mk(1, 0), mk(4, time.Hour)}
	SortByStart(meetings)

	ids := make([]MeetingID, 0, len(meetings))
	for _, m := range meetings {
		ids = append(ids, m.ID())
	}
	assert.Equal(t, []MeetingID{1, 2, 4, 3}, ids)
}

func TestNewDraft_TruncatesToWholeSeconds(t *testing.T) {
	start := time.Date(2030, 6, 10, 14, 0, 0, 300_000_000, time.UTC)

	draft, err := NewDraft("Sync", start, 30, nil)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2030, 6, 10, 14, 0, 0, 0, time.UTC), draft.Start)
	assert.Equal(t, time.Date(2030, 6, 10, 14, 30, 0, 0, time.UTC), draft.End)
}
