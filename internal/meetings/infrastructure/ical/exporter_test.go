package ical

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporter_Export(t *testing.T) {
	stamp := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	m1, err := domain.NewMeeting(7, "Design review", start, start.Add(30*time.Minute), nil, 1)
	require.NoError(t, err)
	m2, err := domain.NewMeeting(8, "Retro", start.Add(2*time.Hour), start.Add(3*time.Hour), nil, 2)
	require.NoError(t, err)

	exporter := NewExporter("meet.example.com", func() time.Time { return stamp })

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(&buf, []*domain.Meeting{m1, m2}))
	assert.True(t, strings.HasPrefix(buf.String(), "BEGIN:VCALENDAR"))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	version := cal.Props.Get(ical.PropVersion)
	require.NotNil(t, version)
	assert.Equal(t, "2.0", version.Value)

	events := cal.Events()
	require.Len(t, events, 2)

	uid, err := events[0].Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "meeting-7@meet.example.com", uid)

	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Design review", summary)

	gotStart, err := events[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, gotStart.Equal(start))

	gotEnd, err := events[1].DateTimeEnd(time.UTC)
	require.NoError(t, err)
	assert.True(t, gotEnd.Equal(start.Add(3*time.Hour)))

	id := events[1].Props.Get(PropXMeetingID)
	require.NotNil(t, id)
	assert.Equal(t, "8", id.Value)
}

func TestExporter_EmptyCalendar(t *testing.T) {
	exporter := NewExporter("", nil)
	cal := exporter.Calendar(nil)
	assert.Empty(t, cal.Children)
	assert.Equal(t, "huddle.local", exporter.domain)
}
