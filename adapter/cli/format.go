package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
)

// MeetingView is the JSON shape of a meeting, with times in the viewer's
// timezone.
type MeetingView struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

// NewMeetingView projects m into tz.
func NewMeetingView(m *meetingsDomain.Meeting, tz string) MeetingView {
	return MeetingView{
		ID:       int64(m.ID()),
		Title:    m.Title(),
		Start:    timefmt.FormatZonedISO(m.Start(), tz),
		End:      timefmt.FormatZonedISO(m.End(), tz),
		Timezone: timefmt.ZoneName(tz),
	}
}

// FormatRange renders a meeting's time span in tz. The end shows only the
// time when it falls on the same local day.
func FormatRange(start, end time.Time, tz string) string {
	from := timefmt.ToZoned(start, tz)
	to := timefmt.ToZoned(end, tz)
	if from.Date == to.Date {
		return timefmt.Format(start, tz, timefmt.PatternSlot) + " - " + timefmt.Format(end, tz, timefmt.PatternTime)
	}
	return timefmt.Format(start, tz, timefmt.PatternSlot) + " - " + timefmt.Format(end, tz, timefmt.PatternSlot)
}

// PrintMeetings writes one line per meeting.
func PrintMeetings(w io.Writer, meetings []*meetingsDomain.Meeting, tz string) {
	for _, m := range meetings {
		fmt.Fprintf(w, "  #%-5d %-28s %s\n", m.ID(), FormatRange(m.Start(), m.End(), tz), m.Title())
	}
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
