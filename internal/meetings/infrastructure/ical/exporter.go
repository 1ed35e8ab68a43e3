// Package ical writes meetings as an iCalendar feed.
package ical

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-ical"
	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/clock"
)

const productID = "-//Huddle//Meeting Export//EN"

// PropXMeetingID carries the server meeting id on exported events.
const PropXMeetingID = "X-HUDDLE-MEETING-ID"

// Exporter renders meetings to iCalendar.
type Exporter struct {
	now    clock.Clock
	domain string
}

// NewExporter creates an exporter. host is used to qualify event UIDs.
func NewExporter(host string, now clock.Clock) *Exporter {
	if now == nil {
		now = clock.System
	}
	host = strings.TrimSpace(host)
	if host == "" {
		host = "huddle.local"
	}
	return &Exporter{now: now, domain: host}
}

// Calendar builds a calendar with one event per meeting.
func (e *Exporter) Calendar(meetings []*domain.Meeting) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	stamp := e.now().UTC()
	for _, m := range meetings {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("meeting-%d@%s", m.ID(), e.domain))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, m.Start())
		event.Props.SetDateTime(ical.PropDateTimeEnd, m.End())
		event.Props.SetText(ical.PropSummary, m.Title())

		idProp := ical.NewProp(PropXMeetingID)
		idProp.Value = fmt.Sprintf("%d", m.ID())
		event.Props[PropXMeetingID] = []ical.Prop{*idProp}

		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// Export writes meetings to w.
func (e *Exporter) Export(w io.Writer, meetings []*domain.Meeting) error {
	if err := ical.NewEncoder(w).Encode(e.Calendar(meetings)); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}
