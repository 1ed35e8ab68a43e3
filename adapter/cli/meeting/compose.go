package meeting

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	"github.com/felixgeelhaar/huddle/internal/meetings/application/session"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
)

// composeOptions are the flags shared by suggest and schedule.
type composeOptions struct {
	title    string
	date     string
	start    string
	duration int
	with     []string
}

// compose opens a fresh scheduling session and applies opts to it.
func compose(ctx context.Context, app *cli.App, opts composeOptions) (*session.Controller, error) {
	s := app.NewSchedulingSession(ctx)
	if err := s.Open(ctx); err != nil && len(opts.with) > 0 {
		return nil, err
	}

	if opts.title != "" {
		if err := s.SetTitle(opts.title); err != nil {
			return nil, err
		}
	}
	if opts.date != "" {
		day, err := timefmt.ParseDate(opts.date)
		if err != nil {
			return nil, &meetingsDomain.ValidationError{Field: "date", Message: err.Error()}
		}
		if err := s.SetDate(day); err != nil {
			return nil, err
		}
	}
	if opts.start != "" {
		start, err := timefmt.ParseClockTime(opts.start)
		if err != nil {
			return nil, &meetingsDomain.ValidationError{Field: "time", Message: err.Error()}
		}
		if err := s.SetStartTime(start); err != nil {
			return nil, err
		}
	}
	if opts.duration != 0 {
		if err := s.SetDuration(opts.duration); err != nil {
			return nil, err
		}
	}
	if err := s.Participants().AddByUsername(opts.with...); err != nil {
		return nil, err
	}
	return s, nil
}

// printSlots writes numbered slots in tz.
func printSlots(w io.Writer, slots []time.Time, durationMinutes int, tz string) {
	for i, slot := range slots {
		end := slot.Add(time.Duration(durationMinutes) * time.Minute)
		fmt.Fprintf(w, "  %d. %s\n", i+1, cli.FormatRange(slot, end, tz))
	}
}
