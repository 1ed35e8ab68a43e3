package dashboard

import (
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
	"github.com/spf13/cobra"
)

var watch bool

// Cmd shows the live clock and the next meetings.
var Cmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the time in your timezone and your next meetings",
	Long: `Show the current time in your timezone and your next meetings.
With --watch the clock keeps ticking until you press Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		tz := app.Timezone(ctx)
		out := cmd.OutOrStdout()

		if err := app.Registry.Refresh(ctx); err != nil {
			return err
		}
		render(out, app.Now(), tz, app.Registry.ListUpcoming(app.UpcomingLimit))

		if !watch {
			return nil
		}

		ticker := app.NewTicker(func(now time.Time) {
			fmt.Fprintf(out, "\r%s", clockLine(now, tz))
		})
		ticker.Start()
		<-ctx.Done()
		ticker.Stop()
		fmt.Fprintln(out)
		return nil
	},
}

func clockLine(now time.Time, tz string) string {
	return fmt.Sprintf("%s  %s (%s)",
		timefmt.Format(now, tz, timefmt.PatternDay),
		timefmt.Format(now, tz, timefmt.PatternClock),
		timefmt.ZoneName(tz),
	)
}

func render(w io.Writer, now time.Time, tz string, upcoming []*meetingsDomain.Meeting) {
	fmt.Fprintln(w, clockLine(now, tz))
	fmt.Fprintln(w)
	if len(upcoming) == 0 {
		fmt.Fprintln(w, "No upcoming meetings.")
		return
	}
	fmt.Fprintln(w, "Upcoming meetings:")
	for _, m := range upcoming {
		fmt.Fprintf(w, "  %s %s  %s  %s\n",
			timefmt.Format(m.Start(), tz, timefmt.PatternMonth),
			timefmt.Format(m.Start(), tz, timefmt.PatternDayOfMonth),
			cli.FormatRange(m.Start(), m.End(), tz),
			m.Title(),
		)
	}
}

func init() {
	Cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep the clock ticking")
}
