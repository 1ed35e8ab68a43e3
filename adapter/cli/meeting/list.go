package meeting

import (
	"fmt"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
	"github.com/spf13/cobra"
)

var (
	listDate string
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your meetings",
	Long: `List every meeting you take part in, earliest first.

Examples:
  huddle meeting list
  huddle meeting list --date 2024-06-10
  huddle meeting list --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		tz := app.Timezone(ctx)

		if err := app.Registry.Refresh(ctx); err != nil {
			return err
		}
		meetings := app.Registry.List()

		if listDate != "" {
			day, err := timefmt.ParseDate(listDate)
			if err != nil {
				return &meetingsDomain.ValidationError{Field: "date", Message: err.Error()}
			}
			meetings = onDay(meetings, day, tz)
		}

		if listJSON {
			views := make([]cli.MeetingView, 0, len(meetings))
			for _, m := range meetings {
				views = append(views, cli.NewMeetingView(m, tz))
			}
			return cli.PrintJSON(cmd.OutOrStdout(), views)
		}

		if len(meetings) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No meetings found. Schedule one with: huddle meeting schedule --title \"Name\" --with alice")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Meetings (%d, %s):\n", len(meetings), timefmt.ZoneName(tz))
		cli.PrintMeetings(cmd.OutOrStdout(), meetings, tz)
		return nil
	},
}

// onDay keeps the meetings starting on day as seen from tz.
func onDay(meetings []*meetingsDomain.Meeting, day timefmt.Date, tz string) []*meetingsDomain.Meeting {
	from, to := timefmt.DayBounds(day, tz)
	out := make([]*meetingsDomain.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if !m.Start().Before(from) && m.Start().Before(to) {
			out = append(out, m)
		}
	}
	return out
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "only meetings starting on this day (YYYY-MM-DD, your timezone)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output JSON")
}
