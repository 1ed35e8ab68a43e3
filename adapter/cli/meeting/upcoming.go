package meeting

import (
	"fmt"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
	"github.com/spf13/cobra"
)

var (
	upcomingLimit int
	upcomingJSON  bool
)

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List the next meetings",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		tz := app.Timezone(ctx)

		meetings, err := app.Registry.FetchUpcoming(ctx)
		if err != nil {
			return err
		}
		limit := upcomingLimit
		if limit <= 0 {
			limit = app.UpcomingLimit
		}
		if limit > 0 && len(meetings) > limit {
			meetings = meetings[:limit]
		}

		if upcomingJSON {
			views := make([]cli.MeetingView, 0, len(meetings))
			for _, m := range meetings {
				views = append(views, cli.NewMeetingView(m, tz))
			}
			return cli.PrintJSON(cmd.OutOrStdout(), views)
		}

		if len(meetings) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No upcoming meetings.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Upcoming meetings (%s):\n", timefmt.ZoneName(tz))
		cli.PrintMeetings(cmd.OutOrStdout(), meetings, tz)
		return nil
	},
}

func init() {
	upcomingCmd.Flags().IntVarP(&upcomingLimit, "limit", "n", 0, "maximum meetings to show (default from HUDDLE_UPCOMING_LIMIT)")
	upcomingCmd.Flags().BoolVar(&upcomingJSON, "json", false, "output JSON")
}
