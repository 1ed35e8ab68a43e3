package meeting

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
	"github.com/spf13/cobra"
)

var (
	suggestDate     string
	suggestDuration int
	suggestWith     []string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Find times when everyone is free",
	Long: `Ask the server for times on a day when every participant is free
within their working hours.

Examples:
  huddle meeting suggest --with alice,bob
  huddle meeting suggest --with alice --date 2024-06-12 --duration 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		s, err := compose(ctx, app, composeOptions{
			date:     suggestDate,
			duration: suggestDuration,
			with:     suggestWith,
		})
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := s.FindTimes(ctx)
		if err != nil {
			return err
		}
		state := s.State()
		if result.Empty() {
			fmt.Fprintln(cmd.OutOrStdout(), state.Message)
			return nil
		}

		names := make([]string, 0, len(suggestWith))
		for _, u := range s.Participants().Selected() {
			names = append(names, u.Username)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Suggested times on %s with %s (%s):\n",
			state.Date, strings.Join(names, ", "), timefmt.ZoneName(state.Timezone))
		printSlots(cmd.OutOrStdout(), result.Slots, state.DurationMinutes, state.Timezone)
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestDate, "date", "", "day to search (YYYY-MM-DD, default today)")
	suggestCmd.Flags().IntVar(&suggestDuration, "duration", 0, "meeting length in minutes (default 60)")
	suggestCmd.Flags().StringSliceVar(&suggestWith, "with", nil, "participant usernames")
}
