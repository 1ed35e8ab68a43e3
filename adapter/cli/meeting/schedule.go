package meeting

import (
	"fmt"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/spf13/cobra"
)

var (
	scheduleTitle    string
	scheduleDate     string
	scheduleTime     string
	scheduleDuration int
	scheduleWith     []string
	scheduleFind     bool
	schedulePick     int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule a meeting",
	Long: `Schedule a meeting at a time you choose, or at one of the suggested
free times.

Examples:
  huddle meeting schedule --title "Planning" --with alice --date 2024-06-12 --time 14:30
  huddle meeting schedule --title "Planning" --with alice,bob --find
  huddle meeting schedule --title "Planning" --with alice,bob --pick 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		s, err := compose(ctx, app, composeOptions{
			title:    scheduleTitle,
			date:     scheduleDate,
			start:    scheduleTime,
			duration: scheduleDuration,
			with:     scheduleWith,
		})
		if err != nil {
			return err
		}
		defer s.Close()

		var meeting *meetingsDomain.Meeting
		if scheduleFind || schedulePick > 0 {
			result, err := s.FindTimes(ctx)
			if err != nil {
				return err
			}
			state := s.State()
			if result.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), state.Message)
				return nil
			}
			if schedulePick == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Suggested times:")
				printSlots(cmd.OutOrStdout(), result.Slots, state.DurationMinutes, state.Timezone)
				fmt.Fprintln(cmd.OutOrStdout(), "Run again with --pick N to schedule one.")
				return nil
			}
			if schedulePick > len(result.Slots) {
				return &meetingsDomain.ValidationError{
					Field:   "pick",
					Message: fmt.Sprintf("pick a suggestion between 1 and %d", len(result.Slots)),
				}
			}
			meeting, err = s.ScheduleSlot(ctx, result.Slots[schedulePick-1])
			if err != nil {
				return err
			}
		} else {
			meeting, err = s.ScheduleManual(ctx)
			if err != nil {
				return err
			}
		}

		tz := s.State().Timezone
		fmt.Fprintln(cmd.OutOrStdout(), s.State().Message)
		if meeting != nil {
			cli.PrintMeetings(cmd.OutOrStdout(), []*meetingsDomain.Meeting{meeting}, tz)
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleTitle, "title", "t", "", "meeting title")
	scheduleCmd.Flags().StringVar(&scheduleDate, "date", "", "meeting day (YYYY-MM-DD, default today)")
	scheduleCmd.Flags().StringVar(&scheduleTime, "time", "", "start time (HH:MM, default 10:00)")
	scheduleCmd.Flags().IntVar(&scheduleDuration, "duration", 0, "meeting length in minutes (default 60)")
	scheduleCmd.Flags().StringSliceVar(&scheduleWith, "with", nil, "participant usernames")
	scheduleCmd.Flags().BoolVar(&scheduleFind, "find", false, "list suggested free times instead of scheduling")
	scheduleCmd.Flags().IntVar(&schedulePick, "pick", 0, "schedule the Nth suggested time")
}
