package meeting

import "github.com/spf13/cobra"

// Cmd is the meeting command group.
var Cmd = &cobra.Command{
	Use:   "meeting",
	Short: "Schedule and manage meetings",
	Long: `Find shared free times, schedule meetings, and list or delete the
meetings on your calendar. Times are shown in your timezone.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(upcomingCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(suggestCmd)
	Cmd.AddCommand(scheduleCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(exportCmd)
}
