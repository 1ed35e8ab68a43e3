package meeting

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <meeting-id>",
	Short: "Delete a meeting you created",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return &meetingsDomain.ValidationError{Field: "meeting-id", Message: fmt.Sprintf("%q is not a meeting id", args[0])}
		}
		requester, err := app.CurrentUser(ctx)
		if err != nil {
			return err
		}

		if err := app.Registry.Delete(ctx, meetingsDomain.MeetingID(id), requester); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Meeting #%d deleted.\n", id)

		// The delete stands even if the reload fails.
		if err := app.Registry.Refresh(ctx); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: could not reload your meetings:", cli.UserMessage(err))
		}
		return nil
	},
}
