package meeting

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	"github.com/felixgeelhaar/huddle/internal/identity/application/auth"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <meeting-id>",
	Short: "Show one meeting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		tz := app.Timezone(ctx)

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return &meetingsDomain.ValidationError{Field: "meeting-id", Message: fmt.Sprintf("%q is not a meeting id", args[0])}
		}

		if !app.Registry.Loaded() {
			if err := app.Registry.Refresh(ctx); err != nil {
				return err
			}
		}
		m, err := app.Registry.Get(meetingsDomain.MeetingID(id))
		if err != nil {
			return err
		}

		if showJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), cli.NewMeetingView(m, tz))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "#%d %s\n", m.ID(), m.Title())
		fmt.Fprintf(out, "  When:         %s (%s)\n", cli.FormatRange(m.Start(), m.End(), tz), timefmt.ZoneName(tz))
		fmt.Fprintf(out, "  Length:       %d minutes\n", int(m.Duration().Minutes()))
		fmt.Fprintf(out, "  Participants: %s\n", participantNames(cmd, app, m))

		me, err := app.CurrentUser(ctx)
		switch {
		case errors.Is(err, auth.ErrNotSignedIn):
		case err != nil:
			return err
		case m.CreatorID() == me:
			fmt.Fprintln(out, "  You created this meeting.")
		case m.HasParticipant(me):
			fmt.Fprintln(out, "  You are invited.")
		}
		return nil
	},
}

// participantNames resolves ids through the user directory, falling back to
// ids when the directory is unavailable.
func participantNames(cmd *cobra.Command, app *cli.App, m *meetingsDomain.Meeting) string {
	ids := m.ParticipantIDs()
	if len(ids) == 0 {
		return "none"
	}
	names := make(map[meetingsDomain.UserID]string)
	if users, err := app.Directory.ListUsers(cmd.Context()); err == nil {
		for _, u := range users {
			names[u.ID] = u.Username
		}
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, fmt.Sprintf("#%d", id))
	}
	return strings.Join(parts, ", ")
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output JSON")
}
