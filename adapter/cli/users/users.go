package users

import (
	"fmt"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	"github.com/felixgeelhaar/huddle/internal/meetings/application/services"
	"github.com/spf13/cobra"
)

var usersJSON bool

// Cmd is the users command group.
var Cmd = &cobra.Command{
	Use:   "users",
	Short: "People you can invite",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the users you can invite to a meeting",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		users, err := app.Directory.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		selector := services.NewParticipantSelector()
		selector.SetCandidates(users)
		users = selector.Candidates()

		if usersJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), users)
		}
		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No other users yet.")
			return nil
		}
		for _, u := range users {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-5d %s\n", u.ID, u.Username)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&usersJSON, "json", false, "output JSON")
	Cmd.AddCommand(listCmd)
}
