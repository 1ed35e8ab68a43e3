package settings

import (
	"fmt"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	"github.com/felixgeelhaar/huddle/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/huddle/internal/shared/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
	"github.com/spf13/cobra"
)

var settingsJSON bool

// Cmd is the settings command group.
var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage your profile, timezone and working hours",
}

type profileView struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Timezone          string `json:"timezone"`
	WorkingHoursStart string `json:"working_hours_start"`
	WorkingHoursEnd   string `json:"working_hours_end"`
}

func newProfileView(p domain.Profile) profileView {
	return profileView{
		ID:                p.ID,
		Username:          p.Username,
		Email:             p.Email,
		Timezone:          p.Timezone,
		WorkingHoursStart: p.WorkingHoursStart.String(),
		WorkingHoursEnd:   p.WorkingHoursEnd.String(),
	}
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		profile, err := app.SettingsService.Profile(cmd.Context())
		if err != nil {
			return err
		}
		if settingsJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), newProfileView(profile))
		}
		printProfile(cmd, profile)
		return nil
	},
}

var (
	setUsername  string
	setTimezone  string
	setWorkStart string
	setWorkEnd   string
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Update your profile",
	Long: `Update one or more profile fields. Fields you leave out are unchanged.

Examples:
  huddle settings set --timezone Europe/Berlin
  huddle settings set --work-start 08:30 --work-end 16:30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		update, err := buildUpdate(cmd)
		if err != nil {
			return err
		}
		profile, err := app.SettingsService.Update(cmd.Context(), update)
		if err != nil {
			return err
		}
		if settingsJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), newProfileView(profile))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
		printProfile(cmd, profile)
		return nil
	},
}

func buildUpdate(cmd *cobra.Command) (domain.ProfileUpdate, error) {
	var update domain.ProfileUpdate
	flags := cmd.Flags()

	if flags.Changed("username") {
		update.Username = &setUsername
	}
	if flags.Changed("timezone") {
		update.Timezone = &setTimezone
	}
	if flags.Changed("work-start") {
		start, err := timefmt.ParseClockTime(setWorkStart)
		if err != nil {
			return domain.ProfileUpdate{}, &sharedDomain.ValidationError{Field: "work-start", Message: err.Error()}
		}
		update.WorkingHoursStart = &start
	}
	if flags.Changed("work-end") {
		end, err := timefmt.ParseClockTime(setWorkEnd)
		if err != nil {
			return domain.ProfileUpdate{}, &sharedDomain.ValidationError{Field: "work-end", Message: err.Error()}
		}
		update.WorkingHoursEnd = &end
	}
	return update, nil
}

var timezonesCmd = &cobra.Command{
	Use:   "timezones [filter]",
	Short: "List the timezones you can choose",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}
		zones, err := app.SettingsService.SearchTimezones(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if settingsJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), zones)
		}
		if len(zones) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No timezones match %q.\n", filter)
			return nil
		}
		for _, zone := range zones {
			fmt.Fprintln(cmd.OutOrStdout(), zone)
		}
		return nil
	},
}

func printProfile(cmd *cobra.Command, p domain.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Username:      %s\n", p.Username)
	fmt.Fprintf(out, "Email:         %s\n", p.Email)
	fmt.Fprintf(out, "Timezone:      %s\n", timefmt.ZoneName(p.Timezone))
	fmt.Fprintf(out, "Working hours: %s - %s\n", p.WorkingHoursStart, p.WorkingHoursEnd)
}

func init() {
	Cmd.PersistentFlags().BoolVar(&settingsJSON, "json", false, "output JSON")

	setCmd.Flags().StringVar(&setUsername, "username", "", "new username")
	setCmd.Flags().StringVar(&setTimezone, "timezone", "", "IANA timezone, e.g. Europe/Berlin")
	setCmd.Flags().StringVar(&setWorkStart, "work-start", "", "start of working hours (HH:MM)")
	setCmd.Flags().StringVar(&setWorkEnd, "work-end", "", "end of working hours (HH:MM)")

	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(timezonesCmd)
}
