package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	identityAuth "github.com/felixgeelhaar/huddle/internal/identity/application/auth"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Cmd is the auth command group.
var Cmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in and out of the scheduling server",
}

// readPassword prompts for a password without echo. Tests replace it.
var readPassword = func(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(w) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		if loginEmail == "" {
			return errors.New("missing --email")
		}

		password, err := readPassword(cmd.ErrOrStderr(), "Password: ")
		if err != nil {
			return err
		}
		profile, err := app.AuthService.Login(cmd.Context(), loginEmail, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s).\n", profile.Username, timefmt.ZoneName(profile.Timezone))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		if err := app.AuthService.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var (
	registerUsername string
	registerEmail    string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		password, err := readPassword(cmd.ErrOrStderr(), "Choose a password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword(cmd.ErrOrStderr(), "Repeat the password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}

		if err := app.AuthService.Register(cmd.Context(), registerUsername, registerEmail, password); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Account created. Sign in with: huddle auth login --email "+strings.ToLower(strings.TrimSpace(registerEmail)))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		profile, err := app.AuthService.Status(cmd.Context())
		if errors.Is(err, identityAuth.ErrNotSignedIn) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>, timezone %s.\n",
			profile.Username, profile.Email, timefmt.ZoneName(profile.Timezone))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVar(&registerUsername, "username", "", "username others will invite you by")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email")

	Cmd.AddCommand(loginCmd)
	Cmd.AddCommand(logoutCmd)
	Cmd.AddCommand(registerCmd)
	Cmd.AddCommand(statusCmd)
}
