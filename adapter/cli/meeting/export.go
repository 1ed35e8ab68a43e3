package meeting

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	"github.com/spf13/cobra"
)

var (
	exportOut      string
	exportUpcoming bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export meetings as iCalendar",
	Long: `Write your meetings as an .ics file that calendar apps can import.

Examples:
  huddle meeting export --out meetings.ics
  huddle meeting export --upcoming > upcoming.ics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if err := app.Registry.Refresh(ctx); err != nil {
			return err
		}
		meetings := app.Registry.List()
		if exportUpcoming {
			meetings = app.Registry.ListUpcoming(0)
		}
		if len(meetings) == 0 {
			return errors.New("there are no meetings to export")
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}

		if err := app.Exporter.Export(w, meetings); err != nil {
			return fmt.Errorf("export meetings: %w", err)
		}
		if exportOut != "" && exportOut != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d meetings to %s\n", len(meetings), exportOut)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportUpcoming, "upcoming", false, "only meetings that have not started")
}
