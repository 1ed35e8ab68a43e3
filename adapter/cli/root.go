package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/felixgeelhaar/huddle/internal/identity/application/auth"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	timezoneFlag string
	verbose      bool
	logger       *slog.Logger
	logLevel     *slog.LevelVar
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "huddle",
	Short: "Huddle - schedule meetings across timezones",
	Long: `Huddle finds times that work for everyone invited to a meeting,
schedules it, and shows your upcoming meetings in your own timezone.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		if verbose && logLevel != nil {
			logLevel.Set(slog.LevelDebug)
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx := context.WithValue(cmd.Context(), commandContextKey{}, info)
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		cmd.SetContext(ctx)
		logger.Debug("command start",
			"command", cmd.CommandPath(),
			observability.CorrelationIDKey, info.correlationID.String(),
		)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.Debug("command end",
			"command", cmd.CommandPath(),
			observability.CorrelationIDKey, info.correlationID.String(),
			observability.DurationKey, time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Debug("command failed", observability.ErrorKey, err)
		}
		fmt.Fprintln(os.Stderr, "Error:", UserMessage(err))
		return 1
	}
	return 0
}

// UserMessage renders err for the terminal.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrNotSignedIn):
		return "You are not logged in. Run 'huddle auth login' first."
	case errors.Is(err, ErrNotConfigured):
		return "Huddle could not start. Run with --verbose for details."
	default:
		return meetingsDomain.UserMessage(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&timezoneFlag, "tz", "", "display timezone (overrides HUDDLE_TIMEZONE and your profile)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// SetLogLevel hands the CLI the level that --verbose raises to debug.
func SetLogLevel(level *slog.LevelVar) {
	logLevel = level
}
