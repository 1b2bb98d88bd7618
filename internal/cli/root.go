// Package cli implements the sharedlist participant command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ganot/sharedlist/internal/config"
	"github.com/ganot/sharedlist/internal/storeclient"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server      string
	Participant string
	Format      string // "json" | "text"
	Verbose     bool
	LogLevel    string
	GracePeriod time.Duration
	FeedWindow  int
	Timeout     time.Duration

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command with flag defaults taken from cfg.
func NewRootCommand(cfg config.Config) *cobra.Command {
	opts := &RootOptions{
		Server:      cfg.Client.ServerURL,
		Participant: cfg.Client.Participant,
		Format:      "text",
		LogLevel:    cfg.Log.Level,
		GracePeriod: cfg.Client.GracePeriod.Duration,
		FeedWindow:  cfg.Client.FeedWindow,
		Timeout:     cfg.Client.RequestTimeout.Duration,
	}

	cmd := &cobra.Command{
		Use:   "sharedlist",
		Short: "Edit a shared list from the terminal",
		Long: `Edit a shared list from the terminal.

Anyone holding a list's token can add, claim and remove items. Changes
show immediately and are rolled back if the server rejects them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flags",
					fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			level := opts.LogLevel
			if opts.Verbose {
				level = "debug"
			}
			logger, err := newLogger(cmd.ErrOrStderr(), level)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid flags", err)
			}
			opts.logger = logger
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.Server, "server", "s", opts.Server, "store server URL")
	flags.StringVarP(&opts.Participant, "participant", "p", opts.Participant, "your display name")
	flags.StringVar(&opts.Format, "format", opts.Format, "output format (json|text)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level (debug|info|warn|error)")
	flags.DurationVar(&opts.GracePeriod, "grace", opts.GracePeriod, "how long a removal can be undone")
	flags.IntVar(&opts.FeedWindow, "feed", opts.FeedWindow, "number of activity entries to show")
	flags.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "per-request timeout")

	cmd.AddCommand(newCreateCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newRenameCommand(opts))
	cmd.AddCommand(newQtyCommand(opts))
	cmd.AddCommand(newClaimCommand(opts))
	cmd.AddCommand(newUnclaimCommand(opts))
	cmd.AddCommand(newRemoveCommand(opts))
	cmd.AddCommand(newActivityCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))

	return cmd
}

func (o *RootOptions) client() *storeclient.Client {
	return storeclient.New(o.Server,
		storeclient.WithParticipant(o.Participant),
		storeclient.WithTimeout(o.Timeout),
	)
}

func (o *RootOptions) output(cmd *cobra.Command) Output {
	return Output{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// newLogger builds a slog logger on a charm console sink.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := charmLog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	sink := charmLog.NewWithOptions(w, charmLog.Options{
		Level:           lvl,
		Prefix:          "sharedlist",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Formatter:       charmLog.TextFormatter,
	})
	return slog.New(sink), nil
}
