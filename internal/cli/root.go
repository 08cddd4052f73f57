// Package cli provides the command-line interface for deskpet.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"deskpet/internal/app"
)

// Version is set at build time with -ldflags "-X deskpet/internal/cli.Version=..."
var Version = "dev"

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configPath   string
	pollInterval time.Duration
	logLevel     string
}

// NewRootCmd creates the deskpet command tree. run starts the pet; tests
// replace it.
func NewRootCmd(run func(app.Options) error) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "deskpet",
		Short:         "A desktop pet that only catches clicks aimed at it",
		Long:          "Runs an always-on-top pet window. Clicks outside the pet pass through to the windows below.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.pollInterval < 0 {
				return fmt.Errorf("--poll-interval must not be negative")
			}
			return run(app.Options{
				ConfigPath:   opts.configPath,
				PollInterval: opts.pollInterval,
				LogLevel:     opts.logLevel,
			})
		},
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default is the per-user config directory)")
	cmd.PersistentFlags().DurationVar(&opts.pollInterval, "poll-interval", 0, "cursor poll interval, overrides poll_interval_ms")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newTraceCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := NewRootCmd(app.Run).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "deskpet:", err)
		os.Exit(1)
	}
}
