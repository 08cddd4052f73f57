package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"deskpet/internal/config"
)

// newConfigCmd creates the config command and its subcommands
func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(newConfigPathCmd(opts))
	cmd.AddCommand(newConfigInitCmd(opts))
	return cmd
}

// newConfigPathCmd creates the path subcommand
func newConfigPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := config.NewManager(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Path())
			return nil
		},
	}
}

// newConfigInitCmd creates the init subcommand
func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := config.NewManager(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}

			_, statErr := os.Stat(m.Path())
			switch {
			case statErr == nil && !force:
				return fmt.Errorf("%s already exists (use --force to overwrite)", m.Path())
			case statErr != nil && !errors.Is(statErr, fs.ErrNotExist):
				return statErr
			}

			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", m.Path())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
