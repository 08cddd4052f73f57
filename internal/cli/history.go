package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deskpet/internal/config"
	"deskpet/internal/journal"
)

// historyTimeFormat is used for each printed transition
const historyTimeFormat = "2006-01-02 15:04:05.000"

// newHistoryCmd creates the history command
func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent click-through transitions from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			m, err := config.NewManager(root.configPath)
			if err != nil {
				return err
			}
			if err := m.Load(); err != nil {
				return err
			}

			path := m.Get().JournalPath(m.Path())
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("no journal at %s (is journal.enabled set?)", path)
			}
			j, err := journal.Open(path, zap.L().Named("journal"))
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of transitions to print")
	return cmd
}

// printHistory writes entries oldest first
func printHistory(out io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "no transitions recorded")
		return
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(out, "%s  %s\n", e.At.Local().Format(historyTimeFormat), e.State)
	}
}
