package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <path>",
		Short: "List the recorded revisions of a document",
		Long: `List the revisions create and amend recorded for a path, oldest first.

Requires store.path in the configuration (or OCTAVE_STORE_PATH).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runHistory(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := opts.openSession(true)
	if err != nil {
		return err
	}
	defer sess.Close()

	revs, err := sess.svc.History(cmd.Context(), path)
	if err != nil {
		return reportError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(revs)
	}
	if len(revs) == 0 {
		fmt.Fprintf(formatter.Writer, "No revisions recorded for %s\n", path)
		return nil
	}
	for _, r := range revs {
		parent := r.ParentHash
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(formatter.Writer, "%3d  %-7s %s  %s\n",
			r.Seq, r.Operation, r.ContentHash, styleDim.Render("parent "+shortHash(parent)))
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
