package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/octave/internal/tools"
)

// AmendOptions holds flags for the amend command.
type AmendOptions struct {
	*RootOptions
	Set      []string
	BaseHash string
	Schema   string
	Strict   bool
	Fix      bool
	Full     bool
}

// NewAmendCommand creates the amend command.
func NewAmendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AmendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "amend <path>",
		Short: "Change fields of an existing document",
		Long: `Apply field-level changes to a document and rewrite it.

Each --set names a dotted field path and a value in OCTAVE syntax.
With --base-hash the file is only changed when its current canonical
hash matches; otherwise the command fails with HASH_MISMATCH.

Examples:
  octave amend status.oct.md --set STATUS=ON_TRACK
  octave amend status.oct.md --set CONFIG.TIMEOUT=60 --set META.VERSION='"1.1"'
  octave amend status.oct.md --set FLOW='A -> B' --base-hash 3f2a...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAmend(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "field change (PATH=VALUE, repeatable)")
	cmd.Flags().StringVar(&opts.BaseHash, "base-hash", "", "expected canonical hash of the current file")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema name (default: META.TYPE)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject fields the schema does not declare")
	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "apply repair-tier fixes")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "print the written content instead of a diff")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func runAmend(opts *AmendOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	cfg := opts.settings()

	changes, err := parseAssignments(opts.Set)
	if err != nil {
		return argumentError(formatter, err)
	}

	sess, err := opts.openSession(true)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.svc.Amend(cmd.Context(), tools.AmendRequest{
		Path:     path,
		Changes:  changes,
		BaseHash: opts.BaseHash,
		Schema:   opts.Schema,
		Strict:   boolSetting(cmd, "strict", opts.Strict, cfg.Validation.Strict),
		Fix:      boolSetting(cmd, "fix", opts.Fix, cfg.Repair.Fix),
		Full:     opts.Full,
	})
	return outputWrite(formatter, "amended", res, err)
}
