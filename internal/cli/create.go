package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/octave/internal/tools"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Schema string
	Strict bool
	Fix    bool
	Full   bool
	Set    []string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <path> <source|->",
		Short: "Write a document in canonical form",
		Long: `Normalize and validate a document, then write its canonical form.

The target path must end in an allowed extension (create.allowed_extensions)
and may not contain "..". A document that is still invalid after repair is
not written. The canonical hash and a diff against the previous content are
printed; --full prints the written content instead.

Examples:
  octave create docs/status.oct.md draft.txt --fix
  octave create docs/status.oct.md - --set VERSION='"2.0"'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema name (default: META.TYPE)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject fields the schema does not declare")
	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "apply repair-tier fixes")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "print the written content instead of a diff")
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "override a META field (KEY=VALUE, repeatable)")

	return cmd
}

func runCreate(opts *CreateOptions, path, source string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	cfg := opts.settings()

	mutations, err := parseAssignments(opts.Set)
	if err != nil {
		return argumentError(formatter, err)
	}
	content, err := readContent(cmd, source)
	if err != nil {
		return reportError(formatter, err)
	}

	sess, err := opts.openSession(true)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.svc.Create(cmd.Context(), tools.CreateRequest{
		Path:      path,
		Content:   content,
		Schema:    opts.Schema,
		Strict:    boolSetting(cmd, "strict", opts.Strict, cfg.Validation.Strict),
		Fix:       boolSetting(cmd, "fix", opts.Fix, cfg.Repair.Fix),
		Full:      opts.Full,
		Mutations: mutations,
	})
	return outputWrite(formatter, "created", res, err)
}

// outputWrite reports a create or amend result.
func outputWrite(formatter *OutputFormatter, verb string, res *tools.WriteResult, err error) error {
	if err != nil && !(errors.Is(err, tools.ErrInvalidDocument) && res != nil) {
		return reportError(formatter, err)
	}

	if err != nil {
		if formatter.Format == "json" {
			_ = formatter.Error(ErrCodeInvalidDocument, err.Error(), res)
		} else {
			fmt.Fprintf(formatter.Writer, "%s %s not written: %d validation error(s)\n", failMark(), res.Path, len(res.Errors))
			writeErrors(formatter.Writer, res.Errors)
			if len(res.Corrections) > 0 {
				fmt.Fprintln(formatter.Writer, "Corrections:")
				writeCorrections(formatter.Writer, res.Corrections)
			}
		}
		return WrapExitError(ExitFailure, ErrCodeInvalidDocument, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(res)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s %s %s\n", okMark(), verb, res.Path)
	fmt.Fprintf(w, "  hash %s\n", styleDim.Render(res.Hash))
	if res.Revision != nil {
		fmt.Fprintf(w, "  revision %d %s\n", res.Revision.Seq, styleDim.Render(res.Revision.ID))
	}
	if len(res.Corrections) > 0 {
		fmt.Fprintln(w, "Corrections:")
		writeCorrections(w, res.Corrections)
	}
	if res.Content != "" {
		fmt.Fprintln(w, res.Content)
	} else {
		writeDiff(w, res.Diff)
	}
	return nil
}
