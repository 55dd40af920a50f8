package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/octave/internal/tools"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Schema string
	Tier   string
	Strict bool
	Fix    bool
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest <file|->",
		Short: "Normalize lenient OCTAVE text to canonical form",
		Long: `Parse lenient OCTAVE text, validate it and print the canonical form.

The canonical text goes to stdout; corrections, validation errors and,
with --verbose, pipeline stage timings go to stderr.

Exit codes:
  0 - Document is valid
  1 - Document has validation errors or cannot be parsed
  2 - Command error (unreadable input, unknown schema)

Examples:
  octave ingest notes.oct.md
  cat notes.oct.md | octave ingest - --fix
  octave ingest notes.oct.md --schema PROJECT --strict --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema name (default: META.TYPE)")
	cmd.Flags().StringVar(&opts.Tier, "tier", "", "compression tier (LOSSLESS|CONSERVATIVE|AGGRESSIVE|ULTRA)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject fields the schema does not declare")
	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "apply repair-tier fixes")

	return cmd
}

func runIngest(opts *IngestOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	cfg := opts.settings()

	content, err := readContent(cmd, arg)
	if err != nil {
		return reportError(formatter, err)
	}

	sess, err := opts.openSession(false)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.svc.Ingest(cmd.Context(), tools.IngestRequest{
		Content: content,
		Schema:  opts.Schema,
		Tier:    opts.Tier,
		Strict:  boolSetting(cmd, "strict", opts.Strict, cfg.Validation.Strict),
		Fix:     boolSetting(cmd, "fix", opts.Fix, cfg.Repair.Fix),
		Verbose: opts.Verbose,
	})
	if err != nil {
		return reportError(formatter, err)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(res); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, res.Canonical)
		errW := formatter.GetErrWriter()
		if len(res.Repairs) > 0 {
			fmt.Fprintln(errW, "Corrections:")
			writeCorrections(errW, res.Repairs)
		}
		if len(res.Stages) > 0 {
			fmt.Fprintln(errW, "Stages:")
			writeStages(errW, res.Stages)
		}
		if !res.Valid {
			fmt.Fprintf(errW, "%s %d validation error(s)\n", failMark(), len(res.Errors))
			writeErrors(errW, res.Errors)
		}
	}

	if !res.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(res.Errors)))
	}
	return nil
}
