package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/octave/internal/tools"
)

// EjectOptions holds flags for the eject command.
type EjectOptions struct {
	*RootOptions
	Schema string
	Mode   string
	As     string
}

// NewEjectCommand creates the eject command.
func NewEjectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EjectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eject [file|-]",
		Short: "Project a document for a reader, or print a schema template",
		Long: `Render a document in one of the projection modes.

Modes:
  canonical  full canonical form
  authoring  full form with blank lines between sections
  executive  META plus status, risk and decision fields (lossy)
  developer  META plus test, CI and dependency fields (lossy)

Without a file argument a template for --schema is printed.

Examples:
  octave eject status.oct.md --mode executive
  octave eject status.oct.md --as json
  octave eject --schema PROJECT`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return runEject(opts, arg, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema for templates")
	cmd.Flags().StringVar(&opts.Mode, "mode", "canonical", "projection mode (canonical|authoring|executive|developer)")
	cmd.Flags().StringVar(&opts.As, "as", "octave", "output syntax (octave|json|yaml|markdown)")

	return cmd
}

func runEject(opts *EjectOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	content := ""
	if arg != "" {
		var err error
		if content, err = readContent(cmd, arg); err != nil {
			return reportError(formatter, err)
		}
		if strings.TrimSpace(content) == "" {
			return argumentError(formatter, errors.New("input is empty"))
		}
	}

	sess, err := opts.openSession(false)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.svc.Eject(cmd.Context(), tools.EjectRequest{
		Content: content,
		Schema:  opts.Schema,
		Mode:    opts.Mode,
		Format:  opts.As,
	})
	if err != nil {
		return reportError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(res)
	}
	fmt.Fprint(formatter.Writer, res.Output)
	if !strings.HasSuffix(res.Output, "\n") {
		fmt.Fprintln(formatter.Writer)
	}
	if res.Lossy && len(res.FieldsOmitted) > 0 {
		formatter.VerboseLog("omitted: %s", strings.Join(res.FieldsOmitted, ", "))
	}
	return nil
}
