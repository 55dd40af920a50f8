package cli

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/octave/internal/tools"
	"github.com/roach88/octave/internal/watch"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Schema string
	Strict bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                    `json:"valid"`
	Files  []*tools.ValidateResult `json:"files"`
	Errors int                     `json:"errors"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate documents without rewriting them",
		Long: `Validate OCTAVE documents against their schemas.

Each argument is a file or a directory. Directories are searched
recursively for files with an allowed extension. Nothing is written.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema name (default: META.TYPE)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject fields the schema does not declare")

	return cmd
}

func runValidate(opts *ValidateOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	cfg := opts.settings()

	files, err := collectFiles(args, watch.Extensions(cfg.Create.AllowedExtensions...))
	if err != nil {
		return reportError(formatter, err)
	}
	if len(files) == 0 {
		return outputValidateError(formatter, ErrCodeNotFound, "no documents found in "+strings.Join(args, ", "))
	}
	formatter.VerboseLog("Found %d document(s)", len(files))

	sess, err := opts.openSession(false)
	if err != nil {
		return err
	}
	defer sess.Close()

	strict := boolSetting(cmd, "strict", opts.Strict, cfg.Validation.Strict)
	result := ValidationResult{Valid: true, Files: make([]*tools.ValidateResult, 0, len(files))}
	for _, path := range files {
		formatter.VerboseLog("Validating %s", path)
		res, err := sess.svc.Validate(cmd.Context(), tools.ValidateRequest{
			Path:   path,
			Schema: opts.Schema,
			Strict: strict,
		})
		if err != nil {
			return reportError(formatter, err)
		}
		result.Files = append(result.Files, res)
		result.Valid = result.Valid && res.Valid
		result.Errors += res.ErrorCount()
	}

	if result.Valid {
		return outputValidateSuccess(formatter, result)
	}
	return outputValidationErrors(formatter, result)
}

// collectFiles expands directories into the matching files beneath them.
// Files named explicitly are kept whatever their extension.
func collectFiles(args []string, match func(string) bool) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if match(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, f := range result.Files {
		fmt.Fprintf(formatter.Writer, "%s %s\n", okMark(), f.Path)
	}
	fmt.Fprintf(formatter.Writer, "%s All documents valid\n", okMark())
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every invalid file and its errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", result.Errors))

	if formatter.Format == "json" {
		first := firstError(result)
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    first.Code,
				Message: first.Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return failure
	}

	for _, f := range result.Files {
		if f.Valid {
			fmt.Fprintf(formatter.Writer, "%s %s\n", okMark(), f.Path)
			continue
		}
		fmt.Fprintf(formatter.Writer, "%s %s\n", failMark(), f.Path)
		writeErrors(formatter.Writer, f.Errors)
		for _, d := range f.Documents {
			if len(d.Errors) == 0 {
				continue
			}
			if len(f.Documents) > 1 {
				fmt.Fprintf(formatter.Writer, "  %s\n", d.Name)
			}
			writeErrors(formatter.Writer, d.Errors)
		}
	}
	fmt.Fprintf(formatter.Writer, "\n%s Validation failed: %d error(s)\n", failMark(), result.Errors)
	return failure
}

// firstError returns the first error of the first invalid file.
func firstError(result ValidationResult) CLIError {
	for _, f := range result.Files {
		if len(f.Errors) > 0 {
			return CLIError{Code: f.Errors[0].Code, Message: f.Errors[0].Message}
		}
		for _, d := range f.Documents {
			if len(d.Errors) > 0 {
				return CLIError{Code: d.Errors[0].Code, Message: d.Errors[0].Message}
			}
		}
	}
	return CLIError{Code: ErrCodeGeneric, Message: "validation failed"}
}
