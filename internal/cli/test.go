package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/octave/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // vector name filter (glob pattern)
	Golden string // golden file directory
}

// VectorResult holds the result of a single vector.
type VectorResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Vectors []VectorResult `json:"vectors"`
	Passed  int            `json:"passed"`
	Failed  int            `json:"failed"`
	Total   int            `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <vectors-dir>",
		Short: "Run conformance vectors",
		Long: `Run YAML conformance vectors through ingest and eject.

Every vector's expectations are checked and its canonical output must
re-ingest to itself. Vectors with a golden file in the golden directory
(default: <vectors-dir>/../golden) must also match it byte for byte.

Exit codes:
  0 - All vectors passed
  1 - One or more vectors failed
  2 - Command error (invalid paths, malformed vector files)

Examples:
  octave test ./testdata/vectors
  octave test ./testdata/vectors --filter "enum_*"
  octave test ./testdata/vectors --update
  octave test ./testdata/vectors --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter vectors by name glob pattern")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden file directory")

	return cmd
}

func runTests(opts *TestOptions, vectorsDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(vectorsDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("vectors directory not found: %s", vectorsDir))
	}
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return WrapExitError(ExitCommandError, "invalid filter pattern", err)
		}
	}
	goldenDir := opts.Golden
	if goldenDir == "" {
		goldenDir = filepath.Join(filepath.Dir(filepath.Clean(vectorsDir)), "golden")
	}

	vectors, err := harness.LoadDir(vectorsDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load vectors", err)
	}

	h := harness.New(opts.logger())
	result := TestResult{Vectors: []VectorResult{}}
	for _, v := range vectors {
		if opts.Filter != "" {
			if ok, _ := filepath.Match(opts.Filter, v.Name); !ok {
				continue
			}
		}
		vr := runVector(cmd, h, v, goldenDir, opts)
		result.Vectors = append(result.Vectors, vr)
		result.Total++
		if vr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	if result.Total == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No vectors found.")
		return nil
	}
	return outputTestText(cmd, result)
}

// runVector executes one vector and compares it with its golden file.
func runVector(cmd *cobra.Command, h *harness.Harness, v *harness.Vector, goldenDir string, opts *TestOptions) VectorResult {
	w := cmd.OutOrStdout()
	text := opts.Format != "json"
	fail := func(errs ...string) VectorResult {
		if text {
			fmt.Fprintf(w, "%s %s\n", failMark(), v.Name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return VectorResult{Name: v.Name, Pass: false, Errors: errs}
	}

	result, err := h.Run(cmd.Context(), v)
	if err != nil {
		return fail(fmt.Sprintf("execution failed: %v", err))
	}

	goldenPath := filepath.Join(goldenDir, v.Name+".golden")
	if opts.Update {
		if err := os.MkdirAll(goldenDir, 0755); err != nil {
			return fail(fmt.Sprintf("failed to create golden directory: %v", err))
		}
		if err := os.WriteFile(goldenPath, []byte(harness.GoldenText(result)), 0644); err != nil {
			return fail(fmt.Sprintf("failed to update golden file: %v", err))
		}
	} else {
		golden, err := os.ReadFile(goldenPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// No golden file: expectations only.
		case err != nil:
			return fail(fmt.Sprintf("failed to read golden file: %v", err))
		case string(golden) != harness.GoldenText(result):
			result.AddError("output does not match golden file (run with --update to regenerate)")
		}
	}

	if !result.Pass {
		return fail(result.Errors...)
	}
	if text {
		suffix := ""
		if opts.Update {
			suffix = styleDim.Render(" (golden updated)")
		}
		fmt.Fprintf(w, "%s %s%s\n", okMark(), v.Name, suffix)
	}
	return VectorResult{Name: v.Name, Pass: true}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d vector(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d vector(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d vector(s) failed", result.Failed))
	}

	fmt.Fprintf(w, "%s All vectors passed\n", okMark())
	return nil
}
