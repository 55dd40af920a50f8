package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a vector and compares its output against a
// golden file. The golden file is stored in testdata/golden/{vector.Name}.golden
// and holds the projected output when the vector sets a mode, otherwise
// the canonical text.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the vector cannot be run.
// Test failure (via goldie) occurs if output doesn't match golden file.
func RunWithGolden(t *testing.T, v *Vector) (*Result, error) {
	t.Helper()

	result, err := New(nil).Run(context.Background(), v)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, v.Name, result)
	return result, nil
}

// AssertGolden compares a result's output against a golden file without
// re-running the vector.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(GoldenText(result)))
}

// GoldenText is the golden file content of a result: the projected output
// when there is one, otherwise the canonical text, or "error: CODE" for a
// fatal error.
func GoldenText(result *Result) string {
	if result.ErrorCode != "" {
		return "error: " + result.ErrorCode
	}
	if result.Output != "" {
		return result.Output
	}
	return result.Canonical
}
