package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Expectation that failed
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateExpectations compares r with v.Expect and returns one message
// per failed expectation.
func EvaluateExpectations(v *Vector, r *Result) []string {
	var failures []string
	fail := func(typ, expected, actual string) {
		failures = append(failures, (&AssertionError{Type: typ, Expected: expected, Actual: actual}).Error())
	}
	exp := v.Expect

	if exp.Error != r.ErrorCode {
		fail("error", orNone(exp.Error), orNone(r.ErrorCode))
	}
	if r.ErrorCode != "" {
		return failures
	}

	if exp.Canonical != nil && *exp.Canonical != r.Canonical {
		fail("canonical", *exp.Canonical, r.Canonical)
	}
	if exp.Codes != nil && !slices.Equal(exp.Codes, r.Codes) {
		fail("codes", list(exp.Codes), list(r.Codes))
	}
	if exp.Repairs != nil && *exp.Repairs != r.Repairs {
		fail("repairs", fmt.Sprint(*exp.Repairs), fmt.Sprint(r.Repairs))
	}
	for _, code := range exp.Normalizations {
		if !slices.Contains(r.Normalizations, code) {
			fail("normalizations", "contains "+code, list(r.Normalizations))
		}
	}
	if exp.Output != nil && *exp.Output != r.Output {
		fail("output", *exp.Output, r.Output)
	}
	if exp.Lossy != nil && *exp.Lossy != r.Lossy {
		fail("lossy", fmt.Sprint(*exp.Lossy), fmt.Sprint(r.Lossy))
	}
	if exp.Omitted != nil && !slices.Equal(exp.Omitted, r.Omitted) {
		fail("omitted", list(exp.Omitted), list(r.Omitted))
	}
	return failures
}

func orNone(code string) string {
	if code == "" {
		return "no error"
	}
	return code
}

func list(items []string) string {
	return "[" + strings.Join(items, ",") + "]"
}
