package diag

import (
	"fmt"
	"strings"
)

// ValidationError is a structured, immutable report produced by constraint
// evaluation and schema validation.
type ValidationError struct {
	Code       string   `json:"code"`
	Path       string   `json:"path"`
	Constraint string   `json:"constraint,omitempty"`
	Expected   string   `json:"expected,omitempty"`
	Got        string   `json:"got,omitempty"`
	Message    string   `json:"message"`
	Candidates []string `json:"candidates,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`

	// Segments is Path split into keys. Keys may themselves contain dots,
	// so consumers that need to address the field use this instead of Path.
	Segments []string `json:"-"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	msg := e.Message
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, msg)
}

// New builds a ValidationError for the field at segments.
func New(code string, segments []string, constraint, message string) ValidationError {
	return ValidationError{
		Code:       code,
		Path:       strings.Join(segments, "."),
		Segments:   append([]string(nil), segments...),
		Constraint: constraint,
		Message:    message,
	}
}

// Codes returns the code of every error, in order.
func Codes(errs []ValidationError) []string {
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	return codes
}

// HasCode reports whether any error carries code.
func HasCode(errs []ValidationError, code string) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Join renders a list of errors one per line.
func Join(errs []ValidationError) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
