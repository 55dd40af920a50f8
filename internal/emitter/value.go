package emitter

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/octave/internal/ast"
)

var bareIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reserved words that would lex as literals or operators when bare.
var reserved = map[string]bool{
	"true":  true,
	"false": true,
	"null":  true,
	"vs":    true,
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)

// FormatValue renders a value in canonical form.
func FormatValue(v ast.Value) string {
	switch val := v.(type) {
	case nil, ast.Null:
		return "null"
	case ast.Bool:
		return strconv.FormatBool(bool(val))
	case ast.Int:
		return strconv.FormatInt(int64(val), 10)
	case ast.Float:
		return ast.FormatFloat(float64(val))
	case ast.String:
		return FormatString(string(val))
	case ast.List:
		parts := make([]string, len(val))
		for i, item := range val {
			if m, ok := item.(ast.InlineMap); ok {
				parts[i] = formatEntries(m)
			} else {
				parts[i] = FormatValue(item)
			}
		}
		return "[" + strings.Join(parts, ",") + "]"
	case ast.InlineMap:
		return "[" + formatEntries(val) + "]"
	}
	return "null"
}

func formatEntries(m ast.InlineMap) string {
	parts := make([]string, len(m))
	for i, e := range m {
		parts[i] = e.Key + "::" + FormatValue(e.Value)
	}
	return strings.Join(parts, ",")
}

// FormatString quotes s unless it is a bare identifier that is not a
// reserved word.
func FormatString(s string) string {
	s = norm.NFC.String(s)
	if NeedsQuotes(s) {
		return `"` + escaper.Replace(s) + `"`
	}
	return s
}

// NeedsQuotes reports whether s must be quoted to read back as the same
// string.
func NeedsQuotes(s string) bool {
	return s == "" || reserved[s] || !bareIdentifier.MatchString(s)
}
