package constraint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
)

// ParseError reports a malformed constraint chain.
type ParseError struct {
	Code       string
	Constraint string
	Message    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] constraint %q: %s", e.Code, e.Constraint, e.Message)
}

// ParseChain parses "REQ∧ENUM[A,B]∧REGEX[\"^x\"]" into a Chain. Both ∧ and
// & separate constraints; separators inside brackets, parentheses or
// quotes belong to the parameter.
func ParseChain(text string) (*Chain, error) {
	parts, err := splitChain(text)
	if err != nil {
		return nil, err
	}
	items := make([]Constraint, 0, len(parts))
	for _, part := range parts {
		c, err := Parse(part)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return NewChain(items...), nil
}

// MustParseChain is ParseChain for literals known to be valid.
func MustParseChain(text string) *Chain {
	c, err := ParseChain(text)
	if err != nil {
		panic(err)
	}
	return c
}

func splitChain(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var (
		parts   []string
		current strings.Builder
		depth   int
		quoted  bool
		escaped bool
	)
	flush := func() error {
		part := strings.TrimSpace(current.String())
		current.Reset()
		if part == "" {
			return &ParseError{Code: diag.ErrUnclassified, Constraint: text, Message: "empty constraint in chain"}
		}
		parts = append(parts, part)
		return nil
	}
	for _, r := range text {
		switch {
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
		case depth == 0 && (r == '∧' || r == '&'):
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		current.WriteRune(r)
	}
	if quoted || depth != 0 {
		return nil, &ParseError{Code: diag.ErrUnclassified, Constraint: text, Message: "unbalanced brackets or quotes"}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return parts, nil
}

// Parse parses a single constraint such as "ENUM[A,B]" or "TYPE(STRING)".
func Parse(text string) (Constraint, error) {
	text = strings.TrimSpace(text)
	name, param, hasParam, err := splitParam(text)
	if err != nil {
		return nil, err
	}
	fail := func(format string, args ...any) error {
		return &ParseError{Code: diag.ErrUnclassified, Constraint: text, Message: fmt.Sprintf(format, args...)}
	}
	noParam := func(c Constraint) (Constraint, error) {
		if hasParam {
			return nil, fail("%s takes no parameter", name)
		}
		return c, nil
	}

	switch name {
	case NameRequired:
		return noParam(Required{})
	case NameOptional:
		return noParam(Optional{})
	case NameDir:
		return noParam(Dir{})
	case NameAppendOnly:
		return noParam(AppendOnly{})
	case NameDate:
		return noParam(Date{})
	case NameTimestamp:
		return noParam(Timestamp{})
	}

	if !hasParam {
		return nil, fail("%s requires a parameter", name)
	}
	switch name {
	case NameConst:
		return Const{Value: parseAtom(param)}, nil
	case NameEnum:
		values := splitList(param)
		if len(values) == 0 {
			return nil, fail("ENUM needs at least one value")
		}
		return Enum{Values: values}, nil
	case NameType:
		expected := strings.ToUpper(strings.TrimSpace(param))
		if !typeNames[expected] {
			return nil, fail("unknown type %q", param)
		}
		return Type{Expected: expected}, nil
	case NameRegex:
		return NewRegex(unquote(strings.TrimSpace(param)))
	case NameRange:
		bounds := splitList(param)
		if len(bounds) != 2 {
			return nil, fail("RANGE needs min,max")
		}
		lo, err1 := strconv.ParseFloat(bounds[0], 64)
		hi, err2 := strconv.ParseFloat(bounds[1], 64)
		if err1 != nil || err2 != nil {
			return nil, fail("RANGE bounds must be numbers")
		}
		if lo > hi {
			return nil, fail("RANGE min %s exceeds max %s", bounds[0], bounds[1])
		}
		return Range{Min: lo, Max: hi}, nil
	case NameMaxLength, NameMinLength:
		n, err := strconv.Atoi(strings.TrimSpace(param))
		if err != nil || n < 0 {
			return nil, fail("%s needs a non-negative integer", name)
		}
		if name == NameMaxLength {
			return MaxLength{N: n}, nil
		}
		return MinLength{N: n}, nil
	}
	return nil, fail("unknown constraint %s", name)
}

// NewRegex compiles pattern anchored at the start of the input.
func NewRegex(pattern string) (*Regex, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, &ParseError{Code: diag.ErrUnclassified, Constraint: NameRegex, Message: "invalid pattern: " + err.Error()}
	}
	return &Regex{Pattern: pattern, re: re}, nil
}

// splitParam separates NAME from its [param] or (param).
func splitParam(text string) (name, param string, ok bool, err error) {
	i := strings.IndexAny(text, "[(")
	if i < 0 {
		return strings.ToUpper(text), "", false, nil
	}
	closer := byte(']')
	if text[i] == '(' {
		closer = ')'
	}
	if text[len(text)-1] != closer {
		return "", "", false, &ParseError{Code: diag.ErrUnclassified, Constraint: text, Message: "unterminated parameter"}
	}
	return strings.ToUpper(strings.TrimSpace(text[:i])), text[i+1 : len(text)-1], true, nil
}

// splitList splits comma-separated parameters, honouring quotes.
func splitList(param string) []string {
	var (
		out     []string
		current strings.Builder
		quoted  bool
	)
	flush := func() {
		if v := strings.TrimSpace(current.String()); v != "" {
			out = append(out, unquote(v))
		}
		current.Reset()
	}
	for _, r := range param {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}

// parseAtom reads a CONST parameter: quoted text is a string, otherwise
// literals are recognised before falling back to a bare string.
func parseAtom(param string) ast.Value {
	s := strings.TrimSpace(param)
	if len(s) >= 2 && s[0] == '"' {
		return ast.String(unquote(s))
	}
	switch s {
	case "true":
		return ast.Bool(true)
	case "false":
		return ast.Bool(false)
	case "null":
		return ast.Null{}
	}
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ast.Int(n)
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return ast.Float(f)
	}
	return ast.String(s)
}
