package constraint

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
)

// Chain is an ordered conjunction of constraints. Evaluation is fail-fast:
// the first failing constraint produces the only error.
type Chain struct {
	items     []Constraint
	conflicts []string
}

// Result is the outcome of evaluating a chain against one value.
type Result struct {
	Errors []diag.ValidationError
}

// Valid reports whether evaluation produced no errors.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// NewChain builds a chain and records any contradictions between its
// members.
func NewChain(items ...Constraint) *Chain {
	c := &Chain{items: append([]Constraint(nil), items...)}
	c.conflicts = detectConflicts(c.items)
	return c
}

// Items returns the constraints in evaluation order.
func (c *Chain) Items() []Constraint {
	if c == nil {
		return nil
	}
	return append([]Constraint(nil), c.items...)
}

// Len returns the number of constraints.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Required reports whether the chain contains REQ.
func (c *Chain) Required() bool {
	return c.has(NameRequired)
}

// Optional reports whether the chain contains OPT.
func (c *Chain) Optional() bool {
	return c.has(NameOptional)
}

// Conflicts returns descriptions of contradictory constraints.
func (c *Chain) Conflicts() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.conflicts...)
}

func (c *Chain) has(name string) bool {
	for _, item := range c.Items() {
		if item.Name() == name {
			return true
		}
	}
	return false
}

// String renders the chain in canonical form joined by ∧.
func (c *Chain) String() string {
	parts := make([]string, 0, c.Len())
	for _, item := range c.Items() {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, "∧")
}

// Evaluate checks v at path. A nil value means the field is absent.
// Contradictory chains fail before any value check, one error per
// conflict. An absent value in an OPT chain passes without further checks.
func (c *Chain) Evaluate(v ast.Value, path []string) Result {
	if c == nil {
		return Result{}
	}
	if len(c.conflicts) > 0 {
		errs := make([]diag.ValidationError, len(c.conflicts))
		for i, msg := range c.conflicts {
			errs[i] = diag.New(diag.ErrUnclassified, path, NameConflict, msg)
		}
		return Result{Errors: errs}
	}
	if isAbsent(v) && c.Optional() && !c.Required() {
		return Result{}
	}
	for _, item := range c.items {
		if err := check(item, v, path); err != nil {
			return Result{Errors: []diag.ValidationError{*err}}
		}
	}
	return Result{}
}

func isAbsent(v ast.Value) bool {
	switch v.(type) {
	case nil, ast.Null:
		return true
	}
	return false
}

func fail(code string, c Constraint, path []string, expected string, got ast.Value, format string, args ...any) *diag.ValidationError {
	e := diag.New(code, path, c.String(), fmt.Sprintf(format, args...))
	e.Expected = expected
	e.Got = ast.Text(got)
	return &e
}

func mismatch(c Constraint, path []string, expected string, got ast.Value) *diag.ValidationError {
	return fail(diag.ErrTypeMismatch, c, path, expected, got,
		"expected %s, got %s", expected, ast.TypeName(got))
}

// scalarText returns the text of scalar values; lists and maps have none.
func scalarText(v ast.Value) (string, bool) {
	switch val := v.(type) {
	case ast.String:
		return string(val), true
	case ast.Int, ast.Float, ast.Bool:
		return ast.Text(val), true
	}
	return "", false
}

func check(item Constraint, v ast.Value, path []string) *diag.ValidationError {
	switch c := item.(type) {
	case Required:
		if isAbsent(v) {
			return fail(diag.ErrMissingRequired, c, path, "value", v, "required field is missing")
		}
		if s, ok := v.(ast.String); ok && s == "" {
			return fail(diag.ErrMissingRequired, c, path, "value", v, "required field is empty")
		}
	case Optional:
	case Const:
		if !constEqual(c.Value, v) {
			return fail(diag.ErrTypeMismatch, c, path, ast.Text(c.Value), v,
				"expected constant %s, got %s", ast.Text(c.Value), ast.Text(v))
		}
	case Enum:
		return checkEnum(c, v, path)
	case Type:
		if got := ast.TypeName(v); got != c.Expected {
			return mismatch(c, path, c.Expected, v)
		}
	case *Regex:
		s, ok := scalarText(v)
		if !ok {
			return mismatch(c, path, ast.TypeString, v)
		}
		if !c.re.MatchString(s) {
			return fail(diag.ErrPattern, c, path, c.Pattern, v, "%q does not match pattern %s", s, c.Pattern)
		}
	case Dir:
		s, ok := v.(ast.String)
		if !ok {
			return mismatch(c, path, ast.TypeString, v)
		}
		if s == "" || strings.ContainsRune(string(s), 0) {
			return fail(diag.ErrPathChars, c, path, "path", v, "invalid path characters")
		}
	case AppendOnly:
		if _, ok := v.(ast.List); !ok {
			return fail(diag.ErrAppendOnly, c, path, ast.TypeList, v, "append-only field must be a list, got %s", ast.TypeName(v))
		}
	case Range:
		f, ok := ast.AsFloat(v)
		if !ok {
			return mismatch(c, path, ast.TypeNumber, v)
		}
		if f < c.Min || f > c.Max {
			return fail(diag.ErrRange, c, path, c.String(), v, "%s is outside [%s, %s]",
				ast.Text(v), formatBound(c.Min), formatBound(c.Max))
		}
	case MaxLength:
		n, ok := length(v)
		if !ok {
			return mismatch(c, path, "STRING or LIST", v)
		}
		if n > c.N {
			return fail(diag.ErrMaxLength, c, path, fmt.Sprintf("<= %d", c.N), v, "length %d exceeds %d", n, c.N)
		}
	case MinLength:
		n, ok := length(v)
		if !ok {
			return mismatch(c, path, "STRING or LIST", v)
		}
		if n < c.N {
			return fail(diag.ErrMinLength, c, path, fmt.Sprintf(">= %d", c.N), v, "length %d is below %d", n, c.N)
		}
	case Date:
		s, ok := v.(ast.String)
		if !ok {
			return mismatch(c, path, ast.TypeString, v)
		}
		if _, err := time.Parse(time.DateOnly, string(s)); err != nil {
			return fail(diag.ErrDateFormat, c, path, "YYYY-MM-DD", v, "%q is not a date", string(s))
		}
	case Timestamp:
		s, ok := v.(ast.String)
		if !ok {
			return mismatch(c, path, ast.TypeString, v)
		}
		if !isTimestamp(string(s)) {
			return fail(diag.ErrDateFormat, c, path, "ISO 8601", v, "%q is not an ISO 8601 timestamp", string(s))
		}
	default:
		e := diag.New(diag.ErrUnclassified, path, item.String(), "unknown constraint")
		return &e
	}
	return nil
}

func isTimestamp(s string) bool {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func length(v ast.Value) (int, bool) {
	switch val := v.(type) {
	case ast.String:
		return utf8.RuneCountInString(string(val)), true
	case ast.List:
		return len(val), true
	}
	return 0, false
}

// constEqual compares numbers by value so CONST[1] accepts 1.0.
func constEqual(want, got ast.Value) bool {
	if a, ok := ast.AsFloat(want); ok {
		b, ok := ast.AsFloat(got)
		return ok && a == b
	}
	return ast.Equal(want, got)
}

// checkEnum accepts an exact member or a unique prefix of one member.
func checkEnum(c Enum, v ast.Value, path []string) *diag.ValidationError {
	s, ok := scalarText(v)
	if !ok {
		return mismatch(c, path, "one of "+strings.Join(c.Values, ", "), v)
	}
	for _, allowed := range c.Values {
		if s == allowed {
			return nil
		}
	}
	var matches []string
	if s != "" {
		for _, allowed := range c.Values {
			if strings.HasPrefix(allowed, s) {
				matches = append(matches, allowed)
			}
		}
	}
	switch len(matches) {
	case 1:
		return nil
	case 0:
		e := fail(diag.ErrLexical, c, path, strings.Join(c.Values, "|"), v,
			"%q is not one of %s", s, strings.Join(c.Values, ", "))
		e.Candidates = append([]string(nil), c.Values...)
		e.Suggestion = diag.Suggest(s, c.Values)
		return e
	default:
		e := fail(diag.ErrAmbiguousEnum, c, path, strings.Join(c.Values, "|"), v,
			"%q is ambiguous, matches %s", s, strings.Join(matches, ", "))
		e.Candidates = matches
		return e
	}
}

// Resolve returns the member s names, exactly or by unique prefix.
func (c Enum) Resolve(s string) (string, bool) {
	for _, allowed := range c.Values {
		if s == allowed {
			return allowed, true
		}
	}
	var match string
	n := 0
	for _, allowed := range c.Values {
		if s != "" && strings.HasPrefix(allowed, s) {
			match = allowed
			n++
		}
	}
	return match, n == 1
}

func detectConflicts(items []Constraint) []string {
	var (
		out      []string
		req, opt bool
		consts   []Const
		enums    []Enum
		types    []Type
		ranges   []Range
		minLen   = -1
		maxLen   = -1
	)
	for _, item := range items {
		switch c := item.(type) {
		case Required:
			req = true
		case Optional:
			opt = true
		case Const:
			consts = append(consts, c)
		case Enum:
			enums = append(enums, c)
		case Type:
			types = append(types, c)
		case Range:
			ranges = append(ranges, c)
		case MinLength:
			minLen = c.N
		case MaxLength:
			maxLen = c.N
		}
	}
	if req && opt {
		out = append(out, "REQ and OPT are mutually exclusive")
	}
	for i := 1; i < len(consts); i++ {
		if !constEqual(consts[0].Value, consts[i].Value) {
			out = append(out, fmt.Sprintf("conflicting constants %s and %s",
				ast.Text(consts[0].Value), ast.Text(consts[i].Value)))
		}
	}
	for i := 1; i < len(types); i++ {
		if types[i].Expected != types[0].Expected {
			out = append(out, fmt.Sprintf("conflicting types %s and %s", types[0].Expected, types[i].Expected))
		}
	}
	for _, k := range consts {
		for _, e := range enums {
			// Exact membership: an abbreviation of an allowed value is
			// not the value itself.
			if !slices.Contains(e.Values, ast.Text(k.Value)) {
				out = append(out, fmt.Sprintf("constant %s is not in %s", ast.Text(k.Value), e.String()))
			}
		}
		for _, t := range types {
			if got := ast.TypeName(k.Value); got != t.Expected {
				out = append(out, fmt.Sprintf("constant %s is not of type %s", ast.Text(k.Value), t.Expected))
			}
		}
	}
	for i := 1; i < len(ranges); i++ {
		a, b := ranges[0], ranges[i]
		if a.Max < b.Min || b.Max < a.Min {
			out = append(out, fmt.Sprintf("ranges %s and %s do not overlap", a.String(), b.String()))
		}
	}
	if minLen >= 0 && maxLen >= 0 && minLen > maxLen {
		out = append(out, fmt.Sprintf("MIN_LENGTH %d exceeds MAX_LENGTH %d", minLen, maxLen))
	}
	return out
}
