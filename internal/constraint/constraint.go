package constraint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/octave/internal/ast"
)

// Constraint is a sealed interface over the fixed set of constraint kinds.
// Each kind owns only its parameters and is immutable after parsing.
type Constraint interface {
	constraint() // Sealed
	Name() string
	String() string
}

// Constraint names as written in chains.
const (
	NameRequired   = "REQ"
	NameOptional   = "OPT"
	NameConst      = "CONST"
	NameEnum       = "ENUM"
	NameType       = "TYPE"
	NameRegex      = "REGEX"
	NameDir        = "DIR"
	NameAppendOnly = "APPEND_ONLY"
	NameRange      = "RANGE"
	NameMaxLength  = "MAX_LENGTH"
	NameMinLength  = "MIN_LENGTH"
	NameDate       = "DATE"
	NameTimestamp  = "ISO8601"
	NameConflict   = "CONFLICT"
)

// Required rejects null and empty strings.
type Required struct{}

// Optional accepts absence.
type Optional struct{}

// Const requires one exact value.
type Const struct {
	Value ast.Value
}

// Enum requires one of Values, accepting unique prefixes.
type Enum struct {
	Values []string
}

// Type requires a value category: STRING, NUMBER, BOOLEAN, LIST, MAP or
// NULL.
type Type struct {
	Expected string
}

// Regex requires a match anchored at the start of the string.
type Regex struct {
	Pattern string
	re      *regexp.Regexp
}

// Dir requires a string usable as a filesystem path.
type Dir struct{}

// AppendOnly requires a list.
type AppendOnly struct{}

// Range requires a number within [Min, Max].
type Range struct {
	Min, Max float64
}

// MaxLength bounds string length in runes or list length in items.
type MaxLength struct {
	N int
}

// MinLength is the lower counterpart of MaxLength.
type MinLength struct {
	N int
}

// Date requires YYYY-MM-DD.
type Date struct{}

// Timestamp requires an ISO 8601 / RFC 3339 date-time.
type Timestamp struct{}

func (Required) constraint()   {}
func (Optional) constraint()   {}
func (Const) constraint()      {}
func (Enum) constraint()       {}
func (Type) constraint()       {}
func (*Regex) constraint()     {}
func (Dir) constraint()        {}
func (AppendOnly) constraint() {}
func (Range) constraint()      {}
func (MaxLength) constraint()  {}
func (MinLength) constraint()  {}
func (Date) constraint()       {}
func (Timestamp) constraint()  {}

func (Required) Name() string   { return NameRequired }
func (Optional) Name() string   { return NameOptional }
func (Const) Name() string      { return NameConst }
func (Enum) Name() string       { return NameEnum }
func (Type) Name() string       { return NameType }
func (*Regex) Name() string     { return NameRegex }
func (Dir) Name() string        { return NameDir }
func (AppendOnly) Name() string { return NameAppendOnly }
func (Range) Name() string      { return NameRange }
func (MaxLength) Name() string  { return NameMaxLength }
func (MinLength) Name() string  { return NameMinLength }
func (Date) Name() string       { return NameDate }
func (Timestamp) Name() string  { return NameTimestamp }

func (Required) String() string   { return NameRequired }
func (Optional) String() string   { return NameOptional }
func (c Const) String() string    { return NameConst + "[" + atomText(c.Value) + "]" }
func (c Enum) String() string     { return NameEnum + "[" + strings.Join(c.Values, ",") + "]" }
func (c Type) String() string     { return NameType + "(" + c.Expected + ")" }
func (c *Regex) String() string   { return NameRegex + "[" + strconv.Quote(c.Pattern) + "]" }
func (Dir) String() string        { return NameDir }
func (AppendOnly) String() string { return NameAppendOnly }
func (c Range) String() string {
	return NameRange + "[" + formatBound(c.Min) + "," + formatBound(c.Max) + "]"
}
func (c MaxLength) String() string { return fmt.Sprintf("%s[%d]", NameMaxLength, c.N) }
func (c MinLength) String() string { return fmt.Sprintf("%s[%d]", NameMinLength, c.N) }
func (Date) String() string        { return NameDate }
func (Timestamp) String() string   { return NameTimestamp }

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// atomText renders a CONST value the way it is written in a chain.
func atomText(v ast.Value) string {
	if s, ok := v.(ast.String); ok && !isBareAtom(string(s)) {
		return strconv.Quote(string(s))
	}
	return ast.Text(v)
}

func isBareAtom(s string) bool {
	if s == "" || s == "true" || s == "false" || s == "null" {
		return false
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return false
	}
	return !strings.ContainsAny(s, ",[]\"∧& ")
}

// typeNames lists the categories TYPE(...) accepts.
var typeNames = map[string]bool{
	ast.TypeString:  true,
	ast.TypeNumber:  true,
	ast.TypeBoolean: true,
	ast.TypeList:    true,
	ast.TypeMap:     true,
	ast.TypeNull:    true,
}
