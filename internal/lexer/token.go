package lexer

import "fmt"

// Kind classifies a token.
type Kind int

const (
	Identifier Kind = iota
	Assign          // ::
	Block           // :
	String
	Number
	Boolean
	Null
	ListStart
	ListEnd
	Comma
	Flow        // →
	Synthesis   // ⊕
	Tension     // ⇌
	Concat      // ⧺
	Alternative // ∨
	Constraint  // ∧
	At          // @
	Section     // §
	Comment
	EnvelopeStart
	EnvelopeEnd
	Separator
	Indent
	Newline
	EOF
)

var kindNames = [...]string{
	Identifier:    "IDENTIFIER",
	Assign:        "ASSIGN",
	Block:         "BLOCK",
	String:        "STRING",
	Number:        "NUMBER",
	Boolean:       "BOOLEAN",
	Null:          "NULL",
	ListStart:     "LIST_START",
	ListEnd:       "LIST_END",
	Comma:         "COMMA",
	Flow:          "FLOW",
	Synthesis:     "SYNTHESIS",
	Tension:       "TENSION",
	Concat:        "CONCAT",
	Alternative:   "ALTERNATIVE",
	Constraint:    "CONSTRAINT",
	At:            "AT",
	Section:       "SECTION",
	Comment:       "COMMENT",
	EnvelopeStart: "ENVELOPE_START",
	EnvelopeEnd:   "ENVELOPE_END",
	Separator:     "SEPARATOR",
	Indent:        "INDENT",
	Newline:       "NEWLINE",
	EOF:           "EOF",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Glyphs maps operator kinds to their canonical Unicode spelling.
var Glyphs = map[Kind]string{
	Flow:        "→",
	Synthesis:   "⊕",
	Tension:     "⇌",
	Concat:      "⧺",
	Alternative: "∨",
	Constraint:  "∧",
	At:          "@",
	Section:     "§",
}

// Precedence returns the binding strength of an operator kind, tightest
// first: concatenation, location, synthesis/tension/alternative,
// conjunction, flow. Non-operators return 0.
func (k Kind) Precedence() int {
	switch k {
	case Concat:
		return 5
	case At:
		return 4
	case Synthesis, Tension, Alternative:
		return 3
	case Constraint:
		return 2
	case Flow:
		return 1
	}
	return 0
}

// IsOperator reports whether k is one of the expression operators.
func (k Kind) IsOperator() bool {
	return k >= Flow && k <= Section
}

// IsScalar reports whether k carries a literal value.
func (k Kind) IsScalar() bool {
	switch k {
	case Identifier, String, Number, Boolean, Null:
		return true
	}
	return false
}

// Token is one lexical unit. Tokens are never modified after scanning.
//
// For Indent tokens Value holds the literal leading spaces. For String
// tokens Value is the unescaped content. For EnvelopeStart it is the
// envelope name.
type Token struct {
	Kind           Kind
	Value          string
	Line           int
	Column         int
	NormalizedFrom string
	// Spaced reports whether a space precedes the token on its line.
	Spaced bool
}

func (t Token) String() string {
	if t.NormalizedFrom != "" {
		return fmt.Sprintf("%s(%q<-%q)@%d:%d", t.Kind, t.Value, t.NormalizedFrom, t.Line, t.Column)
	}
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Value, t.Line, t.Column)
}

// Width returns the indentation width of an Indent token and 0 otherwise.
func (t Token) Width() int {
	if t.Kind != Indent {
		return 0
	}
	return len(t.Value)
}

// Normalization records one lenient-input rewrite applied while reading.
type Normalization struct {
	Code      string `json:"code"`
	Original  string `json:"original"`
	Canonical string `json:"canonical"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
}

func (n Normalization) String() string {
	return fmt.Sprintf("[%s] %d:%d: %q -> %q", n.Code, n.Line, n.Column, n.Original, n.Canonical)
}
