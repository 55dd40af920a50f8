package lexer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/octave/internal/diag"
)

var envelopePattern = regexp.MustCompile(`^===([A-Z0-9_]+)===`)

// single-rune operators, canonical glyph and ASCII alias.
var runeOperators = map[rune]Kind{
	'→': Flow,
	'⊕': Synthesis,
	'⇌': Tension,
	'⧺': Concat,
	'∨': Alternative,
	'∧': Constraint,
	'§': Section,
	'@': At,
	'+': Synthesis,
	'~': Concat,
	'|': Alternative,
	'&': Constraint,
	'#': Section,
}

// Tokenize scans text and returns its tokens plus the normalization log.
func Tokenize(text string) ([]Token, []Normalization, error) {
	l := newLexer(text)
	if err := l.run(); err != nil {
		return nil, l.log, err
	}
	return l.tokens, l.log, nil
}

type lexer struct {
	src    []rune
	pos    int
	line   int
	col    int
	tokens []Token
	log    []Normalization
}

func newLexer(text string) *lexer {
	l := &lexer{line: 1, col: 1}
	normalized := norm.NFC.String(text)
	if normalized != text {
		l.log = append(l.log, Normalization{
			Code:      diag.WarnUnicodeNFC,
			Original:  "non-NFC text",
			Canonical: "NFC text",
			Line:      1,
			Column:    1,
		})
	}
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	l.src = []rune(normalized)
	return l
}

func (l *lexer) peekAt(off int) rune {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) errorf(format string, args ...any) error {
	return &Error{Code: diag.ErrLexical, Message: fmt.Sprintf(format, args...), Line: l.line, Column: l.col}
}

func (l *lexer) emit(kind Kind, value string, line, col int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Value: value, Line: line, Column: col})
}

func (l *lexer) advance(n int) {
	l.pos += n
	l.col += n
}

func (l *lexer) run() error {
	atLineStart := true
	for l.pos < len(l.src) {
		if atLineStart {
			if err := l.lineStart(); err != nil {
				return err
			}
			atLineStart = false
			continue
		}

		r := l.src[l.pos]
		line, col := l.line, l.col
		n, spaced := len(l.tokens), l.pos > 0 && l.src[l.pos-1] == ' '

		switch {
		case r == '\t':
			return l.errorf("tab characters are not allowed; indent with spaces")
		case r == '\n':
			l.emit(Newline, "\n", line, col)
			l.pos++
			l.line++
			l.col = 1
			atLineStart = true
		case r == '\r':
			l.advance(1)
		case r == ' ':
			l.advance(1)
		case r == '/' && l.peekAt(1) == '/':
			l.scanComment()
		case r == '"':
			if err := l.scanString(); err != nil {
				return err
			}
		case r == ':' && l.peekAt(1) == ':':
			l.noteOperatorWhitespace(2)
			l.emit(Assign, "::", line, col)
			l.advance(2)
		case r == ':':
			l.emit(Block, ":", line, col)
			l.advance(1)
		case r == '[':
			l.emit(ListStart, "[", line, col)
			l.advance(1)
		case r == ']':
			l.emit(ListEnd, "]", line, col)
			l.advance(1)
		case r == ',':
			l.emit(Comma, ",", line, col)
			l.advance(1)
		case r == '-' && l.peekAt(1) == '>':
			l.emitAlias(Flow, "->", line, col)
			l.advance(2)
		case r == '-' && isDigit(l.peekAt(1)):
			l.scanNumber()
		case isDigit(r):
			l.scanNumber()
		case isIdentStart(r):
			if err := l.scanWord(); err != nil {
				return err
			}
		default:
			kind, ok := runeOperators[r]
			if !ok {
				return l.errorf("unexpected character %q", r)
			}
			if glyph := Glyphs[kind]; string(r) != glyph {
				l.emitAlias(kind, string(r), line, col)
			} else {
				l.emit(kind, glyph, line, col)
			}
			l.advance(1)
		}
		if len(l.tokens) > n {
			l.tokens[n].Spaced = spaced
		}
	}
	l.emit(EOF, "", l.line, l.col)
	return nil
}

// lineStart consumes leading indentation and line-level constructs
// (envelope markers and the separator).
func (l *lexer) lineStart() error {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] == ' ' {
		l.pos++
	}
	width := l.pos - start
	l.col += width
	if l.pos < len(l.src) && l.src[l.pos] == '\t' {
		return l.errorf("tab characters are not allowed; indent with spaces")
	}
	if l.pos >= len(l.src) || l.src[l.pos] == '\n' || (l.src[l.pos] == '\r' && l.peekAt(1) == '\n') {
		return nil
	}
	if width > 0 {
		l.emit(Indent, strings.Repeat(" ", width), l.line, 1)
	}

	rest := l.restOfLine()
	switch {
	case strings.HasPrefix(rest, "==="):
		m := envelopePattern.FindStringSubmatch(rest)
		if m == nil {
			return l.errorf("malformed envelope marker %q", strings.TrimSpace(rest))
		}
		if m[1] == "END" {
			l.emit(EnvelopeEnd, "END", l.line, l.col)
		} else {
			l.emit(EnvelopeStart, m[1], l.line, l.col)
		}
		l.advance(len([]rune(m[0])))
	case strings.TrimRight(rest, " \r") == "---":
		l.emit(Separator, "---", l.line, l.col)
		l.advance(3)
	}
	return nil
}

func (l *lexer) restOfLine() string {
	end := l.pos
	for end < len(l.src) && l.src[end] != '\n' {
		end++
	}
	return string(l.src[l.pos:end])
}

func (l *lexer) emitAlias(kind Kind, original string, line, col int) {
	glyph := Glyphs[kind]
	l.tokens = append(l.tokens, Token{Kind: kind, Value: glyph, Line: line, Column: col, NormalizedFrom: original})
	l.log = append(l.log, Normalization{
		Code:      diag.WarnASCIIAlias,
		Original:  original,
		Canonical: glyph,
		Line:      line,
		Column:    col,
	})
}

// noteOperatorWhitespace logs spaces around an assignment operator that
// the emitter will drop.
func (l *lexer) noteOperatorWhitespace(width int) {
	before := l.pos > 0 && l.src[l.pos-1] == ' ' && len(l.tokens) > 0 && l.tokens[len(l.tokens)-1].Line == l.line
	after := l.peekAt(width) == ' '
	if before || after {
		l.log = append(l.log, Normalization{
			Code:      diag.WarnWhitespace,
			Original:  " :: ",
			Canonical: "::",
			Line:      l.line,
			Column:    l.col,
		})
	}
}

func (l *lexer) scanComment() {
	line, col := l.line, l.col
	l.advance(2)
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	l.col += l.pos - start
	l.emit(Comment, strings.TrimSpace(strings.TrimSuffix(text, "\r")), line, col)
}

func (l *lexer) scanString() error {
	line, col := l.line, l.col
	l.advance(1)
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return &Error{Code: diag.ErrLexical, Message: "unterminated string", Line: line, Column: col}
		}
		r := l.src[l.pos]
		switch r {
		case '"':
			l.advance(1)
			l.emit(String, sb.String(), line, col)
			return nil
		case '\t':
			return l.errorf("tab characters are not allowed; use \\t inside strings")
		case '\\':
			next := l.peekAt(1)
			switch next {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			case 0, '\n':
				return &Error{Code: diag.ErrLexical, Message: "unterminated string", Line: line, Column: col}
			default:
				sb.WriteRune('\\')
				sb.WriteRune(next)
			}
			l.advance(2)
		default:
			sb.WriteRune(r)
			l.advance(1)
		}
	}
}

// scanNumber reads an integer or float literal. A run that starts like a
// number but continues with word characters (1.0.0, 2FA, 2024-01-15,
// 1.5.3-rc1, 12:30) is an identifier.
func (l *lexer) scanNumber() {
	line, col := l.line, l.col
	start := l.pos
	i := l.pos
	if l.src[i] == '-' {
		i++
	}
	for i < len(l.src) && isDigit(l.src[i]) {
		i++
	}
	if i+1 < len(l.src) && l.src[i] == '.' && isDigit(l.src[i+1]) {
		i++
		for i < len(l.src) && isDigit(l.src[i]) {
			i++
		}
	}
	if i < len(l.src) && (l.src[i] == 'e' || l.src[i] == 'E') {
		j := i + 1
		if j < len(l.src) && (l.src[j] == '+' || l.src[j] == '-') {
			j++
		}
		if j < len(l.src) && isDigit(l.src[j]) {
			for j < len(l.src) && isDigit(l.src[j]) {
				j++
			}
			i = j
		}
	}

	kind := Number
	for i < len(l.src) {
		r := l.src[i]
		if isIdentPart(r) || r == '.' {
			i++
		} else if (r == '-' || r == ':') && i+1 < len(l.src) && isIdentPart(l.src[i+1]) {
			i += 2
		} else {
			break
		}
		kind = Identifier
	}
	l.col += i - start
	l.pos = i
	l.emit(kind, string(l.src[start:i]), line, col)
}

// scanWord reads an identifier, keyword or the "vs" operator word.
// Identifiers may contain dots, interior hyphens (well-known) and single
// interior colons joining identifier characters (HERMES:API_TIMEOUT).
func (l *lexer) scanWord() error {
	line, col := l.line, l.col
	start := l.pos
	i := l.pos
	for i < len(l.src) {
		r := l.src[i]
		if isIdentPart(r) || r == '.' {
			i++
			continue
		}
		if r == ':' && i+1 < len(l.src) && isIdentStart(l.src[i+1]) {
			i++
			continue
		}
		if r == '-' && i+1 < len(l.src) && isIdentPart(l.src[i+1]) {
			i++
			continue
		}
		break
	}
	word := string(l.src[start:i])

	switch word {
	case "true", "false":
		l.emit(Boolean, word, line, col)
	case "null":
		l.emit(Null, word, line, col)
	case "vs":
		l.emitAlias(Tension, "vs", line, col)
	default:
		if at := embeddedTension(word); at >= 0 {
			return &Error{
				Code:    diag.ErrLexical,
				Message: fmt.Sprintf("'vs' in %q needs word boundaries to act as the tension operator; write %q", word, word[:at]+" vs "+word[at+2:]),
				Line:    line,
				Column:  col + at,
			}
		}
		l.emit(Identifier, word, line, col)
	}
	l.col += i - start
	l.pos = i
	return nil
}

// embeddedTension finds "vs" glued between a lower-case and an upper-case
// letter (SpeedvsQuality), which reads as an operator missing its word
// boundaries. Identifiers like devs, vserver or AvsBs are left alone.
func embeddedTension(word string) int {
	runes := []rune(word)
	for i := 1; i+2 < len(runes); i++ {
		if runes[i] == 'v' && runes[i+1] == 's' && unicode.IsLower(runes[i-1]) && unicode.IsUpper(runes[i+2]) {
			return len(string(runes[:i]))
		}
	}
	return -1
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
