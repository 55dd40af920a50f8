package parser

import (
	"strconv"
	"strings"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/lexer"
)

// parseValue reads the value after "::" up to the end of the line.
func (p *parser) parseValue() (ast.Value, error) {
	if isLineEnd(p.current().Kind) {
		return nil, p.errorf(diag.ErrUnclassified, "missing value after '::'")
	}
	if p.at(lexer.ListStart) && isLineEnd(p.peekPastList().Kind) {
		return p.parseList()
	}
	return p.parseChain(isLineEnd, false)
}

// peekPastList returns the token after the list starting at the cursor,
// without consuming anything.
func (p *parser) peekPastList() lexer.Token {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case lexer.ListStart:
			depth++
		case lexer.ListEnd:
			depth--
			if depth == 0 {
				if i+1 < len(p.tokens) {
					return p.tokens[i+1]
				}
				return p.tokens[len(p.tokens)-1]
			}
		case lexer.EOF:
			return p.tokens[i]
		}
	}
	return p.tokens[len(p.tokens)-1]
}

// parseChain reads terms until stop reports true. A single literal is
// returned as-is; several terms become one composite string with operator
// glyphs kept verbatim. Juxtaposed terms keep one space between them only
// when the source separated them.
func (p *parser) parseChain(stop func(lexer.Kind) bool, bracketed bool) (ast.Value, error) {
	start := p.pos
	var parts []string
	prevTerm := false
	for !stop(p.current().Kind) {
		t := p.current()
		switch {
		case t.Kind == lexer.Constraint && !bracketed:
			return nil, p.errorf(diag.ErrLexical, "constraint conjunction ∧ is only allowed inside brackets")
		case t.Kind.IsOperator():
			parts = append(parts, t.Value)
			prevTerm = false
			p.advance()
		case t.Kind == lexer.Assign:
			parts = append(parts, "::")
			prevTerm = false
			p.advance()
		case t.Kind == lexer.Block:
			parts = append(parts, ":")
			prevTerm = false
			p.advance()
		case t.Kind == lexer.ListStart:
			list, err := p.parseList()
			if err != nil {
				return nil, err
			}
			if prevTerm && t.Spaced {
				parts = append(parts, " ")
			}
			parts = append(parts, ast.Text(list))
			prevTerm = true
		case t.Kind.IsScalar():
			if prevTerm && t.Spaced {
				parts = append(parts, " ")
			}
			parts = append(parts, termText(t))
			prevTerm = true
			p.advance()
		default:
			return nil, p.errorf(diag.ErrUnclassified, "unexpected %s in value", t.Kind)
		}
	}

	switch p.pos - start {
	case 0:
		return nil, p.errorf(diag.ErrUnclassified, "missing value")
	case 1:
		if t := p.tokens[start]; t.Kind.IsScalar() {
			return scalar(t)
		}
	}
	return ast.String(strings.Join(parts, "")), nil
}

// termText renders a token inside a composite string. Quoted strings keep
// their quotes so the composite stays readable.
func termText(t lexer.Token) string {
	if t.Kind == lexer.String {
		return `"` + escape(t.Value) + `"`
	}
	return t.Value
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return r.Replace(s)
}

func scalar(t lexer.Token) (ast.Value, error) {
	switch t.Kind {
	case lexer.Null:
		return ast.Null{}, nil
	case lexer.Boolean:
		return ast.Bool(t.Value == "true"), nil
	case lexer.Number:
		if !strings.ContainsAny(t.Value, ".eE") {
			if n, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
				return ast.Int(n), nil
			}
		}
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, &Error{Code: diag.ErrLexical, Message: "invalid number " + t.Value, Line: t.Line, Column: t.Column}
		}
		return ast.Float(f), nil
	default:
		return ast.String(t.Value), nil
	}
}

func isListSpace(k lexer.Kind) bool {
	return k == lexer.Newline || k == lexer.Indent || k == lexer.Comment
}

func isItemEnd(k lexer.Kind) bool {
	return k == lexer.Comma || k == lexer.ListEnd || k == lexer.EOF || isListSpace(k)
}

// parseList reads [item, item, ...]. Items are separated by commas or
// newlines; consecutive key::value items merge into one inline map.
func (p *parser) parseList() (ast.Value, error) {
	open, err := p.expect(lexer.ListStart)
	if err != nil {
		return nil, err
	}
	items := ast.List{}
	lastWasEntry := false
	afterComma := false

	for {
		p.skipListSpace()
		switch p.current().Kind {
		case lexer.ListEnd:
			p.advance()
			return items, nil
		case lexer.EOF:
			return nil, &Error{Code: diag.ErrUnclassified, Message: "unterminated list", Line: open.Line, Column: open.Column}
		case lexer.Comma:
			if afterComma || len(items) == 0 {
				return nil, p.errorf(diag.ErrUnclassified, "empty list item")
			}
			afterComma = true
			p.advance()
			continue
		}
		afterComma = false

		if p.at(lexer.Identifier) && p.peek(1).Kind == lexer.Assign {
			key := p.advance().Value
			p.advance()
			var v ast.Value
			if p.at(lexer.ListStart) {
				v, err = p.parseList()
			} else {
				v, err = p.parseChain(isItemEnd, true)
			}
			if err != nil {
				return nil, err
			}
			entry := ast.Entry{Key: key, Value: v}
			if lastWasEntry {
				m := items[len(items)-1].(ast.InlineMap)
				items[len(items)-1] = append(m, entry)
			} else {
				items = append(items, ast.InlineMap{entry})
			}
			lastWasEntry = true
		} else {
			var v ast.Value
			if p.at(lexer.ListStart) && isItemEnd(p.peekPastList().Kind) {
				v, err = p.parseList()
			} else {
				v, err = p.parseChain(isItemEnd, true)
			}
			if err != nil {
				return nil, err
			}
			items = append(items, v)
			lastWasEntry = false
		}

		newline := p.skipListSpace()
		switch p.current().Kind {
		case lexer.Comma, lexer.ListEnd:
		default:
			if !newline {
				return nil, p.errorf(diag.ErrUnclassified, "expected ',' or ']' in list, found %s", p.current().Kind)
			}
		}
	}
}

// skipListSpace consumes newlines, indentation and comments inside
// brackets and reports whether a newline was crossed.
func (p *parser) skipListSpace() bool {
	crossed := false
	for isListSpace(p.current().Kind) {
		if p.at(lexer.Newline) {
			crossed = true
		}
		p.advance()
	}
	return crossed
}
