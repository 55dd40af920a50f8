package parser

import (
	"fmt"
	"strings"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/lexer"
)

// Error is a fatal structural error.
type Error struct {
	Code    string
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %d:%d: %s", e.Code, e.Line, e.Column, e.Message)
}

// Parse builds a single document from tokens. Input holding more than one
// envelope fails with E002; use ParseAll for document streams.
func Parse(tokens []lexer.Token) (*ast.Document, error) {
	docs, _, err := ParseAll(tokens)
	if err != nil {
		return nil, err
	}
	if len(docs) > 1 {
		return nil, &Error{
			Code:    diag.ErrMultipleDocuments,
			Message: fmt.Sprintf("input holds %d documents; select one explicitly", len(docs)),
			Line:    1,
			Column:  1,
		}
	}
	return docs[0], nil
}

// ParseAll builds every document in tokens and returns the parser's own
// normalization log (envelope inference, indentation).
func ParseAll(tokens []lexer.Token) ([]*ast.Document, []lexer.Normalization, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != lexer.EOF {
		tokens = append(append([]lexer.Token(nil), tokens...), lexer.Token{Kind: lexer.EOF})
	}
	p := &parser{tokens: tokens}
	docs, err := p.parseAll()
	return docs, p.log, err
}

// ParseString tokenizes and parses text holding one document. The
// returned log combines lexer and parser normalizations.
func ParseString(text string) (*ast.Document, []lexer.Normalization, error) {
	docs, log, err := ParseAllString(text)
	if err != nil {
		return nil, log, err
	}
	if len(docs) > 1 {
		return nil, log, &Error{
			Code:    diag.ErrMultipleDocuments,
			Message: fmt.Sprintf("input holds %d documents; select one explicitly", len(docs)),
			Line:    1,
			Column:  1,
		}
	}
	return docs[0], log, nil
}

// ParseAllString tokenizes and parses a document stream.
func ParseAllString(text string) ([]*ast.Document, []lexer.Normalization, error) {
	tokens, lexLog, err := lexer.Tokenize(text)
	if err != nil {
		return nil, lexLog, err
	}
	docs, parseLog, err := ParseAll(tokens)
	return docs, append(lexLog, parseLog...), err
}

// ParseValue parses a lone value, as written after "::".
func ParseValue(text string) (ast.Value, []lexer.Normalization, error) {
	tokens, log, err := lexer.Tokenize(text)
	if err != nil {
		return nil, log, err
	}
	p := &parser{tokens: tokens}
	v, err := p.parseValue()
	if err != nil {
		return nil, log, err
	}
	p.skipBlank()
	if !p.at(lexer.EOF) {
		return nil, log, p.errorf(diag.ErrUnclassified, "unexpected %s after value", p.current().Kind)
	}
	return v, log, nil
}

type parser struct {
	tokens []lexer.Token
	pos    int
	log    []lexer.Normalization
}

func (p *parser) current() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) peek(n int) lexer.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() lexer.Token {
	t := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(kind lexer.Kind) bool {
	return p.current().Kind == kind
}

func (p *parser) expect(kind lexer.Kind) (lexer.Token, error) {
	if !p.at(kind) {
		return lexer.Token{}, p.errorf(diag.ErrUnclassified, "expected %s, found %s", kind, p.current().Kind)
	}
	return p.advance(), nil
}

func (p *parser) errorf(code, format string, args ...any) error {
	t := p.current()
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Line: t.Line, Column: t.Column}
}

func (p *parser) note(code, original, canonical string, t lexer.Token) {
	p.log = append(p.log, lexer.Normalization{
		Code:      code,
		Original:  original,
		Canonical: canonical,
		Line:      t.Line,
		Column:    t.Column,
	})
}

func isLineEnd(k lexer.Kind) bool {
	return k == lexer.Newline || k == lexer.Comment || k == lexer.EOF
}

// skipBlank consumes empty lines, comment lines and indentation that
// leads only to one of those.
func (p *parser) skipBlank() {
	for {
		switch {
		case p.at(lexer.Newline), p.at(lexer.Comment):
			p.advance()
		case p.at(lexer.Indent) && isLineEnd(p.peek(1).Kind):
			p.advance()
		default:
			return
		}
	}
}

// endLine consumes an optional trailing comment and the newline.
func (p *parser) endLine() error {
	if p.at(lexer.Comment) {
		p.advance()
	}
	switch {
	case p.at(lexer.Newline):
		p.advance()
		return nil
	case p.at(lexer.EOF):
		return nil
	}
	return p.errorf(diag.ErrUnclassified, "unexpected %s %q at end of line", p.current().Kind, p.current().Value)
}

// lineHead returns the indentation width of the current line and its first
// significant token.
func (p *parser) lineHead() (int, lexer.Token) {
	if p.at(lexer.Indent) {
		return p.current().Width(), p.peek(1)
	}
	return 0, p.current()
}

func isDocumentEnd(k lexer.Kind) bool {
	return k == lexer.EOF || k == lexer.EnvelopeEnd || k == lexer.EnvelopeStart
}

func (p *parser) parseAll() ([]*ast.Document, error) {
	var docs []*ast.Document
	p.skipBlank()
	for {
		doc, err := p.parseDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)

		p.skipBlank()
		if p.at(lexer.EOF) {
			return docs, nil
		}
		if _, head := p.lineHead(); head.Kind != lexer.EnvelopeStart {
			return nil, p.errorf(diag.ErrUnclassified, "content after ===END===")
		}
	}
}

func (p *parser) parseDocument() (*ast.Document, error) {
	doc := &ast.Document{}
	explicit := false

	if p.at(lexer.Indent) && p.peek(1).Kind == lexer.EnvelopeStart {
		p.advance()
	}
	if p.at(lexer.EnvelopeStart) {
		doc.Name = p.advance().Value
		explicit = true
		if err := p.endLine(); err != nil {
			return nil, err
		}
	} else {
		doc.Name = ast.InferredName
		p.note(diag.WarnEnvelope, "", "==="+ast.InferredName+"===", p.current())
	}

	p.skipBlank()
	if p.at(lexer.Identifier) && p.current().Value == ast.MetaKey {
		if p.peek(1).Kind != lexer.Block {
			return nil, p.errorf(diag.ErrUnclassified, "META is reserved for the metadata block; write META: with indented fields")
		}
		if err := p.parseMeta(doc); err != nil {
			return nil, err
		}
	}

	p.skipBlank()
	if p.at(lexer.Separator) {
		doc.HasSeparator = true
		p.advance()
		if err := p.endLine(); err != nil {
			return nil, err
		}
	}

	sections, err := p.parseSections(0)
	if err != nil {
		return nil, err
	}
	doc.Sections = sections

	p.skipBlank()
	if p.at(lexer.Indent) && p.peek(1).Kind == lexer.EnvelopeEnd {
		p.advance()
	}
	if p.at(lexer.EnvelopeEnd) {
		p.advance()
		if err := p.endLine(); err != nil {
			return nil, err
		}
	} else if explicit {
		p.note(diag.WarnEnvelope, "", "===END===", p.current())
	}
	return doc, nil
}

func (p *parser) parseMeta(doc *ast.Document) error {
	p.advance() // META
	p.advance() // :
	if !isLineEnd(p.current().Kind) {
		return p.errorf(diag.ErrAmbiguousColon, "META: must be followed by indented KEY::value lines")
	}
	if err := p.endLine(); err != nil {
		return err
	}
	children, err := p.parseChildren(0)
	if err != nil {
		return err
	}
	for _, s := range children {
		v, err := metaValue(s)
		if err != nil {
			return err
		}
		if _, dup := doc.Meta.Get(s.SectionKey()); dup {
			pos := s.Position()
			return &Error{Code: diag.ErrUnclassified, Message: fmt.Sprintf("duplicate META field %s", s.SectionKey()), Line: pos.Line, Column: pos.Column}
		}
		doc.Meta.Set(s.SectionKey(), v)
	}
	return nil
}

// metaValue folds a metadata section into a value: nested blocks become
// inline maps.
func metaValue(s ast.Section) (ast.Value, error) {
	switch n := s.(type) {
	case *ast.Assignment:
		return n.Value, nil
	case *ast.Block:
		m := ast.InlineMap{}
		for _, child := range n.Children {
			v, err := metaValue(child)
			if err != nil {
				return nil, err
			}
			m = append(m, ast.Entry{Key: child.SectionKey(), Value: v})
		}
		return m, nil
	default:
		pos := s.Position()
		return nil, &Error{Code: diag.ErrUnclassified, Message: "section markers are not allowed inside META", Line: pos.Line, Column: pos.Column}
	}
}

// parseSections reads sibling sections at exactly indent spaces.
func (p *parser) parseSections(indent int) ([]ast.Section, error) {
	var sections []ast.Section
	for {
		p.skipBlank()
		width, head := p.lineHead()
		if isDocumentEnd(head.Kind) {
			return sections, nil
		}
		if width < indent {
			return sections, nil
		}
		if width > indent {
			return nil, &Error{
				Code:    diag.ErrLexical,
				Message: fmt.Sprintf("unexpected indentation of %d spaces; expected %d", width, indent),
				Line:    head.Line,
				Column:  head.Column,
			}
		}
		if p.at(lexer.Indent) {
			p.advance()
		}
		if head.Kind == lexer.Separator {
			return nil, p.errorf(diag.ErrUnclassified, "separator --- must directly follow the META block")
		}

		s, err := p.parseSection(indent)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
}

// parseChildren reads the indented body of a block whose key sits at
// parentIndent. An empty body is allowed.
func (p *parser) parseChildren(parentIndent int) ([]ast.Section, error) {
	p.skipBlank()
	width, head := p.lineHead()
	if isDocumentEnd(head.Kind) || width <= parentIndent {
		return nil, nil
	}
	if width%2 != 0 {
		return nil, &Error{
			Code:    diag.ErrLexical,
			Message: fmt.Sprintf("indentation of %d spaces is not a multiple of two", width),
			Line:    head.Line,
			Column:  head.Column,
		}
	}
	if width-parentIndent != 2 {
		p.note(diag.WarnIndentation, strings.Repeat(" ", width-parentIndent), "  ", head)
	}
	return p.parseSections(width)
}

func (p *parser) parseSection(indent int) (ast.Section, error) {
	t := p.current()
	switch t.Kind {
	case lexer.Section:
		return p.parseDivision(indent)
	case lexer.Identifier:
	default:
		return nil, p.errorf(diag.ErrUnclassified, "expected a key, found %s %q", t.Kind, t.Value)
	}

	key := p.advance()
	pos := ast.Position{Line: key.Line, Column: key.Column}

	switch p.current().Kind {
	case lexer.Assign:
		if key.Value == ast.MetaKey {
			return nil, &Error{Code: diag.ErrUnclassified, Message: "META is reserved for the metadata block and cannot be assigned", Line: key.Line, Column: key.Column}
		}
		p.advance()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := p.endLine(); err != nil {
			return nil, err
		}
		return &ast.Assignment{Key: key.Value, Value: v, Pos: pos}, nil

	case lexer.Block:
		colon := p.advance()
		if !isLineEnd(p.current().Kind) {
			return nil, &Error{
				Code:    diag.ErrAmbiguousColon,
				Message: fmt.Sprintf("single colon followed by a value; write %s::%s for an assignment or move the value to an indented line", key.Value, p.current().Value),
				Line:    colon.Line,
				Column:  colon.Column,
			}
		}
		if key.Value == ast.MetaKey {
			return nil, &Error{Code: diag.ErrUnclassified, Message: "META block must come before the body", Line: key.Line, Column: key.Column}
		}
		if err := p.endLine(); err != nil {
			return nil, err
		}
		children, err := p.parseChildren(indent)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Key: key.Value, Children: children, Pos: pos}, nil
	}

	if i := strings.Index(key.Value, ":"); i > 0 && isLineEnd(p.current().Kind) {
		return nil, &Error{
			Code:    diag.ErrAmbiguousColon,
			Message: fmt.Sprintf("single colon followed by a value; write %s::%s", key.Value[:i], key.Value[i+1:]),
			Line:    key.Line,
			Column:  key.Column + i,
		}
	}
	return nil, p.errorf(diag.ErrUnclassified, "expected '::' or ':' after %s", key.Value)
}

// parseDivision reads §ID::NAME followed by indented children.
func (p *parser) parseDivision(indent int) (ast.Section, error) {
	marker := p.advance()
	id := p.current()
	if id.Kind != lexer.Identifier && id.Kind != lexer.Number {
		return nil, p.errorf(diag.ErrUnclassified, "expected a section id after §")
	}
	p.advance()
	if _, err := p.expect(lexer.Assign); err != nil {
		return nil, err
	}
	div := &ast.Division{ID: id.Value, Pos: ast.Position{Line: marker.Line, Column: marker.Column}}
	if p.at(lexer.Identifier) || p.at(lexer.String) {
		div.Name = p.advance().Value
	}
	if err := p.endLine(); err != nil {
		return nil, err
	}
	children, err := p.parseChildren(indent)
	if err != nil {
		return nil, err
	}
	div.Children = children
	return div, nil
}
