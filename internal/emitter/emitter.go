package emitter

import (
	"strings"

	"github.com/roach88/octave/internal/ast"
)

const indentUnit = "  "

// Emit renders doc in canonical form. The result has no trailing newline.
func Emit(doc *ast.Document) string {
	w := &writer{}
	w.document(doc, false)
	return strings.Join(w.lines, "\n")
}

// EmitAuthoring renders the same content as Emit with blank lines after
// the metadata and around top-level blocks, for people editing by hand.
// Parsing it yields the same document as parsing Emit's output.
func EmitAuthoring(doc *ast.Document) string {
	w := &writer{}
	w.document(doc, true)
	return strings.Join(w.lines, "\n")
}

type writer struct {
	lines []string
}

func (w *writer) line(depth int, text string) {
	w.lines = append(w.lines, strings.Repeat(indentUnit, depth)+text)
}

func (w *writer) blank() {
	if n := len(w.lines); n > 0 && w.lines[n-1] != "" {
		w.lines = append(w.lines, "")
	}
}

func (w *writer) document(doc *ast.Document, spaced bool) {
	w.line(0, "==="+doc.Name+"===")

	if doc.Meta.Len() > 0 {
		w.line(0, ast.MetaKey+":")
		for _, e := range doc.Meta.Entries() {
			w.metaEntry(1, e)
		}
	}
	if doc.HasSeparator {
		w.line(0, "---")
	}
	if spaced && (doc.Meta.Len() > 0 || doc.HasSeparator) {
		w.blank()
	}

	for i, s := range doc.Sections {
		_, isAssignment := s.(*ast.Assignment)
		if spaced && i > 0 && !isAssignment {
			w.blank()
		}
		w.section(0, s)
		if spaced && !isAssignment && i < len(doc.Sections)-1 {
			w.blank()
		}
	}
	w.line(0, "===END===")
}

// metaEntry writes one metadata field. Inline maps stored in metadata came
// from nested blocks and are written back as blocks.
func (w *writer) metaEntry(depth int, e ast.Entry) {
	if m, ok := e.Value.(ast.InlineMap); ok {
		w.line(depth, e.Key+":")
		for _, child := range m {
			w.metaEntry(depth+1, child)
		}
		return
	}
	w.line(depth, e.Key+"::"+FormatValue(e.Value))
}

func (w *writer) section(depth int, s ast.Section) {
	switch n := s.(type) {
	case *ast.Assignment:
		w.line(depth, n.Key+"::"+FormatValue(n.Value))
	case *ast.Block:
		w.line(depth, n.Key+":")
		for _, child := range n.Children {
			w.section(depth+1, child)
		}
	case *ast.Division:
		label := "§" + n.ID + "::"
		if n.Name != "" {
			label += FormatString(n.Name)
		}
		w.line(depth, label)
		for _, child := range n.Children {
			w.section(depth+1, child)
		}
	}
}
