package projector

import (
	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/constraint"
	"github.com/roach88/octave/internal/schema"
)

// TemplateName is the envelope name of generated templates.
const TemplateName = "TEMPLATE"

// Template builds a skeleton document with a placeholder for every field
// s declares. META.TYPE defaults to the schema name and META.VERSION to
// the schema version; constant fields take their constant.
func Template(s *schema.Schema) *ast.Document {
	doc := &ast.Document{Name: TemplateName, HasSeparator: len(s.Body) > 0}
	for _, f := range s.Meta {
		doc.Meta.Set(f.Name, metaPlaceholder(s, f))
	}
	for _, f := range s.Body {
		placeField(doc, f.Path(), placeholder(f))
	}
	return doc
}

func metaPlaceholder(s *schema.Schema, f schema.Field) ast.Value {
	if v, ok := constValue(f); ok {
		return v
	}
	switch f.Name {
	case "TYPE":
		return ast.String(s.Name)
	case "VERSION":
		if s.Version != "" {
			return ast.String(s.Version)
		}
	}
	return placeholder(f)
}

func placeholder(f schema.Field) ast.Value {
	if v, ok := constValue(f); ok {
		return v
	}
	switch f.Type {
	case ast.TypeString:
		return ast.String("")
	case ast.TypeNumber:
		return ast.Int(0)
	case ast.TypeBoolean:
		return ast.Bool(false)
	case ast.TypeList:
		return ast.List{}
	}
	return ast.Null{}
}

func constValue(f schema.Field) (ast.Value, bool) {
	for _, c := range f.Constraints.Items() {
		if k, ok := c.(constraint.Const); ok {
			return k.Value, true
		}
	}
	return nil, false
}

// placeField stores v at path, creating intermediate blocks.
func placeField(doc *ast.Document, path []string, v ast.Value) {
	sections := &doc.Sections
	for _, key := range path[:len(path)-1] {
		var block *ast.Block
		for _, s := range *sections {
			if b, ok := s.(*ast.Block); ok && b.Key == key {
				block = b
				break
			}
		}
		if block == nil {
			block = &ast.Block{Key: key}
			*sections = append(*sections, block)
		}
		sections = &block.Children
	}
	*sections = append(*sections, &ast.Assignment{Key: path[len(path)-1], Value: v})
}
