package schema

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/constraint"
)

// Schema describes the fields a document type declares.
type Schema struct {
	Name    string
	Version string
	Meta    []Field
	Body    []Field
}

// Field describes one declared field.
type Field struct {
	Name        string
	Type        string // one of the ast.Type* names, or "" for any
	Required    bool
	Constraints *constraint.Chain
	// Target fields must name an explicit routing target (→§NAME).
	Target bool
}

// Path returns the field name split into lookup segments.
func (f Field) Path() []string {
	return strings.Split(f.Name, ".")
}

// MetaField returns the META field called name.
func (s *Schema) MetaField(name string) (Field, bool) {
	return find(s.Meta, name)
}

// BodyField returns the body field at the dotted path name.
func (s *Schema) BodyField(name string) (Field, bool) {
	return find(s.Body, name)
}

// MetaNames lists declared META field names in declaration order.
func (s *Schema) MetaNames() []string {
	return names(s.Meta)
}

// BodyNames lists declared body field paths in declaration order.
func (s *Schema) BodyNames() []string {
	return names(s.Body)
}

func find(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

// definition is the on-disk shape shared by YAML and CUE schema files.
type definition struct {
	Name    string     `yaml:"name" json:"name"`
	Version string     `yaml:"version" json:"version"`
	Meta    []fieldDef `yaml:"meta" json:"meta"`
	Body    []fieldDef `yaml:"body" json:"body"`
}

type fieldDef struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Required    bool   `yaml:"required" json:"required"`
	Constraints string `yaml:"constraints" json:"constraints"`
	Target      bool   `yaml:"target" json:"target"`
}

// CompileError reports an invalid schema definition.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var fieldTypes = map[string]bool{
	"":              true,
	ast.TypeString:  true,
	ast.TypeNumber:  true,
	ast.TypeBoolean: true,
	ast.TypeList:    true,
	ast.TypeMap:     true,
}

// compile turns a raw definition into a Schema, parsing every constraint
// chain.
func compile(def definition) (*Schema, error) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return nil, &CompileError{Field: "name", Message: "schema name is required"}
	}
	s := &Schema{Name: name, Version: def.Version}

	var err error
	if s.Meta, err = compileFields("meta", def.Meta); err != nil {
		return nil, err
	}
	if s.Body, err = compileFields("body", def.Body); err != nil {
		return nil, err
	}
	return s, nil
}

func compileFields(section string, defs []fieldDef) ([]Field, error) {
	fields := make([]Field, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		where := fmt.Sprintf("%s[%d]", section, i)
		if d.Name == "" {
			return nil, &CompileError{Field: where, Message: "field name is required"}
		}
		if seen[d.Name] {
			return nil, &CompileError{Field: where, Message: "duplicate field " + d.Name}
		}
		seen[d.Name] = true

		typ := strings.ToUpper(d.Type)
		if !fieldTypes[typ] {
			return nil, &CompileError{Field: where + ".type", Message: fmt.Sprintf("unknown type %q", d.Type)}
		}
		chain, err := constraint.ParseChain(d.Constraints)
		if err != nil {
			return nil, &CompileError{Field: where + ".constraints", Message: err.Error()}
		}
		if conflicts := chain.Conflicts(); len(conflicts) > 0 {
			return nil, &CompileError{Field: where + ".constraints", Message: strings.Join(conflicts, "; ")}
		}
		fields = append(fields, Field{
			Name:        d.Name,
			Type:        typ,
			Required:    d.Required || chain.Required(),
			Constraints: chain,
			Target:      d.Target,
		})
	}
	return fields, nil
}
