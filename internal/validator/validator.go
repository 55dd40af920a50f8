// Package validator checks parsed documents against schema descriptors.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/schema"
)

// ErrUnknownSchema is returned by SelectSchema for an explicit selector
// that names no registered schema.
var ErrUnknownSchema = errors.New("unknown schema")

// targetMarker introduces an explicit routing target.
const targetMarker = "→§"

// Validate checks doc against s and returns every error found. In strict
// mode fields the schema does not declare are E007; otherwise they are
// accepted. The document is never modified.
func Validate(doc *ast.Document, s *schema.Schema, strict bool) []diag.ValidationError {
	if doc == nil || s == nil {
		return nil
	}
	var errs []diag.ValidationError

	for _, f := range s.Meta {
		v, _ := doc.Meta.Get(f.Name)
		errs = append(errs, checkField(f, v, []string{ast.MetaKey, f.Name})...)
	}
	if strict {
		known := s.MetaNames()
		for _, key := range doc.Meta.Keys() {
			if _, ok := s.MetaField(key); !ok {
				errs = append(errs, unknownField([]string{ast.MetaKey, key}, key, known))
			}
		}
	}

	for _, f := range s.Body {
		path := f.Path()
		if v, ok := ast.Lookup(doc, path); ok {
			errs = append(errs, checkField(f, v, path)...)
			continue
		}
		if section, ok := ast.FindSection(doc.Sections, path); ok {
			errs = append(errs, checkSection(f, section, path)...)
			continue
		}
		errs = append(errs, checkField(f, nil, path)...)
	}
	if strict && len(s.Body) > 0 {
		errs = append(errs, unknownSections(doc.Sections, nil, s)...)
	}
	return errs
}

// checkField validates one value. A nil v means the field is absent.
func checkField(f schema.Field, v ast.Value, path []string) []diag.ValidationError {
	if isAbsent(v) {
		if f.Required {
			e := diag.New(diag.ErrMissingRequired, path, "REQ", "required field is missing")
			e.Expected = valueOrType(f.Type)
			e.Got = "null"
			return []diag.ValidationError{e}
		}
		return nil
	}

	if f.Type != "" {
		if got := ast.TypeName(v); got != f.Type {
			e := diag.New(diag.ErrTypeMismatch, path, "TYPE("+f.Type+")",
				fmt.Sprintf("expected %s, got %s", f.Type, got))
			e.Expected = f.Type
			e.Got = ast.Text(v)
			return []diag.ValidationError{e}
		}
	}

	if res := f.Constraints.Evaluate(v, path); !res.Valid() {
		return res.Errors
	}

	if f.Target && !strings.Contains(ast.Text(v), targetMarker) {
		e := diag.New(diag.ErrTargetInference, path, "TARGET",
			"routing target must be explicit ("+targetMarker+"NAME)")
		e.Expected = targetMarker + "NAME"
		e.Got = ast.Text(v)
		return []diag.ValidationError{e}
	}
	return nil
}

// checkSection validates a field whose path lands on a block or division.
func checkSection(f schema.Field, s ast.Section, path []string) []diag.ValidationError {
	if f.Type == "" || f.Type == ast.TypeMap {
		return nil
	}
	e := diag.New(diag.ErrTypeMismatch, path, "TYPE("+f.Type+")",
		fmt.Sprintf("expected %s, got block %s", f.Type, s.SectionKey()))
	e.Expected = f.Type
	e.Got = ast.TypeMap
	return []diag.ValidationError{e}
}

// unknownSections reports body sections no declared field covers. A
// section is covered when a field names it or a field lies beneath it.
func unknownSections(sections []ast.Section, prefix []string, s *schema.Schema) []diag.ValidationError {
	var errs []diag.ValidationError
	known := s.BodyNames()
	for _, sec := range sections {
		path := append(append([]string(nil), prefix...), sec.SectionKey())
		name := strings.Join(path, ".")
		if _, ok := s.BodyField(name); ok {
			continue
		}
		if hasPrefix(known, name+".") {
			errs = append(errs, unknownSections(ast.Children(sec), path, s)...)
			continue
		}
		errs = append(errs, unknownField(path, name, known))
	}
	return errs
}

func unknownField(path []string, name string, known []string) diag.ValidationError {
	e := diag.New(diag.ErrTypeMismatch, path, "STRICT", "unknown field "+name)
	e.Suggestion = diag.Suggest(name, known)
	return e
}

func hasPrefix(names []string, prefix string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

func isAbsent(v ast.Value) bool {
	switch v.(type) {
	case nil, ast.Null:
		return true
	}
	return false
}

func valueOrType(t string) string {
	if t == "" {
		return "value"
	}
	return t
}

// SelectSchema picks the schema for docs. An explicit selector wins.
// Without one, a single document's META.TYPE names the schema, and
// several documents are ambiguous (E002). A nil schema with a nil error
// means nothing selects one.
func SelectSchema(docs []*ast.Document, selector string, repo *schema.Repository) (*schema.Schema, error) {
	if selector != "" {
		s, ok := repo.Get(selector)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownSchema, selector)
		}
		return s, nil
	}
	switch len(docs) {
	case 0:
		return nil, nil
	case 1:
	default:
		e := diag.New(diag.ErrMultipleDocuments, nil, "",
			fmt.Sprintf("%d documents found; an explicit schema selector is required", len(docs)))
		return nil, e
	}
	typ, ok := docs[0].Meta.Get("TYPE")
	if !ok {
		return nil, nil
	}
	name, ok := typ.(ast.String)
	if !ok {
		return nil, nil
	}
	s, ok := repo.Get(string(name))
	if !ok {
		return nil, nil
	}
	return s, nil
}
