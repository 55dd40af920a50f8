package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

// ParseYAML compiles a YAML schema definition.
func ParseYAML(data []byte) (*Schema, error) {
	var def definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	return compile(def)
}

// ParseCUE compiles a CUE schema definition. filename is used only for
// error positions.
func ParseCUE(data []byte, filename string) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	var def definition
	if err := v.Decode(&def); err != nil {
		return nil, formatCUEError(err)
	}
	s, err := compile(def)
	if err != nil {
		if ce, ok := err.(*CompileError); ok && !ce.Pos.IsValid() {
			ce.Pos = v.Pos()
		}
		return nil, err
	}
	return s, nil
}

// LoadFile reads a schema definition, choosing the format by extension.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	var s *Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = ParseYAML(data)
	case ".cue":
		s, err = ParseCUE(data, path)
	default:
		return nil, fmt.Errorf("schema %s: unsupported extension", path)
	}
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// IsSchemaFile reports whether path has a schema definition extension.
func IsSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: "cue", Message: err.Error()}
	}
	first := errs[0]
	ce := &CompileError{Field: "cue", Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
