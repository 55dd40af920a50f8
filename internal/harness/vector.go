package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/projector"
)

// Vector is one conformance case.
type Vector struct {
	// Name uniquely identifies this vector and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this vector validates.
	Description string `yaml:"description"`

	// Schemas lists schema files to load before running. Paths are
	// relative to the vector file.
	Schemas []string `yaml:"schemas,omitempty"`

	// Schema selects a registered schema. Empty lets META.TYPE decide.
	Schema string `yaml:"schema,omitempty"`

	Strict bool `yaml:"strict,omitempty"`
	Fix    bool `yaml:"fix,omitempty"`

	// Input is the lenient OCTAVE text to ingest.
	Input string `yaml:"input"`

	// Mode and Format request a projection of the result.
	Mode   string `yaml:"mode,omitempty"`
	Format string `yaml:"format,omitempty"`

	Expect Expect `yaml:"expect"`

	// File is the path the vector was loaded from.
	File string `yaml:"-"`
}

// Expect lists the checked outcomes. Unset fields are not checked.
type Expect struct {
	// Canonical is the exact canonical text.
	Canonical *string `yaml:"canonical,omitempty"`

	// Error is the code of the fatal lexer or parser error.
	Error string `yaml:"error,omitempty"`

	// Codes are the validation error codes left after repair, in order.
	Codes []string `yaml:"codes,omitempty"`

	// Repairs is the number of applied repair-tier fixes.
	Repairs *int `yaml:"repairs,omitempty"`

	// Normalizations lists warning codes the reader must report.
	Normalizations []string `yaml:"normalizations,omitempty"`

	// Output is the exact projected output.
	Output *string `yaml:"output,omitempty"`

	Lossy   *bool    `yaml:"lossy,omitempty"`
	Omitted []string `yaml:"omitted,omitempty"`
}

// SchemaNotFoundError is returned when a vector references a schema file
// that does not exist.
type SchemaNotFoundError struct {
	Vector       string
	SchemaPath   string
	ResolvedPath string
}

// Error implements the error interface.
func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("vector %q references schema file %q which does not exist (resolved to: %s)",
		e.Vector, e.SchemaPath, e.ResolvedPath)
}

// LoadVectors reads every vector in a YAML file. Unknown fields are
// rejected and schema paths are resolved relative to the file.
func LoadVectors(path string) ([]*Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector file: %w", err)
	}

	var vectors []*Vector
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	for {
		var v Vector
		err := decoder.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
		v.File = path
		if err := resolveSchemas(&v, filepath.Dir(path)); err != nil {
			return nil, err
		}
		if err := validateVector(&v); err != nil {
			return nil, fmt.Errorf("%s: invalid vector: %w", path, err)
		}
		vectors = append(vectors, &v)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%s: no vectors", path)
	}
	return vectors, nil
}

// LoadDir reads every *.yaml and *.yml vector file under dir, in file
// name order. Vector names must be unique across the directory.
func LoadDir(dir string) ([]*Vector, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == "schemas" {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)

	seen := make(map[string]string)
	var all []*Vector
	for _, f := range files {
		vs, err := LoadVectors(f)
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			if prev, ok := seen[v.Name]; ok {
				return nil, fmt.Errorf("duplicate vector name %q in %s and %s", v.Name, prev, f)
			}
			seen[v.Name] = f
			all = append(all, v)
		}
	}
	return all, nil
}

func resolveSchemas(v *Vector, base string) error {
	for i, p := range v.Schemas {
		resolved := p
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(base, resolved)
		}
		if _, err := os.Stat(resolved); errors.Is(err, os.ErrNotExist) {
			return &SchemaNotFoundError{Vector: v.Name, SchemaPath: p, ResolvedPath: resolved}
		}
		v.Schemas[i] = resolved
	}
	return nil
}

// validateVector checks that required fields are present and valid.
func validateVector(v *Vector) error {
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	if v.Description == "" {
		return fmt.Errorf("%s: description is required", v.Name)
	}
	if v.Input == "" {
		return fmt.Errorf("%s: input is required", v.Name)
	}
	if v.Expect.Error != "" && (v.Expect.Canonical != nil || len(v.Expect.Codes) > 0 || v.Expect.Output != nil) {
		return fmt.Errorf("%s: expect.error excludes other expectations", v.Name)
	}
	for _, code := range append(append([]string{v.Expect.Error}, v.Expect.Codes...), v.Expect.Normalizations...) {
		if code != "" && diag.Describe(code) == "" {
			return fmt.Errorf("%s: unknown code %q", v.Name, code)
		}
	}
	if _, err := projector.ParseMode(v.Mode); err != nil {
		return fmt.Errorf("%s: %w", v.Name, err)
	}
	if _, err := projector.ParseFormat(v.Format); err != nil {
		return fmt.Errorf("%s: %w", v.Name, err)
	}
	if v.Mode == "" && (v.Expect.Output != nil || v.Expect.Lossy != nil || v.Expect.Omitted != nil) {
		return fmt.Errorf("%s: projection expectations need a mode", v.Name)
	}
	return nil
}
