package schema

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Repository holds schemas by name. It is safe for concurrent use; the
// watcher reloads directories while validations read.
type Repository struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRepository returns a repository preloaded with the builtin schemas.
func NewRepository() *Repository {
	r := &Repository{schemas: make(map[string]*Schema)}
	for _, s := range Builtins() {
		r.schemas[s.Name] = s
	}
	return r
}

// Builtins returns freshly compiled builtin schemas.
func Builtins() []*Schema {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		panic(fmt.Sprintf("schema: builtin dir: %v", err))
	}
	out := make([]*Schema, 0, len(entries))
	for _, e := range entries {
		data, err := builtinFS.ReadFile("builtin/" + e.Name())
		if err != nil {
			panic(fmt.Sprintf("schema: builtin %s: %v", e.Name(), err))
		}
		s, err := ParseYAML(data)
		if err != nil {
			panic(fmt.Sprintf("schema: builtin %s: %v", e.Name(), err))
		}
		out = append(out, s)
	}
	return out
}

// Register adds or replaces a schema.
func (r *Repository) Register(s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Name] = s
}

// Get returns the schema called name.
func (r *Repository) Get(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns the registered schema names, sorted.
func (r *Repository) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDir loads every schema file directly under dir. Files that fail to
// load are reported and skipped; the rest are registered together.
func (r *Repository) LoadDir(dir string) (int, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, []error{fmt.Errorf("read schema dir: %w", err)}
	}

	var (
		loaded []*Schema
		errs   []error
	)
	for _, e := range entries {
		if e.IsDir() || !IsSchemaFile(e.Name()) {
			continue
		}
		s, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		loaded = append(loaded, s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range loaded {
		r.schemas[s.Name] = s
	}
	return len(loaded), errs
}
