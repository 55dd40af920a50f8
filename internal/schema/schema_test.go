package schema

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/octave/internal/ast"
)

func TestLoadFile_YAML(t *testing.T) {
	s, err := LoadFile("testdata/project.yaml")
	require.NoError(t, err)

	assert.Equal(t, "PROJECT", s.Name)
	assert.Equal(t, "1.2", s.Version)
	assert.Equal(t, []string{"TYPE", "STATUS", "OWNER"}, s.MetaNames())
	assert.Equal(t, []string{"CONFIG.TIMEOUT", "ROUTE"}, s.BodyNames())

	status, ok := s.MetaField("STATUS")
	require.True(t, ok)
	assert.True(t, status.Required, "REQ in the chain marks the field required")
	assert.Equal(t, ast.TypeString, status.Type)
	assert.Equal(t, "REQ∧ENUM[ACTIVE,ARCHIVED,PAUSED]", status.Constraints.String())

	owner, ok := s.MetaField("OWNER")
	require.True(t, ok)
	assert.False(t, owner.Required)
	assert.Zero(t, owner.Constraints.Len())

	timeout, ok := s.BodyField("CONFIG.TIMEOUT")
	require.True(t, ok)
	assert.Equal(t, []string{"CONFIG", "TIMEOUT"}, timeout.Path())

	route, ok := s.BodyField("ROUTE")
	require.True(t, ok)
	assert.True(t, route.Target)
	assert.Empty(t, route.Type)
}

func TestLoadFile_CUE(t *testing.T) {
	s, err := LoadFile("testdata/release.cue")
	require.NoError(t, err)

	assert.Equal(t, "RELEASE", s.Name)
	assert.Equal(t, "2.0", s.Version)
	assert.Equal(t, []string{"TYPE", "DATE"}, s.MetaNames())
	notes, ok := s.BodyField("NOTES")
	require.True(t, ok)
	assert.Equal(t, ast.TypeList, notes.Type)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"missing name", "version: '1'\n", "name"},
		{"unnamed field", "name: X\nmeta:\n  - type: STRING\n", "meta[0]"},
		{"duplicate field", "name: X\nmeta:\n  - name: A\n  - name: A\n", "meta[1]"},
		{"bad type", "name: X\nbody:\n  - name: A\n    type: FLOAT\n", "body[0].type"},
		{"bad chain", "name: X\nmeta:\n  - name: A\n    constraints: 'RANGE[9,1]'\n", "meta[0].constraints"},
		{"conflicting chain", "name: X\nmeta:\n  - name: A\n    constraints: 'REQ∧OPT'\n", "meta[0].constraints"},
		{"constant outside enum", "name: X\nbody:\n  - name: S\n    constraints: 'ENUM[ACTIVE,ARCHIVED]∧CONST[ACT]'\n", "body[0].constraints"},
		{"unknown key", "name: X\nfields: []\n", "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.yaml))
			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestParseCUE_ReportsPosition(t *testing.T) {
	_, err := ParseCUE([]byte("name: \"X\"\nmeta: [{name: 1}]\n"), "bad.cue")
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "cue", ce.Field)

	_, err = ParseCUE([]byte("name: \"X\"\nmeta: [{name: \"A\", type: \"FLOAT\"}]\n"), "bad.cue")
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "meta[0].type", ce.Field)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestBuiltins(t *testing.T) {
	r := NewRepository()
	meta, ok := r.Get("META")
	require.True(t, ok)

	typ, ok := meta.MetaField("TYPE")
	require.True(t, ok)
	assert.True(t, typ.Required)
	version, ok := meta.MetaField("VERSION")
	require.True(t, ok)
	assert.True(t, version.Required)

	status, ok := meta.MetaField("STATUS")
	require.True(t, ok)
	assert.False(t, status.Required)
	assert.True(t, status.Constraints.Evaluate(ast.String("DRAFT"), []string{"META", "STATUS"}).Valid())
	assert.False(t, status.Constraints.Evaluate(ast.String("BOGUS"), []string{"META", "STATUS"}).Valid())
}

func TestRepository_LoadDir(t *testing.T) {
	dir := t.TempDir()
	copyFile(t, "testdata/project.yaml", filepath.Join(dir, "project.yaml"))
	copyFile(t, "testdata/release.cue", filepath.Join(dir, "release.cue"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: [\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# ignore"), 0o644))

	r := NewRepository()
	n, errs := r.LoadDir(dir)
	assert.Equal(t, 2, n)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "broken.yml")
	assert.Equal(t, []string{"META", "PROJECT", "RELEASE"}, r.Names())

	_, errs = r.LoadDir(filepath.Join(dir, "missing"))
	assert.Len(t, errs, 1)
}

func TestRepository_ConcurrentAccess(t *testing.T) {
	r := NewRepository()
	s, err := LoadFile("testdata/project.yaml")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Register(s)
		}()
		go func() {
			defer wg.Done()
			_, _ = r.Get("PROJECT")
			_ = r.Names()
		}()
	}
	wg.Wait()
	_, ok := r.Get("PROJECT")
	assert.True(t, ok)
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}
