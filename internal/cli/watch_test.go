package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/octave/internal/metrics"
	"github.com/roach88/octave/internal/testutil"
	"github.com/roach88/octave/internal/watch"
)

func newTestWatcher(t *testing.T, schemaDir string) (*watcher, *bytes.Buffer) {
	t.Helper()
	opts := projectOptions(t, "text")
	opts.Config.Schemas.Dirs = []string{schemaDir}

	sess, err := opts.openSession(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	out := &bytes.Buffer{}
	return &watcher{
		opts:       &WatchOptions{RootOptions: opts},
		sess:       sess,
		formatter:  &OutputFormatter{Format: "text", Writer: out},
		schemaDirs: absPaths(opts.Config.Schemas.Dirs),
		documents:  watch.Extensions(opts.Config.Create.AllowedExtensions...),
	}, out
}

func TestWatcherMatch(t *testing.T) {
	schemaDir := t.TempDir()
	w, _ := newTestWatcher(t, schemaDir)

	assert.True(t, w.match("/docs/status.oct.md"))
	assert.True(t, w.match(filepath.Join(schemaDir, "project.yaml")))
	assert.True(t, w.match(filepath.Join(schemaDir, "project.cue")))
	assert.False(t, w.match("/docs/vectors.yaml"))
	assert.False(t, w.match(filepath.Join(schemaDir, "nested", "project.yaml")))
	assert.False(t, w.match("/docs/notes.txt"))
}

func TestWatcherValidatesChangedDocument(t *testing.T) {
	w, out := newTestWatcher(t, t.TempDir())
	ctx := context.Background()

	good := writeDoc(t, "good.oct.md", "===DOC===\nK::v\n===END===\n")
	w.changed(ctx, good)
	assert.Contains(t, out.String(), "✓ "+good)

	bad := writeDoc(t, "bad.oct.md", "KEY: value\n")
	w.changed(ctx, bad)
	assert.Contains(t, out.String(), "✗ "+bad)
	assert.Contains(t, out.String(), "E001")

	out.Reset()
	w.changed(ctx, filepath.Join(t.TempDir(), "removed.oct.md"))
	assert.Empty(t, out.String())
}

func TestWatcherReloadsSchemas(t *testing.T) {
	schemaDir := t.TempDir()
	w, out := newTestWatcher(t, schemaDir)
	ctx := context.Background()

	doc := "===P===\nMETA:\n  TYPE::PROJECT\n  VERSION::\"1.0\"\n  STATUS::ACTIVE\n---\nCONFIG:\n  TIMEOUT::500\n===END===\n"
	path := writeDoc(t, "status.oct.md", doc)

	w.changed(ctx, path)
	assert.Contains(t, out.String(), "✓ "+path, "no PROJECT schema yet")

	schemaPath := filepath.Join(schemaDir, "project.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(testutil.ProjectSchemaYAML), 0644))
	w.changed(ctx, schemaPath)
	_, ok := w.sess.repo.Get("PROJECT")
	require.True(t, ok)

	out.Reset()
	w.changed(ctx, path)
	assert.Contains(t, out.String(), "✗ "+path)
	assert.Contains(t, out.String(), "E011")
}

func TestMetricsMux(t *testing.T) {
	collector := metrics.NewCollector(nil)
	collector.ObserveOperation("validate", metrics.ResultOK, time.Millisecond)

	srv := httptest.NewServer(metricsMux(collector))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `octave_operations_total{operation="validate",result="ok"} 1`)
}
