package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/octave/internal/metrics"
	"github.com/roach88/octave/internal/schema"
	"github.com/roach88/octave/internal/tools"
	"github.com/roach88/octave/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Schema   string
	Strict   bool
	Debounce time.Duration
	Initial  bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Re-validate documents as they change",
		Long: `Watch directories and validate each document when it changes.

Schema directories from the configuration are watched too; a changed
schema file is reloaded before the next validation. When metrics.addr
is configured, Prometheus metrics are served on /metrics.

Runs until interrupted.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema name (default: META.TYPE)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject fields the schema does not declare")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "quiet period before re-validating (default: watch.debounce)")
	cmd.Flags().BoolVar(&opts.Initial, "initial", true, "validate every document once at startup")

	return cmd
}

// watcher validates changed documents and reloads changed schemas.
type watcher struct {
	opts       *WatchOptions
	sess       *session
	formatter  *OutputFormatter
	strict     bool
	schemaDirs []string
	documents  func(string) bool
}

func runWatch(ctx context.Context, opts *WatchOptions, dirs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	cfg := opts.settings()
	log := opts.logger()

	var extra []tools.Option
	if cfg.Metrics.Addr != "" {
		collector := metrics.NewCollector(nil)
		extra = append(extra, tools.WithMetrics(collector))
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux(collector), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("serving metrics", "addr", cfg.Metrics.Addr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	sess, err := opts.openSession(false, extra...)
	if err != nil {
		return err
	}
	defer sess.Close()

	w := &watcher{
		opts:       opts,
		sess:       sess,
		formatter:  formatter,
		strict:     boolSetting(cmd, "strict", opts.Strict, cfg.Validation.Strict),
		schemaDirs: absPaths(cfg.Schemas.Dirs),
		documents:  watch.Extensions(cfg.Create.AllowedExtensions...),
	}

	debounce := cfg.Watch.Debounce
	if opts.Debounce > 0 {
		debounce = opts.Debounce
	}
	fsw, err := watch.New(watch.Config{
		Paths:    append(append([]string(nil), dirs...), cfg.Schemas.Dirs...),
		Match:    w.match,
		Debounce: debounce,
	}, log)
	if err != nil {
		return reportError(formatter, err)
	}
	defer fsw.Close()

	if opts.Initial {
		files, err := collectFiles(dirs, w.documents)
		if err != nil {
			return reportError(formatter, err)
		}
		for _, path := range files {
			w.validate(ctx, path)
		}
	}

	return fsw.Run(ctx, func(path string) { w.changed(ctx, path) })
}

func (w *watcher) match(path string) bool {
	return w.documents(path) || w.isSchema(path)
}

// isSchema reports whether path is a schema file inside a schema dir.
func (w *watcher) isSchema(path string) bool {
	if !schema.IsSchemaFile(path) {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.schemaDirs {
		if filepath.Dir(abs) == dir {
			return true
		}
	}
	return false
}

func (w *watcher) changed(ctx context.Context, path string) {
	log := w.opts.logger()
	if w.isSchema(path) {
		n, errs := w.sess.repo.LoadDir(filepath.Dir(path))
		for _, err := range errs {
			log.Warn("schema not loaded", "path", path, "error", err)
		}
		log.Info("schemas reloaded", "dir", filepath.Dir(path), "count", n)
		return
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		log.Debug("document removed", "path", path)
		return
	}
	w.validate(ctx, path)
}

// validate checks one document and reports the outcome. Errors never stop
// the watch loop.
func (w *watcher) validate(ctx context.Context, path string) {
	res, err := w.sess.svc.Validate(ctx, tools.ValidateRequest{
		Path:   path,
		Schema: w.opts.Schema,
		Strict: w.strict,
	})
	if err != nil {
		_ = w.formatter.Error(ErrCodeGeneric, err.Error(), map[string]string{"path": path})
		return
	}

	if w.formatter.Format == "json" {
		status := "ok"
		if !res.Valid {
			status = "error"
		}
		_ = json.NewEncoder(w.formatter.Writer).Encode(CLIResponse{Status: status, Data: res})
		return
	}

	out := w.formatter.Writer
	if res.Valid {
		fmt.Fprintf(out, "%s %s\n", okMark(), path)
		return
	}
	fmt.Fprintf(out, "%s %s\n", failMark(), path)
	writeErrors(out, res.Errors)
	for _, d := range res.Documents {
		writeErrors(out, d.Errors)
	}
}

func metricsMux(c *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return mux
}

func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		}
	}
	return out
}
