package tools

import (
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/octave/internal/config"
	"github.com/roach88/octave/internal/metrics"
	"github.com/roach88/octave/internal/schema"
	"github.com/roach88/octave/internal/store"
	"github.com/roach88/octave/internal/validator"
)

var (
	// ErrHashMismatch means the file changed since the caller read it.
	ErrHashMismatch = errors.New("content hash mismatch")

	// ErrPathNotAllowed means a write target failed the path checks.
	ErrPathNotAllowed = errors.New("path not allowed")

	// ErrMultipleDocuments means an operation that takes one document got several.
	ErrMultipleDocuments = errors.New("multiple documents")

	// ErrUnknownSchema means a schema selector names no registered schema.
	ErrUnknownSchema = validator.ErrUnknownSchema

	// ErrInvalidDocument means the document still has validation errors
	// after repair, so nothing was written.
	ErrInvalidDocument = errors.New("document has validation errors")

	// ErrNoStore means the operation needs the revision ledger and none is
	// configured.
	ErrNoStore = errors.New("revision store not configured")
)

// Service runs document operations against a schema repository.
type Service struct {
	repo       *schema.Repository
	logger     *slog.Logger
	metrics    *metrics.Collector
	store      *store.Store
	extensions []string
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMetrics records operation and stage metrics in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) {
		s.metrics = c
	}
}

// WithStore records create and amend revisions in st.
func WithStore(st *store.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithAllowedExtensions replaces the write-target extension allow-list.
func WithAllowedExtensions(exts []string) Option {
	return func(s *Service) {
		s.extensions = append([]string(nil), exts...)
	}
}

// WithClock sets the time source used for stage and operation timings.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service. A nil repo means builtin schemas only.
func New(repo *schema.Repository, opts ...Option) *Service {
	if repo == nil {
		repo = schema.NewRepository()
	}
	s := &Service{
		repo:       repo,
		logger:     slog.Default(),
		extensions: append([]string(nil), config.DefaultAllowedExtensions...),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the schema repository.
func (s *Service) Repository() *schema.Repository {
	return s.repo
}

// finish logs and measures one operation.
func (s *Service) finish(op string, start time.Time, err error, invalid bool, attrs ...any) {
	result := metrics.ResultOK
	switch {
	case invalid:
		result = metrics.ResultInvalid
	case err != nil:
		result = metrics.ResultError
	}
	s.metrics.ObserveOperation(op, result, s.now().Sub(start))

	attrs = append([]any{"op", op, "result", result}, attrs...)
	if err != nil && !invalid {
		s.logger.Error("operation failed", append(attrs, "error", err)...)
		return
	}
	s.logger.Info("operation completed", attrs...)
}
