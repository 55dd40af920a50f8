package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/parser"
	"github.com/roach88/octave/internal/projector"
	"github.com/roach88/octave/internal/repair"
	"github.com/roach88/octave/internal/store"
	"github.com/roach88/octave/internal/validator"
)

// Tier names a compression tier. Ingest accepts and echoes it; no
// compression is performed.
type Tier string

const (
	TierLossless     Tier = "LOSSLESS"
	TierConservative Tier = "CONSERVATIVE"
	TierAggressive   Tier = "AGGRESSIVE"
	TierUltra        Tier = "ULTRA"
)

// Tiers lists every tier.
var Tiers = []Tier{TierLossless, TierConservative, TierAggressive, TierUltra}

// ParseTier resolves a tier name. The empty string is LOSSLESS.
func ParseTier(s string) (Tier, error) {
	if s == "" {
		return TierLossless, nil
	}
	for _, t := range Tiers {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown compression tier %q", s)
}

// IngestRequest asks for lenient text to be normalized and validated.
type IngestRequest struct {
	Content string
	Schema  string
	Tier    string
	Strict  bool
	Fix     bool

	// Verbose includes per-stage timings in the result.
	Verbose bool
}

// IngestResult is the canonical form of ingested text and what it took
// to get there.
type IngestResult struct {
	Canonical string                 `json:"canonical"`
	Hash      string                 `json:"canonical_hash"`
	Schema    string                 `json:"schema,omitempty"`
	Tier      Tier                   `json:"tier"`
	Valid     bool                   `json:"valid"`
	Errors    []diag.ValidationError `json:"errors,omitempty"`
	Repairs   repair.Log             `json:"repairs"`
	Stages    []Stage                `json:"stages,omitempty"`
}

// Ingest runs the full pipeline over req.Content. Validation errors are
// reported in the result, not as an error.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	start := s.now()
	res, err := s.ingest(req)
	attrs := []any{"schema", req.Schema}
	invalid := false
	if res != nil {
		attrs = append(attrs, "hash", res.Hash, "errors", len(res.Errors),
			"repairs", len(res.Repairs.Tier(repair.TierRepair).Applied()))
		invalid = !res.Valid
	}
	s.finish("ingest", start, err, invalid, attrs...)
	return res, err
}

func (s *Service) ingest(req IngestRequest) (*IngestResult, error) {
	tier, err := ParseTier(req.Tier)
	if err != nil {
		return nil, err
	}
	out, err := s.run(pipelineInput{
		content: req.Content,
		schema:  req.Schema,
		strict:  req.Strict,
		fix:     req.Fix,
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	res := &IngestResult{
		Canonical: out.canonical,
		Hash:      out.hash,
		Tier:      tier,
		Valid:     len(out.errors) == 0,
		Errors:    out.errors,
		Repairs:   out.log,
	}
	if res.Repairs == nil {
		res.Repairs = repair.Log{}
	}
	if out.schema != nil {
		res.Schema = out.schema.Name
	}
	if req.Verbose {
		res.Stages = out.stages
	}
	return res, nil
}

// EjectRequest asks for a projection of Content. With empty Content a
// template for Schema is produced instead.
type EjectRequest struct {
	Content string
	Schema  string
	Mode    string
	Format  string
}

// EjectResult is a rendered projection.
type EjectResult struct {
	Output        string   `json:"output"`
	Mode          string   `json:"mode"`
	Format        string   `json:"format"`
	Lossy         bool     `json:"lossy"`
	FieldsOmitted []string `json:"fields_omitted"`
}

// Eject projects a document into mode and format.
func (s *Service) Eject(ctx context.Context, req EjectRequest) (*EjectResult, error) {
	start := s.now()
	res, err := s.eject(req)
	s.finish("eject", start, err, false, "mode", req.Mode, "format", req.Format, "schema", req.Schema)
	return res, err
}

func (s *Service) eject(req EjectRequest) (*EjectResult, error) {
	mode, err := projector.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	format, err := projector.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	var doc *ast.Document
	if strings.TrimSpace(req.Content) == "" {
		if req.Schema == "" {
			return nil, errors.New("eject: a schema is required to generate a template")
		}
		sch, ok := s.repo.Get(req.Schema)
		if !ok {
			return nil, fmt.Errorf("eject: %w %q", ErrUnknownSchema, req.Schema)
		}
		doc = projector.Template(sch)
	} else {
		doc, _, err = parser.ParseString(req.Content)
		if err != nil {
			return nil, fmt.Errorf("eject: %w", err)
		}
	}

	rendered, err := projector.Render(doc, mode, format)
	if err != nil {
		return nil, fmt.Errorf("eject: %w", err)
	}
	return &EjectResult{
		Output:        rendered.Output,
		Mode:          string(mode),
		Format:        string(format),
		Lossy:         rendered.Lossy,
		FieldsOmitted: rendered.FieldsOmitted,
	}, nil
}

// ValidateRequest names a file, or carries content directly.
type ValidateRequest struct {
	Path    string
	Content string
	Schema  string
	Strict  bool
}

// DocumentReport is the validation outcome of one document in a stream.
type DocumentReport struct {
	Name   string                 `json:"name"`
	Schema string                 `json:"schema,omitempty"`
	Errors []diag.ValidationError `json:"errors"`
}

// ValidateResult is the validation outcome of a file.
type ValidateResult struct {
	Path      string                 `json:"path,omitempty"`
	Valid     bool                   `json:"valid"`
	Errors    []diag.ValidationError `json:"errors,omitempty"`
	Documents []DocumentReport       `json:"documents"`
}

// Validate checks every document in a file or content. Structural parse
// errors and E002 are reported in the result; an unknown schema selector
// and unreadable files are returned as errors.
func (s *Service) Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error) {
	start := s.now()
	res, err := s.validateRequest(req)
	attrs := []any{"path", req.Path, "schema", req.Schema}
	invalid := false
	if res != nil {
		attrs = append(attrs, "errors", res.ErrorCount())
		invalid = !res.Valid
	}
	s.finish("validate", start, err, invalid, attrs...)
	return res, err
}

func (s *Service) validateRequest(req ValidateRequest) (*ValidateResult, error) {
	content := req.Content
	if req.Path != "" && content == "" {
		data, err := os.ReadFile(req.Path)
		if err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
		content = string(data)
	}
	res := &ValidateResult{Path: req.Path, Documents: []DocumentReport{}}

	docs, _, err := parser.ParseAllString(content)
	if err != nil {
		d, ok := Diagnostic(err)
		if !ok {
			return nil, fmt.Errorf("validate: %w", err)
		}
		res.Errors = []diag.ValidationError{d}
		return res, nil
	}

	sch, err := validator.SelectSchema(docs, req.Schema, s.repo)
	if err != nil {
		d, ok := Diagnostic(err)
		if !ok {
			return nil, fmt.Errorf("validate: %w", err)
		}
		res.Errors = []diag.ValidationError{d}
		return res, nil
	}

	res.Valid = true
	for _, doc := range docs {
		report := DocumentReport{Name: doc.Name, Errors: s.validate(doc, sch, req.Strict)}
		if report.Errors == nil {
			report.Errors = []diag.ValidationError{}
		}
		if sch != nil {
			report.Schema = sch.Name
		}
		for _, e := range report.Errors {
			s.metrics.CountValidationError(e.Code)
		}
		res.Valid = res.Valid && len(report.Errors) == 0
		res.Documents = append(res.Documents, report)
	}
	return res, nil
}

// ErrorCount counts file-level and per-document errors.
func (r *ValidateResult) ErrorCount() int {
	n := len(r.Errors)
	for _, d := range r.Documents {
		n += len(d.Errors)
	}
	return n
}

// History returns the recorded revisions of path, oldest first.
func (s *Service) History(ctx context.Context, path string) ([]store.Revision, error) {
	start := s.now()
	revs, err := s.history(ctx, path)
	s.finish("history", start, err, false, "path", path, "revisions", len(revs))
	return revs, err
}

func (s *Service) history(ctx context.Context, path string) ([]store.Revision, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	key, err := ledgerKey(path)
	if err != nil {
		return nil, err
	}
	revs, err := s.store.History(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", path, err)
	}
	return revs, nil
}
