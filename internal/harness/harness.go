package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/octave/internal/repair"
	"github.com/roach88/octave/internal/schema"
	"github.com/roach88/octave/internal/tools"
)

// Harness runs vectors through the ingest and eject operations.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness. A nil logger discards logs.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	}
	return &Harness{logger: logger}
}

// Run executes one vector with a default harness.
func Run(v *Vector) (*Result, error) {
	return New(nil).Run(context.Background(), v)
}

// Run executes a vector and evaluates its expectations.
//
// Each vector gets a fresh schema repository holding the builtins plus the
// vector's own schema files, so vectors never see each other's schemas.
// A returned error means the vector could not be run at all; failed
// expectations are reported in the result.
func (h *Harness) Run(ctx context.Context, v *Vector) (*Result, error) {
	repo := schema.NewRepository()
	for _, path := range v.Schemas {
		s, err := schema.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("vector %s: %w", v.Name, err)
		}
		repo.Register(s)
	}
	svc := tools.New(repo, tools.WithLogger(h.logger))

	result := NewResult(v.Name)
	ingested, err := svc.Ingest(ctx, tools.IngestRequest{
		Content: v.Input,
		Schema:  v.Schema,
		Strict:  v.Strict,
		Fix:     v.Fix,
	})
	if err != nil {
		d, ok := tools.Diagnostic(err)
		if !ok {
			return nil, fmt.Errorf("vector %s: %w", v.Name, err)
		}
		result.ErrorCode = d.Code
	} else {
		result.Canonical = ingested.Canonical
		for _, e := range ingested.Errors {
			result.Codes = append(result.Codes, e.Code)
		}
		result.Repairs = len(ingested.Repairs.Tier(repair.TierRepair).Applied())
		for _, e := range ingested.Repairs.Tier(repair.TierNormalization) {
			result.Normalizations = append(result.Normalizations, e.Code)
		}

		if v.Mode != "" {
			ejected, err := svc.Eject(ctx, tools.EjectRequest{
				Content: ingested.Canonical,
				Mode:    v.Mode,
				Format:  v.Format,
			})
			if err != nil {
				return nil, fmt.Errorf("vector %s: %w", v.Name, err)
			}
			result.Output = ejected.Output
			result.Lossy = ejected.Lossy
			result.Omitted = ejected.FieldsOmitted
		}

		if err := checkIdempotent(ctx, svc, v, ingested.Canonical); err != nil {
			result.AddError(err.Error())
		}
	}

	for _, msg := range EvaluateExpectations(v, result) {
		result.AddError(msg)
	}

	h.logger.Info("vector completed", "name", v.Name, "pass", result.Pass)
	return result, nil
}

// RunAll executes vectors in order. It stops at the first vector that
// cannot be run.
func (h *Harness) RunAll(ctx context.Context, vectors []*Vector) ([]*Result, error) {
	results := make([]*Result, 0, len(vectors))
	for _, v := range vectors {
		r, err := h.Run(ctx, v)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// checkIdempotent re-ingests canonical text and requires the same text back.
func checkIdempotent(ctx context.Context, svc *tools.Service, v *Vector, canonical string) error {
	again, err := svc.Ingest(ctx, tools.IngestRequest{Content: canonical, Schema: v.Schema, Strict: v.Strict})
	if err != nil {
		return &AssertionError{
			Type:     "idempotence",
			Expected: "canonical text to parse",
			Actual:   err.Error(),
		}
	}
	if again.Canonical != canonical {
		return &AssertionError{
			Type:     "idempotence",
			Expected: canonical,
			Actual:   again.Canonical,
		}
	}
	return nil
}
