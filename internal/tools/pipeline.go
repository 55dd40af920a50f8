package tools

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/emitter"
	"github.com/roach88/octave/internal/lexer"
	"github.com/roach88/octave/internal/parser"
	"github.com/roach88/octave/internal/repair"
	"github.com/roach88/octave/internal/schema"
	"github.com/roach88/octave/internal/validator"
)

// Pipeline stage names, in execution order.
const (
	StagePreparse  = "PREPARSE"
	StageParse     = "PARSE"
	StageNormalize = "NORMALIZE"
	StageValidate  = "VALIDATE"
	StageRepair    = "REPAIR"
)

// Stage reports one pipeline stage.
type Stage struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
	Count    int           `json:"count"` // tokens, documents, normalizations, errors or repairs
}

type pipelineInput struct {
	content string
	schema  string
	strict  bool
	fix     bool
	mutate  func(doc *ast.Document) error
}

type pipelineOutput struct {
	doc       *ast.Document
	schema    *schema.Schema
	canonical string
	hash      string
	errors    []diag.ValidationError
	log       repair.Log
	stages    []Stage
}

// run takes text through the whole pipeline. Fatal lexer and parser
// errors are returned as errors; validation problems land in out.errors.
func (s *Service) run(in pipelineInput) (*pipelineOutput, error) {
	out := &pipelineOutput{}
	clock := s.now()
	stage := func(name string, count int) {
		now := s.now()
		d := now.Sub(clock)
		clock = now
		out.stages = append(out.stages, Stage{Name: name, Duration: d, Count: count})
		s.metrics.ObserveStage(name, d)
	}

	tokens, norms, err := lexer.Tokenize(in.content)
	if err != nil {
		return nil, err
	}
	stage(StagePreparse, len(tokens))

	docs, parseNorms, err := parser.ParseAll(tokens)
	if err != nil {
		return nil, err
	}
	if len(docs) > 1 {
		return nil, fmt.Errorf("%w: input holds %d documents", ErrMultipleDocuments, len(docs))
	}
	stage(StageParse, len(docs))
	doc := docs[0]

	if in.mutate != nil {
		if err := in.mutate(doc); err != nil {
			return nil, err
		}
	}
	out.log = repair.FromNormalizations(append(norms, parseNorms...))
	stage(StageNormalize, len(out.log))

	sch, err := validator.SelectSchema(docs, in.schema, s.repo)
	if err != nil {
		return nil, err
	}
	out.schema = sch

	errs := s.validate(doc, sch, in.strict)
	stage(StageValidate, len(errs))

	repaired, repairs := repair.Repair(doc, errs, in.fix)
	out.log = append(out.log, repairs...)
	stage(StageRepair, len(repairs.Applied()))

	out.errors = s.validate(repaired, sch, in.strict)
	stage(StageValidate, len(out.errors))

	out.doc = repaired
	out.canonical = emitter.Emit(repaired)
	out.hash = ast.ContentHash(out.canonical)

	for _, e := range out.errors {
		s.metrics.CountValidationError(e.Code)
	}
	for _, e := range repairs {
		s.metrics.CountRepair(string(e.Tier), e.Applied)
	}
	return out, nil
}

func (s *Service) validate(doc *ast.Document, sch *schema.Schema, strict bool) []diag.ValidationError {
	if sch == nil {
		return nil
	}
	return validator.Validate(doc, sch, strict)
}

// applyChanges sets each dotted path in changes to its parsed value, in
// sorted path order. Values use OCTAVE value syntax ("A -> B", "[x,y]").
func applyChanges(doc *ast.Document, changes map[string]string, prefix []string) error {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, _, err := parser.ParseValue(changes[k])
		if err != nil {
			return fmt.Errorf("change %s: %w", k, err)
		}
		path := append(append([]string(nil), prefix...), ast.SplitPath(k)...)
		if err := ast.Set(doc, path, v); err != nil {
			return fmt.Errorf("change %s: %w", k, err)
		}
	}
	return nil
}

// Diagnostic converts a fatal lexer or parser error, a multiple-document
// error or a wrapped ValidationError into a reportable validation error.
func Diagnostic(err error) (diag.ValidationError, bool) {
	if errors.Is(err, ErrMultipleDocuments) {
		return diag.ValidationError{Code: diag.ErrMultipleDocuments, Message: err.Error()}, true
	}
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return diag.ValidationError{
			Code:    lexErr.Code,
			Path:    fmt.Sprintf("%d:%d", lexErr.Line, lexErr.Column),
			Message: lexErr.Message,
		}, true
	}
	var parseErr *parser.Error
	if errors.As(err, &parseErr) {
		return diag.ValidationError{
			Code:    parseErr.Code,
			Path:    fmt.Sprintf("%d:%d", parseErr.Line, parseErr.Column),
			Message: parseErr.Message,
		}, true
	}
	var valErr diag.ValidationError
	if errors.As(err, &valErr) {
		return valErr, true
	}
	return diag.ValidationError{}, false
}
