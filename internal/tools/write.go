package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/emitter"
	"github.com/roach88/octave/internal/parser"
	"github.com/roach88/octave/internal/repair"
	"github.com/roach88/octave/internal/store"
)

// NoChanges is the diff reported when the written text equals the
// previous file content.
const NoChanges = "No changes"

// CreateRequest asks for content to be normalized and written to Path.
type CreateRequest struct {
	Path    string
	Content string
	Schema  string
	Strict  bool
	Fix     bool

	// Full returns the canonical content instead of a diff.
	Full bool

	// Mutations override META fields before validation. Values use
	// OCTAVE value syntax.
	Mutations map[string]string
}

// AmendRequest asks for field-level changes to an existing file.
type AmendRequest struct {
	Path string

	// Changes maps dotted field paths ("STATUS", "CONFIG.TIMEOUT",
	// "META.VERSION") to new values in OCTAVE value syntax.
	Changes map[string]string

	// BaseHash, when set, must equal the hash of the file's current
	// canonical form.
	BaseHash string

	Schema string
	Strict bool
	Fix    bool
	Full   bool
}

// WriteResult is the outcome of Create and Amend.
type WriteResult struct {
	Path        string                 `json:"path"`
	Hash        string                 `json:"canonical_hash,omitempty"`
	Valid       bool                   `json:"valid"`
	Errors      []diag.ValidationError `json:"errors,omitempty"`
	Corrections repair.Log             `json:"corrections"`
	Diff        string                 `json:"diff,omitempty"`
	Content     string                 `json:"content,omitempty"`
	Revision    *store.Revision        `json:"revision,omitempty"`
}

// Create normalizes req.Content and writes the canonical text to
// req.Path. A document that is still invalid after repair is not written:
// the result lists its errors and the error wraps ErrInvalidDocument.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*WriteResult, error) {
	start := s.now()
	res, err := s.create(ctx, req)
	s.finish("create", start, err, errors.Is(err, ErrInvalidDocument), writeAttrs(req.Path, res)...)
	return res, err
}

func (s *Service) create(ctx context.Context, req CreateRequest) (*WriteResult, error) {
	if err := s.checkPath(req.Path); err != nil {
		return nil, err
	}
	out, err := s.run(pipelineInput{
		content: req.Content,
		schema:  req.Schema,
		strict:  req.Strict,
		fix:     req.Fix,
		mutate: func(doc *ast.Document) error {
			return applyChanges(doc, req.Mutations, []string{ast.MetaKey})
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", req.Path, err)
	}

	previous, err := readOptional(req.Path)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, req.Path, store.OpCreate, previous, out, req.Full)
}

// Amend applies req.Changes to the document at req.Path and writes the
// result. When req.BaseHash is set and differs from the file's current
// canonical hash, nothing is written and the error wraps ErrHashMismatch.
func (s *Service) Amend(ctx context.Context, req AmendRequest) (*WriteResult, error) {
	start := s.now()
	res, err := s.amend(ctx, req)
	s.finish("amend", start, err, errors.Is(err, ErrInvalidDocument), writeAttrs(req.Path, res)...)
	return res, err
}

func (s *Service) amend(ctx context.Context, req AmendRequest) (*WriteResult, error) {
	if err := s.checkPath(req.Path); err != nil {
		return nil, err
	}
	if len(req.Changes) == 0 {
		return nil, fmt.Errorf("amend %s: no changes given", req.Path)
	}
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("amend: %w", err)
	}

	doc, _, err := parser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("amend %s: %w", req.Path, err)
	}
	current := emitter.Emit(doc)
	if req.BaseHash != "" {
		if got := ast.ContentHash(current); got != req.BaseHash {
			return nil, fmt.Errorf("%w: %s has hash %s, expected %s", ErrHashMismatch, req.Path, got, req.BaseHash)
		}
	}

	out, err := s.run(pipelineInput{
		content: current,
		schema:  req.Schema,
		strict:  req.Strict,
		fix:     req.Fix,
		mutate: func(doc *ast.Document) error {
			return applyChanges(doc, req.Changes, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("amend %s: %w", req.Path, err)
	}
	return s.write(ctx, req.Path, store.OpAmend, current, out, req.Full)
}

// write stores out at path unless it is invalid, records the revision and
// fills in the diff or full content.
func (s *Service) write(ctx context.Context, path, op, previous string, out *pipelineOutput, full bool) (*WriteResult, error) {
	res := &WriteResult{
		Path:        path,
		Valid:       len(out.errors) == 0,
		Errors:      out.errors,
		Corrections: out.log,
	}
	if res.Corrections == nil {
		res.Corrections = repair.Log{}
	}
	if !res.Valid {
		return res, fmt.Errorf("%s %s: %w", op, path, ErrInvalidDocument)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%s %s: %w", op, path, err)
		}
	}
	if err := os.WriteFile(path, []byte(out.canonical+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, path, err)
	}
	res.Hash = out.hash

	if s.store != nil {
		key, err := ledgerKey(path)
		if err != nil {
			return nil, err
		}
		rev, err := s.store.Record(ctx, key, op, out.canonical)
		if err != nil {
			return nil, fmt.Errorf("%s %s: record revision: %w", op, path, err)
		}
		res.Revision = &rev
	}

	if full {
		res.Content = out.canonical
	} else {
		res.Diff = LineDiff(previous, out.canonical)
	}
	return res, nil
}

func writeAttrs(path string, res *WriteResult) []any {
	attrs := []any{"path", path}
	if res != nil {
		attrs = append(attrs,
			"hash", res.Hash,
			"errors", len(res.Errors),
			"repairs", len(res.Corrections.Tier(repair.TierRepair).Applied()))
	}
	return attrs
}

// checkPath rejects traversal and extensions outside the allow-list.
// Compound extensions such as ".oct.md" match by suffix.
func (s *Service) checkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrPathNotAllowed)
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("%w: %s: path traversal (..)", ErrPathNotAllowed, path)
		}
	}
	base := filepath.Base(path)
	for _, ext := range s.extensions {
		if len(base) > len(ext) && strings.HasSuffix(base, ext) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: extension must be one of %s",
		ErrPathNotAllowed, path, strings.Join(s.extensions, ", "))
}

// readOptional returns the canonical form of an existing file, its raw
// text when it does not parse, or "" when it does not exist.
func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	doc, _, err := parser.ParseString(string(data))
	if err != nil {
		return strings.TrimSuffix(string(data), "\n"), nil
	}
	return emitter.Emit(doc), nil
}

// ledgerKey is the store key for a file: its absolute, cleaned path.
func ledgerKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// LineDiff renders a compact line diff of before and after: removed lines
// prefixed "-", added lines prefixed "+", unchanged lines omitted.
func LineDiff(before, after string) string {
	if before == after {
		return NoChanges
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(terminate(before), terminate(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(strings.TrimSuffix(line, "\n"))
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func terminate(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
