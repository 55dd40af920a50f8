// Package repair applies the opt-in fixes validation errors allow and
// records every fix considered, applied or not.
//
// Fixes fall into three tiers. Normalization already happened in the
// lexer and parser and is only surfaced here. Repair-tier fixes (enum case
// folding and compatible type coercion) are applied only when the caller
// asks. Forbidden-tier conditions are never fixed: the error stays and the
// log records that it was left alone.
package repair

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/lexer"
)

// Tier classifies a fix by how safe it is to apply automatically.
type Tier string

const (
	TierNormalization Tier = "NORMALIZATION"
	TierRepair        Tier = "REPAIR"
	TierForbidden     Tier = "FORBIDDEN"
)

// Entry records one fix.
type Entry struct {
	Tier    Tier   `json:"tier"`
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Before  string `json:"before,omitempty"`
	After   string `json:"after,omitempty"`
	Message string `json:"message"`
	Applied bool   `json:"applied"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// Log is an ordered list of entries.
type Log []Entry

// Applied returns the entries that changed the document or its text.
func (l Log) Applied() Log {
	var out Log
	for _, e := range l {
		if e.Applied {
			out = append(out, e)
		}
	}
	return out
}

// Tier returns the entries of tier t.
func (l Log) Tier(t Tier) Log {
	var out Log
	for _, e := range l {
		if e.Tier == t {
			out = append(out, e)
		}
	}
	return out
}

// FromNormalizations surfaces the lexer and parser normalization log.
// These entries are always applied.
func FromNormalizations(norms []lexer.Normalization) Log {
	out := make(Log, 0, len(norms))
	for _, n := range norms {
		out = append(out, Entry{
			Tier:    TierNormalization,
			Code:    n.Code,
			Before:  n.Original,
			After:   n.Canonical,
			Message: diag.Describe(n.Code),
			Applied: true,
			Line:    n.Line,
			Column:  n.Column,
		})
	}
	return out
}

// Classify reports the tier an error's fix would belong to. Only enum
// mismatches and TYPE mismatches are candidates for the repair tier;
// whether a concrete fix exists is decided by Repair.
func Classify(e diag.ValidationError) Tier {
	switch e.Code {
	case diag.ErrLexical:
		if strings.HasPrefix(e.Constraint, "ENUM[") {
			return TierRepair
		}
	case diag.ErrTypeMismatch:
		if strings.HasPrefix(e.Constraint, "TYPE(") {
			return TierRepair
		}
	}
	return TierForbidden
}

// Repair returns a copy of doc with the repair-tier fixes for errs applied
// when fix is true, and a log entry per error. The input document is never
// modified. With fix false the log lists the fixes that would apply.
func Repair(doc *ast.Document, errs []diag.ValidationError, fix bool) (*ast.Document, Log) {
	out := doc.Clone()
	var log Log
	for _, e := range errs {
		entry := Entry{Code: e.Code, Path: e.Path, Tier: TierForbidden}
		if Classify(e) == TierForbidden {
			entry.Message = "left unchanged: " + e.Message
			log = append(log, entry)
			continue
		}

		segments := e.Segments
		if len(segments) == 0 {
			segments = ast.SplitPath(e.Path)
		}
		current, ok := ast.Lookup(out, segments)
		if !ok {
			entry.Message = "left unchanged: field not found"
			log = append(log, entry)
			continue
		}
		fixed, how, ok := propose(e, current)
		if !ok {
			entry.Message = "left unchanged: " + e.Message
			entry.Before = ast.Text(current)
			log = append(log, entry)
			continue
		}

		entry.Tier = TierRepair
		entry.Before = ast.Text(current)
		entry.After = ast.Text(fixed)
		entry.Message = how
		if fix {
			if err := ast.Set(out, segments, fixed); err != nil {
				entry.Message = fmt.Sprintf("%s: %v", how, err)
			} else {
				entry.Applied = true
			}
		}
		log = append(log, entry)
	}
	return out, log
}

// propose returns the replacement value for a repair-tier error.
func propose(e diag.ValidationError, v ast.Value) (ast.Value, string, bool) {
	switch e.Code {
	case diag.ErrLexical:
		s, ok := v.(ast.String)
		if !ok {
			return nil, "", false
		}
		match := ""
		for _, c := range e.Candidates {
			if strings.EqualFold(c, string(s)) {
				if match != "" {
					return nil, "", false
				}
				match = c
			}
		}
		if match == "" {
			return nil, "", false
		}
		return ast.String(match), "enum case folded", true
	case diag.ErrTypeMismatch:
		return coerce(v, e.Expected)
	}
	return nil, "", false
}

// coerce converts v to the expected type when the conversion loses
// nothing.
func coerce(v ast.Value, expected string) (ast.Value, string, bool) {
	switch expected {
	case ast.TypeNumber:
		s, ok := v.(ast.String)
		if !ok {
			return nil, "", false
		}
		text := strings.TrimSpace(string(s))
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return ast.Int(n), "string coerced to number", true
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil && !strings.ContainsAny(strings.ToLower(text), "in") {
			return ast.Float(f), "string coerced to number", true
		}
	case ast.TypeBoolean:
		s, ok := v.(ast.String)
		if !ok {
			return nil, "", false
		}
		switch strings.ToLower(string(s)) {
		case "true":
			return ast.Bool(true), "string coerced to boolean", true
		case "false":
			return ast.Bool(false), "string coerced to boolean", true
		}
	case ast.TypeString:
		switch v.(type) {
		case ast.Int, ast.Float, ast.Bool:
			return ast.String(ast.Text(v)), "scalar coerced to string", true
		}
	}
	return nil, "", false
}
