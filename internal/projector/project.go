package projector

import (
	"fmt"
	"strings"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/emitter"
)

// Mode selects a projection.
type Mode string

const (
	ModeCanonical Mode = "canonical"
	ModeAuthoring Mode = "authoring"
	ModeExecutive Mode = "executive"
	ModeDeveloper Mode = "developer"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeCanonical, ModeAuthoring, ModeExecutive, ModeDeveloper}

// viewKeys lists the top-level sections each filtering mode keeps.
var viewKeys = map[Mode]map[string]bool{
	ModeExecutive: {"STATUS": true, "RISK": true, "RISKS": true, "DECISION": true, "DECISIONS": true},
	ModeDeveloper: {"TEST": true, "TESTS": true, "CI": true, "DEPS": true, "DEPENDENCIES": true},
}

// ParseMode resolves a mode name. The empty string is canonical.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeCanonical, nil
	}
	for _, m := range Modes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown projection mode %q", s)
}

// Lossy reports whether the mode can discard content.
func (m Mode) Lossy() bool {
	_, ok := viewKeys[m]
	return ok
}

// Result is a projected document.
type Result struct {
	Document      *ast.Document
	Output        string
	Lossy         bool
	FieldsOmitted []string
}

// Project filters doc for mode and renders it as OCTAVE. META always
// survives. doc is not modified.
func Project(doc *ast.Document, mode Mode) (Result, error) {
	out := doc.Clone()
	res := Result{Document: out, Lossy: mode.Lossy(), FieldsOmitted: []string{}}

	switch mode {
	case ModeCanonical, ModeAuthoring:
	case ModeExecutive, ModeDeveloper:
		keep := viewKeys[mode]
		kept := out.Sections[:0]
		for _, s := range out.Sections {
			if keep[s.SectionKey()] {
				kept = append(kept, s)
				continue
			}
			res.FieldsOmitted = append(res.FieldsOmitted, sectionName(s))
		}
		out.Sections = kept
	default:
		return Result{}, fmt.Errorf("unknown projection mode %q", mode)
	}

	if mode == ModeAuthoring {
		res.Output = emitter.EmitAuthoring(out)
	} else {
		res.Output = emitter.Emit(out)
	}
	return res, nil
}

func sectionName(s ast.Section) string {
	if d, ok := s.(*ast.Division); ok {
		return d.Label()
	}
	return s.SectionKey()
}
