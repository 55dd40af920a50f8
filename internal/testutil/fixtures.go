package testutil

import (
	"testing"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/parser"
	"github.com/roach88/octave/internal/schema"
)

// ProjectDoc is a valid document for ProjectSchema.
const ProjectDoc = `===PROJECT_STATUS===
META:
  TYPE::PROJECT
  VERSION::"1.0"
  STATUS::ACTIVE
---
STATUS::ON_TRACK
RISKS::[schema_drift,"late review"]
DECISION::ship→§RELEASE
CONFIG:
  TIMEOUT::30
TESTS::[unit,golden]
CI::green
DEPS::[yaml,cue]
===END===`

// ProjectSchemaYAML declares the fields ProjectDoc uses.
const ProjectSchemaYAML = `name: PROJECT
version: "1.0"
meta:
  - name: TYPE
    type: STRING
    constraints: "REQ∧CONST[PROJECT]"
  - name: VERSION
    required: true
  - name: STATUS
    type: STRING
    constraints: "REQ∧ENUM[ACTIVE,ARCHIVED,PAUSED]"
  - name: OWNER
    type: STRING
body:
  - name: STATUS
    type: STRING
  - name: RISKS
    type: LIST
  - name: DECISION
    target: true
  - name: CONFIG.TIMEOUT
    type: NUMBER
    constraints: "RANGE[1,300]"
  - name: TESTS
    type: LIST
  - name: CI
  - name: DEPS
    type: LIST
`

// MustParse parses text or fails the test.
func MustParse(t testing.TB, text string) *ast.Document {
	t.Helper()
	doc, _, err := parser.ParseString(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

// ProjectSchema compiles ProjectSchemaYAML.
func ProjectSchema(t testing.TB) *schema.Schema {
	t.Helper()
	s, err := schema.ParseYAML([]byte(ProjectSchemaYAML))
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

// Repository returns a repository holding the builtins and ProjectSchema.
func Repository(t testing.TB) *schema.Repository {
	t.Helper()
	r := schema.NewRepository()
	r.Register(ProjectSchema(t))
	return r
}
