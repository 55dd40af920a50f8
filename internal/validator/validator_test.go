package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/parser"
	"github.com/roach88/octave/internal/testutil"
)

func TestValidate_ValidDocument(t *testing.T) {
	doc := testutil.MustParse(t, testutil.ProjectDoc)
	s := testutil.ProjectSchema(t)

	assert.Empty(t, Validate(doc, s, false))
	assert.Empty(t, Validate(doc, s, true))
}

func TestValidate_MissingRequired(t *testing.T) {
	doc := testutil.MustParse(t, "===P===\nMETA:\n  TYPE::PROJECT\n  VERSION::1\n===END===")
	errs := Validate(doc, testutil.ProjectSchema(t), false)

	require.Len(t, errs, 1, "one error per missing field, not one per constraint")
	assert.Equal(t, diag.ErrMissingRequired, errs[0].Code)
	assert.Equal(t, "META.STATUS", errs[0].Path)
	assert.Equal(t, []string{"META", "STATUS"}, errs[0].Segments)
}

func TestValidate_TypeMismatchExcludesBool(t *testing.T) {
	doc := testutil.MustParse(t, "===P===\nMETA:\n  TYPE::PROJECT\n  VERSION::1\n  STATUS::ACTIVE\n---\nCONFIG:\n  TIMEOUT::true\n===END===")
	errs := Validate(doc, testutil.ProjectSchema(t), false)

	require.Len(t, errs, 1)
	assert.Equal(t, diag.ErrTypeMismatch, errs[0].Code)
	assert.Equal(t, "CONFIG.TIMEOUT", errs[0].Path)
	assert.Equal(t, ast.TypeNumber, errs[0].Expected)
}

func TestValidate_ConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		meta string
		body string
		code string
		path string
	}{
		{"enum no match", "STATUS::DONE", "", diag.ErrLexical, "META.STATUS"},
		{"enum prefix accepted", "STATUS::ARCH", "", "", ""},
		{"enum ambiguous", "STATUS::A", "", diag.ErrAmbiguousEnum, "META.STATUS"},
		{"range", "STATUS::ACTIVE", "CONFIG:\n  TIMEOUT::500\n", diag.ErrRange, "CONFIG.TIMEOUT"},
		{"block where list expected", "STATUS::ACTIVE", "RISKS:\n  A::1\n", diag.ErrTypeMismatch, "RISKS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "===P===\nMETA:\n  TYPE::PROJECT\n  VERSION::1\n  " + tt.meta + "\n---\n" + tt.body + "===END==="
			errs := Validate(testutil.MustParse(t, text), testutil.ProjectSchema(t), false)
			if tt.code == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1, "%v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.path, errs[0].Path)
		})
	}
}

func TestValidate_ConstMismatch(t *testing.T) {
	doc := testutil.MustParse(t, "===P===\nMETA:\n  TYPE::RELEASE\n  VERSION::1\n  STATUS::ACTIVE\n===END===")
	errs := Validate(doc, testutil.ProjectSchema(t), false)
	require.Len(t, errs, 1)
	assert.Equal(t, diag.ErrTypeMismatch, errs[0].Code)
	assert.Equal(t, "CONST[PROJECT]", errs[0].Constraint)
}

func TestValidate_TargetInference(t *testing.T) {
	base := "===P===\nMETA:\n  TYPE::PROJECT\n  VERSION::1\n  STATUS::ACTIVE\n---\n"

	errs := Validate(testutil.MustParse(t, base+"DECISION::ship\n===END==="), testutil.ProjectSchema(t), false)
	require.Len(t, errs, 1)
	assert.Equal(t, diag.ErrTargetInference, errs[0].Code)
	assert.Equal(t, "DECISION", errs[0].Path)

	errs = Validate(testutil.MustParse(t, base+"DECISION::ship -> #RELEASE\n===END==="), testutil.ProjectSchema(t), false)
	assert.Empty(t, errs)
}

func TestValidate_StrictUnknownFields(t *testing.T) {
	text := "===P===\nMETA:\n  TYPE::PROJECT\n  VERSION::1\n  STATUS::ACTIVE\n  OWNR::ops\n---\nCONFIG:\n  TIMEOUT::30\n  RETRIES::3\nEXTRA::x\n===END==="
	doc := testutil.MustParse(t, text)
	s := testutil.ProjectSchema(t)

	assert.Empty(t, Validate(doc, s, false), "lenient mode accepts unknown fields")

	errs := Validate(doc, s, true)
	require.Len(t, errs, 3)
	for _, e := range errs {
		assert.Equal(t, diag.ErrTypeMismatch, e.Code)
	}
	assert.Equal(t, "META.OWNR", errs[0].Path)
	assert.Equal(t, "did you mean OWNER?", errs[0].Suggestion)
	assert.Equal(t, "CONFIG.RETRIES", errs[1].Path)
	assert.Equal(t, "EXTRA", errs[2].Path)
}

func TestValidate_DoesNotMutate(t *testing.T) {
	doc := testutil.MustParse(t, testutil.ProjectDoc)
	before := doc.Clone()
	Validate(doc, testutil.ProjectSchema(t), true)
	assert.Equal(t, before, doc)
}

func TestValidate_NilSchema(t *testing.T) {
	assert.Nil(t, Validate(testutil.MustParse(t, testutil.ProjectDoc), nil, true))
}

func TestSelectSchema(t *testing.T) {
	repo := testutil.Repository(t)
	doc := testutil.MustParse(t, testutil.ProjectDoc)

	s, err := SelectSchema([]*ast.Document{doc}, "", repo)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "PROJECT", s.Name)

	s, err = SelectSchema([]*ast.Document{doc}, "META", repo)
	require.NoError(t, err)
	assert.Equal(t, "META", s.Name)

	_, err = SelectSchema([]*ast.Document{doc}, "NOPE", repo)
	assert.True(t, errors.Is(err, ErrUnknownSchema))

	untyped := testutil.MustParse(t, "A::1")
	s, err = SelectSchema([]*ast.Document{untyped}, "", repo)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSelectSchema_MultipleDocuments(t *testing.T) {
	docs, _, err := parser.ParseAllString("===A===\nX::1\n===END===\n===B===\nY::2\n===END===")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	_, err = SelectSchema(docs, "", testutil.Repository(t))
	var verr diag.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, diag.ErrMultipleDocuments, verr.Code)

	s, err := SelectSchema(docs, "PROJECT", testutil.Repository(t))
	require.NoError(t, err)
	assert.Equal(t, "PROJECT", s.Name)
}
