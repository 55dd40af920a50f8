package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
	"github.com/roach88/octave/internal/lexer"
)

func mustParse(t *testing.T, text string) *ast.Document {
	t.Helper()
	doc, _, err := ParseString(text)
	require.NoError(t, err)
	return doc
}

func parseErr(t *testing.T, text string) *Error {
	t.Helper()
	_, _, err := ParseString(text)
	require.Error(t, err)
	var perr *Error
	require.True(t, errors.As(err, &perr), "expected *parser.Error, got %T: %v", err, err)
	return perr
}

func value(t *testing.T, doc *ast.Document, path ...string) ast.Value {
	t.Helper()
	v, ok := ast.Lookup(doc, path)
	require.True(t, ok, "no value at %v", path)
	return v
}

func TestParse_FullDocument(t *testing.T) {
	doc := mustParse(t, `===PROJECT===
META:
  TYPE::PROJECT_STATUS
  VERSION::"1.0"
---
STATUS::ACTIVE
CONFIG:
  TIMEOUT::30
  NESTED:
    DEEP::true
TAGS::[alpha, "beta", 3]
===END===
`)

	assert.Equal(t, "PROJECT", doc.Name)
	assert.True(t, doc.HasSeparator)
	assert.Equal(t, []string{"TYPE", "VERSION"}, doc.Meta.Keys())
	assert.Equal(t, ast.String("1.0"), value(t, doc, "META", "VERSION"))

	require.Len(t, doc.Sections, 3)
	assert.Equal(t, ast.String("ACTIVE"), value(t, doc, "STATUS"))
	assert.Equal(t, ast.Int(30), value(t, doc, "CONFIG", "TIMEOUT"))
	assert.Equal(t, ast.Bool(true), value(t, doc, "CONFIG", "NESTED", "DEEP"))
	assert.Equal(t, ast.List{ast.String("alpha"), ast.String("beta"), ast.Int(3)}, value(t, doc, "TAGS"))

	block, ok := doc.Sections[1].(*ast.Block)
	require.True(t, ok)
	assert.Equal(t, ast.Position{Line: 7, Column: 1}, block.Pos)
}

func TestParse_EnvelopeInference(t *testing.T) {
	doc, log, err := ParseString("KEY::value")
	require.NoError(t, err)
	assert.Equal(t, ast.InferredName, doc.Name)

	require.Len(t, log, 1)
	assert.Equal(t, diag.WarnEnvelope, log[0].Code)
}

func TestParse_LenientClose(t *testing.T) {
	doc, log, err := ParseString("===DOC===\nA::1\n")
	require.NoError(t, err)
	assert.Equal(t, "DOC", doc.Name)
	require.Len(t, log, 1)
	assert.Equal(t, "===END===", log[0].Canonical)
}

func TestParse_SingleColonAmbiguity(t *testing.T) {
	t.Run("colon space value", func(t *testing.T) {
		perr := parseErr(t, "KEY: value")
		assert.Equal(t, diag.ErrAmbiguousColon, perr.Code)
		assert.Contains(t, perr.Message, "KEY::value")
	})

	t.Run("colon glued value", func(t *testing.T) {
		perr := parseErr(t, "KEY:value")
		assert.Equal(t, diag.ErrAmbiguousColon, perr.Code)
	})

	t.Run("block with child", func(t *testing.T) {
		doc := mustParse(t, "KEY:\n  CHILD::value")
		require.Len(t, doc.Sections, 1)
		block, ok := doc.Sections[0].(*ast.Block)
		require.True(t, ok)
		assert.Equal(t, "KEY", block.Key)
		require.Len(t, block.Children, 1)
		assert.Equal(t, ast.String("value"), value(t, doc, "KEY", "CHILD"))
	})
}

func TestParse_BlockNesting(t *testing.T) {
	doc := mustParse(t, `A:
  B:
    C::1
  D::2
E::3`)
	assert.Equal(t, ast.Int(1), value(t, doc, "A", "B", "C"))
	assert.Equal(t, ast.Int(2), value(t, doc, "A", "D"))
	assert.Equal(t, ast.Int(3), value(t, doc, "E"))
	require.Len(t, doc.Sections, 2)
}

func TestParse_EmptyBlockAndDedent(t *testing.T) {
	doc := mustParse(t, "BLOCK:\nMISSING_INDENT::value")
	require.Len(t, doc.Sections, 2)
	block := doc.Sections[0].(*ast.Block)
	assert.Empty(t, block.Children)
	assert.Equal(t, ast.String("value"), value(t, doc, "MISSING_INDENT"))
}

func TestParse_IndentationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"odd indent", "A:\n   B::1"},
		{"over indented sibling", "A:\n  B::1\n    C::2"},
		{"partial dedent", "A:\n    B::1\n  C::2"},
		{"indented top level", "  A::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseErr(t, tt.input)
			assert.Equal(t, diag.ErrLexical, perr.Code)
		})
	}
}

func TestParse_WideIndentIsNormalized(t *testing.T) {
	doc, log, err := ParseString("===X===\nA:\n    B::1\n===END===")
	require.NoError(t, err)
	assert.Equal(t, ast.Int(1), value(t, doc, "A", "B"))
	require.Len(t, log, 1)
	assert.Equal(t, diag.WarnIndentation, log[0].Code)
}

func TestParse_Lists(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ast.Value
	}{
		{"empty", "L::[]", ast.List{}},
		{"commas", "L::[a,b,c]", ast.List{ast.String("a"), ast.String("b"), ast.String("c")}},
		{"trailing comma", "L::[a,b,]", ast.List{ast.String("a"), ast.String("b")}},
		{"newlines", "L::[\n  a\n  b\n]", ast.List{ast.String("a"), ast.String("b")}},
		{"nested", "L::[[1,2],[]]", ast.List{ast.List{ast.Int(1), ast.Int(2)}, ast.List{}}},
		{
			"inline map",
			"L::[name::api, port::8080]",
			ast.List{ast.InlineMap{{Key: "name", Value: ast.String("api")}, {Key: "port", Value: ast.Int(8080)}}},
		},
		{
			"mixed",
			"L::[a::1, x, b::[y]]",
			ast.List{
				ast.InlineMap{{Key: "a", Value: ast.Int(1)}},
				ast.String("x"),
				ast.InlineMap{{Key: "b", Value: ast.List{ast.String("y")}}},
			},
		},
		{"constraint expression", `L::["example"&REQ->#TARGET]`, ast.List{ast.String(`"example"∧REQ→§TARGET`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.input)
			assert.Equal(t, tt.want, value(t, doc, "L"))
		})
	}
}

func TestParse_ListErrors(t *testing.T) {
	for _, input := range []string{"L::[a,,b]", "L::[,a]", "L::[a b", "L::[a]]"} {
		t.Run(input, func(t *testing.T) {
			parseErr(t, input)
		})
	}
}

func TestParse_Scalars(t *testing.T) {
	doc := mustParse(t, `I::42
N::-10
F::3.14
E::-1e10
B::false
Z::null
S::"hello world"`)
	assert.Equal(t, ast.Int(42), value(t, doc, "I"))
	assert.Equal(t, ast.Int(-10), value(t, doc, "N"))
	assert.Equal(t, ast.Float(3.14), value(t, doc, "F"))
	assert.Equal(t, ast.Float(-1e10), value(t, doc, "E"))
	assert.Equal(t, ast.Bool(false), value(t, doc, "B"))
	assert.Equal(t, ast.Null{}, value(t, doc, "Z"))
	assert.Equal(t, ast.String("hello world"), value(t, doc, "S"))
}

func TestParse_FlowChains(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"FLOW::A->B->C", "A→B→C"},
		{"FLOW::A → B", "A→B"},
		{"MIX::A+B@C", "A⊕B@C"},
		{"T::Speed vs Quality", "Speed⇌Quality"},
		{`REF::"src/parser.py:42"@LINE`, `"src/parser.py:42"@LINE`},
		{"ROUTE::->#INDEXER", "→§INDEXER"},
		{"WORDS::hello world", "hello world"},
		{`GLUED::"a"b`, `"a"b`},
		{`SPACED::"a" b`, `"a" b`},
		{"PATH::MODULE::SUBMODULE", "MODULE::SUBMODULE"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			doc := mustParse(t, tt.input)
			key := doc.Sections[0].SectionKey()
			assert.Equal(t, ast.String(tt.want), value(t, doc, key))
		})
	}
}

func TestParse_ColonsInsideValues(t *testing.T) {
	doc := mustParse(t, "A::HERMES:API_TIMEOUT\nB::MODULE:SUBMODULE:COMPONENT\nC::pkg.tool:config.option")
	assert.Equal(t, ast.String("HERMES:API_TIMEOUT"), value(t, doc, "A"))
	assert.Equal(t, ast.String("MODULE:SUBMODULE:COMPONENT"), value(t, doc, "B"))
	assert.Equal(t, ast.String("pkg.tool:config.option"), value(t, doc, "C"))
}

func TestParse_HyphenatedValuesKeepTheirText(t *testing.T) {
	doc := mustParse(t, "===D===\nMETA:\n  CREATED::2024-01-15\n---\nVERSION::1.5.3-rc1\nKIND::well-known\nAT::2024-01-15T10:30:00Z\n===END===")
	created, ok := ast.Lookup(doc, []string{ast.MetaKey, "CREATED"})
	require.True(t, ok)
	assert.Equal(t, ast.String("2024-01-15"), created)
	assert.Equal(t, ast.String("1.5.3-rc1"), value(t, doc, "VERSION"))
	assert.Equal(t, ast.String("well-known"), value(t, doc, "KIND"))
	assert.Equal(t, ast.String("2024-01-15T10:30:00Z"), value(t, doc, "AT"))
}

func TestParse_ConstraintOutsideBrackets(t *testing.T) {
	perr := parseErr(t, "RULE::A&B")
	assert.Equal(t, diag.ErrLexical, perr.Code)
}

func TestParse_Divisions(t *testing.T) {
	doc := mustParse(t, `§1::INTRO
  GOAL::ship
#CONTEXT::
  SCOPE::local
§2::LOCAL`)
	require.Len(t, doc.Sections, 3)

	intro, ok := doc.Sections[0].(*ast.Division)
	require.True(t, ok)
	assert.Equal(t, "1", intro.ID)
	assert.Equal(t, "INTRO", intro.Name)
	assert.Equal(t, ast.String("ship"), value(t, doc, "§1", "GOAL"))

	ctx := doc.Sections[1].(*ast.Division)
	assert.Equal(t, "CONTEXT", ctx.ID)
	assert.Empty(t, ctx.Name)
	assert.Equal(t, ast.String("local"), value(t, doc, "§CONTEXT", "SCOPE"))

	local := doc.Sections[2].(*ast.Division)
	assert.Equal(t, "LOCAL", local.Name)
	assert.Empty(t, local.Children)
}

func TestParse_MetaRules(t *testing.T) {
	t.Run("META as assignment", func(t *testing.T) {
		perr := parseErr(t, `META::"0"`)
		assert.Contains(t, perr.Message, "reserved")
	})

	t.Run("META after body", func(t *testing.T) {
		perr := parseErr(t, "A::1\nMETA:\n  TYPE::X")
		assert.Contains(t, perr.Message, "META")
	})

	t.Run("nested meta block", func(t *testing.T) {
		doc := mustParse(t, "META:\n  OWNER:\n    NAME::ops\n  TYPE::X")
		assert.Equal(t, ast.String("ops"), value(t, doc, "META", "OWNER", "NAME"))
		assert.Equal(t, []string{"OWNER", "TYPE"}, doc.Meta.Keys())
	})

	t.Run("duplicate meta field", func(t *testing.T) {
		parseErr(t, "META:\n  TYPE::X\n  TYPE::Y")
	})

	t.Run("separator in body", func(t *testing.T) {
		parseErr(t, "A::1\n---\nB::2")
	})
}

func TestParse_Comments(t *testing.T) {
	doc := mustParse(t, `// header
===DOC===
// before meta
META:
  TYPE::X // trailing

  // inside
STATUS::ok
===END===
// after`)
	assert.Equal(t, "DOC", doc.Name)
	assert.Equal(t, ast.String("X"), value(t, doc, "META", "TYPE"))
	assert.Equal(t, ast.String("ok"), value(t, doc, "STATUS"))
}

func TestParse_MultipleDocuments(t *testing.T) {
	text := "===ONE===\nA::1\n===END===\n===TWO===\nB::2\n===END===\n"

	docs, _, err := ParseAllString(text)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "ONE", docs[0].Name)
	assert.Equal(t, "TWO", docs[1].Name)

	perr := parseErr(t, text)
	assert.Equal(t, diag.ErrMultipleDocuments, perr.Code)

	tokens, _, err := lexer.Tokenize(text)
	require.NoError(t, err)
	_, err = Parse(tokens)
	require.Error(t, err)

	perr = parseErr(t, "===ONE===\nA::1\n===END===\nB::2")
	assert.Contains(t, perr.Message, "after ===END===")
}

func TestParse_MissingValue(t *testing.T) {
	parseErr(t, "KEY::")
	parseErr(t, "KEY")
}

func TestParseValue(t *testing.T) {
	v, log, err := ParseValue("A -> B")
	require.NoError(t, err)
	assert.Equal(t, ast.String("A→B"), v)
	require.Len(t, log, 1)

	v, _, err = ParseValue("60")
	require.NoError(t, err)
	assert.Equal(t, ast.Int(60), v)

	v, _, err = ParseValue("[a, b]")
	require.NoError(t, err)
	assert.Equal(t, ast.List{ast.String("a"), ast.String("b")}, v)

	_, _, err = ParseValue("")
	assert.Error(t, err)
}
