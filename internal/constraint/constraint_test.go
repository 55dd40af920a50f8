package constraint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/octave/internal/ast"
	"github.com/roach88/octave/internal/diag"
)

var path = []string{"META", "STATUS"}

func evaluate(t *testing.T, chain string, v ast.Value) Result {
	t.Helper()
	c, err := ParseChain(chain)
	require.NoError(t, err)
	return c.Evaluate(v, path)
}

func TestParseChain(t *testing.T) {
	c, err := ParseChain(`REQ∧ENUM[ACTIVE,ARCHIVED]&REGEX["^[A-Z]+$"]∧TYPE(STRING)`)
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())

	items := c.Items()
	assert.Equal(t, Required{}, items[0])
	assert.Equal(t, Enum{Values: []string{"ACTIVE", "ARCHIVED"}}, items[1])
	assert.Equal(t, "^[A-Z]+$", items[2].(*Regex).Pattern)
	assert.Equal(t, Type{Expected: ast.TypeString}, items[3])
	assert.True(t, c.Required())
	assert.False(t, c.Optional())
	assert.Equal(t, `REQ∧ENUM[ACTIVE,ARCHIVED]∧REGEX["^[A-Z]+$"]∧TYPE(STRING)`, c.String())
}

func TestParseChain_SeparatorInsideParameter(t *testing.T) {
	c, err := ParseChain(`REGEX["a&b"]∧ENUM["x,y",z]`)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "a&b", c.Items()[0].(*Regex).Pattern)
	assert.Equal(t, []string{"x,y", "z"}, c.Items()[1].(Enum).Values)
}

func TestParseChain_Empty(t *testing.T) {
	c, err := ParseChain("  ")
	require.NoError(t, err)
	assert.Zero(t, c.Len())
	assert.True(t, c.Evaluate(nil, path).Valid())
}

func TestParseChain_RejectsMalformedParameters(t *testing.T) {
	for _, text := range []string{
		"RANGE[a,10]",
		"RANGE[10,1]",
		"RANGE[1]",
		"MAX_LENGTH[-1]",
		"MIN_LENGTH[two]",
		"TYPE(INTEGERISH)",
		"ENUM[]",
		`REGEX["("]`,
		"REQ∧∧OPT",
		"REQ[x]",
		"CONST",
		"ENUM[A",
		"FROB",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseChain(text)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, diag.ErrUnclassified, parseErr.Code)
		})
	}
}

func TestParseAtom(t *testing.T) {
	assert.Equal(t, ast.String("DELETED"), parseAtom("DELETED"))
	assert.Equal(t, ast.String("42"), parseAtom(`"42"`))
	assert.Equal(t, ast.Int(42), parseAtom("42"))
	assert.Equal(t, ast.Float(1.5), parseAtom("1.5"))
	assert.Equal(t, ast.Bool(true), parseAtom("true"))
	assert.Equal(t, ast.Null{}, parseAtom("null"))
}

func TestEnum_PrefixMatching(t *testing.T) {
	assert.True(t, evaluate(t, "ENUM[ACTIVE,ARCHIVED]", ast.String("ACTIVE")).Valid())
	assert.True(t, evaluate(t, "ENUM[ACTIVE,ARCHIVED]", ast.String("ACT")).Valid())

	res := evaluate(t, "ENUM[ACTIVE,ACTIVATING]", ast.String("ACTIV"))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, diag.ErrAmbiguousEnum, res.Errors[0].Code)
	assert.Equal(t, []string{"ACTIVE", "ACTIVATING"}, res.Errors[0].Candidates)

	res = evaluate(t, "ENUM[ACTIVE,ARCHIVED]", ast.String("DONE"))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, diag.ErrLexical, res.Errors[0].Code)
	assert.Equal(t, "META.STATUS", res.Errors[0].Path)

	res = evaluate(t, "ENUM[ACTIVE,ARCHIVED]", ast.String("ACTIVEE"))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "did you mean ACTIVE?", res.Errors[0].Suggestion)
}

func TestEnum_Resolve(t *testing.T) {
	e := Enum{Values: []string{"ACTIVE", "ARCHIVED"}}
	got, ok := e.Resolve("AR")
	assert.True(t, ok)
	assert.Equal(t, "ARCHIVED", got)
	_, ok = e.Resolve("A")
	assert.False(t, ok)
	_, ok = e.Resolve("")
	assert.False(t, ok)
}

func TestEvaluate_FailFast(t *testing.T) {
	res := evaluate(t, "REQ∧TYPE(STRING)", nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, diag.ErrMissingRequired, res.Errors[0].Code)
	assert.Equal(t, "REQ", res.Errors[0].Constraint)

	res = evaluate(t, "REQ∧TYPE(STRING)", ast.Null{})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, diag.ErrMissingRequired, res.Errors[0].Code)

	res = evaluate(t, "TYPE(STRING)∧MAX_LENGTH[2]", ast.Int(7))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, diag.ErrTypeMismatch, res.Errors[0].Code)
}

func TestEvaluate_Conflicts(t *testing.T) {
	for _, chain := range []string{
		"REQ∧OPT",
		"ENUM[ACTIVE,ARCHIVED]∧CONST[DELETED]",
		"ENUM[ACTIVE,ARCHIVED]∧CONST[ACT]",
		"CONST[A]∧CONST[B]",
		"MIN_LENGTH[5]∧MAX_LENGTH[2]",
		"RANGE[1,2]∧RANGE[5,9]",
	} {
		t.Run(chain, func(t *testing.T) {
			for _, v := range []ast.Value{nil, ast.String("ACTIVE"), ast.String("DELETED"), ast.Int(1)} {
				res := evaluate(t, chain, v)
				require.NotEmpty(t, res.Errors)
				for _, e := range res.Errors {
					assert.Equal(t, diag.ErrUnclassified, e.Code)
					assert.Equal(t, NameConflict, e.Constraint)
				}
			}
		})
	}

	c := MustParseChain("CONST[ACTIVE]∧ENUM[ACTIVE,ARCHIVED]")
	assert.Empty(t, c.Conflicts())
	assert.True(t, c.Evaluate(ast.String("ACTIVE"), path).Valid())
}

func TestEvaluate_TypeExcludesBoolFromNumber(t *testing.T) {
	res := evaluate(t, "TYPE(NUMBER)", ast.Bool(true))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, diag.ErrTypeMismatch, res.Errors[0].Code)
	assert.Equal(t, ast.TypeNumber, res.Errors[0].Expected)

	assert.True(t, evaluate(t, "TYPE(NUMBER)", ast.Int(1)).Valid())
	assert.True(t, evaluate(t, "TYPE(NUMBER)", ast.Float(1.5)).Valid())
	assert.True(t, evaluate(t, "TYPE(BOOLEAN)", ast.Bool(false)).Valid())
	assert.True(t, evaluate(t, "TYPE(list)", ast.List{}).Valid())
}

func TestEvaluate_Codes(t *testing.T) {
	tests := []struct {
		chain string
		value ast.Value
		code  string
	}{
		{"OPT", nil, ""},
		{"OPT∧TYPE(STRING)", nil, ""},
		{"OPT∧TYPE(STRING)", ast.Int(1), diag.ErrTypeMismatch},
		{"REQ", ast.String(""), diag.ErrMissingRequired},
		{"REQ", ast.String("x"), ""},
		{"CONST[1]", ast.Float(1), ""},
		{"CONST[DRAFT]", ast.String("FINAL"), diag.ErrTypeMismatch},
		{`REGEX["[a-z]+"]`, ast.String("abc1"), ""},
		{`REGEX["[a-z]+"]`, ast.String("1abc"), diag.ErrPattern},
		{`REGEX["[a-z]+"]`, ast.List{}, diag.ErrTypeMismatch},
		{"DIR", ast.String("docs/specs"), ""},
		{"DIR", ast.String("bad\x00path"), diag.ErrPathChars},
		{"APPEND_ONLY", ast.List{ast.String("a")}, ""},
		{"APPEND_ONLY", ast.String("a"), diag.ErrAppendOnly},
		{"RANGE[1,10]", ast.Int(10), ""},
		{"RANGE[1,10]", ast.Float(10.5), diag.ErrRange},
		{"RANGE[1,10]", ast.String("5"), diag.ErrTypeMismatch},
		{"MAX_LENGTH[3]", ast.String("héé"), ""},
		{"MAX_LENGTH[3]", ast.String("abcd"), diag.ErrMaxLength},
		{"MAX_LENGTH[1]", ast.List{ast.Int(1), ast.Int(2)}, diag.ErrMaxLength},
		{"MIN_LENGTH[2]", ast.String("a"), diag.ErrMinLength},
		{"DATE", ast.String("2024-02-29"), ""},
		{"DATE", ast.String("2023-02-29"), diag.ErrDateFormat},
		{"DATE", ast.String("29/02/2024"), diag.ErrDateFormat},
		{"ISO8601", ast.String("2024-01-15T10:30:00Z"), ""},
		{"ISO8601", ast.String("2024-01-15T10:30:00"), ""},
		{"ISO8601", ast.String("2024-01-15"), diag.ErrDateFormat},
	}
	for _, tt := range tests {
		t.Run(tt.chain+"/"+ast.Text(tt.value), func(t *testing.T) {
			res := evaluate(t, tt.chain, tt.value)
			if tt.code == "" {
				assert.True(t, res.Valid(), "unexpected errors: %v", res.Errors)
				return
			}
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tt.code, res.Errors[0].Code)
		})
	}
}

func TestEvaluate_DoesNotMutate(t *testing.T) {
	v := ast.List{ast.String("a"), ast.String("b")}
	c := MustParseChain("APPEND_ONLY∧MAX_LENGTH[5]")
	for i := 0; i < 3; i++ {
		assert.True(t, c.Evaluate(v, path).Valid())
	}
	assert.Equal(t, ast.List{ast.String("a"), ast.String("b")}, v)
}
