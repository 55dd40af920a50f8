package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorString(t *testing.T) {
	e := New(ErrMissingRequired, []string{"META", "TYPE"}, "REQ", "required field is missing")
	assert.Equal(t, "[E003] META.TYPE: required field is missing", e.Error())
	assert.Equal(t, []string{"META", "TYPE"}, e.Segments)

	e.Suggestion = "did you mean TYPE?"
	assert.Equal(t, "[E003] META.TYPE: required field is missing (did you mean TYPE?)", e.Error())

	bare := ValidationError{Code: ErrMultipleDocuments, Message: "select a schema"}
	assert.Equal(t, "[E002] select a schema", bare.Error())
}

func TestCodesAndHasCode(t *testing.T) {
	errs := []ValidationError{{Code: ErrLexical}, {Code: ErrTypeMismatch}}
	assert.Equal(t, []string{"E005", "E007"}, Codes(errs))
	assert.True(t, HasCode(errs, ErrTypeMismatch))
	assert.False(t, HasCode(errs, ErrMissingRequired))
}

func TestClosest(t *testing.T) {
	fields := []string{"TYPE", "VERSION", "STATUS"}

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"subsequence", "VERS", "VERSION"},
		{"transposition", "STAUTS", "STATUS"},
		{"case insensitive", "type", "TYPE"},
		{"too far", "COMPLETELY_DIFFERENT", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Closest(tt.target, fields))
		})
	}
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "did you mean STATUS?", Suggest("STATSU", []string{"STATUS", "TYPE"}))
	assert.Empty(t, Suggest("XYZZY_PLUGH", []string{"STATUS"}))
	assert.Equal(t, "lexical violation", Describe(ErrLexical))
}
