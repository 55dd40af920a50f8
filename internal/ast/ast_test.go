package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *Document {
	return &Document{
		Name: "SAMPLE",
		Meta: NewFields(
			Entry{Key: "TYPE", Value: String("PROJECT")},
			Entry{Key: "OWNER", Value: InlineMap{{Key: "NAME", Value: String("ops")}}},
		),
		Sections: []Section{
			&Assignment{Key: "STATUS", Value: String("ACTIVE")},
			&Block{Key: "CONFIG", Children: []Section{
				&Assignment{Key: "TIMEOUT", Value: Int(30)},
			}},
			&Division{ID: "1", Name: "INTRO", Children: []Section{
				&Assignment{Key: "GOAL", Value: String("ship")},
			}},
		},
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null{}, TypeNull},
		{nil, TypeNull},
		{Bool(true), TypeBoolean},
		{Int(1), TypeNumber},
		{Float(1.5), TypeNumber},
		{String("x"), TypeString},
		{List{}, TypeList},
		{InlineMap{}, TypeMap},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeName(tt.v))
	}
	assert.False(t, IsNumber(Bool(true)), "a boolean is never a number")
}

func TestText(t *testing.T) {
	assert.Equal(t, "null", Text(Null{}))
	assert.Equal(t, "true", Text(Bool(true)))
	assert.Equal(t, "-7", Text(Int(-7)))
	assert.Equal(t, "3.0", Text(Float(3)))
	assert.Equal(t, "3.14", Text(Float(3.14)))
	assert.Equal(t, "-1e+10", Text(Float(-1e10)))
	assert.Equal(t, "[a,1,[k::v]]", Text(List{String("a"), Int(1), InlineMap{{Key: "k", Value: String("v")}}}))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(List{Int(1), String("a")}, List{Int(1), String("a")}))
	assert.False(t, Equal(Int(1), Float(1)))
	assert.False(t, Equal(Bool(true), Int(1)))
	assert.True(t, Equal(nil, Null{}))
	assert.False(t, Equal(InlineMap{{Key: "a", Value: Int(1)}}, InlineMap{{Key: "b", Value: Int(1)}}))
}

func TestLookup(t *testing.T) {
	doc := sampleDoc()

	v, ok := Lookup(doc, []string{"META", "TYPE"})
	require.True(t, ok)
	assert.Equal(t, String("PROJECT"), v)

	v, ok = Lookup(doc, []string{"META", "OWNER", "NAME"})
	require.True(t, ok)
	assert.Equal(t, String("ops"), v)

	v, ok = Lookup(doc, []string{"CONFIG", "TIMEOUT"})
	require.True(t, ok)
	assert.Equal(t, Int(30), v)

	v, ok = Lookup(doc, []string{"§1", "GOAL"})
	require.True(t, ok)
	assert.Equal(t, String("ship"), v)

	_, ok = Lookup(doc, []string{"CONFIG"})
	assert.False(t, ok, "blocks are not values")
	assert.True(t, Exists(doc, []string{"CONFIG"}))
	assert.False(t, Exists(doc, []string{"MISSING"}))
}

func TestSet(t *testing.T) {
	doc := sampleDoc()

	require.NoError(t, Set(doc, []string{"STATUS"}, String("DONE")))
	require.NoError(t, Set(doc, []string{"CONFIG", "RETRIES"}, Int(3)))
	require.NoError(t, Set(doc, []string{"META", "VERSION"}, String("1.0")))
	require.NoError(t, Set(doc, []string{"META", "OWNER", "TEAM"}, String("core")))

	v, _ := Lookup(doc, []string{"STATUS"})
	assert.Equal(t, String("DONE"), v)
	v, _ = Lookup(doc, []string{"CONFIG", "RETRIES"})
	assert.Equal(t, Int(3), v)
	assert.Equal(t, []string{"TYPE", "OWNER", "VERSION"}, doc.Meta.Keys())
	v, _ = Lookup(doc, []string{"META", "OWNER", "TEAM"})
	assert.Equal(t, String("core"), v)

	assert.Error(t, Set(doc, []string{"NOPE", "CHILD"}, Int(1)), "parents are never created")
	assert.Error(t, Set(doc, []string{"CONFIG"}, Int(1)), "blocks are not replaced by values")
	assert.Error(t, Set(doc, []string{"META"}, Int(1)))
}

func TestClone(t *testing.T) {
	doc := sampleDoc()
	cp := doc.Clone()

	require.NoError(t, Set(cp, []string{"CONFIG", "TIMEOUT"}, Int(99)))
	cp.Meta.Set("TYPE", String("OTHER"))

	v, _ := Lookup(doc, []string{"CONFIG", "TIMEOUT"})
	assert.Equal(t, Int(30), v)
	v, _ = doc.Meta.Get("TYPE")
	assert.Equal(t, String("PROJECT"), v)
}

func TestFields(t *testing.T) {
	var f Fields
	f.Set("A", Int(1))
	f.Set("B", Int(2))
	f.Set("A", Int(3))
	assert.Equal(t, []string{"A", "B"}, f.Keys())
	v, _ := f.Get("A")
	assert.Equal(t, Int(3), v)
	assert.True(t, f.Delete("A"))
	assert.False(t, f.Delete("A"))
	assert.Equal(t, 1, f.Len())
}

func TestMarshalCanonical(t *testing.T) {
	out, err := MarshalDocument(sampleDoc())
	require.NoError(t, err)
	assert.Equal(t,
		`{"CONFIG":{"TIMEOUT":30},"META":{"OWNER":{"NAME":"ops"},"TYPE":"PROJECT"},"STATUS":"ACTIVE","§1::INTRO":{"GOAL":"ship"}}`,
		string(out))

	out, err = MarshalCanonical(InlineMap{
		{Key: "b", Value: String("<&>")},
		{Key: "a", Value: List{Float(1.5), Null{}, Bool(false)}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1.5,null,false],"b":"<&>"}`, string(out))
}

func TestCompareKeysUTF16(t *testing.T) {
	// U+1F600 sorts after U+FF61 byte-wise but before it in UTF-16.
	assert.Negative(t, compareKeysUTF16("\U0001F600", "｡"))
	assert.Negative(t, compareKeysUTF16("a", "ab"))
	assert.Zero(t, compareKeysUTF16("x", "x"))
}

func TestContentHash(t *testing.T) {
	// sha256("")
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(""))
	assert.Len(t, ContentHash("===X===\n===END==="), 64)

	a, err := RevisionDigest("doc.oct.md", 1, "", ContentHash("x"))
	require.NoError(t, err)
	b, err := RevisionDigest("doc.oct.md", 2, "", ContentHash("x"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
}
