package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a sealed interface over OCTAVE values.
// Only Null, Bool, Int, Float, String, List and InlineMap implement it.
type Value interface {
	value() // Sealed
}

// Null is the literal null.
type Null struct{}

func (Null) value() {}

// Bool is true or false.
type Bool bool

func (Bool) value() {}

// Int is an integer literal.
type Int int64

func (Int) value() {}

// Float is a literal with a fraction or exponent.
type Float float64

func (Float) value() {}

// String is quoted text, a bare identifier, or a composite operator chain
// such as A→B⊕C.
type String string

func (String) value() {}

// List is an ordered sequence of values. Items may be inline maps.
type List []Value

func (List) value() {}

// Entry is one key/value pair of an InlineMap or Fields.
type Entry struct {
	Key   string
	Value Value
}

// InlineMap is an ordered key/value mapping. Inside lists it holds
// consecutive key::value items; in metadata it holds a nested block.
type InlineMap []Entry

func (InlineMap) value() {}

// Get returns the first value stored under key.
func (m InlineMap) Get(key string) (Value, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Type names used by TYPE(...) constraints and schema field descriptors.
const (
	TypeNull    = "NULL"
	TypeBoolean = "BOOLEAN"
	TypeNumber  = "NUMBER"
	TypeString  = "STRING"
	TypeList    = "LIST"
	TypeMap     = "MAP"
)

// TypeName returns the schema type name of v. Bool reports BOOLEAN, never
// NUMBER.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, Null:
		return TypeNull
	case Bool:
		return TypeBoolean
	case Int, Float:
		return TypeNumber
	case String:
		return TypeString
	case List:
		return TypeList
	case InlineMap:
		return TypeMap
	default:
		return fmt.Sprintf("%T", v)
	}
}

// IsNumber reports whether v is Int or Float.
func IsNumber(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}
	return false
}

// AsFloat returns the numeric value of Int or Float.
func AsFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	}
	return 0, false
}

// FormatFloat renders f so it reads back as a float: the shortest
// representation, with ".0" appended when it would otherwise look like an
// integer.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// Text renders a scalar the way it would appear unquoted. Lists and maps
// are rendered in bracket form.
func Text(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		return strconv.FormatBool(bool(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return FormatFloat(float64(val))
	case String:
		return string(val)
	case List:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Text(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case InlineMap:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = e.Key + "::" + Text(e.Value)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Equal reports deep equality. Int(1) and Float(1) are not equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil, Null:
		switch b.(type) {
		case nil, Null:
			return true
		}
		return false
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case InlineMap:
		bv, ok := b.(InlineMap)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i].Key != bv[i].Key || !Equal(av[i].Value, bv[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
