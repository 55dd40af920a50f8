package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for a value: object keys sorted
// by UTF-16 code units, no HTML escaping, NFC-normalized strings. When a
// map repeats a key the last entry wins.
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalDocument renders doc as canonical JSON: one object holding META
// (when present) and every body section. Blocks become objects; divisions
// use their "§ID::NAME" label as key.
func MarshalDocument(doc *Document) ([]byte, error) {
	return MarshalCanonical(DocumentValue(doc))
}

// DocumentValue converts doc into a single InlineMap in document order.
func DocumentValue(doc *Document) InlineMap {
	var out InlineMap
	if doc.Meta.Len() > 0 {
		out = append(out, Entry{Key: MetaKey, Value: InlineMap(doc.Meta.Entries())})
	}
	return append(out, sectionEntries(doc.Sections)...)
}

func sectionEntries(sections []Section) InlineMap {
	out := make(InlineMap, 0, len(sections))
	for _, s := range sections {
		switch n := s.(type) {
		case *Assignment:
			out = append(out, Entry{Key: n.Key, Value: n.Value})
		case *Block:
			out = append(out, Entry{Key: n.Key, Value: sectionEntries(n.Children)})
		case *Division:
			out = append(out, Entry{Key: n.Label(), Value: sectionEntries(n.Children)})
		}
	}
	return out
}

func marshalCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite float %v has no JSON form", f)
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case String:
		return marshalCanonicalString(buf, string(val))
	case List:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, item); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case InlineMap:
		return marshalCanonicalObject(buf, val)
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

// marshalCanonicalString writes a JSON string with NFC normalization and
// without HTML escaping.
func marshalCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// json.Encoder adds a trailing newline
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

func marshalCanonicalObject(buf *bytes.Buffer, m InlineMap) error {
	latest := make(map[string]Value, len(m))
	for _, e := range m {
		latest[e.Key] = e.Value
	}
	keys := make([]string, 0, len(latest))
	for k := range latest {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalCanonicalString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := marshalCanonical(buf, latest[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// compareKeysUTF16 orders keys by UTF-16 code units, which differs from
// Go's byte-wise string order for characters outside the BMP.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}
