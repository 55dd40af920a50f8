package ast

import (
	"fmt"
	"strings"
)

// Lookup returns the value addressed by path. The first segment META
// addresses metadata; other paths walk body sections by key. Blocks and
// divisions are not values, so a path ending on one reports false.
func Lookup(doc *Document, path []string) (Value, bool) {
	if len(path) == 0 {
		return nil, false
	}
	if path[0] == MetaKey {
		if len(path) == 1 {
			return nil, false
		}
		v, ok := doc.Meta.Get(path[1])
		if !ok {
			return nil, false
		}
		return lookupMap(v, path[2:])
	}
	s, ok := FindSection(doc.Sections, path)
	if !ok {
		return nil, false
	}
	if a, ok := s.(*Assignment); ok {
		return a.Value, true
	}
	return nil, false
}

func lookupMap(v Value, rest []string) (Value, bool) {
	for _, key := range rest {
		m, ok := v.(InlineMap)
		if !ok {
			return nil, false
		}
		if v, ok = m.Get(key); !ok {
			return nil, false
		}
	}
	return v, true
}

// FindSection walks sections by key.
func FindSection(sections []Section, path []string) (Section, bool) {
	if len(path) == 0 {
		return nil, false
	}
	for _, s := range sections {
		if s.SectionKey() != path[0] {
			continue
		}
		if len(path) == 1 {
			return s, true
		}
		return FindSection(Children(s), path[1:])
	}
	return nil, false
}

// Exists reports whether path names a metadata field or any body section.
func Exists(doc *Document, path []string) bool {
	if len(path) > 0 && path[0] == MetaKey {
		_, ok := Lookup(doc, path)
		return ok
	}
	_, ok := FindSection(doc.Sections, path)
	return ok
}

// Set stores v at path, replacing an existing assignment or appending a
// new one to the parent. Parents must already exist; Set never creates
// blocks.
func Set(doc *Document, path []string, v Value) error {
	if len(path) == 0 {
		return fmt.Errorf("empty path")
	}
	if path[0] == MetaKey {
		if len(path) == 1 {
			return fmt.Errorf("META: cannot assign a value to the metadata block")
		}
		if len(path) == 2 {
			doc.Meta.Set(path[1], v)
			return nil
		}
		cur, ok := doc.Meta.Get(path[1])
		if !ok {
			return fmt.Errorf("%s: no such metadata block", strings.Join(path[:2], "."))
		}
		updated, err := setInMap(cur, path[2:], v, path[:2])
		if err != nil {
			return err
		}
		doc.Meta.Set(path[1], updated)
		return nil
	}

	parent := &doc.Sections
	for i, key := range path[:len(path)-1] {
		s, ok := FindSection(*parent, []string{key})
		if !ok {
			return fmt.Errorf("%s: no such block", strings.Join(path[:i+1], "."))
		}
		switch n := s.(type) {
		case *Block:
			parent = &n.Children
		case *Division:
			parent = &n.Children
		default:
			return fmt.Errorf("%s: not a block", strings.Join(path[:i+1], "."))
		}
	}

	last := path[len(path)-1]
	for _, s := range *parent {
		if s.SectionKey() != last {
			continue
		}
		a, ok := s.(*Assignment)
		if !ok {
			return fmt.Errorf("%s: is a block, not an assignment", strings.Join(path, "."))
		}
		a.Value = v
		return nil
	}
	*parent = append(*parent, &Assignment{Key: last, Value: v})
	return nil
}

func setInMap(cur Value, rest []string, v Value, prefix []string) (Value, error) {
	m, ok := cur.(InlineMap)
	if !ok {
		return nil, fmt.Errorf("%s: not a block", strings.Join(prefix, "."))
	}
	out := append(InlineMap(nil), m...)
	key := rest[0]
	for i, e := range out {
		if e.Key != key {
			continue
		}
		if len(rest) == 1 {
			out[i].Value = v
			return out, nil
		}
		nested, err := setInMap(e.Value, rest[1:], v, append(append([]string(nil), prefix...), key))
		if err != nil {
			return nil, err
		}
		out[i].Value = nested
		return out, nil
	}
	if len(rest) > 1 {
		return nil, fmt.Errorf("%s: no such block", strings.Join(append(append([]string(nil), prefix...), key), "."))
	}
	return append(out, Entry{Key: key, Value: v}), nil
}

// SplitPath splits a dotted path. A leading "META." selects metadata; body
// keys that contain dots must be addressed through their segments.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
