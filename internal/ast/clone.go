package ast

// Clone returns a deep copy of doc that shares nothing with the original.
func (doc *Document) Clone() *Document {
	if doc == nil {
		return nil
	}
	out := &Document{
		Name:         doc.Name,
		HasSeparator: doc.HasSeparator,
		Sections:     CloneSections(doc.Sections),
	}
	for _, e := range doc.Meta.entries {
		out.Meta.entries = append(out.Meta.entries, Entry{Key: e.Key, Value: CloneValue(e.Value)})
	}
	return out
}

// CloneSections deep-copies a section list.
func CloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	for i, s := range sections {
		switch n := s.(type) {
		case *Assignment:
			out[i] = &Assignment{Key: n.Key, Value: CloneValue(n.Value), Pos: n.Pos}
		case *Block:
			out[i] = &Block{Key: n.Key, Children: CloneSections(n.Children), Pos: n.Pos}
		case *Division:
			out[i] = &Division{ID: n.ID, Name: n.Name, Children: CloneSections(n.Children), Pos: n.Pos}
		}
	}
	return out
}

// CloneValue deep-copies lists and maps; scalars are immutable.
func CloneValue(v Value) Value {
	switch val := v.(type) {
	case List:
		out := make(List, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	case InlineMap:
		out := make(InlineMap, len(val))
		for i, e := range val {
			out[i] = Entry{Key: e.Key, Value: CloneValue(e.Value)}
		}
		return out
	default:
		return v
	}
}
