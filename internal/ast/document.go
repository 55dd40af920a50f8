package ast

// InferredName is the envelope name given to documents without an
// explicit ===NAME=== line.
const InferredName = "INFERRED"

// MetaKey is the reserved metadata block key.
const MetaKey = "META"

// Position is a 1-based source location.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Document is one envelope's worth of OCTAVE.
type Document struct {
	Name         string
	Meta         Fields
	HasSeparator bool
	Sections     []Section
}

// Section is a sealed interface over top-level and nested body nodes.
// Only *Assignment, *Block and *Division implement it.
type Section interface {
	section() // Sealed
	SectionKey() string
	Position() Position
}

// Assignment is KEY::value.
type Assignment struct {
	Key   string
	Value Value
	Pos   Position
}

func (*Assignment) section() {}

// SectionKey returns the assignment key.
func (a *Assignment) SectionKey() string { return a.Key }

// Position returns the source position of the key.
func (a *Assignment) Position() Position { return a.Pos }

// Block is KEY: followed by indented children.
type Block struct {
	Key      string
	Children []Section
	Pos      Position
}

func (*Block) section() {}

// SectionKey returns the block key.
func (b *Block) SectionKey() string { return b.Key }

// Position returns the source position of the key.
func (b *Block) Position() Position { return b.Pos }

// Division is a numbered or named section marker, §ID::NAME, followed by
// indented children.
type Division struct {
	ID       string
	Name     string
	Children []Section
	Pos      Position
}

func (*Division) section() {}

// SectionKey returns "§ID", the key used in paths.
func (d *Division) SectionKey() string { return "§" + d.ID }

// Position returns the source position of the marker.
func (d *Division) Position() Position { return d.Pos }

// Label returns "§ID::NAME", or "§ID::" when the division is unnamed.
func (d *Division) Label() string {
	return "§" + d.ID + "::" + d.Name
}

// Children returns the child sections of a block or division, nil for
// assignments.
func Children(s Section) []Section {
	switch n := s.(type) {
	case *Block:
		return n.Children
	case *Division:
		return n.Children
	}
	return nil
}

// Fields is an ordered mapping used for metadata. The zero value is empty
// and ready to use.
type Fields struct {
	entries []Entry
}

// NewFields builds Fields from entries, keeping their order.
func NewFields(entries ...Entry) Fields {
	return Fields{entries: append([]Entry(nil), entries...)}
}

// Len returns the number of fields.
func (f *Fields) Len() int { return len(f.entries) }

// Keys returns field names in insertion order.
func (f *Fields) Keys() []string {
	keys := make([]string, len(f.entries))
	for i, e := range f.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the ordered entries.
func (f *Fields) Entries() []Entry {
	return append([]Entry(nil), f.entries...)
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (Value, bool) {
	for _, e := range f.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key, or appends a new field.
func (f *Fields) Set(key string, v Value) {
	for i, e := range f.entries {
		if e.Key == key {
			f.entries[i].Value = v
			return
		}
	}
	f.entries = append(f.entries, Entry{Key: key, Value: v})
}

// Delete removes key and reports whether it was present.
func (f *Fields) Delete(key string) bool {
	for i, e := range f.entries {
		if e.Key == key {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true
		}
	}
	return false
}
