// Package schema defines typed schema descriptors for OCTAVE documents and
// loads them from YAML or CUE definition files.
//
// A definition lists META fields and, optionally, body fields addressed by
// dotted paths through blocks. Each field carries a constraint chain that
// is parsed once at load time.
package schema
