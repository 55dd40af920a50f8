// Package emitter serializes documents to canonical OCTAVE text.
//
// Canonical output always carries an explicit envelope, Unicode operator
// glyphs, "::" without surrounding spaces and two-space indentation
// computed from structure. Emit is idempotent: parsing its output and
// emitting again yields identical bytes.
package emitter
