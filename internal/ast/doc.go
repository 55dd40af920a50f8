// Package ast defines the OCTAVE document model shared by every pipeline
// stage.
//
// This package contains data definitions plus pure helpers (path lookup,
// deep clone, canonical JSON, content hashing). It imports nothing
// internal, so every other package can depend on it.
//
// Key design constraints:
//   - Value and Section are sealed sum types; exhaustive type switches are
//     the only way to inspect them
//   - Bool is never a number: Int and Float are distinct from Bool
//   - Documents own their sections exclusively; Clone before mutating
package ast
