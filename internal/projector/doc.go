// Package projector renders documents as views and output formats.
//
// A projection mode decides which top-level sections survive; executive
// and developer views drop sections and are always reported as lossy. A
// format decides the output syntax: OCTAVE, canonical JSON, YAML in
// document order, or Markdown.
package projector
