// Package tools implements the document operations exposed by the octave
// CLI: create, amend, ingest, eject, validate and history.
//
// Every operation runs the same pipeline: PREPARSE (tokenize), PARSE,
// NORMALIZE, VALIDATE, REPAIR and a second VALIDATE over the repaired
// document. Operations that write files restrict paths to an extension
// allow-list, report the SHA-256 of the canonical text, and record each
// revision in the store when one is configured.
package tools
