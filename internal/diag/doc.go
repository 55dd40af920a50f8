// Package diag holds the OCTAVE error-code taxonomy and the structured
// ValidationError shared by the constraint engine, validator and repair
// engine.
//
// Codes are stable: E-codes are errors, W-codes are normalization warnings
// recorded while lexing and parsing.
package diag
