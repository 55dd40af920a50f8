// Package lexer turns OCTAVE text into a position-tagged token stream.
//
// Input is NFC-normalized before scanning. ASCII operator aliases
// (->, +, ~, vs, |, &, #) are replaced by their canonical glyphs and every
// replacement is recorded in the normalization log. The last token is
// always EOF.
package lexer
