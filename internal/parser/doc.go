// Package parser builds OCTAVE documents from lexer tokens.
//
// The parser is lenient where no content is invented: a missing envelope
// is inferred, a missing ===END=== is tolerated, wider indentation steps
// are accepted. It is strict where guessing would change meaning: a
// single colon followed by a value (E001), odd or inconsistent
// indentation, META used as a plain key, and several documents passed to
// Parse (E002) are all fatal.
package parser
