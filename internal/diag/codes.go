package diag

// Error codes.
const (
	ErrAmbiguousColon    = "E001" // single colon followed by a value on the same line
	ErrMultipleDocuments = "E002" // several documents and no explicit schema selector
	ErrMissingRequired   = "E003" // required field absent or empty
	ErrTargetInference   = "E004" // routing target not stated
	ErrLexical           = "E005" // tabs, word boundaries, enum value not found
	ErrAmbiguousEnum     = "E006" // enum prefix matches more than one value
	ErrTypeMismatch      = "E007" // wrong type, unknown field in strict mode, constant mismatch
	ErrPattern           = "E008" // regex did not match
	ErrPathChars         = "E009" // invalid path characters
	ErrAppendOnly        = "E010" // append-only field is not a list
	ErrRange             = "E011" // numeric range violation
	ErrMaxLength         = "E012" // too long
	ErrMinLength         = "E013" // too short
	ErrDateFormat        = "E014" // date or timestamp format
	ErrUnclassified      = "E999" // constraint conflict or unknown constraint
)

// Warning codes for normalizations applied while reading lenient input.
const (
	WarnUnicodeNFC  = "W001" // text rewritten to Unicode NFC
	WarnASCIIAlias  = "W002" // ASCII operator alias replaced by its glyph
	WarnIndentation = "W003" // indentation step normalized to two spaces
	WarnEnvelope    = "W004" // envelope inferred or closed
	WarnWhitespace  = "W005" // whitespace around operators removed
)

var descriptions = map[string]string{
	ErrAmbiguousColon:    "ambiguous single-colon assignment",
	ErrMultipleDocuments: "multiple documents without schema selector",
	ErrMissingRequired:   "missing required field",
	ErrTargetInference:   "routing target not stated",
	ErrLexical:           "lexical violation",
	ErrAmbiguousEnum:     "ambiguous enumeration prefix",
	ErrTypeMismatch:      "type mismatch",
	ErrPattern:           "pattern mismatch",
	ErrPathChars:         "invalid path characters",
	ErrAppendOnly:        "append-only violation",
	ErrRange:             "range violation",
	ErrMaxLength:         "maximum length exceeded",
	ErrMinLength:         "minimum length not met",
	ErrDateFormat:        "date or timestamp format",
	ErrUnclassified:      "unclassified",
	WarnUnicodeNFC:       "unicode normalized",
	WarnASCIIAlias:       "ascii alias normalized",
	WarnIndentation:      "indentation normalized",
	WarnEnvelope:         "envelope normalized",
	WarnWhitespace:       "whitespace normalized",
}

// Describe returns a short label for a code, or "" if the code is unknown.
func Describe(code string) string {
	return descriptions[code]
}
