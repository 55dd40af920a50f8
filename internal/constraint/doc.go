// Package constraint parses constraint chains such as
// "REQ∧ENUM[ACTIVE,ARCHIVED]" and evaluates values against them.
//
// Constraints form a closed set of variants. A Chain is parsed once and can
// be evaluated any number of times, concurrently; regular expressions are
// compiled at parse time.
package constraint
