package lexer

import "fmt"

// Error is a fatal lexical error.
type Error struct {
	Code    string
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %d:%d: %s", e.Code, e.Line, e.Column, e.Message)
}
