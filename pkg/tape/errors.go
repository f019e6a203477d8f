package tape

import "fmt"

// Code classifies an Error.
type Code int

// Error codes.
const (
	CodeUnderflow Code = iota + 1
	CodeUnmatchedOpen
	CodeUnmatchedClose
	CodeStepLimit
)

// Error is a tape machine failure. Message is the complete user-facing text.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrUnderflow      = &Error{Code: CodeUnderflow}
	ErrUnmatchedOpen  = &Error{Code: CodeUnmatchedOpen}
	ErrUnmatchedClose = &Error{Code: CodeUnmatchedClose}
	ErrStepLimit      = &Error{Code: CodeStepLimit}
)

const (
	msgUnderflow      = "Runtime Error: Data pointer moved left of tape start."
	msgUnmatchedOpen  = "Syntax Error: Unmatched '[' at position %d"
	msgUnmatchedClose = "Syntax Error: Unmatched ']' at position %d"
	msgStepLimit      = "Runtime Error: Step limit of %d exceeded."
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
