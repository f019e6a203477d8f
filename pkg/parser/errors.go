package parser

import "fmt"

// SyntaxError is the first mismatch between the expected and actual token kind.
// Parsing stops at the first SyntaxError; no partial tree is returned.
type SyntaxError struct {
	Expected string
	Actual   string // token kind name, or EOF past the last token
	Index    int    // index into the token sequence
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error: Expected %s, but got %s. Index: %d", e.Expected, e.Actual, e.Index)
}

// Pseudo-kinds used where no single token kind is expected.
const (
	expectExpression = "EXPRESSION"
)
