package lexer

// Error represents a lexical analysis error.
// The message carries no position; Pos is only for editor tooling.
type Error struct {
	Message string
	Pos     int // byte offset of the offending character
}

func (e *Error) Error() string {
	return "Lexer Error: " + e.Message
}

// Common error messages
const (
	ErrInvalidCharacter   = "Invalid character: %s"
	ErrUnterminatedString = "Unterminated string literal"
)
