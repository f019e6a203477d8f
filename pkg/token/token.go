// Package token defines the lexical tokens of the PayJar language.
//
// Token types are plain constants so that the parser can switch on them
// directly. Their String form is the kind name used in syntax error messages
// (for example "SEMICOLON" or "IDENTIFIER").
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType reads clearly at call sites
type TokenType int32

//nolint:revive // ALL_CAPS names mirror the kind names printed in error messages
const (
	ILLEGAL TokenType = iota

	// Literals
	IDENT    // identifier
	NUMBER   // 123
	STRING   // 'hello' or "hello"
	TEMPLATE // `Hi ${name}`

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	ASSIGN   // =
	EQ       // ==
	NE       // !=
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	SEMI     // ;
	COMMA    // ,
	DOT      // .
	AT       // @

	// Keywords
	PUBLIC
	CLASS
	MAIN
	SELF
	INNERSELF
	FUNC
	PRINTLN
	PASS
	LET
	CONST
	VAR
	NEW
	READLN
	RETURN
)

// End returns the byte offset just past the token in the source. Quoted
// literals add their two quote characters back.
func (t Token) End() int {
	switch t.Type {
	case STRING, TEMPLATE:
		return t.Pos + len(t.Literal) + 2
	default:
		return t.Pos + len(t.Literal)
	}
}

// EOFName is printed in place of a token kind when the parser runs out of tokens.
const EOFName = "EOF"

// String returns the kind name of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to the kind names used in diagnostics.
var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL",

	IDENT:    "IDENTIFIER",
	NUMBER:   "NUMBER",
	STRING:   "STRING",
	TEMPLATE: "TEMPLATE_STRING",

	PLUS:    "PLUS",
	MINUS:   "MINUS",
	STAR:    "MULTIPLY",
	SLASH:   "DIVIDE",
	PERCENT: "MODULO",
	ASSIGN:  "ASSIGN",
	EQ:      "EQUALS",
	NE:      "NOT_EQUALS",
	LT:      "LESS_THAN",
	GT:      "GREATER_THAN",
	LE:      "LESS_EQUAL",
	GE:      "GREATER_EQUAL",
	LPAREN:  "LPAREN",
	RPAREN:  "RPAREN",
	LBRACE:  "LBRACE",
	RBRACE:  "RBRACE",
	SEMI:    "SEMICOLON",
	COMMA:   "COMMA",
	DOT:     "DOT",
	AT:      "AT",

	PUBLIC:    "PUBLIC",
	CLASS:     "CLASS",
	MAIN:      "MAIN",
	SELF:      "SELF",
	INNERSELF: "INNER_SELF",
	FUNC:      "FUNC",
	PRINTLN:   "PRINTLN",
	PASS:      "PASS",
	LET:       "LET",
	CONST:     "CONST",
	VAR:       "VAR",
	NEW:       "NEW",
	READLN:    "READLN",
	RETURN:    "RETURN",
}

// keywords maps keyword spellings to their token types. Keywords are case-sensitive.
var keywords = map[string]TokenType{
	"public":    PUBLIC,
	"class":     CLASS,
	"main":      MAIN,
	"self":      SELF,
	"innerSelf": INNERSELF,
	"func":      FUNC,
	"println":   PRINTLN,
	"pass":      PASS,
	"let":       LET,
	"const":     CONST,
	"var":       VAR,
	"NEW":       NEW,
	"readln":    READLN,
	"return":    RETURN,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= PUBLIC && t <= RETURN
}

// IsOperator returns true if the token type is an operator or punctuation.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= AT
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // byte offset of the first character in the source
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}
