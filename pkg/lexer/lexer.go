// Package lexer tokenizes PayJar source text.
//
// Comments are blanked out in a preprocessing pass, then the lexer walks the
// remaining text with one character of lookahead and produces tokens on
// demand. There is no end-of-file token: NextToken reports io.EOF once the
// input is exhausted.
package lexer

import (
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"

	"github.com/leapstack-labs/payjar/pkg/token"
)

// commentPattern matches line comments and non-nesting block comments.
// The alternation is leftmost-first, so whichever comment opens first wins.
var commentPattern = regexp.MustCompile(`//[^\n]*|/\*[\s\S]*?\*/`)

// StripComments blanks out // and /* */ comments in src. Every comment byte
// becomes a space except newlines, so byte offsets and line numbers in the
// result match the original source.
func StripComments(src string) string {
	return commentPattern.ReplaceAllStringFunc(src, func(c string) string {
		b := []byte(c)
		for i := range b {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
		return string(b)
	})
}

// Comment is a comment as written in the source.
type Comment struct {
	Text string
	Pos  int // byte offset of the opening slash
}

// Block reports whether the comment is a /* */ comment.
func (c Comment) Block() bool {
	return len(c.Text) > 1 && c.Text[1] == '*'
}

// End returns the byte offset just past the comment.
func (c Comment) End() int {
	return c.Pos + len(c.Text)
}

// Comments returns the comments in src in source order. Comment markers
// inside string literals are matched too, the same way StripComments sees them.
func Comments(src string) []Comment {
	locs := commentPattern.FindAllStringIndex(src, -1)
	comments := make([]Comment, len(locs))
	for i, loc := range locs {
		comments[i] = Comment{Text: src[loc[0]:loc[1]], Pos: loc[0]}
	}
	return comments
}

// Lexer tokenizes PayJar input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
}

// New creates a new Lexer for the given source. Comments are stripped up front.
func New(src string) *Lexer {
	l := &Lexer{input: StripComments(src)}
	l.readChar()
	return l
}

// Tokenize drains a lexer over src into an ordered token slice.
func Tokenize(src string) ([]token.Token, error) {
	l := New(src)
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token, or io.EOF when the input is exhausted.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	if l.atEnd() {
		return token.Token{}, io.EOF
	}

	start := l.pos
	switch {
	case isLetter(l.ch) || l.ch == '_':
		lit := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(lit), Literal: lit, Pos: start}, nil
	case isDigit(l.ch):
		return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: start}, nil
	case l.ch == '"' || l.ch == '\'':
		lit, err := l.readQuoted(l.ch)
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Type: token.STRING, Literal: lit, Pos: start}, nil
	case l.ch == '`':
		lit, err := l.readQuoted('`')
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Type: token.TEMPLATE, Literal: lit, Pos: start}, nil
	}

	if tok, ok := l.readTwoCharOperator(); ok {
		tok.Pos = start
		return tok, nil
	}

	var tok token.Token
	switch l.ch {
	case '+':
		tok = newToken(token.PLUS, "+")
	case '-':
		tok = newToken(token.MINUS, "-")
	case '*':
		tok = newToken(token.STAR, "*")
	case '/':
		tok = newToken(token.SLASH, "/")
	case '%':
		tok = newToken(token.PERCENT, "%")
	case '(':
		tok = newToken(token.LPAREN, "(")
	case ')':
		tok = newToken(token.RPAREN, ")")
	case '{':
		tok = newToken(token.LBRACE, "{")
	case '}':
		tok = newToken(token.RBRACE, "}")
	case ';':
		tok = newToken(token.SEMI, ";")
	case ',':
		tok = newToken(token.COMMA, ",")
	case '.':
		tok = newToken(token.DOT, ".")
	case '@':
		tok = newToken(token.AT, "@")
	case '=':
		tok = newToken(token.ASSIGN, "=")
	case '<':
		tok = newToken(token.LT, "<")
	case '>':
		tok = newToken(token.GT, ">")
	default:
		// Covers a lone '!' as well as anything outside the alphabet.
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		return token.Token{}, &Error{Message: fmt.Sprintf(ErrInvalidCharacter, string(r)), Pos: start}
	}

	tok.Pos = start
	l.readChar()
	return tok, nil
}

// readTwoCharOperator matches ==, !=, <= and >= before their one-character prefixes.
func (l *Lexer) readTwoCharOperator() (token.Token, bool) {
	if l.peekChar() != '=' {
		return token.Token{}, false
	}

	var typ token.TokenType
	switch l.ch {
	case '=':
		typ = token.EQ
	case '!':
		typ = token.NE
	case '<':
		typ = token.LE
	case '>':
		typ = token.GE
	default:
		return token.Token{}, false
	}

	lit := l.input[l.pos : l.pos+2]
	l.readChar()
	l.readChar()
	return token.Token{Type: typ, Literal: lit}, true
}

func newToken(tokenType token.TokenType, literal string) token.Token {
	return token.Token{Type: tokenType, Literal: literal}
}

// skipWhitespace skips separators between tokens.
func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isSpace(l.ch) {
		l.readChar()
	}
}

// isSpace reports whether ch is ASCII whitespace.
func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// readQuoted reads raw characters up to the matching quote. No escapes are processed.
func (l *Lexer) readQuoted(quote byte) (string, error) {
	open := l.pos
	l.readChar() // skip opening quote
	start := l.pos
	for !l.atEnd() && l.ch != quote {
		l.readChar()
	}
	if l.atEnd() {
		return "", &Error{Message: ErrUnterminatedString, Pos: open}
	}
	lit := l.input[start:l.pos]
	l.readChar() // skip closing quote
	return lit, nil
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for !l.atEnd() && (isLetter(l.ch) || isDigit(l.ch) || l.ch == '_') {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a run of digits.
func (l *Lexer) readNumber() string {
	start := l.pos
	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
