package lexer

import (
	"io"
	"strings"
	"testing"

	"github.com/leapstack-labs/payjar/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_ProgramHeader(t *testing.T) {
	tokens, err := Tokenize("public class App main(@self) { }")
	require.NoError(t, err)

	expected := []struct {
		typ token.TokenType
		lit string
	}{
		{token.PUBLIC, "public"},
		{token.CLASS, "class"},
		{token.IDENT, "App"},
		{token.MAIN, "main"},
		{token.LPAREN, "("},
		{token.AT, "@"},
		{token.SELF, "self"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
	}

	require.Len(t, tokens, len(expected), "wrong number of tokens")
	for i, exp := range expected {
		assert.Equal(t, exp.typ, tokens[i].Type, "token[%d] type", i)
		assert.Equal(t, exp.lit, tokens[i].Literal, "token[%d] literal", i)
	}
}

func TestLexer_Keywords(t *testing.T) {
	tests := []struct {
		input    string
		expected token.TokenType
	}{
		{"innerSelf", token.INNERSELF},
		{"func", token.FUNC},
		{"println", token.PRINTLN},
		{"pass", token.PASS},
		{"let", token.LET},
		{"const", token.CONST},
		{"var", token.VAR},
		{"NEW", token.NEW},
		{"new", token.IDENT},
		{"readln", token.READLN},
		{"return", token.RETURN},
		{"selfish", token.IDENT},
		{"_tmp1", token.IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.expected, tokens[0].Type)
		})
	}
}

func TestLexer_Operators(t *testing.T) {
	tokens, err := Tokenize("== != <= >= = < > + - * / % ; , .")
	require.NoError(t, err)

	expected := []token.TokenType{
		token.EQ, token.NE, token.LE, token.GE, token.ASSIGN, token.LT, token.GT,
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.SEMI, token.COMMA, token.DOT,
	}
	require.Len(t, tokens, len(expected))
	for i, exp := range expected {
		assert.Equal(t, exp, tokens[i].Type, "token[%d]", i)
	}
}

func TestLexer_GreedyTwoCharOperators(t *testing.T) {
	tokens, err := Tokenize("a<=b==c")
	require.NoError(t, err)

	types := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	assert.Equal(t, []token.TokenType{token.IDENT, token.LE, token.IDENT, token.EQ, token.IDENT}, types)
}

func TestLexer_Literals(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		typ     token.TokenType
		literal string
	}{
		{"integer", "12345", token.NUMBER, "12345"},
		{"double quoted", `"hello world"`, token.STRING, "hello world"},
		{"single quoted", `'it is'`, token.STRING, "it is"},
		{"no escape processing", `"a\nb"`, token.STRING, `a\nb`},
		{"other quote inside", `"it's"`, token.STRING, "it's"},
		{"template", "`Hi ${name}`", token.TEMPLATE, "Hi ${name}"},
		{"empty string", `""`, token.STRING, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.typ, tokens[0].Type)
			assert.Equal(t, tt.literal, tokens[0].Literal)
		})
	}
}

func TestLexer_NumberThenIdentifier(t *testing.T) {
	tokens, err := Tokenize("12abc")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, token.NUMBER, tokens[0].Type)
	assert.Equal(t, token.IDENT, tokens[1].Type)
	assert.Equal(t, "abc", tokens[1].Literal)
}

func TestLexer_Whitespace(t *testing.T) {
	tokens, err := Tokenize("let\tx\f=\v1;\r\n")
	require.NoError(t, err)

	var types []token.TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []token.TokenType{token.LET, token.IDENT, token.ASSIGN, token.NUMBER, token.SEMI}, types)
}

func TestLexer_Comments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"line comment", "let x = 1; // trailing\nlet y", []string{"let", "x", "=", "1", ";", "let", "y"}},
		{"block comment", "a /* b c */ d", []string{"a", "d"}},
		{"multiline block", "a /* b\nc\n*/ d", []string{"a", "d"}},
		{"shortest match", "a /* b */ c /* d */ e", []string{"a", "c", "e"}},
		{"block separates tokens", "a/**/b", []string{"a", "b"}},
		{"non nesting", "a /* b /* c */ d */", []string{"a", "d", "*", "/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			literals := make([]string, len(tokens))
			for i, tok := range tokens {
				literals[i] = tok.Literal
			}
			assert.Equal(t, tt.expected, literals)
		})
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"lone bang", "a ! b", "Lexer Error: Invalid character: !"},
		{"unknown character", "let x = 1 # 2;", "Lexer Error: Invalid character: #"},
		{"non ascii", "let é = 1;", "Lexer Error: Invalid character: é"},
		{"unterminated double", `println("abc);`, "Lexer Error: Unterminated string literal"},
		{"unterminated single", `'abc`, "Lexer Error: Unterminated string literal"},
		{"unterminated template", "`abc", "Lexer Error: Unterminated string literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)

			var lexErr *Error
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestLexer_Lazy(t *testing.T) {
	// Tokens before the bad character are still produced one at a time.
	l := New("let x # y")

	tok, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.LET, tok.Type)

	tok, err = l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, token.IDENT, tok.Type)

	_, err = l.NextToken()
	require.Error(t, err)
}

func TestLexer_Exhaustion(t *testing.T) {
	l := New("  \n\t ")
	_, err := l.NextToken()
	assert.Equal(t, io.EOF, err)

	tokens, err := Tokenize("")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestLexer_Positions(t *testing.T) {
	src := "let x = 1; // note\n/* a\nb */ println(x);"
	tokens, err := Tokenize(src)
	require.NoError(t, err)

	for _, tok := range tokens {
		assert.Equal(t, tok.Literal, src[tok.Pos:tok.Pos+len(tok.Literal)], "token %s", tok)
	}
	assert.Equal(t, strings.Index(src, "println"), tokens[5].Pos)
}

func TestLexer_ErrorPositions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pos   int
	}{
		{"invalid character", "let x # y", 6},
		{"unterminated string", `println("abc);`, 8},
		{"after comment", "/* c */ !", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			var lexErr *Error
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tt.pos, lexErr.Pos)
		})
	}
}

func TestStripComments_PreservesOffsets(t *testing.T) {
	src := "a // x\nb /* y\nz */ c"
	stripped := StripComments(src)
	assert.Len(t, stripped, len(src))
	assert.Equal(t, strings.Count(src, "\n"), strings.Count(stripped, "\n"))
	assert.Equal(t, "a     \nb     \n     c", stripped)
}

func TestComments(t *testing.T) {
	src := "a // x\nb /* y\nz */ c"
	comments := Comments(src)
	require.Len(t, comments, 2)

	assert.Equal(t, Comment{Text: "// x", Pos: 2}, comments[0])
	assert.False(t, comments[0].Block())
	assert.Equal(t, 6, comments[0].End())

	assert.Equal(t, Comment{Text: "/* y\nz */", Pos: 9}, comments[1])
	assert.True(t, comments[1].Block())
	assert.Empty(t, Comments("println(1);"))
}
