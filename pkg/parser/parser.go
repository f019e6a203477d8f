// Package parser builds a PayJar syntax tree from a token sequence.
//
// # Usage
//
//	prog, err := parser.Parse(src)
//	if err != nil {
//	    // *lexer.Error or *parser.SyntaxError
//	}
//
// # Grammar Overview
//
// The parser is a recursive descent parser with a single token of lookahead
// (two where an identifier-led statement has to be classified):
//
//	program  → "public" "class" IDENT "main" "(" "@" "self" ")" "{" stmt* "}"
//	stmt     → print | decl | funcdef | classdef | pass | return | ident-led
//
// See each file for detailed grammar rules for that section. There is no
// error recovery: the first mismatch is returned as a *SyntaxError.
package parser

import (
	"github.com/leapstack-labs/payjar/pkg/ast"
	"github.com/leapstack-labs/payjar/pkg/lexer"
	"github.com/leapstack-labs/payjar/pkg/token"
)

// Parser parses a token sequence into a program.
type Parser struct {
	tokens []token.Token
	pos    int // index of the current token
}

// New creates a parser over an already tokenized program.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes and parses src. Lexer failures are returned unchanged.
func Parse(src string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(tokens).ParseProgram()
}

// ParseProgram parses the main definition and requires that no tokens follow it.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errorf(token.EOFName)
	}
	return prog, nil
}

// parseProgram parses: public class Name main(@self) { stmt* }
func (p *Parser) parseProgram() (*ast.Program, error) {
	for _, t := range []token.TokenType{token.PUBLIC, token.CLASS} {
		if _, err := p.expect(t); err != nil {
			return nil, err
		}
	}

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	for _, t := range []token.TokenType{token.MAIN, token.LPAREN, token.AT, token.SELF, token.RPAREN} {
		if _, err := p.expect(t); err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Program{Name: name.Literal, Body: body}, nil
}

// ---------- Token Helpers ----------

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

// current returns the current token. Past the end it returns a zero Token.
func (p *Parser) current() token.Token {
	if p.atEnd() {
		return token.Token{}
	}
	return p.tokens[p.pos]
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return !p.atEnd() && p.tokens[p.pos].Type == t
}

// checkPeek returns true if the token after the current one is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.pos++
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise returns a SyntaxError.
func (p *Parser) expect(t token.TokenType) (token.Token, error) {
	if p.check(t) {
		tok := p.tokens[p.pos]
		p.pos++
		return tok, nil
	}
	return token.Token{}, p.errorf(t.String())
}

// errorf builds a SyntaxError at the current position.
func (p *Parser) errorf(expected string) *SyntaxError {
	actual := token.EOFName
	if !p.atEnd() {
		actual = p.tokens[p.pos].Type.String()
	}
	return &SyntaxError{Expected: expected, Actual: actual, Index: p.pos}
}
