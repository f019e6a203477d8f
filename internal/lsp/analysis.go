package lsp

import (
	"errors"
	"io"
	"strings"

	"github.com/leapstack-labs/payjar/pkg/ast"
	"github.com/leapstack-labs/payjar/pkg/lexer"
	"github.com/leapstack-labs/payjar/pkg/parser"
	"github.com/leapstack-labs/payjar/pkg/token"
)

// Analysis is the editor view of one document: the tokens that lexed, the
// syntax tree when parsing succeeded, and the declarations found in the
// token stream.
type Analysis struct {
	Tokens  []token.Token
	Program *ast.Program // nil when Err is set
	Err     error        // *lexer.Error or *parser.SyntaxError
	Symbols []Symbol
}

// Analyze lexes and parses src. Tokens read before a lexer error are kept so
// that completion and hover keep working on broken documents.
func Analyze(src string) *Analysis {
	a := &Analysis{}

	l := lexer.New(src)
	for {
		tok, err := l.NextToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			a.Err = err
			break
		}
		a.Tokens = append(a.Tokens, tok)
	}

	a.Symbols = collectSymbols(a.Tokens)
	if a.Err == nil {
		a.Program, a.Err = parser.New(a.Tokens).ParseProgram()
	}
	return a
}

// DeclKind classifies a declaration.
type DeclKind int

// Declaration kinds.
const (
	DeclClass DeclKind = iota
	DeclFunction
	DeclMethod
	DeclField
	DeclVariable
	DeclConstant
	DeclParameter
)

// Symbol is a declaration found in a document.
type Symbol struct {
	Name      string
	Kind      DeclKind
	Container string   // enclosing class of a method or field
	Params    []string // parameters of a function or method
	Keyword   string   // let, const or var for variables and fields
	Pos       int      // byte offset of the declared name
	End       int      // byte offset just past the declaration body, or the name for simple declarations
}

// Signature renders the declaration the way it reads in source.
func (s Symbol) Signature() string {
	switch s.Kind {
	case DeclClass:
		return "class " + s.Name
	case DeclFunction:
		return "func " + s.Name + "(" + strings.Join(s.Params, ", ") + ")"
	case DeclMethod:
		return "func " + s.Container + "." + s.Name + "(" + strings.Join(s.Params, ", ") + ")"
	case DeclField:
		return s.Keyword + " " + s.Container + "." + s.Name
	case DeclParameter:
		return "param " + s.Name
	default:
		return s.Keyword + " " + s.Name
	}
}

// frame is one brace-delimited block while scanning declarations.
type frame struct {
	class  string // set for class bodies
	symbol int    // index into symbols of the declaration owning this block, or -1
}

// collectSymbols scans tokens for class, function, method, field, variable and
// parameter declarations. It works on token streams that do not parse.
func collectSymbols(tokens []token.Token) []Symbol {
	var (
		symbols []Symbol
		stack   []frame
		pending = frame{symbol: -1}
	)

	inClass := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1].class
	}
	nextIdent := func(i int) (token.Token, bool) {
		if i+1 < len(tokens) && tokens[i+1].Type == token.IDENT {
			return tokens[i+1], true
		}
		return token.Token{}, false
	}

	for i, tok := range tokens {
		switch tok.Type {
		case token.LBRACE:
			stack = append(stack, pending)
			pending = frame{symbol: -1}

		case token.RBRACE:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.symbol >= 0 {
				symbols[top.symbol].End = tok.Pos + 1
			}

		case token.CLASS:
			name, ok := nextIdent(i)
			if !ok || (i > 0 && tokens[i-1].Type == token.PUBLIC) {
				continue
			}
			symbols = append(symbols, Symbol{Name: name.Literal, Kind: DeclClass, Pos: name.Pos, End: name.End()})
			pending = frame{class: name.Literal, symbol: len(symbols) - 1}

		case token.FUNC:
			name, ok := nextIdent(i)
			if !ok {
				continue
			}
			params := scanParams(tokens, i+2)
			sym := Symbol{Name: name.Literal, Kind: DeclFunction, Params: params, Pos: name.Pos, End: name.End()}
			if class := inClass(); class != "" {
				sym.Kind = DeclMethod
				sym.Container = class
			}
			symbols = append(symbols, sym)
			pending = frame{symbol: len(symbols) - 1}

			for _, p := range paramTokens(tokens, i+2) {
				symbols = append(symbols, Symbol{Name: p.Literal, Kind: DeclParameter, Pos: p.Pos, End: p.End()})
			}

		case token.LET, token.CONST, token.VAR:
			name, ok := nextIdent(i)
			if !ok {
				continue
			}
			sym := Symbol{Name: name.Literal, Kind: DeclVariable, Keyword: tok.Literal, Pos: name.Pos, End: name.End()}
			switch {
			case inClass() != "":
				sym.Kind = DeclField
				sym.Container = inClass()
			case tok.Type == token.CONST:
				sym.Kind = DeclConstant
			}
			symbols = append(symbols, sym)
		}
	}
	return symbols
}

// paramTokens returns the identifier tokens of a parameter list starting at
// the LPAREN at index start. self is not included.
func paramTokens(tokens []token.Token, start int) []token.Token {
	if start >= len(tokens) || tokens[start].Type != token.LPAREN {
		return nil
	}
	var params []token.Token
	for i := start + 1; i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.IDENT:
			params = append(params, tokens[i])
		case token.SELF, token.COMMA:
		default:
			return params
		}
	}
	return params
}

// scanParams returns the parameter names as written, including self.
func scanParams(tokens []token.Token, start int) []string {
	if start >= len(tokens) || tokens[start].Type != token.LPAREN {
		return nil
	}
	var names []string
	for i := start + 1; i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.IDENT, token.SELF:
			names = append(names, tokens[i].Literal)
		case token.COMMA:
		default:
			return names
		}
	}
	return names
}

// Lookup returns the declarations named name, classes and functions first.
func (a *Analysis) Lookup(name string) []Symbol {
	var found, params []Symbol
	for _, s := range a.Symbols {
		if s.Name != name {
			continue
		}
		if s.Kind == DeclParameter {
			params = append(params, s)
			continue
		}
		found = append(found, s)
	}
	return append(found, params...)
}
