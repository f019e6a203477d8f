package parser

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/leapstack-labs/payjar/pkg/ast"
	"github.com/leapstack-labs/payjar/pkg/token"
)

// Expression parsing with fixed precedence.
//
// Grammar:
//
//	expression → term (("==" | "!=" | "<" | ">" | "<=" | ">=") term)*
//	term       → factor (("+" | "-") factor)*
//	factor     → unary | primary (("*" | "/" | "%") primary)*
//	unary      → ("+" | "-") factor
//	primary    → NUMBER | STRING | TEMPLATE
//	           | ident-expr | "self" chain | "innerSelf" chain
//	           | "readln" "(" [expression] ")"
//	           | "NEW" IDENT args
//	           | "(" expression ")"
//	ident-expr → IDENT [args] chain
//	chain      → ("." IDENT [args])*
//	args       → "(" [expression ("," expression)*] ")"

// parseExpression parses a comparison chain.
func (p *Parser) parseExpression() (ast.Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for isComparison(p.current().Type) {
		op := p.current().Type
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func isComparison(t token.TokenType) bool {
	switch t {
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		return true
	}
	return false
}

// parseTerm parses additive expressions.
func (p *Parser) parseTerm() (ast.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.current().Type
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseFactor parses a unary expression or a multiplicative chain of primaries.
// A leading sign applies to the whole factor that follows it.
func (p *Parser) parseFactor() (ast.Node, error) {
	if p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.current().Type
		p.pos++
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Operand: operand}, nil
	}

	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.current().Type
		p.pos++
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parsePrimary parses literals, identifiers, object creation, readln and groups.
func (p *Parser) parsePrimary() (ast.Node, error) {
	tok := p.current()

	switch {
	case p.check(token.NUMBER):
		p.pos++
		return parseNumber(tok.Literal), nil

	case p.check(token.STRING):
		p.pos++
		return &ast.StringLiteral{Value: tok.Literal}, nil

	case p.check(token.TEMPLATE):
		p.pos++
		return parseTemplate(tok.Literal), nil

	case p.check(token.IDENT):
		var base ast.Node = &ast.VarAccess{Name: tok.Literal}
		if p.checkPeek(token.LPAREN) {
			call, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			base = call
		} else {
			p.pos++
		}
		return p.parseMemberChain(base)

	case p.check(token.SELF), p.check(token.INNERSELF):
		p.pos++
		return p.parseMemberChain(&ast.VarAccess{Name: "self"})

	case p.check(token.READLN):
		return p.parseReadln()

	case p.check(token.NEW):
		return p.parseNew()

	case p.check(token.LPAREN):
		p.pos++
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	}

	return nil, p.errorf(expectExpression)
}

// parseCall parses: IDENT args
func (p *Parser) parseCall() (*ast.Call, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return &ast.Call{Name: name.Literal, Args: args}, nil
}

// parseMemberChain parses zero or more .name or .name(args) suffixes onto object.
func (p *Parser) parseMemberChain(object ast.Node) (ast.Node, error) {
	for p.match(token.DOT) {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		member := &ast.MemberAccess{Object: object, Name: name.Literal}
		if p.check(token.LPAREN) {
			member.IsCall = true
			member.Args, err = p.parseArgs()
			if err != nil {
				return nil, err
			}
		}
		object = member
	}
	return object, nil
}

// parseArgs parses a parenthesized, comma separated argument list.
func (p *Parser) parseArgs() ([]ast.Node, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var args []ast.Node
	if !p.check(token.RPAREN) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parseReadln parses: readln ( [expression] )
func (p *Parser) parseReadln() (ast.Node, error) {
	p.pos++ // readln
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	readln := &ast.Readln{}
	if !p.check(token.RPAREN) {
		prompt, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		readln.Prompt = prompt
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return readln, nil
}

// parseNew parses: NEW IDENT args
func (p *Parser) parseNew() (ast.Node, error) {
	p.pos++ // NEW
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return &ast.New{ClassName: name.Literal, Args: args}, nil
}

// parseNumber converts a digit run. Values past the int64 range become reals.
func parseNumber(lit string) *ast.NumberLiteral {
	n, err := strconv.ParseInt(lit, 10, 64)
	if err == nil {
		return &ast.NumberLiteral{Literal: lit, Int: n}
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		f, _ := strconv.ParseFloat(lit, 64)
		return &ast.NumberLiteral{Literal: lit, Real: f, IsReal: true}
	}
	// The lexer only produces digit runs, so any other failure is unreachable.
	return &ast.NumberLiteral{Literal: lit}
}

// splicePattern matches a ${identifier} splice inside a template literal.
var splicePattern = regexp.MustCompile(`\$\{([A-Za-z_]\w*)\}`)

// parseTemplate splits raw template text into literal and splice parts.
// Text that looks like a splice but is not ${identifier} stays literal.
func parseTemplate(raw string) *ast.TemplateString {
	tmpl := &ast.TemplateString{}
	last := 0
	for _, loc := range splicePattern.FindAllStringSubmatchIndex(raw, -1) {
		if loc[0] > last {
			tmpl.Parts = append(tmpl.Parts, ast.TemplatePart{Text: raw[last:loc[0]]})
		}
		tmpl.Parts = append(tmpl.Parts, ast.TemplatePart{Text: raw[loc[2]:loc[3]], Splice: true})
		last = loc[1]
	}
	if last < len(raw) {
		tmpl.Parts = append(tmpl.Parts, ast.TemplatePart{Text: raw[last:]})
	}
	return tmpl
}
