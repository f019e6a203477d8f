package parser

import (
	"github.com/leapstack-labs/payjar/pkg/ast"
	"github.com/leapstack-labs/payjar/pkg/token"
)

// Statement parsing: blocks, print, declarations, functions, identifier-led statements.
//
// Grammar:
//
//	block      → "{" stmt* "}"
//	print      → "println" "(" expression ")" ";"
//	decl       → ("let" | "const" | "var") IDENT ["=" expression] ";"
//	funcdef    → "func" IDENT "(" [IDENT ("," IDENT)*] ")" block
//	pass       → "pass" ";"
//	return     → "return" expression ";"
//	ident-led  → IDENT "=" expression ";"
//	           | IDENT args ";"
//	           | head ("." IDENT [args])+ ["=" expression ";" | ";"]
//	head       → IDENT | "self" | "innerSelf"
//
// A member chain that ends in a call must be followed by ";". A chain that
// ends in a plain field read is accepted as a statement without one.

// parseBlock parses a brace-delimited statement list.
func (p *Parser) parseBlock() ([]ast.Node, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	var body []ast.Node
	for !p.check(token.RBRACE) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.pos++ // }

	return body, nil
}

// parseStatement dispatches on the first token of a statement.
func (p *Parser) parseStatement() (ast.Node, error) {
	switch p.current().Type {
	case token.PRINTLN:
		return p.parsePrint()
	case token.LET, token.CONST, token.VAR:
		return p.parseDecl()
	case token.FUNC:
		return p.parseFuncDef(false)
	case token.CLASS:
		return p.parseClassDef()
	case token.PASS:
		p.pos++
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.Pass{}, nil
	case token.RETURN:
		return p.parseReturn()
	case token.IDENT, token.SELF, token.INNERSELF:
		return p.parseIdentStatement()
	}

	// Anything else cannot start a statement, so the enclosing block must end here.
	return nil, p.errorf(token.RBRACE.String())
}

// parsePrint parses: println ( expression ) ;
func (p *Parser) parsePrint() (ast.Node, error) {
	p.pos++ // println
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.Print{Expr: expr}, nil
}

// parseDecl parses: (let | const | var) IDENT [= expression] ;
func (p *Parser) parseDecl() (ast.Node, error) {
	kind, name, init, err := p.parseBinding()
	if err != nil {
		return nil, err
	}
	return &ast.VarDecl{Kind: kind, Name: name, Init: init}, nil
}

// parseBinding parses the shared shape of variable and field declarations.
func (p *Parser) parseBinding() (ast.DeclKind, string, ast.Node, error) {
	var kind ast.DeclKind
	switch p.current().Type {
	case token.CONST:
		kind = ast.Const
	case token.VAR:
		kind = ast.Var
	default:
		kind = ast.Let
	}
	p.pos++

	name, err := p.expect(token.IDENT)
	if err != nil {
		return 0, "", nil, err
	}

	var init ast.Node
	if p.match(token.ASSIGN) {
		init, err = p.parseExpression()
		if err != nil {
			return 0, "", nil, err
		}
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return 0, "", nil, err
	}
	return kind, name.Literal, init, nil
}

// parseFuncDef parses a function or method definition.
// Free functions accept identifier parameters only. Methods other than init
// must declare self as their first parameter.
func (p *Parser) parseFuncDef(isMethod bool) (*ast.FuncDef, error) {
	p.pos++ // func

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	fn := &ast.FuncDef{Name: name.Literal, IsMethod: isMethod}

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	if isMethod && fn.Name != "init" && !p.check(token.SELF) {
		return nil, p.errorf(token.SELF.String())
	}

	if !p.check(token.RPAREN) {
		for {
			if isMethod && len(fn.Params) == 0 && p.match(token.SELF) {
				fn.Params = append(fn.Params, "self")
			} else {
				param, err := p.expect(token.IDENT)
				if err != nil {
					return nil, err
				}
				fn.Params = append(fn.Params, param.Literal)
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	fn.Body, err = p.parseBlock()
	if err != nil {
		return nil, err
	}
	return fn, nil
}

// parseReturn parses: return expression ;
func (p *Parser) parseReturn() (ast.Node, error) {
	p.pos++ // return
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.Return{Value: value}, nil
}

// parseIdentStatement parses assignments, call statements and member chains.
func (p *Parser) parseIdentStatement() (ast.Node, error) {
	head := p.current()

	if head.Type == token.IDENT {
		switch {
		case p.checkPeek(token.ASSIGN):
			p.pos += 2
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.SEMI); err != nil {
				return nil, err
			}
			return &ast.Assign{Name: head.Literal, Value: value}, nil

		case p.checkPeek(token.LPAREN):
			call, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.SEMI); err != nil {
				return nil, err
			}
			return call, nil

		case !p.checkPeek(token.DOT):
			p.pos++
			return nil, p.errorf(token.ASSIGN.String())
		}
	}

	p.pos++
	var object ast.Node = &ast.VarAccess{Name: head.Literal}
	if head.Type != token.IDENT {
		object = &ast.VarAccess{Name: "self"}
		if !p.check(token.DOT) {
			return nil, p.errorf(token.DOT.String())
		}
	}

	chain, err := p.parseMemberChain(object)
	if err != nil {
		return nil, err
	}
	member := chain.(*ast.MemberAccess)

	switch {
	case member.IsCall:
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return member, nil

	case p.match(token.ASSIGN):
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.MemberAssign{Object: member.Object, Name: member.Name, Value: value}, nil

	default:
		// Bare field read: no trailing semicolon is consumed.
		return member, nil
	}
}
