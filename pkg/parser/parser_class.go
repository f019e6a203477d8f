package parser

import (
	"github.com/leapstack-labs/payjar/pkg/ast"
	"github.com/leapstack-labs/payjar/pkg/token"
)

// Class parsing.
//
// Grammar:
//
//	classdef → "class" IDENT "{" (field | method)* "}"
//	field    → ("let" | "const") IDENT ["=" expression] ";"
//	method   → "func" IDENT "(" params ")" block
//
// The first method named init becomes the constructor. Its self parameter is
// checked when an instance is constructed, not here.

// parseClassDef parses a class definition.
func (p *Parser) parseClassDef() (*ast.ClassDef, error) {
	p.pos++ // class

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	class := &ast.ClassDef{Name: name.Literal}

	for !p.check(token.RBRACE) {
		switch p.current().Type {
		case token.LET, token.CONST:
			kind, fieldName, init, err := p.parseBinding()
			if err != nil {
				return nil, err
			}
			class.Fields = append(class.Fields, &ast.FieldDecl{Kind: kind, Name: fieldName, Init: init})

		case token.FUNC:
			method, err := p.parseFuncDef(true)
			if err != nil {
				return nil, err
			}
			if method.Name == "init" && class.Ctor == nil {
				class.Ctor = method
			} else {
				class.Methods = append(class.Methods, method)
			}

		default:
			return nil, p.errorf(token.RBRACE.String())
		}
	}
	p.pos++ // }

	return class, nil
}
