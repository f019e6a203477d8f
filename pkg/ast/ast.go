// Package ast defines the syntax tree produced by the PayJar parser.
//
// Node is a closed sum type: every variant lives in this package and the
// unexported marker method keeps other packages from adding more. Consumers
// dispatch with a type switch over the concrete pointer types.
package ast

import "github.com/leapstack-labs/payjar/pkg/token"

// Node is the interface for all syntax tree nodes.
type Node interface {
	node() // marker method to restrict implementation
}

// DeclKind is the declaration kind of a binding.
type DeclKind int

// DeclKind constants.
const (
	Let DeclKind = iota
	Const
	Var
)

func (k DeclKind) String() string {
	switch k {
	case Let:
		return "LET"
	case Const:
		return "CONST"
	case Var:
		return "VAR"
	default:
		return "UNKNOWN"
	}
}

// Program is the main definition: public class Name main(@self) { Body }.
type Program struct {
	Name string
	Body []Node
}

// Print is println(Expr);
type Print struct {
	Expr Node
}

// VarDecl declares Name in the innermost scope. Init is nil when omitted.
type VarDecl struct {
	Kind DeclKind
	Name string
	Init Node
}

// Assign is Name = Value;
type Assign struct {
	Name  string
	Value Node
}

// StringLiteral is a quoted string.
type StringLiteral struct {
	Value string
}

// NumberLiteral is a non-negative integer literal. Literals too large for
// int64 fall back to a real value.
type NumberLiteral struct {
	Literal string
	Int     int64
	Real    float64
	IsReal  bool
}

// VarAccess reads a variable. self and innerSelf parse to VarAccess{Name: "self"}.
type VarAccess struct {
	Name string
}

// TemplatePart is one segment of a template string: literal text or a ${name} splice.
type TemplatePart struct {
	Text   string // literal text, or the spliced identifier when Splice is set
	Splice bool
}

// TemplateString is a backtick literal split into ordered parts.
type TemplateString struct {
	Parts []TemplatePart
}

// FuncDef defines a free function or, when IsMethod is set, a class method.
// Method parameter lists include the leading self.
type FuncDef struct {
	Name     string
	Params   []string
	Body     []Node
	IsMethod bool
}

// Call invokes a free function by name.
type Call struct {
	Name string
	Args []Node
}

// Return is return Value;
type Return struct {
	Value Node
}

// FieldDecl is a class field declaration. Kind is Let or Const.
type FieldDecl struct {
	Kind DeclKind
	Name string
	Init Node
}

// ClassDef defines a class. The init method, if any, is held in Ctor and is
// not part of Methods.
type ClassDef struct {
	Name    string
	Fields  []*FieldDecl
	Methods []*FuncDef
	Ctor    *FuncDef
}

// New is NEW ClassName(Args).
type New struct {
	ClassName string
	Args      []Node
}

// MemberAccess reads Object.Name, or calls Object.Name(Args) when IsCall is set.
type MemberAccess struct {
	Object Node
	Name   string
	IsCall bool
	Args   []Node
}

// MemberAssign is Object.Name = Value;
type MemberAssign struct {
	Object Node
	Name   string
	Value  Node
}

// Binary is Left Op Right.
type Binary struct {
	Op    token.TokenType
	Left  Node
	Right Node
}

// Unary is Op Operand, where Op is PLUS or MINUS.
type Unary struct {
	Op      token.TokenType
	Operand Node
}

// Pass is the empty statement.
type Pass struct{}

// Readln reads one line of input. Prompt is nil when omitted.
type Readln struct {
	Prompt Node
}

func (*Program) node()        {}
func (*Print) node()          {}
func (*VarDecl) node()        {}
func (*Assign) node()         {}
func (*StringLiteral) node()  {}
func (*NumberLiteral) node()  {}
func (*VarAccess) node()      {}
func (*TemplateString) node() {}
func (*FuncDef) node()        {}
func (*Call) node()           {}
func (*Return) node()         {}
func (*FieldDecl) node()      {}
func (*ClassDef) node()       {}
func (*New) node()            {}
func (*MemberAccess) node()   {}
func (*MemberAssign) node()   {}
func (*Binary) node()         {}
func (*Unary) node()          {}
func (*Pass) node()           {}
func (*Readln) node()         {}
