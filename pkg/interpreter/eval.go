package interpreter

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/leapstack-labs/payjar/pkg/ast"
	"github.com/leapstack-labs/payjar/pkg/token"
)

// eval evaluates an expression node.
func (in *Interpreter) eval(ctx context.Context, node ast.Node) (Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		if n.IsReal {
			return Real(n.Real), nil
		}
		return Int(n.Int), nil

	case *ast.StringLiteral:
		return String(n.Value), nil

	case *ast.TemplateString:
		return in.evalTemplate(n)

	case *ast.VarAccess:
		return in.scopes.Get(n.Name)

	case *ast.Call:
		return in.callFunction(ctx, n)

	case *ast.New:
		return in.construct(ctx, n)

	case *ast.MemberAccess:
		return in.evalMember(ctx, n)

	case *ast.Binary:
		left, err := in.eval(ctx, n.Left)
		if err != nil {
			return Null, err
		}
		right, err := in.eval(ctx, n.Right)
		if err != nil {
			return Null, err
		}
		return binaryOp(n.Op, left, right)

	case *ast.Unary:
		operand, err := in.eval(ctx, n.Operand)
		if err != nil {
			return Null, err
		}
		if operand.Kind() != NumberKind {
			return Null, newError(CodeUnaryOperand, msgUnaryOperand, opSymbol(n.Op))
		}
		if n.Op == token.MINUS {
			if operand.IsReal() || operand.Int() == math.MinInt64 {
				return Real(-operand.Float()), nil
			}
			return Int(-operand.Int()), nil
		}
		return operand, nil

	case *ast.Readln:
		return in.evalReadln(ctx, n)

	default:
		return Null, fmt.Errorf("cannot evaluate %T", node)
	}
}

// evalArgs evaluates call arguments left to right in the current scope.
func (in *Interpreter) evalArgs(ctx context.Context, nodes []ast.Node) ([]Value, error) {
	args := make([]Value, 0, len(nodes))
	for _, n := range nodes {
		v, err := in.eval(ctx, n)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// evalMember evaluates obj.name or obj.name(args).
func (in *Interpreter) evalMember(ctx context.Context, m *ast.MemberAccess) (Value, error) {
	target, err := in.eval(ctx, m.Object)
	if err != nil {
		return Null, err
	}
	obj := target.Object()
	if obj == nil {
		return Null, newError(CodeNonObject, msgNonObject, m.Name)
	}

	if m.IsCall {
		return in.callMethod(ctx, obj, m)
	}

	field, ok := obj.Fields[m.Name]
	if !ok {
		return Null, newError(CodeUndefinedField, msgUndefinedField, m.Name, obj.Class.Name)
	}
	return field.Value, nil
}

// evalTemplate joins literal parts with the string forms of spliced variables.
func (in *Interpreter) evalTemplate(t *ast.TemplateString) (Value, error) {
	var sb strings.Builder
	for _, part := range t.Parts {
		if !part.Splice {
			sb.WriteString(part.Text)
			continue
		}
		v, err := in.scopes.Get(part.Text)
		if err != nil {
			return Null, err
		}
		sb.WriteString(v.String())
	}
	return String(sb.String()), nil
}

// evalReadln reads one line from the configured input, or yields null.
func (in *Interpreter) evalReadln(ctx context.Context, r *ast.Readln) (Value, error) {
	prompt := ""
	if r.Prompt != nil {
		v, err := in.eval(ctx, r.Prompt)
		if err != nil {
			return Null, err
		}
		prompt = v.String()
	}

	if in.input == nil {
		return Null, nil
	}
	line, ok := in.input.ReadLine(prompt)
	if !ok {
		return Null, nil
	}
	return String(line), nil
}
