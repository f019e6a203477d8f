package interpreter

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/payjar/pkg/ast"
)

// outcome is how a statement finished: normally, or by returning a value.
type outcome struct {
	returning bool
	value     Value
}

var normal = outcome{}

// exec runs one statement.
func (in *Interpreter) exec(ctx context.Context, stmt ast.Node) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return normal, err
	}

	switch s := stmt.(type) {
	case *ast.Print:
		v, err := in.eval(ctx, s.Expr)
		if err != nil {
			return normal, err
		}
		in.sink.Emit(v.String())
		return normal, nil

	case *ast.VarDecl:
		v := Null
		if s.Init != nil {
			var err error
			if v, err = in.eval(ctx, s.Init); err != nil {
				return normal, err
			}
		}
		return normal, in.scopes.Declare(s.Name, v, s.Kind)

	case *ast.Assign:
		v, err := in.eval(ctx, s.Value)
		if err != nil {
			return normal, err
		}
		return normal, in.scopes.Assign(s.Name, v)

	case *ast.MemberAssign:
		return normal, in.assignMember(ctx, s)

	case *ast.Return:
		v, err := in.eval(ctx, s.Value)
		if err != nil {
			return normal, err
		}
		return outcome{returning: true, value: v}, nil

	case *ast.FuncDef:
		return normal, in.registerFunction(s)

	case *ast.ClassDef:
		return normal, in.registerClass(s)

	case *ast.Pass:
		return normal, nil

	case *ast.Program, *ast.FieldDecl:
		return normal, fmt.Errorf("unexpected %T in statement position", s)

	default:
		// Call and member chain statements.
		_, err := in.eval(ctx, s)
		return normal, err
	}
}

// execBlock runs statements in order and stops at the first return.
func (in *Interpreter) execBlock(ctx context.Context, body []ast.Node) (outcome, error) {
	for _, stmt := range body {
		out, err := in.exec(ctx, stmt)
		if err != nil || out.returning {
			return out, err
		}
	}
	return normal, nil
}

// callFunction evaluates f(args).
func (in *Interpreter) callFunction(ctx context.Context, c *ast.Call) (Value, error) {
	fn, ok := in.functions[c.Name]
	if !ok {
		return Null, newError(CodeUndefinedFunction, msgUndefinedFunction, c.Name)
	}
	if len(c.Args) != len(fn.Params) {
		return Null, newError(CodeArity, msgFunctionArity, fn.Name, len(fn.Params), len(c.Args))
	}

	args, err := in.evalArgs(ctx, c.Args)
	if err != nil {
		return Null, err
	}
	return in.invoke(ctx, fn, nil, args)
}

// callMethod evaluates obj.name(args).
func (in *Interpreter) callMethod(ctx context.Context, obj *Object, m *ast.MemberAccess) (Value, error) {
	fn, ok := obj.Methods[m.Name]
	if !ok {
		return Null, newError(CodeUndefinedMethod, msgUndefinedMethod, m.Name, obj.Class.Name)
	}
	if want := len(fn.Params) - 1; len(m.Args) != want {
		return Null, newError(CodeArity, msgMethodArity, fn.Name, want, len(m.Args))
	}

	args, err := in.evalArgs(ctx, m.Args)
	if err != nil {
		return Null, err
	}
	return in.invoke(ctx, fn, obj, args)
}

// invoke runs fn in a new scope with already evaluated arguments. When self is
// non-nil fn is a method and its first parameter is bound to self.
func (in *Interpreter) invoke(ctx context.Context, fn *ast.FuncDef, self *Object, args []Value) (Value, error) {
	params := fn.Params
	if self != nil {
		params = params[1:]
	}
	if len(args) != len(params) {
		msg := msgFunctionArity
		if self != nil {
			msg = msgMethodArity
		}
		return Null, newError(CodeArity, msg, fn.Name, len(params), len(args))
	}

	if in.depth >= in.maxDepth {
		return Null, newError(CodeCallDepth, msgCallDepth, in.maxDepth)
	}
	in.depth++
	in.scopes.Push()
	defer func() {
		in.scopes.Pop()
		in.depth--
	}()

	if self != nil {
		in.scopes.Define(fn.Params[0], ObjectRef(self))
	}
	for i, name := range params {
		in.scopes.Define(name, args[i])
	}

	out, err := in.execBlock(ctx, fn.Body)
	if err != nil {
		return Null, err
	}
	if out.returning {
		return out.value, nil
	}
	return Null, nil
}

// assignMember evaluates obj.name = value.
func (in *Interpreter) assignMember(ctx context.Context, s *ast.MemberAssign) error {
	target, err := in.eval(ctx, s.Object)
	if err != nil {
		return err
	}
	obj := target.Object()
	if obj == nil {
		return newError(CodeNonObject, msgNonObject, s.Name)
	}

	v, err := in.eval(ctx, s.Value)
	if err != nil {
		return err
	}

	field, ok := obj.Fields[s.Name]
	if !ok {
		return newError(CodeUndefinedField, msgUndefinedField, s.Name, obj.Class.Name)
	}
	if field.Kind == ast.Const {
		return newError(CodeConstField, msgConstField, s.Name)
	}
	field.Value = v
	return nil
}
