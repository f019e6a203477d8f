package interpreter

import (
	"context"

	"github.com/leapstack-labs/payjar/pkg/ast"
)

// Class is a registered class definition.
type Class struct {
	Name    string
	Fields  []*ast.FieldDecl
	Methods map[string]*ast.FuncDef
	Ctor    *ast.FuncDef

	def *ast.ClassDef
}

// Object is a constructed instance. Fields belong to the instance; Methods is
// the class's own map, shared by every instance.
type Object struct {
	Class   *Class
	Fields  map[string]*Binding
	Methods map[string]*ast.FuncDef
}

func newClass(def *ast.ClassDef) (*Class, error) {
	class := &Class{
		Name:    def.Name,
		Fields:  def.Fields,
		Methods: make(map[string]*ast.FuncDef, len(def.Methods)),
		Ctor:    def.Ctor,
		def:     def,
	}

	seen := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		if seen[f.Name] {
			return nil, newError(CodeDuplicateField, msgDuplicateField, f.Name, def.Name)
		}
		seen[f.Name] = true
	}

	for _, m := range def.Methods {
		_, exists := class.Methods[m.Name]
		if exists || (m.Name == "init" && def.Ctor != nil) {
			return nil, newError(CodeDuplicateMethod, msgDuplicateMethod, m.Name, def.Name)
		}
		class.Methods[m.Name] = m
	}
	return class, nil
}

// construct evaluates NEW ClassName(args).
func (in *Interpreter) construct(ctx context.Context, n *ast.New) (Value, error) {
	class, ok := in.classes[n.ClassName]
	if !ok {
		return Null, newError(CodeUndefinedClass, msgUndefinedClass, n.ClassName)
	}

	args, err := in.evalArgs(ctx, n.Args)
	if err != nil {
		return Null, err
	}

	obj := &Object{
		Class:   class,
		Fields:  make(map[string]*Binding, len(class.Fields)),
		Methods: class.Methods,
	}
	for _, f := range class.Fields {
		v := Null
		if f.Init != nil {
			v, err = in.eval(ctx, f.Init)
			if err != nil {
				return Null, err
			}
		}
		obj.Fields[f.Name] = &Binding{Value: v, Kind: f.Kind}
	}

	if class.Ctor != nil {
		if len(class.Ctor.Params) == 0 || class.Ctor.Params[0] != "self" {
			return Null, newError(CodeConstructorSelf, msgConstructorSelf, class.Name)
		}
		if _, err := in.invoke(ctx, class.Ctor, obj, args); err != nil {
			return Null, err
		}
	}

	in.logger.Debug("constructed instance", "class", class.Name)
	return ObjectRef(obj), nil
}

// registerFunction handles a function definition met during execution.
// Re-running the same definition is a no-op.
func (in *Interpreter) registerFunction(def *ast.FuncDef) error {
	if existing, ok := in.functions[def.Name]; ok {
		if existing == def {
			return nil
		}
		return newError(CodeDuplicateFunction, msgDuplicateFunction, def.Name)
	}
	in.functions[def.Name] = def
	return nil
}

// registerClass handles a class definition met during execution.
func (in *Interpreter) registerClass(def *ast.ClassDef) error {
	if existing, ok := in.classes[def.Name]; ok {
		if existing.def == def {
			return nil
		}
		return newError(CodeDuplicateClass, msgDuplicateClass, def.Name)
	}
	class, err := newClass(def)
	if err != nil {
		return err
	}
	in.classes[def.Name] = class
	return nil
}
