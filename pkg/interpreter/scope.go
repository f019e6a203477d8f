package interpreter

import "github.com/leapstack-labs/payjar/pkg/ast"

// Binding is a named value together with its declaration kind.
type Binding struct {
	Value Value
	Kind  ast.DeclKind
}

// Scopes is the stack of lookup frames. The bottom frame is the global scope
// and is never popped.
//
// Lookup walks the whole stack from innermost to outermost, so a callee can
// see its caller's bindings.
type Scopes struct {
	frames []map[string]*Binding
}

// NewScopes returns a stack holding only the global scope.
func NewScopes() *Scopes {
	return &Scopes{frames: []map[string]*Binding{{}}}
}

// Push opens a new innermost frame.
func (s *Scopes) Push() {
	s.frames = append(s.frames, map[string]*Binding{})
}

// Pop discards the innermost frame. The global scope is kept.
func (s *Scopes) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth returns the number of frames, including the global scope.
func (s *Scopes) Depth() int {
	return len(s.frames)
}

func (s *Scopes) innermost() map[string]*Binding {
	return s.frames[len(s.frames)-1]
}

// Declare binds name in the innermost frame. It fails if that frame already has name.
func (s *Scopes) Declare(name string, v Value, kind ast.DeclKind) error {
	frame := s.innermost()
	if _, exists := frame[name]; exists {
		return newError(CodeRedeclaration, msgRedeclaration, name)
	}
	frame[name] = &Binding{Value: v, Kind: kind}
	return nil
}

// Define binds name in the innermost frame without searching outward or
// checking for an existing binding. It is used for self and parameters.
func (s *Scopes) Define(name string, v Value) {
	s.innermost()[name] = &Binding{Value: v, Kind: ast.Let}
}

// Assign updates the nearest binding of name.
func (s *Scopes) Assign(name string, v Value) error {
	b, ok := s.Lookup(name)
	if !ok {
		return newError(CodeUndeclaredAssignment, msgUndeclaredAssignment, name)
	}
	if b.Kind == ast.Const {
		return newError(CodeConstAssignment, msgConstAssignment, name)
	}
	b.Value = v
	return nil
}

// Lookup finds the nearest binding of name.
func (s *Scopes) Lookup(name string) (*Binding, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i][name]; ok {
			return b, true
		}
	}
	return nil, false
}

// Get returns the value of the nearest binding of name.
func (s *Scopes) Get(name string) (Value, error) {
	b, ok := s.Lookup(name)
	if !ok {
		return Null, newError(CodeUndefinedVariable, msgUndefinedVariable, name)
	}
	return b.Value, nil
}
