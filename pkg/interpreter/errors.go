package interpreter

import "fmt"

// Code classifies a RuntimeError.
type Code int

// Runtime error codes.
const (
	CodeUndefinedVariable Code = iota + 1
	CodeRedeclaration
	CodeUndeclaredAssignment
	CodeConstAssignment
	CodeDivisionByZero
	CodeModuloByZero
	CodeArity
	CodeUndefinedFunction
	CodeUndefinedMethod
	CodeUndefinedClass
	CodeConstructorSelf
	CodeUndefinedField
	CodeConstField
	CodeUnaryOperand
	CodeNonObject
	CodeDuplicateFunction
	CodeDuplicateClass
	CodeDuplicateMethod
	CodeDuplicateField
	CodeOperandTypes
	CodeCallDepth
)

// RuntimeError aborts a run. Output emitted before it stays valid.
type RuntimeError struct {
	Code    Code
	Message string
}

func (e *RuntimeError) Error() string {
	return "Runtime Error: " + e.Message
}

// Is matches another *RuntimeError with the same code, so the sentinels below
// work with errors.Is.
func (e *RuntimeError) Is(target error) bool {
	t, ok := target.(*RuntimeError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrUndefinedVariable    = &RuntimeError{Code: CodeUndefinedVariable}
	ErrRedeclaration        = &RuntimeError{Code: CodeRedeclaration}
	ErrUndeclaredAssignment = &RuntimeError{Code: CodeUndeclaredAssignment}
	ErrConstAssignment      = &RuntimeError{Code: CodeConstAssignment}
	ErrDivisionByZero       = &RuntimeError{Code: CodeDivisionByZero}
	ErrModuloByZero         = &RuntimeError{Code: CodeModuloByZero}
	ErrArity                = &RuntimeError{Code: CodeArity}
	ErrUndefinedFunction    = &RuntimeError{Code: CodeUndefinedFunction}
	ErrUndefinedMethod      = &RuntimeError{Code: CodeUndefinedMethod}
	ErrUndefinedClass       = &RuntimeError{Code: CodeUndefinedClass}
	ErrConstructorSelf      = &RuntimeError{Code: CodeConstructorSelf}
	ErrUndefinedField       = &RuntimeError{Code: CodeUndefinedField}
	ErrConstField           = &RuntimeError{Code: CodeConstField}
	ErrUnaryOperand         = &RuntimeError{Code: CodeUnaryOperand}
	ErrNonObject            = &RuntimeError{Code: CodeNonObject}
	ErrDuplicateFunction    = &RuntimeError{Code: CodeDuplicateFunction}
	ErrDuplicateClass       = &RuntimeError{Code: CodeDuplicateClass}
	ErrDuplicateMethod      = &RuntimeError{Code: CodeDuplicateMethod}
	ErrDuplicateField       = &RuntimeError{Code: CodeDuplicateField}
	ErrOperandTypes         = &RuntimeError{Code: CodeOperandTypes}
	ErrCallDepth            = &RuntimeError{Code: CodeCallDepth}
)

// Common error messages
const (
	msgUndefinedVariable    = "Undefined variable '%s'"
	msgRedeclaration        = "Variable '%s' is already declared in this scope"
	msgUndeclaredAssignment = "Cannot assign to undeclared variable '%s'"
	msgConstAssignment      = "Cannot reassign constant '%s'"
	msgDivisionByZero       = "Division by zero"
	msgModuloByZero         = "Modulo by zero"
	msgFunctionArity        = "Function '%s' expects %d argument(s), but got %d"
	msgMethodArity          = "Method '%s' expects %d argument(s), but got %d"
	msgUndefinedFunction    = "Undefined function '%s'"
	msgUndefinedMethod      = "Method '%s' not found on instance of '%s'"
	msgUndefinedClass       = "Undefined class '%s'"
	msgConstructorSelf      = "Constructor of class '%s' must have 'self' as its first parameter"
	msgUndefinedField       = "Field '%s' not found on instance of '%s'"
	msgConstField           = "Cannot reassign constant field '%s'"
	msgUnaryOperand         = "Unary operator '%s' requires a numeric operand"
	msgNonObject            = "Cannot access member '%s' of non-object value"
	msgDuplicateFunction    = "Function '%s' is already defined"
	msgDuplicateClass       = "Class '%s' is already defined"
	msgDuplicateMethod      = "Method '%s' is already defined in class '%s'"
	msgDuplicateField       = "Field '%s' is already declared in class '%s'"
	msgOperandTypes         = "Unsupported operand types for '%s': %s and %s"
	msgCallDepth            = "Maximum call depth of %d exceeded"
)

func newError(code Code, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ReturnWarning is recorded when a return reaches the top level of a run.
const ReturnWarning = "Warning: 'return' outside of a function was ignored"

// InternalError wraps a panic recovered while running a program.
type InternalError struct {
	Panic any
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("Internal Error: %v", e.Panic)
}
