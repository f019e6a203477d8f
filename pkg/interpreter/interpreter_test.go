package interpreter_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/leapstack-labs/payjar/internal/testutil"
	"github.com/leapstack-labs/payjar/pkg/interpreter"
	"github.com/leapstack-labs/payjar/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run parses body inside a main definition and executes it.
func run(t *testing.T, body string, opts ...interpreter.Option) ([]string, *interpreter.Interpreter, error) {
	t.Helper()
	prog, err := parser.Parse(testutil.Program(body))
	require.NoError(t, err)

	buf := &interpreter.Buffer{}
	base := []interpreter.Option{
		interpreter.WithSink(buf),
		interpreter.WithLogger(testutil.NewTestLogger(t)),
	}
	in := interpreter.New(append(base, opts...)...)
	err = in.Run(context.Background(), prog)
	return buf.Lines(), in, err
}

func mustRun(t *testing.T, body string, opts ...interpreter.Option) []string {
	t.Helper()
	lines, _, err := run(t, body, opts...)
	require.NoError(t, err)
	return lines
}

// ---------- Hoisting ----------

func TestHoisting(t *testing.T) {
	t.Run("function used before definition", func(t *testing.T) {
		lines := mustRun(t, `
			println(add(1, 2));
			func add(a, b) { return a + b; }
		`)
		assert.Equal(t, []string{"3"}, lines)
	})

	t.Run("class used before definition", func(t *testing.T) {
		lines := mustRun(t, `
			let p = NEW Point();
			println(p.x);
			class Point { let x = 10; }
		`)
		assert.Equal(t, []string{"10"}, lines)
	})

	t.Run("duplicate function fails before any output", func(t *testing.T) {
		lines, _, err := run(t, `
			println(1);
			func f() { pass; }
			func f() { pass; }
		`)
		require.ErrorIs(t, err, interpreter.ErrDuplicateFunction)
		assert.Equal(t, "Runtime Error: Function 'f' is already defined", err.Error())
		assert.Empty(t, lines)
	})

	t.Run("duplicate class", func(t *testing.T) {
		_, _, err := run(t, "class A { } class A { }")
		require.ErrorIs(t, err, interpreter.ErrDuplicateClass)
		assert.Equal(t, "Runtime Error: Class 'A' is already defined", err.Error())
	})

	t.Run("duplicate method", func(t *testing.T) {
		_, _, err := run(t, "class A { func m(self) { pass; } func m(self) { pass; } }")
		require.ErrorIs(t, err, interpreter.ErrDuplicateMethod)
		assert.Equal(t, "Runtime Error: Method 'm' is already defined in class 'A'", err.Error())
	})

	t.Run("second init", func(t *testing.T) {
		_, _, err := run(t, "class A { func init(self) { pass; } func init(self) { pass; } }")
		require.ErrorIs(t, err, interpreter.ErrDuplicateMethod)
	})

	t.Run("nested definition runs more than once", func(t *testing.T) {
		lines := mustRun(t, `
			func outer() {
				func inner() { return 1; }
				return inner();
			}
			println(outer());
			println(outer());
		`)
		assert.Equal(t, []string{"1", "1"}, lines)
	})
}

// ---------- Variables and Scope ----------

func TestVariables(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		output  []string
		wantErr error
		message string
	}{
		{
			name:   "declare and assign",
			body:   "let x = 1; x = x + 1; println(x);",
			output: []string{"2"},
		},
		{
			name:   "declaration without initializer is null",
			body:   "var v; println(v);",
			output: []string{"null"},
		},
		{
			name:    "same scope redeclaration",
			body:    "let x = 1; let x = 2;",
			wantErr: interpreter.ErrRedeclaration,
			message: "Runtime Error: Variable 'x' is already declared in this scope",
		},
		{
			name:   "shadowing in a call scope",
			body:   "let x = 1; func f() { let x = 2; println(x); } f(); println(x);",
			output: []string{"2", "1"},
		},
		{
			name:    "const reassignment",
			body:    "const c = 1; c = 2;",
			wantErr: interpreter.ErrConstAssignment,
			message: "Runtime Error: Cannot reassign constant 'c'",
		},
		{
			name:    "assignment to undeclared",
			body:    "y = 2;",
			wantErr: interpreter.ErrUndeclaredAssignment,
			message: "Runtime Error: Cannot assign to undeclared variable 'y'",
		},
		{
			name:    "undefined variable",
			body:    "println(missing);",
			wantErr: interpreter.ErrUndefinedVariable,
			message: "Runtime Error: Undefined variable 'missing'",
		},
		{
			name:   "callee sees caller bindings",
			body:   "func show() { println(v); } func outer() { let v = 7; show(); } outer();",
			output: []string{"7"},
		},
		{
			name:   "assignment reaches outer scope",
			body:   "let total = 0; func bump() { total = total + 5; } bump(); bump(); println(total);",
			output: []string{"10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, _, err := run(t, tt.body)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.message, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.output, lines)
		})
	}
}

// ---------- Operators ----------

func TestOperators(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"7 / 2", "3"},
		{"-7 / 2", "-3"},
		{"7 % 3", "1"},
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"10 - 4 - 3", "3"},
		{"+5", "5"},
		{"-(2 + 3)", "-5"},
		{`"a" + "b"`, "ab"},
		{`"n=" + 4`, "n=4"},
		{`4 + "!"`, "4!"},
		{"1 < 2", "true"},
		{"2 <= 1", "false"},
		{"3 >= 3", "true"},
		{`"apple" < "banana"`, "true"},
		{`"b" > "a"`, "true"},
		{"1 == 1", "true"},
		{`1 == "1"`, "false"},
		{`"x" != "y"`, "true"},
		{"99999999999999999999 / 4", "25000000000000000000"},
		{"99999999999999999999 + 1", "100000000000000000000"},
		{"9223372036854775807 - 1", "9223372036854775806"},
		{"9223372036854775807 + 1", "9223372036854775808"},
		{"3037000500 * 3037000500", "9223372037000250000"},
		{"0 - 9223372036854775807 - 1", "-9223372036854775808"},
		{"-(0 - 9223372036854775807 - 1)", "9223372036854775808"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			lines := mustRun(t, "println("+tt.expr+");")
			assert.Equal(t, []string{tt.expected}, lines)
		})
	}
}

func TestOperatorErrors(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr error
		message string
	}{
		{"7 / 0", interpreter.ErrDivisionByZero, "Runtime Error: Division by zero"},
		{"7 % 0", interpreter.ErrModuloByZero, "Runtime Error: Modulo by zero"},
		{`"a" - 1`, interpreter.ErrOperandTypes, "Runtime Error: Unsupported operand types for '-': string and number"},
		{`"a" < 1`, interpreter.ErrOperandTypes, "Runtime Error: Unsupported operand types for '<': string and number"},
		{`-"a"`, interpreter.ErrUnaryOperand, "Runtime Error: Unary operator '-' requires a numeric operand"},
		{"1 < (1 == 1)", interpreter.ErrOperandTypes, "Runtime Error: Unsupported operand types for '<': number and bool"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, _, err := run(t, "println("+tt.expr+");")
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestEquality(t *testing.T) {
	lines := mustRun(t, `
		class Box { }
		let a; let b;
		println(a == b);
		let x = NEW Box();
		let y = NEW Box();
		let z = x;
		println(x == y);
		println(x == z);
		println(x != y);
	`)
	assert.Equal(t, []string{"true", "false", "true", "true"}, lines)
}

// ---------- Functions ----------

func TestFunctions(t *testing.T) {
	t.Run("return unwinds the call", func(t *testing.T) {
		lines := mustRun(t, `
			func f() { return 1; println("unreachable"); }
			println(f());
		`)
		assert.Equal(t, []string{"1"}, lines)
	})

	t.Run("no return yields null", func(t *testing.T) {
		lines := mustRun(t, "func f() { pass; } println(f());")
		assert.Equal(t, []string{"null"}, lines)
	})

	t.Run("arguments are evaluated in the caller scope", func(t *testing.T) {
		lines := mustRun(t, `
			let a = 5;
			func f(a, b) { return a + b; }
			println(f(1, a));
		`)
		assert.Equal(t, []string{"6"}, lines)
	})

	t.Run("arity mismatch", func(t *testing.T) {
		_, _, err := run(t, "func f(a) { pass; } f();")
		require.ErrorIs(t, err, interpreter.ErrArity)
		assert.Equal(t, "Runtime Error: Function 'f' expects 1 argument(s), but got 0", err.Error())
	})

	t.Run("undefined function", func(t *testing.T) {
		_, _, err := run(t, "nope();")
		require.ErrorIs(t, err, interpreter.ErrUndefinedFunction)
		assert.Equal(t, "Runtime Error: Undefined function 'nope'", err.Error())
	})

	t.Run("call depth limit", func(t *testing.T) {
		_, in, err := run(t, "func f() { return f(); } f();", interpreter.WithMaxCallDepth(50))
		require.ErrorIs(t, err, interpreter.ErrCallDepth)
		assert.Equal(t, "Runtime Error: Maximum call depth of 50 exceeded", err.Error())
		assert.Equal(t, 1, in.Globals().Depth(), "scopes must be popped on failure")
	})

	t.Run("scopes popped after failure inside a call", func(t *testing.T) {
		_, in, err := run(t, "func f(x) { let y = x / 0; } f(1);")
		require.ErrorIs(t, err, interpreter.ErrDivisionByZero)
		assert.Equal(t, 1, in.Globals().Depth())
	})
}

func TestFunctions_NestedCalls(t *testing.T) {
	lines := mustRun(t, `
		func countdown(n) {
			println(n);
			return n;
		}
		func sum(n) {
			let rest = 0;
			return n + countdown(rest);
		}
		println(sum(4));
	`)
	assert.Equal(t, []string{"0", "4"}, lines)
}

// ---------- Classes ----------

func TestClasses(t *testing.T) {
	t.Run("field default without constructor", func(t *testing.T) {
		lines := mustRun(t, `
			class P { let x = 10; let y; }
			let p = NEW P();
			println(p.x == 10);
			println(p.y);
		`)
		assert.Equal(t, []string{"true", "null"}, lines)
	})

	t.Run("constructor and methods", func(t *testing.T) {
		lines := mustRun(t, `
			class Counter {
				let count = 0;
				func init(self, start) { self.count = start; }
				func inc(self) { self.count = self.count + 1; }
				func get(self) { return innerSelf.count; }
			}
			let c = NEW Counter(5);
			c.inc();
			c.inc();
			println(c.get());
		`)
		assert.Equal(t, []string{"7"}, lines)
	})

	t.Run("init return value is discarded", func(t *testing.T) {
		lines := mustRun(t, `
			class P { func init(self) { return 42; } }
			println(NEW P());
		`)
		assert.Equal(t, []string{"<P instance>"}, lines)
	})

	t.Run("method calls another method on self", func(t *testing.T) {
		lines := mustRun(t, `
			class Greeter {
				let name = "Ada";
				func greet(self) { return "Hi " + self.who(); }
				func who(self) { return self.name; }
			}
			let g = NEW Greeter();
			println(g.greet());
		`)
		assert.Equal(t, []string{"Hi Ada"}, lines)
	})

	t.Run("fields are owned by each instance", func(t *testing.T) {
		lines := mustRun(t, `
			class P { let x = 1; }
			let a = NEW P();
			let b = NEW P();
			a.x = 2;
			println(a.x);
			println(b.x);
		`)
		assert.Equal(t, []string{"2", "1"}, lines)
	})

	t.Run("field initializers run in the calling scope", func(t *testing.T) {
		lines := mustRun(t, `
			class P { let v = base; }
			func make() { let base = 7; return NEW P(); }
			let base = 3;
			let p = NEW P();
			let q = make();
			println(p.v);
			println(q.v);
		`)
		assert.Equal(t, []string{"3", "7"}, lines)
	})

	t.Run("bare field read statement", func(t *testing.T) {
		lines := mustRun(t, `
			class P { let x = 1; }
			let p = NEW P();
			p.x
			println(p.x);
		`)
		assert.Equal(t, []string{"1"}, lines)
	})
}

func TestClasses_MethodsShared(t *testing.T) {
	_, in, err := run(t, `
		class P { func m(self) { pass; } }
		let a = NEW P();
		let b = NEW P();
	`)
	require.NoError(t, err)

	a, err := in.Globals().Get("a")
	require.NoError(t, err)
	b, err := in.Globals().Get("b")
	require.NoError(t, err)

	require.NotNil(t, a.Object())
	require.NotNil(t, b.Object())
	assert.NotSame(t, a.Object(), b.Object())
	assert.Equal(t, fmt.Sprintf("%p", a.Object().Methods), fmt.Sprintf("%p", b.Object().Methods))
	assert.Equal(t, fmt.Sprintf("%p", a.Object().Class.Methods), fmt.Sprintf("%p", a.Object().Methods))
}

func TestClassErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		message string
	}{
		{
			name:    "const field assignment",
			body:    "class P { const y = 1; } let p = NEW P(); p.y = 2;",
			wantErr: interpreter.ErrConstField,
			message: "Runtime Error: Cannot reassign constant field 'y'",
		},
		{
			name:    "init without self",
			body:    "class P { func init(a) { pass; } } let p = NEW P(1);",
			wantErr: interpreter.ErrConstructorSelf,
			message: "Runtime Error: Constructor of class 'P' must have 'self' as its first parameter",
		},
		{
			name:    "constructor arity",
			body:    "class P { func init(self, a) { pass; } } let p = NEW P();",
			wantErr: interpreter.ErrArity,
			message: "Runtime Error: Method 'init' expects 1 argument(s), but got 0",
		},
		{
			name:    "method arity",
			body:    "class P { func m(self) { pass; } } let p = NEW P(); p.m(1);",
			wantErr: interpreter.ErrArity,
			message: "Runtime Error: Method 'm' expects 0 argument(s), but got 1",
		},
		{
			name:    "undefined class",
			body:    "let p = NEW Ghost();",
			wantErr: interpreter.ErrUndefinedClass,
			message: "Runtime Error: Undefined class 'Ghost'",
		},
		{
			name:    "undefined method",
			body:    "class P { } let p = NEW P(); p.run();",
			wantErr: interpreter.ErrUndefinedMethod,
			message: "Runtime Error: Method 'run' not found on instance of 'P'",
		},
		{
			name:    "undefined field read",
			body:    "class P { } let p = NEW P(); println(p.x);",
			wantErr: interpreter.ErrUndefinedField,
			message: "Runtime Error: Field 'x' not found on instance of 'P'",
		},
		{
			name:    "undefined field write",
			body:    "class P { } let p = NEW P(); p.x = 1;",
			wantErr: interpreter.ErrUndefinedField,
			message: "Runtime Error: Field 'x' not found on instance of 'P'",
		},
		{
			name:    "member of non-object",
			body:    "let n = 1; println(n.x);",
			wantErr: interpreter.ErrNonObject,
			message: "Runtime Error: Cannot access member 'x' of non-object value",
		},
		{
			name:    "duplicate field",
			body:    "class P { let x; let x; }",
			wantErr: interpreter.ErrDuplicateField,
			message: "Runtime Error: Field 'x' is already declared in class 'P'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.body)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.message, err.Error())

			var rtErr *interpreter.RuntimeError
			assert.ErrorAs(t, err, &rtErr)
		})
	}
}

func TestConstructorSelfCheckedAtConstruction(t *testing.T) {
	lines, _, err := run(t, `
		class P { func init(a) { pass; } }
		println("before");
		let p = NEW P(1);
	`)
	require.ErrorIs(t, err, interpreter.ErrConstructorSelf)
	assert.Equal(t, []string{"before"}, lines)
}

// ---------- Templates ----------

func TestTemplates(t *testing.T) {
	t.Run("interpolation", func(t *testing.T) {
		lines := mustRun(t, "let name = \"World\"; println(`Hi ${name}`);")
		assert.Equal(t, []string{"Hi World"}, lines)
	})

	t.Run("numbers and objects stringify", func(t *testing.T) {
		lines := mustRun(t, "class C { } let n = 3; let c = NEW C(); println(`${n} ${c}`);")
		assert.Equal(t, []string{"3 <C instance>"}, lines)
	})

	t.Run("undefined splice", func(t *testing.T) {
		_, _, err := run(t, "println(`Hi ${ghost}`);")
		require.ErrorIs(t, err, interpreter.ErrUndefinedVariable)
	})
}

// ---------- Run-level behaviour ----------

func TestRun_PartialOutputOnFailure(t *testing.T) {
	lines, _, err := run(t, "println(1); println(1 / 0); println(2);")
	require.ErrorIs(t, err, interpreter.ErrDivisionByZero)
	assert.Equal(t, []string{"1"}, lines)
}

func TestRun_TopLevelReturnIsAWarning(t *testing.T) {
	lines, in, err := run(t, "println(1); return 5; println(2);")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, lines)
	assert.Equal(t, []string{interpreter.ReturnWarning}, in.Warnings())
}

func TestRun_Readln(t *testing.T) {
	lines := mustRun(t, `
		let n = readln("name? ");
		println(`+"`Hi ${n}`"+`);
		println(readln());
	`, interpreter.WithInput(interpreter.NewLines("Ada")))
	assert.Equal(t, []string{"Hi Ada", "null"}, lines)
}

func TestRun_ReadlnWithoutInput(t *testing.T) {
	lines := mustRun(t, "println(readln());")
	assert.Equal(t, []string{"null"}, lines)
}

func TestRun_Canceled(t *testing.T) {
	prog, err := parser.Parse(testutil.Program("println(1);"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buf := &interpreter.Buffer{}
	err = interpreter.New(interpreter.WithSink(buf)).Run(ctx, prog)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.Lines())
}

func TestRun_IndependentInterpreters(t *testing.T) {
	prog, err := parser.Parse(testutil.Program("let x = 1; println(x);"))
	require.NoError(t, err)

	for range 2 {
		buf := &interpreter.Buffer{}
		require.NoError(t, interpreter.New(interpreter.WithSink(buf)).Run(context.Background(), prog))
		assert.Equal(t, []string{"1"}, buf.Lines())
	}
}
