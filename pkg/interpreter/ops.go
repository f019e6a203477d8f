package interpreter

import (
	"cmp"
	"math"

	"github.com/leapstack-labs/payjar/pkg/token"
)

var opSymbols = map[token.TokenType]string{
	token.PLUS:    "+",
	token.MINUS:   "-",
	token.STAR:    "*",
	token.SLASH:   "/",
	token.PERCENT: "%",
	token.EQ:      "==",
	token.NE:      "!=",
	token.LT:      "<",
	token.GT:      ">",
	token.LE:      "<=",
	token.GE:      ">=",
}

func opSymbol(op token.TokenType) string {
	if s, ok := opSymbols[op]; ok {
		return s
	}
	return op.String()
}

func operandError(op token.TokenType, left, right Value) error {
	return newError(CodeOperandTypes, msgOperandTypes, opSymbol(op), left.Kind(), right.Kind())
}

// binaryOp applies op to two evaluated operands.
//
//	+        number sum, or concatenation when either side is a string
//	- * / %  numbers only; / truncates when both sides are integral
//	== !=    kind-aware equality
//	< > <= >= numbers, or two strings compared lexicographically
func binaryOp(op token.TokenType, left, right Value) (Value, error) {
	switch op {
	case token.EQ:
		return Bool(left.Equal(right)), nil
	case token.NE:
		return Bool(!left.Equal(right)), nil
	case token.LT, token.GT, token.LE, token.GE:
		return compare(op, left, right)
	case token.PLUS:
		if left.Kind() == StringKind || right.Kind() == StringKind {
			if left.Kind() == ObjectKind || right.Kind() == ObjectKind {
				return Null, operandError(op, left, right)
			}
			return String(left.String() + right.String()), nil
		}
	}

	if left.Kind() != NumberKind || right.Kind() != NumberKind {
		return Null, operandError(op, left, right)
	}
	return arithmetic(op, left, right)
}

func arithmetic(op token.TokenType, left, right Value) (Value, error) {
	switch op {
	case token.SLASH:
		if right.isZero() {
			return Null, newError(CodeDivisionByZero, msgDivisionByZero)
		}
	case token.PERCENT:
		if right.isZero() {
			return Null, newError(CodeModuloByZero, msgModuloByZero)
		}
	}

	if !left.IsReal() && !right.IsReal() {
		if n, ok := intArithmetic(op, left.Int(), right.Int()); ok {
			return Int(n), nil
		}
	}

	a, b := left.Float(), right.Float()
	switch op {
	case token.PLUS:
		return Real(a + b), nil
	case token.MINUS:
		return Real(a - b), nil
	case token.STAR:
		return Real(a * b), nil
	case token.SLASH:
		if left.integral() && right.integral() {
			return Real(math.Trunc(a / b)), nil
		}
		return Real(a / b), nil
	case token.PERCENT:
		return Real(math.Mod(a, b)), nil
	}
	return Null, operandError(op, left, right)
}

func compare(op token.TokenType, left, right Value) (Value, error) {
	var c int
	switch {
	case left.Kind() == NumberKind && right.Kind() == NumberKind:
		if !left.IsReal() && !right.IsReal() {
			c = cmp.Compare(left.Int(), right.Int())
		} else {
			c = cmp.Compare(left.Float(), right.Float())
		}
	case left.Kind() == StringKind && right.Kind() == StringKind:
		c = cmp.Compare(left.Str(), right.Str())
	default:
		return Null, operandError(op, left, right)
	}

	switch op {
	case token.LT:
		return Bool(c < 0), nil
	case token.GT:
		return Bool(c > 0), nil
	case token.LE:
		return Bool(c <= 0), nil
	default:
		return Bool(c >= 0), nil
	}
}

// intArithmetic applies op to two integers. It reports false when the result
// does not fit in an int64, so the caller falls back to real arithmetic.
func intArithmetic(op token.TokenType, a, b int64) (int64, bool) {
	switch op {
	case token.PLUS:
		c := a + b
		return c, (a^c)&(b^c) >= 0
	case token.MINUS:
		c := a - b
		return c, (a^b)&(a^c) >= 0
	case token.STAR:
		if a == 0 || b == 0 {
			return 0, true
		}
		if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, false
		}
		c := a * b
		return c, c/b == a
	case token.SLASH:
		if a == math.MinInt64 && b == -1 {
			return 0, false
		}
		return a / b, true
	case token.PERCENT:
		if b == -1 {
			return 0, true
		}
		return a % b, true
	}
	return 0, false
}
