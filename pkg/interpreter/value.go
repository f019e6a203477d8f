package interpreter

import (
	"math"
	"strconv"
)

// Kind is the runtime type tag of a Value.
type Kind int

// Value kinds.
const (
	NullKind Kind = iota
	NumberKind
	StringKind
	BoolKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case BoolKind:
		return "bool"
	case ObjectKind:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged PayJar value. The zero Value is Null.
//
// Numbers are either integers or reals; integer arithmetic stays integral
// until a real operand is involved.
type Value struct {
	kind Kind
	i    int64
	f    float64
	real bool
	s    string
	b    bool
	obj  *Object
}

// Null is the absent value.
var Null = Value{}

// Int returns an integer Number.
func Int(n int64) Value { return Value{kind: NumberKind, i: n} }

// Real returns a real Number.
func Real(f float64) Value { return Value{kind: NumberKind, f: f, real: true} }

// String returns a String value.
func String(s string) Value { return Value{kind: StringKind, s: s} }

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }

// ObjectRef returns a reference to obj.
func ObjectRef(obj *Object) Value { return Value{kind: ObjectKind, obj: obj} }

// Kind returns the value's type tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == NullKind }

// IsReal reports whether v is a real Number.
func (v Value) IsReal() bool { return v.kind == NumberKind && v.real }

// Int returns the integer payload. Reals are truncated.
func (v Value) Int() int64 {
	if v.real {
		return int64(v.f)
	}
	return v.i
}

// Float returns the numeric payload as a float64.
func (v Value) Float() float64 {
	if v.real {
		return v.f
	}
	return float64(v.i)
}

// Str returns the String payload.
func (v Value) Str() string { return v.s }

// Truth returns the Bool payload.
func (v Value) Truth() bool { return v.b }

// Object returns the referenced instance, or nil.
func (v Value) Object() *Object { return v.obj }

// integral reports whether a Number has no fractional part.
func (v Value) integral() bool {
	if !v.real {
		return true
	}
	return !math.IsInf(v.f, 0) && !math.IsNaN(v.f) && v.f == math.Trunc(v.f)
}

func (v Value) isZero() bool {
	if v.real {
		return v.f == 0
	}
	return v.i == 0
}

// String returns the printed form of v.
func (v Value) String() string {
	switch v.kind {
	case NumberKind:
		if v.real {
			return strconv.FormatFloat(v.f, 'f', -1, 64)
		}
		return strconv.FormatInt(v.i, 10)
	case StringKind:
		return v.s
	case BoolKind:
		return strconv.FormatBool(v.b)
	case ObjectKind:
		return "<" + v.obj.Class.Name + " instance>"
	default:
		return "null"
	}
}

// Equal compares by kind: different kinds are never equal, objects compare by identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NumberKind:
		if !v.real && !o.real {
			return v.i == o.i
		}
		return v.Float() == o.Float()
	case StringKind:
		return v.s == o.s
	case BoolKind:
		return v.b == o.b
	case ObjectKind:
		return v.obj == o.obj
	default:
		return true
	}
}
