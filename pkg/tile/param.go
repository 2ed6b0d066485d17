package tile

import (
	"fmt"
	"strconv"
)

// ParamKind is the discriminant of a Param.
type ParamKind uint8

// Parameter kinds.
const (
	KindInvalid ParamKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// String returns a human-readable kind name.
func (k ParamKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Invalid(%d)", uint8(k))
	}
}

// Param is a named tile parameter value. Exactly one of the payload fields is
// meaningful, selected by Kind. The zero Param is invalid.
type Param struct {
	kind ParamKind
	b    bool
	i    int
	f    float64
	s    string
}

// Bool creates a boolean parameter.
func Bool(v bool) Param { return Param{kind: KindBool, b: v} }

// Int creates an integer parameter.
func Int(v int) Param { return Param{kind: KindInt, i: v} }

// Float creates a floating point parameter.
func Float(v float64) Param { return Param{kind: KindFloat, f: v} }

// String creates a string parameter.
func String(v string) Param { return Param{kind: KindString, s: v} }

// Kind returns the parameter's discriminant.
func (p Param) Kind() ParamKind { return p.kind }

// Valid reports whether the parameter carries a value.
func (p Param) Valid() bool { return p.kind != KindInvalid }

// AsBool returns the boolean payload. Panics if the parameter is not a bool.
func (p Param) AsBool() bool {
	p.mustBe(KindBool)
	return p.b
}

// AsInt returns the integer payload. Panics if the parameter is not an int.
func (p Param) AsInt() int {
	p.mustBe(KindInt)
	return p.i
}

// AsFloat returns the float payload. Panics if the parameter is not a float.
func (p Param) AsFloat() float64 {
	p.mustBe(KindFloat)
	return p.f
}

// AsString returns the string payload. Panics if the parameter is not a string.
func (p Param) AsString() string {
	p.mustBe(KindString)
	return p.s
}

func (p Param) mustBe(k ParamKind) {
	if p.kind != k {
		panic(fmt.Errorf("%w: have %s, want %s", ErrParamKind, p.kind, k))
	}
}

// Equal reports whether both parameters have the same kind and value.
func (p Param) Equal(other Param) bool {
	if p.kind != other.kind {
		return false
	}
	switch p.kind {
	case KindBool:
		return p.b == other.b
	case KindInt:
		return p.i == other.i
	case KindFloat:
		return p.f == other.f
	case KindString:
		return p.s == other.s
	default:
		return true
	}
}

// String formats the payload.
func (p Param) String() string {
	switch p.kind {
	case KindBool:
		return strconv.FormatBool(p.b)
	case KindInt:
		return strconv.Itoa(p.i)
	case KindFloat:
		return strconv.FormatFloat(p.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(p.s)
	default:
		return "<invalid>"
	}
}
