package runtime

import (
	"strconv"
	"strings"
)

// Value is the interface implemented by all runtime values.
type Value interface {
	// TypeName returns the value's type name for error messages.
	TypeName() string
	// String returns the display form of the value.
	String() string
}

// IntVal is an integer value.
type IntVal int64

func (v IntVal) TypeName() string { return "integer" }
func (v IntVal) String() string   { return strconv.FormatInt(int64(v), 10) }

// FloatVal is a floating-point value. Whole floats display without a
// trailing ".0": 8.0 renders as 8.
type FloatVal float64

func (v FloatVal) TypeName() string { return "float" }
func (v FloatVal) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// StringVal is a string value.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }

// BoolVal is a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return "boolean" }
func (v BoolVal) String() string {
	if v {
		return "True"
	}
	return "False"
}

// ArrayVal is a mutable, order-preserving sequence of values. Elements may
// themselves be arrays one level deep, representing a matrix.
type ArrayVal struct {
	Elements []Value
}

func (v *ArrayVal) TypeName() string { return "array" }
func (v *ArrayVal) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, e := range v.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteString("}")
	return b.String()
}

// NoValue marks the result of a function that falls off the end of its
// body without executing a return statement.
type NoValue struct{}

func (NoValue) TypeName() string { return "no value" }
func (NoValue) String() string   { return "" }

// IsTruthy maps a value to a boolean for use in conditions: booleans as
// themselves, numbers true iff nonzero, strings true iff non-empty, arrays
// true iff non-empty.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case BoolVal:
		return bool(val)
	case IntVal:
		return val != 0
	case FloatVal:
		return val != 0
	case StringVal:
		return len(val) > 0
	case *ArrayVal:
		return len(val.Elements) > 0
	default:
		return false
	}
}

// toFloat converts a numeric value to float64.
func toFloat(v Value) (float64, bool) {
	switch val := v.(type) {
	case IntVal:
		return float64(val), true
	case FloatVal:
		return float64(val), true
	default:
		return 0, false
	}
}

// toInt converts a numeric value to int64, truncating floats toward zero.
func toInt(v Value) (int64, bool) {
	switch val := v.(type) {
	case IntVal:
		return int64(val), true
	case FloatVal:
		return int64(val), true
	default:
		return 0, false
	}
}

// isNumeric reports whether v is an integer or float.
func isNumeric(v Value) bool {
	switch v.(type) {
	case IntVal, FloatVal:
		return true
	default:
		return false
	}
}
