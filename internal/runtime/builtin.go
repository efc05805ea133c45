package runtime

import (
	"math"
	"math/rand"

	"dncl-lang/internal/span"
)

// builtinFn is the signature of a built-in function. The span locates the
// call site for error reporting.
type builtinFn func(args []Value, s span.Span) (Value, error)

// newBuiltins builds the builtin table. User-defined functions of the same
// name shadow these.
func newBuiltins(i *Interpreter) map[string]builtinFn {
	return map[string]builtinFn{
		// input() reads one line of external input as a string; the
		// parser produces calls to it for 【外部からの入力】.
		"input": func(args []Value, s span.Span) (Value, error) {
			if len(args) != 0 {
				return nil, runtimeErr(ArityError, s, "input expects 0 arguments, got %d", len(args))
			}
			line, err := i.input()
			if err != nil {
				return nil, runtimeErr(TypeError, s, "external input failed: %v", err)
			}
			return StringVal(line), nil
		},

		// 乱数(m, n) returns a random integer in the inclusive range [m, n].
		"乱数": func(args []Value, s span.Span) (Value, error) {
			if len(args) != 2 {
				return nil, runtimeErr(ArityError, s, "乱数 expects 2 arguments, got %d", len(args))
			}
			m, ok1 := toInt(args[0])
			n, ok2 := toInt(args[1])
			if !ok1 || !ok2 {
				return nil, runtimeErr(TypeError, s, "乱数 expects numeric arguments")
			}
			if n < m {
				return nil, runtimeErr(ArithmeticError, s, "乱数 range [%d, %d] is empty", m, n)
			}
			return IntVal(m + rand.Int63n(n-m+1)), nil
		},

		// 奇数(n) reports whether n, truncated to an integer, is odd.
		"奇数": func(args []Value, s span.Span) (Value, error) {
			if len(args) != 1 {
				return nil, runtimeErr(ArityError, s, "奇数 expects 1 argument, got %d", len(args))
			}
			n, ok := toInt(args[0])
			if !ok {
				return nil, runtimeErr(TypeError, s, "奇数 expects a numeric argument")
			}
			return BoolVal(floorMod(n, 2) == 1), nil
		},

		// 二乗(x) returns x squared, preserving the numeric type.
		"二乗": func(args []Value, s span.Span) (Value, error) {
			if len(args) != 1 {
				return nil, runtimeErr(ArityError, s, "二乗 expects 1 argument, got %d", len(args))
			}
			switch v := args[0].(type) {
			case IntVal:
				return v * v, nil
			case FloatVal:
				return v * v, nil
			default:
				return nil, runtimeErr(TypeError, s, "二乗 expects a numeric argument")
			}
		},

		// べき乗(m, n) returns m raised to the power n. Fractional and
		// negative exponents follow math.Pow.
		"べき乗": func(args []Value, s span.Span) (Value, error) {
			if len(args) != 2 {
				return nil, runtimeErr(ArityError, s, "べき乗 expects 2 arguments, got %d", len(args))
			}
			m, ok1 := toFloat(args[0])
			n, ok2 := toFloat(args[1])
			if !ok1 || !ok2 {
				return nil, runtimeErr(TypeError, s, "べき乗 expects numeric arguments")
			}
			return FloatVal(math.Pow(m, n)), nil
		},
	}
}
