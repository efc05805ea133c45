package runtime

import (
	"bytes"
	"strings"
	"testing"

	"dncl-lang/internal/parser"
)

// runSource parses and executes source code, returning captured output and
// any error.
func runSource(source string) (string, error) {
	prog, err := parser.ParseSource(source, "test.dncl")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	err = interp.Run(prog)
	return buf.String(), err
}

func expectOutput(t *testing.T, source, expected string) {
	t.Helper()
	out, err := runSource(source)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimRight(out, "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}
}

func expectError(t *testing.T, source, contains string) {
	t.Helper()
	_, err := runSource(source)
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", contains)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("expected error containing %q, got: %v", contains, err)
	}
}

// ---- Assignment and display ----

func TestAssignmentAndRead(t *testing.T) {
	expectOutput(t, "x ← 5\nx を表示する", "5\n")
}

func TestDisplayConcatenation(t *testing.T) {
	expectOutput(t, "1 と 「+」 と 2 を表示する", "1+2\n")
}

func TestDisplayString(t *testing.T) {
	expectOutput(t, "「こんにちは」 を表示する", "こんにちは\n")
}

// ---- Arithmetic ----

func TestArithmeticPrecedence(t *testing.T) {
	expectOutput(t, "7 ＋ 2 × 3 を表示する", "13\n")
	expectOutput(t, "(1 ＋ 2) × 3 を表示する", "9\n")
}

func TestFloatDivision(t *testing.T) {
	// / always divides as floats, even on integer operands.
	expectOutput(t, "10 / 4 を表示する", "2.5\n")
	expectOutput(t, "10 / 5 を表示する", "2\n")
}

func TestIntegerDivision(t *testing.T) {
	expectOutput(t, "7 ÷ 2 を表示する", "3\n")
	// Floor division rounds toward negative infinity.
	expectOutput(t, "(0 － 7) ÷ 2 を表示する", "-4\n")
}

func TestModulo(t *testing.T) {
	expectOutput(t, "7 ％ 3 を表示する", "1\n")
	// The remainder takes the divisor's sign.
	expectOutput(t, "(0 － 7) ％ 3 を表示する", "2\n")
}

func TestFloatPromotion(t *testing.T) {
	expectOutput(t, "3.5 ＋ 1 を表示する", "4.5\n")
	expectOutput(t, "2.0 × 2 を表示する", "4\n")
}

func TestStringConcatenationOperator(t *testing.T) {
	expectOutput(t, "「ab」 ＋ 「cd」 を表示する", "abcd\n")
}

func TestUnaryMinus(t *testing.T) {
	expectOutput(t, "x ← －5\nx ＋ 10 を表示する", "5\n")
}

func TestDivisionByZero(t *testing.T) {
	expectError(t, "1 / 0 を表示する", "ArithmeticError")
	expectError(t, "1 ÷ 0 を表示する", "ArithmeticError")
	expectError(t, "1 ％ 0 を表示する", "ArithmeticError")
}

func TestArithmeticTypeMismatch(t *testing.T) {
	expectError(t, "「a」 ＋ 1 を表示する", "TypeError")
}

// ---- Comparisons and logic ----

func TestComparisons(t *testing.T) {
	expectOutput(t, "3 ＞ 2 を表示する", "True\n")
	expectOutput(t, "3 ＜ 2 を表示する", "False\n")
	expectOutput(t, "3 ≧ 3 を表示する", "True\n")
	expectOutput(t, "3 ≦ 2 を表示する", "False\n")
	expectOutput(t, "3 ＝ 3 を表示する", "True\n")
	expectOutput(t, "3 ≠ 3 を表示する", "False\n")
}

func TestNumericEqualityAcrossTypes(t *testing.T) {
	expectOutput(t, "1 ＝ 1.0 を表示する", "True\n")
}

func TestEqualityDifferentTypes(t *testing.T) {
	expectOutput(t, "「1」 ＝ 1 を表示する", "False\n")
}

func TestStringOrdering(t *testing.T) {
	expectOutput(t, "「a」 ＜ 「b」 を表示する", "True\n")
}

func TestOrderingTypeMismatch(t *testing.T) {
	expectError(t, "1 ＜ 「a」 を表示する", "TypeError")
}

func TestLogicalOperators(t *testing.T) {
	expectOutput(t, "1 かつ 2 を表示する", "True\n")
	expectOutput(t, "1 かつ 0 を表示する", "False\n")
	expectOutput(t, "0 または 2 を表示する", "True\n")
	expectOutput(t, "0 または 0 を表示する", "False\n")
}

func TestLogicalNot(t *testing.T) {
	expectOutput(t, "でない 0 を表示する", "True\n")
	expectOutput(t, "でない 「a」 を表示する", "False\n")
}

func TestArrayEquality(t *testing.T) {
	expectOutput(t, "{1, 2} ＝ {1, 2} を表示する", "True\n")
	expectOutput(t, "{1, 2} ＝ {1, 3} を表示する", "False\n")
}

// ---- Conditionals ----

func TestIfTaken(t *testing.T) {
	expectOutput(t, "もし 1 ＞ 0 ならば 「正」 を表示する を実行する", "正\n")
}

func TestIfNotTaken(t *testing.T) {
	expectOutput(t, "もし 0 ＞ 1 ならば 「正」 を表示する を実行する", "")
}

func TestIfElifElse(t *testing.T) {
	source := `x ← 0
もし x ＞ 0 ならば
「正」 を表示する
を実行し，そうでなくもし x ＝ 0 ならば
「零」 を表示する
を実行し，そうでなければ
「負」 を表示する
を実行する`
	expectOutput(t, source, "零\n")
}

func TestTruthinessInCondition(t *testing.T) {
	// Nonzero numbers and non-empty strings are true.
	expectOutput(t, "もし 7 ならば 「t」 を表示する を実行する", "t\n")
	expectOutput(t, "もし 「」 ならば 「t」 を表示する を実行する", "")
}

// ---- Loops ----

func TestWhileLoop(t *testing.T) {
	source := `x ← 0
x ＜ 3 の間，
x を表示する
x を 1 増やす
を繰り返す`
	expectOutput(t, source, "0\n1\n2\n")
}

func TestWhileLoopZeroIterations(t *testing.T) {
	source := `x ← 5
x ＜ 3 の間，
x を表示する
を繰り返す`
	expectOutput(t, source, "")
}

func TestDoUntilRunsExactlyThreeTimes(t *testing.T) {
	source := `counter ← 0
繰り返し，
counter を 1 増やす
を，counter ＝ 3 になるまで実行する
counter を表示する`
	expectOutput(t, source, "3\n")
}

func TestDoUntilRunsAtLeastOnce(t *testing.T) {
	source := `x ← 10
繰り返し，
x を表示する
を，x ＞ 0 になるまで実行する`
	expectOutput(t, source, "10\n")
}

func TestCountingLoopIncreasing(t *testing.T) {
	source := `i を 1 から 5 まで 1 ずつ増やしながら，
i を表示する
を繰り返す`
	expectOutput(t, source, "1\n2\n3\n4\n5\n")
}

func TestCountingLoopZeroIterations(t *testing.T) {
	source := `i を 5 から 1 まで 1 ずつ増やしながら，
i を表示する
を繰り返す`
	expectOutput(t, source, "")
}

func TestCountingLoopDecreasing(t *testing.T) {
	source := `i を 3 から 1 まで 1 ずつ減らしながら，
i を表示する
を繰り返す`
	expectOutput(t, source, "3\n2\n1\n")
}

// The loop variable is an ordinary binding: body-side mutation changes the
// iteration count.
func TestCountingLoopBodyMutatesVariable(t *testing.T) {
	source := `i を 1 から 10 まで 1 ずつ増やしながら，
i を表示する
i を 1 増やす
を繰り返す`
	expectOutput(t, source, "1\n3\n5\n7\n9\n")
}

func TestCountingLoopVariableVisibleAfter(t *testing.T) {
	source := `i を 1 から 3 まで 1 ずつ増やしながら，
i ＋ 0 を表示する
を繰り返す
i を表示する`
	expectOutput(t, source, "1\n2\n3\n4\n")
}

// ---- Increment / decrement ----

func TestIncrementDecrement(t *testing.T) {
	expectOutput(t, "x ← 10\nx を 3 増やす\nx を表示する", "13\n")
	expectOutput(t, "x ← 10\nx を 3 減らす\nx を表示する", "7\n")
}

func TestIncrementUnbound(t *testing.T) {
	expectError(t, "x を 1 増やす", "NameError")
}

// ---- Arrays ----

func TestArrayLiteralAndAccess(t *testing.T) {
	expectOutput(t, "A ← {10, 20, 30}\nA[1] を表示する", "20\n")
}

func TestArrayElementAssignment(t *testing.T) {
	expectOutput(t, "A ← {1, 2, 3}\nA[0] ← 9\nA を表示する", "{9, 2, 3}\n")
}

func TestMatrixCellAssignment(t *testing.T) {
	source := `M ← {{1, 2}, {3, 4}}
M[1，0] ← 9
M[0，0] を表示する
M[1，0] を表示する
M[1，1] を表示する`
	expectOutput(t, source, "1\n9\n4\n")
}

func TestMatrixCellRead(t *testing.T) {
	expectOutput(t, "M ← {{1, 2}, {3, 4}}\nM[0，1] を表示する", "2\n")
}

func TestBulkFill(t *testing.T) {
	source := `A ← {1, 2, 3}
A のすべての要素に 0 を代入する
A を表示する`
	expectOutput(t, source, "{0, 0, 0}\n")
}

func TestBulkFillMatrix(t *testing.T) {
	source := `M ← {{1, 2}, {3, 4}}
M のすべての要素に 7 を代入する
M を表示する`
	expectOutput(t, source, "{{7, 7}, {7, 7}}\n")
}

func TestIndexTruncation(t *testing.T) {
	expectOutput(t, "A ← {10, 20, 30}\nA[1.9] を表示する", "20\n")
}

func TestIndexOutOfRange(t *testing.T) {
	expectError(t, "A ← {1, 2}\nA[5] を表示する", "IndexError")
	expectError(t, "A ← {1, 2}\nA[5] ← 0", "IndexError")
}

func TestIndexingNonArray(t *testing.T) {
	expectError(t, "x ← 1\nx[0] を表示する", "TypeError")
	expectError(t, "x ← 1\nx[0] ← 2", "TypeError")
}

func TestElementAssignUnbound(t *testing.T) {
	expectError(t, "A[0] ← 1", "NameError")
}

// ---- Functions ----

func TestFunctionCallAndReturn(t *testing.T) {
	source := `関数 合計(a, b) を
a ＋ b を返す
と定義する
合計(2, 3) を表示する`
	expectOutput(t, source, "5\n")
}

func TestFunctionNoReturnYieldsNoValue(t *testing.T) {
	source := `関数 何もしない() を
x ← 1
と定義する
何もしない() ＝ 0 を表示する`
	expectOutput(t, source, "False\n")
}

func TestReturnAbortsBody(t *testing.T) {
	source := `関数 f() を
1 を返す
「到達しない」 を表示する
と定義する
f() を表示する`
	expectOutput(t, source, "1\n")
}

func TestReturnFromLoop(t *testing.T) {
	source := `関数 探す() を
i を 1 から 10 まで 1 ずつ増やしながら，
もし i ＝ 4 ならば i を返す を実行する
を繰り返す
と定義する
探す() を表示する`
	expectOutput(t, source, "4\n")
}

func TestFunctionArityError(t *testing.T) {
	source := `関数 f(a) を
a を表示する
と定義する
f(1, 2)`
	expectError(t, source, "ArityError")
}

func TestUndefinedFunction(t *testing.T) {
	expectError(t, "ない関数(1)", "NameError")
}

// Callee frames parent to the global frame, never the caller's frame.
func TestCalleeCannotSeeCallerLocals(t *testing.T) {
	source := `関数 読む() を
y を表示する
と定義する
関数 呼ぶ() を
y ← 1
読む()
と定義する
呼ぶ()`
	expectError(t, source, "NameError")
}

func TestParametersShadowGlobals(t *testing.T) {
	source := `x ← 100
関数 f(x) を
x を表示する
と定義する
f(5)
x を表示する`
	expectOutput(t, source, "5\n100\n")
}

func TestFunctionCanReadAndUpdateGlobals(t *testing.T) {
	source := `x ← 0
関数 f() を
x を 1 増やす
と定義する
f()
f()
x を表示する`
	expectOutput(t, source, "2\n")
}

// User definitions shadow builtins of the same name.
func TestUserFunctionShadowsBuiltin(t *testing.T) {
	source := `関数 二乗(x) を
99 を返す
と定義する
二乗(3) を表示する`
	expectOutput(t, source, "99\n")
}

func TestReturnOutsideFunction(t *testing.T) {
	expectError(t, "1 を返す", "を返す")
}

// ---- Builtins ----

func TestBuiltinSquare(t *testing.T) {
	expectOutput(t, "二乗(4) を表示する", "16\n")
	expectOutput(t, "二乗(2.5) を表示する", "6.25\n")
}

func TestBuiltinSquareArity(t *testing.T) {
	expectError(t, "二乗(1, 2) を表示する", "ArityError")
}

func TestBuiltinPower(t *testing.T) {
	expectOutput(t, "べき乗(2, 3) を表示する", "8\n")
	expectOutput(t, "べき乗(2, 0 － 1) を表示する", "0.5\n")
}

func TestBuiltinOdd(t *testing.T) {
	expectOutput(t, "奇数(3) を表示する", "True\n")
	expectOutput(t, "奇数(4) を表示する", "False\n")
	expectOutput(t, "奇数(0 － 3) を表示する", "True\n")
}

func TestBuiltinRandomSingleton(t *testing.T) {
	// A one-value range is deterministic.
	expectOutput(t, "乱数(5, 5) を表示する", "5\n")
}

func TestBuiltinRandomRange(t *testing.T) {
	source := `x ← 乱数(1, 6)
もし x ≧ 1 かつ x ≦ 6 ならば 「ok」 を表示する を実行する`
	expectOutput(t, source, "ok\n")
}

func TestBuiltinRandomEmptyRange(t *testing.T) {
	expectError(t, "乱数(5, 3) を表示する", "ArithmeticError")
}

// ---- External input ----

func TestExternalInput(t *testing.T) {
	prog, err := parser.ParseSource("x ← 【外部からの入力】\nx と 「!」 を表示する", "test.dncl")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	interp.SetInput(func() (string, error) { return "hello", nil })
	if err := interp.Run(prog); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if buf.String() != "hello!\n" {
		t.Errorf("expected %q, got %q", "hello!\n", buf.String())
	}
}

// ---- Output log ----

func TestOutputLog(t *testing.T) {
	prog, err := parser.ParseSource("1 を表示する\n「a」 と 「b」 を表示する", "test.dncl")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	if err := interp.Run(prog); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	log := interp.OutputLog()
	if len(log) != 2 || log[0] != "1" || log[1] != "ab" {
		t.Errorf("unexpected log: %v", log)
	}
}

// ---- Interpreter reuse ----

func TestInterpreterStatePersistsAcrossRuns(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)

	first, err := parser.ParseSource("x ← 41", "repl.dncl")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if err := interp.Run(first); err != nil {
		t.Fatalf("runtime error: %v", err)
	}

	second, err := parser.ParseSource("x ＋ 1 を表示する", "repl.dncl")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if err := interp.Run(second); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if buf.String() != "42\n" {
		t.Errorf("expected %q, got %q", "42\n", buf.String())
	}
}

func TestUnboundVariable(t *testing.T) {
	expectError(t, "x を表示する", "NameError")
}
