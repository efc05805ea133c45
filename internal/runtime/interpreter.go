// Package runtime implements the tree-walking interpreter for DNCL.
package runtime

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"dncl-lang/internal/ast"
	"dncl-lang/internal/span"
	"dncl-lang/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // return from function
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Runtime error
// ============================================================

// ErrKind classifies a runtime error.
type ErrKind int

const (
	NameError       ErrKind = iota // unbound variable or function
	ArityError                     // wrong argument count
	TypeError                      // operand or operation type mismatch
	ArithmeticError                // zero divisor or empty random range
	IndexError                     // array index out of range or bad dimension
)

func (k ErrKind) String() string {
	switch k {
	case NameError:
		return "NameError"
	case ArityError:
		return "ArityError"
	case TypeError:
		return "TypeError"
	case ArithmeticError:
		return "ArithmeticError"
	case IndexError:
		return "IndexError"
	default:
		return "RuntimeError"
	}
}

// RuntimeError represents an error during interpretation.
type RuntimeError struct {
	Kind    ErrKind
	Message string
	Span    span.Span
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

func runtimeErr(kind ErrKind, s span.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: s}
}

// ============================================================
// Interpreter
// ============================================================

// InputFunc supplies one line of external input for 【外部からの入力】.
type InputFunc func() (string, error)

// Interpreter walks the AST and executes it. Display output is written to
// the configured writer and additionally retained in an append-only log
// for embedding hosts.
type Interpreter struct {
	global    *Environment
	env       *Environment
	functions map[string]*ast.FuncDef
	builtins  map[string]builtinFn
	output    io.Writer
	log       []string
	input     InputFunc
}

// NewInterpreter creates a new interpreter with built-in functions
// registered. External input defaults to reading lines from stdin.
func NewInterpreter(output io.Writer) *Interpreter {
	global := NewEnvironment(nil)
	reader := bufio.NewReader(os.Stdin)
	i := &Interpreter{
		global:    global,
		env:       global,
		functions: make(map[string]*ast.FuncDef),
		output:    output,
		input: func() (string, error) {
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return "", err
			}
			return strings.TrimRight(line, "\r\n"), nil
		},
	}
	i.builtins = newBuiltins(i)
	return i
}

// SetInput replaces the external input provider.
func (i *Interpreter) SetInput(fn InputFunc) {
	i.input = fn
}

// OutputLog returns every line emitted by display statements so far.
func (i *Interpreter) OutputLog() []string {
	return i.log
}

// Env returns the current environment (useful for REPL).
func (i *Interpreter) Env() *Environment {
	return i.env
}

// Run executes the program. The interpreter instance may be reused across
// calls; definitions and bindings persist.
func (i *Interpreter) Run(program *ast.Program) error {
	for _, stmt := range program.Statements {
		result, err := i.execStmt(stmt)
		if err != nil {
			return err
		}
		if result.Signal == SigReturn {
			return runtimeErr(TypeError, stmt.GetSpan(), "'を返す' used outside a function")
		}
	}
	return nil
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		return i.execAssign(s)
	case *ast.FillStmt:
		return i.execFill(s)
	case *ast.IncStmt:
		return i.execIncDec(s.Name, s.Amount, token.PLUS, s.Span)
	case *ast.DecStmt:
		return i.execIncDec(s.Name, s.Amount, token.MINUS, s.Span)
	case *ast.DisplayStmt:
		return i.execDisplay(s)
	case *ast.IfStmt:
		return i.execIf(s)
	case *ast.WhileStmt:
		return i.execWhile(s)
	case *ast.DoUntilStmt:
		return i.execDoUntil(s)
	case *ast.ForStmt:
		return i.execFor(s)
	case *ast.FuncDef:
		i.functions[s.Name] = s
		return resultNone, nil
	case *ast.CallStmt:
		_, err := i.callFunction(s.Name, s.Args, s.Span)
		return resultNone, err
	case *ast.ReturnStmt:
		var value Value = NoValue{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			value = v
		}
		return ExecResult{Signal: SigReturn, Value: value}, nil
	default:
		return resultNone, runtimeErr(TypeError, stmt.GetSpan(), "unsupported statement")
	}
}

// execBlock executes statements in order, forwarding a return signal to
// the caller.
func (i *Interpreter) execBlock(stmts []ast.Stmt) (ExecResult, error) {
	for _, stmt := range stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execAssign(s *ast.AssignStmt) (ExecResult, error) {
	value, err := i.evalExpr(s.Value)
	if err != nil {
		return resultNone, err
	}

	if s.Indices == nil {
		i.env.Set(s.Name, value)
		return resultNone, nil
	}

	// Array element assignment: the target must already hold an array.
	target, ok := i.env.Get(s.Name)
	if !ok {
		return resultNone, runtimeErr(NameError, s.Span, "variable '%s' is not defined", s.Name)
	}
	arr, ok := target.(*ArrayVal)
	if !ok {
		return resultNone, runtimeErr(TypeError, s.Span, "'%s' is not an array", s.Name)
	}

	indices, err := i.evalIndices(s.Indices)
	if err != nil {
		return resultNone, err
	}

	switch len(indices) {
	case 1:
		if err := checkIndex(indices[0], len(arr.Elements), s.Span); err != nil {
			return resultNone, err
		}
		arr.Elements[indices[0]] = value
	case 2:
		if err := checkIndex(indices[0], len(arr.Elements), s.Span); err != nil {
			return resultNone, err
		}
		row, ok := arr.Elements[indices[0]].(*ArrayVal)
		if !ok {
			return resultNone, runtimeErr(TypeError, s.Span, "'%s[%d]' is not an array", s.Name, indices[0])
		}
		if err := checkIndex(indices[1], len(row.Elements), s.Span); err != nil {
			return resultNone, err
		}
		row.Elements[indices[1]] = value
	default:
		return resultNone, runtimeErr(IndexError, s.Span,
			"arrays with %d dimensions are not supported", len(indices))
	}
	return resultNone, nil
}

// execFill sets every scalar leaf of the named array to the same value,
// recursing one level into nested arrays.
func (i *Interpreter) execFill(s *ast.FillStmt) (ExecResult, error) {
	value, err := i.evalExpr(s.Value)
	if err != nil {
		return resultNone, err
	}
	target, ok := i.env.Get(s.Name)
	if !ok {
		return resultNone, runtimeErr(NameError, s.Span, "variable '%s' is not defined", s.Name)
	}
	arr, ok := target.(*ArrayVal)
	if !ok {
		return resultNone, runtimeErr(TypeError, s.Span, "'%s' is not an array", s.Name)
	}
	for idx, elem := range arr.Elements {
		if row, ok := elem.(*ArrayVal); ok {
			for j := range row.Elements {
				row.Elements[j] = value
			}
		} else {
			arr.Elements[idx] = value
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execIncDec(name string, amount ast.Expr, op token.Kind, s span.Span) (ExecResult, error) {
	current, ok := i.env.Get(name)
	if !ok {
		return resultNone, runtimeErr(NameError, s, "variable '%s' is not defined", name)
	}
	delta, err := i.evalExpr(amount)
	if err != nil {
		return resultNone, err
	}
	updated, err := i.arith(op, current, delta, s)
	if err != nil {
		return resultNone, err
	}
	i.env.Update(name, updated)
	return resultNone, nil
}

func (i *Interpreter) execDisplay(s *ast.DisplayStmt) (ExecResult, error) {
	var b strings.Builder
	for _, expr := range s.Exprs {
		value, err := i.evalExpr(expr)
		if err != nil {
			return resultNone, err
		}
		b.WriteString(value.String())
	}
	line := b.String()
	fmt.Fprintln(i.output, line)
	i.log = append(i.log, line)
	return resultNone, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	cond, err := i.evalExpr(s.Cond)
	if err != nil {
		return resultNone, err
	}
	if IsTruthy(cond) {
		return i.execBlock(s.Then)
	}
	for _, elif := range s.Elifs {
		cond, err := i.evalExpr(elif.Cond)
		if err != nil {
			return resultNone, err
		}
		if IsTruthy(cond) {
			return i.execBlock(elif.Body)
		}
	}
	if s.Else != nil {
		return i.execBlock(s.Else)
	}
	return resultNone, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := i.evalExpr(s.Cond)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			return resultNone, nil
		}
		result, err := i.execBlock(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil
		}
	}
}

// execDoUntil runs the body at least once and stops when the trailing
// condition becomes true.
func (i *Interpreter) execDoUntil(s *ast.DoUntilStmt) (ExecResult, error) {
	for {
		result, err := i.execBlock(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil
		}
		cond, err := i.evalExpr(s.Cond)
		if err != nil {
			return resultNone, err
		}
		if IsTruthy(cond) {
			return resultNone, nil
		}
	}
}

// execFor runs the counting loop. The loop variable is an ordinary mutable
// binding in the current scope: its value is re-read after each iteration,
// so body-side mutation changes the iteration count.
func (i *Interpreter) execFor(s *ast.ForStmt) (ExecResult, error) {
	start, err := i.evalExpr(s.Start)
	if err != nil {
		return resultNone, err
	}
	end, err := i.evalExpr(s.End)
	if err != nil {
		return resultNone, err
	}
	step, err := i.evalExpr(s.Step)
	if err != nil {
		return resultNone, err
	}

	i.env.Set(s.Name, start)

	for {
		current, ok := i.env.Get(s.Name)
		if !ok {
			return resultNone, runtimeErr(NameError, s.Span, "variable '%s' is not defined", s.Name)
		}
		var boundOp token.Kind
		if s.Increment {
			boundOp = token.LTE
		} else {
			boundOp = token.GTE
		}
		cmp, err := i.compare(boundOp, current, end, s.Span)
		if err != nil {
			return resultNone, err
		}
		if !bool(cmp) {
			return resultNone, nil
		}

		result, err := i.execBlock(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil
		}

		current, ok = i.env.Get(s.Name)
		if !ok {
			return resultNone, runtimeErr(NameError, s.Span, "variable '%s' is not defined", s.Name)
		}
		stepOp := token.PLUS
		if !s.Increment {
			stepOp = token.MINUS
		}
		next, err := i.arith(stepOp, current, step, s.Span)
		if err != nil {
			return resultNone, err
		}
		i.env.Set(s.Name, next)
	}
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return IntVal(e.Value), nil
	case *ast.FloatLit:
		return FloatVal(e.Value), nil
	case *ast.StringLit:
		return StringVal(e.Value), nil
	case *ast.BoolLit:
		return BoolVal(e.Value), nil
	case *ast.Ident:
		value, ok := i.env.Get(e.Name)
		if !ok {
			return nil, runtimeErr(NameError, e.Span, "variable '%s' is not defined", e.Name)
		}
		return value, nil
	case *ast.IndexExpr:
		return i.evalIndex(e)
	case *ast.ArrayLit:
		elements := make([]Value, len(e.Elements))
		for idx, elem := range e.Elements {
			value, err := i.evalExpr(elem)
			if err != nil {
				return nil, err
			}
			elements[idx] = value
		}
		return &ArrayVal{Elements: elements}, nil
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.CallExpr:
		return i.callFunction(e.Name, e.Args, e.Span)
	default:
		return nil, runtimeErr(TypeError, expr.GetSpan(), "unsupported expression")
	}
}

func (i *Interpreter) evalIndex(e *ast.IndexExpr) (Value, error) {
	target, ok := i.env.Get(e.Name)
	if !ok {
		return nil, runtimeErr(NameError, e.Span, "variable '%s' is not defined", e.Name)
	}
	indices, err := i.evalIndices(e.Indices)
	if err != nil {
		return nil, err
	}

	result := target
	for _, idx := range indices {
		arr, ok := result.(*ArrayVal)
		if !ok {
			return nil, runtimeErr(TypeError, e.Span, "'%s' is not indexable at this depth", e.Name)
		}
		if err := checkIndex(idx, len(arr.Elements), e.Span); err != nil {
			return nil, err
		}
		result = arr.Elements[idx]
	}
	return result, nil
}

// evalIndices evaluates index expressions, coercing each to an integer by
// truncation.
func (i *Interpreter) evalIndices(exprs []ast.Expr) ([]int, error) {
	indices := make([]int, len(exprs))
	for n, expr := range exprs {
		value, err := i.evalExpr(expr)
		if err != nil {
			return nil, err
		}
		idx, ok := toInt(value)
		if !ok {
			return nil, runtimeErr(TypeError, expr.GetSpan(),
				"array index must be a number, got %s", value.TypeName())
		}
		indices[n] = int(idx)
	}
	return indices, nil
}

func checkIndex(idx, length int, s span.Span) error {
	if idx < 0 || idx >= length {
		return runtimeErr(IndexError, s, "index %d out of range (length %d)", idx, length)
	}
	return nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case token.MINUS:
		switch v := operand.(type) {
		case IntVal:
			return -v, nil
		case FloatVal:
			return -v, nil
		default:
			return nil, runtimeErr(TypeError, e.Span, "cannot negate %s", operand.TypeName())
		}
	case token.KW_NOT:
		return BoolVal(!IsTruthy(operand)), nil
	default:
		return nil, runtimeErr(TypeError, e.Span, "unknown unary operator '%s'", e.Op)
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.INTDIV, token.PERCENT:
		return i.arith(e.Op, left, right, e.Span)

	case token.EQ:
		return BoolVal(valuesEqual(left, right)), nil
	case token.NEQ:
		return BoolVal(!valuesEqual(left, right)), nil
	case token.GT, token.GTE, token.LT, token.LTE:
		return i.compare(e.Op, left, right, e.Span)

	// かつ / または evaluate both operands; the language has no
	// side-effecting guard idiom, so short-circuiting is not required.
	case token.KW_AND:
		return BoolVal(IsTruthy(left) && IsTruthy(right)), nil
	case token.KW_OR:
		return BoolVal(IsTruthy(left) || IsTruthy(right)), nil

	default:
		return nil, runtimeErr(TypeError, e.Span, "unknown operator '%s'", e.Op)
	}
}

// arith applies an arithmetic operator. Integer operands stay exact;
// mixing in a float promotes the result to float. ＋ additionally
// concatenates two strings. ÷ and ％ truncate both operands to integers
// first and use floor semantics (the remainder takes the divisor's sign).
func (i *Interpreter) arith(op token.Kind, left, right Value, s span.Span) (Value, error) {
	if op == token.PLUS {
		if ls, ok := left.(StringVal); ok {
			if rs, ok := right.(StringVal); ok {
				return ls + rs, nil
			}
		}
	}

	if !isNumeric(left) || !isNumeric(right) {
		return nil, runtimeErr(TypeError, s, "unsupported operand types for '%s': %s and %s",
			op, left.TypeName(), right.TypeName())
	}

	switch op {
	case token.SLASH:
		lf, _ := toFloat(left)
		rf, _ := toFloat(right)
		if rf == 0 {
			return nil, runtimeErr(ArithmeticError, s, "division by zero")
		}
		return FloatVal(lf / rf), nil

	case token.INTDIV:
		ln, _ := toInt(left)
		rn, _ := toInt(right)
		if rn == 0 {
			return nil, runtimeErr(ArithmeticError, s, "integer division by zero")
		}
		return IntVal(floorDiv(ln, rn)), nil

	case token.PERCENT:
		ln, _ := toInt(left)
		rn, _ := toInt(right)
		if rn == 0 {
			return nil, runtimeErr(ArithmeticError, s, "modulo by zero")
		}
		return IntVal(floorMod(ln, rn)), nil
	}

	li, lIsInt := left.(IntVal)
	ri, rIsInt := right.(IntVal)
	if lIsInt && rIsInt {
		switch op {
		case token.PLUS:
			return li + ri, nil
		case token.MINUS:
			return li - ri, nil
		case token.STAR:
			return li * ri, nil
		}
	}

	lf, _ := toFloat(left)
	rf, _ := toFloat(right)
	switch op {
	case token.PLUS:
		return FloatVal(lf + rf), nil
	case token.MINUS:
		return FloatVal(lf - rf), nil
	case token.STAR:
		return FloatVal(lf * rf), nil
	}
	return nil, runtimeErr(TypeError, s, "unknown arithmetic operator '%s'", op)
}

// compare applies an ordering operator. Numbers order numerically and
// strings lexicographically; booleans and arrays have no ordering.
func (i *Interpreter) compare(op token.Kind, left, right Value, s span.Span) (BoolVal, error) {
	if isNumeric(left) && isNumeric(right) {
		lf, _ := toFloat(left)
		rf, _ := toFloat(right)
		switch op {
		case token.GT:
			return BoolVal(lf > rf), nil
		case token.GTE:
			return BoolVal(lf >= rf), nil
		case token.LT:
			return BoolVal(lf < rf), nil
		case token.LTE:
			return BoolVal(lf <= rf), nil
		}
	}
	if ls, ok := left.(StringVal); ok {
		if rs, ok := right.(StringVal); ok {
			switch op {
			case token.GT:
				return BoolVal(ls > rs), nil
			case token.GTE:
				return BoolVal(ls >= rs), nil
			case token.LT:
				return BoolVal(ls < rs), nil
			case token.LTE:
				return BoolVal(ls <= rs), nil
			}
		}
	}
	return false, runtimeErr(TypeError, s, "cannot order %s and %s",
		left.TypeName(), right.TypeName())
}

// valuesEqual implements ＝ and ≠. Numbers compare numerically across the
// int/float divide; arrays compare structurally; values of otherwise
// different types are simply unequal.
func valuesEqual(left, right Value) bool {
	if isNumeric(left) && isNumeric(right) {
		lf, _ := toFloat(left)
		rf, _ := toFloat(right)
		return lf == rf
	}
	switch l := left.(type) {
	case StringVal:
		r, ok := right.(StringVal)
		return ok && l == r
	case BoolVal:
		r, ok := right.(BoolVal)
		return ok && l == r
	case *ArrayVal:
		r, ok := right.(*ArrayVal)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		for idx := range l.Elements {
			if !valuesEqual(l.Elements[idx], r.Elements[idx]) {
				return false
			}
		}
		return true
	case NoValue:
		_, ok := right.(NoValue)
		return ok
	default:
		return false
	}
}

// ============================================================
// Function calls
// ============================================================

// callFunction evaluates arguments in the caller's scope, then dispatches
// to a user-defined function or a builtin. User definitions shadow
// builtins of the same name.
func (i *Interpreter) callFunction(name string, args []ast.Expr, s span.Span) (Value, error) {
	values := make([]Value, len(args))
	for n, arg := range args {
		v, err := i.evalExpr(arg)
		if err != nil {
			return nil, err
		}
		values[n] = v
	}

	if fn, ok := i.functions[name]; ok {
		return i.callUserFunction(fn, values, s)
	}
	if builtin, ok := i.builtins[name]; ok {
		return builtin(values, s)
	}
	return nil, runtimeErr(NameError, s, "function '%s' is not defined", name)
}

// callUserFunction runs a user-defined function in a fresh frame whose
// parent is the global frame, never the caller's frame.
func (i *Interpreter) callUserFunction(fn *ast.FuncDef, args []Value, s span.Span) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, runtimeErr(ArityError, s, "function '%s' expects %d arguments, got %d",
			fn.Name, len(fn.Params), len(args))
	}

	frame := NewEnvironment(i.global)
	for n, param := range fn.Params {
		frame.Set(param, args[n])
	}

	prev := i.env
	i.env = frame
	defer func() { i.env = prev }()

	result, err := i.execBlock(fn.Body)
	if err != nil {
		return nil, err
	}
	if result.Signal == SigReturn {
		return result.Value, nil
	}
	return NoValue{}, nil
}

// ---- integer helpers (floor semantics, matching ÷ and ％) ----

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
