// Package ast defines the abstract syntax tree for DNCL programs.
package ast

import (
	"dncl-lang/internal/span"
	"dncl-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Program (top-level AST root)
// ============================================================

// Program represents an entire source file.
type Program struct {
	NodeBase
	Statements []Stmt
}

// ============================================================
// Expressions
// ============================================================

// IntLit represents an integer literal.
type IntLit struct {
	ExprBase
	Value int64
}

// FloatLit represents a floating-point literal.
type FloatLit struct {
	ExprBase
	Value float64
}

// StringLit represents a string literal: 「…」 or "…".
type StringLit struct {
	ExprBase
	Value string
}

// BoolLit represents a boolean value. The grammar has no boolean literal
// syntax; these nodes exist only as results of constant folding by hosts
// that build ASTs directly.
type BoolLit struct {
	ExprBase
	Value bool
}

// Ident represents a variable reference.
type Ident struct {
	ExprBase
	Name string
}

// IndexExpr represents array access with one or two indices: A[i], B[i，j].
type IndexExpr struct {
	ExprBase
	Name    string
	Indices []Expr
}

// ArrayLit represents an array literal: {1, 2, 3}.
type ArrayLit struct {
	ExprBase
	Elements []Expr
}

// BinaryExpr represents a binary operation. Op is the operator token kind;
// かつ and または appear here as KW_AND and KW_OR.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// UnaryExpr represents a prefix operation: arithmetic negation (－x) or
// logical negation (でない x).
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// CallExpr represents a function call: 二乗(x). Callees are always plain
// names; DNCL has no function values.
type CallExpr struct {
	ExprBase
	Name string
	Args []Expr
}

// ============================================================
// Statements
// ============================================================

// AssignStmt represents x ← expr or A[i] ← expr. Indices is nil for a
// scalar target.
type AssignStmt struct {
	StmtBase
	Name    string
	Indices []Expr
	Value   Expr
}

// FillStmt represents bulk assignment: A のすべての要素に 0 を代入する.
type FillStmt struct {
	StmtBase
	Name  string
	Value Expr
}

// IncStmt represents x を n 増やす.
type IncStmt struct {
	StmtBase
	Name   string
	Amount Expr
}

// DecStmt represents x を n 減らす.
type DecStmt struct {
	StmtBase
	Name   string
	Amount Expr
}

// DisplayStmt represents expr (と expr)* を表示する. The printed pieces are
// concatenated with no separator.
type DisplayStmt struct {
	StmtBase
	Exprs []Expr
}

// IfStmt represents もし…ならば…を実行する with optional そうでなくもし
// chains and a そうでなければ branch. The whole construct shares a single
// closing を実行する.
type IfStmt struct {
	StmtBase
	Cond  Expr
	Then  []Stmt
	Elifs []ElifClause
	Else  []Stmt // nil when absent
}

// ElifClause is one そうでなくもし branch.
type ElifClause struct {
	Span span.Span
	Cond Expr
	Body []Stmt
}

// WhileStmt represents cond の間，body を繰り返す (pre-test).
type WhileStmt struct {
	StmtBase
	Cond Expr
	Body []Stmt
}

// DoUntilStmt represents 繰り返し，body を，cond になるまで実行する
// (post-test; the body runs until the condition becomes true).
type DoUntilStmt struct {
	StmtBase
	Body []Stmt
	Cond Expr
}

// ForStmt represents the counting loop:
// i を start から end まで step ずつ増やしながら，body を繰り返す.
// Increment is false for 減らしながら.
type ForStmt struct {
	StmtBase
	Name      string
	Start     Expr
	End       Expr
	Step      Expr
	Increment bool
	Body      []Stmt
}

// FuncDef represents 関数 name(params) を body と定義する.
type FuncDef struct {
	StmtBase
	Name   string
	Params []string
	Body   []Stmt
}

// CallStmt represents a bare function call used as a statement.
type CallStmt struct {
	StmtBase
	Name string
	Args []Expr
}

// ReturnStmt represents expr を返す inside a function body.
type ReturnStmt struct {
	StmtBase
	Value Expr // may be nil
}
