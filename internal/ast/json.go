package ast

import (
	"dncl-lang/internal/span"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return m("Program", n.Span, "statements", stmtSlice(n.Statements))

	// ---- Expressions ----
	case *IntLit:
		return m("IntLit", n.Span, "value", n.Value)
	case *FloatLit:
		return m("FloatLit", n.Span, "value", n.Value)
	case *StringLit:
		return m("StringLit", n.Span, "value", n.Value)
	case *BoolLit:
		return m("BoolLit", n.Span, "value", n.Value)
	case *Ident:
		return m("Ident", n.Span, "name", n.Name)
	case *IndexExpr:
		return m("IndexExpr", n.Span, "name", n.Name, "indices", exprSlice(n.Indices))
	case *ArrayLit:
		return m("ArrayLit", n.Span, "elements", exprSlice(n.Elements))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *UnaryExpr:
		return m("UnaryExpr", n.Span, "op", n.Op.String(), "operand", NodeToMap(n.Operand))
	case *CallExpr:
		return m("CallExpr", n.Span, "name", n.Name, "args", exprSlice(n.Args))

	// ---- Statements ----
	case *AssignStmt:
		result := m("AssignStmt", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
		if len(n.Indices) > 0 {
			result["indices"] = exprSlice(n.Indices)
		}
		return result
	case *FillStmt:
		return m("FillStmt", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
	case *IncStmt:
		return m("IncStmt", n.Span, "name", n.Name, "amount", NodeToMap(n.Amount))
	case *DecStmt:
		return m("DecStmt", n.Span, "name", n.Name, "amount", NodeToMap(n.Amount))
	case *DisplayStmt:
		return m("DisplayStmt", n.Span, "exprs", exprSlice(n.Exprs))
	case *IfStmt:
		result := m("IfStmt", n.Span,
			"cond", NodeToMap(n.Cond),
			"then", stmtSlice(n.Then))
		if len(n.Elifs) > 0 {
			elifs := make([]interface{}, len(n.Elifs))
			for i, e := range n.Elifs {
				elifs[i] = map[string]interface{}{
					"kind": "ElifClause",
					"span": spanToMap(e.Span),
					"cond": NodeToMap(e.Cond),
					"body": stmtSlice(e.Body),
				}
			}
			result["elifs"] = elifs
		}
		if n.Else != nil {
			result["else"] = stmtSlice(n.Else)
		}
		return result
	case *WhileStmt:
		return m("WhileStmt", n.Span,
			"cond", NodeToMap(n.Cond),
			"body", stmtSlice(n.Body))
	case *DoUntilStmt:
		return m("DoUntilStmt", n.Span,
			"body", stmtSlice(n.Body),
			"cond", NodeToMap(n.Cond))
	case *ForStmt:
		return m("ForStmt", n.Span,
			"name", n.Name,
			"start", NodeToMap(n.Start),
			"end", NodeToMap(n.End),
			"step", NodeToMap(n.Step),
			"increment", n.Increment,
			"body", stmtSlice(n.Body))
	case *FuncDef:
		return m("FuncDef", n.Span,
			"name", n.Name,
			"params", n.Params,
			"body", stmtSlice(n.Body))
	case *CallStmt:
		return m("CallStmt", n.Span, "name", n.Name, "args", exprSlice(n.Args))
	case *ReturnStmt:
		result := m("ReturnStmt", n.Span)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}
