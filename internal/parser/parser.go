// Package parser implements a recursive-descent parser for DNCL.
//
// Statements beginning with an identifier are not determined by their
// first few tokens: `i を 1 から…` opens a counting loop, `i を 1 増やす`
// an increment, and `i を表示する` a display whose expression merely starts
// with the same identifier. The parser resolves this by speculatively
// consuming the identifier path and, when no continuation matches,
// rewinding the token cursor to the statement start and retrying as an
// expression statement. Rewinds are positional (an integer cursor into the
// immutable token slice, never exceptions) and bounded: a second rewind
// from the same position is a syntax error, which guarantees termination.
package parser

import (
	"strconv"
	"strings"

	"dncl-lang/internal/ast"
	"dncl-lang/internal/diag"
	"dncl-lang/internal/lexer"
	"dncl-lang/internal/span"
	"dncl-lang/internal/token"
)

// Parser parses a token stream into an AST.
type Parser struct {
	tokens []token.Token
	pos    int

	// lastRewind is the cursor position of the most recent rewind, used to
	// reject a second rewind from the same statement start.
	lastRewind int
}

// New creates a parser. NEWLINE tokens are filtered out up front: block
// structure is carried entirely by keyword phrases, not layout.
func New(tokens []token.Token) *Parser {
	filtered := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind != token.NEWLINE {
			filtered = append(filtered, t)
		}
	}
	return &Parser{tokens: filtered, lastRewind: -1}
}

// ParseSource tokenizes and parses source text in one step.
func ParseSource(source, filename string) (*ast.Program, error) {
	l := lexer.New(source, filename)
	tokens, err := l.Tokenize()
	if err != nil {
		return nil, err
	}
	return New(tokens).Parse()
}

// Parse parses the entire token stream into a Program.
func (p *Parser) Parse() (*ast.Program, error) {
	start := p.current().Span.Start
	var statements []ast.Stmt
	for !p.check(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return &ast.Program{
		NodeBase:   ast.NodeBase{Span: span.Span{Start: start, End: p.prevEnd()}},
		Statements: statements,
	}, nil
}

// ---- navigation helpers ----

// current returns the token at the cursor; at the end it returns EOF.
func (p *Parser) current() token.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return p.tokens[len(p.tokens)-1]
}

// advance consumes and returns the current token. EOF is never consumed.
func (p *Parser) advance() token.Token {
	tok := p.current()
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

// check reports whether the current token matches any of the given kinds.
func (p *Parser) check(kinds ...token.Kind) bool {
	cur := p.current().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// expect consumes a token of the given kind or fails.
func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	tok := p.current()
	if tok.Kind != kind {
		return token.Token{}, diag.Errorf("E2001", tok.Span,
			"expected '%s', got '%s'", kind, tok.Kind)
	}
	return p.advance(), nil
}

// rewind restores the cursor to a saved position. A second rewind to the
// same position means no production can make progress there.
func (p *Parser) rewind(to int) error {
	if p.lastRewind == to {
		return diag.Errorf("E2002", p.current().Span,
			"cannot parse statement starting with '%s'", p.tokens[to].Kind)
	}
	p.lastRewind = to
	p.pos = to
	return nil
}

// prevEnd returns the end position of the most recently consumed token.
func (p *Parser) prevEnd() span.Position {
	if p.pos == 0 {
		return p.current().Span.Start
	}
	return p.tokens[p.pos-1].Span.End
}

// exprBase builds an ExprBase spanning from start to the last consumed token.
func (p *Parser) exprBase(start span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: p.prevEnd()}}}
}

// stmtBase builds a StmtBase spanning from start to the last consumed token.
func (p *Parser) stmtBase(start span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: p.prevEnd()}}}
}

// ---- statements ----

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.current().Kind {
	case token.KW_FUNCTION:
		return p.parseFuncDef()
	case token.KW_IF:
		return p.parseIf()
	case token.KW_DO_REPEAT:
		return p.parseDoUntil()
	case token.KW_RETURN:
		// Bare を返す with no result value.
		start := p.advance().Span.Start
		return &ast.ReturnStmt{StmtBase: p.stmtBase(start)}, nil
	case token.IDENT:
		return p.parseIdentStmt()
	case token.INT, token.FLOAT, token.STRING, token.LPAREN, token.LBRACE,
		token.MINUS, token.KW_NOT, token.KW_INPUT:
		return p.parseExprStmt()
	default:
		tok := p.current()
		return nil, diag.Errorf("E2003", tok.Span, "unexpected token: '%s'", tok.Kind)
	}
}

// parseIdentStmt parses a statement opening with an identifier. See the
// package comment for the disambiguation strategy.
func (p *Parser) parseIdentStmt() (ast.Stmt, error) {
	mark := p.pos
	nameTok := p.advance()
	name := nameTok.Lexeme
	start := nameTok.Span.Start

	switch {
	// A のすべての要素に value を代入する
	case p.check(token.KW_ALL_ELEMENTS):
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.KW_ASSIGN_TO); err != nil {
			return nil, err
		}
		return &ast.FillStmt{StmtBase: p.stmtBase(start), Name: name, Value: value}, nil

	// A[i] ← value, or A[i] as the start of an expression statement
	case p.check(token.LBRACKET):
		indices, err := p.parseIndices()
		if err != nil {
			return nil, err
		}
		if p.check(token.ASSIGN) {
			p.advance()
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &ast.AssignStmt{StmtBase: p.stmtBase(start), Name: name, Indices: indices, Value: value}, nil
		}
		if err := p.rewind(mark); err != nil {
			return nil, err
		}
		return p.parseExprStmt()

	// x ← value
	case p.check(token.ASSIGN):
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{StmtBase: p.stmtBase(start), Name: name, Value: value}, nil

	// i を value … : counting loop, increment, or decrement. Anything else
	// means the identifier was really the start of an expression.
	case p.check(token.KW_WO):
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		switch {
		case p.check(token.KW_FROM):
			return p.parseForLoop(start, name, value)
		case p.check(token.KW_INCREASE):
			p.advance()
			return &ast.IncStmt{StmtBase: p.stmtBase(start), Name: name, Amount: value}, nil
		case p.check(token.KW_DECREASE):
			p.advance()
			return &ast.DecStmt{StmtBase: p.stmtBase(start), Name: name, Amount: value}, nil
		default:
			if err := p.rewind(mark); err != nil {
				return nil, err
			}
			return p.parseExprStmt()
		}

	default:
		if err := p.rewind(mark); err != nil {
			return nil, err
		}
		return p.parseExprStmt()
	}
}

// parseForLoop parses the remainder of a counting loop after
// `name を start` with the cursor on から.
func (p *Parser) parseForLoop(start span.Position, name string, startExpr ast.Expr) (ast.Stmt, error) {
	p.advance() // から
	end, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_TO); err != nil {
		return nil, err
	}
	step, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_BY); err != nil {
		return nil, err
	}

	var increment bool
	switch {
	case p.check(token.KW_INCREASING):
		p.advance()
		increment = true
	case p.check(token.KW_DECREASING):
		p.advance()
		increment = false
	default:
		return nil, diag.Errorf("E2001", p.current().Span,
			"expected '増やしながら' or '減らしながら', got '%s'", p.current().Kind)
	}

	p.skipComma()
	body, err := p.parseBlock(token.KW_REPEAT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_REPEAT); err != nil {
		return nil, err
	}

	return &ast.ForStmt{
		StmtBase:  p.stmtBase(start),
		Name:      name,
		Start:     startExpr,
		End:       end,
		Step:      step,
		Increment: increment,
		Body:      body,
	}, nil
}

// parseExprStmt parses an expression-led statement: a while loop, a
// display statement, a return, or a bare function call.
func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	start := p.current().Span.Start
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	// cond の間，body を繰り返す
	if p.check(token.KW_WHILE) {
		p.advance()
		p.skipComma()
		body, err := p.parseBlock(token.KW_REPEAT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.KW_REPEAT); err != nil {
			return nil, err
		}
		return &ast.WhileStmt{StmtBase: p.stmtBase(start), Cond: cond, Body: body}, nil
	}

	// value を返す
	if p.check(token.KW_RETURN) {
		p.advance()
		return &ast.ReturnStmt{StmtBase: p.stmtBase(start), Value: cond}, nil
	}

	// expr (と expr)* を表示する
	exprs := []ast.Expr{cond}
	for p.check(token.KW_CONCAT) {
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	if p.check(token.KW_DISPLAY) {
		p.advance()
		return &ast.DisplayStmt{StmtBase: p.stmtBase(start), Exprs: exprs}, nil
	}

	if len(exprs) == 1 {
		if call, ok := cond.(*ast.CallExpr); ok {
			return &ast.CallStmt{StmtBase: p.stmtBase(start), Name: call.Name, Args: call.Args}, nil
		}
	}

	return nil, diag.Errorf("E2003", p.current().Span,
		"expected statement, got '%s'", p.current().Kind)
}

// parseIf parses もし cond ならば then … を実行する, with optional
// そうでなくもし chains and a そうでなければ branch. The whole construct is
// closed by a single trailing を実行する, not one per branch.
func (p *Parser) parseIf() (ast.Stmt, error) {
	start := p.advance().Span.Start // もし
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_THEN); err != nil {
		return nil, err
	}

	then, err := p.parseBlock(token.KW_EXECUTE, token.KW_AND_EXECUTE)
	if err != nil {
		return nil, err
	}

	var elifs []ast.ElifClause
	var elseBody []ast.Stmt

	if p.check(token.KW_AND_EXECUTE) {
		p.advance()
		p.skipComma()

		for p.check(token.KW_ELIF) {
			elifStart := p.advance().Span.Start
			elifCond, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.KW_THEN); err != nil {
				return nil, err
			}
			body, err := p.parseBlock(token.KW_EXECUTE, token.KW_AND_EXECUTE)
			if err != nil {
				return nil, err
			}
			elifs = append(elifs, ast.ElifClause{
				Span: span.Span{Start: elifStart, End: p.prevEnd()},
				Cond: elifCond,
				Body: body,
			})
			if !p.check(token.KW_AND_EXECUTE) {
				break
			}
			p.advance()
			p.skipComma()
		}

		if p.check(token.KW_ELSE) {
			p.advance()
			elseBody, err = p.parseBlock(token.KW_EXECUTE)
			if err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(token.KW_EXECUTE); err != nil {
		return nil, err
	}

	return &ast.IfStmt{
		StmtBase: p.stmtBase(start),
		Cond:     cond,
		Then:     then,
		Elifs:    elifs,
		Else:     elseBody,
	}, nil
}

// parseDoUntil parses 繰り返し，body を，cond になるまで実行する.
func (p *Parser) parseDoUntil() (ast.Stmt, error) {
	start := p.advance().Span.Start // 繰り返し
	p.skipComma()
	body, err := p.parseBlock(token.KW_WO)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_WO); err != nil {
		return nil, err
	}
	p.skipComma()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_UNTIL); err != nil {
		return nil, err
	}
	return &ast.DoUntilStmt{StmtBase: p.stmtBase(start), Body: body, Cond: cond}, nil
}

// parseFuncDef parses 関数 name(params) を body と定義する. The name is a
// run of tokens concatenated verbatim up to the opening parenthesis, so
// keyword-looking phrases can appear inside function names.
func (p *Parser) parseFuncDef() (ast.Stmt, error) {
	start := p.advance().Span.Start // 関数

	if !p.check(token.IDENT) {
		return nil, diag.Errorf("E2001", p.current().Span,
			"expected function name, got '%s'", p.current().Kind)
	}
	var nameParts []string
	for !p.check(token.LPAREN) {
		if p.check(token.EOF) {
			return nil, diag.Errorf("E2001", p.current().Span,
				"expected '(' in function definition")
		}
		nameParts = append(nameParts, p.advance().Lexeme)
	}
	name := strings.Join(nameParts, "")

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	if !p.check(token.RPAREN) {
		tok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, tok.Lexeme)
		for p.check(token.COMMA) {
			p.advance()
			tok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			params = append(params, tok.Lexeme)
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.KW_WO); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(token.KW_DEFINE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_DEFINE); err != nil {
		return nil, err
	}

	return &ast.FuncDef{StmtBase: p.stmtBase(start), Name: name, Params: params, Body: body}, nil
}

// parseBlock parses statements until one of the terminator kinds or EOF.
// The terminator itself is left for the caller to consume.
func (p *Parser) parseBlock(terminators ...token.Kind) ([]ast.Stmt, error) {
	var statements []ast.Stmt
	for !p.check(terminators...) && !p.check(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

// skipComma consumes one optional comma.
func (p *Parser) skipComma() {
	if p.check(token.COMMA) {
		p.advance()
	}
}

// parseIndices parses [i] or [i，j].
func (p *Parser) parseIndices() ([]ast.Expr, error) {
	if _, err := p.expect(token.LBRACKET); err != nil {
		return nil, err
	}
	var indices []ast.Expr
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	indices = append(indices, e)
	for p.check(token.COMMA) {
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		indices = append(indices, e)
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return indices, nil
}

// ---- expressions ----

func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	start := p.current().Span.Start
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(token.KW_OR) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{ExprBase: p.exprBase(start), Op: token.KW_OR, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	start := p.current().Span.Start
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.check(token.KW_AND) {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{ExprBase: p.exprBase(start), Op: token.KW_AND, Left: left, Right: right}
	}
	return left, nil
}

// parseNot parses a でない prefix (right-associative).
func (p *Parser) parseNot() (ast.Expr, error) {
	if p.check(token.KW_NOT) {
		start := p.advance().Span.Start
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{ExprBase: p.exprBase(start), Op: token.KW_NOT, Operand: operand}, nil
	}
	return p.parseComparison()
}

// parseComparison parses at most one comparison operator; comparisons do
// not chain.
func (p *Parser) parseComparison() (ast.Expr, error) {
	start := p.current().Span.Start
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.check(token.EQ, token.NEQ, token.GT, token.GTE, token.LT, token.LTE) {
		op := p.advance().Kind
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{ExprBase: p.exprBase(start), Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	start := p.current().Span.Start
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(token.PLUS, token.MINUS) {
		op := p.advance().Kind
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{ExprBase: p.exprBase(start), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	start := p.current().Span.Start
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(token.STAR, token.SLASH, token.INTDIV, token.PERCENT) {
		op := p.advance().Kind
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{ExprBase: p.exprBase(start), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.check(token.MINUS) {
		start := p.advance().Span.Start
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{ExprBase: p.exprBase(start), Op: token.MINUS, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.current()
	start := tok.Span.Start

	switch tok.Kind {
	case token.INT:
		p.advance()
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, diag.Errorf("E2004", tok.Span, "invalid integer literal: %q", tok.Lexeme)
		}
		return &ast.IntLit{ExprBase: p.exprBase(start), Value: value}, nil

	case token.FLOAT:
		p.advance()
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, diag.Errorf("E2004", tok.Span, "invalid float literal: %q", tok.Lexeme)
		}
		return &ast.FloatLit{ExprBase: p.exprBase(start), Value: value}, nil

	case token.STRING:
		p.advance()
		return &ast.StringLit{ExprBase: p.exprBase(start), Value: tok.Lexeme}, nil

	// 【外部からの入力】 reads one value from the host.
	case token.KW_INPUT:
		p.advance()
		return &ast.CallExpr{ExprBase: p.exprBase(start), Name: "input"}, nil

	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case token.LBRACE:
		return p.parseArrayLit()

	case token.IDENT:
		p.advance()
		name := tok.Lexeme

		if p.check(token.LBRACKET) {
			indices, err := p.parseIndices()
			if err != nil {
				return nil, err
			}
			return &ast.IndexExpr{ExprBase: p.exprBase(start), Name: name, Indices: indices}, nil
		}

		if p.check(token.LPAREN) {
			p.advance()
			var args []ast.Expr
			if !p.check(token.RPAREN) {
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				for p.check(token.COMMA) {
					p.advance()
					arg, err := p.parseExpression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
				}
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return &ast.CallExpr{ExprBase: p.exprBase(start), Name: name, Args: args}, nil
		}

		return &ast.Ident{ExprBase: p.exprBase(start), Name: name}, nil

	default:
		return nil, diag.Errorf("E2003", tok.Span,
			"unexpected token in expression: '%s'", tok.Kind)
	}
}

func (p *Parser) parseArrayLit() (ast.Expr, error) {
	start := p.current().Span.Start
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var elements []ast.Expr
	if !p.check(token.RBRACE) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
		for p.check(token.COMMA) {
			p.advance()
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, e)
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{ExprBase: p.exprBase(start), Elements: elements}, nil
}
