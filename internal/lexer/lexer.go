// Package lexer implements lexical analysis for DNCL source code.
//
// Keyword phrases are recognized longest-match-first via token.MatchKeyword
// before a character run is treated as an identifier; this keeps を実行し
// from being split into を + 実行し and similar.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"dncl-lang/internal/diag"
	"dncl-lang/internal/span"
	"dncl-lang/internal/token"
)

// Lexer tokenizes source code into a sequence of tokens. It is fail-fast:
// the first unterminated string or unrecognized character aborts the scan.
type Lexer struct {
	source   string
	filename string

	pos  int // current byte position in source
	line int // current line (1-based)
	col  int // current column (1-based, counted in runes)
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

// Tokenize scans the entire source and returns all tokens. The returned
// slice always ends with an EOF token; on error it holds the tokens read
// so far.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, nil
}

// ---- internal helpers ----

// peek returns the current rune without advancing, or 0 at end of input.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.source) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

// peekAt returns the rune at the given byte offset from the current
// position, or 0 at end of input.
func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.source) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+offset:])
	return r
}

// advance consumes the current rune and returns it with its byte size.
func (l *Lexer) advance() (rune, int) {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, size
}

// advanceBytes consumes exactly n bytes of known rune-aligned text.
func (l *Lexer) advanceBytes(n int) {
	for consumed := 0; consumed < n; {
		_, size := l.advance()
		consumed += size
	}
}

// curPos returns the current position as a span.Position.
func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// makeSpan returns a span from start to the current position.
func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

// skipWhitespace skips horizontal whitespace (not newlines), including the
// full-width space.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.peek() {
		case ' ', '\t', '\r', '　':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) errorf(code string, s span.Span, format string, args ...interface{}) error {
	return diag.Errorf(code, s, format, args...)
}

// ---- token reading ----

func (l *Lexer) nextToken() (token.Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Lexeme: "", Span: l.makeSpan(l.curPos())}, nil
	}

	start := l.curPos()
	ch := l.peek()

	// Newline
	if ch == '\n' {
		l.advance()
		return token.Token{Kind: token.NEWLINE, Lexeme: "\\n", Span: l.makeSpan(start)}, nil
	}

	// String literals: 「…」 or "…"
	if ch == '「' {
		return l.readString(start, '」')
	}
	if ch == '"' {
		return l.readString(start, '"')
	}

	// Number literal
	if isDigit(ch) {
		return l.readNumber(start), nil
	}

	// Operators and delimiters (full-width and ASCII variants)
	if tok, ok := l.readOperator(start); ok {
		return tok, nil
	}

	// Keyword phrase or identifier
	return l.readIdentOrKeyword(start)
}

// readString reads a string literal delimited by the given closer. Content
// is taken verbatim; there is no escape processing.
func (l *Lexer) readString(start span.Position, closer rune) (token.Token, error) {
	l.advance() // skip opening delimiter
	valStart := l.pos

	for l.pos < len(l.source) {
		if l.peek() == closer {
			value := l.source[valStart:l.pos]
			l.advance() // skip closing delimiter
			return token.Token{Kind: token.STRING, Lexeme: value, Span: l.makeSpan(start)}, nil
		}
		l.advance()
	}

	return token.Token{}, l.errorf("E1001", l.makeSpan(start),
		"unterminated string starting at %d:%d", start.Line, start.Column)
}

// readNumber reads an integer or float literal. A decimal point followed by
// a digit selects FLOAT; at most one point is consumed.
func (l *Lexer) readNumber(start span.Position) token.Token {
	isFloat := false
	numStart := l.pos

	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.advance()
	}

	if l.pos < len(l.source) && l.peek() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		l.advance() // skip '.'
		for l.pos < len(l.source) && isDigit(l.peek()) {
			l.advance()
		}
	}

	lexeme := l.source[numStart:l.pos]
	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	return token.Token{Kind: kind, Lexeme: lexeme, Span: l.makeSpan(start)}
}

// readOperator reads an operator or delimiter token. It reports ok=false
// when the current rune starts no operator.
func (l *Lexer) readOperator(start span.Position) (token.Token, bool) {
	one := func(kind token.Kind) (token.Token, bool) {
		r, _ := l.advance()
		return token.Token{Kind: kind, Lexeme: string(r), Span: l.makeSpan(start)}, true
	}
	two := func(kind token.Kind) (token.Token, bool) {
		a, _ := l.advance()
		b, _ := l.advance()
		return token.Token{Kind: kind, Lexeme: string(a) + string(b), Span: l.makeSpan(start)}, true
	}

	switch l.peek() {
	case '←':
		return one(token.ASSIGN)
	case '＋', '+':
		return one(token.PLUS)
	case '－', '-':
		return one(token.MINUS)
	case '×', '*':
		return one(token.STAR)
	case '/':
		return one(token.SLASH)
	case '÷':
		return one(token.INTDIV)
	case '％', '%':
		return one(token.PERCENT)
	case '＝':
		return one(token.EQ)
	case '=':
		return one(token.EQ)
	case '≠':
		return one(token.NEQ)
	case '!':
		if l.peekAt(1) == '=' {
			return two(token.NEQ)
		}
		return token.Token{}, false
	case '＞':
		return one(token.GT)
	case '>':
		if l.peekAt(1) == '=' {
			return two(token.GTE)
		}
		return one(token.GT)
	case '≧':
		return one(token.GTE)
	case '＜':
		return one(token.LT)
	case '<':
		if l.peekAt(1) == '=' {
			return two(token.LTE)
		}
		return one(token.LT)
	case '≦':
		return one(token.LTE)
	case '(':
		return one(token.LPAREN)
	case ')':
		return one(token.RPAREN)
	case '[':
		return one(token.LBRACKET)
	case ']':
		return one(token.RBRACKET)
	case '{':
		return one(token.LBRACE)
	case '}':
		return one(token.RBRACE)
	case ',', '，':
		return one(token.COMMA)
	default:
		return token.Token{}, false
	}
}

// readIdentOrKeyword reads a keyword phrase (longest match first) or an
// identifier.
func (l *Lexer) readIdentOrKeyword(start span.Position) (token.Token, error) {
	if kind, n := token.MatchKeyword(l.source[l.pos:]); n > 0 {
		phrase := l.source[l.pos : l.pos+n]
		l.advanceBytes(n)
		return token.Token{Kind: kind, Lexeme: phrase, Span: l.makeSpan(start)}, nil
	}

	identStart := l.pos
	for l.pos < len(l.source) && isIdentPart(l.peek()) {
		l.advance()
	}

	if l.pos == identStart {
		ch := l.peek()
		return token.Token{}, l.errorf("E1002", l.makeSpan(start), "unexpected character: %q", ch)
	}

	lexeme := l.source[identStart:l.pos]
	return token.Token{Kind: token.IDENT, Lexeme: lexeme, Span: l.makeSpan(start)}, nil
}

// ---- character classification ----

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isIdentPart reports whether r may appear in an identifier: letters
// (including all non-ASCII letters), digits, and underscore.
func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
