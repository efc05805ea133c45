package lexer

import (
	"testing"

	"dncl-lang/internal/token"
)

func tokenize(t *testing.T, source string) []token.Token {
	t.Helper()
	l := New(source, "test.dncl")
	tokens, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return tokens
}

func expectKinds(t *testing.T, tokens []token.Token, expected []token.Kind) {
	t.Helper()
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeAssignment(t *testing.T) {
	tokens := tokenize(t, "x ← 1 ＋ 2")
	expectKinds(t, tokens, []token.Kind{
		token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.INT, token.EOF,
	})
}

func TestTokenizeKeywordPhrases(t *testing.T) {
	tokens := tokenize(t, "もし x ＞ 0 ならば x を表示する を実行する")
	expectKinds(t, tokens, []token.Kind{
		token.KW_IF, token.IDENT, token.GT, token.INT, token.KW_THEN,
		token.IDENT, token.KW_DISPLAY, token.KW_EXECUTE, token.EOF,
	})
}

// を実行し must win over を even though を matches first textually.
func TestTokenizeLongestMatch(t *testing.T) {
	tokens := tokenize(t, "を実行し を実行する を を表示する を代入する を繰り返す を返す")
	expectKinds(t, tokens, []token.Kind{
		token.KW_AND_EXECUTE, token.KW_EXECUTE, token.KW_WO,
		token.KW_DISPLAY, token.KW_ASSIGN_TO, token.KW_REPEAT,
		token.KW_RETURN, token.EOF,
	})
}

func TestTokenizeFullWidthOperators(t *testing.T) {
	tokens := tokenize(t, "＋ － × ÷ ％ ＝ ≠ ＞ ≧ ＜ ≦")
	expectKinds(t, tokens, []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.INTDIV, token.PERCENT,
		token.EQ, token.NEQ, token.GT, token.GTE, token.LT, token.LTE,
		token.EOF,
	})
}

func TestTokenizeASCIIOperators(t *testing.T) {
	tokens := tokenize(t, "+ - * / % = != > >= < <=")
	expectKinds(t, tokens, []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NEQ, token.GT, token.GTE, token.LT, token.LTE,
		token.EOF,
	})
}

func TestTokenizeNumbers(t *testing.T) {
	tokens := tokenize(t, "42 3.14 0 0.5")
	expectKinds(t, tokens, []token.Kind{
		token.INT, token.FLOAT, token.INT, token.FLOAT, token.EOF,
	})
	if tokens[0].Lexeme != "42" || tokens[1].Lexeme != "3.14" {
		t.Errorf("unexpected lexemes: %q %q", tokens[0].Lexeme, tokens[1].Lexeme)
	}
}

func TestTokenizeStrings(t *testing.T) {
	tokens := tokenize(t, `「こんにちは」 "hello"`)
	expectKinds(t, tokens, []token.Kind{token.STRING, token.STRING, token.EOF})
	if tokens[0].Lexeme != "こんにちは" {
		t.Errorf("expected こんにちは, got %q", tokens[0].Lexeme)
	}
	if tokens[1].Lexeme != "hello" {
		t.Errorf("expected hello, got %q", tokens[1].Lexeme)
	}
}

func TestTokenizeStringNoEscapes(t *testing.T) {
	tokens := tokenize(t, `「a\nb」`)
	if tokens[0].Lexeme != `a\nb` {
		t.Errorf("expected verbatim content, got %q", tokens[0].Lexeme)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	l := New("「終わらない", "test.dncl")
	_, err := l.Tokenize()
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestTokenizeNewlines(t *testing.T) {
	tokens := tokenize(t, "x ← 1\ny ← 2\n")
	expectKinds(t, tokens, []token.Kind{
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	})
}

func TestTokenizeInputMarker(t *testing.T) {
	tokens := tokenize(t, "x ← 【外部からの入力】")
	expectKinds(t, tokens, []token.Kind{
		token.IDENT, token.ASSIGN, token.KW_INPUT, token.EOF,
	})
}

func TestTokenizeJapaneseIdentifier(t *testing.T) {
	tokens := tokenize(t, "得点 ← 80")
	expectKinds(t, tokens, []token.Kind{
		token.IDENT, token.ASSIGN, token.INT, token.EOF,
	})
	if tokens[0].Lexeme != "得点" {
		t.Errorf("expected 得点, got %q", tokens[0].Lexeme)
	}
}

func TestTokenizeArraySyntax(t *testing.T) {
	tokens := tokenize(t, "A[1，2] ← {1, 2, 3}")
	expectKinds(t, tokens, []token.Kind{
		token.IDENT, token.LBRACKET, token.INT, token.COMMA, token.INT, token.RBRACKET,
		token.ASSIGN,
		token.LBRACE, token.INT, token.COMMA, token.INT, token.COMMA, token.INT, token.RBRACE,
		token.EOF,
	})
}

func TestTokenizeCountingLoopLine(t *testing.T) {
	tokens := tokenize(t, "i を 1 から 5 まで 1 ずつ増やしながら")
	expectKinds(t, tokens, []token.Kind{
		token.IDENT, token.KW_WO, token.INT, token.KW_FROM, token.INT, token.KW_TO,
		token.INT, token.KW_BY, token.KW_INCREASING, token.EOF,
	})
}

func TestTokenizePositions(t *testing.T) {
	tokens := tokenize(t, "x ← 1\ny ← 2")
	// y starts at line 2, column 1; columns count runes.
	y := tokens[4]
	if y.Span.Start.Line != 2 || y.Span.Start.Column != 1 {
		t.Errorf("expected y at 2:1, got %s", y.Span.Start)
	}
	one := tokens[2]
	if one.Span.Start.Line != 1 || one.Span.Start.Column != 5 {
		t.Errorf("expected 1 at 1:5, got %s", one.Span.Start)
	}
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	l := New("x ← @", "test.dncl")
	_, err := l.Tokenize()
	if err == nil {
		t.Fatal("expected error for unexpected character")
	}
}
