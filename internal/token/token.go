// Package token defines the token types produced by the lexer.
//
// DNCL keywords are multi-character phrases, not single symbols, and the
// shorter phrases are textual prefixes of longer ones (を vs を実行し vs
// を実行する). MatchKeyword therefore always tries phrases in order of
// decreasing length.
package token

import (
	"fmt"
	"sort"
	"strings"

	"dncl-lang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF
	NEWLINE

	// Literals
	IDENT  // identifiers: x, Tokuten, kosu
	INT    // integer literals: 123
	FLOAT  // float literals: 3.14
	STRING // string literals: 「こんにちは」, "hello"

	// Operators
	ASSIGN  // ←
	PLUS    // ＋ +
	MINUS   // － -
	STAR    // × *
	SLASH   // / (float division)
	INTDIV  // ÷ (integer floor division)
	PERCENT // ％ %

	EQ  // ＝ =
	NEQ // ≠ !=
	GT  // ＞ >
	GTE // ≧ >=
	LT  // ＜ <
	LTE // ≦ <=

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }
	COMMA    // , ，

	// Keyword phrases
	KW_IF           // もし
	KW_THEN         // ならば
	KW_ELSE         // そうでなければ
	KW_ELIF         // そうでなくもし
	KW_EXECUTE      // を実行する
	KW_AND_EXECUTE  // を実行し
	KW_WHILE        // の間
	KW_REPEAT       // を繰り返す
	KW_DO_REPEAT    // 繰り返し
	KW_UNTIL        // になるまで実行する
	KW_WO           // を (general linking particle)
	KW_FROM         // から
	KW_TO           // まで
	KW_BY           // ずつ
	KW_INCREASING   // 増やしながら
	KW_DECREASING   // 減らしながら
	KW_DISPLAY      // を表示する
	KW_CONCAT       // と (display linker)
	KW_FUNCTION     // 関数
	KW_DEFINE       // と定義する
	KW_ALL_ELEMENTS // のすべての要素に
	KW_ASSIGN_TO    // を代入する
	KW_INCREASE     // 増やす
	KW_DECREASE     // 減らす
	KW_RETURN       // を返す
	KW_AND          // かつ
	KW_OR           // または
	KW_NOT          // でない
	KW_INPUT        // 【外部からの入力】
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",

	IDENT:  "IDENT",
	INT:    "INT",
	FLOAT:  "FLOAT",
	STRING: "STRING",

	ASSIGN:  "←",
	PLUS:    "＋",
	MINUS:   "－",
	STAR:    "×",
	SLASH:   "/",
	INTDIV:  "÷",
	PERCENT: "％",
	EQ:      "＝",
	NEQ:     "≠",
	GT:      "＞",
	GTE:     "≧",
	LT:      "＜",
	LTE:     "≦",

	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",
	COMMA:    ",",

	KW_IF:           "もし",
	KW_THEN:         "ならば",
	KW_ELSE:         "そうでなければ",
	KW_ELIF:         "そうでなくもし",
	KW_EXECUTE:      "を実行する",
	KW_AND_EXECUTE:  "を実行し",
	KW_WHILE:        "の間",
	KW_REPEAT:       "を繰り返す",
	KW_DO_REPEAT:    "繰り返し",
	KW_UNTIL:        "になるまで実行する",
	KW_WO:           "を",
	KW_FROM:         "から",
	KW_TO:           "まで",
	KW_BY:           "ずつ",
	KW_INCREASING:   "増やしながら",
	KW_DECREASING:   "減らしながら",
	KW_DISPLAY:      "を表示する",
	KW_CONCAT:       "と",
	KW_FUNCTION:     "関数",
	KW_DEFINE:       "と定義する",
	KW_ALL_ELEMENTS: "のすべての要素に",
	KW_ASSIGN_TO:    "を代入する",
	KW_INCREASE:     "増やす",
	KW_DECREASE:     "減らす",
	KW_RETURN:       "を返す",
	KW_AND:          "かつ",
	KW_OR:           "または",
	KW_NOT:          "でない",
	KW_INPUT:        "【外部からの入力】",
}

// String returns the human-readable name for a token kind. Keyword and
// operator kinds render as their canonical source text.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword phrase.
func (k Kind) IsKeyword() bool {
	return k >= KW_IF && k <= KW_INPUT
}

// IsLiteral returns true if the kind is a literal (ident/int/float/string).
func (k Kind) IsLiteral() bool {
	return k >= IDENT && k <= STRING
}

// keywordEntry pairs a keyword phrase with its kind.
type keywordEntry struct {
	phrase string
	kind   Kind
}

// keywords holds every keyword phrase, sorted by decreasing byte length in
// init so that MatchKeyword commits to the longest possible phrase.
var keywords = []keywordEntry{
	{"もし", KW_IF},
	{"ならば", KW_THEN},
	{"そうでなければ", KW_ELSE},
	{"そうでなくもし", KW_ELIF},
	{"を実行する", KW_EXECUTE},
	{"を実行し", KW_AND_EXECUTE},
	{"の間", KW_WHILE},
	{"を繰り返す", KW_REPEAT},
	{"繰り返し", KW_DO_REPEAT},
	{"になるまで実行する", KW_UNTIL},
	{"を", KW_WO},
	{"から", KW_FROM},
	{"まで", KW_TO},
	{"ずつ", KW_BY},
	{"増やしながら", KW_INCREASING},
	{"減らしながら", KW_DECREASING},
	{"を表示する", KW_DISPLAY},
	{"と", KW_CONCAT},
	{"関数", KW_FUNCTION},
	{"と定義する", KW_DEFINE},
	{"のすべての要素に", KW_ALL_ELEMENTS},
	{"を代入する", KW_ASSIGN_TO},
	{"増やす", KW_INCREASE},
	{"減らす", KW_DECREASE},
	{"を返す", KW_RETURN},
	{"かつ", KW_AND},
	{"または", KW_OR},
	{"でない", KW_NOT},
	{"【外部からの入力】", KW_INPUT},
}

func init() {
	sort.SliceStable(keywords, func(i, j int) bool {
		return len(keywords[i].phrase) > len(keywords[j].phrase)
	})
}

// MatchKeyword reports the longest keyword phrase that is a prefix of rest,
// returning its kind and byte length. It returns (ILLEGAL, 0) when no
// phrase matches.
func MatchKeyword(rest string) (Kind, int) {
	for _, kw := range keywords {
		if strings.HasPrefix(rest, kw.phrase) {
			return kw.kind, len(kw.phrase)
		}
	}
	return ILLEGAL, 0
}

// Token represents a lexical token with its kind, text, and source location.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
