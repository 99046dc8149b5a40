package token

import (
	"strings"
	"unicode/utf8"
)

// TokenType is a string alias for token types so they print readably.
type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT  TokenType = "IDENT"  // min_max, Number, dyn
	NUMBER TokenType = "NUMBER" // 42, 0x1F, 1.5e3
	STRING TokenType = "STRING" // "text", `raw`
	CHAR   TokenType = "CHAR"   // 'a'
	PUNCT  TokenType = "PUNCT"  // any single punctuation character

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"
)

// Token is one lexical unit. Punctuation is always a single character;
// multi-character operators are recovered from adjacency when rendering.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

// Is reports whether the token is an identifier or punctuation with the given text.
func (t Token) Is(text string) bool {
	return (t.Type == IDENT || t.Type == PUNCT) && t.Lexeme == text
}

// End returns the line and column just past the token.
func (t Token) End() (int, int) {
	nl := strings.Count(t.Lexeme, "\n")
	if nl == 0 {
		return t.Line, t.Column + utf8.RuneCountInString(t.Lexeme)
	}
	last := t.Lexeme[strings.LastIndexByte(t.Lexeme, '\n')+1:]
	return t.Line + nl, 1 + utf8.RuneCountInString(last)
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return t.Lexeme
}

// Keywords of the specification language. They are lexed as IDENT and
// recognized by the parser in context, so they stay usable in bodies.
const (
	KwType        = "type"
	KwFn          = "fn"
	KwPub         = "pub"
	KwImpl        = "impl"
	KwFor         = "for"
	KwDyn         = "dyn"
	KwCommutative = "commutative"
)
