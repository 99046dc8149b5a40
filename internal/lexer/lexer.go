package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/doubledyn/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

// NextToken returns the next token. Punctuation is never combined: `->`
// arrives as `-` followed by `>`, the way the parser expects it.
func (l *Lexer) NextToken() token.Token {
	if line, col, ok := l.skipWhitespace(); !ok {
		return token.Token{Type: token.ILLEGAL, Lexeme: "unterminated block comment", Line: line, Column: col}
	}

	line, col := l.line, l.column

	switch {
	case l.ch == 0 && l.position >= len(l.input):
		return token.Token{Type: token.EOF, Line: line, Column: col}
	case isLetter(l.ch):
		return token.Token{Type: token.IDENT, Lexeme: l.readIdentifier(), Line: line, Column: col}
	case isDigit(l.ch):
		return token.Token{Type: token.NUMBER, Lexeme: l.readNumber(), Line: line, Column: col}
	case l.ch == '"':
		lexeme, ok := l.readString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Lexeme: "unterminated string literal", Line: line, Column: col}
		}
		return token.Token{Type: token.STRING, Lexeme: lexeme, Line: line, Column: col}
	case l.ch == '`':
		lexeme, ok := l.readRawString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Lexeme: "unterminated raw string literal", Line: line, Column: col}
		}
		return token.Token{Type: token.STRING, Lexeme: lexeme, Line: line, Column: col}
	case l.ch == '\'':
		lexeme, ok := l.readCharLiteral()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Lexeme: "unterminated character literal", Line: line, Column: col}
		}
		return token.Token{Type: token.CHAR, Lexeme: lexeme, Line: line, Column: col}
	}

	var tok token.Token
	switch l.ch {
	case '(':
		tok = newToken(token.LPAREN, l.ch, line, col)
	case ')':
		tok = newToken(token.RPAREN, l.ch, line, col)
	case '{':
		tok = newToken(token.LBRACE, l.ch, line, col)
	case '}':
		tok = newToken(token.RBRACE, l.ch, line, col)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, line, col)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, line, col)
	default:
		if isPunct(l.ch) {
			tok = newToken(token.PUNCT, l.ch, line, col)
		} else {
			tok = token.Token{Type: token.ILLEGAL, Lexeme: "illegal character " + quoteRune(l.ch), Line: line, Column: col}
		}
	}

	l.readChar()
	return tok
}

// Tokenize lexes the whole input. The EOF token is always last.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF || tok.Type == token.ILLEGAL {
			if tok.Type == token.ILLEGAL {
				tokens = append(tokens, token.Token{Type: token.EOF, Line: l.line, Column: l.column})
			}
			return tokens
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber accepts every Go numeric literal shape (prefixes, separators,
// fractions, exponents, imaginary suffix). The lexeme is kept verbatim.
func (l *Lexer) readNumber() string {
	position := l.position
	hex := l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X')
	for {
		switch {
		case isDigit(l.ch) || isLetter(l.ch):
			prev := l.ch
			l.readChar()
			exponent := prev == 'p' || prev == 'P' || (!hex && (prev == 'e' || prev == 'E'))
			if exponent && (l.ch == '+' || l.ch == '-') {
				l.readChar()
			}
		case l.ch == '.' && isDigit(l.peekChar()):
			l.readChar()
		default:
			return l.input[position:l.position]
		}
	}
}

func (l *Lexer) readString() (string, bool) {
	position := l.position
	for {
		l.readChar()
		switch l.ch {
		case '\\':
			l.readChar()
		case '"':
			l.readChar()
			return l.input[position:l.position], true
		case '\n', 0:
			return "", false
		}
	}
}

// readRawString reads a backtick-delimited raw string that can span multiple lines.
func (l *Lexer) readRawString() (string, bool) {
	position := l.position
	for {
		l.readChar()
		if l.ch == 0 && l.position >= len(l.input) {
			return "", false
		}
		if l.ch == '`' {
			l.readChar()
			return l.input[position:l.position], true
		}
	}
}

func (l *Lexer) readCharLiteral() (string, bool) {
	position := l.position
	for {
		l.readChar()
		switch l.ch {
		case '\\':
			l.readChar()
		case '\'':
			l.readChar()
			return l.input[position:l.position], true
		case '\n', 0:
			return "", false
		}
	}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isPunct(ch rune) bool {
	return ch < utf8.RuneSelf && strings.ContainsRune("+-*/%&|^<>=!:;,.~#?@$", ch)
}

func quoteRune(ch rune) string {
	return "'" + string(ch) + "'"
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	return token.Token{Type: tokenType, Lexeme: string(ch), Line: line, Column: col}
}

// skipWhitespace drops blanks and comments. It returns false with the
// position of the opening `/*` when a block comment runs to the end.
func (l *Lexer) skipWhitespace() (int, int, bool) {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch == '/' {
			if l.peekChar() == '/' {
				for l.ch != '\n' && !(l.ch == 0 && l.position >= len(l.input)) {
					l.readChar()
				}
				continue
			} else if l.peekChar() == '*' {
				line, col := l.line, l.column
				l.readChar() // consume /
				l.readChar() // consume *
				closed := false
				for !(l.ch == 0 && l.position >= len(l.input)) {
					if l.ch == '*' && l.peekChar() == '/' {
						l.readChar() // consume *
						l.readChar() // consume /
						closed = true
						break
					}
					l.readChar()
				}
				if !closed {
					return line, col, false
				}
				continue
			}
		}
		return 0, 0, true
	}
}
