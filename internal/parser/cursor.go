package parser

import (
	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/token"
)

// Cursor walks one level of a token tree. It is a small value: copying it
// takes a snapshot, assigning the copy back rewinds.
//
//	tmp := *c
//	if _, err := tmp.RequireIdent(); err == nil { *c = tmp }
type Cursor struct {
	trees []token.Tree
	pos   int
	// end locates errors raised when the level runs out: the EOF token at
	// the top level, the closing delimiter inside a group.
	end token.Token
}

func NewCursor(trees []token.Tree, end token.Token) Cursor {
	return Cursor{trees: trees, end: end}
}

// Group returns a cursor over the interior of g.
func Group(g *token.Group) Cursor {
	return NewCursor(g.Trees, g.Close)
}

func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.trees)
}

// Peek returns the next tree without consuming it, or nil at the end.
func (c *Cursor) Peek() token.Tree {
	if c.AtEnd() {
		return nil
	}
	return c.trees[c.pos]
}

func (c *Cursor) peekAt(offset int) token.Tree {
	if c.pos+offset >= len(c.trees) {
		return nil
	}
	return c.trees[c.pos+offset]
}

// Pos is the token the cursor stands on, or the end token.
func (c *Cursor) Pos() token.Token {
	if tree := c.Peek(); tree != nil {
		return tree.First()
	}
	return c.end
}

func (c *Cursor) End() token.Token {
	return c.end
}

func (c *Cursor) Next() (token.Tree, *diagnostics.DiagnosticError) {
	if c.AtEnd() {
		return nil, diagnostics.NewError(diagnostics.ErrP001, c.end)
	}
	tree := c.trees[c.pos]
	c.pos++
	return tree, nil
}

func (c *Cursor) IfIdent() bool {
	tok, ok := c.Peek().(token.Token)
	return ok && tok.Type == token.IDENT
}

func (c *Cursor) RequireIdent() (token.Token, *diagnostics.DiagnosticError) {
	tree, err := c.Next()
	if err != nil {
		return token.Token{}, err
	}
	if tok, ok := tree.(token.Token); ok && tok.Type == token.IDENT {
		return tok, nil
	}
	return token.Token{}, diagnostics.NewError(diagnostics.ErrP003, tree.First())
}

func (c *Cursor) IfKeyword(keyword string) bool {
	tok, ok := c.Peek().(token.Token)
	return ok && tok.Type == token.IDENT && tok.Lexeme == keyword
}

func (c *Cursor) RequireKeyword(keyword string) (token.Token, *diagnostics.DiagnosticError) {
	tree, err := c.Next()
	if err != nil {
		return token.Token{}, err
	}
	if tok, ok := tree.(token.Token); ok && tok.Type == token.IDENT && tok.Lexeme == keyword {
		return tok, nil
	}
	return token.Token{}, diagnostics.NewError(diagnostics.ErrP002, tree.First(), keyword)
}

func (c *Cursor) IfPunct(ch string) bool {
	tok, ok := c.Peek().(token.Token)
	return ok && tok.Type == token.PUNCT && tok.Lexeme == ch
}

func (c *Cursor) RequirePunct(ch string) (token.Token, *diagnostics.DiagnosticError) {
	tree, err := c.Next()
	if err != nil {
		return token.Token{}, err
	}
	if tok, ok := tree.(token.Token); ok && tok.Type == token.PUNCT && tok.Lexeme == ch {
		return tok, nil
	}
	return token.Token{}, diagnostics.NewError(diagnostics.ErrP004, tree.First(), ch)
}

func (c *Cursor) IfGroup(d token.Delimiter) bool {
	return token.IsGroup(c.Peek(), d)
}

// RequireGroup consumes a group with the given delimiter. msg describes
// what was expected; it is reported at the end token when nothing is left.
func (c *Cursor) RequireGroup(d token.Delimiter, msg string) (*token.Group, *diagnostics.DiagnosticError) {
	if c.AtEnd() {
		return nil, diagnostics.NewError(diagnostics.ErrP005, c.end, msg)
	}
	tree, _ := c.Next()
	if g, ok := tree.(*token.Group); ok && g.Delim == d {
		return g, nil
	}
	return nil, diagnostics.NewError(diagnostics.ErrP005, tree.First(), msg)
}

// AngleGroup is a balanced `<...>` run. Angle brackets are plain
// punctuation to the reader, so the interior is kept flat.
type AngleGroup struct {
	Open     token.Token
	Close    token.Token
	Interior []token.Tree
}

// ifArrow reports whether the cursor stands on a channel arrow `<-`.
func (c *Cursor) ifArrow() bool {
	lt, ok := c.Peek().(token.Token)
	if !ok || !lt.Is("<") {
		return false
	}
	minus, ok := c.peekAt(1).(token.Token)
	return ok && minus.Is("-") && adjacent(lt, minus)
}

// RequireAngleGroup consumes `<`, everything up to the matching `>`, and the
// `>` itself. Nested angle brackets are counted, so `<Map<K, V>>` is one group.
func (c *Cursor) RequireAngleGroup(msg string) (*AngleGroup, *diagnostics.DiagnosticError) {
	ag := &AngleGroup{}
	balance := 0
	for {
		arrow := c.ifArrow()
		tree, err := c.Next()
		if err != nil {
			return nil, err
		}
		tok, isTok := tree.(token.Token)
		switch {
		case balance == 0:
			if !isTok || !tok.Is("<") || arrow {
				return nil, diagnostics.NewError(diagnostics.ErrP006, tree.First(), msg)
			}
			ag.Open = tok
			balance = 1
		case isTok && tok.Is("<") && !arrow:
			balance++
			ag.Interior = append(ag.Interior, tok)
		case isTok && tok.Is(">"):
			balance--
			if balance == 0 {
				ag.Close = tok
				return ag, nil
			}
			ag.Interior = append(ag.Interior, tok)
		default:
			ag.Interior = append(ag.Interior, tree)
		}
	}
}

// RequireEnd fails with "unexpected tokens" if anything is left.
func (c *Cursor) RequireEnd() *diagnostics.DiagnosticError {
	if c.AtEnd() {
		return nil
	}
	return diagnostics.NewError(diagnostics.ErrP008, c.Pos())
}

func adjacent(a, b token.Token) bool {
	line, col := a.End()
	return line == b.Line && col == b.Column
}
