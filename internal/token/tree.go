package token

import "strings"

// Delimiter identifies the bracket pair enclosing a Group.
type Delimiter int

const (
	Paren Delimiter = iota
	Brace
	Bracket
)

func (d Delimiter) Open() string  { return [...]string{"(", "{", "["}[d] }
func (d Delimiter) Close() string { return [...]string{")", "}", "]"}[d] }

// DelimiterOf maps an opening token type to its delimiter.
func DelimiterOf(t TokenType) (Delimiter, bool) {
	switch t {
	case LPAREN:
		return Paren, true
	case LBRACE:
		return Brace, true
	case LBRACKET:
		return Bracket, true
	}
	return 0, false
}

// ClosingOf maps a closing token type to its delimiter.
func ClosingOf(t TokenType) (Delimiter, bool) {
	switch t {
	case RPAREN:
		return Paren, true
	case RBRACE:
		return Brace, true
	case RBRACKET:
		return Bracket, true
	}
	return 0, false
}

// Tree is either a Token leaf or a *Group of nested trees.
type Tree interface {
	// First is the token used to locate the tree in diagnostics.
	First() Token
	// Last is the final token of the tree, used for spacing on output.
	Last() Token
}

func (t Token) First() Token { return t }
func (t Token) Last() Token  { return t }

// Group is a bracket-delimited sequence of trees.
type Group struct {
	Delim Delimiter
	Open  Token
	Close Token
	Trees []Tree
}

func (g *Group) First() Token { return g.Open }
func (g *Group) Last() Token  { return g.Close }

// IsGroup reports whether tree is a group with the given delimiter.
func IsGroup(tree Tree, d Delimiter) bool {
	g, ok := tree.(*Group)
	return ok && g.Delim == d
}

// Text renders trees compactly with single spaces only where two word-like
// tokens would otherwise merge. It is used for keys and messages, not output.
func Text(trees []Tree) string {
	var sb strings.Builder
	var prev *Token
	var walk func([]Tree)
	emit := func(t Token) {
		if prev != nil && wordLike(*prev) && wordLike(t) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Lexeme)
		tc := t
		prev = &tc
	}
	walk = func(ts []Tree) {
		for _, tree := range ts {
			switch n := tree.(type) {
			case Token:
				emit(n)
			case *Group:
				emit(n.Open)
				walk(n.Trees)
				emit(n.Close)
			}
		}
	}
	walk(trees)
	return sb.String()
}

func wordLike(t Token) bool {
	return t.Type == IDENT || t.Type == NUMBER || t.Type == STRING || t.Type == CHAR
}

// Equal compares two tree sequences by token text and structure.
func Equal(a, b []Tree) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		switch x := a[i].(type) {
		case Token:
			y, ok := b[i].(Token)
			if !ok || x.Type != y.Type || x.Lexeme != y.Lexeme {
				return false
			}
		case *Group:
			y, ok := b[i].(*Group)
			if !ok || x.Delim != y.Delim || !Equal(x.Trees, y.Trees) {
				return false
			}
		}
	}
	return true
}

// ContainsSequence reports whether trees has the given identifier/punctuation
// texts as a contiguous run, at the top level or inside any nested group.
func ContainsSequence(trees []Tree, seq ...string) bool {
	if len(seq) == 0 {
		return false
	}
	for i, tree := range trees {
		if g, ok := tree.(*Group); ok {
			if ContainsSequence(g.Trees, seq...) {
				return true
			}
			continue
		}
		if i+len(seq) > len(trees) {
			continue
		}
		match := true
		for j, want := range seq {
			tok, ok := trees[i+j].(Token)
			if !ok || !tok.Is(want) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
