package resolver

import (
	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/token"
)

// Substitute replaces every `#A` and `#B` marker in trees with the given
// concrete types, descending into groups. Groups are rebuilt, never shared
// with the input.
func Substitute(trees []token.Tree, a, b []token.Tree) ([]token.Tree, *diagnostics.DiagnosticError) {
	var out []token.Tree
	var hash *token.Token

	for _, tree := range trees {
		if hash != nil {
			tok, ok := tree.(token.Token)
			if !ok || tok.Type != token.IDENT {
				return nil, diagnostics.NewError(diagnostics.ErrR012, tree.First())
			}
			switch tok.Lexeme {
			case "A":
				out = append(out, relocate(a, *hash)...)
			case "B":
				out = append(out, relocate(b, *hash)...)
			default:
				return nil, diagnostics.NewError(diagnostics.ErrR011, tok, tok.Lexeme)
			}
			hash = nil
			continue
		}

		switch n := tree.(type) {
		case token.Token:
			if n.Is("#") {
				marker := n
				hash = &marker
				continue
			}
			out = append(out, n)
		case *token.Group:
			inner, err := Substitute(n.Trees, a, b)
			if err != nil {
				return nil, err
			}
			out = append(out, &token.Group{Delim: n.Delim, Open: n.Open, Close: n.Close, Trees: inner})
		}
	}

	if hash != nil {
		return nil, diagnostics.NewError(diagnostics.ErrR012, *hash)
	}
	return out, nil
}

// SubstituteGroup is Substitute for a whole group, keeping its delimiters.
func SubstituteGroup(g *token.Group, a, b []token.Tree) (*token.Group, *diagnostics.DiagnosticError) {
	inner, err := Substitute(g.Trees, a, b)
	if err != nil {
		return nil, err
	}
	return &token.Group{Delim: g.Delim, Open: g.Open, Close: g.Close, Trees: inner}, nil
}

// relocate copies a type's tokens onto the line of the marker they replace,
// keeping their spacing relative to each other. Bodies are rendered from
// token positions, so a type written in the impl header must not drag its
// own line number into the body.
func relocate(trees []token.Tree, at token.Token) []token.Tree {
	if len(trees) == 0 {
		return nil
	}
	first := trees[0].First()
	col := at.Column
	move := func(t token.Token) token.Token {
		if t.Line == first.Line && t.Column-first.Column+at.Column >= col {
			col = t.Column - first.Column + at.Column
		}
		t.Line = at.Line
		t.Column = col
		_, end := t.End()
		col = end
		return t
	}

	var walk func([]token.Tree) []token.Tree
	walk = func(ts []token.Tree) []token.Tree {
		out := make([]token.Tree, 0, len(ts))
		for _, tree := range ts {
			switch n := tree.(type) {
			case token.Token:
				out = append(out, move(n))
			case *token.Group:
				g := &token.Group{Delim: n.Delim, Open: move(n.Open)}
				g.Trees = walk(n.Trees)
				g.Close = move(n.Close)
				out = append(out, g)
			}
		}
		return out
	}
	return walk(trees)
}
