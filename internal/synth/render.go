package synth

import (
	"strings"

	"github.com/funvibe/doubledyn/internal/token"
)

// renderer writes token trees back as source text. Line breaks are taken
// from the token positions, so Go's semicolon insertion sees the lines the
// author wrote; on one line the original column gaps are kept, which keeps
// `:=`, `<-`, `...` and friends together.
type renderer struct {
	sb      strings.Builder
	line    int
	col     int
	prev    token.Token
	started bool
}

func (r *renderer) token(t token.Token) {
	switch {
	case !r.started:
		r.started = true
	case t.Line > r.line:
		r.sb.WriteString(strings.Repeat("\n", t.Line-r.line))
	case t.Column > r.col && t.Line == r.line:
		r.sb.WriteString(strings.Repeat(" ", t.Column-r.col))
	case wordLike(r.prev) && wordLike(t):
		r.sb.WriteByte(' ')
	}
	r.sb.WriteString(t.Lexeme)
	r.prev = t
	r.line, r.col = t.End()
}

func (r *renderer) trees(trees []token.Tree) {
	for _, tree := range trees {
		switch n := tree.(type) {
		case token.Token:
			r.token(n)
		case *token.Group:
			r.token(n.Open)
			r.trees(n.Trees)
			r.token(n.Close)
		}
	}
}

func render(trees []token.Tree) string {
	r := &renderer{}
	r.trees(trees)
	return r.sb.String()
}

// renderBody renders a brace group such as a function body.
func renderBody(g *token.Group) string {
	return render([]token.Tree{g})
}

func wordLike(t token.Token) bool {
	switch t.Type {
	case token.IDENT, token.NUMBER, token.STRING, token.CHAR:
		return true
	}
	return false
}

// goType renders a type expression for a Go signature. `dyn` only marks the
// open arguments; an interface value already is a dynamic reference.
func goType(trees []token.Tree) string {
	return render(dropDyn(trees))
}

func dropDyn(trees []token.Tree) []token.Tree {
	out := make([]token.Tree, 0, len(trees))
	for i, tree := range trees {
		switch n := tree.(type) {
		case token.Token:
			if n.Is(token.KwDyn) && i+1 < len(trees) {
				if next, ok := trees[i+1].(token.Token); ok && next.Type == token.IDENT {
					continue
				}
			}
			out = append(out, n)
		case *token.Group:
			out = append(out, &token.Group{Delim: n.Delim, Open: n.Open, Close: n.Close, Trees: dropDyn(n.Trees)})
		}
	}
	return out
}

// isDynRef reports whether a type is exactly `dyn Name`.
func isDynRef(trees []token.Tree, name string) bool {
	if len(trees) != 2 {
		return false
	}
	dyn, ok1 := trees[0].(token.Token)
	id, ok2 := trees[1].(token.Token)
	return ok1 && ok2 && dyn.Is(token.KwDyn) && id.Type == token.IDENT && id.Lexeme == name
}
