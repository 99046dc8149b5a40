package ast

import (
	"github.com/funvibe/doubledyn/internal/token"
)

// ImplBlock binds one or more concrete A types and B types to a set of
// function bodies.
//
//	#[commutative]
//	impl for <[Int8, Int16], Float> { fn add(a: #A, b: #B) -> Number { ... } }
type ImplBlock struct {
	Token       token.Token  // The 'impl' token
	Attr        *token.Group // the `[commutative]` group, nil when absent
	Commutative bool
	Pair        token.Token // the closing '>' of the type pair, for locating list errors
	ATypes      [][]token.Tree
	BTypes      [][]token.Tree
	Body        *token.Group
	Fns         []*ImplFn
}

func (b *ImplBlock) GetToken() token.Token {
	if b == nil {
		return token.Token{}
	}
	return b.Token
}

// Fn returns the implementation of the named function in this block.
func (b *ImplBlock) Fn(name string) *ImplFn {
	for _, fn := range b.Fns {
		if fn.Sig.Name.Lexeme == name {
			return fn
		}
	}
	return nil
}

// ImplFn is one function implementation inside an impl block.
type ImplFn struct {
	Sig  *FnSignature
	Body *token.Group
}

func (f *ImplFn) GetToken() token.Token {
	if f == nil {
		return token.Token{}
	}
	return f.Sig.GetToken()
}
