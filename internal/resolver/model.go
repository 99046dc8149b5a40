package resolver

import (
	"github.com/funvibe/doubledyn/internal/ast"
	"github.com/funvibe/doubledyn/internal/token"
)

// Model is the resolved form of a specification: every function with its
// final A and B argument positions, the concrete types seen in each role and
// one pair per (A type, B type) that has an authored body.
type Model struct {
	Spec      *ast.Spec
	Functions []*Function
	ATypes    []ConcreteType
	BTypes    []ConcreteType
	Pairs     map[PairKey]*ResolvedPair

	// Overrides lists pairs that were authored more than once, in the order
	// the later definition was seen. The last definition wins.
	Overrides []PairKey
}

// Function is a declared function with its argument roles fixed.
type Function struct {
	Sig  *ast.FnSignature
	APos int
	BPos int
}

func (f *Function) Name() string { return f.Sig.Name.Lexeme }

// ConcreteType is one entry of an impl block's type list.
type ConcreteType struct {
	Key    string // compact text, e.g. "*Circle"
	Tokens []token.Tree
}

func newConcreteType(trees []token.Tree) ConcreteType {
	return ConcreteType{Key: token.Text(trees), Tokens: trees}
}

type PairKey struct {
	A string
	B string
}

// ResolvedPair is one (A type, B type) combination with every function body
// specialized for it.
type ResolvedPair struct {
	A        ConcreteType
	B        ConcreteType
	Mirrored bool // produced by swapping a commutative block's roles
	Block    *ast.ImplBlock
	Fns      map[string]*ResolvedFn
}

// ResolvedFn is an implementation with #A and #B replaced.
type ResolvedFn struct {
	Sig  *ast.FnSignature
	Body *token.Group
}

func (m *Model) Function(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name() == name {
			return fn
		}
	}
	return nil
}

func (m *Model) Pair(a, b string) *ResolvedPair {
	return m.Pairs[PairKey{A: a, B: b}]
}
