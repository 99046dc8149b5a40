package resolver

import (
	"cmp"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/doubledyn/internal/ast"
	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/token"
)

// candidates holds the argument indices still possible for each role of
// one function. The sets only ever shrink.
type candidates struct {
	a *set.TreeSet[int]
	b *set.TreeSet[int]
}

type resolver struct {
	spec       *ast.Spec
	candidates map[string]*candidates
	model      *Model
	seenA      *set.Set[string]
	seenB      *set.Set[string]
}

// Resolve narrows argument positions across all impl blocks, expands each
// block into its concrete pairs and collapses the positions to one per role.
func Resolve(spec *ast.Spec) (*Model, *diagnostics.DiagnosticError) {
	r := &resolver{
		spec:       spec,
		candidates: make(map[string]*candidates, len(spec.Functions)),
		model:      &Model{Spec: spec, Pairs: make(map[PairKey]*ResolvedPair)},
		seenA:      set.New[string](0),
		seenB:      set.New[string](0),
	}
	for _, fn := range spec.Functions {
		r.candidates[fn.Name.Lexeme] = &candidates{
			a: set.TreeSetFrom[int](fn.ACandidates, cmp.Compare[int]),
			b: set.TreeSetFrom[int](fn.BCandidates, cmp.Compare[int]),
		}
	}

	for _, block := range spec.Blocks {
		for _, impl := range block.Fns {
			if err := r.narrow(block, impl); err != nil {
				return nil, err
			}
		}
		if err := r.expand(block); err != nil {
			return nil, err
		}
	}

	if err := r.collapse(); err != nil {
		return nil, err
	}

	if spec.SingleClass() {
		union := append(append([]ConcreteType{}, r.model.ATypes...), r.model.BTypes...)
		r.model.ATypes = dedupe(union)
		r.model.BTypes = r.model.ATypes
	}
	return r.model, nil
}

// narrow drops every argument index that cannot hold a role in this
// implementation. An argument keeps the A role when its type mentions #A or
// is exactly the block's first A type; likewise for B.
func (r *resolver) narrow(block *ast.ImplBlock, impl *ast.ImplFn) *diagnostics.DiagnosticError {
	c := r.candidates[impl.Sig.Name.Lexeme]
	for i, arg := range impl.Sig.Args {
		if !token.ContainsSequence(arg.Type, "#", ast.RoleA) && !token.Equal(arg.Type, block.ATypes[0]) {
			c.a.Remove(i)
		}
		if !token.ContainsSequence(arg.Type, "#", ast.RoleB) && !token.Equal(arg.Type, block.BTypes[0]) {
			c.b.Remove(i)
		}
	}
	if c.a.Empty() {
		return diagnostics.NewError(diagnostics.ErrR006, impl.Sig.Name)
	}
	if c.b.Empty() {
		return diagnostics.NewError(diagnostics.ErrR007, impl.Sig.Name)
	}
	return nil
}

// expand produces the cross product of the block's type lists, plus the
// role-swapped product for a commutative block.
func (r *resolver) expand(block *ast.ImplBlock) *diagnostics.DiagnosticError {
	for _, aTokens := range block.ATypes {
		a := newConcreteType(aTokens)
		for _, bTokens := range block.BTypes {
			b := newConcreteType(bTokens)

			pair, err := specialize(block, a, b, false)
			if err != nil {
				return err
			}
			r.store(pair)

			// A pair of one type with itself is its own mirror.
			if block.Commutative && a.Key != b.Key {
				mirror, err := specialize(block, b, a, true)
				if err != nil {
					return err
				}
				r.store(mirror)
			}

			if r.seenB.Insert(b.Key) {
				r.model.BTypes = append(r.model.BTypes, b)
			}
		}
		if r.seenA.Insert(a.Key) {
			r.model.ATypes = append(r.model.ATypes, a)
		}
	}
	return nil
}

// specialize substitutes #A with a and #B with b in every implementation of
// the block. For a mirror the caller passes the types already swapped.
func specialize(block *ast.ImplBlock, a, b ConcreteType, mirrored bool) (*ResolvedPair, *diagnostics.DiagnosticError) {
	pair := &ResolvedPair{A: a, B: b, Mirrored: mirrored, Block: block, Fns: make(map[string]*ResolvedFn, len(block.Fns))}
	for _, impl := range block.Fns {
		sig := *impl.Sig
		sig.Args = make([]*ast.FnArg, len(impl.Sig.Args))
		for i, arg := range impl.Sig.Args {
			typ, err := Substitute(arg.Type, a.Tokens, b.Tokens)
			if err != nil {
				return nil, err
			}
			sig.Args[i] = &ast.FnArg{Name: arg.Name, Type: typ}
		}
		result, err := Substitute(impl.Sig.Result, a.Tokens, b.Tokens)
		if err != nil {
			return nil, err
		}
		sig.Result = result

		body, err := SubstituteGroup(impl.Body, a.Tokens, b.Tokens)
		if err != nil {
			return nil, err
		}
		pair.Fns[impl.Sig.Name.Lexeme] = &ResolvedFn{Sig: &sig, Body: body}
	}
	return pair, nil
}

func (r *resolver) store(pair *ResolvedPair) {
	key := PairKey{A: pair.A.Key, B: pair.B.Key}
	if _, exists := r.model.Pairs[key]; exists {
		r.model.Overrides = append(r.model.Overrides, key)
	}
	r.model.Pairs[key] = pair
}

// collapse fixes one position per role. With a single type-class the same
// index can survive in both sets, so the lowest A candidate is taken away
// from B first and then the lowest remaining B candidate from A.
func (r *resolver) collapse() *diagnostics.DiagnosticError {
	single := r.spec.SingleClass()
	for _, fn := range r.spec.Functions {
		c := r.candidates[fn.Name.Lexeme]
		if single {
			if !c.a.Empty() {
				c.b.Remove(c.a.Min())
			}
			if !c.b.Empty() {
				c.a.Remove(c.b.Min())
			}
		}

		if c.a.Empty() || c.b.Empty() {
			return diagnostics.NewError(diagnostics.ErrR008, fn.Name)
		}
		if c.a.Size() > 1 {
			return diagnostics.NewError(diagnostics.ErrR009, fn.Name)
		}
		if c.b.Size() > 1 {
			return diagnostics.NewError(diagnostics.ErrR010, fn.Name)
		}
		r.model.Functions = append(r.model.Functions, &Function{Sig: fn, APos: c.a.Min(), BPos: c.b.Min()})
	}
	return nil
}

func dedupe(types []ConcreteType) []ConcreteType {
	seen := set.New[string](len(types))
	var out []ConcreteType
	for _, t := range types {
		if seen.Insert(t.Key) {
			out = append(out, t)
		}
	}
	return out
}
