package ast

import (
	"github.com/funvibe/doubledyn/internal/token"
)

// FnSignature is a function header, either a declaration terminated by ';'
// or the header of an implementation followed by its body.
//
//	pub fn min_max(val: int, lo: dyn Bound, hi: dyn Bound) -> (int, error);
type FnSignature struct {
	Token      token.Token  // The 'fn' token
	Visibility []token.Tree // `pub`, `pub(...)` or empty
	Name       token.Token
	Generics   []token.Tree // interior of <...>, empty when absent
	Args       []*FnArg
	Result     []token.Tree // empty when there is no `->` clause

	// ACandidates and BCandidates are the argument indices whose type
	// contains `dyn <ClassA>` / `dyn <ClassB>`. Only set on declarations.
	ACandidates []int
	BCandidates []int
}

func (s *FnSignature) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Name
}

// IsPublic reports whether the visibility qualifier exports the function.
func (s *FnSignature) IsPublic() bool {
	return len(s.Visibility) > 0
}

// FnArg is one formal parameter, `name: Type` or just `Type`.
type FnArg struct {
	Name *token.Token
	Type []token.Tree
}

func (a *FnArg) GetToken() token.Token {
	if a == nil {
		return token.Token{}
	}
	if a.Name != nil {
		return *a.Name
	}
	if len(a.Type) > 0 {
		return a.Type[0].First()
	}
	return token.Token{}
}

// ArgName returns the parameter name or "" for an anonymous argument.
func (a *FnArg) ArgName() string {
	if a.Name == nil {
		return ""
	}
	return a.Name.Lexeme
}
