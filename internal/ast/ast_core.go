package ast

import (
	"github.com/funvibe/doubledyn/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Roles of the two open arguments.
const (
	RoleA = "A"
	RoleB = "B"
)

// Spec is the root node of every AST the parser produces: the two type-class
// preambles, the declared functions in source order and the impl blocks.
type Spec struct {
	File      string
	ClassA    *TypeClassDecl
	ClassB    *TypeClassDecl
	Functions []*FnSignature
	Blocks    []*ImplBlock
}

// SingleClass reports whether A and B name the same type-class. Several
// later decisions (commutativity, position collapse, one merged interface)
// depend on it.
func (s *Spec) SingleClass() bool {
	return s.ClassA.Name.Lexeme == s.ClassB.Name.Lexeme
}

// Function looks up a declared function by name.
func (s *Spec) Function(name string) *FnSignature {
	for _, fn := range s.Functions {
		if fn.Name.Lexeme == name {
			return fn
		}
	}
	return nil
}

// TypeClassDecl is `type A: Name bounds...;`.
type TypeClassDecl struct {
	Token  token.Token // The 'type' token
	Role   string
	Name   token.Token
	Bounds []token.Tree // everything between the name and the ';', verbatim
}

func (d *TypeClassDecl) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}
