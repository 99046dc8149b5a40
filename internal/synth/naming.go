package synth

import (
	"github.com/iancoleman/strcase"

	"github.com/funvibe/doubledyn/internal/resolver"
	"github.com/funvibe/doubledyn/internal/token"
)

// entryName is the Go name of the dispatch entry for a declared function:
// exported for `pub` declarations, unexported otherwise.
func entryName(fn *resolver.Function) string {
	if fn.Sig.IsPublic() {
		return strcase.ToCamel(fn.Name())
	}
	return strcase.ToLowerCamel(fn.Name())
}

func l1Name(fn *resolver.Function) string {
	return "l1" + strcase.ToCamel(fn.Name())
}

// l2Name bakes the concrete A type into the method name, so the second
// dispatch is an ordinary method call on the B value.
func l2Name(fn *resolver.Function, a resolver.ConcreteType) string {
	return "l2" + strcase.ToCamel(fn.Name()) + typeSuffix(a)
}

// typeSuffix turns `T` into "T" and `*T` into "PtrT".
func typeSuffix(t resolver.ConcreteType) string {
	name, ptr := receiverType(t.Tokens)
	suffix := strcase.ToCamel(name.Lexeme)
	if ptr {
		suffix = "Ptr" + suffix
	}
	return suffix
}

// receiverType splits `T` / `*T` into the identifier and the pointer flag.
// Callers validate the shape first.
func receiverType(trees []token.Tree) (token.Token, bool) {
	if len(trees) == 2 {
		return trees[1].(token.Token), true
	}
	return trees[0].(token.Token), false
}

var predeclared = map[string]bool{
	"any": true, "bool": true, "byte": true, "comparable": true,
	"complex64": true, "complex128": true, "error": true,
	"float32": true, "float64": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"rune": true, "string": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
}
