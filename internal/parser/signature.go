package parser

import (
	"github.com/funvibe/doubledyn/internal/ast"
	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/token"
)

// RequireFnSignature parses
//
//	pub fn min_max(val: int, lo: dyn Bound, hi: dyn Bound) -> (int, error)
//
// Declarations end with ';' (expectSemicolon); implementation headers are
// followed by the body, which is left for the caller.
func RequireFnSignature(c *Cursor, expectSemicolon bool) (*ast.FnSignature, *diagnostics.DiagnosticError) {
	sig := &ast.FnSignature{}

	// pub, pub(crate), ...
	if c.IfKeyword(token.KwPub) {
		pub, _ := c.RequireKeyword(token.KwPub)
		sig.Visibility = append(sig.Visibility, pub)
		if c.IfGroup(token.Paren) {
			qualifier, _ := c.RequireGroup(token.Paren, "expected visibility qualifier")
			sig.Visibility = append(sig.Visibility, qualifier)
		}
	}

	fnTok, err := c.RequireKeyword(token.KwFn)
	if err != nil {
		return nil, err
	}
	sig.Token = fnTok

	if sig.Name, err = c.RequireIdent(); err != nil {
		return nil, err
	}

	if c.IfPunct("<") {
		generics, err := c.RequireAngleGroup("expected angle brackets")
		if err != nil {
			return nil, err
		}
		sig.Generics = generics.Interior
	}

	argsGroup, err := c.RequireGroup(token.Paren, "expected function args")
	if err != nil {
		return nil, err
	}
	args := Group(argsGroup)
	for !args.AtEnd() {
		arg, err := RequireFnArg(&args)
		if err != nil {
			return nil, err
		}
		sig.Args = append(sig.Args, arg)
	}

	if c.IfPunct("-") {
		c.RequirePunct("-")
		if _, err := c.RequirePunct(">"); err != nil {
			return nil, err
		}
		if sig.Result, err = requireResult(c); err != nil {
			return nil, err
		}
	}

	if expectSemicolon {
		if _, err := c.RequirePunct(";"); err != nil {
			return nil, err
		}
	}
	return sig, nil
}

// requireResult accepts a single type or a parenthesized result tuple.
func requireResult(c *Cursor) ([]token.Tree, *diagnostics.DiagnosticError) {
	if c.IfGroup(token.Paren) {
		tuple, _ := c.RequireGroup(token.Paren, "")
		return []token.Tree{tuple}, nil
	}
	return RequireType(c)
}

// RequireFnArg parses one argument, with or without a name, and eats the
// comma that follows it in a list.
//
//	int
//	val: int
//	lo: dyn Bound
//	xs: map[string][]dyn Shape
func RequireFnArg(c *Cursor) (*ast.FnArg, *diagnostics.DiagnosticError) {
	arg := &ast.FnArg{}

	if c.IfIdent() {
		tmp := *c
		name, _ := tmp.RequireIdent()
		if tmp.IfPunct(":") {
			tmp.RequirePunct(":")
			arg.Name = &name
			*c = tmp
		}
	}

	typ, err := RequireType(c)
	if err != nil {
		return nil, err
	}
	arg.Type = typ

	if c.IfPunct(",") {
		c.RequirePunct(",")
	}
	return arg, nil
}

// RequireType scans a type expression. It stops at ',' or ';' or at a
// group that cannot belong to a type, and it needs at least one identifier.
// Angle groups are taken as a unit and turned into bracket groups, which is
// how Go writes type arguments. A bracket group always belongs to the type
// (`[]T`, `map[K]V`, `List[T]`); a paren group only after `func` (and the
// result right after it); a brace group only after `struct` or `interface`.
func RequireType(c *Cursor) ([]token.Tree, *diagnostics.DiagnosticError) {
	var typ []token.Tree
	found := false
	stop := c.End()
	funcParams := false

scan:
	for !c.AtEnd() {
		switch tree := c.Peek().(type) {
		case token.Token:
			switch {
			case tree.Type == token.IDENT:
				c.Next()
				typ = append(typ, tree)
				found = true
			case tree.Is("<") && !c.ifArrow():
				ag, err := c.RequireAngleGroup("expected angle brackets")
				if err != nil {
					return nil, err
				}
				typ = append(typ, angleToBracket(ag))
			case tree.Is(",") || tree.Is(";"):
				stop = tree
				break scan
			case tree.Type == token.PUNCT:
				c.Next()
				typ = append(typ, tree)
			default:
				return nil, diagnostics.NewError(diagnostics.ErrP008, tree)
			}
			funcParams = false
		case *token.Group:
			afterFunc := lastIs(typ, "func")
			absorb := tree.Delim == token.Bracket ||
				(tree.Delim == token.Paren && (afterFunc || funcParams)) ||
				(tree.Delim == token.Brace && (lastIs(typ, "struct") || lastIs(typ, "interface")))
			if !absorb {
				stop = tree.Open
				break scan
			}
			c.Next()
			typ = append(typ, tree)
			funcParams = tree.Delim == token.Paren && afterFunc
		}
	}

	if !found {
		return nil, diagnostics.NewError(diagnostics.ErrP007, stop)
	}
	return typ, nil
}

// RequireTypeOrList parses `Type` or `[Type, Type, ...]`.
func RequireTypeOrList(c *Cursor) ([][]token.Tree, *diagnostics.DiagnosticError) {
	if !c.IfGroup(token.Bracket) {
		typ, err := RequireType(c)
		if err != nil {
			return nil, err
		}
		return [][]token.Tree{typ}, nil
	}

	group, _ := c.RequireGroup(token.Bracket, "expected square braces for type array")
	if len(group.Trees) == 0 {
		return nil, diagnostics.NewError(diagnostics.ErrP009, group.Open)
	}
	list := Group(group)
	var types [][]token.Tree
	for {
		typ, err := RequireType(&list)
		if err != nil {
			return nil, err
		}
		types = append(types, typ)
		if list.AtEnd() {
			return types, nil
		}
		if _, err := list.RequirePunct(","); err != nil {
			return nil, err
		}
	}
}

func lastIs(trees []token.Tree, keyword string) bool {
	if len(trees) == 0 {
		return false
	}
	tok, ok := trees[len(trees)-1].(token.Token)
	return ok && tok.Type == token.IDENT && tok.Lexeme == keyword
}

// angleToBracket rebuilds a flat angle group as a bracket group, nesting
// inner angle pairs the same way.
func angleToBracket(ag *AngleGroup) *token.Group {
	bracket := func(tok token.Token, tt token.TokenType) token.Token {
		tok.Type = tt
		tok.Lexeme = string(tt)
		return tok
	}
	root := &token.Group{Delim: token.Bracket, Open: bracket(ag.Open, token.LBRACKET), Close: bracket(ag.Close, token.RBRACKET)}
	stack := []*token.Group{root}
	for i, tree := range ag.Interior {
		top := stack[len(stack)-1]
		tok, ok := tree.(token.Token)
		switch {
		case ok && tok.Is("<") && !arrowAt(ag.Interior, i):
			inner := &token.Group{Delim: token.Bracket, Open: bracket(tok, token.LBRACKET)}
			top.Trees = append(top.Trees, inner)
			stack = append(stack, inner)
		case ok && tok.Is(">") && len(stack) > 1:
			top.Close = bracket(tok, token.RBRACKET)
			stack = stack[:len(stack)-1]
		default:
			top.Trees = append(top.Trees, tree)
		}
	}
	return root
}

func arrowAt(trees []token.Tree, i int) bool {
	if i+1 >= len(trees) {
		return false
	}
	lt, _ := trees[i].(token.Token)
	minus, ok := trees[i+1].(token.Token)
	return ok && minus.Is("-") && adjacent(lt, minus)
}
