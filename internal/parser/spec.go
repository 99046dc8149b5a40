package parser

import (
	"github.com/funvibe/doubledyn/internal/ast"
	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/token"
)

// Parser drives a cursor over a whole specification file.
type Parser struct {
	cur  Cursor
	spec *ast.Spec
}

func New(trees []token.Tree, eof token.Token) *Parser {
	return &Parser{cur: NewCursor(trees, eof), spec: &ast.Spec{}}
}

// ParseSpec parses
//
//	type A: Name bounds...;
//	type B: Name bounds...;
//	fn ...;              (one or more)
//	impl for <...> {...} (one or more)
//
// and stops at the first error.
func (p *Parser) ParseSpec() (*ast.Spec, *diagnostics.DiagnosticError) {
	var err *diagnostics.DiagnosticError
	if p.spec.ClassA, err = p.parseTypeClass(ast.RoleA); err != nil {
		return nil, err
	}
	if p.spec.ClassB, err = p.parseTypeClass(ast.RoleB); err != nil {
		return nil, err
	}
	if err = p.parseSignatures(); err != nil {
		return nil, err
	}
	for {
		block, err := p.parseImplBlock()
		if err != nil {
			return nil, err
		}
		p.spec.Blocks = append(p.spec.Blocks, block)
		if p.cur.AtEnd() {
			return p.spec, nil
		}
	}
}

func (p *Parser) parseTypeClass(role string) (*ast.TypeClassDecl, *diagnostics.DiagnosticError) {
	decl := &ast.TypeClassDecl{Role: role}
	var err *diagnostics.DiagnosticError
	if decl.Token, err = p.cur.RequireKeyword(token.KwType); err != nil {
		return nil, err
	}
	if _, err = p.cur.RequireKeyword(role); err != nil {
		return nil, err
	}
	if _, err = p.cur.RequirePunct(":"); err != nil {
		return nil, err
	}
	if decl.Name, err = p.cur.RequireIdent(); err != nil {
		return nil, err
	}
	for !p.cur.IfPunct(";") {
		tree, err := p.cur.Next()
		if err != nil {
			return nil, err
		}
		decl.Bounds = append(decl.Bounds, tree)
	}
	p.cur.RequirePunct(";")
	return decl, nil
}

// parseSignatures reads declarations until one fails to parse. A failure
// right before `impl` or an attribute marker ends the list; any other
// failure is reported.
func (p *Parser) parseSignatures() *diagnostics.DiagnosticError {
	classA := p.spec.ClassA.Name.Lexeme
	classB := p.spec.ClassB.Name.Lexeme

	for {
		tmp := p.cur
		sig, err := RequireFnSignature(&tmp, true)
		if err != nil {
			if len(p.spec.Functions) > 0 && (p.cur.IfKeyword(token.KwImpl) || p.cur.IfPunct("#")) {
				return nil
			}
			return err
		}

		for _, arg := range sig.Args {
			if arg.ArgName() == "" || arg.ArgName() == "_" {
				return diagnostics.NewError(diagnostics.ErrD001, arg.GetToken())
			}
		}
		if err := checkArgNames(sig); err != nil {
			return err
		}

		if p.spec.Function(sig.Name.Lexeme) != nil {
			return diagnostics.NewError(diagnostics.ErrD002, sig.Name)
		}

		if len(p.spec.Functions) > 0 {
			first := p.spec.Functions[0]
			if token.Text(first.Visibility) != token.Text(sig.Visibility) {
				return diagnostics.NewError(diagnostics.ErrD003, sig.Name)
			}
		}

		for i, arg := range sig.Args {
			if token.ContainsSequence(arg.Type, token.KwDyn, classA) {
				sig.ACandidates = append(sig.ACandidates, i)
			}
			if token.ContainsSequence(arg.Type, token.KwDyn, classB) {
				sig.BCandidates = append(sig.BCandidates, i)
			}
		}
		if len(sig.ACandidates) == 0 || len(sig.BCandidates) == 0 {
			return diagnostics.NewError(diagnostics.ErrD004, sig.Name)
		}

		p.spec.Functions = append(p.spec.Functions, sig)
		p.cur = tmp
	}
}

func (p *Parser) parseImplBlock() (*ast.ImplBlock, *diagnostics.DiagnosticError) {
	block := &ast.ImplBlock{}

	// #[commutative]
	if p.cur.IfPunct("#") {
		p.cur.RequirePunct("#")
		attr, err := p.cur.RequireGroup(token.Bracket, "expected square brackets")
		if err != nil {
			return nil, err
		}
		inner := Group(attr)
		if _, err := inner.RequireKeyword(token.KwCommutative); err != nil {
			return nil, err
		}
		if err := inner.RequireEnd(); err != nil {
			return nil, err
		}
		if !p.spec.SingleClass() {
			return nil, diagnostics.NewError(diagnostics.ErrR001, attr.Open)
		}
		block.Attr = attr
		block.Commutative = true
	}

	// impl for <TypeA, TypeB>
	var err *diagnostics.DiagnosticError
	if block.Token, err = p.cur.RequireKeyword(token.KwImpl); err != nil {
		return nil, err
	}
	if _, err = p.cur.RequireKeyword(token.KwFor); err != nil {
		return nil, err
	}
	pair, err := p.cur.RequireAngleGroup("expected type pair in angle brackets")
	if err != nil {
		return nil, err
	}
	block.Pair = pair.Close
	types := NewCursor(pair.Interior, pair.Close)
	if block.ATypes, err = RequireTypeOrList(&types); err != nil {
		return nil, err
	}
	if !types.IfPunct(",") {
		return nil, diagnostics.NewError(diagnostics.ErrP010, pair.Close)
	}
	types.RequirePunct(",")
	if block.BTypes, err = RequireTypeOrList(&types); err != nil {
		return nil, err
	}
	if err = types.RequireEnd(); err != nil {
		return nil, err
	}

	if block.Body, err = p.cur.RequireGroup(token.Brace, "expected curly braces for fn impls"); err != nil {
		return nil, err
	}
	body := Group(block.Body)
	for !body.AtEnd() {
		sig, err := RequireFnSignature(&body, false)
		if err != nil {
			return nil, err
		}
		fnBody, err := body.RequireGroup(token.Brace, "expected fn body")
		if err != nil {
			return nil, err
		}

		if block.Fn(sig.Name.Lexeme) != nil {
			return nil, diagnostics.NewError(diagnostics.ErrR004, sig.Name)
		}
		decl := p.spec.Function(sig.Name.Lexeme)
		if decl == nil {
			return nil, diagnostics.NewError(diagnostics.ErrR003, sig.Name)
		}
		if len(sig.Args) != len(decl.Args) {
			return nil, diagnostics.NewError(diagnostics.ErrR013, sig.Name, len(decl.Args), len(sig.Args))
		}
		if err := checkArgNames(sig); err != nil {
			return nil, err
		}
		block.Fns = append(block.Fns, &ast.ImplFn{Sig: sig, Body: fnBody})
	}

	if len(block.Fns) != len(p.spec.Functions) {
		return nil, diagnostics.NewError(diagnostics.ErrR005, block.Body.Open)
	}
	return block, nil
}

// checkArgNames rejects a name used twice in one argument list. Go
// parameters share one scope, and `_` may repeat.
func checkArgNames(sig *ast.FnSignature) *diagnostics.DiagnosticError {
	names := make(map[string]bool, len(sig.Args))
	for _, arg := range sig.Args {
		name := arg.ArgName()
		if name == "" || name == "_" {
			continue
		}
		if names[name] {
			return diagnostics.NewError(diagnostics.ErrD005, *arg.Name, name)
		}
		names[name] = true
	}
	return nil
}
