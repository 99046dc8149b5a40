package synth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/doubledyn/internal/ast"
	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/pipeline"
	"github.com/funvibe/doubledyn/internal/resolver"
	"github.com/funvibe/doubledyn/internal/token"
)

// Plan is the generated file before rendering: declarations in output order.
type Plan struct {
	Package    string
	Source     string // spec file name for the generated-code marker
	Header     []string
	Imports    []string
	Interfaces []*Interface
	Types      []*TypeImpl
	Funcs      []*Func
}

// Interface is a role interface. With one type-class both levels share it.
type Interface struct {
	Name    string
	Embeds  []string
	Methods []*MethodSig
}

type MethodSig struct {
	Name   string
	Params []Param
	Result string
}

type Param struct {
	Name string
	Type string
}

// TypeImpl groups the methods generated for one concrete type.
type TypeImpl struct {
	Type    string
	Methods []*Method
}

type Method struct {
	Recv     string
	RecvType string
	MethodSig
	Body string
	// Pair is the authored combination behind a level-2 method; nil for
	// level-1 forwarders and for unmatched combinations.
	Pair *resolver.ResolvedPair
}

// Func is the dispatch entry of one declared function.
type Func struct {
	MethodSig
	Body string
}

type planner struct {
	model *resolver.Model
	opts  pipeline.Options
	types map[string]*TypeImpl
	plan  *Plan
}

// Build lays out the generated file for a resolved model.
func Build(model *resolver.Model, opts pipeline.Options) (*Plan, *diagnostics.DiagnosticError) {
	if err := Check(model); err != nil {
		return nil, err
	}

	p := &planner{
		model: model,
		opts:  opts,
		types: make(map[string]*TypeImpl),
		plan:  &Plan{Package: opts.Package, Header: opts.Header, Imports: opts.Imports},
	}

	spec := model.Spec
	if spec.SingleClass() {
		iface := &Interface{Name: spec.ClassA.Name.Lexeme, Embeds: bounds(spec.ClassA, spec.ClassB)}
		iface.Methods = append(p.l1Sigs(), p.l2Sigs()...)
		p.plan.Interfaces = []*Interface{iface}
	} else {
		p.plan.Interfaces = []*Interface{
			{Name: spec.ClassA.Name.Lexeme, Embeds: bounds(spec.ClassA), Methods: p.l1Sigs()},
			{Name: spec.ClassB.Name.Lexeme, Embeds: bounds(spec.ClassB), Methods: p.l2Sigs()},
		}
	}

	for _, a := range model.ATypes {
		impl := p.typeImpl(a)
		for _, fn := range model.Functions {
			impl.Methods = append(impl.Methods, p.l1Method(fn, a))
		}
	}
	for _, b := range model.BTypes {
		impl := p.typeImpl(b)
		for _, fn := range model.Functions {
			for _, a := range model.ATypes {
				impl.Methods = append(impl.Methods, p.l2Method(fn, a, b))
			}
		}
	}

	for _, fn := range model.Functions {
		p.plan.Funcs = append(p.plan.Funcs, p.entry(fn))
	}
	return p.plan, nil
}

// Check enforces what Go needs on top of a valid model: methods can only be
// declared on local named types, interface methods cannot be generic, the
// dispatched arguments must be the interface values themselves, and no two
// spec names may turn into the same Go identifier.
func Check(model *resolver.Model) *diagnostics.DiagnosticError {
	spec := model.Spec
	for _, fn := range model.Functions {
		if len(fn.Sig.Generics) > 0 {
			return diagnostics.NewError(diagnostics.ErrS001, fn.Sig.Name, fn.Name())
		}
		a, b := fn.Sig.Args[fn.APos], fn.Sig.Args[fn.BPos]
		if !isDynRef(a.Type, spec.ClassA.Name.Lexeme) {
			return diagnostics.NewError(diagnostics.ErrS005, a.GetToken(), a.ArgName(), spec.ClassA.Name.Lexeme)
		}
		if !isDynRef(b.Type, spec.ClassB.Name.Lexeme) {
			return diagnostics.NewError(diagnostics.ErrS005, b.GetToken(), b.ArgName(), spec.ClassB.Name.Lexeme)
		}
	}

	for _, types := range [][]resolver.ConcreteType{model.ATypes, model.BTypes} {
		for _, t := range types {
			if err := checkReceiver(t); err != nil {
				return err
			}
		}
	}
	return checkNames(model)
}

func checkReceiver(t resolver.ConcreteType) *diagnostics.DiagnosticError {
	trees := t.Tokens
	if len(trees) == 2 {
		if star, ok := trees[0].(token.Token); !ok || !star.Is("*") {
			return diagnostics.NewError(diagnostics.ErrS003, trees[0].First(), t.Key)
		}
		trees = trees[1:]
	}
	if len(trees) != 1 {
		return diagnostics.NewError(diagnostics.ErrS003, t.Tokens[0].First(), t.Key)
	}
	name, ok := trees[0].(token.Token)
	if !ok || name.Type != token.IDENT {
		return diagnostics.NewError(diagnostics.ErrS003, trees[0].First(), t.Key)
	}
	if predeclared[name.Lexeme] {
		return diagnostics.NewError(diagnostics.ErrS002, name, name.Lexeme)
	}
	return nil
}

// names maps generated Go identifiers to the spec spelling that produced
// them.
type names map[string]string

func (n names) claim(goName, source string, at token.Token) *diagnostics.DiagnosticError {
	if prev, ok := n[goName]; ok && prev != source {
		return diagnostics.NewError(diagnostics.ErrS006, at, prev, source, goName)
	}
	n[goName] = source
	return nil
}

// checkNames catches spec names that strcase folds together (`do_it` and
// `doIt`, `*Circle` and `PtrCircle`) and pointer/value pairs of one type,
// which would share a method set.
func checkNames(model *resolver.Model) *diagnostics.DiagnosticError {
	spec := model.Spec

	for _, types := range [][]resolver.ConcreteType{model.ATypes, model.BTypes} {
		receivers := names{}
		for _, t := range types {
			name, _ := receiverType(t.Tokens)
			if err := receivers.claim(name.Lexeme, t.Key, t.Tokens[0].First()); err != nil {
				return err
			}
		}
	}

	decls := names{}
	for _, class := range []*ast.TypeClassDecl{spec.ClassA, spec.ClassB} {
		if err := decls.claim(class.Name.Lexeme, class.Name.Lexeme, class.Name); err != nil {
			return err
		}
	}
	for _, fn := range model.Functions {
		if err := decls.claim(entryName(fn), fn.Name(), fn.Sig.Name); err != nil {
			return err
		}
	}

	methods := names{}
	for _, fn := range model.Functions {
		if err := methods.claim(l1Name(fn), fn.Name(), fn.Sig.Name); err != nil {
			return err
		}
		for _, a := range model.ATypes {
			source := fn.Name() + " for " + a.Key
			if err := methods.claim(l2Name(fn, a), source, a.Tokens[0].First()); err != nil {
				return err
			}
		}
	}
	return nil
}

// bounds turns `Name [:] Bound1 + Bound2` tails into embedded interfaces,
// merging the tails of both declarations in single-class mode.
func bounds(decls ...*ast.TypeClassDecl) []string {
	var out []string
	seen := make(map[string]bool)
	for _, decl := range decls {
		trees := decl.Bounds
		if len(trees) > 0 {
			if colon, ok := trees[0].(token.Token); ok && colon.Is(":") {
				trees = trees[1:]
			}
		}
		var part []token.Tree
		flush := func() {
			if len(part) == 0 {
				return
			}
			if embed := goType(part); !seen[embed] {
				seen[embed] = true
				out = append(out, embed)
			}
			part = nil
		}
		for _, tree := range trees {
			if tok, ok := tree.(token.Token); ok && tok.Is("+") {
				flush()
				continue
			}
			part = append(part, tree)
		}
		flush()
	}
	return out
}

func (p *planner) typeImpl(t resolver.ConcreteType) *TypeImpl {
	if impl, ok := p.types[t.Key]; ok {
		return impl
	}
	impl := &TypeImpl{Type: t.Key}
	p.types[t.Key] = impl
	p.plan.Types = append(p.plan.Types, impl)
	return impl
}

func result(sig *ast.FnSignature) string {
	if len(sig.Result) == 0 {
		return ""
	}
	return goType(sig.Result)
}

// others lists the indices of the arguments that play no role.
func others(fn *resolver.Function) []int {
	var idx []int
	for i := range fn.Sig.Args {
		if i != fn.APos && i != fn.BPos {
			idx = append(idx, i)
		}
	}
	return idx
}

func declParam(arg *ast.FnArg) Param {
	return Param{Name: arg.ArgName(), Type: goType(arg.Type)}
}

// l1Sig drops the A argument, which becomes the receiver.
func (p *planner) l1Sig(fn *resolver.Function) *MethodSig {
	sig := &MethodSig{Name: l1Name(fn), Result: result(fn.Sig)}
	for i, arg := range fn.Sig.Args {
		if i != fn.APos {
			sig.Params = append(sig.Params, declParam(arg))
		}
	}
	return sig
}

func (p *planner) l1Sigs() []*MethodSig {
	var sigs []*MethodSig
	for _, fn := range p.model.Functions {
		sigs = append(sigs, p.l1Sig(fn))
	}
	return sigs
}

// l2Sig drops both open arguments and appends the A argument back with its
// concrete type.
func (p *planner) l2Sig(fn *resolver.Function, a resolver.ConcreteType, names []string) *MethodSig {
	sig := &MethodSig{Name: l2Name(fn, a), Result: result(fn.Sig)}
	for _, i := range others(fn) {
		sig.Params = append(sig.Params, Param{Name: names[i], Type: goType(fn.Sig.Args[i].Type)})
	}
	sig.Params = append(sig.Params, Param{Name: names[fn.APos], Type: a.Key})
	return sig
}

func (p *planner) l2Sigs() []*MethodSig {
	var sigs []*MethodSig
	for _, fn := range p.model.Functions {
		names := argNames(fn.Sig)
		for _, a := range p.model.ATypes {
			sigs = append(sigs, p.l2Sig(fn, a, names))
		}
	}
	return sigs
}

// argNames returns Go parameter names; anonymous implementation arguments
// become `_`.
func argNames(sig *ast.FnSignature) []string {
	names := make([]string, len(sig.Args))
	for i, arg := range sig.Args {
		names[i] = arg.ArgName()
		if names[i] == "" {
			names[i] = "_"
		}
	}
	return names
}

func returning(sig *MethodSig, call string) string {
	if sig.Result == "" {
		return "{\n\t" + call + "\n}"
	}
	return "{\n\treturn " + call + "\n}"
}

// l1Method forwards to the level-2 method named after the receiver's type.
func (p *planner) l1Method(fn *resolver.Function, a resolver.ConcreteType) *Method {
	names := argNames(fn.Sig)
	sig := p.l1Sig(fn)

	var args []string
	for _, i := range others(fn) {
		args = append(args, names[i])
	}
	args = append(args, names[fn.APos])
	call := fmt.Sprintf("%s.%s(%s)", names[fn.BPos], l2Name(fn, a), strings.Join(args, ", "))

	return &Method{Recv: names[fn.APos], RecvType: a.Key, MethodSig: *sig, Body: returning(sig, call)}
}

// l2Method embeds the authored body for (a, b), with the implementation's
// own argument names so the body reads as written. Without a body the
// method panics when called.
func (p *planner) l2Method(fn *resolver.Function, a, b resolver.ConcreteType) *Method {
	pair := p.model.Pair(a.Key, b.Key)
	if pair == nil {
		names := argNames(fn.Sig)
		msg := fmt.Sprintf("%s: %s is not implemented for (%s, %s)", p.opts.PanicPrefix, fn.Name(), a.Key, b.Key)
		return &Method{
			Recv:      names[fn.BPos],
			RecvType:  b.Key,
			MethodSig: *p.l2Sig(fn, a, names),
			Body:      "{\n\tpanic(" + strconv.Quote(msg) + ")\n}",
		}
	}

	impl, ok := pair.Fns[fn.Name()]
	if !ok {
		panic(fmt.Sprintf("synth: pair (%s, %s) has no body for %s", a.Key, b.Key, fn.Name()))
	}
	names := argNames(impl.Sig)
	return &Method{
		Recv:      names[fn.BPos],
		RecvType:  b.Key,
		MethodSig: *p.l2Sig(fn, a, names),
		Body:      renderBody(impl.Body),
		Pair:      pair,
	}
}

// entry calls through the A argument's level-1 method.
func (p *planner) entry(fn *resolver.Function) *Func {
	sig := MethodSig{Name: entryName(fn), Result: result(fn.Sig)}
	var args []string
	for i, arg := range fn.Sig.Args {
		sig.Params = append(sig.Params, declParam(arg))
		if i != fn.APos {
			args = append(args, arg.ArgName())
		}
	}
	call := fmt.Sprintf("%s.%s(%s)", fn.Sig.Args[fn.APos].ArgName(), l1Name(fn), strings.Join(args, ", "))
	return &Func{MethodSig: sig, Body: returning(&sig, call)}
}
