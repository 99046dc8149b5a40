package synth_test

import (
	goast "go/ast"
	goparser "go/parser"
	gotoken "go/token"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/lexer"
	"github.com/funvibe/doubledyn/internal/parser"
	"github.com/funvibe/doubledyn/internal/pipeline"
	"github.com/funvibe/doubledyn/internal/resolver"
	"github.com/funvibe/doubledyn/internal/synth"
)

func compile(input string, opts pipeline.Options) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(input)
	ctx.FilePath = "shapes.dd"
	ctx.Options = opts
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
		&synth.SynthProcessor{},
	).Run(ctx)
}

func defaults() pipeline.Options {
	return pipeline.Options{Package: "shapes", PanicPrefix: "doubledyn"}
}

// generate compiles input and parses the output back with go/parser.
func generate(t *testing.T, input string) (string, *goast.File) {
	t.Helper()
	ctx := compile(input, defaults())
	if err := ctx.Err(); err != nil {
		t.Fatalf("unexpected error: %v\ninput: %s", err, input)
	}
	src := string(ctx.Output)
	file, err := goparser.ParseFile(gotoken.NewFileSet(), "shapes_dispatch.go", src, goparser.ParseComments)
	if err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, src)
	}
	return src, file
}

func expectCode(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	ctx := compile(input, defaults())
	err := ctx.Err()
	if err == nil {
		t.Fatalf("expected %s, got none\n%s", code, ctx.Output)
	}
	if err.Code != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
	return err
}

// interfaceMethods maps interface name to its method and embedded names.
func interfaceMethods(file *goast.File) map[string][]string {
	out := make(map[string][]string)
	goast.Inspect(file, func(n goast.Node) bool {
		spec, ok := n.(*goast.TypeSpec)
		if !ok {
			return true
		}
		iface, ok := spec.Type.(*goast.InterfaceType)
		if !ok {
			return false
		}
		names := []string{}
		for _, field := range iface.Methods.List {
			if len(field.Names) == 0 {
				names = append(names, exprString(field.Type))
				continue
			}
			names = append(names, field.Names[0].Name)
		}
		out[spec.Name.Name] = names
		return false
	})
	return out
}

// methodSets maps receiver type text (`Circle`, `*Triangle`) to method names.
func methodSets(file *goast.File) map[string][]string {
	out := make(map[string][]string)
	for _, decl := range file.Decls {
		fn, ok := decl.(*goast.FuncDecl)
		if !ok || fn.Recv == nil {
			continue
		}
		recv := exprString(fn.Recv.List[0].Type)
		out[recv] = append(out[recv], fn.Name.Name)
	}
	return out
}

func funcs(file *goast.File) []string {
	var out []string
	for _, decl := range file.Decls {
		if fn, ok := decl.(*goast.FuncDecl); ok && fn.Recv == nil {
			out = append(out, fn.Name.Name)
		}
	}
	return out
}

func exprString(e goast.Expr) string {
	switch x := e.(type) {
	case *goast.Ident:
		return x.Name
	case *goast.StarExpr:
		return "*" + exprString(x.X)
	case *goast.SelectorExpr:
		return exprString(x.X) + "." + x.Sel.Name
	}
	return "?"
}

func sorted(xs []string) []string {
	out := append([]string(nil), xs...)
	sort.Strings(out)
	return out
}

const shapes = `
type A: Shape;
type B: Pen;

fn collide(s: dyn Shape, p: dyn Pen) -> bool;

impl for <[Circle, *Triangle], Brush> {
	fn collide(s: #A, p: #B) -> bool { return true }
}
impl for <Circle, Pencil> {
	fn collide(c: Circle, pen: Pencil) -> bool {
		hit := c.r > 0
		return hit
	}
}
`

func TestTwoClasses(t *testing.T) {
	src, file := generate(t, shapes)

	if !strings.HasPrefix(src, "// Code generated by doubledyn from shapes.dd. DO NOT EDIT.\n") {
		t.Errorf("missing generated-code marker:\n%s", src)
	}
	if file.Name.Name != "shapes" {
		t.Errorf("package = %s", file.Name.Name)
	}

	ifaces := interfaceMethods(file)
	if got := ifaces["Shape"]; !reflect.DeepEqual(got, []string{"l1Collide"}) {
		t.Errorf("Shape = %v", got)
	}
	if got := ifaces["Pen"]; !reflect.DeepEqual(got, []string{"l2CollideCircle", "l2CollidePtrTriangle"}) {
		t.Errorf("Pen = %v", got)
	}

	methods := methodSets(file)
	tests := []struct {
		recv string
		want []string
	}{
		{"Circle", []string{"l1Collide"}},
		{"*Triangle", []string{"l1Collide"}},
		{"Brush", []string{"l2CollideCircle", "l2CollidePtrTriangle"}},
		{"Pencil", []string{"l2CollideCircle", "l2CollidePtrTriangle"}},
	}
	for _, tt := range tests {
		t.Run(tt.recv, func(t *testing.T) {
			if got := methods[tt.recv]; !reflect.DeepEqual(sorted(got), tt.want) {
				t.Errorf("methods = %v, want %v", got, tt.want)
			}
		})
	}

	if got := funcs(file); !reflect.DeepEqual(got, []string{"collide"}) {
		t.Errorf("entry funcs = %v", got)
	}
}

func TestBodiesKeepAuthoredNames(t *testing.T) {
	src, _ := generate(t, shapes)

	for _, want := range []string{
		"func (pen Pencil) l2CollideCircle(c Circle) bool {",
		"hit := c.r > 0",
		"func (s Circle) l1Collide(p Pen) bool {\n\treturn p.l2CollideCircle(s)\n}",
		"func collide(s Shape, p Pen) bool {\n\treturn s.l1Collide(p)\n}",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output lacks %q:\n%s", want, src)
		}
	}
}

func TestUnmatchedPairPanics(t *testing.T) {
	src, _ := generate(t, shapes)

	want := `panic("doubledyn: collide is not implemented for (*Triangle, Pencil)")`
	if !strings.Contains(src, want) {
		t.Errorf("output lacks %s:\n%s", want, src)
	}
	if strings.Contains(src, "not implemented for (Circle, Brush)") {
		t.Errorf("authored pair rendered as unimplemented:\n%s", src)
	}
}

func TestPanicPrefix(t *testing.T) {
	opts := defaults()
	opts.PanicPrefix = "shapes"
	ctx := compile(shapes, opts)
	if err := ctx.Err(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(ctx.Output), `"shapes: collide is not implemented`) {
		t.Errorf("prefix not applied:\n%s", ctx.Output)
	}
}

func TestSingleClass(t *testing.T) {
	_, file := generate(t, `
type A: Num fmt.Stringer;
type B: Num;

pub fn add(a: dyn Num, b: dyn Num) -> dyn Num;

#[commutative]
impl for <Int, Float> {
	fn add(a: #A, b: #B) -> dyn Num { return Float(float64(a) + float64(b)) }
}
impl for <Int, Int> {
	fn add(a: Int, b: Int) -> dyn Num { return a + b }
}
`)

	ifaces := interfaceMethods(file)
	if len(ifaces) != 1 {
		t.Fatalf("expected one interface, got %v", ifaces)
	}
	want := []string{"fmt.Stringer", "l1Add", "l2AddInt", "l2AddFloat"}
	if got := ifaces["Num"]; !reflect.DeepEqual(got, want) {
		t.Errorf("Num = %v, want %v", got, want)
	}

	methods := methodSets(file)
	for _, recv := range []string{"Int", "Float"} {
		if got := sorted(methods[recv]); !reflect.DeepEqual(got, []string{"l1Add", "l2AddFloat", "l2AddInt"}) {
			t.Errorf("%s methods = %v", recv, got)
		}
	}
	if got := funcs(file); !reflect.DeepEqual(got, []string{"Add"}) {
		t.Errorf("entry funcs = %v", got)
	}
}

func TestExtraArgsAndNoResult(t *testing.T) {
	src, _ := generate(t, `
type A: Shape; type B: Pen;
fn draw(scale: float64, s: dyn Shape, p: dyn Pen);
impl for <Circle, Brush> {
	fn draw(k: float64, c: Circle, b: Brush) { b.stroke(c, k) }
}
`)

	for _, want := range []string{
		"l1Draw(scale float64, p Pen)\n",
		"l2DrawCircle(scale float64, s Circle)\n",
		"func (s Circle) l1Draw(scale float64, p Pen) {\n\tp.l2DrawCircle(scale, s)\n}",
		"func (b Brush) l2DrawCircle(k float64, c Circle) { b.stroke(c, k) }",
		"func draw(scale float64, s Shape, p Pen) {\n\ts.l1Draw(scale, p)\n}",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output lacks %q:\n%s", want, src)
		}
	}
}

func TestAnonymousImplArgs(t *testing.T) {
	src, _ := generate(t, `
type A: Shape; type B: Pen;
fn collide(s: dyn Shape, p: dyn Pen) -> bool;
impl for <Circle, Brush> {
	fn collide(Circle, Brush) -> bool { return false }
}
`)
	if !strings.Contains(src, "func (_ Brush) l2CollideCircle(_ Circle) bool") {
		t.Errorf("anonymous args not blanked:\n%s", src)
	}
}

func TestHeaderAndImports(t *testing.T) {
	opts := defaults()
	opts.Header = []string{"Shapes dispatch.", "Regenerate with go generate."}
	opts.Imports = []string{"math", `m2 "math"`}
	ctx := compile(`
type A: Shape; type B: Pen;
fn area(s: dyn Shape, p: dyn Pen) -> float64;
impl for <Circle, Brush> {
	fn area(c: Circle, b: Brush) -> float64 { return math.Pi * m2.Sqrt(c.r) }
}
`, opts)
	if err := ctx.Err(); err != nil {
		t.Fatal(err)
	}
	src := string(ctx.Output)
	for _, want := range []string{
		"// Shapes dispatch.\n// Regenerate with go generate.\n",
		"\t\"math\"\n",
		"\tm2 \"math\"\n",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output lacks %q:\n%s", want, src)
		}
	}
}

func TestGoImportsAddsMissingImports(t *testing.T) {
	opts := defaults()
	opts.GoImports = true
	ctx := compile(`
type A: Shape; type B: Pen;
fn name(s: dyn Shape, p: dyn Pen) -> string;
impl for <Circle, Brush> {
	fn name(c: Circle, b: Brush) -> string { return strings.ToUpper("circle") }
}
`, opts)
	if err := ctx.Err(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(ctx.Output), `import "strings"`) {
		t.Errorf("goimports did not add strings:\n%s", ctx.Output)
	}
}

func TestPlanIsRecorded(t *testing.T) {
	ctx := compile(shapes, defaults())
	plan, ok := ctx.Plan.(*synth.Plan)
	if !ok {
		t.Fatalf("plan not recorded: %T", ctx.Plan)
	}
	var authored int
	for _, impl := range plan.Types {
		for _, m := range impl.Methods {
			if m.Pair != nil {
				authored++
			}
		}
	}
	if authored != 3 {
		t.Errorf("expected 3 authored pair methods, got %d", authored)
	}
}

func TestSynthesisErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
	}{
		{"generic function", `type A: Shape; type B: Pen;
fn collide<T>(s: dyn Shape, p: dyn Pen, t: T) -> bool;
impl for <Circle, Brush> { fn collide(s: Circle, p: Brush, t: T) -> bool { return true } }`, diagnostics.ErrS001},
		{"predeclared type", `type A: Shape; type B: Pen;
fn collide(s: dyn Shape, p: dyn Pen) -> bool;
impl for <int, Brush> { fn collide(s: int, p: Brush) -> bool { return true } }`, diagnostics.ErrS002},
		{"slice receiver", `type A: Shape; type B: Pen;
fn collide(s: dyn Shape, p: dyn Pen) -> bool;
impl for <[[]Circle], Brush> { fn collide(s: []Circle, p: Brush) -> bool { return true } }`, diagnostics.ErrS003},
		{"qualified receiver", `type A: Shape; type B: Pen;
fn collide(s: dyn Shape, p: dyn Pen) -> bool;
impl for <geo.Circle, Brush> { fn collide(s: geo.Circle, p: Brush) -> bool { return true } }`, diagnostics.ErrS003},
		{"unparsable body", `type A: Shape; type B: Pen;
fn collide(s: dyn Shape, p: dyn Pen) -> bool;
impl for <Circle, Brush> { fn collide(s: Circle, p: Brush) -> bool { return + } }`, diagnostics.ErrS004},
		{"dyn inside slice", `type A: Shape; type B: Pen;
fn collide(s: []dyn Shape, p: dyn Pen) -> bool;
impl for <Circle, Brush> { fn collide(s: []#A, p: #B) -> bool { return true } }`, diagnostics.ErrS005},
		{"pointer suffix clash", `type A: Shape; type B: Pen;
fn collide(s: dyn Shape, p: dyn Pen) -> bool;
impl for <[*Circle, PtrCircle], Brush> { fn collide(s: #A, p: #B) -> bool { return true } }`, diagnostics.ErrS006},
		{"value and pointer receiver", `type A: Shape; type B: Pen;
fn collide(s: dyn Shape, p: dyn Pen) -> bool;
impl for <[Circle, *Circle], Brush> { fn collide(s: #A, p: #B) -> bool { return true } }`, diagnostics.ErrS006},
		{"function name clash", `type A: Shape; type B: Pen;
fn do_it(s: dyn Shape, p: dyn Pen) -> bool;
fn doIt(s: dyn Shape, p: dyn Pen) -> bool;
impl for <Circle, Brush> {
	fn do_it(s: Circle, p: Brush) -> bool { return true }
	fn doIt(s: Circle, p: Brush) -> bool { return false }
}`, diagnostics.ErrS006},
		{"entry shadows interface", `type A: Shape; type B: Pen;
pub fn shape(s: dyn Shape, p: dyn Pen) -> bool;
impl for <Circle, Brush> { fn shape(s: Circle, p: Brush) -> bool { return true } }`, diagnostics.ErrS006},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectCode(t, tt.input, tt.code)
		})
	}
}

func TestNameClashMessage(t *testing.T) {
	err := expectCode(t, `type A: Shape; type B: Pen;
fn collide(s: dyn Shape, p: dyn Pen) -> bool;
impl for <[*Circle, PtrCircle], Brush> { fn collide(s: #A, p: #B) -> bool { return true } }`, diagnostics.ErrS006)

	want := "`collide for *Circle` and `collide for PtrCircle` both become `l2CollidePtrCircle` in the generated code"
	if err.Message != want {
		t.Errorf("message = %q, want %q", err.Message, want)
	}
	if err.Token.Lexeme != "PtrCircle" {
		t.Errorf("reported at %q, want PtrCircle", err.Token.Lexeme)
	}
}

func TestCheckOnlyRunsGoChecks(t *testing.T) {
	opts := pipeline.Options{CheckOnly: true}
	ctx := compile(`type A: Shape; type B: Pen;
fn collide(s: dyn Shape, p: dyn Pen) -> bool;
impl for <int, Brush> { fn collide(s: int, p: Brush) -> bool { return true } }`, opts)
	if err := ctx.Err(); err == nil || err.Code != diagnostics.ErrS002 {
		t.Fatalf("expected S002, got %v", err)
	}

	ctx = compile(shapes, opts)
	if err := ctx.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Output != nil || ctx.Plan != nil {
		t.Error("check-only run produced a plan or output")
	}
}

func TestMissingPackage(t *testing.T) {
	opts := defaults()
	opts.Package = ""
	ctx := compile(shapes, opts)
	if err := ctx.Err(); err == nil || err.Code != diagnostics.ErrC002 {
		t.Fatalf("expected C002, got %v", err)
	}
	if err := ctx.Err(); err.File != "shapes.dd" {
		t.Errorf("file = %q", err.File)
	}
}
