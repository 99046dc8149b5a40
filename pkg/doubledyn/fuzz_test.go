package doubledyn

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"
)

// specGenerator assembles specifications from fuzzer bytes, so most inputs
// get past the lexer and exercise resolution and synthesis.
type specGenerator struct {
	data []byte
	pos  int
}

func (g *specGenerator) next() int {
	if g.pos >= len(g.data) {
		return 0
	}
	b := int(g.data[g.pos])
	g.pos++
	return b
}

func (g *specGenerator) pick(options ...string) string {
	return options[g.next()%len(options)]
}

func (g *specGenerator) typeList() string {
	n := 1 + g.next()%3
	var types []string
	for i := 0; i < n; i++ {
		types = append(types, g.pick("Circle", "*Square", "Brush", "Int", "[]Int", "int", "Float"))
	}
	if n == 1 && g.next()%2 == 0 {
		return types[0]
	}
	return "[" + strings.Join(types, ", ") + "]"
}

func (g *specGenerator) generate() string {
	var sb strings.Builder
	classA := g.pick("Shape", "Num")
	classB := g.pick("Pen", "Num")
	sb.WriteString("type A: " + classA + ";\ntype B: " + classB + ";\n")

	vis := g.pick("", "pub ")
	sb.WriteString(vis + "fn f(" + g.pick("a", "_", "x") + ": dyn " + classA + ", b: " +
		g.pick("dyn "+classB, classB, "[]dyn "+classB) + g.pick("", ", k: int", ", k: dyn "+classA) + ") -> " +
		g.pick("bool", "(int, error)", "dyn "+classA) + ";\n")

	blocks := 1 + g.next()%3
	for i := 0; i < blocks; i++ {
		sb.WriteString(g.pick("", "#[commutative]\n", "#[other]\n"))
		sb.WriteString("impl for <" + g.typeList() + ", " + g.typeList() + "> {\n")
		sb.WriteString("\tfn f(a: " + g.pick("#A", "#B", "Circle", "#Q") + ", b: " + g.pick("#B", "#A", "Brush") +
			g.pick("", ", k: int", ", k: #A") + ") " + g.pick("-> bool", "") + " {\n")
		sb.WriteString("\t\t" + g.pick("return true", "var _ #A = a", "x := <-ch", "return #", "}") + "\n\t}\n}\n")
	}
	return sb.String()
}

func FuzzCompile(f *testing.F) {
	f.Add([]byte("seed"))
	f.Add([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	f.Add([]byte{1, 1, 1, 1, 1, 2, 1, 1, 1, 0, 3, 3})

	f.Fuzz(func(t *testing.T, data []byte) {
		for _, input := range []string{string(data), (&specGenerator{data: data}).generate()} {
			opts := DefaultOptions()
			opts.Package = "fuzz"
			opts.GoImports = false

			res, err := Compile("fuzz.dd", []byte(input), opts)
			if err != nil {
				continue
			}
			if _, perr := parser.ParseFile(token.NewFileSet(), "fuzz.go", res.Output, 0); perr != nil {
				t.Fatalf("accepted spec produced invalid Go: %v\ninput:\n%s\noutput:\n%s", perr, input, res.Output)
			}
		}
	})
}
