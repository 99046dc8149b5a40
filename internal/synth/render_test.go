package synth

import (
	"reflect"
	"testing"

	"github.com/funvibe/doubledyn/internal/ast"
	"github.com/funvibe/doubledyn/internal/lexer"
	"github.com/funvibe/doubledyn/internal/token"
)

func read(t *testing.T, input string) []token.Tree {
	t.Helper()
	trees, _, err := lexer.Read(input)
	if err != nil {
		t.Fatalf("read %q: %v", input, err)
	}
	return trees
}

func TestRender(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x := <-ch", "x := <-ch"},
		{"f(xs...)", "f(xs...)"},
		{"a  &&  b", "a  &&  b"},
		{"{\n  if ok {\n    return 1\n  }\n}", "{\nif ok {\nreturn 1\n}\n}"},
		{"m[k] != nil", "m[k] != nil"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := render(read(t, tt.input)); got != tt.want {
				t.Errorf("render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGoType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"dyn Shape", "Shape"},
		{"[]Circle", "[]Circle"},
		{"func(int) error", "func(int) error"},
		{"*geo.Point", "*geo.Point"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := goType(read(t, tt.input)); got != tt.want {
				t.Errorf("goType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsDynRef(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"dyn Shape", true},
		{"dyn Pen", false},
		{"[]dyn Shape", false},
		{"Shape", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isDynRef(read(t, tt.input), "Shape"); got != tt.want {
				t.Errorf("isDynRef = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	a := &ast.TypeClassDecl{Bounds: read(t, ": fmt.Stringer + io.Closer")}
	b := &ast.TypeClassDecl{Bounds: read(t, "io.Closer + Sized")}

	if got := bounds(a); !reflect.DeepEqual(got, []string{"fmt.Stringer", "io.Closer"}) {
		t.Errorf("bounds(a) = %v", got)
	}
	if got := bounds(a, b); !reflect.DeepEqual(got, []string{"fmt.Stringer", "io.Closer", "Sized"}) {
		t.Errorf("bounds(a, b) = %v", got)
	}
	if got := bounds(&ast.TypeClassDecl{}); got != nil {
		t.Errorf("bounds(empty) = %v", got)
	}
}
