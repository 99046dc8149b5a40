// Package doubledyn compiles double-dispatch specifications (.dd files) into
// Go source. It is the library behind the doubledyn command.
package doubledyn

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/funvibe/doubledyn/internal/config"
	"github.com/funvibe/doubledyn/internal/lexer"
	"github.com/funvibe/doubledyn/internal/parser"
	"github.com/funvibe/doubledyn/internal/pipeline"
	"github.com/funvibe/doubledyn/internal/resolver"
	"github.com/funvibe/doubledyn/internal/synth"
)

// Options control the generated file.
type Options struct {
	Package     string
	Imports     []string
	Header      []string
	GoImports   bool
	PanicPrefix string

	// CheckOnly validates the spec, Go naming and receiver rules included,
	// without producing code; Package may be empty.
	CheckOnly bool
}

// DefaultOptions returns the options used without a doubledyn.yaml.
func DefaultOptions() Options {
	return Options{GoImports: true, PanicPrefix: config.DefaultPanicPrefix}
}

// OptionsFromConfig merges a loaded config with an explicit package name,
// which wins over the config and $GOPACKAGE.
func OptionsFromConfig(cfg *config.Config, pkg string) Options {
	opts := DefaultOptions()
	opts.Package = cfg.ResolvePackage(pkg)
	opts.Imports = cfg.Imports
	opts.Header = cfg.HeaderLines()
	if cfg.GoImports != nil {
		opts.GoImports = *cfg.GoImports
	}
	if cfg.PanicPrefix != "" {
		opts.PanicPrefix = cfg.PanicPrefix
	}
	return opts
}

// Result is a successful compilation.
type Result struct {
	// Output is the formatted Go file; nil with CheckOnly.
	Output []byte
	Model  *resolver.Model
	Plan   *synth.Plan
}

// Compile runs the whole pipeline over one specification. path is used for
// diagnostics and the generated-code marker. Failures are returned as
// *diagnostics.DiagnosticError.
func Compile(path string, src []byte, opts Options) (*Result, error) {
	ctx := pipeline.NewPipelineContext(string(src))
	ctx.FilePath = path
	ctx.Options = pipeline.Options{
		Package:     opts.Package,
		Imports:     opts.Imports,
		Header:      opts.Header,
		GoImports:   opts.GoImports,
		PanicPrefix: opts.PanicPrefix,
		CheckOnly:   opts.CheckOnly,
	}

	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
		&synth.SynthProcessor{},
	).Run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Output: ctx.Output}
	res.Model, _ = ctx.Model.(*resolver.Model)
	res.Plan, _ = ctx.Plan.(*synth.Plan)
	return res, nil
}

// WriteSummary prints the resolved functions and the pair matrix:
// `x` authored, `~` commutative mirror, `.` unimplemented.
func (r *Result) WriteSummary(w io.Writer) error {
	m := r.Model
	if m == nil {
		return nil
	}

	for _, fn := range m.Functions {
		args := fn.Sig.Args
		if _, err := fmt.Fprintf(w, "fn %s: A=%s (#%d) B=%s (#%d)\n",
			fn.Name(), args[fn.APos].ArgName(), fn.APos, args[fn.BPos].ArgName(), fn.BPos); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	header := []string{"A \\ B"}
	for _, b := range m.BTypes {
		header = append(header, b.Key)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, a := range m.ATypes {
		row := []string{a.Key}
		for _, b := range m.BTypes {
			switch pair := m.Pair(a.Key, b.Key); {
			case pair == nil:
				row = append(row, ".")
			case pair.Mirrored:
				row = append(row, "~")
			default:
				row = append(row, "x")
			}
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Overrides describes every pair that was authored more than once; the
// last definition is the one generated.
func (r *Result) Overrides() []string {
	if r.Model == nil {
		return nil
	}
	var out []string
	for _, key := range r.Model.Overrides {
		out = append(out, fmt.Sprintf("(%s, %s) is defined more than once; the last definition wins", key.A, key.B))
	}
	return out
}
