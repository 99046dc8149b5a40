package pipeline

import (
	"github.com/funvibe/doubledyn/internal/ast"
	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/token"
)

// Processor is one stage of a compilation.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Options carries the settings the synthesizer needs from the caller.
type Options struct {
	// Package is the Go package clause of the generated file.
	Package string
	// Imports are written to the import block; goimports still drops the
	// unused ones.
	Imports []string
	// Header lines are emitted as comments after the generated-code marker.
	Header []string
	// GoImports runs golang.org/x/tools/imports over the output.
	GoImports bool
	// PanicPrefix starts the message of unimplemented pair methods.
	PanicPrefix string
	// CheckOnly runs the Go-host checks without building or emitting a
	// file; Package may be empty.
	CheckOnly bool
}

// PipelineContext is owned by one compilation; nothing in it is shared.
type PipelineContext struct {
	SourceCode string
	FilePath   string
	Options    Options

	// Trees is the bracket-grouped token stream of the whole file.
	Trees []token.Tree
	// EOF locates "unexpected end of input" diagnostics.
	EOF token.Token

	Spec *ast.Spec

	// Model and Plan are typed as interfaces to keep this package free of
	// the resolver and synthesizer; each stage asserts its own type.
	Model interface{}
	Plan  interface{}

	Output []byte

	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{SourceCode: source, Options: Options{GoImports: true, PanicPrefix: "doubledyn"}}
}

// Fail records a diagnostic, stamping it with the file being compiled.
func (ctx *PipelineContext) Fail(err *diagnostics.DiagnosticError) *PipelineContext {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
	return ctx
}

// Err returns the first diagnostic or nil.
func (ctx *PipelineContext) Err() *diagnostics.DiagnosticError {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}
