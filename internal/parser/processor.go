package parser

import (
	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/pipeline"
	"github.com/funvibe/doubledyn/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Trees == nil && ctx.EOF.Type != token.EOF {
		// The lexer stage did not run.
		return ctx.Fail(diagnostics.NewError(diagnostics.ErrP001, token.Token{}))
	}

	spec, err := New(ctx.Trees, ctx.EOF).ParseSpec()
	if err != nil {
		return ctx.Fail(err)
	}
	spec.File = ctx.FilePath
	ctx.Spec = spec
	return ctx
}
