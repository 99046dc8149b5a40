package lexer

import (
	"github.com/funvibe/doubledyn/internal/pipeline"
)

// LexerProcessor is the structural reader stage: source text in, token trees out.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	trees, eof, err := Read(ctx.SourceCode)
	if err != nil {
		return ctx.Fail(err)
	}
	ctx.Trees = trees
	ctx.EOF = eof
	return ctx
}
