package resolver

import (
	"github.com/funvibe/doubledyn/internal/pipeline"
)

type ResolverProcessor struct{}

func (rp *ResolverProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Spec == nil {
		return ctx
	}
	model, err := Resolve(ctx.Spec)
	if err != nil {
		return ctx.Fail(err)
	}
	ctx.Model = model
	return ctx
}
