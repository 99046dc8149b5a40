package synth

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/pipeline"
	"github.com/funvibe/doubledyn/internal/resolver"
)

type SynthProcessor struct{}

func (sp *SynthProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	model, ok := ctx.Model.(*resolver.Model)
	if !ok || model == nil {
		return ctx
	}
	if ctx.Options.CheckOnly {
		if derr := Check(model); derr != nil {
			return ctx.Fail(derr)
		}
		return ctx
	}
	if ctx.Options.Package == "" {
		return ctx.Fail(diagnostics.NewError(diagnostics.ErrC002, model.Spec.ClassA.Token))
	}

	plan, derr := Build(model, ctx.Options)
	if derr != nil {
		return ctx.Fail(derr)
	}
	if ctx.FilePath != "" {
		plan.Source = filepath.Base(ctx.FilePath)
	}
	ctx.Plan = plan

	out, err := Emit(plan, outputName(ctx.FilePath), ctx.Options.GoImports)
	if err != nil {
		msg := err.Error()
		var ferr *FormatError
		if errors.As(err, &ferr) {
			msg = ferr.Err.Error()
		}
		return ctx.Fail(diagnostics.NewError(diagnostics.ErrS004, model.Spec.ClassA.Token, msg))
	}
	ctx.Output = out
	return ctx
}

// outputName is only a hint for goimports, which looks at sibling files.
func outputName(specPath string) string {
	if specPath == "" {
		return "dispatch.go"
	}
	return strings.TrimSuffix(specPath, filepath.Ext(specPath)) + "_dispatch.go"
}
