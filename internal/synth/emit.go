package synth

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

// Emit renders a plan as a formatted Go source file. With goimports set the
// output also gets import lines for packages the authored bodies reference.
func Emit(plan *Plan, filename string, goimports bool) ([]byte, error) {
	tmpl, err := template.New("dispatch").Funcs(template.FuncMap{
		"params":  params,
		"result":  resultClause,
		"comment": commentLines,
		"import":  importSpec,
	}).Parse(dispatchFileTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, plan); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	src, err := format.Source([]byte(buf.String()))
	if err != nil {
		return nil, &FormatError{Source: buf.String(), Err: err}
	}
	if !goimports {
		return src, nil
	}

	out, err := imports.Process(filename, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("goimports: %w", err)
	}
	return out, nil
}

// FormatError is returned when the rendered file is not valid Go, which
// means an authored body or type did not survive the translation.
type FormatError struct {
	Source string
	Err    error
}

func (e *FormatError) Error() string { return e.Err.Error() }

func (e *FormatError) Unwrap() error { return e.Err }

func params(ps []Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.Name + " " + p.Type
	}
	return strings.Join(parts, ", ")
}

func resultClause(r string) string {
	if r == "" {
		return ""
	}
	return " " + r
}

func commentLines(lines []string) string {
	var sb strings.Builder
	for _, block := range lines {
		for _, line := range strings.Split(strings.TrimRight(block, "\n"), "\n") {
			if line == "" {
				sb.WriteString("//\n")
				continue
			}
			sb.WriteString("// " + line + "\n")
		}
	}
	return sb.String()
}

// importSpec accepts "path" or "name path".
func importSpec(s string) string {
	s = strings.TrimSpace(s)
	if name, path, ok := strings.Cut(s, " "); ok {
		return name + " " + strconv.Quote(strings.Trim(strings.TrimSpace(path), `"`))
	}
	return strconv.Quote(strings.Trim(s, `"`))
}

const dispatchFileTemplate = `// Code generated by doubledyn{{if .Source}} from {{.Source}}{{end}}. DO NOT EDIT.
{{comment .Header}}
package {{.Package}}
{{- if .Imports}}

import (
{{- range .Imports}}
	{{import .}}
{{- end}}
)
{{- end}}
{{- range .Interfaces}}

type {{.Name}} interface {
{{- range .Embeds}}
	{{.}}
{{- end}}
{{- range .Methods}}
	{{.Name}}({{params .Params}}){{result .Result}}
{{- end}}
}
{{- end}}
{{- range .Types}}
{{- range .Methods}}

func ({{.Recv}} {{.RecvType}}) {{.Name}}({{params .Params}}){{result .Result}} {{.Body}}
{{- end}}
{{- end}}
{{- range .Funcs}}

func {{.Name}}({{params .Params}}){{result .Result}} {{.Body}}
{{- end}}
`
