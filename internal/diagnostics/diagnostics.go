// Package diagnostics defines the single error kind the compiler reports:
// a coded message attached to the token it was detected at.
package diagnostics

import (
	"fmt"

	"github.com/funvibe/doubledyn/internal/token"
)

// ErrorCode identifies a diagnostic. The first letter is the family:
// L lexical, P parse, D declaration, R resolution, S synthesis, C config.
type ErrorCode string

const (
	ErrL001 ErrorCode = "L001"
	ErrL002 ErrorCode = "L002"
	ErrL003 ErrorCode = "L003"
	ErrL004 ErrorCode = "L004"

	ErrP001 ErrorCode = "P001"
	ErrP002 ErrorCode = "P002"
	ErrP003 ErrorCode = "P003"
	ErrP004 ErrorCode = "P004"
	ErrP005 ErrorCode = "P005"
	ErrP006 ErrorCode = "P006"
	ErrP007 ErrorCode = "P007"
	ErrP008 ErrorCode = "P008"
	ErrP009 ErrorCode = "P009"
	ErrP010 ErrorCode = "P010"

	ErrD001 ErrorCode = "D001"
	ErrD002 ErrorCode = "D002"
	ErrD003 ErrorCode = "D003"
	ErrD004 ErrorCode = "D004"
	ErrD005 ErrorCode = "D005"

	ErrR001 ErrorCode = "R001"
	ErrR003 ErrorCode = "R003"
	ErrR004 ErrorCode = "R004"
	ErrR005 ErrorCode = "R005"
	ErrR006 ErrorCode = "R006"
	ErrR007 ErrorCode = "R007"
	ErrR008 ErrorCode = "R008"
	ErrR009 ErrorCode = "R009"
	ErrR010 ErrorCode = "R010"
	ErrR011 ErrorCode = "R011"
	ErrR012 ErrorCode = "R012"
	ErrR013 ErrorCode = "R013"

	ErrS001 ErrorCode = "S001"
	ErrS002 ErrorCode = "S002"
	ErrS003 ErrorCode = "S003"
	ErrS004 ErrorCode = "S004"
	ErrS005 ErrorCode = "S005"
	ErrS006 ErrorCode = "S006"

	ErrC001 ErrorCode = "C001"
	ErrC002 ErrorCode = "C002"
)

var templates = map[ErrorCode]string{
	ErrL001: "%s",
	ErrL002: "unexpected closing delimiter `%s`",
	ErrL003: "mismatched closing delimiter `%s`, expected `%s`",
	ErrL004: "unclosed delimiter `%s`",

	ErrP001: "unexpected end of input",
	ErrP002: "expected `%s`",
	ErrP003: "expected ident",
	ErrP004: "expected `%s`",
	ErrP005: "%s",
	ErrP006: "%s",
	ErrP007: "expected type identifier",
	ErrP008: "unexpected tokens",
	ErrP009: "expected at least one type",
	ErrP010: "expected type or type list for 'B'",

	ErrD001: "missing arg name. anonymous args are not allowed",
	ErrD002: "duplicate functions not allowed",
	ErrD003: "all functions must have the same visibility (e.g. 'pub')",
	ErrD004: "function must have at least one dyn A and one dyn B argument",
	ErrD005: "duplicate argument name `%s`",

	ErrR001: "commutative attribute requires matching A and B traits",
	ErrR003: "matching fn signature not found",
	ErrR004: "duplicate functions not allowed",
	ErrR005: "incomplete implementation of declared functions",
	ErrR006: "can't infer position of A arg when reconciled with fn signature",
	ErrR007: "can't infer position of B arg when reconciled with fn signature",
	ErrR008: "can't infer position of both A and B args",
	ErrR009: "ambiguous signature; can't infer position of A arg",
	ErrR010: "ambiguous signature; can't infer position of B arg",
	ErrR011: "unknown type macro identifier, #%s",
	ErrR012: "expected special type macro identifier",
	ErrR013: "expected %d args to match the fn signature, found %d",

	ErrS001: "generic parameters are not supported on dispatched function `%s`: Go interface methods cannot have type parameters",
	ErrS002: "cannot declare methods on predeclared type `%s`; declare a named type in this package",
	ErrS003: "concrete type `%s` cannot be a method receiver; use T or *T with T declared in this package",
	ErrS004: "generated code does not parse: %s",
	ErrS005: "dispatched argument `%s` must have type `dyn %s`",
	ErrS006: "`%s` and `%s` both become `%s` in the generated code",

	ErrC001: "%s",
	ErrC002: "no Go package name for the generated file (use -pkg, doubledyn.yaml or go generate)",
}

// DiagnosticError is a compile failure located at a token.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	Message string
	File    string
}

// NewError builds a diagnostic from the code's message template.
func NewError(code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	tmpl, ok := templates[code]
	if !ok {
		tmpl = "%v"
	}
	msg := tmpl
	if len(args) > 0 {
		msg = fmt.Sprintf(tmpl, args...)
	}
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}

// Location renders file:line:col, omitting the parts that are unknown.
func (e *DiagnosticError) Location() string {
	loc := e.File
	if e.Token.Line > 0 {
		if loc != "" {
			loc += ":"
		}
		loc += fmt.Sprintf("%d:%d", e.Token.Line, e.Token.Column)
	}
	return loc
}

func (e *DiagnosticError) Error() string {
	if loc := e.Location(); loc != "" {
		return fmt.Sprintf("%s: error[%s]: %s", loc, e.Code, e.Message)
	}
	return fmt.Sprintf("error[%s]: %s", e.Code, e.Message)
}
