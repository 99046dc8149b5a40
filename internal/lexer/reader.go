package lexer

import (
	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/token"
)

// Read lexes input and nests the tokens into bracket groups. It returns the
// top-level trees and the EOF token, which callers use to locate
// end-of-input diagnostics.
func Read(input string) ([]token.Tree, token.Token, *diagnostics.DiagnosticError) {
	tokens := New(input).Tokenize()
	eof := tokens[len(tokens)-1]

	type frame struct {
		group *token.Group
		trees []token.Tree
	}
	stack := []*frame{{}}

	for _, tok := range tokens {
		top := stack[len(stack)-1]
		switch tok.Type {
		case token.ILLEGAL:
			return nil, eof, diagnostics.NewError(diagnostics.ErrL001, tok, tok.Lexeme)
		case token.EOF:
			if len(stack) > 1 {
				return nil, eof, diagnostics.NewError(diagnostics.ErrL004, top.group.Open, top.group.Open.Lexeme)
			}
			return top.trees, eof, nil
		case token.LPAREN, token.LBRACE, token.LBRACKET:
			delim, _ := token.DelimiterOf(tok.Type)
			stack = append(stack, &frame{group: &token.Group{Delim: delim, Open: tok}})
		case token.RPAREN, token.RBRACE, token.RBRACKET:
			if len(stack) == 1 {
				return nil, eof, diagnostics.NewError(diagnostics.ErrL002, tok, tok.Lexeme)
			}
			delim, _ := token.ClosingOf(tok.Type)
			if delim != top.group.Delim {
				return nil, eof, diagnostics.NewError(diagnostics.ErrL003, tok, tok.Lexeme, top.group.Delim.Close())
			}
			top.group.Close = tok
			top.group.Trees = top.trees
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.trees = append(parent.trees, top.group)
		default:
			top.trees = append(top.trees, tok)
		}
	}
	// Tokenize always ends with EOF.
	return stack[0].trees, eof, nil
}
