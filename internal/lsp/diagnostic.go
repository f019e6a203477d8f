package lsp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/payjar/pkg/interpreter"
	"github.com/leapstack-labs/payjar/pkg/lexer"
	"github.com/leapstack-labs/payjar/pkg/parser"
	"github.com/leapstack-labs/payjar/pkg/token"
)

// diagnosticSource is reported as the Source of every diagnostic.
const diagnosticSource = "payjar"

// Diagnostic codes.
const (
	CodeLexerError       = "lexer-error"
	CodeSyntaxError      = "syntax-error"
	CodeMissingSemicolon = "missing-semicolon"
	CodeTopLevelReturn   = "top-level-return"
	CodeUndefinedFunc    = "undefined-function"
	CodeUndefinedClass   = "undefined-class"
)

// publishDiagnostics analyzes the document and publishes its diagnostics.
func (s *Server) publishDiagnostics(uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	diagnostics, fixes := computeDiagnostics(doc)
	s.fixes.replace(uri, fixes)

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// computeDiagnostics returns the diagnostics for doc and the quick fixes
// available for them, keyed by diagnostic code.
func computeDiagnostics(doc *Document) ([]Diagnostic, map[string][]Fix) {
	a := doc.Analysis()
	diagnostics := []Diagnostic{}
	fixes := make(map[string][]Fix)

	if a.Err != nil {
		diag, fix := errorToDiagnostic(doc, a, a.Err)
		diagnostics = append(diagnostics, diag)
		if fix != nil {
			fixes[diag.Code] = append(fixes[diag.Code], *fix)
		}
	}

	diagnostics = append(diagnostics, topLevelReturns(doc, a)...)
	diagnostics = append(diagnostics, undefinedReferences(doc, a)...)
	return diagnostics, fixes
}

// errorToDiagnostic converts a lexer or syntax error to a diagnostic. A
// missing semicolon also yields a fix inserting it after the previous token.
func errorToDiagnostic(doc *Document, a *Analysis, err error) (Diagnostic, *Fix) {
	diag := Diagnostic{
		Severity: DiagnosticSeverityError,
		Source:   diagnosticSource,
		Message:  err.Error(),
	}

	var lexErr *lexer.Error
	var synErr *parser.SyntaxError

	switch {
	case errors.As(err, &lexErr):
		diag.Code = CodeLexerError
		diag.Range = doc.OffsetRange(lexErr.Pos, lexErr.Pos+1)
		return diag, nil

	case errors.As(err, &synErr):
		diag.Code = CodeSyntaxError
		if synErr.Index < len(a.Tokens) {
			tok := a.Tokens[synErr.Index]
			diag.Range = doc.OffsetRange(tok.Pos, tok.End())
		} else {
			end := doc.OffsetToPosition(len(doc.Content))
			diag.Range = Range{Start: end, End: end}
		}

		if synErr.Expected != token.SEMI.String() || synErr.Index == 0 || synErr.Index > len(a.Tokens) {
			return diag, nil
		}
		diag.Code = CodeMissingSemicolon
		at := doc.OffsetToPosition(a.Tokens[synErr.Index-1].End())
		return diag, &Fix{
			Title: "Insert missing ';'",
			Edits: []TextEdit{{Range: Range{Start: at, End: at}, NewText: ";"}},
		}

	default:
		diag.Code = CodeSyntaxError
		return diag, nil
	}
}

// topLevelReturns warns about return statements directly in the main body,
// which the interpreter ignores. Every brace opens a main, class or function
// body, so depth one is the main body.
func topLevelReturns(doc *Document, a *Analysis) []Diagnostic {
	var diagnostics []Diagnostic
	depth := 0
	for _, tok := range a.Tokens {
		switch tok.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		case token.RETURN:
			if depth != 1 {
				continue
			}
			diagnostics = append(diagnostics, Diagnostic{
				Range:    doc.OffsetRange(tok.Pos, tok.End()),
				Severity: DiagnosticSeverityWarning,
				Code:     CodeTopLevelReturn,
				Source:   diagnosticSource,
				Message:  strings.TrimPrefix(interpreter.ReturnWarning, "Warning: "),
			})
		}
	}
	return diagnostics
}

// undefinedReferences warns about calls to functions and instantiations of
// classes that the document never declares. Definitions register when they
// execute, so these fail only if the reference is reached.
func undefinedReferences(doc *Document, a *Analysis) []Diagnostic {
	functions := make(map[string]bool)
	classes := make(map[string]bool)
	for _, sym := range a.Symbols {
		switch sym.Kind {
		case DeclFunction:
			functions[sym.Name] = true
		case DeclClass:
			classes[sym.Name] = true
		}
	}

	var diagnostics []Diagnostic
	warn := func(tok token.Token, code, msg string) {
		diagnostics = append(diagnostics, Diagnostic{
			Range:    doc.OffsetRange(tok.Pos, tok.End()),
			Severity: DiagnosticSeverityWarning,
			Code:     code,
			Source:   diagnosticSource,
			Message:  msg,
		})
	}

	for i := 1; i+1 < len(a.Tokens); i++ {
		tok := a.Tokens[i]
		if tok.Type != token.IDENT {
			continue
		}
		prev := a.Tokens[i-1].Type
		next := a.Tokens[i+1].Type

		switch {
		case prev == token.NEW && !classes[tok.Literal]:
			warn(tok, CodeUndefinedClass, fmt.Sprintf("Class '%s' is not defined in this program", tok.Literal))
		case next == token.LPAREN && prev != token.DOT && prev != token.FUNC && prev != token.NEW && !functions[tok.Literal]:
			warn(tok, CodeUndefinedFunc, fmt.Sprintf("Function '%s' is not defined in this program", tok.Literal))
		}
	}
	return diagnostics
}
