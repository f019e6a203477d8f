// Package format pretty-prints PayJar source.
//
// Formatting works on the token stream rather than the syntax tree so that
// comments survive. Each token is copied verbatim from the source; only the
// whitespace between tokens changes. Statements and braces start new lines,
// blocks are indented, and runs of blank lines collapse to one.
package format

import (
	"github.com/leapstack-labs/payjar/pkg/lexer"
	"github.com/leapstack-labs/payjar/pkg/parser"
)

// Source formats a PayJar program. Source that does not lex or parse is
// returned unchanged along with the error.
func Source(src string) (string, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return src, err
	}
	if _, err := parser.New(tokens).ParseProgram(); err != nil {
		return src, err
	}

	comments := lexer.Comments(src)
	p := newPrinter(src)
	ci := 0
	for _, tok := range tokens {
		for ci < len(comments) && comments[ci].Pos < tok.Pos {
			// Markers inside a literal are part of the token.
			if comments[ci].Pos >= p.lastEnd {
				p.comment(comments[ci])
			}
			ci++
		}
		p.token(tok)
	}
	for ; ci < len(comments); ci++ {
		if comments[ci].Pos >= p.lastEnd {
			p.comment(comments[ci])
		}
	}
	return p.String(), nil
}
