package format

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/payjar/pkg/lexer"
	"github.com/leapstack-labs/payjar/pkg/token"
)

const indentSize = 4

// Printer lays out a token stream with canonical spacing and indentation.
type Printer struct {
	src         string
	output      *bytes.Buffer
	depth       int
	atLineStart bool

	needNewline bool            // a statement or brace ended; break before the next item
	lastEnd     int             // source offset just past the last printed item
	prev        token.TokenType // last printed token
	prevUnary   bool            // prev was a sign applied to the following operand
	prevComment bool            // a block comment was printed after prev
	started     bool
}

func newPrinter(src string) *Printer {
	return &Printer{
		src:         src,
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
}

// String returns the formatted output.
func (p *Printer) String() string {
	out := strings.TrimRight(p.output.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// breakLine ends the current line if a break is pending or forced, and keeps
// a single blank line where the source had one or more before pos.
func (p *Printer) breakLine(pos int, force bool) {
	if p.needNewline || (force && !p.atLineStart) {
		p.writeln()
		p.needNewline = false
	}
	if p.atLineStart && p.started && p.prev != token.LBRACE && blankLineBetween(p.src, p.lastEnd, pos) {
		p.writeln()
	}
}

// token prints tok, which must be the next token in source order.
func (p *Printer) token(tok token.Token) {
	if tok.Type == token.RBRACE {
		p.dedent()
		if !p.atLineStart {
			p.needNewline = true
		}
		// No blank line before a closing brace.
		p.lastEnd = tok.Pos
	}
	if p.started && endsOperand(p.prev) && startsStatement(tok.Type) {
		// A bare member access ends its statement without a semicolon.
		p.needNewline = true
	}
	p.breakLine(tok.Pos, false)

	unary := isSign(tok.Type) && startsOperand(p.prev, p.started)
	if !p.atLineStart && p.spaceBefore(tok.Type) {
		p.space()
	}
	p.write(p.src[tok.Pos:tok.End()])

	switch tok.Type {
	case token.LBRACE:
		p.indent()
		p.needNewline = true
	case token.RBRACE, token.SEMI:
		p.needNewline = true
	}

	p.prev = tok.Type
	p.prevUnary = unary
	p.prevComment = false
	p.lastEnd = tok.End()
	p.started = true
}

// comment prints c. A comment that shares a source line with the previous
// token stays on that line; any other comment gets a line of its own.
func (p *Printer) comment(c lexer.Comment) {
	trailing := p.started && !p.atLineStart && !strings.Contains(p.src[p.lastEnd:c.Pos], "\n")

	if trailing {
		if p.prev != token.LPAREN || p.prevComment {
			p.space()
		}
		p.write(c.Text)
		if !c.Block() {
			p.needNewline = true
		}
	} else {
		p.breakLine(c.Pos, true)
		p.write(c.Text)
		p.needNewline = true
	}

	p.prevComment = c.Block()
	p.lastEnd = c.End()
	p.started = true
}

// spaceBefore reports whether a space separates the previous token from one of type t.
func (p *Printer) spaceBefore(t token.TokenType) bool {
	if p.prevComment {
		return t != token.RPAREN && t != token.COMMA && t != token.SEMI && t != token.DOT
	}
	switch t {
	case token.RPAREN, token.COMMA, token.SEMI, token.DOT:
		return false
	}
	switch p.prev {
	case token.LPAREN, token.DOT, token.AT:
		return false
	}
	if p.prevUnary {
		return false
	}
	if t == token.LPAREN {
		return isOperator(p.prev) || p.prev == token.RETURN || p.prev == token.COMMA
	}
	return true
}

// endsOperand reports whether t can be the last token of an expression.
func endsOperand(t token.TokenType) bool {
	switch t {
	case token.IDENT, token.NUMBER, token.STRING, token.TEMPLATE,
		token.RPAREN, token.SELF, token.INNERSELF:
		return true
	}
	return false
}

// startsStatement reports whether t can only begin a new statement when it
// follows a complete operand.
func startsStatement(t token.TokenType) bool {
	switch t {
	case token.IDENT, token.SELF, token.INNERSELF, token.PRINTLN, token.PASS,
		token.LET, token.CONST, token.VAR, token.FUNC, token.CLASS, token.RETURN:
		return true
	}
	return false
}

// isOperator reports whether t is an arithmetic, comparison or assignment operator.
func isOperator(t token.TokenType) bool {
	return t >= token.PLUS && t <= token.GE
}

func isSign(t token.TokenType) bool {
	return t == token.PLUS || t == token.MINUS
}

// startsOperand reports whether a token following prev begins a new operand,
// so a sign there is unary.
func startsOperand(prev token.TokenType, started bool) bool {
	if !started {
		return true
	}
	switch prev {
	case token.LPAREN, token.COMMA, token.RETURN:
		return true
	}
	return isOperator(prev)
}

// blankLineBetween reports whether src[from:to] spans at least one empty line.
func blankLineBetween(src string, from, to int) bool {
	if from < 0 || to > len(src) || from >= to {
		return false
	}
	return strings.Count(src[from:to], "\n") >= 2
}
