// Package parser implements the linter's recursive-descent parser: one token
// of current state plus arbitrary lookahead, building a full AST with error
// recovery, and invoking Sema on every node immediately after it is
// constructed.
package parser

import (
	"github.com/dekarrin/scriptlint/internal/ast"
	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/lexer"
	"github.com/dekarrin/scriptlint/internal/sema"
	"github.com/dekarrin/scriptlint/internal/source"
	"github.com/dekarrin/scriptlint/internal/span"
	"github.com/dekarrin/scriptlint/internal/token"
)

// Parser orchestrates lexer -> AST, disambiguating with lookahead, and hands
// every constructed node to Sema bottom-up.
type Parser struct {
	src   source.Source
	lex   *lexer.Lexer
	diags *diag.Builder
	sema  *sema.Sema

	la fifo
}

// New returns a Parser reading src through lex, reporting diagnostics to
// diags and running semantic rules against sm.
func New(src source.Source, lex *lexer.Lexer, diags *diag.Builder, sm *sema.Sema) *Parser {
	return &Parser{src: src, lex: lex, diags: diags, sema: sm}
}

// dropped reports whether more() filters token kind t out of the lookahead
// stream: such kinds carry no grammatical meaning to the parser.
func dropped(t token.Type) bool {
	switch t {
	case token.Unknown, token.Whitespace, token.LineComment, token.BlockComment:
		return true
	default:
		return false
	}
}

// more ensures the lookahead buffer holds at least n+1 tokens (i.e. that
// lookahead(n) is valid), pulling from the lexer and dropping insignificant
// token kinds as it goes. The underlying lexer keeps yielding EOF tokens
// forever once the source is exhausted (Next is a no-op past end of input),
// so this never blocks looking arbitrarily far past the end of the file.
func (p *Parser) more(n int) {
	for p.la.len() <= n {
		t := p.lex.Next()
		if dropped(t.Type) {
			continue
		}
		p.la.pushBack(t)
	}
}

// lookahead materializes and returns the token n positions ahead of current
// (0 is the current token).
func (p *Parser) lookahead(n int) token.Token {
	p.more(n)
	return p.la.at(n)
}

// cur returns the current token without consuming it.
func (p *Parser) cur() token.Token { return p.lookahead(0) }

// eatToken unconditionally consumes and returns the current token.
func (p *Parser) eatToken() token.Token {
	p.more(0)
	return p.la.popFront()
}

// eatKind consumes the current token if it matches kind. Otherwise it emits
// ParseExpectedTokenGotOther and synthesizes a zero-width token of the
// expected kind at the current position, without consuming anything: the
// parser always returns some node, so ancestors can still compute ranges.
func (p *Parser) eatKind(kind token.Type) token.Token {
	t := p.cur()
	if t.Type == kind {
		return p.eatToken()
	}
	p.diags.Emit(t.Range.Beg, t.Range, diag.ParseExpectedTokenGotOther, diag.TokenArg(kind), diag.TokenArg(t.Type))
	return token.Token{Type: kind, Range: span.AtCols(t.Range.Beg, 0), Slice: span.Slice{Beg: t.Slice.Beg, End: t.Slice.Beg}}
}

// text returns the exact source text of t.
func (p *Parser) text(t token.Token) string { return p.src.GetSlice(t.Slice) }

// visit hands node to Sema. Every AST node constructor path routes its
// finished node through this single call, after children are parsed and the
// node's range is finalized, per the parser/Sema contract.
func (p *Parser) visit(n ast.Node) { p.sema.Visit(n) }

// pushScope opens a Sema scope of kind associated with node. The returned
// func pops it; callers must `defer` the returned func immediately so the
// pop happens on every exit path, including recovery early-returns.
func (p *Parser) pushScope(kind sema.ScopeKind, node ast.Node) func() {
	p.sema.PushScope(kind, node)
	return p.sema.PopScope
}

// ParseFile parses a complete top-level program: a sequence of statements
// read until EOF, returned as a synthetic Block. This is the parser's only
// entry point.
func (p *Parser) ParseFile() *ast.Block {
	beg := p.cur().Range.Beg
	var stmts []ast.Stmt
	for p.cur().Type != token.EOF {
		before := p.cur()
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
		// Guarantee forward progress: if a statement production somehow
		// consumed nothing (defensive; should not happen given eatKind's
		// synthesis), force-advance past the offending token.
		if p.cur() == before && p.cur().Type != token.EOF {
			p.eatToken()
		}
	}
	end := beg
	if len(stmts) > 0 {
		end = stmts[len(stmts)-1].Range().End
	}
	blk := &ast.Block{Stmts: stmts}
	blk.Finish(span.Range{Beg: beg, End: end})
	p.visit(blk)
	return blk
}
