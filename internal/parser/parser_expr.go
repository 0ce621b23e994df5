package parser

import (
	"github.com/dekarrin/scriptlint/internal/ast"
	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/sema"
	"github.com/dekarrin/scriptlint/internal/span"
	"github.com/dekarrin/scriptlint/internal/token"
)

// parseExpr parses a complete expression at the lowest precedence.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseExprCore(token.PrecInvalid)
}

// parseExprCore implements precedence climbing. It starts from a unary
// expression (prefix operators and postfix call/index/field/inc-dec, which
// always bind tighter than any binary or ternary operator), then repeatedly
// folds in a binary or ternary operator whose precedence strictly exceeds
// minPrec, recursing at that operator's own precedence. Because the
// recursive call uses the *same* precedence rather than one notch higher,
// and the comparison is strict, chained same-precedence operators
// (including assignment) associate left-to-right: `a = b = c` parses as
// `(a = b) = c`.
func (p *Parser) parseExprCore(minPrec token.Precedence) ast.Expr {
	left := p.parseUnary()

	for {
		t := p.cur()

		if t.Type == token.Question {
			if token.PrecTernary <= minPrec {
				break
			}
			left = p.parseTernaryTail(left)
			continue
		}

		if token.IsBinaryOperator(t.Type) {
			prec := token.OperatorPrecedence(t.Type)
			if prec <= minPrec {
				break
			}
			opTok := p.eatToken()
			right := p.parseExprCore(prec)
			bin := &ast.BinaryOp{Op: opTok.Type, Left: left, Right: right}
			bin.Finish(span.Range{Beg: left.Range().Beg, End: rangeEnd(right, opTok.Range.End)})
			p.visit(bin)
			left = bin
			continue
		}

		break
	}

	return left
}

// rangeEnd returns e's range end, or fallback if e is nil (a recovered
// missing operand).
func rangeEnd(e ast.Expr, fallback span.Pos) span.Pos {
	if e == nil {
		return fallback
	}
	return e.Range().End
}

func (p *Parser) parseTernaryTail(cond ast.Expr) ast.Expr {
	p.eatToken() // '?'
	thenExpr := p.parseExprCore(token.PrecInvalid)
	p.eatKind(token.Colon)
	elseExpr := p.parseExprCore(token.PrecTernary)
	tern := &ast.TernaryOp{Cond: cond, Then: thenExpr, Else: elseExpr}
	tern.Finish(span.Range{Beg: cond.Range().Beg, End: rangeEnd(elseExpr, rangeEnd(thenExpr, cond.Range().End))})
	p.visit(tern)
	return tern
}

// parseUnary handles prefix operators (which recurse to bind as tightly as
// possible) and otherwise defers to a postfix-decorated primary.
func (p *Parser) parseUnary() ast.Expr {
	t := p.cur()
	if token.IsPrefixOperator(t.Type) {
		opTok := p.eatToken()
		operand := p.parseUnary()
		u := &ast.UnaryOp{Op: opTok.Type, Operand: operand, Post: false}
		u.Finish(span.Range{Beg: opTok.Range.Beg, End: rangeEnd(operand, opTok.Range.End)})
		p.visit(u)
		return u
	}
	return p.parsePostfixPrimary()
}

// parsePostfixPrimary parses a primary expression, then greedily applies any
// trailing call/index-or-slice/field-access/postfix-inc-dec suffixes: these
// always bind tighter than prefix operators or any binary/ternary operator.
func (p *Parser) parsePostfixPrimary() ast.Expr {
	e := p.parsePrimary()
	for {
		t := p.cur()
		switch {
		case t.Type == token.LParen:
			e = p.parseCall(e)
		case t.Type == token.LBracket:
			e = p.parseIndexOrSlice(e)
		case t.Type == token.Dot:
			e = p.parseFieldAccess(e)
		case token.IsPostfixOperator(t.Type):
			opTok := p.eatToken()
			u := &ast.UnaryOp{Op: opTok.Type, Operand: e, Post: true}
			u.Finish(span.Range{Beg: e.Range().Beg, End: opTok.Range.End})
			p.visit(u)
			e = u
		default:
			return e
		}
	}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	p.eatToken() // '('
	var args []ast.Expr
	for p.cur().Type != token.RParen && p.cur().Type != token.EOF {
		args = append(args, p.parseExpr())
		if p.cur().Type == token.Comma {
			p.eatToken()
			continue
		}
		break
	}
	end := p.cur().Range.End
	if p.cur().Type == token.RParen {
		p.eatToken()
	} else {
		p.diags.Emit(callee.Range().Beg, span.Range{Beg: callee.Range().Beg, End: end}, diag.ParseUnterminatedFunctionCall)
	}
	call := &ast.Call{Callee: callee, Args: args}
	call.Finish(span.Range{Beg: callee.Range().Beg, End: end})
	p.visit(call)
	return call
}

// parseIndexOrSlice disambiguates IndexAccess from ArraySlice after `[`. If
// `:` immediately follows `[`, it is a slice with a missing start. Otherwise
// an index expression is parsed; if `:` follows that (instead of `]`), the
// node is rewritten as a slice with the parsed expression as Start.
func (p *Parser) parseIndexOrSlice(target ast.Expr) ast.Expr {
	lbrack := p.eatToken() // '['

	if p.cur().Type == token.Colon {
		return p.finishSlice(target, lbrack, nil)
	}

	first := p.parseExpr()

	if p.cur().Type == token.Colon {
		return p.finishSlice(target, lbrack, first)
	}

	end := p.cur().Range.End
	if p.cur().Type == token.RBracket {
		p.eatToken()
	} else {
		p.diags.Emit(target.Range().Beg, span.Range{Beg: target.Range().Beg, End: end}, diag.ParseMismatchedToken, diag.TokenArg(token.LBracket))
	}
	idx := &ast.IndexAccess{Target: target, Index: first}
	idx.Finish(span.Range{Beg: target.Range().Beg, End: end})
	p.visit(idx)
	return idx
}

// finishSlice parses the remainder of `[ [start] : [end] [: step] ]` given
// that start (possibly nil) and the opening `[` have already been consumed,
// with the current token positioned at the `:` following start.
func (p *Parser) finishSlice(target ast.Expr, lbrack token.Token, start ast.Expr) ast.Expr {
	p.eatToken() // ':'

	var endExpr, step ast.Expr
	if p.cur().Type != token.Colon && p.cur().Type != token.RBracket {
		endExpr = p.parseExpr()
	}
	if p.cur().Type == token.Colon {
		p.eatToken()
		if p.cur().Type != token.RBracket {
			step = p.parseExpr()
		}
	}

	rangeEndPos := p.cur().Range.End
	if p.cur().Type == token.RBracket {
		p.eatToken()
	} else {
		p.diags.Emit(target.Range().Beg, span.Range{Beg: lbrack.Range.Beg, End: rangeEndPos}, diag.ParseUnterminatedArraySlice)
	}

	sl := &ast.ArraySlice{Target: target, Start: start, End: endExpr, Step: step}
	sl.Finish(span.Range{Beg: target.Range().Beg, End: rangeEndPos})
	p.visit(sl)
	return sl
}

func (p *Parser) parseFieldAccess(target ast.Expr) ast.Expr {
	p.eatToken() // '.'
	nameTok := p.eatKind(token.Identifier)
	name := p.text(nameTok)
	fa := &ast.FieldAccess{Target: target, Name: name}
	fa.Finish(span.Range{Beg: target.Range().Beg, End: nameTok.Range.End})
	p.visit(fa)
	return fa
}

// parsePrimary dispatches on the current token to parse a leaf expression:
// literal, identifier, parenthesized group or lambda, container literal,
// fun/seq lambda, or yield. A token that cannot begin any expression form
// emits ParseExpectedExpr and yields a zero-width placeholder without
// consuming input, so callers can still recover.
func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()

	switch t.Type {
	case token.Identifier:
		if p.lookahead(1).Type == token.Arrow {
			return p.parseShortLambda()
		}
		tok := p.eatToken()
		id := &ast.Identifier{Name: p.text(tok)}
		id.Finish(tok.Range)
		p.visit(id)
		return id

	case token.Number:
		tok := p.eatToken()
		text := p.text(tok)
		val, ok := decodeNumber(text)
		n := &ast.NumberLiteral{Text: text, Value: val, Valid: ok}
		n.Finish(tok.Range)
		p.visit(n)
		return n

	case token.String:
		tok := p.eatToken()
		raw := p.text(tok)
		s := &ast.StringLiteral{Raw: raw, Decoded: decodeString(raw)}
		s.Finish(tok.Range)
		p.visit(s)
		return s

	case token.KwGlobal, token.KwNull, token.KwUndefined, token.KwTrue, token.KwFalse, token.KwNaN, token.KwInfinity:
		tok := p.eatToken()
		sl := &ast.SimpleLiteral{Kind: tok.Type}
		sl.Finish(tok.Range)
		p.visit(sl)
		return sl

	case token.LParen:
		return p.parseParenOrLambda()

	case token.LBrace:
		return p.parseObjectLiteral()

	case token.LBracket:
		return p.parseArrayLiteral()

	case token.KwFun, token.KwSeq:
		return p.parseLambdaKeyword()

	case token.KwYield:
		return p.parseYield()
	}

	if token.IsPrefixOperator(t.Type) {
		return p.parseUnary()
	}

	p.diags.Emit(t.Range.Beg, t.Range, diag.ParseExpectedExpr)
	ph := &ast.Identifier{Name: ""}
	ph.Finish(span.AtCols(t.Range.Beg, 0))
	return ph
}

// parseShortLambda handles the single-argument `name -> body` form triggered
// by an identifier immediately followed by `->`.
func (p *Parser) parseShortLambda() ast.Expr {
	nameTok := p.eatToken()

	defer p.pushScope(sema.FuncScope, nil)()
	p.sema.Declare(sema.Argument, nameTok.Range, p.text(nameTok), nil)
	body := p.parseLambdaBody()

	lam := &ast.Lambda{Params: []string{p.text(nameTok)}, Body: body}
	lam.Finish(span.Range{Beg: nameTok.Range.Beg, End: body.Range().End})
	p.visit(lam)
	return lam
}

// parseParenOrLambda disambiguates a parenthesized lambda parameter list from
// a plain parenthesized expression. After `(`, it is a lambda if: the next
// token is `)` (zero-arg arrow form), or an identifier followed by `,`, or an
// identifier followed by `)` then `->`.
func (p *Parser) parseParenOrLambda() ast.Expr {
	lparen := p.cur()

	isLambda := false
	if p.lookahead(1).Type == token.RParen {
		isLambda = true
	} else if p.lookahead(1).Type == token.Identifier {
		switch p.lookahead(2).Type {
		case token.Comma:
			isLambda = true
		case token.RParen:
			if p.lookahead(3).Type == token.Arrow {
				isLambda = true
			}
		}
	}

	if !isLambda {
		p.eatToken() // '('
		inner := p.parseExpr()
		end := p.cur().Range.End
		if p.cur().Type == token.RParen {
			p.eatToken()
		} else {
			p.diags.Emit(lparen.Range.Beg, span.Range{Beg: lparen.Range.Beg, End: end}, diag.ParseExpectedTokenGotOther, diag.TokenArg(token.RParen), diag.TokenArg(p.cur().Type))
		}
		return inner
	}

	return p.parseLambdaParamsAndBody(lparen.Range.Beg)
}

// parseLambdaParamsAndBody parses `( [name [, name ...] [, ...name]] ) ->
// body` (or `{ body }`) for the disambiguated plain-paren lambda form.
// fun/seq declarations and fun/seq lambda expressions call
// parseParamListRanges directly instead.
func (p *Parser) parseLambdaParamsAndBody(beg span.Pos) ast.Expr {
	params, paramRanges, varargs := p.parseParamListRanges()

	defer p.pushScope(sema.FuncScope, nil)()
	for i, param := range params {
		p.sema.Declare(sema.Argument, paramRanges[i], param, nil)
	}
	body := p.parseLambdaBody()

	lam := &ast.Lambda{Params: params, Varargs: varargs, Body: body}
	lam.Finish(span.Range{Beg: beg, End: body.Range().End})
	p.visit(lam)
	return lam
}

// parseParamListRanges consumes `( name, name, ...name )`, returning the
// ordered parameter names, their individual source ranges, and whether the
// list ends with an ellipsis varargs marker.
func (p *Parser) parseParamListRanges() ([]string, []span.Range, bool) {
	p.eatKind(token.LParen)
	var params []string
	var ranges []span.Range
	varargs := false
	for p.cur().Type != token.RParen && p.cur().Type != token.EOF {
		if p.cur().Type == token.Ellipsis {
			p.eatToken()
			varargs = true
			nameTok := p.eatKind(token.Identifier)
			params = append(params, p.text(nameTok))
			ranges = append(ranges, nameTok.Range)
			break
		}
		nameTok := p.eatKind(token.Identifier)
		params = append(params, p.text(nameTok))
		ranges = append(ranges, nameTok.Range)
		if p.cur().Type == token.Comma {
			p.eatToken()
			continue
		}
		break
	}
	p.eatKind(token.RParen)
	return params, ranges, varargs
}

// parseLambdaBody parses the `{ block }` or `-> expr` body form common to
// every lambda expression (short, parenthesized, and fun/seq lambdas); named
// fun/seq declarations parse their own body. A `->` immediately followed by
// `{` is legal but redundant, emitting ParseUnnecessaryPointyInFun.
func (p *Parser) parseLambdaBody() *ast.Block {
	if p.cur().Type == token.Arrow {
		arrow := p.eatToken()
		if p.cur().Type == token.LBrace {
			p.diags.Emit(arrow.Range.Beg, arrow.Range, diag.ParseUnnecessaryPointyInFun)
			return p.parseBlock()
		}
		value := p.parseExpr()
		ret := &ast.Return{Value: value}
		ret.Finish(span.Range{Beg: arrow.Range.Beg, End: rangeEnd(value, arrow.Range.End)})
		p.visit(ret)
		blk := &ast.Block{Stmts: []ast.Stmt{ret}}
		blk.Finish(ret.Range())
		p.visit(blk)
		return blk
	}
	return p.parseBlock()
}

// parseLambdaKeyword handles a `fun`/`seq` expression-position lambda, as
// opposed to a named top-level/object-method FunDecl.
func (p *Parser) parseLambdaKeyword() ast.Expr {
	kwTok := p.eatToken()
	params, paramRanges, varargs := p.parseParamListRanges()

	scopeKind := sema.FuncScope
	if kwTok.Type == token.KwSeq {
		scopeKind = sema.SeqScope
	}
	defer p.pushScope(scopeKind, nil)()
	for i, param := range params {
		p.sema.Declare(sema.Argument, paramRanges[i], param, nil)
	}
	body := p.parseLambdaBody()

	lam := &ast.Lambda{Params: params, Varargs: varargs, Body: body, Sequence: kwTok.Type == token.KwSeq}
	lam.Finish(span.Range{Beg: kwTok.Range.Beg, End: body.Range().End})
	p.visit(lam)
	return lam
}

func (p *Parser) parseYield() ast.Expr {
	kwTok := p.eatToken()
	var value ast.Expr
	if p.canStartExpr(p.cur().Type) {
		value = p.parseExpr()
	}
	y := &ast.Yield{Value: value}
	y.Finish(span.Range{Beg: kwTok.Range.Beg, End: rangeEnd(value, kwTok.Range.End)})
	p.visit(y)
	return y
}

// canStartExpr reports whether t can begin a primary expression, used to
// distinguish a bare `yield;`/`return;` from one carrying a value.
func (p *Parser) canStartExpr(t token.Type) bool {
	switch t {
	case token.Identifier, token.Number, token.String,
		token.KwGlobal, token.KwNull, token.KwUndefined, token.KwTrue, token.KwFalse, token.KwNaN, token.KwInfinity,
		token.LParen, token.LBrace, token.LBracket, token.KwFun, token.KwSeq, token.KwYield:
		return true
	default:
		return token.IsPrefixOperator(t)
	}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	lbrack := p.eatToken()
	var elems []ast.Expr
	for p.cur().Type != token.RBracket && p.cur().Type != token.EOF {
		elems = append(elems, p.parseExpr())
		if p.cur().Type == token.Comma {
			p.eatToken()
			continue
		}
		break
	}
	end := p.cur().Range.End
	if p.cur().Type == token.RBracket {
		p.eatToken()
	} else {
		p.diags.Emit(lbrack.Range.Beg, span.Range{Beg: lbrack.Range.Beg, End: end}, diag.ParseUnterminatedArrayLiteral)
	}
	arr := &ast.ArrayLiteral{Elements: elems}
	arr.Finish(span.Range{Beg: lbrack.Range.Beg, End: end})
	p.visit(arr)
	return arr
}

// parseObjectLiteral parses `{ entry, entry, ... }`, where each entry is
// either a named function/sequence method or a key:value pair.
func (p *Parser) parseObjectLiteral() ast.Expr {
	lbrace := p.eatToken()
	var entries []ast.ObjectEntry

	for p.cur().Type != token.RBrace && p.cur().Type != token.EOF {
		entry := p.parseObjectEntry()
		entries = append(entries, entry)

		if p.cur().Type == token.Comma {
			p.eatToken()
			continue
		}
		if p.cur().Type == token.RBrace || p.cur().Type == token.EOF {
			break
		}
		// Another entry start without an intervening comma.
		if p.looksLikeObjectEntryStart() {
			p.diags.Emit(p.cur().Range.Beg, p.cur().Range, diag.ParseExpectedComma)
			continue
		}
		break
	}

	end := p.cur().Range.End
	if p.cur().Type == token.RBrace {
		p.eatToken()
	} else {
		p.diags.Emit(lbrace.Range.Beg, span.Range{Beg: lbrace.Range.Beg, End: end}, diag.ParseUnterminatedObjectLiteral)
	}

	obj := &ast.ObjectLiteral{Entries: entries}
	obj.Finish(span.Range{Beg: lbrace.Range.Beg, End: end})
	p.visit(obj)
	return obj
}

func (p *Parser) looksLikeObjectEntryStart() bool {
	switch p.cur().Type {
	case token.Identifier, token.String, token.KwFun, token.KwSeq:
		return true
	default:
		return false
	}
}

func (p *Parser) parseObjectEntry() ast.ObjectEntry {
	beg := p.cur().Range.Beg

	if p.cur().Type == token.KwFun || p.cur().Type == token.KwSeq {
		fd := p.parseFunDecl()
		e := ast.ObjectEntry{Method: fd}
		e.Finish(fd.Range())
		return e
	}

	// Keys are names, not references: a bare-identifier key is never resolved
	// against the scope chain, so key nodes are not handed to Sema.
	var key ast.Expr
	wantsExpr := false
	switch p.cur().Type {
	case token.Identifier:
		tok := p.eatToken()
		id := &ast.Identifier{Name: p.text(tok)}
		id.Finish(tok.Range)
		key = id
		// A bare identifier key with no colon is a key-only entry; the next
		// token also terminates the entry.
		wantsExpr = p.cur().Type == token.Colon
	case token.String:
		tok := p.eatToken()
		raw := p.text(tok)
		s := &ast.StringLiteral{Raw: raw, Decoded: decodeString(raw)}
		s.Finish(tok.Range)
		key = s
		wantsExpr = true
	default:
		p.diags.Emit(p.cur().Range.Beg, p.cur().Range, diag.ParseExpectedObjectEntry)
		e := ast.ObjectEntry{}
		e.Finish(span.AtCols(beg, 0))
		return e
	}

	if !wantsExpr {
		e := ast.ObjectEntry{Key: key}
		e.Finish(span.Range{Beg: beg, End: key.Range().End})
		return e
	}

	colon := p.eatKind(token.Colon)

	// A common edit-error pattern: `key:` followed on the next source line
	// by another `key:` with no value in between. Detect it by checking
	// whether the token right after the colon looks like the start of the
	// *next* entry rather than a value.
	if p.looksLikeObjectEntryStart() && p.lookahead(1).Type == token.Colon {
		p.diags.Emit(colon.Range.Beg, colon.Range, diag.ParseExpectedExpr)
		e := ast.ObjectEntry{Key: key}
		e.Finish(span.Range{Beg: beg, End: colon.Range.End})
		return e
	}

	value := p.parseExpr()
	e := ast.ObjectEntry{Key: key, Value: value}
	e.Finish(span.Range{Beg: beg, End: rangeEnd(value, colon.Range.End)})
	return e
}
