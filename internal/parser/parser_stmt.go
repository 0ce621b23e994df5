package parser

import (
	"github.com/dekarrin/scriptlint/internal/ast"
	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/sema"
	"github.com/dekarrin/scriptlint/internal/span"
	"github.com/dekarrin/scriptlint/internal/token"
)

// parseStmt dispatches on the leading token to parse one statement. A null
// statement (bare `;`) returns nil so the caller does not append an empty
// node; every other form returns a non-nil Stmt, possibly with
// recovery-induced nil children.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().Type {
	case token.Semicolon:
		p.eatToken()
		return nil
	case token.LBrace:
		return p.parseBlock()
	case token.KwBreak, token.KwContinue:
		return p.parseControl()
	case token.KwDo:
		return p.parseDoWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwForeach:
		return p.parseForeach()
	case token.KwFun, token.KwSeq:
		return p.parseFunDecl()
	case token.KwIf:
		return p.parseIfElse()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwVar, token.KwConst:
		return p.parseVarDecl()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwWhile:
		return p.parseWhile()
	case token.RParen, token.RBracket, token.RBrace:
		t := p.eatToken()
		p.diags.Emit(t.Range.Beg, t.Range, diag.ParseMismatchedToken, diag.TokenArg(t.Type))
		return nil
	}

	if p.canStartExpr(p.cur().Type) {
		return p.parseNakedExpr()
	}

	t := p.cur()
	p.diags.Emit(t.Range.Beg, t.Range, diag.ParseExpectedStmt)
	if t.Type != token.EOF {
		p.eatToken()
	}
	return nil
}

// parseBlock parses `{ stmt* }`.
func (p *Parser) parseBlock() *ast.Block {
	lbrace := p.eatKind(token.LBrace)
	defer p.pushScope(sema.Block, nil)()

	var stmts []ast.Stmt
	for p.cur().Type != token.RBrace && p.cur().Type != token.EOF {
		before := p.cur()
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
		if p.cur() == before && p.cur().Type != token.EOF {
			p.eatToken()
		}
	}

	end := p.cur().Range.End
	if p.cur().Type == token.RBrace {
		p.eatToken()
	} else {
		p.diags.Emit(lbrace.Range.Beg, span.Range{Beg: lbrace.Range.Beg, End: end}, diag.ParseExpectedTokenGotOther, diag.TokenArg(token.RBrace), diag.TokenArg(p.cur().Type))
	}

	blk := &ast.Block{Stmts: stmts}
	blk.Finish(span.Range{Beg: lbrace.Range.Beg, End: end})
	p.visit(blk)
	return blk
}

// parseBlockStmt parses the kind of statement that fills a body position
// (after if/while/do/for/...): any statement, not just a brace block.
func (p *Parser) parseBlockStmt() ast.Stmt {
	s := p.parseStmt()
	if s == nil {
		// A null statement (bare `;`) or one fully consumed by recovery is a
		// valid, if unusual, loop/if body; synthesize an empty Block so
		// callers always have a non-nil body to compute ranges against.
		pos := p.cur().Range.Beg
		blk := &ast.Block{}
		blk.Finish(span.AtCols(pos, 0))
		return blk
	}
	return s
}

func (p *Parser) parseControl() ast.Stmt {
	kwTok := p.eatToken()
	semi := p.eatKind(token.Semicolon)
	c := &ast.Control{Keyword: kwTok.Type}
	c.Finish(span.Range{Beg: kwTok.Range.Beg, End: semi.Range.End})
	p.visit(c)
	return c
}

func (p *Parser) parseDoWhile() ast.Stmt {
	kwTok := p.eatToken()
	defer p.pushScope(sema.Loop, nil)()
	body := p.parseBlockStmt()
	p.eatKind(token.KwWhile)
	p.eatKind(token.LParen)
	cond := p.parseExpr()
	p.eatKind(token.RParen)
	semi := p.eatKind(token.Semicolon)
	dw := &ast.DoWhile{Body: body, Cond: cond}
	dw.Finish(span.Range{Beg: kwTok.Range.Beg, End: semi.Range.End})
	p.visit(dw)
	return dw
}

func (p *Parser) parseWhile() ast.Stmt {
	kwTok := p.eatToken()
	p.eatKind(token.LParen)
	cond := p.parseExpr()
	p.eatKind(token.RParen)
	defer p.pushScope(sema.Loop, nil)()
	body := p.parseBlockStmt()
	w := &ast.While{Cond: cond, Body: body}
	w.Finish(span.Range{Beg: kwTok.Range.Beg, End: body.Range().End})
	p.visit(w)
	return w
}

func (p *Parser) parseFor() ast.Stmt {
	kwTok := p.eatToken()
	p.eatKind(token.LParen)
	defer p.pushScope(sema.Loop, nil)()

	var init ast.Stmt
	if p.cur().Type == token.KwVar || p.cur().Type == token.KwConst {
		init = p.parseVarDeclNoSemi()
	} else if p.canStartExpr(p.cur().Type) {
		x := p.parseExpr()
		ne := &ast.NakedExpr{X: x}
		ne.Finish(x.Range())
		p.visit(ne)
		init = ne
	}
	p.eatKind(token.Semicolon)

	var cond ast.Expr
	if p.cur().Type != token.Semicolon {
		cond = p.parseExpr()
	}
	p.eatKind(token.Semicolon)

	var steps []ast.Expr
	for p.cur().Type != token.RParen && p.cur().Type != token.EOF {
		steps = append(steps, p.parseExpr())
		if p.cur().Type == token.Comma {
			p.eatToken()
			continue
		}
		break
	}
	p.eatKind(token.RParen)

	body := p.parseBlockStmt()
	f := &ast.For{Init: init, Cond: cond, Steps: steps, Body: body}
	f.Finish(span.Range{Beg: kwTok.Range.Beg, End: body.Range().End})
	p.visit(f)
	return f
}

func (p *Parser) parseForeach() ast.Stmt {
	kwTok := p.eatToken()
	p.eatKind(token.LParen)
	p.eatKind(token.KwVar)
	nameTok := p.eatKind(token.Identifier)
	p.eatKind(token.KwIn)
	iterable := p.parseExpr()
	p.eatKind(token.RParen)

	defer p.pushScope(sema.Loop, nil)()
	name := p.text(nameTok)
	p.sema.Declare(sema.Variable, nameTok.Range, name, nil)

	body := p.parseBlockStmt()
	fe := &ast.Foreach{VarName: name, Iterable: iterable, Body: body}
	fe.Finish(span.Range{Beg: kwTok.Range.Beg, End: body.Range().End})
	p.visit(fe)
	return fe
}

func (p *Parser) parseFunDecl() *ast.FunDecl {
	kwTok := p.eatToken()
	nameTok := p.eatKind(token.Identifier)
	name := p.text(nameTok)

	declKind := sema.Function
	scopeKind := sema.FuncScope
	if kwTok.Type == token.KwSeq {
		declKind = sema.Sequence
		scopeKind = sema.SeqScope
	}
	p.sema.Declare(declKind, nameTok.Range, name, nil)
	defer p.pushScope(scopeKind, nil)()

	params, paramRanges, varargs := p.parseParamListRanges()
	for i, param := range params {
		p.sema.Declare(sema.Argument, paramRanges[i], param, nil)
	}

	var body *ast.Block
	if p.cur().Type == token.Arrow {
		arrow := p.eatToken()
		if p.cur().Type == token.LBrace {
			p.diags.Emit(arrow.Range.Beg, arrow.Range, diag.ParseUnnecessaryPointyInFun)
			body = p.parseBlock()
		} else {
			value := p.parseExpr()
			semi := p.eatKind(token.Semicolon)
			ret := &ast.Return{Value: value}
			ret.Finish(span.Range{Beg: arrow.Range.Beg, End: semi.Range.End})
			p.visit(ret)
			body = &ast.Block{Stmts: []ast.Stmt{ret}}
			body.Finish(ret.Range())
			p.visit(body)
		}
	} else {
		body = p.parseBlock()
	}

	fd := &ast.FunDecl{Name: name, Params: params, Varargs: varargs, Body: body, Sequence: kwTok.Type == token.KwSeq}
	fd.Finish(span.Range{Beg: kwTok.Range.Beg, End: body.Range().End})
	p.visit(fd)
	return fd
}

func (p *Parser) parseIfElse() ast.Stmt {
	kwTok := p.eatToken()
	p.eatKind(token.LParen)
	cond := p.parseExpr()
	p.eatKind(token.RParen)
	then := p.parseBlockStmt()

	var elseStmt ast.Stmt
	end := then.Range().End
	if p.cur().Type == token.KwElse {
		p.eatToken()
		elseStmt = p.parseBlockStmt()
		end = elseStmt.Range().End
	}

	ie := &ast.IfElse{Cond: cond, Then: then, Else: elseStmt}
	ie.Finish(span.Range{Beg: kwTok.Range.Beg, End: end})
	p.visit(ie)
	return ie
}

func (p *Parser) parseNakedExpr() ast.Stmt {
	x := p.parseExpr()
	semi := p.eatKind(token.Semicolon)
	ne := &ast.NakedExpr{X: x}
	ne.Finish(span.Range{Beg: x.Range().Beg, End: semi.Range.End})
	p.visit(ne)
	return ne
}

func (p *Parser) parseReturn() ast.Stmt {
	kwTok := p.eatToken()
	var value ast.Expr
	if p.cur().Type != token.Semicolon {
		value = p.parseExpr()
	}
	semi := p.eatKind(token.Semicolon)
	r := &ast.Return{Value: value}
	r.Finish(span.Range{Beg: kwTok.Range.Beg, End: semi.Range.End})
	p.visit(r)
	return r
}

func (p *Parser) parseVarDecl() ast.Stmt {
	v := p.parseVarDeclNoSemi()
	semi := p.eatKind(token.Semicolon)
	vd := v.(*ast.VarDecl)
	vd.Finish(span.Range{Beg: vd.Range().Beg, End: semi.Range.End})
	p.visit(vd)
	return vd
}

// parseVarDeclNoSemi parses `var|const name [= expr] (, name [= expr])*`
// without consuming the trailing `;`, so it can be reused as a `for`-init
// clause where the semicolon is handled by the caller.
func (p *Parser) parseVarDeclNoSemi() ast.Stmt {
	kwTok := p.eatToken()
	isConst := kwTok.Type == token.KwConst

	var decls []ast.VarDeclarator
	for {
		nameTok := p.eatKind(token.Identifier)
		name := p.text(nameTok)

		var init ast.Expr
		if p.cur().Type == token.Assign {
			p.eatToken()
			init = p.parseExpr()
		} else if isConst {
			p.diags.Emit(nameTok.Range.Beg, nameTok.Range, diag.ParseConstNotInitialized)
		}

		kind := sema.Variable
		if isConst {
			kind = sema.Constant
		}
		p.sema.Declare(kind, nameTok.Range, name, nil)

		d := ast.VarDeclarator{Name: name, Init: init}
		d.Finish(span.Range{Beg: nameTok.Range.Beg, End: rangeEnd(init, nameTok.Range.End)})
		decls = append(decls, d)

		if p.cur().Type == token.Comma {
			p.eatToken()
			continue
		}
		break
	}

	vd := &ast.VarDecl{Const: isConst, Decls: decls}
	end := kwTok.Range.End
	if len(decls) > 0 {
		end = decls[len(decls)-1].Range().End
	}
	vd.Finish(span.Range{Beg: kwTok.Range.Beg, End: end})
	return vd
}

func (p *Parser) parseSwitch() ast.Stmt {
	kwTok := p.eatToken()
	p.eatKind(token.LParen)
	value := p.parseExpr()
	p.eatKind(token.RParen)
	lbrace := p.eatKind(token.LBrace)

	// Cases share one scope, opened as a Loop so that `break` out of a case
	// passes the loop-control check.
	defer p.pushScope(sema.Loop, nil)()

	var cases []ast.SwitchCase
	for p.cur().Type != token.RBrace && p.cur().Type != token.EOF {
		c, ok := p.parseSwitchCase()
		if !ok {
			break
		}
		cases = append(cases, c)
	}

	end := p.cur().Range.End
	if p.cur().Type == token.RBrace {
		p.eatToken()
	} else {
		p.diags.Emit(lbrace.Range.Beg, span.Range{Beg: lbrace.Range.Beg, End: end}, diag.ParseExpectedTokenGotOther, diag.TokenArg(token.RBrace), diag.TokenArg(p.cur().Type))
	}

	sw := &ast.Switch{Value: value, Cases: cases}
	sw.Finish(span.Range{Beg: kwTok.Range.Beg, End: end})
	p.visit(sw)
	return sw
}

// parseSwitchCase parses one `case expr :` or `default :` head followed by
// the statements up to the next case/default/closing brace/EOF.
func (p *Parser) parseSwitchCase() (ast.SwitchCase, bool) {
	headBeg := p.cur().Range.Beg

	var value ast.Expr
	isDefault := false

	switch p.cur().Type {
	case token.KwCase:
		p.eatToken()
		value = p.parseExpr()
	case token.KwDefault:
		p.eatToken()
		isDefault = true
	default:
		p.diags.Emit(p.cur().Range.Beg, p.cur().Range, diag.ParseExpectedSwitchCase)
		return ast.SwitchCase{}, false
	}

	colon := p.eatKind(token.Colon)
	headRange := span.Range{Beg: headBeg, End: colon.Range.End}

	var body []ast.Stmt
	for !p.atSwitchCaseBoundary() {
		before := p.cur()
		s := p.parseStmt()
		if s != nil {
			body = append(body, s)
		}
		if p.cur() == before && p.cur().Type != token.EOF {
			p.eatToken()
		}
	}

	end := headRange.End
	if len(body) > 0 {
		end = body[len(body)-1].Range().End
	}

	c := ast.SwitchCase{Default: isDefault, Value: value, HeadRange: headRange, Body: body}
	c.Finish(span.Range{Beg: headBeg, End: end})
	return c, true
}

func (p *Parser) atSwitchCaseBoundary() bool {
	switch p.cur().Type {
	case token.KwCase, token.KwDefault, token.RBrace, token.EOF:
		return true
	default:
		return false
	}
}
