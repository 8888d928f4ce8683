package parser

import (
	"perlscope/internal/ast"
	"perlscope/internal/diag"
	"perlscope/internal/token"
)

func (p *Parser) parseStatement() *ast.Node {
	switch p.lx.Peek().Kind {
	case token.Semicolon:
		p.advance() // empty statement
		return nil
	case token.KwPackage:
		return p.parsePackageDecl()
	case token.KwUse, token.KwNo:
		return p.parseUseDecl()
	case token.KwSub:
		return p.parseSubDecl()
	case token.KwMy, token.KwOur, token.KwLocal:
		return p.parseVarDecl()
	case token.KwIf, token.KwUnless:
		return p.parseIfStmt()
	case token.KwWhile, token.KwUntil:
		return p.parseWhileStmt()
	case token.KwFor, token.KwForeach:
		return p.parseForStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwLast:
		return p.parseLoopJump(ast.KindLastStmt)
	case token.KwNext:
		return p.parseLoopJump(ast.KindNextStmt)
	case token.LBrace:
		return p.parseBlock()
	case token.KwEval:
		return p.parseEvalStmt()
	default:
		return p.parseExprStatement()
	}
}

// expectSemi eats the statement terminator. A missing semicolon right
// before '}' or EOF is tolerated the way perl tolerates it.
func (p *Parser) expectSemi() {
	switch p.lx.Peek().Kind {
	case token.Semicolon:
		p.advance()
	case token.RBrace, token.EOF:
	default:
		p.err(diag.SynExpectSemicolon, "expected ';' after statement")
		p.resync(p.diagSpan())
	}
}

func (p *Parser) parsePackageDecl() *ast.Node {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectPackageName, "expected package name")
	if !ok {
		sp := p.resync(kw.Span)
		return ast.New(ast.KindBadStmt, sp, "")
	}
	sp := kw.Span.Cover(name.Span)
	p.expectSemi()
	ident := ast.New(ast.KindIdent, name.Span, name.Text)
	return ast.New(ast.KindPackageDecl, sp, kw.Text, ident)
}

func (p *Parser) parseUseDecl() *ast.Node {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected module name after '"+kw.Text+"'")
	if !ok {
		sp := p.resync(kw.Span)
		return ast.New(ast.KindBadStmt, sp, "")
	}
	children := []*ast.Node{ast.New(ast.KindIdent, name.Span, name.Text)}
	sp := kw.Span.Cover(name.Span)
	// import list: anything up to the semicolon (qw lists, version
	// numbers, fat-arrow pairs).
	if !p.atAny(token.Semicolon, token.RBrace, token.EOF) {
		args := p.parseExprList(token.Semicolon)
		for _, a := range args {
			sp = sp.Cover(a.Span)
			children = append(children, a)
		}
	}
	p.expectSemi()
	return ast.New(ast.KindUseDecl, sp, kw.Text, children...)
}

func (p *Parser) parseSubDecl() *ast.Node {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectSubName, "expected subroutine name")
	if !ok {
		sp := p.resync(kw.Span)
		return ast.New(ast.KindBadStmt, sp, "")
	}
	ident := ast.New(ast.KindIdent, name.Span, name.Text)
	body := p.parseBlock()
	if body == nil {
		sp := p.resync(kw.Span.Cover(name.Span))
		return ast.New(ast.KindBadStmt, sp, "")
	}
	sp := kw.Span.Cover(body.Span)
	return ast.New(ast.KindSubDecl, sp, "", ident, body)
}

func (p *Parser) parseVarDecl() *ast.Node {
	kw := p.advance()
	var target *ast.Node
	switch p.lx.Peek().Kind {
	case token.ScalarVar, token.ArrayVar, token.HashVar:
		tok := p.advance()
		target = ast.New(varKind(tok.Kind), tok.Span, tok.Text)
	case token.LParen:
		target = p.parseParenOrList()
	default:
		p.err(diag.SynExpectVariable, "expected variable after '"+kw.Text+"'")
		sp := p.resync(kw.Span)
		return ast.New(ast.KindBadStmt, sp, "")
	}
	sp := kw.Span.Cover(target.Span)
	var init *ast.Node
	if p.at(token.Assign) {
		p.advance()
		init = p.parseExpr(precLowest)
		if list := p.maybeCommaList(init, token.Semicolon); list != nil {
			init = list
		}
		sp = sp.Cover(init.Span)
	}
	p.expectSemi()
	return ast.New(ast.KindVarDecl, sp, kw.Text, target, init)
}

func varKind(k token.Kind) ast.NodeKind {
	switch k {
	case token.ArrayVar:
		return ast.KindArrayVar
	case token.HashVar:
		return ast.KindHashVar
	default:
		return ast.KindScalarVar
	}
}

func (p *Parser) parseIfStmt() *ast.Node {
	kw := p.advance() // if | unless | elsif
	cond := p.parseParenCond()
	then := p.parseBlock()
	if then == nil {
		sp := p.resync(kw.Span.Cover(cond.Span))
		return ast.New(ast.KindBadStmt, sp, "")
	}
	sp := kw.Span.Cover(then.Span)
	var alt *ast.Node
	switch p.lx.Peek().Kind {
	case token.KwElsif:
		alt = p.parseIfStmt()
	case token.KwElse:
		p.advance()
		alt = p.parseBlock()
	}
	if alt != nil {
		sp = sp.Cover(alt.Span)
	}
	return ast.New(ast.KindIfStmt, sp, kw.Text, cond, then, alt)
}

func (p *Parser) parseWhileStmt() *ast.Node {
	kw := p.advance() // while | until
	cond := p.parseParenCond()
	body := p.parseBlock()
	if body == nil {
		sp := p.resync(kw.Span.Cover(cond.Span))
		return ast.New(ast.KindBadStmt, sp, "")
	}
	return ast.New(ast.KindWhileStmt, kw.Span.Cover(body.Span), kw.Text, cond, body)
}

// parseForStmt handles both foreach loops and C-style for loops. The
// shape is decided by what follows the opening paren: a semicolon before
// the paren closes means C-style.
func (p *Parser) parseForStmt() *ast.Node {
	kw := p.advance() // for | foreach
	var loopVar *ast.Node
	if p.atAny(token.KwMy, token.KwOur, token.KwLocal) {
		declKw := p.advance()
		v, ok := p.expect(token.ScalarVar, diag.SynExpectVariable, "expected scalar loop variable")
		if !ok {
			sp := p.resync(kw.Span)
			return ast.New(ast.KindBadStmt, sp, "")
		}
		target := ast.New(ast.KindScalarVar, v.Span, v.Text)
		loopVar = ast.New(ast.KindVarDecl, declKw.Span.Cover(v.Span), declKw.Text, target, nil)
	} else if p.at(token.ScalarVar) {
		v := p.advance()
		loopVar = ast.New(ast.KindScalarVar, v.Span, v.Text)
	}

	if _, ok := p.expect(token.LParen, diag.SynBadForHeader, "expected '(' in loop header"); !ok {
		sp := p.resync(kw.Span)
		return ast.New(ast.KindBadStmt, sp, "")
	}

	// Without a loop variable the header is ambiguous until the first
	// clause is parsed: a following ';' means C-style.
	if loopVar == nil {
		if p.at(token.Semicolon) {
			return p.parseCForTail(kw, nil)
		}
		first := p.parseCForClause()
		if p.at(token.Semicolon) {
			return p.parseCForTail(kw, first)
		}
		list := p.finishList(first, token.RParen)
		return p.parseForeachTail(kw, nil, list)
	}

	list := p.parseListUntil(token.RParen)
	return p.parseForeachTail(kw, loopVar, list)
}

func (p *Parser) parseForeachTail(kw token.Token, loopVar, list *ast.Node) *ast.Node {
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after loop list")
	body := p.parseBlock()
	if body == nil {
		sp := p.resync(kw.Span.Cover(list.Span))
		return ast.New(ast.KindBadStmt, sp, "")
	}
	return ast.New(ast.KindForeachStmt, kw.Span.Cover(body.Span), kw.Text, loopVar, list, body)
}

// parseCForTail parses "init?; cond?; step?) BLOCK" with the '(' and the
// init clause already consumed.
func (p *Parser) parseCForTail(kw token.Token, init *ast.Node) *ast.Node {
	var cond, step *ast.Node
	p.expect(token.Semicolon, diag.SynBadForHeader, "expected ';' in for header")
	if !p.at(token.Semicolon) {
		cond = p.parseExpr(precLowest)
	}
	p.expect(token.Semicolon, diag.SynBadForHeader, "expected ';' in for header")
	if !p.at(token.RParen) {
		step = p.parseExpr(precLowest)
	}
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after for header")
	body := p.parseBlock()
	if body == nil {
		sp := p.resync(kw.Span)
		return ast.New(ast.KindBadStmt, sp, "")
	}
	return ast.New(ast.KindCForStmt, kw.Span.Cover(body.Span), kw.Text, init, cond, step, body)
}

// parseCForClause allows "my $i = 0" in the init slot.
func (p *Parser) parseCForClause() *ast.Node {
	if p.atAny(token.KwMy, token.KwOur, token.KwLocal) {
		kw := p.advance()
		v, ok := p.expect(token.ScalarVar, diag.SynExpectVariable, "expected variable after '"+kw.Text+"'")
		if !ok {
			return ast.New(ast.KindBadExpr, p.diagSpan(), "")
		}
		target := ast.New(ast.KindScalarVar, v.Span, v.Text)
		sp := kw.Span.Cover(v.Span)
		var init *ast.Node
		if p.at(token.Assign) {
			p.advance()
			init = p.parseExpr(precLowest)
			sp = sp.Cover(init.Span)
		}
		return ast.New(ast.KindVarDecl, sp, kw.Text, target, init)
	}
	return p.parseExpr(precLowest)
}

func (p *Parser) parseReturnStmt() *ast.Node {
	kw := p.advance()
	sp := kw.Span
	var expr *ast.Node
	if !p.atAny(token.Semicolon, token.RBrace, token.EOF) &&
		!p.atAny(token.KwIf, token.KwUnless, token.KwWhile, token.KwUntil, token.KwFor, token.KwForeach) {
		expr = p.parseExpr(precLowest)
		if list := p.maybeCommaList(expr, token.Semicolon); list != nil {
			expr = list
		}
		sp = sp.Cover(expr.Span)
	}
	mod, cond := p.parseModifier()
	if cond != nil {
		sp = sp.Cover(cond.Span)
	}
	p.expectSemi()
	return ast.New(ast.KindReturnStmt, sp, mod, expr, cond)
}

// parseLoopJump parses "last;" / "next;" with an optional modifier.
func (p *Parser) parseLoopJump(kind ast.NodeKind) *ast.Node {
	kw := p.advance()
	sp := kw.Span
	mod, cond := p.parseModifier()
	if cond != nil {
		sp = sp.Cover(cond.Span)
	}
	p.expectSemi()
	if cond != nil {
		return ast.New(kind, sp, mod, cond)
	}
	return ast.New(kind, sp, mod)
}

// parseModifier consumes a trailing statement modifier if one follows.
func (p *Parser) parseModifier() (string, *ast.Node) {
	switch p.lx.Peek().Kind {
	case token.KwIf, token.KwUnless, token.KwWhile, token.KwUntil, token.KwFor, token.KwForeach:
		kw := p.advance()
		cond := p.parseExpr(precLowest)
		if list := p.maybeCommaList(cond, token.Semicolon); list != nil {
			cond = list
		}
		return kw.Text, cond
	}
	return "", nil
}

func (p *Parser) parseBlock() *ast.Node {
	open, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{'")
	if !ok {
		return nil
	}
	stmts := p.parseStatements(token.RBrace)
	sp := open.Span
	if close, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}'"); ok {
		sp = sp.Cover(close.Span)
	} else if len(stmts) > 0 {
		sp = sp.Cover(stmts[len(stmts)-1].Span)
	}
	return ast.New(ast.KindBlock, sp, "", stmts...)
}

// parseEvalStmt handles both "eval { ... };" and the string form
// "eval EXPR;". The block form becomes its own statement kind so error
// isolation inside it stays visible to later phases.
func (p *Parser) parseEvalStmt() *ast.Node {
	kw := p.advance()
	if p.at(token.LBrace) {
		body := p.parseBlock()
		sp := kw.Span.Cover(body.Span)
		node := ast.New(ast.KindEvalBlock, sp, "", body)
		if p.at(token.Semicolon) {
			p.advance()
		}
		return node
	}
	callee := ast.New(ast.KindIdent, kw.Span, kw.Text)
	arg := p.parseExpr(precLowest)
	sp := kw.Span.Cover(arg.Span)
	call := ast.New(ast.KindCallExpr, sp, "", callee, arg)
	p.expectSemi()
	return ast.New(ast.KindExprStmt, sp, "", call)
}

// parseExprStatement parses "EXPR;" with an optional trailing statement
// modifier: "EXPR if COND;" keeps both sides as expressions so the
// declaration scope of the left side is not changed by the modifier.
func (p *Parser) parseExprStatement() *ast.Node {
	expr := p.parseExpr(precLowest)
	if expr.Kind == ast.KindBadExpr {
		sp := p.resync(expr.Span)
		return ast.New(ast.KindBadStmt, sp, "")
	}
	if list := p.maybeCommaList(expr, token.Semicolon); list != nil {
		expr = list
	}
	sp := expr.Span
	mod, cond := p.parseModifier()
	if cond != nil {
		sp = sp.Cover(cond.Span)
	}
	p.expectSemi()
	if cond != nil {
		return ast.New(ast.KindExprStmt, sp, mod, expr, cond)
	}
	return ast.New(ast.KindExprStmt, sp, "", expr)
}
