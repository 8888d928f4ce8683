package parser

import (
	"perlscope/internal/ast"
	"perlscope/internal/diag"
	"perlscope/internal/source"
	"perlscope/internal/token"
)

// Binding powers, loosest first. This mirrors perl's operator table for
// the supported subset: assignment binds tighter than comma and the word
// operators or/and/not, ** binds tighter than unary minus.
const (
	precLowest = iota
	precOrKw   // or
	precAndKw  // and
	precNotKw  // not
	precAssign // = += -= *= /= .= ||= //=
	precTernary
	precRange      // ..
	precOrOr       // || //
	precAndAnd     // &&
	precEquality   // == != <=> eq ne cmp
	precRelational // < > <= >= lt gt le ge
	precAdditive   // + - .
	precMultiply   // * / % x
	precMatch      // =~ !~
	precUnary      // ! \ - + ++ -- &
	precPower      // **
)

// binaryPrec classifies an infix token. Returns -1 for non-operators.
func binaryPrec(k token.Kind) (prec int, rightAssoc bool, kind ast.NodeKind) {
	switch k {
	case token.KwOr:
		return precOrKw, false, ast.KindBinaryExpr
	case token.KwAnd:
		return precAndKw, false, ast.KindBinaryExpr
	case token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign,
		token.SlashAssign, token.DotAssign, token.OrOrAssign, token.DefOrAssign:
		return precAssign, true, ast.KindAssignExpr
	case token.Question:
		return precTernary, true, ast.KindTernaryExpr
	case token.DotDot:
		return precRange, false, ast.KindBinaryExpr
	case token.OrOr, token.DefOr:
		return precOrOr, false, ast.KindBinaryExpr
	case token.AndAnd:
		return precAndAnd, false, ast.KindBinaryExpr
	case token.EqEq, token.BangEq, token.Spaceship,
		token.StrEq, token.StrNe, token.StrCmp:
		return precEquality, false, ast.KindBinaryExpr
	case token.Lt, token.Gt, token.LtEq, token.GtEq,
		token.StrLt, token.StrGt, token.StrLe, token.StrGe:
		return precRelational, false, ast.KindBinaryExpr
	case token.Plus, token.Minus, token.Dot:
		return precAdditive, false, ast.KindBinaryExpr
	case token.Star, token.Slash, token.Percent, token.Repeat:
		return precMultiply, false, ast.KindBinaryExpr
	case token.Match, token.NotMatch:
		return precMatch, false, ast.KindBinaryExpr
	case token.StarStar:
		return precPower, true, ast.KindBinaryExpr
	default:
		return -1, false, ast.KindInvalid
	}
}

func (p *Parser) parseExpr(min int) *ast.Node {
	return p.parseBinaryRHS(p.parseUnary(), min)
}

func (p *Parser) parseBinaryRHS(lhs *ast.Node, min int) *ast.Node {
	for {
		prec, rightAssoc, kind := binaryPrec(p.lx.Peek().Kind)
		if prec < min {
			return lhs
		}
		if kind == ast.KindTernaryExpr {
			lhs = p.parseTernaryTail(lhs)
			continue
		}
		op := p.advance()
		nextMin := prec + 1
		if rightAssoc {
			nextMin = prec
		}
		rhs := p.parseExpr(nextMin)
		lhs = ast.New(kind, lhs.Span.Cover(rhs.Span), op.Text, lhs, rhs)
	}
}

func (p *Parser) parseTernaryTail(cond *ast.Node) *ast.Node {
	p.advance() // ?
	then := p.parseExpr(precAssign)
	p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in conditional expression")
	alt := p.parseExpr(precTernary)
	return ast.New(ast.KindTernaryExpr, cond.Span.Cover(alt.Span), "", cond, then, alt)
}

func (p *Parser) parseUnary() *ast.Node {
	switch p.lx.Peek().Kind {
	case token.Bang, token.Minus, token.Plus, token.Backslash,
		token.PlusPlus, token.MinusMinus, token.Amp:
		op := p.advance()
		operand := p.parseExpr(precUnary)
		return ast.New(ast.KindUnaryExpr, op.Span.Cover(operand.Span), op.Text, operand)
	case token.KwNot:
		op := p.advance()
		operand := p.parseExpr(precNotKw + 1)
		return ast.New(ast.KindUnaryExpr, op.Span.Cover(operand.Span), op.Text, operand)
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary and its chain of arrows, subscripts and
// postfix increments.
func (p *Parser) parsePostfix() *ast.Node {
	node := p.parsePrimary()
	for {
		switch p.lx.Peek().Kind {
		case token.Arrow:
			node = p.parseArrowTail(node)
		case token.LBracket:
			if !subscriptable(node) {
				return node
			}
			open := p.advance()
			idx := p.parseExpr(precLowest)
			sp := node.Span.Cover(open.Span).Cover(idx.Span)
			if close, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"); ok {
				sp = sp.Cover(close.Span)
			}
			node = ast.New(ast.KindIndexExpr, sp, "", node, idx)
		case token.LBrace:
			if !subscriptable(node) {
				return node
			}
			node = p.parseKeyTail(node)
		case token.PlusPlus, token.MinusMinus:
			op := p.advance()
			node = ast.New(ast.KindUnaryExpr, node.Span.Cover(op.Span), op.Text, node)
		default:
			return node
		}
	}
}

// subscriptable keeps '[' and '{' after barewords from being eaten as
// subscripts; a bareword followed by '{' is a block, not a hash access.
func subscriptable(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindScalarVar, ast.KindArrayVar, ast.KindHashVar,
		ast.KindIndexExpr, ast.KindKeyExpr, ast.KindCallExpr,
		ast.KindMethodCall, ast.KindParenExpr:
		return true
	default:
		return false
	}
}

func (p *Parser) parseArrowTail(base *ast.Node) *ast.Node {
	p.advance() // ->
	switch p.lx.Peek().Kind {
	case token.Ident:
		name := p.advance()
		method := ast.New(ast.KindIdent, name.Span, name.Text)
		sp := base.Span.Cover(name.Span)
		children := []*ast.Node{base, method}
		if p.at(token.LParen) {
			args, close := p.parseParenArgs()
			children = append(children, args...)
			sp = sp.Cover(close)
		}
		return ast.New(ast.KindMethodCall, sp, "", children...)
	case token.LBracket:
		open := p.advance()
		idx := p.parseExpr(precLowest)
		sp := base.Span.Cover(open.Span).Cover(idx.Span)
		if close, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"); ok {
			sp = sp.Cover(close.Span)
		}
		return ast.New(ast.KindIndexExpr, sp, "", base, idx)
	case token.LBrace:
		return p.parseKeyTail(base)
	default:
		p.err(diag.SynUnexpectedToken, "expected method name or subscript after '->'")
		bad := ast.New(ast.KindBadExpr, p.diagSpan(), "")
		return ast.New(ast.KindMethodCall, base.Span.Cover(bad.Span), "", base, bad)
	}
}

// parseKeyTail parses "{key}" with the brace unconsumed. A lone bareword
// key is auto-quoted.
func (p *Parser) parseKeyTail(base *ast.Node) *ast.Node {
	open := p.advance() // {
	var key *ast.Node
	if p.at(token.Ident) {
		word := p.advance()
		key = ast.New(ast.KindStringLit, word.Span, word.Text)
	} else {
		key = p.parseExpr(precLowest)
	}
	sp := base.Span.Cover(open.Span).Cover(key.Span)
	if close, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' after hash key"); ok {
		sp = sp.Cover(close.Span)
	}
	return ast.New(ast.KindKeyExpr, sp, "", base, key)
}

func (p *Parser) parsePrimary() *ast.Node {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.ScalarVar, token.ArrayVar, token.HashVar:
		p.advance()
		return ast.New(varKind(tok.Kind), tok.Span, tok.Text)

	case token.NumberLit:
		p.advance()
		return ast.New(ast.KindNumberLit, tok.Span, tok.Text)
	case token.StringLit:
		p.advance()
		return ast.New(ast.KindStringLit, tok.Span, tok.Text)
	case token.RegexLit:
		p.advance()
		return ast.New(ast.KindRegexLit, tok.Span, tok.Text)
	case token.QwList:
		p.advance()
		return ast.New(ast.KindQwList, tok.Span, tok.Text)

	case token.Ident:
		return p.parseIdentExpr()

	case token.KwEval, token.KwDo:
		return p.parseEvalExpr()

	case token.LParen:
		return p.parseParenOrList()

	case token.LBracket:
		open := p.advance()
		elems := p.parseCallArgList(token.RBracket)
		sp := open.Span
		if close, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"); ok {
			sp = sp.Cover(close.Span)
		} else if len(elems) > 0 {
			sp = sp.Cover(elems[len(elems)-1].Span)
		}
		return ast.New(ast.KindListExpr, sp, "[]", elems...)

	default:
		p.err(diag.SynExpectExpression, "expected expression, got '"+tok.Text+"'")
		sp := tok.Span
		if !p.atAny(token.EOF, token.Semicolon, token.RBrace, token.RParen, token.RBracket) {
			sp = p.advance().Span
		}
		return ast.New(ast.KindBadExpr, sp, "")
	}
}

// parseIdentExpr resolves the three readings of a bareword: a call with
// parens, a list-operator call, or a plain identifier. A bareword before
// '=>' is auto-quoted.
func (p *Parser) parseIdentExpr() *ast.Node {
	name := p.advance()
	switch {
	case p.at(token.FatArrow):
		return ast.New(ast.KindStringLit, name.Span, name.Text)
	case p.at(token.LParen):
		callee := ast.New(ast.KindIdent, name.Span, name.Text)
		args, close := p.parseParenArgs()
		sp := name.Span.Cover(close)
		return ast.New(ast.KindCallExpr, sp, "", append([]*ast.Node{callee}, args...)...)
	case exprStart(p.lx.Peek().Kind):
		callee := ast.New(ast.KindIdent, name.Span, name.Text)
		args := p.parseCallArgList(token.Semicolon)
		sp := name.Span
		if len(args) > 0 {
			sp = sp.Cover(args[len(args)-1].Span)
		}
		return ast.New(ast.KindCallExpr, sp, "", append([]*ast.Node{callee}, args...)...)
	default:
		return ast.New(ast.KindIdent, name.Span, name.Text)
	}
}

// parseEvalExpr handles eval/do in expression position.
func (p *Parser) parseEvalExpr() *ast.Node {
	kw := p.advance()
	if p.at(token.LBrace) {
		body := p.parseBlock()
		sp := kw.Span.Cover(body.Span)
		if kw.Kind == token.KwEval {
			return ast.New(ast.KindEvalBlock, sp, "", body)
		}
		return ast.New(ast.KindBlock, sp, kw.Text, body.Children...)
	}
	callee := ast.New(ast.KindIdent, kw.Span, kw.Text)
	arg := p.parseExpr(precAssign)
	return ast.New(ast.KindCallExpr, kw.Span.Cover(arg.Span), "", callee, arg)
}

// exprStart reports whether a token can begin an expression, which is
// what turns "print $x" into a call without parens.
func exprStart(k token.Kind) bool {
	switch k {
	case token.Ident, token.ScalarVar, token.ArrayVar, token.HashVar,
		token.NumberLit, token.StringLit, token.RegexLit, token.QwList,
		token.LParen, token.LBracket, token.Bang, token.Minus, token.Plus,
		token.Backslash, token.PlusPlus, token.MinusMinus, token.Amp,
		token.KwEval, token.KwDo:
		return true
	default:
		return false
	}
}

// parseParenArgs parses "(...)" call arguments with the paren unconsumed.
// Returns the args and the span of the closing paren (or the last token
// consumed when it is missing).
func (p *Parser) parseParenArgs() ([]*ast.Node, source.Span) {
	open := p.advance() // (
	var args []*ast.Node
	if !p.at(token.RParen) {
		args = p.parseCallArgList(token.RParen)
	}
	if close, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after arguments"); ok {
		return args, close.Span
	}
	if len(args) > 0 {
		return args, args[len(args)-1].Span
	}
	return args, open.Span
}

// parseCallArgList parses comma separated expressions until the
// terminator. Arguments are parsed above the or/and/not levels, so those
// word operators end the list the way perl's list operators do.
func (p *Parser) parseCallArgList(term token.Kind) []*ast.Node {
	var args []*ast.Node
	for {
		if p.atAny(term, token.RParen, token.RBrace, token.RBracket, token.Semicolon, token.EOF) {
			return args
		}
		args = append(args, p.parseExpr(precAssign))
		if p.atAny(token.Comma, token.FatArrow) {
			p.advance()
			continue
		}
		return args
	}
}

// maybeCommaList extends an already parsed expression into a ListExpr if
// a comma follows; returns nil when there is no list.
func (p *Parser) maybeCommaList(first *ast.Node, term token.Kind) *ast.Node {
	if !p.atAny(token.Comma, token.FatArrow) {
		return nil
	}
	elems := []*ast.Node{first}
	sp := first.Span
	for p.atAny(token.Comma, token.FatArrow) {
		p.advance()
		if p.atAny(term, token.RParen, token.RBrace, token.EOF) {
			break // trailing comma
		}
		e := p.parseExpr(precAssign)
		elems = append(elems, e)
		sp = sp.Cover(e.Span)
	}
	return ast.New(ast.KindListExpr, sp, "", elems...)
}

// parseExprList parses a comma separated list and returns the elements.
func (p *Parser) parseExprList(term token.Kind) []*ast.Node {
	return p.parseCallArgList(term)
}

// parseListUntil parses a possibly empty comma list, folding a single
// element to itself and several into a ListExpr.
func (p *Parser) parseListUntil(term token.Kind) *ast.Node {
	if p.at(term) {
		sp := p.diagSpan()
		return ast.New(ast.KindListExpr, source.Span{File: sp.File, Start: sp.Start, End: sp.Start}, "")
	}
	first := p.parseExpr(precAssign)
	return p.finishList(first, term)
}

func (p *Parser) finishList(first *ast.Node, term token.Kind) *ast.Node {
	if list := p.maybeCommaList(first, term); list != nil {
		return list
	}
	return first
}

// parseParenCond parses the parenthesized condition of if/while headers.
func (p *Parser) parseParenCond() *ast.Node {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after control keyword"); !ok {
		return ast.New(ast.KindBadExpr, p.diagSpan(), "")
	}
	cond := p.parseExpr(precLowest)
	if list := p.maybeCommaList(cond, token.RParen); list != nil {
		cond = list
	}
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after condition")
	return cond
}

// parseParenOrList parses "( ... )" in expression position.
func (p *Parser) parseParenOrList() *ast.Node {
	open := p.advance() // (
	if p.at(token.RParen) {
		close := p.advance()
		return ast.New(ast.KindListExpr, open.Span.Cover(close.Span), "")
	}
	first := p.parseExpr(precLowest)
	list := p.maybeCommaList(first, token.RParen)
	sp := open.Span.Cover(first.Span)
	if close, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); ok {
		sp = sp.Cover(close.Span)
	}
	if list != nil {
		list.Span = sp
		return list
	}
	return ast.New(ast.KindParenExpr, sp, "", first)
}
