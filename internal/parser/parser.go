package parser

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"perlscope/internal/ast"
	"perlscope/internal/diag"
	"perlscope/internal/lexer"
	"perlscope/internal/source"
	"perlscope/internal/token"
)

// Options controls error reporting and the incremental fallback threshold.
type Options struct {
	MaxErrors uint          // 0 means unlimited
	Reporter  diag.Reporter // may be nil

	// MaxReparseFraction bounds the reparse window relative to the new
	// document length; a larger window falls back to a full parse.
	// Zero means the 0.5 default.
	MaxReparseFraction float64
}

// Parser holds the state for parsing one file or one reparse window.
type Parser struct {
	lx       *lexer.Lexer
	file     *source.File
	opts     Options
	errors   uint
	lastSpan source.Span
}

// Parse builds the full syntax tree for a file. The returned root is
// always a File node covering the whole content; syntax errors are
// reported through opts.Reporter and contained in Bad nodes.
func Parse(file *source.File, opts Options) *ast.Node {
	lx := lexer.New(file, lexer.Options{Reporter: lexer.ReporterAdapter{R: opts.Reporter}})
	p := &Parser{lx: lx, file: file, opts: opts}
	stmts := p.parseStatements(token.EOF)
	span := source.Span{File: file.ID, Start: 0, End: safeLen(file.Content)}
	return ast.New(ast.KindFile, span, "", stmts...)
}

// parseWindow parses the statement sequence of a bounded byte window.
// Spans stay absolute; the reparser splices the result between reused
// subtrees. openSection reports that lexing hit the window limit inside
// an unterminated POD or data section, which means the section really
// extends past the window and splicing would misread the suffix as code.
func parseWindow(file *source.File, start, end uint32, opts Options) (stmts []*ast.Node, openSection bool) {
	lx := lexer.New(file, lexer.Options{
		Reporter: lexer.ReporterAdapter{R: opts.Reporter},
		Start:    start,
		End:      end,
	})
	p := &Parser{lx: lx, file: file, opts: opts}
	stmts = p.parseStatements(token.EOF)
	return stmts, lx.InOpenSection()
}

func safeLen(b []byte) uint32 {
	n, err := safecast.Conv[uint32](len(b))
	if err != nil {
		panic(fmt.Errorf("file length overflow: %w", err))
	}
	return n
}

// parseStatements consumes statements until the until kind or EOF.
func (p *Parser) parseStatements(until token.Kind) []*ast.Node {
	var stmts []*ast.Node
	for !p.at(until) && !p.at(token.EOF) {
		before := p.lx.Peek().Span
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		// A statement that consumed nothing would loop forever.
		if p.lx.Peek().Span == before && !p.at(until) && !p.at(token.EOF) {
			p.advance()
		}
	}
	return stmts
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atAny(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// diagSpan picks the best span to attach a diagnostic to: the next token,
// or the position right after the last consumed one at EOF.
func (p *Parser) diagSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagSpan()
	p.report(code, diag.SevError, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, diag.SevError, p.diagSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if sev == diag.SevError {
		p.errors++
	}
	if p.opts.Reporter == nil {
		return
	}
	if p.opts.MaxErrors != 0 && p.errors > p.opts.MaxErrors {
		return
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil)
}

// resync skips tokens until a statement boundary: past the next
// semicolon, or just before a closing brace, statement keyword or EOF.
// Returns the span of everything skipped.
func (p *Parser) resync(from source.Span) source.Span {
	sp := from
	for {
		switch p.lx.Peek().Kind {
		case token.EOF, token.RBrace:
			return sp
		case token.Semicolon:
			sp = sp.Cover(p.advance().Span)
			return sp
		case token.KwMy, token.KwOur, token.KwLocal, token.KwSub, token.KwPackage,
			token.KwUse, token.KwNo, token.KwIf, token.KwUnless, token.KwWhile,
			token.KwUntil, token.KwFor, token.KwForeach, token.KwReturn:
			return sp
		default:
			sp = sp.Cover(p.advance().Span)
		}
	}
}
