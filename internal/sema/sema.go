package sema

import (
	"context"
	"sort"

	"perlscope/internal/ast"
	"perlscope/internal/diag"
	"perlscope/internal/lexer"
	"perlscope/internal/source"
	"perlscope/internal/symbols"
	"perlscope/internal/token"
)

// RefKind tells a declaration site from a use site.
type RefKind uint8

const (
	RefDecl RefKind = iota
	RefUse
	RefBuiltin
)

// Reference binds one occurrence of a name to the symbol it resolves to.
// Builtin and unresolved occurrences carry NoSymbolID.
type Reference struct {
	Name   source.StringID
	Span   source.Span
	Symbol symbols.SymbolID
	Kind   RefKind
}

// Result is the analyzer output for one file version: presentation
// tokens, diagnostics and resolved references, each sorted by span.
type Result struct {
	Tokens []Token
	Diags  []diag.Diagnostic
	Refs   []Reference
}

const maxDiags = 256

// Analyze runs the semantic pass over a parsed file. Cancellation is
// checked between top-level statements only; a cancelled run returns
// ctx.Err() and no partial output.
func Analyze(ctx context.Context, file *source.File, tree *ast.Node, tab *symbols.Table) (*Result, error) {
	w := &walker{file: file, tab: tab, bag: diag.NewBag(maxDiags)}
	w.lexicalTokens()
	w.declRefs()
	if tree != nil {
		for _, stmt := range tree.Children {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			w.walk(stmt)
		}
	}
	w.shadowingNotes()

	sort.Slice(w.tokens, func(i, j int) bool {
		if w.tokens[i].Span.Start != w.tokens[j].Span.Start {
			return w.tokens[i].Span.Start < w.tokens[j].Span.Start
		}
		return w.tokens[i].Span.End < w.tokens[j].Span.End
	})
	sort.Slice(w.refs, func(i, j int) bool {
		return w.refs[i].Span.Start < w.refs[j].Span.Start
	})
	w.bag.Sort()
	w.bag.Dedup()
	return &Result{Tokens: w.tokens, Diags: w.bag.Items(), Refs: w.refs}, nil
}

type walker struct {
	file   *source.File
	tab    *symbols.Table
	bag    *diag.Bag
	tokens []Token
	refs   []Reference
}

// lexicalTokens is the base presentation pass: one relex of the file
// classifies keywords, literals, operators and comment trivia. Bareword
// identifiers stay unclassified here; the tree walk refines callees and
// package names on top.
func (w *walker) lexicalTokens() {
	for _, tok := range lexer.Tokens(w.file, lexer.Options{}) {
		for _, tr := range tok.Leading {
			if tr.Kind == token.TriviaLineComment || tr.Kind == token.TriviaPod {
				w.emit(tr.Span, TokComment)
			}
		}
		switch {
		case tok.Kind == token.EOF || tok.Kind == token.Invalid:
		case tok.IsKeyword():
			w.emit(tok.Span, TokKeyword)
		case tok.IsVariable():
			w.emit(tok.Span, TokVariable)
		case tok.Kind == token.NumberLit:
			w.emit(tok.Span, TokNumber)
		case tok.Kind == token.StringLit || tok.Kind == token.QwList || tok.Kind == token.RegexLit:
			w.emit(tok.Span, TokString)
		case tok.IsWordOperator():
			w.emit(tok.Span, TokOperator)
		case tok.Kind == token.Ident:
		case isPunct(tok.Kind):
		default:
			w.emit(tok.Span, TokOperator)
		}
	}
}

func isPunct(k token.Kind) bool {
	switch k {
	case token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.LBracket, token.RBracket, token.Semicolon, token.Comma:
		return true
	default:
		return false
	}
}

// declRefs records one declaration reference per table symbol, so
// find-references includes the declaration site.
func (w *walker) declRefs() {
	for i, sym := range w.tab.Symbols.All() {
		w.refs = append(w.refs, Reference{
			Name:   sym.Name,
			Span:   sym.Span,
			Symbol: symbols.SymbolID(i + 1),
			Kind:   RefDecl,
		})
	}
}

// shadowingNotes surfaces same-scope redeclarations as info diagnostics.
func (w *walker) shadowingNotes() {
	for id := symbols.ScopeID(1); int(id) <= w.tab.Scopes.Len(); id++ {
		scope := w.tab.Scopes.Get(id)
		for _, ids := range scope.NameIndex {
			for i := 1; i < len(ids); i++ {
				later := w.tab.Symbols.Get(ids[i])
				first := w.tab.Symbols.Get(ids[0])
				name, _ := w.tab.Strings.Lookup(later.Name)
				w.bag.Add(diag.New(diag.SevInfo, diag.SemRedeclaration, later.Span,
					"\""+name+"\" redeclared in the same scope").
					WithNote(first.Span, "earlier declaration here"))
			}
		}
	}
}

func (w *walker) emit(sp source.Span, t TokenType) {
	w.tokens = append(w.tokens, Token{Span: sp, Type: t})
}

func (w *walker) addRef(n *ast.Node, name string, sym symbols.SymbolID, kind RefKind) {
	w.refs = append(w.refs, Reference{
		Name:   w.tab.Strings.Intern(name),
		Span:   n.Span,
		Symbol: sym,
		Kind:   kind,
	})
}

func (w *walker) report(code diag.Code, sp source.Span, msg string) {
	w.bag.Add(diag.NewWarning(code, sp, msg))
}
