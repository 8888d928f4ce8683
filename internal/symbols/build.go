package symbols

import (
	"perlscope/internal/ast"
	"perlscope/internal/source"
)

// Build constructs the symbol table for one parsed file. The walk only
// looks at declaration structure; reference resolution happens in the
// semantic pass against the finished table.
//
// Scoping rules: my binds in the enclosing block from its declaration
// point; our and local register in the file scope and the current scope
// respectively; sub and package names are file-wide. A foreach loop
// variable belongs to the loop body, a C-style for init declaration to a
// scope wrapping the whole loop.
func Build(file *source.File, tree *ast.Node, strings *source.Interner) *Table {
	tab := NewTable(Hints{}, strings)
	tab.File = file.ID
	tab.Version = file.Version
	tab.Root = tab.Scopes.New(ScopeFile, NoScopeID, ast.SpanOf(tree))

	b := &builder{tab: tab, cur: tab.Root, pkg: "main"}
	if tree != nil {
		b.stmts(tree.Children)
	}
	return tab
}

type builder struct {
	tab *Table
	cur ScopeID
	pkg string
}

func (b *builder) stmts(list []*ast.Node) {
	for _, stmt := range list {
		b.stmt(stmt)
	}
}

func (b *builder) stmt(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindPackageDecl:
		name := n.Name()
		if name != nil {
			b.pkg = name.Text
			b.declare(SymbolPackage, name.Text, name.Span, 0)
		}

	case ast.KindUseDecl:
		name := n.Name()
		if name != nil {
			b.declare(SymbolModule, name.Text, name.Span, 0)
		}

	case ast.KindSubDecl:
		name := n.Name()
		if name != nil {
			b.declareIn(b.tab.Root, SymbolSub, name.Text, name.Span, 0)
		}
		if body := n.Child(1); body != nil {
			b.inScope(ScopeSub, body.Span, func() {
				b.stmts(body.Children)
			})
		}

	case ast.KindVarDecl:
		b.varDecl(n, b.cur)

	case ast.KindExprStmt:
		b.expr(n.Child(0))
		b.expr(n.Child(1))

	case ast.KindIfStmt:
		b.expr(n.Child(0))
		b.blockStmt(n.Child(1))
		b.stmt(n.Child(2)) // else Block or elsif IfStmt

	case ast.KindWhileStmt:
		b.expr(n.Child(0))
		b.blockStmt(n.Child(1))

	case ast.KindForeachStmt:
		b.expr(n.Child(1)) // list evaluates outside the body
		body := n.Child(2)
		if body == nil {
			return
		}
		b.inScope(ScopeBlock, body.Span, func() {
			if v := n.Child(0); v != nil {
				if v.Kind == ast.KindVarDecl {
					b.varDecl(v, b.cur)
				}
			}
			b.stmts(body.Children)
		})

	case ast.KindCForStmt:
		b.inScope(ScopeBlock, n.Span, func() {
			if init := n.Child(0); init != nil {
				if init.Kind == ast.KindVarDecl {
					b.varDecl(init, b.cur)
				} else {
					b.expr(init)
				}
			}
			b.expr(n.Child(1))
			b.expr(n.Child(2))
			b.blockStmt(n.Child(3))
		})

	case ast.KindReturnStmt:
		b.expr(n.Child(0))
		b.expr(n.Child(1))

	case ast.KindLastStmt, ast.KindNextStmt:
		b.expr(n.Child(0))

	case ast.KindBlock:
		b.blockStmt(n)

	case ast.KindEvalBlock:
		b.blockStmt(n.Child(0))

	case ast.KindBadStmt:
		// contained parse error, nothing to declare
	}
}

func (b *builder) blockStmt(block *ast.Node) {
	if block == nil {
		return
	}
	b.inScope(ScopeBlock, block.Span, func() {
		b.stmts(block.Children)
	})
}

// expr walks an expression for constructs that open scopes (eval blocks,
// do blocks). Plain references are left to the semantic pass.
func (b *builder) expr(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindEvalBlock:
		b.blockStmt(n.Child(0))
	case ast.KindBlock:
		b.blockStmt(n)
	default:
		for _, c := range n.Children {
			b.expr(c)
		}
	}
}

func (b *builder) varDecl(n *ast.Node, scope ScopeID) {
	flags, target := declFlags(n.Text), n.Child(0)
	targetScope := scope
	if flags&FlagPackageVar != 0 {
		targetScope = b.tab.Root
	}
	// The binding starts after the whole declaration, so the initializer
	// still sees an outer variable of the same name.
	b.declareTargets(target, targetScope, flags, n.Span.End)
	b.expr(n.Child(1))
}

// declareTargets handles single variables and "my ($a, @b)" lists.
func (b *builder) declareTargets(target *ast.Node, scope ScopeID, flags SymbolFlags, visibleFrom uint32) {
	if target == nil {
		return
	}
	switch target.Kind {
	case ast.KindScalarVar:
		b.declareVar(scope, SymbolScalar, target, flags, visibleFrom)
	case ast.KindArrayVar:
		b.declareVar(scope, SymbolArray, target, flags, visibleFrom)
	case ast.KindHashVar:
		b.declareVar(scope, SymbolHash, target, flags, visibleFrom)
	case ast.KindListExpr, ast.KindParenExpr:
		for _, c := range target.Children {
			b.declareTargets(c, scope, flags, visibleFrom)
		}
	}
}

func (b *builder) declareVar(scope ScopeID, kind SymbolKind, target *ast.Node, flags SymbolFlags, visibleFrom uint32) {
	b.tab.Declare(Symbol{
		Name:        b.tab.Strings.Intern(target.Text),
		Kind:        kind,
		Scope:       scope,
		Span:        target.Span,
		VisibleFrom: visibleFrom,
		Flags:       flags,
		Package:     b.pkg,
	})
}

func declFlags(declarator string) SymbolFlags {
	switch declarator {
	case "our":
		return FlagPackageVar
	case "local":
		return FlagDynamic
	default:
		return FlagLexical
	}
}

func (b *builder) declare(kind SymbolKind, name string, span source.Span, flags SymbolFlags) SymbolID {
	return b.declareIn(b.cur, kind, name, span, flags)
}

func (b *builder) declareIn(scope ScopeID, kind SymbolKind, name string, span source.Span, flags SymbolFlags) SymbolID {
	return b.tab.Declare(Symbol{
		Name:    b.tab.Strings.Intern(name),
		Kind:    kind,
		Scope:   scope,
		Span:    span,
		Flags:   flags,
		Package: b.pkg,
	})
}

func (b *builder) inScope(kind ScopeKind, span source.Span, fn func()) {
	prev := b.cur
	b.cur = b.tab.Scopes.New(kind, prev, span)
	fn()
	b.cur = prev
}
