package sema

import (
	"fmt"
	"strings"

	"perlscope/internal/ast"
	"perlscope/internal/diag"
	"perlscope/internal/symbols"
)

type handler func(w *walker, n *ast.Node)

// handlers is indexed by NodeKind. Every kind must have an entry; init
// verifies completeness so a new kind cannot slip past the analyzer.
var handlers = make([]handler, ast.KindCount())

func init() {
	walkChildren := func(w *walker, n *ast.Node) {
		for _, c := range n.Children {
			w.walk(c)
		}
	}
	nothing := func(*walker, *ast.Node) {}

	handlers[ast.KindInvalid] = nothing
	handlers[ast.KindFile] = walkChildren

	handlers[ast.KindPackageDecl] = (*walker).packageDecl
	handlers[ast.KindUseDecl] = (*walker).useDecl
	handlers[ast.KindSubDecl] = (*walker).subDecl
	handlers[ast.KindVarDecl] = (*walker).varDecl
	handlers[ast.KindExprStmt] = walkChildren
	handlers[ast.KindIfStmt] = walkChildren
	handlers[ast.KindWhileStmt] = walkChildren
	handlers[ast.KindForeachStmt] = walkChildren
	handlers[ast.KindCForStmt] = walkChildren
	handlers[ast.KindReturnStmt] = walkChildren
	handlers[ast.KindLastStmt] = walkChildren
	handlers[ast.KindNextStmt] = walkChildren
	handlers[ast.KindBlock] = walkChildren
	handlers[ast.KindEvalBlock] = walkChildren
	handlers[ast.KindBadStmt] = nothing

	handlers[ast.KindScalarVar] = (*walker).scalarVar
	handlers[ast.KindArrayVar] = (*walker).plainVar
	handlers[ast.KindHashVar] = (*walker).plainVar
	handlers[ast.KindIdent] = (*walker).identCall
	handlers[ast.KindNumberLit] = nothing
	handlers[ast.KindStringLit] = nothing
	handlers[ast.KindRegexLit] = nothing
	handlers[ast.KindQwList] = nothing
	handlers[ast.KindListExpr] = walkChildren
	handlers[ast.KindParenExpr] = walkChildren
	handlers[ast.KindCallExpr] = (*walker).callExpr
	handlers[ast.KindMethodCall] = (*walker).methodCall
	handlers[ast.KindIndexExpr] = (*walker).indexExpr
	handlers[ast.KindKeyExpr] = (*walker).keyExpr
	handlers[ast.KindBinaryExpr] = walkChildren
	handlers[ast.KindUnaryExpr] = walkChildren
	handlers[ast.KindAssignExpr] = walkChildren
	handlers[ast.KindTernaryExpr] = walkChildren
	handlers[ast.KindBadExpr] = nothing

	for k := range handlers {
		if handlers[k] == nil {
			panic(fmt.Sprintf("sema: no handler for node kind %v", ast.NodeKind(k)))
		}
	}
}

func (w *walker) walk(n *ast.Node) {
	if n == nil {
		return
	}
	handlers[n.Kind](w, n)
}

func (w *walker) packageDecl(n *ast.Node) {
	if name := n.Name(); name != nil {
		w.emit(name.Span, TokPackage)
	}
}

func (w *walker) useDecl(n *ast.Node) {
	// Import list arguments carry no resolvable references.
	if name := n.Name(); name != nil {
		w.emit(name.Span, TokPackage)
	}
}

func (w *walker) subDecl(n *ast.Node) {
	if name := n.Name(); name != nil {
		w.emit(name.Span, TokFunction)
	}
	w.walk(n.Child(1))
}

// varDecl skips the declaration target (its reference comes from the
// symbol table) and analyzes only the initializer.
func (w *walker) varDecl(n *ast.Node) {
	w.walk(n.Child(1))
}

func (w *walker) scalarVar(n *ast.Node) {
	w.resolveVar(n, n.Text)
}

func (w *walker) plainVar(n *ast.Node) {
	w.resolveVar(n, n.Text)
}

// identCall handles a bareword in expression position: a call without
// parens or arguments ("my $n = shift;").
func (w *walker) identCall(n *ast.Node) {
	w.resolveFunc(n)
}

func (w *walker) callExpr(n *ast.Node) {
	if callee := n.Child(0); callee != nil && callee.Kind == ast.KindIdent {
		w.resolveFunc(callee)
	}
	for _, arg := range n.Children[1:] {
		w.walk(arg)
	}
}

func (w *walker) methodCall(n *ast.Node) {
	if inv := n.Child(0); inv != nil && inv.Kind == ast.KindIdent {
		w.emit(inv.Span, TokPackage) // class-method invocant
	} else {
		w.walk(n.Child(0))
	}
	// Method dispatch is dynamic; the name gets a token but no binding.
	if m := n.Child(1); m != nil && m.Kind == ast.KindIdent {
		w.emit(m.Span, TokFunction)
	}
	for i := 2; i < len(n.Children); i++ {
		w.walk(n.Children[i])
	}
}

// indexExpr resolves "$xs[0]" against @xs the way perl element access
// does, falling back to the scalar itself for "$ref[0]" typos so the
// diagnostic names what the user wrote.
func (w *walker) indexExpr(n *ast.Node) {
	base := n.Child(0)
	if base != nil && base.Kind == ast.KindScalarVar {
		w.resolveElemVar(base, '@')
	} else {
		w.walk(base)
	}
	w.walk(n.Child(1))
}

func (w *walker) keyExpr(n *ast.Node) {
	base := n.Child(0)
	if base != nil && base.Kind == ast.KindScalarVar {
		w.resolveElemVar(base, '%')
	} else {
		w.walk(base)
	}
	if key := n.Child(1); key != nil && key.Kind != ast.KindStringLit {
		w.walk(key)
	}
}

func (w *walker) resolveVar(n *ast.Node, name string) {
	id := w.tab.ResolveAt(n.Span.Start, w.tab.Strings.Intern(name))
	switch {
	case id.IsValid():
		w.addRef(n, name, id, RefUse)
	case IsBuiltinVar(name):
		w.addRef(n, name, symbols.NoSymbolID, RefBuiltin)
	default:
		w.report(diag.SemUnresolvedVariable, n.Span, "undeclared variable "+name)
	}
}

// resolveElemVar tries the container sigil first ($xs[0] uses @xs), then
// the scalar spelling.
func (w *walker) resolveElemVar(n *ast.Node, sigil byte) {
	container := string(sigil) + n.Text[1:]
	if id := w.tab.ResolveAt(n.Span.Start, w.tab.Strings.Intern(container)); id.IsValid() {
		w.addRef(n, container, id, RefUse)
		return
	}
	w.resolveVar(n, n.Text)
}

func (w *walker) resolveFunc(n *ast.Node) {
	name := n.Text
	w.emit(n.Span, TokFunction)
	if strings.Contains(name, "::") {
		// Package-qualified calls resolve at workspace level, not here.
		w.addRef(n, name, symbols.NoSymbolID, RefUse)
		return
	}
	id := w.tab.ResolveAt(n.Span.Start, w.tab.Strings.Intern(name))
	switch {
	case id.IsValid():
		w.addRef(n, name, id, RefUse)
	case IsBuiltinFunc(name):
		w.addRef(n, name, symbols.NoSymbolID, RefBuiltin)
	default:
		w.report(diag.SemUnresolvedIdentifier, n.Span, "unresolved subroutine "+name)
	}
}
