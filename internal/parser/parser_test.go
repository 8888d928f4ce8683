package parser

import (
	"testing"

	"perlscope/internal/ast"
	"perlscope/internal/diag"
	"perlscope/internal/source"
)

func parseSrc(t *testing.T, src string) (*ast.Node, *diag.Bag) {
	t.Helper()
	f := source.NewFile(0, "test.pl", []byte(src), 0)
	bag := diag.NewBag(32)
	tree := Parse(f, Options{Reporter: diag.BagReporter{Bag: bag}})
	if tree == nil || tree.Kind != ast.KindFile {
		t.Fatalf("Parse returned %v, want File root", tree)
	}
	return tree, bag
}

func wantKind(t *testing.T, n *ast.Node, kind ast.NodeKind) {
	t.Helper()
	if n == nil {
		t.Fatalf("node is nil, want %v", kind)
	}
	if n.Kind != kind {
		t.Fatalf("node kind = %v, want %v", n.Kind, kind)
	}
}

func TestParseVarDecl(t *testing.T) {
	tree, bag := parseSrc(t, `my $x = 1;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(tree.Children) != 1 {
		t.Fatalf("statements = %d, want 1", len(tree.Children))
	}
	decl := tree.Children[0]
	wantKind(t, decl, ast.KindVarDecl)
	if decl.Text != "my" {
		t.Fatalf("decl text = %q, want my", decl.Text)
	}
	wantKind(t, decl.Child(0), ast.KindScalarVar)
	if decl.Child(0).Text != "$x" {
		t.Fatalf("target = %q, want $x", decl.Child(0).Text)
	}
	wantKind(t, decl.Child(1), ast.KindNumberLit)
}

func TestParsePackageUseSub(t *testing.T) {
	src := `package Foo::Bar;
use strict;
use List::Util qw(first max);
sub greet {
    print "hi";
    return 1;
}
`
	tree, bag := parseSrc(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(tree.Children) != 4 {
		t.Fatalf("statements = %d, want 4", len(tree.Children))
	}

	pkg := tree.Children[0]
	wantKind(t, pkg, ast.KindPackageDecl)
	if pkg.Name().Text != "Foo::Bar" {
		t.Fatalf("package name = %q", pkg.Name().Text)
	}

	use := tree.Children[2]
	wantKind(t, use, ast.KindUseDecl)
	if use.Name().Text != "List::Util" {
		t.Fatalf("use module = %q", use.Name().Text)
	}
	wantKind(t, use.Child(1), ast.KindQwList)

	sub := tree.Children[3]
	wantKind(t, sub, ast.KindSubDecl)
	if sub.Name().Text != "greet" {
		t.Fatalf("sub name = %q", sub.Name().Text)
	}
	body := sub.Child(1)
	wantKind(t, body, ast.KindBlock)
	if len(body.Children) != 2 {
		t.Fatalf("sub body statements = %d, want 2", len(body.Children))
	}
	call := body.Children[0].Child(0)
	wantKind(t, call, ast.KindCallExpr)
	if call.Name().Text != "print" {
		t.Fatalf("callee = %q", call.Name().Text)
	}
	wantKind(t, body.Children[1], ast.KindReturnStmt)
	wantKind(t, body.Children[1].Child(0), ast.KindNumberLit)
}

func TestParseControlFlow(t *testing.T) {
	src := `if ($x > 1) { $y = 2; } elsif ($x) { } else { }
while ($i < 10) { $i++; }
foreach my $item (@list) { print $item; }
for (my $i = 0; $i < 5; $i++) { }
`
	tree, bag := parseSrc(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(tree.Children) != 4 {
		t.Fatalf("statements = %d, want 4", len(tree.Children))
	}

	ifs := tree.Children[0]
	wantKind(t, ifs, ast.KindIfStmt)
	wantKind(t, ifs.Child(0), ast.KindBinaryExpr)
	wantKind(t, ifs.Child(1), ast.KindBlock)
	elsif := ifs.Child(2)
	wantKind(t, elsif, ast.KindIfStmt)
	if elsif.Text != "elsif" {
		t.Fatalf("elsif text = %q", elsif.Text)
	}
	wantKind(t, elsif.Child(2), ast.KindBlock)

	whiles := tree.Children[1]
	wantKind(t, whiles, ast.KindWhileStmt)
	inc := whiles.Child(1).Children[0].Child(0)
	wantKind(t, inc, ast.KindUnaryExpr)
	if inc.Text != "++" {
		t.Fatalf("increment text = %q", inc.Text)
	}

	foreach := tree.Children[2]
	wantKind(t, foreach, ast.KindForeachStmt)
	wantKind(t, foreach.Child(0), ast.KindVarDecl)
	wantKind(t, foreach.Child(0).Child(0), ast.KindScalarVar)
	wantKind(t, foreach.Child(1), ast.KindArrayVar)

	cfor := tree.Children[3]
	wantKind(t, cfor, ast.KindCForStmt)
	wantKind(t, cfor.Child(0), ast.KindVarDecl)
	wantKind(t, cfor.Child(1), ast.KindBinaryExpr)
	wantKind(t, cfor.Child(2), ast.KindUnaryExpr)
	wantKind(t, cfor.Child(3), ast.KindBlock)
}

func TestParseStatementModifiers(t *testing.T) {
	tree, bag := parseSrc(t, "print $x if $ok;\nnext if $done;\nreturn $v unless $w;\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}

	stmt := tree.Children[0]
	wantKind(t, stmt, ast.KindExprStmt)
	if stmt.Text != "if" {
		t.Fatalf("modifier = %q, want if", stmt.Text)
	}
	wantKind(t, stmt.Child(0), ast.KindCallExpr)
	wantKind(t, stmt.Child(1), ast.KindScalarVar)

	next := tree.Children[1]
	wantKind(t, next, ast.KindNextStmt)
	if next.Text != "if" {
		t.Fatalf("next modifier = %q", next.Text)
	}

	ret := tree.Children[2]
	wantKind(t, ret, ast.KindReturnStmt)
	if ret.Text != "unless" {
		t.Fatalf("return modifier = %q", ret.Text)
	}
	wantKind(t, ret.Child(0), ast.KindScalarVar)
	wantKind(t, ret.Child(1), ast.KindScalarVar)
}

func TestParsePrecedence(t *testing.T) {
	tree, bag := parseSrc(t, `$x = 1 + 2 * 3;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	assign := tree.Children[0].Child(0)
	wantKind(t, assign, ast.KindAssignExpr)
	sum := assign.Child(1)
	wantKind(t, sum, ast.KindBinaryExpr)
	if sum.Text != "+" {
		t.Fatalf("top operator = %q, want +", sum.Text)
	}
	prod := sum.Child(1)
	wantKind(t, prod, ast.KindBinaryExpr)
	if prod.Text != "*" {
		t.Fatalf("nested operator = %q, want *", prod.Text)
	}
}

func TestParseRegexVsDivision(t *testing.T) {
	tree, bag := parseSrc(t, "$x = $y / 2;\n$z =~ /foo/;\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	div := tree.Children[0].Child(0).Child(1)
	wantKind(t, div, ast.KindBinaryExpr)
	if div.Text != "/" {
		t.Fatalf("operator = %q, want /", div.Text)
	}
	match := tree.Children[1].Child(0)
	wantKind(t, match, ast.KindBinaryExpr)
	if match.Text != "=~" {
		t.Fatalf("operator = %q, want =~", match.Text)
	}
	wantKind(t, match.Child(1), ast.KindRegexLit)
}

func TestParseMethodChain(t *testing.T) {
	tree, bag := parseSrc(t, `$obj->method($a)->{key}[0];`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	idx := tree.Children[0].Child(0)
	wantKind(t, idx, ast.KindIndexExpr)
	key := idx.Child(0)
	wantKind(t, key, ast.KindKeyExpr)
	wantKind(t, key.Child(1), ast.KindStringLit)
	if key.Child(1).Text != "key" {
		t.Fatalf("hash key = %q", key.Child(1).Text)
	}
	call := key.Child(0)
	wantKind(t, call, ast.KindMethodCall)
	if call.Name().Text != "method" {
		t.Fatalf("method name = %q", call.Name().Text)
	}
	wantKind(t, call.Child(0), ast.KindScalarVar)
	wantKind(t, call.Child(2), ast.KindScalarVar)
}

func TestParseErrorContainment(t *testing.T) {
	tree, bag := parseSrc(t, "my = 5;\nprint \"ok\";\n")
	if !bag.HasErrors() {
		t.Fatal("expected a syntax error")
	}
	if len(tree.Children) != 2 {
		t.Fatalf("statements = %d, want 2", len(tree.Children))
	}
	wantKind(t, tree.Children[0], ast.KindBadStmt)
	wantKind(t, tree.Children[1], ast.KindExprStmt)
	call := tree.Children[1].Child(0)
	wantKind(t, call, ast.KindCallExpr)
}

func TestParseUnclosedBlock(t *testing.T) {
	tree, bag := parseSrc(t, "sub f { print 1;\n")
	if !bag.HasErrors() {
		t.Fatal("expected a syntax error for the unclosed block")
	}
	if len(tree.Children) == 0 {
		t.Fatal("expected the partial sub to be kept in the tree")
	}
	wantKind(t, tree.Children[0], ast.KindSubDecl)
}

func TestParseRootSpanCoversFile(t *testing.T) {
	src := "my $x = 1;\nprint $x;\n"
	tree, _ := parseSrc(t, src)
	if tree.Span.Start != 0 || tree.Span.End != uint32(len(src)) {
		t.Fatalf("root span = %v, want 0-%d", tree.Span, len(src))
	}
}

func TestParseMaxErrors(t *testing.T) {
	f := source.NewFile(0, "bad.pl", []byte("my = 1;\nmy = 2;\nmy = 3;\n"), 0)
	bag := diag.NewBag(32)
	Parse(f, Options{Reporter: diag.BagReporter{Bag: bag}, MaxErrors: 1})
	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1 with MaxErrors 1", bag.Len())
	}
}
