package symbols

import (
	"strings"
	"testing"

	"perlscope/internal/parser"
	"perlscope/internal/source"
)

func buildSrc(t *testing.T, src string) *Table {
	t.Helper()
	f := source.NewFile(0, "test.pl", []byte(src), 0)
	tree := parser.Parse(f, parser.Options{})
	return Build(f, tree, nil)
}

func offsetOf(t *testing.T, src, marker string) uint32 {
	t.Helper()
	at := strings.Index(src, marker)
	if at < 0 {
		t.Fatalf("marker %q not found", marker)
	}
	return uint32(at)
}

func TestThreeLevelShadowing(t *testing.T) {
	src := `my $x = 1;
sub f {
    my $x = 2;
    if ($x) {
        my $x = 3;
        print $x; # inner
    }
    print $x; # middle
}
print $x; # outer
`
	tab := buildSrc(t, src)
	name := tab.Strings.Intern("$x")

	decls := tab.Declarations(name)
	if len(decls) != 3 {
		t.Fatalf("declarations = %d, want 3", len(decls))
	}

	cases := []struct {
		marker string
		decl   string
	}{
		{"$x; # inner", "my $x = 3"},
		{"$x; # middle", "my $x = 2"},
		{"$x; # outer", "my $x = 1"},
	}
	for _, tc := range cases {
		use := offsetOf(t, src, tc.marker)
		id := tab.ResolveAt(use, name)
		if !id.IsValid() {
			t.Fatalf("%s: unresolved", tc.marker)
		}
		wantStart := offsetOf(t, src, tc.decl) + 3 // skip "my "
		if got := tab.Symbols.Get(id).Span.Start; got != wantStart {
			t.Fatalf("%s: resolved to decl at %d, want %d", tc.marker, got, wantStart)
		}
	}
}

func TestRedeclarationLastWins(t *testing.T) {
	src := "my $y = 1;\nmy $y = 2;\nprint $y;\n"
	tab := buildSrc(t, src)
	name := tab.Strings.Intern("$y")

	decls := tab.Declarations(name)
	if len(decls) != 2 {
		t.Fatalf("declarations = %d, want both retained", len(decls))
	}

	id := tab.ResolveAt(offsetOf(t, src, "$y;"), name)
	second := offsetOf(t, src, "my $y = 2") + 3
	if got := tab.Symbols.Get(id).Span.Start; got != second {
		t.Fatalf("resolved to decl at %d, want the later one at %d", got, second)
	}
}

func TestInitializerSeesOuterBinding(t *testing.T) {
	src := "my $z = 1;\n{\n    my $z = $z;\n}\n"
	tab := buildSrc(t, src)
	name := tab.Strings.Intern("$z")

	use := uint32(strings.LastIndex(src, "$z"))
	id := tab.ResolveAt(use, name)
	if !id.IsValid() {
		t.Fatal("initializer reference unresolved")
	}
	if got := tab.Symbols.Get(id).Span.Start; got != 3 {
		t.Fatalf("initializer bound to decl at %d, want the outer one at 3", got)
	}
}

func TestForeachVariableScopedToBody(t *testing.T) {
	src := "foreach my $item (@items) { print $item; }\nprint $item;\n"
	tab := buildSrc(t, src)
	name := tab.Strings.Intern("$item")

	inside := offsetOf(t, src, "$item; }")
	if !tab.ResolveAt(inside, name).IsValid() {
		t.Fatal("loop variable unresolved inside the body")
	}
	outside := uint32(strings.LastIndex(src, "$item"))
	if tab.ResolveAt(outside, name).IsValid() {
		t.Fatal("loop variable leaked out of the body")
	}
}

func TestOurVariableIsFileWide(t *testing.T) {
	src := "sub f {\n    our $g = 1;\n}\nprint $g;\n"
	tab := buildSrc(t, src)
	name := tab.Strings.Intern("$g")

	id := tab.ResolveAt(offsetOf(t, src, "$g;"), name)
	if !id.IsValid() {
		t.Fatal("our variable not visible at file level")
	}
	if tab.Symbols.Get(id).Flags&FlagPackageVar == 0 {
		t.Fatal("expected the package-variable flag")
	}
}

func TestSubsAndSigilsAreDistinct(t *testing.T) {
	src := "my $count = 0;\nmy @count = ();\nsub count { return 1; }\ncount();\n"
	tab := buildSrc(t, src)

	scalar := tab.ResolveAt(uint32(len(src))-1, tab.Strings.Intern("$count"))
	array := tab.ResolveAt(uint32(len(src))-1, tab.Strings.Intern("@count"))
	sub := tab.ResolveAt(uint32(len(src))-1, tab.Strings.Intern("count"))
	if !scalar.IsValid() || !array.IsValid() || !sub.IsValid() {
		t.Fatal("expected all three namespaces to resolve")
	}
	if tab.Symbols.Get(scalar).Kind != SymbolScalar ||
		tab.Symbols.Get(array).Kind != SymbolArray ||
		tab.Symbols.Get(sub).Kind != SymbolSub {
		t.Fatal("kinds do not follow the sigils")
	}
}

func TestScopeAt(t *testing.T) {
	src := "my $a = 1;\nsub f {\n    my $b = 2;\n}\n"
	tab := buildSrc(t, src)

	if got := tab.Scopes.Get(tab.ScopeAt(0)).Kind; got != ScopeFile {
		t.Fatalf("scope at 0 = %v, want file", got)
	}
	inSub := offsetOf(t, src, "$b")
	if got := tab.Scopes.Get(tab.ScopeAt(inSub)).Kind; got != ScopeSub {
		t.Fatalf("scope in sub = %v, want sub", got)
	}
}
