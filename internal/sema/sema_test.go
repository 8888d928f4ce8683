package sema

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"perlscope/internal/diag"
	"perlscope/internal/parser"
	"perlscope/internal/source"
	"perlscope/internal/symbols"
)

func analyzeSrc(t *testing.T, src string) *Result {
	t.Helper()
	f := source.NewFile(0, "test.pl", []byte(src), 0)
	tree := parser.Parse(f, parser.Options{})
	tab := symbols.Build(f, tree, nil)
	res, err := Analyze(context.Background(), f, tree, tab)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return res
}

func diagCodes(res *Result) []diag.Code {
	var out []diag.Code
	for _, d := range res.Diags {
		out = append(out, d.Code)
	}
	return out
}

func TestResolvesLocalReference(t *testing.T) {
	src := "my $x = 1;\nprint $x;\n"
	res := analyzeSrc(t, src)
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diags)
	}

	use := uint32(strings.LastIndex(src, "$x"))
	var decl, ref *Reference
	for i := range res.Refs {
		r := &res.Refs[i]
		switch {
		case r.Kind == RefDecl && r.Span.Start == 3:
			decl = r
		case r.Kind == RefUse && r.Span.Start == use:
			ref = r
		}
	}
	if decl == nil || ref == nil {
		t.Fatalf("missing decl/use references: %+v", res.Refs)
	}
	if ref.Symbol != decl.Symbol {
		t.Fatalf("use bound to %d, decl is %d", ref.Symbol, decl.Symbol)
	}
}

func TestUnresolvedVariable(t *testing.T) {
	res := analyzeSrc(t, "print $nope;\n")
	codes := diagCodes(res)
	if len(codes) != 1 || codes[0] != diag.SemUnresolvedVariable {
		t.Fatalf("diagnostics = %v, want one unresolved-variable", codes)
	}
}

func TestBuiltinsResolveSilently(t *testing.T) {
	res := analyzeSrc(t, "my $n = shift;\nprint $_;\npush @ARGV, $n;\n")
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diags)
	}
	builtins := 0
	for _, r := range res.Refs {
		if r.Kind == RefBuiltin {
			builtins++
		}
	}
	if builtins < 3 {
		t.Fatalf("builtin references = %d, want shift, $_ and @ARGV", builtins)
	}
}

func TestElementAccessUsesContainer(t *testing.T) {
	src := "my @xs = (1, 2);\nmy $first = $xs[0];\nmy %h = ();\nmy $v = $h{key};\n"
	res := analyzeSrc(t, src)
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diags)
	}
}

func TestShadowingNote(t *testing.T) {
	res := analyzeSrc(t, "my $x = 1;\nmy $x = 2;\n")
	codes := diagCodes(res)
	if len(codes) != 1 || codes[0] != diag.SemRedeclaration {
		t.Fatalf("diagnostics = %v, want one redeclaration note", codes)
	}
	if res.Diags[0].Severity != diag.SevInfo {
		t.Fatalf("severity = %v, want info", res.Diags[0].Severity)
	}
}

func TestPresentationTokens(t *testing.T) {
	src := "# comment\nmy $x = 1;\n"
	res := analyzeSrc(t, src)

	seen := map[TokenType]bool{}
	for i, tok := range res.Tokens {
		seen[tok.Type] = true
		if i > 0 && res.Tokens[i-1].Span.Start > tok.Span.Start {
			t.Fatal("tokens are not span-sorted")
		}
	}
	for _, want := range []TokenType{TokComment, TokKeyword, TokVariable, TokNumber, TokOperator} {
		if !seen[want] {
			t.Fatalf("missing %v token in %v", want, res.Tokens)
		}
	}
}

func TestDeterministicOutput(t *testing.T) {
	src := "my $x = 1;\nsub f { return $x; }\nf();\nprint $x;\n"
	a := analyzeSrc(t, src)
	b := analyzeSrc(t, src)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two analyses of the same input differ")
	}
}

func TestCancellationBetweenStatements(t *testing.T) {
	f := source.NewFile(0, "test.pl", []byte("my $x = 1;\nprint $x;\n"), 0)
	tree := parser.Parse(f, parser.Options{})
	tab := symbols.Build(f, tree, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Analyze(ctx, f, tree, tab)
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if res != nil {
		t.Fatal("cancelled analyze must discard output")
	}
}
