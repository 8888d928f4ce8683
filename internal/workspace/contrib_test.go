package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlscope/internal/parser"
	"perlscope/internal/sema"
	"perlscope/internal/source"
	"perlscope/internal/symbols"
)

func contributionFor(t *testing.T, uri, src string) Contribution {
	t.Helper()
	f := source.NewFile(0, uri, []byte(src), 0)
	tree := parser.Parse(f, parser.Options{})
	tab := symbols.Build(f, tree, nil)
	res, err := sema.Analyze(context.Background(), f, tree, tab)
	require.NoError(t, err)
	return BuildContribution(uri, tab, res.Refs)
}

func TestBuildContributionKeys(t *testing.T) {
	uri := "file:///lib.pl"
	c := contributionFor(t, uri, "package Util;\nsub helper { return 1; }\nmy $count = 0;\n")

	byName := map[string]SymbolInfo{}
	for _, s := range c.Symbols {
		byName[s.Name] = s
	}

	sub, ok := byName["helper"]
	require.True(t, ok)
	assert.True(t, sub.Key.Global(), "subs are workspace-global")
	assert.Equal(t, "Util::helper", sub.Key.Name)

	scalar, ok := byName["$count"]
	require.True(t, ok)
	assert.False(t, scalar.Key.Global(), "lexicals stay file-private")
	assert.Equal(t, uri, scalar.Key.URI)
	assert.Equal(t, scalar.Location.Span.Start, scalar.Key.Decl)
}

func TestCrossFileReferencesThroughIndex(t *testing.T) {
	x := NewIndex(Caps{})
	lib := "file:///lib.pl"
	app := "file:///app.pl"
	require.NoError(t, x.Apply(lib, 1, contributionFor(t, lib, "package Util;\nsub helper { return 1; }\n")))
	require.NoError(t, x.Apply(app, 1, contributionFor(t, app, "my $v = Util::helper();\n")))

	locs, partial := x.FindReferences(SymbolKey{Name: "Util::helper"})
	assert.False(t, partial)
	require.Len(t, locs, 2, "declaration in lib plus call in app")

	uris := map[string]bool{}
	for _, l := range locs {
		uris[l.URI] = true
	}
	assert.True(t, uris[lib] && uris[app])

	// The qualified call site resolves to the lib declaration.
	callStart := uint32(8) // offset of Util::helper in app.pl
	def, _, ok := x.FindDefinition(Location{URI: app, Span: source.Span{Start: callStart, End: callStart}})
	require.True(t, ok)
	assert.Equal(t, lib, def.URI)
}
