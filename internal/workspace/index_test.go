package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlscope/internal/source"
	"perlscope/internal/symbols"
)

func span(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

func subContribution(uri, name string, decl source.Span, uses ...source.Span) Contribution {
	key := SymbolKey{Name: name}
	c := Contribution{
		Symbols: []SymbolInfo{{
			Key:      key,
			Name:     name,
			Kind:     symbols.SymbolSub,
			Location: Location{URI: uri, Span: decl},
		}},
	}
	c.Refs = append(c.Refs, RefEntry{Key: key, Location: Location{URI: uri, Span: decl}})
	for _, u := range uses {
		c.Refs = append(c.Refs, RefEntry{Key: key, Location: Location{URI: uri, Span: u}})
	}
	return c
}

func TestApplyAndFindReferencesAcrossFiles(t *testing.T) {
	x := NewIndex(Caps{})
	require.NoError(t, x.Apply("file:///a.pl", 1, subContribution("file:///a.pl", "Main::helper", span(4, 10))))
	require.NoError(t, x.Apply("file:///b.pl", 1, Contribution{
		Refs: []RefEntry{{
			Key:      SymbolKey{Name: "Main::helper"},
			Location: Location{URI: "file:///b.pl", Span: span(20, 26)},
		}},
	}))

	locs, partial := x.FindReferences(SymbolKey{Name: "Main::helper"})
	assert.False(t, partial)
	require.Len(t, locs, 2)
	assert.Equal(t, "file:///a.pl", locs[0].URI)
	assert.Equal(t, "file:///b.pl", locs[1].URI)

	def, key, ok := x.FindDefinition(Location{URI: "file:///b.pl", Span: span(22, 22)})
	require.True(t, ok)
	assert.Equal(t, "Main::helper", key.Name)
	assert.Equal(t, "file:///a.pl", def.URI)
	assert.Equal(t, span(4, 10), def.Span)
}

func TestReapplySplicesAtomically(t *testing.T) {
	x := NewIndex(Caps{})
	uri := "file:///a.pl"
	require.NoError(t, x.Apply(uri, 1, subContribution(uri, "Main::old", span(4, 10))))
	require.NoError(t, x.Apply(uri, 2, subContribution(uri, "Main::new", span(4, 10))))

	locs, _ := x.FindReferences(SymbolKey{Name: "Main::old"})
	assert.Empty(t, locs, "previous contribution must be gone")
	locs, _ = x.FindReferences(SymbolKey{Name: "Main::new"})
	assert.Len(t, locs, 1)

	v, ok := x.Version(uri)
	require.True(t, ok)
	assert.Equal(t, int32(2), v)
}

func TestRemovePurgesEverything(t *testing.T) {
	x := NewIndex(Caps{})
	uri := "file:///a.pl"
	require.NoError(t, x.Apply(uri, 1, subContribution(uri, "Main::f", span(4, 5), span(10, 11))))

	x.Remove(uri)

	locs, partial := x.FindReferences(SymbolKey{Name: "Main::f"})
	assert.Empty(t, locs)
	assert.False(t, partial)
	assert.Empty(t, x.WorkspaceSymbols(""))
	assert.Zero(t, x.Files())
	_, ok := x.Version(uri)
	assert.False(t, ok)
}

func TestMaxFilesCap(t *testing.T) {
	x := NewIndex(Caps{MaxFiles: 1})
	require.NoError(t, x.Apply("file:///a.pl", 1, subContribution("file:///a.pl", "Main::a", span(0, 1))))

	err := x.Apply("file:///b.pl", 1, subContribution("file:///b.pl", "Main::b", span(0, 1)))
	require.ErrorIs(t, err, ErrResourceCap)

	state, reason := x.FileState("file:///b.pl")
	assert.Equal(t, StateDegraded, state)
	assert.Equal(t, ReasonResourceCap, reason)
	assert.True(t, x.Partial())

	// Degraded files contribute nothing to symbol search.
	names := []string{}
	for _, s := range x.WorkspaceSymbols("") {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Main::a"}, names)

	// References still answer, flagged partial.
	_, partial := x.FindReferences(SymbolKey{Name: "Main::a"})
	assert.True(t, partial)
}

func TestMaxSymbolsCapRecoversOnReapply(t *testing.T) {
	x := NewIndex(Caps{MaxSymbolsPerFile: 1})
	uri := "file:///big.pl"
	big := Contribution{Symbols: []SymbolInfo{
		{Key: SymbolKey{URI: uri, Name: "$a", Decl: 0}, Name: "$a", Location: Location{URI: uri, Span: span(0, 2)}},
		{Key: SymbolKey{URI: uri, Name: "$b", Decl: 5}, Name: "$b", Location: Location{URI: uri, Span: span(5, 7)}},
	}}
	require.ErrorIs(t, x.Apply(uri, 1, big), ErrResourceCap)
	state, _ := x.FileState(uri)
	assert.Equal(t, StateDegraded, state)

	// A smaller later version clears the sticky marker.
	require.NoError(t, x.Apply(uri, 2, subContribution(uri, "Main::ok", span(0, 2))))
	state, _ = x.FileState(uri)
	assert.Equal(t, StateReady, state)
	assert.False(t, x.Partial())
}

func TestBuildBracketsReportPartial(t *testing.T) {
	x := NewIndex(Caps{})
	assert.Equal(t, StateReady, x.State())

	x.BeginBuild()
	assert.Equal(t, StateBuilding, x.State())
	_, partial := x.FindReferences(SymbolKey{Name: "Main::f"})
	assert.True(t, partial)

	x.FinishBuild()
	assert.Equal(t, StateReady, x.State())
	assert.False(t, x.Partial())
}

func TestWorkspaceSymbolsQuery(t *testing.T) {
	x := NewIndex(Caps{})
	require.NoError(t, x.Apply("file:///b.pl", 1, subContribution("file:///b.pl", "Main::parse_line", span(4, 14))))
	require.NoError(t, x.Apply("file:///a.pl", 1, subContribution("file:///a.pl", "Main::print_all", span(4, 13))))

	got := x.WorkspaceSymbols("PARSE")
	require.Len(t, got, 1)
	assert.Equal(t, "Main::parse_line", got[0].Name)

	all := x.WorkspaceSymbols("")
	require.Len(t, all, 2)
	assert.Equal(t, "file:///a.pl", all[0].Location.URI, "results sorted by URI")
}

func TestKeyAtMissesBetweenRefs(t *testing.T) {
	x := NewIndex(Caps{})
	uri := "file:///a.pl"
	require.NoError(t, x.Apply(uri, 1, subContribution(uri, "Main::f", span(4, 5), span(10, 11))))

	_, ok := x.KeyAt(Location{URI: uri, Span: span(7, 7)})
	assert.False(t, ok)
	key, ok := x.KeyAt(Location{URI: uri, Span: span(10, 10)})
	require.True(t, ok)
	assert.Equal(t, "Main::f", key.Name)
}
