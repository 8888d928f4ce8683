package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlscope/internal/config"
	"perlscope/internal/source"
	"perlscope/internal/workspace"
)

func newEngine(t *testing.T, limits config.Limits) *Engine {
	t.Helper()
	e, err := New(limits)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func openDoc(t *testing.T, e *Engine, uri, text string) {
	t.Helper()
	require.NoError(t, e.OpenDocument(context.Background(), uri, text))
}

func applyAndWait(t *testing.T, e *Engine, uri string, edit source.Edit) {
	t.Helper()
	ticket, err := e.ApplyEdit(uri, edit)
	require.NoError(t, err)
	require.NoError(t, ticket.Wait(context.Background()))
}

func TestDefinitionAndReferencesScenario(t *testing.T) {
	e := newEngine(t, config.Limits{})
	uri := "file:///a.pl"
	src := "my $x = 1; print $x;\n"
	openDoc(t, e, uri, src)

	use := uint32(strings.LastIndex(src, "$x"))
	def, ok, err := e.Definition(uri, use)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uri, def.URI)
	assert.Equal(t, uint32(3), def.Span.Start, "declaration span of my $x")

	locs, partial, err := e.References(uri, use)
	require.NoError(t, err)
	assert.False(t, partial)
	require.Len(t, locs, 2, "declaration plus one use")
	assert.Equal(t, uint32(3), locs[0].Span.Start)
	assert.Equal(t, use, locs[1].Span.Start)
}

func TestInsertStatementKeepsDiagnosticsEmptyAndReuses(t *testing.T) {
	e := newEngine(t, config.Limits{})
	uri := "file:///a.pl"
	src := "my $a = 1;\nmy $b = 2;\nmy $c = 3;\nmy $d = 4;\nmy $e = 5;\nmy $f = 6;\nmy $g = 7;\nmy $h = 8;\n"
	openDoc(t, e, uri, src)

	diags, err := e.Diagnostics(uri)
	require.NoError(t, err)
	assert.Empty(t, diags)

	at := uint32(strings.Index(src, "my $e"))
	applyAndWait(t, e, uri, source.Edit{Start: at, End: at, NewText: "my $x = 0;\n"})

	diags, err = e.Diagnostics(uri)
	require.NoError(t, err)
	assert.Empty(t, diags)

	stats, err := e.ReuseStats(uri)
	require.NoError(t, err)
	assert.False(t, stats.Fallback)
	assert.Greater(t, stats.Reused, 0, "statements around the insertion must be reused")

	snap, err := e.snapshot(uri)
	require.NoError(t, err)
	want := strings.Replace(src, "my $e = 5;", "my $x = 0;\nmy $e = 5;", 1)
	assert.Equal(t, want, snap.File.Text())
}

func TestEvictedArtifactsRederivedOnAccess(t *testing.T) {
	// Single-slot caches: opening the second document evicts the first
	// one's tree and table. Queries and edits against the first document
	// must rebuild them transparently from the retained content.
	e := newEngine(t, config.Limits{TreeCacheSize: 1, TableCacheSize: 1})
	uriA := "file:///a.pl"
	srcA := "my $count = 1;\nprint $count;\n"
	openDoc(t, e, uriA, srcA)
	openDoc(t, e, "file:///b.pl", "my $other = 2;\n")

	snapA, err := e.snapshot(uriA)
	require.NoError(t, err)
	_, cached := e.caches.Table(uriA, snapA.File.Version)
	require.False(t, cached, "b.pl must have displaced a.pl in the one-slot cache")

	use := uint32(strings.LastIndex(srcA, "$count"))
	info, err := e.Hover(uriA, use)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "$count", info.Name)

	def, ok, err := e.Definition(uriA, use)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(3), def.Span.Start)

	_, cached = e.caches.Table(uriA, snapA.File.Version)
	assert.True(t, cached, "the rebuilt table must land back in the cache")

	// An edit still reparses against a re-derived tree.
	applyAndWait(t, e, uriA, source.Edit{Start: 15, End: 15, NewText: "my $more = 3;\n"})
	diags, err := e.Diagnostics(uriA)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestEditsApplyInSubmissionOrder(t *testing.T) {
	e := newEngine(t, config.Limits{})
	uri := "file:///a.pl"
	openDoc(t, e, uri, "my $x = 1;\n")

	t1, err := e.ApplyEdit(uri, source.Edit{Start: 8, End: 9, NewText: "2"})
	require.NoError(t, err)
	t2, err := e.ApplyEdit(uri, source.Edit{Start: 8, End: 9, NewText: "23"})
	require.NoError(t, err)

	require.NoError(t, t1.Wait(context.Background()))
	require.NoError(t, t2.Wait(context.Background()))

	snap, err := e.snapshot(uri)
	require.NoError(t, err)
	assert.Equal(t, "my $x = 23;\n", snap.File.Text())
	v, ok := e.Index().Version(uri)
	require.True(t, ok)
	assert.Equal(t, int32(2), v)
}

func TestCloseDocumentPurgesIndex(t *testing.T) {
	e := newEngine(t, config.Limits{})
	uri := "file:///a.pl"
	src := "sub helper { return 1; }\n"
	openDoc(t, e, uri, src)

	require.NotEmpty(t, e.WorkspaceSymbols("helper"))
	require.NoError(t, e.CloseDocument(uri))

	assert.Empty(t, e.WorkspaceSymbols("helper"))
	locs, _ := e.Index().FindReferences(workspace.SymbolKey{Name: "main::helper"})
	assert.Empty(t, locs)

	_, err := e.Diagnostics(uri)
	assert.ErrorIs(t, err, ErrUnknownDocument)
}

func TestResourceCapDegradesFile(t *testing.T) {
	e := newEngine(t, config.Limits{MaxSymbolsPerFile: 1})
	big := "file:///big.pl"
	err := e.OpenDocument(context.Background(), big, "my $x = 1;\nmy $y = 2;\n")
	require.ErrorIs(t, err, workspace.ErrResourceCap)

	state, reason := e.IndexStateFor(big)
	assert.Equal(t, workspace.StateDegraded, state)
	assert.Equal(t, workspace.ReasonResourceCap, reason)

	small := "file:///small.pl"
	openDoc(t, e, small, "my $z = 3;\n")
	state, _ = e.IndexStateFor(small)
	assert.Equal(t, workspace.StateReady, state)

	// Degraded file contributes nothing; its local queries still work.
	for _, s := range e.WorkspaceSymbols("") {
		assert.NotEqual(t, big, s.Location.URI)
	}
	diags, err := e.Diagnostics(big)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestHoverAndCompletions(t *testing.T) {
	e := newEngine(t, config.Limits{})
	uri := "file:///a.pl"
	src := "my $count = 1;\nprint $count;\n"
	openDoc(t, e, uri, src)

	use := uint32(strings.LastIndex(src, "$count"))
	info, err := e.Hover(uri, use)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "$count", info.Name)
	assert.Equal(t, "scalar", info.Kind)
	assert.Equal(t, "my", info.Detail)
	assert.Equal(t, uint32(3), info.Decl.Start)

	items, err := e.Completions(uri, use)
	require.NoError(t, err)
	labels := []string{}
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "$count")
}

func TestInvalidOffsetRejected(t *testing.T) {
	e := newEngine(t, config.Limits{})
	uri := "file:///a.pl"
	openDoc(t, e, uri, "my $x = \"\xc3\xa9\";\n")

	_, err := e.Hover(uri, 1000)
	assert.ErrorIs(t, err, source.ErrInvalidOffset)

	// Offset inside the two-byte character.
	_, err = e.Hover(uri, 10)
	assert.ErrorIs(t, err, source.ErrInvalidOffset)
}

func TestRenameApplyAcrossOccurrences(t *testing.T) {
	e := newEngine(t, config.Limits{})
	uri := "file:///a.pl"
	src := "my $x = 1;\nprint $x;\n"
	openDoc(t, e, uri, src)

	use := uint32(strings.LastIndex(src, "$x"))
	span, err := e.RenamePrepare(uri, use)
	require.NoError(t, err)
	assert.Equal(t, use, span.Start)

	we, err := e.RenameApply(uri, use, "count")
	require.NoError(t, err)
	edits := we.Changes[uri]
	require.Len(t, edits, 2)

	text := []byte(src)
	for i := len(edits) - 1; i >= 0; i-- {
		ed := edits[i]
		text = append(text[:ed.Start], append([]byte(ed.NewText), text[ed.End:]...)...)
	}
	assert.Equal(t, "my $count = 1;\nprint $count;\n", string(text))
}

func TestRenameErrors(t *testing.T) {
	e := newEngine(t, config.Limits{})
	uri := "file:///a.pl"
	src := "my $x = 1;\nmy $y = 2;\nprint $x;\n"
	openDoc(t, e, uri, src)

	// Offset on whitespace has no symbol.
	_, err := e.RenamePrepare(uri, 10)
	assert.ErrorIs(t, err, ErrUnresolvable)

	// Builtins are not renameable.
	printOff := uint32(strings.LastIndex(src, "print"))
	_, err = e.RenamePrepare(uri, printOff)
	assert.ErrorIs(t, err, ErrUnresolvable)

	// Renaming $x to $y collides in the file scope.
	use := uint32(strings.LastIndex(src, "$x"))
	_, err = e.RenameApply(uri, use, "$y")
	assert.ErrorIs(t, err, ErrConflict)

	// A partial index blocks renames instead of missing occurrences.
	e.Index().BeginBuild()
	_, err = e.RenameApply(uri, use, "$z")
	assert.ErrorIs(t, err, ErrPartialIndex)
	e.Index().FinishBuild()
}

func TestScanWarmsFromDiskCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "lib.pl"),
		[]byte("package Util;\nsub helper { return 1; }\n"), 0o644))

	cacheDir := t.TempDir()
	dc, err := workspace.NewDiskCache(cacheDir)
	require.NoError(t, err)

	e1, err := New(config.Limits{}, WithDiskCache(dc))
	require.NoError(t, err)
	res, err := e1.Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scanned)
	assert.Zero(t, res.Cached)
	assert.NotEmpty(t, e1.WorkspaceSymbols("helper"))
	assert.Equal(t, workspace.StateReady, e1.IndexState())
	e1.Close()

	dc2, err := workspace.NewDiskCache(cacheDir)
	require.NoError(t, err)
	e2, err := New(config.Limits{}, WithDiskCache(dc2))
	require.NoError(t, err)
	defer e2.Close()

	res, err = e2.Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cached, "second scan must hit the disk cache")
	assert.NotEmpty(t, e2.WorkspaceSymbols("helper"))
}

func TestScanCancellation(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pl", "b.pl"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("my $x = 1;\n"), 0o644))
	}
	e := newEngine(t, config.Limits{ScanWorkers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Scan(ctx, dir)
	assert.True(t, errors.Is(err, context.Canceled) || err == nil,
		"cancelled scan either stops with ctx.Err or had already finished")
}
