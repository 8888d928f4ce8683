// Package engine is the query façade over the parse and index pipeline.
// It owns every open document, the shared interner and the workspace
// index; protocol shims and the CLI talk only to this package.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"perlscope/internal/ast"
	"perlscope/internal/config"
	"perlscope/internal/diag"
	"perlscope/internal/parser"
	"perlscope/internal/sema"
	"perlscope/internal/source"
	"perlscope/internal/symbols"
	"perlscope/internal/workspace"
)

var (
	ErrUnknownDocument = errors.New("unknown document")
	ErrEngineClosed    = errors.New("engine closed")
)

const maxDiagnostics = 256

// Snapshot is the last committed state of one document. Snapshots are
// immutable; queries read whichever one was current when they started.
// The syntax tree and symbol table live in the bounded LRU caches and are
// re-derived from the retained content when evicted, so a snapshot only
// pins what cannot be rebuilt.
type Snapshot struct {
	File  *source.File
	Sema  *sema.Result
	Diags []diag.Diagnostic
	Stats parser.ReuseStats
}

type job struct {
	text   []byte      // full text on open
	edit   *source.Edit
	ticket *Ticket
}

type document struct {
	uri  string
	jobs chan job
	snap atomic.Pointer[Snapshot]
}

// Engine coordinates documents, their pipelines and the shared index.
type Engine struct {
	limits   config.Limits
	interner *source.Interner
	index    *workspace.Index
	caches   *workspace.Caches
	disk     *workspace.DiskCache

	mu     sync.Mutex
	docs   map[string]*document
	nextID atomic.Uint32
	closed bool
	wg     sync.WaitGroup
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithDiskCache attaches a warm-start disk cache used by Scan.
func WithDiskCache(dc *workspace.DiskCache) Option {
	return func(e *Engine) { e.disk = dc }
}

// New builds an engine from limits. Limits are consumed here once and
// never renegotiated mid-session.
func New(limits config.Limits, opts ...Option) (*Engine, error) {
	caches, err := workspace.NewCaches(limits.TreeCacheSize, limits.TableCacheSize)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		limits:   limits,
		interner: source.NewInterner(),
		index: workspace.NewIndex(workspace.Caps{
			MaxFiles:          limits.MaxFiles,
			MaxSymbolsPerFile: limits.MaxSymbolsPerFile,
		}),
		caches: caches,
		docs:   make(map[string]*document),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// OpenDocument registers a document and runs its first pipeline pass.
// It returns once the document is queryable and indexed.
func (e *Engine) OpenDocument(ctx context.Context, uri, text string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	if _, ok := e.docs[uri]; ok {
		e.mu.Unlock()
		return fmt.Errorf("document %s already open", uri)
	}
	doc := &document{uri: uri, jobs: make(chan job, 16)}
	e.docs[uri] = doc
	e.wg.Add(1)
	go e.runPipeline(doc)
	e.mu.Unlock()

	t := newTicket()
	doc.jobs <- job{text: []byte(text), ticket: t}
	return t.Wait(ctx)
}

// ApplyEdit queues a byte-range replacement for the document. Edits of
// one document are processed strictly in submission order; the returned
// ticket resolves when this edit's version is fully indexed.
func (e *Engine) ApplyEdit(uri string, edit source.Edit) (*Ticket, error) {
	doc, err := e.doc(uri)
	if err != nil {
		return nil, err
	}
	t := newTicket()
	doc.jobs <- job{edit: &edit, ticket: t}
	return t, nil
}

// CloseDocument stops the document's pipeline and purges its caches and
// index contributions.
func (e *Engine) CloseDocument(uri string) error {
	e.mu.Lock()
	doc, ok := e.docs[uri]
	if ok {
		delete(e.docs, uri)
	}
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	close(doc.jobs)
	e.caches.Purge(uri)
	e.index.Remove(uri)
	return nil
}

// Close shuts down every document pipeline.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	for uri, doc := range e.docs {
		close(doc.jobs)
		delete(e.docs, uri)
	}
	e.mu.Unlock()
	e.wg.Wait()
}

// Index exposes the workspace index for read-side collaborators.
func (e *Engine) Index() *workspace.Index { return e.index }

func (e *Engine) doc(uri string) (*document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	doc, ok := e.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return doc, nil
}

func (e *Engine) snapshot(uri string) (*Snapshot, error) {
	doc, err := e.doc(uri)
	if err != nil {
		return nil, err
	}
	snap := doc.snap.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: %s has no committed version", ErrUnknownDocument, uri)
	}
	return snap, nil
}

// runPipeline is the per-document worker: one goroutine, strict job
// order, all parse and analyze work done off the index lock.
func (e *Engine) runPipeline(doc *document) {
	defer e.wg.Done()
	for j := range doc.jobs {
		err := e.process(doc, j)
		j.ticket.resolve(err)
	}
}

func (e *Engine) process(doc *document, j job) error {
	prev := doc.snap.Load()

	var (
		file  *source.File
		tree  *ast.Node
		stats parser.ReuseStats
	)
	bag := diag.NewBag(maxDiagnostics)
	popts := parser.Options{
		Reporter:           diag.BagReporter{Bag: bag},
		MaxReparseFraction: e.limits.MaxReparseFraction,
	}

	switch {
	case j.edit == nil:
		id := source.FileID(e.nextID.Add(1) - 1)
		if prev != nil {
			id = prev.File.ID
		}
		file = source.NewFile(id, doc.uri, j.text, source.FileVirtual)
		if prev != nil {
			file.Version = prev.File.Version + 1
		}
		tree = parser.Parse(file, popts)
	case prev == nil:
		return fmt.Errorf("%w: edit before open", ErrUnknownDocument)
	default:
		if err := j.edit.Validate(prev.File); err != nil {
			return err
		}
		file = prev.File.WithContent(j.edit.Apply(prev.File.Content))
		tree, stats = parser.Reparse(e.treeFor(doc.uri, prev), *j.edit, file, popts)
	}

	tab := symbols.Build(file, tree, e.interner)
	res, err := sema.Analyze(context.Background(), file, tree, tab)
	if err != nil {
		return err
	}
	for _, d := range res.Diags {
		bag.Add(d)
	}
	bag.Sort()
	bag.Dedup()

	snap := &Snapshot{
		File:  file,
		Sema:  res,
		Diags: bag.Items(),
		Stats: stats,
	}

	// Commit order: index first, then caches, then the snapshot the
	// queries read. A cap failure still publishes the local snapshot so
	// single-document queries keep working on the degraded file.
	applyErr := e.index.Apply(doc.uri, file.Version, workspace.BuildContribution(doc.uri, tab, res.Refs))
	e.caches.PutTree(doc.uri, file.Version, tree)
	e.caches.PutTable(doc.uri, file.Version, tab)
	doc.snap.Store(snap)
	return applyErr
}

// treeFor returns the syntax tree of the snapshot's version, re-parsing
// the retained content when the LRU has evicted it.
func (e *Engine) treeFor(uri string, snap *Snapshot) *ast.Node {
	if tree, ok := e.caches.Tree(uri, snap.File.Version); ok {
		return tree
	}
	tree := parser.Parse(snap.File, parser.Options{})
	e.caches.PutTree(uri, snap.File.Version, tree)
	return tree
}

// tableFor returns the symbol table of the snapshot's version. Build is
// deterministic over a given tree, so the symbol ids carried by the
// snapshot's references resolve identically against a rebuilt table.
func (e *Engine) tableFor(uri string, snap *Snapshot) *symbols.Table {
	if tab, ok := e.caches.Table(uri, snap.File.Version); ok {
		return tab
	}
	tab := symbols.Build(snap.File, e.treeFor(uri, snap), e.interner)
	e.caches.PutTable(uri, snap.File.Version, tab)
	return tab
}
