package engine

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"perlscope/internal/diag"
	"perlscope/internal/parser"
	"perlscope/internal/sema"
	"perlscope/internal/source"
	"perlscope/internal/symbols"
	"perlscope/internal/workspace"
)

// ScanResult summarizes one workspace scan.
type ScanResult struct {
	Scanned int // files indexed this run
	Cached  int // of those, served from the disk cache
	Failed  int // files marked degraded
}

// FileURI converts a filesystem path to the URI form used as document
// identity throughout the engine.
func FileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// listPerlFiles returns every *.pl and *.pm under dir, sorted for a
// deterministic scan order.
func listPerlFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".pl") || strings.HasSuffix(path, ".pm") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Scan walks dir and indexes every Perl file as independent jobs on a
// bounded pool. Per-file failures degrade that file and never abort the
// scan; only cancellation stops it.
func (e *Engine) Scan(ctx context.Context, dir string) (ScanResult, error) {
	files, err := listPerlFiles(dir)
	if err != nil {
		return ScanResult{}, err
	}
	if len(files) == 0 {
		return ScanResult{}, nil
	}

	e.index.BeginBuild()
	defer e.index.FinishBuild()

	jobs := e.limits.ScanWorkers
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var scanned, cached, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for _, path := range files {
		path := path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			uri := FileURI(path)
			hit, err := e.indexFile(path, uri)
			if err != nil {
				failed.Add(1)
				return nil
			}
			scanned.Add(1)
			if hit {
				cached.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ScanResult{}, err
	}
	return ScanResult{
		Scanned: int(scanned.Load()),
		Cached:  int(cached.Load()),
		Failed:  int(failed.Load()),
	}, nil
}

// indexFile indexes one on-disk file, preferring the disk cache. The
// bool result reports a cache hit.
func (e *Engine) indexFile(path, uri string) (bool, error) {
	fset := source.NewFileSet()
	id, err := fset.Load(path)
	if err != nil {
		e.index.MarkDegraded(uri, workspace.ReasonLoadError)
		return false, err
	}
	file := fset.Get(id)
	file.ID = source.FileID(e.nextID.Add(1) - 1)

	key := workspace.ContentKey(file.Content)
	if e.disk != nil {
		syms, refs, hit, err := e.disk.Get(key)
		if err == nil && hit {
			if err := e.index.Apply(uri, file.Version, workspace.FromCached(uri, syms, refs)); err != nil {
				return true, err
			}
			return true, nil
		}
	}

	bag := diag.NewBag(maxDiagnostics)
	tree := parser.Parse(file, parser.Options{
		Reporter:           diag.BagReporter{Bag: bag},
		MaxReparseFraction: e.limits.MaxReparseFraction,
	})
	tab := symbols.Build(file, tree, e.interner)
	res, err := sema.Analyze(context.Background(), file, tree, tab)
	if err != nil {
		e.index.MarkDegraded(uri, workspace.ReasonParseError)
		return false, err
	}

	c := workspace.BuildContribution(uri, tab, res.Refs)
	if err := e.index.Apply(uri, file.Version, c); err != nil {
		return false, err
	}
	if e.disk != nil {
		syms, refs := workspace.ToCached(c)
		// Cache write failures are invisible to the scan result.
		_ = e.disk.Put(key, uri, syms, refs)
	}
	return false, nil
}
