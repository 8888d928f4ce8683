package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"perlscope/internal/config"
	"perlscope/internal/diag"
	"perlscope/internal/diagfmt"
	"perlscope/internal/engine"
	"perlscope/internal/observ"
	"perlscope/internal/parser"
	"perlscope/internal/prof"
	"perlscope/internal/sema"
	"perlscope/internal/source"
	"perlscope/internal/symbols"
	"perlscope/internal/workspace"
)

var indexCmd = &cobra.Command{
	Use:          "index [flags] dir",
	Short:        "Scan a directory and report symbols and diagnostics",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runIndex,
}

func init() {
	indexCmd.Flags().Bool("json", false, "emit diagnostics as JSON")
	indexCmd.Flags().String("query", "", "filter workspace symbols by substring")
	indexCmd.Flags().Bool("timings", false, "print per-phase wall-clock timings")
	indexCmd.Flags().String("cpu-profile", "", "write a CPU profile to this path")
	indexCmd.Flags().String("mem-profile", "", "write a heap profile to this path")
}

func runIndex(cmd *cobra.Command, args []string) error {
	dir := args[0]
	cfg, _, err := config.Find(dir)
	if err != nil {
		return err
	}
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	asJSON, _ := cmd.Flags().GetBool("json")
	query, _ := cmd.Flags().GetString("query")
	showTimings, _ := cmd.Flags().GetBool("timings")
	cpuProfile, _ := cmd.Flags().GetString("cpu-profile")
	memProfile, _ := cmd.Flags().GetString("mem-profile")

	session, err := prof.Start(cpuProfile, memProfile)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	timer := observ.NewTimer()

	eng, err := engine.New(cfg.Limits)
	if err != nil {
		return err
	}
	defer eng.Close()

	scanPhase := timer.Begin("scan")
	result, err := eng.Scan(cmd.Context(), dir)
	if err != nil {
		return err
	}
	timer.End(scanPhase, fmt.Sprintf("%d files", result.Scanned))

	// Diagnostics come from a second sequential pass so their order is
	// stable regardless of scan parallelism.
	diagPhase := timer.Begin("diagnostics")
	fileSet, bag, err := collectDiagnostics(cmd.Context(), dir, maxDiagnostics)
	if err != nil {
		return err
	}
	bag.Sort()
	bag.Dedup()
	timer.End(diagPhase, fmt.Sprintf("%d reported", bag.Len()))

	out := cmd.OutOrStdout()
	if asJSON {
		if err := diagfmt.JSON(out, bag, fileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
		}); err != nil {
			return err
		}
	} else if bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, bag, fileSet, diagfmt.PrettyOpts{
			Color:     useColor(cmd, os.Stderr),
			ShowNotes: true,
		})
	}

	if !asJSON {
		printSymbols(out, eng.WorkspaceSymbols(query), dir)
		fmt.Fprintf(out, "\n%d files indexed, %d degraded, index %s\n",
			result.Scanned, result.Failed, eng.IndexState())
	}
	if showTimings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	if bag.HasErrors() {
		return fmt.Errorf("indexing found errors")
	}
	return nil
}

func collectDiagnostics(ctx context.Context, dir string, maxDiagnostics int) (*source.FileSet, *diag.Bag, error) {
	fileSet := source.NewFileSetWithBase(dir)
	bag := diag.NewBag(maxDiagnostics)

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (strings.HasSuffix(path, ".pl") || strings.HasSuffix(path, ".pm")) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		id, err := fileSet.Load(path)
		if err != nil {
			bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
				"failed to load file: "+err.Error()))
			continue
		}
		file := fileSet.Get(id)
		tree := parser.Parse(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
		tab := symbols.Build(file, tree, nil)
		res, err := sema.Analyze(ctx, file, tree, tab)
		if err != nil {
			return nil, nil, err
		}
		for _, d := range res.Diags {
			bag.Add(d)
		}
	}
	return fileSet, bag, nil
}

func printSymbols(out io.Writer, syms []workspace.SymbolInfo, dir string) {
	if len(syms) == 0 {
		return
	}
	for _, sym := range syms {
		path := uriPath(sym.Location.URI)
		if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
		fmt.Fprintf(out, "%-10s %-30s %s\n", sym.Kind, sym.Name, path)
	}
}

func uriPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
