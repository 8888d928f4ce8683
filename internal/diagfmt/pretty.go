// Package diagfmt renders diagnostics and tokens for terminal and
// machine consumption.
package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"perlscope/internal/diag"
	"perlscope/internal/source"
)

// Pretty writes diagnostics in a human-readable form. The bag is
// expected to be sorted already. Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <code>: <message>
//
// followed by the source line with a ^~~~ underline, then notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeDiagnostic(w, d, fs, opts)
	}
}

func writeDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(d.Primary.File)
	head := fmt.Sprintf("%s: %s %s: %s",
		locString(f, d.Primary.Start, fs, opts.PathMode),
		severityLabel(d.Severity, opts.Color),
		d.Code.String(),
		d.Message,
	)
	fmt.Fprintln(w, head)
	writeContext(w, f, d.Primary, d.Severity, opts)

	if opts.ShowNotes {
		for _, note := range d.Notes {
			nf := fs.Get(note.Span.File)
			fmt.Fprintf(w, "%s: note: %s\n",
				locString(nf, note.Span.Start, fs, opts.PathMode), note.Msg)
			writeContext(w, nf, note.Span, diag.SevInfo, opts)
		}
	}
}

// writeContext prints the source line and the underline beneath the
// span. Wide characters and tabs keep the caret aligned via runewidth.
func writeContext(w io.Writer, f *source.File, span source.Span, sev diag.Severity, opts PrettyOpts) {
	if f == nil {
		return
	}
	pos, err := f.OffsetToPosition(span.Start, source.EncodingUTF8)
	if err != nil {
		return
	}
	line := f.GetLine(pos.Line)
	if line == "" && span.Start >= uint32(len(f.Content)) {
		return
	}
	expanded := strings.ReplaceAll(line, "\t", "    ")
	fmt.Fprintf(w, "  %s\n", expanded)

	lineStart := span.Start - (pos.Col - 1)
	prefix := displayWidth(line, 0, span.Start-lineStart)
	marked := span.End - span.Start
	if span.End < lineStart || span.End > lineStart+uint32(len(line)) {
		marked = uint32(len(line)) - (span.Start - lineStart)
	}
	width := displayWidth(line, span.Start-lineStart, span.Start-lineStart+marked)
	if width == 0 {
		width = 1
	}
	underline := strings.Repeat(" ", prefix) + "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "  %s\n", colorize(underline, sev, opts.Color))
}

// displayWidth measures the terminal width of line[from:to) with tabs
// expanded to four columns.
func displayWidth(line string, from, to uint32) int {
	if int(to) > len(line) {
		to = uint32(len(line))
	}
	if from >= to {
		return 0
	}
	width := 0
	for _, r := range line[from:to] {
		if r == '\t' {
			width += 4
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}

func locString(f *source.File, off uint32, fs *source.FileSet, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	path := f.Path
	if mode == PathModeBasename {
		path = filepath.Base(path)
	}
	pos, err := f.OffsetToPosition(off, source.EncodingUTF8)
	if err != nil {
		return path
	}
	return fmt.Sprintf("%s:%d:%d", path, pos.Line, pos.Col)
}

func severityLabel(sev diag.Severity, colored bool) string {
	label := sev.String()
	if !colored {
		return label
	}
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(label)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold).Sprint(label)
	default:
		return color.New(color.FgCyan).Sprint(label)
	}
}

func colorize(s string, sev diag.Severity, colored bool) string {
	if !colored {
		return s
	}
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed).Sprint(s)
	case diag.SevWarning:
		return color.New(color.FgYellow).Sprint(s)
	default:
		return color.New(color.FgCyan).Sprint(s)
	}
}
