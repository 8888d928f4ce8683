package lexer

import (
	"perlscope/internal/source"
)

// Reporter is a thin interface so the lexer does not depend on diag.
// The lexer only calls it; an outer layer turns reports into diagnostics.
type Reporter interface {
	Report(kind string, span source.Span, msg string)
}

type Options struct {
	Reporter Reporter // may be nil: errors are dropped but lexing continues
	// Start/End bound the lexed window; both zero means the whole file.
	// Spans stay absolute, so the incremental reparser can lex a window
	// and splice the tokens into an existing tree's coordinate space.
	Start uint32
	End   uint32
}

func (lx *Lexer) report(kind string, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(kind, sp, msg)
	}
}
