package lexer

import (
	"perlscope/internal/diag"
	"perlscope/internal/source"
)

// ReporterAdapter bridges the lexer's string-kind reports into diag codes.
type ReporterAdapter struct {
	R diag.Reporter
}

// BagAdapter builds an adapter that collects into a bag.
func BagAdapter(bag *diag.Bag) ReporterAdapter {
	return ReporterAdapter{R: diag.BagReporter{Bag: bag}}
}

func (a ReporterAdapter) Report(kind string, span source.Span, msg string) {
	if a.R == nil {
		return
	}
	code := diag.LexInfo
	sev := diag.SevError
	switch kind {
	case "unterminated-string":
		code = diag.LexUnterminatedString
	case "unterminated-regex":
		code = diag.LexUnterminatedRegex
	case "unterminated-qw":
		code = diag.LexUnterminatedQw
	case "unsupported-deref":
		code = diag.LexUnsupportedDeref
		sev = diag.SevWarning
	case "unexpected-byte":
		code = diag.LexUnknownChar
	}
	a.R.Report(code, sev, span, msg, nil)
}
