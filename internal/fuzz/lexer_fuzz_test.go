package fuzztests

import (
	"testing"

	"perlscope/internal/diag"
	"perlscope/internal/lexer"
	"perlscope/internal/source"
	"perlscope/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.pl", input))

		bag := diag.NewBag(64)
		tokens := lexer.Tokens(file, lexer.Options{
			Reporter: lexer.ReporterAdapter{R: diag.BagReporter{Bag: bag}},
		})

		if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
			t.Fatalf("token stream does not end with EOF")
		}
		// Spans must be monotone and inside the normalized content.
		limit := uint32(len(file.Content))
		var prev uint32
		for _, tok := range tokens {
			if tok.Span.Start < prev || tok.Span.End < tok.Span.Start || tok.Span.End > limit {
				t.Fatalf("token %v has bad span %v (prev end %d, content %d)",
					tok.Kind, tok.Span, prev, limit)
			}
			prev = tok.Span.End
		}
	})
}
