package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"perlscope/internal/diag"
	"perlscope/internal/diagfmt"
	"perlscope/internal/lexer"
	"perlscope/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:          "tokenize [flags] file",
	Short:        "Lex a single file and print its token stream",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format %q (want pretty or json)", format)
	}
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	fileSet := source.NewFileSet()
	id, err := fileSet.Load(args[0])
	if err != nil {
		return err
	}
	file := fileSet.Get(id)

	bag := diag.NewBag(maxDiagnostics)
	tokens := lexer.Tokens(file, lexer.Options{
		Reporter: lexer.ReporterAdapter{R: diag.BagReporter{Bag: bag}},
	})

	if bag.Len() > 0 {
		bag.Sort()
		diagfmt.Pretty(os.Stderr, bag, fileSet, diagfmt.PrettyOpts{
			Color: useColor(cmd, os.Stderr),
		})
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := diagfmt.FormatTokensJSON(out, tokens); err != nil {
			return err
		}
	} else {
		if err := diagfmt.FormatTokensPretty(out, tokens, fileSet); err != nil {
			return err
		}
	}
	if bag.HasErrors() {
		return fmt.Errorf("tokenization found errors")
	}
	return nil
}
