package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"perlscope/internal/config"
	"perlscope/internal/engine"
	"perlscope/internal/lsp"
	"perlscope/internal/workspace"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the perlscope language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Bool("no-disk-cache", false, "disable the on-disk symbol cache")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	cfg, _, err := config.Find(".")
	if err != nil {
		return err
	}

	var opts []engine.Option
	if noCache, _ := cmd.Flags().GetBool("no-disk-cache"); !noCache {
		if dc, err := workspace.OpenDiskCache(); err == nil {
			opts = append(opts, engine.WithDiskCache(dc))
		}
	}
	eng, err := engine.New(cfg.Limits, opts...)
	if err != nil {
		return err
	}
	defer eng.Close()

	server := lsp.NewServer(eng, os.Stdin, os.Stdout)
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
