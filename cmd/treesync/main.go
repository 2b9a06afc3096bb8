// Package main is the entry point for the treesync application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/treesync/internal/config"
	"github.com/joe/treesync/internal/dashboard"
	"github.com/joe/treesync/internal/output"
	"github.com/joe/treesync/internal/pipeline"
	"github.com/joe/treesync/pkg/filesystem"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))

	sink, err := output.New(cfg.LogDir, os.Stdout, cfg.ColorEnabled(isTerminal), cfg.Quiet, cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pc := cfg.ToPipelineConfig(cfg.ColorEnabled(isTerminal))
	sink.ConfigurePaths(pc.SourceRoot, pc.DestRoot, pc.ShowAbsolute)

	p := pipeline.New(pc, filesystem.NewRealFileSystem(), sink)

	var result pipeline.Result

	if cfg.Dashboard && isTerminal {
		result, err = dashboard.Run(ctx, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		result = p.RunWithConsoleStatus(ctx)
	}

	p.HandleAll()
	p.FinalizeAndReport(result)

	if result.AnyErrors || result.Aborted {
		os.Exit(1)
	}

	if pc.Mode.String() == "compare" && result.AnyMismatch {
		os.Exit(1)
	}
}
