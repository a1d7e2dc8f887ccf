// Command validate-corpus scans a documentation tree and reports its
// structure: sections per document, snippets by language, and any
// fence, heading, or diagram warnings.
//
//	validate-corpus [flags] <root-dir>
//
// Exit codes: 0 success, 1 invocation error, 2 warnings found while
// --fail-on-warning is set.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/corpuslint/internal/config"
	"github.com/dgallion1/corpuslint/internal/history"
	"github.com/dgallion1/corpuslint/internal/pipeline"
)

const (
	exitOK         = 0
	exitInvocation = 1
	exitWarnings   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate-corpus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		format        = fs.String("format", "text", "report output format: text or json")
		failOnWarning = fs.Bool("fail-on-warning", false, "exit non-zero if any warning is found")
		workers       = fs.Int("workers", 0, "parse worker count (default from WORKER_COUNT)")
		record        = fs.Bool("record", false, "record this run in the history database (CORPUSLINT_DB)")
		quiet         = fs.Bool("quiet", false, "suppress progress logging")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: validate-corpus [flags] <root-dir>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitInvocation
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitInvocation
	}
	root := fs.Arg(0)

	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "unknown format %q (want text or json)\n", *format)
		return exitInvocation
	}

	logLevel := slog.LevelInfo
	if *quiet {
		logLevel = slog.LevelError
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return exitInvocation
	}
	if *workers > 0 {
		cfg.WorkerCount = *workers
	}

	var store *history.Store
	if *record {
		if cfg.DBPath == "" {
			log.Error("--record requires CORPUSLINT_DB")
			return exitInvocation
		}
		store, err = history.Open(cfg.DBPath)
		if err != nil {
			log.Error("cannot open history database", "error", err)
			return exitInvocation
		}
		defer store.Close()
	}

	ctx := context.Background()
	stats := pipeline.NewScanStats(cfg.StatsWindow)
	scanner := pipeline.NewScanner(cfg.WorkerCount, cfg.MaxFileBytes, log, stats)

	scanRun, err := scanner.Scan(ctx, root)
	if err != nil {
		log.Error("scan failed", "error", err)
		return exitInvocation
	}

	if store != nil {
		if err := store.RecordRun(ctx, scanRun); err != nil {
			log.Error("record run failed", "run_id", scanRun.ID, "error", err)
			return exitInvocation
		}
	}

	switch *format {
	case "json":
		if err := scanRun.Report.RenderJSON(stdout); err != nil {
			log.Error("write report", "error", err)
			return exitInvocation
		}
	default:
		if err := scanRun.Report.RenderText(stdout); err != nil {
			log.Error("write report", "error", err)
			return exitInvocation
		}
	}

	if *failOnWarning && scanRun.Report.HasWarnings() {
		return exitWarnings
	}
	return exitOK
}
