package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/korjavin/nutrinorm/internal/config"
	"github.com/korjavin/nutrinorm/internal/importer"
)

func main() {
	dump := flag.String("dump", "", "path to gzip-compressed JSONL dump (required)")
	out := flag.String("out", "", "output data directory (required)")
	verbose := flag.Bool("v", false, "print progress every 100k products")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	if *dump == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: nutrinorm-importer -dump <path> -out <dir> [-v] [-log-level debug]")
		os.Exit(1)
	}

	level, err := config.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting import", "dump", *dump, "out", *out)

	m, err := importer.Import(ctx, importer.Options{DumpPath: *dump, OutputDir: *out, Verbose: *verbose})
	if err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}

	slog.Info("import complete",
		"products", m.ProductCount,
		"indexed", m.IndexedCount,
		"skipped", m.SkippedCount,
		"build_time", m.BuildTime,
	)
	fmt.Printf("Output: %s\n  Products stored : %d\n  Names indexed   : %d\n  Skipped         : %d\n",
		*out, m.ProductCount, m.IndexedCount, m.SkippedCount)

	printCounts("Skip reasons", m.SkipReasons)
	printCounts("Outcomes", m.Outcomes)
	printCounts("Corrections", m.Corrections)
}

func printCounts(title string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	fmt.Printf("  %s:\n", title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("    %-22s: %d\n", k, counts[k])
	}
}
