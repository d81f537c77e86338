// Command msgcheck verifies that every message lookup in Go source names a
// key of the MacrosBundle table with the right number of arguments, and that
// every translation agrees with the English table.
//
// Usage:
//
//	msgcheck [-funcs Message,Lookup] [-tests] [dir ...]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"macros/internal/adapters/source"
	"macros/internal/application"
	"macros/internal/config"
	"macros/internal/infrastructure/logging"
	"macros/internal/messages"
)

func main() {
	funcs := flag.String("funcs", strings.Join(source.DefaultFuncs, ","), "comma-separated method names treated as message lookups")
	tests := flag.Bool("tests", false, "also scan _test.go files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("msgcheck: %v", err)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(os.Stderr, level, cfg.LogColored)

	if err := messages.Configure(
		messages.WithLocale(cfg.Language()),
		messages.WithMessagesDir(cfg.MessagesDir),
		messages.WithStrict(cfg.Strict),
		messages.WithLogger(logger),
	); err != nil {
		log.Fatalf("msgcheck: %v", err)
	}
	bundle := messages.Default()

	dirs := flag.Args()
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := source.NewScanner(dirs, splitList(*funcs), *tests)
	svc := application.NewCheckService(bundle.Catalog(), bundle, scanner)

	report, err := svc.Run(ctx)
	if err != nil {
		logger.Error("msgcheck: run failed", "error", err)
		fmt.Fprintln(os.Stderr, messages.Message("check.run.failed", err))
		stop()
		os.Exit(2)
	}

	for _, f := range report.Findings {
		fmt.Println(f.Text)
	}
	fmt.Fprintln(os.Stderr, report.Summary)
	if !report.OK() {
		stop()
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
