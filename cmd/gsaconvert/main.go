package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"gsa-map-porter/internal/config"
	"gsa-map-porter/internal/convert"
	"gsa-map-porter/internal/logging"
	"gsa-map-porter/internal/scene"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (yaml, json or toml)")
	format := flag.String("format", "", "Output format: json or yaml (default: json)")
	strict := flag.Bool("strict", false, "Fail on duplicate link IDs instead of keeping the last")
	logFile := flag.String("log", "", "Also write logs to this file (truncated each run)")
	logLevel := flag.String("level", "", "Log level: debug, info, warn, error (default: info)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <scene.gsa> [source_root] [target_root]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) < 1 || len(args) == 2 || len(args) > 3 {
		flag.Usage()
		os.Exit(2)
	}
	flags := config.Flags{
		Format:   *format,
		Strict:   *strict,
		LogFile:  *logFile,
		LogLevel: *logLevel,
	}
	if len(args) == 3 {
		flags.SourceRoot, flags.TargetRoot = args[1], args[2]
	}
	cfg.Resolve(flags)

	if cfg.SourceRoot == "" || cfg.TargetRoot == "" {
		fmt.Fprintln(os.Stderr, "Error: source and target roots are required (arguments or config).")
		os.Exit(2)
	}

	outFormat, err := scene.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	job := convert.Job{
		Document:   args[0],
		SourceRoot: cfg.SourceRoot,
		TargetRoot: cfg.TargetRoot,
		Format:     outFormat,
		Indent:     cfg.Indent,
		Strict:     cfg.Strict,
		Paths:      cfg.Paths(),
	}
	rep, err := convert.Run(ctx, job, logger)
	stop()
	if err != nil {
		logger.Error("conversion failed", zap.String("document", job.Document), zap.Error(err))
		closeLog()
		os.Exit(1)
	}
	closeLog()

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Run:        %s\n", rep.RunID)
	fmt.Printf("Templates:  %d\n", rep.Templates)
	fmt.Printf("Components: %d\n", rep.Components)
	fmt.Printf("Entities:   %d (dropped %d)\n", rep.Entities, rep.Dropped)
	fmt.Printf("Output:     %s\n", rep.Output)
	if len(rep.Unhandled) > 0 {
		fmt.Printf("\nUnhandled component classes (%d):\n", len(rep.Unhandled))
		for _, u := range rep.Unhandled {
			fmt.Printf("  %s\n", u)
		}
	}
}
