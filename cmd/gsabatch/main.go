package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gsa-map-porter/internal/batch"
	"gsa-map-porter/internal/config"
	"gsa-map-porter/internal/logging"
	"gsa-map-porter/internal/scene"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (yaml, json or toml)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	format := flag.String("format", "", "Output format: json or yaml (default: json)")
	strict := flag.Bool("strict", false, "Fail on duplicate link IDs instead of keeping the last")
	manifest := flag.String("manifest", "", "Manifest path (default: <target_root>/manifest.json)")
	logFile := flag.String("log", "", "Also write logs to this file (truncated each run)")
	logLevel := flag.String("level", "", "Log level: debug, info, warn, error (default: info)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	flags := config.Flags{
		Format:   *format,
		Strict:   *strict,
		Workers:  *workers,
		Manifest: *manifest,
		LogFile:  *logFile,
		LogLevel: *logLevel,
	}
	if args := flag.Args(); len(args) == 2 {
		flags.SourceRoot, flags.TargetRoot = args[0], args[1]
	} else if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <source_root> <target_root>\n", os.Args[0])
		os.Exit(2)
	}
	cfg.Resolve(flags)

	if cfg.SourceRoot == "" || cfg.TargetRoot == "" {
		fmt.Fprintln(os.Stderr, "Error: source and target roots are required (arguments or config).")
		os.Exit(2)
	}
	if cfg.Manifest == "" {
		cfg.Manifest = filepath.Join(cfg.TargetRoot, "manifest.json")
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
	defer closeLog()

	docs, err := batch.Discover(cfg.SourceRoot)
	if err != nil {
		logger.Error("discovery failed", zap.Error(err))
		closeLog()
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Println("No scenes to convert.")
		return
	}

	batchID := uuid.NewString()
	fmt.Println("GSA scenes → normalized scene documents")
	fmt.Printf("Scenes: %d, Workers: %d\n", len(docs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.TargetRoot)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	batchCfg := batch.Config{
		SourceRoot: cfg.SourceRoot,
		TargetRoot: cfg.TargetRoot,
		Format:     outFormat,
		Indent:     cfg.Indent,
		Strict:     cfg.Strict,
		Paths:      cfg.Paths(),
		Workers:    cfg.Workers,
		Logger:     logger.With(zap.String("batch_id", batchID)),
	}
	results := batch.Run(ctx, batchCfg, docs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	m := batch.NewManifest(batchID, batchCfg, results)
	fmt.Printf("Converted: %d/%d\n", m.Total-m.Failed, m.Total)

	if m.Failed > 0 {
		fmt.Printf("\nFailed (%d):\n", m.Failed)
		shown := 0
		for _, r := range results {
			if r.Success {
				continue
			}
			fmt.Printf("  %s: %s\n", r.Document, r.Error)
			if shown++; shown == 20 {
				break
			}
		}
	}

	if err := batch.WriteManifest(cfg.Manifest, m); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", cfg.Manifest)
	}

	if m.Failed > 0 {
		closeLog()
		os.Exit(1)
	}
}
