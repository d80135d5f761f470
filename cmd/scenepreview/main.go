package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"gsa-map-porter/internal/config"
	"gsa-map-porter/internal/logging"
	"gsa-map-porter/internal/placement"
	"gsa-map-porter/internal/preview"
	"gsa-map-porter/internal/scene"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (yaml, json or toml)")
	size := flag.Int("size", 0, "Preview edge in pixels (default: 1024)")
	scale := flag.Float64("scale", 0, "World to editor scale factor (default: 0.02)")
	backdrop := flag.String("backdrop", "", "Minimap image drawn under the markers (tga, jpg, png)")
	planOut := flag.String("plan", "", "Also write the placement plan as JSON to this path")
	mapPrefix := flag.String("map-prefix", placement.DefaultMapPrefix, "Prefix for the generated map name")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <scene.json> <out.webp>\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve(config.Flags{})
	if *size > 0 {
		cfg.Preview.Size = *size
	}
	if *scale > 0 {
		cfg.Preview.Scale = *scale
	}
	if *backdrop != "" {
		cfg.Preview.Backdrop = *backdrop
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, args[0], args[1], *planOut, *mapPrefix, logger); err != nil {
		logger.Error("preview failed", zap.Error(err))
		closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config, scenePath, out, planOut, prefix string, logger *zap.Logger) error {
	doc, err := scene.Load(scenePath)
	if err != nil {
		return err
	}

	plan := placement.Build(doc, placement.Options{
		MapName:     placement.MapName(prefix, scenePath),
		ScaleFactor: cfg.Preview.Scale,
		Logger:      logger,
	})

	opts := preview.Options{Size: cfg.Preview.Size, Supersample: cfg.Preview.Supersample}
	if cfg.Preview.Backdrop != "" {
		bd, err := preview.LoadBackdrop(cfg.Preview.Backdrop)
		if err != nil {
			return err
		}
		opts.Backdrop = bd
	}

	if err := preview.WriteFile(out, preview.Render(plan, opts)); err != nil {
		return err
	}
	fmt.Printf("Preview: %s (%d actors, %d unplaced)\n", out, len(plan.Actors), plan.Unplaced)

	if planOut != "" {
		if err := placement.WriteFile(planOut, plan); err != nil {
			return err
		}
		fmt.Printf("Plan:    %s\n", planOut)
	}
	for folder, n := range plan.Folders {
		logger.Debug("folder", zap.String("folder", folder), zap.Int("actors", n))
	}
	return nil
}
