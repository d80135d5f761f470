package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gsa-map-porter/internal/assetpath"
	"gsa-map-porter/internal/convert"
	"gsa-map-porter/internal/scene"
)

// SceneExt is the extension of scene documents picked up by Discover.
const SceneExt = ".gsa"

// Config holds all shared settings for a batch run.
type Config struct {
	SourceRoot string
	TargetRoot string
	Format     scene.Format
	Indent     int
	Strict     bool
	Paths      assetpath.Resolver
	Workers    int
	Logger     *zap.Logger

	// ProgressEvery is the progress log interval. Zero means 2s.
	ProgressEvery time.Duration
}

// Result holds the outcome of converting one document.
type Result struct {
	Document string
	Success  bool
	Error    string
	Report   convert.Report
}

// Discover lists every scene document under root in lexical order.
func Discover(root string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), SceneExt) {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: walk %s: %w", root, err)
	}
	return docs, nil
}

// Run converts all docs using a worker pool. Each document gets its own
// index, diagnostics and run ID; results keep the order of docs. Documents
// not yet dispatched when ctx is cancelled are reported as failed without
// being opened.
func Run(ctx context.Context, cfg Config, docs []string) []Result {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	every := cfg.ProgressEvery
	if every <= 0 {
		every = 2 * time.Second
	}
	log := logger.Named("batch")

	total := len(docs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("progress",
						zap.Int64("done", p), zap.Int("total", total),
						zap.String("rate", fmt.Sprintf("%.1f scenes/sec", rate)))
				}
			}
		}
	}()

	// Worker pool
	docChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range docChan {
				results[idx] = processDoc(ctx, cfg, docs[idx], logger)
				processed.Add(1)
			}
		}()
	}

	// Send work until cancelled
	sent := 0
dispatch:
	for ; sent < total; sent++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case docChan <- sent:
		}
	}
	close(docChan)

	wg.Wait()
	close(done)

	if sent < total {
		log.Warn("batch cancelled", zap.Int("skipped", total-sent), zap.Error(ctx.Err()))
		for i := sent; i < total; i++ {
			results[i] = Result{Document: docs[i], Error: ctx.Err().Error()}
		}
	}
	return results
}

func processDoc(ctx context.Context, cfg Config, doc string, logger *zap.Logger) Result {
	job := convert.Job{
		Document:   doc,
		SourceRoot: cfg.SourceRoot,
		TargetRoot: cfg.TargetRoot,
		Format:     cfg.Format,
		Indent:     cfg.Indent,
		Strict:     cfg.Strict,
		Paths:      cfg.Paths,
		RunID:      uuid.NewString(),
	}

	rep, err := convert.Run(ctx, job, logger)
	if err != nil {
		level := logger.Error
		if errors.Is(err, context.Canceled) {
			level = logger.Debug
		}
		level("scene failed", zap.String("document", doc), zap.String("run_id", job.RunID), zap.Error(err))
		return Result{Document: doc, Error: err.Error(), Report: rep}
	}
	return Result{Document: doc, Success: true, Report: rep}
}
