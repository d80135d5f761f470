// Package convert assembles a normalized scene document from a GSA file in
// two streaming passes and writes it under the target root.
package convert

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gsa-map-porter/internal/assetpath"
	"gsa-map-porter/internal/component"
	"gsa-map-porter/internal/gsa"
	"gsa-map-porter/internal/resolve"
	"gsa-map-porter/internal/scene"
)

var (
	ErrInputNotFound     = errors.New("input document not found")
	ErrMalformedDocument = errors.New("malformed document")
	ErrOutsideSourceRoot = errors.New("document is outside the source root")
)

// Job describes one document conversion.
type Job struct {
	Document   string
	SourceRoot string
	TargetRoot string

	Format scene.Format
	Indent int
	// Strict rejects duplicate link IDs instead of letting the later one win.
	Strict bool
	Paths  assetpath.Resolver
	// RunID tags logs and the report. Generated when empty.
	RunID string
}

// Report summarizes one conversion.
type Report struct {
	RunID       string         `json:"run_id"`
	Document    string         `json:"document"`
	Output      string         `json:"output,omitempty"`
	Templates   int            `json:"templates"`
	Components  int            `json:"components"`
	Entities    int            `json:"entities"`
	Dropped     int            `json:"dropped"`
	Skipped     int            `json:"skipped"`
	Duplicates  int            `json:"duplicates"`
	PeakLive    int            `json:"peak_live"`
	Unhandled   []string       `json:"unhandled"`
	Diagnostics map[string]int `json:"diagnostics"`
	Duration    time.Duration  `json:"duration_ns"`
}

// Run converts job.Document and writes the result to OutputPath. Nothing is
// written when conversion fails.
func Run(ctx context.Context, job Job, logger *zap.Logger) (Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ext := job.Format.Ext()
	out, err := OutputPath(job.Document, job.SourceRoot, job.TargetRoot, ext)
	if err != nil {
		return Report{Document: job.Document, RunID: job.RunID}, err
	}

	doc, rep, err := Convert(ctx, job, logger)
	if err != nil {
		return rep, err
	}

	if err := scene.WriteFile(out, doc, job.Format, job.Indent); err != nil {
		return rep, fmt.Errorf("convert: %w", err)
	}
	rep.Output = out
	logger.Info("scene written", zap.String("run_id", rep.RunID), zap.String("output", out))
	return rep, nil
}

// Convert runs both passes over job.Document and returns the assembled
// document. Recoverable problems are logged and counted in the report.
func Convert(ctx context.Context, job Job, logger *zap.Logger) (*scene.Document, Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	if job.RunID == "" {
		job.RunID = uuid.NewString()
	}
	log := logger.Named("convert").With(zap.String("run_id", job.RunID))
	rep := Report{RunID: job.RunID, Document: job.Document}

	info, err := os.Stat(job.Document)
	if err != nil || info.IsDir() {
		return nil, rep, fmt.Errorf("convert: stat %s: %w", job.Document, ErrInputNotFound)
	}

	// Asset paths resolve against the directory as given, never an absolute one.
	docDir := filepath.ToSlash(filepath.Dir(job.Document))

	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}
	log.Info("pass 1: building link index", zap.String("document", job.Document))
	idx, err := buildIndex(job, logger)
	if err != nil {
		return nil, rep, err
	}
	rep.Templates = len(idx.Templates)
	rep.Components = len(idx.Components)
	rep.Duplicates = idx.Duplicates
	rep.Skipped = idx.Stats.Skipped
	rep.PeakLive = idx.Stats.PeakLive

	diag := scene.NewDiagnostics()
	norm := component.New(docDir, job.Paths, logger)
	res := resolve.New(idx, norm, logger)
	doc := scene.NewDocument()

	log.Info("pass 2: resolving entities")
	f, err := os.Open(job.Document)
	if err != nil {
		return nil, rep, fmt.Errorf("convert: open %s: %w", job.Document, err)
	}
	defer f.Close()

	stats, err := gsa.Scan(f, []string{gsa.TagEntity}, func(el *gsa.Element) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if el.IsTemplate() {
			return nil
		}
		ent, err := res.Entity(el, diag)
		if err != nil {
			rep.Dropped++
			diag.Note(scene.TemplateNotFound)
			log.Warn("entity dropped", zap.String("entity", el.Name()), zap.Error(err))
			return nil
		}
		doc.Entities = append(doc.Entities, ent)
		return nil
	})
	if err != nil {
		return nil, rep, scanError(job.Document, err)
	}
	rep.PeakLive = max(rep.PeakLive, stats.PeakLive)

	rep.Entities = len(doc.Entities)
	rep.Unhandled = diag.Unhandled()
	rep.Diagnostics = diag.Counts()
	rep.Duration = time.Since(start)
	summarize(log, rep)
	return doc, rep, nil
}

func buildIndex(job Job, logger *zap.Logger) (*gsa.Index, error) {
	f, err := os.Open(job.Document)
	if err != nil {
		return nil, fmt.Errorf("convert: open %s: %w", job.Document, err)
	}
	defer f.Close()

	idx, err := gsa.BuildIndex(f, gsa.IndexOptions{Strict: job.Strict, Logger: logger})
	if err != nil {
		return nil, scanError(job.Document, err)
	}
	return idx, nil
}

func scanError(doc string, err error) error {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return fmt.Errorf("convert: %s: %w: %w", doc, ErrMalformedDocument, err)
	}
	return fmt.Errorf("convert: %s: %w", doc, err)
}

func summarize(log *zap.Logger, rep Report) {
	log.Info("conversion finished",
		zap.Int("templates", rep.Templates),
		zap.Int("components", rep.Components),
		zap.Int("entities", rep.Entities),
		zap.Int("dropped", rep.Dropped),
		zap.Any("diagnostics", rep.Diagnostics),
		zap.Duration("took", rep.Duration))
	if len(rep.Unhandled) > 0 {
		log.Warn("unhandled component classes", zap.Strings("classes", rep.Unhandled))
	}
}

// OutputPath mirrors doc's location under srcRoot into dstRoot, swapping the
// extension for ext.
func OutputPath(doc, srcRoot, dstRoot, ext string) (string, error) {
	absDoc, err := filepath.Abs(doc)
	if err != nil {
		return "", fmt.Errorf("convert: resolve %s: %w", doc, err)
	}
	absSrc, err := filepath.Abs(srcRoot)
	if err != nil {
		return "", fmt.Errorf("convert: resolve %s: %w", srcRoot, err)
	}

	rel, err := filepath.Rel(absSrc, absDoc)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("convert: %s under %s: %w", doc, srcRoot, ErrOutsideSourceRoot)
	}

	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
	return filepath.Join(dstRoot, rel), nil
}
