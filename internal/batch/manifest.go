package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Manifest is the summary of one batch run.
type Manifest struct {
	BatchID   string          `json:"batch_id"`
	Generated time.Time       `json:"generated"`
	Total     int             `json:"total"`
	Failed    int             `json:"failed"`
	Scenes    []ManifestEntry `json:"scenes"`
}

// ManifestEntry represents one scene in the output manifest.
type ManifestEntry struct {
	Source     string `json:"source"`
	Output     string `json:"output,omitempty"`
	RunID      string `json:"run_id"`
	Templates  int    `json:"templates"`
	Components int    `json:"components"`
	Entities   int    `json:"entities"`
	Dropped    int    `json:"dropped"`
	Unhandled  int    `json:"unhandled"`
	Error      string `json:"error,omitempty"`
}

// NewManifest summarizes results. Paths are made relative to the source and
// target roots when possible.
func NewManifest(batchID string, cfg Config, results []Result) Manifest {
	m := Manifest{
		BatchID:   batchID,
		Generated: time.Now().UTC(),
		Total:     len(results),
		Scenes:    make([]ManifestEntry, len(results)),
	}
	for i, r := range results {
		if !r.Success {
			m.Failed++
		}
		m.Scenes[i] = ManifestEntry{
			Source:     relTo(cfg.SourceRoot, r.Document),
			Output:     relTo(cfg.TargetRoot, r.Report.Output),
			RunID:      r.Report.RunID,
			Templates:  r.Report.Templates,
			Components: r.Report.Components,
			Entities:   r.Report.Entities,
			Dropped:    r.Report.Dropped,
			Unhandled:  len(r.Report.Unhandled),
			Error:      r.Error,
		}
	}
	return m
}

// WriteManifest writes m as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func relTo(root, path string) string {
	if path == "" || root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
