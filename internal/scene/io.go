package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("scene: unknown format %q", s)
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// DefaultIndent matches the layout downstream importers were written against.
const DefaultIndent = 4

// Encode serializes doc. Output depends only on doc, never on map iteration
// order.
func Encode(w io.Writer, doc *Document, format Format, indent int) error {
	if indent <= 0 {
		indent = DefaultIndent
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(indent)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("scene: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		data, err := json.MarshalIndent(doc, "", strings.Repeat(" ", indent))
		if err != nil {
			return fmt.Errorf("scene: encode json: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("scene: unknown format %q", format)
}

// WriteFile writes doc to path, creating parent directories.
func WriteFile(path string, doc *Document, format Format, indent int) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, format, indent); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("scene: create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("scene: write %s: %w", path, err)
	}
	return nil
}

// Load reads a JSON scene document.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}

	doc := NewDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	if doc.Entities == nil {
		doc.Entities = []Entity{}
	}
	return doc, nil
}
