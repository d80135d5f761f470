package gsa

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// ErrDuplicateLinkID is returned in strict mode when a link ID repeats.
var ErrDuplicateLinkID = errors.New("duplicate link id")

// IndexOptions controls pass 1.
type IndexOptions struct {
	// Strict rejects documents that reuse a component or template link ID.
	// Otherwise the later element in document order wins.
	Strict bool
	Logger *zap.Logger
}

// Index maps link IDs to the component and template elements of one document.
// It is built once and only read afterwards.
type Index struct {
	Components map[string]*Element
	Templates  map[string]*Element
	Duplicates int
	Stats      Stats
}

// BuildIndex runs pass 1 over r: every COMPONENT with a LinkID and every
// ENTITY without a MasterLinkID is recorded under its link ID, at any depth.
// Inline definitions inside an entity are indexed like top-level ones.
func BuildIndex(r io.Reader, opts IndexOptions) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("gsa")

	idx := &Index{
		Components: make(map[string]*Element),
		Templates:  make(map[string]*Element),
	}
	skipped := 0

	put := func(m map[string]*Element, kind, id string, el *Element) error {
		if _, exists := m[id]; exists {
			idx.Duplicates++
			if opts.Strict {
				return fmt.Errorf("gsa: %s %s: %w", kind, id, ErrDuplicateLinkID)
			}
			logger.Debug("duplicate link id, later element wins",
				zap.String("kind", kind), zap.String("link_id", id))
		}
		m[id] = el
		return nil
	}

	stats, err := Scan(r, []string{TagEntity, TagComponent}, func(el *Element) error {
		switch el.Tag() {
		case TagComponent:
			id := strings.TrimSpace(el.LinkID())
			if id == "" {
				if el.Get(AttrRefLinkID) != "" {
					return nil
				}
				skipped++
				logger.Debug("component without LinkID skipped",
					zap.String("class", el.Class()), zap.String("name", el.Name()))
				return nil
			}
			return put(idx.Components, "component", id, el)

		case TagEntity:
			if !el.IsTemplate() {
				return nil
			}
			id := strings.TrimSpace(el.LinkID())
			if id == "" {
				skipped++
				logger.Warn("template entity without LinkID skipped",
					zap.String("name", el.Name()))
				return nil
			}
			return put(idx.Templates, "template", id, el)
		}
		return nil
	})
	stats.Skipped = skipped
	stats.Retained = len(idx.Components) + len(idx.Templates)
	idx.Stats = stats
	if err != nil {
		return nil, err
	}

	logger.Info("link index built",
		zap.Int("components", len(idx.Components)),
		zap.Int("templates", len(idx.Templates)),
		zap.Int("duplicates", idx.Duplicates),
		zap.Int("skipped", skipped))
	return idx, nil
}

// Component looks up a component by link ID.
func (idx *Index) Component(id string) (*Element, bool) {
	el, ok := idx.Components[id]
	return el, ok
}

// Template looks up a template entity by link ID.
func (idx *Index) Template(id string) (*Element, bool) {
	el, ok := idx.Templates[id]
	return el, ok
}
