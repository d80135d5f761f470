package resolve

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"cogentcore.org/core/base/ordmap"
	"go.uber.org/zap"

	"gsa-map-porter/internal/component"
	"gsa-map-porter/internal/gsa"
	"gsa-map-porter/internal/scene"
)

var (
	ErrComponentNotFound = errors.New("component not found")
	ErrTemplateNotFound  = errors.New("template not found")
)

// Outcome tags how a component reference resolved.
type Outcome int

const (
	Resolved Outcome = iota
	Cycle            // resolved, but the master chain looped and was cut
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Cycle:
		return "cycle"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// Result is the resolution of one component link ID.
type Result struct {
	Component scene.Component
	Outcome   Outcome
}

// Resolver resolves components and entities against a finished link index.
// Resolved components are shared between entities and must not be mutated.
type Resolver struct {
	index  *gsa.Index
	norm   *component.Normalizer
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]Result
}

// New returns a Resolver over index.
func New(index *gsa.Index, norm *component.Normalizer, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		index:  index,
		norm:   norm,
		logger: logger.Named("resolve"),
		cache:  make(map[string]Result),
	}
}

// Resolve follows id's master chain, merging master attributes under the
// component's own, then applies class defaults. Each ID is resolved once
// per Resolver.
func (r *Resolver) Resolve(id string, diag *scene.Diagnostics) Result {
	r.mu.Lock()
	res, ok := r.cache[id]
	r.mu.Unlock()
	if ok {
		return res
	}

	comp, outcome := r.chain(id, make(map[string]bool), diag)
	if outcome != NotFound {
		r.norm.Finalize(&comp)
	}
	res = Result{Component: comp, Outcome: outcome}

	r.mu.Lock()
	r.cache[id] = res
	r.mu.Unlock()
	return res
}

// Component resolves id or reports ErrComponentNotFound.
func (r *Resolver) Component(id string, diag *scene.Diagnostics) (scene.Component, error) {
	res := r.Resolve(id, diag)
	if res.Outcome == NotFound {
		return scene.Component{}, fmt.Errorf("resolve: component %s: %w", id, ErrComponentNotFound)
	}
	return res.Component, nil
}

// chain resolves one link of a master chain. visited holds the IDs already
// on the current chain.
func (r *Resolver) chain(id string, visited map[string]bool, diag *scene.Diagnostics) (scene.Component, Outcome) {
	el, ok := r.index.Component(id)
	if !ok {
		return scene.Component{}, NotFound
	}
	visited[id] = true

	own := r.norm.Normalize(el, diag)
	master, has := el.MasterLinkID()
	master = strings.TrimSpace(master)
	if !has || master == "" {
		return own, Resolved
	}

	if visited[master] {
		diag.Note(scene.MasterCycle)
		r.logger.Warn("master component chain loops, cut at repeated link",
			zap.String("link_id", id), zap.String("master_link_id", master))
		return own, Cycle
	}

	base, outcome := r.chain(master, visited, diag)
	if outcome == NotFound {
		r.logger.Debug("master component not found, using own attributes only",
			zap.String("link_id", id), zap.String("master_link_id", master))
		return own, Resolved
	}
	return own.Overlay(base), outcome
}

// Entity resolves an instance entity: its template's components first, then
// its own, keyed by component name. An instance component replaces the
// template component of the same name wholesale and takes over its position.
func (r *Resolver) Entity(el *gsa.Element, diag *scene.Diagnostics) (scene.Entity, error) {
	master, _ := el.MasterLinkID()
	master = strings.TrimSpace(master)
	tmpl, ok := r.index.Template(master)
	if master == "" || !ok {
		return scene.Entity{}, fmt.Errorf("resolve: entity %q (%s) master %q: %w",
			el.Name(), el.LinkID(), master, ErrTemplateNotFound)
	}

	merged := ordmap.New[string, scene.Component]()
	r.collect(tmpl, el, merged, diag)
	r.collect(el, el, merged, diag)

	return scene.Entity{
		Name:       el.Name(),
		Class:      el.Class(),
		Type:       el.Get(gsa.AttrType),
		TemplateID: tmpl.LinkID(),
		InstanceID: el.LinkID(),
		Components: merged.Values(),
	}, nil
}

// collect resolves every COMPONENT reference under owner into merged.
// instance is only used for log context.
func (r *Resolver) collect(owner, instance *gsa.Element, merged *ordmap.Map[string, scene.Component], diag *scene.Diagnostics) {
	for _, c := range owner.Components() {
		ref := c.RefID()
		if ref == "" {
			r.logger.Debug("component reference without link id",
				zap.String("entity", instance.Name()), zap.String("owner", owner.LinkID()))
			continue
		}

		comp, err := r.Component(ref, diag)
		if err != nil {
			diag.Note(scene.ComponentNotFound)
			r.logger.Warn("component reference does not resolve",
				zap.String("entity", instance.Name()),
				zap.String("instance_id", instance.LinkID()),
				zap.String("owner", owner.LinkID()),
				zap.String("ref_link_id", ref))
			continue
		}
		merged.Add(comp.Name, comp)
	}
}
