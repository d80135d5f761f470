package scene

import (
	"slices"
	"sync"
)

// Kind classifies a recoverable condition met while resolving a scene.
type Kind int

const (
	TemplateNotFound Kind = iota
	ComponentNotFound
	AttributeParse
	PathResolution
	MasterCycle
	numKinds
)

func (k Kind) String() string {
	switch k {
	case TemplateNotFound:
		return "template_not_found"
	case ComponentNotFound:
		return "component_not_found"
	case AttributeParse:
		return "attribute_parse_error"
	case PathResolution:
		return "path_resolution_error"
	case MasterCycle:
		return "master_cycle"
	}
	return "unknown"
}

// Diagnostics accumulates what a run could not convert cleanly. It is passed
// through resolution explicitly and is safe for concurrent use.
type Diagnostics struct {
	mu        sync.Mutex
	unhandled map[string]struct{}
	counts    [numKinds]int
}

// NewDiagnostics returns an empty accumulator.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{unhandled: make(map[string]struct{})}
}

// AddUnhandled records an unrecognized component class once per
// class::name pair and reports whether the pair was new.
func (d *Diagnostics) AddUnhandled(class, name string) bool {
	key := class + "::" + name
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unhandled == nil {
		d.unhandled = make(map[string]struct{})
	}
	if _, ok := d.unhandled[key]; ok {
		return false
	}
	d.unhandled[key] = struct{}{}
	return true
}

// Unhandled returns the recorded class::name pairs, sorted.
func (d *Diagnostics) Unhandled() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.unhandled))
	for k := range d.unhandled {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Note counts one occurrence of k.
func (d *Diagnostics) Note(k Kind) {
	if k < 0 || k >= numKinds {
		return
	}
	d.mu.Lock()
	d.counts[k]++
	d.mu.Unlock()
}

// Count returns how many times k was noted.
func (d *Diagnostics) Count(k Kind) int {
	if k < 0 || k >= numKinds {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[k]
}

// Counts returns every non-zero count keyed by kind name.
func (d *Diagnostics) Counts() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]int)
	for k := Kind(0); k < numKinds; k++ {
		if n := d.counts[k]; n > 0 {
			out[k.String()] = n
		}
	}
	return out
}
