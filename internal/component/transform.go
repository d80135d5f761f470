package component

import (
	"gsa-map-porter/internal/gsa"
	"gsa-map-porter/internal/scene"
)

// Transform property names.
const (
	propTranslation = "Translation"
	propRotation    = "Rotation"
	propScale       = "Scale"
)

func (n *Normalizer) transform(el *gsa.Element, c *scene.Component, diag *scene.Diagnostics) {
	if p, ok := el.Property(propTranslation); ok && p.Value() != "" {
		if v, err := parseFloats(p.Value(), 3); err != nil {
			n.parseFailed(c, "translation", p.Value(), err, diag)
		} else {
			c.Set("translation", v)
		}
	}

	if p, ok := el.Property(propRotation); ok && (len(p.Rows) > 0 || p.Value() != "") {
		if m, err := parseMatrix3(p); err != nil {
			n.parseFailed(c, "rotation", p.Value(), err, diag)
		} else {
			c.Set("rotation", m)
		}
	}

	if p, ok := el.Property(propScale); ok && p.Value() != "" {
		if f, err := parseFloat(p.Value()); err != nil {
			n.parseFailed(c, "scale", p.Value(), err, diag)
		} else {
			c.Set("scale", f)
		}
	}
}
