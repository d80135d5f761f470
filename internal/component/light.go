package component

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gsa-map-porter/internal/gsa"
	"gsa-map-porter/internal/scene"
)

// Declared property classes inside a light component.
const (
	propClassEntityPointer = "Entity Pointer"
	propClassColorRGB      = "Color (RGB)"
	propClassFloat         = "Float"
)

var lower = cases.Lower(language.Und)

// LightKey turns a property name into an attribute key:
// "Attenuation (Constant)" -> "attenuation_constant".
func LightKey(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range lower.String(name) {
		switch {
		case unicode.IsSpace(r) || r == '_':
			pendingSep = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep {
				b.WriteByte('_')
				pendingSep = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (n *Normalizer) light(el *gsa.Element, c *scene.Component, diag *scene.Diagnostics) {
	for i := range el.Properties {
		p := &el.Properties[i]
		key := LightKey(p.Name)
		if key == "" {
			continue
		}
		text := p.Value()

		var v any
		switch p.Class {
		case propClassEntityPointer:
			refs := make([]string, 0, len(p.Items))
			for _, it := range p.Items {
				if id := strings.TrimSpace(it.RefLinkID); id != "" {
					refs = append(refs, id)
				}
			}
			v = refs
		case propClassColorRGB:
			rgb, err := parseFloats(text, 3)
			if err != nil {
				n.parseFailed(c, key, text, err, diag)
				continue
			}
			v = rgb
		case propClassFloat:
			f, err := parseFloat(text)
			if err != nil {
				n.parseFailed(c, key, text, err, diag)
				continue
			}
			v = f
		default:
			v = text
		}

		if !c.Set(key, v) {
			n.logger.Debug("light property shadows a base key, dropped",
				zap.String("link_id", c.LinkID), zap.String("property", p.Name))
		}
	}
}
