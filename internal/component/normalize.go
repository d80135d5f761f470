package component

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"gsa-map-porter/internal/assetpath"
	"gsa-map-porter/internal/gsa"
	"gsa-map-porter/internal/scene"
)

// Component classes with dedicated handling.
const (
	ClassTransform  = "NiTransformationComponent"
	ClassSceneGraph = "NiSceneGraphComponent"
	ClassLight      = "NiLightComponent"
	ClassCamera     = "NiCameraComponent"
	ClassGeneral    = "NiGeneralComponent"
	ClassCollision  = "NiCollisionComponent"
)

// ErrAttributeParse marks property text that does not match its declared type.
var ErrAttributeParse = errors.New("attribute parse error")

// DefaultScale applies to transforms whose whole master chain omits Scale.
const DefaultScale = 1.0

// recognized classes produce no unhandled diagnostic, even when they carry
// no attributes of their own.
var recognized = map[string]bool{
	ClassTransform:  true,
	ClassSceneGraph: true,
	ClassLight:      true,
	ClassCamera:     true,
	ClassGeneral:    true,
	ClassCollision:  true,
}

// IsRecognized reports whether class has a known normalization.
func IsRecognized(class string) bool {
	return recognized[class]
}

// Normalizer turns raw COMPONENT elements into normalized components.
type Normalizer struct {
	docDir string
	paths  assetpath.Resolver
	logger *zap.Logger
}

// New returns a Normalizer resolving asset paths relative to docDir,
// the directory of the source document.
func New(docDir string, paths assetpath.Resolver, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		docDir: docDir,
		paths:  paths,
		logger: logger.Named("component"),
	}
}

// Normalize reads el's own properties only. Inherited attributes and
// defaults are the resolver's job.
func (n *Normalizer) Normalize(el *gsa.Element, diag *scene.Diagnostics) scene.Component {
	c := scene.Component{
		LinkID: strings.TrimSpace(el.LinkID()),
		Class:  el.Class(),
		Name:   el.Name(),
		Attrs:  make(map[string]any),
	}

	switch c.Class {
	case ClassTransform:
		n.transform(el, &c, diag)
	case ClassSceneGraph:
		n.sceneGraph(el, &c, diag)
	case ClassLight:
		n.light(el, &c, diag)
	case ClassCamera, ClassGeneral, ClassCollision:
	default:
		if diag.AddUnhandled(c.Class, c.Name) {
			n.logger.Debug("unhandled component class",
				zap.String("class", c.Class), zap.String("name", c.Name))
		}
	}
	return c
}

// Finalize fills defaults once the master chain has been merged.
func (n *Normalizer) Finalize(c *scene.Component) {
	if c.Class == ClassTransform && !c.Has("scale") {
		c.Set("scale", DefaultScale)
	}
}

func (n *Normalizer) parseFailed(c *scene.Component, attr, text string, err error, diag *scene.Diagnostics) {
	diag.Note(scene.AttributeParse)
	n.logger.Warn("could not parse attribute",
		zap.String("link_id", c.LinkID),
		zap.String("class", c.Class),
		zap.String("attribute", attr),
		zap.String("text", text),
		zap.Error(err))
}
