package component

import (
	"go.uber.org/zap"

	"gsa-map-porter/internal/gsa"
	"gsa-map-porter/internal/scene"
)

// Scene graph properties, in lookup order.
const (
	propSceneRoot   = "Scene Root"
	propNIFFilePath = "NIF File Path"
)

func (n *Normalizer) sceneGraph(el *gsa.Element, c *scene.Component, diag *scene.Diagnostics) {
	p, ok := el.Property(propSceneRoot)
	if !ok {
		p, ok = el.Property(propNIFFilePath)
	}
	if !ok || p.Value() == "" {
		return
	}

	rel := p.Value()
	c.Set("nif_path_rel", rel)

	target, err := n.paths.Resolve(rel, n.docDir)
	if err != nil {
		diag.Note(scene.PathResolution)
		n.logger.Warn("could not resolve asset path",
			zap.String("link_id", c.LinkID),
			zap.String("nif_path_rel", rel),
			zap.Error(err))
		return
	}
	c.Set("unreal_path", target)
}
