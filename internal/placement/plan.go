// Package placement turns a converted scene into an editor placement plan:
// one actor per transformed entity with location, rotation, proxy mesh,
// color coding and folder.
package placement

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"gsa-map-porter/internal/mathutil"
	"gsa-map-porter/internal/scene"
)

// DefaultScaleFactor converts source world units to editor units.
const DefaultScaleFactor = 0.02

// DefaultMapPrefix prefixes generated map names.
const DefaultMapPrefix = "DragonicaMap"

// Component classes read by the planner.
const (
	classTransform  = "NiTransformationComponent"
	classSceneGraph = "NiSceneGraphComponent"
)

// Kind is the editor actor class spawned for an entity.
type Kind string

const (
	KindStaticMesh    Kind = "StaticMeshActor"
	KindPointLight    Kind = "PointLight"
	KindCamera        Kind = "CameraActor"
	KindTriggerBox    Kind = "TriggerBox"
	KindPostProcess   Kind = "PostProcessVolume"
	KindTriggerVolume Kind = "TriggerVolume"
)

// Light holds the settings applied to spawned point lights.
type Light struct {
	Intensity float64 `json:"intensity"`
	Color     Color   `json:"color"`
}

// DefaultLight matches the warm white used for all converted lights.
var DefaultLight = Light{Intensity: 5000, Color: Color{1, 0.9, 0.8}}

// Actor is one planned actor.
type Actor struct {
	Label    string           `json:"label"`
	Entity   string           `json:"entity"`
	Type     string           `json:"type"`
	Kind     Kind             `json:"kind"`
	Mesh     string           `json:"mesh,omitempty"`
	Location mathutil.Vec3    `json:"location"`
	Rotation mathutil.Rotator `json:"rotation"`
	Scale    mathutil.Vec3    `json:"scale"`
	Color    Color            `json:"color"`
	Folder   string           `json:"folder"`
	Tags     []string         `json:"tags,omitempty"`
	Light    *Light           `json:"light,omitempty"`
}

// Plan is the full placement for one scene.
type Plan struct {
	Map         string         `json:"map"`
	ScaleFactor float64        `json:"scale_factor"`
	Actors      []Actor        `json:"actors"`
	Folders     map[string]int `json:"folders"`
	Unplaced    int            `json:"unplaced"`
}

// Options controls Build.
type Options struct {
	MapName     string
	ScaleFactor float64
	Logger      *zap.Logger
}

// MapName derives the map name for a scene file: <prefix>_<file stem>.
func MapName(prefix, scenePath string) string {
	if prefix == "" {
		prefix = DefaultMapPrefix
	}
	base := filepath.Base(scenePath)
	return prefix + "_" + strings.TrimSuffix(base, filepath.Ext(base))
}

// Build plans an actor for every entity that has a transform component.
// Entities without one are counted in Unplaced.
func Build(doc *scene.Document, opts Options) Plan {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("placement")
	factor := opts.ScaleFactor
	if factor <= 0 {
		factor = DefaultScaleFactor
	}

	plan := Plan{
		Map:         "/Game/Maps/" + opts.MapName,
		ScaleFactor: factor,
		Actors:      make([]Actor, 0, len(doc.Entities)),
		Folders:     make(map[string]int),
	}

	for _, e := range doc.Entities {
		xf, ok := e.FindClass(classTransform)
		if !ok {
			plan.Unplaced++
			logger.Debug("entity has no transform, not placed", zap.String("entity", e.Name))
			continue
		}
		a := actorFor(e, xf, factor)
		plan.Actors = append(plan.Actors, a)
		plan.Folders[a.Folder]++
	}

	logger.Info("placement plan built",
		zap.String("map", plan.Map),
		zap.Int("actors", len(plan.Actors)),
		zap.Int("unplaced", plan.Unplaced),
		zap.Any("folders", plan.Folders))
	return plan
}

func actorFor(e scene.Entity, xf scene.Component, factor float64) Actor {
	typ := e.Type
	if typ == "" {
		typ = "Object"
	}
	kind, mesh := kindFor(typ)

	var loc mathutil.Vec3
	if t, ok := xf.Floats("translation"); ok && len(t) == 3 {
		loc = mathutil.Vec3{t[0], t[1], t[2]}.Scale(factor)
	}

	s, ok := xf.Float("scale")
	if !ok {
		s = 1
	}
	scale := mathutil.Uniform(s)

	var rot mathutil.Rotator
	if rows, ok := xf.Matrix("rotation"); ok {
		if m, ok := mathutil.Mat3FromRows(rows); ok {
			r, mirrored := mathutil.ProperRotation(m)
			rot = mathutil.Mat3ToQuat(mathutil.YUpToZUp(r)).ToRotator()
			// Source local Z is the editor's local Y.
			if mirrored {
				scale[1] = -scale[1]
			}
		}
	}

	a := Actor{
		Label:    typ + "_" + e.Name,
		Entity:   e.Name,
		Type:     typ,
		Kind:     kind,
		Mesh:     mesh,
		Location: loc,
		Rotation: rot,
		Scale:    scale,
		Color:    ColorFor(typ),
		Folder:   "/" + typ,
	}
	if kind == KindPointLight {
		l := DefaultLight
		a.Light = &l
	}

	if sg, ok := e.FindClass(classSceneGraph); ok {
		if p, ok := sg.String("unreal_path"); ok && p != "" {
			a.Tags = append(a.Tags, "OriginalAsset:"+p)
		}
	}
	return a
}

// kindFor picks the actor class and, for mesh actors, the proxy mesh.
func kindFor(typ string) (Kind, string) {
	switch typ {
	case "Light":
		return KindPointLight, ""
	case "MainCamera":
		return KindCamera, ""
	case "Telejump":
		return KindTriggerBox, ""
	case "GlowMap":
		return KindPostProcess, ""
	case "SharedStream":
		return KindTriggerVolume, ""
	}
	return KindStaticMesh, MeshFor(typ)
}

// WriteFile writes plan as indented JSON.
func WriteFile(path string, plan Plan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("placement: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("placement: create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("placement: write %s: %w", path, err)
	}
	return nil
}
