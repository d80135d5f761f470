package placement

import "image/color"

// Color is a linear RGB triple in [0, 1].
type Color [3]float64

// RGBA converts c to an opaque 8-bit color.
func (c Color) RGBA() color.NRGBA {
	conv := func(v float64) uint8 {
		v = min(max(v, 0), 1)
		return uint8(v*255 + 0.5)
	}
	return color.NRGBA{conv(c[0]), conv(c[1]), conv(c[2]), 255}
}

var typeColors = map[string]Color{
	"Object":       {0.75, 0.75, 0.75},
	"Telejump":     {0.0, 1.0, 0.5},
	"PhysX":        {1.0, 0.5, 0.0},
	"MainCamera":   {0.0, 0.5, 1.0},
	"Light":        {1.0, 1.0, 0.0},
	"GlowMap":      {1.0, 0.0, 1.0},
	"SharedStream": {0.0, 1.0, 1.0},
}

// DefaultColor is used for entity types without an assigned color.
var DefaultColor = Color{0.5, 0.5, 0.5}

var typeMeshes = map[string]string{
	"Object":       "/Engine/BasicShapes/Cube",
	"Telejump":     "/Engine/BasicShapes/Cylinder",
	"PhysX":        "/Engine/BasicShapes/Sphere",
	"MainCamera":   "/Engine/EditorMeshes/Camera/SM_CineCam",
	"Light":        "/Engine/EditorMeshes/Lighting/LightIcon_PointLight",
	"GlowMap":      "/Engine/BasicShapes/Plane",
	"SharedStream": "/Engine/BasicShapes/Plane",
}

// DefaultMesh is the proxy mesh for unknown entity types.
const DefaultMesh = "/Engine/BasicShapes/Cube"

// ColorFor returns the color coding for an entity type.
func ColorFor(typ string) Color {
	if c, ok := typeColors[typ]; ok {
		return c
	}
	return DefaultColor
}

// MeshFor returns the proxy mesh for an entity type.
func MeshFor(typ string) string {
	if m, ok := typeMeshes[typ]; ok {
		return m
	}
	return DefaultMesh
}
