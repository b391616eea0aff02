// Package mesh builds renderable geometry and lights from parsed table items.
//
// Coordinates stay in table units with z pointing up from the playfield; the
// scene exporter applies the unit scale and axis swap once at the root.
package mesh

import (
	"errors"

	"github.com/vpdb/server-sub007/pkg/formats"
	"github.com/vpdb/server-sub007/pkg/math"
)

// ErrMeshBuild is returned when an item cannot be turned into geometry.
var ErrMeshBuild = errors.New("mesh build failed")

// Scene groups, in the order they usually appear.
const (
	GroupPlayfield  = "playfield"
	GroupPrimitives = "primitives"
	GroupWalls      = "walls"
	GroupFlashers   = "flashers"
	GroupLightBulbs = "lightsBulbs"
	GroupLights     = "lights"
)

// Vertex3DNoTex2 is the vertex layout shared with imported meshes.
type Vertex3DNoTex2 = math.Vertex3DNoTex2

// RGBA is a linear color with alpha, channels in [0, 1].
type RGBA [4]float32

// Mesh is a triangle list. Without Indices every three vertices form a triangle.
type Mesh struct {
	Name     string
	Vertices []Vertex3DNoTex2
	Indices  []uint32
	// Material names a table material; empty selects the default.
	Material string
	// Image names a table image used as base color texture.
	Image string
	// Color overrides the material with a flat color.
	Color *RGBA
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vertex3D
	Max math.Vertex3D
}

// Bounds returns the bounding box of the vertex positions.
func (m *Mesh) Bounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0].Position(), Max: m.Vertices[0].Position()}
	for _, v := range m.Vertices[1:] {
		b.Min.X, b.Max.X = min(b.Min.X, v.X), max(b.Max.X, v.X)
		b.Min.Y, b.Max.Y = min(b.Min.Y, v.Y), max(b.Max.Y, v.Y)
		b.Min.Z, b.Max.Z = min(b.Min.Z, v.Z), max(b.Max.Z, v.Z)
	}
	return b
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m.Indices != nil {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}

// Light is a point light.
type Light struct {
	Name     string
	Position math.Vertex3D
	Color    formats.Color
	// Intensity is the item's bulb intensity.
	Intensity float32
	// Distance is the range in scene units.
	Distance float32
	Decay    float32
}

// Node is one scene entry: a mesh or a light within a group.
type Node struct {
	Group string
	Mesh  *Mesh
	Light *Light
}
