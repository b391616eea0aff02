package mesh

import (
	"fmt"

	"github.com/vpdb/server-sub007/pkg/math"
)

// BuildPlayfield returns the playfield quad spanning (0, 0) to the table size at z = 0.
func BuildPlayfield(ctx *Context) (*Mesh, error) {
	t := ctx.Table
	w, h := t.Width(), t.Height()
	if !(w > 0) || !(h > 0) {
		return nil, fmt.Errorf("%w: playfield: invalid table size %vx%v", ErrMeshBuild, w, h)
	}

	up := math.Vertex3D{Z: 1}
	corner := func(x, y, u, v float32) Vertex3DNoTex2 {
		return math.NewVertex3DNoTex2(math.Vertex3D{X: x, Y: y}, up, u, v)
	}
	return &Mesh{
		Name: "playfield",
		Vertices: []Vertex3DNoTex2{
			corner(w, h, 1, 1),
			corner(w, 0, 1, 0),
			corner(0, 0, 0, 0),
			corner(0, h, 0, 1),
			corner(w, h, 1, 1),
			corner(0, 0, 0, 0),
		},
		Material: t.GameData.PlayfieldMaterial,
		Image:    t.GameData.Image,
	}, nil
}
