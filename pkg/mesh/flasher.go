package mesh

import (
	"go.uber.org/zap"

	"github.com/vpdb/server-sub007/pkg/formats"
	"github.com/vpdb/server-sub007/pkg/math"
)

// FlasherMatrix rotates around the flasher center and lifts it to its height.
func FlasherMatrix(f *formats.Flasher) math.Matrix3D {
	rad := math.DegToRad
	return math.Translation(-f.CenterX, -f.CenterY, 0).
		Multiply(math.RotationZ(rad(f.RotZ))).
		Multiply(math.RotationY(rad(f.RotY))).
		Multiply(math.RotationX(rad(f.RotX))).
		Multiply(math.Translation(f.CenterX, f.CenterY, f.Height))
}

// FlasherMesh triangulates the flasher outline. Texture coordinates span the
// bounding box of the unrotated outline.
func FlasherMesh(name string, f *formats.Flasher) (*Mesh, error) {
	rv, err := outline(f.Points)
	if err != nil {
		return nil, err
	}

	pts := math.Positions2D(rv)
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, hi.X = min(lo.X, p.X), max(hi.X, p.X)
		lo.Y, hi.Y = min(lo.Y, p.Y), max(hi.Y, p.Y)
	}
	span := hi.Sub(lo)
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}

	m, err := PolygonMesh(name, rv, 0, func(p math.Vertex2D) (float32, float32) {
		return (p.X - lo.X) / span.X, (p.Y - lo.Y) / span.Y
	})
	if err != nil {
		return nil, err
	}
	m.Vertices, m.Indices = transformMesh(FlasherMatrix(f), m.Vertices, m.Indices)

	c := f.Color.Linear()
	alpha := float32(f.Alpha) / 100
	m.Color = &RGBA{c[0], c[1], c[2], max(0, min(alpha, 1))}
	m.Image = f.Image
	return m, nil
}

func buildFlasher(ctx *Context, item *formats.ItemRecord) ([]Node, error) {
	f, err := itemData[*formats.Flasher](item)
	if err != nil {
		return nil, err
	}
	if !f.Visible {
		ctx.logger().Debug("flasher is invisible", zap.String("item", item.Name))
		return nil, nil
	}
	m, err := FlasherMesh(item.Name, f)
	if err != nil {
		return nil, err
	}
	return []Node{{Group: GroupFlashers, Mesh: m}}, nil
}
