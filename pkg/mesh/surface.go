package mesh

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vpdb/server-sub007/pkg/formats"
	"github.com/vpdb/server-sub007/pkg/math"
)

// outline returns the rich points of a closed drag point loop.
func outline(points []formats.DragPoint) ([]math.RenderVertex, error) {
	rv := math.RichPoints(formats.ControlPoints(points), math.CurveOptions{Loop: true})
	if len(rv) < 3 {
		return nil, fmt.Errorf("outline has %d points, need at least 3", len(rv))
	}
	return rv, nil
}

// isCounterClockwise reports the orientation of a closed outline with y up.
func isCounterClockwise(pts []math.Vertex2D) bool {
	var area float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		area += float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
	}
	return area > 0
}

// WallSideMesh extrudes the outline between bottom and top. Each segment is a
// quad; smooth points share the averaged normal of their two segments.
func WallSideMesh(name string, rv []math.RenderVertex, bottom, top float32) *Mesh {
	pts := math.Positions2D(rv)
	n := len(pts)
	ccw := isCounterClockwise(pts)

	edgeNormals := make([]math.Vertex2D, n)
	for i := range pts {
		d := pts[(i+1)%n].Sub(pts[i])
		en := math.Vertex2D{X: d.Y, Y: -d.X}
		if !ccw {
			en = en.MultiplyScalar(-1)
		}
		edgeNormals[i] = en.Normalize()
	}

	vertexNormal := func(i, edge int) math.Vertex3D {
		if rv[i].Smooth {
			prev := edgeNormals[(i+n-1)%n]
			next := edgeNormals[i]
			return prev.Add(next).Normalize().XYZ(0)
		}
		return edgeNormals[edge].XYZ(0)
	}

	lengths := make([]float32, n+1)
	for i := range pts {
		lengths[i+1] = lengths[i] + pts[i].Distance(pts[(i+1)%n])
	}
	total := lengths[n]
	if total == 0 {
		total = 1
	}

	m := &Mesh{Name: name}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		u0, u1 := lengths[i]/total, lengths[i+1]/total
		ni, nj := vertexNormal(i, i), vertexNormal(j, i)

		base := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices,
			math.NewVertex3DNoTex2(pts[i].XYZ(bottom), ni, u0, 1),
			math.NewVertex3DNoTex2(pts[i].XYZ(top), ni, u0, 0),
			math.NewVertex3DNoTex2(pts[j].XYZ(top), nj, u1, 0),
			math.NewVertex3DNoTex2(pts[j].XYZ(bottom), nj, u1, 1),
		)

		face := edgeNormals[i].XYZ(0)
		quad := [4]uint32{base, base + 1, base + 2, base + 3}
		for _, tri := range [2][3]int{{0, 1, 2}, {0, 2, 3}} {
			a, b, c := quad[tri[0]], quad[tri[1]], quad[tri[2]]
			pa, pb, pc := m.Vertices[a].Position(), m.Vertices[b].Position(), m.Vertices[c].Position()
			if pc.Sub(pa).Cross(pb.Sub(pa)).Dot(face) < 0 {
				b, c = c, b
			}
			m.Indices = append(m.Indices, a, b, c)
		}
	}
	return m
}

// PolygonMesh triangulates the outline at height z, facing up. uv maps a
// point to texture coordinates.
func PolygonMesh(name string, rv []math.RenderVertex, z float32, uv func(math.Vertex2D) (float32, float32)) (*Mesh, error) {
	pts := math.Positions2D(rv)
	tris, err := math.Triangulate(pts)
	if err != nil {
		return nil, err
	}

	up := math.Vertex3D{Z: 1}
	m := &Mesh{Name: name, Vertices: make([]Vertex3DNoTex2, len(pts))}
	for i, p := range pts {
		tu, tv := uv(p)
		m.Vertices[i] = math.NewVertex3DNoTex2(p.XYZ(z), up, tu, tv)
	}
	m.Indices = make([]uint32, len(tris))
	for i, idx := range tris {
		m.Indices[i] = uint32(idx)
	}
	return m, nil
}

func buildSurface(ctx *Context, item *formats.ItemRecord) ([]Node, error) {
	s, err := itemData[*formats.Surface](item)
	if err != nil {
		return nil, err
	}
	if !s.TopVisible && !s.SideVisible {
		ctx.logger().Debug("wall is invisible", zap.String("item", item.Name))
		return nil, nil
	}
	rv, err := outline(s.Points)
	if err != nil {
		return nil, err
	}

	var nodes []Node
	if s.SideVisible {
		side := WallSideMesh(item.Name+".side", rv, s.HeightBottom, s.HeightTop)
		side.Material, side.Image = s.SideMaterial, s.SideImage
		nodes = append(nodes, Node{Group: GroupWalls, Mesh: side})
	}
	if s.TopVisible {
		w, h := ctx.Table.Width(), ctx.Table.Height()
		top, err := PolygonMesh(item.Name+".top", rv, s.HeightTop, func(p math.Vertex2D) (float32, float32) {
			return p.X / w, p.Y / h
		})
		if err != nil {
			return nil, err
		}
		top.Material, top.Image = s.TopMaterial, s.Image
		nodes = append(nodes, Node{Group: GroupWalls, Mesh: top})
	}
	return nodes, nil
}
