package mesh

import (
	gomath "math"

	"github.com/vpdb/server-sub007/pkg/math"
)

const (
	minPrimitiveSides = 3
	maxPrimitiveSides = 100
)

type uvPoint struct {
	pos    math.Vertex3D
	tu, tv float32
}

// appendTriangle appends a flat-shaded triangle facing along normal.
func appendTriangle(out []Vertex3DNoTex2, a, b, c uvPoint, normal math.Vertex3D) []Vertex3DNoTex2 {
	if c.pos.Sub(a.pos).Cross(b.pos.Sub(a.pos)).Dot(normal) < 0 {
		b, c = c, b
	}
	return append(out,
		math.NewVertex3DNoTex2(a.pos, normal, a.tu, a.tv),
		math.NewVertex3DNoTex2(b.pos, normal, b.tu, b.tv),
		math.NewVertex3DNoTex2(c.pos, normal, c.tu, c.tv),
	)
}

// appendQuad appends two triangles for the corners a, b, c, d in order around the face.
func appendQuad(out []Vertex3DNoTex2, a, b, c, d uvPoint, normal math.Vertex3D) []Vertex3DNoTex2 {
	out = appendTriangle(out, a, b, c, normal)
	return appendTriangle(out, a, c, d, normal)
}

// unitBox returns the cube [0,1]^3 as 36 flat-shaded vertices.
func unitBox() []Vertex3DNoTex2 {
	corner := func(x, y, z float32) math.Vertex3D { return math.Vertex3D{X: x, Y: y, Z: z} }
	uv := func(p math.Vertex3D, tu, tv float32) uvPoint { return uvPoint{p, tu, tv} }

	faces := []struct {
		normal     math.Vertex3D
		a, b, c, d math.Vertex3D
	}{
		{math.Vertex3D{X: -1}, corner(0, 0, 0), corner(0, 1, 0), corner(0, 1, 1), corner(0, 0, 1)},
		{math.Vertex3D{X: 1}, corner(1, 0, 0), corner(1, 1, 0), corner(1, 1, 1), corner(1, 0, 1)},
		{math.Vertex3D{Y: -1}, corner(0, 0, 0), corner(1, 0, 0), corner(1, 0, 1), corner(0, 0, 1)},
		{math.Vertex3D{Y: 1}, corner(0, 1, 0), corner(1, 1, 0), corner(1, 1, 1), corner(0, 1, 1)},
		{math.Vertex3D{Z: -1}, corner(0, 0, 0), corner(1, 0, 0), corner(1, 1, 0), corner(0, 1, 0)},
		{math.Vertex3D{Z: 1}, corner(0, 0, 1), corner(1, 0, 1), corner(1, 1, 1), corner(0, 1, 1)},
	}

	out := make([]Vertex3DNoTex2, 0, 36)
	for _, f := range faces {
		out = appendQuad(out, uv(f.a, 0, 0), uv(f.b, 1, 0), uv(f.c, 1, 1), uv(f.d, 0, 1), f.normal)
	}
	return out
}

// unitPrism returns an n-sided prism inscribed in the unit square, z from 0 to 1,
// as flat-shaded triangles.
func unitPrism(sides int) []Vertex3DNoTex2 {
	sides = max(minPrimitiveSides, min(sides, maxPrimitiveSides))

	outerRadius := math.F4(0.5 / gomath.Cos(gomath.Pi/float64(sides)))
	addAngle := math.F4(2 * gomath.Pi / float64(sides))
	offsAngle := math.F4(gomath.Pi / float64(sides))
	center := math.Vertex2D{X: 0.5, Y: 0.5}

	ring := make([]math.Vertex2D, sides)
	for i := range ring {
		angle := float32(float32(i)*addAngle) + offsAngle
		ring[i] = math.Vertex2D{
			X: float32(math.Sin(angle)*outerRadius) + center.X,
			Y: float32(math.Cos(angle)*outerRadius) + center.Y,
		}
	}

	out := make([]Vertex3DNoTex2, 0, 6*sides+6*(sides-2))
	top, bottom := math.Vertex3D{Z: 1}, math.Vertex3D{Z: -1}
	for i := 0; i < sides; i++ {
		p, q := ring[i], ring[(i+1)%sides]
		mid := p.Add(q).MultiplyScalar(0.5).Sub(center)
		normal := mid.Normalize().XYZ(0)

		u0 := float32(i) / float32(sides)
		u1 := float32(i+1) / float32(sides)
		out = appendQuad(out,
			uvPoint{p.XYZ(0), u0, 1},
			uvPoint{q.XYZ(0), u1, 1},
			uvPoint{q.XYZ(1), u1, 0},
			uvPoint{p.XYZ(1), u0, 0},
			normal)
	}

	// caps as fans around the first ring vertex
	for i := 1; i < sides-1; i++ {
		a, b, c := ring[0], ring[i], ring[i+1]
		out = appendTriangle(out,
			uvPoint{a.XYZ(1), a.X, a.Y}, uvPoint{b.XYZ(1), b.X, b.Y}, uvPoint{c.XYZ(1), c.X, c.Y}, top)
		out = appendTriangle(out,
			uvPoint{a.XYZ(0), a.X, a.Y}, uvPoint{b.XYZ(0), b.X, b.Y}, uvPoint{c.XYZ(0), c.X, c.Y}, bottom)
	}
	return out
}
