package mesh

import (
	"errors"

	"go.uber.org/zap"

	"github.com/vpdb/server-sub007/pkg/formats"
	"github.com/vpdb/server-sub007/pkg/math"
)

var errEmptyMesh = errors.New("mesh has no vertices")

// PrimitiveMatrix returns the item transform: scale by the size, rotate
// (X, Y, Z), translate, apply the object rotation (X, Y, Z) and move to the
// position.
func PrimitiveMatrix(p *formats.Primitive) math.Matrix3D {
	rt := p.RotAndTra
	rad := math.DegToRad
	return math.Scaling(p.Size.X, p.Size.Y, p.Size.Z).
		Multiply(math.RotationX(rad(rt[0]))).
		Multiply(math.RotationY(rad(rt[1]))).
		Multiply(math.RotationZ(rad(rt[2]))).
		Multiply(math.Translation(rt[3], rt[4], rt[5])).
		Multiply(math.RotationX(rad(rt[6]))).
		Multiply(math.RotationY(rad(rt[7]))).
		Multiply(math.RotationZ(rad(rt[8]))).
		Multiply(math.Translation(p.Position.X, p.Position.Y, p.Position.Z))
}

// mirrors reports whether m flips handedness, which reverses triangle winding.
func mirrors(m math.Matrix3D) bool {
	det := float64(m[0][0])*(float64(m[1][1])*float64(m[2][2])-float64(m[1][2])*float64(m[2][1])) -
		float64(m[0][1])*(float64(m[1][0])*float64(m[2][2])-float64(m[1][2])*float64(m[2][0])) +
		float64(m[0][2])*(float64(m[1][0])*float64(m[2][1])-float64(m[1][1])*float64(m[2][0]))
	return det < 0
}

func transformVertex(m math.Matrix3D, v Vertex3DNoTex2) Vertex3DNoTex2 {
	pos := m.MultiplyVector(v.Position())
	normal := m.MultiplyVectorNoTranslate(v.Normal()).Normalize()
	return math.NewVertex3DNoTex2(pos, normal, v.Tu, v.Tv)
}

// transformMesh applies m to vertices and keeps front faces in front.
func transformMesh(m math.Matrix3D, vertices []Vertex3DNoTex2, indices []uint32) ([]Vertex3DNoTex2, []uint32) {
	out := make([]Vertex3DNoTex2, len(vertices))
	for i, v := range vertices {
		out[i] = transformVertex(m, v)
	}
	if !mirrors(m) {
		return out, indices
	}
	if indices == nil {
		for i := 0; i+2 < len(out); i += 3 {
			out[i+1], out[i+2] = out[i+2], out[i+1]
		}
		return out, nil
	}
	flipped := make([]uint32, len(indices))
	copy(flipped, indices)
	for i := 0; i+2 < len(flipped); i += 3 {
		flipped[i+1], flipped[i+2] = flipped[i+2], flipped[i+1]
	}
	return out, flipped
}

// builtinShape returns the unit-domain shape for a side count.
func builtinShape(sides int32) []Vertex3DNoTex2 {
	if sides == 4 {
		return unitBox()
	}
	return unitPrism(int(sides))
}

// PrimitiveMesh builds the transformed geometry of a primitive item.
func PrimitiveMesh(name string, p *formats.Primitive) (*Mesh, error) {
	m := PrimitiveMatrix(p)

	var vertices []Vertex3DNoTex2
	var indices []uint32
	if p.UseMesh && p.Mesh != nil {
		if len(p.Mesh.Vertices) == 0 {
			return nil, errEmptyMesh
		}
		vertices, indices = transformMesh(m, p.Mesh.Vertices, p.Mesh.Indices)
	} else {
		vertices, _ = transformMesh(m, builtinShape(p.Sides), nil)
	}

	return &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Material: p.Material,
		Image:    p.Image,
	}, nil
}

func buildPrimitive(ctx *Context, item *formats.ItemRecord) ([]Node, error) {
	p, err := itemData[*formats.Primitive](item)
	if err != nil {
		return nil, err
	}
	if !p.Visible {
		ctx.logger().Debug("primitive is invisible", zap.String("item", item.Name))
		return nil, nil
	}
	m, err := PrimitiveMesh(item.Name, p)
	if err != nil {
		return nil, err
	}
	return []Node{{Group: GroupPrimitives, Mesh: m}}, nil
}
