package math

// Position is either a 2D or a 3D point. The zero value is the 2D origin.
type Position struct {
	v    Vertex3D
	is3D bool
}

// Position2D wraps a 2D point.
func Position2D(v Vertex2D) Position {
	return Position{v: Vertex3D{v.X, v.Y, 0}}
}

// Position3D wraps a 3D point.
func Position3D(v Vertex3D) Position {
	return Position{v: v, is3D: true}
}

// Is3D reports whether the position carries a z component.
func (p Position) Is3D() bool {
	return p.is3D
}

// XY returns the planar part of the position.
func (p Position) XY() Vertex2D {
	return p.v.XY()
}

// XYZ returns the position in 3D; 2D positions have z = 0.
func (p Position) XYZ() Vertex3D {
	return p.v
}

// RenderVertex is a sample along a drag-point curve.
type RenderVertex struct {
	Pos Position

	// Smooth marks points whose neighbouring segments blend normals.
	Smooth bool
	// Slingshot marks the start of a slingshot segment.
	Slingshot bool
	// ControlPoint is set for samples that coincide with a user drag point.
	ControlPoint bool
}

// Positions2D returns the planar positions of a sample list.
func Positions2D(vs []RenderVertex) []Vertex2D {
	out := make([]Vertex2D, len(vs))
	for i, v := range vs {
		out[i] = v.Pos.XY()
	}
	return out
}
