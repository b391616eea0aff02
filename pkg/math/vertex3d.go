package math

// Vertex3D is a 3D point or direction in table units. Z points up from the playfield.
type Vertex3D struct {
	X, Y, Z float32
}

// NewVertex3D rounds x, y and z to float32.
func NewVertex3D(x, y, z float64) Vertex3D {
	return Vertex3D{F4(x), F4(y), F4(z)}
}

// Add returns v + other.
func (v Vertex3D) Add(other Vertex3D) Vertex3D {
	return Vertex3D{add(v.X, other.X), add(v.Y, other.Y), add(v.Z, other.Z)}
}

// Sub returns v - other.
func (v Vertex3D) Sub(other Vertex3D) Vertex3D {
	return Vertex3D{sub(v.X, other.X), sub(v.Y, other.Y), sub(v.Z, other.Z)}
}

// MultiplyScalar returns v * s.
func (v Vertex3D) MultiplyScalar(s float32) Vertex3D {
	return Vertex3D{mul(v.X, s), mul(v.Y, s), mul(v.Z, s)}
}

// DivideScalar multiplies by the rounded reciprocal of s.
func (v Vertex3D) DivideScalar(s float32) Vertex3D {
	inv := float32(1 / s)
	return v.MultiplyScalar(inv)
}

// Dot returns the dot product.
func (v Vertex3D) Dot(other Vertex3D) float32 {
	return sum3(mul(v.X, other.X), mul(v.Y, other.Y), mul(v.Z, other.Z))
}

// Cross returns the cross product.
func (v Vertex3D) Cross(other Vertex3D) Vertex3D {
	return Vertex3D{
		sub(mul(v.Y, other.Z), mul(v.Z, other.Y)),
		sub(mul(v.Z, other.X), mul(v.X, other.Z)),
		sub(mul(v.X, other.Y), mul(v.Y, other.X)),
	}
}

// LengthSq returns x² + y² + z².
func (v Vertex3D) LengthSq() float32 {
	return v.Dot(v)
}

// Length returns the magnitude.
func (v Vertex3D) Length() float32 {
	return Sqrt(v.LengthSq())
}

// Normalize divides by the length, or by 1 for the zero vector.
func (v Vertex3D) Normalize() Vertex3D {
	l := v.Length()
	if l == 0 {
		l = 1
	}
	return v.DivideScalar(l)
}

// Distance returns the distance to another point.
func (v Vertex3D) Distance(other Vertex3D) float32 {
	return v.Sub(other).Length()
}

// XY drops the z component.
func (v Vertex3D) XY() Vertex2D {
	return Vertex2D{v.X, v.Y}
}
