package math

// Vertex2D is a 2D point or direction in table units.
type Vertex2D struct {
	X, Y float32
}

// NewVertex2D rounds x and y to float32.
func NewVertex2D(x, y float64) Vertex2D {
	return Vertex2D{F4(x), F4(y)}
}

// Add returns v + other.
func (v Vertex2D) Add(other Vertex2D) Vertex2D {
	return Vertex2D{add(v.X, other.X), add(v.Y, other.Y)}
}

// Sub returns v - other.
func (v Vertex2D) Sub(other Vertex2D) Vertex2D {
	return Vertex2D{sub(v.X, other.X), sub(v.Y, other.Y)}
}

// MultiplyScalar returns v * s.
func (v Vertex2D) MultiplyScalar(s float32) Vertex2D {
	return Vertex2D{mul(v.X, s), mul(v.Y, s)}
}

// DivideScalar multiplies by the rounded reciprocal of s.
func (v Vertex2D) DivideScalar(s float32) Vertex2D {
	inv := float32(1 / s)
	return v.MultiplyScalar(inv)
}

// Dot returns the dot product.
func (v Vertex2D) Dot(other Vertex2D) float32 {
	return add(mul(v.X, other.X), mul(v.Y, other.Y))
}

// LengthSq returns x² + y².
func (v Vertex2D) LengthSq() float32 {
	return add(mul(v.X, v.X), mul(v.Y, v.Y))
}

// Length returns the magnitude.
func (v Vertex2D) Length() float32 {
	return Sqrt(v.LengthSq())
}

// Normalize divides by the length, or by 1 for the zero vector.
func (v Vertex2D) Normalize() Vertex2D {
	l := v.Length()
	if l == 0 {
		l = 1
	}
	return v.DivideScalar(l)
}

// Distance returns the distance to another point.
func (v Vertex2D) Distance(other Vertex2D) float32 {
	return v.Sub(other).Length()
}

// IsZero reports whether both components are zero.
func (v Vertex2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// XYZ extends v with the given z.
func (v Vertex2D) XYZ(z float32) Vertex3D {
	return Vertex3D{v.X, v.Y, z}
}
