package math

// Matrix3D is a 4x4 transform in row-vector convention: a point v maps to v * M,
// so the translation lives in the last row and M1.Multiply(M2) applies M1 first.
//
// Layout (row, column):
//
//	[_11 _12 _13 _14]
//	[_21 _22 _23 _24]
//	[_31 _32 _33 _34]
//	[_41 _42 _43 _44]
type Matrix3D [4][4]float32

// Identity returns the identity transform.
func Identity() Matrix3D {
	return Matrix3D{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation returns a translation by (x, y, z).
func Translation(x, y, z float32) Matrix3D {
	m := Identity()
	m[3][0], m[3][1], m[3][2] = x, y, z
	return m
}

// Scaling returns a scale by (x, y, z).
func Scaling(x, y, z float32) Matrix3D {
	m := Identity()
	m[0][0], m[1][1], m[2][2] = x, y, z
	return m
}

// RotationX rotates around the X axis. angle is in radians.
func RotationX(angle float32) Matrix3D {
	c, s := Cos(angle), Sin(angle)
	m := Identity()
	m[1][1], m[1][2] = c, s
	m[2][1], m[2][2] = -s, c
	return m
}

// RotationY rotates around the Y axis. angle is in radians.
func RotationY(angle float32) Matrix3D {
	c, s := Cos(angle), Sin(angle)
	m := Identity()
	m[0][0], m[0][2] = c, -s
	m[2][0], m[2][2] = s, c
	return m
}

// RotationZ rotates around the Z axis. angle is in radians.
func RotationZ(angle float32) Matrix3D {
	c, s := Cos(angle), Sin(angle)
	m := Identity()
	m[0][0], m[0][1] = c, s
	m[1][0], m[1][1] = -s, c
	return m
}

// Multiply returns m * other: m is applied first, then other.
func (m Matrix3D) Multiply(other Matrix3D) Matrix3D {
	var r Matrix3D
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = sum4(
				mul(m[i][0], other[0][j]),
				mul(m[i][1], other[1][j]),
				mul(m[i][2], other[2][j]),
				mul(m[i][3], other[3][j]),
			)
		}
	}
	return r
}

// MultiplyVector transforms a point, dividing by w when the matrix is projective.
func (m Matrix3D) MultiplyVector(v Vertex3D) Vertex3D {
	x := sum4(mul(v.X, m[0][0]), mul(v.Y, m[1][0]), mul(v.Z, m[2][0]), m[3][0])
	y := sum4(mul(v.X, m[0][1]), mul(v.Y, m[1][1]), mul(v.Z, m[2][1]), m[3][1])
	z := sum4(mul(v.X, m[0][2]), mul(v.Y, m[1][2]), mul(v.Z, m[2][2]), m[3][2])
	w := sum4(mul(v.X, m[0][3]), mul(v.Y, m[1][3]), mul(v.Z, m[2][3]), m[3][3])
	if w == 1 || w == 0 {
		return Vertex3D{x, y, z}
	}
	invW := float32(1 / w)
	return Vertex3D{mul(x, invW), mul(y, invW), mul(z, invW)}
}

// MultiplyVectorNoTranslate transforms a direction (ignores translation).
func (m Matrix3D) MultiplyVectorNoTranslate(v Vertex3D) Vertex3D {
	return Vertex3D{
		sum3(mul(v.X, m[0][0]), mul(v.Y, m[1][0]), mul(v.Z, m[2][0])),
		sum3(mul(v.X, m[0][1]), mul(v.Y, m[1][1]), mul(v.Z, m[2][1])),
		sum3(mul(v.X, m[0][2]), mul(v.Y, m[1][2]), mul(v.Z, m[2][2])),
	}
}

// ColumnMajor flattens the matrix for consumers using the column-vector
// convention (glTF node matrices). The row-vector layout read row by row is
// exactly the column-major layout of the transposed, column-vector matrix.
func (m Matrix3D) ColumnMajor() [16]float32 {
	var out [16]float32
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i*4+j] = m[i][j]
		}
	}
	return out
}

// PerspectiveFovLH returns a left-handed perspective projection.
// fovY is in radians, aspect is width/height.
func PerspectiveFovLH(fovY, aspect, zNear, zFar float32) Matrix3D {
	yScale := float32(1 / Tan(mul(fovY, 0.5)))
	xScale := float32(yScale / aspect)
	depth := sub(zFar, zNear)
	q := float32(zFar / depth)

	var m Matrix3D
	m[0][0] = xScale
	m[1][1] = yScale
	m[2][2] = q
	m[2][3] = 1
	m[3][2] = float32(-mul(zNear, zFar) / depth)
	return m
}

// LookAtLH returns a left-handed view matrix looking from eye towards at.
func LookAtLH(eye, at, up Vertex3D) Matrix3D {
	zAxis := at.Sub(eye).Normalize()
	xAxis := up.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis)

	return Matrix3D{
		{xAxis.X, yAxis.X, zAxis.X, 0},
		{xAxis.Y, yAxis.Y, zAxis.Y, 0},
		{xAxis.Z, yAxis.Z, zAxis.Z, 0},
		{-xAxis.Dot(eye), -yAxis.Dot(eye), -zAxis.Dot(eye), 1},
	}
}
