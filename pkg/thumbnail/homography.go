package thumbnail

// homography maps the unit square onto a quad:
//
//	x = (a*u + b*v + c) / (g*u + h*v + 1)
//	y = (d*u + e*v + f) / (g*u + h*v + 1)
//
// Coefficients are kept in float64; they only drive texture lookups.
type homography [3][3]float64

// squareToQuad maps (0,0), (1,0), (1,1), (0,1) to q[0..3].
func squareToQuad(q Quad) (homography, bool) {
	x0, y0 := float64(q[0].X), float64(q[0].Y)
	x1, y1 := float64(q[1].X), float64(q[1].Y)
	x2, y2 := float64(q[2].X), float64(q[2].Y)
	x3, y3 := float64(q[3].X), float64(q[3].Y)

	sx := x0 - x1 + x2 - x3
	sy := y0 - y1 + y2 - y3
	if sx == 0 && sy == 0 {
		return homography{
			{x1 - x0, x3 - x0, x0},
			{y1 - y0, y3 - y0, y0},
			{0, 0, 1},
		}, true
	}

	dx1, dx2 := x1-x2, x3-x2
	dy1, dy2 := y1-y2, y3-y2
	det := dx1*dy2 - dx2*dy1
	if det == 0 {
		return homography{}, false
	}
	g := (sx*dy2 - dx2*sy) / det
	h := (dx1*sy - sx*dy1) / det
	return homography{
		{x1 - x0 + g*x1, x3 - x0 + h*x3, x0},
		{y1 - y0 + g*y1, y3 - y0 + h*y3, y0},
		{g, h, 1},
	}, true
}

// apply maps (u, v) through the homography.
func (m homography) apply(u, v float64) (float64, float64) {
	w := m[2][0]*u + m[2][1]*v + m[2][2]
	return (m[0][0]*u + m[0][1]*v + m[0][2]) / w,
		(m[1][0]*u + m[1][1]*v + m[1][2]) / w
}

// inverse returns the adjugate, which inverts the mapping up to scale.
func (m homography) inverse() homography {
	return homography{
		{
			m[1][1]*m[2][2] - m[1][2]*m[2][1],
			m[0][2]*m[2][1] - m[0][1]*m[2][2],
			m[0][1]*m[1][2] - m[0][2]*m[1][1],
		},
		{
			m[1][2]*m[2][0] - m[1][0]*m[2][2],
			m[0][0]*m[2][2] - m[0][2]*m[2][0],
			m[0][2]*m[1][0] - m[0][0]*m[1][2],
		},
		{
			m[1][0]*m[2][1] - m[1][1]*m[2][0],
			m[0][1]*m[2][0] - m[0][0]*m[2][1],
			m[0][0]*m[1][1] - m[0][1]*m[1][0],
		},
	}
}
