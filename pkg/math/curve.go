package math

// DefaultCurveAccuracy is the flatness threshold used for table outlines.
const DefaultCurveAccuracy float32 = 4.0

// maxCurveDepth bounds subdivision for degenerate (NaN, huge) input.
const maxCurveDepth = 16

// ControlPoint is a user-placed curve point.
type ControlPoint struct {
	Pos       Vertex3D
	Smooth    bool
	Slingshot bool
}

// CurveOptions controls RichPoints.
type CurveOptions struct {
	// Loop closes the curve back to the first point.
	Loop bool
	// Accuracy is the squared-area flatness threshold; 0 means DefaultCurveAccuracy.
	Accuracy float32
	// ThreeD samples z as well and emits 3D positions.
	ThreeD bool
}

// CatmullCurve is one non-uniform Catmull-Rom segment between p1 and p2.
type CatmullCurve struct {
	cx, cy, cz [4]float32
	threeD     bool
}

// NewCatmullCurve builds the segment from p1 to p2 with neighbours p0 and p3.
// Knot spacing is the square root of the chord length.
func NewCatmullCurve(p0, p1, p2, p3 Vertex3D, threeD bool) CatmullCurve {
	dist := func(a, b Vertex3D) float32 {
		if threeD {
			return a.Distance(b)
		}
		return a.XY().Distance(b.XY())
	}

	dt0 := Sqrt(dist(p0, p1))
	dt1 := Sqrt(dist(p1, p2))
	dt2 := Sqrt(dist(p2, p3))

	// repeated control points
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	return CatmullCurve{
		cx:     catmullCoeffs(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2),
		cy:     catmullCoeffs(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2),
		cz:     catmullCoeffs(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2),
		threeD: threeD,
	}
}

func div(a, b float32) float32 {
	return float32(a / b)
}

func catmullCoeffs(x0, x1, x2, x3, dt0, dt1, dt2 float32) [4]float32 {
	// tangents for the parameterisation over [t1, t2]
	t1 := add(sub(div(sub(x1, x0), dt0), div(sub(x2, x0), add(dt0, dt1))), div(sub(x2, x1), dt1))
	t2 := add(sub(div(sub(x2, x1), dt1), div(sub(x3, x1), add(dt1, dt2))), div(sub(x3, x2), dt2))

	// rescale to [0, 1]
	t1 = mul(t1, dt1)
	t2 = mul(t2, dt1)

	return [4]float32{
		x1,
		t1,
		sub(sub(add(mul(-3, x1), mul(3, x2)), mul(2, t1)), t2),
		add(add(sub(mul(2, x1), mul(2, x2)), t1), t2),
	}
}

// PointAt evaluates the segment at t in [0, 1].
func (c CatmullCurve) PointAt(t float32) Vertex3D {
	t2 := mul(t, t)
	t3 := mul(t2, t)
	eval := func(k [4]float32) float32 {
		return sum4(mul(k[3], t3), mul(k[2], t2), mul(k[1], t), k[0])
	}
	p := Vertex3D{X: eval(c.cx), Y: eval(c.cy)}
	if c.threeD {
		p.Z = eval(c.cz)
	}
	return p
}

// RichPoints subdivides a control polygon into curve samples. Smooth control
// points bend the curve through their neighbours; sharp ones produce corners.
// For loops the last point is not repeated.
func RichPoints(points []ControlPoint, opts CurveOptions) []RenderVertex {
	n := len(points)
	if n < 2 {
		return nil
	}
	accuracy := opts.Accuracy
	if accuracy <= 0 {
		accuracy = DefaultCurveAccuracy
	}

	pos := func(v Vertex3D) Position {
		if opts.ThreeD {
			return Position3D(v)
		}
		return Position2D(v.XY())
	}

	var out []RenderVertex
	segments := n
	if !opts.Loop {
		segments = n - 1
	}
	for i := 0; i < segments; i++ {
		p1 := points[i]
		p2 := points[(i+1)%n]
		if p1.Pos == p2.Pos {
			continue
		}

		prev := i
		if p1.Smooth {
			prev = i - 1
		}
		if prev < 0 {
			if opts.Loop {
				prev = n - 1
			} else {
				prev = 0
			}
		}
		next := i + 1
		if p2.Smooth {
			next = i + 2
		}
		if next >= n {
			if opts.Loop {
				next -= n
			} else {
				next = n - 1
			}
		}

		cc := NewCatmullCurve(points[prev].Pos, p1.Pos, p2.Pos, points[next].Pos, opts.ThreeD)
		v1 := RenderVertex{Pos: pos(p1.Pos), Smooth: p1.Smooth, Slingshot: p1.Slingshot, ControlPoint: true}
		v2 := RenderVertex{Pos: pos(p2.Pos), Smooth: p2.Smooth, Slingshot: p2.Slingshot, ControlPoint: true}
		out = recurseSmoothLine(out, cc, 0, 1, v1, v2, accuracy, 0)
	}

	if !opts.Loop {
		last := points[n-1]
		out = append(out, RenderVertex{Pos: pos(last.Pos), Smooth: true, ControlPoint: true})
	}
	return out
}

// recurseSmoothLine appends v1 once [t1, t2] is flat; the end point is added by
// the following segment.
func recurseSmoothLine(out []RenderVertex, cc CatmullCurve, t1, t2 float32, v1, v2 RenderVertex, accuracy float32, depth int) []RenderVertex {
	tMid := mul(add(t1, t2), 0.5)
	mid := RenderVertex{Pos: v1.Pos, Smooth: true}
	if v1.Pos.Is3D() {
		mid.Pos = Position3D(cc.PointAt(tMid))
	} else {
		mid.Pos = Position2D(cc.PointAt(tMid).XY())
	}

	if depth >= maxCurveDepth || flatWithAccuracy(v1.Pos, v2.Pos, mid.Pos, accuracy) {
		return append(out, v1)
	}
	out = recurseSmoothLine(out, cc, t1, tMid, v1, mid, accuracy, depth+1)
	return recurseSmoothLine(out, cc, tMid, t2, mid, v2, accuracy, depth+1)
}

// flatWithAccuracy compares twice the squared triangle area (v1, mid, v2) with accuracy.
func flatWithAccuracy(v1, v2, mid Position, accuracy float32) bool {
	if v1.Is3D() {
		c := mid.XYZ().Sub(v1.XYZ()).Cross(v2.XYZ().Sub(v1.XYZ()))
		return c.LengthSq() < accuracy
	}
	a, b, m := v1.XY(), v2.XY(), mid.XY()
	area := sub(mul(sub(m.X, a.X), sub(b.Y, a.Y)), mul(sub(b.X, a.X), sub(m.Y, a.Y)))
	return mul(area, area) < accuracy
}
