package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squarePoints(smooth bool) []ControlPoint {
	return []ControlPoint{
		{Pos: Vertex3D{0, 0, 0}, Smooth: smooth},
		{Pos: Vertex3D{100, 0, 0}, Smooth: smooth},
		{Pos: Vertex3D{100, 100, 0}, Smooth: smooth},
		{Pos: Vertex3D{0, 100, 0}, Smooth: smooth},
	}
}

func TestRichPointsSharpLoop(t *testing.T) {
	rv := RichPoints(squarePoints(false), CurveOptions{Loop: true})
	require.Len(t, rv, 4)
	for i, cp := range squarePoints(false) {
		assert.Equal(t, cp.Pos.XY(), rv[i].Pos.XY())
		assert.True(t, rv[i].ControlPoint)
		assert.False(t, rv[i].Pos.Is3D())
	}
}

func TestRichPointsSmoothLoop(t *testing.T) {
	rv := RichPoints(squarePoints(true), CurveOptions{Loop: true})
	assert.Greater(t, len(rv), 4)

	controls := 0
	for _, v := range rv {
		if v.ControlPoint {
			controls++
			continue
		}
		assert.True(t, v.Smooth, "generated samples are smooth")
		assert.False(t, v.Slingshot)
	}
	assert.Equal(t, 4, controls)
}

func TestRichPointsOpenLine(t *testing.T) {
	pts := []ControlPoint{
		{Pos: Vertex3D{0, 0, 5}},
		{Pos: Vertex3D{50, 0, 10}},
	}
	rv := RichPoints(pts, CurveOptions{ThreeD: true})
	require.Len(t, rv, 2)
	assert.True(t, rv[0].Pos.Is3D())
	assert.Equal(t, Vertex3D{50, 0, 10}, rv[1].Pos.XYZ())
}

func TestRichPointsSkipsCoincidentPoints(t *testing.T) {
	pts := squarePoints(false)
	pts = append(pts[:2], append([]ControlPoint{pts[1]}, pts[2:]...)...)
	rv := RichPoints(pts, CurveOptions{Loop: true})
	assert.Len(t, rv, 4)
}

func TestCatmullCurveEndpoints(t *testing.T) {
	p0 := Vertex3D{-10, 0, 0}
	p1 := Vertex3D{0, 0, 0}
	p2 := Vertex3D{10, 5, 0}
	p3 := Vertex3D{20, 5, 0}
	cc := NewCatmullCurve(p0, p1, p2, p3, false)

	assert.Equal(t, p1, cc.PointAt(0))
	end := cc.PointAt(1)
	assert.InDelta(t, 10, end.X, 1e-4)
	assert.InDelta(t, 5, end.Y, 1e-4)
}

func TestTriangulateSquare(t *testing.T) {
	pts := []Vertex2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	idx, err := Triangulate(pts)
	require.NoError(t, err)
	require.Len(t, idx, 6)
	assertClockwise(t, pts, idx)
}

func TestTriangulateConcave(t *testing.T) {
	// L shape, clockwise input
	pts := []Vertex2D{{0, 0}, {0, 20}, {20, 20}, {20, 10}, {10, 10}, {10, 0}}
	idx, err := Triangulate(pts)
	require.NoError(t, err)
	require.Len(t, idx, 12)
	assertClockwise(t, pts, idx)

	var area float64
	for i := 0; i < len(idx); i += 3 {
		area += -cross(pts[idx[i]], pts[idx[i+1]], pts[idx[i+2]]) / 2
	}
	assert.InDelta(t, 300, area, 1e-9)
}

func TestTriangulateDegenerate(t *testing.T) {
	_, err := Triangulate([]Vertex2D{{0, 0}, {1, 1}})
	assert.ErrorIs(t, err, ErrTriangulation)

	_, err = Triangulate([]Vertex2D{{0, 0}, {1, 1}, {2, 2}})
	assert.ErrorIs(t, err, ErrTriangulation)
}

func assertClockwise(t *testing.T, pts []Vertex2D, idx []int) {
	t.Helper()
	for i := 0; i < len(idx); i += 3 {
		if c := cross(pts[idx[i]], pts[idx[i+1]], pts[idx[i+2]]); c >= 0 {
			t.Errorf("triangle %d is not clockwise (cross %v)", i/3, c)
		}
	}
}
