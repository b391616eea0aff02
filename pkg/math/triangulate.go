package math

import "errors"

// ErrTriangulation is returned for polygons that cannot be split into ears.
var ErrTriangulation = errors.New("polygon cannot be triangulated")

// Triangulate splits a simple polygon into triangles by ear clipping.
// The result holds three indices into points per triangle, wound clockwise
// when seen from +Z (the front-face order used for table geometry).
// Orientation tests run in float64; they only select indices and never
// produce stored coordinates.
func Triangulate(points []Vertex2D) ([]int, error) {
	n := len(points)
	if n < 3 {
		return nil, ErrTriangulation
	}

	// work on a counter-clockwise index ring
	ring := make([]int, n)
	if signedArea(points) >= 0 {
		for i := range ring {
			ring[i] = i
		}
	} else {
		for i := range ring {
			ring[i] = n - 1 - i
		}
	}

	indices := make([]int, 0, (n-2)*3)
	for len(ring) > 3 {
		ear := findEar(points, ring)
		if ear < 0 {
			// drop a collinear vertex if one exists, otherwise give up
			ear = findDegenerate(points, ring)
			if ear < 0 {
				return nil, ErrTriangulation
			}
			ring = append(ring[:ear], ring[ear+1:]...)
			continue
		}
		a, b, c := ring[(ear+len(ring)-1)%len(ring)], ring[ear], ring[(ear+1)%len(ring)]
		indices = append(indices, a, c, b)
		ring = append(ring[:ear], ring[ear+1:]...)
	}
	if cross(points[ring[0]], points[ring[1]], points[ring[2]]) != 0 {
		indices = append(indices, ring[0], ring[2], ring[1])
	}
	if len(indices) == 0 {
		return nil, ErrTriangulation
	}
	return indices, nil
}

func signedArea(points []Vertex2D) float64 {
	var area float64
	for i := range points {
		p, q := points[i], points[(i+1)%len(points)]
		area += float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
	}
	return area / 2
}

// cross is the z component of (b-a) x (c-a).
func cross(a, b, c Vertex2D) float64 {
	return (float64(b.X)-float64(a.X))*(float64(c.Y)-float64(a.Y)) -
		(float64(b.Y)-float64(a.Y))*(float64(c.X)-float64(a.X))
}

func findEar(points []Vertex2D, ring []int) int {
	m := len(ring)
	for i := 0; i < m; i++ {
		a := points[ring[(i+m-1)%m]]
		b := points[ring[i]]
		c := points[ring[(i+1)%m]]
		if cross(a, b, c) <= 0 {
			continue
		}
		inside := false
		for j := 0; j < m; j++ {
			if j == i || j == (i+m-1)%m || j == (i+1)%m {
				continue
			}
			p := points[ring[j]]
			if p == a || p == b || p == c {
				continue
			}
			if pointInTriangle(p, a, b, c) {
				inside = true
				break
			}
		}
		if !inside {
			return i
		}
	}
	return -1
}

func findDegenerate(points []Vertex2D, ring []int) int {
	m := len(ring)
	for i := 0; i < m; i++ {
		if cross(points[ring[(i+m-1)%m]], points[ring[i]], points[ring[(i+1)%m]]) == 0 {
			return i
		}
	}
	return -1
}

func pointInTriangle(p, a, b, c Vertex2D) bool {
	return cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0
}
