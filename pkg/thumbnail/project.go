// Package thumbnail frames a table the way the player sees it and renders a
// preview image of the playfield.
package thumbnail

import (
	"errors"
	"fmt"

	"github.com/vpdb/server-sub007/pkg/formats"
	"github.com/vpdb/server-sub007/pkg/math"
)

const (
	// fovFactor narrows the stored field of view.
	fovFactor float32 = 0.85
	// stretchX widens the projected quad horizontally.
	stretchX float32 = 1.02
)

// ErrInvalidParams is returned for empty tables or canvases.
var ErrInvalidParams = errors.New("invalid projection parameters")

// Params describes the table and the target canvas.
type Params struct {
	TableWidth  float32
	TableHeight float32
	// Inclination is the camera tilt in degrees; 0 looks straight down.
	Inclination float32
	// FOV is the vertical field of view in degrees.
	FOV float32

	CanvasWidth  int
	CanvasHeight int
}

// ParamsFor reads the camera settings from a parsed table.
func ParamsFor(t *formats.Table, canvasWidth, canvasHeight int) Params {
	p := Params{
		TableWidth:   t.Width(),
		TableHeight:  t.Height(),
		Inclination:  t.GameData.Inclination,
		FOV:          t.GameData.FOV,
		CanvasWidth:  canvasWidth,
		CanvasHeight: canvasHeight,
	}
	if p.FOV <= 0 {
		p.FOV = formats.DefaultFOV
	}
	return p
}

// Quad holds the projected table corners in canvas pixels, in the order
// (0,0), (W,0), (W,H), (0,H) of table space. Y grows downwards.
type Quad [4]math.Vertex2D

// Bounds returns the axis-aligned extent of the quad.
func (q Quad) Bounds() (lo, hi math.Vertex2D) {
	lo, hi = q[0], q[0]
	for _, p := range q[1:] {
		lo.X, hi.X = min(lo.X, p.X), max(hi.X, p.X)
		lo.Y, hi.Y = min(lo.Y, p.Y), max(hi.Y, p.Y)
	}
	return lo, hi
}

// Camera returns the view and projection matrices for the parameters. The
// camera looks at the table center from the player's side; its distance is
// chosen so the table height matches the narrowed field of view.
func Camera(p Params) (view, proj math.Matrix3D) {
	fov := math.DegToRad(p.FOV * fovFactor)
	theta := math.DegToRad(p.Inclination)
	dist := float32(p.TableHeight*0.5) / math.Tan(float32(fov*0.5))

	center := math.Vertex3D{X: float32(p.TableWidth * 0.5), Y: float32(p.TableHeight * 0.5)}
	sin, cos := math.Sin(theta), math.Cos(theta)
	eye := center.Add(math.Vertex3D{Y: sin, Z: cos}.MultiplyScalar(dist))
	up := math.Vertex3D{Y: -cos, Z: sin}

	aspect := float32(p.CanvasWidth) / float32(p.CanvasHeight)
	view = math.LookAtLH(eye, center, up)
	proj = math.PerspectiveFovLH(fov, aspect, float32(dist*0.01), float32(dist*10))
	return view, proj
}

// Project maps the table rectangle onto the canvas. The result fills the
// canvas height exactly and is centered horizontally.
func Project(p Params) (Quad, error) {
	if !(p.TableWidth > 0 && p.TableHeight > 0) || p.CanvasWidth <= 0 || p.CanvasHeight <= 0 {
		return Quad{}, fmt.Errorf("%w: table %gx%g, canvas %dx%d", ErrInvalidParams,
			p.TableWidth, p.TableHeight, p.CanvasWidth, p.CanvasHeight)
	}

	view, proj := Camera(p)
	viewProj := view.Multiply(proj)
	aspect := float32(p.CanvasWidth) / float32(p.CanvasHeight)

	corners := [4]math.Vertex3D{
		{X: 0, Y: 0},
		{X: p.TableWidth, Y: 0},
		{X: p.TableWidth, Y: p.TableHeight},
		{X: 0, Y: p.TableHeight},
	}

	// NDC with x in y units and y pointing down
	var q Quad
	for i, c := range corners {
		ndc := viewProj.MultiplyVector(c)
		q[i] = math.Vertex2D{X: float32(ndc.X * aspect), Y: -ndc.Y}
	}

	lo, hi := q.Bounds()
	if !(hi.Y > lo.Y) {
		return Quad{}, fmt.Errorf("%w: degenerate projection", ErrInvalidParams)
	}
	k := float32(p.CanvasHeight) / float32(hi.Y-lo.Y)
	for i := range q {
		q[i] = math.Vertex2D{
			X: float32(float32(q[i].X*k) * stretchX),
			Y: float32(float32(q[i].Y-lo.Y) * k),
		}
	}

	lo, hi = q.Bounds()
	shift := float32(float32(p.CanvasWidth)*0.5) - float32(float32(lo.X+hi.X)*0.5)
	for i := range q {
		q[i].X = float32(q[i].X + shift)
	}
	return q, nil
}
