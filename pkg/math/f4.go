// Package math provides single-precision vector and matrix types for table geometry.
//
// Every arithmetic step rounds to float32 before the next one starts, so results
// match an engine that computes in 32-bit floats. Go may fuse a multiply and an
// add into one instruction unless an explicit conversion sits between them; the
// helpers in this package always convert, which keeps each product rounded.
package math

import (
	gomath "math"

	"github.com/chewxy/math32"
)

// F4 rounds a float64 result to the nearest float32.
func F4(v float64) float32 {
	return float32(v)
}

// degToRad is pi/180 rounded to float32.
const degToRad = float32(gomath.Pi / 180)

// DegToRad converts degrees to radians in float32.
func DegToRad(deg float32) float32 {
	return mul(deg, degToRad)
}

// Sqrt returns the correctly rounded float32 square root.
func Sqrt(v float32) float32 {
	return math32.Sqrt(v)
}

// Abs returns |v|.
func Abs(v float32) float32 {
	return math32.Abs(v)
}

// Sin returns sin(v) rounded to float32.
func Sin(v float32) float32 {
	return F4(gomath.Sin(float64(v)))
}

// Cos returns cos(v) rounded to float32.
func Cos(v float32) float32 {
	return F4(gomath.Cos(float64(v)))
}

// Tan returns tan(v) rounded to float32.
func Tan(v float32) float32 {
	return F4(gomath.Tan(float64(v)))
}

func mul(a, b float32) float32 {
	return float32(a * b)
}

func add(a, b float32) float32 {
	return float32(a + b)
}

func sub(a, b float32) float32 {
	return float32(a - b)
}

// sum3 adds three rounded terms left to right.
func sum3(a, b, c float32) float32 {
	return add(add(a, b), c)
}

// sum4 adds four rounded terms left to right.
func sum4(a, b, c, d float32) float32 {
	return add(add(add(a, b), c), d)
}
