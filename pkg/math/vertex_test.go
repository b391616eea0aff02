package math

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// exact operations on float32 inputs are exact in float64, so rounding them once
// gives the reference result of a single-precision engine.
func ref(v float64) float32 { return float32(v) }

func TestVertex2DArithmeticRounding(t *testing.T) {
	a := Vertex2D{0.1, 1.0 / 3}
	b := Vertex2D{0.7, 2.2}

	sum := a.Add(b)
	assert.Equal(t, ref(float64(a.X)+float64(b.X)), sum.X)
	assert.Equal(t, ref(float64(a.Y)+float64(b.Y)), sum.Y)

	diff := a.Sub(b)
	assert.Equal(t, ref(float64(a.X)-float64(b.X)), diff.X)
	assert.Equal(t, ref(float64(a.Y)-float64(b.Y)), diff.Y)

	scaled := a.MultiplyScalar(3.3)
	assert.Equal(t, ref(float64(a.X)*float64(float32(3.3))), scaled.X)
	assert.Equal(t, ref(float64(a.Y)*float64(float32(3.3))), scaled.Y)
}

func TestVertex2DDivideUsesReciprocal(t *testing.T) {
	v := Vertex2D{1, 10}
	inv := ref(1.0 / 3.0)
	got := v.DivideScalar(3)
	assert.Equal(t, ref(float64(v.X)*float64(inv)), got.X)
	assert.Equal(t, ref(float64(v.Y)*float64(inv)), got.Y)
}

func TestVertex2DLength(t *testing.T) {
	v := Vertex2D{0.3, 0.7}
	xx := ref(float64(v.X) * float64(v.X))
	yy := ref(float64(v.Y) * float64(v.Y))
	want := ref(gomath.Sqrt(float64(ref(float64(xx) + float64(yy)))))
	assert.Equal(t, want, v.Length())

	assert.Equal(t, float32(5), Vertex2D{3, 4}.Length())
}

func TestVertex2DNormalize(t *testing.T) {
	n := Vertex2D{3, 4}.Normalize()
	assert.InDelta(t, 1.0, float64(n.Length()), 1e-6)

	// zero vector divides by 1 instead of 0
	assert.Equal(t, Vertex2D{}, Vertex2D{}.Normalize())
}

func TestVertex3DArithmeticRounding(t *testing.T) {
	a := Vertex3D{0.1, 0.2, 0.3}
	b := Vertex3D{1.0 / 7, 2.5, -0.9}

	sum := a.Add(b)
	assert.Equal(t, Vertex3D{
		ref(float64(a.X) + float64(b.X)),
		ref(float64(a.Y) + float64(b.Y)),
		ref(float64(a.Z) + float64(b.Z)),
	}, sum)

	dot := a.Dot(b)
	xx := ref(float64(a.X) * float64(b.X))
	yy := ref(float64(a.Y) * float64(b.Y))
	zz := ref(float64(a.Z) * float64(b.Z))
	assert.Equal(t, ref(float64(ref(float64(xx)+float64(yy)))+float64(zz)), dot)
}

func TestVertex3DCross(t *testing.T) {
	x := Vertex3D{1, 0, 0}
	y := Vertex3D{0, 1, 0}
	assert.Equal(t, Vertex3D{0, 0, 1}, x.Cross(y))
	assert.Equal(t, Vertex3D{0, 0, -1}, y.Cross(x))
}

func TestVertex3DNormalize(t *testing.T) {
	n := Vertex3D{2, 3, 6}.Normalize()
	assert.InDelta(t, 1.0, float64(n.Length()), 1e-6)
	assert.Equal(t, Vertex3D{}, Vertex3D{}.Normalize())
}

func TestNewVertexRounds(t *testing.T) {
	v := NewVertex3D(0.1, 0.2, 0.3)
	assert.Equal(t, float32(0.1), v.X)
	assert.Equal(t, float32(0.2), v.Y)
	assert.Equal(t, float32(0.3), v.Z)
	assert.Equal(t, Vertex2D{float32(0.1), float32(0.2)}, NewVertex2D(0.1, 0.2))
}

func TestPositionUnion(t *testing.T) {
	p2 := Position2D(Vertex2D{1, 2})
	assert.False(t, p2.Is3D())
	assert.Equal(t, Vertex3D{1, 2, 0}, p2.XYZ())

	p3 := Position3D(Vertex3D{1, 2, 3})
	assert.True(t, p3.Is3D())
	assert.Equal(t, Vertex2D{1, 2}, p3.XY())
}

func TestVertex3DNoTex2RoundTrip(t *testing.T) {
	vs := []Vertex3DNoTex2{
		{1, 2, 3, 0, 0, 1, 0.25, 0.75},
		{-0.1, 1e-30, 3.4e38, gomath.Float32frombits(0x80000000), 0.5, -0.5, 1.0 / 3, 2.0 / 3},
		{gomath.Float32frombits(0x7fc00001), 0, 0, 0, 0, 0, 0, 0},
	}
	for _, v := range vs {
		b, err := v.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary: %v", err)
		}
		if len(b) != Vertex3DNoTex2Size {
			t.Fatalf("encoded size = %d, want %d", len(b), Vertex3DNoTex2Size)
		}
		var got Vertex3DNoTex2
		if err := got.UnmarshalBinary(b); err != nil {
			t.Fatalf("UnmarshalBinary: %v", err)
		}
		gf, wf := got.fields(), v.fields()
		for i := range gf {
			if gomath.Float32bits(gf[i]) != gomath.Float32bits(wf[i]) {
				t.Errorf("field %d: got bits %08x, want %08x", i, gomath.Float32bits(gf[i]), gomath.Float32bits(wf[i]))
			}
		}
	}
}

func TestDecodeVertices(t *testing.T) {
	vs := []Vertex3DNoTex2{{X: 1}, {Y: 2}, {Tv: 3}}
	data := EncodeVertices(vs)
	assert.Len(t, data, 3*Vertex3DNoTex2Size)

	got, err := DecodeVertices(data)
	assert.NoError(t, err)
	assert.Equal(t, vs, got)

	_, err = DecodeVertices(data[:33])
	assert.ErrorIs(t, err, ErrVertexRecordSize)
}
