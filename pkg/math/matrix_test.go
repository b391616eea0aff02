package math

import (
	gomath "math"
	"testing"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a)-float64(b)) < 1e-5
}

func nearVec(a, b Vertex3D) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestIdentity(t *testing.T) {
	m := Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if m[i][j] != want {
				t.Errorf("Identity[%d][%d] = %v, want %v", i, j, m[i][j], want)
			}
		}
	}
}

func TestMultiplyIdentity(t *testing.T) {
	m := Translation(1, 2, 3).Multiply(RotationZ(0.3))
	if got := m.Multiply(Identity()); got != m {
		t.Errorf("M * I = %v, want %v", got, m)
	}
}

func TestTranslation(t *testing.T) {
	got := Translation(10, 20, 30).MultiplyVector(Vertex3D{1, 2, 3})
	want := Vertex3D{11, 22, 33}
	if got != want {
		t.Errorf("MultiplyVector = %v, want %v", got, want)
	}

	dir := Translation(10, 20, 30).MultiplyVectorNoTranslate(Vertex3D{1, 2, 3})
	if dir != (Vertex3D{1, 2, 3}) {
		t.Errorf("MultiplyVectorNoTranslate = %v, want unchanged", dir)
	}
}

func TestMultiplyOrder(t *testing.T) {
	// scale first, then translate
	m := Scaling(2, 2, 2).Multiply(Translation(1, 0, 0))
	got := m.MultiplyVector(Vertex3D{1, 0, 0})
	if got != (Vertex3D{3, 0, 0}) {
		t.Errorf("scale then translate = %v, want (3,0,0)", got)
	}
}

func TestRotations(t *testing.T) {
	quarter := float32(gomath.Pi / 2)
	tests := []struct {
		name string
		m    Matrix3D
		in   Vertex3D
		want Vertex3D
	}{
		{"z", RotationZ(quarter), Vertex3D{1, 0, 0}, Vertex3D{0, 1, 0}},
		{"x", RotationX(quarter), Vertex3D{0, 1, 0}, Vertex3D{0, 0, 1}},
		{"y", RotationY(quarter), Vertex3D{0, 0, 1}, Vertex3D{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.MultiplyVector(tt.in)
			if !nearVec(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColumnMajor(t *testing.T) {
	m := Translation(5, 6, 7).ColumnMajor()
	if m[12] != 5 || m[13] != 6 || m[14] != 7 || m[15] != 1 {
		t.Errorf("translation column = %v, want (5,6,7,1)", m[12:])
	}
}

func TestLookAtPerspective(t *testing.T) {
	eye := Vertex3D{0, 0, -10}
	at := Vertex3D{0, 0, 0}
	view := LookAtLH(eye, at, Vertex3D{0, 1, 0})
	proj := PerspectiveFovLH(DegToRad(45), 1, 1, 100)
	vp := view.Multiply(proj)

	center := vp.MultiplyVector(at)
	if !near(center.X, 0) || !near(center.Y, 0) {
		t.Errorf("target projects to %v, want screen centre", center)
	}

	right := vp.MultiplyVector(Vertex3D{1, 0, 0})
	if right.X <= 0 {
		t.Errorf("+X projects to %v, want right of centre", right)
	}
	up := vp.MultiplyVector(Vertex3D{0, 1, 0})
	if up.Y <= 0 {
		t.Errorf("+Y projects to %v, want above centre", up)
	}
}
