package math

import (
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
)

// Vertex3DNoTex2Size is the size of one encoded vertex record in bytes.
const Vertex3DNoTex2Size = 32

// ErrVertexRecordSize is returned when a vertex buffer is not a whole number of records.
var ErrVertexRecordSize = errors.New("vertex buffer size is not a multiple of 32")

// Vertex3DNoTex2 is a GPU-ready vertex: position, normal and one UV set.
// Encoded as eight little-endian float32 values in field order.
type Vertex3DNoTex2 struct {
	X, Y, Z    float32
	Nx, Ny, Nz float32
	Tu, Tv     float32
}

// NewVertex3DNoTex2 assembles a vertex from its parts.
func NewVertex3DNoTex2(pos, normal Vertex3D, tu, tv float32) Vertex3DNoTex2 {
	return Vertex3DNoTex2{
		X: pos.X, Y: pos.Y, Z: pos.Z,
		Nx: normal.X, Ny: normal.Y, Nz: normal.Z,
		Tu: tu, Tv: tv,
	}
}

// Position returns the vertex position.
func (v Vertex3DNoTex2) Position() Vertex3D {
	return Vertex3D{v.X, v.Y, v.Z}
}

// Normal returns the vertex normal.
func (v Vertex3DNoTex2) Normal() Vertex3D {
	return Vertex3D{v.Nx, v.Ny, v.Nz}
}

func (v Vertex3DNoTex2) fields() [8]float32 {
	return [8]float32{v.X, v.Y, v.Z, v.Nx, v.Ny, v.Nz, v.Tu, v.Tv}
}

// AppendBinary appends the 32-byte record to b.
func (v Vertex3DNoTex2) AppendBinary(b []byte) ([]byte, error) {
	for _, f := range v.fields() {
		b = binary.LittleEndian.AppendUint32(b, gomath.Float32bits(f))
	}
	return b, nil
}

// MarshalBinary returns the 32-byte record.
func (v Vertex3DNoTex2) MarshalBinary() ([]byte, error) {
	return v.AppendBinary(make([]byte, 0, Vertex3DNoTex2Size))
}

// UnmarshalBinary decodes one 32-byte record. Bit patterns are kept as is.
func (v *Vertex3DNoTex2) UnmarshalBinary(data []byte) error {
	if len(data) != Vertex3DNoTex2Size {
		return fmt.Errorf("%w: got %d bytes", ErrVertexRecordSize, len(data))
	}
	f := func(i int) float32 {
		return gomath.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	*v = Vertex3DNoTex2{f(0), f(1), f(2), f(3), f(4), f(5), f(6), f(7)}
	return nil
}

// DecodeVertices decodes consecutive records.
func DecodeVertices(data []byte) ([]Vertex3DNoTex2, error) {
	if len(data)%Vertex3DNoTex2Size != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrVertexRecordSize, len(data))
	}
	out := make([]Vertex3DNoTex2, len(data)/Vertex3DNoTex2Size)
	for i := range out {
		off := i * Vertex3DNoTex2Size
		if err := out[i].UnmarshalBinary(data[off : off+Vertex3DNoTex2Size]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EncodeVertices encodes vertices back to back.
func EncodeVertices(vs []Vertex3DNoTex2) []byte {
	out := make([]byte, 0, len(vs)*Vertex3DNoTex2Size)
	for _, v := range vs {
		out, _ = v.AppendBinary(out)
	}
	return out
}
