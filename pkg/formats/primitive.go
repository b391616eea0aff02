package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/vpdb/server-sub007/pkg/biff"
	"github.com/vpdb/server-sub007/pkg/math"
)

// Primitive is a builtin prism/box or an imported mesh.
type Primitive struct {
	Position math.Vertex3D
	Size     math.Vertex3D
	// RotAndTra holds rotation X/Y/Z, translation X/Y/Z and object rotation
	// X/Y/Z, angles in degrees.
	RotAndTra [9]float32

	Image              string
	NormalMap          string
	Sides              int32
	Material           string
	SideColor          Color
	Visible            bool
	DrawTexturesInside bool

	// UseMesh selects Mesh over the builtin shape.
	UseMesh      bool
	MeshFileName string
	Mesh         *PrimitiveMesh
}

// PrimitiveMesh is an imported triangle mesh.
type PrimitiveMesh struct {
	Vertices []math.Vertex3DNoTex2
	Indices  []uint32
}

// Kind implements ItemData.
func (p *Primitive) Kind() ItemKind { return KindPrimitive }

func parsePrimitive(ir *itemRecords) (ItemData, error) {
	var f fieldReader
	p := &Primitive{
		Size:    math.Vertex3D{X: 100, Y: 100, Z: 100},
		Sides:   4,
		Visible: true,
	}

	var (
		numVertices, numIndices int32
		compressedVertices      int32
		compressedIndices       int32
		rawVertices, rawIndices []byte
		zVertices, zIndices     []byte
	)

	for _, rec := range ir.records {
		switch rec.Tag {
		case "VPOS":
			v, err := rec.Vertex3D()
			f.fail(err)
			p.Position = v
		case "VSIZ":
			v, err := rec.Vertex3D()
			f.fail(err)
			p.Size = v
		case "RTV0", "RTV1", "RTV2", "RTV3", "RTV4", "RTV5", "RTV6", "RTV7", "RTV8":
			f.f32(rec, &p.RotAndTra[rec.Tag[3]-'0'])
		case "IMAG":
			f.str(rec, &p.Image)
		case "NRMA":
			f.str(rec, &p.NormalMap)
		case "SIDS":
			f.i32(rec, &p.Sides)
		case "MATR":
			f.str(rec, &p.Material)
		case "SCOL":
			f.color(rec, &p.SideColor)
		case "TVIS":
			f.boolean(rec, &p.Visible)
		case "DTXI":
			f.boolean(rec, &p.DrawTexturesInside)
		case "U3DM":
			f.boolean(rec, &p.UseMesh)
		case "M3DN":
			f.str(rec, &p.MeshFileName)
		case "M3VN":
			f.i32(rec, &numVertices)
		case "M3DX":
			rawVertices = rec.Data
		case "M3CY":
			f.i32(rec, &compressedVertices)
		case "M3CX":
			zVertices = rec.Data
		case "M3FN":
			f.i32(rec, &numIndices)
		case "M3DI":
			rawIndices = rec.Data
		case "M3CJ":
			f.i32(rec, &compressedIndices)
		case "M3CI":
			zIndices = rec.Data
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if !p.UseMesh || numVertices == 0 {
		return p, nil
	}
	if err := checkMeshCounts(numVertices, numIndices); err != nil {
		return nil, err
	}

	if zVertices != nil {
		var err error
		if rawVertices, err = inflate(zVertices, int(numVertices)*math.Vertex3DNoTex2Size); err != nil {
			return nil, fmt.Errorf("mesh vertices: %w", err)
		}
	}
	if zIndices != nil {
		var err error
		if rawIndices, err = inflate(zIndices, int(numIndices)*indexSize(numVertices)); err != nil {
			return nil, fmt.Errorf("mesh indices: %w", err)
		}
	}

	mesh, err := decodeMesh(rawVertices, rawIndices, numVertices, numIndices)
	if err != nil {
		return nil, err
	}
	p.Mesh = mesh
	return p, nil
}

// Meshes with up to 65535 vertices store 16-bit indices.
func indexSize(numVertices int32) int {
	if numVertices < 65536 {
		return 2
	}
	return 4
}

// Mesh size limits. Counts above them are rejected before anything is
// allocated.
const (
	maxMeshVertices = 1 << 22
	maxMeshIndices  = 1 << 24
)

var errMeshCount = errors.New("invalid mesh element count")

func checkMeshCounts(numVertices, numIndices int32) error {
	switch {
	case numVertices < 0 || numVertices > maxMeshVertices:
		return fmt.Errorf("%w: %d vertices", errMeshCount, numVertices)
	case numIndices < 0 || numIndices > maxMeshIndices:
		return fmt.Errorf("%w: %d indices", errMeshCount, numIndices)
	case numIndices%3 != 0:
		return fmt.Errorf("%w: %d indices is not a triangle list", errMeshCount, numIndices)
	}
	return nil
}

// inflate decompresses exactly size bytes. The output grows with the data
// actually produced, so a stream shorter than size costs only its own length.
func inflate(data []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, int64(size)))
	if err != nil {
		return nil, err
	}
	if len(out) < size {
		return nil, fmt.Errorf("%w: inflated %d of %d bytes", biff.ErrTruncated, len(out), size)
	}
	return out, nil
}

func decodeMesh(vertices, indices []byte, numVertices, numIndices int32) (*PrimitiveMesh, error) {
	if err := checkMeshCounts(numVertices, numIndices); err != nil {
		return nil, err
	}
	want := int(numVertices) * math.Vertex3DNoTex2Size
	if len(vertices) < want {
		return nil, fmt.Errorf("%w: mesh needs %d vertex bytes, has %d", biff.ErrTruncated, want, len(vertices))
	}
	vs, err := math.DecodeVertices(vertices[:want])
	if err != nil {
		return nil, err
	}

	size := indexSize(numVertices)
	if len(indices) < int(numIndices)*size {
		return nil, fmt.Errorf("%w: mesh needs %d index bytes, has %d", biff.ErrTruncated, int(numIndices)*size, len(indices))
	}
	idx := make([]uint32, numIndices)
	for i := range idx {
		if size == 2 {
			idx[i] = uint32(binary.LittleEndian.Uint16(indices[i*2:]))
		} else {
			idx[i] = binary.LittleEndian.Uint32(indices[i*4:])
		}
	}
	return &PrimitiveMesh{Vertices: vs, Indices: idx}, nil
}

// EncodeMesh produces the raw M3DX/M3DI payloads for a mesh; used when writing tables.
func EncodeMesh(m *PrimitiveMesh) (vertices, indices []byte) {
	vertices = math.EncodeVertices(m.Vertices)
	size := indexSize(int32(len(m.Vertices)))
	indices = make([]byte, 0, len(m.Indices)*size)
	for _, i := range m.Indices {
		if size == 2 {
			indices = binary.LittleEndian.AppendUint16(indices, uint16(i))
		} else {
			indices = binary.LittleEndian.AppendUint32(indices, i)
		}
	}
	return vertices, indices
}
