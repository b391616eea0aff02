package biff

import (
	"bytes"
	"encoding/binary"
	gomath "math"

	"github.com/vpdb/server-sub007/pkg/encoding"
	"github.com/vpdb/server-sub007/pkg/math"
)

// Writer builds a record stream.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Data returns the encoded stream.
func (w *Writer) Data() []byte {
	return w.buf.Bytes()
}

func (w *Writer) u32(v uint32) {
	_ = binary.Write(&w.buf, binary.LittleEndian, v)
}

// Record writes a record with a raw payload.
func (w *Writer) Record(tag string, data []byte) *Writer {
	w.u32(uint32(TagSize + len(data)))
	w.buf.WriteString(tag)
	w.buf.Write(data)
	return w
}

// Tag writes a record with an empty payload, used to open sections.
func (w *Writer) Tag(tag string) *Writer {
	return w.Record(tag, nil)
}

// End writes ENDB.
func (w *Writer) End() *Writer {
	return w.Tag(TagEnd)
}

// Raw appends unframed bytes.
func (w *Writer) Raw(data []byte) *Writer {
	w.buf.Write(data)
	return w
}

// Uint32Value appends an unframed uint32.
func (w *Writer) Uint32Value(v uint32) *Writer {
	w.u32(v)
	return w
}

// Int32 writes an int32 record.
func (w *Writer) Int32(tag string, v int32) *Writer {
	return w.Uint32(tag, uint32(v))
}

// Uint32 writes a uint32 record.
func (w *Writer) Uint32(tag string, v uint32) *Writer {
	return w.Record(tag, binary.LittleEndian.AppendUint32(nil, v))
}

// Float32 writes a float32 record.
func (w *Writer) Float32(tag string, v float32) *Writer {
	return w.Uint32(tag, gomath.Float32bits(v))
}

// Bool writes a 32-bit flag record.
func (w *Writer) Bool(tag string, v bool) *Writer {
	if v {
		return w.Int32(tag, 1)
	}
	return w.Int32(tag, 0)
}

func prefixed(b []byte) []byte {
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(b)))
	return append(out, b...)
}

// String writes a length-prefixed Windows-1252 string record.
func (w *Writer) String(tag, s string) *Writer {
	return w.Record(tag, prefixed(encoding.UTF8ToANSI(s)))
}

// WideString writes a length-prefixed UTF-16LE string record.
func (w *Writer) WideString(tag, s string) *Writer {
	return w.Record(tag, prefixed(encoding.UTF8ToUTF16(s)))
}

// Vertex2D writes two float32 values.
func (w *Writer) Vertex2D(tag string, v math.Vertex2D) *Writer {
	b := binary.LittleEndian.AppendUint32(nil, gomath.Float32bits(v.X))
	b = binary.LittleEndian.AppendUint32(b, gomath.Float32bits(v.Y))
	return w.Record(tag, b)
}

// Vertex3D writes three float32 values.
func (w *Writer) Vertex3D(tag string, v math.Vertex3D) *Writer {
	b := binary.LittleEndian.AppendUint32(nil, gomath.Float32bits(v.X))
	b = binary.LittleEndian.AppendUint32(b, gomath.Float32bits(v.Y))
	b = binary.LittleEndian.AppendUint32(b, gomath.Float32bits(v.Z))
	return w.Record(tag, b)
}
