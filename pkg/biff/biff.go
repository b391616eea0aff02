// Package biff reads and writes tagged binary record streams.
//
// A stream is a sequence of records, each encoded as
//
//	[uint32 length][4-byte tag][length-4 bytes of payload]
//
// and terminated by an ENDB record. Sections such as drag points or embedded
// images are a record with an empty payload followed by their own records up
// to a nested ENDB.
package biff

import (
	"errors"
	"fmt"
	"io"

	"github.com/vpdb/server-sub007/pkg/cursor"
	"github.com/vpdb/server-sub007/pkg/encoding"
	"github.com/vpdb/server-sub007/pkg/math"
)

// TagEnd terminates a record list.
const TagEnd = "ENDB"

// TagSize is the size of a record tag in bytes.
const TagSize = 4

// ErrTruncated is returned when a record or value extends past its buffer.
var ErrTruncated = errors.New("truncated record data")

// Record is one tagged record.
type Record struct {
	Tag  string
	Data []byte
}

func (r Record) cursor(size int) (*cursor.Cursor, error) {
	if len(r.Data) < size {
		return nil, fmt.Errorf("%w: %s needs %d bytes, has %d", ErrTruncated, r.Tag, size, len(r.Data))
	}
	return cursor.New(r.Data), nil
}

// Int32 decodes the payload as a little-endian int32.
func (r Record) Int32() (int32, error) {
	c, err := r.cursor(4)
	if err != nil {
		return 0, err
	}
	return c.Int32()
}

// Uint32 decodes the payload as a little-endian uint32.
func (r Record) Uint32() (uint32, error) {
	c, err := r.cursor(4)
	if err != nil {
		return 0, err
	}
	return c.Uint32()
}

// Float32 decodes the payload as a float32.
func (r Record) Float32() (float32, error) {
	c, err := r.cursor(4)
	if err != nil {
		return 0, err
	}
	return c.Float32()
}

// Bool decodes the payload as a 32-bit flag; any non-zero value is true.
func (r Record) Bool() (bool, error) {
	v, err := r.Int32()
	return v != 0, err
}

func (r Record) prefixed() ([]byte, error) {
	c, err := r.cursor(4)
	if err != nil {
		return nil, err
	}
	n, _ := c.Int32()
	b, err := c.Bytes(int(n))
	if err != nil {
		return nil, fmt.Errorf("%w: %s string of %d bytes", ErrTruncated, r.Tag, n)
	}
	return b, nil
}

// String decodes a length-prefixed Windows-1252 string.
func (r Record) String() (string, error) {
	b, err := r.prefixed()
	if err != nil {
		return "", err
	}
	return encoding.ANSIToUTF8(b), nil
}

// WideString decodes a length-prefixed UTF-16LE string. The prefix counts bytes.
func (r Record) WideString() (string, error) {
	b, err := r.prefixed()
	if err != nil {
		return "", err
	}
	return encoding.UTF16ToUTF8(b), nil
}

// Vertex2D decodes two float32 values.
func (r Record) Vertex2D() (math.Vertex2D, error) {
	c, err := r.cursor(8)
	if err != nil {
		return math.Vertex2D{}, err
	}
	x, _ := c.Float32()
	y, _ := c.Float32()
	return math.Vertex2D{X: x, Y: y}, nil
}

// Vertex3D decodes three float32 values. Some records only store x and y;
// z is then zero.
func (r Record) Vertex3D() (math.Vertex3D, error) {
	c, err := r.cursor(8)
	if err != nil {
		return math.Vertex3D{}, err
	}
	x, _ := c.Float32()
	y, _ := c.Float32()
	var z float32
	if c.Remaining() >= 4 {
		z, _ = c.Float32()
	}
	return math.Vertex3D{X: x, Y: y, Z: z}, nil
}

// Reader walks the records of a stream.
type Reader struct {
	c *cursor.Cursor
}

// NewReader returns a reader positioned at the first record of data.
func NewReader(data []byte) *Reader {
	return &Reader{c: cursor.New(data)}
}

// Pos returns the current offset in the stream.
func (r *Reader) Pos() int { return r.c.Pos() }

// Rest returns the unread bytes, for payloads stored outside the record framing.
func (r *Reader) Rest() []byte { return r.c.Rest() }

// Skip advances past n unframed bytes.
func (r *Reader) Skip(n int) error {
	if err := r.c.Skip(n); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return nil
}

// Uint32 reads an unframed uint32, such as the item type in front of item records.
func (r *Reader) Uint32() (uint32, error) {
	v, err := r.c.Uint32()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return v, nil
}

// Next returns the next record. It returns io.EOF at an ENDB record or when the
// stream ends cleanly on a record boundary.
func (r *Reader) Next() (Record, error) {
	if r.c.Remaining() == 0 {
		return Record{}, io.EOF
	}
	length, err := r.c.Uint32()
	if err != nil {
		return Record{}, fmt.Errorf("%w: record length at offset %d", ErrTruncated, r.c.Pos())
	}
	if length < TagSize || int64(length) > int64(r.c.Remaining()) {
		return Record{}, fmt.Errorf("%w: record of %d bytes at offset %d, %d remaining",
			ErrTruncated, length, r.c.Pos()-4, r.c.Remaining())
	}
	tag, _ := r.c.Bytes(TagSize)
	data, _ := r.c.Bytes(int(length) - TagSize)
	if string(tag) == TagEnd {
		return Record{}, io.EOF
	}
	return Record{Tag: string(tag), Data: data}, nil
}

// Section reads records up to the ENDB closing a nested section.
func (r *Reader) Section() ([]Record, error) {
	var out []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// Walk calls fn for each record until ENDB. fn may consume nested sections or
// unframed payloads through the reader before returning.
func (r *Reader) Walk(fn func(Record) error) error {
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
