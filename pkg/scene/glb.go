package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// GLB container constants.
const (
	glbMagic      = 0x46546C67 // "glTF"
	glbVersion    = 2
	glbHeaderSize = 12
	chunkJSON     = 0x4E4F534A
	chunkBIN      = 0x004E4942
)

// ErrInvalidGLB is returned by ReadGLB for malformed containers.
var ErrInvalidGLB = errors.New("invalid GLB container")

// writeGLB wraps the JSON document and binary buffer into a GLB container.
// The JSON chunk is padded with spaces, the binary chunk with zeros.
func writeGLB(js, bin []byte) []byte {
	jsLen := align4(len(js))
	binLen := align4(len(bin))

	total := glbHeaderSize + 8 + jsLen
	if len(bin) > 0 {
		total += 8 + binLen
	}

	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, glbMagic)
	out = binary.LittleEndian.AppendUint32(out, glbVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))

	out = binary.LittleEndian.AppendUint32(out, uint32(jsLen))
	out = binary.LittleEndian.AppendUint32(out, chunkJSON)
	out = append(out, js...)
	for len(out) < glbHeaderSize+8+jsLen {
		out = append(out, ' ')
	}

	if len(bin) > 0 {
		out = binary.LittleEndian.AppendUint32(out, uint32(binLen))
		out = binary.LittleEndian.AppendUint32(out, chunkBIN)
		out = append(out, bin...)
		for len(out) < total {
			out = append(out, 0)
		}
	}
	return out
}

// ReadGLB splits a GLB container into its JSON and binary chunks. The binary
// chunk is nil when absent.
func ReadGLB(data []byte) (js, bin []byte, err error) {
	if len(data) < glbHeaderSize+8 {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrInvalidGLB, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data); magic != glbMagic {
		return nil, nil, fmt.Errorf("%w: bad magic %#x", ErrInvalidGLB, magic)
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != glbVersion {
		return nil, nil, fmt.Errorf("%w: version %d", ErrInvalidGLB, v)
	}
	if total := binary.LittleEndian.Uint32(data[8:]); int(total) != len(data) {
		return nil, nil, fmt.Errorf("%w: length %d, have %d bytes", ErrInvalidGLB, total, len(data))
	}

	rest := data[glbHeaderSize:]
	for len(rest) > 0 {
		if len(rest) < 8 {
			return nil, nil, fmt.Errorf("%w: truncated chunk header", ErrInvalidGLB)
		}
		size := int(binary.LittleEndian.Uint32(rest))
		kind := binary.LittleEndian.Uint32(rest[4:])
		if size > len(rest)-8 {
			return nil, nil, fmt.Errorf("%w: chunk of %d bytes overruns container", ErrInvalidGLB, size)
		}
		chunk := rest[8 : 8+size]
		switch kind {
		case chunkJSON:
			if js == nil {
				js = chunk
			}
		case chunkBIN:
			if bin == nil {
				bin = chunk
			}
		}
		rest = rest[8+size:]
	}
	if js == nil {
		return nil, nil, fmt.Errorf("%w: no JSON chunk", ErrInvalidGLB)
	}
	return js, bin, nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}
