package formats

import (
	"fmt"
	gomath "math"

	"github.com/vpdb/server-sub007/pkg/cursor"
	"github.com/vpdb/server-sub007/pkg/encoding"
)

// materialRecordSize is the size of one entry of the MATE blob.
const materialRecordSize = 76

const materialNameSize = 32

// Material is a table-wide surface definition referenced by name from items.
type Material struct {
	Name           string
	BaseColor      Color
	GlossyColor    Color
	ClearcoatColor Color
	WrapLighting   float32
	IsMetal        bool
	Roughness      float32
	// GlossyImageLerp is in [0, 1].
	GlossyImageLerp float32
	Edge            float32
	// Thickness is in [0, 1].
	Thickness       float32
	Opacity         float32
	IsOpacityActive bool
	// EdgeAlpha is in [0, 1].
	EdgeAlpha float32
}

// parseMaterials decodes count records from a MATE blob.
func parseMaterials(data []byte, count int) ([]Material, error) {
	if count < 0 || len(data) < count*materialRecordSize {
		return nil, fmt.Errorf("%w: %d materials need %d bytes, have %d",
			ErrMalformedContainer, count, count*materialRecordSize, len(data))
	}

	out := make([]Material, count)
	for i := range out {
		c := cursor.New(data[i*materialRecordSize : (i+1)*materialRecordSize])
		m := &out[i]

		name, _ := c.Bytes(materialNameSize)
		m.Name = encoding.FixedStringToUTF8(name)

		base, _ := c.Uint32()
		glossy, _ := c.Uint32()
		clearcoat, _ := c.Uint32()
		m.BaseColor, m.GlossyColor, m.ClearcoatColor = Color(base), Color(glossy), Color(clearcoat)

		m.WrapLighting, _ = c.Float32()
		m.IsMetal = flagByte(c) != 0
		m.Roughness, _ = c.Float32()
		m.GlossyImageLerp = 1 - float32(flagByte(c))/255
		m.Edge, _ = c.Float32()
		m.Thickness = float32(flagByte(c)) / 255
		m.Opacity, _ = c.Float32()

		packed := flagByte(c)
		m.IsOpacityActive = packed&1 != 0
		m.EdgeAlpha = float32(packed>>1) / 127
	}
	return out, nil
}

// flagByte reads a byte followed by three bytes of padding.
func flagByte(c *cursor.Cursor) uint8 {
	v, _ := c.Uint8()
	_ = c.Skip(3)
	return v
}

// encodeMaterial writes one MATE record; the byte fields are quantised.
func encodeMaterial(m Material) []byte {
	out := make([]byte, 0, materialRecordSize)
	out = append(out, encoding.UTF8ToFixedString(m.Name, materialNameSize)...)
	u32 := func(v uint32) {
		out = append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	f32 := func(v float32) { u32(gomath.Float32bits(v)) }
	flag := func(v uint8) { out = append(out, v, 0, 0, 0) }

	u32(uint32(m.BaseColor))
	u32(uint32(m.GlossyColor))
	u32(uint32(m.ClearcoatColor))
	f32(m.WrapLighting)
	if m.IsMetal {
		flag(1)
	} else {
		flag(0)
	}
	f32(m.Roughness)
	flag(uint8((1-m.GlossyImageLerp)*255 + 0.5))
	f32(m.Edge)
	flag(uint8(m.Thickness*255 + 0.5))
	f32(m.Opacity)
	packed := uint8(m.EdgeAlpha*127+0.5) << 1
	if m.IsOpacityActive {
		packed |= 1
	}
	flag(packed)
	return out
}

// EncodeMaterials builds a MATE blob.
func EncodeMaterials(materials []Material) []byte {
	out := make([]byte, 0, len(materials)*materialRecordSize)
	for _, m := range materials {
		out = append(out, encodeMaterial(m)...)
	}
	return out
}
