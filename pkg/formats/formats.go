// Package formats provides parsers for Visual Pinball table files.
//
// A table file is an OLE compound document. The "GameStg" storage holds the
// table's game data, one stream per game item and one per image; the
// "TableInfo" storage holds descriptive strings. Streams are tagged record
// lists (see package biff).
package formats

import (
	"errors"
	"fmt"

	"github.com/vpdb/server-sub007/pkg/biff"
)

// Container errors.
var (
	// ErrMalformedContainer is fatal: the table cannot be converted.
	ErrMalformedContainer = errors.New("malformed table container")
	// ErrUnsupportedItemType is a warning: the item is skipped.
	ErrUnsupportedItemType = errors.New("unsupported item type")
	// ErrMalformedItem is a warning: the item's records are framed correctly
	// but a field does not decode, so the item is skipped.
	ErrMalformedItem = errors.New("malformed item")
)

// Stream paths.
const (
	streamGameData = "GameStg/GameData"
	streamVersion  = "GameStg/Version"
	streamItem     = "GameStg/GameItem%d"
	streamImage    = "GameStg/Image%d"
	storageInfo    = "TableInfo"
)

// Color is a Windows COLORREF: 0x00BBGGRR.
type Color uint32

// Well-known colors.
const (
	// ColorWhite is full white.
	ColorWhite Color = 0xffffff
	// DefaultLightColor is the color of a light that stores none, RGB(255,169,87).
	DefaultLightColor Color = 0x57a9ff
)

// NewColor packs 8-bit channels.
func NewColor(r, g, b uint8) Color {
	return Color(uint32(r) | uint32(g)<<8 | uint32(b)<<16)
}

// R returns the red channel.
func (c Color) R() uint8 { return uint8(c) }

// G returns the green channel.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue channel.
func (c Color) B() uint8 { return uint8(c >> 16) }

// Linear returns the channels scaled to [0, 1].
func (c Color) Linear() [3]float32 {
	return [3]float32{
		float32(c.R()) / 255,
		float32(c.G()) / 255,
		float32(c.B()) / 255,
	}
}

// String returns the color as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B())
}

// fieldReader decodes record values and keeps the first error, so item
// parsers can decode a whole record list and check once.
type fieldReader struct {
	err error
}

func (f *fieldReader) fail(err error) {
	if f.err == nil && err != nil {
		f.err = err
	}
}

func (f *fieldReader) f32(rec biff.Record, dst *float32) {
	v, err := rec.Float32()
	f.fail(err)
	*dst = v
}

func (f *fieldReader) f32p(rec biff.Record) *float32 {
	v, err := rec.Float32()
	f.fail(err)
	return &v
}

func (f *fieldReader) i32(rec biff.Record, dst *int32) {
	v, err := rec.Int32()
	f.fail(err)
	*dst = v
}

func (f *fieldReader) boolean(rec biff.Record, dst *bool) {
	v, err := rec.Bool()
	f.fail(err)
	*dst = v
}

func (f *fieldReader) str(rec biff.Record, dst *string) {
	v, err := rec.String()
	f.fail(err)
	*dst = v
}

func (f *fieldReader) wide(rec biff.Record, dst *string) {
	v, err := rec.WideString()
	f.fail(err)
	*dst = v
}

func (f *fieldReader) color(rec biff.Record, dst *Color) {
	v, err := rec.Uint32()
	f.fail(err)
	*dst = Color(v)
}
