package formats

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // embedded image formats
	_ "image/png"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/vpdb/server-sub007/pkg/biff"
	"github.com/vpdb/server-sub007/pkg/lzw"
)

// MaxImageSide bounds the width and height of bitmap images.
const MaxImageSide = 16384

// Image is a texture stored in the table. Exactly one of Data and Raster is
// set for images with content.
type Image struct {
	Name         string
	InternalName string
	Path         string
	Width        int32
	Height       int32
	AlphaTest    float32
	Linked       bool

	// Data holds the original file (JPEG, PNG, BMP, WEBP...).
	Data []byte
	// Raster holds pixels stored as an LZW-compressed bitmap.
	Raster *Raster
}

// Raster is a BGRA bitmap.
type Raster struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
	// BadCodes counts invalid LZW codes met while decoding.
	BadCodes int
	// Partial is set when the stream ended early in tolerant mode.
	Partial bool
}

// MIMEType returns the media type of the embedded file. It is empty for
// rasters and unrecognised data.
func (img *Image) MIMEType() string {
	if img.Data == nil {
		return ""
	}
	kind, err := filetype.Match(img.Data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// Decode returns the image pixels.
func (img *Image) Decode() (image.Image, error) {
	if img.Raster != nil {
		return img.Raster.NRGBA(), nil
	}
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("image %q has no data", img.Name)
	}
	out, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decoding image %q: %w", img.Name, err)
	}
	return out, nil
}

// NRGBA converts the BGRA bitmap.
func (r *Raster) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		src := r.Pix[y*r.Stride : y*r.Stride+r.Width*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+r.Width*4]
		for x := 0; x < len(src); x += 4 {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
	return out
}

// fixAlpha makes a bitmap without any alpha information opaque.
func (r *Raster) fixAlpha() {
	for y := 0; y < r.Height; y++ {
		row := r.Pix[y*r.Stride : y*r.Stride+r.Width*4]
		for x := 3; x < len(row); x += 4 {
			if row[x] != 0 {
				return
			}
		}
	}
	for y := 0; y < r.Height; y++ {
		row := r.Pix[y*r.Stride : y*r.Stride+r.Width*4]
		for x := 3; x < len(row); x += 4 {
			row[x] = 0xff
		}
	}
}

// parseImage decodes one ImageN stream. Non-fatal findings go to warn.
func parseImage(data []byte, opts ParseOptions, warn func(error)) (*Image, error) {
	var f fieldReader
	img := &Image{}
	r := biff.NewReader(data)

	err := r.Walk(func(rec biff.Record) error {
		switch rec.Tag {
		case "NAME":
			f.str(rec, &img.Name)
		case "INME":
			f.str(rec, &img.InternalName)
		case "PATH":
			f.str(rec, &img.Path)
		case "WDTH":
			f.i32(rec, &img.Width)
		case "HGHT":
			f.i32(rec, &img.Height)
		case "ALTV":
			f.f32(rec, &img.AlphaTest)
		case "LINK":
			var link int32
			f.i32(rec, &link)
			img.Linked = link != 0
		case "JPEG":
			section, err := r.Section()
			if err != nil {
				return err
			}
			for _, sub := range section {
				switch sub.Tag {
				case "DATA":
					img.Data = sub.Data
				case "PATH":
					if img.Path == "" {
						f.str(sub, &img.Path)
					}
				}
			}
		case "BITS":
			raster, consumed, err := decodeBits(r.Rest(), img, opts)
			if err != nil {
				return err
			}
			img.Raster = raster
			if raster.BadCodes > 0 {
				warn(fmt.Errorf("image %q: %w (%d codes)", img.Name, lzw.ErrBadCode, raster.BadCodes))
			}
			if raster.Partial {
				warn(fmt.Errorf("image %q: %w: %w", img.Name, lzw.ErrImageDecompression, lzw.ErrTruncated))
			}
			return r.Skip(consumed)
		}
		return f.err
	})
	if err != nil {
		return nil, err
	}
	return img, f.err
}

func decodeBits(src []byte, img *Image, opts ParseOptions) (*Raster, int, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, 0, fmt.Errorf("%w: image %q has bitmap data but size %dx%d",
			ErrMalformedContainer, img.Name, img.Width, img.Height)
	}
	if img.Width > MaxImageSide || img.Height > MaxImageSide {
		return nil, 0, fmt.Errorf("%w: image %q is %dx%d, limit is %d",
			ErrMalformedContainer, img.Name, img.Width, img.Height, MaxImageSide)
	}
	width, height := int(img.Width), int(img.Height)
	stride := width * 4

	res, err := lzw.Decode(src, stride, height, stride, lzw.Options{Tolerant: opts.TolerantImages})
	if err != nil {
		return nil, 0, fmt.Errorf("image %q: %w", img.Name, err)
	}
	raster := &Raster{
		Pix:      res.Pixels,
		Width:    width,
		Height:   height,
		Stride:   stride,
		BadCodes: res.BadCodes,
		Partial:  res.Partial,
	}
	raster.fixAlpha()
	return raster, res.Consumed, nil
}
