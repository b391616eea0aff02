package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	gomath "math"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/vpdb/server-sub007/pkg/formats"
)

// Default canvas and colors.
const (
	DefaultWidth  = 512
	DefaultHeight = 512
)

var (
	// DefaultBackground is transparent.
	DefaultBackground = color.NRGBA{}
	// DefaultFill paints the playfield when the table has no usable image.
	DefaultFill = color.NRGBA{R: 0x3a, G: 0x5a, B: 0x3a, A: 0xff}
)

// Options controls Render.
type Options struct {
	Width      int
	Height     int
	Background color.NRGBA
	Fill       color.NRGBA
	Logger     *zap.Logger
}

// DefaultOptions returns a 512x512 transparent canvas.
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: DefaultBackground,
		Fill:       DefaultFill,
	}
}

// Render draws the playfield as seen from the player's camera. The playfield
// image is mapped onto the projected quad; without one the quad is filled
// with opts.Fill.
func Render(t *formats.Table, opts Options) (*image.NRGBA, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	q, err := Project(ParamsFor(t, opts.Width, opts.Height))
	if err != nil {
		return nil, err
	}

	dst := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	for i := 0; i < len(dst.Pix); i += 4 {
		c := opts.Background
		dst.Pix[i+0], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
	}

	mask := quadMask(q, opts.Width, opts.Height)
	tex := playfieldTexture(t, q, log)

	var inv homography
	if tex != nil {
		h, ok := squareToQuad(q)
		if !ok {
			log.Warn("degenerate playfield quad, using fill color")
			tex = nil
		}
		inv = h.inverse()
	}

	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			a := mask.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			c := opts.Fill
			if tex != nil {
				c = sample(tex, inv, float64(x)+0.5, float64(y)+0.5)
			}
			blend(dst, x, y, c, a)
		}
	}

	log.Debug("rendered thumbnail",
		zap.Int("width", opts.Width),
		zap.Int("height", opts.Height),
		zap.Bool("textured", tex != nil))
	return dst, nil
}

// RenderPNG renders and encodes the thumbnail.
func RenderPNG(t *formats.Table, opts Options) ([]byte, error) {
	img, err := Render(t, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// quadMask rasterises the quad outline into a coverage mask.
func quadMask(q Quad, w, h int) *image.Alpha {
	z := vector.NewRasterizer(w, h)
	z.MoveTo(q[0].X, q[0].Y)
	for _, p := range q[1:] {
		z.LineTo(p.X, p.Y)
	}
	z.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// playfieldTexture decodes the playfield image and scales it to roughly the
// size it covers on the canvas, so nearest sampling does not alias.
func playfieldTexture(t *formats.Table, q Quad, log *zap.Logger) *image.NRGBA {
	img := t.Image(t.GameData.Image)
	if img == nil {
		if t.GameData.Image != "" {
			log.Warn("playfield image not found", zap.String("image", t.GameData.Image))
		}
		return nil
	}
	src, err := img.Decode()
	if err != nil {
		log.Warn("cannot decode playfield image", zap.String("image", img.Name), zap.Error(err))
		return nil
	}

	lo, hi := q.Bounds()
	w := max(1, int(gomath.Ceil(float64(hi.X-lo.X))))
	h := max(1, int(gomath.Ceil(float64(hi.Y-lo.Y))))
	sb := src.Bounds()
	w, h = min(w, sb.Dx()), min(h, sb.Dy())

	tex := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == sb.Dx() && h == sb.Dy() {
		xdraw.Draw(tex, tex.Bounds(), src, sb.Min, xdraw.Src)
		return tex
	}
	xdraw.CatmullRom.Scale(tex, tex.Bounds(), src, sb, xdraw.Src, nil)
	return tex
}

func sample(tex *image.NRGBA, inv homography, x, y float64) color.NRGBA {
	u, v := inv.apply(x, y)
	b := tex.Bounds()
	tx := clampIndex(int(gomath.Floor(u*float64(b.Dx()))), b.Dx())
	ty := clampIndex(int(gomath.Floor(v*float64(b.Dy()))), b.Dy())
	return tex.NRGBAAt(b.Min.X+tx, b.Min.Y+ty)
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}

// blend draws c over the destination pixel with coverage a.
func blend(dst *image.NRGBA, x, y int, c color.NRGBA, a uint8) {
	i := dst.PixOffset(x, y)
	srcA := uint32(c.A) * uint32(a) / 0xff
	dstA := uint32(dst.Pix[i+3]) * (0xff - srcA) / 0xff
	outA := srcA + dstA
	if outA == 0 {
		return
	}
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*srcA + uint32(d)*dstA) / outA)
	}
	dst.Pix[i+0] = mix(c.R, dst.Pix[i+0])
	dst.Pix[i+1] = mix(c.G, dst.Pix[i+1])
	dst.Pix[i+2] = mix(c.B, dst.Pix[i+2])
	dst.Pix[i+3] = uint8(outA)
}
