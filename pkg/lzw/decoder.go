package lzw

import (
	"fmt"

	"github.com/vpdb/server-sub007/pkg/cursor"
)

// Options controls decoding.
type Options struct {
	// Tolerant returns the pixels decoded so far instead of failing when the
	// input ends before the end code.
	Tolerant bool
}

// Result holds the decoded image.
type Result struct {
	// Pixels holds height rows of stride bytes; the first width bytes of each row are image data.
	Pixels []byte
	// Consumed is the number of input bytes belonging to the stream.
	Consumed int
	// BadCodes counts codes beyond the next free dictionary slot.
	BadCodes int
	// Partial is set when a tolerant decode hit the end of input.
	Partial bool
}

// bitReader pulls variable-width codes out of length-prefixed sub-blocks.
type bitReader struct {
	c     *cursor.Cursor
	block []byte
	bits  uint32
	nbits uint
}

func (b *bitReader) code(size uint) (int, error) {
	for b.nbits < size {
		if len(b.block) == 0 {
			n, err := b.c.Uint8()
			if err != nil || n == 0 {
				return 0, ErrTruncated
			}
			if int(n) > b.c.Remaining() {
				n = uint8(b.c.Remaining())
			}
			b.block, _ = b.c.Bytes(int(n))
			if len(b.block) == 0 {
				return 0, ErrTruncated
			}
		}
		b.bits |= uint32(b.block[0]) << b.nbits
		b.block = b.block[1:]
		b.nbits += 8
	}
	v := int(b.bits & (1<<size - 1))
	b.bits >>= size
	b.nbits -= size
	return v, nil
}

// consumed returns the bytes read through the end of the current sub-block,
// including a zero-length terminator block directly after it.
func (b *bitReader) consumed() int {
	n := b.c.Pos()
	if rest := b.c.Rest(); len(rest) > 0 && rest[0] == 0 {
		n++
	}
	return n
}

// decoder holds the per-call dictionary.
type decoder struct {
	br     bitReader
	prefix [maxCodes]uint16
	suffix [maxCodes]uint8
	stack  []byte

	pixels                []byte
	width, height, stride int
	row, col              int
	badCodes              int
}

// put writes one byte at the output cursor and moves to the next row when the
// current one is full.
func (d *decoder) put(v byte) error {
	if d.row >= d.height {
		return ErrBounds
	}
	d.pixels[d.row*d.stride+d.col] = v
	d.col++
	if d.col == d.width {
		d.col = 0
		d.row++
	}
	return nil
}

func (d *decoder) run() error {
	size := uint(dataSize + 1)
	slot := firstFree
	topSlot := 1 << size
	oc, fc := 0, 0

	for {
		c, err := d.br.code(size)
		if err != nil {
			return err
		}
		if c == endCode {
			return nil
		}

		if c == clearCode {
			size = dataSize + 1
			slot = firstFree
			topSlot = 1 << size
			for c == clearCode {
				if c, err = d.br.code(size); err != nil {
					return err
				}
			}
			if c == endCode {
				return nil
			}
			if c >= slot {
				d.badCodes++
				c = 0
			}
			oc, fc = c, c
			if err := d.put(byte(c)); err != nil {
				return err
			}
			continue
		}

		code := c
		d.stack = d.stack[:0]
		if code >= slot {
			if code > slot {
				// decode as the entry about to be added
				d.badCodes++
				c = slot
			}
			code = oc
			d.stack = append(d.stack, byte(fc))
		}
		for code >= firstFree {
			d.stack = append(d.stack, d.suffix[code])
			code = int(d.prefix[code])
		}
		d.stack = append(d.stack, byte(code))

		if slot < topSlot {
			fc = code
			d.suffix[slot] = byte(fc)
			d.prefix[slot] = uint16(oc)
			slot++
			oc = c
		}
		if slot >= topSlot && size < maxBits {
			topSlot <<= 1
			size++
		}

		for i := len(d.stack) - 1; i >= 0; i-- {
			if err := d.put(d.stack[i]); err != nil {
				return err
			}
		}
	}
}

// Decode decompresses src into height rows of width bytes, stride bytes apart.
func Decode(src []byte, width, height, stride int, opts Options) (*Result, error) {
	if width <= 0 || height < 0 || stride < width {
		return nil, fmt.Errorf("%w: %w: width %d, height %d, stride %d",
			ErrImageDecompression, ErrBounds, width, height, stride)
	}
	if height > 0 && stride > MaxOutput/height {
		return nil, fmt.Errorf("%w: %w: %d rows of %d bytes exceed %d",
			ErrImageDecompression, ErrBounds, height, stride, MaxOutput)
	}

	d := &decoder{
		br:     bitReader{c: cursor.New(src)},
		stack:  make([]byte, 0, maxCodes+1),
		pixels: make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
	}

	err := d.run()
	res := &Result{
		Pixels:   d.pixels,
		Consumed: d.br.consumed(),
		BadCodes: d.badCodes,
	}
	switch {
	case err == nil:
		return res, nil
	case err == ErrTruncated && opts.Tolerant:
		res.Partial = true
		return res, nil
	default:
		return nil, fmt.Errorf("%w: %w (row %d of %d)", ErrImageDecompression, err, d.row, height)
	}
}
