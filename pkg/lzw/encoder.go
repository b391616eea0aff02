package lzw

// bitWriter packs codes LSB first into length-prefixed sub-blocks.
type bitWriter struct {
	out   []byte
	block []byte
	bits  uint32
	nbits uint
}

func (w *bitWriter) write(code int, size uint) {
	w.bits |= uint32(code) << w.nbits
	w.nbits += size
	for w.nbits >= 8 {
		w.byte(byte(w.bits))
		w.bits >>= 8
		w.nbits -= 8
	}
}

func (w *bitWriter) byte(b byte) {
	w.block = append(w.block, b)
	if len(w.block) == maxBlock {
		w.flushBlock()
	}
}

func (w *bitWriter) flushBlock() {
	if len(w.block) == 0 {
		return
	}
	w.out = append(w.out, byte(len(w.block)))
	w.out = append(w.out, w.block...)
	w.block = w.block[:0]
}

// close flushes pending bits and appends the zero-length terminator block.
func (w *bitWriter) close() []byte {
	if w.nbits > 0 {
		w.byte(byte(w.bits))
		w.bits, w.nbits = 0, 0
	}
	w.flushBlock()
	return append(w.out, 0)
}

// encoder mirrors the decoder's view of the dictionary so both agree on code widths.
type encoder struct {
	w        bitWriter
	dict     map[uint32]int
	nextCode int
	size     uint
}

func (e *encoder) reset() {
	e.dict = make(map[uint32]int)
	e.nextCode = firstFree
	e.size = dataSize + 1
}

func (e *encoder) emit(code int) {
	for e.nextCode > 1<<e.size && e.size < maxBits {
		e.size++
	}
	e.w.write(code, e.size)
}

// Encode compresses height rows of width bytes taken stride bytes apart.
func Encode(pixels []byte, width, height, stride int) []byte {
	e := &encoder{}
	e.reset()
	e.w.block = make([]byte, 0, maxBlock)
	e.emit(clearCode)

	w := -1
	for row := 0; row < height; row++ {
		line := pixels[row*stride : row*stride+width]
		for _, k := range line {
			if w < 0 {
				w = int(k)
				continue
			}
			key := uint32(w)<<8 | uint32(k)
			if code, ok := e.dict[key]; ok {
				w = code
				continue
			}
			e.emit(w)
			if e.nextCode < maxCodes {
				e.dict[key] = e.nextCode
				e.nextCode++
			} else {
				e.emit(clearCode)
				e.reset()
			}
			w = int(k)
		}
	}

	if w >= 0 {
		e.emit(w)
		// the decoder adds an entry for this code before reading the end code
		if e.nextCode < maxCodes {
			e.nextCode++
		}
	}
	e.emit(endCode)
	return e.w.close()
}
