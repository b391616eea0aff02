// Package lzw decodes and encodes the GIF-style LZW streams used for
// uncompressed table images.
//
// Codes are 9 to 12 bits wide, packed least significant bit first and carried
// in sub-blocks of at most 255 bytes, each prefixed by its length. The
// alphabet is 8-bit: code 256 clears the dictionary, code 257 ends the stream.
package lzw

import "errors"

const (
	dataSize  = 8
	clearCode = 1 << dataSize
	endCode   = clearCode + 1
	firstFree = clearCode + 2
	maxBits   = 12
	maxCodes  = 1 << maxBits
	maxBlock  = 255
)

// MaxOutput is the largest image buffer Decode allocates, a 16384x16384
// BGRA bitmap.
const MaxOutput = 16384 * 16384 * 4

var (
	// ErrImageDecompression wraps every decoding failure.
	ErrImageDecompression = errors.New("image decompression failed")
	// ErrTruncated means the input ended before the end code.
	ErrTruncated = errors.New("lzw stream truncated")
	// ErrBounds means the stream decodes to more rows than the image has.
	ErrBounds = errors.New("lzw output exceeds image bounds")
	// ErrBadCode is reported by callers when Result.BadCodes is non-zero.
	ErrBadCode = errors.New("lzw stream contains invalid codes")
)
