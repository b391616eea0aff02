// Package encoding provides text decoding for strings stored in table files.
//
// Plain strings are Windows-1252 ("ANSI") bytes; names and table info are
// UTF-16LE. Both decode to UTF-8 Go strings.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ANSIToUTF8 converts Windows-1252 bytes to a UTF-8 string.
// Returns the bytes unchanged if conversion fails.
func ANSIToUTF8(data []byte) string {
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToANSI converts a UTF-8 string to Windows-1252 bytes.
// Characters outside the code page make it return the UTF-8 bytes.
func UTF8ToANSI(s string) []byte {
	result, _, err := transform.Bytes(charmap.Windows1252.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// UTF16ToUTF8 converts UTF-16LE bytes to a UTF-8 string, stopping at the
// first NUL code unit.
func UTF16ToUTF8(data []byte) string {
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			data = data[:i]
			break
		}
	}
	result, _, err := transform.Bytes(utf16LE.NewDecoder(), data)
	if err != nil {
		return ""
	}
	return string(result)
}

// UTF8ToUTF16 converts a UTF-8 string to UTF-16LE bytes without terminator.
func UTF8ToUTF16(s string) []byte {
	result, _, err := transform.Bytes(utf16LE.NewEncoder(), []byte(s))
	if err != nil {
		return nil
	}
	return result
}

// TrimNullBytes removes trailing null bytes from a byte slice.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}

// FixedStringToUTF8 converts a fixed-size, NUL-padded ANSI field to UTF-8.
func FixedStringToUTF8(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return ANSIToUTF8(data)
}

// UTF8ToFixedString converts a UTF-8 string to a NUL-padded ANSI field of size bytes.
// Longer strings are cut so that at least one NUL remains.
func UTF8ToFixedString(s string, size int) []byte {
	result := make([]byte, size)
	encoded := UTF8ToANSI(s)
	if len(encoded) >= size {
		encoded = encoded[:size-1]
	}
	copy(result, encoded)
	return result
}
