package formats

import (
	"encoding/binary"
	"unicode/utf8"
)

// WalkRIFF calls fn for each sub-chunk of a RIFF/WEBP container, starting
// right after the 12-byte header. Odd-length payloads are followed by one
// padding byte. It reports false without calling fn when the RIFF or WEBP
// magic is missing. A sub-chunk whose declared length exceeds the remaining
// data ends the walk silently.
func WalkRIFF(data []byte, fn func(Chunk) bool) bool {
	if !isWebP(data) {
		return false
	}

	cursor := 12
	for cursor+8 <= len(data) {
		chunkType := string(data[cursor : cursor+4])
		size := int(binary.LittleEndian.Uint32(data[cursor+4 : cursor+8]))
		cursor += 8

		if size < 0 || size > len(data)-cursor {
			break
		}
		if !fn(Chunk{Type: chunkType, Data: data[cursor : cursor+size]}) {
			break
		}
		cursor += size + size&1
	}
	return true
}

// WebPXMP returns the XMP packet stored in a WebP "XMP " chunk. The second
// result is false when the data is not a WebP container, when no XMP chunk
// holding valid UTF-8 precedes the end of the data, or when a truncated
// chunk is reached first.
func WebPXMP(data []byte) (string, bool) {
	var (
		xmp   string
		found bool
	)
	WalkRIFF(data, func(c Chunk) bool {
		if c.Type == "XMP " && utf8.Valid(c.Data) {
			xmp, found = string(c.Data), true
			return false
		}
		return true
	})
	return xmp, found
}

// WebPChunk returns the payload of the first sub-chunk with the given tag.
func WebPChunk(data []byte, chunkType string) ([]byte, bool) {
	var (
		payload []byte
		found   bool
	)
	WalkRIFF(data, func(c Chunk) bool {
		if c.Type == chunkType {
			payload, found = c.Data, true
			return false
		}
		return true
	})
	return payload, found
}
