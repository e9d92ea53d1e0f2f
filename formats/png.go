package formats

import (
	"encoding/binary"
	"unicode/utf8"
)

// Chunk is a single typed, length-prefixed block of a PNG or RIFF container.
// Data aliases the input buffer.
type Chunk struct {
	Type string
	Data []byte
}

// TextChunk is a keyword/value pair from a PNG tEXt or iTXt chunk.
type TextChunk struct {
	Key   string
	Value string
}

// WalkPNG calls fn for each chunk after the 8-byte PNG signature, in file
// order, until fn returns false or the data runs out. A chunk whose declared
// length would read past the end of data ends the walk silently. CRCs are
// skipped, not validated. The signature itself is not checked.
func WalkPNG(data []byte, fn func(Chunk) bool) {
	cursor := len(pngSignature)
	for cursor+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[cursor : cursor+4]))
		chunkType := string(data[cursor+4 : cursor+8])
		cursor += 8

		if length < 0 || length > len(data)-cursor {
			return
		}
		if !fn(Chunk{Type: chunkType, Data: data[cursor : cursor+length]}) {
			return
		}

		// chunk data + CRC
		cursor += length + 4
	}
}

// PNGTextChunks extracts the textual metadata of a PNG file. Only tEXt and
// iTXt chunks holding valid UTF-8 are reported. The text is split at the
// first NUL into keyword and value; a chunk without a NUL is reported under
// its chunk type. Order and duplicates are preserved.
func PNGTextChunks(data []byte) []TextChunk {
	var chunks []TextChunk
	WalkPNG(data, func(c Chunk) bool {
		if c.Type != "tEXt" && c.Type != "iTXt" {
			return true
		}
		if !utf8.Valid(c.Data) {
			return true
		}
		content := string(c.Data)
		for i := 0; i < len(content); i++ {
			if content[i] == 0 {
				chunks = append(chunks, TextChunk{Key: content[:i], Value: content[i+1:]})
				return true
			}
		}
		chunks = append(chunks, TextChunk{Key: c.Type, Value: content})
		return true
	})
	return chunks
}

// PNGChunk returns the payload of the first chunk of the given type.
func PNGChunk(data []byte, chunkType string) ([]byte, bool) {
	var (
		payload []byte
		found   bool
	)
	WalkPNG(data, func(c Chunk) bool {
		if c.Type == chunkType {
			payload, found = c.Data, true
			return false
		}
		// Stop after IEND chunk
		return c.Type != "IEND"
	})
	return payload, found
}
