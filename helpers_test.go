package imgcore

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// solidImage returns a w×h NRGBA filled with c.
func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// indexedImage gives every pixel a distinct color so transforms can be
// traced back to their source coordinates.
func indexedImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, pixelAt(x, y))
		}
	}
	return img
}

func pixelAt(x, y int) color.NRGBA {
	return color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 0x80, A: 0xFF}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// pngChunk encodes a chunk with a valid CRC so image/png still decodes the
// file.
func pngChunk(typ string, data []byte) []byte {
	out := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
	out = append(out, typ...)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(out[4:]))
}

// withPNGChunks inserts chunks right after IHDR.
func withPNGChunks(pngData []byte, chunks ...[]byte) []byte {
	const afterIHDR = 8 + 8 + 13 + 4
	out := append([]byte{}, pngData[:afterIHDR]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return append(out, pngData[afterIHDR:]...)
}

// withJPEGEXIF inserts an APP1 Exif segment right after SOI.
func withJPEGEXIF(jpegData, tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	out := []byte{0xFF, 0xD8, 0xFF, 0xE1}
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	return append(out, jpegData[2:]...)
}

// tiffField is an inline or out-of-line IFD entry for buildTIFF.
type tiffField struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func shortField(tag, v uint16) tiffField {
	return tiffField{tag, 3, 1, binary.LittleEndian.AppendUint16(nil, v)}
}

func asciiField(tag uint16, s string) tiffField {
	return tiffField{tag, 2, uint32(len(s) + 1), append([]byte(s), 0)}
}

// buildTIFF writes a little-endian TIFF with a single IFD.
func buildTIFF(fields ...tiffField) []byte {
	le := binary.LittleEndian
	out := []byte("II*\x00")
	out = le.AppendUint32(out, 8)
	out = le.AppendUint16(out, uint16(len(fields)))

	valueOff := 8 + 2 + 12*len(fields) + 4
	var values []byte
	for _, f := range fields {
		out = le.AppendUint16(out, f.tag)
		out = le.AppendUint16(out, f.typ)
		out = le.AppendUint32(out, f.count)
		if len(f.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, f.data)
			out = append(out, inline...)
			continue
		}
		out = le.AppendUint32(out, uint32(valueOff+len(values)))
		values = append(values, f.data...)
	}
	out = le.AppendUint32(out, 0)
	return append(out, values...)
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
