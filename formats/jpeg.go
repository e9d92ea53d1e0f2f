package formats

import "encoding/binary"

// Segment is a JPEG marker segment. Data excludes the marker and the
// two-byte length and aliases the input buffer.
type Segment struct {
	Marker byte
	Data   []byte
}

// WalkJPEG calls fn for each marker segment following the SOI marker until
// fn returns false, the start of scan or end of image is reached, or the
// data is truncated.
func WalkJPEG(data []byte, fn func(Segment) bool) {
	// Verify JPEG SOI marker
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return
	}

	i := 2
	for i+2 <= len(data) {
		if data[i] != 0xFF {
			return
		}
		marker := data[i+1]
		i += 2

		// Skip padding bytes (0xFF)
		for marker == 0xFF {
			if i >= len(data) {
				return
			}
			marker = data[i]
			i++
		}

		switch {
		case marker == 0xD9 || marker == 0xDA:
			// EOI, or SOS after which entropy-coded data follows
			return
		case marker >= 0xD0 && marker <= 0xD7, marker == 0x01:
			// RST and TEM markers have no length
			continue
		}

		if i+2 > len(data) {
			return
		}
		length := int(binary.BigEndian.Uint16(data[i:i+2])) - 2
		i += 2
		if length < 0 || length > len(data)-i {
			return
		}

		if !fn(Segment{Marker: marker, Data: data[i : i+length]}) {
			return
		}
		i += length
	}
}

var exifHeader = []byte("Exif\x00\x00")

// jpegEXIF returns the TIFF block of the first APP1 Exif segment.
func jpegEXIF(data []byte) ([]byte, bool) {
	var (
		tiff  []byte
		found bool
	)
	WalkJPEG(data, func(s Segment) bool {
		// APP1 (EXIF)
		if s.Marker == 0xE1 && hasPrefix(s.Data, exifHeader) {
			tiff, found = s.Data[len(exifHeader):], true
			return false
		}
		return true
	})
	return tiff, found
}
