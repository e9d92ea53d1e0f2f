package formats

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// tiffEntry is a directory entry for buildTIFF. data is the encoded value.
type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) tiffEntry {
	return tiffEntry{tag, exifTypeASCII, uint32(len(s) + 1), append([]byte(s), 0)}
}

func shortEntry(order binary.ByteOrder, tag uint16, v uint16) tiffEntry {
	b := make([]byte, 2)
	order.PutUint16(b, v)
	return tiffEntry{tag, exifTypeShort, 1, b}
}

func rationalEntry(order binary.ByteOrder, tag uint16, num, den uint32) tiffEntry {
	b := make([]byte, 8)
	order.PutUint32(b, num)
	order.PutUint32(b[4:], den)
	return tiffEntry{tag, exifTypeRational, 1, b}
}

func undefinedEntry(tag uint16, b []byte) tiffEntry {
	return tiffEntry{tag, exifTypeUndefined, uint32(len(b)), b}
}

// buildTIFF lays out a TIFF header, a primary IFD and, when exif is not
// empty, an Exif sub-IFD whose pointer is the last primary entry.
func buildTIFF(order binary.ByteOrder, primary, exif []tiffEntry) []byte {
	nPrimary := len(primary)
	if len(exif) > 0 {
		nPrimary++
	}
	primaryOff := 8
	exifOff := primaryOff + 2 + 12*nPrimary + 4
	valueOff := exifOff
	if len(exif) > 0 {
		valueOff += 2 + 12*len(exif) + 4
	}

	out := make([]byte, valueOff)
	if order == binary.LittleEndian {
		copy(out, "II")
	} else {
		copy(out, "MM")
	}
	order.PutUint16(out[2:], 42)
	order.PutUint32(out[4:], uint32(primaryOff))

	writeIFD := func(at int, entries []tiffEntry) {
		order.PutUint16(out[at:], uint16(len(entries)))
		for i, e := range entries {
			p := at + 2 + 12*i
			order.PutUint16(out[p:], e.tag)
			order.PutUint16(out[p+2:], e.typ)
			order.PutUint32(out[p+4:], e.count)
			if len(e.data) <= 4 {
				copy(out[p+8:p+12], e.data)
				continue
			}
			order.PutUint32(out[p+8:], uint32(len(out)))
			out = append(out, e.data...)
		}
	}

	if len(exif) > 0 {
		ptr := make([]byte, 4)
		order.PutUint32(ptr, uint32(exifOff))
		primary = append(primary, tiffEntry{exifTagExifIFD, exifTypeLong, 1, ptr})
	}
	writeIFD(primaryOff, primary)
	if len(exif) > 0 {
		writeIFD(exifOff, exif)
	}
	return out
}

func sampleTIFF(order binary.ByteOrder) []byte {
	return buildTIFF(order,
		[]tiffEntry{
			asciiEntry(exifTagMake, "Canon"),
			shortEntry(order, exifTagOrientation, 6),
			rationalEntry(order, exifTagXResolution, 72, 1),
			shortEntry(order, exifTagResolutionUnit, 2),
			asciiEntry(exifTagSoftware, "Adobe Photoshop"),
		},
		[]tiffEntry{
			rationalEntry(order, exifTagExposureTime, 10, 1250),
			rationalEntry(order, exifTagFNumber, 28, 10),
			undefinedEntry(exifTagExifVersion, []byte("0232")),
			rationalEntry(order, exifTagFocalLength, 50, 1),
			undefinedEntry(exifTagUserComment, []byte("ASCII\x00\x00\x00hello world")),
		},
	)
}

func TestParseTIFF(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			x, err := ParseTIFF(sampleTIFF(order))
			if err != nil {
				t.Fatalf("ParseTIFF() error = %v", err)
			}

			type row struct {
				IFD     IFD
				Name    string
				Display string
			}
			var got []row
			for _, f := range x.Fields() {
				got = append(got, row{f.IFD, f.Name, x.Display(f)})
			}
			want := []row{
				{IFDPrimary, "Make", "Canon"},
				{IFDPrimary, "Orientation", "6"},
				{IFDPrimary, "XResolution", "72 pixels per inch"},
				{IFDPrimary, "ResolutionUnit", "2"},
				{IFDPrimary, "Software", "Adobe Photoshop"},
				{IFDPrimary, "ExifIFDPointer", "86"},
				{IFDExif, "ExposureTime", "1/125 s"},
				{IFDExif, "FNumber", "f/2.8"},
				{IFDExif, "ExifVersion", "0232"},
				{IFDExif, "FocalLength", "50 mm"},
				{IFDExif, "UserComment", "hello world"},
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}

			orientation, ok := x.Orientation()
			if !ok || orientation != 6 {
				t.Errorf("Orientation() = %d, %v; want 6, true", orientation, ok)
			}
		})
	}
}

func TestParseTIFF_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte("II*\x00")},
		{"bad byte order", []byte("XX*\x00\x08\x00\x00\x00\x00\x00")},
		{"bad magic", []byte("II\x2B\x00\x08\x00\x00\x00\x00\x00")},
		{"offset out of bounds", []byte("II*\x00\xFF\x00\x00\x00\x00\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTIFF(tt.data)
			if !errors.Is(err, ErrInvalidData) {
				t.Errorf("ParseTIFF() error = %v, want ErrInvalidData", err)
			}
		})
	}
}

func TestParseTIFF_OutOfRangeValue(t *testing.T) {
	order := binary.LittleEndian
	data := buildTIFF(order, []tiffEntry{asciiEntry(exifTagArtist, "someone")}, nil)
	// Point the value past the end of the data.
	order.PutUint32(data[8+2+8:], 0xFFFF)

	x, err := ParseTIFF(data)
	if err != nil {
		t.Fatalf("ParseTIFF() error = %v", err)
	}
	f, ok := x.Get(IFDPrimary, exifTagArtist)
	if !ok {
		t.Fatal("Artist field missing")
	}
	if f.Value != nil {
		t.Errorf("Value = %v, want nil", f.Value)
	}
	if got := x.Display(f); got != "" {
		t.Errorf("Display() = %q, want empty", got)
	}
}

// pointerTIFF builds a primary IFD made only of ExifIFD pointers, entry i
// pointing at target(i).
func pointerTIFF(n int, target func(i int) uint32) []byte {
	order := binary.LittleEndian
	out := make([]byte, 8+2+12*n+4)
	copy(out, "II")
	order.PutUint16(out[2:], 42)
	order.PutUint32(out[4:], 8)
	order.PutUint16(out[8:], uint16(n))
	for i := 0; i < n; i++ {
		p := 10 + 12*i
		order.PutUint16(out[p:], exifTagExifIFD)
		order.PutUint16(out[p+2:], exifTypeLong)
		order.PutUint32(out[p+4:], 1)
		order.PutUint32(out[p+8:], target(i))
	}
	return out
}

func TestParseTIFF_RepeatedPointers(t *testing.T) {
	const n = 2000

	tests := []struct {
		name   string
		target func(i int) uint32
		max    int
	}{
		{"pointing at the primary IFD", func(int) uint32 { return 8 }, n},
		{"pointing at every entry", func(i int) uint32 { return uint32(10 + 12*i) }, 2 * n},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := ParseTIFF(pointerTIFF(n, tt.target))
			if err != nil {
				t.Fatalf("ParseTIFF() error = %v", err)
			}
			if got := len(x.Fields()); got < n || got > tt.max {
				t.Errorf("len(Fields()) = %d, want between %d and %d", got, n, tt.max)
			}
		})
	}
}

func TestParseTIFF_UnknownTag(t *testing.T) {
	order := binary.BigEndian
	x, err := ParseTIFF(buildTIFF(order, []tiffEntry{shortEntry(order, 999, 7)}, nil))
	if err != nil {
		t.Fatalf("ParseTIFF() error = %v", err)
	}
	fields := x.Fields()
	if len(fields) != 1 || fields[0].Name != "Tag(Primary, 999)" {
		t.Errorf("Fields() = %+v", fields)
	}
}

func TestReadEXIF(t *testing.T) {
	tiff := sampleTIFF(binary.LittleEndian)

	app1 := append(append([]byte{}, exifHeader...), tiff...)
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x04, 0x00, 0x00, 0xFF, 0xE1}
	jpeg = binary.BigEndian.AppendUint16(jpeg, uint16(len(app1)+2))
	jpeg = append(jpeg, app1...)
	jpeg = append(jpeg, 0xFF, 0xD9)

	png := buildPNG(
		pngChunk("IHDR", make([]byte, 13)),
		pngChunk("eXIf", tiff),
		pngChunk("IEND", nil),
	)

	webpPrefixed := buildWebP(riffChunk("VP8X", make([]byte, 10)), riffChunk("EXIF", app1))
	webpBare := buildWebP(riffChunk("EXIF", tiff))

	tests := []struct {
		name string
		data []byte
	}{
		{"JPEG APP1", jpeg},
		{"PNG eXIf", png},
		{"WebP with Exif header", webpPrefixed},
		{"WebP bare TIFF", webpBare},
		{"TIFF", tiff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := ReadEXIF(tt.data)
			if err != nil {
				t.Fatalf("ReadEXIF() error = %v", err)
			}
			f, ok := x.Get(IFDPrimary, exifTagSoftware)
			if !ok || f.Value != "Adobe Photoshop" {
				t.Errorf("Software = %v, %v", f.Value, ok)
			}
		})
	}
}

func TestReadEXIF_None(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"PNG without eXIf", buildPNG(pngChunk("IHDR", make([]byte, 13)), pngChunk("IEND", nil))},
		{"JPEG without APP1", []byte{0xFF, 0xD8, 0xFF, 0xD9}},
		{"GIF", []byte("GIF89a\x01\x00\x01\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadEXIF(tt.data); !errors.Is(err, ErrNoEXIF) {
				t.Errorf("ReadEXIF() error = %v, want ErrNoEXIF", err)
			}
		})
	}
}

func TestDisplay_ResolutionUnit(t *testing.T) {
	order := binary.LittleEndian
	x, err := ParseTIFF(buildTIFF(order, []tiffEntry{
		rationalEntry(order, exifTagYResolution, 300, 1),
		shortEntry(order, exifTagResolutionUnit, 3),
	}, nil))
	if err != nil {
		t.Fatal(err)
	}
	f, _ := x.Get(IFDPrimary, exifTagYResolution)
	if got, want := x.Display(f), "300 pixels per cm"; got != want {
		t.Errorf("Display() = %q, want %q", got, want)
	}
}

func TestUserComment(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii", []byte("ASCII\x00\x00\x00prompt: a cat  "), "prompt: a cat"},
		{"unicode big endian", []byte("UNICODE\x00\x00h\x00i"), "hi"},
		{"unicode little endian", []byte("UNICODE\x00h\x00i\x00"), "hi"},
		{"short", []byte("abc"), "abc"},
		{"binary", []byte("UNDEFINE\xff\xfe"), "0xfffe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userComment(tt.in); got != tt.want {
				t.Errorf("userComment() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReduced(t *testing.T) {
	tests := []struct {
		in   Rational
		want string
	}{
		{Rational{10, 1250}, "1/125"},
		{Rational{4, 2}, "2"},
		{Rational{0, 5}, "0"},
		{Rational{1, 0}, "0"},
	}
	for _, tt := range tests {
		if got := reduced(tt.in); got != tt.want {
			t.Errorf("reduced(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
