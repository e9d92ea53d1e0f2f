package formats

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// IFD identifies the image file directory a field was read from.
type IFD int

const (
	IFDPrimary IFD = iota
	IFDExif
	IFDGPS
)

func (d IFD) String() string {
	switch d {
	case IFDPrimary:
		return "Primary"
	case IFDExif:
		return "Exif"
	case IFDGPS:
		return "GPS"
	default:
		return "IFD(" + strconv.Itoa(int(d)) + ")"
	}
}

// EXIF tag IDs (commonly used)
const (
	exifTagImageDescription = 0x010E
	exifTagMake             = 0x010F
	exifTagModel            = 0x0110
	exifTagOrientation      = 0x0112
	exifTagXResolution      = 0x011A
	exifTagYResolution      = 0x011B
	exifTagResolutionUnit   = 0x0128
	exifTagSoftware         = 0x0131
	exifTagDateTime         = 0x0132
	exifTagArtist           = 0x013B
	exifTagCopyright        = 0x8298
	exifTagExifIFD          = 0x8769
	exifTagGPSIFD           = 0x8825
	exifTagExposureTime     = 0x829A
	exifTagFNumber          = 0x829D
	exifTagISO              = 0x8827
	exifTagExifVersion      = 0x9000
	exifTagFocalLength      = 0x920A
	exifTagUserComment      = 0x9286
	exifTagPixelXDimension  = 0xA002
	exifTagPixelYDimension  = 0xA003
	exifTagFocalLength35mm  = 0xA405
	gpsTagAltitude          = 0x0006
)

// EXIF data types
const (
	exifTypeByte      = 1
	exifTypeASCII     = 2
	exifTypeShort     = 3
	exifTypeLong      = 4
	exifTypeRational  = 5
	exifTypeSByte     = 6
	exifTypeUndefined = 7
	exifTypeSShort    = 8
	exifTypeSLong     = 9
	exifTypeSRational = 10
	exifTypeFloat     = 11
	exifTypeDouble    = 12
)

// Field types callers branch on.
const (
	TypeByte      uint16 = exifTypeByte
	TypeASCII     uint16 = exifTypeASCII
	TypeUndefined uint16 = exifTypeUndefined
)

// maxIFDDepth bounds sub-IFD recursion on hostile input.
const maxIFDDepth = 4

var primaryTagNames = map[uint16]string{
	0x0100:                  "ImageWidth",
	0x0101:                  "ImageLength",
	0x0102:                  "BitsPerSample",
	0x0103:                  "Compression",
	0x0106:                  "PhotometricInterpretation",
	exifTagImageDescription: "ImageDescription",
	exifTagMake:             "Make",
	exifTagModel:            "Model",
	exifTagOrientation:      "Orientation",
	0x0115:                  "SamplesPerPixel",
	exifTagXResolution:      "XResolution",
	exifTagYResolution:      "YResolution",
	exifTagResolutionUnit:   "ResolutionUnit",
	exifTagSoftware:         "Software",
	exifTagDateTime:         "DateTime",
	exifTagArtist:           "Artist",
	0x013C:                  "HostComputer",
	0x0213:                  "YCbCrPositioning",
	exifTagCopyright:        "Copyright",
	exifTagExifIFD:          "ExifIFDPointer",
	exifTagGPSIFD:           "GPSInfoIFDPointer",
}

var exifTagNames = map[uint16]string{
	exifTagExposureTime:    "ExposureTime",
	exifTagFNumber:         "FNumber",
	0x8822:                 "ExposureProgram",
	exifTagISO:             "PhotographicSensitivity",
	exifTagExifVersion:     "ExifVersion",
	0x9003:                 "DateTimeOriginal",
	0x9004:                 "DateTimeDigitized",
	0x9201:                 "ShutterSpeedValue",
	0x9202:                 "ApertureValue",
	0x9204:                 "ExposureBiasValue",
	0x9207:                 "MeteringMode",
	0x9209:                 "Flash",
	exifTagFocalLength:     "FocalLength",
	0x927C:                 "MakerNote",
	exifTagUserComment:     "UserComment",
	0xA000:                 "FlashpixVersion",
	0xA001:                 "ColorSpace",
	exifTagPixelXDimension: "PixelXDimension",
	exifTagPixelYDimension: "PixelYDimension",
	exifTagFocalLength35mm: "FocalLengthIn35mmFilm",
	0xA420:                 "ImageUniqueID",
	0xA430:                 "CameraOwnerName",
	0xA431:                 "BodySerialNumber",
	0xA433:                 "LensMake",
	0xA434:                 "LensModel",
}

var gpsTagNames = map[uint16]string{
	0x0000:         "GPSVersionID",
	0x0001:         "GPSLatitudeRef",
	0x0002:         "GPSLatitude",
	0x0003:         "GPSLongitudeRef",
	0x0004:         "GPSLongitude",
	0x0005:         "GPSAltitudeRef",
	gpsTagAltitude: "GPSAltitude",
	0x0007:         "GPSTimeStamp",
	0x001D:         "GPSDateStamp",
}

// Rational is an unsigned EXIF fraction.
type Rational struct {
	Num, Den uint32
}

// Float returns the fraction as a float, or 0 when the denominator is 0.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// SRational is a signed EXIF fraction.
type SRational struct {
	Num, Den int32
}

// Float returns the fraction as a float, or 0 when the denominator is 0.
func (r SRational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Field is a single directory entry.
//
// Value holds one of: string (ASCII), []byte (BYTE, SBYTE, UNDEFINED),
// []uint16 (SHORT), []int16 (SSHORT), []uint32 (LONG), []int32 (SLONG),
// []Rational, []SRational, or nil when the value lies outside the data.
// FLOAT and DOUBLE values are kept as raw bytes.
type Field struct {
	IFD   IFD
	Tag   uint16
	Name  string
	Type  uint16
	Count uint32
	Value interface{}
}

// Uint returns the i-th element of an unsigned integer field.
func (f Field) Uint(i int) (uint32, bool) {
	switch v := f.Value.(type) {
	case []uint16:
		if i < len(v) {
			return uint32(v[i]), true
		}
	case []uint32:
		if i < len(v) {
			return v[i], true
		}
	case []byte:
		if f.Type == exifTypeByte && i < len(v) {
			return uint32(v[i]), true
		}
	}
	return 0, false
}

// EXIF is a parsed EXIF block. Fields are kept in directory order: the
// primary IFD first, each sub-IFD inserted where its pointer appeared.
type EXIF struct {
	fields []Field
}

// Fields returns the directory entries in read order.
func (x *EXIF) Fields() []Field {
	return x.fields
}

// Get returns the first field with the given tag in the given IFD.
func (x *EXIF) Get(ifd IFD, tag uint16) (Field, bool) {
	for _, f := range x.fields {
		if f.IFD == ifd && f.Tag == tag {
			return f, true
		}
	}
	return Field{}, false
}

// Orientation returns the Orientation value of the primary image.
func (x *EXIF) Orientation() (int, bool) {
	f, ok := x.Get(IFDPrimary, exifTagOrientation)
	if !ok {
		return 0, false
	}
	v, ok := f.Uint(0)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// ReadEXIF locates and parses the EXIF block of a JPEG, PNG, WebP or TIFF
// file held in data.
func ReadEXIF(data []byte) (*EXIF, error) {
	var (
		tiff  []byte
		found bool
	)
	switch Detect(data) {
	case FormatJPEG:
		tiff, found = jpegEXIF(data)
	case FormatPNG:
		tiff, found = PNGChunk(data, "eXIf")
	case FormatWebP:
		tiff, found = WebPChunk(data, "EXIF")
		if found && hasPrefix(tiff, exifHeader) {
			tiff = tiff[len(exifHeader):]
		}
	case FormatTIFF:
		tiff, found = data, true
	}
	if !found {
		return nil, ErrNoEXIF
	}
	return ParseTIFF(tiff)
}

// ParseTIFF parses a TIFF structure (used by EXIF)
func ParseTIFF(data []byte) (*EXIF, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: insufficient data for TIFF header", ErrInvalidData)
	}

	// Check byte order (II for little-endian, MM for big-endian)
	var byteOrder binary.ByteOrder
	if data[0] == 0x49 && data[1] == 0x49 {
		byteOrder = binary.LittleEndian
	} else if data[0] == 0x4D && data[1] == 0x4D {
		byteOrder = binary.BigEndian
	} else {
		return nil, fmt.Errorf("%w: invalid TIFF byte order", ErrInvalidData)
	}

	// Check TIFF magic number (42)
	if byteOrder.Uint16(data[2:4]) != 42 {
		return nil, fmt.Errorf("%w: invalid TIFF magic number", ErrInvalidData)
	}

	// Get offset to first IFD
	ifdOffset := int(byteOrder.Uint32(data[4:8]))
	if ifdOffset < 8 || ifdOffset >= len(data) {
		return nil, fmt.Errorf("%w: IFD offset out of bounds", ErrInvalidData)
	}

	x := &EXIF{}
	p := ifdParser{data: data, order: byteOrder, exif: x, visited: make(map[int]bool), followed: make(map[IFD]bool)}
	p.parseIFD(ifdOffset, IFDPrimary, 0)
	return x, nil
}

type ifdParser struct {
	data  []byte
	order binary.ByteOrder
	exif  *EXIF

	// Each directory offset is read at most once and each sub-IFD kind is
	// entered at most once, so the field count stays linear in len(data).
	visited  map[int]bool
	followed map[IFD]bool
}

// parseIFD parses an Image File Directory. The next-IFD link is not
// followed, so only the primary image is read.
func (p *ifdParser) parseIFD(offset int, ifd IFD, depth int) {
	data := p.data
	if depth > maxIFDDepth || offset < 0 || offset+2 > len(data) {
		return
	}
	if p.visited[offset] || p.followed[ifd] {
		return
	}
	p.visited[offset] = true
	if ifd != IFDPrimary {
		p.followed[ifd] = true
	}

	numEntries := int(p.order.Uint16(data[offset : offset+2]))
	offset += 2

	for i := 0; i < numEntries && offset+12 <= len(data); i++ {
		entry := data[offset : offset+12]
		offset += 12

		tag := p.order.Uint16(entry[0:2])
		dataType := p.order.Uint16(entry[2:4])
		count := p.order.Uint32(entry[4:8])

		var value interface{}
		valueSize := uint64(dataTypeSize(dataType)) * uint64(count)
		if valueSize <= 4 {
			// Value is stored directly in the offset field
			value = readTagValue(entry[8:8+valueSize], dataType, count, p.order)
		} else {
			valOffset := uint64(p.order.Uint32(entry[8:12]))
			if valOffset+valueSize <= uint64(len(data)) {
				value = readTagValue(data[valOffset:valOffset+valueSize], dataType, count, p.order)
			}
		}

		f := Field{IFD: ifd, Tag: tag, Name: tagName(ifd, tag), Type: dataType, Count: count, Value: value}
		p.exif.fields = append(p.exif.fields, f)

		// Handle IFD pointers
		if ifd == IFDPrimary && (tag == exifTagExifIFD || tag == exifTagGPSIFD) {
			if ptr, ok := f.Uint(0); ok {
				sub := IFDExif
				if tag == exifTagGPSIFD {
					sub = IFDGPS
				}
				p.parseIFD(int(ptr), sub, depth+1)
			}
		}
	}
}

// dataTypeSize returns the size in bytes of an EXIF data type
func dataTypeSize(dataType uint16) int {
	switch dataType {
	case exifTypeByte, exifTypeASCII, exifTypeSByte, exifTypeUndefined:
		return 1
	case exifTypeShort, exifTypeSShort:
		return 2
	case exifTypeLong, exifTypeSLong, exifTypeFloat:
		return 4
	case exifTypeRational, exifTypeSRational, exifTypeDouble:
		return 8
	default:
		return 1
	}
}

// readTagValue decodes count values of dataType; len(data) is exactly
// count * dataTypeSize(dataType).
func readTagValue(data []byte, dataType uint16, count uint32, byteOrder binary.ByteOrder) interface{} {
	n := int(count)
	switch dataType {
	case exifTypeASCII:
		return strings.TrimRight(string(data), "\x00")

	case exifTypeShort:
		vals := make([]uint16, n)
		for i := range vals {
			vals[i] = byteOrder.Uint16(data[i*2:])
		}
		return vals

	case exifTypeSShort:
		vals := make([]int16, n)
		for i := range vals {
			vals[i] = int16(byteOrder.Uint16(data[i*2:]))
		}
		return vals

	case exifTypeLong:
		vals := make([]uint32, n)
		for i := range vals {
			vals[i] = byteOrder.Uint32(data[i*4:])
		}
		return vals

	case exifTypeSLong:
		vals := make([]int32, n)
		for i := range vals {
			vals[i] = int32(byteOrder.Uint32(data[i*4:]))
		}
		return vals

	case exifTypeRational:
		vals := make([]Rational, n)
		for i := range vals {
			vals[i] = Rational{byteOrder.Uint32(data[i*8:]), byteOrder.Uint32(data[i*8+4:])}
		}
		return vals

	case exifTypeSRational:
		vals := make([]SRational, n)
		for i := range vals {
			vals[i] = SRational{int32(byteOrder.Uint32(data[i*8:])), int32(byteOrder.Uint32(data[i*8+4:]))}
		}
		return vals

	default:
		// BYTE, SBYTE, UNDEFINED, FLOAT, DOUBLE and unknown types stay raw.
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}
}

// tagName returns the human-readable name for an EXIF tag
func tagName(ifd IFD, tag uint16) string {
	var names map[uint16]string
	switch ifd {
	case IFDPrimary:
		names = primaryTagNames
	case IFDExif:
		names = exifTagNames
	case IFDGPS:
		names = gpsTagNames
	}
	if name, ok := names[tag]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%s, %d)", ifd, tag)
}

// Display renders a field value for people, with its unit where the tag has
// one. Resolution units are taken from the primary IFD of x.
func (x *EXIF) Display(f Field) string {
	if f.Value == nil {
		return ""
	}

	switch f.IFD {
	case IFDPrimary:
		switch f.Tag {
		case exifTagXResolution, exifTagYResolution:
			return joinValues(f) + " " + x.resolutionUnit()
		}
	case IFDExif:
		switch f.Tag {
		case exifTagExposureTime:
			if r, ok := f.Value.([]Rational); ok && len(r) > 0 {
				return reduced(r[0]) + " s"
			}
		case exifTagFNumber:
			return "f/" + joinValues(f)
		case exifTagFocalLength, exifTagFocalLength35mm:
			return joinValues(f) + " mm"
		case exifTagPixelXDimension, exifTagPixelYDimension:
			return joinValues(f) + " pixels"
		case exifTagUserComment:
			if b, ok := f.Value.([]byte); ok {
				return userComment(b)
			}
		case exifTagExifVersion:
			if b, ok := f.Value.([]byte); ok {
				return string(b)
			}
		}
	case IFDGPS:
		if f.Tag == gpsTagAltitude {
			return joinValues(f) + " m"
		}
	}
	return joinValues(f)
}

func (x *EXIF) resolutionUnit() string {
	if f, ok := x.Get(IFDPrimary, exifTagResolutionUnit); ok {
		if v, ok := f.Uint(0); ok {
			switch v {
			case 1:
				return "(no unit)"
			case 3:
				return "pixels per cm"
			}
		}
	}
	return "pixels per inch"
}

func joinValues(f Field) string {
	var parts []string
	switch v := f.Value.(type) {
	case string:
		return v
	case []byte:
		if f.Type == exifTypeUndefined {
			return undefinedString(v)
		}
		for _, b := range v {
			if f.Type == exifTypeSByte {
				parts = append(parts, strconv.Itoa(int(int8(b))))
			} else {
				parts = append(parts, strconv.Itoa(int(b)))
			}
		}
	case []uint16:
		for _, n := range v {
			parts = append(parts, strconv.FormatUint(uint64(n), 10))
		}
	case []int16:
		for _, n := range v {
			parts = append(parts, strconv.Itoa(int(n)))
		}
	case []uint32:
		for _, n := range v {
			parts = append(parts, strconv.FormatUint(uint64(n), 10))
		}
	case []int32:
		for _, n := range v {
			parts = append(parts, strconv.Itoa(int(n)))
		}
	case []Rational:
		for _, r := range v {
			parts = append(parts, strconv.FormatFloat(r.Float(), 'f', -1, 64))
		}
	case []SRational:
		for _, r := range v {
			parts = append(parts, strconv.FormatFloat(r.Float(), 'f', -1, 64))
		}
	}
	return strings.Join(parts, ", ")
}

func reduced(r Rational) string {
	if r.Den == 0 {
		return "0"
	}
	a, b := r.Num, r.Den
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return "0"
	}
	if r.Den/a == 1 {
		return strconv.FormatUint(uint64(r.Num/a), 10)
	}
	return strconv.FormatUint(uint64(r.Num/a), 10) + "/" + strconv.FormatUint(uint64(r.Den/a), 10)
}

// userComment strips the 8-byte character code prefix.
func userComment(b []byte) string {
	if len(b) < 8 {
		return undefinedString(b)
	}
	code, text := string(b[:8]), b[8:]
	switch {
	case strings.HasPrefix(code, "UNICODE"):
		return decodeUCS2(text)
	default:
		return strings.TrimRight(undefinedString(text), "\x00 ")
	}
}

// decodeUCS2 decodes big-endian UCS-2, the common writer convention, and
// falls back to little-endian when every other byte of the first pair is
// zero the other way round.
func decodeUCS2(b []byte) string {
	bigEndian := true
	if len(b) >= 2 && b[0] != 0 && b[1] == 0 {
		bigEndian = false
	}
	var sb strings.Builder
	for i := 0; i+1 < len(b); i += 2 {
		var r rune
		if bigEndian {
			r = rune(b[i])<<8 | rune(b[i+1])
		} else {
			r = rune(b[i+1])<<8 | rune(b[i])
		}
		if r == 0 {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func undefinedString(b []byte) string {
	if utf8.Valid(b) {
		return strings.TrimRight(string(b), "\x00")
	}
	var sb strings.Builder
	sb.WriteString("0x")
	for _, c := range b {
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}
