package imgcore

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"imgcore/formats"
)

const octetStream = "application/octet-stream"

// ReadImage reads an image file and builds its MetadataRecord: format,
// dimensions, aspect ratio, color depth, EXIF tags and the file itself as a
// data URL.
//
// Example:
//
//	md, err := imgcore.ReadImage("image.jpg")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Format: %s, Dimensions: %dx%d (%s)\n", md.Format, md.Width, md.Height, md.AspectRatio)
func ReadImage(path string) (*MetadataRecord, error) {
	return defaultEngine.ReadImage(path)
}

// ReadImageBytes builds a MetadataRecord from an in-memory file. name is
// only used to guess the type when the bytes are not recognised.
func ReadImageBytes(name string, data []byte) (*MetadataRecord, error) {
	return defaultEngine.ReadImageBytes(name, data)
}

// ReadImage is the engine form of the package-level ReadImage.
func (e *Engine) ReadImage(path string) (*MetadataRecord, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return e.ReadImageBytes(path, data)
}

// ReadImageBytes is the engine form of the package-level ReadImageBytes.
func (e *Engine) ReadImageBytes(name string, data []byte) (*MetadataRecord, error) {
	mimeType, format := guessFormat(name, data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	md := &MetadataRecord{
		ImageData: dataURL(mimeType, data),
		Format:    format,
		MIMEType:  mimeType,
		FileSize:  int64(len(data)),
	}

	if w, h, depth, ok := decodeDetails(data); ok {
		md.Width, md.Height, md.ColorDepth = w, h, depth
		md.AspectRatio = aspectRatio(w, h)
	} else {
		e.log.Debug("image dimensions unavailable", logName(name))
	}

	md.Tags = exifTags(data)
	return md, nil
}

// guessFormat sniffs the magic bytes and falls back to the file extension.
func guessFormat(name string, data []byte) (mimeType, format string) {
	if f := formats.Detect(data); f != formats.FormatUnknown {
		return f.MIMEType(), string(f)
	}
	mimeType = formats.MIMEFromExtension(name)
	if mimeType == "" {
		mimeType = octetStream
	}
	return mimeType, strings.ToUpper(strings.TrimPrefix(filepath.Ext(name), "."))
}

// formatMIME is the format string used by provenance analysis.
func formatMIME(name string, data []byte) string {
	if f := formats.Detect(data); f != formats.FormatUnknown {
		return f.MIMEType()
	}
	if m := formats.MIMEFromExtension(name); m != "" {
		return m
	}
	return "unknown"
}

func aspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	d := gcd(width, height)
	return strconv.Itoa(width/d) + ":" + strconv.Itoa(height/d)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// exifTags lists the displayable EXIF fields. UNDEFINED values are binary
// and skipped; BYTE values are kept only when they are valid UTF-8.
func exifTags(data []byte) []Tag {
	x, err := formats.ReadEXIF(data)
	if err != nil {
		return nil
	}
	var tags []Tag
	for _, f := range x.Fields() {
		if f.Value == nil {
			continue
		}
		switch f.Type {
		case formats.TypeUndefined:
			continue
		case formats.TypeByte:
			b, _ := f.Value.([]byte)
			if !utf8.Valid(b) {
				continue
			}
			tags = append(tags, Tag{Name: f.Name, Value: string(b)})
			continue
		}
		tags = append(tags, Tag{Name: f.Name, Value: x.Display(f)})
	}
	return tags
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read file %q: %w", ErrInvalidSource, path, err)
	}
	return data, nil
}
