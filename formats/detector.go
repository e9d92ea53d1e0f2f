package formats

import (
	"mime"
	"path/filepath"
	"strings"
)

// Format is an image container recognised by its magic bytes.
type Format string

const (
	FormatUnknown Format = ""
	FormatJPEG    Format = "JPEG"
	FormatPNG     Format = "PNG"
	FormatGIF     Format = "GIF"
	FormatWebP    Format = "WEBP"
	FormatBMP     Format = "BMP"
	FormatTIFF    Format = "TIFF"
)

// MIMEType returns the media type for the format, or "" for FormatUnknown.
func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatGIF:
		return "image/gif"
	case FormatWebP:
		return "image/webp"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return ""
	}
}

var (
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	riffSignature = []byte("RIFF")
	webpSignature = []byte("WEBP")
)

// Detect identifies the image format by examining the magic bytes.
// It returns FormatUnknown if the format is not recognized.
func Detect(magicBytes []byte) Format {
	if len(magicBytes) < 2 {
		return FormatUnknown
	}

	// JPEG: FF D8 FF
	if len(magicBytes) >= 3 && magicBytes[0] == 0xFF && magicBytes[1] == 0xD8 && magicBytes[2] == 0xFF {
		return FormatJPEG
	}

	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if hasPrefix(magicBytes, pngSignature) {
		return FormatPNG
	}

	// GIF: GIF87a or GIF89a
	if len(magicBytes) >= 6 {
		if magicBytes[0] == 0x47 && magicBytes[1] == 0x49 && magicBytes[2] == 0x46 &&
			magicBytes[3] == 0x38 && (magicBytes[4] == 0x37 || magicBytes[4] == 0x39) &&
			magicBytes[5] == 0x61 {
			return FormatGIF
		}
	}

	// WebP: RIFF ... WEBP
	if isWebP(magicBytes) {
		return FormatWebP
	}

	// TIFF: II*\0 (little-endian) or MM\0* (big-endian)
	if len(magicBytes) >= 4 {
		if magicBytes[0] == 'I' && magicBytes[1] == 'I' && magicBytes[2] == 0x2A && magicBytes[3] == 0x00 {
			return FormatTIFF
		}
		if magicBytes[0] == 'M' && magicBytes[1] == 'M' && magicBytes[2] == 0x00 && magicBytes[3] == 0x2A {
			return FormatTIFF
		}
	}

	// BMP: 42 4D (BM)
	if magicBytes[0] == 0x42 && magicBytes[1] == 0x4D {
		return FormatBMP
	}

	return FormatUnknown
}

// MIMEFromExtension guesses the media type essence from the file name's
// extension. Parameters such as charset are dropped. It returns "" when the
// extension is unknown.
func MIMEFromExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return extensionFallback[ext]
	}
	essence, _, err := mime.ParseMediaType(t)
	if err != nil {
		return ""
	}
	return essence
}

// extensionFallback covers image types the platform mime table may lack.
var extensionFallback = map[string]string{
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".jpe":  "image/jpeg",
	".jfif": "image/jpeg",
}

func isWebP(b []byte) bool {
	return len(b) >= 12 && hasPrefix(b, riffSignature) && hasPrefix(b[8:], webpSignature)
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if buf[i] != b {
			return false
		}
	}
	return true
}
