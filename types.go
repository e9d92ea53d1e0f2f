package imgcore

import (
	"bytes"
	"encoding/json"
	"image/color"
	"strings"
)

// Tag is a single EXIF name/display-value pair.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MetadataRecord describes an image file for display.
type MetadataRecord struct {
	// ImageData is the raw file as a data URL ("data:<mime>;base64,...").
	ImageData string `json:"image_data"`

	// Tags holds EXIF fields in the order they were read.
	Tags []Tag `json:"tags"`

	// Width and Height are the image dimensions in pixels; both are 0 when
	// the codec could not read them.
	Width  int `json:"width"`
	Height int `json:"height"`

	// AspectRatio is "W:H" in lowest terms, or "" when a dimension is 0.
	AspectRatio string `json:"aspect_ratio"`

	// Format is the upper-case codec name (e.g. "PNG", "JPEG", "WEBP"), or
	// the upper-cased file extension when the bytes were not recognised.
	Format string `json:"format"`

	MIMEType string `json:"mime_type"`

	// ColorDepth is the number of bits per color channel, nil if unknown.
	ColorDepth *int `json:"color_depth"`

	FileSize int64 `json:"file_size"`
}

// Get returns the value of the first tag with the given name.
func (md *MetadataRecord) Get(name string) (string, bool) {
	for _, t := range md.Tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// EXIFJSON renders Tags as a JSON object, keys in read order. A repeated
// name keeps its first value. It returns "" when there are no tags.
func (md *MetadataRecord) EXIFJSON() string {
	if len(md.Tags) == 0 {
		return ""
	}
	var buf bytes.Buffer
	seen := make(map[string]struct{}, len(md.Tags))
	buf.WriteByte('{')
	for _, t := range md.Tags {
		if _, dup := seen[t.Name]; dup {
			continue
		}
		seen[t.Name] = struct{}{}
		if len(seen) > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(t.Name)
		v, _ := json.Marshal(t.Value)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.String()
}

// ProvenanceVerdict is the outcome of an AI-generation check. A false
// LikelyAI means nothing was found, not that the image is proven authentic.
type ProvenanceVerdict struct {
	LikelyAI bool   `json:"is_ai_generated"`
	Format   string `json:"format"`

	// Reasons names every probe that fired.
	Reasons []string `json:"reasons,omitempty"`

	// C2PAManifest is the brace-delimited span following the C2PA marker.
	C2PAManifest string `json:"c2pa_manifest,omitempty"`
}

// Probe names reported in ProvenanceVerdict.Reasons.
const (
	ReasonC2PA    = "c2pa"
	ReasonEXIF    = "exif"
	ReasonPNGText = "png_text"
	ReasonWebPXMP = "webp_xmp"
)

// RenderParams controls the ASCII renderer.
type RenderParams struct {
	// CellWidth and CellHeight are the source pixels covered by one glyph.
	CellWidth  int
	CellHeight int

	// Gamma is applied to normalised luminance; values below 1 brighten
	// mid-tones.
	Gamma float64

	Background color.RGBA
}

// Render defaults.
const (
	DefaultCellWidth  = 10
	DefaultCellHeight = 18
	DefaultGamma      = 0.6
)

// DefaultRenderParams returns 10x18 cells, gamma 0.6 and a black background.
func DefaultRenderParams() RenderParams {
	return RenderParams{
		CellWidth:  DefaultCellWidth,
		CellHeight: DefaultCellHeight,
		Gamma:      DefaultGamma,
		Background: color.RGBA{A: 0xFF},
	}
}

// Validate reports whether the parameters can be rendered with.
func (p RenderParams) Validate() error {
	if p.CellWidth <= 0 || p.CellHeight <= 0 {
		return errorf(ErrInvalidParams, "cell size %dx%d", p.CellWidth, p.CellHeight)
	}
	if !(p.Gamma > 0) {
		return errorf(ErrInvalidParams, "gamma %v", p.Gamma)
	}
	return nil
}

// ParseHexColor parses "#rrggbb" or "rrggbb". Anything else yields opaque
// black.
func ParseHexColor(s string) color.RGBA {
	hex := strings.TrimPrefix(s, "#")
	black := color.RGBA{A: 0xFF}
	if len(hex) != 6 {
		return black
	}
	var rgb [3]uint8
	for i := range rgb {
		hi, ok1 := hexNibble(hex[2*i])
		lo, ok2 := hexNibble(hex[2*i+1])
		if !ok1 || !ok2 {
			return black
		}
		rgb[i] = hi<<4 | lo
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF}
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
