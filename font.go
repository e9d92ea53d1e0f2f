package imgcore

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// glyphFont is the bundled monospace font. It is parsed during package
// initialisation so a corrupt build fails at start-up, not at first render.
var glyphFont = mustParseFont(gomonobold.TTF)

// glyphScale is the glyph pixel height as a multiple of the cell height.
const glyphScale = 1.15

func mustParseFont(ttf []byte) *opentype.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("imgcore: bundled font: %v", err))
	}
	return f
}

// newGlyphFace returns a face whose ascent plus descent spans pixelHeight
// pixels. Faces hold rasterizer state and must not be shared between
// goroutines.
func newGlyphFace(f *opentype.Font, pixelHeight float64) (font.Face, error) {
	const refPPEM = 1000

	var buf sfnt.Buffer
	m, err := f.Metrics(&buf, fixed.I(refPPEM), font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("font metrics: %w", err)
	}
	extent := float64(m.Ascent+m.Descent) / 64 / refPPEM
	if extent <= 0 {
		return nil, fmt.Errorf("font metrics: non-positive extent %v", extent)
	}

	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    pixelHeight / extent,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
