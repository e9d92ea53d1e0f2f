package imgcore

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	// Decoders available to Decode and DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes an encoded image held in data.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return img, nil
}

// decodeDetails reads dimensions and bits per channel without decoding the
// pixels. ok is false when no registered codec accepts the data.
func decodeDetails(data []byte) (width, height int, depth *int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, nil, false
	}
	return cfg.Width, cfg.Height, colorDepth(cfg.ColorModel), true
}

func colorDepth(m color.Model) *int {
	bits := 0
	if _, ok := m.(color.Palette); ok {
		// Paletted images expand to 8-bit channels.
		bits = 8
	} else {
		switch m {
		case color.GrayModel, color.AlphaModel, color.RGBAModel, color.NRGBAModel,
			color.YCbCrModel, color.NYCbCrAModel, color.CMYKModel:
			bits = 8
		case color.Gray16Model, color.Alpha16Model, color.RGBA64Model, color.NRGBA64Model:
			bits = 16
		}
	}
	if bits == 0 {
		return nil
	}
	return &bits
}
