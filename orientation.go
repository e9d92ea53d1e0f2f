package imgcore

import (
	"image"
	"image/color"

	"imgcore/formats"
)

// Transform is the geometric correction implied by an EXIF orientation.
type Transform int

const (
	Identity       Transform = iota
	FlipHorizontal           // code 2
	Rotate180                // code 3
	FlipVertical             // code 4
	Transpose                // code 5: rotate 90° clockwise, then flip horizontally
	Rotate90                 // code 6: clockwise
	Transverse               // code 7: rotate 270° clockwise, then flip horizontally
	Rotate270                // code 8: clockwise
)

var transformNames = [...]string{
	Identity:       "identity",
	FlipHorizontal: "flip horizontal",
	Rotate180:      "rotate 180°",
	FlipVertical:   "flip vertical",
	Transpose:      "rotate 90° then flip horizontal",
	Rotate90:       "rotate 90°",
	Transverse:     "rotate 270° then flip horizontal",
	Rotate270:      "rotate 270°",
}

func (t Transform) String() string {
	if t < 0 || int(t) >= len(transformNames) {
		return "identity"
	}
	return transformNames[t]
}

// OrientationFromCode maps an EXIF orientation code to its transform. Codes
// outside 1-8 are treated as identity.
func OrientationFromCode(code int) Transform {
	if code < 1 || code > 8 {
		return Identity
	}
	return Transform(code - 1)
}

// ResolveOrientation reads the primary-image Orientation field. A nil
// directory or a missing field resolves to Identity.
func ResolveOrientation(x *formats.EXIF) Transform {
	if x == nil {
		return Identity
	}
	code, ok := x.Orientation()
	if !ok {
		return Identity
	}
	return OrientationFromCode(code)
}

// Orient applies the orientation recorded in the EXIF block of data (the
// encoded file img was decoded from). Images without EXIF are returned as
// they are.
func Orient(img image.Image, data []byte) image.Image {
	x, err := formats.ReadEXIF(data)
	if err != nil {
		return img
	}
	t := ResolveOrientation(x)
	if t == Identity {
		return img
	}
	return t.Apply(img)
}

// Apply returns a new image with the transform applied. The result's
// bounds start at the origin.
func (t Transform) Apply(img image.Image) *image.NRGBA {
	src := toNRGBA(img)
	switch t {
	case FlipHorizontal:
		return flipH(src)
	case Rotate180:
		return rotate180(src)
	case FlipVertical:
		return flipV(src)
	case Transpose:
		return flipH(rotate90(src))
	case Rotate90:
		return rotate90(src)
	case Transverse:
		return flipH(rotate270(src))
	case Rotate270:
		return rotate270(src)
	default:
		return src
	}
}

// toNRGBA copies img into a fresh origin-based NRGBA.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}

// remap builds a w×h image whose pixel (x, y) is src at from(x, y).
func remap(src *image.NRGBA, w, h int, from func(x, y int) (int, int)) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := from(x, y)
			dst.SetNRGBA(x, y, src.NRGBAAt(sx, sy))
		}
	}
	return dst
}

func flipH(src *image.NRGBA) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	return remap(src, w, h, func(x, y int) (int, int) { return w - 1 - x, y })
}

func flipV(src *image.NRGBA) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	return remap(src, w, h, func(x, y int) (int, int) { return x, h - 1 - y })
}

func rotate180(src *image.NRGBA) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	return remap(src, w, h, func(x, y int) (int, int) { return w - 1 - x, h - 1 - y })
}

// rotate90 rotates clockwise; the result is h×w.
func rotate90(src *image.NRGBA) *image.NRGBA {
	h := src.Rect.Dy()
	return remap(src, h, src.Rect.Dx(), func(x, y int) (int, int) { return y, h - 1 - x })
}

// rotate270 rotates counter-clockwise; the result is h×w.
func rotate270(src *image.NRGBA) *image.NRGBA {
	w := src.Rect.Dx()
	return remap(src, src.Rect.Dy(), w, func(x, y int) (int, int) { return w - 1 - y, x })
}
