package imgcore

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
)

// Render draws img as character art. The image is divided into
// CellWidth×CellHeight cells; each cell becomes one glyph from ramp, chosen
// by the cell's gamma-corrected luminance and painted in the cell's average
// color over the background. The canvas is one cell row taller than the grid
// so descenders on the last row are not clipped.
//
// Render is deterministic. An empty ramp renders every cell as a space.
func Render(img image.Image, ramp Ramp, p RenderParams) (*image.RGBA, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	cols := max(1, b.Dx()/p.CellWidth)
	rows := max(1, b.Dy()/p.CellHeight)

	face, err := newGlyphFace(glyphFont, float64(p.CellHeight)*glyphScale)
	if err != nil {
		return nil, err
	}
	defer face.Close()
	ascent := face.Metrics().Ascent

	bg := color.RGBA{R: p.Background.R, G: p.Background.G, B: p.Background.B, A: 0xFF}
	out := image.NewRGBA(image.Rect(0, 0, cols*p.CellWidth, rows*p.CellHeight+p.CellHeight))
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	glyphs := ramp.Runes()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			fg := AverageCell(img, x, y, p.CellWidth, p.CellHeight)
			ch := BrightnessToRune(PerceptualLuminance(fg, p.Gamma), glyphs)

			dot := fixed.Point26_6{
				X: fixed.I(x * p.CellWidth),
				Y: fixed.I(y*p.CellHeight) + ascent,
			}
			dr, mask, maskp, _, ok := face.Glyph(dot, ch)
			if !ok {
				continue
			}
			clip := dr.Intersect(out.Rect)
			for py := clip.Min.Y; py < clip.Max.Y; py++ {
				for px := clip.Min.X; px < clip.Max.X; px++ {
					_, _, _, a := mask.At(maskp.X+px-dr.Min.X, maskp.Y+py-dr.Min.Y).RGBA()
					out.SetRGBA(px, py, Blend(fg, bg, float64(a)/0xFFFF))
				}
			}
		}
	}
	return out, nil
}

// AverageCell returns the mean color of the source pixels in grid cell
// (cx, cy), clipped to the image bounds. Each channel is truncated. A cell
// entirely outside the image is black.
func AverageCell(img image.Image, cx, cy, cw, ch int) color.RGBA {
	b := img.Bounds()
	cell := image.Rect(cx*cw, cy*ch, (cx+1)*cw, (cy+1)*ch).Add(b.Min).Intersect(b)
	if cell.Empty() {
		return color.RGBA{A: 0xFF}
	}

	var r, g, bl uint64
	if src, ok := img.(*image.NRGBA); ok {
		for y := cell.Min.Y; y < cell.Max.Y; y++ {
			i := src.PixOffset(cell.Min.X, y)
			for x := cell.Min.X; x < cell.Max.X; x++ {
				r += uint64(src.Pix[i])
				g += uint64(src.Pix[i+1])
				bl += uint64(src.Pix[i+2])
				i += 4
			}
		}
	} else {
		for y := cell.Min.Y; y < cell.Max.Y; y++ {
			for x := cell.Min.X; x < cell.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				r += uint64(c.R)
				g += uint64(c.G)
				bl += uint64(c.B)
			}
		}
	}

	n := uint64(cell.Dx() * cell.Dy())
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(bl / n), A: 0xFF}
}

// Luminance is the Rec. 709 weighted brightness of c, from 0 to 255.
func Luminance(c color.RGBA) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

// PerceptualLuminance applies gamma to the normalised luminance of c and
// scales the result back to 0–255.
func PerceptualLuminance(c color.RGBA, gamma float64) float64 {
	return math.Pow(Luminance(c)/255, gamma) * 255
}

// BrightnessToRune maps luma 0 to the first glyph and luma 255 to the last,
// rounding to the nearest index. An empty ramp yields a space.
func BrightnessToRune(luma float64, glyphs []rune) rune {
	n := len(glyphs)
	if n == 0 {
		return ' '
	}
	idx := math.Round(luma / 255 * float64(n-1))
	if idx < 0 || math.IsNaN(idx) {
		idx = 0
	}
	if idx > float64(n-1) {
		idx = float64(n - 1)
	}
	return glyphs[int(idx)]
}

// Blend mixes fg over bg with coverage alpha, clamped to [0, 1]. Channels
// are truncated.
func Blend(fg, bg color.RGBA, alpha float64) color.RGBA {
	alpha = math.Max(0, math.Min(1, alpha))
	mix := func(f, b uint8) uint8 {
		v := float64(f)*alpha + float64(b)*(1-alpha)
		return uint8(math.Max(0, math.Min(255, v)))
	}
	return color.RGBA{R: mix(fg.R, bg.R), G: mix(fg.G, bg.G), B: mix(fg.B, bg.B), A: 0xFF}
}
