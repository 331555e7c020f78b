package renderer

import (
	"image"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// overlayScale is the integer magnification of the bitmap font.
	overlayScale = 2
	// overlayPadding is the blank border around rasterized text, in font pixels.
	overlayPadding = 4
)

// RasterizeText draws text with the fixed 7x13 bitmap font into an RGBA image whose alpha holds
// the glyph coverage. Lines are split on newlines and centered horizontally.
//
// Parameters:
//   - text: the message to draw
//
// Returns:
//   - *image.RGBA: the rasterized text, never smaller than 1x1
func RasterizeText(text string) *image.RGBA {
	face := basicfont.Face7x13
	lines := strings.Split(text, "\n")
	lineHeight := face.Metrics().Height.Ceil()

	width := 0
	for _, line := range lines {
		width = max(width, font.MeasureString(face, line).Ceil())
	}
	w := width + 2*overlayPadding
	h := len(lines)*lineHeight + 2*overlayPadding

	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
	}
	for i, line := range lines {
		lw := font.MeasureString(face, line).Ceil()
		d.Dot = fixed.P(overlayPadding+(width-lw)/2, overlayPadding+i*lineHeight+face.Metrics().Ascent.Ceil())
		d.DrawString(line)
	}
	return scaleNearest(img, overlayScale)
}

// scaleNearest magnifies an image by an integer factor without filtering.
func scaleNearest(src *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := src.RGBAAt(b.Min.X+x, b.Min.Y+y)
			draw.Draw(dst, image.Rect(x*factor, y*factor, (x+1)*factor, (y+1)*factor), &image.Uniform{C: c}, image.Point{}, draw.Src)
		}
	}
	return dst
}

// OverlayRect returns the clip-space center and half extents that draw a texture of the given
// pixel size centered and unscaled on a surface. Text wider than the surface is shrunk to fit.
//
// Parameters:
//   - textW, textH: the texture size in pixels
//   - surfaceW, surfaceH: the surface size in pixels
//
// Returns:
//   - [4]float32: center x, center y, half width, half height in clip space
func OverlayRect(textW, textH, surfaceW, surfaceH uint32) [4]float32 {
	if surfaceW == 0 || surfaceH == 0 {
		return [4]float32{}
	}
	hw := float32(textW) / float32(surfaceW)
	hh := float32(textH) / float32(surfaceH)
	if hw > 0.95 {
		hh *= 0.95 / hw
		hw = 0.95
	}
	return [4]float32{0, 0, hw, hh}
}
