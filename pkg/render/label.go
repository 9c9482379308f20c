package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	labelPad   = 4
	labelGlyph = 7
	labelLine  = 13
)

// Label renders a one-line text box with white glyphs on a translucent
// black background.
func Label(text string) *image.RGBA {
	if text == "" {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, len(text)*labelGlyph+2*labelPad, labelLine+2*labelPad))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{A: 180}}, image.Point{}, draw.Src)
	(&font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(labelPad, labelPad+basicfont.Face7x13.Ascent),
	}).DrawString(text)
	return img
}
