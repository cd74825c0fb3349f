package render

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var textFace = basicfont.Face7x13

// nativeFontSize is the pixel height of textFace.
const nativeFontSize = 13

// rasterText draws s in col onto a tight transparent image and returns it
// with the baseline's distance from the top.
func rasterText(s string, col color.NRGBA) (*image.NRGBA, int) {
	metrics := textFace.Metrics()
	ascent := metrics.Ascent.Ceil()
	height := ascent + metrics.Descent.Ceil()
	width := font.MeasureString(textFace, s).Ceil()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: textFace,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(s)
	return img, ascent
}

// text composites a text command. (cmd.X, cmd.Y) is the baseline anchor;
// Align selects whether it marks the left edge, centre or right edge of the
// string. Rotation turns the rendered string about its centre, keeping the
// anchor where it would be on the rotated string.
func (c *Canvas) text(cmd Command, col color.NRGBA) {
	if cmd.Text == "" {
		return
	}

	glyphs, ascent := rasterText(cmd.Text, col)
	if glyphs.Bounds().Empty() {
		return
	}

	scale := 1.0
	if cmd.FontSize > 0 && cmd.FontSize != nativeFontSize {
		scale = float64(cmd.FontSize) / nativeFontSize
		w := int(math.Round(float64(glyphs.Bounds().Dx()) * scale))
		h := int(math.Round(float64(glyphs.Bounds().Dy()) * scale))
		if w <= 0 || h <= 0 {
			return
		}
		glyphs = imaging.Resize(glyphs, w, h, imaging.NearestNeighbor)
	}

	w := float64(glyphs.Bounds().Dx())
	h := float64(glyphs.Bounds().Dy())

	var ax float64
	switch cmd.Align {
	case AlignCenter:
		ax = w / 2
	case AlignRight:
		ax = w
	}
	ay := float64(ascent) * scale

	if cmd.Rotation == 0 {
		pos := image.Pt(int(math.Round(cmd.X-ax)), int(math.Round(cmd.Y-ay)))
		c.img = imaging.Overlay(c.img, glyphs, pos, 1.0)
		return
	}

	rotated := transform.Rotate(glyphs, cmd.Rotation*180/math.Pi, &transform.RotationOptions{ResizeBounds: true})

	// Offset of the anchor from the glyph centre, turned with the string.
	ox, oy := ax-w/2, ay-h/2
	sin, cos := math.Sincos(cmd.Rotation)
	rx := ox*cos - oy*sin
	ry := ox*sin + oy*cos

	rb := rotated.Bounds()
	pos := image.Pt(
		int(math.Round(cmd.X-rx-float64(rb.Dx())/2)),
		int(math.Round(cmd.Y-ry-float64(rb.Dy())/2)),
	)
	c.img = imaging.Overlay(c.img, rotated, pos, 1.0)
}
