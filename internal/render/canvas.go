package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// Surface receives draw commands.
type Surface interface {
	Size() Size
	Apply(cmds []Command) error
}

// Canvas is a raster Surface backed by an NRGBA image.
//
// Canvas is not safe for concurrent use.
type Canvas struct {
	size Size
	img  *image.NRGBA
}

// NewCanvas allocates a transparent canvas.
func NewCanvas(size Size) *Canvas {
	return &Canvas{
		size: size,
		img:  imaging.New(size.Width, size.Height, color.Transparent),
	}
}

// Render allocates a canvas of the given size and applies cmds to it.
func Render(size Size, cmds []Command) (*Canvas, error) {
	c := NewCanvas(size)
	if err := c.Apply(cmds); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Canvas) Size() Size { return c.size }

// Image returns the canvas pixels. The image is owned by the canvas and
// changes with later Apply calls.
func (c *Canvas) Image() *image.NRGBA { return c.img }

// Apply rasterises cmds in order. Drawing outside the canvas is clipped.
// An unknown command kind or an unparsable colour stops the run with an
// error; commands before it have already been drawn.
func (c *Canvas) Apply(cmds []Command) error {
	for i, cmd := range cmds {
		if err := c.apply(cmd); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, cmd.Kind, err)
		}
	}
	return nil
}

func (c *Canvas) apply(cmd Command) error {
	if cmd.Kind == KindClear {
		return c.clear(cmd.Color)
	}

	col, err := parseColor(cmd.Color)
	if err != nil {
		return err
	}

	switch cmd.Kind {
	case KindFillRect:
		c.fill(toRect(cmd.X, cmd.Y, cmd.X+cmd.W, cmd.Y+cmd.H), col)
	case KindStrokeRect:
		c.stroke(cmd.Rect(), cmd.LineWidth, col)
	case KindPolyline:
		c.polyline(cmd.Points, cmd.LineWidth, col)
	case KindFillCircle:
		c.circle(cmd.X, cmd.Y, cmd.Radius, col)
	case KindText:
		c.text(cmd, col)
	default:
		return fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
	return nil
}

// PNG encodes the canvas.
func (c *Canvas) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, c.img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode canvas: %w", err)
	}
	return buf.Bytes(), nil
}

// Base64PNG encodes the canvas as base64 PNG.
func (c *Canvas) Base64PNG() (string, error) {
	data, err := c.PNG()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (c *Canvas) clear(hex string) error {
	var src image.Image = image.Transparent
	if hex != "" {
		col, err := parseColor(hex)
		if err != nil {
			return err
		}
		src = image.NewUniform(col)
	}
	draw.Draw(c.img, c.img.Bounds(), src, image.Point{}, draw.Src)
	return nil
}

// toRect rounds float corners to the pixel grid.
func toRect(x0, y0, x1, y1 float64) image.Rectangle {
	return image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)),
	)
}

func (c *Canvas) fill(r image.Rectangle, col color.NRGBA) {
	r = r.Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// stroke draws the outline of r with the line centred on the edges.
func (c *Canvas) stroke(r Rect, width float64, col color.NRGBA) {
	if width <= 0 {
		width = 1
	}
	half := width / 2
	outer := toRect(r.X-half, r.Y-half, r.X+r.W+half, r.Y+r.H+half)
	inner := toRect(r.X+half, r.Y+half, r.X+r.W-half, r.Y+r.H-half)

	if inner.Dx() <= 0 || inner.Dy() <= 0 {
		c.fill(outer, col)
		return
	}

	c.fill(image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y), col) // top
	c.fill(image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y), col) // bottom
	c.fill(image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y), col) // left
	c.fill(image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y), col) // right
}

// polyline stamps a width×width square along each segment.
func (c *Canvas) polyline(pts []Point, width float64, col color.NRGBA) {
	if width <= 0 {
		width = 1
	}
	half := width / 2
	bounds := c.img.Bounds()
	src := image.NewUniform(col)

	stamp := func(x, y float64) {
		r := toRect(x-half, y-half, x+half, y+half).Intersect(bounds)
		if !r.Empty() {
			draw.Draw(c.img, r, src, image.Point{}, draw.Src)
		}
	}

	if len(pts) == 1 {
		stamp(pts[0].X, pts[0].Y)
		return
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
		if steps == 0 {
			stamp(a.X, a.Y)
			continue
		}
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			stamp(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
		}
	}
}

// circleMask is an alpha mask that is opaque inside a circle.
type circleMask struct {
	cx, cy, r float64
}

func (m *circleMask) ColorModel() color.Model { return color.AlphaModel }

func (m *circleMask) Bounds() image.Rectangle {
	return toRect(m.cx-m.r, m.cy-m.r, m.cx+m.r, m.cy+m.r).Inset(-1)
}

func (m *circleMask) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - m.cx
	dy := float64(y) + 0.5 - m.cy
	if dx*dx+dy*dy <= m.r*m.r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

func (c *Canvas) circle(cx, cy, radius float64, col color.NRGBA) {
	if radius <= 0 {
		return
	}
	mask := &circleMask{cx: cx, cy: cy, r: radius}
	r := mask.Bounds().Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.DrawMask(c.img, r, image.NewUniform(col), image.Point{}, mask, r.Min, draw.Over)
}
