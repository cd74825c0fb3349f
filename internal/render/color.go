package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Fixed colours of the workbench views.
const (
	PlaceholderColor = "#f0f0f0"
	CaptionColor     = "#666"
	NeutralColor     = "#666"
	LabelTextColor   = "#ffffff"
	AxisColor        = "#333"
	FeatureColor     = "#ff6b6b"
)

var classColors = map[string]string{
	"person":  "#ff6b6b",
	"car":     "#4ecdc4",
	"dog":     "#45b7d1",
	"bicycle": "#96ceb4",
	"tree":    "#feca57",
}

// ClassColor returns the fixed overlay colour of a detection class, or a
// neutral gray for classes outside the table.
func ClassColor(class string) string {
	if c, ok := classColors[class]; ok {
		return c
	}
	return NeutralColor
}

// Bar colours use fixed saturation and lightness and step the hue by 60°,
// so six consecutive bars get distinct colours before the hue wraps.
const (
	barHueStep    = 60
	barSaturation = 0.7
	barLightness  = 0.5
)

// BarColor returns the hex colour of the index-th chart bar:
// hsl(index*60 mod 360, 70%, 50%).
func BarColor(index int) string {
	hue := (index * barHueStep) % 360
	if hue < 0 {
		hue += 360
	}
	return colorful.Hsl(float64(hue), barSaturation, barLightness).Hex()
}

// parseColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (the leading '#' is
// optional).
func parseColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	hex = strings.TrimPrefix(hex, "#")

	switch len(hex) {
	case 3, 6:
		c, err := colorful.Hex("#" + hex)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		return color.NRGBA{
			R: uint8(val >> 24),
			G: uint8(val >> 16),
			B: uint8(val >> 8),
			A: uint8(val),
		}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length %q", hex)
	}
}
