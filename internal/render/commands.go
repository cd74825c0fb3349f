package render

// Size is a canvas size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Fixed canvas sizes of the workbench views.
var (
	DetectionCanvas = Size{Width: 600, Height: 400}
	ChartCanvas     = Size{Width: 400, Height: 300}
	FeatureCanvas   = Size{Width: 200, Height: 150}
)

// Kind identifies a draw command.
type Kind string

const (
	KindClear      Kind = "clear"
	KindFillRect   Kind = "fill_rect"
	KindStrokeRect Kind = "stroke_rect"
	KindPolyline   Kind = "polyline"
	KindFillCircle Kind = "fill_circle"
	KindText       Kind = "text"
)

// Align is the horizontal anchor of a text command.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in canvas coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Command is one fully specified drawing instruction. Which fields matter
// depends on Kind:
//
//   - clear: Color (empty clears to transparent)
//   - fill_rect: X, Y, W, H, Color
//   - stroke_rect: X, Y, W, H, Color, LineWidth
//   - polyline: Points, Color, LineWidth
//   - fill_circle: X, Y (centre), Radius, Color
//   - text: X, Y (baseline anchor), Text, Color, FontSize, Align, Rotation
type Command struct {
	Kind      Kind    `json:"kind"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	W         float64 `json:"w,omitempty"`
	H         float64 `json:"h,omitempty"`
	Points    []Point `json:"points,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
	Color     string  `json:"color,omitempty"`
	LineWidth float64 `json:"line_width,omitempty"`
	Text      string  `json:"text,omitempty"`
	FontSize  int     `json:"font_size,omitempty"`
	Align     Align   `json:"align,omitempty"`

	// Rotation is in radians; positive values turn clockwise on screen.
	Rotation float64 `json:"rotation,omitempty"`
}

// Rect returns the rectangle of a rect command.
func (c Command) Rect() Rect {
	return Rect{X: c.X, Y: c.Y, W: c.W, H: c.H}
}

func clearCmd() Command {
	return Command{Kind: KindClear}
}

func fillRect(r Rect, color string) Command {
	return Command{Kind: KindFillRect, X: r.X, Y: r.Y, W: r.W, H: r.H, Color: color}
}

func strokeRect(r Rect, color string, width float64) Command {
	return Command{Kind: KindStrokeRect, X: r.X, Y: r.Y, W: r.W, H: r.H, Color: color, LineWidth: width}
}

func polyline(color string, width float64, pts ...Point) Command {
	return Command{Kind: KindPolyline, Points: pts, Color: color, LineWidth: width}
}

func fillCircle(x, y, radius float64, color string) Command {
	return Command{Kind: KindFillCircle, X: x, Y: y, Radius: radius, Color: color}
}

func text(s string, x, y float64, color string, size int, align Align) Command {
	return Command{Kind: KindText, X: x, Y: y, Text: s, Color: color, FontSize: size, Align: align}
}

// Filter returns the commands of the given kind, in order.
func Filter(cmds []Command, kind Kind) []Command {
	var out []Command
	for _, c := range cmds {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
