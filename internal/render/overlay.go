package render

import (
	"fmt"
	"math"

	"github.com/ironsheep/vision-demo-mcp/internal/vision"
)

// Detection overlay layout, in canvas pixels.
const (
	boxLineWidth    = 3.0
	tagHeight       = 25.0
	tagTextInsetX   = 5.0
	tagTextBaseline = 8.0
	tagFontSize     = 14
	captionFontSize = 16
	captionText     = "Detection Visualization"
)

// ScaleBox maps a source-image box onto a canvas of the given size. Origin
// and extent are scaled independently on each axis.
func ScaleBox(b vision.BoundingBox, size Size) Rect {
	scaleX := float64(size.Width) / vision.SourceWidth
	scaleY := float64(size.Height) / vision.SourceHeight
	return Rect{
		X: float64(b.X1) * scaleX,
		Y: float64(b.Y1) * scaleY,
		W: float64(b.Width()) * scaleX,
		H: float64(b.Height()) * scaleY,
	}
}

// DetectionLabel is the tag text of a detection, e.g. "car 87%".
func DetectionLabel(d vision.DetectionResult) string {
	return fmt.Sprintf("%s %d%%", d.Class, int(math.Round(d.Confidence*100)))
}

// DetectionOverlay builds the detection view: a placeholder background with
// a caption, then per result a stroked box in the class colour and a filled
// tag with the label directly above it.
func DetectionOverlay(size Size, results []vision.DetectionResult) []Command {
	w, h := float64(size.Width), float64(size.Height)

	cmds := make([]Command, 0, 3+3*len(results))
	cmds = append(cmds,
		clearCmd(),
		fillRect(Rect{W: w, H: h}, PlaceholderColor),
		text(captionText, w/2, h/2, CaptionColor, captionFontSize, AlignCenter),
	)

	for _, d := range results {
		box := ScaleBox(d.BBox, size)
		c := ClassColor(d.Class)

		cmds = append(cmds,
			strokeRect(box, c, boxLineWidth),
			fillRect(Rect{X: box.X, Y: box.Y - tagHeight, W: box.W, H: tagHeight}, c),
			text(DetectionLabel(d), box.X+tagTextInsetX, box.Y-tagTextBaseline, LabelTextColor, tagFontSize, AlignLeft),
		)
	}
	return cmds
}
