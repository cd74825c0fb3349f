package render

import (
	"fmt"
	"math"

	"github.com/ironsheep/vision-demo-mcp/internal/vision"
)

// Prediction chart layout, in canvas pixels.
const (
	chartMargin      = 40.0
	chartBarInset    = 10.0
	chartAxisWidth   = 2.0
	chartFontSize    = 12
	chartLabelOffset = 15.0
	chartValueOffset = 5.0
)

// chartLabelRotation turns bar labels 45° counter-clockwise.
const chartLabelRotation = -math.Pi / 4

// ChartArea returns the plotting rectangle inside the fixed margins.
func ChartArea(size Size) Rect {
	return Rect{
		X: chartMargin,
		Y: chartMargin,
		W: float64(size.Width) - 2*chartMargin,
		H: float64(size.Height) - 2*chartMargin,
	}
}

// BarRect returns the rectangle of bar index out of n for a result with the
// given confidence. Bars share the chart width evenly and grow up from the
// x axis; height is confidence × chart height.
func BarRect(size Size, index, n int, confidence float64) Rect {
	area := ChartArea(size)
	slot := area.W / float64(n)
	inset := math.Min(chartBarInset, slot/4)
	height := confidence * area.H
	return Rect{
		X: area.X + float64(index)*slot + inset,
		Y: area.Y + area.H - height,
		W: slot - 2*inset,
		H: height,
	}
}

// PredictionChart builds the classification bar chart: the two axes once,
// then per result a bar in the index's hue, its rotated class label below
// the axis and its rounded percentage above the bar.
func PredictionChart(size Size, results []vision.ClassificationResult) []Command {
	area := ChartArea(size)

	cmds := make([]Command, 0, 2+3*len(results))
	cmds = append(cmds,
		clearCmd(),
		polyline(AxisColor, chartAxisWidth,
			Point{X: area.X, Y: area.Y},
			Point{X: area.X, Y: area.Y + area.H},
			Point{X: area.X + area.W, Y: area.Y + area.H},
		),
	)

	n := len(results)
	for i, r := range results {
		bar := BarRect(size, i, n, r.Confidence)
		centerX := bar.X + bar.W/2

		label := text(r.Class, centerX, area.Y+area.H+chartLabelOffset, AxisColor, chartFontSize, AlignCenter)
		label.Rotation = chartLabelRotation

		cmds = append(cmds,
			fillRect(bar, BarColor(i)),
			label,
			text(fmt.Sprintf("%d%%", int(math.Round(r.Confidence*100))), centerX, bar.Y-chartValueOffset, AxisColor, chartFontSize, AlignCenter),
		)
	}
	return cmds
}
