package render

import (
	"math"
	"testing"

	"github.com/ironsheep/vision-demo-mcp/internal/vision"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestScaleBox(t *testing.T) {
	r := ScaleBox(vision.BoundingBox{X1: 100, Y1: 50, X2: 200, Y2: 300}, DetectionCanvas)

	if !approx(r.X, 75) || !approx(r.Y, 100.0/3) {
		t.Errorf("origin: got (%v,%v), want (75,33.333)", r.X, r.Y)
	}
	if !approx(r.W, 75) || !approx(r.H, 500.0/3) {
		t.Errorf("size: got (%v,%v), want (75,166.667)", r.W, r.H)
	}
}

func TestScaleBox_Identity(t *testing.T) {
	b := vision.BoundingBox{X1: 300, Y1: 200, X2: 500, Y2: 350}
	r := ScaleBox(b, Size{Width: vision.SourceWidth, Height: vision.SourceHeight})

	if r != (Rect{X: 300, Y: 200, W: 200, H: 150}) {
		t.Errorf("got %+v", r)
	}
}

func TestDetectionLabel(t *testing.T) {
	tests := []struct {
		class      string
		confidence float64
		want       string
	}{
		{"person", 0.95, "person 95%"},
		{"car", 0.87, "car 87%"},
		{"kite", 0.555, "kite 56%"},
		{"zero", 0, "zero 0%"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := DetectionLabel(vision.DetectionResult{Class: tt.class, Confidence: tt.confidence})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectionOverlay(t *testing.T) {
	results := vision.NewGenerator(nil).Detections(0, "yolo")
	cmds := DetectionOverlay(DetectionCanvas, results)

	if len(cmds) != 3+3*len(results) {
		t.Fatalf("command count: got %d, want %d", len(cmds), 3+3*len(results))
	}
	if cmds[0].Kind != KindClear {
		t.Errorf("first command: got %s, want clear", cmds[0].Kind)
	}
	if cmds[1].Kind != KindFillRect || cmds[1].W != 600 || cmds[1].H != 400 || cmds[1].Color != PlaceholderColor {
		t.Errorf("background: got %+v", cmds[1])
	}
	if cmds[2].Text != "Detection Visualization" || cmds[2].Align != AlignCenter {
		t.Errorf("caption: got %+v", cmds[2])
	}

	strokes := Filter(cmds, KindStrokeRect)
	if len(strokes) != len(results) {
		t.Fatalf("stroke count: got %d, want %d", len(strokes), len(results))
	}

	// person box
	box, tag, label := cmds[3], cmds[4], cmds[5]
	if box.Kind != KindStrokeRect || box.Color != "#ff6b6b" || box.LineWidth != 3 {
		t.Errorf("box: got %+v", box)
	}
	if !approx(box.X, 75) || !approx(box.Y, 100.0/3) || !approx(box.W, 75) || !approx(box.H, 500.0/3) {
		t.Errorf("box geometry: got %+v", box.Rect())
	}
	if tag.Kind != KindFillRect || !approx(tag.Y, box.Y-25) || tag.H != 25 || !approx(tag.W, box.W) || tag.Color != box.Color {
		t.Errorf("tag: got %+v", tag)
	}
	if label.Text != "person 95%" || !approx(label.X, box.X+5) || !approx(label.Y, box.Y-8) || label.Color != LabelTextColor {
		t.Errorf("label: got %+v", label)
	}
}

func TestDetectionOverlay_Empty(t *testing.T) {
	cmds := DetectionOverlay(DetectionCanvas, nil)
	if len(cmds) != 3 {
		t.Errorf("command count: got %d, want 3", len(cmds))
	}
}

func TestClassColor(t *testing.T) {
	tests := map[string]string{
		"person":  "#ff6b6b",
		"car":     "#4ecdc4",
		"dog":     "#45b7d1",
		"bicycle": "#96ceb4",
		"tree":    "#feca57",
		"unicorn": "#666",
		"":        "#666",
	}
	for class, want := range tests {
		if got := ClassColor(class); got != want {
			t.Errorf("ClassColor(%q): got %s, want %s", class, got, want)
		}
	}
}
