package vision

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// Palette is the mock dominant-colour palette shown by the analysis panel.
var Palette = []string{"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4", "#feca57", "#6c5ce7"}

// ColorStats summarises the mock colour analysis.
type ColorStats struct {
	DominantColors int    `json:"dominant_colors"`
	Harmony        string `json:"harmony"`
	Brightness     string `json:"brightness"`
	Saturation     string `json:"saturation"`
}

// FeatureStats summarises the mock feature analysis.
type FeatureStats struct {
	Edges             int     `json:"edges"`
	Corners           int     `json:"corners"`
	TextureComplexity string  `json:"texture_complexity"`
	SymmetryScore     float64 `json:"symmetry_score"`
}

// Metric is one label/value cell of the image metrics grid.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Analysis is the "advanced analysis" panel for an image. Apart from the
// file size every value is a display constant.
type Analysis struct {
	Palette      []string     `json:"palette"`
	ColorStats   ColorStats   `json:"color_stats"`
	FeatureStats FeatureStats `json:"feature_stats"`
	Metrics      []Metric     `json:"metrics"`
}

// NewAnalysis builds the analysis panel for img.
func NewAnalysis(img ImageRef) Analysis {
	palette := make([]string, len(Palette))
	copy(palette, Palette)

	return Analysis{
		Palette: palette,
		ColorStats: ColorStats{
			DominantColors: len(palette),
			Harmony:        "Complementary",
			Brightness:     "Medium (65%)",
			Saturation:     "High (78%)",
		},
		FeatureStats: FeatureStats{
			Edges:             1247,
			Corners:           89,
			TextureComplexity: "High",
			SymmetryScore:     0.73,
		},
		Metrics: []Metric{
			{Label: "Resolution", Value: "1920x1080"},
			{Label: "Aspect Ratio", Value: "16:9"},
			{Label: "File Size", Value: FormatFileSize(img.Size)},
			{Label: "Compression", Value: "85%"},
			{Label: "Quality Score", Value: "8.7/10"},
			{Label: "Noise Level", Value: "Low"},
		},
	}
}

// Performance is the static "AI performance" block of the results summary.
type Performance struct {
	DetectionAccuracy        string `json:"detection_accuracy"`
	ClassificationConfidence string `json:"classification_confidence"`
	ProcessingSpeed          string `json:"processing_speed"`
	MemoryUsage              string `json:"memory_usage"`
	GPUUtilization           string `json:"gpu_utilization"`
}

// StaticPerformance is shown regardless of what was run.
var StaticPerformance = Performance{
	DetectionAccuracy:        "94.2%",
	ClassificationConfidence: "89.1%",
	ProcessingSpeed:          "15.7 FPS",
	MemoryUsage:              "2.1 GB",
	GPUUtilization:           "78%",
}

// Summary is the results summary panel.
type Summary struct {
	Image           string      `json:"image"`
	ObjectsDetected int         `json:"objects_detected"`
	Classifications int         `json:"classifications"`
	ProcessingTime  string      `json:"processing_time"`
	ModelsUsed      string      `json:"models_used"`
	Performance     Performance `json:"performance"`
}

// NewSummary builds the summary panel. image may be nil.
func NewSummary(image *ImageRef, detections, classifications int, detectionModel, classificationModel string) Summary {
	name := "No image loaded"
	if image != nil {
		name = image.FileName
	}
	return Summary{
		Image:           name,
		ObjectsDetected: detections,
		Classifications: classifications,
		ProcessingTime:  "2.3 seconds",
		ModelsUsed:      strings.ToUpper(detectionModel) + ", " + strings.ToUpper(classificationModel),
		Performance:     StaticPerformance,
	}
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with a 1024 base and at most two
// decimals, e.g. "0 Bytes", "512 Bytes", "1.5 KB", "2 MB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	const k = 1024.0
	v := float64(bytes)
	i := 0
	for v >= k && i < len(sizeUnits)-1 {
		v /= k
		i++
	}
	return humanize.FtoaWithDigits(v, 2) + " " + sizeUnits[i]
}
