package vision

import "time"

// TimestampLayout formats result timestamps (ISO-8601 with milliseconds).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Clock returns the current time. Generators use it to stamp results.
type Clock func() time.Time

type catalogEntry struct {
	class      string
	confidence float64
	bbox       BoundingBox
}

var detectionCatalog = []catalogEntry{
	{"person", 0.95, BoundingBox{100, 50, 200, 300}},
	{"car", 0.87, BoundingBox{300, 200, 500, 350}},
	{"dog", 0.78, BoundingBox{150, 250, 250, 350}},
	{"bicycle", 0.65, BoundingBox{50, 100, 150, 250}},
	{"tree", 0.72, BoundingBox{400, 50, 600, 300}},
}

var classificationCatalog = []catalogEntry{
	{class: "Golden Retriever", confidence: 0.89},
	{class: "Labrador", confidence: 0.76},
	{class: "German Shepherd", confidence: 0.65},
	{class: "Beagle", confidence: 0.43},
	{class: "Bulldog", confidence: 0.32},
}

// Generator produces mock results stamped with its clock.
type Generator struct {
	now Clock
}

// NewGenerator returns a generator using clock, or time.Now when clock is nil.
func NewGenerator(clock Clock) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{now: clock}
}

func (g *Generator) stamp() string {
	return g.now().UTC().Format(TimestampLayout)
}

// Detections returns the catalog entries with confidence >= threshold, in
// catalog order, stamped with model. A threshold above every entry yields an
// empty, non-nil slice.
func (g *Generator) Detections(threshold float64, model string) []DetectionResult {
	ts := g.stamp()
	results := make([]DetectionResult, 0, len(detectionCatalog))
	for _, e := range detectionCatalog {
		if e.confidence < threshold {
			continue
		}
		results = append(results, DetectionResult{
			Class:      e.class,
			Confidence: e.confidence,
			BBox:       e.bbox,
			Model:      model,
			Timestamp:  ts,
		})
	}
	return results
}

// Classifications returns the fixed breed catalog in descending confidence
// order, stamped with model.
func (g *Generator) Classifications(model string) []ClassificationResult {
	ts := g.stamp()
	results := make([]ClassificationResult, 0, len(classificationCatalog))
	for _, e := range classificationCatalog {
		results = append(results, ClassificationResult{
			Class:      e.class,
			Confidence: e.confidence,
			Model:      model,
			Timestamp:  ts,
		})
	}
	return results
}

// GenerateDetections is Detections on a generator using the wall clock.
func GenerateDetections(threshold float64, model string) []DetectionResult {
	return NewGenerator(nil).Detections(threshold, model)
}

// GenerateClassifications is Classifications on a generator using the wall
// clock.
func GenerateClassifications(model string) []ClassificationResult {
	return NewGenerator(nil).Classifications(model)
}
