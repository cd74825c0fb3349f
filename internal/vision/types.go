package vision

import (
	"encoding/json"
	"fmt"
)

// SourceWidth and SourceHeight are the assumed resolution of every uploaded
// image. Bounding boxes are expressed in this space.
const (
	SourceWidth  = 800
	SourceHeight = 600
)

// BoundingBox is an axis-aligned rectangle in source-image pixel space.
//
// It serialises as the four element array [x1, y1, x2, y2].
type BoundingBox struct {
	X1 int // Left edge
	Y1 int // Top edge
	X2 int // Right edge
	Y2 int // Bottom edge
}

// Width is X2 - X1.
func (b BoundingBox) Width() int { return b.X2 - b.X1 }

// Height is Y2 - Y1.
func (b BoundingBox) Height() int { return b.Y2 - b.Y1 }

// Values returns the box as [x1, y1, x2, y2].
func (b BoundingBox) Values() [4]int {
	return [4]int{b.X1, b.Y1, b.X2, b.Y2}
}

func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Values())
}

func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != 4 {
		return fmt.Errorf("bounding box needs 4 values, got %d", len(v))
	}
	*b = BoundingBox{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
	return nil
}

// DetectionResult is one mock object detection.
type DetectionResult struct {
	// Class is the detected object label, e.g. "person".
	Class string `json:"class"`

	// Confidence is the mock certainty (0.0 to 1.0). It is always at least
	// the threshold the result was generated with.
	Confidence float64 `json:"confidence"`

	// BBox locates the object in source-image pixel space.
	BBox BoundingBox `json:"bbox"`

	// Model is the detection model id the run was requested with.
	Model string `json:"model"`

	// Timestamp is when the result was generated (RFC 3339, UTC).
	Timestamp string `json:"timestamp"`
}

// ClassificationResult is one mock whole-image label. Results are ordered by
// descending confidence, so the rank of a result is its index + 1.
type ClassificationResult struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model"`
	Timestamp  string  `json:"timestamp"`
}

// ImageRef describes the active uploaded image.
type ImageRef struct {
	// ID uniquely names this upload.
	ID string `json:"id"`

	// FileName is the name the image was uploaded under.
	FileName string `json:"file_name"`

	// Size is the payload size in bytes.
	Size int64 `json:"size"`

	// MimeType is the validated image MIME type, e.g. "image/png".
	MimeType string `json:"mime_type"`

	// DataURI is the raw content as a base64 data URI. It is omitted from
	// JSON so exports do not embed the image.
	DataURI string `json:"-"`
}
