package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/ironsheep/vision-demo-mcp/internal/cverr"
	"github.com/ironsheep/vision-demo-mcp/internal/session"
	"github.com/ironsheep/vision-demo-mcp/internal/vision"
)

// csvHeader is the first row of every CSV export.
var csvHeader = []string{"Type", "Class", "Confidence", "Details"}

// Document is the JSON export shape.
type Document struct {
	Image           string                        `json:"image,omitempty"`
	Detections      []vision.DetectionResult      `json:"detections"`
	Classifications []vision.ClassificationResult `json:"classifications"`
	Analysis        any                           `json:"analysis"`
	Timestamp       string                        `json:"timestamp"`
}

// NewDocument builds the export document for snap at time at. Result lists
// are never null, and a missing analysis is exported as an empty object.
func NewDocument(snap session.Snapshot, at time.Time) Document {
	doc := Document{
		Image:           snap.ImageName(),
		Detections:      snap.Detections,
		Classifications: snap.Classifications,
		Analysis:        map[string]any{},
		Timestamp:       at.UTC().Format(vision.TimestampLayout),
	}
	if doc.Detections == nil {
		doc.Detections = []vision.DetectionResult{}
	}
	if doc.Classifications == nil {
		doc.Classifications = []vision.ClassificationResult{}
	}
	if snap.Analysis != nil {
		doc.Analysis = snap.Analysis
	}
	return doc
}

// ToJSON serialises snap as indented JSON.
func ToJSON(snap session.Snapshot, at time.Time) (string, error) {
	out, err := sonic.ConfigStd.MarshalIndent(NewDocument(snap, at), "", "  ")
	if err != nil {
		return "", cverr.Wrap(cverr.KindExport, "export json", "failed to encode results", err)
	}
	return string(out), nil
}

// ToCSV serialises snap as a flat table. Detection rows carry the bounding
// box in Details; classification rows leave it empty.
func ToCSV(snap session.Snapshot) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := make([][]string, 0, 1+len(snap.Detections)+len(snap.Classifications))
	rows = append(rows, csvHeader)
	for _, d := range snap.Detections {
		rows = append(rows, []string{"Detection", d.Class, formatConfidence(d.Confidence), joinBox(d.BBox)})
	}
	for _, c := range snap.Classifications {
		rows = append(rows, []string{"Classification", c.Class, formatConfidence(c.Confidence), ""})
	}

	if err := w.WriteAll(rows); err != nil {
		return "", cverr.Wrap(cverr.KindExport, "export csv", "failed to write results", err)
	}
	return buf.String(), nil
}

// formatConfidence uses the shortest decimal form, e.g. 0.87.
func formatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

func joinBox(b vision.BoundingBox) string {
	v := b.Values()
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// percent formats a confidence as "NN.N%".
func percent(c float64) string {
	return fmt.Sprintf("%.1f%%", c*100)
}
