package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/vision-demo-mcp/internal/config"
	"github.com/ironsheep/vision-demo-mcp/internal/cverr"
	"github.com/ironsheep/vision-demo-mcp/internal/session"
	"github.com/ironsheep/vision-demo-mcp/internal/vision"
)

var exportTime = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func carSnapshot() session.Snapshot {
	return session.Snapshot{
		Image: &vision.ImageRef{FileName: "street.jpg", Size: 2048, MimeType: "image/jpeg"},
		Detections: []vision.DetectionResult{
			{Class: "car", Confidence: 0.87, BBox: vision.BoundingBox{X1: 300, Y1: 200, X2: 500, Y2: 350}, Model: "yolo"},
		},
	}
}

func TestToCSV_SingleDetection(t *testing.T) {
	out, err := ToCSV(carSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "Type,Class,Confidence,Details\nDetection,car,0.87,\"300,200,500,350\"\n", out)
}

func TestToCSV_ClassificationRows(t *testing.T) {
	snap := session.Snapshot{
		Classifications: []vision.ClassificationResult{
			{Class: "Golden Retriever", Confidence: 0.89},
			{Class: "Labrador", Confidence: 0.76},
		},
	}
	out, err := ToCSV(snap)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Classification,Golden Retriever,0.89,", lines[1])
	assert.Equal(t, "Classification,Labrador,0.76,", lines[2])
}

func TestToCSV_Empty(t *testing.T) {
	out, err := ToCSV(session.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, "Type,Class,Confidence,Details\n", out)
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(carSnapshot(), exportTime)
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"image\": \"street.jpg\"")

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "street.jpg", doc["image"])
	assert.Equal(t, "2024-03-01T12:30:00.000Z", doc["timestamp"])
	assert.Equal(t, map[string]any{}, doc["analysis"])
	assert.Equal(t, []any{}, doc["classifications"])

	dets := doc["detections"].([]any)
	require.Len(t, dets, 1)
	det := dets[0].(map[string]any)
	assert.Equal(t, "car", det["class"])
	assert.Equal(t, []any{300.0, 200.0, 500.0, 350.0}, det["bbox"])
}

func TestToJSON_NoImageWithAnalysis(t *testing.T) {
	a := vision.NewAnalysis(vision.ImageRef{Size: 1024})
	out, err := ToJSON(session.Snapshot{Analysis: &a}, exportTime)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	_, hasImage := doc["image"]
	assert.False(t, hasImage)
	analysis := doc["analysis"].(map[string]any)
	assert.Len(t, analysis["palette"], len(vision.Palette))
}

func TestToReportHTML(t *testing.T) {
	snap := carSnapshot()
	snap.Classifications = []vision.ClassificationResult{{Class: "Golden Retriever", Confidence: 0.89}}

	r := NewReport(config.Default().Report, exportTime)
	assert.Equal(t, "3/1/2024", r.Date)

	out, err := ToReportHTML(snap, r)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h1>Computer Vision Analysis Report</h1>")
	assert.Contains(t, out, "Generated by Vision Demo Workbench on 3/1/2024")
	assert.Contains(t, out, "<strong>File:</strong> street.jpg")
	assert.Contains(t, out, "<p>car: 87.0%</p>")
	assert.Contains(t, out, "<p>Golden Retriever: 89.0%</p>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<link")
}

func TestToReportHTML_EscapesNames(t *testing.T) {
	snap := session.Snapshot{Image: &vision.ImageRef{FileName: "<b>x</b>.png"}}
	out, err := ToReportHTML(snap, Report{Title: "T", Author: "A", Date: "D"})
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;x&lt;/b&gt;.png")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "CSV": FormatCSV, " image ": FormatImage, "Report": FormatReport} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.True(t, cverr.IsKind(err, cverr.KindInvalidInput))
}

func TestBuild(t *testing.T) {
	snap := carSnapshot()
	cfg := config.Default().Report

	tests := []struct {
		format   Format
		fileName string
		mimeType string
		message  string
	}{
		{FormatJSON, "cv_results.json", "application/json", "Results exported as JSON"},
		{FormatCSV, "cv_results.csv", "text/csv", "Results exported as CSV"},
		{FormatImage, "annotated_image.png", "image/png", "Annotated image exported"},
		{FormatReport, "cv_analysis_report.html", "text/html", "Comprehensive report exported"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			a, err := Build(tt.format, snap, exportTime, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.fileName, a.FileName)
			assert.Equal(t, tt.mimeType, a.MimeType)
			assert.Equal(t, tt.message, a.SuccessMessage())
			assert.NotEmpty(t, a.Content)
			assert.Equal(t, tt.format != FormatImage, a.IsText())
		})
	}

	img, err := Build(FormatImage, snap, exportTime, cfg)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), img.Content[:4])
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	a := CSVArtifact("Type,Class,Confidence,Details\n")

	path, err := Save(dir, a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cv_results.csv"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, a.Content, got)

	_, err = Save("", a)
	assert.True(t, cverr.IsKind(err, cverr.KindExport))
}
