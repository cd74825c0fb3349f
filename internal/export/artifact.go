package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/vision-demo-mcp/internal/config"
	"github.com/ironsheep/vision-demo-mcp/internal/cverr"
	"github.com/ironsheep/vision-demo-mcp/internal/render"
	"github.com/ironsheep/vision-demo-mcp/internal/session"
)

// Format names an export kind.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatImage  Format = "image"
	FormatReport Format = "report"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatImage, FormatReport:
		return f, nil
	}
	return "", cverr.New(cverr.KindInvalidInput, "export",
		fmt.Sprintf("unknown export format %q (want json, csv, image or report)", s))
}

// Artifact is a downloadable file.
type Artifact struct {
	Format   Format
	FileName string
	MimeType string
	Content  []byte
}

// IsText reports whether Content is UTF-8 text rather than binary.
func (a Artifact) IsText() bool {
	return a.Format != FormatImage
}

// SuccessMessage is the notification shown after a successful export.
func (a Artifact) SuccessMessage() string {
	switch a.Format {
	case FormatImage:
		return "Annotated image exported"
	case FormatReport:
		return "Comprehensive report exported"
	default:
		return "Results exported as " + strings.ToUpper(string(a.Format))
	}
}

// JSONArtifact wraps a JSON export as cv_results.json.
func JSONArtifact(content string) Artifact {
	return Artifact{Format: FormatJSON, FileName: "cv_results.json", MimeType: "application/json", Content: []byte(content)}
}

// CSVArtifact wraps a CSV export as cv_results.csv.
func CSVArtifact(content string) Artifact {
	return Artifact{Format: FormatCSV, FileName: "cv_results.csv", MimeType: "text/csv", Content: []byte(content)}
}

// ImageArtifact wraps an encoded detection canvas as annotated_image.png.
func ImageArtifact(png []byte) Artifact {
	return Artifact{Format: FormatImage, FileName: "annotated_image.png", MimeType: "image/png", Content: png}
}

// ReportArtifact wraps an HTML report as cv_analysis_report.html.
func ReportArtifact(content string) Artifact {
	return Artifact{Format: FormatReport, FileName: "cv_analysis_report.html", MimeType: "text/html", Content: []byte(content)}
}

// Build produces the artifact for f from snap. The image format renders the
// detection overlay canvas.
func Build(f Format, snap session.Snapshot, at time.Time, report config.ReportConfig) (Artifact, error) {
	switch f {
	case FormatJSON:
		out, err := ToJSON(snap, at)
		if err != nil {
			return Artifact{}, err
		}
		return JSONArtifact(out), nil
	case FormatCSV:
		out, err := ToCSV(snap)
		if err != nil {
			return Artifact{}, err
		}
		return CSVArtifact(out), nil
	case FormatImage:
		canvas, err := render.Render(render.DetectionCanvas, render.DetectionOverlay(render.DetectionCanvas, snap.Detections))
		if err != nil {
			return Artifact{}, cverr.Wrap(cverr.KindExport, "export image", "failed to render annotated image", err)
		}
		png, err := canvas.PNG()
		if err != nil {
			return Artifact{}, cverr.Wrap(cverr.KindExport, "export image", "failed to encode annotated image", err)
		}
		return ImageArtifact(png), nil
	case FormatReport:
		out, err := ToReportHTML(snap, NewReport(report, at))
		if err != nil {
			return Artifact{}, err
		}
		return ReportArtifact(out), nil
	}
	return Artifact{}, cverr.New(cverr.KindInvalidInput, "export", fmt.Sprintf("unknown export format %q", f))
}

// Save writes a under dir, creating dir if needed, and returns the path
// written.
func Save(dir string, a Artifact) (string, error) {
	if dir == "" {
		return "", cverr.New(cverr.KindExport, "export save", "no export directory configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", cverr.Wrap(cverr.KindExport, "export save", "failed to create export directory", err)
	}
	path := filepath.Join(dir, a.FileName)
	if err := os.WriteFile(path, a.Content, 0o644); err != nil {
		return "", cverr.Wrap(cverr.KindExport, "export save", fmt.Sprintf("failed to write %s", a.FileName), err)
	}
	return path, nil
}
