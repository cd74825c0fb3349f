package export

import (
	"bytes"
	"html/template"
	"time"

	"github.com/ironsheep/vision-demo-mcp/internal/config"
	"github.com/ironsheep/vision-demo-mcp/internal/cverr"
	"github.com/ironsheep/vision-demo-mcp/internal/session"
)

// ReportDateLayout matches a short month/day/year locale date.
const ReportDateLayout = "1/2/2006"

// Report carries the header fields of the HTML report.
type Report struct {
	Title  string
	Author string
	Date   string
}

// NewReport fills a Report from configuration, dated at.
func NewReport(cfg config.ReportConfig, at time.Time) Report {
	return Report{
		Title:  cfg.Title,
		Author: cfg.Author,
		Date:   at.Format(ReportDateLayout),
	}
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"percent": percent,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Report.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; }
.header { text-align: center; margin-bottom: 30px; }
.section { margin-bottom: 20px; }
.results { background: #f5f5f5; padding: 15px; border-radius: 5px; }
</style>
</head>
<body>
<div class="header">
<h1>{{.Report.Title}}</h1>
<p>Generated by {{.Report.Author}} on {{.Report.Date}}</p>
</div>
<div class="section">
<h2>Image Analysis</h2>
<p><strong>File:</strong> {{.Image}}</p>
</div>
<div class="section">
<h2>Detection Results</h2>
<div class="results">
{{- range .Snapshot.Detections}}
<p>{{.Class}}: {{percent .Confidence}}</p>
{{- end}}
</div>
</div>
<div class="section">
<h2>Classification Results</h2>
<div class="results">
{{- range .Snapshot.Classifications}}
<p>{{.Class}}: {{percent .Confidence}}</p>
{{- end}}
</div>
</div>
</body>
</html>
`))

// ToReportHTML renders the static analysis report for snap.
func ToReportHTML(snap session.Snapshot, r Report) (string, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Report   Report
		Image    string
		Snapshot session.Snapshot
	}{r, snap.ImageName(), snap})
	if err != nil {
		return "", cverr.Wrap(cverr.KindExport, "export report", "failed to render report", err)
	}
	return buf.String(), nil
}
