// Package export turns a session snapshot into downloadable artifacts.
//
// Formatters are pure functions of a session.Snapshot and a timestamp:
//
//   - ToJSON: the full result set, indented with two spaces.
//   - ToCSV: one row per detection and classification.
//   - ToReportHTML: a self-contained HTML report with inline CSS only.
//
// Each format has a fixed download name and MIME type, see Artifact. Save
// writes an artifact to a local directory when the client asks for one.
package export
