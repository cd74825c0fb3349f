// Package session owns the state of one workbench session: the active
// image, the latest detection and classification results, the cached
// analysis, the user's settings and the "processing" flag.
//
// A Session is an explicit handle passed to every operation; nothing is
// kept in package globals. Its methods are safe for concurrent use, and at
// most one pipeline runs per session at a time.
//
// # Lifecycle
//
//   - Ingest or LoadFile validates an upload and replaces the active image
//     wholesale. The cached analysis is dropped; previous results stay until
//     the next run.
//   - Detect and Classify run their staged pipeline and replace the
//     corresponding result list when the run completes. Results are never
//     merged across runs.
//   - Snapshot returns an immutable copy for exporters and renderers.
//
// # Errors
//
// Operations return cverr-typed errors:
//   - KindInvalidInput: the upload is not an image, or a setting is out of
//     range. The session is unchanged.
//   - KindSkipped: no active image, or a run is already in flight. Callers
//     should treat this as a silent no-op.
//   - KindProcessing: the run failed. The processing flag is released
//     before the error is returned.
package session
