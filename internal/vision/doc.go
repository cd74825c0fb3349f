// Package vision holds the result types of the workbench and the mock
// generators that stand in for real model inference.
//
// Nothing in this package looks at pixels. Detection and classification
// results come from fixed catalogs filtered or stamped by trivial rules,
// and the "advanced analysis" panel is a set of display constants.
//
// # Coordinate System
//
// Bounding boxes are expressed in the pixel space of an assumed 800×600
// source image:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - (X1, Y1) is the top-left corner, (X2, Y2) the bottom-right corner
//
// The renderer scales these coordinates onto its fixed-size canvases.
//
// # Confidence Scores
//
// Confidence values are floats in [0, 1]. They are mock certainties, not
// derived from any model:
//   - Detections are kept only when confidence >= the requested threshold
//   - Classifications are always returned in descending confidence order
//
// # Timestamps
//
// Every generated result is stamped with the generator's clock formatted as
// RFC 3339 with millisecond precision in UTC, for example
// "2024-05-01T12:00:00.000Z".
package vision
