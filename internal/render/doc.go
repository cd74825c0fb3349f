// Package render turns mock results into draw commands and paints them.
//
// Rendering happens in two stages. Builders (DetectionOverlay,
// PredictionChart, FeaturePoints) are pure functions from results to a
// []Command: rectangles, polylines, circles and text with explicit
// positions, colours and sizes. A Surface then applies the commands. The
// Canvas surface rasterises them onto an in-memory NRGBA image that can be
// encoded as PNG.
//
// Keeping the stages apart means the geometry is testable by looking at the
// command list, without decoding pixels.
//
// # Coordinate System
//
// Canvas coordinates are floats with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Source-image coordinates
// (vision.SourceWidth × vision.SourceHeight) are scaled independently on
// each axis:
//
//	scaleX = canvasWidth / 800
//	scaleY = canvasHeight / 600
//
// # Idempotency
//
// Every builder emits a clear command first. Applying the same command list
// to a canvas twice leaves byte-identical pixels; overlays never accumulate.
//
// # Clipping
//
// Commands may reach outside the canvas (a label tag above a box at the top
// edge, for example). The Canvas clips them to its bounds; this is never an
// error.
//
// # Text
//
// Text is rasterised with the 7×13 basic bitmap face and scaled with
// nearest-neighbour sampling to the requested pixel size, so output is
// deterministic. Rotated text is rotated about its centre.
package render
