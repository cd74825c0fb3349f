// Package server implements the MCP (Model Context Protocol) server for the
// computer-vision demo workbench.
//
// The server drives one session.Session: it loads images, runs the mock
// detection and classification pipelines, renders the workbench canvases
// and exports results.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session:
//   - image_load: Load an image from disk or inline base64
//   - settings_update: Confidence threshold and model selection
//
// Pipelines:
//   - detect_objects: Staged mock object detection
//   - classify_image: Staged mock classification
//
// Panels:
//   - analyze_image: Palette, statistics and metrics
//   - results_summary: Counts, models and performance figures
//
// Canvases:
//   - render_detections: Detection overlay
//   - render_predictions: Prediction bar chart
//   - render_features: Feature points
//
// Downloads:
//   - export_results: JSON, CSV, PNG or HTML report
//
// # Notifications
//
// Toasts published on the session bus are sent as notifications/message.
// Pipeline steps are sent as notifications/progress when the tools/call
// request carries _meta.progressToken.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the error kind and the user-facing message
//
// Operations with nothing to do (no image loaded, a run already in flight)
// succeed with {"skipped": true}.
//
// # Usage
//
//	srv := server.New(cfg, server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
