package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// noArgs is the schema of a tool without parameters.
func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "image_load",
			Description: "Load an image and make it the active image of the session. Pass either an absolute path, or a name with base64 data. Non-image input is rejected and leaves the session unchanged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "File name of an inline upload",
					},
					"data": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image bytes, or a data: URI",
					},
					"mime_type": map[string]interface{}{
						"type":        "string",
						"description": "Declared MIME type of the upload. Sniffed from the data when omitted.",
					},
				},
			},
		},
		{
			Name:        "settings_update",
			Description: "Change the detection confidence threshold and the selected models. Omitted fields keep their current value. Returns the resulting settings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"confidence_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Minimum detection confidence (0.0-1.0). Default 0.5",
						"minimum":     0.0,
						"maximum":     1.0,
					},
					"detection_model": map[string]interface{}{
						"type":        "string",
						"description": "Detection model id, e.g. yolo",
					},
					"classification_model": map[string]interface{}{
						"type":        "string",
						"description": "Classification model id, e.g. resnet",
					},
				},
			},
		},

		// Pipelines
		{
			Name:        "detect_objects",
			Description: "Run the staged object detection pipeline on the active image and replace the detection results. Progress is reported when the request carries a progress token. Returns {\"skipped\": true} when no image is loaded or a run is in flight.",
			InputSchema: noArgs(),
		},
		{
			Name:        "classify_image",
			Description: "Run the staged image classification pipeline on the active image and replace the classification results. Returns {\"skipped\": true} when no image is loaded or a run is in flight.",
			InputSchema: noArgs(),
		},

		// Panels
		{
			Name:        "analyze_image",
			Description: "Return the analysis panel for the active image: colour palette, colour and feature statistics, and image metrics.",
			InputSchema: noArgs(),
		},
		{
			Name:        "results_summary",
			Description: "Return the results summary: active image, result counts, models used and performance figures.",
			InputSchema: noArgs(),
		},

		// Canvases
		{
			Name:        "render_detections",
			Description: "Render the detection overlay (600x400) with a labelled box per detection. Returns the draw commands and a PNG.",
			InputSchema: noArgs(),
		},
		{
			Name:        "render_predictions",
			Description: "Render the classification bar chart (400x300). Returns the draw commands and a PNG.",
			InputSchema: noArgs(),
		},
		{
			Name:        "render_features",
			Description: "Render the feature-point view (200x150) of the active image. Returns the draw commands and a PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Optional seed for reproducible point placement",
					},
				},
			},
		},

		// Downloads
		{
			Name:        "export_results",
			Description: "Export the session as cv_results.json, cv_results.csv, annotated_image.png or cv_analysis_report.html. Text formats are returned inline, the image as base64. Optionally saves the file to a directory.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"json", "csv", "image", "report"},
						"description": "Export format",
					},
					"save": map[string]interface{}{
						"type":        "boolean",
						"description": "Also write the file to disk. Default false",
						"default":     false,
					},
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory to save into. Defaults to the configured export directory",
					},
				},
				"required": []string{"format"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
