package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ironsheep/vision-demo-mcp/internal/cverr"
	"github.com/ironsheep/vision-demo-mcp/internal/events"
	"github.com/ironsheep/vision-demo-mcp/internal/export"
	"github.com/ironsheep/vision-demo-mcp/internal/render"
	"github.com/ironsheep/vision-demo-mcp/internal/vision"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "detect_objects").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token.
	Meta struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta"`
}

// imageContent is a tool result that also carries a PNG for the client to
// display.
type imageContent struct {
	meta interface{}
	png  string
}

// skippedResult is returned when an operation had nothing to do.
type skippedResult struct {
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Render tools add an image content item. Skipped operations succeed with
// {"skipped": true}. Tool execution errors return a JSON-RPC error response
// with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := wire.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	s.setProgressToken(params.Meta.ProgressToken)
	defer s.setProgressToken(nil)

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if cverr.IsKind(err, cverr.KindSkipped) {
		s.logger.Debug("tool skipped", "tool", params.Name, "reason", err)
		result, err = skippedResult{Skipped: true, Reason: cverr.UserMessage(err)}, nil
	}
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "kind", cverr.KindOf(err), "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", map[string]interface{}{
			"kind":    cverr.KindOf(err),
			"message": cverr.UserMessage(err),
		})
	}

	content := []map[string]interface{}{}
	if img, ok := result.(imageContent); ok {
		content = append(content, map[string]interface{}{
			"type": "text",
			"text": s.marshalText(img.meta),
		}, map[string]interface{}{
			"type":     "image",
			"data":     img.png,
			"mimeType": "image/png",
		})
	} else {
		content = append(content, map[string]interface{}{
			"type": "text",
			"text": s.marshalText(result),
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{"content": content},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session
	case "image_load":
		return s.handleImageLoad(args)
	case "settings_update":
		return s.handleSettingsUpdate(args)

	// Pipelines
	case "detect_objects":
		return s.handleDetectObjects(ctx)
	case "classify_image":
		return s.handleClassifyImage(ctx)

	// Panels
	case "analyze_image":
		return s.session.Analyze()
	case "results_summary":
		return s.session.Summary(), nil

	// Canvases
	case "render_detections":
		return s.handleRenderDetections()
	case "render_predictions":
		return s.handleRenderPredictions()
	case "render_features":
		return s.handleRenderFeatures(args)

	// Downloads
	case "export_results":
		return s.handleExportResults(args)

	default:
		return nil, cverr.New(cverr.KindInvalidInput, "tools/call", fmt.Sprintf("unknown tool: %s", name))
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// marshalText converts a value to a pretty-printed JSON string. On marshal
// failure it logs and returns an empty string.
func (s *Server) marshalText(v interface{}) string {
	b, err := wire.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode tool result", "error", err)
		return ""
	}
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments are allowed.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := wire.Unmarshal(args, v); err != nil {
		return cverr.Wrap(cverr.KindInvalidInput, "arguments", "invalid tool arguments", err)
	}
	return nil
}

// === Session Handlers ===

type imageLoadArgs struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

type imageLoadResult struct {
	vision.ImageRef
	SizeHuman string `json:"size_human"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		ref *vision.ImageRef
		err error
	)
	switch {
	case a.Path != "":
		ref, err = s.session.LoadFile(a.Path)
	case a.Data != "":
		data, decErr := base64.StdEncoding.DecodeString(stripDataURI(a.Data))
		if decErr != nil {
			return nil, cverr.Wrap(cverr.KindInvalidInput, "image_load", "image data is not valid base64", decErr)
		}
		name := a.Name
		if name == "" {
			name = "upload"
		}
		ref, err = s.session.Ingest(name, data, a.MimeType)
	default:
		return nil, cverr.New(cverr.KindInvalidInput, "image_load", "either path or data is required")
	}
	if err != nil {
		return nil, err
	}

	return imageLoadResult{ImageRef: *ref, SizeHuman: humanize.IBytes(uint64(ref.Size))}, nil
}

// stripDataURI accepts either raw base64 or a "data:<mime>;base64," URI.
func stripDataURI(s string) string {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}

type settingsUpdateArgs struct {
	ConfidenceThreshold *float64 `json:"confidence_threshold"`
	DetectionModel      string   `json:"detection_model"`
	ClassificationModel string   `json:"classification_model"`
}

func (s *Server) handleSettingsUpdate(args json.RawMessage) (interface{}, error) {
	var a settingsUpdateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ConfidenceThreshold != nil {
		if err := s.session.SetThreshold(*a.ConfidenceThreshold); err != nil {
			return nil, err
		}
	}
	s.session.SetModels(a.DetectionModel, a.ClassificationModel)
	return s.session.Settings(), nil
}

// === Pipeline Handlers ===

func (s *Server) handleDetectObjects(ctx context.Context) (interface{}, error) {
	results, err := s.session.Detect(ctx, nil)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"detections": results,
		"count":      len(results),
		"threshold":  s.session.Settings().ConfidenceThreshold,
	}, nil
}

func (s *Server) handleClassifyImage(ctx context.Context) (interface{}, error) {
	results, err := s.session.Classify(ctx, nil)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"classifications": results,
		"count":           len(results),
	}, nil
}

// === Canvas Handlers ===

func (s *Server) renderCanvas(op string, size render.Size, cmds []render.Command) (imageContent, error) {
	canvas, err := render.Render(size, cmds)
	if err != nil {
		return imageContent{}, cverr.Wrap(cverr.KindProcessing, op, "failed to render canvas", err)
	}
	png, err := canvas.Base64PNG()
	if err != nil {
		return imageContent{}, cverr.Wrap(cverr.KindProcessing, op, "failed to encode canvas", err)
	}
	return imageContent{
		meta: map[string]interface{}{
			"width":    size.Width,
			"height":   size.Height,
			"commands": cmds,
		},
		png: png,
	}, nil
}

func (s *Server) handleRenderDetections() (interface{}, error) {
	snap := s.session.Snapshot()
	return s.renderCanvas("render_detections", render.DetectionCanvas,
		render.DetectionOverlay(render.DetectionCanvas, snap.Detections))
}

func (s *Server) handleRenderPredictions() (interface{}, error) {
	snap := s.session.Snapshot()
	return s.renderCanvas("render_predictions", render.ChartCanvas,
		render.PredictionChart(render.ChartCanvas, snap.Classifications))
}

type renderFeaturesArgs struct {
	Seed *uint64 `json:"seed"`
}

func (s *Server) handleRenderFeatures(args json.RawMessage) (interface{}, error) {
	var a renderFeaturesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.session.Image() == nil {
		return nil, cverr.New(cverr.KindSkipped, "render_features", "no active image")
	}

	rng := s.rng
	if a.Seed != nil {
		rng = rand.New(rand.NewPCG(*a.Seed, 0))
	}
	return s.renderCanvas("render_features", render.FeatureCanvas, render.FeaturePoints(render.FeatureCanvas, rng))
}

// === Export Handlers ===

type exportResultsArgs struct {
	Format string `json:"format"`
	Save   bool   `json:"save"`
	Dir    string `json:"dir"`
}

type exportResult struct {
	FileName      string `json:"file_name"`
	MimeType      string `json:"mime_type"`
	Size          string `json:"size"`
	Content       string `json:"content,omitempty"`
	ContentBase64 string `json:"content_base64,omitempty"`
	SavedPath     string `json:"saved_path,omitempty"`
}

func (s *Server) handleExportResults(args json.RawMessage) (interface{}, error) {
	var a exportResultsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	artifact, err := export.Build(format, s.session.Snapshot(), s.now(), s.cfg.Report)
	if err != nil {
		s.session.Bus().Notify(cverr.UserMessage(err), events.SeverityError)
		return nil, err
	}

	out := exportResult{
		FileName: artifact.FileName,
		MimeType: artifact.MimeType,
		Size:     humanize.Bytes(uint64(len(artifact.Content))),
	}
	if artifact.IsText() {
		out.Content = string(artifact.Content)
	} else {
		out.ContentBase64 = base64.StdEncoding.EncodeToString(artifact.Content)
	}

	if a.Save {
		dir := a.Dir
		if dir == "" {
			dir = s.cfg.Export.Dir
		}
		path, err := export.Save(dir, artifact)
		if err != nil {
			s.session.Bus().Notify(cverr.UserMessage(err), events.SeverityError)
			return nil, err
		}
		out.SavedPath = path
		s.logger.Info("artifact saved", "path", path, "size", out.Size)
	}

	s.session.Bus().Notify(artifact.SuccessMessage(), events.SeveritySuccess)
	return out, nil
}
