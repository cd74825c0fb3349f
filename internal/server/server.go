package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/ironsheep/vision-demo-mcp/internal/config"
	"github.com/ironsheep/vision-demo-mcp/internal/events"
	"github.com/ironsheep/vision-demo-mcp/internal/session"
)

const (
	// ServerName is reported in the initialize handshake.
	ServerName = "vision-demo-mcp"

	protocolVersion = "2024-11-05"
	maxRequestSize  = 32 * 1024 * 1024
)

// Version is reported in the initialize handshake. It is overridden by the
// command at startup.
var Version = "dev"

// wire is the JSON codec for protocol messages.
var wire = sonic.ConfigStd

// Server handles MCP protocol communication for one workbench session.
type Server struct {
	cfg     *config.Config
	session *session.Session
	logger  *slog.Logger

	in  io.Reader
	out io.Writer
	now func() time.Time
	rng *rand.Rand

	writeMu sync.Mutex

	// progressToken is the token of the tools/call being served, if the
	// client asked for progress. Requests are served one at a time.
	tokenMu       sync.Mutex
	progressToken interface{}
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// WithLogger sets the logger. Logs must never go to the protocol stream.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSession uses an existing session instead of creating one.
func WithSession(sess *session.Session) Option {
	return func(s *Server) {
		s.session = sess
	}
}

// WithClock sets the clock used for export timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRand sets the source for feature-point placement.
func WithRand(rng *rand.Rand) Option {
	return func(s *Server) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// New creates a new MCP server instance
func New(cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: slog.Default(),
		in:     os.Stdin,
		out:    os.Stdout,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.session == nil {
		s.session = session.New(session.Options{Config: cfg, Logger: s.logger})
	}
	s.subscribe()
	return s
}

// Session returns the session the server operates on.
func (s *Server) Session() *session.Session { return s.session }

// subscribe forwards bus events to the client as notifications.
func (s *Server) subscribe() {
	bus := s.session.Bus()

	if err := bus.OnNotification(s.forwardNotification); err != nil {
		s.logger.Error("failed to subscribe to notifications", "error", err)
	}
	if err := bus.OnProgress(s.forwardProgress); err != nil {
		s.logger.Error("failed to subscribe to progress", "error", err)
	}
	if err := bus.OnRun(func(e events.RunEvent) {
		s.logger.Debug("pipeline run", "pipeline", e.Pipeline, "phase", e.Phase, "error", e.Error)
	}); err != nil {
		s.logger.Error("failed to subscribe to run events", "error", err)
	}
}

// Run serves requests until ctx is done or the input closes.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Uploads arrive base64-encoded inline, so allow large lines.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxRequestSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := wire.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			s.write(&MCPResponse{
				JSONRPC: "2.0",
				Error:   &MCPError{Code: -32700, Message: "Parse error", Data: err.Error()},
			})
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// write encodes one message per line. Notifications may be written while a
// request is being served, so writes are serialised.
func (s *Server) write(msg interface{}) {
	data, err := wire.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to encode message", "error", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		s.logger.Error("failed to write message", "error", err)
	}
}

func (s *Server) notify(method string, params interface{}) {
	s.write(&MCPNotification{JSONRPC: "2.0", Method: method, Params: params})
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools":   map[string]interface{}{},
				"logging": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": Version,
			},
		},
	}
}
