package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ironsheep/inpaint-studio-mcp/internal/imaging"
	"github.com/ironsheep/inpaint-studio-mcp/internal/mask"
	"github.com/ironsheep/inpaint-studio-mcp/internal/remote"
	"github.com/ironsheep/inpaint-studio-mcp/internal/session"
)

// Service is the processing backend as seen by the server.
// *remote.Client implements it.
type Service interface {
	session.Processor
	Health(ctx context.Context) (*remote.HealthStatus, error)
	Models(ctx context.Context) (map[string]remote.TaskInfo, error)
	Endpoint() string
}

// Options configures a Server.
type Options struct {
	// Service receives processing requests. Required.
	Service Service

	// Style is the mask stroke style. The zero value uses mask.DefaultStyle.
	Style mask.Style

	// OutputDir is where image_save_result writes when no directory is given.
	OutputDir string

	Logger  *slog.Logger
	Version string
}

// Server handles MCP protocol communication for one editing session.
type Server struct {
	cache     *imaging.ImageCache
	session   *session.Session
	service   Service
	logger    *slog.Logger
	outputDir string
	version   string

	// ctx outlives individual tool calls; background jobs run under it.
	ctx context.Context

	outMu sync.Mutex
	out   *json.Encoder
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

// New creates a new MCP server instance
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	style := opts.Style
	if style == (mask.Style{}) {
		style = mask.DefaultStyle()
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	return &Server{
		cache: imaging.NewImageCache(),
		session: session.New(opts.Service,
			session.WithStyle(style),
			session.WithLogger(logger.With("component", "session"))),
		service:   opts.Service,
		logger:    logger,
		outputDir: outputDir,
		version:   version,
		ctx:       context.Background(),
	}
}

// Run serves MCP over stdin and stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses and
// notifications to w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.ctx = ctx
	s.outMu.Lock()
	s.out = json.NewEncoder(w)
	s.outMu.Unlock()

	scanner := bufio.NewScanner(r)
	// Uploads arrive base64 encoded, so lines can be large
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("scanner error: %w", err)
					}
				default:
				}
				return nil
			}
			if len(line) == 0 {
				continue
			}

			var req MCPRequest
			if err := json.Unmarshal(line, &req); err != nil {
				s.logger.Warn("failed to parse request", "error", err)
				continue
			}

			if resp := s.handleRequest(ctx, &req); resp != nil {
				s.write(resp)
			}
		}
	}
}

// write sends one message. Responses and job notifications come from
// different goroutines.
func (s *Server) write(v interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	if s.out == nil {
		return
	}
	if err := s.out.Encode(v); err != nil {
		s.logger.Error("failed to encode message", "error", err)
	}
}

// notify sends an MCP log message notification.
func (s *Server) notify(level string, data interface{}) {
	s.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  "notifications/message",
		Params: map[string]interface{}{
			"level":  level,
			"logger": "inpaint-mcp",
			"data":   data,
		},
	})
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
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools":   map[string]interface{}{},
				"logging": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "inpaint-studio-mcp",
				"version": s.version,
			},
		},
	}
}
