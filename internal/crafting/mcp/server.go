// Package mcp serves catalog lookups to MCP clients as line-delimited
// JSON-RPC 2.0 over stdio.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rsned/crafting-data/internal/crafting/engine"
)

const (
	jsonrpcVersion  = "2.0"
	protocolVersion = "2024-11-05"
	serverName      = "crafting-data"

	maxLineSize = 4 << 20
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// Standard JSON-RPC error codes.
const (
	ErrCodeParse          = -32700
	ErrCodeInvalidReq     = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
)

var (
	nullID = json.RawMessage("null")

	// errInvalidParams marks handler errors caused by the caller's arguments.
	errInvalidParams = errors.New("invalid params")
)

// MethodHandler answers one JSON-RPC method.
type MethodHandler func(ctx context.Context, params json.RawMessage) (any, error)

// Server answers catalog queries from one client.
type Server struct {
	engine  *engine.Engine
	logger  *slog.Logger
	methods map[string]MethodHandler
	tools   []tool
}

// NewServer creates a Server backed by eng. A nil logger logs to stderr.
func NewServer(eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	s := &Server{engine: eng, logger: logger}
	s.tools = s.catalogTools()
	s.methods = map[string]MethodHandler{
		"initialize": s.initialize,
		"ping":       s.ping,
		"tools/list": s.listTools,
		"tools/call": s.callTool,
	}
	return s
}

// Request is one JSON-RPC call. A request without an id is a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the sender expects no response.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response answers a Request. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Result: result}
}

func failure(id json.RawMessage, code int, msg string) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Error: &Error{Code: code, Message: msg}}
}

// Run serves stdin and stdout until EOF or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve answers one request per line of r, writing each response as a line
// of w. It returns nil at EOF.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	out := bufio.NewWriter(w)
	enc := json.NewEncoder(out)

	s.logger.Info("serving catalog lookups", "tools", len(s.tools))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !in.Scan() {
			break
		}

		line := bytes.TrimSpace(in.Bytes())
		if len(line) == 0 {
			continue
		}
		resp := s.dispatch(ctx, line)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			s.logger.Error("encoding response", "error", err)
			continue
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
	if err := in.Err(); err != nil {
		return fmt.Errorf("reading request: %w", err)
	}
	s.logger.Info("client closed input")
	return nil
}

// dispatch decodes and answers one request line. Notifications yield nil.
func (s *Server) dispatch(ctx context.Context, line []byte) *Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		resp := failure(nullID, ErrCodeParse, "Parse error")
		resp.Error.Data = err.Error()
		return resp
	}
	log := s.logger.With("method", req.Method, "id", string(req.ID))
	log.Debug("request")

	if req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		return failure(req.ID, ErrCodeInvalidReq, "Invalid request: missing method")
	}

	handle, ok := s.methods[req.Method]
	switch {
	case !ok && req.IsNotification():
		log.Debug("ignoring notification")
		return nil
	case !ok:
		return failure(req.ID, ErrCodeMethodNotFound, "Method not found: "+req.Method)
	}

	result, err := handle(ctx, req.Params)
	switch {
	case req.IsNotification():
		if err != nil {
			log.Warn("notification failed", "error", err)
		}
		return nil
	case errors.Is(err, errInvalidParams):
		return failure(req.ID, ErrCodeInvalidParams, err.Error())
	case err != nil:
		return failure(req.ID, ErrCodeInternal, err.Error())
	}
	return success(req.ID, result)
}

// InitializeResult answers the initialize handshake.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Capabilities    Capabilities `json:"capabilities"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

func (s *Server) initialize(context.Context, json.RawMessage) (any, error) {
	return InitializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo:      ServerInfo{Name: serverName, Version: Version},
		Capabilities:    Capabilities{Tools: &ToolsCapability{}},
	}, nil
}

func (s *Server) ping(context.Context, json.RawMessage) (any, error) {
	return struct{}{}, nil
}

// ToolsListResult answers tools/list.
type ToolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}

func (s *Server) listTools(context.Context, json.RawMessage) (any, error) {
	return ToolsListResult{Tools: s.ToolDefinitions()}, nil
}

// ToolCallParams are the parameters of tools/call.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCallResult answers tools/call. Tool failures set IsError rather than
// failing the call.
type ToolCallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func textResult(text string, isError bool) ToolCallResult {
	return ToolCallResult{Content: []ContentBlock{{Type: "text", Text: text}}, IsError: isError}
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, error) {
	var p ToolCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	t, ok := s.findTool(p.Name)
	if !ok {
		return textResult("unknown tool: "+p.Name, true), nil
	}

	s.logger.Debug("calling tool", "name", p.Name)
	result, err := t.call(ctx, p.Arguments)
	if err != nil {
		return textResult(err.Error(), true), nil
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s result: %w", p.Name, err)
	}
	return textResult(string(body), false), nil
}

func (s *Server) findTool(name string) (tool, bool) {
	for _, t := range s.tools {
		if t.def.Name == name {
			return t, true
		}
	}
	return tool{}, false
}
