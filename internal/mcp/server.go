// Package mcp serves the sandbox tools over the Model Context Protocol, so
// any MCP client can drive a sandbox under the same access rules as the
// built-in agent.
package mcp

import (
	"context"
	"fmt"
	"io"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"

	"github.com/mfateev/dirproto/internal/history"
	"github.com/mfateev/dirproto/internal/tools"
)

// ServerName is the implementation name announced to clients.
const ServerName = "dirproto"

// Source is the journal source recorded for commands run by MCP clients.
const Source = "mcp"

// Server exposes a tool router as MCP tools.
type Server struct {
	router *tools.ToolRouter
	server *gomcp.Server
	log    logrus.FieldLogger
}

// NewServer registers every spec in router as an MCP tool.
func NewServer(router *tools.ToolRouter, version string, log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	s := &Server{
		router: router,
		server: gomcp.NewServer(&gomcp.Implementation{
			Name:    ServerName,
			Version: version,
		}, nil),
		log: log,
	}
	for _, spec := range router.GetToolSpecs() {
		s.server.AddTool(toolFor(spec), s.handlerFor(spec.Name))
	}
	return s
}

func toolFor(spec tools.ToolSpec) *gomcp.Tool {
	destructive := !spec.ReadOnly
	return &gomcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		InputSchema: spec.InputSchema(),
		Annotations: &gomcp.ToolAnnotations{
			ReadOnlyHint:    spec.ReadOnly,
			DestructiveHint: &destructive,
		},
	}
}

func (s *Server) handlerFor(name string) gomcp.ToolHandler {
	return func(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		args := map[string]any{}
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
		}
		out, err := s.router.DispatchToolCall(history.WithSource(ctx, Source), &tools.ToolInvocation{
			ToolName:  name,
			Arguments: args,
		})
		if err != nil {
			s.log.WithError(err).WithField("tool", name).Debug("tool call rejected")
			return errorResult(err.Error()), nil
		}
		s.log.WithFields(logrus.Fields{"tool": name, "ok": out.Succeeded()}).Debug("tool call")
		return convertToolOutput(out), nil
	}
}

// convertToolOutput converts a ToolOutput to an MCP CallToolResult.
func convertToolOutput(out *tools.ToolOutput) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: out.Content}},
		IsError: !out.Succeeded(),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// Run serves on transport until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context, transport gomcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// ServeStdio serves on stdin and stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Run(ctx, &gomcp.StdioTransport{})
}
