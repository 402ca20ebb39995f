// Package mcp exposes the converter as a Model Context Protocol tool server.
package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcncl/pytyper/internal/converter"
)

// ToolName is the name of the conversion tool.
const ToolName = "json_to_pydantic"

// Server wraps the MCP server around a converter.
type Server struct {
	mcpServer *sdkmcp.Server
	conv      *converter.Converter
}

// NewServer creates an MCP server that registers the conversion tool.
func NewServer(conv *converter.Converter, version string) (*Server, error) {
	if conv == nil {
		return nil, fmt.Errorf("converter is required")
	}

	s := &Server{conv: conv}
	s.mcpServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{
			Name:    "pytyper",
			Version: version,
		},
		nil,
	)
	s.mcpServer.AddReceivingMiddleware(LoggingMiddleware())

	AddTool(s.mcpServer, &sdkmcp.Tool{
		Name:        ToolName,
		Description: "Convert a JSON document into Pydantic model classes. Nested objects become their own classes named after their keys; the class for the whole document is Root. style is 'verbose' (Field() defaults, the default) or 'terse'.",
	}, ToolConvert(conv))

	return s, nil
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server for testing.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.mcpServer
}
