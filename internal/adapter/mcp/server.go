// Package mcp exposes the planner as a Model Context Protocol tool so agents
// can request travel plans over streamable HTTP.
package mcp

import (
	"context"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/VoyageMind/internal/domain/trip"
	"github.com/Strob0t/VoyageMind/internal/logger"
)

// Planner produces a plan for one country.
type Planner interface {
	Plan(ctx context.Context, req trip.Request) (*trip.Result, error)
}

// ServerConfig holds the MCP server identity and mount path.
type ServerConfig struct {
	Name    string
	Version string
	Path    string
}

// ServerDeps holds the services the tools call into.
type ServerDeps struct {
	Planner Planner

	// Redact masks credentials in error text returned to clients.
	Redact func(string) string
}

// Server wraps an mcp-go server with the VoyageMind tools and resources.
type Server struct {
	cfg       ServerConfig
	deps      ServerDeps
	mcpServer *mcpserver.MCPServer
}

// NewServer creates the MCP server and registers its tools and resources.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithResourceCapabilities(false, false),
			mcpserver.WithRecovery(),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Handler returns the streamable HTTP transport. It is stateless: every
// plan_trip call is self-contained. The request ID set by the HTTP
// middleware is carried into tool calls.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(s.cfg.Path),
		mcpserver.WithStateLess(true),
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if id := logger.RequestID(r.Context()); id != "" {
				ctx = logger.WithRequestID(ctx, id)
			}
			return ctx
		}),
	)
}
