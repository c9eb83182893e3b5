package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/alf-academy/enroll/internal/drafts"
	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/logger"
	"github.com/alf-academy/enroll/internal/submission"
)

const (
	serverName = "enroll"
	// DefaultAddr binds to a random loopback port.
	DefaultAddr = "127.0.0.1:0"
)

// Deps are the enrollment services the tools call into.
type Deps struct {
	Validator *enrollment.Validator
	// NewForm returns an empty form with the configured defaults.
	NewForm func() *enrollment.Form
	// Client is nil when submissions are disabled; submit-enrollment then
	// reports an error.
	Client *submission.Client
	// Drafts, when set, keeps forms whose submission failed.
	Drafts *drafts.Store
}

// Server exposes the enrollment tools over MCP.
type Server struct {
	deps      Deps
	version   string
	mcpServer *server.MCPServer
	stdServer *http.Server
	addr      net.Addr
	mu        sync.Mutex
}

// New creates a server. Nothing listens until Start or ServeStdio.
func New(deps Deps, version string) (*Server, error) {
	if deps.Validator == nil {
		return nil, errors.New("validator is required")
	}
	if deps.NewForm == nil {
		deps.NewForm = func() *enrollment.Form {
			return enrollment.NewForm(enrollment.Defaults{})
		}
	}
	s := &Server{deps: deps, version: version}
	s.mcpServer = server.NewMCPServer(serverName, version, server.WithToolCapabilities(true))
	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	logger.Info("Serving MCP tools on stdio")
	return server.ServeStdio(s.mcpServer)
}

// Start serves streamable HTTP on addr at /mcp and returns once the
// listener is bound.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return errors.New("server already started")
	}
	if addr == "" {
		addr = DefaultAddr
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.addr = listener.Addr()

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s.mcpServer, server.WithStateLess(true)))
	s.stdServer = &http.Server{Handler: mux}

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Info("MCP server listening on %s", s.addr)
	return nil
}

// Stop shuts the HTTP server down. Stopping a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}
	if err := s.stdServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("stopping mcp server: %w", err)
	}
	s.stdServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the tool endpoint, or "" before Start.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr == nil {
		return ""
	}
	return fmt.Sprintf("http://%s/mcp", s.addr)
}
