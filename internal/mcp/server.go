// ABOUTME: MCP server setup for the rehab session tracker.
// ABOUTME: Wraps the MCP server around a Tracker and keeps the last snapshot.
package mcp

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harperreed/rehab/internal/tracker"
	"github.com/harperreed/rehab/internal/view"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with tracker access.
type Server struct {
	mcpServer *mcp.Server
	tracker   *tracker.Tracker
	log       *log.Logger

	mu   sync.Mutex
	snap *view.Snapshot
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. It must not write to stdout.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a new MCP server over t.
func NewServer(t *tracker.Tracker, opts ...Option) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "rehab",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		tracker:   t,
		log:       log.New(io.Discard),
		snap:      view.Empty(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// refresh replaces the cached snapshot. On failure the cached one is kept
// and the failure status is returned.
func (s *Server) refresh(ctx context.Context) (*view.Snapshot, tracker.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, status := s.tracker.Refresh(ctx, s.snap)
	s.snap = snap
	if status.Failed() {
		s.log.Warn("refresh failed", "msg", status.Message)
	}
	return snap, status
}
