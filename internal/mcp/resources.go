// ABOUTME: MCP resource implementations for rehab sessions.
// ABOUTME: Provides rehab://recent and rehab://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	recentURI   = "rehab://recent"
	summaryURI  = "rehab://summary"
	recentLimit = 10
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Rehab Sessions",
		Description: "Last 10 rehab sessions, newest first",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Rehab Summary Dashboard",
		Description: "Session count, average duration, high-intensity count, and progress trend",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	snap, status := s.refresh(ctx)
	if status.Failed() {
		return nil, fmt.Errorf("%s", status.Message)
	}

	sessions := snap.Sessions()
	if len(sessions) > recentLimit {
		sessions = sessions[:recentLimit]
	}

	return jsonResource(recentURI, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	snap, status := s.refresh(ctx)
	if status.Failed() {
		return nil, fmt.Errorf("%s", status.Message)
	}

	byIntensity := make(map[string]int)
	for _, sess := range snap.Sessions() {
		byIntensity[string(sess.Intensity)]++
	}

	return jsonResource(summaryURI, map[string]interface{}{
		"generated_at": snap.RefreshedAt().Format(time.RFC3339),
		"summary":      snap.Summarize(),
		"by_intensity": byIntensity,
		"skipped":      snap.Skipped(),
	})
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
