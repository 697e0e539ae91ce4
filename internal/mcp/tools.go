// ABOUTME: MCP tool implementations for rehab sessions.
// ABOUTME: Provides session submission, listing, stats, and availability checks.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/rehab/internal/models"
	"github.com/harperreed/rehab/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultListLimit = 20

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_session",
		Description: "Record a rehabilitation session; metrics are encrypted before storage",
	}, s.handleAddSession)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_sessions",
		Description: "List recent rehab sessions newest first, optionally filtered by exercise or intensity",
	}, s.handleListSessions)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "session_stats",
		Description: "Total sessions, average duration, high-intensity count, and progress scores",
	}, s.handleSessionStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "check_status",
		Description: "Check whether the encrypted storage service is available",
	}, s.handleCheckStatus)
}

// Tool input/output types

type addSessionInput struct {
	ExerciseType   string `json:"exercise_type" jsonschema:"Exercise performed, e.g. knee extension"`
	Duration       int    `json:"duration" jsonschema:"Duration in minutes"`
	Intensity      string `json:"intensity" jsonschema:"Effort level: low, medium, or high"`
	Metrics        string `json:"metrics" jsonschema:"Free-text measurements; encrypted before storage"`
	TherapistNotes string `json:"therapist_notes,omitempty" jsonschema:"Optional therapist notes"`
}

type sessionOutput struct {
	ID            string `json:"id"`
	ExerciseType  string `json:"exercise_type"`
	ProgressScore int    `json:"progress_score"`
	Message       string `json:"message"`
}

type listSessionsInput struct {
	Search string `json:"search,omitempty" jsonschema:"Case-insensitive match on exercise type or intensity"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listSessionsOutput struct {
	Sessions []models.Session `json:"sessions"`
	Count    int              `json:"count"`
	Skipped  int              `json:"skipped"`
	Message  string           `json:"message,omitempty"`
}

type statsInput struct{}

type statsOutput struct {
	TotalSessions  int     `json:"total_sessions"`
	AvgDuration    float64 `json:"avg_duration"`
	HighIntensity  int     `json:"high_intensity"`
	ProgressScores []int   `json:"progress_scores"`
	Message        string  `json:"message,omitempty"`
}

type statusInput struct{}

type statusOutput struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// Tool handlers

func (s *Server) handleAddSession(ctx context.Context, req *mcp.CallToolRequest, input addSessionInput) (*mcp.CallToolResult, sessionOutput, error) {
	sess, status := s.tracker.Submit(ctx, tracker.Draft{
		ExerciseType:   input.ExerciseType,
		Duration:       input.Duration,
		Intensity:      models.Intensity(input.Intensity),
		Metrics:        input.Metrics,
		TherapistNotes: input.TherapistNotes,
	})
	if status.Failed() {
		return nil, sessionOutput{}, errors.New(status.Message)
	}

	s.refresh(ctx)

	return nil, sessionOutput{
		ID:            sess.ID,
		ExerciseType:  sess.ExerciseType,
		ProgressScore: sess.ProgressScore,
		Message:       fmt.Sprintf("%s (ID: %s)", status.Message, models.ShortID(sess.ID)),
	}, nil
}

func (s *Server) handleListSessions(ctx context.Context, req *mcp.CallToolRequest, input listSessionsInput) (*mcp.CallToolResult, listSessionsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}

	snap, status := s.refresh(ctx)
	if status.Failed() {
		return nil, listSessionsOutput{}, errors.New(status.Message)
	}

	sessions := snap.Filter(input.Search)
	if len(sessions) > input.Limit {
		sessions = sessions[:input.Limit]
	}

	out := listSessionsOutput{
		Sessions: sessions,
		Count:    len(sessions),
		Skipped:  snap.Skipped(),
	}
	if len(sessions) == 0 {
		out.Message = "No sessions found."
	}
	return nil, out, nil
}

func (s *Server) handleSessionStats(ctx context.Context, req *mcp.CallToolRequest, input statsInput) (*mcp.CallToolResult, statsOutput, error) {
	snap, status := s.refresh(ctx)
	if status.Failed() {
		return nil, statsOutput{}, errors.New(status.Message)
	}

	sum := snap.Summarize()
	out := statsOutput{
		TotalSessions:  sum.TotalSessions,
		AvgDuration:    sum.AvgDuration,
		HighIntensity:  sum.HighIntensity,
		ProgressScores: sum.ProgressScores,
	}
	if out.TotalSessions == 0 {
		out.Message = "No sessions recorded."
	}
	return nil, out, nil
}

func (s *Server) handleCheckStatus(ctx context.Context, req *mcp.CallToolRequest, input statusInput) (*mcp.CallToolResult, statusOutput, error) {
	status := s.tracker.CheckAvailability(ctx)
	return nil, statusOutput{
		Available: status.Level == tracker.LevelSuccess,
		Message:   status.Message,
	}, nil
}
