package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/VoyageMind/internal/domain/trip"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(s.planTripTool())
}

func (s *Server) planTripTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("plan_trip",
		mcplib.WithDescription("Recommend two cities to visit in a country, merged from history, food and transportation specialists"),
		mcplib.WithString("country",
			mcplib.Required(),
			mcplib.Description("The country to plan a trip for"),
		),
		mcplib.WithString("session_id",
			mcplib.Description("Optional session id used to correlate traces and progress events"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handlePlanTrip,
	}
}

func (s *Server) handlePlanTrip(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Planner == nil {
		return mcplib.NewToolResultError("planner not configured"), nil
	}
	country, err := req.RequireString("country")
	if err != nil || country == "" {
		return mcplib.NewToolResultError("country is required"), nil
	}

	planReq := trip.Request{Country: country, SessionID: req.GetString("session_id", "")}
	sessionID := planReq.EnsureSession()

	result, err := s.deps.Planner.Plan(ctx, planReq)
	if err != nil {
		slog.Warn("mcp plan_trip failed", "country", country, "session_id", sessionID, "error", err)
		msg := err.Error()
		if s.deps.Redact != nil {
			msg = s.deps.Redact(msg)
		}
		return mcplib.NewToolResultError("Error planning travel: " + msg + " (session " + sessionID + ")"), nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal plan", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func toolResultJSON(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}
