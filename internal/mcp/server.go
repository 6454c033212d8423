// Package mcp exposes today's plan, progression and profiles as MCP tools.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer builds an MCP server with the workout tools.
// Mounted by the main backend at /mcp (internal/server).
func NewServer(service workoutService, version string) *server.MCPServer {
	h := NewHandler(service)
	s := server.NewMCPServer("fitquest", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("FitQuest daily workout server. Read today's generated workout plan, the progression (XP, level, streak, badges) and the profiles. When no profile_id is given the active profile is used."),
	)

	s.AddTool(mcp.NewTool("get_today_plan",
		mcp.WithDescription("Returns today's workout plan for a profile, generating it when it does not exist yet. Optional environment (home_no_equipment, home_gym, outdoor, calisthenics) and accessories replace the profile's default equipment for this session."),
		mcp.WithString("profile_id", mcp.Description("Profile id. Defaults to the active profile.")),
		mcp.WithString("environment", mcp.Description("Training environment for this session"), mcp.Enum("home_no_equipment", "home_gym", "outdoor", "calisthenics")),
		mcp.WithString("accessories", mcp.Description("Comma separated accessories (e.g. dumbbell,kettlebell,mat)")),
	), h.GetTodayPlanTool())

	s.AddTool(mcp.NewTool("get_progression",
		mcp.WithDescription("Returns XP, level, current and longest streak, difficulty modifier, badges and recent workout history of a profile."),
		mcp.WithString("profile_id", mcp.Description("Profile id. Defaults to the active profile.")),
	), h.GetProgressionTool())

	s.AddTool(mcp.NewTool("list_profiles",
		mcp.WithDescription("Returns all profiles and the id of the active one."),
	), h.ListProfilesTool())

	return s
}

// NewHTTPHandler serves s over streamable HTTP.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}
