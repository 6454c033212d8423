package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/2beens/fitquest/internal/equipment"
	"github.com/2beens/fitquest/internal/plan"
	"github.com/2beens/fitquest/internal/profile"
	"github.com/2beens/fitquest/internal/progression"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
)

type workoutService interface {
	Profiles(ctx context.Context) ([]profile.Profile, error)
	ActiveProfile(ctx context.Context) (*profile.Profile, error)
	TodayPlan(ctx context.Context, profileID string, override *plan.SessionOverride) (*plan.WorkoutPlan, error)
	Progression(ctx context.Context, profileID string) (*progression.State, error)
}

type ProfilesResult struct {
	Profiles []profile.Profile `json:"profiles"`
	ActiveID string            `json:"activeId,omitempty"`
}

// Handler parses tool input, calls the service and formats the tool result.
type Handler struct {
	service workoutService
}

func NewHandler(service workoutService) *Handler {
	return &Handler{
		service: service,
	}
}

// GetTodayPlanTool returns the handler for get_today_plan.
func (h *Handler) GetTodayPlanTool() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profileID, errResult := h.resolveProfileID(ctx, req)
		if errResult != nil {
			return errResult, nil
		}

		var override *plan.SessionOverride
		env := req.GetString("environment", "")
		accessories := splitAccessories(req.GetString("accessories", ""))
		if env != "" || len(accessories) > 0 {
			environment := equipment.Environment(env)
			if env != "" && !equipment.IsKnown(environment) {
				return mcp.NewToolResultError("Unknown environment: " + env), nil
			}
			override = &plan.SessionOverride{
				Environment: environment,
				Accessories: accessories,
			}
		}

		p, err := h.service.TodayPlan(ctx, profileID, override)
		if err != nil {
			return errorResult("Error getting today's plan", err), nil
		}
		return jsonResult(p), nil
	}
}

// GetProgressionTool returns the handler for get_progression.
func (h *Handler) GetProgressionTool() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profileID, errResult := h.resolveProfileID(ctx, req)
		if errResult != nil {
			return errResult, nil
		}

		state, err := h.service.Progression(ctx, profileID)
		if err != nil {
			return errorResult("Error getting progression", err), nil
		}
		return jsonResult(state), nil
	}
}

// ListProfilesTool returns the handler for list_profiles.
func (h *Handler) ListProfilesTool() server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profiles, err := h.service.Profiles(ctx)
		if err != nil {
			return errorResult("Error listing profiles", err), nil
		}

		res := ProfilesResult{Profiles: profiles}
		if active, err := h.service.ActiveProfile(ctx); err == nil {
			res.ActiveID = active.ID
		} else if !errors.Is(err, profile.ErrNoActive) {
			log.Warnf("mcp: list profiles, get active: %s", err)
		}
		return jsonResult(res), nil
	}
}

func (h *Handler) resolveProfileID(ctx context.Context, req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	if id := strings.TrimSpace(req.GetString("profile_id", "")); id != "" {
		return id, nil
	}
	active, err := h.service.ActiveProfile(ctx)
	if err != nil {
		return "", errorResult("No profile_id given and no active profile", err)
	}
	return active.ID, nil
}

func splitAccessories(raw string) []string {
	accessories := []string{}
	for _, a := range strings.Split(raw, ",") {
		if a = strings.TrimSpace(a); a != "" {
			accessories = append(accessories, a)
		}
	}
	return accessories
}

func errorResult(msg string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return mcp.NewToolResultError(msg + ": profile not found")
	case errors.Is(err, profile.ErrNoActive):
		return mcp.NewToolResultError(msg + ": no active profile")
	}
	log.Errorf("mcp: %s: %s", msg, err)
	return mcp.NewToolResultError(msg + ": " + err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("Error encoding response: " + err.Error())
	}
	return mcp.NewToolResultText(string(raw))
}
