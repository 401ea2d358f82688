package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/errors"
	"github.com/hpungsan/fittrack/internal/logger"
	"github.com/hpungsan/fittrack/internal/ops"
	"github.com/hpungsan/fittrack/internal/tracker"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	tr      *tracker.Tracker
	cfg     *config.Config
	baseDir string
	log     logger.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(tr *tracker.Tracker, cfg *config.Config, baseDir string, log logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{tr: tr, cfg: cfg, baseDir: baseDir, log: log}
}

// Request types for each tool

// GoalAddRequest represents the arguments for goal_add.
type GoalAddRequest struct {
	Title  string  `json:"title"`
	Target float64 `json:"target"`
	Unit   string  `json:"unit,omitempty"`
}

// IDRequest represents the arguments of tools addressing one record.
type IDRequest struct {
	ID string `json:"id"`
}

// GoalRenameRequest represents the arguments for goal_rename.
type GoalRenameRequest struct {
	ID    string  `json:"id"`
	Title *string `json:"title"`
}

// GoalProgressRequest represents the arguments for goal_progress.
type GoalProgressRequest struct {
	ID     string `json:"id"`
	Policy string `json:"policy,omitempty"`
}

// ActivityLogRequest represents the arguments for activity_log.
type ActivityLogRequest struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit,omitempty"`
	Date   string  `json:"date,omitempty"`
}

// DashboardRequest represents the arguments for tracker_dashboard.
type DashboardRequest struct {
	Policy      string `json:"policy,omitempty"`
	RecentLimit int    `json:"recent_limit,omitempty"`
}

// ClearRequest represents the arguments for tracker_clear.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// ReportRequest represents the arguments for tracker_report.
type ReportRequest struct {
	Policy string `json:"policy,omitempty"`
}

// ExportRequest represents the arguments for tracker_export.
type ExportRequest struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
}

// ImportRequest represents the arguments for tracker_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandleGoalAdd handles the goal_add tool call.
func (h *Handlers) HandleGoalAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GoalAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddGoal(ctx, h.tr, ops.AddGoalInput{
		Title:  input.Title,
		Target: input.Target,
		Unit:   input.Unit,
	})
	if err != nil {
		return h.fail("goal_add", err), nil
	}
	return successResult(result)
}

// HandleGoalRemove handles the goal_remove tool call.
func (h *Handlers) HandleGoalRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RemoveGoal(ctx, h.tr, ops.RemoveGoalInput{ID: input.ID})
	if err != nil {
		return h.fail("goal_remove", err), nil
	}
	return successResult(result)
}

// HandleGoalRename handles the goal_rename tool call.
func (h *Handlers) HandleGoalRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GoalRenameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RenameGoal(ctx, h.tr, ops.RenameGoalInput{ID: input.ID, Title: input.Title})
	if err != nil {
		return h.fail("goal_rename", err), nil
	}
	return successResult(result)
}

// HandleGoalProgress handles the goal_progress tool call.
func (h *Handlers) HandleGoalProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GoalProgressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GoalProgress(h.tr, h.cfg, ops.GoalProgressInput{ID: input.ID, Policy: input.Policy})
	if err != nil {
		return h.fail("goal_progress", err), nil
	}
	return successResult(result)
}

// HandleActivityLog handles the activity_log tool call.
func (h *Handlers) HandleActivityLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ActivityLogRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.LogActivity(ctx, h.tr, ops.LogActivityInput{
		Type:   input.Type,
		Amount: input.Amount,
		Unit:   input.Unit,
		Date:   input.Date,
	})
	if err != nil {
		return h.fail("activity_log", err), nil
	}
	return successResult(result)
}

// HandleActivityRemove handles the activity_remove tool call.
func (h *Handlers) HandleActivityRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RemoveActivity(ctx, h.tr, ops.RemoveActivityInput{ID: input.ID})
	if err != nil {
		return h.fail("activity_remove", err), nil
	}
	return successResult(result)
}

// HandleDashboard handles the tracker_dashboard tool call.
func (h *Handlers) HandleDashboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DashboardRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Dashboard(h.tr, h.cfg, ops.DashboardInput{
		Policy:      input.Policy,
		RecentLimit: input.RecentLimit,
	})
	if err != nil {
		return h.fail("tracker_dashboard", err), nil
	}
	return successResult(result)
}

// HandleClear handles the tracker_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClearRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Clear(ctx, h.tr, ops.ClearInput{Confirm: input.Confirm})
	if err != nil {
		return h.fail("tracker_clear", err), nil
	}
	return successResult(result)
}

// HandleSample handles the tracker_sample tool call.
func (h *Handlers) HandleSample(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Sample(ctx, h.tr)
	if err != nil {
		return h.fail("tracker_sample", err), nil
	}
	return successResult(result)
}

// HandleReport handles the tracker_report tool call.
// The Markdown is returned as plain text so clients can show it directly.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Report(h.tr, h.cfg, ops.ReportInput{Policy: input.Policy})
	if err != nil {
		return h.fail("tracker_report", err), nil
	}
	return mcp.NewToolResultText(result.Markdown), nil
}

// HandleExport handles the tracker_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.tr, h.cfg, h.baseDir, ops.ExportInput{
		Path:   input.Path,
		Format: ops.ExportFormat(input.Format),
	})
	if err != nil {
		return h.fail("tracker_export", err), nil
	}
	return successResult(result)
}

// HandleImport handles the tracker_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.tr, h.cfg, h.baseDir, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return h.fail("tracker_import", err), nil
	}
	return successResult(result)
}

// fail logs internal failures and converts err into an error result.
func (h *Handlers) fail(tool string, err error) *mcp.CallToolResult {
	if !errors.Is(err, errors.ErrInvalidRequest) && !errors.Is(err, errors.ErrNotFound) {
		h.log.Error("tool failed", logger.String("tool", tool), logger.Error(err))
	}
	return errorResult(err)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var fitErr *errors.FitError
	if stderrors.As(err, &fitErr) {
		msg := fitErr.Message
		if err != error(fitErr) {
			msg = err.Error()
		}
		errorObj := map[string]any{
			"code":    fitErr.Code,
			"message": msg,
			"status":  fitErr.Status,
		}
		if fitErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if fitErr.Details != nil {
			errorObj["details"] = fitErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
