package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/logger"
	"github.com/hpungsan/fittrack/internal/tracker"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"goal_add": {
		def:     goalAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalAdd },
	},
	"goal_remove": {
		def:     goalRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalRemove },
	},
	"goal_rename": {
		def:     goalRenameToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalRename },
	},
	"goal_progress": {
		def:     goalProgressToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalProgress },
	},
	"activity_log": {
		def:     activityLogToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivityLog },
	},
	"activity_remove": {
		def:     activityRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivityRemove },
	},
	"tracker_dashboard": {
		def:     dashboardToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDashboard },
	},
	"tracker_clear": {
		def:     clearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClear },
	},
	"tracker_sample": {
		def:     sampleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSample },
	},
	"tracker_report": {
		def:     reportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReport },
	},
	"tracker_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"tracker_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with the fittrack tools registered.
// Tools listed in cfg.DisabledTools are skipped.
func NewServer(h *Handlers, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"fittrack",
		version,
		server.WithToolCapabilities(true),
	)

	disabled := make(map[string]bool)
	if cfg != nil {
		for _, name := range cfg.DisabledTools {
			disabled[name] = true
		}
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves the tracker over stdio until stdin closes or the process is
// signalled.
func Run(tr *tracker.Tracker, cfg *config.Config, baseDir, version string, log logger.Logger) error {
	return server.ServeStdio(prepare(tr, cfg, baseDir, version, log))
}

// Serve is Run bound to ctx. It is used when the web UI shares the process
// and owns signal handling.
func Serve(ctx context.Context, tr *tracker.Tracker, cfg *config.Config, baseDir, version string, log logger.Logger) error {
	s := prepare(tr, cfg, baseDir, version, log)
	return server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}

func prepare(tr *tracker.Tracker, cfg *config.Config, baseDir, version string, log logger.Logger) *server.MCPServer {
	if log == nil {
		log = logger.Nop()
	}
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("ignoring unknown disabled_tools entries", logger.Strings("tools", unknown))
	}
	s := NewServer(NewHandlers(tr, cfg, baseDir, log), cfg, version)
	log.Info("mcp server listening on stdio", logger.Int("tools", len(s.ListTools())))
	return s
}
